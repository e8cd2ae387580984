package validate

import (
	"fmt"

	"floorplan/internal/geometry/models"
)

// ============================================================
// Batch validation
// ============================================================

// Validate runs every structural and business-rule check over g and returns the
// full list of findings.
func (v *Validator) Validate(g *models.Geometry) Results {
	results := Results{}
	add := func(r *Result) {
		if r != nil {
			results = append(results, *r)
		}
	}

	resolved := make([]bool, len(g.Segments))
	for i, s := range g.Segments {
		resolved[i] = v.checkSegment(g, s, add)
	}

	for i := 0; i < len(g.Segments); i++ {
		for j := i + 1; j < len(g.Segments); j++ {
			a, b := g.Segments[i], g.Segments[j]
			if a.Connects(b.P1, b.P2) {
				add(newWarning(CodeDuplicateSegment, "two segments connect the same points", a.ID, b.ID))
			}
		}
	}

	for i := 0; i < len(g.Points); i++ {
		for j := i + 1; j < len(g.Points); j++ {
			a, b := g.Points[i], g.Points[j]
			if models.Distance(a, b) <= v.duplicateTolerance() {
				add(newWarning(CodeDuplicatePoint,
					fmt.Sprintf("points overlap at (%.2f, %.2f)", a.X, a.Y), a.ID, b.ID))
			}
		}
	}

	if g.ClosedPolygon {
		for _, p := range g.Points {
			if len(g.IncidentSegments(p.ID)) == 0 {
				add(newWarning(CodeIsolatedPoint, "point is not connected to any segment", p.ID))
			}
		}
	}

	v.checkIntersections(g, resolved, add)

	if g.ClosedPolygon {
		v.checkClosure(g, add)
	}

	return results
}

// checkSegment reports orphaned, degenerate and too short segments. It returns
// whether both endpoints resolved.
func (v *Validator) checkSegment(g *models.Geometry, s models.Segment, add func(*Result)) bool {
	a, b, ok := g.Endpoints(s)
	if !ok {
		ids := []string{s.ID}
		if _, found := g.PointByID(s.P1); !found {
			ids = append(ids, s.P1)
		}
		if _, found := g.PointByID(s.P2); !found {
			ids = append(ids, s.P2)
		}
		add(newError(CodeOrphanedSegment, "segment references a point that does not exist", ids...))
		return false
	}

	if s.P1 == s.P2 {
		add(newError(CodeSamePoint, "segment starts and ends at the same point", s.ID))
		return true
	}

	if length := models.Distance(a, b); length < v.cfg.MinSegmentLength {
		add(newError(CodeSegmentTooShort,
			fmt.Sprintf("segment is %.2f ft, minimum is %.2f ft", length, v.cfg.MinSegmentLength), s.ID))
	}
	return true
}

// checkIntersections compares every pair of non-adjacent segments.
func (v *Validator) checkIntersections(g *models.Geometry, resolved []bool, add func(*Result)) {
	for i := 0; i < len(g.Segments); i++ {
		if !resolved[i] {
			continue
		}
		for j := i + 1; j < len(g.Segments); j++ {
			if !resolved[j] {
				continue
			}
			s, o := g.Segments[i], g.Segments[j]
			if s.SharesEndpoint(o) {
				continue
			}
			a, b, _ := g.Endpoints(s)
			c, d, _ := g.Endpoints(o)
			if models.SegmentsIntersect(a, b, c, d) {
				add(newError(CodeSelfIntersecting, "segments cross each other", s.ID, o.ID))
			}
		}
	}
}

// checkClosure orders points by angle around their centroid before measuring.
// The ordering misreads concave rooms; it is kept for compatibility with stored
// estimates.
func (v *Validator) checkClosure(g *models.Geometry, add func(*Result)) {
	ordered := models.SortByCentroidAngle(g.Points)
	if len(ordered) < 3 {
		add(newError(CodeInsufficientPoints,
			fmt.Sprintf("a closed room needs at least 3 points, have %d", len(ordered))))
		return
	}

	if p := perimeter(g); p < v.cfg.MinPerimeter {
		add(newError(CodePerimeterTooSmall,
			fmt.Sprintf("perimeter %.2f ft is below the %.2f ft minimum", p, v.cfg.MinPerimeter)))
	}

	if area := models.ShoelaceArea(ordered); area > v.cfg.MaxArea {
		add(newWarning(CodeAreaTooLarge,
			fmt.Sprintf("area %.0f sq ft exceeds the plausible %.0f sq ft", area, v.cfg.MaxArea)))
	}
}
