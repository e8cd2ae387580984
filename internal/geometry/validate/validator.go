package validate

import (
	"fmt"

	"floorplan/internal/geometry/models"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	GridSize         float64 `json:"gridSize"`
	MinSegmentLength float64 `json:"minSegmentLength"`
	MinPerimeter     float64 `json:"minPerimeter"`
	MaxArea          float64 `json:"maxArea"`
}

const (
	DefaultGridSize         = 0.5
	DefaultMinSegmentLength = 1.0
	DefaultMinPerimeter     = 10.0
	DefaultMaxArea          = 10000.0
)

func DefaultConfig() Config {
	return Config{
		GridSize:         DefaultGridSize,
		MinSegmentLength: DefaultMinSegmentLength,
		MinPerimeter:     DefaultMinPerimeter,
		MaxArea:          DefaultMaxArea,
	}
}

// Validator checks candidate mutations and whole geometries. It never mutates
// the geometry it is given.
type Validator struct {
	cfg Config
}

func New(cfg Config) *Validator {
	return &Validator{cfg: cfg}
}

func (v *Validator) Config() Config {
	return v.cfg
}

func (v *Validator) duplicateTolerance() float64 {
	return v.cfg.GridSize / 2
}

// ============================================================
// Incremental checks
// ============================================================

// ValidatePointPlacement warns when a point already sits within half a grid cell
// of (x, y).
func (v *Validator) ValidatePointPlacement(x, y float64, g *models.Geometry) *Result {
	candidate := models.Point{X: x, Y: y}
	for _, p := range g.Points {
		if models.Distance(p, candidate) <= v.duplicateTolerance() {
			return newWarning(CodeDuplicatePoint,
				fmt.Sprintf("a point already exists at (%.2f, %.2f)", p.X, p.Y), p.ID)
		}
	}
	return nil
}

// ValidateSegmentCreation checks a candidate segment between two existing points.
func (v *Validator) ValidateSegmentCreation(p1, p2 string, g *models.Geometry) *Result {
	a, ok1 := g.PointByID(p1)
	b, ok2 := g.PointByID(p2)
	if !ok1 || !ok2 {
		var missing []string
		if !ok1 {
			missing = append(missing, p1)
		}
		if !ok2 {
			missing = append(missing, p2)
		}
		return newError(CodeMissingPoint, "segment endpoint does not exist", missing...)
	}

	if p1 == p2 {
		return newError(CodeSamePoint, "segment must connect two different points", p1)
	}

	if s, ok := g.HasSegmentBetween(p1, p2); ok {
		return newWarning(CodeDuplicateSegment, "these points are already connected", s.ID)
	}

	if length := models.Distance(a, b); length < v.cfg.MinSegmentLength {
		return newError(CodeSegmentTooShort,
			fmt.Sprintf("segment is %.2f ft, minimum is %.2f ft", length, v.cfg.MinSegmentLength), p1, p2)
	}

	candidate := models.Segment{P1: p1, P2: p2}
	for _, s := range g.Segments {
		if candidate.SharesEndpoint(s) {
			continue
		}
		c, d, ok := g.Endpoints(s)
		if !ok {
			continue
		}
		if models.SegmentsIntersect(a, b, c, d) {
			return newError(CodeSelfIntersecting, "segment would cross an existing wall", s.ID, p1, p2)
		}
	}

	return nil
}

// ValidatePolygonClosure checks whether g may be finalized as a closed polygon.
func (v *Validator) ValidatePolygonClosure(g *models.Geometry) *Result {
	if len(g.Points) < 3 {
		return newError(CodeInsufficientPoints,
			fmt.Sprintf("a room needs at least 3 points, have %d", len(g.Points)))
	}
	if p := perimeter(g); p < v.cfg.MinPerimeter {
		return newError(CodePerimeterTooSmall,
			fmt.Sprintf("perimeter %.2f ft is below the %.2f ft minimum", p, v.cfg.MinPerimeter))
	}
	return nil
}

// perimeter sums current segment lengths, ignoring segments with missing endpoints.
func perimeter(g *models.Geometry) float64 {
	var total float64
	for _, s := range g.Segments {
		if a, b, ok := g.Endpoints(s); ok {
			total += models.Distance(a, b)
		}
	}
	return total
}
