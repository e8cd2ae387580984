package validate

import (
	"testing"

	"floorplan/internal/geometry/models"
	"floorplan/internal/geometry/walk"
)

// polygon builds a ring of walls through coords and optionally finalizes it.
func polygon(t *testing.T, closed bool, coords ...[2]float64) *models.Geometry {
	t.Helper()
	g := models.New(models.ModePoints, "test")
	var ids []string
	for _, c := range coords {
		ids = append(ids, g.AddPoint(c[0], c[1], "").ID)
	}
	for i := range ids {
		j := (i + 1) % len(ids)
		if j == 0 && !closed {
			break
		}
		if _, err := g.AddSegment(ids[i], ids[j], models.KindWall); err != nil {
			t.Fatalf("add segment: %v", err)
		}
	}
	if closed {
		g.SetClosed(true)
	}
	return g
}

func codes(rs Results) map[Code]int {
	out := make(map[Code]int)
	for _, r := range rs {
		out[r.Code]++
	}
	return out
}

func TestValidatePointPlacement(t *testing.T) {
	v := New(DefaultConfig())
	g := models.New(models.ModePoints, "")
	p := g.AddPoint(0, 0, "")

	res := v.ValidatePointPlacement(0.2, 0.1, g)
	if res == nil || res.Code != CodeDuplicatePoint || res.Severity != SeverityWarning {
		t.Fatalf("expected duplicate_point warning, got %+v", res)
	}
	if len(res.EntityIDs) != 1 || res.EntityIDs[0] != p.ID {
		t.Fatalf("entity ids = %v", res.EntityIDs)
	}
	if res := v.ValidatePointPlacement(0.25, 0, g); res == nil {
		t.Fatalf("half a grid cell away should still warn")
	}
	if res := v.ValidatePointPlacement(0.3, 0, g); res != nil {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestValidateSegmentCreationPrecedence(t *testing.T) {
	v := New(DefaultConfig())
	g := models.New(models.ModePoints, "")
	a := g.AddPoint(0, 0, "")
	b := g.AddPoint(0.5, 0, "")
	c := g.AddPoint(5, 0, "")
	d := g.AddPoint(5.5, 0, "")
	if _, err := g.AddSegment(a.ID, b.ID, models.KindWall); err != nil {
		t.Fatalf("add: %v", err)
	}

	cases := []struct {
		name     string
		p1, p2   string
		code     Code
		severity Severity
	}{
		{name: "missing endpoint", p1: "ghost", p2: a.ID, code: CodeMissingPoint, severity: SeverityError},
		{name: "same point", p1: c.ID, p2: c.ID, code: CodeSamePoint, severity: SeverityError},
		{name: "duplicate wins over short", p1: b.ID, p2: a.ID, code: CodeDuplicateSegment, severity: SeverityWarning},
		{name: "too short", p1: c.ID, p2: d.ID, code: CodeSegmentTooShort, severity: SeverityError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := v.ValidateSegmentCreation(tc.p1, tc.p2, g)
			if res == nil || res.Code != tc.code || res.Severity != tc.severity {
				t.Fatalf("got %+v, want %s/%s", res, tc.code, tc.severity)
			}
		})
	}
}

func TestSegmentMinimumLength(t *testing.T) {
	v := New(DefaultConfig())
	g := models.New(models.ModePoints, "")
	o := g.AddPoint(0, 0, "")
	exact := g.AddPoint(1, 0, "")
	short := g.AddPoint(0, 1-1e-9, "")
	half := g.AddPoint(-0.5, 0, "")
	version := g.Version

	if res := v.ValidateSegmentCreation(o.ID, exact.ID, g); res != nil {
		t.Fatalf("length at the minimum must be accepted, got %+v", res)
	}
	if res := v.ValidateSegmentCreation(o.ID, short.ID, g); res == nil || res.Code != CodeSegmentTooShort {
		t.Fatalf("expected segment_too_short, got %+v", res)
	}
	res := v.ValidateSegmentCreation(o.ID, half.ID, g)
	if res == nil || res.Code != CodeSegmentTooShort || !res.IsError() {
		t.Fatalf("expected segment_too_short error, got %+v", res)
	}
	if g.Version != version || len(g.Segments) != 0 {
		t.Fatalf("validation must not mutate the geometry")
	}
}

func TestSegmentCrossingExistingWall(t *testing.T) {
	v := New(DefaultConfig())
	g := models.New(models.ModePoints, "")
	a := g.AddPoint(0, 0, "")
	b := g.AddPoint(10, 0, "")
	if _, err := g.AddSegment(a.ID, b.ID, models.KindWall); err != nil {
		t.Fatalf("add: %v", err)
	}
	e := g.AddPoint(5, -5, "")
	f := g.AddPoint(5, 5, "")

	res := v.ValidateSegmentCreation(e.ID, f.ID, g)
	if res == nil || res.Code != CodeSelfIntersecting {
		t.Fatalf("expected self_intersecting, got %+v", res)
	}
	if len(g.Segments) != 1 {
		t.Fatalf("no segment should be added")
	}

	// A segment sharing an endpoint with the wall is adjacent, not crossing.
	if res := v.ValidateSegmentCreation(b.ID, f.ID, g); res != nil {
		t.Fatalf("adjacent segment rejected: %+v", res)
	}
}

func TestValidatePolygonClosure(t *testing.T) {
	v := New(DefaultConfig())

	two := polygon(t, false, [2]float64{0, 0}, [2]float64{10, 0})
	if res := v.ValidatePolygonClosure(two); res == nil || res.Code != CodeInsufficientPoints {
		t.Fatalf("expected insufficient_points, got %+v", res)
	}

	tiny := polygon(t, false, [2]float64{0, 0}, [2]float64{2, 0}, [2]float64{0, 2})
	if res := v.ValidatePolygonClosure(tiny); res == nil || res.Code != CodePerimeterTooSmall {
		t.Fatalf("expected perimeter_too_small, got %+v", res)
	}

	room := polygon(t, true, [2]float64{0, 0}, [2]float64{12, 0}, [2]float64{12, 10}, [2]float64{0, 10})
	if res := v.ValidatePolygonClosure(room); res != nil {
		t.Fatalf("unexpected %+v", res)
	}
}

func TestWalkCapturedGeometryHasNoErrors(t *testing.T) {
	type leg struct{ d, b float64 }
	walks := map[string][]leg{
		"rectangle": {{20, 0}, {15, 90}, {20, 180}, {15, 270}},
		"l-shape":   {{20, 0}, {10, 90}, {10, 180}, {10, 90}, {10, 180}, {20, 270}},
		"triangle":  {{12, 0}, {12, 120}, {12, 240}},
	}

	v := New(DefaultConfig())
	for name, legs := range walks {
		t.Run(name, func(t *testing.T) {
			b := walk.New()
			if err := b.Start(models.Point{}); err != nil {
				t.Fatalf("start: %v", err)
			}
			for _, l := range legs {
				bearing := l.b
				if _, err := b.RecordMeasurement(l.d, &bearing); err != nil {
					t.Fatalf("record: %v", err)
				}
			}
			if b.State() != walk.StateClosed {
				t.Fatalf("walk did not close")
			}
			rs := v.Validate(b.ExportGeometry())
			if rs.HasErrors() {
				t.Fatalf("unexpected errors: %+v", rs.Errors())
			}
		})
	}
}

func TestBatchFindings(t *testing.T) {
	v := New(DefaultConfig())

	t.Run("bowtie self intersects", func(t *testing.T) {
		g := polygon(t, true, [2]float64{0, 0}, [2]float64{10, 10}, [2]float64{10, 0}, [2]float64{0, 10})
		got := codes(v.Validate(g))
		if got[CodeSelfIntersecting] != 1 {
			t.Fatalf("codes = %v", got)
		}
	})

	t.Run("orphaned segment", func(t *testing.T) {
		g := polygon(t, false, [2]float64{0, 0}, [2]float64{10, 0})
		g.Segments = append(g.Segments, models.Segment{ID: "dangling", P1: g.Points[0].ID, P2: "ghost"})
		rs := v.Validate(g)
		if !rs.Has(CodeOrphanedSegment) || !rs.HasErrors() {
			t.Fatalf("expected orphaned_segment, got %+v", rs)
		}
		for _, r := range rs {
			if r.Code == CodeOrphanedSegment && (r.EntityIDs[0] != "dangling" || r.EntityIDs[1] != "ghost") {
				t.Fatalf("entity ids = %v", r.EntityIDs)
			}
		}
	})

	t.Run("isolated and duplicate points are warnings", func(t *testing.T) {
		g := polygon(t, true, [2]float64{0, 0}, [2]float64{12, 0}, [2]float64{12, 10}, [2]float64{0, 10})
		g.AddPoint(12.1, 10.1, "")
		rs := v.Validate(g)
		got := codes(rs)
		if got[CodeIsolatedPoint] != 1 || got[CodeDuplicatePoint] != 1 {
			t.Fatalf("codes = %v", got)
		}
		if rs.HasErrors() {
			t.Fatalf("advisory findings must not be errors: %+v", rs.Errors())
		}
	})

	t.Run("isolated points ignored while open", func(t *testing.T) {
		g := polygon(t, false, [2]float64{0, 0}, [2]float64{12, 0})
		g.AddPoint(30, 30, "")
		if codes(v.Validate(g))[CodeIsolatedPoint] != 0 {
			t.Fatalf("isolated points only matter for closed polygons")
		}
	})

	t.Run("oversized area warns", func(t *testing.T) {
		g := polygon(t, true, [2]float64{0, 0}, [2]float64{200, 0}, [2]float64{200, 100}, [2]float64{0, 100})
		rs := v.Validate(g)
		if !rs.Has(CodeAreaTooLarge) || rs.HasErrors() {
			t.Fatalf("expected only an area warning, got %+v", rs)
		}
	})

	t.Run("closed with too few points", func(t *testing.T) {
		g := polygon(t, false, [2]float64{0, 0}, [2]float64{20, 0})
		g.SetClosed(true)
		if !v.Validate(g).Has(CodeInsufficientPoints) {
			t.Fatalf("expected insufficient_points")
		}
	})

	t.Run("small closed room", func(t *testing.T) {
		g := polygon(t, true, [2]float64{0, 0}, [2]float64{2, 0}, [2]float64{2, 2}, [2]float64{0, 2})
		if !v.Validate(g).Has(CodePerimeterTooSmall) {
			t.Fatalf("expected perimeter_too_small")
		}
	})

	t.Run("duplicate segments", func(t *testing.T) {
		g := polygon(t, false, [2]float64{0, 0}, [2]float64{10, 0})
		if _, err := g.AddSegment(g.Points[1].ID, g.Points[0].ID, models.KindWall); err != nil {
			t.Fatalf("add: %v", err)
		}
		if codes(v.Validate(g))[CodeDuplicateSegment] != 1 {
			t.Fatalf("expected one duplicate_segment warning")
		}
	})
}

func TestValidateDoesNotMutate(t *testing.T) {
	g := polygon(t, true, [2]float64{0, 0}, [2]float64{10, 10}, [2]float64{10, 0}, [2]float64{0, 10})
	version, area := g.Version, g.Area
	New(DefaultConfig()).Validate(g)
	if g.Version != version || g.Area != area {
		t.Fatalf("validate mutated the geometry")
	}
}
