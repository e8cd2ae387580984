package models

import (
	"errors"
	"math"
	"testing"
)

func room(t *testing.T) (*Geometry, []Point, []Segment) {
	t.Helper()
	g := New(ModePoints, "tester")
	pts := []Point{
		g.AddPoint(0, 0, ""),
		g.AddPoint(12, 0, ""),
		g.AddPoint(12, 10, ""),
		g.AddPoint(0, 10, ""),
	}
	var segs []Segment
	for i := range pts {
		s, err := g.AddSegment(pts[i].ID, pts[(i+1)%len(pts)].ID, "")
		if err != nil {
			t.Fatalf("add segment: %v", err)
		}
		segs = append(segs, s)
	}
	return g, pts, segs
}

func TestDerivedValues(t *testing.T) {
	g, _, segs := room(t)
	if g.Perimeter != 44 || g.Area != 120 {
		t.Fatalf("perimeter=%v area=%v", g.Perimeter, g.Area)
	}
	if segs[0].Kind != KindWall || segs[0].Length != 12 || segs[0].Angle != 0 {
		t.Fatalf("first segment = %+v", segs[0])
	}
	if math.Abs(segs[1].Angle-90) > 1e-9 {
		t.Fatalf("second segment angle = %v", segs[1].Angle)
	}
}

func TestVersionAndProvenance(t *testing.T) {
	g := New(ModeSketch, "alice")
	if g.Version != 0 {
		t.Fatalf("new geometry version = %d", g.Version)
	}
	p := g.AddPoint(1, 1, "")
	g.SetActor("bob")
	if err := g.MovePoint(p.ID, 2, 2); err != nil {
		t.Fatalf("move: %v", err)
	}
	if g.Version != 2 || g.UpdatedBy != "bob" {
		t.Fatalf("version=%d updatedBy=%q", g.Version, g.UpdatedBy)
	}
	if err := g.MovePoint("ghost", 0, 0); !errors.Is(err, ErrPointNotFound) {
		t.Fatalf("expected ErrPointNotFound, got %v", err)
	}
	if g.Version != 2 {
		t.Fatalf("failed mutation bumped the version")
	}
}

func TestRemovePointCascade(t *testing.T) {
	g, pts, segs := room(t)
	if _, err := g.AddLayer("walls", segs[0].ID, segs[1].ID); err != nil {
		t.Fatalf("layer: %v", err)
	}
	length := 12.0
	if _, err := g.AddConstraint(Constraint{Type: ConstraintType("length"), SegmentIDs: []string{segs[0].ID}, Value: &length}); err != nil {
		t.Fatalf("constraint: %v", err)
	}
	g.SetLabel(Label{Text: "corner", PointID: pts[0].ID})
	g.SetLabel(Label{Text: "free", X: 5, Y: 5})

	removed, err := g.RemovePoint(pts[0].ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(removed) != 2 || len(g.Segments) != 2 {
		t.Fatalf("removed=%v remaining=%d", removed, len(g.Segments))
	}
	if ids := g.Layers[0].SegmentIDs; len(ids) != 1 || ids[0] != segs[1].ID {
		t.Fatalf("layer ids = %v", ids)
	}
	if len(g.Constraints) != 0 {
		t.Fatalf("constraint on a removed segment survived")
	}
	if len(g.Labels) != 1 || g.Labels[0].Text != "free" {
		t.Fatalf("labels = %+v", g.Labels)
	}
	if g.Perimeter != 22 {
		t.Fatalf("perimeter = %v, want 22", g.Perimeter)
	}
}

func TestAddSegmentReferences(t *testing.T) {
	g := New(ModePoints, "")
	a := g.AddPoint(0, 0, "")
	if _, err := g.AddSegment(a.ID, "ghost", KindDoor); !errors.Is(err, ErrPointNotFound) {
		t.Fatalf("expected ErrPointNotFound, got %v", err)
	}
	if _, err := g.AddSegment(a.ID, a.ID, SegmentKind("arch")); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	if err := g.RemoveSegment("ghost"); !errors.Is(err, ErrSegmentNotFound) {
		t.Fatalf("expected ErrSegmentNotFound, got %v", err)
	}
	if _, err := g.AddLayer("x", "ghost"); !errors.Is(err, ErrSegmentNotFound) {
		t.Fatalf("expected ErrSegmentNotFound, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g, pts, segs := room(t)
	if _, err := g.AddLayer("walls", segs[0].ID); err != nil {
		t.Fatalf("layer: %v", err)
	}
	cp := g.Clone()

	if err := cp.MovePoint(pts[2].ID, 20, 20); err != nil {
		t.Fatalf("move: %v", err)
	}
	cp.Layers[0].SegmentIDs[0] = "changed"

	if p, _ := g.PointByID(pts[2].ID); p.X != 12 {
		t.Fatalf("clone shares points with the original")
	}
	if g.Layers[0].SegmentIDs[0] != segs[0].ID {
		t.Fatalf("clone shares layer ids with the original")
	}
	if g.Version == cp.Version {
		t.Fatalf("versions should diverge")
	}
}

func TestSegmentHelpers(t *testing.T) {
	s := Segment{P1: "a", P2: "b"}
	if !s.Connects("b", "a") || s.Connects("a", "c") {
		t.Fatalf("Connects is wrong")
	}
	if !s.SharesEndpoint(Segment{P1: "c", P2: "a"}) || s.SharesEndpoint(Segment{P1: "c", P2: "d"}) {
		t.Fatalf("SharesEndpoint is wrong")
	}
}
