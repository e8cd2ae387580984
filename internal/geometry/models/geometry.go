package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPointNotFound   = errors.New("point not found")
	ErrSegmentNotFound = errors.New("segment not found")
	ErrLabelNotFound   = errors.New("label not found")
	ErrInvalidKind     = errors.New("invalid segment kind")
)

// ============================================================
// Construction
// ============================================================

// New returns an empty geometry: capture has not started yet.
func New(mode Mode, actor string) *Geometry {
	return &Geometry{
		ID:          uuid.NewString(),
		Mode:        mode,
		Points:      []Point{},
		Segments:    []Segment{},
		Labels:      []Label{},
		Layers:      []Layer{},
		Constraints: []Constraint{},
		UpdatedAt:   time.Now().UTC(),
		UpdatedBy:   actor,
		actor:       actor,
	}
}

// NewWithOrigin returns a geometry seeded with a single origin point.
func NewWithOrigin(mode Mode, x, y float64, actor string) *Geometry {
	g := New(mode, actor)
	g.AddPoint(x, y, "origin")
	return g
}

// SetActor sets who is recorded in UpdatedBy for subsequent mutations.
func (g *Geometry) SetActor(actor string) {
	g.actor = actor
}

// Clone returns a deep copy.
func (g *Geometry) Clone() *Geometry {
	if g == nil {
		return nil
	}
	cp := *g
	cp.Points = make([]Point, len(g.Points))
	for i, p := range g.Points {
		if p.Z != nil {
			z := *p.Z
			p.Z = &z
		}
		cp.Points[i] = p
	}
	cp.Segments = append([]Segment{}, g.Segments...)
	cp.Labels = append([]Label{}, g.Labels...)
	cp.Layers = make([]Layer, len(g.Layers))
	for i, l := range g.Layers {
		l.SegmentIDs = append([]string{}, l.SegmentIDs...)
		cp.Layers[i] = l
	}
	cp.Constraints = make([]Constraint, len(g.Constraints))
	for i, c := range g.Constraints {
		c.SegmentIDs = append([]string{}, c.SegmentIDs...)
		if c.Value != nil {
			v := *c.Value
			c.Value = &v
		}
		cp.Constraints[i] = c
	}
	return &cp
}

// ============================================================
// Lookups
// ============================================================

func (g *Geometry) pointIndex(id string) int {
	for i := range g.Points {
		if g.Points[i].ID == id {
			return i
		}
	}
	return -1
}

func (g *Geometry) segmentIndex(id string) int {
	for i := range g.Segments {
		if g.Segments[i].ID == id {
			return i
		}
	}
	return -1
}

func (g *Geometry) PointByID(id string) (Point, bool) {
	if i := g.pointIndex(id); i >= 0 {
		return g.Points[i], true
	}
	return Point{}, false
}

func (g *Geometry) SegmentByID(id string) (Segment, bool) {
	if i := g.segmentIndex(id); i >= 0 {
		return g.Segments[i], true
	}
	return Segment{}, false
}

// LastPoint returns the most recently placed point.
func (g *Geometry) LastPoint() (Point, bool) {
	if len(g.Points) == 0 {
		return Point{}, false
	}
	return g.Points[len(g.Points)-1], true
}

// HasSegmentBetween reports whether a segment already joins a and b.
func (g *Geometry) HasSegmentBetween(a, b string) (Segment, bool) {
	for _, s := range g.Segments {
		if s.Connects(a, b) {
			return s, true
		}
	}
	return Segment{}, false
}

// IncidentSegments returns the ids of segments touching point id.
func (g *Geometry) IncidentSegments(id string) []string {
	var out []string
	for _, s := range g.Segments {
		if s.P1 == id || s.P2 == id {
			out = append(out, s.ID)
		}
	}
	return out
}

// Endpoints resolves both points of s.
func (g *Geometry) Endpoints(s Segment) (Point, Point, bool) {
	p1, ok1 := g.PointByID(s.P1)
	p2, ok2 := g.PointByID(s.P2)
	return p1, p2, ok1 && ok2
}

// ============================================================
// Mutations
// ============================================================

func (g *Geometry) AddPoint(x, y float64, label string) Point {
	p := Point{
		ID:        uuid.NewString(),
		X:         x,
		Y:         y,
		Label:     label,
		CreatedAt: time.Now().UTC(),
	}
	g.Points = append(g.Points, p)
	g.touch(true)
	return p
}

func (g *Geometry) MovePoint(id string, x, y float64) error {
	i := g.pointIndex(id)
	if i < 0 {
		return fmt.Errorf("move %s: %w", id, ErrPointNotFound)
	}
	g.Points[i].X = x
	g.Points[i].Y = y
	g.touch(true)
	return nil
}

// RemovePoint deletes the point together with its incident segments and anchored
// labels. The ids of removed segments are returned.
func (g *Geometry) RemovePoint(id string) ([]string, error) {
	i := g.pointIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("remove %s: %w", id, ErrPointNotFound)
	}
	g.Points = append(g.Points[:i], g.Points[i+1:]...)

	removed := g.IncidentSegments(id)
	if len(removed) > 0 {
		kept := g.Segments[:0]
		for _, s := range g.Segments {
			if s.P1 != id && s.P2 != id {
				kept = append(kept, s)
			}
		}
		g.Segments = kept
		g.detachSegments(removed)
	}

	labels := g.Labels[:0]
	for _, l := range g.Labels {
		if l.PointID != id {
			labels = append(labels, l)
		}
	}
	g.Labels = labels

	g.touch(true)
	return removed, nil
}

// AddSegment joins two existing points. Business rules are the validator's job;
// only referential integrity is enforced here.
func (g *Geometry) AddSegment(p1, p2 string, kind SegmentKind) (Segment, error) {
	if kind == "" {
		kind = KindWall
	}
	if !kind.Valid() {
		return Segment{}, fmt.Errorf("add segment: %w: %q", ErrInvalidKind, kind)
	}
	if g.pointIndex(p1) < 0 {
		return Segment{}, fmt.Errorf("add segment p1 %s: %w", p1, ErrPointNotFound)
	}
	if g.pointIndex(p2) < 0 {
		return Segment{}, fmt.Errorf("add segment p2 %s: %w", p2, ErrPointNotFound)
	}

	s := Segment{
		ID:   uuid.NewString(),
		P1:   p1,
		P2:   p2,
		Kind: kind,
	}
	g.Segments = append(g.Segments, s)
	g.touch(true)

	s, _ = g.SegmentByID(s.ID)
	return s, nil
}

func (g *Geometry) RemoveSegment(id string) error {
	i := g.segmentIndex(id)
	if i < 0 {
		return fmt.Errorf("remove %s: %w", id, ErrSegmentNotFound)
	}
	g.Segments = append(g.Segments[:i], g.Segments[i+1:]...)
	g.detachSegments([]string{id})
	g.touch(true)
	return nil
}

// SetMaterial tags a segment with a flooring or wall material.
func (g *Geometry) SetMaterial(id, material string) error {
	i := g.segmentIndex(id)
	if i < 0 {
		return fmt.Errorf("material %s: %w", id, ErrSegmentNotFound)
	}
	g.Segments[i].Material = material
	g.touch(false)
	return nil
}

// SetLabel creates or replaces a label. An empty id creates a new one.
func (g *Geometry) SetLabel(l Label) Label {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	for i := range g.Labels {
		if g.Labels[i].ID == l.ID {
			g.Labels[i] = l
			g.touch(false)
			return l
		}
	}
	g.Labels = append(g.Labels, l)
	g.touch(false)
	return l
}

func (g *Geometry) RemoveLabel(id string) error {
	for i := range g.Labels {
		if g.Labels[i].ID == id {
			g.Labels = append(g.Labels[:i], g.Labels[i+1:]...)
			g.touch(false)
			return nil
		}
	}
	return fmt.Errorf("remove label %s: %w", id, ErrLabelNotFound)
}

func (g *Geometry) AddConstraint(c Constraint) (Constraint, error) {
	for _, id := range c.SegmentIDs {
		if g.segmentIndex(id) < 0 {
			return Constraint{}, fmt.Errorf("constraint %s: %w", id, ErrSegmentNotFound)
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	g.Constraints = append(g.Constraints, c)
	g.touch(false)
	return c, nil
}

func (g *Geometry) AddLayer(name string, segmentIDs ...string) (Layer, error) {
	for _, id := range segmentIDs {
		if g.segmentIndex(id) < 0 {
			return Layer{}, fmt.Errorf("layer %s: %w", id, ErrSegmentNotFound)
		}
	}
	l := Layer{
		ID:         uuid.NewString(),
		Name:       name,
		Visible:    true,
		SegmentIDs: append([]string{}, segmentIDs...),
	}
	g.Layers = append(g.Layers, l)
	g.touch(false)
	return l, nil
}

// SetClosed finalizes (true) or reopens (false) the polygon.
func (g *Geometry) SetClosed(closed bool) {
	g.ClosedPolygon = closed
	g.touch(true)
}

// ============================================================
// Derived values
// ============================================================

// Recalculate rewrites segment lengths and angles, perimeter and area.
// Segments with a missing endpoint keep their last cached values.
func (g *Geometry) Recalculate() {
	var perimeter float64
	for i := range g.Segments {
		s := &g.Segments[i]
		if p1, p2, ok := g.Endpoints(*s); ok {
			s.Length = Distance(p1, p2)
			s.Angle = Bearing(p1, p2)
		}
		perimeter += s.Length
	}
	g.Perimeter = perimeter

	if len(g.Points) >= 3 {
		g.Area = CentroidArea(g.Points)
	} else {
		g.Area = 0
	}
}

func (g *Geometry) touch(structural bool) {
	if structural {
		g.Recalculate()
	}
	g.Version++
	g.UpdatedAt = time.Now().UTC()
	if g.actor != "" {
		g.UpdatedBy = g.actor
	}
}

func (g *Geometry) detachSegments(ids []string) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	for i := range g.Layers {
		g.Layers[i].SegmentIDs = filterIDs(g.Layers[i].SegmentIDs, drop)
	}
	kept := g.Constraints[:0]
	for _, c := range g.Constraints {
		c.SegmentIDs = filterIDs(c.SegmentIDs, drop)
		if len(c.SegmentIDs) > 0 {
			kept = append(kept, c)
		}
	}
	g.Constraints = kept
}

func filterIDs(ids []string, drop map[string]bool) []string {
	out := ids[:0]
	for _, id := range ids {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out
}
