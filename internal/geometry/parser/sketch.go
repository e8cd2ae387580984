package parser

import (
	"errors"
	"fmt"
	"io"
	"math"

	"floorplan/internal/geometry/models"
)

// ============================================================
// Sketch Importer
// ============================================================

// DefaultMergeTolerance is the radius in feet within which sketch vertices are
// treated as the same point.
const DefaultMergeTolerance = 0.25

var (
	ErrInvalidScale = errors.New("pixels per foot must be positive")
	ErrNoElements   = errors.New("sketch contains no recognised elements")
)

// Importer converts sketch pixels into a sketch-mode geometry in feet. Sketch Y
// grows downwards, plan Y grows upwards, so Y is flipped on the way in.
type Importer struct {
	pixelsPerFoot float64
	tolerance     float64
}

type Option func(*Importer)

func WithMergeTolerance(feet float64) Option {
	return func(i *Importer) { i.tolerance = feet }
}

func NewImporter(pixelsPerFoot float64, opts ...Option) (*Importer, error) {
	if pixelsPerFoot <= 0 {
		return nil, ErrInvalidScale
	}
	imp := &Importer{pixelsPerFoot: pixelsPerFoot, tolerance: DefaultMergeTolerance}
	for _, opt := range opts {
		opt(imp)
	}
	return imp, nil
}

// FromPath imports a single path as a chain of walls. A Z command, or a last
// vertex landing on the first, closes the room.
func (imp *Importer) FromPath(d, actor string) (*models.Geometry, error) {
	outline, err := ParsePath(d)
	if err != nil {
		return nil, err
	}

	b := imp.newBuilder(actor)
	closed, err := b.addOutline(outline, models.KindWall)
	if err != nil {
		return nil, err
	}
	return b.finish(closed), nil
}

// FromSVG imports a sketch document. Room outlines become closed wall rings;
// walls, doors and windows become segments along their centre line.
func (imp *Importer) FromSVG(r io.Reader, actor string) (*models.Geometry, error) {
	doc, err := ParseSVG(r)
	if err != nil {
		return nil, err
	}
	if len(doc.Elements) == 0 {
		return nil, ErrNoElements
	}

	b := imp.newBuilder(actor)
	closed := false
	for _, el := range doc.Elements {
		if el.Type == ElementRoom {
			ok, err := b.addRoom(el)
			if err != nil {
				return nil, fmt.Errorf("room %s: %w", el.ID, err)
			}
			closed = closed || ok
			continue
		}
		if err := b.addCenterline(el); err != nil {
			return nil, fmt.Errorf("%s %s: %w", el.Type, el.ID, err)
		}
	}

	for _, t := range doc.Texts {
		x, y := imp.toFeet(Vertex{X: t.X, Y: t.Y})
		b.g.SetLabel(models.Label{Text: t.Content, X: x, Y: y})
	}

	return b.finish(closed), nil
}

func (imp *Importer) toFeet(v Vertex) (float64, float64) {
	x := v.X / imp.pixelsPerFoot
	y := -v.Y / imp.pixelsPerFoot
	if y == 0 {
		y = 0 // no negative zero in exports
	}
	return x, y
}

// ============================================================
// Geometry builder
// ============================================================

type builder struct {
	imp *Importer
	g   *models.Geometry
}

func (imp *Importer) newBuilder(actor string) *builder {
	return &builder{imp: imp, g: models.New(models.ModeSketch, actor)}
}

// findOrCreatePoint reuses any existing point within the merge tolerance.
func (b *builder) findOrCreatePoint(v Vertex) string {
	x, y := b.imp.toFeet(v)
	target := models.Point{X: x, Y: y}
	for _, p := range b.g.Points {
		if models.Distance(p, target) <= b.imp.tolerance {
			return p.ID
		}
	}
	return b.g.AddPoint(x, y, "").ID
}

func (b *builder) connect(p1, p2 string, kind models.SegmentKind) error {
	if p1 == p2 {
		return nil
	}
	if _, ok := b.g.HasSegmentBetween(p1, p2); ok {
		return nil
	}
	_, err := b.g.AddSegment(p1, p2, kind)
	return err
}

// addOutline chains the outline's vertices and reports whether it formed a
// closed ring of at least three distinct points.
func (b *builder) addOutline(o Outline, kind models.SegmentKind) (bool, error) {
	var ids []string
	for _, v := range o.Vertices {
		id := b.findOrCreatePoint(v)
		if len(ids) > 0 && ids[len(ids)-1] == id {
			continue
		}
		ids = append(ids, id)
	}

	closed := o.Closed
	if len(ids) > 1 && ids[0] == ids[len(ids)-1] {
		ids = ids[:len(ids)-1]
		closed = true
	}

	for i := 0; i+1 < len(ids); i++ {
		if err := b.connect(ids[i], ids[i+1], kind); err != nil {
			return false, err
		}
	}

	if !closed || len(ids) < 3 {
		return false, nil
	}
	return true, b.connect(ids[len(ids)-1], ids[0], kind)
}

func (b *builder) addRoom(el Element) (bool, error) {
	if el.Rect != nil {
		r := el.Rect
		return b.addOutline(Outline{
			Vertices: []Vertex{
				{X: r.X, Y: r.Y},
				{X: r.X + r.Width, Y: r.Y},
				{X: r.X + r.Width, Y: r.Y + r.Height},
				{X: r.X, Y: r.Y + r.Height},
			},
			Closed: true,
		}, models.KindWall)
	}

	outline, err := ParsePath(el.Path)
	if err != nil {
		return false, err
	}
	outline.Closed = true
	return b.addOutline(outline, models.KindWall)
}

// addCenterline reduces a thick wall, door or window shape to the line along
// its long side.
func (b *builder) addCenterline(el Element) error {
	var minX, minY, maxX, maxY float64

	if el.Rect != nil {
		minX, minY = el.Rect.X, el.Rect.Y
		maxX, maxY = el.Rect.X+el.Rect.Width, el.Rect.Y+el.Rect.Height
	} else {
		outline, err := ParsePath(el.Path)
		if err != nil {
			return err
		}
		minX, maxX = outline.Vertices[0].X, outline.Vertices[0].X
		minY, maxY = outline.Vertices[0].Y, outline.Vertices[0].Y
		for _, v := range outline.Vertices {
			minX = math.Min(minX, v.X)
			maxX = math.Max(maxX, v.X)
			minY = math.Min(minY, v.Y)
			maxY = math.Max(maxY, v.Y)
		}
	}

	width := maxX - minX
	height := maxY - minY

	var p1, p2 Vertex
	if width >= height {
		midY := minY + height/2
		p1, p2 = Vertex{X: minX, Y: midY}, Vertex{X: maxX, Y: midY}
	} else {
		midX := minX + width/2
		p1, p2 = Vertex{X: midX, Y: minY}, Vertex{X: midX, Y: maxY}
	}

	return b.connect(b.findOrCreatePoint(p1), b.findOrCreatePoint(p2), models.SegmentKind(el.Type))
}

// finish marks the room closed. Imported geometries start at version 1.
func (b *builder) finish(closed bool) *models.Geometry {
	if closed {
		b.g.SetClosed(true)
	}
	b.g.Version = 1
	return b.g
}
