package editor

import (
	"errors"
	"fmt"

	"floorplan/internal/geometry/models"
	"floorplan/internal/geometry/snap"
	"floorplan/internal/geometry/validate"
)

// ============================================================
// Editor
// ============================================================

var ErrFinalized = errors.New("geometry is finalized; reopen it first")

// Outcome describes what happened to a candidate mutation. Rejections carry the
// blocking results; accepted mutations may still carry warnings.
type Outcome struct {
	Accepted bool             `json:"accepted"`
	Results  validate.Results `json:"results"`
	Snap     *snap.Result     `json:"snap,omitempty"`
	Point    *models.Point    `json:"point,omitempty"`
	Segment  *models.Segment  `json:"segment,omitempty"`
}

// Editor gates manual edits: raw input is snapped, validated, then committed.
// Like the walk builder it assumes a single owner.
type Editor struct {
	g        *models.Geometry
	resolver *snap.Resolver
	val      *validate.Validator
}

func New(g *models.Geometry, resolver *snap.Resolver, val *validate.Validator, actor string) *Editor {
	if g == nil {
		g = models.New(models.ModePoints, actor)
	}
	g.SetActor(actor)
	return &Editor{g: g, resolver: resolver, val: val}
}

// Geometry returns a copy of the current state.
func (e *Editor) Geometry() *models.Geometry {
	return e.g.Clone()
}

func (e *Editor) writable() error {
	if e.g.ClosedPolygon {
		return ErrFinalized
	}
	return nil
}

// ============================================================
// Points
// ============================================================

// PreviewPoint snaps (x, y) and checks the placement without committing it.
func (e *Editor) PreviewPoint(x, y float64) (snap.Result, *validate.Result) {
	res := e.resolver.Evaluate(x, y, e.g)
	return res, e.val.ValidatePointPlacement(res.X, res.Y, e.g)
}

// PlacePoint snaps and commits a point. A duplicate placement is a warning, so
// the point is still added.
func (e *Editor) PlacePoint(x, y float64, label string) (Outcome, error) {
	if err := e.writable(); err != nil {
		return Outcome{}, err
	}
	res, warn := e.PreviewPoint(x, y)
	p := e.g.AddPoint(res.X, res.Y, label)

	out := Outcome{Accepted: true, Results: validate.Results{}, Snap: &res, Point: &p}
	if warn != nil {
		out.Results = append(out.Results, *warn)
	}
	return out, nil
}

// MovePoint moves a point to the exact coordinates given. The move is rejected
// when it would introduce new error-severity findings.
func (e *Editor) MovePoint(id string, x, y float64) (Outcome, error) {
	if err := e.writable(); err != nil {
		return Outcome{}, err
	}
	return e.commit(func(g *models.Geometry) error {
		return g.MovePoint(id, x, y)
	})
}

func (e *Editor) RemovePoint(id string) (Outcome, error) {
	if err := e.writable(); err != nil {
		return Outcome{}, err
	}
	if _, err := e.g.RemovePoint(id); err != nil {
		return Outcome{}, err
	}
	return Outcome{Accepted: true, Results: e.val.Validate(e.g)}, nil
}

// ============================================================
// Segments
// ============================================================

// Connect adds a segment between two points unless the validator objects.
// Connecting already connected points is a no-op that reports the duplicate.
func (e *Editor) Connect(p1, p2 string, kind models.SegmentKind) (Outcome, error) {
	if err := e.writable(); err != nil {
		return Outcome{}, err
	}
	if kind != "" && !kind.Valid() {
		return Outcome{}, fmt.Errorf("connect: %w: %q", models.ErrInvalidKind, kind)
	}

	if r := e.val.ValidateSegmentCreation(p1, p2, e.g); r != nil {
		out := Outcome{Results: validate.Results{*r}}
		if r.Code == validate.CodeDuplicateSegment {
			if s, ok := e.g.HasSegmentBetween(p1, p2); ok {
				out.Segment = &s
			}
		}
		return out, nil
	}

	s, err := e.g.AddSegment(p1, p2, kind)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Accepted: true, Results: validate.Results{}, Segment: &s}, nil
}

func (e *Editor) RemoveSegment(id string) (Outcome, error) {
	if err := e.writable(); err != nil {
		return Outcome{}, err
	}
	if err := e.g.RemoveSegment(id); err != nil {
		return Outcome{}, err
	}
	return Outcome{Accepted: true, Results: e.val.Validate(e.g)}, nil
}

func (e *Editor) SetMaterial(segmentID, material string) error {
	return e.g.SetMaterial(segmentID, material)
}

// ============================================================
// Labels
// ============================================================

func (e *Editor) SetLabel(l models.Label) (models.Label, error) {
	if l.PointID != "" {
		if _, ok := e.g.PointByID(l.PointID); !ok {
			return models.Label{}, fmt.Errorf("label anchor %s: %w", l.PointID, models.ErrPointNotFound)
		}
	}
	return e.g.SetLabel(l), nil
}

func (e *Editor) RemoveLabel(id string) error {
	return e.g.RemoveLabel(id)
}

func (e *Editor) AddConstraint(c models.Constraint) (models.Constraint, error) {
	return e.g.AddConstraint(c)
}

// ============================================================
// Finalization
// ============================================================

// Close finalizes the polygon when the closure check and the full validation
// both pass.
func (e *Editor) Close() (Outcome, error) {
	if err := e.writable(); err != nil {
		return Outcome{}, err
	}
	if r := e.val.ValidatePolygonClosure(e.g); r != nil {
		return Outcome{Results: validate.Results{*r}}, nil
	}

	candidate := e.g.Clone()
	candidate.ClosedPolygon = true
	results := e.val.Validate(candidate)
	if results.HasErrors() {
		return Outcome{Results: results}, nil
	}

	e.g.SetClosed(true)
	return Outcome{Accepted: true, Results: results}, nil
}

// Reopen clears the finalized flag so corrective edits are possible.
func (e *Editor) Reopen() {
	if e.g.ClosedPolygon {
		e.g.SetClosed(false)
	}
}

// commit applies mutate to a copy, validates it and only then applies it for real.
func (e *Editor) commit(mutate func(*models.Geometry) error) (Outcome, error) {
	before := len(e.val.Validate(e.g).Errors())

	candidate := e.g.Clone()
	if err := mutate(candidate); err != nil {
		return Outcome{}, err
	}
	results := e.val.Validate(candidate)
	if len(results.Errors()) > before {
		return Outcome{Results: results}, nil
	}

	if err := mutate(e.g); err != nil {
		return Outcome{}, err
	}
	return Outcome{Accepted: true, Results: results}, nil
}
