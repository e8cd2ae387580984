package models

import (
	"time"
)

// ============================================================
// Enumerations
// ============================================================

type Mode string

const (
	ModePoints      Mode = "points"
	ModeSketch      Mode = "sketch"
	ModeLaserLegacy Mode = "laser-legacy"
)

type SegmentKind string

const (
	KindWall          SegmentKind = "wall"
	KindDoor          SegmentKind = "door"
	KindWindow        SegmentKind = "window"
	KindOpening       SegmentKind = "opening"
	KindReferenceLine SegmentKind = "reference-line"
)

// Valid reports whether k is one of the known segment kinds.
func (k SegmentKind) Valid() bool {
	switch k {
	case KindWall, KindDoor, KindWindow, KindOpening, KindReferenceLine:
		return true
	}
	return false
}

type ConstraintType string

const (
	ConstraintHorizontal    ConstraintType = "horizontal"
	ConstraintVertical      ConstraintType = "vertical"
	ConstraintLength        ConstraintType = "length"
	ConstraintParallel      ConstraintType = "parallel"
	ConstraintPerpendicular ConstraintType = "perpendicular"
)

// ============================================================
// Geometry primitives
// ============================================================

// Point is a vertex in feet. Z is elevation and stays nil for plan-only captures.
type Point struct {
	ID        string    `json:"id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         *float64  `json:"z,omitempty"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Segment connects two points. Length and Angle are derived and rewritten on every
// structural change.
type Segment struct {
	ID       string      `json:"id"`
	P1       string      `json:"p1"`
	P2       string      `json:"p2"`
	Kind     SegmentKind `json:"kind"`
	Length   float64     `json:"length"`
	Angle    float64     `json:"angle"`
	Material string      `json:"material,omitempty"`
}

// Connects reports whether the segment joins a and b in either direction.
func (s Segment) Connects(a, b string) bool {
	return (s.P1 == a && s.P2 == b) || (s.P1 == b && s.P2 == a)
}

// SharesEndpoint reports whether s and o have a point id in common.
func (s Segment) SharesEndpoint(o Segment) bool {
	return s.P1 == o.P1 || s.P1 == o.P2 || s.P2 == o.P1 || s.P2 == o.P2
}

type Label struct {
	ID      string  `json:"id"`
	Text    string  `json:"text"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	PointID string  `json:"pointId,omitempty"`
}

type Layer struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Visible    bool     `json:"visible"`
	SegmentIDs []string `json:"segmentIds"`
}

type Constraint struct {
	ID         string         `json:"id"`
	Type       ConstraintType `json:"type"`
	SegmentIDs []string       `json:"segmentIds"`
	Value      *float64       `json:"value,omitempty"`
}

// ============================================================
// Aggregate
// ============================================================

// Geometry is the room layout aggregate. Points and Segments keep insertion order,
// which is also the capture order for walk exports.
type Geometry struct {
	ID            string       `json:"id"`
	Mode          Mode         `json:"mode"`
	Points        []Point      `json:"points"`
	Segments      []Segment    `json:"segments"`
	Labels        []Label      `json:"labels"`
	Layers        []Layer      `json:"layers"`
	Constraints   []Constraint `json:"constraints"`
	ClosedPolygon bool         `json:"closedPolygon"`
	Perimeter     float64      `json:"perimeter"`
	Area          float64      `json:"area"`
	Version       int64        `json:"version"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	UpdatedBy     string       `json:"updatedBy,omitempty"`

	actor string
}
