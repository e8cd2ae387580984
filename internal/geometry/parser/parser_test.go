package parser

import (
	"errors"
	"strings"
	"testing"

	"floorplan/internal/geometry/models"
)

func TestParsePath(t *testing.T) {
	cases := []struct {
		name   string
		d      string
		want   []Vertex
		closed bool
	}{
		{
			name:   "absolute with z",
			d:      "M0 0 H240 V200 H0 Z",
			want:   []Vertex{{0, 0}, {240, 0}, {240, 200}, {0, 200}},
			closed: true,
		},
		{
			name: "relative commands",
			d:    "m10,10 l20,0 v5 h-5",
			want: []Vertex{{10, 10}, {30, 10}, {30, 15}, {25, 15}},
		},
		{
			name: "implicit line-to pairs",
			d:    "M0 0 10 0 10 10",
			want: []Vertex{{0, 0}, {10, 0}, {10, 10}},
		},
		{
			name: "malformed numbers are skipped",
			d:    "M0 0 L5 x 5",
			want: []Vertex{{0, 0}, {5, 5}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePath(tc.d)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got.Closed != tc.closed {
				t.Fatalf("closed = %v, want %v", got.Closed, tc.closed)
			}
			if len(got.Vertices) != len(tc.want) {
				t.Fatalf("vertices = %v, want %v", got.Vertices, tc.want)
			}
			for i := range tc.want {
				if got.Vertices[i] != tc.want[i] {
					t.Fatalf("vertex %d = %v, want %v", i, got.Vertices[i], tc.want[i])
				}
			}
		})
	}
}

func TestParsePathErrors(t *testing.T) {
	if _, err := ParsePath("   "); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
	if _, err := ParsePath("Z"); !errors.Is(err, ErrNoVertex) {
		t.Fatalf("expected ErrNoVertex, got %v", err)
	}
}

func importer(t *testing.T) *Importer {
	t.Helper()
	imp, err := NewImporter(20)
	if err != nil {
		t.Fatalf("importer: %v", err)
	}
	return imp
}

func TestFromPathClosedRoom(t *testing.T) {
	paths := map[string]string{
		"z command":      "M0 0 H240 V200 H0 Z",
		"repeated first": "M0 0 L240 0 L240 200 L0 200 L0 0",
		"near duplicate": "M0 0 L2 0 L240 0 L240 200 L0 200 L1 1",
	}

	for name, d := range paths {
		t.Run(name, func(t *testing.T) {
			g, err := importer(t).FromPath(d, "sketcher")
			if err != nil {
				t.Fatalf("import: %v", err)
			}
			if g.Mode != models.ModeSketch || g.Version != 1 || g.UpdatedBy != "sketcher" {
				t.Fatalf("mode=%s version=%d by=%q", g.Mode, g.Version, g.UpdatedBy)
			}
			if len(g.Points) != 4 || len(g.Segments) != 4 {
				t.Fatalf("points=%d segments=%d", len(g.Points), len(g.Segments))
			}
			if !g.ClosedPolygon || g.Area != 120 || g.Perimeter != 44 {
				t.Fatalf("closed=%v area=%v perimeter=%v", g.ClosedPolygon, g.Area, g.Perimeter)
			}
		})
	}
}

func TestFromPathFlipsY(t *testing.T) {
	g, err := importer(t).FromPath("M0 0 L0 100", "")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if g.ClosedPolygon || len(g.Segments) != 1 {
		t.Fatalf("open path should stay open with one segment")
	}
	if p := g.Points[1]; p.X != 0 || p.Y != -5 {
		t.Fatalf("second point = (%v, %v), want (0, -5)", p.X, p.Y)
	}
}

func TestNewImporterScale(t *testing.T) {
	if _, err := NewImporter(0); !errors.Is(err, ErrInvalidScale) {
		t.Fatalf("expected ErrInvalidScale, got %v", err)
	}
}

const sketchSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="400" height="300">
  <path id="Room_1" d="M0 0 H240 V200 H0 Z"/>
  <g id="openings">
    <rect id="Door_1" x="80" y="-2" width="40" height="4"/>
    <rect id="Window_1" x="238" y="60" width="4" height="60"/>
  </g>
  <rect id="Wall_1" x="-2" y="-2" width="244" height="4"/>
  <rect id="Furniture_1" x="10" y="10" width="20" height="20"/>
  <text x="100" y="100">Kitchen</text>
</svg>`

func TestFromSVG(t *testing.T) {
	g, err := importer(t).FromSVG(strings.NewReader(sketchSVG), "")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !g.ClosedPolygon {
		t.Fatalf("room outline should close the geometry")
	}

	kinds := map[models.SegmentKind]int{}
	for _, s := range g.Segments {
		kinds[s.Kind]++
	}
	// Wall_1 lands on the room's first edge and is merged into it.
	if kinds[models.KindWall] != 4 || kinds[models.KindDoor] != 1 || kinds[models.KindWindow] != 1 {
		t.Fatalf("segment kinds = %v", kinds)
	}

	if len(g.Labels) != 1 || g.Labels[0].Text != "Kitchen" || g.Labels[0].X != 5 || g.Labels[0].Y != -5 {
		t.Fatalf("labels = %+v", g.Labels)
	}
}

func TestFromSVGErrors(t *testing.T) {
	imp := importer(t)
	if _, err := imp.FromSVG(strings.NewReader(`<svg><rect id="Sofa" width="1" height="1"/></svg>`), ""); !errors.Is(err, ErrNoElements) {
		t.Fatalf("expected ErrNoElements, got %v", err)
	}
	if _, err := imp.FromSVG(strings.NewReader(`not xml`), ""); err == nil {
		t.Fatalf("expected a decode error")
	}
}
