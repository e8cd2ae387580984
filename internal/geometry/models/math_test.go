package models

import (
	"math"
	"testing"
)

func pt(x, y float64) Point { return Point{X: x, Y: y} }

func TestNormalizeBearing(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		360:  0,
		-90:  270,
		450:  90,
		-720: 0,
	}
	for in, want := range cases {
		if got := NormalizeBearing(in); got != want {
			t.Errorf("NormalizeBearing(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestBearingAndProject(t *testing.T) {
	origin := pt(0, 0)
	if got := Bearing(origin, pt(0, 5)); math.Abs(got-90) > 1e-9 {
		t.Fatalf("bearing = %v, want 90", got)
	}
	if got := Bearing(origin, pt(-1, 0)); math.Abs(got-180) > 1e-9 {
		t.Fatalf("bearing = %v, want 180", got)
	}
	x, y := Project(pt(1, 1), 10, 90)
	if math.Abs(x-1) > 1e-9 || math.Abs(y-11) > 1e-9 {
		t.Fatalf("project = (%v, %v)", x, y)
	}
}

func TestClosestOnSegment(t *testing.T) {
	a, b := pt(0, 0), pt(10, 0)

	cx, cy, tt, d := ClosestOnSegment(4, 3, a, b)
	if cx != 4 || cy != 0 || tt != 0.4 || d != 3 {
		t.Fatalf("got (%v, %v) t=%v d=%v", cx, cy, tt, d)
	}

	cx, _, tt, d = ClosestOnSegment(13, 4, a, b)
	if cx != 10 || tt != 1 || d != 5 {
		t.Fatalf("clamped got x=%v t=%v d=%v", cx, tt, d)
	}

	_, _, _, d = ClosestOnSegment(3, 4, a, a)
	if d != 5 {
		t.Fatalf("degenerate segment distance = %v", d)
	}
}

func TestSegmentsIntersect(t *testing.T) {
	cases := []struct {
		name       string
		a, b, c, d Point
		want       bool
	}{
		{"cross", pt(0, 0), pt(10, 10), pt(0, 10), pt(10, 0), true},
		{"parallel", pt(0, 0), pt(10, 0), pt(0, 1), pt(10, 1), false},
		{"disjoint", pt(0, 0), pt(1, 1), pt(5, 5), pt(6, 4), false},
		{"collinear overlap", pt(0, 0), pt(10, 0), pt(5, 0), pt(15, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SegmentsIntersect(tc.a, tc.b, tc.c, tc.d); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestShoelaceArea(t *testing.T) {
	square := []Point{pt(0, 0), pt(4, 0), pt(4, 4), pt(0, 4)}
	if got := ShoelaceArea(square); got != 16 {
		t.Fatalf("area = %v", got)
	}
	reversed := []Point{pt(0, 4), pt(4, 4), pt(4, 0), pt(0, 0)}
	if got := ShoelaceArea(reversed); got != 16 {
		t.Fatalf("clockwise area = %v", got)
	}
	if got := ShoelaceArea(square[:2]); got != 0 {
		t.Fatalf("two points area = %v", got)
	}
}

func TestCentroidArea(t *testing.T) {
	shuffled := []Point{pt(12, 10), pt(0, 0), pt(0, 10), pt(12, 0)}
	if got := CentroidArea(shuffled); got != 120 {
		t.Fatalf("area = %v, want 120", got)
	}
	if c := Centroid(shuffled); c.X != 6 || c.Y != 5 {
		t.Fatalf("centroid = %+v", c)
	}
	if got := shuffled[0]; got.X != 12 || got.Y != 10 {
		t.Fatalf("sorting must not reorder the input")
	}
}
