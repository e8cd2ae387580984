package models

import (
	"math"
	"sort"
)

// ============================================================
// Distances & bearings
// ============================================================

func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// NormalizeBearing maps any angle in degrees into [0, 360).
func NormalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg == 360 {
		return 0
	}
	return deg
}

// Bearing returns the direction from a to b in degrees. 0 points along +X and
// angles grow counter-clockwise.
func Bearing(a, b Point) float64 {
	return NormalizeBearing(math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi)
}

// Project moves from p by distance along bearing (degrees).
func Project(p Point, distance, bearing float64) (float64, float64) {
	rad := bearing * math.Pi / 180
	return p.X + distance*math.Cos(rad), p.Y + distance*math.Sin(rad)
}

// ClosestOnSegment returns the point of segment ab nearest to (x, y), the
// parametric offset t in [0, 1] and the distance to it.
func ClosestOnSegment(x, y float64, a, b Point) (cx, cy, t, dist float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy

	if lenSq == 0 {
		return a.X, a.Y, 0, math.Hypot(x-a.X, y-a.Y)
	}

	t = ((x-a.X)*dx + (y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))

	cx = a.X + t*dx
	cy = a.Y + t*dy
	return cx, cy, t, math.Hypot(x-cx, y-cy)
}

// ============================================================
// Orientation & intersection
// ============================================================

func ccw(a, b, c Point) bool {
	return (c.Y-a.Y)*(b.X-a.X) > (b.Y-a.Y)*(c.X-a.X)
}

// SegmentsIntersect applies the CCW orientation test to both ordered triples.
// Touching or collinear configurations are not reported.
func SegmentsIntersect(a, b, c, d Point) bool {
	return ccw(a, c, d) != ccw(b, c, d) && ccw(a, b, c) != ccw(a, b, d)
}

// ============================================================
// Polygon helpers
// ============================================================

// ShoelaceArea returns the absolute area of the polygon given by pts in order.
func ShoelaceArea(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// Centroid is the vertex mean, not the area centroid.
func Centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var sumX, sumY float64
	for _, p := range pts {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(pts))
	return Point{X: sumX / n, Y: sumY / n}
}

// SortByCentroidAngle returns a copy of pts ordered by angle around their centroid.
// The ordering is only a valid boundary walk for star-convex layouts.
func SortByCentroidAngle(pts []Point) []Point {
	out := append([]Point(nil), pts...)
	c := Centroid(out)
	sort.SliceStable(out, func(i, j int) bool {
		ai := math.Atan2(out[i].Y-c.Y, out[i].X-c.X)
		aj := math.Atan2(out[j].Y-c.Y, out[j].X-c.X)
		return ai < aj
	})
	return out
}

// CentroidArea is the shoelace area over the centroid-angle ordering.
func CentroidArea(pts []Point) float64 {
	return ShoelaceArea(SortByCentroidAngle(pts))
}
