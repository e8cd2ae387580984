package snap

import (
	"math"

	"floorplan/internal/geometry/models"
)

// ============================================================
// Result
// ============================================================

type Kind string

const (
	KindWall  Kind = "wall"
	KindEdge  Kind = "edge"
	KindAngle Kind = "angle"
	KindGrid  Kind = "grid"
	KindNone  Kind = "none"
)

// Result is the canonical coordinate for a raw input. Distance is the
// displacement from the raw input in feet.
type Result struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	SnappedTo Kind    `json:"snappedTo"`
	Distance  float64 `json:"distance"`
	SegmentID string  `json:"segmentId,omitempty"`
}

// ============================================================
// Resolver
// ============================================================

// Resolver applies the snap cascade: wall lock, magnetic edge, angle assist, grid.
// It holds no state beyond its config, so Evaluate is safe to call repeatedly.
type Resolver struct {
	cfg Config
}

func New(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

func (r *Resolver) Config() Config {
	return r.cfg
}

// Evaluate maps (x, y) to its snapped position against g. g may be nil.
func (r *Resolver) Evaluate(x, y float64, g *models.Geometry) Result {
	if g != nil {
		if res, ok := r.wallLock(x, y, g); ok {
			return res
		}
		if res, ok := r.magneticEdge(x, y, g); ok {
			return res
		}
		if res, ok := r.angleAssist(x, y, g); ok {
			return res
		}
	}
	return r.grid(x, y)
}

type nearest struct {
	x, y      float64
	dist      float64
	segmentID string
	found     bool
}

// nearestWall walks segments in stored order; ties keep the earliest segment.
func nearestWall(x, y float64, g *models.Geometry) nearest {
	best := nearest{dist: math.MaxFloat64}
	for _, s := range g.Segments {
		p1, p2, ok := g.Endpoints(s)
		if !ok {
			continue
		}
		cx, cy, _, d := models.ClosestOnSegment(x, y, p1, p2)
		if d < best.dist {
			best = nearest{x: cx, y: cy, dist: d, segmentID: s.ID, found: true}
		}
	}
	return best
}

func (r *Resolver) wallLock(x, y float64, g *models.Geometry) (Result, bool) {
	limit := r.cfg.threshold()
	if limit <= 0 {
		return Result{}, false
	}
	n := nearestWall(x, y, g)
	if !n.found || n.dist > limit {
		return Result{}, false
	}
	return Result{X: n.x, Y: n.y, SnappedTo: KindWall, Distance: n.dist, SegmentID: n.segmentID}, true
}

func (r *Resolver) magneticEdge(x, y float64, g *models.Geometry) (Result, bool) {
	if r.cfg.MagneticRadius <= 0 {
		return Result{}, false
	}
	n := nearestWall(x, y, g)
	if !n.found || n.dist > r.cfg.MagneticRadius {
		return Result{}, false
	}
	return Result{X: n.x, Y: n.y, SnappedTo: KindEdge, Distance: n.dist, SegmentID: n.segmentID}, true
}

func (r *Resolver) angleAssist(x, y float64, g *models.Geometry) (Result, bool) {
	limit := r.cfg.threshold()
	if limit <= 0 || r.cfg.AngleTolerance <= 0 {
		return Result{}, false
	}
	last, ok := g.LastPoint()
	if !ok {
		return Result{}, false
	}

	raw := models.Point{X: x, Y: y}
	length := models.Distance(last, raw)
	if length == 0 {
		return Result{}, false
	}

	bearing := models.Bearing(last, raw)
	preferred := models.NormalizeBearing(math.Round(bearing/45) * 45)
	if angularDiff(bearing, preferred) > r.cfg.AngleTolerance {
		return Result{}, false
	}

	sx, sy := models.Project(last, length, preferred)
	moved := math.Hypot(sx-x, sy-y)
	if moved > limit {
		return Result{}, false
	}
	return Result{X: sx, Y: sy, SnappedTo: KindAngle, Distance: moved}, true
}

func (r *Resolver) grid(x, y float64) Result {
	size := r.cfg.GridSize
	if size <= 0 {
		return Result{X: x, Y: y, SnappedTo: KindNone}
	}
	gx := math.Round(x/size) * size
	gy := math.Round(y/size) * size
	return Result{X: gx, Y: gy, SnappedTo: KindGrid, Distance: math.Hypot(gx-x, gy-y)}
}

func angularDiff(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}
