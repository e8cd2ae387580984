package render

import (
	"errors"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"floorplan/internal/geometry/models"
)

// ============================================================
// Renderer
// ============================================================

const (
	DefaultPixelsPerFoot = 20.0
	DefaultMargin        = 40.0
)

var ErrNilGeometry = errors.New("geometry is nil")

type style struct {
	stroke string
	width  float64
	dash   string
}

var kindStyles = map[models.SegmentKind]style{
	models.KindWall:          {stroke: "#000", width: 3},
	models.KindDoor:          {stroke: "#d62728", width: 3},
	models.KindWindow:        {stroke: "#1f77b4", width: 3},
	models.KindOpening:       {stroke: "#ff7f0e", width: 2, dash: "6 4"},
	models.KindReferenceLine: {stroke: "#888", width: 1, dash: "2 4"},
}

// Renderer draws a plan-view SVG preview. Plan Y grows upwards, so it is
// flipped on output.
type Renderer struct {
	scale  float64
	margin float64
}

func NewRenderer(pixelsPerFoot float64) *Renderer {
	if pixelsPerFoot <= 0 {
		pixelsPerFoot = DefaultPixelsPerFoot
	}
	return &Renderer{scale: pixelsPerFoot, margin: DefaultMargin}
}

type frame struct {
	minX, maxY    float64
	width, height float64
	scale, margin float64
}

func (f frame) x(v float64) float64 { return (v-f.minX)*f.scale + f.margin }
func (f frame) y(v float64) float64 { return (f.maxY-v)*f.scale + f.margin }

func (r *Renderer) Render(g *models.Geometry) (string, error) {
	if g == nil {
		return "", ErrNilGeometry
	}

	f := r.frame(g)

	var elements []string
	elements = append(elements, r.renderRoom(g, f)...)
	elements = append(elements, r.renderSegments(g, f)...)
	elements = append(elements, r.renderPoints(g, f)...)
	elements = append(elements, r.renderLabels(g, f)...)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		formatFloat(f.width), formatFloat(f.height), formatFloat(f.width), formatFloat(f.height)))
	builder.WriteString("\n")

	for _, elem := range elements {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

// ============================================================
// Sizing
// ============================================================

// frame fits the drawing to the bounding box of points and free labels.
// Empty or degenerate extents fall back to one foot.
func (r *Renderer) frame(g *models.Geometry) frame {
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	grow := func(x, y float64) {
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}

	for _, p := range g.Points {
		grow(p.X, p.Y)
	}
	for _, l := range g.Labels {
		if l.PointID == "" {
			grow(l.X, l.Y)
		}
	}

	if minX == math.MaxFloat64 {
		minX, minY, maxX, maxY = 0, 0, 1, 1
	}

	spanX := maxX - minX
	spanY := maxY - minY
	if spanX <= 0 {
		spanX = 1
	}
	if spanY <= 0 {
		spanY = 1
	}

	return frame{
		minX:   minX,
		maxY:   maxY,
		width:  spanX*r.scale + 2*r.margin,
		height: spanY*r.scale + 2*r.margin,
		scale:  r.scale,
		margin: r.margin,
	}
}

// ============================================================
// Element renderers
// ============================================================

func (r *Renderer) renderRoom(g *models.Geometry, f frame) []string {
	if !g.ClosedPolygon {
		return nil
	}
	ring := traceRing(g)
	if len(ring) < 3 {
		return nil
	}

	var path strings.Builder
	path.WriteString(`<path id="room-`)
	path.WriteString(g.ID)
	path.WriteString(`" d="M `)
	path.WriteString(formatPoint(f, ring[0]))
	for _, p := range ring[1:] {
		path.WriteString(" L ")
		path.WriteString(formatPoint(f, p))
	}
	path.WriteString(` Z" fill="#f3f0e8" stroke="none" />`)

	return []string{path.String()}
}

func (r *Renderer) renderSegments(g *models.Geometry, f frame) []string {
	var out []string

	for _, s := range g.Segments {
		p1, p2, ok := g.Endpoints(s)
		if !ok {
			continue
		}

		st, known := kindStyles[s.Kind]
		if !known {
			st = kindStyles[models.KindWall]
		}
		dash := ""
		if st.dash != "" {
			dash = fmt.Sprintf(` stroke-dasharray="%s"`, st.dash)
		}

		out = append(out, fmt.Sprintf(`<line id="%s" class="%s" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"%s />`,
			s.ID, s.Kind,
			formatFloat(f.x(p1.X)), formatFloat(f.y(p1.Y)),
			formatFloat(f.x(p2.X)), formatFloat(f.y(p2.Y)),
			st.stroke, formatFloat(st.width), dash))

		if s.Kind == models.KindReferenceLine {
			continue
		}
		mx := f.x((p1.X + p2.X) / 2)
		my := f.y((p1.Y+p2.Y)/2) - 6
		out = append(out, fmt.Sprintf(`<text x="%s" y="%s" font-size="11" text-anchor="middle" fill="#555">%s</text>`,
			formatFloat(mx), formatFloat(my), formatLength(models.Distance(p1, p2))))
	}

	return out
}

func (r *Renderer) renderPoints(g *models.Geometry, f frame) []string {
	out := make([]string, 0, len(g.Points))
	for _, p := range g.Points {
		out = append(out, fmt.Sprintf(`<circle id="%s" cx="%s" cy="%s" r="3" fill="#000" />`,
			p.ID, formatFloat(f.x(p.X)), formatFloat(f.y(p.Y))))
	}
	return out
}

func (r *Renderer) renderLabels(g *models.Geometry, f frame) []string {
	var out []string
	for _, l := range g.Labels {
		x, y := l.X, l.Y
		if l.PointID != "" {
			p, ok := g.PointByID(l.PointID)
			if !ok {
				continue
			}
			x, y = p.X, p.Y
		}
		out = append(out, fmt.Sprintf(`<text id="%s" x="%s" y="%s" font-size="14" fill="#222">%s</text>`,
			l.ID, formatFloat(f.x(x)), formatFloat(f.y(y)), html.EscapeString(l.Text)))
	}
	return out
}

// ============================================================
// Geometry helpers
// ============================================================

// traceRing follows wall-like segments from the first point back to itself.
// When the segments do not form a single ring the insertion order is used.
func traceRing(g *models.Geometry) []models.Point {
	if len(g.Points) == 0 {
		return nil
	}

	adj := make(map[string][]string)
	for _, s := range g.Segments {
		if s.Kind == models.KindReferenceLine {
			continue
		}
		adj[s.P1] = append(adj[s.P1], s.P2)
		adj[s.P2] = append(adj[s.P2], s.P1)
	}

	start := g.Points[0].ID
	ring := []string{start}
	seen := map[string]bool{start: true}
	prev, cur := "", start
	for {
		next := ""
		for _, n := range adj[cur] {
			if n != prev && !seen[n] {
				next = n
				break
			}
		}
		if next == "" {
			break
		}
		ring = append(ring, next)
		seen[next] = true
		prev, cur = cur, next
	}

	closes := false
	for _, n := range adj[cur] {
		if n == start && cur != start {
			closes = true
		}
	}
	if !closes || len(ring) < 3 {
		return append([]models.Point(nil), g.Points...)
	}

	out := make([]models.Point, 0, len(ring))
	for _, id := range ring {
		if p, ok := g.PointByID(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// ============================================================
// Formatting helpers
// ============================================================

func formatFloat(val float64) string {
	return strconv.FormatFloat(math.Round(val*100)/100, 'f', -1, 64)
}

func formatPoint(f frame, p models.Point) string {
	return formatFloat(f.x(p.X)) + " " + formatFloat(f.y(p.Y))
}

// formatLength renders feet as feet and inches, e.g. 12' 6".
func formatLength(feet float64) string {
	totalInches := int(math.Round(feet * 12))
	return fmt.Sprintf(`%d&apos; %d&quot;`, totalInches/12, totalInches%12)
}
