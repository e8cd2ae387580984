package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ============================================================
// Path Parser
// ============================================================

var (
	ErrEmptyPath = errors.New("empty path")
	ErrNoVertex  = errors.New("path has no vertices")
)

var commandRe = regexp.MustCompile(`([MmLlHhVvZz])([^MmLlHhVvZz]*)`)

// Vertex is a path vertex in sketch pixels.
type Vertex struct {
	X float64
	Y float64
}

// Outline is a parsed path. Closed is set by a Z command; the closing vertex
// itself is not repeated.
type Outline struct {
	Vertices []Vertex
	Closed   bool
}

// ParsePath reads the straight-line subset of SVG path data: M, L, H, V and Z in
// absolute and relative form. Implicit repeated pairs after M and L are treated
// as further line-to commands.
func ParsePath(d string) (Outline, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return Outline{}, ErrEmptyPath
	}

	var out Outline
	var cx, cy float64

	for _, match := range commandRe.FindAllStringSubmatch(d, -1) {
		cmd := match[1]
		args := parseCoords(match[2])

		switch cmd {
		case "M", "L":
			for i := 0; i+1 < len(args); i += 2 {
				cx, cy = args[i], args[i+1]
				out.Vertices = append(out.Vertices, Vertex{X: cx, Y: cy})
			}

		case "m", "l":
			for i := 0; i+1 < len(args); i += 2 {
				cx += args[i]
				cy += args[i+1]
				out.Vertices = append(out.Vertices, Vertex{X: cx, Y: cy})
			}

		case "H":
			for _, x := range args {
				cx = x
				out.Vertices = append(out.Vertices, Vertex{X: cx, Y: cy})
			}

		case "h":
			for _, dx := range args {
				cx += dx
				out.Vertices = append(out.Vertices, Vertex{X: cx, Y: cy})
			}

		case "V":
			for _, y := range args {
				cy = y
				out.Vertices = append(out.Vertices, Vertex{X: cx, Y: cy})
			}

		case "v":
			for _, dy := range args {
				cy += dy
				out.Vertices = append(out.Vertices, Vertex{X: cx, Y: cy})
			}

		case "Z", "z":
			out.Closed = true
			if len(out.Vertices) > 0 {
				cx, cy = out.Vertices[0].X, out.Vertices[0].Y
			}
		}
	}

	if len(out.Vertices) == 0 {
		return Outline{}, ErrNoVertex
	}
	return out, nil
}

// parseCoords accepts comma or whitespace separators and skips malformed numbers.
func parseCoords(s string) []float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	s = strings.ReplaceAll(s, ",", " ")
	parts := strings.Fields(s)

	coords := make([]float64, 0, len(parts))
	for _, part := range parts {
		if val, err := strconv.ParseFloat(part, 64); err == nil {
			coords = append(coords, val)
		}
	}
	return coords
}
