package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"floorplan/internal/geometry/models"
)

// ============================================================
// XML Structures
// ============================================================

type svgDoc struct {
	XMLName xml.Name `xml:"svg"`
	svgNode
}

// svgNode holds the shapes of the root element or of a <g> group.
type svgNode struct {
	Rects  []svgRect `xml:"rect"`
	Paths  []svgPath `xml:"path"`
	Texts  []svgText `xml:"text"`
	Groups []svgNode `xml:"g"`
}

type svgRect struct {
	ID     string  `xml:"id,attr"`
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

type svgPath struct {
	ID string `xml:"id,attr"`
	D  string `xml:"d,attr"`
}

type svgText struct {
	ID      string  `xml:"id,attr"`
	X       float64 `xml:"x,attr"`
	Y       float64 `xml:"y,attr"`
	Content string  `xml:",chardata"`
}

// ============================================================
// Elements
// ============================================================

// ElementRoom marks a closed room outline; every other element maps to a segment kind.
const ElementRoom = "room"

// Element is a classified SVG shape. Exactly one of Rect and Path is set.
type Element struct {
	ID   string
	Type string
	Rect *Rect
	Path string
}

type Rect struct {
	X, Y, Width, Height float64
}

// Text is a free-standing label in sketch pixels.
type Text struct {
	Content string
	X, Y    float64
}

// Document is what ParseSVG recognised in a sketch export.
type Document struct {
	Elements []Element
	Texts    []Text
}

// ParseSVG decodes an SVG sketch and keeps the elements whose ids follow the
// Wall_/Door_/Window_/Room_ naming convention. Nested groups are flattened.
func ParseSVG(r io.Reader) (Document, error) {
	var svg svgDoc
	if err := xml.NewDecoder(r).Decode(&svg); err != nil {
		return Document{}, fmt.Errorf("decode svg: %w", err)
	}

	var doc Document
	collect(&doc, svg.svgNode)
	return doc, nil
}

func collect(doc *Document, node svgNode) {
	for _, rect := range node.Rects {
		elemType := classifyElementByID(rect.ID)
		if elemType == "" {
			continue
		}
		doc.Elements = append(doc.Elements, Element{
			ID:   rect.ID,
			Type: elemType,
			Rect: &Rect{X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height},
		})
	}

	for _, path := range node.Paths {
		elemType := classifyElementByID(path.ID)
		if elemType == "" {
			continue
		}
		doc.Elements = append(doc.Elements, Element{ID: path.ID, Type: elemType, Path: path.D})
	}

	for _, text := range node.Texts {
		content := strings.TrimSpace(text.Content)
		if content == "" {
			continue
		}
		doc.Texts = append(doc.Texts, Text{Content: content, X: text.X, Y: text.Y})
	}

	for _, child := range node.Groups {
		collect(doc, child)
	}
}

func classifyElementByID(id string) string {
	switch {
	case strings.HasPrefix(id, "Wall_"):
		return string(models.KindWall)
	case strings.HasPrefix(id, "Door_"):
		return string(models.KindDoor)
	case strings.HasPrefix(id, "Window_"):
		return string(models.KindWindow)
	case strings.HasPrefix(id, "Opening_"):
		return string(models.KindOpening)
	case strings.HasPrefix(id, "Ref_"):
		return string(models.KindReferenceLine)
	case strings.HasPrefix(id, "Room_"),
		strings.HasSuffix(id, "_room"), // Hall_room, Toilet_room
		strings.HasSuffix(id, "_Room"):
		return ElementRoom
	}
	return ""
}
