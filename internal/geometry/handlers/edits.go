package handlers

import (
	"net/http"

	"floorplan/internal/geometry/editor"
	"floorplan/internal/geometry/models"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Edit Session Handlers
// ============================================================

type pointRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}

type segmentRequest struct {
	P1   string             `json:"p1"`
	P2   string             `json:"p2"`
	Kind models.SegmentKind `json:"kind"`
}

type materialRequest struct {
	Material string `json:"material"`
}

// OpenEditor starts an edit session on a stored geometry. Use "new" as the id
// for an empty drawing. ?preset= overrides the configured snap preset.
func (h *Handler) OpenEditor(c fiber.Ctx) error {
	view, err := h.svc.OpenEditor(c.Context(), c.Params("id"), c.Query("preset"), actor(c))
	if err != nil {
		return h.fail(c, err, nil)
	}
	return c.Status(http.StatusCreated).JSON(view)
}

func (h *Handler) GetEdit(c fiber.Ctx) error {
	g, err := h.svc.EditGeometry(c.Params("id"))
	if err != nil {
		return h.fail(c, err, nil)
	}
	return c.JSON(g)
}

func (h *Handler) DiscardEdit(c fiber.Ctx) error {
	if err := h.svc.DiscardEdit(c.Params("id")); err != nil {
		return h.fail(c, err, nil)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *Handler) PreviewPoint(c fiber.Ctx) error {
	var req pointRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	res, finding, err := h.svc.PreviewPoint(c.Params("id"), req.X, req.Y)
	if err != nil {
		return h.fail(c, err, nil)
	}
	return c.JSON(fiber.Map{"snap": res, "finding": finding})
}

func (h *Handler) PlacePoint(c fiber.Ctx) error {
	var req pointRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	out, err := h.svc.PlacePoint(c.Params("id"), req.X, req.Y, req.Label)
	return h.outcome(c, out, err)
}

func (h *Handler) MovePoint(c fiber.Ctx) error {
	var req pointRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	out, err := h.svc.MovePoint(c.Params("id"), c.Params("pointId"), req.X, req.Y)
	return h.outcome(c, out, err)
}

func (h *Handler) RemovePoint(c fiber.Ctx) error {
	out, err := h.svc.RemovePoint(c.Params("id"), c.Params("pointId"))
	return h.outcome(c, out, err)
}

func (h *Handler) Connect(c fiber.Ctx) error {
	var req segmentRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if req.Kind == "" {
		req.Kind = models.KindWall
	}
	out, err := h.svc.Connect(c.Params("id"), req.P1, req.P2, req.Kind)
	return h.outcome(c, out, err)
}

func (h *Handler) RemoveSegment(c fiber.Ctx) error {
	out, err := h.svc.RemoveSegment(c.Params("id"), c.Params("segmentId"))
	return h.outcome(c, out, err)
}

func (h *Handler) SetMaterial(c fiber.Ctx) error {
	var req materialRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.svc.SetMaterial(c.Params("id"), c.Params("segmentId"), req.Material); err != nil {
		return h.fail(c, err, nil)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *Handler) SetLabel(c fiber.Ctx) error {
	var req models.Label
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if req.Text == "" {
		return badRequest(c, "text required")
	}

	l, err := h.svc.SetLabel(c.Params("id"), req)
	if err != nil {
		return h.fail(c, err, nil)
	}
	return c.JSON(l)
}

func (h *Handler) CloseEdit(c fiber.Ctx) error {
	out, err := h.svc.CloseEdit(c.Params("id"))
	return h.outcome(c, out, err)
}

func (h *Handler) ReopenEdit(c fiber.Ctx) error {
	g, err := h.svc.ReopenEdit(c.Params("id"))
	if err != nil {
		return h.fail(c, err, nil)
	}
	return c.JSON(g)
}

// CommitEdit stores the session's geometry and ends the session.
func (h *Handler) CommitEdit(c fiber.Ctx) error {
	g, results, err := h.svc.CommitEdit(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, fiber.Map{"geometry": g, "results": results})
	}
	return c.JSON(fiber.Map{
		"geometry": g,
		"results":  results,
	})
}

// outcome answers 200 for accepted mutations and 422 for rejected ones; both
// carry the findings.
func (h *Handler) outcome(c fiber.Ctx, out editor.Outcome, err error) error {
	if err != nil {
		return h.fail(c, err, nil)
	}
	if !out.Accepted {
		return c.Status(http.StatusUnprocessableEntity).JSON(out)
	}
	return c.JSON(out)
}
