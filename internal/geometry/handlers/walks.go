package handlers

import (
	"net/http"
	"strconv"

	"floorplan/internal/geometry/measure"
	"floorplan/internal/geometry/service"
	"floorplan/internal/geometry/walk"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Walk Capture Handlers
// ============================================================

type stepRequest struct {
	Distance float64          `json:"distance"`
	Bearing  *float64         `json:"bearing,omitempty"`
	Reading  *measure.Reading `json:"reading,omitempty"`
}

type captureRequest struct {
	Bearing *float64 `json:"bearing,omitempty"`
}

type adjustRequest struct {
	Distance float64 `json:"distance"`
}

func (h *Handler) StartWalk(c fiber.Ctx) error {
	var req service.StartWalkRequest
	if len(c.Body()) > 0 {
		if err := decode(c, &req); err != nil {
			return badRequest(c, err.Error())
		}
	}
	req.Actor = actor(c)

	snapshot, err := h.svc.StartWalk(req)
	if err != nil {
		return h.fail(c, err, nil)
	}
	return c.Status(http.StatusCreated).JSON(snapshot)
}

func (h *Handler) GetWalk(c fiber.Ctx) error {
	snapshot, err := h.svc.Walk(c.Params("id"))
	if err != nil {
		return h.fail(c, err, nil)
	}
	return c.JSON(snapshot)
}

// RecordStep takes either a manual {distance, bearing?} or a device reading
// pushed by the client as {reading: {...}}.
func (h *Handler) RecordStep(c fiber.Ctx) error {
	var req stepRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	var (
		step     walk.Step
		snapshot walk.Snapshot
		err      error
	)
	if req.Reading != nil {
		step, snapshot, err = h.svc.RecordReading(c.Params("id"), *req.Reading)
	} else {
		step, snapshot, err = h.svc.RecordStep(c.Params("id"), req.Distance, req.Bearing)
	}
	if err != nil {
		return h.fail(c, err, nil)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"step": step, "walk": snapshot})
}

// CaptureStep pulls the next reading from the active device.
func (h *Handler) CaptureStep(c fiber.Ctx) error {
	var req captureRequest
	if len(c.Body()) > 0 {
		if err := decode(c, &req); err != nil {
			return badRequest(c, err.Error())
		}
	}

	step, snapshot, err := h.svc.CaptureStep(c.Context(), c.Params("id"), req.Bearing)
	if err != nil {
		return h.fail(c, err, nil)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"step": step, "walk": snapshot})
}

func (h *Handler) AdjustStep(c fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return badRequest(c, "step index must be an integer")
	}
	var req adjustRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	snapshot, err := h.svc.AdjustStep(c.Params("id"), index, req.Distance)
	if err != nil {
		return h.fail(c, err, nil)
	}
	return c.JSON(snapshot)
}

func (h *Handler) UndoStep(c fiber.Ctx) error {
	snapshot, err := h.svc.UndoStep(c.Params("id"))
	if err != nil {
		return h.fail(c, err, nil)
	}
	return c.JSON(snapshot)
}

func (h *Handler) CloseWalk(c fiber.Ctx) error {
	snapshot, err := h.svc.CloseWalk(c.Params("id"))
	if err != nil {
		return h.fail(c, err, nil)
	}
	return c.JSON(snapshot)
}

func (h *Handler) CancelWalk(c fiber.Ctx) error {
	if err := h.svc.CancelWalk(c.Params("id")); err != nil {
		return h.fail(c, err, nil)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ExportWalk stores the walk's geometry. Blocking findings come back with 422
// and the session stays open.
func (h *Handler) ExportWalk(c fiber.Ctx) error {
	g, results, err := h.svc.ExportWalk(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, fiber.Map{"geometry": g, "results": results})
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"geometry": g,
		"results":  results,
	})
}
