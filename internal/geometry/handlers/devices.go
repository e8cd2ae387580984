package handlers

import (
	"net/http"

	"floorplan/internal/geometry/measure"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Device Handlers
// ============================================================

type scriptedRequest struct {
	Model    string            `json:"model"`
	Readings []measure.Reading `json:"readings"`
}

// ActivateScripted installs a simulator that replays the given readings.
func (h *Handler) ActivateScripted(c fiber.Ctx) error {
	var req scriptedRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if req.Model == "" {
		req.Model = "scripted"
	}

	info, err := h.svc.ActivateScripted(c.Context(), req.Model, req.Readings)
	if err != nil {
		return h.fail(c, err, nil)
	}
	return c.Status(http.StatusCreated).JSON(info)
}

func (h *Handler) ActiveDevice(c fiber.Ctx) error {
	info, ok := h.svc.ActiveDevice()
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": measure.ErrNoActiveDevice.Error()})
	}
	return c.JSON(info)
}

func (h *Handler) DeactivateDevice(c fiber.Ctx) error {
	if err := h.svc.DeactivateDevice(); err != nil {
		return h.fail(c, err, nil)
	}
	return c.SendStatus(http.StatusNoContent)
}
