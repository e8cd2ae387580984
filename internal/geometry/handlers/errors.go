package handlers

import (
	"errors"
	"net/http"

	"floorplan/internal/geometry/editor"
	"floorplan/internal/geometry/measure"
	"floorplan/internal/geometry/models"
	"floorplan/internal/geometry/parser"
	"floorplan/internal/geometry/repository"
	"floorplan/internal/geometry/service"
	"floorplan/internal/geometry/snap"
	"floorplan/internal/geometry/walk"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Error Mapping
// ============================================================

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, models.ErrPointNotFound),
		errors.Is(err, models.ErrSegmentNotFound),
		errors.Is(err, models.ErrLabelNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrStaleVersion),
		errors.Is(err, walk.ErrInvalidState),
		errors.Is(err, walk.ErrTooFewPoints),
		errors.Is(err, editor.ErrFinalized),
		errors.Is(err, measure.ErrNoActiveDevice),
		errors.Is(err, measure.ErrNotConnected),
		errors.Is(err, measure.ErrExhausted):
		return http.StatusConflict
	case errors.Is(err, service.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, walk.ErrInvalidDistance),
		errors.Is(err, walk.ErrStepOutOfRange),
		errors.Is(err, models.ErrInvalidKind),
		errors.Is(err, snap.ErrUnknownPreset),
		errors.Is(err, parser.ErrEmptyPath),
		errors.Is(err, parser.ErrNoVertex),
		errors.Is(err, parser.ErrNoElements):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": ...} with the mapped status. Extra fields are
// merged in, e.g. the findings that blocked a write.
func (h *Handler) fail(c fiber.Ctx, err error, extra fiber.Map) error {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request_failed", "method", c.Method(), "path", c.Path(), "error", err)
	}

	body := fiber.Map{"error": err.Error()}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
