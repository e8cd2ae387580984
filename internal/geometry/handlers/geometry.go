package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"floorplan/internal/geometry/models"
	"floorplan/internal/geometry/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Geometry Handler
// ============================================================

const actorHeader = "X-Actor"

type Handler struct {
	svc *service.Service
	log *slog.Logger
}

func NewHandler(svc *service.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// Register mounts every geometry route on r.
func (h *Handler) Register(r fiber.Router) {
	r.Post("/snap", h.Snap)
	r.Post("/validate", h.Validate)
	r.Post("/sketch", h.ImportSketch)

	r.Get("/geometries", h.ListGeometries)
	r.Get("/geometries/:id", h.GetGeometry)
	r.Put("/geometries/:id", h.PutGeometry)
	r.Delete("/geometries/:id", h.DeleteGeometry)
	r.Get("/geometries/:id/svg", h.RenderGeometry)
	r.Post("/geometries/:id/edit", h.OpenEditor)

	r.Post("/walks", h.StartWalk)
	r.Get("/walks/:id", h.GetWalk)
	r.Delete("/walks/:id", h.CancelWalk)
	r.Post("/walks/:id/steps", h.RecordStep)
	r.Post("/walks/:id/capture", h.CaptureStep)
	r.Put("/walks/:id/steps/:index", h.AdjustStep)
	r.Delete("/walks/:id/steps/last", h.UndoStep)
	r.Post("/walks/:id/close", h.CloseWalk)
	r.Post("/walks/:id/export", h.ExportWalk)

	r.Get("/edits/:id", h.GetEdit)
	r.Delete("/edits/:id", h.DiscardEdit)
	r.Post("/edits/:id/preview", h.PreviewPoint)
	r.Post("/edits/:id/points", h.PlacePoint)
	r.Put("/edits/:id/points/:pointId", h.MovePoint)
	r.Delete("/edits/:id/points/:pointId", h.RemovePoint)
	r.Post("/edits/:id/segments", h.Connect)
	r.Delete("/edits/:id/segments/:segmentId", h.RemoveSegment)
	r.Put("/edits/:id/segments/:segmentId/material", h.SetMaterial)
	r.Post("/edits/:id/labels", h.SetLabel)
	r.Post("/edits/:id/close", h.CloseEdit)
	r.Post("/edits/:id/reopen", h.ReopenEdit)
	r.Post("/edits/:id/commit", h.CommitEdit)

	r.Post("/devices/scripted", h.ActivateScripted)
	r.Get("/devices/active", h.ActiveDevice)
	r.Delete("/devices/active", h.DeactivateDevice)
}

func actor(c fiber.Ctx) string {
	return c.Get(actorHeader)
}

func decode(c fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return errors.New("empty body")
	}
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return errors.New("invalid json")
	}
	return nil
}

// ============================================================
// Snap & Validate
// ============================================================

func (h *Handler) Snap(c fiber.Ctx) error {
	var req service.SnapRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	res, err := h.svc.Snap(c.Context(), req)
	if err != nil {
		return h.fail(c, err, nil)
	}
	return c.JSON(res)
}

func (h *Handler) Validate(c fiber.Ctx) error {
	var g models.Geometry
	if err := decode(c, &g); err != nil {
		return badRequest(c, err.Error())
	}
	g.Recalculate()

	results := h.svc.Validate(&g)
	return c.JSON(fiber.Map{
		"valid":   !results.HasErrors(),
		"results": results,
	})
}

// ============================================================
// Sketch Import
// ============================================================

type sketchRequest struct {
	D string `json:"d"`
}

// ImportSketch accepts {"d": "..."} or an SVG file in multipart/form-data.
func (h *Handler) ImportSketch(c fiber.Ctx) error {
	req := service.SketchRequest{Actor: actor(c)}

	if strings.HasPrefix(c.Get("Content-Type"), "multipart/form-data") {
		file, err := c.FormFile("file")
		if err != nil {
			return badRequest(c, "file required in multipart/form-data")
		}
		f, err := file.Open()
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
		}
		defer f.Close()
		req.SVG = f
	} else {
		var body sketchRequest
		if err := decode(c, &body); err != nil {
			return badRequest(c, err.Error())
		}
		if body.D == "" {
			return badRequest(c, "d required")
		}
		req.D = body.D
	}

	g, results, err := h.svc.ImportSketch(c.Context(), req)
	if err != nil {
		if g == nil && statusOf(err) == http.StatusInternalServerError {
			return badRequest(c, err.Error())
		}
		return h.fail(c, err, nil)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"geometry": g,
		"results":  results,
	})
}

// ============================================================
// Stored Geometries
// ============================================================

func (h *Handler) ListGeometries(c fiber.Ctx) error {
	list, err := h.svc.Geometries(c.Context())
	if err != nil {
		return h.fail(c, err, nil)
	}
	return c.JSON(list)
}

func (h *Handler) GetGeometry(c fiber.Ctx) error {
	g, err := h.svc.Geometry(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, nil)
	}
	return c.JSON(g)
}

// PutGeometry replaces a stored geometry. The body must carry a version newer
// than the stored one.
func (h *Handler) PutGeometry(c fiber.Ctx) error {
	var g models.Geometry
	if err := decode(c, &g); err != nil {
		return badRequest(c, err.Error())
	}

	results, err := h.svc.PutGeometry(c.Context(), c.Params("id"), &g, actor(c))
	if err != nil {
		return h.fail(c, err, fiber.Map{"results": results})
	}
	return c.JSON(fiber.Map{
		"geometry": &g,
		"results":  results,
	})
}

func (h *Handler) DeleteGeometry(c fiber.Ctx) error {
	if err := h.svc.DeleteGeometry(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, err, nil)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *Handler) RenderGeometry(c fiber.Ctx) error {
	svg, err := h.svc.RenderGeometry(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, nil)
	}
	c.Type("svg")
	return c.SendString(svg)
}
