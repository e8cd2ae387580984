package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"floorplan/internal/common/metrics"
	"floorplan/internal/geometry/editor"
	"floorplan/internal/geometry/measure"
	"floorplan/internal/geometry/models"
	"floorplan/internal/geometry/parser"
	"floorplan/internal/geometry/render"
	"floorplan/internal/geometry/repository"
	"floorplan/internal/geometry/snap"
	"floorplan/internal/geometry/validate"
	"floorplan/internal/geometry/walk"
)

// ============================================================
// Geometry Service
// ============================================================

// ErrRejected means a geometry carries error-severity findings and was not stored.
var ErrRejected = errors.New("geometry has blocking validation errors")

// NewGeometryID asks OpenEditor for a fresh, empty geometry.
const NewGeometryID = "new"

type Settings struct {
	SnapPreset       string
	PixelsPerFoot    float64
	Validation       validate.Config
	ClosureTolerance float64
}

// Service ties capture sessions, validation and storage together. It is safe
// for concurrent use; per-session ordering comes from the SessionManager.
type Service struct {
	repo      *repository.Repository
	devices   *measure.Manager
	sessions  *SessionManager
	validator *validate.Validator
	importer  *parser.Importer
	renderer  *render.Renderer
	settings  Settings
	log       *slog.Logger
}

func New(repo *repository.Repository, devices *measure.Manager, settings Settings, log *slog.Logger) (*Service, error) {
	if _, err := snap.PresetByName(settings.SnapPreset); err != nil {
		return nil, err
	}
	importer, err := parser.NewImporter(settings.PixelsPerFoot)
	if err != nil {
		return nil, err
	}
	if devices == nil {
		devices = measure.NewManager()
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		repo:      repo,
		devices:   devices,
		sessions:  NewSessionManager(),
		validator: validate.New(settings.Validation),
		importer:  importer,
		renderer:  render.NewRenderer(settings.PixelsPerFoot),
		settings:  settings,
		log:       log,
	}, nil
}

func (s *Service) Sessions() *SessionManager { return s.sessions }

// Ready reports whether the store answers.
func (s *Service) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Service) resolver(preset string) (*snap.Resolver, error) {
	if preset == "" {
		preset = s.settings.SnapPreset
	}
	cfg, err := snap.PresetByName(preset)
	if err != nil {
		return nil, err
	}
	return snap.New(cfg.WithPixelsPerFoot(s.settings.PixelsPerFoot)), nil
}

// ============================================================
// Snap & validation
// ============================================================

type SnapRequest struct {
	X          float64          `json:"x"`
	Y          float64          `json:"y"`
	Preset     string           `json:"preset,omitempty"`
	Geometry   *models.Geometry `json:"geometry,omitempty"`
	GeometryID string           `json:"geometryId,omitempty"`
}

// Snap resolves a raw pointer position against an inline or stored geometry.
func (s *Service) Snap(ctx context.Context, req SnapRequest) (snap.Result, error) {
	r, err := s.resolver(req.Preset)
	if err != nil {
		return snap.Result{}, err
	}

	g := req.Geometry
	if g == nil && req.GeometryID != "" {
		if g, err = s.repo.Get(ctx, req.GeometryID); err != nil {
			return snap.Result{}, err
		}
	}

	res := r.Evaluate(req.X, req.Y, g)
	metrics.SnapResultsTotal.WithLabelValues(string(res.SnappedTo)).Inc()
	return res, nil
}

func (s *Service) Validate(g *models.Geometry) validate.Results {
	start := time.Now()
	results := s.validator.Validate(g)
	metrics.ValidateDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000)
	s.observe(results)
	return results
}

func (s *Service) observe(results validate.Results) {
	for _, r := range results {
		metrics.ValidationFindingsTotal.WithLabelValues(string(r.Code), string(r.Severity)).Inc()
	}
}

// ============================================================
// Walk capture
// ============================================================

type StartWalkRequest struct {
	Origin    models.Point `json:"origin"`
	AutoClose *bool        `json:"autoClose,omitempty"`
	Actor     string       `json:"-"`
}

func (s *Service) StartWalk(req StartWalkRequest) (walk.Snapshot, error) {
	opts := []walk.Option{
		walk.WithClosureTolerance(s.settings.ClosureTolerance),
		walk.WithActor(req.Actor),
	}
	if req.AutoClose != nil {
		opts = append(opts, walk.WithAutoClose(*req.AutoClose))
	}

	b := walk.New(opts...)
	if err := b.Start(req.Origin); err != nil {
		return walk.Snapshot{}, err
	}
	id := s.sessions.OpenWalk(b)
	s.log.Info("walk_started", "walk_id", id, "actor", req.Actor)
	return b.Snapshot(), nil
}

func (s *Service) Walk(id string) (walk.Snapshot, error) {
	var snapshot walk.Snapshot
	err := s.sessions.WithWalk(id, func(b *walk.Builder) error {
		snapshot = b.Snapshot()
		return nil
	})
	return snapshot, err
}

// RecordStep appends a manually entered leg.
func (s *Service) RecordStep(id string, distance float64, bearing *float64) (walk.Step, walk.Snapshot, error) {
	return s.step(id, func(b *walk.Builder) (walk.Step, error) {
		return b.RecordMeasurement(distance, bearing)
	})
}

// RecordReading appends a leg from a device reading pushed by the client.
func (s *Service) RecordReading(id string, r measure.Reading) (walk.Step, walk.Snapshot, error) {
	return s.step(id, func(b *walk.Builder) (walk.Step, error) {
		return b.RecordReading(r)
	})
}

// CaptureStep takes the next reading from the active device.
func (s *Service) CaptureStep(ctx context.Context, id string, bearing *float64) (walk.Step, walk.Snapshot, error) {
	return s.step(id, func(b *walk.Builder) (walk.Step, error) {
		return b.Capture(ctx, s.devices, bearing)
	})
}

func (s *Service) step(id string, record func(*walk.Builder) (walk.Step, error)) (walk.Step, walk.Snapshot, error) {
	var step walk.Step
	var snapshot walk.Snapshot
	err := s.sessions.WithWalk(id, func(b *walk.Builder) error {
		before := b.State()
		var err error
		if step, err = record(b); err != nil {
			return err
		}
		metrics.WalkStepsTotal.Inc()
		s.log.Debug("walk_step_recorded", "walk_id", id, "index", step.Index,
			"distance", step.Distance, "bearing", step.Bearing)
		if before != walk.StateClosed && b.State() == walk.StateClosed {
			metrics.WalkClosuresTotal.WithLabelValues("auto").Inc()
			s.log.Info("walk_closed", "walk_id", id, "mode", "auto")
		}
		snapshot = b.Snapshot()
		return nil
	})
	return step, snapshot, err
}

func (s *Service) AdjustStep(id string, index int, distance float64) (walk.Snapshot, error) {
	return s.walkOp(id, func(b *walk.Builder) error {
		return b.AdjustMeasurement(index, distance)
	})
}

func (s *Service) UndoStep(id string) (walk.Snapshot, error) {
	return s.walkOp(id, func(b *walk.Builder) error {
		return b.Undo()
	})
}

func (s *Service) CloseWalk(id string) (walk.Snapshot, error) {
	return s.walkOp(id, func(b *walk.Builder) error {
		if err := b.Close(); err != nil {
			return err
		}
		metrics.WalkClosuresTotal.WithLabelValues("explicit").Inc()
		s.log.Info("walk_closed", "walk_id", id, "mode", "explicit")
		return nil
	})
}

func (s *Service) walkOp(id string, fn func(*walk.Builder) error) (walk.Snapshot, error) {
	var snapshot walk.Snapshot
	err := s.sessions.WithWalk(id, func(b *walk.Builder) error {
		if err := fn(b); err != nil {
			return err
		}
		snapshot = b.Snapshot()
		return nil
	})
	return snapshot, err
}

// CancelWalk discards the session without storing anything.
func (s *Service) CancelWalk(id string) error {
	if !s.sessions.DropWalk(id) {
		return ErrSessionNotFound
	}
	s.log.Info("walk_cancelled", "walk_id", id)
	return nil
}

// ExportWalk validates the walk's geometry and stores it. A stored walk ends
// its session; a rejected one stays open for corrections.
func (s *Service) ExportWalk(ctx context.Context, id string) (*models.Geometry, validate.Results, error) {
	var g *models.Geometry
	err := s.sessions.WithWalk(id, func(b *walk.Builder) error {
		g = b.ExportGeometry()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	results := s.Validate(g)
	if results.HasErrors() {
		return g, results, ErrRejected
	}
	if err := s.save(ctx, g); err != nil {
		return g, results, err
	}
	s.sessions.DropWalk(id)
	return g, results, nil
}

// ============================================================
// Sketch import
// ============================================================

type SketchRequest struct {
	D     string
	SVG   io.Reader
	Actor string
}

// ImportSketch converts a path string or an SVG document and stores the result
// as a draft, findings included, so it can be corrected in an edit session.
func (s *Service) ImportSketch(ctx context.Context, req SketchRequest) (*models.Geometry, validate.Results, error) {
	format := "path"
	var g *models.Geometry
	var err error
	if req.SVG != nil {
		format = "svg"
		g, err = s.importer.FromSVG(req.SVG, req.Actor)
	} else {
		g, err = s.importer.FromPath(req.D, req.Actor)
	}
	if err != nil {
		metrics.SketchImportsTotal.WithLabelValues(format, "failed").Inc()
		return nil, nil, err
	}
	metrics.SketchImportsTotal.WithLabelValues(format, "ok").Inc()

	results := s.Validate(g)
	if err := s.save(ctx, g); err != nil {
		return g, results, err
	}
	s.log.Info("sketch_imported", "geometry_id", g.ID, "format", format,
		"points", len(g.Points), "findings", len(results))
	return g, results, nil
}

// ============================================================
// Stored geometries
// ============================================================

func (s *Service) save(ctx context.Context, g *models.Geometry) error {
	err := s.repo.Save(ctx, g)
	switch {
	case errors.Is(err, repository.ErrStaleVersion):
		metrics.GeometryConflictsTotal.Inc()
		s.log.Warn("geometry_conflict", "geometry_id", g.ID, "version", g.Version)
		return err
	case err != nil:
		return fmt.Errorf("save geometry: %w", err)
	}
	metrics.GeometrySavesTotal.Inc()
	s.log.Info("geometry_saved", "geometry_id", g.ID, "version", g.Version, "mode", g.Mode)
	return nil
}

func (s *Service) Geometry(ctx context.Context, id string) (*models.Geometry, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Geometries(ctx context.Context) ([]repository.Summary, error) {
	return s.repo.List(ctx)
}

// PutGeometry stores a client-supplied geometry under id. The write must carry
// a newer version than the stored one and must not have blocking findings.
func (s *Service) PutGeometry(ctx context.Context, id string, g *models.Geometry, actor string) (validate.Results, error) {
	g.ID = id
	g.Recalculate()
	g.UpdatedAt = time.Now().UTC()
	if actor != "" {
		g.UpdatedBy = actor
	}

	results := s.Validate(g)
	if results.HasErrors() {
		return results, ErrRejected
	}
	return results, s.save(ctx, g)
}

func (s *Service) DeleteGeometry(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) RenderGeometry(ctx context.Context, id string) (string, error) {
	g, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.renderer.Render(g)
}

// ============================================================
// Edit sessions
// ============================================================

type EditView struct {
	SessionID string           `json:"sessionId"`
	Geometry  *models.Geometry `json:"geometry"`
}

// OpenEditor starts an edit session on a stored geometry, or on an empty one
// when geometryID is NewGeometryID.
func (s *Service) OpenEditor(ctx context.Context, geometryID, preset, actor string) (EditView, error) {
	r, err := s.resolver(preset)
	if err != nil {
		return EditView{}, err
	}

	var g *models.Geometry
	if geometryID == NewGeometryID {
		g = models.New(models.ModePoints, actor)
	} else if g, err = s.repo.Get(ctx, geometryID); err != nil {
		return EditView{}, err
	}

	e := editor.New(g, r, s.validator, actor)
	id := s.sessions.OpenEdit(e)
	s.log.Info("edit_started", "session_id", id, "geometry_id", g.ID, "actor", actor)
	return EditView{SessionID: id, Geometry: e.Geometry()}, nil
}

func (s *Service) EditGeometry(id string) (*models.Geometry, error) {
	var g *models.Geometry
	err := s.sessions.WithEditor(id, func(e *editor.Editor) error {
		g = e.Geometry()
		return nil
	})
	return g, err
}

func (s *Service) PlacePoint(id string, x, y float64, label string) (editor.Outcome, error) {
	return s.edit(id, "place_point", func(e *editor.Editor) (editor.Outcome, error) {
		return e.PlacePoint(x, y, label)
	})
}

func (s *Service) MovePoint(id, pointID string, x, y float64) (editor.Outcome, error) {
	return s.edit(id, "move_point", func(e *editor.Editor) (editor.Outcome, error) {
		return e.MovePoint(pointID, x, y)
	})
}

func (s *Service) RemovePoint(id, pointID string) (editor.Outcome, error) {
	return s.edit(id, "remove_point", func(e *editor.Editor) (editor.Outcome, error) {
		return e.RemovePoint(pointID)
	})
}

func (s *Service) Connect(id, p1, p2 string, kind models.SegmentKind) (editor.Outcome, error) {
	return s.edit(id, "connect", func(e *editor.Editor) (editor.Outcome, error) {
		return e.Connect(p1, p2, kind)
	})
}

func (s *Service) RemoveSegment(id, segmentID string) (editor.Outcome, error) {
	return s.edit(id, "remove_segment", func(e *editor.Editor) (editor.Outcome, error) {
		return e.RemoveSegment(segmentID)
	})
}

func (s *Service) CloseEdit(id string) (editor.Outcome, error) {
	return s.edit(id, "close", func(e *editor.Editor) (editor.Outcome, error) {
		return e.Close()
	})
}

func (s *Service) ReopenEdit(id string) (*models.Geometry, error) {
	var g *models.Geometry
	err := s.sessions.WithEditor(id, func(e *editor.Editor) error {
		e.Reopen()
		g = e.Geometry()
		return nil
	})
	return g, err
}

// PreviewPoint reports where a pointer would land without changing the geometry.
func (s *Service) PreviewPoint(id string, x, y float64) (snap.Result, *validate.Result, error) {
	var res snap.Result
	var finding *validate.Result
	err := s.sessions.WithEditor(id, func(e *editor.Editor) error {
		res, finding = e.PreviewPoint(x, y)
		return nil
	})
	return res, finding, err
}

func (s *Service) SetLabel(id string, l models.Label) (models.Label, error) {
	var out models.Label
	err := s.sessions.WithEditor(id, func(e *editor.Editor) error {
		var err error
		out, err = e.SetLabel(l)
		return err
	})
	return out, err
}

func (s *Service) SetMaterial(id, segmentID, material string) error {
	return s.sessions.WithEditor(id, func(e *editor.Editor) error {
		return e.SetMaterial(segmentID, material)
	})
}

func (s *Service) edit(id, op string,fn func(*editor.Editor) (editor.Outcome, error)) (editor.Outcome, error) {
	var out editor.Outcome
	err := s.sessions.WithEditor(id, func(e *editor.Editor) error {
		var err error
		out, err = fn(e)
		return err
	})
	if err != nil {
		return editor.Outcome{}, err
	}

	outcome := "accepted"
	if !out.Accepted {
		outcome = "rejected"
	}
	metrics.EditsTotal.WithLabelValues(op, outcome).Inc()
	s.observe(out.Results)
	return out, nil
}

// CommitEdit stores the edited geometry and ends the session. Geometries with
// blocking findings stay in the session.
func (s *Service) CommitEdit(ctx context.Context, id string) (*models.Geometry, validate.Results, error) {
	g, err := s.EditGeometry(id)
	if err != nil {
		return nil, nil, err
	}

	results := s.Validate(g)
	if results.HasErrors() {
		return g, results, ErrRejected
	}
	if err := s.save(ctx, g); err != nil {
		return g, results, err
	}
	s.sessions.DropEdit(id)
	return g, results, nil
}

func (s *Service) DiscardEdit(id string) error {
	if !s.sessions.DropEdit(id) {
		return ErrSessionNotFound
	}
	return nil
}

// ============================================================
// Measurement devices
// ============================================================

// ActivateScripted installs a scripted device that replays readings, the way a
// simulator stands in for a rangefinder.
func (s *Service) ActivateScripted(ctx context.Context, model string, readings []measure.Reading) (measure.DeviceInfo, error) {
	d := measure.NewScripted(model, readings...)
	if err := s.devices.Activate(ctx, d); err != nil {
		return measure.DeviceInfo{}, err
	}
	s.log.Info("device_activated", "model", model, "readings", len(readings))
	return d.Info(), nil
}

func (s *Service) ActiveDevice() (measure.DeviceInfo, bool) {
	d, ok := s.devices.Active()
	if !ok {
		return measure.DeviceInfo{}, false
	}
	return d.Info(), true
}

func (s *Service) DeactivateDevice() error {
	return s.devices.Deactivate()
}
