package walk

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"floorplan/internal/geometry/measure"
	"floorplan/internal/geometry/models"

	"github.com/google/uuid"
)

// ============================================================
// Walk Capture Builder
// ============================================================

type State string

const (
	StateIdle   State = "idle"
	StateActive State = "active"
	StateClosed State = "closed"
)

const (
	DefaultClosureTolerance = 1.0
	DefaultTurn             = 90.0
)

var (
	ErrInvalidState    = errors.New("invalid capture state")
	ErrStepOutOfRange  = errors.New("step out of range")
	ErrInvalidDistance = errors.New("distance must be a positive finite number")
	ErrTooFewPoints    = errors.New("at least 3 points are required to close")
)

// Step is one dead-reckoning leg. Closing marks the leg appended by an explicit
// close when the walk did not end near the origin.
type Step struct {
	Index     int              `json:"index"`
	Distance  float64          `json:"distance"`
	Bearing   float64          `json:"bearing"`
	Start     models.Point     `json:"start"`
	End       models.Point     `json:"end"`
	Confirmed bool             `json:"confirmed"`
	Closing   bool             `json:"closing,omitempty"`
	Reading   *measure.Reading `json:"reading,omitempty"`
}

// Builder runs one "walk the room" session. It is not safe for concurrent use;
// the owner of the session serializes calls.
type Builder struct {
	id               string
	state            State
	points           []models.Point
	steps            []Step
	referenceBearing *float64

	autoClose   bool
	tolerance   float64
	defaultTurn float64
	now         func() time.Time
	actor       string
}

type Option func(*Builder)

func WithAutoClose(enabled bool) Option {
	return func(b *Builder) { b.autoClose = enabled }
}

func WithClosureTolerance(ft float64) Option {
	return func(b *Builder) {
		if ft > 0 {
			b.tolerance = ft
		}
	}
}

// WithDefaultTurn sets the turn applied when a step arrives without a bearing.
func WithDefaultTurn(deg float64) Option {
	return func(b *Builder) { b.defaultTurn = deg }
}

func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

func WithActor(actor string) Option {
	return func(b *Builder) { b.actor = actor }
}

func New(opts ...Option) *Builder {
	b := &Builder{
		id:          uuid.NewString(),
		state:       StateIdle,
		autoClose:   true,
		tolerance:   DefaultClosureTolerance,
		defaultTurn: DefaultTurn,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) ID() string   { return b.id }
func (b *Builder) State() State { return b.state }

// Steps returns a copy of the step log.
func (b *Builder) Steps() []Step {
	return append([]Step(nil), b.steps...)
}

// Points returns a copy of the running point list in capture order.
func (b *Builder) Points() []models.Point {
	return append([]models.Point(nil), b.points...)
}

func (b *Builder) ReferenceBearing() (float64, bool) {
	if b.referenceBearing == nil {
		return 0, false
	}
	return *b.referenceBearing, true
}

// ClosureDistance is the gap between the newest point and the origin.
func (b *Builder) ClosureDistance() float64 {
	if len(b.points) == 0 {
		return 0
	}
	return models.Distance(b.points[len(b.points)-1], b.points[0])
}

// ============================================================
// Lifecycle
// ============================================================

// Start begins a session at origin and clears any previous step log.
func (b *Builder) Start(origin models.Point) error {
	if b.state == StateClosed {
		return fmt.Errorf("start: %w: session is closed", ErrInvalidState)
	}
	if origin.ID == "" {
		origin.ID = uuid.NewString()
	}
	if origin.CreatedAt.IsZero() {
		origin.CreatedAt = b.now()
	}
	if origin.Label == "" {
		origin.Label = "origin"
	}

	b.points = []models.Point{origin}
	b.steps = nil
	b.referenceBearing = nil
	b.state = StateActive
	return nil
}

// RecordMeasurement appends a step. A nil bearing means "unknown": the first
// step then runs along 0°, later ones turn by the default turn.
func (b *Builder) RecordMeasurement(distance float64, bearing *float64) (Step, error) {
	return b.record(distance, bearing, nil)
}

// RecordReading appends a step from a Measurement Source value.
func (b *Builder) RecordReading(r measure.Reading) (Step, error) {
	return b.record(r.Distance, r.Bearing, &r)
}

// Capture pulls one reading from src. A non-nil bearing overrides whatever the
// device reported, for rangefinders without a compass.
func (b *Builder) Capture(ctx context.Context, src measure.Source, bearing *float64) (Step, error) {
	if b.state != StateActive {
		return Step{}, fmt.Errorf("capture: %w: %s", ErrInvalidState, b.state)
	}
	r, err := src.Measure(ctx)
	if err != nil {
		return Step{}, fmt.Errorf("capture: %w", err)
	}
	if bearing != nil {
		r.Bearing = bearing
	}
	return b.RecordReading(r)
}

func (b *Builder) record(distance float64, bearing *float64, r *measure.Reading) (Step, error) {
	if b.state != StateActive {
		return Step{}, fmt.Errorf("record: %w: %s", ErrInvalidState, b.state)
	}
	if !validDistance(distance) {
		return Step{}, fmt.Errorf("record %v: %w", distance, ErrInvalidDistance)
	}

	var heading float64
	switch {
	case bearing != nil:
		heading = models.NormalizeBearing(*bearing)
	case len(b.steps) == 0:
		heading = 0
	default:
		heading = models.NormalizeBearing(b.steps[len(b.steps)-1].Bearing + b.defaultTurn)
	}
	if len(b.steps) == 0 {
		ref := heading
		b.referenceBearing = &ref
	}

	start := b.points[len(b.points)-1]
	step := Step{
		Index:     len(b.steps),
		Distance:  distance,
		Bearing:   heading,
		Start:     start,
		Confirmed: true,
		Reading:   r,
	}
	step.End = advance(start, step)
	step.End.ID = uuid.NewString()
	step.End.CreatedAt = b.now()

	b.steps = append(b.steps, step)
	b.points = append(b.points, step.End)

	if b.autoClose && len(b.points) >= 3 && b.ClosureDistance() < b.tolerance {
		// Too few distinct corners is not an error for auto-close; the walk stays open.
		if err := b.Close(); err != nil && !errors.Is(err, ErrTooFewPoints) {
			return Step{}, err
		}
	}

	return b.steps[step.Index], nil
}

// AdjustMeasurement corrects the distance of step index and re-walks every
// later step from its stored bearing. Earlier points are left untouched.
func (b *Builder) AdjustMeasurement(index int, distance float64) error {
	if b.state != StateActive {
		return fmt.Errorf("adjust: %w: %s", ErrInvalidState, b.state)
	}
	if index < 0 || index >= len(b.steps) {
		return fmt.Errorf("adjust %d of %d: %w", index, len(b.steps), ErrStepOutOfRange)
	}
	if !validDistance(distance) {
		return fmt.Errorf("adjust %v: %w", distance, ErrInvalidDistance)
	}

	b.steps[index].Distance = distance
	b.refold(index)
	return nil
}

// Undo drops the most recent step.
func (b *Builder) Undo() error {
	if b.state != StateActive {
		return fmt.Errorf("undo: %w: %s", ErrInvalidState, b.state)
	}
	if len(b.steps) == 0 {
		return fmt.Errorf("undo: %w", ErrStepOutOfRange)
	}
	b.steps = b.steps[:len(b.steps)-1]
	b.points = b.points[:len(b.points)-1]
	if len(b.steps) == 0 {
		b.referenceBearing = nil
	}
	return nil
}

// Close finishes the walk. A final point within tolerance of the origin merges
// into it; otherwise a closing leg back to the origin is appended.
func (b *Builder) Close() error {
	if b.state != StateActive {
		return fmt.Errorf("close: %w: %s", ErrInvalidState, b.state)
	}

	origin := b.points[0]
	last := b.points[len(b.points)-1]
	gap := models.Distance(last, origin)

	if gap < b.tolerance && len(b.steps) > 0 {
		if len(b.points)-1 < 3 {
			return ErrTooFewPoints
		}
		i := len(b.steps) - 1
		b.steps[i].End = origin
		b.points = b.points[:len(b.points)-1]
		b.state = StateClosed
		return nil
	}

	if len(b.points) < 3 {
		return ErrTooFewPoints
	}
	b.steps = append(b.steps, Step{
		Index:     len(b.steps),
		Distance:  gap,
		Bearing:   models.Bearing(last, origin),
		Start:     last,
		End:       origin,
		Confirmed: true,
		Closing:   true,
	})
	b.state = StateClosed
	return nil
}

// ============================================================
// Fold
// ============================================================

func advance(start models.Point, s Step) models.Point {
	x, y := models.Project(start, s.Distance, s.Bearing)
	end := s.End
	end.X, end.Y = x, y
	return end
}

// refold recomputes steps[from:] and the points they produce.
func (b *Builder) refold(from int) {
	for i := from; i < len(b.steps); i++ {
		start := b.points[i]
		end := advance(start, b.steps[i])
		b.steps[i].Start = start
		b.steps[i].End = end
		b.points[i+1] = end
	}
}

// Replay folds steps from origin and returns the resulting point list. Closing
// legs are skipped since they end at the origin by definition.
func Replay(origin models.Point, steps []Step) []models.Point {
	points := []models.Point{origin}
	for _, s := range steps {
		if s.Closing {
			continue
		}
		points = append(points, advance(points[len(points)-1], s))
	}
	return points
}

func validDistance(d float64) bool {
	return d > 0 && !math.IsInf(d, 0) && !math.IsNaN(d)
}

// ============================================================
// Export
// ============================================================

// ExportGeometry emits the walk as a Geometry. Perimeter is the sum of step
// distances and area is the shoelace formula over capture order.
func (b *Builder) ExportGeometry() *models.Geometry {
	g := models.New(models.ModeLaserLegacy, b.actor)
	g.ID = b.id
	g.Points = b.Points()

	for _, s := range b.steps {
		g.Segments = append(g.Segments, models.Segment{
			ID:   uuid.NewString(),
			P1:   s.Start.ID,
			P2:   s.End.ID,
			Kind: models.KindWall,
		})
	}
	g.Recalculate()

	var perimeter float64
	for _, s := range b.steps {
		perimeter += s.Distance
	}
	g.Perimeter = perimeter
	g.Area = models.ShoelaceArea(g.Points)
	g.ClosedPolygon = b.state == StateClosed
	g.Version = 1
	g.UpdatedAt = b.now()
	return g
}

// ============================================================
// Snapshot
// ============================================================

type Snapshot struct {
	ID               string         `json:"id"`
	State            State          `json:"state"`
	ReferenceBearing *float64       `json:"referenceBearing,omitempty"`
	Steps            []Step         `json:"steps"`
	Points           []models.Point `json:"points"`
	ClosureDistance  float64        `json:"closureDistance"`
}

func (b *Builder) Snapshot() Snapshot {
	return Snapshot{
		ID:               b.id,
		State:            b.state,
		ReferenceBearing: b.referenceBearing,
		Steps:            b.Steps(),
		Points:           b.Points(),
		ClosureDistance:  b.ClosureDistance(),
	}
}
