package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SnapResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "floorplan_snap_results_total",
		Help: "Snap resolutions by the rule that fired",
	}, []string{"kind"})
	WalkStepsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "floorplan_walk_steps_total",
		Help: "Total walk measurements recorded",
	})
	WalkClosuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "floorplan_walk_closures_total",
		Help: "Walk sessions closed, by how they closed",
	}, []string{"mode"})
	ValidationFindingsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "floorplan_validation_findings_total",
		Help: "Validation findings by code and severity",
	}, []string{"code", "severity"})
	EditsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "floorplan_edits_total",
		Help: "Editor mutations by operation and outcome",
	}, []string{"op", "outcome"})
	SketchImportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "floorplan_sketch_imports_total",
		Help: "Sketch imports by source format and status",
	}, []string{"format", "status"})
	GeometrySavesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "floorplan_geometry_saves_total",
		Help: "Geometries written to the store",
	})
	GeometryConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "floorplan_geometry_conflicts_total",
		Help: "Writes rejected because a newer version was stored",
	})
	ValidateDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "floorplan_validate_duration_ms",
		Help:    "Batch validation duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500},
	})
)

func init() {
	prometheus.MustRegister(SnapResultsTotal)
	prometheus.MustRegister(WalkStepsTotal)
	prometheus.MustRegister(WalkClosuresTotal)
	prometheus.MustRegister(ValidationFindingsTotal)
	prometheus.MustRegister(EditsTotal)
	prometheus.MustRegister(SketchImportsTotal)
	prometheus.MustRegister(GeometrySavesTotal)
	prometheus.MustRegister(GeometryConflictsTotal)
	prometheus.MustRegister(ValidateDurationMs)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
