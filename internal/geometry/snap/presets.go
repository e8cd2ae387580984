package snap

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================
// Configuration
// ============================================================

// Config bundles every snapping knob. Distances are feet unless the name says px.
type Config struct {
	GridSize       float64 `json:"gridSize"`
	ThresholdPx    float64 `json:"thresholdPx"`
	PixelsPerFoot  float64 `json:"pixelsPerFoot"`
	MagneticRadius float64 `json:"magneticRadius"`
	AngleTolerance float64 `json:"angleTolerance"`
}

const (
	DefaultGridSize       = 0.5 // 6 inches
	DefaultThresholdPx    = 10.0
	DefaultPixelsPerFoot  = 20.0
	DefaultMagneticRadius = 1.0
	DefaultAngleTolerance = 5.0
)

func DefaultConfig() Config {
	return Config{
		GridSize:       DefaultGridSize,
		ThresholdPx:    DefaultThresholdPx,
		PixelsPerFoot:  DefaultPixelsPerFoot,
		MagneticRadius: DefaultMagneticRadius,
		AngleTolerance: DefaultAngleTolerance,
	}
}

// threshold converts the pixel threshold into feet.
func (c Config) threshold() float64 {
	if c.PixelsPerFoot <= 0 {
		return 0
	}
	return c.ThresholdPx / c.PixelsPerFoot
}

// ============================================================
// Presets
// ============================================================

const (
	PresetPrecise = "precise"
	PresetNormal  = "normal"
	PresetLoose   = "loose"
	PresetNoSnap  = "noSnap"
)

var presets = map[string]Config{
	PresetPrecise: {
		GridSize:       1.0 / 12,
		ThresholdPx:    5,
		PixelsPerFoot:  DefaultPixelsPerFoot,
		MagneticRadius: 0.5,
		AngleTolerance: DefaultAngleTolerance,
	},
	PresetNormal: DefaultConfig(),
	PresetLoose: {
		GridSize:       1.0,
		ThresholdPx:    20,
		PixelsPerFoot:  DefaultPixelsPerFoot,
		MagneticRadius: 2.0,
		AngleTolerance: DefaultAngleTolerance,
	},
	PresetNoSnap: {
		PixelsPerFoot: DefaultPixelsPerFoot,
	},
}

var ErrUnknownPreset = errors.New("unknown snap preset")

// PresetByName looks a preset up case-insensitively. An empty name is "normal".
func PresetByName(name string) (Config, error) {
	if name == "" {
		return DefaultConfig(), nil
	}
	for key, cfg := range presets {
		if strings.EqualFold(key, name) {
			return cfg, nil
		}
	}
	return Config{}, fmt.Errorf("%w %q", ErrUnknownPreset, name)
}

// WithPixelsPerFoot keeps the preset's feet-space values and swaps the display scale.
func (c Config) WithPixelsPerFoot(ppf float64) Config {
	if ppf > 0 {
		c.PixelsPerFoot = ppf
	}
	return c
}
