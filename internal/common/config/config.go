package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string `env:"PORT"          envDefault:"3000"`
	Environment  string `env:"ENV"           envDefault:"development"`
	ReadTimeout  int    `env:"READ_TIMEOUT"  envDefault:"10"`
	WriteTimeout int    `env:"WRITE_TIMEOUT" envDefault:"10"`

	DBPath     string        `env:"GEOMETRY_DB_PATH" envDefault:"data/db/geometry.db"`
	SessionTTL time.Duration `env:"SESSION_TTL"      envDefault:"2h"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	SnapPreset       string  `env:"SNAP_PRESET"        envDefault:"normal"`
	PixelsPerFoot    float64 `env:"PIXELS_PER_FOOT"    envDefault:"20"`
	MinSegmentLength float64 `env:"MIN_SEGMENT_LENGTH" envDefault:"1"`
	MinPerimeter     float64 `env:"MIN_PERIMETER"      envDefault:"10"`
	MaxArea          float64 `env:"MAX_AREA"           envDefault:"10000"`
	ClosureTolerance float64 `env:"CLOSURE_TOLERANCE"  envDefault:"1"`

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads .env files when present and then the process environment.
// Variables already set in the environment win over .env values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.PixelsPerFoot <= 0 {
		return fmt.Errorf("PIXELS_PER_FOOT must be positive, got %v", c.PixelsPerFoot)
	}
	if c.ClosureTolerance <= 0 {
		return fmt.Errorf("CLOSURE_TOLERANCE must be positive, got %v", c.ClosureTolerance)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %v", c.SessionTTL)
	}
	if c.MinSegmentLength < 0 || c.MinPerimeter < 0 || c.MaxArea <= 0 {
		return fmt.Errorf("validation thresholds out of range")
	}
	return nil
}
