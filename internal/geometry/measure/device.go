package measure

import (
	"context"
	"errors"
	"time"
)

// ============================================================
// Reading
// ============================================================

// Reading is a single resolved measurement. Bearing is in degrees and optional:
// most rangefinders report distance only.
type Reading struct {
	Distance    float64   `json:"distance"`
	Bearing     *float64  `json:"bearing,omitempty"`
	Quality     float64   `json:"quality"`
	Timestamp   time.Time `json:"timestamp"`
	DeviceModel string    `json:"deviceModel"`
}

// Source is all a capture session needs from the device side.
type Source interface {
	Measure(ctx context.Context) (Reading, error)
}

// ============================================================
// Devices
// ============================================================

var (
	ErrNotConnected     = errors.New("device not connected")
	ErrNoActiveDevice   = errors.New("no active measurement device")
	ErrExhausted        = errors.New("no readings left")
	ErrAlreadyStreaming = errors.New("continuous mode already running")
)

type Capabilities struct {
	Continuous bool `json:"continuous"`
	Bearing    bool `json:"bearing"`
}

type DeviceInfo struct {
	Brand        string       `json:"brand"`
	Model        string       `json:"model"`
	Firmware     string       `json:"firmware,omitempty"`
	Capabilities Capabilities `json:"capabilities"`
}

// Device is the fixed operation set every rangefinder family implements.
type Device interface {
	Source
	Info() DeviceInfo
	Connect(ctx context.Context) error
	Disconnect() error
	StartContinuous(ctx context.Context, fn func(Reading)) error
	StopContinuous() error
}
