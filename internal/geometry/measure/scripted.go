package measure

import (
	"context"
	"sync"
	"time"
)

// ============================================================
// Scripted Device
// ============================================================

// Scripted replays a fixed list of readings. It backs the simulator endpoint
// and tests; real rangefinder drivers live outside this module.
type Scripted struct {
	info DeviceInfo

	mu        sync.Mutex
	readings  []Reading
	next      int
	connected bool
	cancel    context.CancelFunc
	done      chan struct{}
	interval  time.Duration
}

func NewScripted(model string, readings ...Reading) *Scripted {
	return &Scripted{
		info: DeviceInfo{
			Brand: "simulator",
			Model: model,
			Capabilities: Capabilities{
				Continuous: true,
				Bearing:    hasBearing(readings),
			},
		},
		readings: append([]Reading(nil), readings...),
		interval: 10 * time.Millisecond,
	}
}

func hasBearing(readings []Reading) bool {
	for _, r := range readings {
		if r.Bearing != nil {
			return true
		}
	}
	return false
}

func (s *Scripted) Info() DeviceInfo {
	return s.info
}

func (s *Scripted) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *Scripted) Disconnect() error {
	_ = s.StopContinuous()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

// Measure returns the next scripted reading.
func (s *Scripted) Measure(ctx context.Context) (Reading, error) {
	if err := ctx.Err(); err != nil {
		return Reading{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pop()
}

func (s *Scripted) pop() (Reading, error) {
	if !s.connected {
		return Reading{}, ErrNotConnected
	}
	if s.next >= len(s.readings) {
		return Reading{}, ErrExhausted
	}
	r := s.readings[s.next]
	s.next++
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	if r.DeviceModel == "" {
		r.DeviceModel = s.info.Model
	}
	return r, nil
}

// StartContinuous streams the remaining readings to fn until they run out,
// ctx ends or StopContinuous is called.
func (s *Scripted) StartContinuous(ctx context.Context, fn func(Reading)) error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return ErrNotConnected
	}
	if s.cancel != nil {
		s.mu.Unlock()
		return ErrAlreadyStreaming
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				r, err := s.pop()
				s.mu.Unlock()
				if err != nil {
					return
				}
				fn(r)
			}
		}
	}()
	return nil
}

func (s *Scripted) StopContinuous() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
