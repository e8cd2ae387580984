package measure

import (
	"context"
	"fmt"
	"sync"
)

// ============================================================
// Device Manager
// ============================================================

// Manager holds at most one active device. It is passed to whoever needs it;
// there is no package-level instance.
type Manager struct {
	mu     sync.Mutex
	active Device
}

func NewManager() *Manager {
	return &Manager{}
}

// Activate connects d and makes it the active device. A previously active
// device is disconnected first.
func (m *Manager) Activate(ctx context.Context, d Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		if err := m.active.Disconnect(); err != nil {
			return fmt.Errorf("disconnect %s: %w", m.active.Info().Model, err)
		}
		m.active = nil
	}

	if err := d.Connect(ctx); err != nil {
		return fmt.Errorf("connect %s: %w", d.Info().Model, err)
	}
	m.active = d
	return nil
}

// Deactivate disconnects the active device, if any.
func (m *Manager) Deactivate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil
	}
	err := m.active.Disconnect()
	m.active = nil
	return err
}

func (m *Manager) Active() (Device, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active, m.active != nil
}

// Measure takes a single reading from the active device, so the manager itself
// can be handed to a capture session as its Source.
func (m *Manager) Measure(ctx context.Context) (Reading, error) {
	d, ok := m.Active()
	if !ok {
		return Reading{}, ErrNoActiveDevice
	}
	return d.Measure(ctx)
}
