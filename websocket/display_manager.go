// display_manager.go
package websocket

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"catfish-cull/logger"
	"catfish-cull/services"
)

var (
	ErrUnknownAction     = errors.New("unknown action")
	ErrInvalidAction     = errors.New("invalid action")
	ErrTooManyDisplays   = errors.New("too many displays")
	ErrUnknownDisplay    = errors.New("unknown display")
	ErrDisplayNotRunning = errors.New("display not running")
)

// Kiosk action names, shared by the WebSocket protocol and the HTTP routes.
const (
	ActionSwitchSection = "switchSection"
	ActionAdvancePage   = "advancePage"
	ActionJumpToPage    = "jumpToPage"
	ActionResize        = "resize"
)

// MaxDisplays bounds how many named displays can be running at once.
const MaxDisplays = 16

// DisplayManager starts a display when its first kiosk connects and stops it
// once the last one has been gone for cfg.IdleGrace. Each named display has
// its own Sequencer, so two kiosks on different names can page independently
// while sharing one data source.
type DisplayManager struct {
	ctx       context.Context
	src       services.DataSource
	cfg       DisplayConfig
	messenger Messenger
	metrics   Metrics

	mu       sync.Mutex
	displays map[string]*Display
	idle     map[string]*time.Timer
	closed   bool
}

// NewDisplayManager creates a manager. Displays it starts stop when ctx is cancelled.
func NewDisplayManager(ctx context.Context, src services.DataSource, cfg DisplayConfig, messenger Messenger, metrics Metrics) *DisplayManager {
	return &DisplayManager{
		ctx:       ctx,
		src:       src,
		cfg:       cfg,
		messenger: messenger,
		metrics:   metrics,
		displays:  make(map[string]*Display),
		idle:      make(map[string]*time.Timer),
	}
}

func (m *DisplayManager) allowed(name string) bool {
	return len(m.cfg.Names) == 0 || slices.Contains(m.cfg.Names, name)
}

// GetDisplay returns the named display, starting it if needed. A pending idle
// release for the name is cancelled.
func (m *DisplayManager) GetDisplay(name string) (*Display, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrDisplayClosed
	}
	if !m.allowed(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDisplay, name)
	}
	m.cancelIdleLocked(name)

	if d := m.runningLocked(name); d != nil {
		return d, nil
	}
	if len(m.displays) >= MaxDisplays {
		return nil, fmt.Errorf("%w (max %d)", ErrTooManyDisplays, MaxDisplays)
	}

	logger.Info.Printf("[GetDisplay] Creating new display '%s'", name)
	d, err := StartDisplay(m.ctx, name, m.src, m.cfg, m.messenger, m.metrics)
	if err != nil {
		return nil, err
	}
	m.displays[name] = d
	return d, nil
}

// lookup returns a running display without starting one.
func (m *DisplayManager) lookup(name string) (*Display, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrDisplayClosed
	}
	if !m.allowed(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDisplay, name)
	}
	if d := m.runningLocked(name); d != nil {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrDisplayNotRunning, name)
}

// runningLocked returns the live display for name, forgetting it if it has
// stopped underneath us.
func (m *DisplayManager) runningLocked(name string) *Display {
	d, ok := m.displays[name]
	if !ok {
		return nil
	}
	select {
	case <-d.Done():
		delete(m.displays, name)
		return nil
	default:
		return d
	}
}

// Open starts the named display if needed and returns its state. Kiosks
// call this before connecting.
func (m *DisplayManager) Open(name string) (DisplayState, error) {
	d, err := m.GetDisplay(name)
	if err != nil {
		return DisplayState{}, err
	}
	return d.State(), nil
}

// CurrentState returns the latest projection of a running display.
func (m *DisplayManager) CurrentState(name string) (DisplayState, error) {
	d, err := m.lookup(name)
	if err != nil {
		return DisplayState{}, err
	}
	return d.State(), nil
}

// HandleAction applies a kiosk or HTTP action to a running display.
func (m *DisplayManager) HandleAction(ctx context.Context, name string, msg ClientMessage) error {
	d, err := m.lookup(name)
	if err != nil {
		return err
	}

	switch msg.Action {
	case ActionSwitchSection:
		sec, err := ParseSection(msg.Section)
		if err != nil {
			return err
		}
		return d.SwitchSection(ctx, sec)
	case ActionAdvancePage:
		return d.AdvancePage(ctx, msg.Delta)
	case ActionJumpToPage:
		return d.JumpToPage(ctx, msg.Page)
	case ActionResize:
		return d.Resize(ctx, services.Viewport{Width: msg.Width, Height: msg.Height})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}
}

// ---------------------- kiosk lifecycle ----------------------

// Acquire is called when a kiosk connects to name.
func (m *DisplayManager) Acquire(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelIdleLocked(name)
}

// Release is called when the last kiosk on name disconnects. The display is
// closed after IdleGrace unless a kiosk comes back first.
func (m *DisplayManager) Release(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if _, ok := m.displays[name]; !ok {
		return
	}
	m.cancelIdleLocked(name)

	var t *time.Timer
	t = time.AfterFunc(m.cfg.IdleGrace, func() {
		m.mu.Lock()
		if m.idle[name] != t {
			// re-acquired or rescheduled since
			m.mu.Unlock()
			return
		}
		delete(m.idle, name)
		d := m.displays[name]
		delete(m.displays, name)
		m.mu.Unlock()

		if d != nil {
			logger.Info.Printf("[Release] No kiosks on '%s' for %v; stopping display", name, m.cfg.IdleGrace)
			d.Close()
		}
	})
	m.idle[name] = t
}

func (m *DisplayManager) cancelIdleLocked(name string) {
	if t, ok := m.idle[name]; ok {
		t.Stop()
		delete(m.idle, name)
	}
}

// Names lists the running displays.
func (m *DisplayManager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.displays))
	for n := range m.displays {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// CloseDisplay stops one display.
func (m *DisplayManager) CloseDisplay(name string) {
	m.mu.Lock()
	d, ok := m.displays[name]
	delete(m.displays, name)
	m.cancelIdleLocked(name)
	m.mu.Unlock()

	if !ok {
		logger.Warn.Printf("[CloseDisplay] Attempted to close non-existent display '%s'", name)
		return
	}
	d.Close()
}

// CloseAll stops every display; later lookups fail with ErrDisplayClosed.
func (m *DisplayManager) CloseAll() {
	m.mu.Lock()
	m.closed = true
	displays := m.displays
	m.displays = make(map[string]*Display)
	for name := range m.idle {
		m.cancelIdleLocked(name)
	}
	m.mu.Unlock()

	for _, d := range displays {
		d.Close()
	}
}
