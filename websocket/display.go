// file: websocket/display.go
package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"catfish-cull/logger"
	"catfish-cull/models"
	"catfish-cull/services"
)

// ErrDisplayClosed is returned for actions sent to a display that has been torn down.
var ErrDisplayClosed = errors.New("display closed")

// DisplayConfig holds the timing and layout of a check-in display.
type DisplayConfig struct {
	RefreshInterval  time.Duration
	DwellInterval    time.Duration
	ProgressInterval time.Duration
	Layout           services.Layout
	Viewport         services.Viewport
	CheckedInLimit   int

	// Names restricts which displays the manager will start; empty allows any
	// name up to MaxDisplays. IdleGrace is how long a display keeps running
	// after its last kiosk disconnects.
	Names     []string
	IdleGrace time.Duration
}

func (c DisplayConfig) validate() error {
	var errs []error
	if c.RefreshInterval <= 0 {
		errs = append(errs, errors.New("refresh interval must be positive"))
	}
	if c.DwellInterval <= 0 {
		errs = append(errs, errors.New("dwell interval must be positive"))
	}
	if c.ProgressInterval <= 0 {
		errs = append(errs, errors.New("progress interval must be positive"))
	}
	if c.IdleGrace < 0 {
		errs = append(errs, errors.New("idle grace must not be negative"))
	}
	return errors.Join(errs...)
}

// gaugeQueueSize bounds the metrics waiting to be sent for one display.
const gaugeQueueSize = 16

// pollResult carries one roster poll back into the loop.
type pollResult struct {
	roster []models.Team
	counts models.Counts
	err    error
}

// action is a user event queued onto the loop. reply gets the outcome.
type action struct {
	apply func(*Sequencer) error
	reply chan error
}

// Display runs one check-in board. All Sequencer access happens on the loop
// goroutine started by StartDisplay: timer ticks, poll results and user
// actions are handled one at a time in the order they arrive.
type Display struct {
	name      string
	src       services.DataSource
	cfg       DisplayConfig
	messenger Messenger
	metrics   Metrics

	actions chan action
	polls   chan pollResult
	gauges  chan func(Metrics)
	state   atomic.Pointer[DisplayState]

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// StartDisplay validates cfg and starts the display loop. The loop and every
// timer it owns stop when ctx is cancelled or Close is called.
func StartDisplay(ctx context.Context, name string, src services.DataSource, cfg DisplayConfig, messenger Messenger, metrics Metrics) (*Display, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("display %q: %w", name, err)
	}
	if src == nil {
		return nil, fmt.Errorf("display %q: no data source", name)
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	ctx, cancel := context.WithCancel(ctx)
	d := &Display{
		name:      name,
		src:       src,
		cfg:       cfg,
		messenger: messenger,
		metrics:   metrics,
		actions:   make(chan action),
		polls:     make(chan pollResult, 1),
		gauges:    make(chan func(Metrics), gaugeQueueSize),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	seq := NewSequencer(cfg.DwellInterval, cfg.ProgressInterval, cfg.Layout.PageSize(cfg.Viewport), cfg.CheckedInLimit)
	initial := seq.Snapshot()
	initial.Display = name
	d.state.Store(&initial)

	go d.run(ctx, seq)
	go d.reportGauges(ctx)
	logger.Info.Printf("[StartDisplay] Display '%s' started (refresh=%v dwell=%v)", name, cfg.RefreshInterval, cfg.DwellInterval)
	return d, nil
}

// Name returns the display id.
func (d *Display) Name() string { return d.name }

// State returns the most recently published projection. Safe from any goroutine.
func (d *Display) State() DisplayState {
	return *d.state.Load()
}

// Done is closed once the loop has exited and every timer is stopped.
func (d *Display) Done() <-chan struct{} { return d.done }

// Close tears the display down and waits for the loop to exit.
func (d *Display) Close() {
	d.closeOnce.Do(func() {
		d.cancel()
		<-d.done
		logger.Info.Printf("[Display.Close] Display '%s' stopped", d.name)
	})
}

// ------------------------ user actions ------------------------

// SwitchSection shows sec from its first page.
func (d *Display) SwitchSection(ctx context.Context, sec Section) error {
	return d.submit(ctx, func(s *Sequencer) error {
		s.SwitchSection(sec)
		return nil
	})
}

// AdvancePage moves the active section one page forward (+1) or back (-1).
func (d *Display) AdvancePage(ctx context.Context, delta int) error {
	if delta != 1 && delta != -1 {
		return fmt.Errorf("%w: page step must be +1 or -1, got %d", ErrInvalidAction, delta)
	}
	return d.submit(ctx, func(s *Sequencer) error {
		s.AdvancePage(delta)
		return nil
	})
}

// JumpToPage shows page n of the active section.
func (d *Display) JumpToPage(ctx context.Context, n int) error {
	return d.submit(ctx, func(s *Sequencer) error {
		s.JumpToPage(n)
		return nil
	})
}

// Resize recomputes the page size for a new viewport.
func (d *Display) Resize(ctx context.Context, vp services.Viewport) error {
	size := d.cfg.Layout.PageSize(vp)
	return d.submit(ctx, func(s *Sequencer) error {
		s.Resize(size)
		return nil
	})
}

// submit runs fn on the loop and waits for it to finish.
func (d *Display) submit(ctx context.Context, fn func(*Sequencer) error) error {
	a := action{apply: fn, reply: make(chan error, 1)}
	select {
	case d.actions <- a:
	case <-d.done:
		return ErrDisplayClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-a.reply:
		return err
	case <-d.done:
		return ErrDisplayClosed
	}
}

// ------------------------- event loop -------------------------

func (d *Display) run(ctx context.Context, seq *Sequencer) {
	defer close(d.done)

	refresh := time.NewTicker(d.cfg.RefreshInterval)
	defer refresh.Stop()
	dwell := time.NewTicker(d.cfg.DwellInterval)
	defer dwell.Stop()
	progress := time.NewTicker(d.cfg.ProgressInterval)
	defer progress.Stop()

	var (
		inFlight bool
		loaded   bool
		stale    bool
	)
	startPoll := func() {
		if inFlight {
			logger.Debug.Printf("[Display.run] '%s' previous poll still running; skipping refresh", d.name)
			return
		}
		inFlight = true
		go d.poll(ctx)
	}

	publish := func() {
		st := seq.Snapshot()
		st.Display, st.Loaded, st.Stale = d.name, loaded, stale
		st.UpdatedAt = time.Now()
		d.state.Store(&st)
		if d.messenger != nil {
			d.messenger.BroadcastState(st)
		}
	}

	startPoll()
	for {
		select {
		case <-ctx.Done():
			return

		case <-refresh.C:
			startPoll()

		case res := <-d.polls:
			inFlight = false
			if res.err != nil {
				stale = true
				logger.Warn.Printf("[Display.run] '%s' roster poll failed, keeping last good data: %v", d.name, res.err)
				d.report(func(m Metrics) { m.PublishPollFailure(d.name) })
			} else {
				b := services.Classify(res.roster)
				seq.Refresh(b, res.counts)
				loaded, stale = true, false
				counts := res.counts
				d.report(func(m Metrics) { m.PublishBucketSizes(d.name, counts) })
			}
			publish()

		case <-dwell.C:
			seq.DwellTick()
			publish()

		case <-progress.C:
			seq.ProgressTick()
			st := *d.state.Load()
			st.SectionProgress = seq.Progress()
			d.state.Store(&st)
			if d.messenger != nil {
				d.messenger.BroadcastProgress(d.name, st.SectionProgress)
			}

		case a := <-d.actions:
			err := d.apply(seq, a.apply)
			// publish first so the caller sees its own change in State()
			publish()
			a.reply <- err
		}
	}
}

// apply runs a user action and converts a panic into an error so the loop survives.
func (d *Display) apply(seq *Sequencer, fn func(*Sequencer) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error.Printf("[Display.apply] '%s' action panicked: %v", d.name, r)
			err = fmt.Errorf("action failed: %v", r)
		}
	}()
	return fn(seq)
}

// report queues a gauge for the metrics goroutine. The loop never waits on
// the metrics sink; gauges are dropped while the queue is full.
func (d *Display) report(fn func(Metrics)) {
	select {
	case d.gauges <- fn:
	default:
		logger.Debug.Printf("[Display.report] '%s' metrics queue full; dropping gauge", d.name)
	}
}

// reportGauges drains the gauge queue until the display stops.
func (d *Display) reportGauges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-d.gauges:
			fn(d.metrics)
		}
	}
}

// poll fetches the roster off the loop and hands the result back to it.
func (d *Display) poll(ctx context.Context) {
	var res pollResult
	res.roster, res.err = d.src.PollRoster(ctx)
	if res.err == nil {
		res.counts = services.PollCountsOrDerive(ctx, d.src, res.roster)
	}
	select {
	case d.polls <- res:
	case <-ctx.Done():
	}
}
