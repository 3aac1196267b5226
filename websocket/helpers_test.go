// Shared fakes for the websocket tests.
package websocket

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"catfish-cull/models"
	"catfish-cull/services"

	"github.com/gorilla/websocket"
)

// recordingMessenger keeps every broadcast state.
type recordingMessenger struct {
	mu     sync.Mutex
	states   []DisplayState
	progress []float64
}

func (r *recordingMessenger) BroadcastState(state DisplayState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *recordingMessenger) BroadcastProgress(_ string, progress float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, progress)
}

// count is the number of frames of either kind.
func (r *recordingMessenger) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states) + len(r.progress)
}

func (r *recordingMessenger) counts() (states, progress int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states), len(r.progress)
}

// flakySource fails PollRoster while failing is set.
type flakySource struct {
	services.DataSource
	failing atomic.Bool
	polls   atomic.Int32
}

func (f *flakySource) PollRoster(ctx context.Context) ([]models.Team, error) {
	f.polls.Add(1)
	if f.failing.Load() {
		return nil, context.DeadlineExceeded
	}
	return f.DataSource.PollRoster(ctx)
}

// fakeConn implements WSConn. Reads come from inbox; writes are recorded.
type fakeConn struct {
	mu      sync.Mutex
	written [][]byte
	pings   int
	closed  bool
	inbox   chan []byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbox: make(chan []byte, 8)}
}

func (fc *fakeConn) WriteMessage(messageType int, data []byte) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	switch messageType {
	case websocket.PingMessage:
		fc.pings++
	case websocket.TextMessage:
		fc.written = append(fc.written, data)
	}
	return nil
}

func (fc *fakeConn) messages() [][]byte {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return append([][]byte(nil), fc.written...)
}

func (fc *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (fc *fakeConn) ReadMessage() (int, []byte, error) {
	msg, ok := <-fc.inbox
	if !ok {
		return 0, nil, net.ErrClosed
	}
	return websocket.TextMessage, msg, nil
}

func (fc *fakeConn) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.closed = true
	return nil
}

func (fc *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 12345}
}

func (fc *fakeConn) SetReadLimit(int64)                {}
func (fc *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (fc *fakeConn) SetPongHandler(func(string) error) {}

// seededSource returns a memory source holding the given roster.
func seededSource(teams []models.Team) *services.MemorySource {
	src := services.NewMemorySource("5:00 PM", "6:30 PM")
	if err := src.InsertTeams(context.Background(), teams); err != nil {
		panic(err)
	}
	return src
}

// testConfig pages two teams at a time and never ticks dwell or progress
// unless the test shortens them.
func testConfig() DisplayConfig {
	return DisplayConfig{
		RefreshInterval:  20 * time.Millisecond,
		DwellInterval:    time.Hour,
		ProgressInterval: time.Hour,
		Layout:           services.Layout{ItemHeight: 100, Breakpoints: []services.Breakpoint{{MinWidth: 0, Columns: 1}}},
		Viewport:         services.Viewport{Width: 800, Height: 200},
	}
}
