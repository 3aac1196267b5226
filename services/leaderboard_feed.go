// file: services/leaderboard_feed.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"catfish-cull/logger"
	"catfish-cull/models"
)

// ErrFeedNotReady is returned until the first successful poll.
var ErrFeedNotReady = errors.New("leaderboard not loaded yet")

// LeaderboardSnapshot is everything the public leaderboard page shows for one tab.
type LeaderboardSnapshot struct {
	Leaderboard
	Tabs      []DivisionTab     `json:"tabs"`
	Stats     Stats             `json:"stats"`
	Latest    []LatestEntry     `json:"latest"`
	Event     models.EventState `json:"event"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// LeaderboardFeed polls the DataSource on a fixed interval and keeps the last
// good poll. Readers rank from that copy, so a failed poll never empties the board.
type LeaderboardFeed struct {
	src      DataSource
	interval time.Duration
	latestN  int

	mu        sync.RWMutex
	roster    []models.Team
	catches   []models.TeamCatch
	event     models.EventState
	ready     bool
	updatedAt time.Time
}

// NewLeaderboardFeed creates a feed; call Run to start polling.
func NewLeaderboardFeed(src DataSource, interval time.Duration, latestN int) *LeaderboardFeed {
	return &LeaderboardFeed{src: src, interval: interval, latestN: latestN}
}

// Run polls once straight away and then every interval until ctx is done.
func (f *LeaderboardFeed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.poll(ctx)
	for {
		select {
		case <-ticker.C:
			f.poll(ctx)
		case <-ctx.Done():
			logger.Info.Println("[LeaderboardFeed] Stopped")
			return
		}
	}
}

func (f *LeaderboardFeed) poll(ctx context.Context) {
	if err := f.Refresh(ctx); err != nil && ctx.Err() == nil {
		logger.Warn.Printf("[LeaderboardFeed] Poll failed, keeping last good data: %v", err)
	}
}

// Refresh performs one poll. On any error the previous data is kept whole.
func (f *LeaderboardFeed) Refresh(ctx context.Context) error {
	roster, err := f.src.PollRoster(ctx)
	if err != nil {
		return fmt.Errorf("poll roster: %w", err)
	}
	catches, err := f.src.PollCatches(ctx, models.DivisionAll)
	if err != nil {
		return fmt.Errorf("poll catches: %w", err)
	}
	event, err := f.src.PollEventState(ctx)
	if err != nil {
		return fmt.Errorf("poll event state: %w", err)
	}

	f.mu.Lock()
	f.roster, f.catches, f.event = roster, catches, event
	f.ready = true
	f.updatedAt = time.Now()
	f.mu.Unlock()
	return nil
}

// Snapshot ranks the cached catches for a division tab.
func (f *LeaderboardFeed) Snapshot(division models.Division) (LeaderboardSnapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.ready {
		return LeaderboardSnapshot{}, ErrFeedNotReady
	}
	return LeaderboardSnapshot{
		Leaderboard: Rank(f.catches, division),
		Tabs:        DivisionTabs(f.roster),
		Stats:       CatchStats(f.catches),
		Latest:      LatestEntries(f.catches, f.latestN),
		Event:       f.event,
		UpdatedAt:   f.updatedAt,
	}, nil
}
