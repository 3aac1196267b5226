// file: services/results_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"catfish-cull/logger"
	"catfish-cull/models"

	"github.com/google/uuid"
)

// CatchSubmission is a weigh-in as entered by the weighmaster.
type CatchSubmission struct {
	TeamNumber        int      `json:"teamNumber"`
	CatfishCount      int      `json:"catfishCount"`
	HeaviestFishGrams *int     `json:"heaviestFishGrams"`
	LightestFishGrams *int     `json:"lightestFishGrams"`
	PhotoURLs         []string `json:"photoUrls"`
}

func (s CatchSubmission) validate() error {
	if s.TeamNumber <= 0 {
		return fmt.Errorf("%w: team number is required", ErrInvalidCatch)
	}
	if s.CatfishCount < 0 {
		return fmt.Errorf("%w: catfish count cannot be negative", ErrInvalidCatch)
	}
	if s.HeaviestFishGrams != nil && *s.HeaviestFishGrams <= 0 {
		return fmt.Errorf("%w: heaviest fish must be positive grams", ErrInvalidCatch)
	}
	if s.LightestFishGrams != nil && *s.LightestFishGrams <= 0 {
		return fmt.Errorf("%w: lightest fish must be positive grams", ErrInvalidCatch)
	}
	return nil
}

// ResultsService runs the weigh-in, protest and finalisation workflow.
type ResultsService struct {
	repo           Repository
	notifier       ResultNotifier
	leaderboardURL string
}

// NewResultsService wires the workflow. A nil notifier falls back to LogNotifier.
func NewResultsService(repo Repository, notifier ResultNotifier, leaderboardURL string) *ResultsService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &ResultsService{repo: repo, notifier: notifier, leaderboardURL: leaderboardURL}
}

// SubmitCatch records a provisional catch for a team and notifies the team.
// A newer submission for the same team replaces the older one on the leaderboard.
func (s *ResultsService) SubmitCatch(ctx context.Context, sub CatchSubmission) (models.CatchEntry, error) {
	if err := sub.validate(); err != nil {
		return models.CatchEntry{}, err
	}
	event, err := s.repo.PollEventState(ctx)
	if err != nil {
		return models.CatchEntry{}, fmt.Errorf("load event state: %w", err)
	}
	if event.IsFinal() {
		return models.CatchEntry{}, ErrEventFinal
	}

	team, err := s.repo.TeamByNumber(ctx, sub.TeamNumber)
	if err != nil {
		return models.CatchEntry{}, err
	}

	entry := models.CatchEntry{
		TeamID:            team.ID,
		CatfishCount:      sub.CatfishCount,
		HeaviestFishGrams: sub.HeaviestFishGrams,
		LightestFishGrams: sub.LightestFishGrams,
		PhotoURLs:         nonNil(sub.PhotoURLs),
		Status:            models.StatusProvisional,
	}
	if err := s.repo.InsertCatch(ctx, &entry); err != nil {
		return models.CatchEntry{}, fmt.Errorf("insert catch: %w", err)
	}
	logger.Info.Printf("[SubmitCatch] Team #%d weighed in %d catfish (catch %s)", team.TeamNumber, entry.CatfishCount, entry.ID)

	notice := ResultNotice{
		Emails:          team.Emails(),
		TeamNumber:      team.TeamNumber,
		TeamNames:       team.DisplayName(),
		Division:        strings.Join(team.Divisions(), ", "),
		CatfishCount:    entry.CatfishCount,
		Eligible:        !team.HasThirdCompetitor(),
		ProtestDeadline: event.ProtestDeadline,
		PrizegivingTime: event.PrizegivingTime,
		LeaderboardURL:  s.leaderboardURL,
	}
	notice.HeaviestGrams, _ = entry.Heaviest()
	notice.LightestGrams, _ = entry.Lightest()
	if err := s.notifier.NotifyResult(ctx, notice); err != nil {
		logger.Warn.Printf("[SubmitCatch] Result notice for team #%d failed: %v", team.TeamNumber, err)
	}
	return entry, nil
}

// SetCatchStatus moves a catch between statuses and returns the status as
// stored. Status names are case-insensitive. Protests need notes; nothing
// changes once results are final.
func (s *ResultsService) SetCatchStatus(ctx context.Context, id uuid.UUID, status models.CatchStatus, notes string) (models.CatchStatus, error) {
	parsed, err := models.ParseCatchStatus(string(status))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidStatus, err)
	}
	notes = strings.TrimSpace(notes)
	if parsed == models.StatusUnderProtest && notes == "" {
		return "", fmt.Errorf("%w: a protest needs notes", ErrInvalidStatus)
	}

	event, err := s.repo.PollEventState(ctx)
	if err != nil {
		return "", fmt.Errorf("load event state: %w", err)
	}
	if event.IsFinal() {
		return "", ErrEventFinal
	}

	if err := s.repo.UpdateCatchStatus(ctx, id, parsed, notes); err != nil {
		return "", err
	}
	logger.Info.Printf("[SetCatchStatus] Catch %s is now %s", id, parsed)
	return parsed, nil
}

// FinalizeResults confirms every provisional catch and locks the event.
func (s *ResultsService) FinalizeResults(ctx context.Context) (int, error) {
	n, err := s.repo.Finalize(ctx)
	if err != nil {
		return 0, err
	}
	logger.Info.Printf("[FinalizeResults] Results finalised; %d provisional catches confirmed", n)
	return n, nil
}

// StatusCounts tallies the active catches by status for the results screen.
func (s *ResultsService) StatusCounts(ctx context.Context) (map[models.CatchStatus]int, error) {
	rows, err := s.repo.PollCatches(ctx, models.DivisionAll)
	if err != nil {
		return nil, err
	}
	counts := make(map[models.CatchStatus]int, len(models.CatchStatuses))
	for _, st := range models.CatchStatuses {
		counts[st] = 0
	}
	for _, r := range rows {
		counts[r.Catch.Status]++
	}
	return counts, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
