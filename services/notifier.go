// file: services/notifier.go
package services

import (
	"context"
	"fmt"
	"strings"

	"catfish-cull/logger"
)

// ResultNotice is what a team is told after weighing in.
type ResultNotice struct {
	Emails          []string
	TeamNumber      int
	TeamNames       string
	Division        string
	CatfishCount    int
	HeaviestGrams   int
	LightestGrams   int
	Eligible        bool
	ProtestDeadline string
	PrizegivingTime string
	LeaderboardURL  string
}

// ResultNotifier delivers a ResultNotice. Delivery failures never undo a weigh-in.
type ResultNotifier interface {
	NotifyResult(ctx context.Context, n ResultNotice) error
}

// Subject line for the notice.
func (n ResultNotice) Subject() string {
	return fmt.Sprintf("Your Catfish Cull Results - Team #%d [PROVISIONAL]", n.TeamNumber)
}

// Body renders the plain-text message.
func (n ResultNotice) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", n.TeamNames)
	b.WriteString("Great diving today! Here are your provisional results.\n\n")
	if !n.Eligible {
		b.WriteString("Note: 3-person teams are not eligible for prizes or placements.\n\n")
	}
	b.WriteString("These results are subject to protests and official review.\n")
	b.WriteString("Final results will be announced at prizegiving.\n\n")
	fmt.Fprintf(&b, "Team Number: #%d\n", n.TeamNumber)
	fmt.Fprintf(&b, "Division: %s\n", n.Division)
	fmt.Fprintf(&b, "Catfish Count: %d\n", n.CatfishCount)
	if n.HeaviestGrams > 0 {
		fmt.Fprintf(&b, "Heaviest Fish: %dg\n", n.HeaviestGrams)
	}
	if n.LightestGrams > 0 {
		fmt.Fprintf(&b, "Lightest Fish: %dg\n", n.LightestGrams)
	}
	b.WriteString("\n")
	if n.ProtestDeadline != "" {
		fmt.Fprintf(&b, "Protest Period: until %s today\n", n.ProtestDeadline)
	}
	if n.PrizegivingTime != "" {
		fmt.Fprintf(&b, "Prizegiving: %s\n", n.PrizegivingTime)
	}
	if n.LeaderboardURL != "" {
		fmt.Fprintf(&b, "\nLive leaderboard: %s\n", n.LeaderboardURL)
	}
	return b.String()
}

// LogNotifier writes the rendered notice to the log instead of sending it.
type LogNotifier struct{}

func (LogNotifier) NotifyResult(_ context.Context, n ResultNotice) error {
	if len(n.Emails) == 0 {
		logger.Warn.Printf("[LogNotifier] Team #%d has no email on file; notice not sent", n.TeamNumber)
		return nil
	}
	logger.Info.Printf("[LogNotifier] Would send %q to %s", n.Subject(), strings.Join(n.Emails, ", "))
	logger.Debug.Printf("[LogNotifier] Body:\n%s", n.Body())
	return nil
}
