// file: services/classifier.go
package services

import (
	"slices"

	"catfish-cull/models"
)

// BucketName labels one of the three check-in buckets.
type BucketName string

const (
	BucketArrived    BucketName = "arrived"
	BucketWaiting    BucketName = "waiting"
	BucketIncomplete BucketName = "incomplete"
)

// Buckets is the roster split for the check-in board. Every team lands in exactly one slice.
type Buckets struct {
	Arrived    []models.Team `json:"arrived"`
	Waiting    []models.Team `json:"waiting"`
	Incomplete []models.Team `json:"incomplete"`
}

// BucketOf places a single team. Registered wins over everything else, so an
// arrived team never drops back to waiting or incomplete.
func BucketOf(t models.Team) BucketName {
	switch {
	case t.Registered:
		return BucketArrived
	case !t.HasSecondCompetitor():
		return BucketIncomplete
	default:
		return BucketWaiting
	}
}

// Classify splits the roster. Waiting is ordered by team number, arrived by
// most recent activity first, incomplete keeps roster order.
func Classify(roster []models.Team) Buckets {
	var b Buckets
	for _, t := range roster {
		switch BucketOf(t) {
		case BucketArrived:
			b.Arrived = append(b.Arrived, t)
		case BucketWaiting:
			b.Waiting = append(b.Waiting, t)
		default:
			b.Incomplete = append(b.Incomplete, t)
		}
	}

	slices.SortStableFunc(b.Waiting, func(x, y models.Team) int {
		return x.TeamNumber - y.TeamNumber
	})
	slices.SortStableFunc(b.Arrived, func(x, y models.Team) int {
		return y.LastActivity().Compare(x.LastActivity())
	})
	return b
}

// Get returns the slice for the named bucket.
func (b Buckets) Get(name BucketName) []models.Team {
	switch name {
	case BucketArrived:
		return b.Arrived
	case BucketWaiting:
		return b.Waiting
	case BucketIncomplete:
		return b.Incomplete
	}
	return nil
}

// Counts derives the header numbers from the buckets.
func (b Buckets) Counts() models.Counts {
	return models.Counts{
		Total:      len(b.Arrived) + len(b.Waiting) + len(b.Incomplete),
		CheckedIn:  len(b.Arrived),
		Waiting:    len(b.Waiting),
		Incomplete: len(b.Incomplete),
	}
}

// CapArrived keeps only the most recent limit arrivals. A limit of zero or less keeps everything.
func (b Buckets) CapArrived(limit int) Buckets {
	if limit > 0 && len(b.Arrived) > limit {
		b.Arrived = b.Arrived[:limit:limit]
	}
	return b
}
