// Package websocket drives the check-in kiosks: the page/section state machine,
// one event loop per display, and the WebSocket fan-out to connected screens.
// file: websocket/sequencer.go
package websocket

import (
	"fmt"
	"strings"
	"time"

	"catfish-cull/models"
	"catfish-cull/services"
)

// Section is one panel of the check-in board.
type Section string

const (
	SectionArriving   Section = "arriving"
	SectionIncomplete Section = "incomplete"
	SectionCheckedIn  Section = "checkedIn"
)

// sections is the fixed cycle order.
var sections = [...]Section{SectionArriving, SectionIncomplete, SectionCheckedIn}

// ParseSection accepts a section id in any case.
func ParseSection(s string) (Section, error) {
	for _, sec := range sections {
		if strings.EqualFold(s, string(sec)) {
			return sec, nil
		}
	}
	return "", fmt.Errorf("%w: unknown section %q", ErrInvalidAction, s)
}

// Bucket maps the panel to the roster bucket it shows.
func (s Section) Bucket() services.BucketName {
	switch s {
	case SectionArriving:
		return services.BucketWaiting
	case SectionIncomplete:
		return services.BucketIncomplete
	default:
		return services.BucketArrived
	}
}

// Label is the tab title.
func (s Section) Label() string {
	switch s {
	case SectionArriving:
		return "Waiting to Arrive"
	case SectionIncomplete:
		return "Incomplete Teams"
	default:
		return "Checked In"
	}
}

func (s Section) index() int {
	for i, sec := range sections {
		if sec == s {
			return i
		}
	}
	return 0
}

func (s Section) next() Section {
	return sections[(s.index()+1)%len(sections)]
}

// -------------------------- sequencer --------------------------

// Sequencer is the check-in board's view state: which section is showing,
// each section's page, and how far through its dwell the current page is.
//
// A Sequencer is not safe for concurrent use. Display owns one and only
// touches it from its event loop, so every tick and every user action reads
// and writes the current values in a single step.
type Sequencer struct {
	buckets        services.Buckets
	arrivedTotal   int
	counts         models.Counts
	checkedInLimit int

	pageSize     int
	active       Section
	pages        [len(sections)]int
	progress     float64
	progressStep float64
}

// NewSequencer starts on the arriving section, page 0, with empty buckets.
// progressStep is how much one progress tick adds so a full dwell reaches 100.
func NewSequencer(dwell, progressTick time.Duration, pageSize, checkedInLimit int) *Sequencer {
	step := 100.0
	if dwell >= progressTick && progressTick > 0 {
		step = 100 * float64(progressTick) / float64(dwell)
	}
	return &Sequencer{
		active:         SectionArriving,
		pageSize:       max(pageSize, 1),
		progressStep:   step,
		checkedInLimit: checkedInLimit,
	}
}

// Refresh replaces the buckets with a new poll result and pulls any page
// index that now points past the end back onto the last page.
func (s *Sequencer) Refresh(b services.Buckets, counts models.Counts) {
	s.arrivedTotal = len(b.Arrived)
	s.buckets = b.CapArrived(s.checkedInLimit)
	s.counts = counts
	s.clampAll()
}

// Resize changes the shared page size and re-clamps every section.
func (s *Sequencer) Resize(pageSize int) {
	s.pageSize = max(pageSize, 1)
	s.clampAll()
}

// DwellTick advances the active section by one page, or on its last page
// rewinds it and moves on to the next section.
func (s *Sequencer) DwellTick() {
	i := s.active.index()
	if s.pages[i]+1 < s.PageCount(s.active) {
		s.pages[i]++
	} else {
		s.pages[i] = 0
		s.active = s.active.next()
	}
	s.progress = 0
}

// ProgressTick moves the progress indicator towards 100.
func (s *Sequencer) ProgressTick() {
	s.progress = min(s.progress+s.progressStep, 100)
}

// SwitchSection shows sec from its first page.
func (s *Sequencer) SwitchSection(sec Section) {
	s.active = sec
	s.pages[sec.index()] = 0
	s.progress = 0
}

// AdvancePage steps the active section by delta pages, wrapping at either end.
func (s *Sequencer) AdvancePage(delta int) {
	i := s.active.index()
	s.pages[i] = services.WrapIndex(s.pages[i]+delta, s.PageCount(s.active))
	s.progress = 0
}

// JumpToPage shows page n of the active section, clamped into range.
func (s *Sequencer) JumpToPage(n int) {
	i := s.active.index()
	s.pages[i] = services.ClampIndex(n, s.PageCount(s.active))
	s.progress = 0
}

// PageCount is the number of pages in sec at the current page size, at least 1.
func (s *Sequencer) PageCount(sec Section) int {
	return services.PageCount(len(s.buckets.Get(sec.Bucket())), s.pageSize)
}

// Active returns the section on screen and its page.
func (s *Sequencer) Active() (Section, int) {
	return s.active, s.pages[s.active.index()]
}

// Progress returns the dwell progress in [0, 100].
func (s *Sequencer) Progress() float64 {
	return s.progress
}

func (s *Sequencer) clampAll() {
	activePage := s.pages[s.active.index()]
	for i, sec := range sections {
		s.pages[i] = services.ClampIndex(s.pages[i], s.PageCount(sec))
	}
	if s.pages[s.active.index()] != activePage {
		s.progress = 0
	}
}

// ------------------------- projection -------------------------

// TeamCard is what a kiosk prints for one team.
type TeamCard struct {
	TeamNumber       int      `json:"teamNumber"`
	Names            []string `json:"names"`
	Club             string   `json:"club,omitempty"`
	Divisions        []string `json:"divisions"`
	Shirts           []string `json:"shirts,omitempty"`
	SpecifiedPartner string   `json:"specifiedPartner,omitempty"`
	Trio             bool     `json:"trio,omitempty"`
}

func cardOf(t models.Team) TeamCard {
	var shirts []string
	for _, c := range []models.Competitor{t.Competitor1, t.Competitor2, t.Competitor3} {
		if c.Present() && strings.TrimSpace(c.Shirt) != "" {
			shirts = append(shirts, strings.TrimSpace(c.Shirt))
		}
	}
	return TeamCard{
		TeamNumber:       t.TeamNumber,
		Names:            t.Names(),
		Club:             t.Club,
		Divisions:        t.Divisions(),
		Shirts:           shirts,
		SpecifiedPartner: t.SpecifiedPartner(),
		Trio:             t.HasThirdCompetitor(),
	}
}

// SectionView is one section's current page.
type SectionView struct {
	Section   Section    `json:"section"`
	Label     string     `json:"label"`
	Total     int        `json:"total"`
	Teams     []TeamCard `json:"teams"`
	PageIndex int        `json:"pageIndex"`
	PageCount int        `json:"pageCount"`
}

// DisplayState is the render projection sent to kiosks.
type DisplayState struct {
	Display         string        `json:"display"`
	ActiveSection   Section       `json:"activeSection"`
	PageIndex       int           `json:"pageIndex"`
	PageCount       int           `json:"pageCount"`
	SectionProgress float64       `json:"sectionProgress"`
	PageSize        int           `json:"pageSize"`
	Counts          models.Counts `json:"counts"`
	Sections        []SectionView `json:"sections"`
	CheckedInShown  int           `json:"checkedInShown"`
	CheckedInTotal  int           `json:"checkedInTotal"`
	Loaded          bool          `json:"loaded"`
	Stale           bool          `json:"stale"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// Snapshot projects the current state. Every section gets its current page,
// clamped against the buckets as they are now.
func (s *Sequencer) Snapshot() DisplayState {
	st := DisplayState{
		ActiveSection:   s.active,
		SectionProgress: s.progress,
		PageSize:        s.pageSize,
		Counts:          s.counts,
		CheckedInShown:  len(s.buckets.Arrived),
		CheckedInTotal:  s.arrivedTotal,
		Sections:        make([]SectionView, 0, len(sections)),
	}
	for i, sec := range sections {
		page := services.Paginate(s.buckets.Get(sec.Bucket()), s.pageSize, s.pages[i])
		cards := make([]TeamCard, 0, len(page.Items))
		for _, t := range page.Items {
			cards = append(cards, cardOf(t))
		}
		st.Sections = append(st.Sections, SectionView{
			Section:   sec,
			Label:     sec.Label(),
			Total:     len(s.buckets.Get(sec.Bucket())),
			Teams:     cards,
			PageIndex: page.Index,
			PageCount: page.PageCount,
		})
		if sec == s.active {
			st.PageIndex, st.PageCount = page.Index, page.PageCount
		}
	}
	return st
}
