// file: services/viewport.go
package services

import "slices"

// Viewport is the kiosk's reported size in CSS pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Breakpoint switches to Columns once the viewport is at least MinWidth wide.
type Breakpoint struct {
	MinWidth int
	Columns  int
}

// Layout holds the fixed geometry of the check-in board.
type Layout struct {
	ItemHeight  int
	Overhead    int
	Breakpoints []Breakpoint
}

// DefaultBreakpoints matches the board's grid: 2 columns, then 3/4/5 at the sm/md/lg widths.
var DefaultBreakpoints = []Breakpoint{
	{MinWidth: 0, Columns: 2},
	{MinWidth: 640, Columns: 3},
	{MinWidth: 768, Columns: 4},
	{MinWidth: 1024, Columns: 5},
}

// NewLayout builds a Layout with the default breakpoints.
func NewLayout(itemHeight, overhead int) Layout {
	return Layout{ItemHeight: itemHeight, Overhead: overhead, Breakpoints: DefaultBreakpoints}
}

// Columns picks the column count for a width.
func (l Layout) Columns(width int) int {
	bps := slices.Clone(l.Breakpoints)
	slices.SortFunc(bps, func(a, b Breakpoint) int { return a.MinWidth - b.MinWidth })

	cols := 1
	for _, bp := range bps {
		if width >= bp.MinWidth && bp.Columns > 0 {
			cols = bp.Columns
		}
	}
	return cols
}

// Rows is how many item rows fit below the chrome, at least one.
func (l Layout) Rows(height int) int {
	if l.ItemHeight <= 0 {
		return 1
	}
	return max(1, (height-l.Overhead)/l.ItemHeight)
}

// PageSize is rows times columns. It is shared by every bucket and never zero.
func (l Layout) PageSize(v Viewport) int {
	return l.Rows(v.Height) * l.Columns(v.Width)
}
