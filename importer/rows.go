// Package importer reads ticketing exports and turns them into registrants for the Reconciler.
// file: importer/rows.go
package importer

import (
	"context"
	"errors"
	"strings"

	"catfish-cull/logger"
	"catfish-cull/services"
)

// ErrNoHeader is returned for an export without a header row.
var ErrNoHeader = errors.New("export has no header row")

// Row is one export record keyed by normalised column name.
type Row map[string]string

// Get looks a column up by its header text, ignoring case and surrounding space.
func (r Row) Get(column string) string {
	if column == "" {
		return ""
	}
	return strings.TrimSpace(r[normaliseHeader(column)])
}

// Source yields the data rows of an export.
type Source interface {
	Rows(ctx context.Context) ([]Row, error)
}

// ColumnMap names the export columns that feed each registrant field.
// FirstName and LastName are used when Name is absent or blank.
type ColumnMap struct {
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Shirt     string `json:"shirt"`
	Partner   string `json:"partner"`
	Club      string `json:"club"`
	Junior    string `json:"junior"`
	Women     string `json:"women"`
}

// DefaultColumns matches the ticketing export the club uses.
var DefaultColumns = ColumnMap{
	Name:      "Name",
	FirstName: "First Name",
	LastName:  "Last Name",
	Email:     "Email",
	Shirt:     "T-Shirt Size",
	Partner:   "Partner Name",
	Club:      "Club",
	Junior:    "Junior",
	Women:     "Women",
}

// Registrants maps rows to registrants. Row numbers are spreadsheet rows, so
// the first data row is 2.
func Registrants(rows []Row, cols ColumnMap) []services.Registrant {
	out := make([]services.Registrant, 0, len(rows))
	for i, r := range rows {
		name := r.Get(cols.Name)
		if name == "" {
			name = strings.TrimSpace(r.Get(cols.FirstName) + " " + r.Get(cols.LastName))
		}
		out = append(out, services.Registrant{
			Row:         i + 2,
			Name:        name,
			Email:       r.Get(cols.Email),
			Shirt:       r.Get(cols.Shirt),
			PartnerName: r.Get(cols.Partner),
			Club:        r.Get(cols.Club),
			IsJunior:    truthy(r.Get(cols.Junior)),
			IsWomen:     truthy(r.Get(cols.Women)),
		})
	}
	return out
}

// Load reads src and maps it with cols.
func Load(ctx context.Context, src Source, cols ColumnMap) ([]services.Registrant, error) {
	rows, err := src.Rows(ctx)
	if err != nil {
		return nil, err
	}
	regs := Registrants(rows, cols)
	logger.Info.Printf("[importer.Load] Read %d registrants", len(regs))
	return regs, nil
}

// rowsFromTable keys every data row by the header row. Short rows are padded
// with blanks. Blank rows are kept so row numbers match the sheet; the
// Reconciler reports them as skipped.
func rowsFromTable(table [][]string) ([]Row, error) {
	if len(table) == 0 {
		return nil, ErrNoHeader
	}
	header := make([]string, len(table[0]))
	for i, h := range table[0] {
		header[i] = normaliseHeader(h)
	}

	rows := make([]Row, 0, len(table)-1)
	for _, rec := range table[1:] {
		row := make(Row, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normaliseHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes", "true", "1", "x":
		return true
	}
	return false
}
