// file: importer/sheets.go
package importer

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// SheetsSource reads the export straight from a Google Sheet.
type SheetsSource struct {
	srv           *sheetsv4.Service
	spreadsheetID string
	sheet         string
}

// NewSheetsSource authenticates with a service account key file.
func NewSheetsSource(ctx context.Context, serviceAccountJSONPath, spreadsheetID, sheet string) (*SheetsSource, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	return NewSheetsSourceWithOptions(ctx, spreadsheetID, sheet,
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(sheetsv4.SpreadsheetsReadonlyScope),
	)
}

// NewSheetsSourceWithOptions builds the Sheets client from arbitrary client options.
func NewSheetsSourceWithOptions(ctx context.Context, spreadsheetID, sheet string, opts ...option.ClientOption) (*SheetsSource, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	srv, err := sheetsv4.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	if sheet == "" {
		sheet = "Sheet1"
	}
	return &SheetsSource{srv: srv, spreadsheetID: spreadsheetID, sheet: sheet}, nil
}

func (s *SheetsSource) Rows(ctx context.Context) ([]Row, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, s.sheet+"!A:Z").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", s.sheet, err)
	}

	table := make([][]string, len(resp.Values))
	for i, rec := range resp.Values {
		table[i] = make([]string, len(rec))
		for j, v := range rec {
			table[i][j] = fmt.Sprint(v)
		}
	}
	return rowsFromTable(table)
}
