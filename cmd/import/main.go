// cmd/import/main.go
// Pairs a registration export into teams and optionally saves them.
//
// Usage:
//
//	go run ./cmd/import -csv export.csv
//	go run ./cmd/import -sheet <spreadsheet id> -credentials sa.json -commit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"catfish-cull/config"
	"catfish-cull/importer"
	"catfish-cull/logger"
	"catfish-cull/services"
	"catfish-cull/store"
)

// options are the parsed command line flags.
type options struct {
	csvPath     string
	sheetID     string
	tab         string
	credentials string
	start       int
	commit      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.csvPath, "csv", "", "path to a CSV export")
	flag.StringVar(&opts.sheetID, "sheet", "", "Google Sheets spreadsheet id")
	flag.StringVar(&opts.tab, "tab", "Sheet1", "sheet tab to read")
	flag.StringVar(&opts.credentials, "credentials", "", "service account JSON for -sheet")
	flag.IntVar(&opts.start, "start", 1, "first team number to assign")
	flag.BoolVar(&opts.commit, "commit", false, "insert the teams into the database")
	flag.Parse()

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		logger.Error.Printf("[import] %v", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

// run reads the registrants, prints the proposed teams and optionally saves them.
func run(ctx context.Context, opts options, out io.Writer) error {
	if (opts.csvPath == "") == (opts.sheetID == "") {
		return errors.New("exactly one of -csv or -sheet is required")
	}
	if opts.start < 1 {
		return errors.New("-start must be at least 1")
	}

	src, err := openSource(ctx, opts.csvPath, opts.sheetID, opts.tab, opts.credentials)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	regs, err := importer.Load(ctx, src, importer.DefaultColumns)
	if err != nil {
		return fmt.Errorf("read registrants: %w", err)
	}

	res := services.Reconcile(regs)
	for i := range res.Candidates {
		res.Candidates[i].TeamNumber += opts.start - 1
	}
	printPreview(out, res)

	if !opts.commit {
		return nil
	}
	teams, err := services.CandidatesToTeams(res.Candidates)
	if err != nil {
		return fmt.Errorf("validate teams: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.UsesDatabase() {
		return errors.New("-commit needs DATABASE_URL")
	}
	db, err := store.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := store.NewRepository(db).InsertTeams(ctx, teams); err != nil {
		return fmt.Errorf("insert teams: %w", err)
	}
	logger.Info.Printf("[import] %d teams saved", len(teams))
	fmt.Fprintf(out, "%d teams saved\n", len(teams))
	return nil
}

func openSource(ctx context.Context, csvPath, sheetID, tab, credentials string) (importer.Source, error) {
	if csvPath != "" {
		return importer.CSVSource{Path: csvPath}, nil
	}
	if credentials == "" {
		return nil, errors.New("-credentials is required with -sheet")
	}
	src, err := importer.NewSheetsSource(ctx, credentials, sheetID, tab)
	if err != nil {
		return nil, err
	}
	return src, nil
}

func printPreview(out io.Writer, res services.ImportResult) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TEAM\tCOMPETITOR 1\tCOMPETITOR 2\tMATCH\tNOTE")
	for _, c := range res.Candidates {
		match := c.MatchedBy
		if !c.Matched {
			match = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.TeamNumber, c.Competitor1.Name, c.Competitor2.Name, match, c.PartnerText)
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\n%d teams, %d unmatched", len(res.Candidates), res.Unmatched())
	if len(res.Skipped) > 0 {
		fmt.Fprintf(out, ", skipped rows %v", res.Skipped)
	}
	fmt.Fprintln(out)
}
