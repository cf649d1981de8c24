package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/prftrack/prf-app-excel/engine"
	"github.com/prftrack/prf-app-excel/store"
)

var PullCmd = Pull{
	mode:   "",
	year:   0,
	dryRun: false,
	format: formatJSON,
}

// Pull merges the worksheet row for a purchase request back into the database. Blank cells
// never overwrite database values.
type Pull struct {
	selector
	mode   string
	year   int
	dryRun bool
	format string
}

func (cmd *Pull) Name() string {
	return "pull"
}

func (cmd *Pull) Description() string {
	return "Updates a purchase request from the PRF register worksheet"
}

func (cmd *Pull) Usage() string {
	return "--prf <PRF number> | --id <id>"
}

func (cmd *Pull) Help() string {
	return fmt.Sprintf(`Reads the PRF register worksheet row for a purchase request and merges the worksheet
values into the database. Blank worksheet cells leave the database values unchanged. The
changes are listed as JSON or as a TSV table (--format tsv).

Examples:
  %[1]v pull --prf PRF-2024-0042
  %[1]v pull --id 1042 --dry-run --format tsv`, APP)
}

func (cmd *Pull) Flags(flagset *pflag.FlagSet) {
	cmd.selector.flags(flagset)

	flagset.StringVar(&cmd.mode, "mode", cmd.mode, "Worksheet mode ('single' or 'scan'). Defaults to EXCEL_SYNC_MODE")
	flagset.IntVar(&cmd.year, "year", cmd.year, "Budget year used to order the worksheets in 'scan' mode")
	flagset.BoolVar(&cmd.dryRun, "dry-run", cmd.dryRun, "Lists the changes without updating the database")
	flagset.StringVar(&cmd.format, "format", cmd.format, "Output format ('json' or 'tsv')")
}

func (cmd *Pull) Execute(ctx context.Context, options *Options) error {
	if err := cmd.validate(); err != nil {
		return err
	}

	m, err := mode(cmd.mode)
	if err != nil {
		return err
	}

	f, err := format(cmd.format)
	if err != nil {
		return err
	}

	cfg, err := load(options)
	if err != nil {
		return err
	}

	if m != "" {
		cfg.Excel.SyncMode = string(m)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := store.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return err
	}

	defer db.Close()

	record, err := cmd.load(ctx, db)
	if err != nil {
		return err
	}

	opts := engine.Options{
		Mode:   m,
		Year:   cmd.year,
		DryRun: cmd.dryRun,
	}

	outcome, err := newEngine(cfg, db).Pull(ctx, record, opts)
	if err != nil {
		return err
	}

	switch {
	case cmd.dryRun:
		infof("%v: %v changes in '%v' row %v (dry run)", record.PRFNo, len(outcome.Changes), outcome.SheetName, outcome.RowNumber)

	case outcome.Updated:
		infof("%v: updated from '%v' row %v", record.PRFNo, outcome.SheetName, outcome.RowNumber)

	default:
		warnf("%v: purchase request %v was not updated", record.PRFNo, cmd.selector.String())
	}

	if f == formatTSV {
		return changesToTSV(stdout(options), outcome)
	}

	return printJSON(stdout(options), outcome)
}
