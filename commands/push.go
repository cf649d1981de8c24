package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/prftrack/prf-app-excel/engine"
	"github.com/prftrack/prf-app-excel/prf"
	"github.com/prftrack/prf-app-excel/store"
)

var PushCmd = Push{
	mode: "",
	year: 0,
}

// Push writes a purchase request from the database to the worksheet, updating the row with the
// same PRF number or appending a new row.
type Push struct {
	selector
	mode string
	year int
}

func (cmd *Push) Name() string {
	return "push"
}

func (cmd *Push) Description() string {
	return "Writes a purchase request to the PRF register worksheet"
}

func (cmd *Push) Usage() string {
	return "--prf <PRF number> | --id <id>"
}

func (cmd *Push) Help() string {
	return fmt.Sprintf(`Writes a purchase request from the database to the PRF register worksheet. The row with
the same PRF number is updated if it exists (only the columns with a matching field are
written), otherwise a new row is appended after the last used row.

In 'scan' mode every worksheet whose name contains EXCEL_WORKSHEET_PREFIX is searched and new
rows are appended to the worksheet for the budget year (--year, defaulting to the record's
budget year) if there is one.

Examples:
  %[1]v push --prf PRF-2024-0042
  %[1]v --debug push --id 1042 --mode scan --year 2025`, APP)
}

func (cmd *Push) Flags(flagset *pflag.FlagSet) {
	cmd.selector.flags(flagset)

	flagset.StringVar(&cmd.mode, "mode", cmd.mode, "Worksheet mode ('single' or 'scan'). Defaults to EXCEL_SYNC_MODE")
	flagset.IntVar(&cmd.year, "year", cmd.year, "Budget year used to choose the worksheet in 'scan' mode")
}

func (cmd *Push) Execute(ctx context.Context, options *Options) error {
	if err := cmd.validate(); err != nil {
		return err
	}

	m, err := mode(cmd.mode)
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

	outcome, err := newEngine(cfg, nil).Upsert(ctx, record, cmd.options(m, record))
	if err != nil {
		return err
	}

	if outcome.Appended {
		infof("%v: appended to '%v' row %v", record.PRFNo, outcome.Sheet, outcome.Row)
	} else {
		infof("%v: updated '%v' row %v", record.PRFNo, outcome.Sheet, outcome.Row)
	}

	return printJSON(stdout(options), outcome)
}

func (cmd *Push) options(m engine.Mode, record prf.Record) engine.Options {
	year := cmd.year
	if year == 0 && record.BudgetYear != nil {
		year = *record.BudgetYear
	}

	return engine.Options{
		Mode: m,
		Year: year,
	}
}
