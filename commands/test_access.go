package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
)

var TestAccessCmd = TestAccess{}

// TestAccess resolves the workbook and reads the header of the target worksheet without writing
// anything.
type TestAccess struct {
}

func (cmd *TestAccess) Name() string {
	return "test-access"
}

func (cmd *TestAccess) Description() string {
	return "Checks that the PRF register workbook and worksheet are accessible"
}

func (cmd *TestAccess) Usage() string {
	return ""
}

func (cmd *TestAccess) Help() string {
	return fmt.Sprintf(`Locates the PRF register workbook, lists its worksheets and reads the header row of the
target worksheet. Reports the authorization strategy and locator used as JSON. Nothing is
written to the workbook or the database.

Examples:
  %[1]v test-access
  %[1]v --debug --env prf.env test-access`, APP)
}

func (cmd *TestAccess) Flags(flagset *pflag.FlagSet) {
}

func (cmd *TestAccess) Execute(ctx context.Context, options *Options) error {
	cfg, err := load(options)
	if err != nil {
		return err
	} else if err := cfg.Validate(); err != nil {
		return err
	}

	report, err := newEngine(cfg, nil).TestAccess(ctx)
	if err != nil {
		return err
	}

	infof("workbook accessible using %v credentials (%v)", report.Strategy, report.Locator)

	return printJSON(stdout(options), report)
}
