package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
)

// VersionCmd is an initialized Version command for the CLI command list
var VersionCmd = Version{}

// Version is a CLI command implementation that displays the CLI version information.
type Version struct {
}

// Returns 'version'
func (c *Version) Name() string {
	return "version"
}

// Description returns the 'version' command short form help
func (c *Version) Description() string {
	return "Displays the current version"
}

// Usage returns the string describing the additional options for the 'version' command
func (c *Version) Usage() string {
	return ""
}

// Help returns the 'version' command long form help
func (c *Version) Help() string {
	return fmt.Sprintf("Displays the %v version in the format v<major>.<minor>.<patch> e.g. v0.1.0", APP)
}

func (c *Version) Flags(flagset *pflag.FlagSet) {
}

// Execute prints the current version
func (c *Version) Execute(ctx context.Context, options *Options) error {
	_, err := fmt.Fprintf(stdout(options), "%v\n", VERSION)

	return err
}
