package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/prftrack/prf-app-excel/auth"
	"github.com/prftrack/prf-app-excel/config"
	"github.com/prftrack/prf-app-excel/engine"
)

const APP = "prf-app-excel"

// VERSION is overridden at build time with -ldflags "-X github.com/prftrack/prf-app-excel/commands.VERSION=..."
var VERSION = "v0.0.0-dev"

type Options struct {
	Debug   bool
	EnvFile string

	stdout io.Writer
}

// Command is a single CLI command. Flags are bound to the command's fields.
type Command interface {
	Name() string
	Description() string
	Usage() string
	Help() string
	Flags(flagset *pflag.FlagSet)
	Execute(ctx context.Context, options *Options) error
}

// CLI is the list of commands in the order they are listed in the help.
var CLI = []Command{
	&PushCmd,
	&PullCmd,
	&TestAccessCmd,
	&AuthoriseCmd,
	&VersionCmd,
}

// Execute parses the command line and runs the selected command.
func Execute(ctx context.Context) error {
	options := Options{
		Debug:   false,
		EnvFile: ".env",
	}

	return fang.Execute(ctx, Root(&options, CLI...), fang.WithVersion(VERSION))
}

// Root builds the command tree.
func Root(options *Options, commands ...Command) *cobra.Command {
	root := &cobra.Command{
		Use:          APP,
		Short:        "Synchronises purchase requests with an Excel workbook in OneDrive or SharePoint",
		Long:         help,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	root.PersistentFlags().StringVar(&options.EnvFile, "env", options.EnvFile, "Environment file with the workbook and database settings")

	for _, c := range commands {
		root.AddCommand(command(c, options))
	}

	return root
}

func command(c Command, options *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   strings.TrimSpace(c.Name() + " " + c.Usage()),
		Short: c.Description(),
		Long:  c.Help(),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options.stdout = cmd.OutOrStdout()

			if err := c.Execute(cmd.Context(), options); err != nil {
				report(c.Name(), err)
				return err
			}

			return nil
		},
	}

	c.Flags(cmd.Flags())

	return cmd
}

const help = `prf-app-excel pushes purchase requests from the database to a worksheet in a shared Excel
workbook and pulls the reviewed values back into the database.

The workbook is located from a sharing link (EXCEL_SHARE_LINK) or by name from the files shared
with the signed in user (EXCEL_FILE_NAME). Application credentials are used if MS_CLIENT_SECRET is
set, falling back to the delegated credentials cached by the 'authorise' command.`

// load reads the configuration and sets up logging. The configuration is not validated.
func load(options *Options) (*config.Config, error) {
	cfg, err := config.Load(options.EnvFile, config.DEFAULT_ENVFILE)
	if err != nil {
		return nil, err
	}

	configureLogging(options.Debug, cfg.LogLevel)

	return cfg, nil
}

func configureLogging(debug bool, level string) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else if l, err := logrus.ParseLevel(level); err != nil {
		warnf("invalid LOG_LEVEL '%v', using 'info'", level)
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(l)
	}
}

func newProvider(cfg *config.Config, options ...auth.Option) *auth.Provider {
	options = append([]auth.Option{
		auth.WithHTTPClient(&http.Client{Timeout: cfg.Graph.Timeout}),
		auth.WithLogger(logrus.WithField("component", "auth")),
	}, options...)

	return auth.NewProvider(auth.Config{
		TenantID:     cfg.MS.TenantID,
		ClientID:     cfg.MS.ClientID,
		ClientSecret: cfg.MS.ClientSecret,
		Authority:    cfg.MS.Authority,
		Account:      cfg.MS.Account,
		CachePath:    cfg.TokenCachePath,
	}, options...)
}

func newEngine(cfg *config.Config, store engine.Store) *engine.Engine {
	return engine.New(*cfg, newProvider(cfg), store, engine.WithLogger(logrus.WithField("component", "engine")))
}

// mode converts the --mode flag to an engine mode. An empty flag uses EXCEL_SYNC_MODE.
func mode(v string) (engine.Mode, error) {
	switch m := strings.ToLower(strings.TrimSpace(v)); m {
	case "":
		return "", nil

	case string(engine.Single), string(engine.Scan):
		return engine.Mode(m), nil

	default:
		return "", fmt.Errorf("invalid --mode '%v' (expected 'single' or 'scan')", v)
	}
}

func stdout(options *Options) io.Writer {
	if options.stdout != nil {
		return options.stdout
	}

	return os.Stdout
}

func debugf(format string, args ...any) {
	logrus.Debugf(format, args...)
}

func infof(format string, args ...any) {
	logrus.Infof(format, args...)
}

func warnf(format string, args ...any) {
	logrus.Warnf(format, args...)
}
