// Package engine synchronises purchase requests with a worksheet in an Excel workbook hosted in
// OneDrive or SharePoint.
package engine

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/prftrack/prf-app-excel/auth"
	"github.com/prftrack/prf-app-excel/config"
	"github.com/prftrack/prf-app-excel/prf"
)

// Mode selects between a single fixed worksheet and scanning every worksheet matching the
// configured prefix.
type Mode string

const (
	Single Mode = config.SingleMode
	Scan   Mode = config.ScanMode
)

// Options apply to a single push or pull. A zero Mode uses the configured sync mode and a zero
// Year disables the year preference.
type Options struct {
	Mode   Mode
	Year   int
	DryRun bool
}

// TokenProvider supplies token sources for the available authorization strategies, in order
// of preference.
type TokenProvider interface {
	Strategies() []auth.Strategy
	TokenSource(ctx context.Context, strategy auth.Strategy, purpose auth.Purpose) (oauth2.TokenSource, error)
}

// Store persists the fields pulled from a worksheet.
type Store interface {
	ApplyPull(ctx context.Context, id int64, pulled prf.Record) (bool, error)
}

type Engine struct {
	config   config.Config
	provider TokenProvider
	store    Store
	http     *http.Client // nil uses the Graph SDK default client
	log      logrus.FieldLogger
}

type Option func(*Engine)

func WithHTTPClient(client *http.Client) Option {
	return func(e *Engine) {
		if client != nil {
			e.http = client
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New creates an engine for the configuration. The store may be nil if the engine is only
// used to push records or with dry run pulls.
func New(c config.Config, provider TokenProvider, store Store, options ...Option) *Engine {
	e := Engine{
		config:   c,
		provider: provider,
		store:    store,
		log:      logrus.StandardLogger(),
	}

	for _, option := range options {
		option(&e)
	}

	return &e
}

func (e *Engine) mode(options Options) (Mode, error) {
	mode := options.Mode
	if mode == "" {
		mode = Mode(strings.ToLower(e.config.Excel.SyncMode))
	}

	if mode == "" {
		mode = Single
	}

	switch mode {
	case Single:
		if strings.TrimSpace(e.config.Excel.WorksheetName) == "" {
			return mode, &ConfigurationError{Setting: "EXCEL_WORKSHEET_NAME", Reason: "is required in single mode"}
		}

	case Scan:

	default:
		return mode, &ConfigurationError{Setting: "EXCEL_SYNC_MODE", Reason: fmt.Sprintf("must be 'single' or 'scan' (got '%v')", mode)}
	}

	return mode, nil
}
