// Package config loads the synchronisation settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	SingleMode = "single"
	ScanMode   = "scan"
)

type Config struct {
	MS             Microsoft `envconfig:"MS"`
	Graph          Graph     `envconfig:"GRAPH"`
	Excel          Excel     `envconfig:"EXCEL"`
	Database       Database  `envconfig:"DATABASE"`
	TokenCachePath string    `envconfig:"TOKEN_CACHE_PATH"`
	LogLevel       string    `envconfig:"LOG_LEVEL" default:"info"`
}

type Microsoft struct {
	TenantID     string `envconfig:"TENANT_ID"`
	ClientID     string `envconfig:"CLIENT_ID"`
	ClientSecret string `envconfig:"CLIENT_SECRET"`
	Authority    string `envconfig:"AUTHORITY" default:"https://login.microsoftonline.com"`
	Account      string `envconfig:"ACCOUNT"`
}

type Graph struct {
	BaseURL string        `envconfig:"BASE_URL" default:"https://graph.microsoft.com/v1.0"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"60s"`
}

// Excel identifies the workbook (by sharing link or file name) and the worksheet(s) to
// synchronise with.
type Excel struct {
	ShareLink       string `envconfig:"SHARE_LINK"`
	FileName        string `envconfig:"FILE_NAME"`
	WorksheetName   string `envconfig:"WORKSHEET_NAME"`
	WorksheetPrefix string `envconfig:"WORKSHEET_PREFIX" default:"PRF Detail"`
	SyncMode        string `envconfig:"SYNC_MODE" default:"single"`
}

type Database struct {
	Driver string `envconfig:"DRIVER" default:"pgx"`
	URL    string `envconfig:"URL"`
}

// ConfigurationError is a missing or invalid setting.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v %v", e.Setting, e.Reason)
}

// Load reads the environment after loading the env files (if any). Variables already set in the
// environment take precedence over the files and earlier files take precedence over later ones.
// A missing .env or DEFAULT_ENVFILE is not an error.
func Load(envfiles ...string) (*Config, error) {
	for _, envfile := range envfiles {
		if envfile == "" {
			continue
		}

		if err := godotenv.Load(envfile); err != nil {
			optional := envfile == ".env" || envfile == DEFAULT_ENVFILE
			if !(optional && errors.Is(err, os.ErrNotExist)) {
				return nil, fmt.Errorf("error loading %v (%w)", envfile, err)
			}
		}
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("error reading configuration (%w)", err)
	}

	if c.TokenCachePath == "" {
		c.TokenCachePath = DEFAULT_TOKEN_CACHE
	}

	c.Excel.SyncMode = strings.ToLower(strings.TrimSpace(c.Excel.SyncMode))

	return &c, nil
}

// HasSecret returns true if application-only credentials are configured.
func (c Config) HasSecret() bool {
	return c.MS.ClientSecret != ""
}

// Validate checks the settings required by the synchronisation engine. Every problem found is
// reported as a *ConfigurationError.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.MS.TenantID) == "" {
		errs = append(errs, &ConfigurationError{"MS_TENANT_ID", "is required"})
	}

	if strings.TrimSpace(c.MS.ClientID) == "" {
		errs = append(errs, &ConfigurationError{"MS_CLIENT_ID", "is required"})
	}

	if strings.TrimSpace(c.Excel.ShareLink) == "" && strings.TrimSpace(c.Excel.FileName) == "" {
		errs = append(errs, &ConfigurationError{"EXCEL_SHARE_LINK", "or EXCEL_FILE_NAME is required"})
	}

	switch c.Excel.SyncMode {
	case SingleMode:
		if strings.TrimSpace(c.Excel.WorksheetName) == "" {
			errs = append(errs, &ConfigurationError{"EXCEL_WORKSHEET_NAME", "is required in single mode"})
		}

	case ScanMode:
		if strings.TrimSpace(c.Excel.WorksheetPrefix) == "" {
			errs = append(errs, &ConfigurationError{"EXCEL_WORKSHEET_PREFIX", "is required in scan mode"})
		}

	default:
		errs = append(errs, &ConfigurationError{"EXCEL_SYNC_MODE", fmt.Sprintf("must be 'single' or 'scan' (got '%v')", c.Excel.SyncMode)})
	}

	if c.TokenCachePath == "" {
		errs = append(errs, &ConfigurationError{"TOKEN_CACHE_PATH", "is required"})
	}

	return errors.Join(errs...)
}
