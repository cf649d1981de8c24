package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/prftrack/prf-app-excel/auth"
	"github.com/prftrack/prf-app-excel/config"
)

var AuthoriseCmd = Authorise{
	readOnly: false,
}

// Authorise signs in with a device code and caches the delegated token used when application
// credentials are not configured or are not authorised for the workbook.
type Authorise struct {
	readOnly bool
}

func (cmd *Authorise) Name() string {
	return "authorise"
}

func (cmd *Authorise) Description() string {
	return "Authorises prf-app-excel to access the PRF register workbook on behalf of a user"
}

func (cmd *Authorise) Usage() string {
	return "[--read-only]"
}

func (cmd *Authorise) Help() string {
	return fmt.Sprintf(`Signs in to Microsoft 365 with a device code and stores the delegated access and refresh
tokens in the token cache (TOKEN_CACHE_PATH). The sign-in URL and code are printed to the
console. Only MS_TENANT_ID and MS_CLIENT_ID are required.

Examples:
  %[1]v authorise
  %[1]v --env prf.env authorise --read-only`, APP)
}

func (cmd *Authorise) Flags(flagset *pflag.FlagSet) {
	flagset.BoolVar(&cmd.readOnly, "read-only", cmd.readOnly, "Requests read-only access (sufficient for 'pull' and 'test-access')")
}

func (cmd *Authorise) Execute(ctx context.Context, options *Options) error {
	cfg, err := load(options)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cfg.MS.TenantID) == "" {
		return &config.ConfigurationError{Setting: "MS_TENANT_ID", Reason: "is required"}
	}

	if strings.TrimSpace(cfg.MS.ClientID) == "" {
		return &config.ConfigurationError{Setting: "MS_CLIENT_ID", Reason: "is required"}
	}

	purpose := auth.Write
	if cmd.readOnly {
		purpose = auth.Read
	}

	provider := newProvider(cfg)

	account, err := provider.SignIn(ctx, purpose)
	if err != nil {
		return fmt.Errorf("authorisation error (%w)", err)
	}

	infof("authorised %v for %v access (%v)", account, purpose, provider.Cache().Path())

	accounts, err := provider.Cache().Accounts()
	if err != nil {
		return err
	}

	w := stdout(options)
	for _, a := range accounts {
		if _, err := fmt.Fprintf(w, "%v\n", a); err != nil {
			return err
		}
	}

	return nil
}
