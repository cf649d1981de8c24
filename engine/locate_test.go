package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prftrack/prf-app-excel/auth"
	"github.com/prftrack/prf-app-excel/config"
	"github.com/prftrack/prf-app-excel/graph"
)

func TestParseShareLink(t *testing.T) {
	tests := []struct {
		link     string
		fallback string
		host     string
		site     string
		file     string
	}{
		{
			link: "https://contoso.sharepoint.com/sites/Finance/Shared%20Documents/PRF%20Register.xlsx",
			host: "contoso.sharepoint.com",
			site: "/sites/Finance",
			file: "PRF Register.xlsx",
		},
		{
			link:     "https://contoso.sharepoint.com/:x:/s/Finance/EbXyZ?e=4hq2",
			fallback: "PRF Register.xlsx",
			host:     "contoso.sharepoint.com",
			site:     "/sites/Finance",
			file:     "PRF Register.xlsx",
		},
		{
			link:     "https://contoso.sharepoint.com/:x:/t/Procurement/EbXyZ",
			fallback: "Register.xlsx",
			host:     "contoso.sharepoint.com",
			site:     "/teams/Procurement",
			file:     "Register.xlsx",
		},
		{
			link: "https://contoso.sharepoint.com/:x:/r/sites/Finance/_layouts/15/Doc.aspx?sourcedoc=%7B123%7D&file=PRF%20Register.xlsx&action=default",
			host: "contoso.sharepoint.com",
			site: "/sites/Finance",
			file: "PRF Register.xlsx",
		},
		{
			link:     "https://Contoso.SharePoint.com/:x:/s/Finance/EbXyZ",
			fallback: "PRF Register.xlsx",
			host:     "contoso.sharepoint.com",
			site:     "/sites/Finance",
			file:     "PRF Register.xlsx",
		},
		{
			link:     "https://bücher.sharepoint.com/:x:/s/Finance/EbXyZ",
			fallback: "PRF Register.xlsx",
			host:     "xn--bcher-kva.sharepoint.com",
			site:     "/sites/Finance",
			file:     "PRF Register.xlsx",
		},
		{
			link:     "https://contoso-my.sharepoint.com/personal/alice_contoso_com/Documents/PRF.xlsx",
			fallback: "ignored.xlsx",
			host:     "contoso-my.sharepoint.com",
			site:     "/personal/alice_contoso_com",
			file:     "PRF.xlsx",
		},
	}

	for _, test := range tests {
		t.Run(test.link, func(t *testing.T) {
			host, site, file, err := parseShareLink(test.link, test.fallback)
			require.NoError(t, err)
			assert.Equal(t, test.host, host)
			assert.Equal(t, test.site, site)
			assert.Equal(t, test.file, file)
		})
	}
}

func TestParseShareLinkWithInvalidLink(t *testing.T) {
	tests := []string{
		"",
		"/sites/Finance/PRF.xlsx",
		"https://contoso.sharepoint.com/",
		"https://contoso.sharepoint.com/Shared%20Documents/PRF.xlsx",
		"https://contoso.sharepoint.com/:x:/q/Finance/EbXyZ",
		"https://contoso.sharepoint.com/:x:/s/Finance/EbXyZ",
	}

	for _, link := range tests {
		if _, _, _, err := parseShareLink(link, ""); err == nil {
			t.Errorf("Expected error parsing '%v'", link)
		}
	}
}

func TestLocateBySiteSearch(t *testing.T) {
	link := "https://contoso.sharepoint.com/sites/Finance/Shared%20Documents/PRF%20Register.xlsx"

	f := newFixture(t, nil, func(c *config.Config) {
		c.MS.ClientSecret = "secret"
		c.Excel.ShareLink = link
	}, auth.Application, auth.Delegated)

	f.graph.shareLink = "https://contoso.sharepoint.com/:x:/s/Finance/other"
	f.graph.sites["contoso.sharepoint.com:/sites/Finance"] = "contoso.sharepoint.com,site-1,web-1"
	f.graph.drives["contoso.sharepoint.com,site-1,web-1"] = []graph.Drive{
		{ID: "drive-0", Name: "Site Assets"},
		{ID: "drive-1", Name: "Documents"},
	}
	f.graph.files["drive-0"] = []graph.DriveItem{}
	f.graph.files["drive-1"] = []graph.DriveItem{
		{ID: "other", Name: "PRF Register (old).xlsx", ParentReference: &graph.ItemReference{DriveID: "drive-1"}},
		{ID: "item-1", Name: "prf register.XLSX", ParentReference: &graph.ItemReference{DriveID: "drive-1"}},
	}

	f.graph.addSheet("PRF Detail", "A1", [][]any{{"PRF No", "Amount"}})

	report, err := f.engine.TestAccess(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "application", report.Strategy)
	assert.Equal(t, "site-search", report.Locator)
	assert.Equal(t, "drive-1", report.DriveID)
	assert.Equal(t, "item-1", report.ItemID)
}

func TestLocateBySharedWithMe(t *testing.T) {
	f := newFixture(t, nil, func(c *config.Config) {
		c.MS.ClientSecret = "secret"
		c.Excel.ShareLink = ""
		c.Excel.FileName = "prf register"
	}, auth.Application, auth.Delegated)

	f.graph.shared = []graph.DriveItem{
		{ID: "x", Name: "Budget 2024.xlsx"},
		{
			ID:   "local-item",
			Name: "PRF Register.xlsx",
			RemoteItem: &graph.DriveItem{
				ID:              "item-1",
				ParentReference: &graph.ItemReference{DriveID: "drive-1"},
			},
		},
	}

	f.graph.addSheet("PRF Detail", "A1", [][]any{{"PRF No", "Amount"}})

	report, err := f.engine.TestAccess(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "delegated", report.Strategy)
	assert.Equal(t, "shared-with-me", report.Locator)
	assert.Equal(t, "drive-1", report.DriveID)
	assert.Equal(t, "item-1", report.ItemID)
	assert.Equal(t, []string{"application:read", "delegated:read"}, f.provider.requested)
}

func TestLocateWorkbookNotFound(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.graph.shareLink = "https://contoso.sharepoint.com/:x:/s/Finance/other"

	_, err := f.engine.TestAccess(context.Background())
	require.Error(t, err)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, testLink, nf.Key)
	assert.True(t, graph.IsNotFound(err))
}

func TestLocateWithoutTarget(t *testing.T) {
	f := newFixture(t, nil, func(c *config.Config) {
		c.Excel.ShareLink = ""
		c.Excel.FileName = ""
	})

	_, err := f.engine.TestAccess(context.Background())

	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Empty(t, f.graph.requests)
}
