package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/idna"

	"github.com/prftrack/prf-app-excel/auth"
)

// workbookRef is the resolved location of the workbook. It is never cached between calls.
type workbookRef struct {
	DriveID string
	ItemID  string
	Via     string
}

// locator is one way of resolving the configured workbook to a drive item.
type locator struct {
	name    string
	applies func(e *Engine) bool
	resolve func(ctx context.Context, e *Engine, s *session) (workbookRef, error)
}

var locators = []locator{
	{
		name:    "share-link",
		applies: func(e *Engine) bool { return e.shareLink() != "" },
		resolve: resolveShareLink,
	},
	{
		name:    "site-search",
		applies: func(e *Engine) bool { return e.shareLink() != "" && e.config.HasSecret() },
		resolve: resolveSiteSearch,
	},
	{
		name:    "shared-with-me",
		applies: func(e *Engine) bool { return e.shareLink() == "" && e.fileName() != "" },
		resolve: resolveSharedWithMe,
	},
}

func (e *Engine) shareLink() string {
	return strings.TrimSpace(e.config.Excel.ShareLink)
}

func (e *Engine) fileName() string {
	return strings.TrimSpace(e.config.Excel.FileName)
}

// locate tries each applicable locator in turn and returns the first workbook found.
func (e *Engine) locate(ctx context.Context, s *session) (workbookRef, error) {
	target := e.shareLink()
	if target == "" {
		target = e.fileName()
	}

	errs := []error{}
	for _, l := range locators {
		if !l.applies(e) {
			continue
		}

		ref, err := l.resolve(ctx, e, s)
		if err == nil {
			ref.Via = l.name
			s.log.WithFields(logrus.Fields{"locator": l.name, "drive": ref.DriveID, "item": ref.ItemID}).Debugf("located workbook")
			return ref, nil
		}

		s.log.WithField("locator", l.name).Debugf("workbook not located (%v)", err)
		errs = append(errs, fmt.Errorf("%v: %w", l.name, err))
	}

	if len(errs) == 0 {
		return workbookRef{}, &ConfigurationError{Setting: "EXCEL_SHARE_LINK", Reason: "or EXCEL_FILE_NAME is required"}
	}

	return workbookRef{}, &NotFoundError{
		Op:  "locate workbook",
		Key: target,
		Err: errors.Join(errs...),
	}
}

func resolveShareLink(ctx context.Context, e *Engine, s *session) (workbookRef, error) {
	item, err := s.client.ShareItem(ctx, e.shareLink())
	if err != nil {
		return workbookRef{}, err
	}

	driveID, itemID := item.Location()
	if driveID == "" || itemID == "" {
		return workbookRef{}, fmt.Errorf("shared item '%v' has no drive location", item.Name)
	}

	return workbookRef{DriveID: driveID, ItemID: itemID}, nil
}

func resolveSiteSearch(ctx context.Context, e *Engine, s *session) (workbookRef, error) {
	host, sitePath, name, err := parseShareLink(e.shareLink(), e.fileName())
	if err != nil {
		return workbookRef{}, err
	}

	site, err := s.client.Site(ctx, host, sitePath)
	if err != nil {
		return workbookRef{}, err
	}

	drives, err := s.client.Drives(ctx, site.ID)
	if err != nil {
		return workbookRef{}, err
	}

	errs := []error{}
	for _, drive := range drives {
		items, err := s.client.Search(ctx, drive.ID, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		for _, item := range items {
			if strings.EqualFold(item.Name, name) {
				driveID, itemID := item.Location()
				if driveID == "" {
					driveID = drive.ID
				}

				return workbookRef{DriveID: driveID, ItemID: itemID}, nil
			}
		}
	}

	if len(errs) > 0 {
		return workbookRef{}, fmt.Errorf("'%v' not found in %v%v (%w)", name, host, sitePath, errors.Join(errs...))
	}

	return workbookRef{}, fmt.Errorf("'%v' not found in %v%v", name, host, sitePath)
}

func resolveSharedWithMe(ctx context.Context, e *Engine, s *session) (workbookRef, error) {
	if s.strategy != auth.Delegated {
		return workbookRef{}, fmt.Errorf("shared with me listing %w", errRequiresDelegated)
	}

	items, err := s.client.SharedWithMe(ctx)
	if err != nil {
		return workbookRef{}, err
	}

	name := strings.ToLower(e.fileName())
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), name) {
			driveID, itemID := item.Location()
			if driveID != "" && itemID != "" {
				return workbookRef{DriveID: driveID, ItemID: itemID}, nil
			}
		}
	}

	return workbookRef{}, fmt.Errorf("no item shared with me matches '%v'", e.fileName())
}

// parseShareLink extracts the host, site path and file name from a SharePoint document or
// sharing URL e.g.
//
//	https://contoso.sharepoint.com/sites/Finance/Shared%20Documents/PRF%20Register.xlsx
//	https://contoso.sharepoint.com/:x:/s/Finance/EbXyZ?e=4hq2
//	https://contoso.sharepoint.com/:x:/r/sites/Finance/_layouts/15/Doc.aspx?sourcedoc=...&file=PRF%20Register.xlsx
//
// The file name is taken from the last path segment with a file extension, else from the 'file'
// query parameter, else the fallback name.
func parseShareLink(link string, fallback string) (host, sitePath, fileName string, err error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", "", "", fmt.Errorf("invalid sharing link (%w)", err)
	}

	if u.Hostname() == "" {
		return "", "", "", fmt.Errorf("sharing link must include a host name")
	}

	// site addresses are {ascii host}:{path}
	if host, err = idna.Lookup.ToASCII(u.Hostname()); err != nil {
		return "", "", "", fmt.Errorf("invalid sharing link host '%v' (%w)", u.Hostname(), err)
	}

	segments := []string{}
	for _, s := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	// sharing links: /:x:/s/{site}/{token}, /:x:/t/{team}/{token}, /:x:/r/{server relative path}
	if len(segments) > 1 && strings.HasPrefix(segments[0], ":") && strings.HasSuffix(segments[0], ":") {
		switch segments[1] {
		case "s":
			segments = append([]string{"sites"}, segments[2:]...)
		case "t":
			segments = append([]string{"teams"}, segments[2:]...)
		case "r":
			segments = segments[2:]
		default:
			return "", "", "", fmt.Errorf("unsupported sharing link type '/%v/%v/'", segments[0], segments[1])
		}
	}

	if len(segments) < 2 {
		return "", "", "", fmt.Errorf("sharing link path must include /sites/{site} or /teams/{team}")
	}

	switch segments[0] {
	case "sites", "teams", "personal":
		sitePath = "/" + segments[0] + "/" + segments[1]

	default:
		return "", "", "", fmt.Errorf("sharing link path must start with /sites/, /teams/ or /personal/ (got /%v/)", segments[0])
	}

	for _, s := range segments[2:] {
		if ext := strings.ToLower(path.Ext(s)); ext != "" && ext != ".aspx" {
			fileName = s
		}
	}

	if fileName == "" {
		fileName = u.Query().Get("file")
	}

	if fileName == "" {
		fileName = strings.TrimSpace(fallback)
	}

	if fileName == "" {
		return "", "", "", fmt.Errorf("sharing link does not identify a file and no file name is configured")
	}

	return host, sitePath, fileName, nil
}
