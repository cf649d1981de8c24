package graph

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/microsoftgraph/msgraph-sdk-go/drives"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/sirupsen/logrus"
)

type ItemReference struct {
	DriveID string `json:"driveId"`
	ID      string `json:"id"`
}

type DriveItem struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	WebURL          string         `json:"webUrl"`
	ParentReference *ItemReference `json:"parentReference,omitempty"`
	RemoteItem      *DriveItem     `json:"remoteItem,omitempty"`
}

// Location returns the (drive, item) pair that addresses the item. Items listed under
// 'shared with me' live in another user's drive and are addressed through their remoteItem.
func (d DriveItem) Location() (driveID string, itemID string) {
	item := d
	if d.RemoteItem != nil && d.RemoteItem.ID != "" {
		item = *d.RemoteItem
	}

	if item.ParentReference != nil {
		driveID = item.ParentReference.DriveID
	}

	return driveID, item.ID
}

type Site struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	WebURL      string `json:"webUrl"`
}

type Drive struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DriveType string `json:"driveType"`
}

// EncodeShareID converts a sharing URL to a Graph share id: 'u!' followed by the unpadded
// base64url encoding of the link.
func EncodeShareID(link string) string {
	return "u!" + base64.RawURLEncoding.EncodeToString([]byte(link))
}

// ShareItem resolves a sharing link to the drive item it refers to.
func (c *Client) ShareItem(ctx context.Context, link string) (DriveItem, error) {
	c.debugf("shared item", logrus.Fields{"link": link})

	item, err := c.graph.
		Shares().
		BySharedDriveItemId(EncodeShareID(link)).
		DriveItem().
		Get(ctx, nil)
	if err != nil {
		return DriveItem{}, wrap("resolve sharing link", err)
	}

	return driveItem(item), nil
}

// Site resolves a SharePoint site from its host name and server relative path e.g.
// ("contoso.sharepoint.com", "/sites/Finance").
func (c *Client) Site(ctx context.Context, host, path string) (Site, error) {
	c.debugf("site", logrus.Fields{"host": host, "path": path})

	site, err := c.graph.
		Sites().
		BySiteId(host + ":" + path).
		Get(ctx, nil)
	if err != nil {
		return Site{}, wrap("resolve site "+host+":"+path, err)
	}

	return Site{
		ID:          deref(site.GetId()),
		Name:        deref(site.GetName()),
		DisplayName: deref(site.GetDisplayName()),
		WebURL:      deref(site.GetWebUrl()),
	}, nil
}

// Drives lists the document libraries of a site.
func (c *Client) Drives(ctx context.Context, siteID string) ([]Drive, error) {
	c.debugf("drives", logrus.Fields{"site": siteID})

	response, err := c.graph.
		Sites().
		BySiteId(siteID).
		Drives().
		Get(ctx, nil)
	if err != nil {
		return nil, wrap("list drives", err)
	}

	items, err := collect[models.Driveable](ctx, c, response, models.CreateDriveCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return nil, wrap("list drives", err)
	}

	list := []Drive{}
	for _, d := range items {
		list = append(list, Drive{
			ID:        deref(d.GetId()),
			Name:      deref(d.GetName()),
			DriveType: deref(d.GetDriveType()),
		})
	}

	return list, nil
}

// Search searches a drive for items matching the query text.
func (c *Client) Search(ctx context.Context, driveID, query string) ([]DriveItem, error) {
	c.debugf("search", logrus.Fields{"drive": driveID, "query": query})

	q := strings.ReplaceAll(query, "'", "''")

	response, err := c.graph.
		Drives().
		ByDriveId(driveID).
		SearchWithQ(&q).
		GetAsSearchWithQGetResponse(ctx, nil)
	if err != nil {
		return nil, wrap("search drive", err)
	}

	items, err := collect[models.DriveItemable](ctx, c, response, drives.CreateItemSearchWithQGetResponseFromDiscriminatorValue)
	if err != nil {
		return nil, wrap("search drive", err)
	}

	return driveItems(items), nil
}

// SharedWithMe lists the items shared with the signed-in user. Requires a delegated token.
func (c *Client) SharedWithMe(ctx context.Context) ([]DriveItem, error) {
	c.debugf("shared with me", logrus.Fields{})

	drive, err := c.graph.
		Me().
		Drive().
		Get(ctx, nil)
	if err != nil {
		return nil, wrap("get signed-in user drive", err)
	}

	response, err := c.graph.
		Drives().
		ByDriveId(deref(drive.GetId())).
		SharedWithMe().
		GetAsSharedWithMeGetResponse(ctx, nil)
	if err != nil {
		return nil, wrap("list shared items", err)
	}

	items, err := collect[models.DriveItemable](ctx, c, response, drives.CreateItemSharedWithMeGetResponseFromDiscriminatorValue)
	if err != nil {
		return nil, wrap("list shared items", err)
	}

	return driveItems(items), nil
}

func driveItems(items []models.DriveItemable) []DriveItem {
	list := []DriveItem{}
	for _, item := range items {
		if item != nil {
			list = append(list, driveItem(item))
		}
	}

	return list
}

func driveItem(item models.DriveItemable) DriveItem {
	d := DriveItem{
		ID:              deref(item.GetId()),
		Name:            deref(item.GetName()),
		WebURL:          deref(item.GetWebUrl()),
		ParentReference: reference(item.GetParentReference()),
	}

	if remote := item.GetRemoteItem(); remote != nil {
		d.RemoteItem = &DriveItem{
			ID:              deref(remote.GetId()),
			Name:            deref(remote.GetName()),
			WebURL:          deref(remote.GetWebUrl()),
			ParentReference: reference(remote.GetParentReference()),
		}
	}

	return d
}

func reference(r models.ItemReferenceable) *ItemReference {
	if r == nil {
		return nil
	}

	return &ItemReference{
		DriveID: deref(r.GetDriveId()),
		ID:      deref(r.GetId()),
	}
}
