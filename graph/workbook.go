package graph

import (
	"context"
	"encoding/json"
	"fmt"

	abstractions "github.com/microsoft/kiota-abstractions-go"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

type Worksheet struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Position   int    `json:"position"`
	Visibility string `json:"visibility"`
}

// UsedRange is the smallest range enclosing every non-empty cell of a worksheet. Address
// identifies the origin of Values e.g. 'PRF Detail 2024'!B3:K40.
type UsedRange struct {
	Address     string  `json:"address"`
	Values      [][]any `json:"values"`
	RowCount    int     `json:"rowCount"`
	ColumnCount int     `json:"columnCount"`
}

// Worksheets lists the worksheets of a workbook.
func (c *Client) Worksheets(ctx context.Context, driveID, itemID string) ([]Worksheet, error) {
	c.debugf("worksheets", logrus.Fields{"drive": driveID, "item": itemID})

	response, err := c.graph.
		Drives().
		ByDriveId(driveID).
		Items().
		ByDriveItemId(itemID).
		Workbook().
		Worksheets().
		Get(ctx, nil)
	if err != nil {
		return nil, wrap("list worksheets", err)
	}

	items, err := collect[models.WorkbookWorksheetable](ctx, c, response, models.CreateWorkbookWorksheetCollectionResponseFromDiscriminatorValue)
	if err != nil {
		return nil, wrap("list worksheets", err)
	}

	list := []Worksheet{}
	for _, w := range items {
		list = append(list, Worksheet{
			ID:         deref(w.GetId()),
			Name:       deref(w.GetName()),
			Position:   int(deref(w.GetPosition())),
			Visibility: deref(w.GetVisibility()),
		})
	}

	return list, nil
}

// UsedRange retrieves the values of the used range of a worksheet.
func (c *Client) UsedRange(ctx context.Context, driveID, itemID, sheet string) (UsedRange, error) {
	c.debugf("used range", logrus.Fields{"drive": driveID, "item": itemID, "sheet": sheet})

	valuesOnly := true
	info, err := c.graph.
		Drives().
		ByDriveId(driveID).
		Items().
		ByDriveItemId(itemID).
		Workbook().
		Worksheets().
		ByWorkbookWorksheetId(sheet).
		UsedRangeWithValuesOnly(&valuesOnly).
		ToGetRequestInformation(ctx, nil)
	if err != nil {
		return UsedRange{}, err
	}

	b, err := c.raw(ctx, info)
	if err != nil {
		return UsedRange{}, wrap(fmt.Sprintf("read used range of '%v'", sheet), err)
	}

	return parseRange(b), nil
}

// UpdateRange writes values to a range of a worksheet. nil cells are sent as JSON null and
// are left unchanged by Graph.
func (c *Client) UpdateRange(ctx context.Context, driveID, itemID, sheet, address string, values [][]any) (UsedRange, error) {
	c.debugf("update range", logrus.Fields{"drive": driveID, "item": itemID, "sheet": sheet, "address": address})

	info, err := c.graph.
		Drives().
		ByDriveId(driveID).
		Items().
		ByDriveItemId(itemID).
		Workbook().
		Worksheets().
		ByWorkbookWorksheetId(sheet).
		RangeWithAddress(&address).
		ToGetRequestInformation(ctx, nil)
	if err != nil {
		return UsedRange{}, err
	}

	body, err := json.Marshal(map[string]any{"values": values})
	if err != nil {
		return UsedRange{}, fmt.Errorf("error encoding range %v (%w)", address, err)
	}

	// range(address=...) is a function segment: the SDK only builds GETs for it
	info.Method = abstractions.PATCH
	info.SetStreamContentAndContentType(body, "application/json")

	b, err := c.raw(ctx, info)
	if err != nil {
		return UsedRange{}, wrap(fmt.Sprintf("update '%v'!%v", sheet, address), err)
	}

	return parseRange(b), nil
}

// parseRange decodes a workbookRange. Cell values are untyped JSON: strings, numbers (as
// float64), booleans or null.
func parseRange(b []byte) UsedRange {
	r := gjson.ParseBytes(b)

	values := [][]any{}
	for _, row := range r.Get("values").Array() {
		cells := []any{}
		for _, v := range row.Array() {
			cells = append(cells, v.Value())
		}

		values = append(values, cells)
	}

	return UsedRange{
		Address:     r.Get("address").String(),
		Values:      values,
		RowCount:    int(r.Get("rowCount").Int()),
		ColumnCount: int(r.Get("columnCount").Int()),
	}
}
