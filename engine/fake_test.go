package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/oauth2"

	"github.com/prftrack/prf-app-excel/auth"
	"github.com/prftrack/prf-app-excel/config"
	"github.com/prftrack/prf-app-excel/graph"
	"github.com/prftrack/prf-app-excel/workbook"
)

const (
	testLink = "https://contoso.sharepoint.com/:x:/s/Finance/EbXyZ?e=4hq2"
	meDrive  = "b!me-drive"
)

// fakeProvider hands out static tokens named after the strategy.
type fakeProvider struct {
	sync.Mutex
	strategies []auth.Strategy
	requested  []string
}

func (p *fakeProvider) Strategies() []auth.Strategy {
	return p.strategies
}

func (p *fakeProvider) TokenSource(ctx context.Context, strategy auth.Strategy, purpose auth.Purpose) (oauth2.TokenSource, error) {
	p.Lock()
	defer p.Unlock()

	p.requested = append(p.requested, fmt.Sprintf("%v:%v", strategy, purpose))

	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: strategy.String(), TokenType: "Bearer"}), nil
}

type cell struct {
	row int
	col int
}

type fakeSheet struct {
	name     string
	position int
	cells    map[cell]any
}

type patch struct {
	sheet   string
	address string
	values  [][]any
}

// fakeGraph is an in-memory workbook served over the Graph drive item and workbook endpoints.
type fakeGraph struct {
	sync.Mutex
	*httptest.Server

	shareLink     string
	driveID       string
	itemID        string
	sheets        []*fakeSheet
	reject        map[string]int
	sharesBlocked map[string]int
	sites         map[string]string
	drives        map[string][]graph.Drive
	files         map[string][]graph.DriveItem
	shared        []graph.DriveItem
	patches       []patch
	requests      []string
}

var (
	workbookURL  = regexp.MustCompile(`^drives/([^/]+)/items/([^/]+)/workbook/worksheets(?:/([^/]+)/(usedRange\(valuesOnly=true\)|range\(address='([^']+)'\)))?$`)
	searchURL    = regexp.MustCompile(`^drives/([^/]+)/search\(q='(.*)'\)$`)
	sharedURL    = regexp.MustCompile(`^drives/([^/]+)/sharedWithMe(?:\(\))?$`)
	siteURL      = regexp.MustCompile(`^sites/([^/:]+):(/.+)$`)
	siteDriveURL = regexp.MustCompile(`^sites/([^/]+)/drives$`)
)

func newFakeGraph(t *testing.T) *fakeGraph {
	t.Helper()

	g := fakeGraph{
		shareLink:     testLink,
		driveID:       "drive-1",
		itemID:        "item-1",
		reject:        map[string]int{},
		sharesBlocked: map[string]int{},
		sites:         map[string]string{},
		drives:        map[string][]graph.Drive{},
		files:         map[string][]graph.DriveItem{},
	}

	g.Server = httptest.NewTLSServer(http.HandlerFunc(g.handle))
	t.Cleanup(g.Close)

	return &g
}

// addSheet adds a worksheet with the rows placed at the origin cell e.g. "B3".
func (g *fakeGraph) addSheet(name string, origin string, rows [][]any) *fakeSheet {
	g.Lock()
	defer g.Unlock()

	sheet := fakeSheet{
		name:     name,
		position: len(g.sheets),
		cells:    map[cell]any{},
	}

	o, err := workbook.ParseUsedRangeStart(origin)
	if err != nil {
		panic(err)
	}

	for i, row := range rows {
		for j, v := range row {
			sheet.set(o.Row+i, o.Col+j, v)
		}
	}

	g.sheets = append(g.sheets, &sheet)

	return &sheet
}

func (g *fakeGraph) sheet(name string) *fakeSheet {
	for _, s := range g.sheets {
		if s.name == name {
			return s
		}
	}

	return nil
}

func (s *fakeSheet) set(row, col int, v any) {
	if workbook.IsBlank(v) {
		delete(s.cells, cell{row, col})
	} else {
		s.cells[cell{row, col}] = v
	}
}

func (s *fakeSheet) get(row, col int) any {
	return s.cells[cell{row, col}]
}

// rowsWith returns the row numbers of every row holding the text in any column.
func (s *fakeSheet) rowsWith(text string) []int {
	rows := []int{}
	for k, v := range s.cells {
		if workbook.TextOf(v) == text {
			rows = append(rows, k.row)
		}
	}

	sort.Ints(rows)

	return rows
}

func (s *fakeSheet) usedRange() graph.UsedRange {
	if len(s.cells) == 0 {
		return graph.UsedRange{
			Address:     fmt.Sprintf("'%v'!A1", s.name),
			Values:      [][]any{{""}},
			RowCount:    1,
			ColumnCount: 1,
		}
	}

	top, left, bottom, right := -1, -1, -1, -1
	for k := range s.cells {
		if top < 0 || k.row < top {
			top = k.row
		}
		if left < 0 || k.col < left {
			left = k.col
		}
		if k.row > bottom {
			bottom = k.row
		}
		if k.col > right {
			right = k.col
		}
	}

	values := [][]any{}
	for r := top; r <= bottom; r++ {
		row := []any{}
		for c := left; c <= right; c++ {
			if v, ok := s.cells[cell{r, c}]; ok {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		values = append(values, row)
	}

	from, _ := workbook.IndexToLetters(left)
	to, _ := workbook.IndexToLetters(right)

	return graph.UsedRange{
		Address:     fmt.Sprintf("'%v'!%v%v:%v%v", s.name, from, top, to, bottom),
		Values:      values,
		RowCount:    bottom - top + 1,
		ColumnCount: right - left + 1,
	}
}

func (g *fakeGraph) handle(w http.ResponseWriter, r *http.Request) {
	g.Lock()
	defer g.Unlock()

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	path := strings.TrimPrefix(r.URL.Path, "/v1.0/")

	g.requests = append(g.requests, fmt.Sprintf("%v %v %v", token, r.Method, path))

	if status, ok := g.reject[token]; ok {
		fail(w, status, "accessDenied", "Access denied")
		return
	}

	switch {
	case strings.HasPrefix(path, "shares/"):
		if status, ok := g.sharesBlocked[token]; ok {
			fail(w, status, "accessDenied", "Access denied")
		} else if path == "shares/"+graph.EncodeShareID(g.shareLink)+"/driveItem" {
			reply(w, graph.DriveItem{ID: g.itemID, Name: "PRF Register.xlsx", ParentReference: &graph.ItemReference{DriveID: g.driveID}})
		} else {
			fail(w, http.StatusNotFound, "itemNotFound", "The sharing link no longer exists")
		}

	case path == "me/drive":
		if token != auth.Delegated.String() {
			fail(w, http.StatusBadRequest, "BadRequest", "/me request is only valid with delegated authentication flow.")
		} else {
			reply(w, graph.Drive{ID: meDrive, Name: "OneDrive", DriveType: "business"})
		}

	case sharedURL.MatchString(path):
		if match := sharedURL.FindStringSubmatch(path); match[1] != meDrive || token != auth.Delegated.String() {
			fail(w, http.StatusBadRequest, "BadRequest", "/me request is only valid with delegated authentication flow.")
		} else {
			reply(w, map[string]any{"value": g.shared})
		}

	case siteDriveURL.MatchString(path):
		match := siteDriveURL.FindStringSubmatch(path)
		reply(w, map[string]any{"value": g.drives[match[1]]})

	case siteURL.MatchString(path):
		match := siteURL.FindStringSubmatch(path)
		if id, ok := g.sites[match[1]+":"+match[2]]; ok {
			reply(w, graph.Site{ID: id})
		} else {
			fail(w, http.StatusNotFound, "itemNotFound", "Requested site could not be found")
		}

	case searchURL.MatchString(path):
		match := searchURL.FindStringSubmatch(path)
		reply(w, map[string]any{"value": g.files[match[1]]})

	case workbookURL.MatchString(path):
		g.workbook(w, r, workbookURL.FindStringSubmatch(path))

	default:
		fail(w, http.StatusNotFound, "itemNotFound", "Unknown endpoint "+path)
	}
}

func (g *fakeGraph) workbook(w http.ResponseWriter, r *http.Request, match []string) {
	if match[1] != g.driveID || match[2] != g.itemID {
		fail(w, http.StatusNotFound, "itemNotFound", "The resource could not be found.")
		return
	}

	if match[3] == "" {
		worksheets := []graph.Worksheet{}
		for _, s := range g.sheets {
			worksheets = append(worksheets, graph.Worksheet{ID: "{" + s.name + "}", Name: s.name, Position: s.position, Visibility: "Visible"})
		}

		reply(w, map[string]any{"value": worksheets})
		return
	}

	sheet := g.sheet(match[3])
	if sheet == nil {
		fail(w, http.StatusNotFound, "ItemNotFound", "The requested resource doesn't exist.")
		return
	}

	if r.Method == http.MethodGet && strings.HasPrefix(match[4], "usedRange") {
		reply(w, sheet.usedRange())
		return
	}

	if r.Method != http.MethodPatch || match[5] == "" {
		fail(w, http.StatusMethodNotAllowed, "MethodNotAllowed", r.Method)
		return
	}

	body := struct {
		Values [][]any `json:"values"`
	}{}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fail(w, http.StatusBadRequest, "InvalidArgument", err.Error())
		return
	}

	origin, err := workbook.ParseUsedRangeStart(match[5])
	if err != nil {
		fail(w, http.StatusBadRequest, "InvalidArgument", err.Error())
		return
	}

	for i, row := range body.Values {
		for j, v := range row {
			if v != nil {
				sheet.set(origin.Row+i, origin.Col+j, v)
			}
		}
	}

	g.patches = append(g.patches, patch{sheet: sheet.name, address: match[5], values: body.Values})

	reply(w, map[string]any{"address": sheet.name + "!" + match[5]})
}

func reply(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

type fixture struct {
	engine   *Engine
	graph    *fakeGraph
	provider *fakeProvider
	logs     *test.Hook
}

func newFixture(t *testing.T, store Store, mutate func(*config.Config), strategies ...auth.Strategy) *fixture {
	t.Helper()

	g := newFakeGraph(t)

	c := config.Config{
		MS: config.Microsoft{
			TenantID: "contoso",
			ClientID: "client",
		},
		Graph: config.Graph{
			BaseURL: g.URL + "/v1.0",
			Timeout: 5 * time.Second,
		},
		Excel: config.Excel{
			ShareLink:       testLink,
			WorksheetName:   "PRF Detail",
			WorksheetPrefix: "PRF Detail",
			SyncMode:        config.SingleMode,
		},
	}

	if mutate != nil {
		mutate(&c)
	}

	if len(strategies) == 0 {
		strategies = []auth.Strategy{auth.Delegated}
	}

	provider := fakeProvider{strategies: strategies}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	e := New(c, &provider, store, WithHTTPClient(g.Client()), WithLogger(logger))

	return &fixture{
		engine:   e,
		graph:    g,
		provider: &provider,
		logs:     hook,
	}
}

// register is the sheet layout used by most tests: a banner row above the header, an
// unmapped 'Notes' column and a used range starting at B3.
func register() [][]any {
	return [][]any{
		{"Purchase Requests 2024"},
		{"PRF No", "Date Submitted", "Notes", "Requested Amount", "Status"},
		{"PRF-1", 45292, "call supplier", 100, "Draft"},
		{"PRF-2", 45293, "", 200, "Approved"},
	}
}
