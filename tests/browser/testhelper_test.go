package browser_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
	"github.com/spf13/afero"

	web "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http/middleware"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http/perf"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/objectstore"
	accountStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/account"
	auditStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/audit"
	eventStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/event"
	groupStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/group"
	leidingStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/leiding"
	postStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/post"
	settingStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/setting"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/storagetest"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/application/orchestrators"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/group"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/leiding"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/setting"
)

const (
	adminEmail    = "admin@ksa.test"
	adminPassword = "Petegem2025!"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	Stores  web.Stores
	Groups  map[string]int64 // seeded groups by name
	Leiding map[string]int64 // seeded leiding by first name
	PW      *playwright.Playwright
	Browser playwright.Browser
}

// newTestApp serves the full middleware chain over an in-memory database with
// two groups and four active leiding, then starts headless Chromium.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()
	db := storagetest.Open(t)

	stores := web.Stores{
		Leiding:  leidingStore.NewSQLStore(db),
		Groups:   groupStore.NewSQLStore(db),
		Events:   eventStore.NewSQLStore(db),
		Posts:    postStore.NewSQLStore(db),
		Settings: settingStore.NewSQLStore(db),
		Accounts: accountStore.NewSQLStore(db),
	}
	if err := stores.Settings.EnsureDefaults(ctx, setting.DefaultSettings()); err != nil {
		t.Fatalf("failed to seed settings: %v", err)
	}

	if _, err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.SeedAdminInput{
		Email:    adminEmail,
		Password: adminPassword,
	}, orchestrators.SignUpDeps{
		AccountStore: stores.Accounts,
		GenerateID:   func() string { return uuid.New().String() },
		Now:          time.Now,
	}); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	groups := map[string]int64{}
	for _, g := range []group.Group{
		{Name: "Leeuwkes", Color: group.ColorRed, Active: true},
		{Name: "Jongknapen", Color: group.ColorBlue, Active: true},
	} {
		id, err := stores.Groups.Create(ctx, g)
		if err != nil {
			t.Fatalf("failed to seed group: %v", err)
		}
		groups[g.Name] = id
	}

	leeuwkes, jongknapen := groups["Leeuwkes"], groups["Jongknapen"]
	staff := map[string]int64{}
	for _, l := range []leiding.Leiding{
		{FirstName: "Daan", LastName: "Maes", IsHeadStaff: true, TenureStart: day("2015-09-01"), Active: true},
		{FirstName: "Emma", LastName: "Claes", IsTeamLead: true, GroupID: &leeuwkes, TenureStart: day("2019-09-01"), Active: true},
		{FirstName: "Bram", LastName: "Peeters", GroupID: &jongknapen, TenureStart: day("2020-09-01"), Active: true},
		{FirstName: "Lotte", LastName: "Wouters", GroupID: &jongknapen, TenureStart: day("2021-09-01"), Active: true},
	} {
		id, err := stores.Leiding.Create(ctx, l)
		if err != nil {
			t.Fatalf("failed to seed leiding: %v", err)
		}
		staff[l.FirstName] = id
	}

	// the listener exists before Start, so the trusted origin is known up front
	ts := httptest.NewUnstartedServer(nil)
	baseURL := "http://" + ts.Listener.Addr().String()

	srvCtx, cancel := context.WithCancel(ctx)
	handler, err := web.NewMux(srvCtx, web.Options{
		Stores:   stores,
		Objects:  objectstore.New(afero.NewMemMapFs(), ""),
		Sessions: middleware.NewMemorySessionStore(time.Hour),
		BaseURL:  baseURL,
		CSRFKey:  []byte("0123456789abcdef0123456789abcdef"),
		Recorder: perf.NewRecorder(64),
		Audit:    auditStore.NewSQLStore(db),
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to build server: %v", err)
	}
	ts.Config.Handler = handler
	ts.Start()

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		ts.Close()
		cancel()
	})

	return &testApp{
		BaseURL: baseURL,
		Stores:  stores,
		Groups:  groups,
		Leiding: staff,
		PW:      pw,
		Browser: browser,
	}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login signs in as the seeded administrator and waits for the dashboard.
func (a *testApp) login(t *testing.T, page playwright.Page) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=email]").Fill(adminEmail); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(adminPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+"/", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to dashboard: %v", err)
	}
}

// openRoster navigates to the active roster and waits for its script.
func (a *testApp) openRoster(t *testing.T, page playwright.Page) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/leiding"); err != nil {
		t.Fatalf("failed to navigate to roster: %v", err)
	}
	if err := page.Locator("#roster-body tr[data-id]").First().WaitFor(); err != nil {
		t.Fatalf("roster did not render: %v", err)
	}
}

// waitForRows blocks until the roster body shows n data rows.
func waitForRows(t *testing.T, page playwright.Page, n int) {
	t.Helper()
	if _, err := page.WaitForFunction(
		"n => document.querySelectorAll('#roster-body tr[data-id]').length === n",
		n,
		playwright.PageWaitForFunctionOptions{Timeout: playwright.Float(5000)},
	); err != nil {
		t.Fatalf("roster never showed %d rows: %v", n, err)
	}
}

// rowNames returns the names in the roster body, top to bottom.
func rowNames(t *testing.T, page playwright.Page) []string {
	t.Helper()
	names, err := page.Locator("#roster-body tr[data-id] td a").AllTextContents()
	if err != nil {
		t.Fatalf("failed to read roster names: %v", err)
	}
	return names
}
