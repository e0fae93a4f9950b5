package projections

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/application/listutil"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/event"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/group"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/leiding"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/post"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/roster"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/setting"
)

var errNotSeeded = errors.New("not seeded")

type mockLeidingStore struct {
	rows []leiding.Leiding
}

func (m *mockLeidingStore) GetByID(_ context.Context, id int64) (leiding.Leiding, error) {
	for _, l := range m.rows {
		if l.ID == id {
			return l, nil
		}
	}
	return leiding.Leiding{}, errNotSeeded
}

func (m *mockLeidingStore) ListActive(_ context.Context) ([]leiding.Leiding, error) {
	return m.filter(true), nil
}

func (m *mockLeidingStore) ListInactive(_ context.Context) ([]leiding.Leiding, error) {
	return m.filter(false), nil
}

func (m *mockLeidingStore) filter(active bool) []leiding.Leiding {
	var out []leiding.Leiding
	for _, l := range m.rows {
		if l.Active == active {
			out = append(out, l)
		}
	}
	return out
}

type mockGroupStore struct {
	groups []group.Group
}

func (m *mockGroupStore) ListAll(_ context.Context) ([]group.Group, error) { return m.groups, nil }

func (m *mockGroupStore) ListActive(_ context.Context) ([]group.Group, error) {
	var out []group.Group
	for _, g := range m.groups {
		if g.Active {
			out = append(out, g)
		}
	}
	return out, nil
}

type mockEventStore struct {
	events []event.Event
	from   time.Time
}

func (m *mockEventStore) List(_ context.Context) ([]event.Event, error) { return m.events, nil }

func (m *mockEventStore) ListUpcoming(_ context.Context, from time.Time) ([]event.Event, error) {
	m.from = from
	var out []event.Event
	for _, e := range m.events {
		if !e.StartDate.Before(from) {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockPostStore struct{ posts []post.Post }

func (m *mockPostStore) List(_ context.Context) ([]post.Post, error) { return m.posts, nil }

func (m *mockPostStore) ListPublished(_ context.Context) ([]post.Post, error) {
	var out []post.Post
	for _, p := range m.posts {
		if p.Published {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockAccountStore struct{ accounts []account.Account }

func (m *mockAccountStore) List(_ context.Context) ([]account.Account, error) { return m.accounts, nil }

type mockSettingStore struct{ settings []setting.Setting }

func (m *mockSettingStore) List(_ context.Context) ([]setting.Setting, error) { return m.settings, nil }

// captureExporter records the exported rows.
type captureExporter struct{ rows []roster.Row }

func (c *captureExporter) Export(w io.Writer, rows []roster.Row) error {
	c.rows = rows
	_, err := w.Write([]byte("file"))
	return err
}

func rowIDs(rows []roster.Row) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func seed() (*mockLeidingStore, *mockGroupStore) {
	g1, g2, g3 := leiding.GroupRef(1), leiding.GroupRef(2), leiding.GroupRef(3)
	return &mockLeidingStore{rows: []leiding.Leiding{
			{ID: 1, FirstName: "Emma", GroupID: g2, IsTeamLead: true, Active: true},
			{ID: 2, FirstName: "Daan", IsHeadStaff: true, Active: true},
			{ID: 3, FirstName: "Bram", GroupID: g1, IsTeamLead: true, Active: true},
			{ID: 4, FirstName: "Anke", GroupID: g1, Active: true},
			{ID: 5, FirstName: "Cato", GroupID: g3, IsTeamLead: true, Active: true},
			{ID: 6, FirstName: "Wout", GroupID: g1, Active: false},
		}}, &mockGroupStore{groups: []group.Group{
			{ID: 1, Name: "Leeuwkes", Active: true},
			{ID: 2, Name: "Jongknapen", Active: true},
			{ID: 3, Name: "Knapen", Active: false},
		}}
}

// TestQueryGetRoster_FilterThenSearch verifies rows are filtered, joined and searched.
func TestQueryGetRoster_FilterThenSearch(t *testing.T) {
	ls, gs := seed()
	deps := GetRosterDeps{LeidingStore: ls, GroupStore: gs}

	res, err := QueryGetRoster(context.Background(), GetRosterQuery{Filter: roster.TeamLeads()}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rowIDs(res.Rows); !reflect.DeepEqual(got, []int64{3, 1, 5}) {
		t.Fatalf("team leads = %v, want [3 1 5]", got)
	}
	if res.Rows[2].GroupName != "Knapen" {
		t.Errorf("inactive group name should still be joined, got %q", res.Rows[2].GroupName)
	}
	if len(res.Groups) != 2 {
		t.Errorf("expected 2 active groups for the picker, got %d", len(res.Groups))
	}

	res, err = QueryGetRoster(context.Background(), GetRosterQuery{Filter: roster.TeamLeads(), Search: "leeuw"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rowIDs(res.Rows); !reflect.DeepEqual(got, []int64{3}) || res.Total != 3 {
		t.Fatalf("search = %v (total %d), want [3] of 3", got, res.Total)
	}
}

// TestQueryGetRoster_Inactive verifies the disabled list.
func TestQueryGetRoster_Inactive(t *testing.T) {
	ls, gs := seed()
	res, err := QueryGetRoster(context.Background(), GetRosterQuery{Filter: roster.Chronological(), Inactive: true},
		GetRosterDeps{LeidingStore: ls, GroupStore: gs})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rowIDs(res.Rows); !reflect.DeepEqual(got, []int64{6}) {
		t.Fatalf("inactive = %v, want [6]", got)
	}
}

// TestQueryExportRoster verifies only visible selected rows reach the exporter.
func TestQueryExportRoster(t *testing.T) {
	ls, gs := seed()
	ex := &captureExporter{}
	deps := ExportRosterDeps{
		GetRosterDeps: GetRosterDeps{LeidingStore: ls, GroupStore: gs},
		Exporters:     map[roster.Format]roster.Exporter{roster.FormatXLSX: ex},
	}
	query := ExportRosterQuery{
		GetRosterQuery: GetRosterQuery{Filter: roster.ByGroup(1)},
		Format:         roster.FormatXLSX,
	}

	var buf bytes.Buffer
	if err := QueryExportRoster(context.Background(), &buf, query, deps); !errors.Is(err, roster.ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}

	query.Selected = []int64{2} // not in group 1
	if err := QueryExportRoster(context.Background(), &buf, query, deps); !errors.Is(err, roster.ErrEmptySelection) {
		t.Fatalf("hidden ids must not count as a selection, got %v", err)
	}

	query.Selected = []int64{4, 2, 3}
	if err := QueryExportRoster(context.Background(), &buf, query, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rowIDs(ex.rows); !reflect.DeepEqual(got, []int64{3, 4}) {
		t.Fatalf("exported %v, want [3 4]", got)
	}
	if buf.String() != "file" {
		t.Fatalf("unexpected output %q", buf.String())
	}

	query.Format = roster.FormatPDF
	if err := QueryExportRoster(context.Background(), &buf, query, deps); err == nil {
		t.Fatal("expected an error for a format without exporter")
	}
}

// TestQueryGetLeidingProfile verifies the group picker keeps an inactive own group.
func TestQueryGetLeidingProfile(t *testing.T) {
	ls, gs := seed()
	res, err := QueryGetLeidingProfile(context.Background(), 5, GetLeidingProfileDeps{LeidingStore: ls, GroupStore: gs})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.GroupName != "Knapen" || len(res.Groups) != 3 {
		t.Fatalf("got group %q with %d choices", res.GroupName, len(res.Groups))
	}

	res, err = QueryGetLeidingProfile(context.Background(), 2, GetLeidingProfileDeps{LeidingStore: ls, GroupStore: gs})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.GroupName != "" || len(res.Groups) != 2 {
		t.Fatalf("unassigned leiding: got group %q with %d choices", res.GroupName, len(res.Groups))
	}

	if _, err := QueryGetLeidingProfile(context.Background(), 99, GetLeidingProfileDeps{LeidingStore: ls, GroupStore: gs}); err == nil {
		t.Fatal("expected error for unknown leiding")
	}
}

// TestQueryGetEvents verifies group targeting and name joins.
func TestQueryGetEvents(t *testing.T) {
	day := time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC)
	es := &mockEventStore{events: []event.Event{
		{ID: 1, Title: "Startdag", StartDate: day},
		{ID: 2, Title: "Leeuwkesnamiddag", StartDate: day.AddDate(0, 0, 7), GroupIDs: []int64{1}},
		{ID: 3, Title: "Kamp", StartDate: day.AddDate(0, 0, -30), GroupIDs: []int64{2, 1}},
	}}
	_, gs := seed()
	deps := GetEventsDeps{EventStore: es, GroupStore: gs}

	res, err := QueryGetEvents(context.Background(), GetEventsQuery{GroupID: 2}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Events) != 2 || res.Events[0].ID != 1 || res.Events[1].ID != 3 {
		t.Fatalf("group 2 events = %+v", res.Events)
	}
	if !reflect.DeepEqual(res.Events[1].GroupNames, []string{"Jongknapen", "Leeuwkes"}) {
		t.Errorf("group names = %v", res.Events[1].GroupNames)
	}

	res, err = QueryGetEvents(context.Background(), GetEventsQuery{UpcomingFrom: day}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !es.from.Equal(day) || len(res.Plain()) != 2 {
		t.Fatalf("upcoming: from=%v events=%d", es.from, len(res.Plain()))
	}
}

// TestQueryGetDashboard verifies the counters.
func TestQueryGetDashboard(t *testing.T) {
	ls, gs := seed()
	day := time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC)
	deps := GetDashboardDeps{
		LeidingStore: ls,
		GroupStore:   gs,
		EventStore:   &mockEventStore{events: []event.Event{{ID: 1, StartDate: day}, {ID: 2, StartDate: day.AddDate(0, -1, 0)}}},
		PostStore:    &mockPostStore{posts: []post.Post{{ID: 1, Published: true}, {ID: 2}}},
		AccountStore: &mockAccountStore{accounts: []account.Account{{ID: "a", Permission: account.PermissionAdmin}, {ID: "b"}}},
	}

	res, err := QueryGetDashboard(context.Background(), GetDashboardQuery{Permission: account.PermissionAdmin, Now: day}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := DashboardResult{
		ActiveLeiding:   5,
		InactiveLeiding: 1,
		Unassigned:      1,
		TeamLeads:       3,
		HeadStaff:       1,
		PerGroup: []GroupCount{
			{Group: gs.groups[0], Count: 2},
			{Group: gs.groups[1], Count: 1},
		},
		Upcoming:        []event.Event{{ID: 1, StartDate: day}},
		Drafts:          1,
		PendingAccounts: 1,
	}
	if !reflect.DeepEqual(res, want) {
		t.Fatalf("got %+v\nwant %+v", res, want)
	}

	res, err = QueryGetDashboard(context.Background(), GetDashboardQuery{Permission: account.PermissionRead, Now: day}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PendingAccounts != 0 {
		t.Error("pending accounts are only counted for administrators")
	}
}

// TestQueryGetAccountsAndSettings verifies the list projections.
func TestQueryGetAccountsAndSettings(t *testing.T) {
	as := &mockAccountStore{accounts: []account.Account{
		{ID: "a", Permission: account.PermissionAdmin},
		{ID: "b"}, {ID: "c"},
	}}
	res, err := QueryGetAccounts(context.Background(), listutil.PageParams{Page: 1, PerPage: 10}, as)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Pending != 2 || len(res.Accounts) != 3 || res.Page.TotalPages != 1 {
		t.Fatalf("got %+v", res)
	}

	ss := &mockSettingStore{settings: setting.DefaultSettings()}
	sres, err := QueryGetSettings(context.Background(), ss)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sres.Toggles) != 3 || len(sres.Files) != 3 {
		t.Fatalf("got %d toggles and %d files", len(sres.Toggles), len(sres.Files))
	}

	ps := &mockPostStore{posts: []post.Post{{ID: 3, Published: true}, {ID: 2}, {ID: 1, Published: true}}}
	pres, err := QueryGetPosts(context.Background(), listutil.PageParams{Page: 2, PerPage: 1}, true, ps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pres.Posts) != 1 || pres.Posts[0].ID != 1 || pres.Page.Total != 2 {
		t.Fatalf("got %+v", pres)
	}
}
