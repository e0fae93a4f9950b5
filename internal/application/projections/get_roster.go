package projections

import (
	"context"
	"fmt"
	"io"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/group"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/leiding"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/roster"
)

// GetRosterQuery carries query parameters.
type GetRosterQuery struct {
	Filter   roster.Filter
	Search   string
	Inactive bool // list disabled leiding instead of active ones
}

// GetRosterResult carries the query result.
type GetRosterResult struct {
	Rows   []roster.Row
	Filter roster.Filter
	Search string
	Total  int           // rows before search
	Groups []group.Group // active groups, for the filter menu and the reassign picker
}

// GetRosterDeps holds dependencies for GetRoster.
type GetRosterDeps struct {
	LeidingStore LeidingStore
	GroupStore   GroupStore
}

// QueryGetRoster fetches the staff list and re-derives the visible rows.
// PRE: none
// POST: Rows = Search(NewRows(Apply(staff, Filter)), Search)
// INVARIANT: nothing is cached between calls; every call reads the stores
func QueryGetRoster(ctx context.Context, query GetRosterQuery, deps GetRosterDeps) (GetRosterResult, error) {
	var (
		staff []leiding.Leiding
		err   error
	)
	if query.Inactive {
		staff, err = deps.LeidingStore.ListInactive(ctx)
	} else {
		staff, err = deps.LeidingStore.ListActive(ctx)
	}
	if err != nil {
		return GetRosterResult{}, err
	}

	// all groups, so leiding in a deactivated group still show its name
	groups, err := deps.GroupStore.ListAll(ctx)
	if err != nil {
		return GetRosterResult{}, err
	}

	rows := roster.NewRows(roster.Apply(staff, query.Filter), groups)
	visible := roster.Search(rows, query.Search)

	active := make([]group.Group, 0, len(groups))
	for _, g := range groups {
		if g.Active {
			active = append(active, g)
		}
	}

	return GetRosterResult{
		Rows:   visible,
		Filter: query.Filter,
		Search: query.Search,
		Total:  len(rows),
		Groups: active,
	}, nil
}

// ExportRosterQuery names the visible view and the rows picked in it.
type ExportRosterQuery struct {
	GetRosterQuery
	Selected []int64
	Format   roster.Format
}

// ExportRosterDeps holds dependencies for ExportRoster.
type ExportRosterDeps struct {
	GetRosterDeps
	Exporters map[roster.Format]roster.Exporter
}

// QueryExportRoster writes the selected rows of the current view to w.
// Ids that are not visible in the view are ignored.
// PRE: Format has an exporter
// POST: roster.ErrEmptySelection when no visible row is selected; nothing written then
func QueryExportRoster(ctx context.Context, w io.Writer, query ExportRosterQuery, deps ExportRosterDeps) error {
	ex, ok := deps.Exporters[query.Format]
	if !ok {
		return fmt.Errorf("no exporter for %q", query.Format)
	}
	view, err := QueryGetRoster(ctx, query.GetRosterQuery, deps.GetRosterDeps)
	if err != nil {
		return err
	}
	tbl := roster.NewTable(view.Rows)
	tbl.Select(query.Selected...)
	return tbl.ExportSelection(w, ex)
}
