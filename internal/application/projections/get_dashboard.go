package projections

import (
	"context"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/account"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/event"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/group"
)

// UpcomingOnDashboard is how many events the dashboard lists.
const UpcomingOnDashboard = 5

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	Permission account.Permission
	Now        time.Time
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	LeidingStore LeidingStore
	GroupStore   GroupStore
	EventStore   EventStore
	PostStore    PostStore
	AccountStore AccountStore // optional: only read for administrators
}

// GroupCount is the number of active leiding in one group.
type GroupCount struct {
	Group group.Group
	Count int
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	ActiveLeiding   int
	InactiveLeiding int
	Unassigned      int
	TeamLeads       int
	HeadStaff       int
	PerGroup        []GroupCount
	Upcoming        []event.Event
	Drafts          int
	PendingAccounts int // administrators only
}

// QueryGetDashboard summarises the chapter for the landing page.
// PRE: caller holds at least read permission
// POST: PerGroup follows group id order and lists active groups only
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (DashboardResult, error) {
	var res DashboardResult

	active, err := deps.LeidingStore.ListActive(ctx)
	if err != nil {
		return res, err
	}
	inactive, err := deps.LeidingStore.ListInactive(ctx)
	if err != nil {
		return res, err
	}
	groups, err := deps.GroupStore.ListActive(ctx)
	if err != nil {
		return res, err
	}

	res.ActiveLeiding = len(active)
	res.InactiveLeiding = len(inactive)
	perGroup := make(map[int64]int)
	for _, l := range active {
		if l.IsTeamLead {
			res.TeamLeads++
		}
		if l.IsHeadStaff {
			res.HeadStaff++
		}
		if !l.HasGroup() {
			res.Unassigned++
			continue
		}
		perGroup[*l.GroupID]++
	}
	for _, g := range groups {
		res.PerGroup = append(res.PerGroup, GroupCount{Group: g, Count: perGroup[g.ID]})
	}

	upcoming, err := deps.EventStore.ListUpcoming(ctx, query.Now)
	if err != nil {
		return res, err
	}
	res.Upcoming = upcoming[:min(len(upcoming), UpcomingOnDashboard)]

	posts, err := deps.PostStore.List(ctx)
	if err != nil {
		return res, err
	}
	for _, p := range posts {
		if !p.Published {
			res.Drafts++
		}
	}

	if query.Permission.Allows(account.PermissionAdmin) && deps.AccountStore != nil {
		accounts, err := deps.AccountStore.List(ctx)
		if err != nil {
			return res, err
		}
		for _, a := range accounts {
			if a.Permission == account.PermissionNone {
				res.PendingAccounts++
			}
		}
	}
	return res, nil
}

