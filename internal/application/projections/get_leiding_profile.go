package projections

import (
	"context"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/group"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/leiding"
)

// GetLeidingProfileResult carries a leiding with everything the edit form needs.
type GetLeidingProfileResult struct {
	Leiding   leiding.Leiding
	GroupName string
	Groups    []group.Group // choices for the group picker
}

// GetLeidingProfileDeps holds dependencies for GetLeidingProfile.
type GetLeidingProfileDeps struct {
	LeidingStore LeidingStore
	GroupStore   GroupStore
}

// QueryGetLeidingProfile loads one leiding for the edit page.
// PRE: id names an existing leiding
// POST: Groups holds the active groups plus the leiding's own group if it is inactive
func QueryGetLeidingProfile(ctx context.Context, id int64, deps GetLeidingProfileDeps) (GetLeidingProfileResult, error) {
	l, err := deps.LeidingStore.GetByID(ctx, id)
	if err != nil {
		return GetLeidingProfileResult{}, err
	}
	all, err := deps.GroupStore.ListAll(ctx)
	if err != nil {
		return GetLeidingProfileResult{}, err
	}

	res := GetLeidingProfileResult{Leiding: l}
	for _, g := range all {
		own := l.InGroup(g.ID)
		if own {
			res.GroupName = g.Name
		}
		if g.Active || own {
			res.Groups = append(res.Groups, g)
		}
	}
	return res, nil
}
