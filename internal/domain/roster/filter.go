package roster

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/leiding"
)

// Kind enumerates the roster views.
type Kind int

const (
	KindChronological Kind = iota // everyone, longest-serving first
	KindTeamLeads                 // trekkers only
	KindHeadStaff                 // hoofdleiding only
	KindGrouped                   // everyone, clustered per group
	KindByGroup                   // one group
)

// Filter tokens as they appear in URLs and the remembered-filter cookie.
const (
	TokenChronological = "all_chronological"
	TokenTeamLeads     = "trekkers"
	TokenHeadStaff     = "hoofdleiding"
	TokenGrouped       = "all_by_group"
	groupTokenPrefix   = "group:"
)

// ErrUnknownFilter is returned by ParseFilter for tokens it does not recognise.
var ErrUnknownFilter = errors.New("unknown roster filter")

// Filter selects and orders a roster view. The zero value is Chronological.
// Construct with the helper functions; a Filter of KindByGroup always carries a group id.
type Filter struct {
	kind    Kind
	groupID int64
}

func Chronological() Filter { return Filter{kind: KindChronological} }
func TeamLeads() Filter     { return Filter{kind: KindTeamLeads} }
func HeadStaff() Filter     { return Filter{kind: KindHeadStaff} }
func Grouped() Filter       { return Filter{kind: KindGrouped} }

// ByGroup selects the members of one group.
func ByGroup(groupID int64) Filter { return Filter{kind: KindByGroup, groupID: groupID} }

// Kind returns the filter variant.
func (f Filter) Kind() Kind { return f.kind }

// GroupID returns the group of a ByGroup filter.
func (f Filter) GroupID() (int64, bool) {
	return f.groupID, f.kind == KindByGroup
}

// String returns the token form of the filter.
func (f Filter) String() string {
	switch f.kind {
	case KindChronological:
		return TokenChronological
	case KindTeamLeads:
		return TokenTeamLeads
	case KindHeadStaff:
		return TokenHeadStaff
	case KindGrouped:
		return TokenGrouped
	case KindByGroup:
		return groupTokenPrefix + strconv.FormatInt(f.groupID, 10)
	}
	panic(fmt.Sprintf("roster: unhandled filter kind %d", f.kind))
}

// ParseFilter reads a token produced by String. A bare positive number is
// accepted as a group id. Empty input yields Chronological.
func ParseFilter(token string) (Filter, error) {
	token = strings.TrimSpace(token)
	switch token {
	case "", TokenChronological:
		return Chronological(), nil
	case TokenTeamLeads:
		return TeamLeads(), nil
	case TokenHeadStaff:
		return HeadStaff(), nil
	case TokenGrouped:
		return Grouped(), nil
	}
	raw := strings.TrimPrefix(token, groupTokenPrefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return Filter{}, fmt.Errorf("%w: %q", ErrUnknownFilter, token)
	}
	return ByGroup(id), nil
}

// Apply derives an ordered view of staff for f.
// PRE: none
// POST: returns a new slice; staff is not mutated
// INVARIANT: elements with equal sort keys keep their input order
func Apply(staff []leiding.Leiding, f Filter) []leiding.Leiding {
	var keep func(leiding.Leiding) bool
	var cmp func(a, b leiding.Leiding) int

	switch f.kind {
	case KindChronological:
		cmp = func(a, b leiding.Leiding) int {
			if c := compareDate(a.TenureStart, b.TenureStart); c != 0 {
				return c
			}
			return compareDate(a.BirthDate, b.BirthDate)
		}
	case KindTeamLeads:
		keep = func(l leiding.Leiding) bool { return l.IsTeamLead }
		cmp = func(a, b leiding.Leiding) int {
			if c := compareGroup(a.GroupID, b.GroupID); c != 0 {
				return c
			}
			return strings.Compare(a.FirstName, b.FirstName)
		}
	case KindHeadStaff:
		keep = func(l leiding.Leiding) bool { return l.IsHeadStaff }
		cmp = func(a, b leiding.Leiding) int {
			return strings.Compare(a.FirstName, b.FirstName)
		}
	case KindGrouped:
		cmp = func(a, b leiding.Leiding) int {
			if c := compareGroup(a.GroupID, b.GroupID); c != 0 {
				return c
			}
			// youngest first
			return compareDate(b.BirthDate, a.BirthDate)
		}
	case KindByGroup:
		id := f.groupID
		keep = func(l leiding.Leiding) bool { return l.InGroup(id) }
		cmp = func(a, b leiding.Leiding) int {
			if a.IsTeamLead != b.IsTeamLead {
				if a.IsTeamLead {
					return -1
				}
				return 1
			}
			return compareDate(a.TenureStart, b.TenureStart)
		}
	default:
		panic(fmt.Sprintf("roster: unhandled filter kind %d", f.kind))
	}

	out := make([]leiding.Leiding, 0, len(staff))
	for _, l := range staff {
		if keep == nil || keep(l) {
			out = append(out, l)
		}
	}
	slices.SortStableFunc(out, cmp)
	return out
}

// compareDate orders dates ascending; the zero time sorts lowest.
func compareDate(a, b time.Time) int {
	return a.Compare(b)
}

// compareGroup orders group ids ascending with unassigned last.
func compareGroup(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}
