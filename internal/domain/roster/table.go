package roster

import (
	"errors"
	"io"
	"strings"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/group"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/leiding"
)

// ErrEmptySelection is returned when an action needs at least one selected row.
// Callers surface it as a notice, not a failure.
var ErrEmptySelection = errors.New("select at least one leiding first")

// Row is a leiding joined with its group for display.
type Row struct {
	leiding.Leiding
	GroupName  string
	GroupColor string // hex, empty when unassigned
}

// NewRows joins groups onto staff in memory, preserving staff order.
// A GroupID that matches no group leaves GroupName empty.
func NewRows(staff []leiding.Leiding, groups []group.Group) []Row {
	byID := make(map[int64]group.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}
	rows := make([]Row, len(staff))
	for i, l := range staff {
		rows[i] = Row{Leiding: l}
		if l.GroupID == nil {
			continue
		}
		if g, ok := byID[*l.GroupID]; ok {
			rows[i].GroupName = g.Name
			rows[i].GroupColor = g.EffectiveColor()
		}
	}
	return rows
}

// matches reports whether the lowered term occurs in any display field.
func (r Row) matches(term string) bool {
	for _, field := range []string{r.FullName(), r.GroupName, r.TenureYear()} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Search narrows rows to those whose full name, group name or tenure year
// contains term, case-insensitively.
// POST: result is a subsequence of rows; Search(rows, "") returns rows unchanged
func Search(rows []Row, term string) []Row {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.matches(term) {
			out = append(out, r)
		}
	}
	return out
}

// Exporter writes rows to w in some document format.
type Exporter interface {
	Export(w io.Writer, rows []Row) error
}

// Table is the visible roster plus a selection set over it. Interactive
// selection happens in the page; the server rebuilds a Table from the ids the
// page sends back.
type Table struct {
	rows     []Row
	selected map[int64]bool
}

// NewTable wraps rows with an empty selection.
func NewTable(rows []Row) *Table {
	return &Table{rows: rows, selected: make(map[int64]bool)}
}

// Select marks the given visible ids as selected. Ids not in view are ignored.
func (t *Table) Select(ids ...int64) {
	for _, id := range ids {
		if t.visible(id) {
			t.selected[id] = true
		}
	}
}

// Selected returns the selected rows in display order.
func (t *Table) Selected() []Row {
	out := make([]Row, 0, len(t.selected))
	for _, r := range t.rows {
		if t.selected[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// ExportSelection writes only the selected rows through ex.
// PRE: none
// POST: returns ErrEmptySelection without touching w when nothing is selected
func (t *Table) ExportSelection(w io.Writer, ex Exporter) error {
	rows := t.Selected()
	if len(rows) == 0 {
		return ErrEmptySelection
	}
	return ex.Export(w, rows)
}

func (t *Table) visible(id int64) bool {
	for _, r := range t.rows {
		if r.ID == id {
			return true
		}
	}
	return false
}
