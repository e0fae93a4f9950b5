package roster

import (
	"fmt"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/leiding"
)

// Format is a download format for a roster selection.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat validates a format name from a request.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatXLSX, FormatPDF:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filename returns the download name for the format.
func (f Format) Filename() string {
	return "leiding." + string(f)
}

// ExportHeader is the column header shared by every export format.
var ExportHeader = []string{
	"Voornaam",
	"Achternaam",
	"Groep",
	"Geboortedatum",
	"Leiding sinds",
	"Trekker",
	"Hoofdleiding",
}

// ExportRecord returns the row's cells in ExportHeader order.
func (r Row) ExportRecord() []string {
	return []string{
		r.FirstName,
		r.LastName,
		r.GroupName,
		leiding.FormatDate(r.BirthDate),
		leiding.FormatDate(r.TenureStart),
		yesNo(r.IsTeamLead),
		yesNo(r.IsHeadStaff),
	}
}

func yesNo(b bool) string {
	if b {
		return "ja"
	}
	return "nee"
}
