package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/roster"
)

// column widths in mm for a landscape A4 page, in ExportHeader order.
var pdfWidths = []float64{40, 45, 40, 35, 35, 28, 32}

// PDF writes a landscape A4 document with a title line and a table.
type PDF struct {
	Title string
	Now   func() time.Time
}

var _ roster.Exporter = PDF{}

// Export writes rows as a PDF.
// PRE: rows is non-empty
func (p PDF) Export(w io.Writer, rows []roster.Row) error {
	if err := p.document(rows).Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// document lays out the table. The column header is drawn by the page header
// callback so it repeats after every automatic page break. Text goes through a
// cp1252 translator for the core Helvetica font; runes outside cp1252 print as '.'.
func (p PDF) document(rows []roster.Row) *fpdf.Fpdf {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	title := p.Title
	if title == "" {
		title = "Leiding KSA Petegem"
	}
	printed := now()

	doc := fpdf.New("L", "mm", "A4", "")
	doc.SetCreationDate(printed)
	doc.SetTitle(title, true)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetHeaderFunc(func() {
		if doc.PageNo() == 1 {
			doc.SetFont("Helvetica", "B", 16)
			doc.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
			doc.SetFont("Helvetica", "", 9)
			doc.CellFormat(0, 6, tr(fmt.Sprintf("%d leiding, %s", len(rows), printed.Format("02/01/2006"))), "", 1, "L", false, 0, "")
			doc.Ln(4)
		}
		doc.SetFont("Helvetica", "B", 10)
		doc.SetFillColor(249, 178, 50)
		for i, h := range roster.ExportHeader {
			doc.CellFormat(pdfWidths[i], 8, tr(h), "1", 0, "L", true, 0, "")
		}
		doc.Ln(-1)
	})

	doc.AddPage()
	doc.SetFont("Helvetica", "", 10)
	for n, row := range rows {
		fill := n%2 == 1
		doc.SetFillColor(245, 245, 245)
		for i, v := range row.ExportRecord() {
			doc.CellFormat(pdfWidths[i], 7, tr(v), "1", 0, "L", fill, 0, "")
		}
		doc.Ln(-1)
	}
	return doc
}
