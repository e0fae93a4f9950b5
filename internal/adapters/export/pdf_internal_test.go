package export

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/leiding"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/roster"
)

func TestPDF_HeaderRepeatsOnEveryPage(t *testing.T) {
	var rows []roster.Row
	for i := 1; i <= 80; i++ {
		rows = append(rows, roster.Row{Leiding: leiding.Leiding{ID: int64(i), FirstName: fmt.Sprintf("Leiding%02d", i)}})
	}
	p := PDF{Now: func() time.Time { return time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC) }}

	doc := p.document(rows)
	doc.SetCompression(false)
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))

	pages := doc.PageCount()
	require.Greater(t, pages, 1, "80 rows do not fit on one page")
	out := buf.Bytes()
	assert.Equal(t, pages, bytes.Count(out, []byte("(Voornaam)")), "column header on every page")
	assert.Equal(t, 1, bytes.Count(out, []byte("(Leiding KSA Petegem)")), "title on the first page only")
	assert.Equal(t, 1, bytes.Count(out, []byte("(Leiding80)")))
}

func TestPDF_TextOutsideCP1252(t *testing.T) {
	rows := []roster.Row{{Leiding: leiding.Leiding{ID: 1, FirstName: "Zoë", LastName: "Łukasz"}}}
	doc := PDF{}.document(rows)
	doc.SetCompression(false)
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	assert.Contains(t, buf.String(), "(Zo\xeb)", "latin-1 letters keep their cp1252 byte")
	assert.Contains(t, buf.String(), "(.ukasz)")
}
