package export_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/export"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/event"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/leiding"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/roster"
)

var day = time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC)

func rows() []roster.Row {
	return []roster.Row{
		{Leiding: leiding.Leiding{ID: 1, FirstName: "Emma", LastName: "De Smet", IsTeamLead: true, BirthDate: time.Date(2003, 4, 1, 0, 0, 0, 0, time.UTC)}, GroupName: "Leeuwkes"},
		{Leiding: leiding.Leiding{ID: 2, FirstName: "Zoë", LastName: "Verhaeghe"}},
	}
}

func TestXLSX_Export(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.XLSX{}.Export(&buf, rows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, roster.ExportHeader, got[0])
	assert.Equal(t, []string{"Emma", "De Smet", "Leeuwkes", "2003-04-01", "", "ja", "nee"}, got[1])
	assert.Equal(t, "Zoë", got[2][0])
}

func TestPDF_Export(t *testing.T) {
	var buf bytes.Buffer
	p := export.PDF{Now: func() time.Time { return day }}
	require.NoError(t, p.Export(&buf, rows()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestCalendar_Write(t *testing.T) {
	events := []event.Event{
		{ID: 7, Title: "Startdag", StartDate: day, Location: "Lokaal"},
		{ID: 8, Title: "Vergadering", StartDate: day, StartTime: "19:30", EndTime: "21:00"},
		{ID: 9, Title: "Kamp", StartDate: day, EndDate: day.AddDate(0, 0, 2)},
	}
	var buf bytes.Buffer
	c := export.Calendar{Name: "KSA Petegem", Now: func() time.Time { return day }}
	require.NoError(t, c.Write(&buf, events))

	out := strings.ReplaceAll(buf.String(), "\r\n ", "")
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, export.ProductID)
	assert.Contains(t, out, "UID:7@ksapetegem.be")
	assert.Contains(t, out, "SUMMARY:Startdag")
	assert.Contains(t, out, "LOCATION:Lokaal")
	assert.Contains(t, out, "20261024T193000Z")
	assert.Contains(t, out, "20261024T210000Z")
	// all-day end dates are exclusive
	assert.Contains(t, out, "20261025")
	assert.Contains(t, out, "20261027")
	assert.Equal(t, 3, strings.Count(out, "BEGIN:VEVENT"))
}

func TestCalendar_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Calendar{}.Write(&buf, nil))
	assert.Contains(t, buf.String(), "END:VCALENDAR")
	assert.NotContains(t, buf.String(), "VEVENT")
}
