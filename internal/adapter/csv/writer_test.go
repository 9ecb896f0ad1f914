package csv

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/ballpark-weather-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriter_LoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	table := domain.Table{Rows: []domain.ShapedRecord{
		{
			Date:      day(2021, time.January, 1),
			StationID: "72494",
			Location:  "Oracle Park",
			Metrics:   domain.Metrics{Tavg: domain.Float(32), Tmin: domain.Float(28.94), Prcp: domain.Float(0), Wdir: domain.Float(292)},
		},
		{
			Date:      day(2021, time.January, 2),
			StationID: "72494",
			Location:  "Oracle Park",
		},
	}}

	w := NewWriter(path)
	require.NoError(t, w.LoadTable(context.Background(), table))

	records := readAll(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"date", "station_id", "Stadium", "tavg", "tmin", "tmax", "prcp", "snow", "wdir", "wspd", "wpgt", "pres", "tsun"}, records[0])
	assert.Equal(t, []string{"2021-01-01", "72494", "Oracle Park", "32.0", "28.94", "", "0.0", "", "292.0", "", "", "", ""}, records[1])
	assert.Equal(t, []string{"2021-01-02", "72494", "Oracle Park", "", "", "", "", "", "", "", "", "", ""}, records[2])
}

func TestWriter_OverwritesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale,content\n1,2\n3,4\n5,6\n"), 0o644))

	w := NewWriter(path)
	require.NoError(t, w.LoadTable(context.Background(), domain.Table{}))

	records := readAll(t, path)
	require.Len(t, records, 1, "empty table still writes the header")
	assert.Equal(t, Header, records[0])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is cleaned up")
}

func TestWriter_MissingDirectory(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "missing", "out.csv"))
	err := w.LoadTable(context.Background(), domain.Table{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create temp file")
}

func TestWriter_QuotesStadiumNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	table := domain.Table{Rows: []domain.ShapedRecord{
		{Date: day(2022, time.March, 1), StationID: "KLXT0", Location: `Wrigley "Friendly Confines", Chicago`},
	}}
	require.NoError(t, NewWriter(path).LoadTable(context.Background(), table))

	records := readAll(t, path)
	assert.Equal(t, `Wrigley "Friendly Confines", Chicago`, records[1][2])
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want string
	}{
		{"nil", nil, ""},
		{"zero", domain.Float(0), "0.0"},
		{"whole", domain.Float(32), "32.0"},
		{"negative", domain.Float(-4), "-4.0"},
		{"fraction", domain.Float(50.18), "50.18"},
		{"small", domain.Float(0.1), "0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}
