package csvfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/flu-mobility-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMobility_NormalizesLocationColumns(t *testing.T) {
	input := strings.Join([]string{
		"origin_fips,dest_fips,week,visits,source",
		"FIPS:6037,06037,2024-01-01,10,safegraph",
		"6073,FIPS:6037,2024-01-01,5,safegraph",
		"n/a,county-36061,2024-01-08,,safegraph",
	}, "\n")

	table, err := ReadMobility(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"origin_fips", "dest_fips", "week", "visits", "source"}, table.Columns)
	require.Len(t, table.Records, 3)

	assert.Equal(t, "06037", table.Records[0].OriginFIPS)
	assert.Equal(t, "06037", table.Records[0].DestFIPS)
	assert.Equal(t, "2024-01-01", table.Records[0].Week)
	assert.True(t, table.Records[0].HasVisits)
	assert.Equal(t, 10.0, table.Records[0].Visits)
	assert.Equal(t, "safegraph", table.Records[0].Extra["source"])

	assert.Equal(t, "06073", table.Records[1].OriginFIPS)
	assert.Equal(t, "06037", table.Records[1].DestFIPS)

	// No digit run: missing, not an error.
	assert.Empty(t, table.Records[2].OriginFIPS)
	assert.Equal(t, "36061", table.Records[2].DestFIPS)
	assert.False(t, table.Records[2].HasVisits)
}

func TestReadMobility_PartialSchema(t *testing.T) {
	table, err := ReadMobility(strings.NewReader("dest_fips,visits\n6037,3\n"))
	require.NoError(t, err)

	assert.False(t, table.HasColumn(domain.ColOriginFIPS))
	assert.False(t, table.HasColumn(domain.ColWeek))
	require.Len(t, table.Records, 1)
	assert.Equal(t, "06037", table.Records[0].DestFIPS)

	_, err = domain.InflowsByWeek(table)
	assert.ErrorIs(t, err, domain.ErrSchema)
}

func TestReadMobility_ShortRowsAndBOM(t *testing.T) {
	input := "\ufefforigin_fips,dest_fips,week,visits\n06037,06059\n"

	table, err := ReadMobility(strings.NewReader(input))
	require.NoError(t, err)
	assert.True(t, table.HasColumn(domain.ColOriginFIPS))
	require.Len(t, table.Records, 1)
	assert.Equal(t, "06059", table.Records[0].DestFIPS)
	assert.Empty(t, table.Records[0].Week)
	assert.False(t, table.Records[0].HasVisits)
}

func TestReadMobility_NonFiniteVisitsAreMissing(t *testing.T) {
	input := strings.Join([]string{
		"origin_fips,dest_fips,week,visits",
		"06037,06037,2024-01-01,10",
		"06073,06037,2024-01-01,NaN",
		"06059,06037,2024-01-01,NA",
		"06073,06059,2024-01-01,Inf",
		"06037,06059,2024-01-01,-Infinity",
	}, "\n")

	table, err := ReadMobility(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, table.Records, 5)
	for _, rec := range table.Records[1:] {
		assert.False(t, rec.HasVisits)
	}

	rows, err := domain.InflowsByWeek(table)
	require.NoError(t, err)
	assert.Equal(t, []domain.InflowRow{
		{Week: "2024-01-01", DestFIPS: "06037", TotalInflow: 10},
		{Week: "2024-01-01", DestFIPS: "06059", TotalInflow: 0},
	}, rows)
}

func TestReadMobility_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"empty", "", "empty input"},
		{"duplicate column", "week,week\n", "duplicate column"},
		{"too many fields", "week,visits\n2024-01-01,1,2\n", "has 3 fields"},
		{"bad quoting", "week,visits\n\"2024-01-01,1\n", "read row"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMobility(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoadMobility_AggregatesEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mobility.csv")
	content := "origin_fips,dest_fips,week,visits\n06037,06037,2024-01-01,10\n06073,06037,2024-01-01,5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := LoadMobility(path)
	require.NoError(t, err)

	rows, err := domain.InflowsByWeek(table)
	require.NoError(t, err)
	assert.Equal(t, []domain.InflowRow{{Week: "2024-01-01", DestFIPS: "06037", TotalInflow: 15}}, rows)
}

func TestLoadMobility_MissingFile(t *testing.T) {
	_, err := LoadMobility(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteInflowsAndSeries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInflows(&buf, []domain.InflowRow{{Week: "2024-01-01", DestFIPS: "06037", TotalInflow: 15.5}}))
	assert.Equal(t, "week,dest_fips,total_inflow\n2024-01-01,06037,15.5\n", buf.String())

	v := 15.0
	series := domain.WeeklySeries{DestFIPS: "06037", Points: []domain.SeriesPoint{
		{Week: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Inflow: &v},
		{Week: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)},
	}}
	buf.Reset()
	require.NoError(t, WriteSeries(&buf, series))
	assert.Equal(t, "week,total_inflow\n2024-01-01,15\n2024-01-08,\n", buf.String())
}
