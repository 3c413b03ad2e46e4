package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/flu-mobility-etl/internal/domain"
)

// LoadMobility reads a mobility CSV from path. See ReadMobility.
func LoadMobility(path string) (domain.MobilityTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.MobilityTable{}, fmt.Errorf("open mobility table: %w", err)
	}
	defer f.Close()

	table, err := ReadMobility(f)
	if err != nil {
		return domain.MobilityTable{}, fmt.Errorf("load mobility %s: %w", path, err)
	}
	return table, nil
}

// ReadMobility parses a header-led mobility CSV. The origin_fips and dest_fips
// columns, when present, are normalized with domain.NormalizeFIPS; values with
// no digits become missing codes. Visits that are blank or not numeric are
// missing. Any other column is carried through in MobilityRecord.Extra.
func ReadMobility(r io.Reader) (domain.MobilityTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.MobilityTable{}, errors.New("read header: empty input")
		}
		return domain.MobilityTable{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	seen := make(map[string]bool, len(header))
	for _, col := range header {
		if seen[col] {
			return domain.MobilityTable{}, fmt.Errorf("read header: duplicate column %q", col)
		}
		seen[col] = true
	}

	table := domain.MobilityTable{Columns: header}
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.MobilityTable{}, fmt.Errorf("read row: %w", err)
		}
		if len(fields) > len(header) {
			line, _ := cr.FieldPos(0)
			return domain.MobilityTable{}, fmt.Errorf("read row: line %d has %d fields, header has %d", line, len(fields), len(header))
		}
		table.Records = append(table.Records, parseRecord(header, fields))
	}
	return table, nil
}

// parseRecord maps one row onto a record. Rows shorter than the header leave
// the trailing columns missing.
func parseRecord(header, fields []string) domain.MobilityRecord {
	var rec domain.MobilityRecord
	for i, col := range header {
		if i >= len(fields) {
			break
		}
		value := fields[i]
		switch col {
		case domain.ColOriginFIPS:
			rec.OriginFIPS, _ = domain.NormalizeFIPS(value)
		case domain.ColDestFIPS:
			rec.DestFIPS, _ = domain.NormalizeFIPS(value)
		case domain.ColWeek:
			rec.Week = strings.TrimSpace(value)
		case domain.ColVisits:
			// NaN and Inf parse but are missing values.
			if v, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
				rec.Visits = v
				rec.HasVisits = true
			}
		default:
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[col] = value
		}
	}
	return rec
}

// WriteInflows writes weekly inflow rows as week,dest_fips,total_inflow.
func WriteInflows(w io.Writer, rows []domain.InflowRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{domain.ColWeek, domain.ColDestFIPS, "total_inflow"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.Week, row.DestFIPS, formatFloat(row.TotalInflow)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSeries writes a weekly series as week,total_inflow. Missing weeks have
// an empty total_inflow.
func WriteSeries(w io.Writer, series domain.WeeklySeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{domain.ColWeek, "total_inflow"}); err != nil {
		return err
	}
	for _, p := range series.Points {
		value := ""
		if p.Inflow != nil {
			value = formatFloat(*p.Inflow)
		}
		if err := cw.Write([]string{p.Week.Format("2006-01-02"), value}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FileSource extracts a mobility table from a CSV file on disk. It implements
// pipeline.Extractor.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name identifies the source in logs and snapshots.
func (s *FileSource) Name() string { return s.path }

// Extract loads the file. The context is only checked before reading.
func (s *FileSource) Extract(ctx context.Context) (domain.MobilityTable, error) {
	if err := ctx.Err(); err != nil {
		return domain.MobilityTable{}, err
	}
	return LoadMobility(s.path)
}
