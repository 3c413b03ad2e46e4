// Package csvfile reads and writes the pipeline's CSV artifacts: the state
// FIPS reference table cached on disk and raw mobility tables.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/couchcryptid/flu-mobility-etl/internal/domain"
)

const (
	stateMapDir  = "config"
	stateMapFile = "state_fips_map.csv"

	colStateFIPS = "state_fips"
	colStateAbbr = "state_abbr"
)

// WriteReason records why the state map cache was written. The zero value
// means the existing file was valid and left alone.
type WriteReason string

const (
	ReasonNone      WriteReason = ""
	ReasonCreated   WriteReason = "created"
	ReasonRewritten WriteReason = "rewritten"
)

// StateMapPath returns the cache file location under cacheRoot.
func StateMapPath(cacheRoot string) string {
	return filepath.Join(cacheRoot, stateMapDir, stateMapFile)
}

// EnsureStateFIPSMap guarantees <cacheRoot>/config/state_fips_map.csv exists
// with the state_fips and state_abbr columns and returns its path.
func EnsureStateFIPSMap(cacheRoot string, logger *slog.Logger) (string, error) {
	path, _, err := ReconcileStateFIPSMap(cacheRoot, logger)
	return path, err
}

// ReconcileStateFIPSMap is EnsureStateFIPSMap that also reports which write,
// if any, it performed. A missing file is created and an unreadable or
// incomplete one is regenerated from the canonical table; both log a notice.
// A valid file is never touched.
func ReconcileStateFIPSMap(cacheRoot string, logger *slog.Logger) (string, WriteReason, error) {
	dir := filepath.Join(cacheRoot, stateMapDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", ReasonNone, fmt.Errorf("create cache dir: %w", err)
	}
	path := filepath.Join(dir, stateMapFile)

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := writeStateMap(path); err != nil {
			return "", ReasonNone, err
		}
		logger.Info("created state fips map", "path", path)
		return path, ReasonCreated, nil
	case err != nil:
		return "", ReasonNone, fmt.Errorf("stat state fips map: %w", err)
	}

	invalid := validateStateMap(path)
	if invalid == nil {
		return path, ReasonNone, nil
	}
	if err := writeStateMap(path); err != nil {
		return "", ReasonNone, err
	}
	logger.Info("rewrote malformed state fips map", "path", path, "reason", invalid.Error())
	return path, ReasonRewritten, nil
}

// validateStateMap parses the whole file and checks for the required columns.
// Extra columns are allowed.
func validateStateMap(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	for _, col := range []string{colStateFIPS, colStateAbbr} {
		if !slices.Contains(header, col) {
			return fmt.Errorf("missing column %q", col)
		}
	}
	for {
		if _, err := r.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read row: %w", err)
		}
	}
}

// writeStateMap writes the canonical table to a temp file and renames it over
// path, so concurrent writers leave one complete file behind.
func writeStateMap(path string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+stateMapFile+"-*")
	if err != nil {
		return fmt.Errorf("create state fips map: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = encodeStateMap(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write state fips map: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close state fips map: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod state fips map: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace state fips map: %w", err)
	}
	return nil
}

func encodeStateMap(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{colStateFIPS, colStateAbbr}); err != nil {
		return err
	}
	for _, s := range domain.States() {
		if err := cw.Write([]string{strconv.Itoa(s.FIPS), s.Abbr}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadStateMap loads a state map file written by EnsureStateFIPSMap.
func ReadStateMap(path string) ([]domain.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open state fips map: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse state fips map: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("parse state fips map: empty file")
	}
	fipsIdx := slices.Index(records[0], colStateFIPS)
	abbrIdx := slices.Index(records[0], colStateAbbr)
	if fipsIdx < 0 || abbrIdx < 0 {
		return nil, fmt.Errorf("parse state fips map: header %v lacks %s/%s", records[0], colStateFIPS, colStateAbbr)
	}

	out := make([]domain.State, 0, len(records)-1)
	for i, rec := range records[1:] {
		fips, err := strconv.Atoi(rec[fipsIdx])
		if err != nil {
			return nil, fmt.Errorf("parse state fips map: row %d: %w", i+2, err)
		}
		out = append(out, domain.State{FIPS: fips, Abbr: rec[abbrIdx]})
	}
	return out, nil
}
