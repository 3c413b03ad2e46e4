package httpadapter

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/couchcryptid/flu-mobility-etl/internal/domain"
	"github.com/couchcryptid/flu-mobility-etl/internal/pipeline"
)

type seriesResponse struct {
	domain.WeeklySeries
	Summary domain.SeriesSummary `json:"summary"`
}

func handleStates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.States())
}

// handleState resolves either an abbreviation or a FIPS code.
func handleState(w http.ResponseWriter, r *http.Request) {
	abbr, fips, err := domain.ResolveState(r.PathValue("code"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.State{FIPS: fips, Abbr: abbr})
}

func (s *Server) handleSeries(inflows InflowQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.PathValue("fips")
		fips, ok := domain.NormalizeFIPS(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Errorf("location code %q has no digits", raw))
			return
		}

		series, err := inflows.Series(fips)
		switch {
		case errors.Is(err, pipeline.ErrNotReady):
			writeError(w, http.StatusServiceUnavailable, err)
			return
		case err != nil:
			s.logger.Error("build inflow series failed", "fips", fips, "error", err)
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, seriesResponse{WeeklySeries: series, Summary: domain.Summarize(series)})
	}
}
