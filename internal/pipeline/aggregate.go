package pipeline

import (
	"fmt"

	"github.com/couchcryptid/flu-mobility-etl/internal/domain"
	"github.com/couchcryptid/flu-mobility-etl/internal/observability"
)

// aggregate counts table health into metrics and reduces the table to weekly
// inflows.
func aggregate(table domain.MobilityTable, metrics *observability.Metrics) ([]domain.InflowRow, error) {
	metrics.RecordsLoaded.Add(float64(len(table.Records)))

	hasOrigin := table.HasColumn(domain.ColOriginFIPS)
	hasDest := table.HasColumn(domain.ColDestFIPS)
	var missingOrigin, missingDest int
	for _, rec := range table.Records {
		if hasOrigin && rec.OriginFIPS == "" {
			missingOrigin++
		}
		if hasDest && rec.DestFIPS == "" {
			missingDest++
		}
	}
	metrics.RecordsMissingFIPS.WithLabelValues(domain.ColOriginFIPS).Add(float64(missingOrigin))
	metrics.RecordsMissingFIPS.WithLabelValues(domain.ColDestFIPS).Add(float64(missingDest))

	rows, err := domain.InflowsByWeek(table)
	if err != nil {
		return nil, fmt.Errorf("aggregate inflows: %w", err)
	}
	return rows, nil
}
