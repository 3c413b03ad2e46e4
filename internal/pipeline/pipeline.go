package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/flu-mobility-etl/internal/domain"
	"github.com/couchcryptid/flu-mobility-etl/internal/observability"
	"github.com/google/uuid"
)

// ErrNotReady is returned by queries made before the first successful run.
var ErrNotReady = errors.New("inflow snapshot not available yet")

// Extractor reads a raw mobility table from its source.
type Extractor interface {
	Name() string
	Extract(ctx context.Context) (domain.MobilityTable, error)
}

// InflowLoader writes an aggregated inflow snapshot to a destination.
type InflowLoader interface {
	Name() string
	LoadInflows(ctx context.Context, snapshot domain.InflowSnapshot) error
}

// Pipeline orchestrates the extract-aggregate-load run and holds the latest
// inflow snapshot for queries.
type Pipeline struct {
	extractor Extractor
	loaders   []InflowLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool

	mu       sync.RWMutex
	snapshot domain.InflowSnapshot
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, loaders []InflowLoader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor: e,
		loaders:   loaders,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once an inflow snapshot has been published.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not aggregated any mobility data yet")
	}
	return nil
}

// Run performs one extract-aggregate-load cycle. The snapshot is published for
// queries as soon as aggregation succeeds; every loader is then attempted and
// their failures are returned together. Nothing is retried.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer func() {
		p.metrics.PipelineRunning.Set(0)
		p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	table, err := p.extractor.Extract(ctx)
	if err != nil {
		return fmt.Errorf("extract mobility: %w", err)
	}
	p.logger.Info("mobility table loaded", "source", p.extractor.Name(), "records", len(table.Records), "columns", table.Columns)

	rows, err := aggregate(table, p.metrics)
	if err != nil {
		return err
	}

	snapshot := domain.InflowSnapshot{
		RunID:       uuid.NewString(),
		Source:      p.extractor.Name(),
		GeneratedAt: domain.Now(),
		Rows:        rows,
	}
	p.publish(snapshot)
	p.logger.Info("weekly inflows aggregated", "run_id", snapshot.RunID, "rows", len(rows))

	var errs []error
	for _, l := range p.loaders {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := l.LoadInflows(ctx, snapshot); err != nil {
			p.logger.Error("load inflows failed", "sink", l.Name(), "run_id", snapshot.RunID, "error", err)
			p.metrics.SinkErrors.WithLabelValues(l.Name()).Inc()
			errs = append(errs, fmt.Errorf("load inflows to %s: %w", l.Name(), err))
			continue
		}
		p.metrics.SinkRowsWritten.WithLabelValues(l.Name()).Add(float64(len(rows)))
	}

	return errors.Join(errs...)
}

func (p *Pipeline) publish(snapshot domain.InflowSnapshot) {
	p.mu.Lock()
	p.snapshot = snapshot
	p.mu.Unlock()
	p.metrics.InflowRows.Set(float64(len(snapshot.Rows)))
	p.ready.Store(true)
}

// Snapshot returns the latest published snapshot, or ErrNotReady.
func (p *Pipeline) Snapshot() (domain.InflowSnapshot, error) {
	if !p.ready.Load() {
		return domain.InflowSnapshot{}, ErrNotReady
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot, nil
}

// Series returns the weekly inflow series for a normalized destination code.
func (p *Pipeline) Series(fips string) (domain.WeeklySeries, error) {
	snapshot, err := p.Snapshot()
	if err != nil {
		return domain.WeeklySeries{}, err
	}
	return domain.SeriesForLocation(snapshot.Rows, fips)
}
