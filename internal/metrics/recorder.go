// Package metrics records per-run import statistics to InfluxDB so batch
// history can be charted and compared across invocations.
package metrics

import (
	"context"
	"time"

	"product_importer/internal/config"
	"product_importer/internal/domain"
	"product_importer/pkg/logger"

	influxdb3 "github.com/InfluxCommunity/influxdb3-go/v2/influxdb3"
)

// Recorder writes one point per import run. A nil Recorder is a no-op, so
// callers never need to branch on whether metrics are configured.
type Recorder struct {
	db *config.InfluxDatabase
}

// NewRecorder creates a recorder over an InfluxDB connection.
func NewRecorder(db *config.InfluxDatabase) *Recorder {
	return &Recorder{db: db}
}

// RecordRun writes the outcome of one import invocation. Failures are logged
// and swallowed; metrics never fail an import.
func (r *Recorder) RecordRun(ctx context.Context, result domain.ImportResult) {
	if r == nil || r.db == nil || r.db.Client == nil {
		return
	}

	point := influxdb3.NewPoint(
		"import_run",
		map[string]string{
			"vendor": result.Vendor,
			"run_id": result.RunID,
		},
		map[string]interface{}{
			"created":          int64(result.Created),
			"updated":          int64(result.Updated),
			"errors":           int64(result.Errors),
			"duration_seconds": result.Duration,
		},
		time.Now(),
	)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := r.db.Client.WritePoints(ctx, []*influxdb3.Point{point}); err != nil {
		logger.Errorf("Failed to record import metrics: %v", err)
	}
}
