// Package core wires the snapshot sources, the filter and the aggregation engine into reports.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/elomagic/dtreport/core/agg"
	"github.com/elomagic/dtreport/core/algo"
	"github.com/elomagic/dtreport/internal/contract"
	"github.com/elomagic/dtreport/internal/dtrack"
	"github.com/elomagic/dtreport/internal/outwriter"
	"github.com/elomagic/dtreport/schema"
)

// ExecutorFunc defines the function signature for executing a command against the engine.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteReport fetches snapshots, builds the monthly report and writes it
// in the configured format. It serves as the main entry point for the 'report' command.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	source, err := ResolveSource(cfg, mgr)
	if err != nil {
		return err
	}
	rows, err := GetReportRows(ctx, cfg, source, time.Now())
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteReport(rows, cfg)
}

// GetReportRows runs the fetch, filter and aggregation stages and returns the ordered rows.
// now anchors both the filter window and the generatedAt stamp of every row.
func GetReportRows(ctx context.Context, cfg *contract.Config, source contract.SnapshotSource, now time.Time) ([]schema.ReportRow, error) {
	snapshots, err := source.FetchSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshots: %w", err)
	}

	filtered := FilterSnapshots(snapshots, cfg, now)
	notBefore, notAfter := cfg.TimeWindow(now)
	contract.LogInfo("Matched %s of %s project snapshots imported between %s and %s",
		contract.Count(len(filtered)), contract.Count(len(snapshots)),
		notBefore.Format(time.DateOnly), notAfter.Format(time.DateOnly))

	kept, dropped := dropUnimported(filtered)
	if dropped > 0 {
		contract.LogInfo("Skipping %s project snapshots without a BOM import", contract.Count(dropped))
	}

	return BuildReport(kept, cfg.FillGaps, now)
}

// BuildReport aggregates snapshots into monthly averages, optionally forward-fills
// missing months and returns the rows ordered by month, then project name.
// Every snapshot must carry an import timestamp.
func BuildReport(snapshots []schema.ProjectSnapshot, fillGaps bool, generatedAt time.Time) ([]schema.ReportRow, error) {
	buckets, err := agg.Aggregate(snapshots, generatedAt)
	if err != nil {
		return nil, err
	}
	if fillGaps {
		buckets, err = algo.FillGaps(buckets)
		if err != nil {
			return nil, err
		}
	}
	return algo.Flatten(buckets), nil
}

// ResolveSource returns the snapshot source selected by cfg.Source.
// Snapshots fetched from Dependency-Track are written through to the cache store when one is configured.
func ResolveSource(cfg *contract.Config, mgr contract.CacheManager) (contract.SnapshotSource, error) {
	var store contract.SnapshotStore
	if mgr != nil {
		store = mgr.GetSnapshotStore()
	}

	switch cfg.Source {
	case schema.DTrackSource:
		client := dtrack.New(nil, cfg.BaseURL, cfg.APIKey,
			dtrack.WithPageHook(func(page, count int) {
				contract.LogInfo("Fetched page %d with %s projects", page, contract.Count(count))
			}))
		if store == nil {
			return client, nil
		}
		return &writeThroughSource{source: client, store: store, now: time.Now}, nil

	case schema.CacheSource:
		if store == nil {
			return nil, fmt.Errorf("%w: the cache source needs an initialized cache backend", contract.ErrOption)
		}
		return contract.SnapshotSourceFunc(func(ctx context.Context) ([]schema.ProjectSnapshot, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return store.LoadSnapshots()
		}), nil

	case schema.FileSource:
		return dtrack.FileSource{Path: cfg.InputFile}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported source '%s'", contract.ErrOption, cfg.Source)
	}
}

// writeThroughSource saves every successful fetch into the snapshot cache.
type writeThroughSource struct {
	source contract.SnapshotSource
	store  contract.SnapshotStore
	now    func() time.Time
}

// FetchSnapshots implements contract.SnapshotSource.
func (w *writeThroughSource) FetchSnapshots(ctx context.Context) ([]schema.ProjectSnapshot, error) {
	snapshots, err := w.source.FetchSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	// A cache failure never fails the report.
	if err := w.store.SaveSnapshots(snapshots, w.now()); err != nil {
		contract.LogWarn("could not cache snapshots", err)
	}
	return snapshots, nil
}
