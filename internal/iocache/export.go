package iocache

import (
	"errors"
	"fmt"

	"github.com/elomagic/dtreport/internal/contract"
	"github.com/elomagic/dtreport/internal/outwriter"
)

// ExecuteSnapshotExport dumps every cached snapshot into a Parquet file.
func ExecuteSnapshotExport(mgr contract.CacheManager, outputFile string) error {
	if outputFile == "" {
		return fmt.Errorf("%w: --output-file is required for export command", contract.ErrOption)
	}

	store := mgr.GetSnapshotStore()
	if store == nil {
		return errors.New("snapshot cache is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get cache status: %w", err)
	}
	if status.TotalSnapshots == 0 {
		return errors.New("no cached snapshots found to export")
	}
	contract.LogInfo("Exporting %s snapshots of %s projects from %s backend",
		contract.Count(status.TotalSnapshots), contract.Count(status.DistinctProjects), status.Backend)

	snapshots, err := store.LoadSnapshots()
	if err != nil {
		return fmt.Errorf("failed to load snapshots: %w", err)
	}
	return outwriter.NewOutWriter().WriteSnapshots(snapshots, outputFile)
}
