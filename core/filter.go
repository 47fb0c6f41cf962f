package core

import (
	"cmp"
	"slices"
	"time"

	"github.com/elomagic/dtreport/internal/contract"
	"github.com/elomagic/dtreport/schema"
	"github.com/samber/lo"
)

// FilterSnapshots keeps the snapshots that fall inside the configured time window,
// match the project filter and match the version pattern.
//
// The window is open on both ends. Snapshots without an import timestamp are not
// rejected here; the report pipeline drops them separately so the count can be logged.
// The result is ordered by project name, then version descending.
func FilterSnapshots(snapshots []schema.ProjectSnapshot, cfg *contract.Config, now time.Time) []schema.ProjectSnapshot {
	notBefore, notAfter := cfg.TimeWindow(now)

	kept := lo.Filter(snapshots, func(s schema.ProjectSnapshot, _ int) bool {
		if s.HasImport() {
			if !s.ImportedAt.After(notBefore) || !s.ImportedAt.Before(notAfter) {
				return false
			}
		}
		if len(cfg.ProjectFilter) > 0 &&
			!slices.Contains(cfg.ProjectFilter, s.Name) &&
			!slices.Contains(cfg.ProjectFilter, s.UUID) {
			return false
		}
		if cfg.VersionMatch != nil && !cfg.VersionMatch.MatchString(s.Version) {
			return false
		}
		return true
	})

	slices.SortStableFunc(kept, func(a, b schema.ProjectSnapshot) int {
		return cmp.Or(
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(b.Version, a.Version),
		)
	})
	return kept
}

// dropUnimported splits off snapshots that never had a BOM import.
func dropUnimported(snapshots []schema.ProjectSnapshot) ([]schema.ProjectSnapshot, int) {
	kept, dropped := lo.FilterReject(snapshots, func(s schema.ProjectSnapshot, _ int) bool {
		return s.HasImport()
	})
	return kept, len(dropped)
}
