// Package agg has month-bucket aggregation logic for project snapshots.
package agg

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/elomagic/dtreport/internal/contract"
	"github.com/elomagic/dtreport/schema"
)

// bucketKey identifies one (month, project) group.
type bucketKey struct {
	month   schema.MonthKey
	project string
}

// accumulator is the mutable running sum of one group.
// It only lives while Aggregate runs.
type accumulator struct {
	sum   schema.MetricsSet
	count int
}

func (a *accumulator) add(m schema.MetricsSet) {
	a.sum.RiskScore += m.RiskScore
	a.sum.Critical += m.Critical
	a.sum.High += m.High
	a.sum.Medium += m.Medium
	a.sum.Low += m.Low
	a.sum.Unassigned += m.Unassigned
	a.count++
}

// mean converts the running sum into averages. Groups are created on first
// contribution so count is never zero here.
func (a *accumulator) mean() schema.MetricsSet {
	n := float64(a.count)
	return schema.MetricsSet{
		RiskScore:  a.sum.RiskScore / n,
		Critical:   a.sum.Critical / n,
		High:       a.sum.High / n,
		Medium:     a.sum.Medium / n,
		Low:        a.sum.Low / n,
		Unassigned: a.sum.Unassigned / n,
	}
}

// Aggregate groups snapshots by month and project name and averages each metric.
// Sibling snapshots of one project in one month (several versions) are averaged,
// not deduplicated. Every produced entry carries generatedAt.
//
// A snapshot without an import timestamp is a contract violation of the caller's
// filter and fails the whole call with contract.ErrDataAssumption. So does an
// import year that has no four-digit month key.
func Aggregate(snapshots []schema.ProjectSnapshot, generatedAt time.Time) (schema.Buckets, error) {
	for i, s := range snapshots {
		if s.ImportedAt == nil {
			return nil, fmt.Errorf("%w: snapshot %d (%s %s) has no import timestamp",
				contract.ErrDataAssumption, i, s.Name, s.Version)
		}
		if y := s.ImportedAt.Year(); y < 0 || y > 9999 {
			return nil, fmt.Errorf("%w: snapshot %d (%s %s) has import year %d outside 0000-9999",
				contract.ErrDataAssumption, i, s.Name, s.Version, y)
		}
	}

	// Summing in a canonical order keeps float results identical for shuffled input.
	ordered := slices.Clone(snapshots)
	slices.SortStableFunc(ordered, compareSnapshots)

	groups := make(map[bucketKey]*accumulator)
	for _, s := range ordered {
		key := bucketKey{month: MonthKeyOf(*s.ImportedAt), project: s.Name}
		acc, ok := groups[key]
		if !ok {
			acc = &accumulator{}
			groups[key] = acc
		}
		acc.add(s.Metrics)
	}

	buckets := make(schema.Buckets)
	for key, acc := range groups {
		projects, ok := buckets[key.month]
		if !ok {
			projects = make(map[string]schema.AggregatedMetrics)
			buckets[key.month] = projects
		}
		projects[key.project] = schema.AggregatedMetrics{
			ProjectName: key.project,
			GeneratedAt: generatedAt,
			Average:     acc.mean(),
		}
	}
	return buckets, nil
}

// compareSnapshots orders snapshots by name, import time, version and UUID.
func compareSnapshots(a, b schema.ProjectSnapshot) int {
	return cmp.Or(
		cmp.Compare(a.Name, b.Name),
		a.ImportedAt.Compare(*b.ImportedAt),
		cmp.Compare(a.Version, b.Version),
		cmp.Compare(a.UUID, b.UUID),
		cmp.Compare(a.Metrics.RiskScore, b.Metrics.RiskScore),
	)
}
