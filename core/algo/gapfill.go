package algo

import (
	"github.com/elomagic/dtreport/schema"
	"github.com/samber/lo"
)

// FillGaps forward-fills missing months per project. A month without a BOM import
// keeps the risk posture of the most recent month with data, so "no data" is
// never reported as "clean".
//
// Each project is walked from its own first observed month through the global
// last month. Nothing is synthesized before a project's first observation.
// The input is left untouched; the result is a new bucket map. Calling FillGaps
// on its own output returns an equal map.
//
// Memory is O(projects x months in range), so callers bound it through the
// not-before window of the snapshot filter.
func FillGaps(buckets schema.Buckets) (schema.Buckets, error) {
	filled := buckets.Clone()
	if len(buckets) == 0 {
		return filled, nil
	}

	months := lo.Keys(buckets)
	for _, month := range months {
		if _, err := ParseMonthKey(month); err != nil {
			return nil, err
		}
	}
	lastMonth := lo.Max(months)

	firstSeen := make(map[string]schema.MonthKey)
	for month, projects := range buckets {
		for name := range projects {
			if first, ok := firstSeen[name]; !ok || month < first {
				firstSeen[name] = month
			}
		}
	}

	for name, first := range firstSeen {
		previous := buckets[first][name]
		for month := first; month <= lastMonth; {
			projects, ok := filled[month]
			if !ok {
				projects = make(map[string]schema.AggregatedMetrics)
				filled[month] = projects
			}
			if observed, ok := projects[name]; ok {
				previous = observed
			} else {
				projects[name] = previous
			}

			next, err := NextMonth(month)
			if err != nil {
				return nil, err
			}
			month = next
		}
	}
	return filled, nil
}
