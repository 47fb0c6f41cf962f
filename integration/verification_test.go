//go:build basic

package integration

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawProject mirrors the Dependency-Track project fields the report reads.
type rawProject struct {
	UUID          string         `json:"uuid"`
	Name          string         `json:"name"`
	Version       string         `json:"version"`
	LastBomImport string         `json:"lastBomImport,omitempty"`
	Metrics       map[string]int `json:"metrics"`
}

// expectedCell accumulates the sums for one month and project.
type expectedCell struct {
	n                                         int
	risk, critical, high, medium, low, unassn float64
}

// TestVerifyAveragesAgainstGeneratedData compares every averaged column of the
// binary's JSON output with sums computed independently here.
func TestVerifyAveragesAgainstGeneratedData(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	names := []string{"api-gateway", "billing", "catalog", "frontend", "search"}
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	var projects []rawProject
	expected := map[string]*expectedCell{}
	for i := range 400 {
		name := names[rng.IntN(len(names))]
		imported := start.Add(time.Duration(rng.IntN(300*24)) * time.Hour)
		m := map[string]int{
			"inheritedRiskScore": rng.IntN(500),
			"critical":           rng.IntN(10),
			"high":               rng.IntN(40),
			"medium":             rng.IntN(80),
			"low":                rng.IntN(120),
			"unassigned":         rng.IntN(5),
		}
		projects = append(projects, rawProject{
			UUID:          fmt.Sprintf("uuid-%04d", i),
			Name:          name,
			Version:       fmt.Sprintf("%d.%d.%d", rng.IntN(4), rng.IntN(10), i),
			LastBomImport: imported.Format(time.RFC3339),
			Metrics:       m,
		})

		key := imported.Format("2006-01") + " " + name
		cell := expected[key]
		if cell == nil {
			cell = &expectedCell{}
			expected[key] = cell
		}
		cell.n++
		cell.risk += float64(m["inheritedRiskScore"])
		cell.critical += float64(m["critical"])
		cell.high += float64(m["high"])
		cell.medium += float64(m["medium"])
		cell.low += float64(m["low"])
		cell.unassn += float64(m["unassigned"])
	}

	data, err := json.Marshal(projects)
	require.NoError(t, err)
	input := writeProjects(t, string(data))

	res := runDTReport(t, nil, "report", "--source", "file", "--input-file", input, "--format", "json")
	require.NoError(t, res.err)
	rows := decodeRows(t, res.stdout)

	wantKeys := make([]string, 0, len(expected))
	for k := range expected {
		wantKeys = append(wantKeys, k)
	}
	sort.Strings(wantKeys)
	require.Equal(t, wantKeys, rowKeys(rows), "rows are ordered by month, then project name")

	const eps = 1e-9
	for _, r := range rows {
		cell := expected[string(r.MonthKey)+" "+r.ProjectName]
		n := float64(cell.n)
		assert.InDelta(t, cell.risk/n, r.AverageRiskScore, eps, "%s %s risk", r.MonthKey, r.ProjectName)
		assert.InDelta(t, cell.critical/n, r.AverageCritical, eps, "%s %s critical", r.MonthKey, r.ProjectName)
		assert.InDelta(t, cell.high/n, r.AverageHigh, eps, "%s %s high", r.MonthKey, r.ProjectName)
		assert.InDelta(t, cell.medium/n, r.AverageMedium, eps, "%s %s medium", r.MonthKey, r.ProjectName)
		assert.InDelta(t, cell.low/n, r.AverageLow, eps, "%s %s low", r.MonthKey, r.ProjectName)
		assert.InDelta(t, cell.unassn/n, r.AverageUnassigned, eps, "%s %s unassigned", r.MonthKey, r.ProjectName)
	}
}

// TestVerifyOutputIsDeterministic runs the same report twice and expects identical
// rows apart from the generation timestamp.
func TestVerifyOutputIsDeterministic(t *testing.T) {
	input := writeProjects(t, sampleProjects)
	args := []string{"report", "--source", "file", "--input-file", input, "--format", "json", "--fill-gaps"}

	first := decodeRows(t, runDTReport(t, nil, args...).stdout)
	second := decodeRows(t, runDTReport(t, nil, args...).stdout)
	require.Len(t, second, len(first))
	for i := range first {
		second[i].GeneratedAt = first[i].GeneratedAt
	}
	assert.Equal(t, first, second)
}
