package dtrack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/elomagic/dtreport/schema"
)

// project mirrors the fields of a Dependency-Track project object the report needs.
type project struct {
	UUID          string          `json:"uuid"`
	Name          string          `json:"name"`
	Version       string          `json:"version"`
	LastBomImport json.RawMessage `json:"lastBomImport"`
	Metrics       *metrics        `json:"metrics"`
}

// metrics mirrors the project metrics object. Absent fields decode to zero.
type metrics struct {
	InheritedRiskScore float64 `json:"inheritedRiskScore"`
	Critical           float64 `json:"critical"`
	High               float64 `json:"high"`
	Medium             float64 `json:"medium"`
	Low                float64 `json:"low"`
	Unassigned         float64 `json:"unassigned"`
}

var epochMillisPattern = regexp.MustCompile(`^\d+$`)

// ParseLastBomImport resolves the lastBomImport value of the API. Depending on the
// server version it is epoch milliseconds (number or numeric string) or an ISO-8601
// string. Epoch values are placed in loc. Null, empty and blank values return nil.
func ParseLastBomImport(raw json.RawMessage, loc *time.Location) (*time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var value string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("invalid lastBomImport %s: %w", raw, err)
		}
	} else {
		value = string(raw)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if epochMillisPattern.MatchString(value) {
		millis, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid lastBomImport %q: %w", value, err)
		}
		t := time.UnixMilli(millis).In(loc)
		return &t, nil
	}

	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, fmt.Errorf("invalid lastBomImport %q: %w", value, err)
	}
	return &t, nil
}

// toSnapshot converts the API object into the engine's snapshot model.
func (p project) toSnapshot(loc *time.Location) (schema.ProjectSnapshot, error) {
	importedAt, err := ParseLastBomImport(p.LastBomImport, loc)
	if err != nil {
		return schema.ProjectSnapshot{}, fmt.Errorf("project %s %s: %w", p.Name, p.Version, err)
	}
	s := schema.ProjectSnapshot{
		UUID:       p.UUID,
		Name:       p.Name,
		Version:    p.Version,
		ImportedAt: importedAt,
	}
	if p.Metrics != nil {
		s.Metrics = schema.MetricsSet{
			RiskScore:  p.Metrics.InheritedRiskScore,
			Critical:   p.Metrics.Critical,
			High:       p.Metrics.High,
			Medium:     p.Metrics.Medium,
			Low:        p.Metrics.Low,
			Unassigned: p.Metrics.Unassigned,
		}
	}
	return s, nil
}

// DecodeProjects reads a JSON array of project objects into snapshots.
func DecodeProjects(r io.Reader, loc *time.Location) ([]schema.ProjectSnapshot, error) {
	var projects []project
	if err := json.NewDecoder(r).Decode(&projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	snapshots := make([]schema.ProjectSnapshot, 0, len(projects))
	for _, p := range projects {
		s, err := p.toSnapshot(loc)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}
