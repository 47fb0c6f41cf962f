package schema

import "time"

// CacheStatus represents the status of the snapshot cache.
type CacheStatus struct {
	Backend          string    `json:"backend"`
	Connected        bool      `json:"connected"`
	TotalSnapshots   int       `json:"total_snapshots"`
	DistinctProjects int       `json:"distinct_projects"`
	LastFetchTime    time.Time `json:"last_fetch_time"`
	OldestFetchTime  time.Time `json:"oldest_fetch_time"`
	TableSizeBytes   int64     `json:"table_size_bytes"`
}
