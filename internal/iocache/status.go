package iocache

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/elomagic/dtreport/schema"
)

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(w io.Writer, status schema.CacheStatus) {
	_, _ = fmt.Fprintf(w, "Cache Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Snapshots: %s\n", humanize.Comma(int64(status.TotalSnapshots)))
	_, _ = fmt.Fprintf(w, "Distinct Projects: %s\n", humanize.Comma(int64(status.DistinctProjects)))
	if status.TotalSnapshots > 0 {
		_, _ = fmt.Fprintf(w, "Last Fetch: %s\n", status.LastFetchTime.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "Oldest Fetch: %s\n", status.OldestFetchTime.Format("2006-01-02 15:04:05"))
	}
	_, _ = fmt.Fprintf(w, "Table Size: %s\n", humanize.Bytes(uint64(max(status.TableSizeBytes, 0))))
}
