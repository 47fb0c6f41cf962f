package agg

import (
	"fmt"
	"time"

	"github.com/elomagic/dtreport/schema"
)

// MonthKeyOf returns the "YYYY-MM" bucket of t, read in t's own location.
// There is no cross-zone normalization: 2024-02-01T00:30+02:00 lands in 2024-02.
func MonthKeyOf(t time.Time) schema.MonthKey {
	return schema.MonthKey(fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())))
}
