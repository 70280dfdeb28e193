// Package term derives academic-term labels from calendar time. The
// school year runs August through July, so an August date already
// belongs to the new academic year.
package term

import (
	"fmt"
	"time"
)

// AcademicYear returns the "2025-2026" style label for the academic
// year containing t.
func AcademicYear(t time.Time) string {
	year := t.Year()
	if t.Month() < time.August {
		year--
	}
	return fmt.Sprintf("%d-%d", year, year+1)
}
