package util

import (
	"fmt"
	"time"
)

// FormatDuration formats a duration as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatProgress formats elapsed and total as "m:ss / m:ss".
func FormatProgress(elapsed, total time.Duration) string {
	return FormatDuration(min(elapsed, total)) + " / " + FormatDuration(total)
}
