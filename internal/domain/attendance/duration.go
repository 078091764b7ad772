package attendance

import (
	"fmt"
	"time"
)

// DurationBetween returns out-in in whole seconds, clamped at zero for clock skew.
func DurationBetween(in, out *time.Time) *int64 {
	if in == nil || out == nil {
		return nil
	}
	sec := int64(out.Sub(*in) / time.Second)
	if sec < 0 {
		sec = 0
	}
	return &sec
}

// FormatDuration renders seconds as zero-padded HH:MM:SS.
func FormatDuration(sec *int64) *string {
	if sec == nil {
		return nil
	}
	s := formatHMS(*sec)
	return &s
}

// FormatTotal renders an aggregate; zero is shown as 00:00:00 rather than omitted.
func FormatTotal(sec int64) string {
	return formatHMS(sec)
}

func formatHMS(sec int64) string {
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
}
