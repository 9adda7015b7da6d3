package utils

import "time"

// DefaultTimeLayout mirrors a browser's locale date-time rendering
const DefaultTimeLayout = "1/2/2006, 3:04:05 PM"

// NowMillis returns t as milliseconds since the Unix epoch
func NowMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FormatMillis renders an epoch-milliseconds timestamp in loc using layout
func FormatMillis(ms int64, loc *time.Location, layout string) string {
	if loc == nil {
		loc = time.Local
	}
	if layout == "" {
		layout = DefaultTimeLayout
	}
	return time.UnixMilli(ms).In(loc).Format(layout)
}
