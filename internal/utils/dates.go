package utils

import "time"

// FormatDate renders a DATE column value as YYYY-MM-DD using UTC fields.
// DATE columns come back from the driver as midnight UTC; formatting in a
// local zone west of UTC would roll the value back a day, so UTC is
// mandatory here.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// FormatDatePtr is FormatDate for nullable columns; nil in, nil out.
func FormatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatDate(*t)
	return &s
}

// ParseDate parses a YYYY-MM-DD string into a midnight-UTC time.Time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
