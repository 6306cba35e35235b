package utils

import "time"

// DisplayLayout is the local date format shown next to reviews
const DisplayLayout = "02.01.2006 15:04"

// LoadDisplayLocation resolves the configured display zone, falling back to UTC
// for an empty name.
func LoadDisplayLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// FormatLocal converts a UTC instant to loc and formats it for display.
func FormatLocal(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DisplayLayout)
}
