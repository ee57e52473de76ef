package utils

import "time"

// ParseDurationOrDefault parses values like "30s" or "5m" from the
// configuration, falling back to def on empty or malformed input.
func ParseDurationOrDefault(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
