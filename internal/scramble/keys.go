package scramble

import (
	"regexp"
	"strings"
)

var keyPattern = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// DocKey joins parts into a store document key, normalizing every run of
// non-alphanumeric characters to a single underscore so that station names
// like "7th Street/Metro Center" produce stable, idempotent keys.
func DocKey(parts ...string) string {
	return keyPattern.ReplaceAllString(strings.Join(parts, "_"), "_")
}

// ChallengeKey keys a team's challenge instance by (station, title, line).
func ChallengeKey(station, title string, line Line) string {
	return DocKey(station, title, string(line))
}

// StationLineKey keys the global binding and ledger slots by (station, line).
func StationLineKey(station string, line Line) string {
	return DocKey(station, string(line))
}
