package server

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

var errNoSession = errors.New("no valid session")

// playerSession is the resolved identity behind a bearer token.
type playerSession struct {
	PlayerID string
	TeamID   string
	GameID   string
}

const timeFormat = "2006-01-02T15:04:05.000Z"

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

// parseTime reads the store's timestamp format, tolerating the RFC3339
// fractional-second variants sqlite's strftime produces.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	t, _ := time.Parse(timeFormat, s)
	return t
}
