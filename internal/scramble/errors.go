package scramble

import (
	"errors"
	"fmt"
	"time"
)

// Policy errors are decided before any write is attempted. They are
// user-facing and never fatal; callers surface them as dismissible messages.
var (
	ErrNoTemplate        = errors.New("no challenge template available for this station and line")
	ErrStationSacrificed = errors.New("station was sacrificed by this team")
	ErrGloballyResolved  = errors.New("challenge already completed in this game")
	ErrActiveLimit       = errors.New("active challenge limit reached")
	ErrNotUnlocked       = errors.New("challenge is not unlocked for this team")
	ErrUnknownStation    = errors.New("unknown station")
	ErrUnknownLine       = errors.New("unknown line")
	ErrLineNotServed     = errors.New("station is not on this line")
)

// LineLockedError reports a sacrifice cooldown still in effect on a line.
type LineLockedError struct {
	Line      Line
	Remaining time.Duration
}

func (e *LineLockedError) Error() string {
	return fmt.Sprintf("line %s is locked for another %s", e.Line, e.Remaining.Round(time.Second))
}
