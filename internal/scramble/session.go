package scramble

import "time"

// Game tuning constants. The duration and cooldown are fixed per the game
// rules, not configurable per game.
const (
	GameDuration        = 2 * time.Hour
	SacrificeCooldown   = 20 * time.Minute
	MaxActiveChallenges = 2
)

// GameStatus is the lifecycle of a game session.
type GameStatus string

const (
	GameStatusDraft  GameStatus = "draft"
	GameStatusActive GameStatus = "active"
	GameStatusEnded  GameStatus = "ended"
)

// Session is the immutable description of a running game: a fixed start
// time plus a fixed duration. Remaining time is always derived, never stored.
type Session struct {
	ID        string
	Name      string
	Status    GameStatus
	StartedAt *time.Time
	Duration  time.Duration
}

// Remaining derives the countdown for a start time and duration.
// ended is true exactly when the remaining time has reached zero.
func Remaining(start time.Time, duration time.Duration, now time.Time) (remaining time.Duration, ended bool) {
	remaining = start.Add(duration).Sub(now)
	if remaining <= 0 {
		return 0, true
	}
	return remaining, false
}

// Remaining derives the session countdown at now. A session that has not
// started yet reports its full duration and is never ended.
func (s Session) Remaining(now time.Time) (time.Duration, bool) {
	if s.StartedAt == nil {
		return s.Duration, false
	}
	if s.Status == GameStatusEnded {
		return 0, true
	}
	return Remaining(*s.StartedAt, s.Duration, now)
}
