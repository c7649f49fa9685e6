// Package scramble defines the core domain of the metro scavenger hunt:
// lines, stations, challenges, territory scoring, and session timing.
// It has no external service dependencies — everything here is pure Go.
package scramble

import (
	"fmt"
	"time"
)

// Line is one of the metro lines stations belong to. The set is closed;
// lines are never created at runtime.
type Line string

const (
	LineA Line = "A"
	LineB Line = "B"
	LineD Line = "D"
	LineE Line = "E"
)

// Lines returns all lines in display order.
func Lines() []Line {
	return []Line{LineA, LineB, LineD, LineE}
}

func (l Line) Valid() bool {
	switch l {
	case LineA, LineB, LineD, LineE:
		return true
	}
	return false
}

// Color returns the line's display color as a hex string.
func (l Line) Color() string {
	switch l {
	case LineA:
		return "#ffd100"
	case LineB:
		return "#e3131b"
	case LineD:
		return "#a05da5"
	case LineE:
		return "#0072bc"
	}
	return "#000000"
}

// ParseLine validates a raw line identifier.
func ParseLine(s string) (Line, error) {
	l := Line(s)
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLine, s)
	}
	return l, nil
}

// Station is a fixed point on the map. Stations on more than one line are
// the contention points of the game.
type Station struct {
	Name  string  `yaml:"name" json:"name"`
	X     float64 `yaml:"x" json:"x"`
	Y     float64 `yaml:"y" json:"y"`
	Lines []Line  `yaml:"lines" json:"lines"`
}

func (s Station) HasLine(line Line) bool {
	for _, l := range s.Lines {
		if l == line {
			return true
		}
	}
	return false
}

// ChallengeTemplate is a catalog entry. A template with an empty Lines list
// is a candidate for every line its station serves.
type ChallengeTemplate struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Station     string `yaml:"station" json:"station"`
	Lines       []Line `yaml:"lines,omitempty" json:"lines,omitempty"`
}

func (t ChallengeTemplate) matchesLine(line Line) bool {
	if len(t.Lines) == 0 {
		return true
	}
	for _, l := range t.Lines {
		if l == line {
			return true
		}
	}
	return false
}

// Challenge is a concrete challenge bound to a (station, line) pair. Once a
// game binds a challenge for a key, every team sees the same one.
type Challenge struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Station     string `json:"station"`
	Line        Line   `json:"line"`
}

// Key identifies this challenge instance within a team's sets.
func (c Challenge) Key() string {
	return ChallengeKey(c.Station, c.Title, c.Line)
}

// BindingKey identifies the global (station, line) binding slot.
func (c Challenge) BindingKey() string {
	return StationLineKey(c.Station, c.Line)
}

// ChallengeState is a team-local challenge lifecycle state. Completed and
// sacrificed are terminal for that team and key.
type ChallengeState string

const (
	StateUnlocked   ChallengeState = "unlocked"
	StateCompleted  ChallengeState = "completed"
	StateSacrificed ChallengeState = "sacrificed"
)

// TeamChallenge is a challenge instance in one team's progress, in exactly
// one of the three states.
type TeamChallenge struct {
	Challenge
	State     ChallengeState `json:"state"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Completion is one entry of the global completion ledger.
type Completion struct {
	TeamID      string    `json:"teamId"`
	Station     string    `json:"station"`
	Line        Line      `json:"line"`
	Title       string    `json:"title"`
	CompletedAt time.Time `json:"completedAt"`
}
