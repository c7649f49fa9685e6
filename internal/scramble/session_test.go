package scramble

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemaining(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	duration := 7200 * time.Second

	tests := []struct {
		name      string
		now       time.Time
		remaining time.Duration
		ended     bool
	}{
		{"at start", t0, 7200 * time.Second, false},
		{"one second left", t0.Add(7199 * time.Second), time.Second, false},
		{"exactly over", t0.Add(7200 * time.Second), 0, true},
		{"well past", t0.Add(3 * time.Hour), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remaining, ended := Remaining(t0, duration, tt.now)
			assert.Equal(t, tt.remaining, remaining)
			assert.Equal(t, tt.ended, ended)
		})
	}
}

func TestSessionRemainingNotStarted(t *testing.T) {
	s := Session{Status: GameStatusDraft, Duration: GameDuration}
	remaining, ended := s.Remaining(time.Now())
	assert.Equal(t, GameDuration, remaining)
	assert.False(t, ended)
}

func TestSessionRemainingEndedStatus(t *testing.T) {
	start := time.Now()
	s := Session{Status: GameStatusEnded, StartedAt: &start, Duration: GameDuration}
	remaining, ended := s.Remaining(start)
	assert.Equal(t, time.Duration(0), remaining)
	assert.True(t, ended)
}
