package scramble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedAt(station string, line Line) Challenge {
	return Challenge{Title: "t", Description: "d", Station: station, Line: line}
}

func TestComputeScoreboardUniqueMaxControls(t *testing.T) {
	sb := ComputeScoreboard(map[string][]Challenge{
		"team-a": {
			completedAt("Pico", LineE),
			completedAt("Expo/Vermont", LineE),
		},
		"team-b": {
			completedAt("Mariachi Plaza", LineE),
		},
	})

	assert.Equal(t, 2, sb.Counts["team-a"][LineE])
	assert.Equal(t, 1, sb.Counts["team-b"][LineE])
	assert.Equal(t, "team-a", sb.Controllers[LineE])
	assert.Equal(t, 1, sb.Totals["team-a"])
	assert.Equal(t, 0, sb.Totals["team-b"])
}

func TestComputeScoreboardTieYieldsNoController(t *testing.T) {
	// Both teams hold 3 stations on line E.
	sb := ComputeScoreboard(map[string][]Challenge{
		"team-a": {
			completedAt("Pico", LineE),
			completedAt("Expo/Vermont", LineE),
			completedAt("Mariachi Plaza", LineE),
		},
		"team-b": {
			completedAt("s1", LineE),
			completedAt("s2", LineE),
			completedAt("s3", LineE),
		},
	})

	_, controlled := sb.Controllers[LineE]
	assert.False(t, controlled, "tied line must have no controller")
	assert.Equal(t, 0, sb.Totals["team-a"])
	assert.Equal(t, 0, sb.Totals["team-b"])
}

func TestComputeScoreboardMultiLineStationCountsPerLine(t *testing.T) {
	// Union Station is on B and D; completing it on B must not count on D.
	sb := ComputeScoreboard(map[string][]Challenge{
		"team-a": {completedAt("Union Station", LineB)},
	})

	assert.Equal(t, 1, sb.Counts["team-a"][LineB])
	assert.Equal(t, 0, sb.Counts["team-a"][LineD])
	assert.Equal(t, "team-a", sb.Controllers[LineB])
	_, controlled := sb.Controllers[LineD]
	assert.False(t, controlled)
}

func TestComputeScoreboardDistinctStationsOnly(t *testing.T) {
	// Two different challenges at the same station and line count once.
	sb := ComputeScoreboard(map[string][]Challenge{
		"team-a": {
			{Title: "first", Station: "Pico", Line: LineE},
			{Title: "second", Station: "Pico", Line: LineE},
		},
	})

	assert.Equal(t, 1, sb.Counts["team-a"][LineE])
}

func TestComputeScoreboardIdempotent(t *testing.T) {
	input := map[string][]Challenge{
		"team-a": {completedAt("Pico", LineE), completedAt("Union Station", LineD)},
		"team-b": {completedAt("Hollywood/Vine", LineB)},
	}

	first := ComputeScoreboard(input)
	second := ComputeScoreboard(input)
	assert.Equal(t, first, second)
}

func TestWinner(t *testing.T) {
	sb := ComputeScoreboard(map[string][]Challenge{
		"team-a": {completedAt("Pico", LineE), completedAt("Union Station", LineD)},
		"team-b": {completedAt("Hollywood/Vine", LineB)},
	})

	winner, ok := sb.Winner()
	require.True(t, ok)
	assert.Equal(t, "team-a", winner)
}

func TestWinnerTieUnresolved(t *testing.T) {
	sb := ComputeScoreboard(map[string][]Challenge{
		"team-a": {completedAt("Pico", LineE)},
		"team-b": {completedAt("Hollywood/Vine", LineB)},
	})

	_, ok := sb.Winner()
	assert.False(t, ok, "equal controlled-line counts must not declare a winner")
}

func TestWinnerEmpty(t *testing.T) {
	_, ok := ComputeScoreboard(nil).Winner()
	assert.False(t, ok)
}
