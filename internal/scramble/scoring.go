package scramble

// Scoreboard is the derived territory-control standing. It is a pure
// function of the teams' completed sets and is recomputed from scratch on
// every change rather than updated incrementally.
type Scoreboard struct {
	// Counts holds, per team and line, the number of distinct stations the
	// team has completed a challenge at on that line. A station on several
	// lines counts independently per line.
	Counts map[string]map[Line]int `json:"counts"`
	// Controllers maps each line to the team holding the strict unique
	// maximum station count on it. Ties, including all-zero, leave the line
	// without a controller.
	Controllers map[Line]string `json:"controllers"`
	// Totals is each team's controlled-line count.
	Totals map[string]int `json:"totals"`
}

// ComputeScoreboard derives the scoreboard from all teams' completed sets,
// keyed by team ID.
func ComputeScoreboard(completed map[string][]Challenge) Scoreboard {
	stations := make(map[string]map[Line]map[string]struct{})
	for teamID, challenges := range completed {
		perLine := make(map[Line]map[string]struct{})
		for _, ch := range challenges {
			if !ch.Line.Valid() {
				continue
			}
			if perLine[ch.Line] == nil {
				perLine[ch.Line] = make(map[string]struct{})
			}
			perLine[ch.Line][ch.Station] = struct{}{}
		}
		stations[teamID] = perLine
	}

	sb := Scoreboard{
		Counts:      make(map[string]map[Line]int, len(completed)),
		Controllers: make(map[Line]string),
		Totals:      make(map[string]int, len(completed)),
	}
	for teamID, perLine := range stations {
		counts := make(map[Line]int)
		for line, set := range perLine {
			counts[line] = len(set)
		}
		sb.Counts[teamID] = counts
		sb.Totals[teamID] = 0
	}

	for _, line := range Lines() {
		best, bestTeam, contested := 0, "", false
		for teamID, counts := range sb.Counts {
			n := counts[line]
			switch {
			case n > best:
				best, bestTeam, contested = n, teamID, false
			case n == best && n > 0:
				contested = true
			}
		}
		if best > 0 && !contested {
			sb.Controllers[line] = bestTeam
			sb.Totals[bestTeam]++
		}
	}

	return sb
}

// Winner returns the team with the strict unique highest controlled-line
// count. A tie at the top yields no winner.
func (s Scoreboard) Winner() (string, bool) {
	best, bestTeam, contested := -1, "", false
	for teamID, total := range s.Totals {
		switch {
		case total > best:
			best, bestTeam, contested = total, teamID, false
		case total == best:
			contested = true
		}
	}
	if bestTeam == "" || contested {
		return "", false
	}
	return bestTeam, true
}
