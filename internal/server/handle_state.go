package server

import (
	"net/http"
	"time"

	"github.com/lascramble/scramble/internal/engine"
	"github.com/lascramble/scramble/internal/scramble"
)

type GameInfo struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Status           string  `json:"status"`
	StartedAt        *string `json:"startedAt"`
	DurationSeconds  int     `json:"durationSeconds"`
	RemainingSeconds int     `json:"remainingSeconds"`
	Ended            bool    `json:"ended"`
}

type TeamInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type LineLockInfo struct {
	Line             scramble.Line `json:"line"`
	RemainingSeconds int           `json:"remainingSeconds"`
}

// GameStateResponse is the full live view for one team: the session clock,
// its own three sets, every other team's unlocked set, the global
// completion ledger, and the current territory scoreboard.
type GameStateResponse struct {
	Game               GameInfo                        `json:"game"`
	Team               TeamInfo                        `json:"team"`
	Players            []PlayerInfo                    `json:"players"`
	TeamNames          map[string]string               `json:"teamNames"`
	Unlocked           []scramble.Challenge            `json:"unlocked"`
	Completed          []scramble.Challenge            `json:"completed"`
	Sacrificed         []scramble.Challenge            `json:"sacrificed"`
	SacrificedStations []string                        `json:"sacrificedStations"`
	LineLocks          []LineLockInfo                  `json:"lineLocks"`
	OthersUnlocked     map[string][]scramble.Challenge `json:"othersUnlocked"`
	GlobalCompletions  []scramble.Completion           `json:"globalCompletions"`
	Scoreboard         scramble.Scoreboard             `json:"scoreboard"`
}

func handleGameState(store *SQLiteStore, eng *engine.Engine, timers *TimerRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := playerFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		game, err := store.Game(r.Context(), sess.GameID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		now := timers.now()
		remaining, ended := game.Remaining(now)
		if ended && game.Status == scramble.GameStatusActive {
			// The handler noticed the deadline before the watcher did.
			timers.ExpireNow(r.Context(), game.ID)
			game.Status = scramble.GameStatusEnded
		}

		resp := GameStateResponse{
			Game: GameInfo{
				ID:               game.ID,
				Name:             game.Name,
				Status:           string(game.Status),
				DurationSeconds:  int(game.Duration.Seconds()),
				RemainingSeconds: int(remaining.Round(time.Second).Seconds()),
				Ended:            ended,
			},
			Team:               TeamInfo{ID: sess.TeamID},
			Players:            []PlayerInfo{},
			Unlocked:           []scramble.Challenge{},
			Completed:          []scramble.Challenge{},
			Sacrificed:         []scramble.Challenge{},
			SacrificedStations: []string{},
			LineLocks:          []LineLockInfo{},
			GlobalCompletions:  []scramble.Completion{},
		}
		if game.StartedAt != nil {
			s := fmtTime(*game.StartedAt)
			resp.Game.StartedAt = &s
		}

		held, err := store.TeamChallenges(r.Context(), sess.GameID, sess.TeamID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		for _, tc := range held {
			switch tc.State {
			case scramble.StateUnlocked:
				resp.Unlocked = append(resp.Unlocked, tc.Challenge)
			case scramble.StateCompleted:
				resp.Completed = append(resp.Completed, tc.Challenge)
			case scramble.StateSacrificed:
				resp.Sacrificed = append(resp.Sacrificed, tc.Challenge)
			}
		}

		stations, err := store.SacrificedStations(r.Context(), sess.GameID, sess.TeamID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		for station := range stations {
			resp.SacrificedStations = append(resp.SacrificedStations, station)
		}

		locks, err := store.LineLocks(r.Context(), sess.GameID, sess.TeamID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		for line, deadline := range locks {
			if deadline.After(now) {
				resp.LineLocks = append(resp.LineLocks, LineLockInfo{
					Line:             line,
					RemainingSeconds: int(deadline.Sub(now).Round(time.Second).Seconds()),
				})
			}
		}

		resp.OthersUnlocked, err = store.OthersUnlocked(r.Context(), sess.GameID, sess.TeamID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp.GlobalCompletions, err = store.CompletionLedger(r.Context(), sess.GameID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if resp.GlobalCompletions == nil {
			resp.GlobalCompletions = []scramble.Completion{}
		}

		resp.Scoreboard, err = eng.Scoreboard(r.Context(), sess.GameID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp.TeamNames, err = store.TeamNames(r.Context(), sess.GameID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		resp.Team.Name = resp.TeamNames[sess.TeamID]

		players, err := store.ListPlayers(r.Context(), sess.TeamID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if players != nil {
			resp.Players = players
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
