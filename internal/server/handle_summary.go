package server

import (
	"net/http"

	"github.com/lascramble/scramble/internal/engine"
	"github.com/lascramble/scramble/internal/scramble"
)

// SummaryResponse is the end-of-game result. Winner is null when the top
// controlled-line count is shared.
type SummaryResponse struct {
	Scoreboard scramble.Scoreboard `json:"scoreboard"`
	TeamNames  map[string]string   `json:"teamNames"`
	Winner     *string             `json:"winner"`
}

func handleSummary(store *SQLiteStore, eng *engine.Engine) http.HandlerFunc {
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
		if game.Status != scramble.GameStatusEnded {
			writeError(w, http.StatusConflict, "game has not ended")
			return
		}

		sb, err := eng.Scoreboard(r.Context(), sess.GameID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		names, err := store.TeamNames(r.Context(), sess.GameID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := SummaryResponse{Scoreboard: sb, TeamNames: names}
		if winner, ok := sb.Winner(); ok {
			resp.Winner = &winner
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
