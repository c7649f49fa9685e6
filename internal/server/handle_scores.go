package server

import (
	"net/http"

	"github.com/lascramble/scramble/internal/engine"
	"github.com/lascramble/scramble/internal/scramble"
)

type ScoresResponse struct {
	Scoreboard scramble.Scoreboard `json:"scoreboard"`
	TeamNames  map[string]string   `json:"teamNames"`
}

func handleScores(store *SQLiteStore, eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := playerFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
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

		writeJSON(w, http.StatusOK, ScoresResponse{Scoreboard: sb, TeamNames: names})
	}
}
