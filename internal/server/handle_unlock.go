package server

import (
	"net/http"

	"github.com/lascramble/scramble/internal/engine"
	"github.com/lascramble/scramble/internal/scramble"
)

type UnlockRequest struct {
	Station string `json:"station"`
	Line    string `json:"line"`
}

type ChallengeResponse struct {
	Challenge scramble.Challenge `json:"challenge"`
}

// activeGameSession authenticates the request and verifies its game is
// still running. All game mutations go through it; a finished game
// rejects every move.
func activeGameSession(w http.ResponseWriter, r *http.Request, store *SQLiteStore) (playerSession, bool) {
	sess, err := playerFromRequest(r, store)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or missing session token")
		return playerSession{}, false
	}
	game, err := store.Game(r.Context(), sess.GameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return playerSession{}, false
	}
	if game.Status != scramble.GameStatusActive {
		writeError(w, http.StatusConflict, "game is not active")
		return playerSession{}, false
	}
	return sess, true
}

func handleUnlock(store *SQLiteStore, eng *engine.Engine, notify Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UnlockRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess, ok := activeGameSession(w, r, store)
		if !ok {
			return
		}

		line, err := scramble.ParseLine(req.Line)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		ch, err := eng.Unlock(r.Context(), sess.GameID, sess.TeamID, req.Station, line)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		names, err := store.TeamNames(r.Context(), sess.GameID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		notify.Publish(sess.GameID, Event{
			Type:     EventChallengeUnlocked,
			TeamID:   sess.TeamID,
			TeamName: names[sess.TeamID],
			Station:  ch.Station,
			Line:     ch.Line,
			Title:    ch.Title,
		})

		writeJSON(w, http.StatusOK, ChallengeResponse{Challenge: ch})
	}
}
