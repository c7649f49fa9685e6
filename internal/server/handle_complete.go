package server

import (
	"net/http"

	"github.com/lascramble/scramble/internal/engine"
	"github.com/lascramble/scramble/internal/scramble"
)

type CompleteRequest struct {
	Station string `json:"station"`
	Title   string `json:"title"`
	Line    string `json:"line"`
}

type CompleteResponse struct {
	Challenge  scramble.Challenge  `json:"challenge"`
	Scoreboard scramble.Scoreboard `json:"scoreboard"`
}

func handleComplete(store *SQLiteStore, eng *engine.Engine, notify Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CompleteRequest
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

		ch, err := eng.Complete(r.Context(), sess.GameID, sess.TeamID, req.Station, req.Title, line)
		if err != nil {
			writeEngineError(w, err)
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
		notify.Publish(sess.GameID, Event{
			Type:       EventChallengeCompleted,
			TeamID:     sess.TeamID,
			TeamName:   names[sess.TeamID],
			Station:    ch.Station,
			Line:       ch.Line,
			Title:      ch.Title,
			Scoreboard: &sb,
		})

		writeJSON(w, http.StatusOK, CompleteResponse{Challenge: ch, Scoreboard: sb})
	}
}
