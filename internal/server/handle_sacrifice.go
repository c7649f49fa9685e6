package server

import (
	"net/http"

	"github.com/lascramble/scramble/internal/engine"
	"github.com/lascramble/scramble/internal/scramble"
)

type SacrificeRequest struct {
	Station string `json:"station"`
	Title   string `json:"title"`
	Line    string `json:"line"`
}

type SacrificeResponse struct {
	Challenge   scramble.Challenge `json:"challenge"`
	LockedUntil string             `json:"lockedUntil"`
}

func handleSacrifice(store *SQLiteStore, eng *engine.Engine, notify Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SacrificeRequest
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

		ch, lockedUntil, err := eng.Sacrifice(r.Context(), sess.GameID, sess.TeamID, req.Station, req.Title, line)
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
			Type:        EventChallengeSacrificed,
			TeamID:      sess.TeamID,
			TeamName:    names[sess.TeamID],
			Station:     ch.Station,
			Line:        ch.Line,
			Title:       ch.Title,
			LockedUntil: fmtTime(lockedUntil),
		})

		writeJSON(w, http.StatusOK, SacrificeResponse{
			Challenge:   ch,
			LockedUntil: fmtTime(lockedUntil),
		})
	}
}
