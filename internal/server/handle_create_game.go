package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
)

// GameDetail is the full created game with its teams and join tokens.
type GameDetail struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	StartedAt string     `json:"startedAt"`
	Duration  int        `json:"durationSeconds"`
	Teams     []TeamItem `json:"teams"`
}

type TeamItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	JoinToken string `json:"joinToken"`
}

type CreateGameRequest struct {
	Name  string   `json:"name"`
	Teams []string `json:"teams"`
}

func (req *CreateGameRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = "Metro Scramble"
	}
	var teams []string
	for _, t := range req.Teams {
		if t = strings.TrimSpace(t); t != "" {
			teams = append(teams, t)
		}
	}
	req.Teams = teams
	if len(req.Teams) < 2 {
		return "at least two team names are required"
	}
	return ""
}

func generateJoinToken() string {
	b := make([]byte, 4)
	rand.Read(b)
	return "team-" + hex.EncodeToString(b)
}

// handleCreateGame creates a game that starts immediately: the session
// clock begins at the fixed game duration and the countdown watcher is
// registered right away.
func handleCreateGame(store *SQLiteStore, timers *TimerRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateGameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		detail, err := store.CreateGame(r.Context(), req.Name, req.Teams, timers.now())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		sess, err := store.Game(r.Context(), detail.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		// The watcher outlives the request; it hangs off the registry's
		// lifetime, not the request context.
		timers.Watch(context.WithoutCancel(r.Context()), sess)

		writeJSON(w, http.StatusCreated, detail)
	}
}
