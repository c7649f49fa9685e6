package server

import (
	"net/http"
	"strings"
)

func playerFromRequest(r *http.Request, store *SQLiteStore) (playerSession, error) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return playerSession{}, errNoSession
	}
	return store.PlayerFromToken(r.Context(), token)
}
