package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/lascramble/scramble/internal/scramble"
)

// PolicyErrorResponse is the body for game-rule violations. Remaining
// seconds are set for line-lock errors so clients can show a wait time.
type PolicyErrorResponse struct {
	Error            string `json:"error"`
	RemainingSeconds int    `json:"remainingSeconds,omitempty"`
}

// writeEngineError maps engine errors onto HTTP responses. Policy
// violations are 409s the client surfaces as dismissible messages; a
// missing catalog entry is a content misconfiguration, not a conflict.
func writeEngineError(w http.ResponseWriter, err error) {
	var lockErr *scramble.LineLockedError
	switch {
	case errors.As(err, &lockErr):
		writeJSON(w, http.StatusConflict, PolicyErrorResponse{
			Error:            lockErr.Error(),
			RemainingSeconds: int(lockErr.Remaining.Round(time.Second).Seconds()),
		})
	case errors.Is(err, scramble.ErrStationSacrificed),
		errors.Is(err, scramble.ErrGloballyResolved),
		errors.Is(err, scramble.ErrActiveLimit),
		errors.Is(err, scramble.ErrNotUnlocked):
		writeJSON(w, http.StatusConflict, PolicyErrorResponse{Error: err.Error()})
	case errors.Is(err, scramble.ErrNoTemplate):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, scramble.ErrUnknownStation),
		errors.Is(err, scramble.ErrUnknownLine),
		errors.Is(err, scramble.ErrLineNotServed):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
