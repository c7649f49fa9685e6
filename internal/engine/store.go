package engine

import (
	"context"
	"time"

	"github.com/lascramble/scramble/internal/scramble"
)

// Store is the durable game state the engine runs against. Implementations
// must make CreateBinding an atomic create-if-absent and must fail
// CompleteChallenge with scramble.ErrGloballyResolved when the global
// ledger already holds the challenge's (station, line) key — both writers
// of a race then converge on the same outcome.
type Store interface {
	// Binding reads the global challenge binding for a (station, line) key.
	Binding(ctx context.Context, gameID, station string, line scramble.Line) (scramble.Challenge, bool, error)
	// CreateBinding persists ch as the binding for its key unless one
	// already exists, and returns whichever binding won.
	CreateBinding(ctx context.Context, gameID string, ch scramble.Challenge) (scramble.Challenge, error)

	TeamChallenges(ctx context.Context, gameID, teamID string) ([]scramble.TeamChallenge, error)
	SacrificedStations(ctx context.Context, gameID, teamID string) (map[string]struct{}, error)
	// LineLock reports the cooldown deadline for (team, line), if any.
	LineLock(ctx context.Context, gameID, teamID string, line scramble.Line) (time.Time, bool, error)
	// GlobalCompletions returns the completion ledger keyed by
	// (station, line) key, with the completing team as value.
	GlobalCompletions(ctx context.Context, gameID string) (map[string]string, error)
	// CompletedByTeam returns every team's completed set, for scoring.
	CompletedByTeam(ctx context.Context, gameID string) (map[string][]scramble.Challenge, error)

	// SaveUnlocked persists an unlocked instance, idempotently keyed by
	// (station, title, line).
	SaveUnlocked(ctx context.Context, gameID, teamID string, ch scramble.Challenge, at time.Time) error
	// CompleteChallenge atomically moves an unlocked instance to completed
	// and appends to the global ledger. Fails with scramble.ErrNotUnlocked
	// or scramble.ErrGloballyResolved.
	CompleteChallenge(ctx context.Context, gameID, teamID string, ch scramble.Challenge, at time.Time) error
	// SacrificeChallenge atomically moves an unlocked instance to
	// sacrificed, marks the station sacrificed for the team, and sets the
	// team's line lock. Fails with scramble.ErrNotUnlocked.
	SacrificeChallenge(ctx context.Context, gameID, teamID string, ch scramble.Challenge, lockedUntil time.Time, at time.Time) error
}
