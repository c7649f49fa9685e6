// Package engine implements the game rules: the unlock/complete/sacrifice
// state machine, the precondition chain, and territory scoring over a
// durable Store. One Engine serves all games and teams of a process.
package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/lascramble/scramble/internal/scramble"
)

type Engine struct {
	store   Store
	catalog *scramble.Catalog
	now     func() time.Time

	// rng is shared by every team's bind, so it gets its own lock; the
	// per-team mutexes do not serialize unlocks across teams.
	rngMu sync.Mutex
	rng   *rand.Rand

	mu    sync.Mutex
	teams map[string]*sync.Mutex
}

type Option func(*Engine)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRand overrides the random source used for template selection.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

func New(store Store, catalog *scramble.Catalog, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		catalog: catalog,
		now:     time.Now,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		teams:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// teamLock returns the mutex serializing one team's mutations. All writes
// to a team's sets go through it, so concurrent unlocks cannot race past
// the active-limit check.
func (e *Engine) teamLock(gameID, teamID string) *sync.Mutex {
	key := gameID + "/" + teamID
	e.mu.Lock()
	defer e.mu.Unlock()
	if m, ok := e.teams[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	e.teams[key] = m
	return m
}

// Unlock runs the unlock protocol for a team at (station, line). The
// precondition chain is checked in order and the first failure wins; only
// then is the global binding resolved and the unlocked instance persisted.
// Re-unlocking a key the team already holds unlocked returns the existing
// instance unchanged.
func (e *Engine) Unlock(ctx context.Context, gameID, teamID, stationName string, line scramble.Line) (scramble.Challenge, error) {
	station, ok := e.catalog.StationByName(stationName)
	if !ok {
		return scramble.Challenge{}, fmt.Errorf("%w: %q", scramble.ErrUnknownStation, stationName)
	}
	if !station.HasLine(line) {
		return scramble.Challenge{}, fmt.Errorf("%w: %s at %q", scramble.ErrLineNotServed, line, stationName)
	}

	lock := e.teamLock(gameID, teamID)
	lock.Lock()
	defer lock.Unlock()

	now := e.now()

	sacrificed, err := e.store.SacrificedStations(ctx, gameID, teamID)
	if err != nil {
		return scramble.Challenge{}, fmt.Errorf("reading sacrificed stations: %w", err)
	}
	if _, gone := sacrificed[station.Name]; gone {
		return scramble.Challenge{}, scramble.ErrStationSacrificed
	}

	if deadline, locked, err := e.store.LineLock(ctx, gameID, teamID, line); err != nil {
		return scramble.Challenge{}, fmt.Errorf("reading line lock: %w", err)
	} else if locked && deadline.After(now) {
		return scramble.Challenge{}, &scramble.LineLockedError{Line: line, Remaining: deadline.Sub(now)}
	}

	ledger, err := e.store.GlobalCompletions(ctx, gameID)
	if err != nil {
		return scramble.Challenge{}, fmt.Errorf("reading completion ledger: %w", err)
	}
	if _, done := ledger[scramble.StationLineKey(station.Name, line)]; done {
		return scramble.Challenge{}, scramble.ErrGloballyResolved
	}

	held, err := e.store.TeamChallenges(ctx, gameID, teamID)
	if err != nil {
		return scramble.Challenge{}, fmt.Errorf("reading team challenges: %w", err)
	}
	active := 0
	for _, tc := range held {
		if tc.State != scramble.StateUnlocked {
			continue
		}
		if tc.Station == station.Name && tc.Line == line {
			// Already unlocked here; idempotent.
			return tc.Challenge, nil
		}
		// Stale instances on globally resolved keys no longer count.
		if _, done := ledger[tc.BindingKey()]; done {
			continue
		}
		active++
	}
	if active >= scramble.MaxActiveChallenges {
		return scramble.Challenge{}, scramble.ErrActiveLimit
	}

	ch, err := e.bind(ctx, gameID, station.Name, line)
	if err != nil {
		return scramble.Challenge{}, err
	}

	if err := e.store.SaveUnlocked(ctx, gameID, teamID, ch, now); err != nil {
		return scramble.Challenge{}, fmt.Errorf("saving unlocked challenge: %w", err)
	}
	return ch, nil
}

// bind resolves the global challenge binding for (station, line), creating
// it from a uniform random catalog pick on first use. Racing first callers
// converge on the store's create-if-absent winner.
func (e *Engine) bind(ctx context.Context, gameID, station string, line scramble.Line) (scramble.Challenge, error) {
	if ch, ok, err := e.store.Binding(ctx, gameID, station, line); err != nil {
		return scramble.Challenge{}, fmt.Errorf("reading binding: %w", err)
	} else if ok {
		return ch, nil
	}

	pool := e.catalog.TemplatesFor(station, line)
	if len(pool) == 0 {
		return scramble.Challenge{}, scramble.ErrNoTemplate
	}
	e.rngMu.Lock()
	pick := pool[e.rng.IntN(len(pool))]
	e.rngMu.Unlock()

	ch, err := e.store.CreateBinding(ctx, gameID, scramble.Challenge{
		Title:       pick.Title,
		Description: pick.Description,
		Station:     station,
		Line:        line,
	})
	if err != nil {
		return scramble.Challenge{}, fmt.Errorf("creating binding: %w", err)
	}
	return ch, nil
}

// Complete moves one of the team's unlocked instances to completed and
// appends it to the global ledger. The sacrifice and line-lock guards run
// again here: a lock acquired after unlock still blocks completion.
func (e *Engine) Complete(ctx context.Context, gameID, teamID, stationName, title string, line scramble.Line) (scramble.Challenge, error) {
	lock := e.teamLock(gameID, teamID)
	lock.Lock()
	defer lock.Unlock()

	now := e.now()

	sacrificed, err := e.store.SacrificedStations(ctx, gameID, teamID)
	if err != nil {
		return scramble.Challenge{}, fmt.Errorf("reading sacrificed stations: %w", err)
	}
	if _, gone := sacrificed[stationName]; gone {
		return scramble.Challenge{}, scramble.ErrStationSacrificed
	}

	if deadline, locked, err := e.store.LineLock(ctx, gameID, teamID, line); err != nil {
		return scramble.Challenge{}, fmt.Errorf("reading line lock: %w", err)
	} else if locked && deadline.After(now) {
		return scramble.Challenge{}, &scramble.LineLockedError{Line: line, Remaining: deadline.Sub(now)}
	}

	ch, err := e.heldUnlocked(ctx, gameID, teamID, stationName, title, line)
	if err != nil {
		return scramble.Challenge{}, err
	}

	ledger, err := e.store.GlobalCompletions(ctx, gameID)
	if err != nil {
		return scramble.Challenge{}, fmt.Errorf("reading completion ledger: %w", err)
	}
	if winner, done := ledger[ch.BindingKey()]; done && winner != teamID {
		return scramble.Challenge{}, scramble.ErrGloballyResolved
	}

	if err := e.store.CompleteChallenge(ctx, gameID, teamID, ch, now); err != nil {
		return scramble.Challenge{}, err
	}
	return ch, nil
}

// Sacrifice forfeits one of the team's unlocked instances. As one atomic
// unit the instance moves to sacrificed, the station is blocked for the
// team permanently, and the line goes on cooldown. Returns the cooldown
// deadline.
func (e *Engine) Sacrifice(ctx context.Context, gameID, teamID, stationName, title string, line scramble.Line) (scramble.Challenge, time.Time, error) {
	lock := e.teamLock(gameID, teamID)
	lock.Lock()
	defer lock.Unlock()

	now := e.now()

	ch, err := e.heldUnlocked(ctx, gameID, teamID, stationName, title, line)
	if err != nil {
		return scramble.Challenge{}, time.Time{}, err
	}

	lockedUntil := now.Add(scramble.SacrificeCooldown)
	if err := e.store.SacrificeChallenge(ctx, gameID, teamID, ch, lockedUntil, now); err != nil {
		return scramble.Challenge{}, time.Time{}, err
	}
	return ch, lockedUntil, nil
}

func (e *Engine) heldUnlocked(ctx context.Context, gameID, teamID, station, title string, line scramble.Line) (scramble.Challenge, error) {
	held, err := e.store.TeamChallenges(ctx, gameID, teamID)
	if err != nil {
		return scramble.Challenge{}, fmt.Errorf("reading team challenges: %w", err)
	}
	key := scramble.ChallengeKey(station, title, line)
	for _, tc := range held {
		if tc.Key() == key && tc.State == scramble.StateUnlocked {
			return tc.Challenge, nil
		}
	}
	return scramble.Challenge{}, scramble.ErrNotUnlocked
}

// Scoreboard recomputes the territory standings from every team's durable
// completed set.
func (e *Engine) Scoreboard(ctx context.Context, gameID string) (scramble.Scoreboard, error) {
	completed, err := e.store.CompletedByTeam(ctx, gameID)
	if err != nil {
		return scramble.Scoreboard{}, fmt.Errorf("reading completed sets: %w", err)
	}
	return scramble.ComputeScoreboard(completed), nil
}
