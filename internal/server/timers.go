package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lascramble/scramble/internal/scramble"
)

type timerStore interface {
	ExpireGame(ctx context.Context, gameID string) (bool, error)
	CompletedByTeam(ctx context.Context, gameID string) (map[string][]scramble.Challenge, error)
}

// TimerRegistry owns one countdown goroutine per active game. Each watcher
// ticks once a second and, when the session deadline passes, ends the game
// and publishes the final summary. The conditional store transition keeps
// the game_ended effects exactly-once even when a request handler races the
// watcher to the deadline.
type TimerRegistry struct {
	store  timerStore
	notify Notifier
	logger *slog.Logger
	now    func() time.Time
	tick   time.Duration

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewTimerRegistry(store timerStore, notify Notifier, logger *slog.Logger) *TimerRegistry {
	return &TimerRegistry{
		store:   store,
		notify:  notify,
		logger:  logger,
		now:     time.Now,
		tick:    time.Second,
		cancels: make(map[string]context.CancelFunc),
	}
}

// Watch starts a countdown for the session unless one is already running.
// Sessions that are not active or have no start time are ignored.
func (tr *TimerRegistry) Watch(ctx context.Context, sess scramble.Session) {
	if sess.Status != scramble.GameStatusActive || sess.StartedAt == nil {
		return
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()
	if _, running := tr.cancels[sess.ID]; running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	tr.cancels[sess.ID] = cancel
	go tr.run(ctx, sess)
}

func (tr *TimerRegistry) run(ctx context.Context, sess scramble.Session) {
	defer tr.Stop(sess.ID)

	ticker := time.NewTicker(tr.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, ended := sess.Remaining(tr.now()); ended {
				tr.ExpireNow(ctx, sess.ID)
				return
			}
		}
	}
}

// ExpireNow ends the game if it is still active and, on the one call that
// makes the transition, publishes the end-of-game summary: a snapshot
// scoreboard over every team's completed set, with the winner when the top
// controlled-line count is unique.
func (tr *TimerRegistry) ExpireNow(ctx context.Context, gameID string) {
	transitioned, err := tr.store.ExpireGame(ctx, gameID)
	if err != nil {
		tr.logger.Error("expiring game failed", "game_id", gameID, "error", err)
		return
	}
	if !transitioned {
		return
	}

	tr.logger.Info("game ended", "game_id", gameID)
	tr.Stop(gameID)

	completed, err := tr.store.CompletedByTeam(ctx, gameID)
	if err != nil {
		tr.logger.Error("final scoring failed", "game_id", gameID, "error", err)
		return
	}
	sb := scramble.ComputeScoreboard(completed)
	winner, _ := sb.Winner()
	tr.notify.Publish(gameID, Event{
		Type:       EventGameEnded,
		Scoreboard: &sb,
		Winner:     winner,
	})
}

// Stop cancels the game's watcher, if any.
func (tr *TimerRegistry) Stop(gameID string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if cancel, ok := tr.cancels[gameID]; ok {
		cancel()
		delete(tr.cancels, gameID)
	}
}

// Close cancels every watcher.
func (tr *TimerRegistry) Close() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for gameID, cancel := range tr.cancels {
		cancel()
		delete(tr.cancels, gameID)
	}
}
