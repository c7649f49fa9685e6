package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/lascramble/scramble/internal/scramble"
)

// fakeTimerStore counts transitions so tests can assert exactly-once
// semantics without a database.
type fakeTimerStore struct {
	mu        sync.Mutex
	ended     map[string]bool
	completed map[string][]scramble.Challenge
}

func newFakeTimerStore() *fakeTimerStore {
	return &fakeTimerStore{
		ended:     make(map[string]bool),
		completed: make(map[string][]scramble.Challenge),
	}
}

func (f *fakeTimerStore) ExpireGame(_ context.Context, gameID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ended[gameID] {
		return false, nil
	}
	f.ended[gameID] = true
	return true, nil
}

func (f *fakeTimerStore) CompletedByTeam(_ context.Context, _ string) (map[string][]scramble.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed, nil
}

func TestTimerRegistryEndsGame(t *testing.T) {
	store := newFakeTimerStore()
	store.completed["team-red"] = []scramble.Challenge{
		{Station: "Pico", Title: "Soundtrack Time", Line: scramble.LineE},
	}
	broker := NewBroker()
	tr := NewTimerRegistry(store, broker, slog.New(slog.NewTextHandler(io.Discard, nil)))
	tr.tick = time.Millisecond
	defer tr.Close()

	ch := broker.Subscribe("game-1")
	defer broker.Unsubscribe("game-1", ch)

	started := time.Now().Add(-scramble.GameDuration - time.Second)
	tr.Watch(context.Background(), scramble.Session{
		ID:        "game-1",
		Status:    scramble.GameStatusActive,
		StartedAt: &started,
		Duration:  scramble.GameDuration,
	})

	select {
	case data := <-ch:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if ev.Type != EventGameEnded {
			t.Fatalf("expected %s, got %s", EventGameEnded, ev.Type)
		}
		if ev.Winner != "team-red" {
			t.Errorf("expected winner team-red, got %q", ev.Winner)
		}
		if ev.Scoreboard == nil || ev.Scoreboard.Totals["team-red"] != 1 {
			t.Errorf("expected final scoreboard with one controlled line, got %+v", ev.Scoreboard)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never ended the game")
	}
}

func TestExpireNowIsExactlyOnce(t *testing.T) {
	store := newFakeTimerStore()
	broker := NewBroker()
	tr := NewTimerRegistry(store, broker, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer tr.Close()

	ch := broker.Subscribe("game-1")
	defer broker.Unsubscribe("game-1", ch)

	// A racing handler and watcher both call ExpireNow; only one publishes.
	tr.ExpireNow(context.Background(), "game-1")
	tr.ExpireNow(context.Background(), "game-1")

	events := 0
	for {
		select {
		case <-ch:
			events++
		default:
			if events != 1 {
				t.Fatalf("expected exactly one game_ended event, got %d", events)
			}
			return
		}
	}
}

func TestWatchIgnoresInactiveSessions(t *testing.T) {
	store := newFakeTimerStore()
	tr := NewTimerRegistry(store, NewBroker(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer tr.Close()

	tr.Watch(context.Background(), scramble.Session{ID: "g1", Status: scramble.GameStatusEnded})
	tr.Watch(context.Background(), scramble.Session{ID: "g2", Status: scramble.GameStatusActive})

	tr.mu.Lock()
	defer tr.mu.Unlock()
	if len(tr.cancels) != 0 {
		t.Fatalf("expected no watchers for ended or unstarted sessions, got %d", len(tr.cancels))
	}
}
