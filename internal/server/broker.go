package server

import (
	"encoding/json"
	"sync"

	"github.com/lascramble/scramble/internal/scramble"
)

// Event is the payload pushed to every subscriber of a game. Fields are
// filled per event type and omitted otherwise.
type Event struct {
	Type       string        `json:"type"`
	TeamID     string        `json:"teamId,omitempty"`
	TeamName   string        `json:"teamName,omitempty"`
	PlayerName string        `json:"playerName,omitempty"`
	Station    string        `json:"station,omitempty"`
	Line       scramble.Line `json:"line,omitempty"`
	Title      string        `json:"title,omitempty"`
	// LockedUntil is set on challenge_sacrificed.
	LockedUntil string `json:"lockedUntil,omitempty"`
	// Scoreboard rides along on challenge_completed and game_ended.
	Scoreboard *scramble.Scoreboard `json:"scoreboard,omitempty"`
	// Winner is set on game_ended when the top controlled-line count is
	// unique; a tie leaves it empty.
	Winner string `json:"winner,omitempty"`
}

// Event types.
const (
	EventPlayerJoined        = "player_joined"
	EventChallengeUnlocked   = "challenge_unlocked"
	EventChallengeCompleted  = "challenge_completed"
	EventChallengeSacrificed = "challenge_sacrificed"
	EventGameEnded           = "game_ended"
)

// Notifier publishes game events. The in-process Broker implements it
// directly; RedisBridge implements it for multi-instance deployments.
type Notifier interface {
	Publish(gameID string, event Event)
}

// Broker is an in-process pub/sub for SSE events, keyed by game ID: every
// subscribed client of a game sees every event, its own team's and others'.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the game.
func (b *Broker) Subscribe(gameID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[gameID] == nil {
		b.subs[gameID] = make(map[chan []byte]struct{})
	}
	b.subs[gameID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the game's subscribers.
func (b *Broker) Unsubscribe(gameID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[gameID], ch)
	if len(b.subs[gameID]) == 0 {
		delete(b.subs, gameID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the game.
func (b *Broker) Publish(gameID string, event Event) {
	data, _ := json.Marshal(event)
	b.deliver(gameID, data)
}

func (b *Broker) deliver(gameID string, data []byte) {
	b.mu.RLock()
	for ch := range b.subs[gameID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
