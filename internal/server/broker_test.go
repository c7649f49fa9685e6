package server

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBrokerFanOut(t *testing.T) {
	b := NewBroker()

	ch1 := b.Subscribe("game-1")
	ch2 := b.Subscribe("game-1")
	other := b.Subscribe("game-2")
	defer b.Unsubscribe("game-1", ch1)
	defer b.Unsubscribe("game-1", ch2)
	defer b.Unsubscribe("game-2", other)

	b.Publish("game-1", Event{Type: EventPlayerJoined, PlayerName: "Maria"})

	for _, ch := range []chan []byte{ch1, ch2} {
		select {
		case data := <-ch:
			var ev Event
			if err := json.Unmarshal(data, &ev); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if ev.Type != EventPlayerJoined || ev.PlayerName != "Maria" {
				t.Errorf("unexpected event %+v", ev)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}

	select {
	case <-other:
		t.Fatal("subscriber of another game received the event")
	default:
	}
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()

	ch := b.Subscribe("game-1")
	b.Unsubscribe("game-1", ch)

	// Publishing after unsubscribe must not block or panic.
	b.Publish("game-1", Event{Type: EventGameEnded})

	select {
	case <-ch:
		t.Fatal("unsubscribed channel received event")
	default:
	}
}

func TestBrokerDropsWhenSlow(t *testing.T) {
	b := NewBroker()

	ch := b.Subscribe("game-1")
	defer b.Unsubscribe("game-1", ch)

	// Fill past the channel buffer; extra events are dropped, not blocked.
	for i := 0; i < 100; i++ {
		b.Publish("game-1", Event{Type: EventChallengeUnlocked})
	}

	drained := 0
	for {
		select {
		case <-ch:
			drained++
		default:
			if drained == 0 {
				t.Fatal("expected at least one buffered event")
			}
			return
		}
	}
}
