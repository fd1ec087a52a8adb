package world

import (
	"encoding/json"
	"testing"

	"horde.ai/internal/protocol"
)

func readTick(t *testing.T, ch chan []byte) protocol.TickMsg {
	t.Helper()
	select {
	case b := <-ch:
		var msg protocol.TickMsg
		if err := json.Unmarshal(b, &msg); err != nil {
			t.Fatalf("decode tick: %v", err)
		}
		return msg
	default:
		t.Fatalf("no tick message")
	}
	return protocol.TickMsg{}
}

func TestObservers_TickStream(t *testing.T) {
	w := newTestWorld(t, 8)
	all := make(chan []byte, 4)
	one := make(chan []byte, 4)
	w.handleObserverJoin(ObserverJoinRequest{SessionID: "all", TickOut: all, Events: true})
	w.handleObserverJoin(ObserverJoinRequest{SessionID: "one", TickOut: one, Hunters: []string{"H1"}})

	w.StepOnce(nil)

	msg := readTick(t, all)
	if msg.Type != protocol.TypeTick || msg.Tick != 0 {
		t.Fatalf("header: %+v", msg)
	}
	if len(msg.Hunters) != 8 || len(msg.Prey) != 2 {
		t.Fatalf("roster: %d hunters %d prey", len(msg.Hunters), len(msg.Prey))
	}
	if len(msg.Events) == 0 {
		t.Fatalf("expected spawn events for subscriber")
	}
	nav, _ := w.Nav("H1")
	for _, h := range msg.Hunters {
		if h.ID == "H1" && h.Pos != nav.Position().Array() {
			t.Fatalf("H1 pos: got %v want %v", h.Pos, nav.Position().Array())
		}
	}

	filtered := readTick(t, one)
	if len(filtered.Hunters) != 1 || filtered.Hunters[0].ID != "H1" {
		t.Fatalf("filtered hunters: %+v", filtered.Hunters)
	}
	if len(filtered.Events) != 0 {
		t.Fatalf("events not requested, got %d", len(filtered.Events))
	}

	w.handleObserverSubscribe(ObserverSubscribeRequest{SessionID: "one", Events: true})
	w.handleObserverLeave("all")
	w.StepOnce(nil)
	if got := readTick(t, one); len(got.Hunters) != 8 {
		t.Fatalf("after resubscribe: %d hunters", len(got.Hunters))
	}
	if len(all) != 0 {
		t.Fatalf("left observer still receives ticks")
	}
	if m := w.Metrics(); m.Observers != 1 {
		t.Fatalf("metrics observers: got %d want 1", m.Observers)
	}
}

func TestSendLatest_DropsOldest(t *testing.T) {
	ch := make(chan []byte, 1)
	sendLatest(ch, []byte("a"))
	sendLatest(ch, []byte("b"))
	if got := string(<-ch); got != "b" {
		t.Fatalf("got %q want b", got)
	}
}
