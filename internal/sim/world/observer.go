package world

import (
	"encoding/json"

	"horde.ai/internal/protocol"
	"horde.ai/internal/sim/pursuit"
)

// ObserverJoinRequest registers a read-only observer session that receives
// one TICK message per tick on TickOut. All observer state is maintained by
// the world loop goroutine.
type ObserverJoinRequest struct {
	SessionID string
	TickOut   chan []byte

	Events  bool
	Hunters []string
}

// ObserverSubscribeRequest updates an existing observer session.
type ObserverSubscribeRequest struct {
	SessionID string

	Events  bool
	Hunters []string
}

type observerClient struct {
	id      string
	tickOut chan []byte

	events  bool
	hunters map[string]bool
}

func (w *World) ObserverJoin() chan<- ObserverJoinRequest           { return w.observerJoin }
func (w *World) ObserverSubscribe() chan<- ObserverSubscribeRequest { return w.observerSub }
func (w *World) ObserverLeave() chan<- string                       { return w.observerLeave }

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	if req.SessionID == "" || req.TickOut == nil {
		return
	}
	w.observers[req.SessionID] = &observerClient{
		id:      req.SessionID,
		tickOut: req.TickOut,
		events:  req.Events,
		hunters: hunterFilter(req.Hunters),
	}
}

func (w *World) handleObserverSubscribe(req ObserverSubscribeRequest) {
	c := w.observers[req.SessionID]
	if c == nil {
		return
	}
	c.events = req.Events
	c.hunters = hunterFilter(req.Hunters)
}

func (w *World) handleObserverLeave(sessionID string) {
	delete(w.observers, sessionID)
}

func hunterFilter(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func (w *World) stepObservers(nowTick uint64, events []pursuit.Event) {
	if len(w.observers) == 0 {
		return
	}
	full := w.buildTickMsg(nowTick, events)
	for _, c := range w.observers {
		msg := full
		if c.hunters != nil {
			msg.Hunters = msg.Hunters[:0:0]
			for _, h := range full.Hunters {
				if c.hunters[h.ID] {
					msg.Hunters = append(msg.Hunters, h)
				}
			}
		}
		if !c.events {
			msg.Events = nil
		}
		b, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		sendLatest(c.tickOut, b)
	}
}

func (w *World) buildTickMsg(nowTick uint64, events []pursuit.Event) protocol.TickMsg {
	msg := protocol.TickMsg{
		Type:            protocol.TypeTick,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		Hunters:         make([]protocol.HunterState, 0, w.dir.Len()),
		Prey:            make([]protocol.PreyState, 0, len(w.runners)),
	}
	for _, h := range w.dir.Hunters() {
		st := protocol.HunterState{
			ID:       h.ID(),
			State:    h.CurrentState().String(),
			Frozen:   h.Frozen(),
			Speed:    h.Speed(),
			TargetID: h.TargetID(),
		}
		if nav := w.navs[h.ID()]; nav != nil {
			st.Pos = nav.Position().Array()
		}
		msg.Hunters = append(msg.Hunters, st)
	}
	for _, r := range w.runners {
		msg.Prey = append(msg.Prey, protocol.PreyState{
			ID:          r.ID(),
			Pos:         r.Position().Array(),
			Mode:        r.Mode().String(),
			Neutralized: r.Neutralized(),
		})
	}
	for _, ev := range events {
		msg.Events = append(msg.Events, WireEvent(ev))
	}
	return msg
}

// WireEvent converts a pursuit event to its replication form.
func WireEvent(ev pursuit.Event) protocol.Event {
	out := protocol.Event{
		Tick:     ev.Tick,
		Type:     string(ev.Type),
		HunterID: ev.HunterID,
		State:    ev.State,
		Prev:     ev.Prev,
		Reason:   ev.Reason,
		Cue:      string(ev.Cue),
		TargetID: ev.TargetID,
		Seq:      ev.Seq,
		Count:    ev.Count,
		Duration: ev.Duration,
	}
	if ev.Pos != nil {
		p := ev.Pos.Array()
		out.Pos = &p
	}
	return out
}
