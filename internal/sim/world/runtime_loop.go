package world

import (
	"context"
	"time"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingCmds []commandReq
	var pendingAdmin []adminSnapshotReq

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.cmds:
			pendingCmds = append(pendingCmds, req)
		case req := <-w.observerJoin:
			w.handleObserverJoin(req)
		case req := <-w.observerSub:
			w.handleObserverSubscribe(req)
		case id := <-w.observerLeave:
			w.handleObserverLeave(id)
		case req := <-w.admin:
			pendingAdmin = append(pendingAdmin, req)
		case <-ticker.C:
			w.stepInternal(pendingCmds)
			w.handleAdminSnapshotRequests(pendingAdmin)
			pendingCmds = pendingCmds[:0]
			pendingAdmin = pendingAdmin[:0]
		}
	}
}

func (w *World) Stop() { w.stopOnce.Do(func() { close(w.stop) }) }

// StepOnce advances the world by a single tick using the same ordering semantics as the server.
// It is primarily intended for deterministic replays/tests.
func (w *World) StepOnce(cmds []Command) (tick uint64, digest string) {
	tick = w.tick.Load()
	reqs := make([]commandReq, 0, len(cmds))
	for _, c := range cmds {
		reqs = append(reqs, commandReq{Cmd: c})
	}
	w.stepInternal(reqs)
	return tick, w.lastDigest
}

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.TickRateHz
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
