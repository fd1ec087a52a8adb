package world

import (
	"time"

	"horde.ai/internal/sim/pursuit"
)

func (w *World) stepInternal(reqs []commandReq) {
	stepStart := time.Now()
	nowTick := w.tick.Load()
	dt := 1 / float64(w.cfg.TickRateHz)

	// Commands apply at the tick boundary, in receive order. Failed commands
	// are recorded too: a failed spawn may still have drawn from the world RNG.
	w.dir.SetTick(nowTick)
	recorded := make([]Command, 0, len(reqs))
	for _, req := range reqs {
		res := w.applyCommand(req.Cmd)
		recorded = append(recorded, req.Cmd)
		if req.Resp != nil {
			select {
			case req.Resp <- res:
			default:
				// Caller gave up; don't block the sim loop.
			}
		}
	}

	// Systems: prey -> pursuit decisions -> hunter navigation.
	for _, r := range w.runners {
		r.Step(dt)
	}
	events := w.dir.Tick(nowTick, dt, w.preyTargets(), w.arena)
	for _, h := range w.dir.Hunters() {
		if nav := w.navs[h.ID()]; nav != nil {
			nav.Step(dt)
		}
	}
	for _, ev := range events {
		switch ev.Type {
		case pursuit.EventDespawned:
			delete(w.navs, ev.HunterID)
		case pursuit.EventBroadcast:
			w.alertsTotal++
		}
	}

	digest := w.stateDigest(nowTick)
	w.lastDigest = digest
	if w.tickLogger != nil {
		_ = w.tickLogger.WriteTick(TickLogEntry{Tick: nowTick, Commands: recorded, Events: events, Digest: digest})
	}

	// Observer stream (read-only).
	w.stepObservers(nowTick, events)

	// Snapshot every N ticks, starting after tick 0.
	if w.snapshotSink != nil && nowTick != 0 && w.cfg.SnapshotEveryTicks > 0 {
		every := uint64(w.cfg.SnapshotEveryTicks)
		if nowTick%every == 0 {
			snap := w.ExportSnapshot(nowTick)
			select {
			case w.snapshotSink <- snap:
			default:
				// Drop snapshot if sink is backed up.
			}
		}
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	nextTick := w.tick.Add(1)
	w.storeMetrics(nextTick, stepMS, len(events))
}
