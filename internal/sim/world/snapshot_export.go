package world

import (
	"horde.ai/internal/persistence/snapshot"
)

func (w *World) ExportSnapshot(nowTick uint64) snapshot.SnapshotV1 {
	// Snapshot must be called from the world loop goroutine.
	s := snapshot.SnapshotV1{
		Header:             snapshot.Header{Version: 1, WorldID: w.cfg.ID, Tick: nowTick},
		Seed:               w.cfg.Seed,
		TickRate:           w.cfg.TickRateHz,
		SnapshotEveryTicks: w.cfg.SnapshotEveryTicks,
		Arena:              snapshot.ArenaV1{HalfExtent: w.arena.HalfExtent()},
	}
	for _, b := range w.arena.Obstacles() {
		s.Arena.Obstacles = append(s.Arena.Obstacles, snapshot.BoxV1{Min: b.Min.Array(), Max: b.Max.Array()})
	}

	hunters := w.dir.Hunters()
	s.Hunters = make([]snapshot.HunterV1, 0, len(hunters))
	for _, h := range hunters {
		rec := h.Record()
		hv := snapshot.HunterV1{
			ID:            rec.ID,
			Num:           rec.Num,
			State:         rec.State.String(),
			LastKnown:     rec.LastKnown.Array(),
			HasLastKnown:  rec.HasLastKnown,
			EverPerceived: rec.EverPerceived,
			TargetID:      rec.TargetID,
			Velocity:      rec.Velocity.Array(),
			Speed:         rec.Speed,
			FrozenLeft:    rec.FrozenLeft,
			SearchWait:    rec.SearchWait,
			FlankTimer:    rec.FlankTimer,
			FlankSlot:     rec.FlankSlot.Array(),
			HasFlank:      rec.HasFlank,
			IdleCue:       rec.IdleCue,
			ChaseCue:      rec.ChaseCue,
			AlertSeq:      rec.AlertSeq,
			Disabled:      rec.Disabled,
			RNG:           rec.RNG,
		}
		if nav := w.navs[rec.ID]; nav != nil {
			st := nav.State()
			hv.Nav = &snapshot.NavV1{
				Pos:     st.Pos.Array(),
				Fwd:     st.Fwd.Array(),
				Dest:    st.Dest.Array(),
				HasDest: st.HasDest,
				Vel:     st.Vel.Array(),
				Speed:   st.Speed,
				Stuck:   st.Stuck,
			}
		}
		s.Hunters = append(s.Hunters, hv)
	}

	s.Prey = make([]snapshot.PreyV1, 0, len(w.runners))
	for _, r := range w.runners {
		st := r.State()
		s.Prey = append(s.Prey, snapshot.PreyV1{
			ID:          st.ID,
			Pos:         st.Pos.Array(),
			Vel:         st.Vel.Array(),
			Waypoint:    st.Waypoint.Array(),
			HasWaypoint: st.HasWaypoint,
			Mode:        st.Mode.String(),
			ModeLeft:    st.ModeLeft,
			Held:        st.Held,
			Stamina:     st.Stamina,
			Neutralized: st.Neutralized,
			RNG:         st.RNG,
		})
	}

	c := w.dir.Counters()
	s.Counters = snapshot.CountersV1{
		NextHunter: w.nextHunter,
		NextPrey:   w.nextPrey,
		NextNum:    c.NextNum,
		AlertSeq:   c.AlertSeq,
	}
	if b, err := w.pcg.MarshalBinary(); err == nil {
		s.RNG = b
	}
	return s
}
