package world

import (
	"fmt"
	"log"

	"horde.ai/internal/persistence/snapshot"
	"horde.ai/internal/sim/arena"
	"horde.ai/internal/sim/logic/vecmath"
	"horde.ai/internal/sim/pursuit"
	"horde.ai/internal/sim/tuning"
)

// ImportSnapshot replaces the world state with s. It must be called before
// Run. Hunters saved without a navigation binding are restored disabled and
// dropped on the first tick.
func (w *World) ImportSnapshot(s snapshot.SnapshotV1) error {
	if s.Header.Version != 1 {
		return fmt.Errorf("unsupported snapshot version %d", s.Header.Version)
	}

	arenaCfg := tuning.Arena{HalfExtent: s.Arena.HalfExtent}
	for _, b := range s.Arena.Obstacles {
		arenaCfg.Obstacles = append(arenaCfg.Obstacles, tuning.Box{Min: b.Min, Max: b.Max})
	}
	a, err := arena.New(arenaCfg, w.tune.Prey)
	if err != nil {
		return fmt.Errorf("snapshot arena: %w", err)
	}

	runners := make([]*arena.Runner, 0, len(s.Prey))
	for _, p := range s.Prey {
		mode, ok := arena.ParseMode(p.Mode)
		if !ok {
			return fmt.Errorf("prey %s: bad mode %q", p.ID, p.Mode)
		}
		r, err := arena.RestoreRunner(a, w.tune.Prey, arena.RunnerState{
			ID:          p.ID,
			Pos:         vecmath.FromArray(p.Pos),
			Vel:         vecmath.FromArray(p.Vel),
			Waypoint:    vecmath.FromArray(p.Waypoint),
			HasWaypoint: p.HasWaypoint,
			Mode:        mode,
			ModeLeft:    p.ModeLeft,
			Held:        p.Held,
			Stamina:     p.Stamina,
			Neutralized: p.Neutralized,
			RNG:         p.RNG,
		})
		if err != nil {
			return err
		}
		runners = append(runners, r)
	}
	a.SetRunners(runners)

	pursuitLog := log.New(w.log.Writer(), "[pursuit] ", w.log.Flags())
	dir := pursuit.NewDirectory(pursuit.ConfigFromTuning(w.tune.Hunter), s.Seed, pursuitLog)
	navs := map[string]*arena.NavAgent{}
	for _, hv := range s.Hunters {
		state, ok := pursuit.ParseState(hv.State)
		if !ok {
			return fmt.Errorf("hunter %s: bad state %q", hv.ID, hv.State)
		}
		rec := pursuit.Hunter{
			ID:            hv.ID,
			Num:           hv.Num,
			State:         state,
			LastKnown:     vecmath.FromArray(hv.LastKnown),
			HasLastKnown:  hv.HasLastKnown,
			EverPerceived: hv.EverPerceived,
			TargetID:      hv.TargetID,
			Velocity:      vecmath.FromArray(hv.Velocity),
			Speed:         hv.Speed,
			FrozenLeft:    hv.FrozenLeft,
			SearchWait:    hv.SearchWait,
			FlankTimer:    hv.FlankTimer,
			FlankSlot:     vecmath.FromArray(hv.FlankSlot),
			HasFlank:      hv.HasFlank,
			IdleCue:       hv.IdleCue,
			ChaseCue:      hv.ChaseCue,
			AlertSeq:      hv.AlertSeq,
			Disabled:      hv.Disabled,
			RNG:           hv.RNG,
		}
		var nav pursuit.Navigator
		if hv.Nav != nil {
			n := arena.RestoreNavAgent(a, arena.NavState{
				ID:      hv.ID,
				Pos:     vecmath.FromArray(hv.Nav.Pos),
				Fwd:     vecmath.FromArray(hv.Nav.Fwd),
				Dest:    vecmath.FromArray(hv.Nav.Dest),
				HasDest: hv.Nav.HasDest,
				Vel:     vecmath.FromArray(hv.Nav.Vel),
				Speed:   hv.Nav.Speed,
				Stuck:   hv.Nav.Stuck,
			})
			navs[hv.ID] = n
			nav = n
		}
		if _, err := dir.Restore(rec, nav); err != nil {
			return err
		}
	}
	dir.SetCounters(pursuit.Counters{NextNum: s.Counters.NextNum, AlertSeq: s.Counters.AlertSeq})

	if len(s.RNG) > 0 {
		if err := w.pcg.UnmarshalBinary(s.RNG); err != nil {
			return fmt.Errorf("snapshot rng: %w", err)
		}
	}

	w.arena = a
	w.dir = dir
	w.navs = navs
	w.runners = runners
	w.nextHunter = s.Counters.NextHunter
	w.nextPrey = s.Counters.NextPrey
	w.cfg.Seed = s.Seed
	if s.TickRate > 0 {
		w.cfg.TickRateHz = s.TickRate
	}
	if s.SnapshotEveryTicks > 0 {
		w.cfg.SnapshotEveryTicks = s.SnapshotEveryTicks
	}
	w.lastDigest = ""
	w.tick.Store(s.Header.Tick + 1)
	return nil
}
