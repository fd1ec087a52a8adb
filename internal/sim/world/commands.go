package world

import (
	"context"
	"errors"
	"fmt"

	"horde.ai/internal/sim/arena"
	"horde.ai/internal/sim/pursuit"
)

var (
	ErrUnknownPrey = errors.New("unknown prey")
	ErrNoFloor     = errors.New("no navigable point")
	ErrBadCommand  = errors.New("bad command")
)

type CommandKind string

const (
	CmdSpawnHunter   CommandKind = "SPAWN_HUNTER"
	CmdDespawnHunter CommandKind = "DESPAWN_HUNTER"
	CmdFreeze        CommandKind = "FREEZE"
	CmdSpawnPrey     CommandKind = "SPAWN_PREY"
	CmdNeutralize    CommandKind = "NEUTRALIZE_PREY"
	CmdRevive        CommandKind = "REVIVE_PREY"
	CmdHoldGait      CommandKind = "HOLD_GAIT"
	CmdReleaseGait   CommandKind = "RELEASE_GAIT"
)

// Command is a roster or stimulus change applied at a tick boundary. Every
// command is recorded in the tick log so a replay can reproduce it.
type Command struct {
	Kind     CommandKind `json:"kind"`
	ID       string      `json:"id,omitempty"`
	IDs      []string    `json:"ids,omitempty"`
	Pos      *Vec3       `json:"pos,omitempty"`
	Duration float64     `json:"duration,omitempty"`
	Mode     string      `json:"mode,omitempty"`
}

type CommandResult struct {
	ID    string
	Count int
	Err   error
}

type commandReq struct {
	Cmd  Command
	Resp chan CommandResult
}

// Submit queues cmd for the next tick and waits for its result. It is safe
// to call from other goroutines (e.g. HTTP handlers).
func (w *World) Submit(ctx context.Context, cmd Command) (CommandResult, error) {
	resp := make(chan CommandResult, 1)
	select {
	case w.cmds <- commandReq{Cmd: cmd, Resp: resp}:
	case <-ctx.Done():
		return CommandResult{}, ctx.Err()
	}
	select {
	case r := <-resp:
		return r, r.Err
	case <-ctx.Done():
		return CommandResult{}, ctx.Err()
	}
}

func (w *World) SpawnHunter(ctx context.Context, id string, pos *Vec3) (string, error) {
	r, err := w.Submit(ctx, Command{Kind: CmdSpawnHunter, ID: id, Pos: pos})
	return r.ID, err
}

func (w *World) DespawnHunter(ctx context.Context, id string) error {
	_, err := w.Submit(ctx, Command{Kind: CmdDespawnHunter, ID: id})
	return err
}

// Freeze slows the listed hunters, or every hunter when ids is empty. A
// non-positive duration uses the tuned default.
func (w *World) Freeze(ctx context.Context, ids []string, duration float64) (int, error) {
	r, err := w.Submit(ctx, Command{Kind: CmdFreeze, IDs: ids, Duration: duration})
	return r.Count, err
}

// applyCommand runs on the loop goroutine. It depends only on world state, so
// replaying the command as submitted yields the same generated ids.
func (w *World) applyCommand(cmd Command) CommandResult {
	switch cmd.Kind {
	case CmdSpawnHunter:
		id, err := w.spawnHunter(cmd.ID, cmd.Pos)
		if err != nil {
			return CommandResult{Err: err}
		}
		return CommandResult{ID: id, Count: 1}

	case CmdDespawnHunter:
		if err := w.dir.Despawn(cmd.ID); err != nil {
			return CommandResult{Err: err}
		}
		delete(w.navs, cmd.ID)
		return CommandResult{ID: cmd.ID, Count: 1}

	case CmdFreeze:
		d := cmd.Duration
		if d <= 0 {
			d = w.tune.Hunter.FreezeDuration
		}
		if len(cmd.IDs) == 0 {
			return CommandResult{Count: w.dir.FreezeAll(d)}
		}
		n := 0
		for _, id := range cmd.IDs {
			if _, ok := w.dir.Get(id); ok {
				n++
			}
		}
		return CommandResult{Count: n, Err: w.dir.Freeze(cmd.IDs, d)}

	case CmdSpawnPrey:
		id, err := w.spawnPrey(cmd.ID, cmd.Pos)
		if err != nil {
			return CommandResult{Err: err}
		}
		return CommandResult{ID: id, Count: 1}

	case CmdNeutralize, CmdRevive, CmdHoldGait, CmdReleaseGait:
		r := w.runner(cmd.ID)
		if r == nil {
			return CommandResult{Err: fmt.Errorf("%s %s: %w", cmd.Kind, cmd.ID, ErrUnknownPrey)}
		}
		switch cmd.Kind {
		case CmdNeutralize:
			r.Neutralize()
		case CmdRevive:
			r.Revive()
		case CmdHoldGait:
			m, ok := arena.ParseMode(cmd.Mode)
			if !ok {
				return CommandResult{Err: fmt.Errorf("gait %q: %w", cmd.Mode, ErrBadCommand)}
			}
			r.Hold(m)
		case CmdReleaseGait:
			r.Release()
		}
		return CommandResult{ID: cmd.ID, Count: 1}
	}
	return CommandResult{Err: fmt.Errorf("kind %q: %w", cmd.Kind, ErrBadCommand)}
}

func (w *World) spawnHunter(id string, pos *Vec3) (string, error) {
	if id == "" {
		for {
			w.nextHunter++
			id = fmt.Sprintf("H%d", w.nextHunter)
			if _, taken := w.dir.Get(id); !taken {
				break
			}
		}
	} else if _, taken := w.dir.Get(id); taken {
		return "", fmt.Errorf("spawn hunter %s: %w", id, pursuit.ErrDuplicateHunter)
	}
	p, ok := w.placement(pos)
	if !ok {
		return "", fmt.Errorf("spawn hunter %s: %w", id, ErrNoFloor)
	}
	nav := arena.NewNavAgent(id, w.arena, p)
	if _, err := w.dir.Spawn(id, nav); err != nil {
		return "", err
	}
	w.navs[id] = nav
	return id, nil
}

func (w *World) spawnPrey(id string, pos *Vec3) (string, error) {
	if id == "" {
		for {
			w.nextPrey++
			id = fmt.Sprintf("P%d", w.nextPrey)
			if w.runner(id) == nil {
				break
			}
		}
	} else if w.runner(id) != nil {
		return "", fmt.Errorf("spawn prey %s: %w", id, ErrBadCommand)
	}
	p, ok := w.placement(pos)
	if !ok {
		return "", fmt.Errorf("spawn prey %s: %w", id, ErrNoFloor)
	}
	// Prey are never removed, so the roster position is a unique stream.
	stream := preyStream + uint64(len(w.runners))
	r := arena.NewRunner(id, w.arena, w.tune.Prey, p, uint64(w.cfg.Seed), stream)
	w.runners = append(w.runners, r)
	w.arena.SetRunners(w.runners)
	return id, nil
}

// placement snaps pos onto the floor, or draws a random navigable point.
func (w *World) placement(pos *Vec3) (Vec3, bool) {
	if pos != nil {
		return w.arena.SampleNavigable(*pos, 2)
	}
	half := w.arena.HalfExtent()
	for i := 0; i < 16; i++ {
		p := Vec3{X: (w.rng.Float64()*2 - 1) * half, Z: (w.rng.Float64()*2 - 1) * half}
		if q, ok := w.arena.SampleNavigable(p, 5); ok {
			return q, true
		}
	}
	return Vec3{}, false
}
