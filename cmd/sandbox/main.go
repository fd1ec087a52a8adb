package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"horde.ai/internal/sim/arena"
	"horde.ai/internal/sim/pursuit"
	"horde.ai/internal/sim/tuning"
	"horde.ai/internal/sim/world"
)

// Game drives an in-process world at its tick rate and draws a top-down view.
type Game struct {
	screen tcell.Screen
	world  *world.World
	sound  *cuePlayer

	pending []world.Command
	sprint  bool
	paused  bool

	alerts  int
	lastMsg string
}

func main() {
	var (
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "world seed")
		sound      = flag.Bool("sound", false, "play cue tones")
	)
	flag.Parse()

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load tuning:", err)
		os.Exit(1)
	}
	// The terminal owns stdout; keep the pursuit warnings out of it.
	w, err := world.New(world.WorldConfig{ID: "sandbox", Seed: *seed}, tune, log.New(io.Discard, "", 0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "world:", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, "screen:", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "screen init:", err)
		os.Exit(1)
	}

	g := &Game{screen: screen, world: w, sound: newCuePlayer(*sound)}
	w.Directory().Subscribe(g.sound.listener)
	w.Directory().Subscribe(g.onEvent)
	g.run()
	g.cleanup()
}

func (g *Game) onEvent(ev pursuit.Event) {
	switch ev.Type {
	case pursuit.EventBroadcast:
		g.alerts++
		g.lastMsg = fmt.Sprintf("%s broadcast alert #%d", ev.HunterID, ev.Seq)
	case pursuit.EventDisabled:
		g.lastMsg = fmt.Sprintf("%s disabled: %s", ev.HunterID, ev.Reason)
	}
}

func (g *Game) run() {
	ticker := time.NewTicker(time.Second / time.Duration(g.world.TickRateHz()))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- g.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !g.handleInput(ev) {
				return
			}
		case <-ticker.C:
			if !g.paused {
				g.world.StepOnce(g.pending)
				g.pending = g.pending[:0]
			}
			g.draw()
		}
	}
}

func (g *Game) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		if ev.Rune() == 'q' {
			return false
		}
		if ev.Rune() == ' ' {
			g.paused = !g.paused
			return true
		}
		if cmd, ok := commandForKey(ev.Rune(), &g.sprint); ok {
			g.pending = append(g.pending, cmd)
		}
	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

// commandForKey maps a key to a world command. sprint tracks the held gait
// of the first prey.
func commandForKey(r rune, sprint *bool) (world.Command, bool) {
	switch r {
	case 'h':
		return world.Command{Kind: world.CmdSpawnHunter}, true
	case 'p':
		return world.Command{Kind: world.CmdSpawnPrey}, true
	case 'f':
		return world.Command{Kind: world.CmdFreeze}, true
	case 'x':
		return world.Command{Kind: world.CmdNeutralize, ID: "P1"}, true
	case 'r':
		return world.Command{Kind: world.CmdRevive, ID: "P1"}, true
	case 's':
		*sprint = !*sprint
		if *sprint {
			return world.Command{Kind: world.CmdHoldGait, ID: "P1", Mode: arena.ModeSprint.String()}, true
		}
		return world.Command{Kind: world.CmdReleaseGait, ID: "P1"}, true
	}
	return world.Command{}, false
}

func (g *Game) cleanup() {
	g.sound.Close()
	g.screen.Fini()
}
