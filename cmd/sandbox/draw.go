package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"horde.ai/internal/sim/logic/vecmath"
	"horde.ai/internal/sim/pursuit"
)

const hudRows = 2

// project maps an arena XZ position onto a width x height grid. +Z is up.
func project(p vecmath.Vec3, half float64, width, height int) (int, int) {
	if width <= 0 || height <= 0 || half <= 0 {
		return 0, 0
	}
	u := (p.X + half) / (2 * half)
	v := (half - p.Z) / (2 * half)
	x := int(math.Floor(u * float64(width)))
	y := int(math.Floor(v * float64(height)))
	return clampInt(x, 0, width-1), clampInt(y, 0, height-1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func hunterStyle(a *pursuit.Agent) tcell.Style {
	if a.Frozen() {
		return tcell.StyleDefault.Foreground(tcell.ColorBlue)
	}
	switch a.CurrentState() {
	case pursuit.Chasing:
		return tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	case pursuit.Alerted:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	}
	return tcell.StyleDefault.Foreground(tcell.ColorGreen)
}

func hunterRune(s pursuit.State) rune {
	switch s {
	case pursuit.Chasing:
		return 'C'
	case pursuit.Alerted:
		return 'A'
	}
	return 'S'
}

func (g *Game) draw() {
	g.screen.Clear()
	width, height := g.screen.Size()
	mapH := height - hudRows
	if mapH <= 0 {
		g.screen.Show()
		return
	}
	a := g.world.Arena()
	half := a.HalfExtent()

	wall := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for _, b := range a.Obstacles() {
		x0, y1 := project(b.Min, half, width, mapH)
		x1, y0 := project(b.Max, half, width, mapH)
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				g.screen.SetContent(x, y, '#', nil, wall)
			}
		}
	}

	for _, r := range g.world.Runners() {
		x, y := project(r.Position(), half, width, mapH)
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
		if r.Neutralized() {
			style = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
		}
		g.screen.SetContent(x, y, '@', nil, style)
	}

	hunters := g.world.Directory().Hunters()
	chasing := 0
	for _, h := range hunters {
		nav, ok := g.world.Nav(h.ID())
		if !ok {
			continue
		}
		if h.CurrentState() == pursuit.Chasing {
			chasing++
		}
		x, y := project(nav.Position(), half, width, mapH)
		g.screen.SetContent(x, y, hunterRune(h.CurrentState()), nil, hunterStyle(h))
	}

	m := g.world.Metrics()
	status := fmt.Sprintf("tick %d  hunters %d  chasing %d  prey %d  alerts %d  sprint %v", m.Tick, len(hunters), chasing, m.Prey, g.alerts, g.sprint)
	if g.paused {
		status += "  [paused]"
	}
	drawText(g.screen, 0, mapH, status, tcell.StyleDefault.Reverse(true))
	help := "h hunter  p prey  f freeze  s sprint  x/r neutralize/revive  space pause  q quit"
	if g.lastMsg != "" {
		help = g.lastMsg + "  |  " + help
	}
	drawText(g.screen, 0, mapH+1, help, tcell.StyleDefault)
	g.screen.Show()
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
