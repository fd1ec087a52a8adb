package main

import (
	"testing"

	"horde.ai/internal/sim/logic/vecmath"
	"horde.ai/internal/sim/pursuit"
	"horde.ai/internal/sim/world"
)

func TestProject(t *testing.T) {
	cases := []struct {
		p    vecmath.Vec3
		x, y int
	}{
		{vecmath.V(-60, 0, 60), 0, 0},
		{vecmath.V(60, 0, -60), 79, 19},
		{vecmath.V(0, 0, 0), 40, 10},
		{vecmath.V(500, 0, -500), 79, 19},
	}
	for _, c := range cases {
		x, y := project(c.p, 60, 80, 20)
		if x != c.x || y != c.y {
			t.Fatalf("project(%v) = %d,%d want %d,%d", c.p, x, y, c.x, c.y)
		}
	}
}

func TestCommandForKey_SprintToggles(t *testing.T) {
	sprint := false
	cmd, ok := commandForKey('s', &sprint)
	if !ok || cmd.Kind != world.CmdHoldGait || cmd.Mode != "SPRINT" || !sprint {
		t.Fatalf("first toggle: %+v sprint=%v", cmd, sprint)
	}
	cmd, ok = commandForKey('s', &sprint)
	if !ok || cmd.Kind != world.CmdReleaseGait || sprint {
		t.Fatalf("second toggle: %+v sprint=%v", cmd, sprint)
	}
	if _, ok := commandForKey('z', &sprint); ok {
		t.Fatalf("unmapped key produced a command")
	}
	if cmd, _ := commandForKey('f', &sprint); cmd.Kind != world.CmdFreeze || len(cmd.IDs) != 0 {
		t.Fatalf("freeze: %+v", cmd)
	}
}

func TestCueTones_CoverEveryCue(t *testing.T) {
	for _, c := range []pursuit.Cue{pursuit.CueIdleGroan, pursuit.CueChaseGroan, pursuit.CueAlertCry, pursuit.CueAlertResponse} {
		tn, ok := cueTones[c]
		if !ok || tn.freq <= 0 || tn.dur <= 0 {
			t.Fatalf("cue %s has no tone: %+v", c, tn)
		}
	}
}
