package world

import (
	"testing"

	"horde.ai/internal/sim/tuning"
)

func testTuning() tuning.Tuning {
	tune := tuning.Defaults()
	tune.Arena.Obstacles = []tuning.Box{
		{Min: [3]float64{-20, 0, -4}, Max: [3]float64{-8, 3, 4}},
		{Min: [3]float64{10, 0, 10}, Max: [3]float64{14, 3, 30}},
	}
	return tune
}

func newTestWorld(t *testing.T, seed int64) *World {
	t.Helper()
	w, err := New(WorldConfig{ID: "test", TickRateHz: 10, Seed: seed, SnapshotEveryTicks: 0}, testTuning(), nil)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	return w
}

type captureTickLogger struct {
	entries []TickLogEntry
}

func (c *captureTickLogger) WriteTick(e TickLogEntry) error {
	c.entries = append(c.entries, e)
	return nil
}
