package log

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"horde.ai/internal/sim/pursuit"
	"horde.ai/internal/sim/world"
)

func TestTickLogger_RotatesAndReadsBack(t *testing.T) {
	dir := t.TempDir()
	clock := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)

	l := NewTickLogger(dir)
	l.w.now = func() time.Time { return clock }

	pos := world.Vec3{X: 1, Z: 2}
	entries := []world.TickLogEntry{
		{Tick: 0, Digest: "a", Commands: []world.Command{{Kind: world.CmdSpawnHunter, Pos: &pos}}},
		{Tick: 1, Digest: "b", Events: []pursuit.Event{{Tick: 1, Type: pursuit.EventBroadcast, HunterID: "H1", Seq: 3}}},
	}
	for _, e := range entries {
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	clock = clock.Add(2 * time.Minute)
	if err := l.WriteTick(world.TickLogEntry{Tick: 2, Digest: "c"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := Files(TickDir(dir), "events")
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files: got %v", files)
	}
	if got := filepath.Base(files[0]); got != "events-2026-03-01-10.jsonl.zst" {
		t.Fatalf("first file: %s", got)
	}

	var got []world.TickLogEntry
	if err := ReadTicks(dir, func(e world.TickLogEntry) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("entries: got %d want 3", len(got))
	}
	if got[0].Commands[0].Kind != world.CmdSpawnHunter || *got[0].Commands[0].Pos != pos {
		t.Fatalf("command: %+v", got[0].Commands)
	}
	if ev := got[1].Events[0]; ev.Type != pursuit.EventBroadcast || ev.Seq != 3 {
		t.Fatalf("event: %+v", ev)
	}
	if got[2].Digest != "c" {
		t.Fatalf("last digest: %q", got[2].Digest)
	}
}

func TestJSONLZstdWriter_AppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	fixed := func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	for i := 0; i < 2; i++ {
		w := NewJSONLZstdWriter(dir, "x")
		w.now = fixed
		if err := w.Write(map[string]int{"n": i}); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	files, err := Files(dir, "x")
	if err != nil || len(files) != 1 {
		t.Fatalf("files=%v err=%v", files, err)
	}
	n := 0
	if err := ReadJSONL(files[0], func([]byte) error { n++; return nil }); err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 2 {
		t.Fatalf("lines: got %d want 2", n)
	}
}

type failingLogger struct{ calls int }

func (f *failingLogger) WriteTick(world.TickLogEntry) error {
	f.calls++
	return errors.New("disk full")
}

func TestMultiTickLogger_WritesAll(t *testing.T) {
	a, b := &failingLogger{}, &failingLogger{}
	m := MultiTickLogger{a, nil, b}
	if err := m.WriteTick(world.TickLogEntry{Tick: 1}); err == nil {
		t.Fatalf("expected error")
	}
	if a.calls != 1 || b.calls != 1 {
		t.Fatalf("calls a=%d b=%d", a.calls, b.calls)
	}
}
