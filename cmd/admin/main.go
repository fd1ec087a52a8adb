package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"horde.ai/internal/persistence/snapshot"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(os.Args[2:])
			return
		case "inspect":
			inspectCmd(os.Args[2:])
			return
		case "metrics":
			metricsCmd(os.Args[2:])
			return
		case "snapshot":
			snapshotCmd(os.Args[2:])
			return
		case "freeze":
			freezeCmd(os.Args[2:])
			return
		case "spawn":
			spawnCmd(os.Args[2:])
			return
		case "despawn":
			despawnCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (optional)")
	_ = fs.Parse(args)

	base := filepath.Join(*dataDir, "worlds")
	if *worldID != "" {
		base = filepath.Join(base, *worldID)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		fmt.Println(e.Name())
	}
}

// inspectCmd prints a snapshot's header and roster without starting a world.
func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id")
	snapPath := fs.String("snapshot", "", "snapshot path (optional; defaults to latest)")
	_ = fs.Parse(args)

	path := strings.TrimSpace(*snapPath)
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -snapshot")
			os.Exit(2)
		}
		path = latestSnapshot(filepath.Join(*dataDir, "worlds", *worldID))
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "no snapshot found")
		os.Exit(2)
	}

	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	fmt.Printf("snapshot=%s world=%s tick=%d seed=%d alert_seq=%d\n",
		filepath.Base(path), snap.Header.WorldID, snap.Header.Tick, snap.Seed, snap.Counters.AlertSeq)
	for _, h := range snap.Hunters {
		fmt.Printf("  hunter %-6s state=%-9s speed=%.2f frozen=%.2f target=%s\n",
			h.ID, h.State, h.Speed, h.FrozenLeft, h.TargetID)
	}
	for _, p := range snap.Prey {
		fmt.Printf("  prey   %-6s pos=(%.1f,%.1f,%.1f) neutralized=%v\n",
			p.ID, p.Pos[0], p.Pos[1], p.Pos[2], p.Neutralized)
	}
}

func latestSnapshot(worldDir string) string {
	dir := filepath.Join(worldDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		base := strings.TrimSuffix(name, ".snap.zst")
		tick, err := strconv.ParseUint(base, 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick = tick
			best = filepath.Join(dir, name)
		}
	}
	return best
}
