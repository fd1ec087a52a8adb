package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"horde.ai/internal/persistence/indexdb"
	"horde.ai/internal/persistence/snapshot"
	"horde.ai/internal/sim/tuning"
	"horde.ai/internal/sim/world"
)

type runtimeIndex interface {
	world.TickLogger
	Close() error
	UpsertTuning(tune tuning.Tuning) error
	RecordSnapshot(path string, snap snapshot.SnapshotV1)
	Stats() indexdb.Stats
	LatestSnapshot(ctx context.Context) (tick uint64, path string, ok bool, err error)
}

func openRuntimeIndex(worldDir string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("HORDE_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		dbPath := filepath.Join(worldDir, "index", "world.sqlite")
		return indexdb.OpenSQLite(dbPath)
	default:
		return nil, fmt.Errorf("unsupported HORDE_INDEX_BACKEND: %s", backend)
	}
}

// resumeSnapshot picks the snapshot to resume from. The index answers first;
// a missing index, a miss, or a path that no longer exists falls back to
// scanning the snapshot directory.
func resumeSnapshot(ctx context.Context, idx runtimeIndex, worldDir string) string {
	if idx != nil {
		_, path, ok, err := idx.LatestSnapshot(ctx)
		if err == nil && ok {
			if _, statErr := os.Stat(path); statErr == nil {
				return path
			}
		}
	}
	return latestSnapshot(worldDir)
}
