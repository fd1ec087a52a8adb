package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	persistlog "horde.ai/internal/persistence/log"
	"horde.ai/internal/persistence/snapshot"
	"horde.ai/internal/sim/tuning"
	"horde.ai/internal/sim/world"
	"horde.ai/internal/transport/observer"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "arena_1", "world id")
		seed       = flag.Int64("seed", 1337, "world seed (used only when starting a fresh world)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable indexing (ticks, events, snapshot metadata)")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	_ = os.MkdirAll(worldDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}

	// Optional: read-model index backend (does not affect sim determinism).
	idx, err := openRuntimeIndex(worldDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
	}

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = resumeSnapshot(context.Background(), idx, worldDir)
	}

	tune, tuneErr := tuning.Load(tp)
	if tuneErr != nil {
		if snapshotToLoad == "" || !errors.Is(tuneErr, os.ErrNotExist) {
			logger.Fatalf("load tuning: %v", tuneErr)
		}
		// Resume fallback: the snapshot carries the arena; hunter tunables use defaults.
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if idx != nil {
		if err := idx.UpsertTuning(tune); err != nil {
			logger.Printf("index backend: upsert tuning: %v", err)
		}
	}

	w, err := world.New(world.WorldConfig{
		ID:                 *worldID,
		TickRateHz:         tune.TickRateHz,
		Seed:               *seed,
		SnapshotEveryTicks: tune.SnapshotEveryTicks,
	}, tune, log.New(os.Stdout, "[world] ", log.LstdFlags|log.Lmicroseconds))
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if snap.Header.WorldID != "" && snap.Header.WorldID != *worldID {
			logger.Fatalf("snapshot world id mismatch: flag=%s snap=%s", *worldID, snap.Header.WorldID)
		}
		if err := w.ImportSnapshot(snap); err != nil {
			logger.Fatalf("import snapshot: %v", err)
		}
		logger.Printf("resumed from snapshot=%s tick=%d", filepath.Base(snapshotToLoad), w.CurrentTick())
	} else {
		logger.Printf("fresh world seed=%d hunters=%d prey=%d", *seed, tune.Arena.InitialHunters, tune.Arena.InitialPrey)
	}

	ctx, cancel := signalContext()
	defer cancel()

	tickLog := persistlog.NewTickLogger(worldDir)
	defer tickLog.Close()
	if idx != nil {
		w.SetTickLogger(persistlog.MultiTickLogger{tickLog, idx})
	} else {
		w.SetTickLogger(tickLog)
	}

	// Snapshot writer.
	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-snapCh:
				path := snapshot.Path(filepath.Join(worldDir, "snapshots"), snap.Header.Tick)
				if err := snapshot.WriteSnapshot(path, snap); err != nil {
					logger.Printf("snapshot write: %v", err)
					continue
				}
				logger.Printf("snapshot tick=%d hunters=%d", snap.Header.Tick, len(snap.Hunters))
				if idx != nil {
					idx.RecordSnapshot(path, snap)
				}
			}
		}
	}()

	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, *worldID, w.Metrics(), idx)
	})

	observer.NewServer(w, log.New(os.Stdout, "[observer] ", log.LstdFlags|log.Lmicroseconds)).Routes(mux)

	if envBool("HORDE_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		logger.Printf("pprof endpoints disabled (HORDE_ENABLE_PPROF_HTTP=false)")
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Fatalf("listen: %v", err)
	}
	logger.Printf("listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Serve: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
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

func envBool(name string, def bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}
