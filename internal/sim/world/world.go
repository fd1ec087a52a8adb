package world

import (
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"horde.ai/internal/persistence/snapshot"
	"horde.ai/internal/sim/arena"
	"horde.ai/internal/sim/logic/vecmath"
	"horde.ai/internal/sim/pursuit"
	"horde.ai/internal/sim/tuning"
)

type Vec3 = vecmath.Vec3

type WorldConfig struct {
	ID                 string
	TickRateHz         int
	Seed               int64
	SnapshotEveryTicks int
}

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg  WorldConfig
	tune tuning.Tuning
	log  *log.Logger

	tick atomic.Uint64

	arena   *arena.Arena
	dir     *pursuit.Directory
	navs    map[string]*arena.NavAgent
	runners []*arena.Runner

	// Spawn placement draws from its own stream so hunters and prey keep
	// their private sequences.
	pcg *rand.PCG
	rng *rand.Rand

	nextHunter uint64
	nextPrey   uint64

	cmds          chan commandReq
	admin         chan adminSnapshotReq
	observerJoin  chan ObserverJoinRequest
	observerSub   chan ObserverSubscribeRequest
	observerLeave chan string
	stop          chan struct{}
	stopOnce      sync.Once

	observers map[string]*observerClient

	// Optional logger (may be nil). Implemented in internal/persistence/*.
	tickLogger TickLogger

	// Optional snapshot sink (may be nil). Snapshot writing should be off-thread.
	snapshotSink chan<- snapshot.SnapshotV1

	lastDigest  string
	alertsTotal uint64
	metrics     atomic.Value
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type TickLogEntry struct {
	Tick     uint64          `json:"tick"`
	Commands []Command       `json:"commands,omitempty"`
	Events   []pursuit.Event `json:"events,omitempty"`
	Digest   string          `json:"digest"`
}

// preyStream offsets runner PCG streams away from hunter streams, which use
// the hunter's spawn number.
const preyStream = 1 << 32

// New builds a world and places the initial hunters and prey from tune.
func New(cfg WorldConfig, tune tuning.Tuning, logger *log.Logger) (*World, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = tune.TickRateHz
	}
	if cfg.TickRateHz <= 0 {
		return nil, fmt.Errorf("world %s: tick rate must be > 0", cfg.ID)
	}
	w, err := newEmpty(cfg, tune, logger)
	if err != nil {
		return nil, err
	}
	for i := 0; i < tune.Arena.InitialPrey; i++ {
		if _, err := w.spawnPrey("", nil); err != nil {
			return nil, fmt.Errorf("initial prey: %w", err)
		}
	}
	for i := 0; i < tune.Arena.InitialHunters; i++ {
		if _, err := w.spawnHunter("", nil); err != nil {
			return nil, fmt.Errorf("initial hunters: %w", err)
		}
	}
	// Initial spawns belong to tick 0's log entry.
	return w, nil
}

func newEmpty(cfg WorldConfig, tune tuning.Tuning, logger *log.Logger) (*World, error) {
	a, err := arena.New(tune.Arena, tune.Prey)
	if err != nil {
		return nil, err
	}
	pcg := rand.NewPCG(uint64(cfg.Seed), 0)
	pursuitLog := log.New(logger.Writer(), "[pursuit] ", logger.Flags())
	w := &World{
		cfg:           cfg,
		tune:          tune,
		log:           logger,
		arena:         a,
		dir:           pursuit.NewDirectory(pursuit.ConfigFromTuning(tune.Hunter), cfg.Seed, pursuitLog),
		navs:          map[string]*arena.NavAgent{},
		pcg:           pcg,
		rng:           rand.New(pcg),
		cmds:          make(chan commandReq, 256),
		admin:         make(chan adminSnapshotReq, 16),
		observerJoin:  make(chan ObserverJoinRequest, 64),
		observerSub:   make(chan ObserverSubscribeRequest, 64),
		observerLeave: make(chan string, 64),
		stop:          make(chan struct{}),
		observers:     map[string]*observerClient{},
	}
	w.metrics.Store(WorldMetrics{})
	return w, nil
}

func (w *World) SetTickLogger(l TickLogger) { w.tickLogger = l }

func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

func (w *World) Config() WorldConfig {
	if w == nil {
		return WorldConfig{}
	}
	return w.cfg
}

func (w *World) Tuning() tuning.Tuning { return w.tune }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

// Directory exposes the hunter roster. Loop goroutine only.
func (w *World) Directory() *pursuit.Directory { return w.dir }

// Arena exposes the level. Loop goroutine only, except Obstacles and
// HalfExtent, which never change after construction.
func (w *World) Arena() *arena.Arena { return w.arena }

// Runners returns the prey bodies in spawn order. Loop goroutine only.
func (w *World) Runners() []*arena.Runner {
	out := make([]*arena.Runner, len(w.runners))
	copy(out, w.runners)
	return out
}

func (w *World) Nav(id string) (*arena.NavAgent, bool) {
	n, ok := w.navs[id]
	return n, ok
}

func (w *World) runner(id string) *arena.Runner {
	for _, r := range w.runners {
		if r.ID() == id {
			return r
		}
	}
	return nil
}

func (w *World) preyTargets() []pursuit.Prey {
	out := make([]pursuit.Prey, 0, len(w.runners))
	for _, r := range w.runners {
		out = append(out, r)
	}
	return out
}
