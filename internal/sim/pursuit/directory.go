package pursuit

import (
	"fmt"
	"io"
	"log"

	"horde.ai/internal/sim/logic/flocking"
	"horde.ai/internal/sim/logic/perception"
	"horde.ai/internal/sim/logic/spatial"
	"horde.ai/internal/sim/logic/vecmath"
)

// Directory is the roster of active hunters and the coordination services
// built on it: search sectors, flank slots, alert fan-out and freezes.
//
// It is not safe for concurrent use. The owner calls Tick from a single loop;
// roster changes requested while a tick is running are queued and applied at
// the next tick boundary, so no hunter is ever seen half added or removed.
//
// Every hunter reads every other hunter's snapshot once per tick, which is
// O(n^2) in the worst case. The spatial index keeps typical neighbourhoods
// small; the quadratic bound is the accepted scaling limit for a few dozen
// hunters.
type Directory struct {
	cfg   Config
	seed  int64
	log   *log.Logger
	sense *perception.System
	flock *flocking.Engine

	roster []*Agent
	byID   map[string]*Agent

	inTick  bool
	pending []rosterOp
	queued  map[string]bool

	nextNum  uint64
	alertSeq uint64
	tick     uint64

	boids   []flocking.Boid
	boidIdx map[string]int
	index   *spatial.Index

	listeners []Listener
	events    []Event
	warned    map[string]bool
}

type rosterOp struct {
	add    *Agent
	remove string
}

// Counters is the directory state that must survive a snapshot.
type Counters struct {
	NextNum  uint64 `json:"next_num"`
	AlertSeq uint64 `json:"alert_seq"`
}

func NewDirectory(cfg Config, seed int64, logger *log.Logger) *Directory {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Directory{
		cfg:     cfg,
		seed:    seed,
		log:     logger,
		sense:   perception.New(cfg.Perception),
		flock:   flocking.New(cfg.Flocking),
		byID:    map[string]*Agent{},
		queued:  map[string]bool{},
		boidIdx: map[string]int{},
		warned:  map[string]bool{},
	}
}

func (d *Directory) Config() Config { return d.cfg }

func (d *Directory) Subscribe(l Listener) {
	if l != nil {
		d.listeners = append(d.listeners, l)
	}
}

func (d *Directory) Len() int { return len(d.roster) }

// Hunters returns the roster in order.
func (d *Directory) Hunters() []*Agent {
	out := make([]*Agent, len(d.roster))
	copy(out, d.roster)
	return out
}

func (d *Directory) Get(id string) (*Agent, bool) {
	a, ok := d.byID[id]
	return a, ok
}

// IndexOf returns the hunter's roster position, or -1.
func (d *Directory) IndexOf(id string) int {
	for i, a := range d.roster {
		if a.rec.ID == id {
			return i
		}
	}
	return -1
}

func (d *Directory) Counters() Counters {
	return Counters{NextNum: d.nextNum, AlertSeq: d.alertSeq}
}

func (d *Directory) SetCounters(c Counters) {
	d.nextNum = c.NextNum
	d.alertSeq = c.AlertSeq
}

// Spawn registers a hunter bound to nav. Outside a tick it joins the roster
// immediately and picks its first search destination; during a tick it joins
// at the next boundary.
func (d *Directory) Spawn(id string, nav Navigator) (*Agent, error) {
	if id == "" {
		return nil, fmt.Errorf("spawn: empty hunter id")
	}
	if nav == nil {
		d.warnOnce(id, "hunter %s has no navigator; not spawned", id)
		return nil, fmt.Errorf("spawn %s: %w", id, ErrNoNavigator)
	}
	if d.byID[id] != nil || d.queued[id] {
		return nil, fmt.Errorf("spawn %s: %w", id, ErrDuplicateHunter)
	}
	d.nextNum++
	rec := Hunter{ID: id, Num: d.nextNum, State: Searching}
	a := newAgent(d, rec, nav)
	a.rec.IdleCue = a.uniform(d.cfg.IdleCueMin, d.cfg.IdleCueMax)
	a.rec.ChaseCue = a.uniform(d.cfg.ChaseCueMin, d.cfg.ChaseCueMax)

	if d.inTick {
		d.queued[id] = true
		d.pending = append(d.pending, rosterOp{add: a})
		return a, nil
	}
	d.add(a)
	return a, nil
}

// Restore re-registers a hunter from a snapshot record. A nil navigator
// registers the hunter disabled; it is dropped at the next tick.
func (d *Directory) Restore(rec Hunter, nav Navigator) (*Agent, error) {
	if d.inTick {
		return nil, fmt.Errorf("restore %s: directory is ticking", rec.ID)
	}
	if rec.ID == "" || d.byID[rec.ID] != nil {
		return nil, fmt.Errorf("restore %q: %w", rec.ID, ErrDuplicateHunter)
	}
	if !rec.State.Valid() {
		return nil, fmt.Errorf("restore %s: bad state %d", rec.ID, rec.State)
	}
	a := newAgent(d, rec, nav)
	if len(rec.RNG) > 0 {
		if err := a.pcg.UnmarshalBinary(rec.RNG); err != nil {
			return nil, fmt.Errorf("restore %s: rng: %w", rec.ID, err)
		}
	}
	a.rec.RNG = nil
	d.roster = append(d.roster, a)
	d.byID[rec.ID] = a
	if rec.Num > d.nextNum {
		d.nextNum = rec.Num
	}
	if nav != nil {
		nav.SetSpeed(a.rec.Speed)
	}
	return a, nil
}

// Despawn removes a hunter; remaining roster indices shift down.
func (d *Directory) Despawn(id string) error {
	if d.byID[id] == nil {
		if d.queued[id] {
			d.pending = append(d.pending, rosterOp{remove: id})
			return nil
		}
		return fmt.Errorf("despawn %s: %w", id, ErrUnknownHunter)
	}
	if d.inTick {
		d.pending = append(d.pending, rosterOp{remove: id})
		return nil
	}
	d.remove(id)
	return nil
}

func (d *Directory) add(a *Agent) {
	d.roster = append(d.roster, a)
	d.byID[a.rec.ID] = a
	a.applySpeed()
	d.emit(Event{Type: EventSpawned, HunterID: a.rec.ID, State: a.rec.State.String(), Pos: posPtr(a.nav.Position())})
	a.pickSearch()
}

func (d *Directory) remove(id string) {
	for i, a := range d.roster {
		if a.rec.ID != id {
			continue
		}
		d.roster = append(d.roster[:i], d.roster[i+1:]...)
		delete(d.byID, id)
		d.emit(Event{Type: EventDespawned, HunterID: id})
		return
	}
}

func (d *Directory) applyPending() {
	ops := d.pending
	d.pending = nil
	for _, op := range ops {
		if op.add != nil {
			delete(d.queued, op.add.rec.ID)
			d.add(op.add)
			continue
		}
		d.remove(op.remove)
	}
}

// Tick advances every hunter by dt seconds against the given prey and
// occluder. It returns every event emitted since the previous drain,
// including spawns and freezes applied between ticks.
func (d *Directory) Tick(tick uint64, dt float64, prey []Prey, occ perception.Occluder) []Event {
	d.tick = tick
	d.applyPending()

	d.inTick = true
	d.rebuildSnapshot()

	c := &tickCtx{tick: tick, dt: dt}
	for _, a := range d.roster {
		if a.rec.Disabled {
			continue
		}
		*c = tickCtx{tick: tick, dt: dt}
		a.update(c, prey, occ)
	}
	d.inTick = false
	d.applyPending()
	return d.DrainEvents()
}

// rebuildSnapshot captures positions and velocity estimates for the tick and
// disables hunters that lost their navigator.
func (d *Directory) rebuildSnapshot() {
	d.boids = d.boids[:0]
	for k := range d.boidIdx {
		delete(d.boidIdx, k)
	}
	d.index = spatial.New()
	for _, a := range d.roster {
		if a.rec.Disabled {
			continue
		}
		if a.nav == nil {
			d.disable(a)
			continue
		}
		a.sampleVelocity()
		b := a.boid()
		d.boidIdx[b.ID] = len(d.boids)
		d.index.Insert(b.ID, len(d.boids), b.Pos)
		d.boids = append(d.boids, b)
	}
}

func (d *Directory) disable(a *Agent) {
	a.rec.Disabled = true
	d.warnOnce(a.rec.ID, "hunter %s has no navigator; disabled", a.rec.ID)
	d.emit(Event{Type: EventDisabled, HunterID: a.rec.ID, Reason: ErrNoNavigator.Error()})
	d.pending = append(d.pending, rosterOp{remove: a.rec.ID})
}

func (d *Directory) snapshotOf(id string) (flocking.Boid, bool) {
	i, ok := d.boidIdx[id]
	if !ok {
		return flocking.Boid{}, false
	}
	return d.boids[i], true
}

func (d *Directory) snapshotLen() int { return len(d.boids) }

func (d *Directory) neighbours(center Vec3, radius float64) []flocking.Boid {
	hits := d.index.Within(center, radius)
	out := make([]flocking.Boid, 0, len(hits))
	for _, h := range hits {
		out = append(out, d.boids[h.Order])
	}
	return out
}

// SearchTarget picks a wander point in the hunter's sector: the circle is
// split evenly across the roster and the hunter's roster index selects its
// slice. Membership changes shift sectors; that is accepted.
func (d *Directory) SearchTarget(a *Agent) (Vec3, bool) {
	if a == nil || a.nav == nil {
		return Vec3{}, false
	}
	idx := d.IndexOf(a.rec.ID)
	if idx < 0 {
		return Vec3{}, false
	}
	n := len(d.roster)
	if n < 1 {
		n = 1
	}
	step := 360.0 / float64(n)
	jitter := d.cfg.SearchJitter * step
	angle := step*float64(idx) + a.uniform(-jitter, jitter)
	dist := a.uniform(d.cfg.SearchMinRadius, d.cfg.SearchMaxRadius)
	p := a.nav.Position().Add(vecmath.YawDir(angle).Scale(dist))
	return a.nav.SampleNearestNavigablePoint(p, d.cfg.SearchMaxRadius)
}

// FlankSlot computes a surround position around target for the hunter.
// With no other hunter near the target it offsets perpendicular to the
// approach; otherwise the slots are spread evenly and indexed by roster order.
func (d *Directory) FlankSlot(a *Agent, target Vec3) (Vec3, bool) {
	if a == nil || a.nav == nil {
		return Vec3{}, false
	}
	if d.index == nil {
		d.rebuildSnapshot()
	}
	near := 0
	for _, e := range d.index.Within(target, d.cfg.FlankNeighborhood) {
		if e.ID != a.rec.ID {
			near++
		}
	}

	var slot Vec3
	if near == 0 {
		toTarget := target.Sub(a.nav.Position()).Normalize()
		perp := toTarget.Cross(vecmath.Up).Normalize()
		slot = target.Add(perp.Scale(d.cfg.FlankRadius))
	} else {
		idx := d.IndexOf(a.rec.ID)
		if idx < 0 {
			idx = 0
		}
		step := 360.0 / float64(near+1)
		slot = target.Add(vecmath.YawDir(step * float64(idx)).Scale(d.cfg.FlankRadius))
	}
	return a.nav.SampleNearestNavigablePoint(slot, d.cfg.FlankSnapRadius)
}

// Broadcast fans a sighting out to every other Searching hunter. Receivers
// do not re-broadcast. It returns the number of hunters alerted.
func (d *Directory) Broadcast(ev AlertEvent) int {
	d.alertSeq++
	ev.Seq = d.alertSeq
	n := 0
	for _, o := range d.roster {
		if o.rec.ID == ev.From {
			continue
		}
		if o.AlertTo(ev.Pos, ev.Seq) {
			n++
		}
	}
	d.emit(Event{Type: EventBroadcast, HunterID: ev.From, Pos: posPtr(ev.Pos), Seq: ev.Seq, Count: n})
	return n
}

// Freeze applies a time-boxed slow-down to the listed hunters. Unknown ids
// are reported; the rest are still frozen.
func (d *Directory) Freeze(ids []string, duration float64) error {
	var missing []string
	for _, id := range ids {
		a := d.byID[id]
		if a == nil {
			missing = append(missing, id)
			continue
		}
		a.OnFrozen(duration)
	}
	if len(missing) > 0 {
		return fmt.Errorf("freeze %v: %w", missing, ErrUnknownHunter)
	}
	return nil
}

func (d *Directory) FreezeAll(duration float64) int {
	n := 0
	for _, a := range d.roster {
		if a.rec.Disabled {
			continue
		}
		a.OnFrozen(duration)
		n++
	}
	return n
}

func (d *Directory) emit(ev Event) {
	ev.Tick = d.tick
	d.events = append(d.events, ev)
	for _, l := range d.listeners {
		l(ev)
	}
}

// DrainEvents returns and clears the pending event buffer.
func (d *Directory) DrainEvents() []Event {
	out := make([]Event, len(d.events))
	copy(out, d.events)
	d.events = d.events[:0]
	return out
}

func (d *Directory) warnOnce(id, format string, args ...any) {
	if d.warned[id] {
		return
	}
	d.warned[id] = true
	d.log.Printf(format, args...)
}

// SetTick stamps events emitted between ticks.
func (d *Directory) SetTick(tick uint64) { d.tick = tick }
