package world

import "horde.ai/internal/sim/pursuit"

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`

	Hunters   int `json:"hunters"`
	Prey      int `json:"prey"`
	Observers int `json:"observers"`

	Searching int `json:"searching"`
	Alerted   int `json:"alerted"`
	Chasing   int `json:"chasing"`
	Frozen    int `json:"frozen"`

	AlertsTotal uint64 `json:"alerts_total"`
	TickEvents  int    `json:"tick_events"`

	QueueDepths QueueDepths `json:"queue_depths"`

	StepMS float64 `json:"step_ms"`
}

type QueueDepths struct {
	Commands     int `json:"commands"`
	ObserverJoin int `json:"observer_join"`
	Admin        int `json:"admin"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}

func (w *World) storeMetrics(nextTick uint64, stepMS float64, events int) {
	m := WorldMetrics{
		Tick:        nextTick,
		Hunters:     w.dir.Len(),
		Prey:        len(w.runners),
		Observers:   len(w.observers),
		AlertsTotal: w.alertsTotal,
		TickEvents:  events,
		QueueDepths: QueueDepths{
			Commands:     len(w.cmds),
			ObserverJoin: len(w.observerJoin),
			Admin:        len(w.admin),
		},
		StepMS: stepMS,
	}
	for _, h := range w.dir.Hunters() {
		switch h.CurrentState() {
		case pursuit.Searching:
			m.Searching++
		case pursuit.Alerted:
			m.Alerted++
		case pursuit.Chasing:
			m.Chasing++
		}
		if h.Frozen() {
			m.Frozen++
		}
	}
	w.metrics.Store(m)
}
