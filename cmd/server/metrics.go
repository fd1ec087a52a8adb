package main

import (
	"fmt"
	"io"

	"horde.ai/internal/sim/world"
)

// writeMetrics renders the world and index signals in the Prometheus text
// exposition format.
func writeMetrics(rw io.Writer, worldID string, m world.WorldMetrics, idx runtimeIndex) {
	fmt.Fprintf(rw, "# HELP horde_world_tick Current world tick.\n")
	fmt.Fprintf(rw, "# TYPE horde_world_tick gauge\n")
	fmt.Fprintf(rw, "horde_world_tick{world=%q} %d\n", worldID, m.Tick)

	fmt.Fprintf(rw, "# HELP horde_world_hunters Hunters per pursuit state.\n")
	fmt.Fprintf(rw, "# TYPE horde_world_hunters gauge\n")
	fmt.Fprintf(rw, "horde_world_hunters{world=%q,state=%q} %d\n", worldID, "SEARCHING", m.Searching)
	fmt.Fprintf(rw, "horde_world_hunters{world=%q,state=%q} %d\n", worldID, "ALERTED", m.Alerted)
	fmt.Fprintf(rw, "horde_world_hunters{world=%q,state=%q} %d\n", worldID, "CHASING", m.Chasing)

	fmt.Fprintf(rw, "# HELP horde_world_hunters_frozen Hunters currently slowed by a freeze.\n")
	fmt.Fprintf(rw, "# TYPE horde_world_hunters_frozen gauge\n")
	fmt.Fprintf(rw, "horde_world_hunters_frozen{world=%q} %d\n", worldID, m.Frozen)

	fmt.Fprintf(rw, "# HELP horde_world_prey Current number of prey.\n")
	fmt.Fprintf(rw, "# TYPE horde_world_prey gauge\n")
	fmt.Fprintf(rw, "horde_world_prey{world=%q} %d\n", worldID, m.Prey)

	fmt.Fprintf(rw, "# HELP horde_world_observers Connected observer sessions.\n")
	fmt.Fprintf(rw, "# TYPE horde_world_observers gauge\n")
	fmt.Fprintf(rw, "horde_world_observers{world=%q} %d\n", worldID, m.Observers)

	fmt.Fprintf(rw, "# HELP horde_world_alerts_total Alert broadcasts since start.\n")
	fmt.Fprintf(rw, "# TYPE horde_world_alerts_total counter\n")
	fmt.Fprintf(rw, "horde_world_alerts_total{world=%q} %d\n", worldID, m.AlertsTotal)

	fmt.Fprintf(rw, "# HELP horde_world_queue_depth Channel backlog depth.\n")
	fmt.Fprintf(rw, "# TYPE horde_world_queue_depth gauge\n")
	fmt.Fprintf(rw, "horde_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "commands", m.QueueDepths.Commands)
	fmt.Fprintf(rw, "horde_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "observer_join", m.QueueDepths.ObserverJoin)
	fmt.Fprintf(rw, "horde_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "admin", m.QueueDepths.Admin)

	fmt.Fprintf(rw, "# HELP horde_world_step_ms Last tick step duration in milliseconds.\n")
	fmt.Fprintf(rw, "# TYPE horde_world_step_ms gauge\n")
	fmt.Fprintf(rw, "horde_world_step_ms{world=%q} %.3f\n", worldID, m.StepMS)

	if idx == nil {
		return
	}
	s := idx.Stats()
	fmt.Fprintf(rw, "# HELP horde_index_queue_depth Index writer backlog.\n")
	fmt.Fprintf(rw, "# TYPE horde_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "horde_index_queue_depth{world=%q} %d\n", worldID, s.QueueDepth)

	fmt.Fprintf(rw, "# HELP horde_index_dropped_total Index writes dropped under backpressure.\n")
	fmt.Fprintf(rw, "# TYPE horde_index_dropped_total counter\n")
	fmt.Fprintf(rw, "horde_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "tick", s.DropTickTotal)
	fmt.Fprintf(rw, "horde_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "snapshot", s.DropSnapshotTotal)
}
