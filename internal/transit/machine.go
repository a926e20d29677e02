// Package transit drives agents across zone borders with a small per-agent
// state machine: home, outbound, working, returning. Transitions fire on
// arrival, task completion, hostile contact, timeout, and routing failure;
// repeated failures park the agent in single-zone mode until a cooldown
// passes.
package transit

import (
	"log/slog"

	"github.com/wardenworks/outrider/internal/agent"
	"github.com/wardenworks/outrider/internal/config"
	"github.com/wardenworks/outrider/internal/scout"
	"github.com/wardenworks/outrider/internal/store"
	"github.com/wardenworks/outrider/internal/zone"
)

const transitPrefix = "transit/"

// Phase is where an agent stands in its cross-zone round trip.
type Phase uint8

const (
	PhaseHome      Phase = iota // In or heading to the home zone, awaiting work
	PhaseOutbound               // Crossing zones toward the target
	PhaseWorking                // In the target zone, task under way
	PhaseReturning              // Heading back to the home zone
)

// String returns the phase name used in logs.
func (p Phase) String() string {
	switch p {
	case PhaseHome:
		return "home"
	case PhaseOutbound:
		return "outbound"
	case PhaseWorking:
		return "working"
	case PhaseReturning:
		return "returning"
	default:
		return "unknown"
	}
}

// Event is the interesting edge, if any, that a step produced.
type Event uint8

const (
	EventNone     Event = iota
	EventArrived        // Entered the target zone
	EventTaskDone       // Finished the task, heading home
	EventRetreat        // Hostiles in the target zone, heading home
	EventAborted        // Transition failed, budget charged
	EventReturned       // Back in the home zone, round trip closed
)

// String returns the event name used in logs.
func (e Event) String() string {
	switch e {
	case EventArrived:
		return "arrived"
	case EventTaskDone:
		return "task_done"
	case EventRetreat:
		return "retreat"
	case EventAborted:
		return "aborted"
	case EventReturned:
		return "returned"
	default:
		return "none"
	}
}

// State is the durable multi-zone record for one agent. It is created with
// defaults on first access and survives across steps in the store.
type State struct {
	Agent     string        `json:"agent"`
	Enabled   bool          `json:"enabled"`
	Home      zone.ID       `json:"home"`
	Target    zone.ID       `json:"target"`
	NodeID    string        `json:"node_id,omitempty"`
	Phase     Phase         `json:"phase"`
	StartedAt uint64        `json:"started_at"`
	Budget    FailureBudget `json:"budget"`
}

// TaskFunc performs the agent's in-zone task for one step and reports
// whether the run is complete.
type TaskFunc func(now uint64, ag agent.Snapshot) bool

// Controller owns per-agent transition state and advances it one step at a
// time.
type Controller struct {
	store    store.Store
	assessor *scout.Assessor
	mover    zone.Mover
	observer zone.Observer
	cfg      config.Config
}

// New returns a controller over the given collaborators.
func New(st store.Store, assessor *scout.Assessor, mover zone.Mover, obs zone.Observer, cfg config.Config) *Controller {
	return &Controller{store: st, assessor: assessor, mover: mover, observer: obs, cfg: cfg}
}

func transitKey(agentName string) string { return transitPrefix + agentName }

// Load returns the agent's transit state, defaulting a fresh enabled record
// on first access.
func (c *Controller) Load(agentName string, home zone.ID) State {
	var st State
	found, err := c.store.Get(transitKey(agentName), &st)
	if err != nil {
		slog.Warn("transit state read failed", "agent", agentName, "error", err)
	}
	if !found {
		return State{Agent: agentName, Enabled: true, Home: home, Phase: PhaseHome}
	}
	if st.Home == "" {
		st.Home = home
	}
	return st
}

func (c *Controller) save(st State) {
	if err := c.store.Set(transitKey(st.Agent), st); err != nil {
		slog.Warn("transit state write failed", "agent", st.Agent, "error", err)
	}
}

// MultiZoneAllowed reports whether the agent may work outside its home zone
// right now. False once the failure budget is exhausted, until the cooldown
// elapses.
func (c *Controller) MultiZoneAllowed(now uint64, agentName string, home zone.ID) bool {
	st := c.Load(agentName, home)
	return st.Enabled && st.Budget.Allowed(now, c.cfg.MaxTransitFailures, c.cfg.RetryCooldownTicks)
}

// SetEnabled toggles multi-zone mode for the agent without touching its
// failure history.
func (c *Controller) SetEnabled(agentName string, home zone.ID, enabled bool) {
	st := c.Load(agentName, home)
	st.Enabled = enabled
	c.save(st)
}

// ResetFailures manually clears the agent's failure budget.
func (c *Controller) ResetFailures(agentName string, home zone.ID) {
	st := c.Load(agentName, home)
	st.Budget.Reset()
	c.save(st)
}

// Depart points an agent at a target zone and starts the outbound leg. An
// agent already standing in the target goes straight to work. Returns false
// without side effects when multi-zone mode is disabled or the budget is
// spent and still cooling down.
func (c *Controller) Depart(now uint64, ag agent.Snapshot, target zone.ID, nodeID string) (State, bool) {
	st := c.Load(ag.Name, ag.Home)
	if !st.Enabled || !st.Budget.Allowed(now, c.cfg.MaxTransitFailures, c.cfg.RetryCooldownTicks) {
		return st, false
	}
	if st.Budget.Exhausted(c.cfg.MaxTransitFailures) {
		// Cooldown elapsed; grant a fresh budget for the retry.
		st.Budget.Reset()
		slog.Info("multi-zone retry after cooldown", "agent", ag.Name, "target", target)
	}

	st.Target = target
	st.NodeID = nodeID
	st.StartedAt = now
	st.Budget.LastAttempt = now
	if ag.Zone == target {
		st.Phase = PhaseWorking
	} else {
		st.Phase = PhaseOutbound
	}
	c.save(st)
	slog.Debug("agent departing", "agent", ag.Name, "target", target, "node", nodeID, "phase", st.Phase)
	return st, true
}

// Step advances the agent's state machine by one tick: it moves the agent,
// detects arrival, timeout, routing failure and hostile contact, and runs
// the task while the agent stands in its target zone. The updated state is
// persisted and returned along with the edge taken, if any.
func (c *Controller) Step(now uint64, ag agent.Snapshot, task TaskFunc) (State, Event) {
	st := c.Load(ag.Name, ag.Home)
	event := EventNone

	switch st.Phase {
	case PhaseHome:
		// Nothing to drive; stragglers walk themselves back.
		if ag.Zone != st.Home {
			c.mover.Step(ag.Name, st.Home)
		}

	case PhaseOutbound:
		switch {
		case ag.Zone == st.Target:
			st.Phase = PhaseWorking
			event = EventArrived
			slog.Debug("agent reached target zone", "agent", ag.Name, "zone", st.Target,
				"ticks", now-st.StartedAt)
		case now-st.StartedAt > c.cfg.TransitTimeoutTicks:
			c.abort(now, &st, "transit timeout")
			event = EventAborted
		default:
			switch c.mover.Step(ag.Name, st.Target) {
			case zone.MoveArrived:
				st.Phase = PhaseWorking
				event = EventArrived
			case zone.MoveNoPath, zone.MoveInvalidTarget:
				c.abort(now, &st, "no route to target")
				event = EventAborted
			}
		}

	case PhaseWorking:
		if obs, ok := c.observer.Observe(ag.Zone); ok && obs.HostileAgents > c.cfg.MaxHostileAgents {
			// Safety abort, deliberately not charged against the budget.
			st.Phase = PhaseReturning
			event = EventRetreat
			slog.Warn("hostiles in target zone, returning", "agent", ag.Name, "zone", ag.Zone,
				"hostiles", obs.HostileAgents)
		} else if task != nil && task(now, ag) {
			st.Phase = PhaseReturning
			event = EventTaskDone
		}

	case PhaseReturning:
		if ag.Zone == st.Home {
			st.Phase = PhaseHome
			st.Target = ""
			st.NodeID = ""
			event = EventReturned
			slog.Debug("agent home", "agent", ag.Name, "zone", st.Home)
		} else if res := c.mover.Step(ag.Name, st.Home); res == zone.MoveArrived {
			st.Phase = PhaseHome
			st.Target = ""
			st.NodeID = ""
			event = EventReturned
		}
	}

	c.save(st)
	return st, event
}

// abort cancels the outbound leg: the target is flagged off for remote use,
// the failure budget is charged, and the agent falls back to home selection.
func (c *Controller) abort(now uint64, st *State, reason string) {
	slog.Warn("transition aborted", "agent", st.Agent, "target", st.Target, "reason", reason,
		"failures", st.Budget.Count+1)
	if st.Target != "" {
		c.assessor.MarkExpired(now, st.Target)
	}
	st.Budget.Record(now)
	st.Phase = PhaseHome
	st.Target = ""
	st.NodeID = ""
}

// Cleanup drops transit records for agents no longer alive. Returns the
// number dropped.
func (c *Controller) Cleanup(live map[string]bool) int {
	keys, err := c.store.Keys(transitPrefix)
	if err != nil {
		slog.Warn("transit state scan failed", "error", err)
		return 0
	}
	dropped := 0
	for _, key := range keys {
		var st State
		found, err := c.store.Get(key, &st)
		if err != nil || !found || live[st.Agent] {
			continue
		}
		if err := c.store.Delete(key); err == nil {
			dropped++
		}
	}
	return dropped
}
