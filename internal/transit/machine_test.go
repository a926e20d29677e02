package transit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenworks/outrider/internal/agent"
	"github.com/wardenworks/outrider/internal/config"
	"github.com/wardenworks/outrider/internal/scout"
	"github.com/wardenworks/outrider/internal/store"
	"github.com/wardenworks/outrider/internal/zone"
)

type fakeMover struct {
	result zone.MoveResult
	moves  []string
}

func (m *fakeMover) Step(agentName string, dest zone.ID) zone.MoveResult {
	m.moves = append(m.moves, agentName+">"+string(dest))
	return m.result
}

type fakeObserver struct {
	obs map[zone.ID]zone.Observation
}

func (f *fakeObserver) Observe(z zone.ID) (zone.Observation, bool) {
	o, ok := f.obs[z]
	return o, ok
}

type stubRouter struct{}

func (stubRouter) Exits(z zone.ID) map[zone.Direction]zone.ID { return nil }
func (stubRouter) Route(from, to zone.ID) (zone.Route, bool)  { return zone.Route{}, false }

type rig struct {
	ctrl     *Controller
	assessor *scout.Assessor
	mover    *fakeMover
	obs      *fakeObserver
	cfg      config.Config
}

func newRig() *rig {
	cfg := config.Default()
	cfg.TransitTimeoutTicks = 10
	cfg.MaxTransitFailures = 3
	cfg.RetryCooldownTicks = 50

	st := store.NewMemory()
	obs := &fakeObserver{obs: map[zone.ID]zone.Observation{}}
	assessor := scout.New(st, obs, stubRouter{}, cfg)
	mover := &fakeMover{}
	return &rig{
		ctrl:     New(st, assessor, mover, obs, cfg),
		assessor: assessor,
		mover:    mover,
		obs:      obs,
		cfg:      cfg,
	}
}

func snap(name string, home, cur zone.ID) agent.Snapshot {
	return agent.Snapshot{Name: name, Role: agent.RoleHarvester, Home: home, Zone: cur}
}

func TestRoundTrip(t *testing.T) {
	r := newRig()
	r.obs.obs["T"] = zone.Observation{Zone: "T"}

	ag := snap("alice", "H", "H")
	st, ok := r.ctrl.Depart(100, ag, "T", "n1")
	require.True(t, ok)
	require.Equal(t, PhaseOutbound, st.Phase)

	arrivals := 0
	st, ev := r.ctrl.Step(101, ag, nil)
	assert.Equal(t, EventNone, ev)

	ag.Zone = "T"
	st, ev = r.ctrl.Step(102, ag, nil)
	require.Equal(t, EventArrived, ev)
	require.Equal(t, PhaseWorking, st.Phase)
	arrivals++

	// Task needs two steps to finish.
	steps := 0
	task := func(now uint64, ag agent.Snapshot) bool {
		steps++
		return steps >= 2
	}
	st, ev = r.ctrl.Step(103, ag, task)
	assert.Equal(t, EventNone, ev)
	st, ev = r.ctrl.Step(104, ag, task)
	require.Equal(t, EventTaskDone, ev)
	require.Equal(t, PhaseReturning, st.Phase)

	st, ev = r.ctrl.Step(105, ag, nil)
	assert.Equal(t, EventNone, ev)

	ag.Zone = "H"
	st, ev = r.ctrl.Step(106, ag, nil)
	require.Equal(t, EventReturned, ev)
	assert.Equal(t, PhaseHome, st.Phase)
	assert.Empty(t, st.Target)
	assert.Empty(t, st.NodeID)
	assert.Zero(t, st.Budget.Count)
	assert.Equal(t, 1, arrivals)
}

func TestDepartInsideTargetGoesStraightToWork(t *testing.T) {
	r := newRig()
	st, ok := r.ctrl.Depart(100, snap("alice", "H", "T"), "T", "n1")
	require.True(t, ok)
	assert.Equal(t, PhaseWorking, st.Phase)
}

func TestTimeoutAbortChargesOneFailure(t *testing.T) {
	r := newRig()
	ag := snap("alice", "H", "H")
	_, ok := r.ctrl.Depart(100, ag, "T", "n1")
	require.True(t, ok)

	// Inside the window the agent keeps walking.
	st, ev := r.ctrl.Step(100+r.cfg.TransitTimeoutTicks, ag, nil)
	assert.Equal(t, EventNone, ev)
	assert.Equal(t, PhaseOutbound, st.Phase)

	st, ev = r.ctrl.Step(100+r.cfg.TransitTimeoutTicks+1, ag, nil)
	require.Equal(t, EventAborted, ev)
	assert.Equal(t, PhaseHome, st.Phase)
	assert.Empty(t, st.Target)
	assert.Equal(t, 1, st.Budget.Count)

	// The stale target is flagged off for discovery.
	assert.False(t, r.assessor.RemoteEnabled(112, "T"))
}

func TestNoPathTreatedLikeTimeout(t *testing.T) {
	r := newRig()
	r.mover.result = zone.MoveNoPath

	ag := snap("alice", "H", "H")
	_, ok := r.ctrl.Depart(100, ag, "T", "n1")
	require.True(t, ok)

	st, ev := r.ctrl.Step(101, ag, nil)
	require.Equal(t, EventAborted, ev)
	assert.Equal(t, PhaseHome, st.Phase)
	assert.Equal(t, 1, st.Budget.Count)
	assert.False(t, r.assessor.RemoteEnabled(101, "T"))
}

func TestHostileContactRetreatsWithoutFailure(t *testing.T) {
	r := newRig()
	r.obs.obs["T"] = zone.Observation{Zone: "T", HostileAgents: 2}

	ag := snap("alice", "H", "T")
	_, ok := r.ctrl.Depart(100, ag, "T", "n1")
	require.True(t, ok)

	st, ev := r.ctrl.Step(101, ag, nil)
	require.Equal(t, EventRetreat, ev)
	assert.Equal(t, PhaseReturning, st.Phase)
	assert.Zero(t, st.Budget.Count)
}

func TestFailureBudgetDisablesUntilCooldown(t *testing.T) {
	r := newRig()
	r.mover.result = zone.MoveNoPath
	ag := snap("alice", "H", "H")

	// Two failures leave the agent one short of the cap.
	now := uint64(100)
	for i := 0; i < r.cfg.MaxTransitFailures-1; i++ {
		_, ok := r.ctrl.Depart(now, ag, "T", "n1")
		require.True(t, ok)
		_, ev := r.ctrl.Step(now+1, ag, nil)
		require.Equal(t, EventAborted, ev)
		now += 10
	}
	require.True(t, r.ctrl.MultiZoneAllowed(now, "alice", "H"))

	// The final timeout exhausts the budget.
	_, ok := r.ctrl.Depart(now, ag, "T", "n1")
	require.True(t, ok)
	st, ev := r.ctrl.Step(now+1, ag, nil)
	require.Equal(t, EventAborted, ev)
	require.Equal(t, r.cfg.MaxTransitFailures, st.Budget.Count)

	lastFailure := now + 1
	assert.False(t, r.ctrl.MultiZoneAllowed(lastFailure+1, "alice", "H"))
	assert.False(t, r.ctrl.MultiZoneAllowed(lastFailure+r.cfg.RetryCooldownTicks-1, "alice", "H"))

	_, ok = r.ctrl.Depart(lastFailure+1, ag, "T", "n1")
	assert.False(t, ok)

	// Cooldown over: the retry goes out with a fresh budget.
	retryAt := lastFailure + r.cfg.RetryCooldownTicks
	assert.True(t, r.ctrl.MultiZoneAllowed(retryAt, "alice", "H"))
	st, ok = r.ctrl.Depart(retryAt, ag, "T", "n1")
	require.True(t, ok)
	assert.Zero(t, st.Budget.Count)
	assert.Equal(t, PhaseOutbound, st.Phase)
}

func TestSetEnabledBlocksDeparture(t *testing.T) {
	r := newRig()
	r.ctrl.SetEnabled("alice", "H", false)

	_, ok := r.ctrl.Depart(100, snap("alice", "H", "H"), "T", "n1")
	assert.False(t, ok)
	assert.False(t, r.ctrl.MultiZoneAllowed(100, "alice", "H"))

	r.ctrl.SetEnabled("alice", "H", true)
	assert.True(t, r.ctrl.MultiZoneAllowed(100, "alice", "H"))
}

func TestResetFailuresClearsBudget(t *testing.T) {
	r := newRig()
	r.mover.result = zone.MoveNoPath
	ag := snap("alice", "H", "H")

	for i := 0; i < r.cfg.MaxTransitFailures; i++ {
		_, ok := r.ctrl.Depart(uint64(100+10*i), ag, "T", "n1")
		require.True(t, ok)
		r.ctrl.Step(uint64(101+10*i), ag, nil)
	}
	require.False(t, r.ctrl.MultiZoneAllowed(130, "alice", "H"))

	r.ctrl.ResetFailures("alice", "H")
	assert.True(t, r.ctrl.MultiZoneAllowed(130, "alice", "H"))
}

func TestStragglerWalksHome(t *testing.T) {
	r := newRig()
	ag := snap("alice", "H", "X")

	_, ev := r.ctrl.Step(100, ag, nil)
	assert.Equal(t, EventNone, ev)
	require.NotEmpty(t, r.mover.moves)
	assert.Equal(t, "alice>H", r.mover.moves[len(r.mover.moves)-1])
}

func TestCleanupDropsDeadAgents(t *testing.T) {
	r := newRig()
	r.ctrl.Depart(100, snap("alice", "H", "H"), "T", "n1")
	r.ctrl.Depart(100, snap("bob", "H", "H"), "T", "n2")

	assert.Equal(t, 1, r.ctrl.Cleanup(map[string]bool{"alice": true}))

	st := r.ctrl.Load("bob", "H")
	assert.Equal(t, PhaseHome, st.Phase)
	assert.Zero(t, st.StartedAt)
}
