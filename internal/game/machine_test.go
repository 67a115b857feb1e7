// internal/game/machine_test.go
package game

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftoff-sim/simcore/internal/booster"
	"github.com/liftoff-sim/simcore/pkg/core"
)

func newMachine() *Machine {
	return New(DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// runCountdown burns through the pre-launch countdown without
// overshooting the launch window.
func runCountdown(t *testing.T, m *Machine) {
	t.Helper()
	for i := 0; i < 40; i++ {
		m.Update(0.25)
	}
	require.Zero(t, m.State().Countdown)
	require.Equal(t, core.PhasePreLaunch, m.Phase())
}

// flyTo advances the attempt to the given mission time in fixed
// quarter-second ticks.
func flyTo(m *Machine, target float64) {
	for m.State().Rocket.MissionTime < target && m.Phase() != core.PhaseFailed {
		m.Update(0.25)
	}
}

func TestCountdownAndLiftoff(t *testing.T) {
	m := newMachine()
	assert.Equal(t, core.PhasePreLaunch, m.Phase())
	assert.Equal(t, 10.0, m.State().Countdown)

	// too eager: the clock is still running
	m.Update(0.25)
	assert.False(t, m.HandlePlayerAction())
	assert.Equal(t, core.PhasePreLaunch, m.Phase())

	runCountdown(t, m)
	require.True(t, m.HandlePlayerAction())
	assert.Equal(t, core.PhaseFlying, m.Phase())
	assert.Equal(t, 1.0, m.State().Rocket.Throttle)

	m.Update(0.25)
	st := m.State()
	assert.Greater(t, st.Rocket.MissionTime, 0.0)
	assert.Greater(t, st.Rocket.Acceleration, 0.0)
}

func TestLaunchWindowExpires(t *testing.T) {
	m := newMachine()
	for i := 0; i < 80; i++ { // 20 s, past countdown + 8 s window
		m.Update(0.25)
	}
	assert.Equal(t, core.PhaseFailed, m.Phase())
	assert.Equal(t, "Missed launch window", m.State().FailReason)
	assert.False(t, m.HandlePlayerAction())
}

func TestMaxQCalloutReverts(t *testing.T) {
	m := newMachine()
	runCountdown(t, m)
	require.True(t, m.HandlePlayerAction())

	flyTo(m, 72.25)
	assert.Equal(t, core.PhaseMaxQ, m.Phase())
	assert.Greater(t, m.State().MaxQ, 0.0)

	flyTo(m, 77)
	assert.Equal(t, core.PhaseFlying, m.Phase())
}

func TestThrottleBucketAroundMaxQ(t *testing.T) {
	m := newMachine()
	runCountdown(t, m)
	require.True(t, m.HandlePlayerAction())

	flyTo(m, 70)
	assert.InDelta(t, 0.8, m.State().Rocket.Throttle, 1e-9)
	flyTo(m, 89)
	th := m.State().Rocket.Throttle
	assert.Greater(t, th, 0.8)
	assert.Less(t, th, 1.0)
	flyTo(m, 100)
	assert.Equal(t, 1.0, m.State().Rocket.Throttle)
}

func TestStage1FuelExhaustionZeroesThrottle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Vehicle.Stage1PropMass = 2000 // runs dry well before MECO
	m := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	runCountdown(t, m)
	require.True(t, m.HandlePlayerAction())

	flyTo(m, 30)
	st := m.State()
	require.Zero(t, st.Rocket.Fuel)
	assert.Zero(t, st.Rocket.Throttle)
}

func TestMECOCutsThrottle(t *testing.T) {
	m := newMachine()
	runCountdown(t, m)
	require.True(t, m.HandlePlayerAction())

	flyTo(m, 146)
	assert.Zero(t, m.State().Rocket.Throttle)
	assert.Equal(t, core.Stage1, m.State().Rocket.Stage)
}

func separate(t *testing.T, m *Machine) {
	t.Helper()
	runCountdown(t, m)
	require.True(t, m.HandlePlayerAction())
	flyTo(m, 153)
	require.Equal(t, core.PhaseStageSep, m.Phase())
	require.True(t, m.HandlePlayerAction())
}

func TestStageSeparationAction(t *testing.T) {
	m := newMachine()
	separate(t, m)

	st := m.State()
	assert.Equal(t, core.PhaseStage2Flight, m.Phase())
	assert.Equal(t, core.Stage2, st.Rocket.Stage)
	assert.Equal(t, 1.0, st.Rocket.Throttle) // upper stage lit immediately
	assert.Equal(t, 1.0, st.Rocket.Fuel)
	assert.InDelta(t, 153, st.SeparationTime, 0.26)
	assert.Equal(t, 100, st.Score) // on the money

	require.NotNil(t, m.Booster())
	assert.Equal(t, core.Stage1, m.Booster().Flight.Stage)
	assert.Zero(t, m.Booster().Flight.Fuel)

	// the scheduled autonomous ignition was folded into the action
	for _, o := range m.Snapshot().Outcomes {
		assert.NotEqual(t, core.EventStage2Ignition, o.ID)
	}
}

func TestSeparationAccuracyDegradesWithTiming(t *testing.T) {
	m := newMachine()
	runCountdown(t, m)
	require.True(t, m.HandlePlayerAction())
	flyTo(m, 156) // 3 s late inside the +-4 s window
	require.Equal(t, core.PhaseStageSep, m.Phase())
	require.True(t, m.HandlePlayerAction())

	assert.Equal(t, 25, m.State().Score) // 1 - 3/4
}

func TestMissedSeparationFailsMission(t *testing.T) {
	m := newMachine()
	runCountdown(t, m)
	require.True(t, m.HandlePlayerAction())

	flyTo(m, 160) // sail past the 157 s deadline
	assert.Equal(t, core.PhaseFailed, m.Phase())
	assert.Equal(t, "Missed Stage Separation window", m.State().FailReason)

	out := m.Snapshot().Outcomes
	require.NotEmpty(t, out)
	last := out[len(out)-1]
	assert.Equal(t, core.EventStageSep, last.ID)
	assert.True(t, last.Missed)
}

func TestMissedBoostbackIsNonFatal(t *testing.T) {
	m := newMachine()
	separate(t, m)

	flyTo(m, 215) // boostback window (190..210) expires unanswered
	assert.Equal(t, core.PhaseStage2Flight, m.Phase())
	assert.True(t, m.Booster().Unavailable)
	assert.Empty(t, m.State().FailReason)

	flyTo(m, 480)
	require.Equal(t, core.PhaseSECO, m.Phase())
	require.True(t, m.HandlePlayerAction())
	assert.Equal(t, core.PhaseOrbit, m.Phase())
	assert.True(t, m.State().OrbitAchieved)
	assert.Equal(t, 200, m.State().Score) // 100 sep + 100 SECO, no landing bonus
}

func TestMissedSECOFailsMission(t *testing.T) {
	m := newMachine()
	separate(t, m)

	flyTo(m, 490)
	assert.Equal(t, core.PhaseFailed, m.Phase())
	assert.Equal(t, "Missed SECO-1 window", m.State().FailReason)
	assert.False(t, m.State().OrbitAchieved)
}

func TestBoostbackActionArmsBurnWithoutPoints(t *testing.T) {
	m := newMachine()
	separate(t, m)
	score := m.State().Score

	flyTo(m, 200)
	require.Equal(t, core.PhaseBoostback, m.Phase())
	require.True(t, m.HandlePlayerAction())
	assert.Equal(t, core.PhaseStage2Flight, m.Phase())
	assert.Equal(t, score, m.State().Score)
	assert.Greater(t, m.Booster().BoostbackEnd, 200.0)

	m.Update(0.25)
	assert.True(t, m.Booster().Flight.Retrograde)
}

func TestBoosterCrashNeverFailsMission(t *testing.T) {
	m := newMachine()
	separate(t, m)

	// never recover the booster; it free-falls while the upper stage
	// presses on to orbit
	flyTo(m, 480)
	require.Equal(t, core.PhaseSECO, m.Phase())
	require.True(t, m.HandlePlayerAction())
	require.Equal(t, core.PhaseOrbit, m.Phase())

	for i := 0; i < 20000 && !m.Done(); i++ {
		m.Update(0.25)
	}
	require.True(t, m.Done())
	snap := m.Snapshot()
	require.NotNil(t, snap.Landing)
	assert.False(t, snap.Landing.Landed)
	assert.Zero(t, snap.Landing.Bonus)
	assert.Equal(t, core.PhaseOrbit, snap.Phase)
	assert.Empty(t, snap.FailReason)
}

func TestLandingPromptOutranksOpenEventWindow(t *testing.T) {
	m := newMachine()
	separate(t, m)

	flyTo(m, 480)
	require.Equal(t, core.PhaseSECO, m.Phase())

	// put the booster on final approach with the prompt up while the
	// SECO window is open
	m.bst = &booster.Status{
		PromptShown: true,
		Flight: core.FlightData{
			Altitude:    3000,
			Velocity:    -80,
			Mass:        28000,
			MissionTime: m.State().Rocket.MissionTime,
			Stage:       core.Stage1,
		},
	}

	require.True(t, m.HandlePlayerAction())
	assert.Equal(t, core.PhaseSECO, m.Phase()) // SECO untouched
	assert.False(t, m.State().OrbitAchieved)
	assert.True(t, m.bst.BurnIgnited)

	// prompt consumed; the next press resolves SECO
	require.True(t, m.HandlePlayerAction())
	assert.Equal(t, core.PhaseOrbit, m.Phase())
	assert.True(t, m.State().OrbitAchieved)
}

func TestSnapshotCarriesOpenWindow(t *testing.T) {
	m := newMachine()
	runCountdown(t, m)
	require.True(t, m.HandlePlayerAction())
	flyTo(m, 150)

	snap := m.Snapshot()
	require.NotNil(t, snap.ActiveEvent)
	assert.Equal(t, core.EventStageSep, snap.ActiveEvent.ID)
	assert.InDelta(t, 7.0, snap.EventTimeRemaining, 0.26)
	assert.Nil(t, snap.Booster)
}

func TestResetReturnsToCountdown(t *testing.T) {
	m := newMachine()
	separate(t, m)
	require.NotZero(t, m.State().Score)

	m.Reset()
	assert.Equal(t, core.PhasePreLaunch, m.Phase())
	st := m.State()
	assert.Equal(t, 10.0, st.Countdown)
	assert.Zero(t, st.Score)
	assert.Zero(t, st.Rocket.MissionTime)
	assert.Equal(t, core.Stage1, st.Rocket.Stage)
	assert.Nil(t, m.Booster())
	assert.Empty(t, m.Snapshot().Outcomes)
}
