// internal/game/machine.go

// Package game ties the flight integrator, the mission timeline and
// the booster recovery sequence into one playable attempt. A Machine
// is not safe for concurrent use; the host must call Update,
// HandlePlayerAction and Snapshot from a single goroutine.
package game

import (
	"log/slog"
	"math"

	"github.com/liftoff-sim/simcore/internal/booster"
	"github.com/liftoff-sim/simcore/internal/sim"
	"github.com/liftoff-sim/simcore/internal/timeline"
	"github.com/liftoff-sim/simcore/internal/util"
	"github.com/liftoff-sim/simcore/pkg/core"
)

// State is the persisted portion of an attempt. Phase and free timers
// live outside it, on the machine.
type State struct {
	Rocket         core.FlightData
	Countdown      float64
	Score          int
	FailReason     string
	OrbitAchieved  bool
	SeparationTime float64

	MaxAltitude float64
	MaxVelocity float64
	MaxQ        float64
}

// session holds per-attempt scratch that never leaves the machine.
type session struct {
	prelaunchElapsed float64 // wall time spent in pre-launch
}

// Machine runs one mission attempt.
type Machine struct {
	cfg   Config
	sim   *sim.Model
	boost *booster.Model
	log   *slog.Logger

	st   State
	ph   phaseState
	run  *timeline.Run
	bst  *booster.Status // nil until stage separation
	sess session
}

// New builds a machine in pre-launch state.
func New(cfg Config, log *slog.Logger) *Machine {
	if log == nil {
		log = slog.Default()
	}
	model := sim.New(cfg.Vehicle)
	m := &Machine{
		cfg:   cfg,
		sim:   model,
		boost: booster.New(cfg.Booster, model),
		log:   log,
	}
	m.Reset()
	return m
}

// Reset discards the attempt and returns to the top of the countdown.
func (m *Machine) Reset() {
	m.st = State{
		Rocket:    m.sim.InitialFlight(),
		Countdown: m.cfg.Countdown,
	}
	m.ph = preLaunch{}
	m.run = timeline.NewRun(m.cfg.Schedule)
	m.bst = nil
	m.sess = session{}
}

// Phase is the current display phase.
func (m *Machine) Phase() core.Phase {
	return m.ph.display()
}

// State returns a copy of the persisted attempt state.
func (m *Machine) State() State {
	return m.st
}

// Booster returns the recovery status, nil before separation.
func (m *Machine) Booster() *booster.Status {
	return m.bst
}

// Done reports whether the attempt is fully over: a terminal phase was
// reached and any flying booster has come down.
func (m *Machine) Done() bool {
	if !terminal(m.ph) {
		return false
	}
	return m.bst == nil || m.bst.Down()
}

// stage1ThrottleAt is the scripted first-stage throttle profile:
// full thrust off the pad, a deep bucket around max-Q, then a ramp
// back to full.
func stage1ThrottleAt(t float64) float64 {
	switch {
	case t < 60:
		return 1
	case t <= 84:
		return 0.8
	case t < 94:
		return 0.8 + 0.2*(t-84)/10
	default:
		return 1
	}
}

// Update advances the attempt by dt seconds of game time.
func (m *Machine) Update(dt float64) {
	if dt <= 0 {
		return
	}

	if terminal(m.ph) {
		// the mission is decided but a flying booster still lands
		m.updateBooster(dt)
		return
	}

	if _, ok := m.ph.(preLaunch); ok {
		m.updateCountdown(dt)
		return
	}

	// scripted throttle bucket, first stage only; MECO's zero throttle
	// must stay zero, and dry tanks read as engine off
	if m.st.Rocket.Stage == core.Stage1 && m.st.Rocket.Throttle > 0 {
		if m.st.Rocket.Fuel <= 0 {
			m.st.Rocket.Throttle = 0
		} else {
			m.st.Rocket.Throttle = stage1ThrottleAt(m.st.Rocket.MissionTime)
		}
	}

	m.st.Rocket = m.sim.Update(m.st.Rocket, dt)
	m.markHighWater()

	if p, ok := m.ph.(maxQ); ok && m.st.Rocket.MissionTime >= p.until {
		m.ph = flying{}
	}

	m.evaluateTimeline(m.st.Rocket.MissionTime)
	m.updateBooster(dt)
}

func (m *Machine) updateCountdown(dt float64) {
	m.sess.prelaunchElapsed += dt
	m.st.Countdown = m.cfg.Countdown - m.sess.prelaunchElapsed
	if m.st.Countdown < 0 {
		m.st.Countdown = 0
	}
	if m.sess.prelaunchElapsed > m.cfg.Countdown+m.cfg.LaunchWindow {
		m.fail("Missed launch window")
	}
}

func (m *Machine) markHighWater() {
	r := m.st.Rocket
	if r.Altitude > m.st.MaxAltitude {
		m.st.MaxAltitude = r.Altitude
	}
	if r.Velocity > m.st.MaxVelocity {
		m.st.MaxVelocity = r.Velocity
	}
	if r.DynamicPressure > m.st.MaxQ {
		m.st.MaxQ = r.DynamicPressure
	}
}

func (m *Machine) updateBooster(dt float64) {
	if m.bst == nil || m.bst.Down() {
		return
	}
	m.boost.Update(m.bst, dt)
	if m.bst.Down() {
		res := m.bst.Result
		m.st.Score += res.Bonus
		m.log.Info("booster touchdown",
			"velocity", res.TouchdownVelocity,
			"landed", res.Landed,
			"stars", res.Stars,
			"bonus", res.Bonus)
	}
}

// evaluateTimeline resolves every schedule entry that is due at
// mission time t: autonomous events fire, expired player windows miss,
// and an in-window player event parks the machine in its phase.
func (m *Machine) evaluateTimeline(t float64) {
	for {
		e, ok := m.run.Current()
		if !ok {
			return
		}

		if !e.RequiresInput {
			if t < e.TriggerTime {
				return
			}
			m.fireAuto(e, t)
			continue
		}

		if t > e.Deadline() {
			m.run.Miss()
			m.log.Warn("event window missed", "event", string(e.ID), "deadline", e.Deadline())
			if !e.Optional {
				m.fail("Missed " + e.Label + " window")
				return
			}
			// optional events degrade instead of failing
			if m.bst != nil {
				m.bst.Unavailable = true
			}
			if _, open := m.ph.(awaitingEvent); open {
				m.ph = stage2Flight{}
			}
			continue
		}

		if t >= e.Opens() {
			if _, open := m.ph.(awaitingEvent); !open {
				m.ph = awaitingEvent{event: e}
				m.log.Info("event window open", "event", string(e.ID), "deadline", e.Deadline())
			}
		}
		return
	}
}

func (m *Machine) fireAuto(e core.GameEvent, t float64) {
	switch e.ID {
	case core.EventMaxQ:
		m.ph = maxQ{until: t + m.cfg.MaxQDisplay}
	case core.EventMECO:
		m.st.Rocket.Throttle = 0
	case core.EventStage2Ignition:
		m.st.Rocket.Throttle = 1
	}
	m.run.Commit(t, 0, 0)
	m.log.Info("event fired", "event", string(e.ID), "clock", util.FormatMissionTime(t))
}

func (m *Machine) fail(reason string) {
	m.st.FailReason = reason
	m.st.Rocket.Throttle = 0
	m.ph = failed{}
	m.log.Warn("mission failed", "reason", reason)
}

// HandlePlayerAction consumes one press of the single action input.
// The booster landing prompt always wins, whatever phase the primary
// mission is in; otherwise the action is routed by phase. It reports
// whether the press did anything.
func (m *Machine) HandlePlayerAction() bool {
	if m.bst != nil && m.bst.PromptShown {
		return m.boost.IgniteLandingBurn(m.bst)
	}

	switch p := m.ph.(type) {
	case preLaunch:
		if m.st.Countdown > 0 {
			return false
		}
		m.st.Rocket.Throttle = stage1ThrottleAt(0)
		m.st.Rocket = m.sim.Update(m.st.Rocket, 0)
		m.ph = flying{}
		m.log.Info("liftoff")
		return true

	case awaitingEvent:
		m.resolvePlayerEvent(p.event)
		return true
	}
	return false
}

func (m *Machine) resolvePlayerEvent(e core.GameEvent) {
	t := m.st.Rocket.MissionTime
	acc := timeline.Accuracy(e, t)
	pts := int(math.Round(acc * 100))

	switch e.ID {
	case core.EventStageSep:
		m.run.Commit(t, acc, pts)
		m.st.Score += pts
		m.st.SeparationTime = t
		m.bst = m.boost.NewStatus(m.st.Rocket)
		m.st.Rocket = m.sim.PerformStageSeparation(m.st.Rocket)
		// light the upper stage right away and drop the scheduled
		// autonomous ignition
		m.st.Rocket.Throttle = 1
		m.st.Rocket = m.sim.Update(m.st.Rocket, 0)
		if next, ok := m.run.Current(); ok && next.ID == core.EventStage2Ignition {
			m.run.Skip()
		}
		m.ph = stage2Flight{}
		m.log.Info("stage separation", "clock", util.FormatMissionTime(t), "accuracy", acc, "points", pts)

	case core.EventBoostback:
		// no points for boostback, only the landing bonus later
		m.run.Commit(t, acc, 0)
		if m.bst != nil {
			m.boost.ArmBoostback(m.bst)
		}
		m.ph = stage2Flight{}
		m.log.Info("boostback armed", "t", t, "accuracy", acc)

	case core.EventSECO:
		m.run.Commit(t, acc, pts)
		m.st.Score += pts
		m.st.Rocket.Throttle = 0
		m.st.Rocket = m.sim.Update(m.st.Rocket, 0)
		m.st.OrbitAchieved = true
		m.ph = orbit{}
		m.log.Info("orbit achieved", "clock", util.FormatMissionTime(t), "accuracy", acc, "points", pts, "score", m.st.Score)
	}
}

// Snapshot assembles the full per-tick view for clients.
func (m *Machine) Snapshot() core.Snapshot {
	snap := core.Snapshot{
		Phase:          m.ph.display(),
		Rocket:         m.st.Rocket,
		Countdown:      m.st.Countdown,
		Score:          m.st.Score,
		Outcomes:       m.run.Outcomes(),
		FailReason:     m.st.FailReason,
		OrbitAchieved:  m.st.OrbitAchieved,
		SeparationTime: m.st.SeparationTime,
		MaxAltitude:    m.st.MaxAltitude,
		MaxVelocity:    m.st.MaxVelocity,
		MaxQ:           m.st.MaxQ,
	}

	if p, ok := m.ph.(awaitingEvent); ok {
		e := p.event
		snap.ActiveEvent = &e
		rem := e.Deadline() - m.st.Rocket.MissionTime
		if rem < 0 {
			rem = 0
		}
		snap.EventTimeRemaining = rem
	}

	if b := m.bst; b != nil {
		f := b.Flight
		snap.Booster = &f
		snap.BoosterPrompt = b.PromptShown
		snap.BoosterUnavailable = b.Unavailable
		if b.Result != nil {
			r := *b.Result
			snap.Landing = &r
		}
	}
	return snap
}
