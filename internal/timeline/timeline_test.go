// internal/timeline/timeline_test.go
package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftoff-sim/simcore/pkg/core"
)

func TestDefaultScheduleOrdering(t *testing.T) {
	s := Default()
	require.Equal(t, 6, s.Len())
	for i := 1; i < s.Len(); i++ {
		assert.Greater(t, s.At(i).TriggerTime, s.At(i-1).TriggerTime)
	}

	sep, ok := s.Find(core.EventStageSep)
	require.True(t, ok)
	assert.True(t, sep.RequiresInput)
	assert.False(t, sep.Optional)
	assert.InDelta(t, 149.0, sep.Opens(), 1e-9)
	assert.InDelta(t, 157.0, sep.Deadline(), 1e-9)

	bb, ok := s.Find(core.EventBoostback)
	require.True(t, ok)
	assert.True(t, bb.Optional)

	_, ok = s.Find("NOT_A_THING")
	assert.False(t, ok)
}

func TestRunCursorMovesForwardOnly(t *testing.T) {
	s := Default()
	r := NewRun(s)

	e, ok := r.Current()
	require.True(t, ok)
	assert.Equal(t, core.EventMaxQ, e.ID)

	r.Commit(72, 0, 0)
	e, ok = r.Current()
	require.True(t, ok)
	assert.Equal(t, core.EventMECO, e.ID)

	r.Commit(145, 0, 0)
	r.Commit(153.5, 0.875, 88)
	r.Skip() // stage-2 ignition folded into the separation action
	r.Miss()
	r.Commit(480, 1, 100)

	assert.True(t, r.Done())
	_, ok = r.Current()
	assert.False(t, ok)

	out := r.Outcomes()
	require.Len(t, out, 5) // Skip records nothing
	assert.Equal(t, core.EventStageSep, out[2].ID)
	assert.Equal(t, 88, out[2].Points)
	assert.True(t, out[3].Missed)
	assert.Equal(t, core.EventBoostback, out[3].ID)

	// resolving past the end is a no-op
	r.Commit(500, 1, 100)
	r.Miss()
	assert.Len(t, r.Outcomes(), 5)
}

func TestRunDoesNotMutateSchedule(t *testing.T) {
	events := []core.GameEvent{
		{ID: "A", TriggerTime: 10, WindowSize: 2, RequiresInput: true},
		{ID: "B", TriggerTime: 20},
	}
	s := NewSchedule(events)
	events[0].TriggerTime = 999 // caller keeps its slice; the schedule holds a copy

	r1 := NewRun(s)
	r1.Commit(10, 1, 100)
	r1.Miss()

	r2 := NewRun(s)
	e, ok := r2.Current()
	require.True(t, ok)
	assert.Equal(t, core.EventID("A"), e.ID)
	assert.InDelta(t, 10.0, e.TriggerTime, 1e-9)
	assert.Empty(t, r2.Outcomes())
}

func TestAccuracy(t *testing.T) {
	e := core.GameEvent{TriggerTime: 153, WindowSize: 4, RequiresInput: true}

	tests := []struct {
		name string
		at   float64
		want float64
	}{
		{"exact", 153, 1},
		{"early half", 151, 0.5},
		{"late half", 155, 0.5},
		{"window edge", 157, 0},
		{"past edge clamps", 160, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Accuracy(e, tc.at), 1e-9)
		})
	}

	auto := core.GameEvent{TriggerTime: 72}
	assert.Zero(t, Accuracy(auto, 72))
}
