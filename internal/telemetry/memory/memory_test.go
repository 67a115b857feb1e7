// internal/telemetry/memory/memory_test.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftoff-sim/simcore/internal/config"
	"github.com/liftoff-sim/simcore/pkg/core"
)

func record(t *testing.T, b *Backend) core.AttemptSummary {
	t.Helper()

	started := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	require.NoError(t, b.StartAttempt(&core.AttemptInfo{
		StartedAt: started,
		PadX:      -8974432,
		PadY:      3323812,
		Pad:       "POINT Z (-8974432 3323812 0)",
	}))

	for i := 0; i < 5; i++ {
		require.NoError(t, b.RecordRocketSample(&core.FlightData{
			MissionTime: float64(i),
			Altitude:    float64(i) * 40,
			Velocity:    float64(i) * 12,
			Stage:       core.Stage1,
		}))
	}
	require.NoError(t, b.RecordBoosterSample(&core.FlightData{MissionTime: 160, Altitude: 67000, Stage: core.Stage1}))
	require.NoError(t, b.RecordOutcome(&core.EventOutcome{ID: core.EventStageSep, ActionTime: 153, Accuracy: 1, Points: 100}))
	require.NoError(t, b.RecordLanding(&core.LandingResult{TouchdownVelocity: 1.2, Landed: true, Stars: 5, Bonus: 500}))

	sum := core.AttemptSummary{
		EndedAt:       started.Add(8 * time.Minute),
		Phase:         core.PhaseOrbit,
		Score:         700,
		OrbitAchieved: true,
	}
	require.NoError(t, b.EndAttempt(&sum))
	return sum
}

func TestRecordAndExportCompressed(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true})
	require.NoError(t, b.Init())

	sum := record(t, b)

	path := b.ExportedFilePath()
	require.NotEmpty(t, path)
	assert.Contains(t, path, "attempt_20260823_120000.json.gz")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	var replay Replay
	require.NoError(t, json.NewDecoder(gz).Decode(&replay))
	assert.Len(t, replay.Rocket, 5)
	assert.Len(t, replay.Booster, 1)
	require.Len(t, replay.Outcomes, 1)
	assert.Equal(t, core.EventStageSep, replay.Outcomes[0].ID)
	require.NotNil(t, replay.Landing)
	assert.Equal(t, 5, replay.Landing.Stars)
	require.NotNil(t, replay.Summary)
	assert.Equal(t, sum.Score, replay.Summary.Score)
	assert.Equal(t, "POINT Z (-8974432 3323812 0)", replay.Info.Pad)
	assert.True(t, strings.HasPrefix(replay.AscentProfile, "LINESTRING"))

	meta := b.ExportMetadata()
	assert.Equal(t, core.PhaseOrbit, meta.Phase)
	assert.True(t, meta.OrbitAchieved)
}

func TestRecordAndExportPlain(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: false})
	require.NoError(t, b.Init())

	record(t, b)

	path := b.ExportedFilePath()
	require.NotEmpty(t, path)
	assert.Contains(t, path, ".json")
	assert.NotContains(t, path, ".gz")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var replay Replay
	require.NoError(t, json.Unmarshal(raw, &replay))
	assert.Len(t, replay.Rocket, 5)
}

func TestSamplesIgnoredOutsideAttempt(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	require.NoError(t, b.Init())

	require.NoError(t, b.RecordRocketSample(&core.FlightData{MissionTime: 1}))
	assert.Empty(t, b.Snapshot().Rocket)

	require.Error(t, b.EndAttempt(&core.AttemptSummary{}))
}

func TestStartAttemptResetsBuffer(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	require.NoError(t, b.Init())

	record(t, b)
	require.NoError(t, b.StartAttempt(&core.AttemptInfo{StartedAt: time.Now()}))
	assert.Empty(t, b.Snapshot().Rocket)
	assert.Nil(t, b.Snapshot().Summary)
}
