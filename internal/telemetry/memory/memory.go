// internal/telemetry/memory/memory.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/liftoff-sim/simcore/internal/config"
	"github.com/liftoff-sim/simcore/internal/geo"
	"github.com/liftoff-sim/simcore/pkg/core"
)

// Replay is the exported shape of one attempt: everything a viewer
// needs to play the flight back.
type Replay struct {
	Info     core.AttemptInfo     `json:"info"`
	Rocket   []core.FlightData    `json:"rocket"`
	Booster  []core.FlightData    `json:"booster,omitempty"`
	Outcomes []core.EventOutcome  `json:"outcomes"`
	Landing  *core.LandingResult  `json:"landing,omitempty"`
	Summary  *core.AttemptSummary `json:"summary,omitempty"`

	// AscentProfile is the rocket's time/altitude curve as a WKT
	// LineString, ready for a viewer to plot.
	AscentProfile string `json:"ascentProfile,omitempty"`
}

// Backend keeps the attempt in memory and exports a JSON replay file
// (optionally gzipped) when the attempt ends.
type Backend struct {
	cfg config.MemoryConfig

	replay   Replay
	active   bool
	exported string
	mu       sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init creates the output directory.
func (b *Backend) Init() error {
	return os.MkdirAll(b.cfg.OutputDir, 0755)
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartAttempt begins recording a new attempt, discarding any
// unfinished one.
func (b *Backend) StartAttempt(info *core.AttemptInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.replay = Replay{Info: *info}
	b.active = true
	b.exported = ""
	return nil
}

// RecordRocketSample appends a primary vehicle tick.
func (b *Backend) RecordRocketSample(f *core.FlightData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return nil
	}
	b.replay.Rocket = append(b.replay.Rocket, *f)
	return nil
}

// RecordBoosterSample appends a booster tick.
func (b *Backend) RecordBoosterSample(f *core.FlightData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return nil
	}
	b.replay.Booster = append(b.replay.Booster, *f)
	return nil
}

// RecordOutcome appends a resolved event.
func (b *Backend) RecordOutcome(o *core.EventOutcome) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return nil
	}
	b.replay.Outcomes = append(b.replay.Outcomes, *o)
	return nil
}

// RecordLanding stores the booster touchdown classification.
func (b *Backend) RecordLanding(l *core.LandingResult) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return nil
	}
	landing := *l
	b.replay.Landing = &landing
	return nil
}

// EndAttempt finalizes and exports the replay file.
func (b *Backend) EndAttempt(sum *core.AttemptSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return fmt.Errorf("no active attempt")
	}

	summary := *sum
	b.replay.Summary = &summary
	b.active = false
	return b.exportJSON()
}

// exportJSON writes the replay to OutputDir. Caller holds the lock.
func (b *Backend) exportJSON() error {
	if profile, err := geo.AltitudeProfile(b.replay.Rocket); err == nil {
		b.replay.AscentProfile = profile.AsText()
	}

	name := fmt.Sprintf("attempt_%s.json", b.replay.Info.StartedAt.UTC().Format("20060102_150405"))
	if b.cfg.CompressOutput {
		name += ".gz"
	}
	path := filepath.Join(b.cfg.OutputDir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating replay file: %w", err)
	}
	defer f.Close()

	if b.cfg.CompressOutput {
		gz := gzip.NewWriter(f)
		if err := json.NewEncoder(gz).Encode(b.replay); err != nil {
			gz.Close()
			return fmt.Errorf("encoding replay: %w", err)
		}
		if err := gz.Close(); err != nil {
			return fmt.Errorf("flushing replay: %w", err)
		}
	} else {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(b.replay); err != nil {
			return fmt.Errorf("encoding replay: %w", err)
		}
	}

	b.exported = path
	return nil
}

// ExportedFilePath returns the path of the last exported replay.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.exported
}

// ExportMetadata returns the summary of the last finished attempt.
func (b *Backend) ExportMetadata() core.AttemptSummary {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.replay.Summary == nil {
		return core.AttemptSummary{}
	}
	return *b.replay.Summary
}

// Snapshot returns a copy of the current replay buffer, mainly for
// tests and the state query command.
func (b *Backend) Snapshot() Replay {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.replay
}
