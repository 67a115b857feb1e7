// internal/telemetry/telemetry.go
package telemetry

import "github.com/liftoff-sim/simcore/pkg/core"

// Backend is the interface all telemetry sinks must satisfy. The host
// starts one attempt at a time; samples and outcomes arrive from the
// loop goroutine only.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Attempt management
	StartAttempt(info *core.AttemptInfo) error
	EndAttempt(sum *core.AttemptSummary) error

	// Per-tick recording
	RecordRocketSample(f *core.FlightData) error
	RecordBoosterSample(f *core.FlightData) error

	// Event recording
	RecordOutcome(o *core.EventOutcome) error
	RecordLanding(l *core.LandingResult) error
}

// Uploadable is an optional interface for backends that produce a
// replay file suitable for upload to a leaderboard.
type Uploadable interface {
	ExportedFilePath() string
	ExportMetadata() core.AttemptSummary
}
