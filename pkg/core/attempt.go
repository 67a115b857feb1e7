// pkg/core/attempt.go
package core

import "time"

// AttemptInfo is the metadata captured when an attempt starts.
type AttemptInfo struct {
	StartedAt time.Time `json:"startedAt"`

	// launch pad position, EPSG:3857 meters
	PadX float64 `json:"padX"`
	PadY float64 `json:"padY"`

	// Pad is the pad position as WKT, for viewers that draw a map.
	Pad string `json:"pad,omitempty"`
}

// AttemptSummary is the final result of a finished attempt.
type AttemptSummary struct {
	EndedAt        time.Time      `json:"endedAt"`
	Phase          Phase          `json:"phase"`
	Score          int            `json:"score"`
	FailReason     string         `json:"failReason,omitempty"`
	OrbitAchieved  bool           `json:"orbitAchieved"`
	SeparationTime float64        `json:"separationTime"`
	MaxAltitude    float64        `json:"maxAltitude"`
	MaxVelocity    float64        `json:"maxVelocity"`
	MaxQ           float64        `json:"maxQ"`
	Outcomes       []EventOutcome `json:"outcomes"`
	Landing        *LandingResult `json:"landing,omitempty"`
}
