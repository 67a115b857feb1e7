package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/////////////////////////
// DATABASE STRUCTURES //
/////////////////////////

// DatabaseModels lists every struct here that maps to a table.
var DatabaseModels = []interface{}{
	&Attempt{},
	&FlightSample{},
	&EventResult{},
	&LandingRecord{},
	&PerfSample{},
}

// Attempt is one mission attempt from countdown to a terminal phase.
// EventSummary holds the resolved event outcomes as a JSON array so a
// leaderboard row can be rendered without joining event_results.
type Attempt struct {
	gorm.Model
	StartedAt      time.Time      `json:"startedAt" gorm:"index:idx_attempt_started_at"`
	EndedAt        time.Time      `json:"endedAt"`
	Phase          string         `json:"phase" gorm:"size:32"`
	Score          int            `json:"score"`
	FailReason     string         `json:"failReason" gorm:"size:255"`
	OrbitAchieved  bool           `json:"orbitAchieved"`
	SeparationTime float64        `json:"separationTime"`
	MaxAltitude    float64        `json:"maxAltitude"`
	MaxVelocity    float64        `json:"maxVelocity"`
	MaxQ           float64        `json:"maxQ"`
	EventSummary   datatypes.JSON `json:"eventSummary" gorm:"default:'[]'"`

	// launch pad position, EPSG:3857 meters
	PadX float64 `json:"padX"`
	PadY float64 `json:"padY"`

	Samples []FlightSample `json:"-"`
	Events  []EventResult  `json:"-"`
}

func (*Attempt) TableName() string {
	return "attempts"
}

// FlightSample is one integrator tick of one vehicle.
type FlightSample struct {
	ID        uint   `json:"id" gorm:"primarykey"`
	AttemptID uint   `json:"attemptId" gorm:"index:idx_flightsample_attempt_id"`
	Vehicle   string `json:"vehicle" gorm:"size:16"` // rocket | booster

	MissionTime     float64 `json:"missionTime" gorm:"index:idx_flightsample_mission_time"`
	Altitude        float64 `json:"altitude"`
	Velocity        float64 `json:"velocity"`
	Acceleration    float64 `json:"acceleration"`
	Mass            float64 `json:"mass"`
	Fuel            float64 `json:"fuel"`
	Stage           uint8   `json:"stage"`
	Throttle        float64 `json:"throttle"`
	DynamicPressure float64 `json:"dynamicPressure"`
}

func (*FlightSample) TableName() string {
	return "flight_samples"
}

// EventResult is the resolution of one scheduled mission event.
type EventResult struct {
	ID        uint `json:"id" gorm:"primarykey"`
	AttemptID uint `json:"attemptId" gorm:"index:idx_eventresult_attempt_id"`

	EventID    string  `json:"eventId" gorm:"size:32"`
	ActionTime float64 `json:"actionTime"`
	Accuracy   float64 `json:"accuracy"`
	Points     int     `json:"points"`
	Missed     bool    `json:"missed"`
}

func (*EventResult) TableName() string {
	return "event_results"
}

// LandingRecord is the booster touchdown classification.
type LandingRecord struct {
	ID        uint `json:"id" gorm:"primarykey"`
	AttemptID uint `json:"attemptId" gorm:"index:idx_landingrecord_attempt_id"`

	TouchdownVelocity float64 `json:"touchdownVelocity"`
	Landed            bool    `json:"landed"`
	Accuracy          float64 `json:"accuracy"`
	Stars             int     `json:"stars"`
	Bonus             int     `json:"bonus"`
}

func (*LandingRecord) TableName() string {
	return "landing_records"
}

// PerfSample is a loop performance row written by the monitor.
type PerfSample struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Time      time.Time `json:"time" gorm:"index:idx_perfsample_time"`
	AttemptID uint      `json:"attemptId"`

	TickRate        float64 `json:"tickRate"` // achieved Hz over the window
	QueueDepth      int     `json:"queueDepth"`
	LastWriteMillis float32 `json:"lastWriteMillis"`
	Clients         int     `json:"clients"`
}

func (*PerfSample) TableName() string {
	return "perf_samples"
}
