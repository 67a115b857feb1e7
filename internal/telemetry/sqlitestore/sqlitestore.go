// Package sqlitestore implements the telemetry.Backend interface on an
// in-memory SQLite database with periodic disk dumps via VACUUM INTO.
// Flight samples are staged in a queue and written in batches so the
// game loop never waits on an insert.
package sqlitestore

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/liftoff-sim/simcore/internal/config"
	"github.com/liftoff-sim/simcore/internal/database"
	"github.com/liftoff-sim/simcore/internal/logging"
	"github.com/liftoff-sim/simcore/internal/model"
	"github.com/liftoff-sim/simcore/internal/queue"
	"github.com/liftoff-sim/simcore/pkg/core"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	vehicleRocket  = "rocket"
	vehicleBooster = "booster"
)

// Backend stores attempts in an in-memory SQLite database.
type Backend struct {
	db  *gorm.DB
	cfg config.SQLiteConfig
	log *logging.SlogManager

	mu       sync.Mutex
	attempt  *model.Attempt
	samples  *queue.Queue[model.FlightSample]
	stopChan chan struct{}
}

// New creates a new SQLite telemetry backend.
func New(cfg config.SQLiteConfig, logManager *logging.SlogManager) (*Backend, error) {
	db, err := database.GetSqliteDBStandalone("")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}

	return &Backend{
		db:       db,
		cfg:      cfg,
		log:      logManager,
		samples:  queue.New[model.FlightSample](),
		stopChan: make(chan struct{}),
	}, nil
}

// Init migrates the schema and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if b.cfg.DumpDir != "" && b.cfg.DumpInterval > 0 {
		go b.dumpLoop()
	}

	return nil
}

// Close stops the dump goroutine and flushes staged samples.
func (b *Backend) Close() error {
	close(b.stopChan)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.flushLocked(); err != nil {
		return err
	}

	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// StartAttempt creates the attempt row.
func (b *Backend) StartAttempt(info *core.AttemptInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.flushLocked(); err != nil {
		return err
	}

	a := &model.Attempt{
		StartedAt: info.StartedAt,
		PadX:      info.PadX,
		PadY:      info.PadY,
	}
	if err := b.db.Create(a).Error; err != nil {
		return fmt.Errorf("creating attempt row: %w", err)
	}
	b.attempt = a
	return nil
}

// RecordRocketSample stages a primary vehicle tick.
func (b *Backend) RecordRocketSample(f *core.FlightData) error {
	return b.stage(vehicleRocket, f)
}

// RecordBoosterSample stages a booster tick.
func (b *Backend) RecordBoosterSample(f *core.FlightData) error {
	return b.stage(vehicleBooster, f)
}

func (b *Backend) stage(vehicle string, f *core.FlightData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.attempt == nil {
		return nil
	}

	b.samples.Push(model.FlightSample{
		AttemptID:       b.attempt.ID,
		Vehicle:         vehicle,
		MissionTime:     f.MissionTime,
		Altitude:        f.Altitude,
		Velocity:        f.Velocity,
		Acceleration:    f.Acceleration,
		Mass:            f.Mass,
		Fuel:            f.Fuel,
		Stage:           uint8(f.Stage),
		Throttle:        f.Throttle,
		DynamicPressure: f.DynamicPressure,
	})

	if b.cfg.BatchSize > 0 && b.samples.Len() >= b.cfg.BatchSize {
		return b.flushLocked()
	}
	return nil
}

// RecordOutcome writes a resolved event.
func (b *Backend) RecordOutcome(o *core.EventOutcome) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.attempt == nil {
		return nil
	}

	return b.db.Create(&model.EventResult{
		AttemptID:  b.attempt.ID,
		EventID:    string(o.ID),
		ActionTime: o.ActionTime,
		Accuracy:   o.Accuracy,
		Points:     o.Points,
		Missed:     o.Missed,
	}).Error
}

// RecordLanding writes the booster touchdown classification.
func (b *Backend) RecordLanding(l *core.LandingResult) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.attempt == nil {
		return nil
	}

	return b.db.Create(&model.LandingRecord{
		AttemptID:         b.attempt.ID,
		TouchdownVelocity: l.TouchdownVelocity,
		Landed:            l.Landed,
		Accuracy:          l.Accuracy,
		Stars:             l.Stars,
		Bonus:             l.Bonus,
	}).Error
}

// EndAttempt flushes staged samples and finalizes the attempt row.
func (b *Backend) EndAttempt(sum *core.AttemptSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.attempt == nil {
		return fmt.Errorf("no active attempt")
	}

	if err := b.flushLocked(); err != nil {
		return err
	}

	summary, err := json.Marshal(sum.Outcomes)
	if err != nil {
		return fmt.Errorf("encoding event summary: %w", err)
	}

	a := b.attempt
	a.EndedAt = sum.EndedAt
	a.Phase = string(sum.Phase)
	a.Score = sum.Score
	a.FailReason = sum.FailReason
	a.OrbitAchieved = sum.OrbitAchieved
	a.SeparationTime = sum.SeparationTime
	a.MaxAltitude = sum.MaxAltitude
	a.MaxVelocity = sum.MaxVelocity
	a.MaxQ = sum.MaxQ
	a.EventSummary = datatypes.JSON(summary)

	if err := b.db.Save(a).Error; err != nil {
		return fmt.Errorf("finalizing attempt row: %w", err)
	}
	b.attempt = nil
	return nil
}

// flushLocked writes all staged samples. Caller holds the lock.
func (b *Backend) flushLocked() error {
	items := b.samples.Drain()
	if len(items) == 0 {
		return nil
	}
	if err := b.db.Create(&items).Error; err != nil {
		return fmt.Errorf("writing %d samples: %w", len(items), err)
	}
	return nil
}

// dumpLoop periodically snapshots the in-memory database to disk.
func (b *Backend) dumpLoop() {
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	path := filepath.Join(b.cfg.DumpDir, "attempts.db")

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := database.DumpMemoryDBToDisk(b.db, path); err != nil {
				b.log.Logger().Error("sqlite dump failed", "error", err)
			} else {
				b.log.Logger().Debug("sqlite dump complete", "duration", time.Since(start))
			}
		}
	}
}
