// Package monitor runs the background status goroutine. Once a second
// it samples loop health (tick rate, staging queue depth, connected
// clients), mirrors it to a status file for quick inspection, and
// persists a performance row when the database is reachable.
package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/liftoff-sim/simcore/internal/logging"
	"github.com/liftoff-sim/simcore/internal/model"
)

// Dependencies holds all dependencies for the monitor service.
type Dependencies struct {
	DB              *gorm.DB
	LogManager      *logging.SlogManager
	StatusDir       string
	Sample          func() model.PerfSample
	IsDatabaseValid func() bool

	// PerfSink, when set, receives every sample for shipping to an
	// external metrics store.
	PerfSink func(model.PerfSample)
}

// Service manages status monitoring.
type Service struct {
	deps      Dependencies
	interval  time.Duration
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service.
func NewService(deps Dependencies) *Service {
	return &Service{
		deps:     deps,
		interval: time.Second,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Status renders the current sample for the status file.
func (s *Service) Status() (string, model.PerfSample) {
	perf := s.deps.Sample()
	perf.Time = time.Now()

	raw, err := json.MarshalIndent(perf, "", "  ")
	if err != nil {
		raw = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
	}
	return string(raw), perf
}

// Start starts the status monitor goroutine.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor goroutine", "function", "monitor.Start")

		statusFile, err := os.Create(s.deps.StatusDir + "/status.txt")
		if err != nil {
			logger.Error("Error creating status file", "error", err)
		}
		defer statusFile.Close()

		for {
			select {
			case <-s.stopChan:
				return
			default:
				time.Sleep(s.interval)

				statusStr, perf := s.Status()

				if statusFile != nil {
					statusFile.Truncate(0)
					statusFile.Seek(0, 0)
					statusFile.WriteString(statusStr + "\n")
				}

				if s.deps.IsDatabaseValid() {
					if err := s.deps.DB.Create(&perf).Error; err != nil {
						logger.Error("Error writing perf sample", "error", err)
					}
				}

				if s.deps.PerfSink != nil {
					s.deps.PerfSink(perf)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}
