// internal/telemetry/factory.go
package telemetry

import (
	"fmt"

	"github.com/liftoff-sim/simcore/internal/config"
	"github.com/liftoff-sim/simcore/internal/logging"
	"github.com/liftoff-sim/simcore/internal/telemetry/memory"
	"github.com/liftoff-sim/simcore/internal/telemetry/sqlitestore"
)

// NewBackend creates a telemetry backend based on configuration.
func NewBackend(cfg config.StorageConfig, logManager *logging.SlogManager) (Backend, error) {
	switch cfg.Type {
	case "sqlite":
		return sqlitestore.New(cfg.SQLite, logManager)
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
