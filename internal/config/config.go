package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/liftoff-sim/simcore/internal/booster"
	"github.com/liftoff-sim/simcore/internal/game"
	"github.com/liftoff-sim/simcore/internal/sim"
	"github.com/liftoff-sim/simcore/internal/timeline"
)

// MemoryConfig holds in-memory/JSON telemetry backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds sqlite telemetry backend settings
type SQLiteConfig struct {
	DumpDir      string        `json:"dumpDir" mapstructure:"dumpDir"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	BatchSize    int           `json:"batchSize" mapstructure:"batchSize"`
}

// StorageConfig selects and configures the telemetry backend
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// OTelConfig holds OpenTelemetry export settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// ServerConfig holds the websocket host settings
type ServerConfig struct {
	Bind     string  `json:"bind" mapstructure:"bind"`
	TickRate float64 `json:"tickRate" mapstructure:"tickRate"` // Hz
}

// PadConfig is the launch pad position (EPSG:4326)
type PadConfig struct {
	Latitude  float64 `json:"latitude" mapstructure:"latitude"`
	Longitude float64 `json:"longitude" mapstructure:"longitude"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./simlogs")

	viper.SetDefault("server.bind", ":8230")
	viper.SetDefault("server.tickRate", 30)

	viper.SetDefault("game.countdown", 10.0)
	viper.SetDefault("game.launchWindow", 8.0)
	viper.SetDefault("game.maxQDisplay", 4.0)

	v := sim.Default()
	viper.SetDefault("vehicle.stage1DryMass", v.Stage1DryMass)
	viper.SetDefault("vehicle.stage1PropMass", v.Stage1PropMass)
	viper.SetDefault("vehicle.stage1MassFlow", v.Stage1MassFlow)
	viper.SetDefault("vehicle.stage1IspSea", v.Stage1IspSea)
	viper.SetDefault("vehicle.stage1IspVac", v.Stage1IspVac)
	viper.SetDefault("vehicle.stage2DryMass", v.Stage2DryMass)
	viper.SetDefault("vehicle.stage2PropMass", v.Stage2PropMass)
	viper.SetDefault("vehicle.stage2Thrust", v.Stage2Thrust)
	viper.SetDefault("vehicle.stage2Isp", v.Stage2Isp)
	viper.SetDefault("vehicle.dragCoefficient", v.DragCoefficient)
	viper.SetDefault("vehicle.crossSection", v.CrossSection)

	b := booster.DefaultConfig()
	viper.SetDefault("booster.boostbackThrust", b.BoostbackThrust)
	viper.SetDefault("booster.boostbackDuration", b.BoostbackDuration)
	viper.SetDefault("booster.entryBurnStart", b.EntryBurnStart)
	viper.SetDefault("booster.entryBurnEnd", b.EntryBurnEnd)
	viper.SetDefault("booster.entryThrottle", b.EntryThrottle)
	viper.SetDefault("booster.landingThrust", b.LandingThrust)
	viper.SetDefault("booster.promptAltitude", b.PromptAltitude)
	viper.SetDefault("booster.cutoffVelocity", b.CutoffVelocity)
	viper.SetDefault("booster.landedVelocity", b.LandedVelocity)
	viper.SetDefault("booster.fiveStarVelocity", b.FiveStarVelocity)
	viper.SetDefault("booster.fourStarVelocity", b.FourStarVelocity)

	viper.SetDefault("pad.latitude", 28.6084)
	viper.SetDefault("pad.longitude", -80.6043)

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "simcore")
	viper.SetDefault("db.localPath", "./simcore_local.db")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "simcore-metrics")
	viper.SetDefault("influx.backupDir", "./influx-backup")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./attempts")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpDir", "./attempts")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.batchSize", 256)

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "simcore")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetConfigName("simcore.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetVehicleParams returns the vehicle tuning.
func GetVehicleParams() sim.VehicleParams {
	return sim.VehicleParams{
		Stage1DryMass:   viper.GetFloat64("vehicle.stage1DryMass"),
		Stage1PropMass:  viper.GetFloat64("vehicle.stage1PropMass"),
		Stage1MassFlow:  viper.GetFloat64("vehicle.stage1MassFlow"),
		Stage1IspSea:    viper.GetFloat64("vehicle.stage1IspSea"),
		Stage1IspVac:    viper.GetFloat64("vehicle.stage1IspVac"),
		Stage2DryMass:   viper.GetFloat64("vehicle.stage2DryMass"),
		Stage2PropMass:  viper.GetFloat64("vehicle.stage2PropMass"),
		Stage2Thrust:    viper.GetFloat64("vehicle.stage2Thrust"),
		Stage2Isp:       viper.GetFloat64("vehicle.stage2Isp"),
		DragCoefficient: viper.GetFloat64("vehicle.dragCoefficient"),
		CrossSection:    viper.GetFloat64("vehicle.crossSection"),
	}
}

// GetBoosterConfig returns the booster recovery tuning.
func GetBoosterConfig() booster.Config {
	return booster.Config{
		BoostbackThrust:   viper.GetFloat64("booster.boostbackThrust"),
		BoostbackDuration: viper.GetFloat64("booster.boostbackDuration"),
		EntryBurnStart:    viper.GetFloat64("booster.entryBurnStart"),
		EntryBurnEnd:      viper.GetFloat64("booster.entryBurnEnd"),
		EntryThrottle:     viper.GetFloat64("booster.entryThrottle"),
		LandingThrust:     viper.GetFloat64("booster.landingThrust"),
		PromptAltitude:    viper.GetFloat64("booster.promptAltitude"),
		CutoffVelocity:    viper.GetFloat64("booster.cutoffVelocity"),
		LandedVelocity:    viper.GetFloat64("booster.landedVelocity"),
		FiveStarVelocity:  viper.GetFloat64("booster.fiveStarVelocity"),
		FourStarVelocity:  viper.GetFloat64("booster.fourStarVelocity"),
	}
}

// GetGameConfig assembles the full mission configuration, including
// the stock event schedule.
func GetGameConfig() game.Config {
	return game.Config{
		Countdown:    viper.GetFloat64("game.countdown"),
		LaunchWindow: viper.GetFloat64("game.launchWindow"),
		MaxQDisplay:  viper.GetFloat64("game.maxQDisplay"),
		Vehicle:      GetVehicleParams(),
		Booster:      GetBoosterConfig(),
		Schedule:     timeline.Default(),
	}
}

// GetStorageConfig returns the telemetry backend selection.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			DumpDir:      viper.GetString("storage.sqlite.dumpDir"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			BatchSize:    viper.GetInt("storage.sqlite.batchSize"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry export settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetServerConfig returns the websocket host settings.
func GetServerConfig() ServerConfig {
	return ServerConfig{
		Bind:     viper.GetString("server.bind"),
		TickRate: viper.GetFloat64("server.tickRate"),
	}
}

// GetPadConfig returns the launch pad position.
func GetPadConfig() PadConfig {
	return PadConfig{
		Latitude:  viper.GetFloat64("pad.latitude"),
		Longitude: viper.GetFloat64("pad.longitude"),
	}
}
