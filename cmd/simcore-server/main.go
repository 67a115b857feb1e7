// simcore-server is the headless game host: it runs the launch
// simulation loop, streams snapshots to browser clients over WebSocket,
// and records telemetry to the configured backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/liftoff-sim/simcore/internal/api"
	"github.com/liftoff-sim/simcore/internal/config"
	"github.com/liftoff-sim/simcore/internal/database"
	"github.com/liftoff-sim/simcore/internal/dispatcher"
	"github.com/liftoff-sim/simcore/internal/game"
	"github.com/liftoff-sim/simcore/internal/geo"
	"github.com/liftoff-sim/simcore/internal/influx"
	"github.com/liftoff-sim/simcore/internal/logging"
	"github.com/liftoff-sim/simcore/internal/model"
	"github.com/liftoff-sim/simcore/internal/monitor"
	intOtel "github.com/liftoff-sim/simcore/internal/otel"
	"github.com/liftoff-sim/simcore/internal/server"
	"github.com/liftoff-sim/simcore/internal/telemetry"
	"github.com/liftoff-sim/simcore/pkg/core"
	"github.com/liftoff-sim/simcore/pkg/streaming"
)

// Version can be set at build time via ldflags.
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

// services
var (
	SlogManager  *logging.SlogManager
	Logger       *slog.Logger
	OTelProvider *intOtel.Provider

	dbManager     *database.Manager
	influxManager *influx.Manager
	influxEnabled bool

	backend         telemetry.Backend
	machine         *game.Machine
	hub             *server.Hub
	eventDispatcher *dispatcher.Dispatcher
	apiClient       *api.Client
	monitorService  *monitor.Service
)

// attempt bookkeeping, loop goroutine only
var (
	attemptActive bool
	attemptStart  time.Time
	attemptSeq    uint
	outcomesSeen  int
	landingSeen   bool
)

// commands carries decoded client input into the loop goroutine, where
// every handler runs. The machine never sees concurrent callers.
var commands = make(chan dispatcher.Event, 64)

// perfState is shared between the loop and the monitor goroutine.
type perfState struct {
	mu        sync.Mutex
	tickRate  float64
	lastWrite time.Duration
}

var perf perfState

func (p *perfState) record(dt float64, work time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if dt > 0 {
		p.tickRate = 0.9*p.tickRate + 0.1*(1/dt)
	}
	p.lastWrite = work
}

func (p *perfState) sample() model.PerfSample {
	p.mu.Lock()
	defer p.mu.Unlock()
	return model.PerfSample{
		AttemptID:       attemptSeq,
		TickRate:        p.tickRate,
		QueueDepth:      len(commands),
		LastWriteMillis: float32(p.lastWrite.Milliseconds()),
		Clients:         hub.ClientCount(),
	}
}

func main() {
	configDir := flag.String("config", ".", "directory containing simcore.cfg.json")
	flag.Parse()

	SlogManager = logging.NewSlogManager()
	if err := SlogManager.Setup("", "info", nil); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	Logger = SlogManager.Logger()

	if err := config.Load(*configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	logsDir := viper.GetString("logsDir")

	// OTel provider, feeding a file in the logs dir plus an optional
	// OTLP endpoint
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			Logger.Error("Failed to create logs dir", "error", err)
		}
		otelLogFile, err := os.OpenFile(
			filepath.Join(logsDir, "simcore.otel.log"),
			os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666,
		)
		if err != nil {
			Logger.Error("Failed to open OTel log file", "error", err)
		} else {
			OTelProvider, err = intOtel.New(intOtel.Config{
				Enabled:      otelCfg.Enabled,
				ServiceName:  otelCfg.ServiceName,
				BatchTimeout: otelCfg.BatchTimeout,
				LogWriter:    otelLogFile,
				Endpoint:     otelCfg.Endpoint,
				Insecure:     otelCfg.Insecure,
			})
			if err != nil {
				Logger.Error("Failed to initialize OTel provider", "error", err)
			} else {
				Logger.Info("OTel provider initialized")
			}
		}
	}

	// re-setup logging with the rotated file and the OTel bridge
	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	if err := SlogManager.Setup(logsDir, viper.GetString("logLevel"), otelLogProvider); err != nil {
		Logger.Error("Failed to re-setup logging", "error", err)
	}
	Logger = SlogManager.Logger()
	Logger.Info("Starting up...", "version", Version, "buildDate", BuildDate)

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	// attempt/perf store, Postgres with in-memory SQLite fallback
	dbManager = database.NewManager(zlog)
	if err := dbManager.Connect(); err != nil {
		Logger.Error("Database connection failed, attempt rows disabled", "error", err)
	} else if err := dbManager.Setup(); err != nil {
		Logger.Error("Database setup failed", "error", err)
	}
	if dbManager.ShouldSaveLocal {
		dbManager.SqliteFilePath = viper.GetString("db.localPath")
	}

	// live telemetry points
	influxEnabled = viper.GetBool("influx.enabled")
	if influxEnabled {
		backupDir := viper.GetString("influx.backupDir")
		if err := os.MkdirAll(backupDir, 0755); err != nil {
			Logger.Error("Failed to create influx backup dir", "error", err)
		}
		influxManager = influx.NewManager(zlog, filepath.Join(backupDir, "simcore_backup.lp.gz"))
		if err := influxManager.Connect(); err != nil {
			Logger.Error("InfluxDB connection failed", "error", err)
			influxEnabled = false
		}
	}

	// attempt recording backend
	var err error
	backend, err = telemetry.NewBackend(config.GetStorageConfig(), SlogManager)
	if err != nil {
		Logger.Error("Failed to create telemetry backend", "error", err)
		os.Exit(1)
	}
	if err := backend.Init(); err != nil {
		Logger.Error("Failed to initialize telemetry backend", "error", err)
		os.Exit(1)
	}

	if viper.GetBool("api.enabled") {
		apiClient = api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))
		if err := apiClient.Healthcheck(); err != nil {
			Logger.Info("Leaderboard frontend is offline", "error", err)
		} else {
			Logger.Info("Leaderboard frontend is online")
		}
	}

	machine = game.New(config.GetGameConfig(), Logger)

	eventDispatcher, err = dispatcher.New(logging.NewDispatcherLogger(Logger))
	if err != nil {
		Logger.Error("Failed to create dispatcher", "error", err)
		os.Exit(1)
	}
	registerLoopHandlers(eventDispatcher)

	srvCfg := config.GetServerConfig()
	hub = server.NewHub(Logger, queueInput)
	if err := hub.SetHello(streaming.HelloPayload{
		TickRate:     int(srvCfg.TickRate),
		Countdown:    viper.GetFloat64("game.countdown"),
		LaunchWindow: viper.GetFloat64("game.launchWindow"),
	}); err != nil {
		Logger.Error("Failed to build hello message", "error", err)
	}

	monitorService = monitor.NewService(monitor.Dependencies{
		DB:              dbManager.DB,
		LogManager:      SlogManager,
		StatusDir:       logsDir,
		Sample:          perf.sample,
		IsDatabaseValid: func() bool { return dbManager.IsValid },
		PerfSink: func(p model.PerfSample) {
			if !influxEnabled {
				return
			}
			_ = influxManager.WritePoint(context.Background(), influx.BucketLoopPerformance,
				influx.PerfPoint(p.TickRate, p.QueueDepth, p.Clients))
		},
	})
	if err := monitorService.Start(); err != nil {
		Logger.Error("Failed to start monitor", "error", err)
	}

	httpSrv := &http.Server{Addr: srvCfg.Bind, Handler: hub}
	go func() {
		Logger.Info("Listening for clients", "bind", srvCfg.Bind)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			Logger.Error("HTTP server failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runLoop(ctx, srvCfg.TickRate)

	Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	monitorService.Stop()
	_ = httpSrv.Shutdown(shutdownCtx)
	_ = hub.Close()
	if attemptActive {
		finalizeAttempt(machine.Snapshot())
	}
	if err := backend.Close(); err != nil {
		Logger.Error("Error closing telemetry backend", "error", err)
	}
	if dbManager.IsValid && dbManager.ShouldSaveLocal {
		if err := dbManager.DumpMemoryToDisk(); err != nil {
			Logger.Error("Failed to dump attempt DB to disk", "error", err)
		}
	}
	if influxManager != nil {
		_ = influxManager.Close()
	}
	if OTelProvider != nil {
		_ = OTelProvider.Shutdown(shutdownCtx)
	}
	_ = SlogManager.Close()
}

// queueInput maps a client message type onto a host command and queues
// it for the loop goroutine.
func queueInput(msgType string) {
	var cmd string
	switch msgType {
	case streaming.TypeAction:
		cmd = dispatcher.CmdAction
	case streaming.TypeRestart:
		cmd = dispatcher.CmdRestart
	default:
		return
	}

	select {
	case commands <- dispatcher.Event{Command: cmd, Timestamp: time.Now()}:
	default:
		Logger.Warn("Input queue full, dropping command", "command", cmd)
	}
}

// registerLoopHandlers wires the host commands. Dispatch only happens
// from the loop goroutine, so the handlers may touch the machine.
func registerLoopHandlers(d *dispatcher.Dispatcher) {
	d.Register(dispatcher.CmdAction, func(e dispatcher.Event) (any, error) {
		return machine.HandlePlayerAction(), nil
	}, dispatcher.Logged())

	d.Register(dispatcher.CmdRestart, func(e dispatcher.Event) (any, error) {
		if attemptActive {
			finalizeAttempt(machine.Snapshot())
		}
		machine.Reset()
		startAttempt()
		return "ok", nil
	}, dispatcher.Logged())

	d.Register(dispatcher.CmdState, func(e dispatcher.Event) (any, error) {
		return machine.Snapshot(), nil
	})

	d.Register(dispatcher.CmdFinalize, func(e dispatcher.Event) (any, error) {
		if !attemptActive {
			return nil, fmt.Errorf("no active attempt")
		}
		finalizeAttempt(machine.Snapshot())
		return "ok", nil
	})

	d.Register(dispatcher.CmdPerfStats, func(e dispatcher.Event) (any, error) {
		return perf.sample(), nil
	})
}

// runLoop is the single-writer game loop: variable timestep from
// measured wall time at a fixed tick cadence.
func runLoop(ctx context.Context, tickRate float64) {
	interval := time.Duration(float64(time.Second) / tickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	startAttempt()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			drainCommands()
			machine.Update(dt)

			workStart := time.Now()
			snap := machine.Snapshot()
			recordTick(snap)
			if err := hub.Broadcast(streaming.TypeSnapshot, snap); err != nil {
				Logger.Error("Snapshot broadcast failed", "error", err)
			}
			perf.record(dt, time.Since(workStart))

			if attemptActive && machine.Done() {
				finalizeAttempt(snap)
			}
		}
	}
}

func drainCommands() {
	for {
		select {
		case e := <-commands:
			if _, err := eventDispatcher.Dispatch(e); err != nil {
				Logger.Error("Command failed", "command", e.Command, "error", err)
			}
		default:
			return
		}
	}
}

func startAttempt() {
	pad := config.GetPadConfig()
	padX, padY := geo.PadLocation3857(pad.Longitude, pad.Latitude)

	attemptStart = time.Now()
	attemptSeq++
	outcomesSeen = 0
	landingSeen = false

	info := core.AttemptInfo{
		StartedAt: attemptStart,
		PadX:      padX,
		PadY:      padY,
		Pad:       geo.PadPoint3857(pad.Longitude, pad.Latitude).AsText(),
	}
	if err := backend.StartAttempt(&info); err != nil {
		Logger.Error("Failed to start attempt recording", "error", err)
	}
	attemptActive = true
	Logger.Info("Attempt started", "attempt", attemptSeq, "padX", padX, "padY", padY)
}

// recordTick feeds the telemetry backend and InfluxDB from one
// snapshot.
func recordTick(snap core.Snapshot) {
	if !attemptActive {
		return
	}

	if snap.Phase != core.PhasePreLaunch {
		if err := backend.RecordRocketSample(&snap.Rocket); err != nil {
			Logger.Error("Failed to record rocket sample", "error", err)
		}
	}
	if snap.Booster != nil {
		if err := backend.RecordBoosterSample(snap.Booster); err != nil {
			Logger.Error("Failed to record booster sample", "error", err)
		}
	}

	for ; outcomesSeen < len(snap.Outcomes); outcomesSeen++ {
		o := snap.Outcomes[outcomesSeen]
		if err := backend.RecordOutcome(&o); err != nil {
			Logger.Error("Failed to record outcome", "error", err)
		}
		if influxEnabled {
			_ = influxManager.WritePoint(context.Background(), influx.BucketGameEvents, influx.EventPoint(o))
		}
	}

	if snap.Landing != nil && !landingSeen {
		landingSeen = true
		if err := backend.RecordLanding(snap.Landing); err != nil {
			Logger.Error("Failed to record landing", "error", err)
		}
	}

	if influxEnabled {
		ctx := context.Background()
		if snap.Phase != core.PhasePreLaunch {
			_ = influxManager.WritePoint(ctx, influx.BucketFlightTelemetry,
				influx.FlightPoint("rocket", snap.Phase, snap.Rocket))
		}
		if snap.Booster != nil {
			_ = influxManager.WritePoint(ctx, influx.BucketFlightTelemetry,
				influx.FlightPoint("booster", snap.Phase, *snap.Booster))
		}
	}
}

// finalizeAttempt closes out recording, persists the attempt row and
// uploads the replay when a leaderboard is configured.
func finalizeAttempt(snap core.Snapshot) {
	attemptActive = false
	endedAt := time.Now()

	sum := core.AttemptSummary{
		EndedAt:        endedAt,
		Phase:          snap.Phase,
		Score:          snap.Score,
		FailReason:     snap.FailReason,
		OrbitAchieved:  snap.OrbitAchieved,
		SeparationTime: snap.SeparationTime,
		MaxAltitude:    snap.MaxAltitude,
		MaxVelocity:    snap.MaxVelocity,
		MaxQ:           snap.MaxQ,
		Outcomes:       snap.Outcomes,
		Landing:        snap.Landing,
	}
	if err := backend.EndAttempt(&sum); err != nil {
		Logger.Error("Failed to end attempt recording", "error", err)
	}

	if dbManager.IsValid {
		pad := config.GetPadConfig()
		padX, padY := geo.PadLocation3857(pad.Longitude, pad.Latitude)

		eventSummary, err := json.Marshal(sum.Outcomes)
		if err != nil {
			eventSummary = []byte("[]")
		}
		row := model.Attempt{
			StartedAt:      attemptStart,
			EndedAt:        endedAt,
			Phase:          string(sum.Phase),
			Score:          sum.Score,
			FailReason:     sum.FailReason,
			OrbitAchieved:  sum.OrbitAchieved,
			SeparationTime: sum.SeparationTime,
			MaxAltitude:    sum.MaxAltitude,
			MaxVelocity:    sum.MaxVelocity,
			MaxQ:           sum.MaxQ,
			EventSummary:   eventSummary,
			PadX:           padX,
			PadY:           padY,
		}
		if err := dbManager.DB.Create(&row).Error; err != nil {
			Logger.Error("Failed to persist attempt row", "error", err)
		}
	}

	if apiClient != nil {
		if up, ok := backend.(telemetry.Uploadable); ok && up.ExportedFilePath() != "" {
			if err := apiClient.Upload(up.ExportedFilePath(), up.ExportMetadata()); err != nil {
				Logger.Error("Replay upload failed", "error", err)
			} else {
				Logger.Info("Replay uploaded", "file", up.ExportedFilePath())
			}
		}
	}

	if err := hub.Broadcast(streaming.TypeAttemptEnd, sum); err != nil {
		Logger.Error("Attempt end broadcast failed", "error", err)
	}

	if OTelProvider != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := OTelProvider.Flush(flushCtx); err != nil {
			Logger.Warn("Failed to flush OTel data", "error", err)
		}
	}

	Logger.Info("Attempt finalized",
		"attempt", attemptSeq,
		"phase", string(sum.Phase),
		"score", sum.Score,
		"orbit", sum.OrbitAchieved)
}
