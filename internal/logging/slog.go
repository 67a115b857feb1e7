package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SlogManager owns the process logger: console plus a size-rotated
// file, with an optional OTel bridge.
type SlogManager struct {
	logger *slog.Logger

	file        *lumberjack.Logger
	logProvider *sdklog.LoggerProvider
}

// NewSlogManager creates an unconfigured manager; call Setup before use.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup wires the handlers. logsDir receives a rotated simcore.log;
// if provider is nil, OTel logging is disabled.
func (m *SlogManager) Setup(logsDir, level string, provider *sdklog.LoggerProvider) error {
	lvl := parseLevel(level)
	m.logProvider = provider

	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler
	handlers = append(handlers, slog.NewTextHandler(os.Stdout, handlerOpts))

	if logsDir != "" {
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return err
		}
		m.file = &lumberjack.Logger{
			Filename:   filepath.Join(logsDir, "simcore.log"),
			MaxSize:    25, // MB
			MaxBackups: 5,
			Compress:   true,
		}
		handlers = append(handlers, slog.NewTextHandler(m.file, handlerOpts))
	}

	if provider != nil {
		handlers = append(handlers, otelslog.NewHandler("simcore", otelslog.WithLoggerProvider(provider)))
	}

	m.logger = slog.New(NewMultiHandler(handlers...))
	m.logger.Info("Logging initialized", "level", level)
	return nil
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}

// Close releases the rotated log file.
func (m *SlogManager) Close() error {
	if m.file != nil {
		return m.file.Close()
	}
	return nil
}
