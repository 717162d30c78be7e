package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// osStdout is the console sink used when no log file is configured.
var osStdout io.Writer = os.Stdout

// SlogManager owns the process logger. Setup may be called again once the configuration is
// known; loggers handed out earlier keep writing to the old sinks.
type SlogManager struct {
	logger          *slog.Logger
	logProvider     *sdklog.LoggerProvider
	contextProvider ContextProvider
}

func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// SetContextProvider registers a source of dynamic attributes. It takes effect on the next Setup.
func (m *SlogManager) SetContextProvider(p ContextProvider) {
	m.contextProvider = p
}

// parseLevel accepts debug, info, warn and error in any case; anything else is info.
func parseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.TimeKey {
		return a
	}
	if t, ok := a.Value.Any().(time.Time); ok {
		a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
	}
	return a
}

// Setup routes records to file, or stdout when file is nil, as text; to gelfWriter as JSON;
// and to the OTel bridge when provider is set.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider, gelfWriter io.Writer) {
	opts := &slog.HandlerOptions{Level: parseLevel(level), ReplaceAttr: utcTime}
	m.logProvider = provider

	console := file
	if console == nil {
		console = osStdout
	}
	sinks := []slog.Handler{slog.NewTextHandler(console, opts)}
	if gelfWriter != nil {
		sinks = append(sinks, slog.NewJSONHandler(gelfWriter, opts))
	}
	if provider != nil {
		sinks = append(sinks, otelslog.NewHandler("rasim", otelslog.WithLoggerProvider(provider)))
	}

	var handler slog.Handler = NewMultiHandler(sinks...)
	if m.contextProvider != nil {
		handler = NewContextHandler(handler, m.contextProvider)
	}
	m.logger = slog.New(handler)
	m.logger.Info("Logging initialized", "level", level, "sinks", len(sinks))
}

// Logger returns the configured logger, or slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush exports buffered OTel records.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider == nil {
		return nil
	}
	return m.logProvider.ForceFlush(ctx)
}

// WriteLog logs data at the named level, tagged with the function that produced it. The storage
// writers use it from their background goroutines.
func (m *SlogManager) WriteLog(functionName, data, level string) {
	if m.logger == nil {
		return
	}
	m.logger.Log(context.Background(), parseLevel(level), data, "function", functionName)
}
