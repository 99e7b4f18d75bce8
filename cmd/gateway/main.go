// Command gateway runs the cloud-connectivity core as a standalone process:
// the Connection State Machine plus an in-memory transport/storage pair
// standing in for the real CoAP/DTLS stack and on-device storage engine
// (both out of scope for this module, per SPEC_FULL §1).
//
// Usage:
//
//	gateway [flags]
//
// Flags:
//
//	-config string        Gateway YAML configuration file (defaults built in if absent)
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-protocol-log string  File path for protocol event logging (CBOR format)
//	-simulate             Drive a synthetic network/storage feed (default true)
//	-interactive          Replace the synthetic feed with a readline command prompt
//
// Examples:
//
//	# Run with the synthetic feed and default configuration
//	gateway
//
//	# Run against a configuration file, logging protocol events to disk
//	gateway -config gateway.yaml -protocol-log /var/log/gateway.cbor
//
//	# Drive the core by hand
//	gateway -interactive
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tracker-fw/cloud-gateway/pkg/config"
	"github.com/tracker-fw/cloud-gateway/pkg/fatal"
	"github.com/tracker-fw/cloud-gateway/pkg/gateway"
	"github.com/tracker-fw/cloud-gateway/pkg/messages"
	"github.com/tracker-fw/cloud-gateway/pkg/protolog"
	"github.com/tracker-fw/cloud-gateway/pkg/storage"
	"github.com/tracker-fw/cloud-gateway/pkg/storagefake"
	"github.com/tracker-fw/cloud-gateway/pkg/transportfake"
)

var cliConfig struct {
	ConfigFile  string
	LogLevel    string
	ProtocolLog string
	Simulate    bool
	Interactive bool
}

func init() {
	flag.StringVar(&cliConfig.ConfigFile, "config", "", "Gateway YAML configuration file")
	flag.StringVar(&cliConfig.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&cliConfig.ProtocolLog, "protocol-log", "", "File path for protocol event logging (CBOR format)")
	flag.BoolVar(&cliConfig.Simulate, "simulate", true, "Drive a synthetic network/storage feed")
	flag.BoolVar(&cliConfig.Interactive, "interactive", false, "Replace the synthetic feed with a readline command prompt")
}

func main() {
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(cliConfig.LogLevel)})))

	cfg, err := loadConfig(cliConfig.ConfigFile)
	if err != nil {
		slog.Error("loading configuration", "error", err)
		os.Exit(1)
	}

	var logger protolog.Logger = protolog.NewSlogAdapter(slog.Default())
	if cliConfig.ProtocolLog != "" {
		fileLogger, err := protolog.NewFileLogger(cliConfig.ProtocolLog)
		if err != nil {
			slog.Error("opening protocol log", "error", err)
			os.Exit(1)
		}
		defer fileLogger.Close()
		logger = protolog.NewMultiLogger(logger, fileLogger)
	}
	adapter := protolog.NewAdapter(logger, "")

	hub := gateway.NewHub()
	xport := transportfake.New()
	store := storagefake.New(hub.StorageControlIn)
	reporter := fatal.NewChannelReporter(16)
	clock := newSystemClock()

	machine := gateway.New(cfg, hub, xport, store, clock, adapter, reporter, storage.ReadTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := machine.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error { return watchFatal(gctx, reporter) })

	switch {
	case cliConfig.Interactive:
		g.Go(func() error { return runInteractive(gctx, stop, hub, store, xport) })
	case cliConfig.Simulate:
		g.Go(func() error { return runSimulator(gctx, hub, store) })
	}

	if err := g.Wait(); err != nil {
		slog.Error("gateway exited", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.GatewayConfig, error) {
	if path == "" {
		return config.Parse(nil)
	}
	return config.Load(path)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// watchFatal drains the reporter's signal channel and, on the first signal,
// logs it and returns an error so the errgroup tears every other goroutine
// down rather than continuing to run against a violated liveness guarantee.
func watchFatal(ctx context.Context, reporter *fatal.ChannelReporter) error {
	select {
	case <-ctx.Done():
		return nil
	case sig := <-reporter.Signals():
		slog.Error("fatal signal", "kind", sig.Kind, "message", sig.Message)
		return fmt.Errorf("fatal signal: %s: %s", sig.Kind, sig.Message)
	}
}

// systemClock implements timestamp.Clock against the process's real clock.
// Uptime is measured from process start; UptimeToUnixMS reconstructs a wall
// time by adding that same uptime to the start time's wall clock, which is
// all the demo/interactive binary needs (the real on-device clock
// collaborator, with its RTC-versus-monotonic-counter distinction, is out
// of scope for this module).
type systemClock struct {
	start time.Time
}

func newSystemClock() systemClock {
	return systemClock{start: time.Now()}
}

func (c systemClock) UptimeMS() int64      { return time.Since(c.start).Milliseconds() }
func (c systemClock) WallClockValid() bool { return true }
func (c systemClock) UptimeToUnixMS(uptimeMS int64) int64 {
	return c.start.UnixMilli() + uptimeMS
}

// runSimulator brings the network up once, then periodically feeds the
// storage collaborator's control and data channels with synthetic activity,
// mirroring the sampled-power-value ticker pattern used elsewhere in this
// codebase's example commands.
func runSimulator(ctx context.Context, hub *gateway.Hub, store *storagefake.Fake) error {
	_ = hub.Network.Publish(messages.NetworkConnected{})

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	var sessionID uint32
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sessionID++
			store.Enqueue(sessionID, storage.Item{
				Kind:        messages.ItemKindPower,
				Payload:     []byte(fmt.Sprintf(`{"watts":%d}`, rand.Intn(5000))),
				TimestampMS: 0,
			})
			_ = hub.StorageData.Publish(messages.RealtimeItem{
				Kind:        messages.ItemKindEnvironmental,
				Payload:     []byte(fmt.Sprintf(`{"tempC":%d}`, 15+rand.Intn(10))),
				TimestampMS: 0,
			})
		}
	}
}
