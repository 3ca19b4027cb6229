// Command dac-emulator serves an emulated laser DAC over TCP.
//
// The emulated device follows the same status machine as real hardware and
// plays buffered points at the rate set by Begin and PointRate, so a client
// sees its buffer drain while streaming.
//
// Usage:
//
//	dac-emulator [flags]
//
// Flags:
//
//	-config string          YAML configuration file
//	-listen string          Listen address (default ":7765")
//	-buffer-capacity uint   Points the device can buffer (default 1800)
//	-max-point-rate uint    Maximum playback rate in points/s (default 100000)
//	-revision uint          Reported firmware revision (default 1)
//	-log-level string       Log level: debug, info, warn, error (default "info")
//	-protocol-log string    File for protocol event logging (CBOR format)
//	-trace                  Mirror protocol events to the log at debug level
//
// Example configuration file:
//
//	listen: ":7765"
//	device:
//	  revision: 3
//	  buffer_capacity: 1800
//	  max_point_rate: 100000
//	playback_interval: 10ms
//	logging:
//	  level: debug
//	  rotation:
//	    filename: /var/log/dac-emulator/protocol.dlog
//	    max_size_mb: 20
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lasercast/dac-go/internal/cliconfig"
	"github.com/lasercast/dac-go/pkg/dac"
	"github.com/lasercast/dac-go/pkg/emulator"
	"github.com/lasercast/dac-go/pkg/transport"
)

// DeviceConfig describes the emulated hardware.
type DeviceConfig struct {
	Revision       uint32 `yaml:"revision"`
	BufferCapacity uint32 `yaml:"buffer_capacity"`
	MaxPointRate   uint32 `yaml:"max_point_rate"`
}

// Config holds the emulator configuration.
type Config struct {
	Listen           string            `yaml:"listen"`
	Device           DeviceConfig      `yaml:"device"`
	PlaybackInterval time.Duration     `yaml:"playback_interval"`
	Logging          cliconfig.Logging `yaml:"logging"`
}

func defaultConfig() Config {
	return Config{
		Listen: fmt.Sprintf(":%d", transport.DefaultPort),
		Device: DeviceConfig{
			Revision:       1,
			BufferCapacity: 1800,
			MaxPointRate:   100000,
		},
		PlaybackInterval: 10 * time.Millisecond,
		Logging:          cliconfig.Logging{Level: "info"},
	}
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger, err := cfg.Logging.NewLogger(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Emulator failed", "error", err)
		os.Exit(1)
	}
}

// parseConfig loads the config file named by -config, then applies any flags
// given explicitly on the command line.
func parseConfig(args []string) (Config, error) {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("dac-emulator", flag.ContinueOnError)
	configFile := fs.String("config", "", "YAML configuration file")
	listen := fs.String("listen", cfg.Listen, "Listen address")
	capacity := fs.Uint("buffer-capacity", uint(cfg.Device.BufferCapacity), "Points the device can buffer")
	maxRate := fs.Uint("max-point-rate", uint(cfg.Device.MaxPointRate), "Maximum playback rate in points/s")
	revision := fs.Uint("revision", uint(cfg.Device.Revision), "Reported firmware revision")
	logLevel := fs.String("log-level", cfg.Logging.Level, "Log level: debug, info, warn, error")
	protocolLog := fs.String("protocol-log", "", "File for protocol event logging (CBOR format)")
	trace := fs.Bool("trace", false, "Mirror protocol events to the log at debug level")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if err := cliconfig.Load(*configFile, &cfg); err != nil {
		return cfg, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.Listen = *listen
		case "buffer-capacity":
			cfg.Device.BufferCapacity = uint32(*capacity)
		case "max-point-rate":
			cfg.Device.MaxPointRate = uint32(*maxRate)
		case "revision":
			cfg.Device.Revision = uint32(*revision)
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "protocol-log":
			cfg.Logging.ProtocolLog = *protocolLog
		case "trace":
			cfg.Logging.Trace = *trace
		}
	})

	if cfg.Device.BufferCapacity == 0 {
		return cfg, fmt.Errorf("buffer capacity must be positive")
	}
	if cfg.Device.MaxPointRate == 0 {
		return cfg, fmt.Errorf("max point rate must be positive")
	}
	if cfg.PlaybackInterval <= 0 {
		cfg.PlaybackInterval = 10 * time.Millisecond
	}
	return cfg, nil
}

func run(cfg Config, logger *slog.Logger) error {
	protocolLogger, closer, err := cfg.Logging.ProtocolLogger(logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	dev := emulator.New(emulator.Config{
		Dac: dac.Dac{
			Revision:       cfg.Device.Revision,
			BufferCapacity: cfg.Device.BufferCapacity,
			MaxPointRate:   cfg.Device.MaxPointRate,
			Status:         dac.StatusIdle,
		},
		Logger: logger,
	})

	srv, err := transport.NewServer(transport.ServerConfig{
		Address: cfg.Listen,
		Logger:  protocolLogger,
		Handler: func(ctx context.Context, conn *transport.Conn) {
			logger.Info("Client connected", "remote", conn.RemoteAddr(), "conn", conn.ID())
			if err := dev.Serve(ctx, conn); err != nil && ctx.Err() == nil {
				logger.Warn("Connection ended with error", "remote", conn.RemoteAddr(), "error", err)
			}
			logger.Info("Client disconnected", "remote", conn.RemoteAddr())
		},
		OnError: func(err error) {
			logger.Warn("Server error", "error", err)
		},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	logger.Info("DAC emulator listening",
		"addr", srv.Addr().String(),
		"buffer_capacity", cfg.Device.BufferCapacity,
		"max_point_rate", cfg.Device.MaxPointRate)

	runPlayback(ctx, dev, cfg.PlaybackInterval)

	logger.Info("Shutting down...")
	return srv.Stop()
}
