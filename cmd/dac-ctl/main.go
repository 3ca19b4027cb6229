// Command dac-ctl connects to a laser DAC and drives it from an interactive
// console.
//
// Usage:
//
//	dac-ctl [flags]
//
// Flags:
//
//	-config string        YAML configuration file
//	-addr string          DAC network address (host or host:port)
//	-serial string        Serial device path (instead of -addr)
//	-baud int             Serial baud rate (default 115200)
//	-device-id uint       DAC identifier used in logs
//	-exec string          Run one command line and exit
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-protocol-log string  File for protocol event logging (CBOR format)
//	-trace                Mirror protocol events to the log at debug level
//
// Examples:
//
//	# Interactive session with a networked DAC
//	dac-ctl -addr 192.168.1.40
//
//	# Draw a circle and exit
//	dac-ctl -addr 192.168.1.40 -exec "prepare; data 1000 circle; begin 30000"
//
//	# USB DAC with protocol logging
//	dac-ctl -serial /dev/ttyACM0 -protocol-log session.dlog
//
// Example configuration file:
//
//	address: 192.168.1.40:7765
//	device_id: 31
//	connect_timeout: 3s
//	logging:
//	  level: debug
//	  protocol_log: /tmp/dac.dlog
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

	"github.com/lasercast/dac-go/cmd/dac-ctl/interactive"
	"github.com/lasercast/dac-go/internal/cliconfig"
	"github.com/lasercast/dac-go/pkg/dac"
	"github.com/lasercast/dac-go/pkg/log"
	"github.com/lasercast/dac-go/pkg/stream"
	"github.com/lasercast/dac-go/pkg/transport"
)

// Config holds the controller configuration.
type Config struct {
	Address        string                `yaml:"address"`
	Serial         string                `yaml:"serial"`
	SerialOptions  transport.PortOptions `yaml:"serial_options"`
	DeviceID       uint32                `yaml:"device_id"`
	ConnectTimeout time.Duration         `yaml:"connect_timeout"`
	Logging        cliconfig.Logging     `yaml:"logging"`

	// Exec is a command line to run instead of the interactive console.
	Exec string `yaml:"-"`
}

func defaultConfig() Config {
	return Config{
		ConnectTimeout: 5 * time.Second,
		Logging:        cliconfig.Logging{Level: "info"},
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
		logger.Error("dac-ctl failed", "error", err)
		os.Exit(1)
	}
}

// parseConfig loads the config file named by -config, then applies any flags
// given explicitly on the command line.
func parseConfig(args []string) (Config, error) {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("dac-ctl", flag.ContinueOnError)
	configFile := fs.String("config", "", "YAML configuration file")
	addr := fs.String("addr", "", "DAC network address (host or host:port)")
	serialPath := fs.String("serial", "", "Serial device path (instead of -addr)")
	baud := fs.Int("baud", 115200, "Serial baud rate")
	deviceID := fs.Uint("device-id", 0, "DAC identifier used in logs")
	logLevel := fs.String("log-level", cfg.Logging.Level, "Log level: debug, info, warn, error")
	protocolLog := fs.String("protocol-log", "", "File for protocol event logging (CBOR format)")
	trace := fs.Bool("trace", false, "Mirror protocol events to the log at debug level")
	fs.StringVar(&cfg.Exec, "exec", "", "Run one command line and exit")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if err := cliconfig.Load(*configFile, &cfg); err != nil {
		return cfg, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Address = *addr
			cfg.Serial = ""
		case "serial":
			cfg.Serial = *serialPath
			cfg.Address = ""
		case "baud":
			cfg.SerialOptions.BaudRate = *baud
		case "device-id":
			cfg.DeviceID = uint32(*deviceID)
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "protocol-log":
			cfg.Logging.ProtocolLog = *protocolLog
		case "trace":
			cfg.Logging.Trace = *trace
		}
	})

	switch {
	case cfg.Address == "" && cfg.Serial == "":
		return cfg, fmt.Errorf("one of -addr or -serial is required")
	case cfg.Address != "" && cfg.Serial != "":
		return cfg, fmt.Errorf("-addr and -serial are mutually exclusive")
	}
	return cfg, nil
}

// connect opens the configured transport and loads the DAC's status.
func connect(ctx context.Context, cfg Config, sc stream.Config) (*stream.Stream, error) {
	device := dac.NewAddressed(cfg.DeviceID, dac.Dac{})

	if cfg.Serial == "" {
		ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		return stream.Dial(ctx, cfg.Address, device, sc)
	}

	conn, err := transport.OpenSerial(cfg.Serial, cfg.SerialOptions, transport.ConnConfig{
		Logger: sc.ProtocolLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", stream.ErrTransport, err)
	}
	s := stream.New(conn, device, sc)
	if err := s.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initial ping: %w", err)
	}
	return s, nil
}

func run(cfg Config, logger *slog.Logger) error {
	protocolLogger, closer, err := cfg.Logging.ProtocolLogger(logger)
	if err != nil {
		return err
	}
	defer closer.Close()
	if protocolLogger == nil {
		protocolLogger = log.NoopLogger{}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := connect(ctx, cfg, stream.Config{
		ProtocolLogger: protocolLogger,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	d := s.Dac()
	logger.Info("Connected",
		"status", d.Status.String(),
		"buffer_capacity", d.BufferCapacity,
		"max_point_rate", d.MaxPointRate,
		"revision", d.Revision)

	if cfg.Exec != "" {
		return interactive.NewWithWriter(s, logger, os.Stdout).Execute(cfg.Exec)
	}

	console, err := interactive.New(s, logger)
	if err != nil {
		return err
	}
	// Route log output through readline to avoid interfering with input.
	logger = slog.New(slog.NewTextHandler(console.Stdout(), nil))
	slog.SetDefault(logger)

	console.Run(ctx, cancel)
	logger.Info("Goodbye!")
	return nil
}
