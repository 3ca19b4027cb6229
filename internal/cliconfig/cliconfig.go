// Package cliconfig holds the configuration plumbing shared by the dac-ctl
// and dac-emulator commands: YAML config files, slog setup and protocol log
// sinks.
package cliconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lasercast/dac-go/pkg/log"
)

// Logging configures operational and protocol logging.
type Logging struct {
	// Level is the slog level: debug, info, warn or error.
	Level string `yaml:"level"`

	// Format selects the slog handler: text or json.
	Format string `yaml:"format"`

	// ProtocolLog is a CBOR event file written with log.FileLogger.
	ProtocolLog string `yaml:"protocol_log"`

	// Rotation, when its Filename is set, writes protocol events to a rotated
	// file set instead of ProtocolLog.
	Rotation log.RotationConfig `yaml:"rotation"`

	// Trace mirrors protocol events to the operational logger at debug level.
	Trace bool `yaml:"trace"`
}

// Load decodes the YAML file at path into v. Unknown keys are rejected so
// that typos surface at startup. An empty path leaves v unchanged.
func Load(path string, v any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ParseLevel parses a slog level name (case-insensitive). An empty string is
// info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s (use: debug, info, warn, error)", s)
	}
}

// NewLogger builds the operational logger writing to w.
func (l Logging) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(l.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s (use: text, json)", l.Format)
	}
}

// ProtocolLogger opens the configured protocol event sinks. The returned
// closer must be called on shutdown. When nothing is configured the logger
// is nil.
func (l Logging) ProtocolLogger(logger *slog.Logger) (log.Logger, io.Closer, error) {
	var (
		sinks   []log.Logger
		closers multiCloser
	)

	switch {
	case l.Rotation.Filename != "":
		rl := log.NewRotatingFileLogger(l.Rotation)
		sinks = append(sinks, rl)
		closers = append(closers, rl)
	case l.ProtocolLog != "":
		fl, err := log.NewFileLogger(l.ProtocolLog)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create protocol logger: %w", err)
		}
		sinks = append(sinks, fl)
		closers = append(closers, fl)
	}

	if l.Trace && logger != nil {
		sinks = append(sinks, log.NewSlogAdapter(logger))
	}

	switch len(sinks) {
	case 0:
		return nil, closers, nil
	case 1:
		return sinks[0], closers, nil
	default:
		return log.NewMultiLogger(sinks...), closers, nil
	}
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
