package log

import (
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// streamLogger encodes events onto a WriteCloser as a CBOR sequence.
type streamLogger struct {
	w       io.WriteCloser
	encoder *cbor.Encoder
	mu      sync.Mutex
	closed  bool
}

func (l *streamLogger) init(w io.WriteCloser) {
	l.w = w
	l.encoder = NewEncoder(w)
}

func (l *streamLogger) log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	// Ignore encoding errors - logging must not disrupt the session.
	_ = l.encoder.Encode(event)
}

func (l *streamLogger) close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.w.Close()
}

// FileLogger writes protocol events to a file in CBOR format.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	streamLogger
}

// NewFileLogger creates a new FileLogger that writes to the specified path.
// If the file exists, new events are appended. The file is created with
// permissions 0644 if it doesn't exist.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	l := &FileLogger{}
	l.init(f)
	return l, nil
}

// Log writes an event to the log file.
func (l *FileLogger) Log(event Event) {
	l.log(event)
}

// Close closes the log file.
// It is safe to call Close multiple times.
// After Close is called, subsequent Log calls are silently ignored.
func (l *FileLogger) Close() error {
	return l.close()
}

// RotationConfig controls size-based rotation of protocol log files.
type RotationConfig struct {
	// Filename is the active log file. Rotated files are kept next to it.
	Filename string `yaml:"filename"`

	// MaxSizeMB is the size at which the file is rotated (default 50).
	MaxSizeMB int `yaml:"max_size_mb"`

	// MaxBackups is the number of rotated files to keep (default 3).
	MaxBackups int `yaml:"max_backups"`

	// MaxAgeDays removes rotated files older than this (0 keeps them).
	MaxAgeDays int `yaml:"max_age_days"`

	// Compress gzips rotated files.
	Compress bool `yaml:"compress"`
}

// RotatingFileLogger writes protocol events to a size-rotated file set.
// Streaming at frame rate produces large traces; rotation bounds disk use.
type RotatingFileLogger struct {
	streamLogger
}

// NewRotatingFileLogger creates a logger rotating according to cfg.
// Rotation boundaries always fall between events because each event is
// encoded with a single write.
func NewRotatingFileLogger(cfg RotationConfig) *RotatingFileLogger {
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 50
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 3
	}
	w := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	l := &RotatingFileLogger{}
	l.init(w)
	return l
}

// Log writes an event to the current log file.
func (l *RotatingFileLogger) Log(event Event) {
	l.log(event)
}

// Close closes the current log file.
func (l *RotatingFileLogger) Close() error {
	return l.close()
}

// Compile-time interface satisfaction checks.
var (
	_ Logger = (*FileLogger)(nil)
	_ Logger = (*RotatingFileLogger)(nil)
)
