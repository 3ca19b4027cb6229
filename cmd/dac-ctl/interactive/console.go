// Package interactive provides the interactive command-line interface
// for dac-ctl.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/lasercast/dac-go/pkg/stream"
	"github.com/lasercast/dac-go/pkg/wire"
)

const defaultPattern = "circle"

// Console drives a DAC session from typed commands.
type Console struct {
	stream *stream.Stream
	logger *slog.Logger
	rl     *readline.Instance
	out    io.Writer
}

// New creates a console bound to s.
func New(s *stream.Stream, logger *slog.Logger) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "dac> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Console{
		stream: s,
		logger: logger,
		rl:     rl,
		out:    rl.Stdout(),
	}, nil
}

// NewWithWriter creates a console without a terminal, writing results to w.
// Used for one-shot execution.
func NewWithWriter(s *stream.Stream, logger *slog.Logger, w io.Writer) *Console {
	return &Console{stream: s, logger: logger, out: w}
}

func completer() *readline.PrefixCompleter {
	patterns := []readline.PrefixCompleterInterface{
		readline.PcItem("circle"),
		readline.PcItem("square"),
		readline.PcItem("blank"),
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("status"),
		readline.PcItem("ping"),
		readline.PcItem("prepare"),
		readline.PcItem("begin"),
		readline.PcItem("rate"),
		readline.PcItem("data"),
		readline.PcItem("fill", patterns...),
		readline.PcItem("play"),
		readline.PcItem("stop"),
		readline.PcItem("estop"),
		readline.PcItem("clear"),
		readline.PcItem("quit"),
	)
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		switch strings.ToLower(strings.Fields(input)[0]) {
		case "quit", "exit", "q":
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		case "help", "?":
			c.printHelp()
			continue
		}

		if err := c.Execute(input); err != nil {
			c.printError(err)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
DAC Commands:
  Session:
    status                 - Show the last reported DAC status
    ping                   - Refresh the status from the DAC

  Batch commands (join with ';' to send as one batch):
    prepare                - Prepare an idle DAC for streaming
    begin <rate>           - Start playback at <rate> points/s
    rate <rate>            - Queue a point rate change
    data <n> [pattern]     - Send <n> points (pattern: circle, square, blank)
    fill [pattern]         - Send as many points as the DAC has room for
    stop                   - Stop playback
    estop                  - Emergency stop
    clear                  - Clear an emergency stop
    ping                   - Request status

  Shortcuts:
    play <rate> [n]        - prepare; data n circle; begin rate

  General:
    help                   - Show this help
    quit                   - Exit

  Example:
    prepare; data 500 square; begin 30000`)
}

// Execute runs one command line. Anything other than status is sent to the
// DAC as a single batch.
func (c *Console) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	if strings.ToLower(fields[0]) == "status" {
		c.printStatus()
		return nil
	}
	return c.runBatch(line)
}

func (c *Console) runBatch(line string) error {
	q, err := c.stream.QueueCommands()
	if err != nil {
		return err
	}
	defer q.Discard()

	for _, part := range strings.Split(line, ";") {
		args := strings.Fields(part)
		if len(args) == 0 {
			continue
		}
		if err := c.queue(q, strings.ToLower(args[0]), args[1:]); err != nil {
			return err
		}
	}
	if q.Len() == 0 {
		return nil
	}

	n, points := q.Len(), q.QueuedPoints()
	if err := q.Submit(); err != nil {
		return err
	}
	c.logger.Debug("Batch submitted", "commands", n, "points", points)
	fmt.Fprintf(c.out, "OK (%d commands, %d points)\n", n, points)
	c.printStatus()
	return nil
}

// queue pushes one command onto q.
func (c *Console) queue(q *stream.CommandQueue, cmd string, args []string) error {
	switch cmd {
	case "prepare":
		q.PrepareStream()
	case "begin":
		rate, err := parseRate(args)
		if err != nil {
			return err
		}
		q.Begin(wire.Begin{PointRate: rate})
	case "rate":
		rate, err := parseRate(args)
		if err != nil {
			return err
		}
		q.PointRate(wire.PointRate{Rate: rate})
	case "data":
		if len(args) < 1 {
			return errors.New("usage: data <n> [pattern]")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("invalid point count: %s", args[0])
		}
		return c.queueData(q, n, args[1:])
	case "fill":
		free := c.stream.Dac().RemainingCapacity() - q.QueuedPoints()
		return c.queueData(q, free, args)
	case "play":
		rate, err := parseRate(args)
		if err != nil {
			return err
		}
		n := c.stream.Dac().RemainingCapacity() - q.QueuedPoints()
		if len(args) > 1 {
			if n, err = strconv.Atoi(args[1]); err != nil || n < 0 {
				return fmt.Errorf("invalid point count: %s", args[1])
			}
		}
		q.PrepareStream()
		if err := c.queueData(q, n, nil); err != nil {
			return err
		}
		q.Begin(wire.Begin{PointRate: rate})
	case "stop":
		q.Stop()
	case "estop":
		q.EmergencyStop()
	case "clear":
		q.ClearEmergencyStop()
	case "ping":
		q.Ping()
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for commands)", cmd)
	}
	return nil
}

func (c *Console) queueData(q *stream.CommandQueue, n int, args []string) error {
	name := defaultPattern
	if len(args) > 0 {
		name = strings.ToLower(args[0])
	}
	if n <= 0 {
		return nil
	}
	pts, err := pattern(name, n)
	if err != nil {
		return err
	}
	return q.Data(pts)
}

func parseRate(args []string) (uint32, error) {
	if len(args) < 1 {
		return 0, errors.New("point rate required")
	}
	rate, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil || rate == 0 {
		return 0, fmt.Errorf("invalid point rate: %s", args[0])
	}
	return uint32(rate), nil
}

func (c *Console) printStatus() {
	d := c.stream.Dac()
	fmt.Fprintf(c.out, "DAC %d: %s  buffer %d/%d  rate %d/%d pps  rev %d\n",
		d.ID, d.Status, d.BufferFullness, d.BufferCapacity, d.PointRate, d.MaxPointRate, d.Revision)
}

func (c *Console) printError(err error) {
	var (
		batchErr *stream.BatchError
		capErr   *stream.CapacityError
		commErr  *stream.CommunicationError
	)
	if errors.As(err, &capErr) {
		fmt.Fprintf(c.out, "Not enough room: %d points requested, %d free\n",
			capErr.Requested, capErr.Available-capErr.Queued)
		return
	}
	if !errors.As(err, &batchErr) {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}

	if errors.As(err, &commErr) && commErr.Kind == stream.KindRejected {
		fmt.Fprintf(c.out, "DAC rejected %s (command %d) with %s\n", commErr.Expected, batchErr.Index, commErr.Ack)
		c.printStatus()
	} else {
		fmt.Fprintf(c.out, "Batch failed at command %d (%s): %v\n", batchErr.Index, batchErr.Command, batchErr.Err)
	}

	if errors.Is(c.stream.Err(), stream.ErrDesynchronized) {
		fmt.Fprintln(c.out, "The session is out of sync; reconnect before continuing.")
	}
}
