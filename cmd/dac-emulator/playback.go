package main

import (
	"context"
	"time"

	"github.com/lasercast/dac-go/pkg/emulator"
)

// runPlayback drains the device buffer at its current point rate until ctx
// is cancelled. Fractional points carry over between ticks so low rates
// still advance.
func runPlayback(ctx context.Context, dev *emulator.Device, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p := playback{last: time.Now()}
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			p.tick(dev, now)
		}
	}
}

type playback struct {
	last    time.Time
	pending float64
}

// tick plays the points due since the previous tick and returns how many
// were played.
func (p *playback) tick(dev *emulator.Device, now time.Time) int {
	elapsed := now.Sub(p.last)
	p.last = now

	rate := dev.Snapshot().PointRate
	if rate == 0 || elapsed <= 0 {
		p.pending = 0
		return 0
	}

	p.pending += float64(rate) * elapsed.Seconds()
	due := int(p.pending)
	p.pending -= float64(due)
	return dev.Consume(due)
}
