package sim

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/mrilab/internal/dynamo"
)

// Driver is the fixed-rate animation loop. It ticks a session at the frame
// rate of the session's current timing until the context ends or MaxSteps
// frames were produced.
type Driver struct {
	session  *Session
	logger   *log.Logger
	MaxSteps int
	OnFrame  func(f dynamo.Frame)
}

func NewDriver(s *Session, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Driver{session: s, logger: logger}
}

func interval(tm dynamo.Timing) time.Duration {
	if tm.FrameRate <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(tm.FrameRate)
}

func (d *Driver) Run(ctx context.Context) error {
	tm := d.session.Timing()
	every := interval(tm)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	d.logger.Debug("driver started", "demo", d.session.Evolver().Name(), "rate", tm.FrameRate)
	produced := 0
	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("driver stopped", "frames", produced)
			return ctx.Err()
		case <-ticker.C:
		}

		f, ok, err := d.session.Tick()
		if err != nil {
			d.logger.Error("tick failed", "err", err)
			return err
		}
		if !ok {
			continue
		}
		produced++
		if d.OnFrame != nil {
			d.OnFrame(f)
		}
		if d.MaxSteps > 0 && produced >= d.MaxSteps {
			d.logger.Debug("driver reached step limit", "frames", produced)
			return nil
		}

		// a mode switch may change the frame rate
		if next := interval(d.session.Timing()); next != every {
			every = next
			ticker.Reset(every)
		}
	}
}
