package tetraview

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// errStop ends RunHeadless without an error.
var errStop = errors.New("stop")

// HeadlessConfig controls running the viewer without a window.
type HeadlessConfig struct {
	Hz    int    // Ticks per second; defaults to TickRate.
	Ticks uint64 // Number of ticks to run before stopping; 0 runs until the context is done.

	// StopWhenLoaded stops the run on the first tick after the model load has succeeded or failed.
	StopWhenLoaded bool
}

// RunHeadless calls step cfg.Hz times a second until cfg.Ticks ticks have run, ctx is done, or step returns an error.
func RunHeadless(ctx context.Context, cfg HeadlessConfig, step func() error) error {

	if cfg.Hz <= 0 {
		cfg.Hz = TickRate
	}

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if step != nil {
				if err := step(); err != nil {
					if errors.Is(err, errStop) {
						return nil
					}
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}

}

// RunHeadless starts the model load and ticks the Viewer without opening a window or reading any input. Create the
// Viewer WithSurface to keep it from rendering through a real camera.
func (v *Viewer) RunHeadless(ctx context.Context, cfg HeadlessConfig) error {

	v.Start(ctx)

	return RunHeadless(ctx, cfg, func() error {
		v.Tick(ControlsInput{})
		if cfg.StopWhenLoaded && v.Load.State().Terminal() {
			return errStop
		}
		return nil
	})

}
