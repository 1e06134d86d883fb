package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/pointertile/internal/input"
	"github.com/1broseidon/pointertile/internal/platform"
	"github.com/1broseidon/pointertile/internal/pointer"
)

// Poller periodically samples the platform backend and pushes viewport,
// window, and focus changes into the choreographer and window feed.
type Poller struct {
	backend  platform.Backend
	ch       *pointer.Choreographer
	feed     *WindowFeed
	interval time.Duration
	logger   *slog.Logger

	lastViewports []input.DisplayViewport
	lastFocused   int32
}

type PollerConfig struct {
	Backend  platform.Backend
	Ch       *pointer.Choreographer
	Feed     *WindowFeed
	Interval time.Duration
	Logger   *slog.Logger
}

func NewPoller(cfg PollerConfig) *Poller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{
		backend:     cfg.Backend,
		ch:          cfg.Ch,
		feed:        cfg.Feed,
		interval:    interval,
		logger:      logger,
		lastFocused: input.InvalidDisplayID,
	}
}

// Run polls until the context is cancelled. A panic in a single poll cycle
// is recovered and logged so one bad snapshot does not kill the daemon.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.safePoll()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.safePoll()
		}
	}
}

// PollNow runs a single poll cycle synchronously.
func (p *Poller) PollNow() {
	p.safePoll()
}

func (p *Poller) safePoll() {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("poll cycle panicked", "panic", r)
		}
	}()
	p.poll()
}

func (p *Poller) poll() {
	viewports, err := p.backend.Viewports()
	if err != nil {
		p.logger.Warn("failed to query viewports", "error", err)
	} else if !viewportsEqual(p.lastViewports, viewports) {
		p.lastViewports = append([]input.DisplayViewport(nil), viewports...)
		p.ch.SetDisplayViewports(viewports)
		p.feed.SetDisplays(displayInfos(viewports))
		p.logger.Debug("viewports updated", "count", len(viewports))
	}

	windows, err := p.backend.Windows()
	if err != nil {
		p.logger.Warn("failed to query windows", "error", err)
	} else {
		p.feed.Update(windows)
	}

	focused, err := p.backend.FocusedDisplay()
	if err != nil {
		p.logger.Debug("failed to query focused display", "error", err)
	} else if focused != p.lastFocused {
		p.lastFocused = focused
		p.ch.SetFocusedDisplay(focused)
	}
}

func displayInfos(viewports []input.DisplayViewport) []pointer.WindowDisplayInfo {
	out := make([]pointer.WindowDisplayInfo, 0, len(viewports))
	for _, v := range viewports {
		out = append(out, pointer.WindowDisplayInfo{
			DisplayID: v.DisplayID,
			Width:     v.Width,
			Height:    v.Height,
		})
	}
	return out
}

func viewportsEqual(a, b []input.DisplayViewport) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
