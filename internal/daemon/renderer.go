package daemon

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/1broseidon/pointertile/internal/input"
	"github.com/1broseidon/pointertile/internal/platform"
	"github.com/1broseidon/pointertile/internal/pointer"
)

// Renderer builds pointer presentation controllers. Mouse-kind controllers
// drive the hardware cursor through the backend; touch and stylus
// presentations are state-tracking only.
type Renderer struct {
	backend platform.Backend
	logger  *slog.Logger
}

func NewRenderer(backend platform.Backend, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{backend: backend, logger: logger}
}

// NewController creates a controller for the given presentation kind.
func (r *Renderer) NewController(kind pointer.ControllerKind) pointer.Controller {
	c := &renderController{
		kind:           kind,
		logger:         r.logger,
		spotsByDisplay: make(map[int32][]pointer.Spot),
		skipDisplays:   make(map[int32]struct{}),
	}
	if kind == pointer.KindMouse {
		c.warp = r.backend.WarpCursor
	}
	r.logger.Debug("pointer presentation created", "kind", kind.String())
	return c
}

// renderController is one live pointer presentation. Position changes on a
// mouse-kind controller warp the hardware cursor.
type renderController struct {
	mu     sync.Mutex
	kind   pointer.ControllerKind
	logger *slog.Logger
	warp   func(x, y int) error

	x, y      float64
	viewport  input.DisplayViewport
	hasBounds bool

	visible    bool
	icon       pointer.IconStyle
	customIcon *pointer.SpriteIcon

	spotsByDisplay map[int32][]pointer.Spot
	skipDisplays   map[int32]struct{}

	released bool
}

func (c *renderController) Position() (float64, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.x, c.y
}

func (c *renderController) SetPosition(x, y float64) {
	c.mu.Lock()
	c.x, c.y = c.clampLocked(x, y)
	c.warpLocked()
	c.mu.Unlock()
}

func (c *renderController) Move(dx, dy float64) {
	c.mu.Lock()
	c.x, c.y = c.clampLocked(c.x+dx, c.y+dy)
	c.warpLocked()
	c.mu.Unlock()
}

// clampLocked keeps the position inside the bound viewport.
func (c *renderController) clampLocked(x, y float64) (float64, float64) {
	if !c.hasBounds {
		return x, y
	}
	x = math.Max(float64(c.viewport.X), math.Min(x, float64(c.viewport.X+c.viewport.Width-1)))
	y = math.Max(float64(c.viewport.Y), math.Min(y, float64(c.viewport.Y+c.viewport.Height-1)))
	return x, y
}

func (c *renderController) warpLocked() {
	if c.warp == nil || c.released {
		return
	}
	if err := c.warp(int(c.x), int(c.y)); err != nil {
		c.logger.Warn("cursor warp failed", "error", err)
	}
}

func (c *renderController) Fade(t pointer.Transition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = false
}

func (c *renderController) Unfade(t pointer.Transition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = true
}

func (c *renderController) SetDisplayViewport(vp input.DisplayViewport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = vp
	c.hasBounds = vp.Width > 0 && vp.Height > 0
	c.x, c.y = c.clampLocked(c.x, c.y)
}

func (c *renderController) DisplayID() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasBounds {
		return input.InvalidDisplayID
	}
	return c.viewport.DisplayID
}

func (c *renderController) SetIcon(style pointer.IconStyle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.icon = style
	c.customIcon = nil
}

func (c *renderController) SetCustomIcon(icon pointer.SpriteIcon) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customIcon = &icon
}

func (c *renderController) SetSkipScreenshotFlag(displayID int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipDisplays[displayID] = struct{}{}
}

func (c *renderController) ClearSkipScreenshotFlags() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipDisplays = make(map[int32]struct{})
}

func (c *renderController) SetSpots(displayID int32, spots []pointer.Spot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(spots) == 0 {
		delete(c.spotsByDisplay, displayID)
		return
	}
	c.spotsByDisplay[displayID] = append([]pointer.Spot(nil), spots...)
}

func (c *renderController) ClearSpots() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spotsByDisplay = make(map[int32][]pointer.Spot)
}

func (c *renderController) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	c.released = true
	c.visible = false
	c.spotsByDisplay = make(map[int32][]pointer.Spot)
	c.logger.Debug("pointer presentation released", "kind", c.kind.String())
}

func (c *renderController) Dump() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	spots := 0
	for _, s := range c.spotsByDisplay {
		spots += len(s)
	}
	return fmt.Sprintf("%s at (%.1f, %.1f) display=%d visible=%t icon=%d spots=%d",
		c.kind, c.x, c.y, c.displayIDLocked(), c.visible, c.icon, spots)
}

func (c *renderController) displayIDLocked() int32 {
	if !c.hasBounds {
		return input.InvalidDisplayID
	}
	return c.viewport.DisplayID
}
