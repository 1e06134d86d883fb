package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"

	"github.com/1broseidon/pointertile/internal/input"
)

// Viewports retrieves all active outputs using XRandR. Display ids are the
// CRTC index, which is stable while the topology does not change.
func (c *Connection) Viewports() ([]input.DisplayViewport, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var viewports []input.DisplayViewport
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Output%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		viewports = append(viewports, input.DisplayViewport{
			DisplayID: int32(i),
			Name:      outputName,
			X:         int(crtcInfo.X),
			Y:         int(crtcInfo.Y),
			Width:     int(crtcInfo.Width),
			Height:    int(crtcInfo.Height),
		})
	}

	return viewports, nil
}

// ViewportContaining returns the viewport that contains the point, or false
// when it falls outside every output.
func ViewportContaining(viewports []input.DisplayViewport, x, y int) (input.DisplayViewport, bool) {
	for _, vp := range viewports {
		if x >= vp.X && x < vp.X+vp.Width && y >= vp.Y && y < vp.Y+vp.Height {
			return vp, true
		}
	}
	return input.DisplayViewport{}, false
}

// ViewportByName resolves an output by name. Empty name picks the first
// output.
func ViewportByName(viewports []input.DisplayViewport, name string) (input.DisplayViewport, bool) {
	if name == "" {
		if len(viewports) == 0 {
			return input.DisplayViewport{}, false
		}
		return viewports[0], true
	}
	for _, vp := range viewports {
		if vp.Name == name {
			return vp, true
		}
	}
	return input.DisplayViewport{}, false
}
