package input

// Event classification. Routing decisions key off the event source bits and
// the tool type of the first pointer, in a fixed priority order: mouse,
// touchpad, drawing tablet, stylus hover, touchscreen.

// IsStylusTool reports whether t is a stylus-family tool.
func IsStylusTool(t ToolType) bool {
	return t == ToolTypeStylus || t == ToolTypeEraser
}

// IsHoverAction reports whether a is one of the hover actions.
func IsHoverAction(a MotionAction) bool {
	return a == ActionHoverEnter || a == ActionHoverMove || a == ActionHoverExit
}

// IsMouseEvent matches events from a real mouse: a mouse source whose first
// pointer is the mouse tool.
func IsMouseEvent(e *MotionEvent) bool {
	return e.Source.Has(SourceMouse) && len(e.Pointers) > 0 && e.Pointers[0].Tool == ToolTypeMouse
}

// IsTouchpadEvent matches pointer-mode touchpad events: a mouse source whose
// first pointer is a finger.
func IsTouchpadEvent(e *MotionEvent) bool {
	return e.Source.Has(SourceMouse) && len(e.Pointers) > 0 && e.Pointers[0].Tool == ToolTypeFinger
}

// IsDrawingTabletEvent matches external drawing tablets, which report both
// mouse and stylus sources with a stylus-family tool.
func IsDrawingTabletEvent(e *MotionEvent) bool {
	return e.Source.Has(SourceMouse|SourceStylus) && len(e.Pointers) > 0 && IsStylusTool(e.Pointers[0].Tool)
}

// IsStylusEvent matches direct stylus contact or hover on a touchscreen.
func IsStylusEvent(e *MotionEvent) bool {
	return e.Source.Has(SourceStylus) && len(e.Pointers) > 0 && IsStylusTool(e.Pointers[0].Tool)
}

// IsStylusHoverEvent matches stylus events in the hover stream.
func IsStylusHoverEvent(e *MotionEvent) bool {
	return IsStylusEvent(e) && IsHoverAction(e.Action)
}

// IsTouchscreenEvent matches direct-touch events.
func IsTouchscreenEvent(e *MotionEvent) bool {
	return e.Source.Has(SourceTouchscreen)
}

// IsMouseOrTouchpadSource reports whether a device with the given sources is
// treated as a mouse for cursor ownership. Drawing tablets also report the
// mouse bit, so plain mouse-plus-stylus combinations are excluded.
func IsMouseOrTouchpadSource(sources Source) bool {
	return sources.Has(SourceMouseRelative) ||
		(sources.Has(SourceMouse) && !sources.Has(SourceStylus))
}
