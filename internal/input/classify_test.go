package input

import (
	"math"
	"testing"
)

func motionWith(source Source, tool ToolType) *MotionEvent {
	e := NewMotionEvent(1, source, ActionMove)
	e.Pointers = []Pointer{{ID: 0, Tool: tool}}
	return e
}

func TestClassifyMouse(t *testing.T) {
	e := motionWith(SourceMouse, ToolTypeMouse)
	if !IsMouseEvent(e) {
		t.Fatalf("mouse source + mouse tool not classified as mouse")
	}
	if IsTouchpadEvent(e) || IsDrawingTabletEvent(e) || IsStylusEvent(e) {
		t.Fatalf("mouse event matched another class")
	}
}

func TestClassifyTouchpad(t *testing.T) {
	e := motionWith(SourceMouse, ToolTypeFinger)
	if !IsTouchpadEvent(e) {
		t.Fatalf("mouse source + finger tool not classified as touchpad")
	}
	if IsMouseEvent(e) {
		t.Fatalf("touchpad event classified as mouse")
	}
}

func TestClassifyDrawingTablet(t *testing.T) {
	e := motionWith(SourceMouse|SourceStylus, ToolTypeStylus)
	if !IsDrawingTabletEvent(e) {
		t.Fatalf("mouse+stylus source with stylus tool not classified as drawing tablet")
	}
	// Eraser end of the pen counts too.
	e = motionWith(SourceMouse|SourceStylus, ToolTypeEraser)
	if !IsDrawingTabletEvent(e) {
		t.Fatalf("eraser tool not classified as drawing tablet")
	}
}

func TestClassifyStylusHover(t *testing.T) {
	e := motionWith(SourceStylus|SourceTouchscreen, ToolTypeStylus)
	e.Action = ActionHoverMove
	if !IsStylusHoverEvent(e) {
		t.Fatalf("hovering stylus not classified as stylus hover")
	}
	e.Action = ActionDown
	if IsStylusHoverEvent(e) {
		t.Fatalf("stylus contact classified as hover")
	}
}

func TestClassifyEmptyPointerList(t *testing.T) {
	e := NewMotionEvent(1, SourceMouse, ActionMove)
	if IsMouseEvent(e) || IsTouchpadEvent(e) || IsDrawingTabletEvent(e) || IsStylusEvent(e) {
		t.Fatalf("event without pointers matched a pointer class")
	}
}

func TestMouseOrTouchpadSource(t *testing.T) {
	cases := []struct {
		sources Source
		want    bool
	}{
		{SourceMouse, true},
		{SourceMouseRelative, true},
		{SourceMouse | SourceStylus, false},
		{SourceMouseRelative | SourceStylus, true},
		{SourceTouchscreen, false},
	}
	for _, c := range cases {
		if got := IsMouseOrTouchpadSource(c.sources); got != c.want {
			t.Fatalf("IsMouseOrTouchpadSource(%b) = %v, want %v", c.sources, got, c.want)
		}
	}
}

func TestMotionEventCursorPosition(t *testing.T) {
	e := NewMotionEvent(1, SourceMouse, ActionMove)
	if e.HasCursorPosition() {
		t.Fatalf("new event claims a cursor position")
	}
	e.CursorX, e.CursorY = 100, 200
	if !e.HasCursorPosition() {
		t.Fatalf("event with coordinates reports no cursor position")
	}
	e.CursorY = math.NaN()
	if e.HasCursorPosition() {
		t.Fatalf("partially valid cursor position accepted")
	}
}

func TestMotionEventClone(t *testing.T) {
	e := motionWith(SourceMouse, ToolTypeMouse)
	e.Pointers[0].X = 10
	c := e.Clone()
	c.Pointers[0].X = 99
	c.DisplayID = 7
	if e.Pointers[0].X != 10 || e.DisplayID != InvalidDisplayID {
		t.Fatalf("clone shares state with original: %+v", e)
	}
}

func TestIsModifierKey(t *testing.T) {
	if !IsModifierKey(KeyCodeShiftLeft) || !IsModifierKey(KeyCodeCapsLock) {
		t.Fatalf("modifier keycode not recognized")
	}
	if IsModifierKey(0x41) {
		t.Fatalf("ordinary keycode recognized as modifier")
	}
}
