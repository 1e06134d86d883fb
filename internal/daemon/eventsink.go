package daemon

import (
	"log/slog"

	"github.com/1broseidon/pointertile/internal/input"
)

// eventSink terminates the input pipeline. The daemon has no dispatcher
// stage behind the choreographer, so processed events are logged and
// dropped.
type eventSink struct {
	logger *slog.Logger
}

func newEventSink(logger *slog.Logger) *eventSink {
	return &eventSink{logger: logger}
}

func (s *eventSink) NotifyMotion(ev *input.MotionEvent) {
	s.logger.Debug("motion",
		"device", ev.DeviceID,
		"action", ev.Action,
		"display", ev.DisplayID,
		"pointers", len(ev.Pointers))
}

func (s *eventSink) NotifyKey(ev *input.KeyEvent) {
	s.logger.Debug("key", "device", ev.DeviceID, "code", ev.KeyCode)
}

func (s *eventSink) NotifyDevicesChanged(ev *input.DevicesChangedEvent) {
	s.logger.Debug("devices changed", "count", len(ev.Devices))
}

func (s *eventSink) NotifyConfigurationChanged(ev *input.ConfigurationChangedEvent) {}

func (s *eventSink) NotifySwitch(ev *input.SwitchEvent) {}

func (s *eventSink) NotifySensor(ev *input.SensorEvent) {}

func (s *eventSink) NotifyVibratorState(ev *input.VibratorStateEvent) {}

func (s *eventSink) NotifyDeviceReset(ev *input.DeviceResetEvent) {
	s.logger.Debug("device reset", "device", ev.DeviceID)
}

func (s *eventSink) NotifyPointerCaptureChanged(ev *input.PointerCaptureChangedEvent) {
	s.logger.Debug("pointer capture changed", "enabled", ev.Enabled)
}
