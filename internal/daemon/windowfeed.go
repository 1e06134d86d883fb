package daemon

import (
	"sync"
	"time"

	"github.com/1broseidon/pointertile/internal/platform"
	"github.com/1broseidon/pointertile/internal/pointer"
)

// WindowFeed publishes window-metadata batches to subscribers. Every batch
// carries the window list, the display dimensions it was captured against, a
// monotonic sequence number, and a timestamp. Listeners are always called
// without the feed lock held, so a subscriber may call back into Register or
// Unregister from its callback path.
type WindowFeed struct {
	mu               sync.Mutex
	listeners        []pointer.WindowInfoListener
	windows          []pointer.WindowInfo
	displays         []pointer.WindowDisplayInfo
	raw              []platform.Window
	seq              uint64
	sensitiveClasses map[string]struct{}
}

func NewWindowFeed(sensitiveClasses []string) *WindowFeed {
	f := &WindowFeed{}
	f.sensitiveClasses = classSet(sensitiveClasses)
	return f
}

// Register subscribes a listener and returns the current batch.
func (f *WindowFeed) Register(l pointer.WindowInfoListener) pointer.WindowInfoUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
	return f.batchLocked()
}

// Unregister removes a listener. No callbacks are delivered afterwards.
func (f *WindowFeed) Unregister(l pointer.WindowInfoListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.listeners {
		if existing == l {
			f.listeners = append(f.listeners[:i], f.listeners[i+1:]...)
			return
		}
	}
}

// SetSensitiveClasses replaces the privacy class list and re-scores the
// current snapshot.
func (f *WindowFeed) SetSensitiveClasses(classes []string) {
	f.mu.Lock()
	f.sensitiveClasses = classSet(classes)
	f.mu.Unlock()
	f.Update(f.lastRaw())
}

// SetDisplays records the display set the next batches are captured against.
// A changed set is pushed to subscribers immediately.
func (f *WindowFeed) SetDisplays(displays []pointer.WindowDisplayInfo) {
	f.mu.Lock()
	if displayInfosEqual(f.displays, displays) {
		f.mu.Unlock()
		return
	}
	f.displays = append([]pointer.WindowDisplayInfo(nil), displays...)
	f.publishLocked()
}

// Update ingests a fresh window snapshot and notifies subscribers when the
// decorated snapshot changed. Identical consecutive snapshots are dropped.
func (f *WindowFeed) Update(windows []platform.Window) {
	f.mu.Lock()
	decorated := make([]pointer.WindowInfo, 0, len(windows))
	for _, w := range windows {
		_, sensitive := f.sensitiveClasses[w.Class]
		decorated = append(decorated, pointer.WindowInfo{
			DisplayID: w.DisplayID,
			Title:     w.Title,
			Hidden:    w.Hidden,
			Sensitive: sensitive,
		})
	}
	f.raw = append([]platform.Window(nil), windows...)
	if windowInfosEqual(f.windows, decorated) {
		f.mu.Unlock()
		return
	}
	f.windows = decorated
	f.publishLocked()
}

// publishLocked bumps the sequence, snapshots the listener list and the
// batch, releases the lock, and delivers. Callers must hold f.mu; it is
// released on return.
func (f *WindowFeed) publishLocked() {
	f.seq++
	listeners := append([]pointer.WindowInfoListener(nil), f.listeners...)
	update := f.batchLocked()
	f.mu.Unlock()

	for _, l := range listeners {
		l.OnWindowInfosChanged(update)
	}
}

func (f *WindowFeed) batchLocked() pointer.WindowInfoUpdate {
	return pointer.WindowInfoUpdate{
		Windows:   append([]pointer.WindowInfo(nil), f.windows...),
		Displays:  append([]pointer.WindowDisplayInfo(nil), f.displays...),
		Seq:       f.seq,
		Timestamp: time.Now(),
	}
}

func (f *WindowFeed) lastRaw() []platform.Window {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.Window(nil), f.raw...)
}

func classSet(classes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		set[c] = struct{}{}
	}
	return set
}

func windowInfosEqual(a, b []pointer.WindowInfo) bool {
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

func displayInfosEqual(a, b []pointer.WindowDisplayInfo) bool {
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
