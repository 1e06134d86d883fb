package pointer

import "sync"

// displayInfoListener tracks which displays are privacy sensitive and pushes
// changes into the choreographer. It holds its own lock, never the
// choreographer's: the snapshot is reduced under the listener lock, the lock
// is released, and only then is the choreographer called. The back-reference
// is cleared on detach so late feed callbacks after shutdown are dropped.
type displayInfoListener struct {
	mu        sync.Mutex
	ch        *Choreographer
	sensitive map[int32]struct{}
}

func newDisplayInfoListener(ch *Choreographer) *displayInfoListener {
	return &displayInfoListener{ch: ch, sensitive: make(map[int32]struct{})}
}

func (l *displayInfoListener) OnWindowInfosChanged(update WindowInfoUpdate) {
	l.mu.Lock()
	if l.ch == nil {
		l.mu.Unlock()
		return
	}
	next := PrivacySensitiveDisplays(update.Windows)
	if displaySetsEqual(l.sensitive, next) {
		l.mu.Unlock()
		return
	}
	l.sensitive = next
	ch := l.ch
	snapshot := copyDisplaySet(next)
	l.mu.Unlock()

	ch.onPrivacySensitiveDisplaysChanged(snapshot)
}

// setInitialWindowInfos seeds the sensitive set from the snapshot returned by
// WindowInfoFeed.Register, without notifying.
func (l *displayInfoListener) setInitialWindowInfos(update WindowInfoUpdate) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sensitive = PrivacySensitiveDisplays(update.Windows)
}

func (l *displayInfoListener) privacySensitiveDisplays() map[int32]struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return copyDisplaySet(l.sensitive)
}

// detach severs the back-reference. Called when the choreographer shuts down
// or unsubscribes from the feed.
func (l *displayInfoListener) detach() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ch = nil
}

func displaySetsEqual(a, b map[int32]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func copyDisplaySet(s map[int32]struct{}) map[int32]struct{} {
	out := make(map[int32]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
