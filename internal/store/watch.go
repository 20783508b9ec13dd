package store

import "sync"

// Watcher receives a signal after each committed write under its prefix.
// Signals coalesce: a burst of writes may surface as a single event.
type Watcher struct {
	prefix string
	events chan struct{}
	hub    *hub
	once   sync.Once
}

func (watcher *Watcher) Events() <-chan struct{} {
	return watcher.events
}

func (watcher *Watcher) Prefix() string {
	return watcher.prefix
}

// Cancel stops delivery and closes the events channel. Safe to call repeatedly.
func (watcher *Watcher) Cancel() {
	watcher.once.Do(func() {
		watcher.hub.unsubscribe(watcher)
	})
}

type hub struct {
	mu       sync.RWMutex
	watchers map[*Watcher]struct{}
}

func newHub() *hub {
	return &hub{watchers: make(map[*Watcher]struct{})}
}

func (h *hub) subscribe(prefix string) *Watcher {
	watcher := &Watcher{
		prefix: prefix,
		events: make(chan struct{}, 1),
		hub:    h,
	}
	h.mu.Lock()
	h.watchers[watcher] = struct{}{}
	h.mu.Unlock()
	return watcher
}

func (h *hub) unsubscribe(watcher *Watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.watchers[watcher]; !ok {
		return
	}
	delete(h.watchers, watcher)
	close(watcher.events)
}

func (h *hub) notify(paths []string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for watcher := range h.watchers {
		if !anyPathWithin(paths, watcher.prefix) {
			continue
		}
		select {
		case watcher.events <- struct{}{}:
		default:
		}
	}
}

func (h *hub) size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers)
}

func anyPathWithin(paths []string, prefix string) bool {
	for _, path := range paths {
		if pathWithin(path, prefix) {
			return true
		}
	}
	return false
}
