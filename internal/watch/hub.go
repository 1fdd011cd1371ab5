// Package watch turns one-shot queries into live subscriptions.
//
// Writers call Hub.Notify with the tables they changed once their transaction
// has committed. Every subscription watching one of those tables re-runs its
// query and delivers a fresh snapshot. Subscriptions keep only the newest
// undelivered snapshot, so a slow reader may skip intermediate states but
// never observes an older state after a newer one.
package watch

import (
	"log/slog"
	"sync"
)

type Hub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*watcher
	logger *slog.Logger
}

type watcher struct {
	tables map[string]struct{}
	dirty  chan struct{}
}

// watches reports whether a change to any of tables concerns w. A watcher
// with no tables, or a change naming no tables, always matches.
func (w *watcher) watches(tables []string) bool {
	if len(w.tables) == 0 || len(tables) == 0 {
		return true
	}
	for _, t := range tables {
		if _, ok := w.tables[t]; ok {
			return true
		}
	}
	return false
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[uint64]*watcher),
		logger: logger,
	}
}

// Notify marks every subscription watching any of tables as stale. It never
// blocks on subscribers.
func (h *Hub) Notify(tables ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, w := range h.subs {
		if !w.watches(tables) {
			continue
		}
		n++
		select {
		case w.dirty <- struct{}{}:
		default:
			// Already pending a refresh.
		}
	}
	h.logger.Debug("tables changed", "tables", tables, "subscribers_notified", n)
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) register(tables []string) (uint64, *watcher) {
	w := &watcher{
		tables: make(map[string]struct{}, len(tables)),
		dirty:  make(chan struct{}, 1),
	}
	for _, t := range tables {
		w.tables[t] = struct{}{}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	h.subs[h.nextID] = w
	return h.nextID, w
}

func (h *Hub) unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}
