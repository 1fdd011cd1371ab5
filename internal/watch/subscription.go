package watch

import "context"

// Snapshot is one evaluation of a subscribed query.
type Snapshot[T any] struct {
	Value T
	Err   error
}

// Query computes the current value of a subscription.
type Query[T any] func(ctx context.Context) (T, error)

type Subscription[T any] struct {
	ch     chan Snapshot[T]
	cancel context.CancelFunc
	done   chan struct{}
}

// Subscribe evaluates query immediately and again after every Notify that
// names one of tables. Passing no tables subscribes to every change. The
// subscription ends when ctx is cancelled or Close is called; C is then
// closed.
func Subscribe[T any](ctx context.Context, h *Hub, query Query[T], tables ...string) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	// Register before the first evaluation so a write racing with it still
	// triggers a refresh.
	id, w := h.register(tables)

	s := &Subscription[T]{
		ch:     make(chan Snapshot[T], 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(ctx, h, id, w, query)
	return s
}

// C delivers snapshots, newest only.
func (s *Subscription[T]) C() <-chan Snapshot[T] {
	return s.ch
}

// Close stops the subscription and waits for its goroutine to exit.
func (s *Subscription[T]) Close() {
	s.cancel()
	<-s.done
}

func (s *Subscription[T]) run(ctx context.Context, h *Hub, id uint64, w *watcher, query Query[T]) {
	defer close(s.done)
	defer close(s.ch)
	defer h.unregister(id)

	for {
		v, err := query(ctx)
		if ctx.Err() != nil {
			return
		}
		s.publish(Snapshot[T]{Value: v, Err: err})

		select {
		case <-ctx.Done():
			return
		case <-w.dirty:
		}
	}
}

// publish replaces any undelivered snapshot with snap. Only run sends on ch,
// so after the drain there is always room.
func (s *Subscription[T]) publish(snap Snapshot[T]) {
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
}
