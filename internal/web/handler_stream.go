package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vbonduro/wardrobe/internal/apperr"
	"github.com/vbonduro/wardrobe/internal/watch"
)

// stream relays sub to the client as server-sent events. Each snapshot is a
// "snapshot" event carrying the full JSON value; a failed query is sent as
// an "error" event and the stream stays open for the next change. Every
// write, heartbeats included, pushes the write deadline forward.
func stream[T any](w http.ResponseWriter, r *http.Request, s *Server, sub *watch.Subscription[T]) {
	defer sub.Close()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ew := &eventWriter{w: w, rc: http.NewResponseController(w), timeout: s.opts.StreamWriteTimeout}
	if err := ew.write(nil); err != nil {
		s.logger.Error("event stream not supported", "path", r.URL.Path, "error", err)
		return
	}

	heartbeat := time.NewTicker(s.opts.StreamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-sub.C():
			if !ok {
				return
			}
			if snap.Err != nil {
				s.logger.Error("stream query failed", "path", r.URL.Path, "error", snap.Err)
				ae := apperr.As(snap.Err)
				if ae == nil {
					ae = apperr.Internal(snap.Err)
				}
				if err := ew.event("error", ae); err != nil {
					return
				}
				continue
			}
			if err := ew.event("snapshot", snap.Value); err != nil {
				s.logger.Debug("stream client gone", "path", r.URL.Path, "error", err)
				return
			}
		case <-heartbeat.C:
			if err := ew.write([]byte(": ping\n\n")); err != nil {
				s.logger.Debug("stream client gone", "path", r.URL.Path, "error", err)
				return
			}
		}
	}
}

type eventWriter struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	timeout time.Duration
}

func (e *eventWriter) event(name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	return e.write(fmt.Appendf(nil, "event: %s\ndata: %s\n\n", name, payload))
}

// write sends p, flushes, and moves the write deadline timeout past now.
func (e *eventWriter) write(p []byte) error {
	if len(p) > 0 {
		if _, err := e.w.Write(p); err != nil {
			return err
		}
	}
	if err := e.rc.Flush(); err != nil {
		return err
	}
	if err := e.rc.SetWriteDeadline(time.Now().Add(e.timeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

func (s *Server) handleStreamClothes(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	stream(w, r, s, s.svc.Clothes.Watch(r.Context(), c))
}

func (s *Server) handleStreamOutfits(w http.ResponseWriter, r *http.Request) {
	stream(w, r, s, s.svc.Outfits.WatchList(r.Context()))
}

// handleStreamOutfit follows one outfit. The snapshot is null once the
// outfit is deleted.
func (s *Server) handleStreamOutfit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	stream(w, r, s, s.svc.Outfits.Watch(r.Context(), id))
}

func (s *Server) handleStreamTags(w http.ResponseWriter, r *http.Request) {
	stream(w, r, s, s.svc.Tags.Watch(r.Context()))
}

func (s *Server) handleStreamFilters(w http.ResponseWriter, r *http.Request) {
	stream(w, r, s, s.svc.Filters.WatchList(r.Context()))
}

func (s *Server) handleStreamInsights(w http.ResponseWriter, r *http.Request) {
	stream(w, r, s, s.svc.Insights.Watch(r.Context()))
}
