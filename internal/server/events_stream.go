package server

import (
	"net/http"
	"strings"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/aristath/voyager/internal/events"
)

// handleEventsStream handles GET /api/events/stream: a websocket that fans
// out search progress events (source settlements, poll progress, completion)
// to the dashboard. An optional ?types= filter narrows the stream.
func (s *Server) handleEventsStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	var allowedTypes map[events.EventType]bool
	if typesFilter := r.URL.Query().Get("types"); typesFilter != "" {
		allowedTypes = make(map[events.EventType]bool)
		for _, t := range strings.Split(typesFilter, ",") {
			allowedTypes[events.EventType(strings.TrimSpace(t))] = true
		}
	}

	ch, unsubscribe := s.bus.Subscribe()
	defer unsubscribe()

	s.log.Info().Str("remote", r.RemoteAddr).Msg("Client connected to event stream")

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case evt, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "bus closed")
				return
			}
			if allowedTypes != nil && !allowedTypes[evt.Type] {
				continue
			}
			if err := wsjson.Write(ctx, conn, evt); err != nil {
				s.log.Debug().Err(err).Msg("Event stream write failed, client gone")
				return
			}
		}
	}
}
