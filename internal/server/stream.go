package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hay-kot/toastq/internal/core/envelope"
	"github.com/hay-kot/toastq/internal/core/logging"
	"github.com/hay-kot/toastq/internal/core/notify"
	"github.com/hay-kot/toastq/pkg/randid"
)

const writeTimeout = 10 * time.Second

type streamClient struct {
	id      string
	conn    *websocket.Conn
	changed chan struct{}
}

// signal marks the client as behind. It never blocks; the writer always
// sends the latest snapshot, so coalesced signals lose nothing.
func (c *streamClient) signal([]notify.Notification[string]) {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}

func (c *streamClient) write(snap []notify.Notification[string]) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(envelope.OK(toToasts(snap), ""))
}

// handleStream upgrades to a websocket and pushes every snapshot until the
// client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Ctx(r.Context()).Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &streamClient{
		id:      randid.Generate(8),
		conn:    conn,
		changed: make(chan struct{}, 1),
	}

	ctx, cancel := context.WithCancel(logging.WithClientID(r.Context(), client.id))
	defer cancel()

	s.clients.Set(client.id, client)
	s.updateClientGauge()
	s.logger.Debug().Ctx(ctx).Msg("stream client connected")

	defer func() {
		s.clients.Delete(client.id)
		s.updateClientGauge()
		_ = conn.Close()
		s.logger.Debug().Ctx(ctx).Msg("stream client disconnected")
	}()

	watcher := s.center.Watch(ctx, client.signal)
	defer watcher.Close()

	// Reads only detect the close; clients never send anything meaningful.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := client.write(watcher.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-client.changed:
			if err := client.write(watcher.Snapshot()); err != nil {
				s.logger.Debug().Ctx(ctx).Err(err).Msg("stream write failed")
				return
			}
		}
	}
}

func (s *Server) closeClients() {
	for _, c := range s.clients.Values() {
		_ = c.conn.Close()
	}
}

func (s *Server) updateClientGauge() {
	if s.metrics != nil {
		s.metrics.SetStreamClients(s.clients.Len())
	}
}
