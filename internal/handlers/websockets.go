package handlers

import (
	"context"
	"maps"
	"net/http"
	"strconv"
	"time"

	"temp_monitor/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12

	defaultPoll = time.Second
	maxPoll     = 10 * time.Second

	wsTypeChart = "chart"
)

type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Renderers may be served from another origin on the LAN.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chartSocket pushes chart snapshots to one client. A snapshot is written
// only when its version or live values differ from the last one sent.
type chartSocket struct {
	h    *Handler
	conn *websocket.Conn

	version uint64
	current map[models.Role]string
	sent    bool
}

func (s *chartSocket) changed(snap models.ChartSnapshot) bool {
	return !s.sent || snap.Version != s.version || !maps.Equal(snap.Current, s.current)
}

// push fetches the chart and writes it if the client has not seen it yet.
func (s *chartSocket) push(ctx context.Context) error {
	snap, err := s.h.services.Monitoring.Chart(ctx)
	if err != nil {
		s.h.logInfo("ws_chart_unavailable", "err", err)
		return err
	}
	if !s.changed(snap) {
		return nil
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(wsEnvelope{Type: wsTypeChart, Data: snap}); err != nil {
		return err
	}
	s.version, s.current, s.sent = snap.Version, snap.Current, true
	return nil
}

func (s *chartSocket) ping() error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

// drain reads until the client goes away so pongs and close frames are
// processed. It closes gone on return.
func (s *chartSocket) drain(gone chan<- struct{}) {
	defer close(gone)
	s.conn.SetReadLimit(maxMsgSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			s.h.logInfo("ws_client_gone", "err", err)
			return
		}
	}
}

// run sends the chart at once and then on every poll until the client
// disconnects or ctx ends.
func (s *chartSocket) run(ctx context.Context, poll time.Duration) {
	gone := make(chan struct{})
	go s.drain(gone)

	if err := s.push(ctx); err != nil {
		return
	}

	polls := time.NewTicker(poll)
	pings := time.NewTicker(pingPeriod)
	defer polls.Stop()
	defer pings.Stop()

	for {
		var err error
		select {
		case <-gone:
			return
		case <-ctx.Done():
			return
		case <-pings.C:
			err = s.ping()
		case <-polls.C:
			err = s.push(ctx)
		}
		if err != nil {
			s.h.logInfo("ws_stream_ended", "err", err)
			return
		}
	}
}

// @Summary      Chart stream
// @Description  Websocket. Sends {"type":"chart","data":ChartSnapshot} on connect and whenever the chart or a live value changes. The optional interval query sets the poll period as a duration ("500ms") or in milliseconds ("500"), up to 10s.
// @Tags         chart
// @Param        interval  query  string  false  "Poll period"
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	poll := pollInterval(c.Query("interval"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	sock := &chartSocket{h: h, conn: conn}
	sock.run(c.Request.Context(), poll)
}

// pollInterval accepts a Go duration or a bare number of milliseconds.
// Anything unparsable or outside (0, maxPoll] gives defaultPoll.
func pollInterval(raw string) time.Duration {
	if raw == "" {
		return defaultPoll
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		ms, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return defaultPoll
		}
		d = time.Duration(ms) * time.Millisecond
	}
	if d <= 0 || d > maxPoll {
		return defaultPoll
	}
	return d
}

func (h *Handler) logInfo(event string, kv ...interface{}) {
	if h.log != nil {
		h.log.Infow(event, kv...)
	}
}
