package api

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	models "EdgeFinder/internal/domain/models"
	svcmetrics "EdgeFinder/internal/service/metrics"
	xhttp "EdgeFinder/pkg/http"
	xlogger "EdgeFinder/pkg/logger"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 5 * time.Second
	maxFrameSize = 4096
)

// liveFrame is what the server sends on /ws/sentiment.
type liveFrame struct {
	Type   string             `json:"type"`
	Data   *models.Evaluation `json:"data,omitempty"`
	Errors interface{}        `json:"errors,omitempty"`
}

// liveSession serialises writes from the read loop and the ping loop.
type liveSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *liveSession) writeJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(v)
}

func (s *liveSession) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Live upgrades to a websocket. Each text frame carries the same fields as
// GET /api/sentiment and is answered with a full evaluation.
func (h *SentimentEchoHandler) Live(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	svcmetrics.LiveConnections.Inc()
	defer svcmetrics.LiveConnections.Dec()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	sess := &liveSession{conn: conn}
	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// ping loop
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := sess.ping(); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket closed", xlogger.Error(err))
			}
			return nil
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := sess.writeJSON(h.liveEvaluate(ctx, b)); err != nil {
			h.logger.Debug("websocket write failed", xlogger.Error(err))
			return nil
		}
	}
}

func (h *SentimentEchoHandler) liveEvaluate(ctx context.Context, b []byte) liveFrame {
	req := &models.SentimentRequest{}
	if verr := xhttp.DecodeAndValidate(ctx, b, req); verr != nil {
		svcmetrics.APIErrors.WithLabelValues("live", "validation").Inc()
		return liveFrame{Type: "error", Errors: verr}
	}
	ev, err := h.evaluate(ctx, req)
	if err != nil {
		appErr := toAppError(err)
		svcmetrics.APIErrors.WithLabelValues("live", appErr.Code).Inc()
		return liveFrame{Type: "error", Errors: []*xhttp.AppError{appErr}}
	}
	return liveFrame{Type: "evaluation", Data: ev}
}
