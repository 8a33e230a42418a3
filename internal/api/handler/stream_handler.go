package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// streamMessage is the frame written to live tracking clients.
type streamMessage struct {
	Type string `json:"type"` // snapshot | update
	Data any    `json:"data"`
}

type trackingUpdateResponse struct {
	TrackingNumber          string                 `json:"trackingNumber"`
	Status                  string                 `json:"status"`
	Location                *locationResponse      `json:"location,omitempty"`
	DistanceToDestinationKm *float64               `json:"distanceToDestinationKm,omitempty"`
	ETAMinutes              *int                   `json:"etaMinutes,omitempty"`
	EstimatedDelivery       time.Time              `json:"estimatedDelivery"`
	Event                   *trackingEventResponse `json:"event,omitempty"`
	At                      time.Time              `json:"at"`
}

// StreamHandler pushes live tracking updates over a websocket.
type StreamHandler struct {
	deliveries ports.DeliveryService
	feed       ports.TrackingFeed
	log        zerolog.Logger
}

func NewStreamHandler(deliveries ports.DeliveryService, feed ports.TrackingFeed, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{deliveries: deliveries, feed: feed, log: log}
}

// Track handles GET /delivery/track/:trackingNumber/stream.
//
// @Summary      Live tracking stream (websocket)
// @Description  Sends a snapshot frame, then an update frame for every position or status change. The stream closes after a terminal status.
// @Tags         tracking
// @Param        trackingNumber  path  string  true  "Tracking number"
// @Success      101
// @Failure      404  {object}  errorResponse
// @Router       /delivery/track/{trackingNumber}/stream [get]
func (h *StreamHandler) Track(c echo.Context) error {
	ctx := c.Request().Context()
	view, err := h.deliveries.TrackByNumber(ctx, c.Param("trackingNumber"))
	if err != nil {
		return err
	}
	// Publishers key updates by the stored number, not the path as typed.
	tn := view.TrackingNumber

	updates, cancel, err := h.feed.Subscribe(ctx, tn)
	if err != nil {
		return err
	}
	defer cancel()

	// Re-read after subscribing so nothing falls in between.
	if view, err = h.deliveries.TrackByNumber(ctx, tn); err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn().Err(err).Str("tracking_number", tn).Msg("websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	closed := make(chan struct{})
	go h.readLoop(conn, tn, closed)

	if err := h.write(conn, streamMessage{Type: "snapshot", Data: toTrackingResponse(view)}); err != nil {
		return nil
	}
	if view.Status.IsTerminal() {
		h.closeNormal(conn)
		return nil
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return nil
		case <-ctx.Done():
			return nil
		case u, ok := <-updates:
			if !ok {
				h.closeNormal(conn)
				return nil
			}
			if err := h.write(conn, streamMessage{Type: "update", Data: toTrackingUpdateResponse(u)}); err != nil {
				return nil
			}
			if u.Status.IsTerminal() {
				h.closeNormal(conn)
				return nil
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

// readLoop discards client frames and keeps the read deadline fresh on pong.
func (h *StreamHandler) readLoop(conn *websocket.Conn, tn string, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Debug().Err(err).Str("tracking_number", tn).Msg("tracking stream closed unexpectedly")
			}
			return
		}
	}
}

func (h *StreamHandler) write(conn *websocket.Conn, msg streamMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

func (h *StreamHandler) closeNormal(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

func toTrackingUpdateResponse(u domain.TrackingUpdate) trackingUpdateResponse {
	out := trackingUpdateResponse{
		TrackingNumber:          u.TrackingNumber,
		Status:                  string(u.Status),
		Location:                toLocationResponse(u.Location),
		DistanceToDestinationKm: u.DistanceToDestinationKm,
		ETAMinutes:              u.ETAMinutes,
		EstimatedDelivery:       u.EstimatedDelivery,
		At:                      u.At,
	}
	if u.Event != nil {
		ev := toEventResponse(*u.Event)
		out.Event = &ev
	}
	return out
}
