package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
	"github.com/99minutos/delivery-dispatch/internal/infrastructure/stream"
)

func TestStreamHandler_LowerCaseNumberReceivesUpdates(t *testing.T) {
	const stored = "DLV-00A1B2C3D4"
	hub := stream.NewHub()
	deliveries := &stubDeliveryService{
		trackFn: func(_ context.Context, n string) (*ports.TrackingView, error) {
			if strings.ToUpper(strings.TrimSpace(n)) != stored {
				return nil, domain.ErrTrackingNotFound
			}
			return &ports.TrackingView{TrackingNumber: stored, Status: domain.StatusInTransit}, nil
		},
	}

	e := echo.New()
	e.GET("/delivery/track/:trackingNumber/stream", NewStreamHandler(deliveries, hub, zerolog.Nop()).Track)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/delivery/track/dlv-00a1b2c3d4/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var snapshot streamMessage
	if err := conn.ReadJSON(&snapshot); err != nil || snapshot.Type != "snapshot" {
		t.Fatalf("snapshot: %v %+v", err, snapshot)
	}
	if n := hub.Subscribers(stored); n != 1 {
		t.Fatalf("expected subscription on %s, got %d", stored, n)
	}

	_ = hub.Publish(context.Background(), domain.TrackingUpdate{TrackingNumber: stored, Status: domain.StatusOutForDelivery, At: time.Now()})

	var update struct {
		Type string                 `json:"type"`
		Data trackingUpdateResponse `json:"data"`
	}
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("update: %v", err)
	}
	if update.Type != "update" || update.Data.Status != "OUT_FOR_DELIVERY" {
		t.Fatalf("unexpected frame %+v", update)
	}
}

func TestStreamHandler_UnknownNumber(t *testing.T) {
	deliveries := &stubDeliveryService{
		trackFn: func(context.Context, string) (*ports.TrackingView, error) {
			return nil, domain.ErrTrackingNotFound
		},
	}
	hub := stream.NewHub()
	c, _ := newContext(http.MethodGet, "/delivery/track/nope/stream", "", nil)
	c.SetParamNames("trackingNumber")
	c.SetParamValues("nope")

	if err := NewStreamHandler(deliveries, hub, zerolog.Nop()).Track(c); err != domain.ErrTrackingNotFound {
		t.Fatalf("expected ErrTrackingNotFound, got %v", err)
	}
	if n := hub.Subscribers("nope") + hub.Subscribers("NOPE"); n != 0 {
		t.Fatalf("unknown number left %d subscriptions", n)
	}
}
