package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/delivery-dispatch/internal/core/ports"
)

// LocationQueue accepts location reports for asynchronous, per-agent ordered
// processing.
type LocationQueue interface {
	Enqueue(report ports.LocationReport) error
}

// AgentHandler serves the /delivery/agent endpoints.
type AgentHandler struct {
	agents     ports.AgentService
	deliveries ports.DeliveryService
	locations  LocationQueue
}

func NewAgentHandler(agents ports.AgentService, deliveries ports.DeliveryService, locations LocationQueue) *AgentHandler {
	return &AgentHandler{agents: agents, deliveries: deliveries, locations: locations}
}

// Register handles POST /delivery/agent/register.
//
// @Summary      Onboard the caller as a delivery agent
// @Tags         agent
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerAgentRequest  true  "Agent profile"
// @Success      201   {object}  agentResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /delivery/agent/register [post]
func (h *AgentHandler) Register(c echo.Context) error {
	var req registerAgentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	agent, err := h.agents.Register(c.Request().Context(), ports.RegisterAgentInput{
		UserID:        userID,
		Name:          req.Name,
		Phone:         req.Phone,
		VehicleType:   req.VehicleType,
		MaxCapacityKg: req.MaxCapacityKg,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAgentResponse(agent))
}

// Profile handles GET /delivery/agent/profile.
//
// @Summary      The caller's agent profile
// @Tags         agent
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  agentResponse
// @Failure      404  {object}  errorResponse
// @Router       /delivery/agent/profile [get]
func (h *AgentHandler) Profile(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	agent, err := h.agents.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAgentResponse(agent))
}

// SetAvailability handles POST /delivery/agent/availability.
//
// @Summary      Go online or offline
// @Tags         agent
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      availabilityRequest  true  "Availability"
// @Success      200   {object}  agentResponse
// @Failure      400   {object}  errorResponse
// @Router       /delivery/agent/availability [post]
func (h *AgentHandler) SetAvailability(c echo.Context) error {
	var req availabilityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	agent, err := h.agents.SetAvailability(c.Request().Context(), userID, *req.Available)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAgentResponse(agent))
}

// Deliveries handles GET /delivery/agent/deliveries.
//
// @Summary      Shipments assigned to the caller
// @Tags         agent
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"
// @Success      200     {array}   shipmentResponse
// @Failure      400     {object}  errorResponse
// @Router       /delivery/agent/deliveries [get]
func (h *AgentHandler) Deliveries(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	items, err := h.deliveries.AgentDeliveries(c.Request().Context(), actor.ID, c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toShipmentList(items))
}

// ReportLocation handles POST /delivery/agent/location.
//
// @Summary      Report the caller's position
// @Description  Reports are queued and applied in device-timestamp order per agent.
// @Tags         agent
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      locationRequest  true  "Position"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /delivery/agent/location [post]
func (h *AgentHandler) ReportLocation(c echo.Context) error {
	var req locationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	recordedAt := time.Now().UTC()
	if req.RecordedAt != nil {
		recordedAt = req.RecordedAt.UTC()
	}
	err = h.locations.Enqueue(ports.LocationReport{
		AgentID:    actor.ID,
		Lat:        *req.Latitude,
		Lng:        *req.Longitude,
		AccuracyM:  req.Accuracy,
		RecordedAt: recordedAt,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "location queue is busy, retry shortly").SetInternal(err)
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "location accepted"})
}
