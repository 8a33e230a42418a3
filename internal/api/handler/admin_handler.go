package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
)

// AdminHandler serves the /delivery/admin endpoints. All routes require the
// admin role.
type AdminHandler struct {
	deliveries ports.DeliveryService
	agents     ports.AgentService
	zones      ports.ZoneService
}

func NewAdminHandler(deliveries ports.DeliveryService, agents ports.AgentService, zones ports.ZoneService) *AdminHandler {
	return &AdminHandler{deliveries: deliveries, agents: agents, zones: zones}
}

// ListShipments handles GET /delivery/admin/shipments.
//
// @Summary      List shipments
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status        query     string  false  "Status"
// @Param        deliveryType  query     string  false  "Delivery type"
// @Param        agentId       query     string  false  "Assigned agent"
// @Param        customerId    query     string  false  "Customer"
// @Param        search        query     string  false  "Tracking number prefix"
// @Param        dateFrom      query     string  false  "Created at or after (RFC3339 or YYYY-MM-DD)"
// @Param        dateTo        query     string  false  "Created at or before (RFC3339 or YYYY-MM-DD)"
// @Param        page          query     int     false  "Page (default 1)"
// @Param        limit         query     int     false  "Page size (default 20, max 100)"
// @Success      200           {object}  listShipmentsResponse
// @Failure      400           {object}  errorResponse
// @Router       /delivery/admin/shipments [get]
func (h *AdminHandler) ListShipments(c echo.Context) error {
	in := ports.ListShipmentsInput{
		Status:       c.QueryParam("status"),
		DeliveryType: c.QueryParam("deliveryType"),
		AgentID:      c.QueryParam("agentId"),
		CustomerID:   c.QueryParam("customerId"),
		Search:       c.QueryParam("search"),
	}

	var err error
	if in.Page, err = intParam(c, "page"); err != nil {
		return err
	}
	if in.Limit, err = intParam(c, "limit"); err != nil {
		return err
	}
	if in.DateFrom, err = timeParam(c, "dateFrom", false); err != nil {
		return err
	}
	if in.DateTo, err = timeParam(c, "dateTo", true); err != nil {
		return err
	}

	page, err := h.deliveries.ListShipments(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listShipmentsResponse{
		Data: toShipmentList(page.Items),
		Pagination: paginationResponse{
			Total:      page.Total,
			Page:       page.Page,
			Limit:      page.Limit,
			TotalPages: page.TotalPages,
		},
	})
}

// Analytics handles GET /delivery/admin/analytics.
//
// @Summary      Shipment outcome counts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  analyticsResponse
// @Router       /delivery/admin/analytics [get]
func (h *AdminHandler) Analytics(c echo.Context) error {
	a, err := h.deliveries.Analytics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAnalyticsResponse(a))
}

// UpdateStatus handles PATCH /delivery/admin/shipments/:id/status.
//
// @Summary      Force a lifecycle transition
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Shipment id"
// @Param        body  body      statusUpdateRequest  true  "Target status"
// @Success      200   {object}  transitionResponse
// @Failure      400   {object}  errorResponse
// @Router       /delivery/admin/shipments/{id}/status [patch]
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	var req statusUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	out, err := h.deliveries.UpdateStatus(c.Request().Context(), toTransitionRequest(req, c.Param("id"), actor))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTransitionResponse(out))
}

// Assign handles POST /delivery/admin/shipments/:id/assign.
//
// @Summary      Assign a pending shipment to a specific agent
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Shipment id"
// @Param        body  body      assignRequest  true  "Agent"
// @Success      200   {object}  shipmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /delivery/admin/shipments/{id}/assign [post]
func (h *AdminHandler) Assign(c echo.Context) error {
	var req assignRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	s, err := h.deliveries.AssignAgent(c.Request().Context(), c.Param("id"), req.AgentID, actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toShipmentResponse(s))
}

// Dispatch handles POST /delivery/admin/dispatch.
//
// @Summary      Retry dispatch for pending shipments
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dispatchResponse
// @Router       /delivery/admin/dispatch [post]
func (h *AdminHandler) Dispatch(c echo.Context) error {
	n, err := h.deliveries.DispatchPending(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dispatchResponse{Assigned: n})
}

// ResolveCOD handles POST /delivery/admin/shipments/:id/cod/resolve.
//
// @Summary      Close a cash-on-delivery discrepancy
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Shipment id"
// @Param        body  body      resolveCODRequest  true  "Resolution note"
// @Success      200   {object}  shipmentResponse
// @Failure      400   {object}  errorResponse
// @Router       /delivery/admin/shipments/{id}/cod/resolve [post]
func (h *AdminHandler) ResolveCOD(c echo.Context) error {
	var req resolveCODRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	s, err := h.deliveries.ResolveCOD(c.Request().Context(), c.Param("id"), actor, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toShipmentResponse(s))
}

// ListAgents handles GET /delivery/admin/agents.
//
// @Summary      List agents
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Agent status"
// @Success      200     {array}   agentResponse
// @Router       /delivery/admin/agents [get]
func (h *AdminHandler) ListAgents(c echo.Context) error {
	items, err := h.agents.List(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAgentList(items))
}

// VerifyAgent handles POST /delivery/admin/agents/:id/verify.
//
// @Summary      Verify and activate an agent
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Agent id"
// @Success      200  {object}  agentResponse
// @Failure      404  {object}  errorResponse
// @Router       /delivery/admin/agents/{id}/verify [post]
func (h *AdminHandler) VerifyAgent(c echo.Context) error {
	a, err := h.agents.Verify(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAgentResponse(a))
}

// SetAgentStatus handles POST /delivery/admin/agents/:id/status.
//
// @Summary      Change an agent's status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Agent id"
// @Param        body  body      agentStatusRequest  true  "Status"
// @Success      200   {object}  agentResponse
// @Failure      400   {object}  errorResponse
// @Router       /delivery/admin/agents/{id}/status [post]
func (h *AdminHandler) SetAgentStatus(c echo.Context) error {
	var req agentStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	a, err := h.agents.SetStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAgentResponse(a))
}

// ListZones handles GET /delivery/admin/zones.
//
// @Summary      List delivery zones
// @Tags         zones
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  zoneResponse
// @Router       /delivery/admin/zones [get]
func (h *AdminHandler) ListZones(c echo.Context) error {
	zones, err := h.zones.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]zoneResponse, 0, len(zones))
	for _, z := range zones {
		out = append(out, toZoneResponse(z))
	}
	return c.JSON(http.StatusOK, out)
}

// PutZone handles PUT /delivery/admin/zones/:code.
//
// @Summary      Create or replace a zone
// @Tags         zones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string       true  "Zone code"
// @Param        body  body      zoneRequest  true  "Zone"
// @Success      200   {object}  zoneResponse
// @Failure      400   {object}  errorResponse
// @Router       /delivery/admin/zones/{code} [put]
func (h *AdminHandler) PutZone(c echo.Context) error {
	var req zoneRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	z, err := h.zones.Put(c.Request().Context(), toZoneInput(c.Param("code"), req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toZoneResponse(z))
}

// SuspendZone handles POST /delivery/admin/zones/:code/suspend.
//
// @Summary      Suspend a zone
// @Tags         zones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string              true  "Zone code"
// @Param        body  body      suspendZoneRequest  true  "Reason"
// @Success      200   {object}  zoneResponse
// @Failure      404   {object}  errorResponse
// @Router       /delivery/admin/zones/{code}/suspend [post]
func (h *AdminHandler) SuspendZone(c echo.Context) error {
	var req suspendZoneRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	z, err := h.zones.Suspend(c.Request().Context(), c.Param("code"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toZoneResponse(z))
}

// ResumeZone handles POST /delivery/admin/zones/:code/resume.
//
// @Summary      Lift a zone suspension
// @Tags         zones
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string  true  "Zone code"
// @Success      200   {object}  zoneResponse
// @Failure      404   {object}  errorResponse
// @Router       /delivery/admin/zones/{code}/resume [post]
func (h *AdminHandler) ResumeZone(c echo.Context) error {
	z, err := h.zones.Resume(c.Request().Context(), c.Param("code"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toZoneResponse(z))
}

func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return n, nil
}

// timeParam accepts RFC3339 or a bare date. A bare dateTo covers the whole day.
func timeParam(c echo.Context, name string, endOfDay bool) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError(name, "must be RFC3339 or YYYY-MM-DD")
	}
	if endOfDay {
		d = d.Add(24*time.Hour - time.Nanosecond)
	}
	return d.UTC(), nil
}
