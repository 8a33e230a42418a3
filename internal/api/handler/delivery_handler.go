package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/delivery-dispatch/internal/core/ports"
)

const maxProofBytes = 5 << 20

// DeliveryHandler handles the customer and agent facing shipment endpoints.
type DeliveryHandler struct {
	service ports.DeliveryService
}

func NewDeliveryHandler(service ports.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{service: service}
}

// Quote handles POST /delivery/quote.
//
// @Summary      Price a delivery
// @Description  Returns the ranked rate list. A route no zone serves yields success=false and no rates.
// @Tags         delivery
// @Accept       json
// @Produce      json
// @Param        body  body      quoteRequest  true  "Route and package"
// @Success      200   {object}  quoteResponse
// @Failure      400   {object}  errorResponse
// @Router       /delivery/quote [post]
func (h *DeliveryHandler) Quote(c echo.Context) error {
	var req quoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Quote(c.Request().Context(), toQuoteInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toQuoteResponse(res))
}

// CreateShipment handles POST /delivery/shipments.
//
// @Summary      Create a shipment
// @Description  Prices and stores the shipment and tries to assign an agent. With no agent available the shipment stays PENDING.
// @Tags         delivery
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                 false  "Replays the earlier shipment created with the same key"
// @Param        body             body      createShipmentRequest  true   "Shipment details"
// @Success      201              {object}  createShipmentResponse
// @Success      200              {object}  createShipmentResponse  "Idempotent replay"
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Router       /delivery/shipments [post]
func (h *DeliveryHandler) CreateShipment(c echo.Context) error {
	var req createShipmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	key := strings.TrimSpace(c.Request().Header.Get("Idempotency-Key"))

	res, err := h.service.CreateShipment(c.Request().Context(), toCreateInput(req, actor.ID, key))
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if res.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, toCreateResponse(res))
}

// TrackByNumber handles GET /delivery/track/:trackingNumber.
//
// @Summary      Public tracking
// @Tags         tracking
// @Produce      json
// @Param        trackingNumber  path      string  true  "Tracking number (e.g. DLV-00A1B2C3D4)"
// @Success      200             {object}  trackingResponse
// @Failure      404             {object}  errorResponse
// @Router       /delivery/track/{trackingNumber} [get]
func (h *DeliveryHandler) TrackByNumber(c echo.Context) error {
	view, err := h.service.TrackByNumber(c.Request().Context(), c.Param("trackingNumber"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTrackingResponse(view))
}

// TrackByID handles GET /delivery/shipments/:id/track.
//
// @Summary      Track a shipment by id
// @Tags         tracking
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Shipment id"
// @Success      200  {object}  trackingResponse
// @Failure      404  {object}  errorResponse
// @Router       /delivery/shipments/{id}/track [get]
func (h *DeliveryHandler) TrackByID(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	view, err := h.service.TrackByID(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTrackingResponse(view))
}

// UpdateStatus handles PATCH /delivery/shipments/:id/status.
//
// @Summary      Move a shipment through its lifecycle
// @Tags         delivery
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Shipment id"
// @Param        body  body      statusUpdateRequest  true  "Target status"
// @Success      200   {object}  transitionResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /delivery/shipments/{id}/status [patch]
func (h *DeliveryHandler) UpdateStatus(c echo.Context) error {
	var req statusUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	out, err := h.service.UpdateStatus(c.Request().Context(), toTransitionRequest(req, c.Param("id"), actor))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTransitionResponse(out))
}

// Cancel handles POST /delivery/shipments/:id/cancel.
//
// @Summary      Cancel a shipment before pickup
// @Tags         delivery
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true   "Shipment id"
// @Param        body  body      cancelRequest  false  "Reason"
// @Success      200   {object}  transitionResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /delivery/shipments/{id}/cancel [post]
func (h *DeliveryHandler) Cancel(c echo.Context) error {
	var req cancelRequest
	if c.Request().ContentLength > 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
	}
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	out, err := h.service.Cancel(c.Request().Context(), c.Param("id"), actor, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTransitionResponse(out))
}

// UploadProof handles POST /delivery/shipments/:id/proof.
//
// @Summary      Upload a delivery proof photo
// @Tags         delivery
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Shipment id"
// @Param        photo  formData  file    true  "Image file"
// @Success      201    {object}  proofResponse
// @Failure      400    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Failure      503    {object}  errorResponse
// @Router       /delivery/shipments/{id}/proof [post]
func (h *DeliveryHandler) UploadProof(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "photo file is required")
	}
	if fh.Size > maxProofBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "photo exceeds 5MB")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read photo")
	}
	defer f.Close()

	url, err := h.service.UploadProof(c.Request().Context(), ports.ProofUpload{
		ShipmentID:  c.Param("id"),
		Actor:       actor,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Body:        f,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, proofResponse{URL: url})
}
