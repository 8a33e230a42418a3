package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
	"github.com/99minutos/delivery-dispatch/pkg/metrics"
)

const (
	carrierName      = "Internal Fleet"
	maxPageLimit     = 100
	defaultPageLimit = 20
	trackingPrefix   = "DLV-"
)

// ShipmentService composes pricing, dispatch and the lifecycle engine into the
// delivery use cases.
type ShipmentService struct {
	shipments  ports.ShipmentRepository
	agents     ports.AgentRepository
	fees       *FeeEngine
	dispatcher *Dispatcher
	lifecycle  *LifecycleEngine
	proofs     ports.ProofStore
	logger     zerolog.Logger
	now        func() time.Time
}

// NewShipmentService wires the delivery use cases. proofs may be nil when no
// object storage is configured.
func NewShipmentService(
	shipments ports.ShipmentRepository,
	agents ports.AgentRepository,
	fees *FeeEngine,
	dispatcher *Dispatcher,
	lifecycle *LifecycleEngine,
	proofs ports.ProofStore,
	logger zerolog.Logger,
) *ShipmentService {
	return &ShipmentService{
		shipments:  shipments,
		agents:     agents,
		fees:       fees,
		dispatcher: dispatcher,
		lifecycle:  lifecycle,
		proofs:     proofs,
		logger:     logger,
		now:        time.Now,
	}
}

// Quote prices a route. An unserviceable route is not an error: the result
// carries Success=false and no rates.
func (s *ShipmentService) Quote(ctx context.Context, in ports.QuoteInput) (*ports.QuoteResult, error) {
	est, err := s.fees.Quote(ctx, FeeRequest{
		Pickup:       in.Pickup.Domain(),
		Delivery:     in.Delivery.Domain(),
		WeightKg:     in.WeightKg,
		PackageValue: in.PackageValue,
		DeliveryType: domain.ParseDeliveryType(in.DeliveryType),
		COD:          in.COD,
		ScheduledFor: in.ScheduledFor,
		Now:          s.now(),
	})
	if errors.Is(err, domain.ErrNoServiceableZone) {
		metrics.QuotesTotal.WithLabelValues("no_zone").Inc()
		return &ports.QuoteResult{Success: false, Message: domain.ErrNoServiceableZone.Error(), Rates: []ports.Rate{}}, nil
	}
	if err != nil {
		return nil, err
	}
	metrics.QuotesTotal.WithLabelValues("ok").Inc()
	return &ports.QuoteResult{Success: true, Rates: []ports.Rate{toRate(est)}}, nil
}

func toRate(est *Estimate) ports.Rate {
	return ports.Rate{
		Carrier:        carrierName,
		DeliveryType:   est.DeliveryType,
		Fee:            est.Fee.Total,
		Currency:       est.Currency,
		DistanceKm:     est.Fee.DistanceKm,
		EstimatedHours: est.EstimatedHours,
		EstimatedDays:  int(math.Ceil(est.EstimatedHours / 24)),
		Breakdown:      est.Fee,
	}
}

// CreateShipment prices and stores a shipment, then tries to dispatch it. If an
// idempotency key is provided and already seen, the previously created
// shipment is returned without side effects.
func (s *ShipmentService) CreateShipment(ctx context.Context, in ports.CreateShipmentInput) (*ports.CreateShipmentResult, error) {
	if in.IdempotencyKey != "" {
		existing, err := s.shipments.FindByIdempotencyKey(ctx, in.CustomerID, in.IdempotencyKey)
		if err == nil {
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("tracking_number", existing.TrackingNumber).Msg("idempotent replay")
			return &ports.CreateShipmentResult{Shipment: existing, AlreadyExisted: true, Assignment: assignmentOf(existing)}, nil
		}
		if !errors.Is(err, domain.ErrShipmentNotFound) {
			return nil, fmt.Errorf("check idempotency key: %w", err)
		}
	}
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	dt := domain.ParseDeliveryType(in.DeliveryType)
	if dt == domain.DeliveryScheduled && in.ScheduledFor != nil && !in.ScheduledFor.After(now) {
		return nil, domain.NewValidationError("scheduled_for", "scheduled_for must be in the future")
	}
	weight := in.WeightKg
	if weight <= 0 {
		weight = 1
	}

	est, err := s.fees.Quote(ctx, FeeRequest{
		Pickup:       in.Pickup.Coordinates.Domain(),
		Delivery:     in.Delivery.Coordinates.Domain(),
		WeightKg:     weight,
		PackageValue: in.PackageValue,
		DeliveryType: dt,
		COD:          in.CODAmount != nil,
		ScheduledFor: in.ScheduledFor,
		Now:          now,
		Fresh:        true,
	})
	if err != nil {
		return nil, err
	}

	shipment := &domain.Shipment{
		ID:                uuid.NewString(),
		TrackingNumber:    generateTrackingNumber(),
		CustomerID:        in.CustomerID,
		Status:            domain.StatusPending,
		DeliveryType:      dt,
		Pickup:            toAddress(in.Pickup),
		Delivery:          toAddress(in.Delivery),
		WeightKg:          weight,
		PackageValue:      in.PackageValue,
		Fragile:           in.Fragile,
		Description:       in.Description,
		CODAmount:         in.CODAmount,
		DeliveryFee:       est.Fee.Total,
		Currency:          est.Currency,
		Fee:               est.Fee,
		EstimatedDelivery: estimatedDelivery(dt, now, est.EstimatedHours, in.ScheduledFor),
		IdempotencyKey:    in.IdempotencyKey,
		CreatedAt:         now,
		UpdatedAt:         now,
		Events: []domain.TrackingEvent{{
			ID:          uuid.NewString(),
			Type:        domain.EventCreated,
			Status:      domain.StatusPending,
			Description: "Shipment created",
			ActorID:     in.CustomerID,
			RecordedAt:  now,
		}},
	}
	if dt == domain.DeliveryScheduled {
		shipment.ScheduledFor = in.ScheduledFor
	}

	if err := s.shipments.Create(ctx, shipment); err != nil {
		if errors.Is(err, domain.ErrDuplicateShipment) && in.IdempotencyKey != "" {
			// Lost a race with a concurrent request carrying the same key.
			if existing, ferr := s.shipments.FindByIdempotencyKey(ctx, in.CustomerID, in.IdempotencyKey); ferr == nil {
				return &ports.CreateShipmentResult{Shipment: existing, AlreadyExisted: true, Assignment: assignmentOf(existing)}, nil
			}
		}
		s.logger.Error().Err(err).Msg("failed to create shipment")
		return nil, err
	}
	metrics.ShipmentsCreatedTotal.WithLabelValues(string(dt)).Inc()
	s.logger.Info().
		Str("shipment_id", shipment.ID).
		Str("tracking_number", shipment.TrackingNumber).
		Str("customer_id", in.CustomerID).
		Float64("fee", shipment.DeliveryFee).
		Msg("shipment created")

	result := &ports.CreateShipmentResult{Shipment: shipment, Assignment: ports.AssignmentUnavailable}
	assigned, err := s.dispatcher.Assign(ctx, shipment)
	switch {
	case err == nil:
		result.Shipment = assigned
		result.Assignment = ports.AssignmentAssigned
	case errors.Is(err, domain.ErrNoAgentAvailable):
		s.logger.Info().Str("shipment_id", shipment.ID).Msg("no agent available, shipment left pending")
	default:
		s.logger.Warn().Err(err).Str("shipment_id", shipment.ID).Msg("dispatch failed, shipment left pending")
	}
	return result, nil
}

func assignmentOf(s *domain.Shipment) ports.Assignment {
	if s.AgentID != "" {
		return ports.AssignmentAssigned
	}
	return ports.AssignmentUnavailable
}

func validateCreate(in ports.CreateShipmentInput) error {
	if in.CustomerID == "" {
		return domain.NewValidationError("customer_id", "customer is required")
	}
	if !in.Pickup.Coordinates.Domain().Valid() {
		return domain.NewValidationError("pickup_address", "pickup coordinates out of range")
	}
	if !in.Delivery.Coordinates.Domain().Valid() {
		return domain.NewValidationError("delivery_address", "delivery coordinates out of range")
	}
	if in.PackageValue < 0 {
		return domain.NewValidationError("package_value", "package_value must not be negative")
	}
	if in.CODAmount != nil && *in.CODAmount < 0 {
		return domain.NewValidationError("cod_amount", "cod_amount must not be negative")
	}
	if domain.ParseDeliveryType(in.DeliveryType) == domain.DeliveryScheduled && in.ScheduledFor == nil {
		return domain.NewValidationError("scheduled_for", "scheduled_for is required for SCHEDULED deliveries")
	}
	return nil
}

func toAddress(a ports.AddressInput) domain.Address {
	return domain.Address{
		Line:         a.Line,
		City:         a.City,
		State:        a.State,
		Country:      a.Country,
		ContactName:  a.ContactName,
		ContactPhone: a.ContactPhone,
		Coordinates:  a.Coordinates.Domain(),
	}
}

// generateTrackingNumber returns a unique tracking number in the format DLV-XXXXXXXXXX.
func generateTrackingNumber() string {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("%s%010X", trackingPrefix, time.Now().UnixNano()&0xFFFFFFFFFF)
	}
	return fmt.Sprintf("%s%010X", trackingPrefix, b)
}

// estimatedDelivery applies the delivery type SLA to the creation time.
func estimatedDelivery(dt domain.DeliveryType, from time.Time, slaHours float64, scheduledFor *time.Time) time.Time {
	if dt == domain.DeliveryScheduled && scheduledFor != nil {
		return scheduledFor.UTC()
	}
	return from.Add(time.Duration(slaHours * float64(time.Hour)))
}

// TrackByNumber is the public tracking lookup.
func (s *ShipmentService) TrackByNumber(ctx context.Context, trackingNumber string) (*ports.TrackingView, error) {
	shipment, err := s.shipments.FindByTrackingNumber(ctx, strings.ToUpper(strings.TrimSpace(trackingNumber)))
	if err != nil {
		if errors.Is(err, domain.ErrShipmentNotFound) {
			return nil, domain.ErrTrackingNotFound
		}
		return nil, err
	}
	return s.trackingView(ctx, shipment), nil
}

// TrackByID returns the same view by internal id to parties of the shipment.
func (s *ShipmentService) TrackByID(ctx context.Context, id string, actor domain.Actor) (*ports.TrackingView, error) {
	shipment, err := s.shipments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleCustomer:
		if shipment.CustomerID != actor.ID {
			return nil, domain.ErrShipmentNotFound
		}
	case domain.RoleAgent:
		if shipment.AgentID != actor.ID {
			return nil, domain.ErrShipmentNotFound
		}
	default:
		return nil, domain.ErrForbidden
	}
	return s.trackingView(ctx, shipment), nil
}

func (s *ShipmentService) trackingView(ctx context.Context, sh *domain.Shipment) *ports.TrackingView {
	view := &ports.TrackingView{
		TrackingNumber:          sh.TrackingNumber,
		Status:                  sh.Status,
		DeliveryType:            sh.DeliveryType,
		PickupCity:              sh.Pickup.City,
		DeliveryCity:            sh.Delivery.City,
		EstimatedDelivery:       sh.EstimatedDelivery,
		DeliveredAt:             sh.DeliveredAt,
		CurrentLocation:         sh.CurrentLocation,
		DistanceToDestinationKm: sh.DistanceToDestinationKm,
		ETAMinutes:              sh.ETAMinutes,
		Events:                  make([]ports.TrackingEventView, 0, len(sh.Events)),
	}
	for _, ev := range sh.Events {
		view.Events = append(view.Events, ports.TrackingEventView{
			Type:        ev.Type,
			Status:      ev.Status,
			Description: ev.Description,
			Location:    ev.Location,
			RecordedAt:  ev.RecordedAt,
		})
	}
	if sh.AgentID != "" {
		agent, err := s.agents.FindByID(ctx, sh.AgentID)
		if err != nil {
			s.logger.Warn().Err(err).Str("agent_id", sh.AgentID).Msg("agent lookup for tracking view failed")
		} else {
			view.Agent = &ports.AgentContact{
				Name:        agent.Name,
				Phone:       MaskPhone(agent.Phone),
				VehicleType: agent.VehicleType,
			}
		}
	}
	return view
}

// MaskPhone keeps the first and last four characters of phone.
func MaskPhone(phone string) string {
	r := []rune(phone)
	if len(r) <= 8 {
		if len(r) <= 2 {
			return strings.Repeat("*", len(r))
		}
		return string(r[:1]) + strings.Repeat("*", len(r)-2) + string(r[len(r)-1:])
	}
	return string(r[:4]) + strings.Repeat("*", len(r)-8) + string(r[len(r)-4:])
}

// UpdateStatus forwards to the lifecycle engine.
func (s *ShipmentService) UpdateStatus(ctx context.Context, req ports.TransitionRequest) (*ports.TransitionOutcome, error) {
	return s.lifecycle.Transition(ctx, req)
}

// Cancel cancels a PENDING or ASSIGNED shipment.
func (s *ShipmentService) Cancel(ctx context.Context, id string, actor domain.Actor, reason string) (*ports.TransitionOutcome, error) {
	return s.lifecycle.Transition(ctx, ports.TransitionRequest{
		ShipmentID: id,
		Status:     string(domain.StatusCancelled),
		Actor:      actor,
		Notes:      reason,
	})
}

// AgentDeliveries lists the agent's shipments ordered by lifecycle position of
// their status and then by estimated delivery.
func (s *ShipmentService) AgentDeliveries(ctx context.Context, agentID, status string) ([]*domain.Shipment, error) {
	var statuses []domain.ShipmentStatus
	if status != "" {
		st, err := domain.ParseShipmentStatus(status)
		if err != nil {
			return nil, err
		}
		statuses = []domain.ShipmentStatus{st}
	}
	items, err := s.shipments.ListByAgent(ctx, agentID, statuses)
	if err != nil {
		return nil, fmt.Errorf("list agent deliveries: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		oi, oj := items[i].Status.Ordinal(), items[j].Status.Ordinal()
		if oi != oj {
			return oi < oj
		}
		return items[i].EstimatedDelivery.Before(items[j].EstimatedDelivery)
	})
	return items, nil
}

// ListShipments is the admin listing with filters and pagination.
func (s *ShipmentService) ListShipments(ctx context.Context, in ports.ListShipmentsInput) (*ports.ShipmentPage, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filter := ports.ShipmentFilter{
		AgentID:    in.AgentID,
		CustomerID: in.CustomerID,
		Search:     strings.ToUpper(strings.TrimSpace(in.Search)),
		DateFrom:   in.DateFrom,
		DateTo:     in.DateTo,
		Page:       page,
		Limit:      limit,
	}
	if in.Status != "" {
		st, err := domain.ParseShipmentStatus(in.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	if in.DeliveryType != "" {
		filter.DeliveryType = domain.ParseDeliveryType(in.DeliveryType)
	}

	items, total, err := s.shipments.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	return &ports.ShipmentPage{Items: items, Total: total, Page: page, Limit: limit, TotalPages: totalPages}, nil
}

// Analytics summarises shipment counts per status.
func (s *ShipmentService) Analytics(ctx context.Context) (*ports.Analytics, error) {
	counts, err := s.shipments.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count shipments: %w", err)
	}
	a := &ports.Analytics{ByStatus: make(map[domain.ShipmentStatus]int64, len(counts))}
	for _, st := range domain.AllStatuses() {
		n := counts[st]
		a.ByStatus[st] = n
		a.Total += n
		switch {
		case st == domain.StatusDelivered:
			a.Delivered = n
		case st == domain.StatusFailed:
			a.Failed = n
		case st == domain.StatusCancelled:
			a.Cancelled = n
		case st == domain.StatusReturned:
			a.Returned = n
		case st == domain.StatusPending:
			a.Pending = n
		default:
			a.InFlight += n
		}
	}
	if a.Total > 0 {
		a.DeliveryRate = round2(float64(a.Delivered) / float64(a.Total) * 100)
	}
	return a, nil
}

// AssignAgent is the manual dispatch path.
func (s *ShipmentService) AssignAgent(ctx context.Context, shipmentID, agentID string, actor domain.Actor) (*domain.Shipment, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if agentID == "" {
		return nil, domain.NewValidationError("agent_id", "agent_id is required")
	}
	return s.dispatcher.AssignTo(ctx, shipmentID, agentID, actor.ID)
}

// DispatchPending retries dispatch for every pending shipment.
func (s *ShipmentService) DispatchPending(ctx context.Context) (int, error) {
	return s.dispatcher.DispatchPending(ctx, reconcileBatch)
}

// ResolveCOD closes a recorded COD discrepancy.
func (s *ShipmentService) ResolveCOD(ctx context.Context, shipmentID string, actor domain.Actor, note string) (*domain.Shipment, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		sh, err := s.shipments.FindByID(ctx, shipmentID)
		if err != nil {
			return nil, err
		}
		res, ev, err := sh.PlanCODResolution(actor.ID, strings.TrimSpace(note), uuid.NewString(), s.now())
		if err != nil {
			return nil, err
		}
		updated, err := s.shipments.ResolveCOD(ctx, sh.ID, sh.Version, res, ev)
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve cod: %w", err)
		}
		s.logger.Info().Str("shipment_id", sh.ID).Str("resolved_by", actor.ID).Msg("COD discrepancy resolved")
		return updated, nil
	}
	return nil, domain.ErrConcurrentUpdate
}

// UploadProof stores a delivery photo for the assigned agent and returns its URL.
func (s *ShipmentService) UploadProof(ctx context.Context, up ports.ProofUpload) (string, error) {
	if s.proofs == nil {
		return "", domain.ErrProofStorageDisabled
	}
	sh, err := s.shipments.FindByID(ctx, up.ShipmentID)
	if err != nil {
		return "", err
	}
	if !up.Actor.IsAdmin() && (up.Actor.Role != domain.RoleAgent || sh.AgentID != up.Actor.ID) {
		return "", domain.ErrForbidden
	}
	if sh.Status.IsTerminal() {
		return "", domain.NewValidationError("status", "shipment is already "+string(sh.Status))
	}
	if !strings.HasPrefix(up.ContentType, "image/") {
		return "", domain.NewValidationError("photo", "photo must be an image")
	}

	key := fmt.Sprintf("proofs/%s/%s%s", sh.ID, uuid.NewString(), strings.ToLower(path.Ext(up.Filename)))
	url, err := s.proofs.Upload(ctx, key, up.Body, up.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload proof: %w", err)
	}
	s.logger.Info().Str("shipment_id", sh.ID).Str("key", key).Msg("delivery proof uploaded")
	return url, nil
}
