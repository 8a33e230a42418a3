package handler

import (
	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
)

// --- Request → Service input ---

func toCoordinatesInput(c *coordinatesRequest) ports.CoordinatesInput {
	if c == nil {
		return ports.CoordinatesInput{}
	}
	return ports.CoordinatesInput{Lat: deref(c.Latitude), Lng: deref(c.Longitude)}
}

func toAddressInput(a *addressRequest) ports.AddressInput {
	return ports.AddressInput{
		Line:         a.Address,
		City:         a.City,
		State:        a.State,
		Country:      a.Country,
		ContactName:  a.ContactName,
		ContactPhone: a.ContactPhone,
		Coordinates:  toCoordinatesInput(a.Coordinates),
	}
}

func toQuoteInput(req quoteRequest) ports.QuoteInput {
	return ports.QuoteInput{
		Pickup:       toCoordinatesInput(req.Pickup),
		Delivery:     toCoordinatesInput(req.Delivery),
		WeightKg:     req.Weight,
		PackageValue: deref(req.PackageValue),
		DeliveryType: req.DeliveryType,
		COD:          req.COD,
		ScheduledFor: req.ScheduledFor,
	}
}

func toCreateInput(req createShipmentRequest, customerID, idempotencyKey string) ports.CreateShipmentInput {
	return ports.CreateShipmentInput{
		CustomerID:     customerID,
		IdempotencyKey: idempotencyKey,
		Pickup:         toAddressInput(req.PickupAddress),
		Delivery:       toAddressInput(req.DeliveryAddress),
		WeightKg:       req.Weight,
		PackageValue:   req.PackageValue,
		Fragile:        req.Fragile,
		Description:    req.Description,
		DeliveryType:   req.DeliveryType,
		CODAmount:      req.CODAmount,
		ScheduledFor:   req.ScheduledFor,
	}
}

func toTransitionRequest(req statusUpdateRequest, shipmentID string, actor domain.Actor) ports.TransitionRequest {
	tr := ports.TransitionRequest{
		ShipmentID:    shipmentID,
		Status:        req.Status,
		Actor:         actor,
		Notes:         req.Notes,
		DeliveryProof: req.ProofOfDelivery,
		FailedReason:  req.FailedReason,
		CODCollected:  req.CODCollected,
	}
	if req.Location != nil {
		loc := toCoordinatesInput(req.Location)
		tr.Location = &loc
	}
	return tr
}

func toRateCard(r *rateCardRequest) domain.RateCard {
	return domain.RateCard{BaseFee: r.BaseFee, PerDistanceRate: r.PerKmRate, FreeDistanceKm: r.FreeDistanceKm}
}

func toZoneInput(code string, req zoneRequest) ports.ZoneInput {
	in := ports.ZoneInput{
		Code:     code,
		Name:     req.Name,
		Type:     req.Type,
		Centroid: toCoordinatesInput(req.Centroid),
		RadiusKm: req.RadiusKm,
		Rates:    toRateCard(req.Rates),
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	if req.Override != nil {
		o := toRateCard(req.Override)
		in.Override = &o
	}
	return in
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// --- Domain → Response ---

func toCoordinatesResponse(c domain.Coordinates) coordinatesResponse {
	return coordinatesResponse{Latitude: c.Lat, Longitude: c.Lng}
}

func toLocationResponse(p *domain.GeoPoint) *locationResponse {
	if p == nil {
		return nil
	}
	return &locationResponse{Latitude: p.Lat, Longitude: p.Lng, AccuracyM: p.AccuracyM, RecordedAt: p.RecordedAt}
}

func toAddressResponse(a domain.Address) addressResponse {
	return addressResponse{
		Address:      a.Line,
		City:         a.City,
		State:        a.State,
		Country:      a.Country,
		ContactName:  a.ContactName,
		ContactPhone: a.ContactPhone,
		Coordinates:  toCoordinatesResponse(a.Coordinates),
	}
}

func toFeeResponse(f domain.FeeBreakdown) feeBreakdownResponse {
	return feeBreakdownResponse{
		ZoneCode:           f.ZoneCode,
		DistanceKm:         f.DistanceKm,
		BillableDistanceKm: f.BillableDistanceKm,
		Base:               f.Base,
		WeightSurcharge:    f.WeightSurcharge,
		Multiplier:         f.Multiplier,
		CODFee:             f.CODFee,
		Subtotal:           f.Subtotal,
		PlatformFee:        f.PlatformFee,
		Total:              f.Total,
	}
}

func toQuoteResponse(res *ports.QuoteResult) quoteResponse {
	out := quoteResponse{Success: res.Success, Message: res.Message, Rates: make([]rateResponse, 0, len(res.Rates))}
	for _, r := range res.Rates {
		out.Rates = append(out.Rates, rateResponse{
			Carrier:        r.Carrier,
			DeliveryType:   string(r.DeliveryType),
			Fee:            r.Fee,
			Currency:       r.Currency,
			DistanceKm:     r.DistanceKm,
			EstimatedHours: r.EstimatedHours,
			EstimatedDays:  r.EstimatedDays,
			Breakdown:      toFeeResponse(r.Breakdown),
		})
	}
	return out
}

func toCreateResponse(res *ports.CreateShipmentResult) createShipmentResponse {
	s := res.Shipment
	return createShipmentResponse{
		ID:                s.ID,
		TrackingNumber:    s.TrackingNumber,
		Status:            string(s.Status),
		DeliveryFee:       s.DeliveryFee,
		Currency:          s.Currency,
		EstimatedDelivery: s.EstimatedDelivery,
		Assignment:        string(res.Assignment),
		AgentID:           s.AgentID,
		CreatedAt:         s.CreatedAt,
	}
}

func toEventResponse(e domain.TrackingEvent) trackingEventResponse {
	out := trackingEventResponse{
		Type:        string(e.Type),
		Status:      string(e.Status),
		Description: e.Description,
		RecordedAt:  e.RecordedAt,
	}
	if e.Location != nil {
		c := toCoordinatesResponse(*e.Location)
		out.Location = &c
	}
	return out
}

func toTrackingResponse(v *ports.TrackingView) trackingResponse {
	out := trackingResponse{
		TrackingNumber:          v.TrackingNumber,
		Status:                  string(v.Status),
		DeliveryType:            string(v.DeliveryType),
		PickupCity:              v.PickupCity,
		DeliveryCity:            v.DeliveryCity,
		EstimatedDelivery:       v.EstimatedDelivery,
		DeliveredAt:             v.DeliveredAt,
		CurrentLocation:         toLocationResponse(v.CurrentLocation),
		DistanceToDestinationKm: v.DistanceToDestinationKm,
		ETAMinutes:              v.ETAMinutes,
		Events:                  make([]trackingEventResponse, 0, len(v.Events)),
	}
	if v.Agent != nil {
		out.Agent = &agentContactResponse{Name: v.Agent.Name, Phone: v.Agent.Phone, VehicleType: string(v.Agent.VehicleType)}
	}
	for _, e := range v.Events {
		ev := trackingEventResponse{
			Type:        string(e.Type),
			Status:      string(e.Status),
			Description: e.Description,
			RecordedAt:  e.RecordedAt,
		}
		if e.Location != nil {
			c := toCoordinatesResponse(*e.Location)
			ev.Location = &c
		}
		out.Events = append(out.Events, ev)
	}
	return out
}

func toShipmentResponse(s *domain.Shipment) shipmentResponse {
	out := shipmentResponse{
		ID:                      s.ID,
		TrackingNumber:          s.TrackingNumber,
		CustomerID:              s.CustomerID,
		Status:                  string(s.Status),
		DeliveryType:            string(s.DeliveryType),
		PickupAddress:           toAddressResponse(s.Pickup),
		DeliveryAddress:         toAddressResponse(s.Delivery),
		Weight:                  s.WeightKg,
		PackageValue:            s.PackageValue,
		Fragile:                 s.Fragile,
		Description:             s.Description,
		CODAmount:               s.CODAmount,
		DeliveryFee:             s.DeliveryFee,
		Currency:                s.Currency,
		Fee:                     toFeeResponse(s.Fee),
		AgentID:                 s.AgentID,
		CurrentLocation:         toLocationResponse(s.CurrentLocation),
		DistanceToDestinationKm: s.DistanceToDestinationKm,
		ETAMinutes:              s.ETAMinutes,
		ScheduledFor:            s.ScheduledFor,
		EstimatedDelivery:       s.EstimatedDelivery,
		DeliveredAt:             s.DeliveredAt,
		ProofOfDelivery:         s.DeliveryProof,
		FailedReason:            s.FailedReason,
		Events:                  make([]trackingEventResponse, 0, len(s.Events)),
		Version:                 s.Version,
		CreatedAt:               s.CreatedAt,
		UpdatedAt:               s.UpdatedAt,
	}
	if s.COD != nil {
		out.COD = &codResponse{
			Expected:    s.COD.Expected,
			Collected:   s.COD.Collected,
			CollectedAt: s.COD.CollectedAt,
			Discrepancy: s.COD.Discrepancy,
			Resolved:    s.COD.Resolved,
			ResolvedBy:  s.COD.ResolvedBy,
			ResolvedAt:  s.COD.ResolvedAt,
			Note:        s.COD.Note,
		}
	}
	for _, e := range s.Events {
		out.Events = append(out.Events, toEventResponse(e))
	}
	return out
}

func toShipmentList(items []*domain.Shipment) []shipmentResponse {
	out := make([]shipmentResponse, 0, len(items))
	for _, s := range items {
		out = append(out, toShipmentResponse(s))
	}
	return out
}

func toTransitionResponse(o *ports.TransitionOutcome) transitionResponse {
	out := transitionResponse{
		Shipment:    toShipmentResponse(o.Shipment),
		Replayed:    o.Replayed,
		AgentStats:  string(o.Effect),
		EffectError: o.EffectError,
	}
	if o.Event != nil {
		ev := toEventResponse(*o.Event)
		out.Event = &ev
	}
	return out
}

func toAnalyticsResponse(a *ports.Analytics) analyticsResponse {
	by := make(map[string]int64, len(a.ByStatus))
	for st, n := range a.ByStatus {
		by[string(st)] = n
	}
	return analyticsResponse{
		Total:        a.Total,
		Delivered:    a.Delivered,
		Failed:       a.Failed,
		Cancelled:    a.Cancelled,
		Returned:     a.Returned,
		InFlight:     a.InFlight,
		Pending:      a.Pending,
		DeliveryRate: a.DeliveryRate,
		ByStatus:     by,
	}
}

func toAgentResponse(a *domain.Agent) agentResponse {
	return agentResponse{
		ID:                  a.ID,
		UserID:              a.UserID,
		Name:                a.Name,
		Phone:               a.Phone,
		VehicleType:         string(a.VehicleType),
		MaxCapacityKg:       a.MaxCapacityKg,
		Status:              string(a.Status),
		IsVerified:          a.IsVerified,
		IsAvailable:         a.IsAvailable,
		CurrentLocation:     toLocationResponse(a.CurrentLocation),
		ActiveShipmentID:    a.ActiveShipmentID,
		TotalDeliveries:     a.TotalDeliveries,
		CompletedDeliveries: a.CompletedDeliveries,
		FailedDeliveries:    a.FailedDeliveries,
		Rating:              a.Rating,
		Earnings:            a.Earnings,
		LastActiveAt:        a.LastActiveAt,
		CreatedAt:           a.CreatedAt,
	}
}

func toAgentList(items []*domain.Agent) []agentResponse {
	out := make([]agentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAgentResponse(a))
	}
	return out
}

func toRateCardResponse(r domain.RateCard) rateCardResponse {
	return rateCardResponse{BaseFee: r.BaseFee, PerKmRate: r.PerDistanceRate, FreeDistanceKm: r.FreeDistanceKm}
}

func toZoneResponse(z *domain.Zone) zoneResponse {
	out := zoneResponse{
		Code:             z.Code,
		Name:             z.Name,
		Type:             string(z.Type),
		Centroid:         toCoordinatesResponse(z.Centroid),
		RadiusKm:         z.RadiusKm,
		Rates:            toRateCardResponse(z.Rates),
		IsActive:         z.IsActive,
		IsSuspended:      z.IsSuspended,
		SuspensionReason: z.SuspensionReason,
		UpdatedAt:        z.UpdatedAt,
	}
	if z.Override != nil {
		o := toRateCardResponse(*z.Override)
		out.Override = &o
	}
	return out
}
