// Package memory holds in-process implementations of the repository ports.
// They back tests and single-instance development runs (STORE_DRIVER=memory)
// and honour the same conditional-write contracts as the mongo store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
)

type ShipmentRepository struct {
	mu         sync.RWMutex
	byID       map[string]*domain.Shipment
	byTracking map[string]string
	byIdemKey  map[string]string
}

func NewShipmentRepository() *ShipmentRepository {
	return &ShipmentRepository{
		byID:       make(map[string]*domain.Shipment),
		byTracking: make(map[string]string),
		byIdemKey:  make(map[string]string),
	}
}

func idemKey(customerID, key string) string {
	return customerID + "\x00" + key
}

func (r *ShipmentRepository) Create(_ context.Context, s *domain.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[s.ID]; ok {
		return domain.ErrDuplicateShipment
	}
	if _, ok := r.byTracking[s.TrackingNumber]; ok {
		return domain.ErrDuplicateShipment
	}
	if s.IdempotencyKey != "" {
		if _, ok := r.byIdemKey[idemKey(s.CustomerID, s.IdempotencyKey)]; ok {
			return domain.ErrDuplicateShipment
		}
		r.byIdemKey[idemKey(s.CustomerID, s.IdempotencyKey)] = s.ID
	}
	r.byID[s.ID] = cloneShipment(s)
	r.byTracking[s.TrackingNumber] = s.ID
	return nil
}

func (r *ShipmentRepository) FindByID(_ context.Context, id string) (*domain.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrShipmentNotFound
	}
	return cloneShipment(s), nil
}

func (r *ShipmentRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Shipment, error) {
	r.mu.RLock()
	id, ok := r.byTracking[trackingNumber]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrShipmentNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *ShipmentRepository) FindByIdempotencyKey(ctx context.Context, customerID, key string) (*domain.Shipment, error) {
	r.mu.RLock()
	id, ok := r.byIdemKey[idemKey(customerID, key)]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrShipmentNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *ShipmentRepository) ApplyStatusChange(_ context.Context, id string, expectedVersion int64, change *domain.StatusChange) (*domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrShipmentNotFound
	}
	if s.Version != expectedVersion || s.Status != change.From {
		return nil, domain.ErrVersionConflict
	}
	s.Apply(change)
	return cloneShipment(s), nil
}

func (r *ShipmentRepository) ResolveCOD(_ context.Context, id string, expectedVersion int64, res domain.CODResolution, ev domain.TrackingEvent) (*domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrShipmentNotFound
	}
	if s.Version != expectedVersion || s.COD == nil {
		return nil, domain.ErrVersionConflict
	}
	s.ApplyCODResolution(res, ev)
	return cloneShipment(s), nil
}

func (r *ShipmentRepository) UpdateTracking(_ context.Context, id string, p ports.TrackingPatch) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return false, domain.ErrShipmentNotFound
	}
	if !s.Status.IsMoving() {
		return false, nil
	}
	if s.CurrentLocation != nil && !s.CurrentLocation.RecordedAt.Before(p.Location.RecordedAt) {
		return false, nil
	}
	loc := p.Location
	dist := p.DistanceToDestinationKm
	eta := p.ETAMinutes
	s.CurrentLocation = &loc
	s.DistanceToDestinationKm = &dist
	s.ETAMinutes = &eta
	s.EstimatedDelivery = p.EstimatedDelivery
	s.UpdatedAt = p.Location.RecordedAt
	return true, nil
}

func (r *ShipmentRepository) MarkNearby(_ context.Context, id string, ev domain.TrackingEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return false, domain.ErrShipmentNotFound
	}
	if s.NearbyNotified {
		return false, nil
	}
	s.NearbyNotified = true
	s.Events = append(s.Events, ev)
	return true, nil
}

func (r *ShipmentRepository) ClearEffect(_ context.Context, shipmentID, effectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[shipmentID]
	if !ok {
		return domain.ErrShipmentNotFound
	}
	kept := s.PendingEffects[:0:0]
	for _, e := range s.PendingEffects {
		if e.ID != effectID {
			kept = append(kept, e)
		}
	}
	s.PendingEffects = kept
	return nil
}

func (r *ShipmentRepository) ListWithPendingEffects(_ context.Context, limit int) ([]*domain.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Shipment
	for _, s := range r.byID {
		if len(s.PendingEffects) > 0 {
			out = append(out, cloneShipment(s))
		}
	}
	sortByCreated(out, true)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ShipmentRepository) ListByAgent(_ context.Context, agentID string, statuses []domain.ShipmentStatus) ([]*domain.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Shipment
	for _, s := range r.byID {
		if s.AgentID != agentID {
			continue
		}
		if len(statuses) > 0 && !hasStatus(statuses, s.Status) {
			continue
		}
		out = append(out, cloneShipment(s))
	}
	sortByCreated(out, true)
	return out, nil
}

// List applies the same filters the mongo repo uses.
func (r *ShipmentRepository) List(_ context.Context, f ports.ShipmentFilter) ([]*domain.Shipment, int64, error) {
	r.mu.RLock()
	var matched []*domain.Shipment
	for _, s := range r.byID {
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.DeliveryType != "" && s.DeliveryType != f.DeliveryType {
			continue
		}
		if f.AgentID != "" && s.AgentID != f.AgentID {
			continue
		}
		if f.CustomerID != "" && s.CustomerID != f.CustomerID {
			continue
		}
		if f.Search != "" && !strings.HasPrefix(s.TrackingNumber, f.Search) {
			continue
		}
		if !f.DateFrom.IsZero() && s.CreatedAt.Before(f.DateFrom) {
			continue
		}
		if !f.DateTo.IsZero() && s.CreatedAt.After(f.DateTo) {
			continue
		}
		matched = append(matched, cloneShipment(s))
	}
	r.mu.RUnlock()

	sortByCreated(matched, f.OldestFirst)
	total := int64(len(matched))

	limit := f.Limit
	if limit <= 0 {
		limit = len(matched)
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	skip := (page - 1) * limit
	if skip >= len(matched) {
		return []*domain.Shipment{}, total, nil
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *ShipmentRepository) CountByStatus(_ context.Context) (map[domain.ShipmentStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[domain.ShipmentStatus]int64)
	for _, s := range r.byID {
		out[s.Status]++
	}
	return out, nil
}

func hasStatus(statuses []domain.ShipmentStatus, st domain.ShipmentStatus) bool {
	for _, s := range statuses {
		if s == st {
			return true
		}
	}
	return false
}

func sortByCreated(items []*domain.Shipment, oldestFirst bool) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if oldestFirst {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func cloneShipment(s *domain.Shipment) *domain.Shipment {
	c := *s
	c.Events = append([]domain.TrackingEvent(nil), s.Events...)
	c.PendingEffects = append([]domain.AgentEffect(nil), s.PendingEffects...)
	if s.CODAmount != nil {
		v := *s.CODAmount
		c.CODAmount = &v
	}
	if s.COD != nil {
		v := *s.COD
		c.COD = &v
	}
	if s.CurrentLocation != nil {
		v := *s.CurrentLocation
		c.CurrentLocation = &v
	}
	if s.DistanceToDestinationKm != nil {
		v := *s.DistanceToDestinationKm
		c.DistanceToDestinationKm = &v
	}
	if s.ETAMinutes != nil {
		v := *s.ETAMinutes
		c.ETAMinutes = &v
	}
	if s.ScheduledFor != nil {
		v := *s.ScheduledFor
		c.ScheduledFor = &v
	}
	if s.DeliveredAt != nil {
		v := *s.DeliveredAt
		c.DeliveredAt = &v
	}
	return &c
}
