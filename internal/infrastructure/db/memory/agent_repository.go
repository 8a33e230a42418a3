package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
)

// maxAppliedEffects bounds the per-agent list of applied effect ids.
const maxAppliedEffects = 200

type AgentRepository struct {
	mu     sync.Mutex
	byID   map[string]*domain.Agent
	byUser map[string]string
}

func NewAgentRepository() *AgentRepository {
	return &AgentRepository{
		byID:   make(map[string]*domain.Agent),
		byUser: make(map[string]string),
	}
}

func (r *AgentRepository) Create(_ context.Context, a *domain.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUser[a.UserID]; ok {
		return domain.ErrAgentExists
	}
	if _, ok := r.byID[a.ID]; ok {
		return domain.ErrAgentExists
	}
	r.byID[a.ID] = cloneAgent(a)
	r.byUser[a.UserID] = a.ID
	return nil
}

func (r *AgentRepository) FindByID(_ context.Context, id string) (*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	return cloneAgent(a), nil
}

func (r *AgentRepository) FindByUserID(_ context.Context, userID string) (*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byUser[userID]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	return cloneAgent(r.byID[id]), nil
}

// ClaimIdle picks by fewest total deliveries, then earliest last activity.
func (r *AgentRepository) ClaimIdle(_ context.Context, shipmentID string, weightKg float64, at time.Time) (*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var candidates []*domain.Agent
	for _, a := range r.byID {
		if a.Dispatchable(weightKg) {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNoAgentAvailable
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.TotalDeliveries != b.TotalDeliveries {
			return a.TotalDeliveries < b.TotalDeliveries
		}
		if !a.LastActiveAt.Equal(b.LastActiveAt) {
			return a.LastActiveAt.Before(b.LastActiveAt)
		}
		return a.ID < b.ID
	})
	chosen := candidates[0]
	chosen.ActiveShipmentID = shipmentID
	chosen.UpdatedAt = at
	return cloneAgent(chosen), nil
}

func (r *AgentRepository) Claim(_ context.Context, agentID, shipmentID string, weightKg float64, at time.Time) (*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[agentID]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	if !a.Dispatchable(weightKg) {
		return nil, domain.ErrAgentNotDispatchable
	}
	a.ActiveShipmentID = shipmentID
	a.UpdatedAt = at
	return cloneAgent(a), nil
}

func (r *AgentRepository) ReleaseClaim(_ context.Context, agentID, shipmentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[agentID]
	if !ok || a.ActiveShipmentID != shipmentID {
		return false, nil
	}
	a.ActiveShipmentID = ""
	return true, nil
}

func (r *AgentRepository) ListClaimed(_ context.Context) ([]*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Agent
	for _, a := range r.byID {
		if a.ActiveShipmentID != "" {
			out = append(out, cloneAgent(a))
		}
	}
	sortAgents(out)
	return out, nil
}

func (r *AgentRepository) ApplyStats(_ context.Context, e domain.AgentEffect) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[e.AgentID]
	if !ok {
		return false, domain.ErrAgentNotFound
	}
	if a.HasApplied(e.ID) {
		return false, nil
	}
	a.TotalDeliveries += e.TotalDelta
	a.CompletedDeliveries += e.CompletedDelta
	a.FailedDeliveries += e.FailedDelta
	a.Earnings += e.Earnings
	a.AppliedEffects = append(a.AppliedEffects, e.ID)
	if n := len(a.AppliedEffects); n > maxAppliedEffects {
		a.AppliedEffects = a.AppliedEffects[n-maxAppliedEffects:]
	}
	return true, nil
}

func (r *AgentRepository) UpdateLocation(_ context.Context, agentID string, p domain.GeoPoint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[agentID]
	if !ok {
		return false, domain.ErrAgentNotFound
	}
	if a.CurrentLocation != nil && !a.CurrentLocation.RecordedAt.Before(p.RecordedAt) {
		return false, nil
	}
	loc := p
	a.CurrentLocation = &loc
	if p.RecordedAt.After(a.LastActiveAt) {
		a.LastActiveAt = p.RecordedAt
	}
	return true, nil
}

func (r *AgentRepository) SetAvailability(_ context.Context, agentID string, available bool, at time.Time) (*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[agentID]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	a.IsAvailable = available
	a.LastActiveAt = at
	a.UpdatedAt = at
	return cloneAgent(a), nil
}

func (r *AgentRepository) SetStatus(_ context.Context, agentID string, status domain.AgentStatus, verified bool, at time.Time) (*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[agentID]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	a.Status = status
	a.IsVerified = verified
	a.UpdatedAt = at
	return cloneAgent(a), nil
}

func (r *AgentRepository) List(_ context.Context, status domain.AgentStatus) ([]*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Agent{}
	for _, a := range r.byID {
		if status == "" || a.Status == status {
			out = append(out, cloneAgent(a))
		}
	}
	sortAgents(out)
	return out, nil
}

func sortAgents(items []*domain.Agent) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}

func cloneAgent(a *domain.Agent) *domain.Agent {
	c := *a
	c.AppliedEffects = append([]string(nil), a.AppliedEffects...)
	if a.CurrentLocation != nil {
		v := *a.CurrentLocation
		c.CurrentLocation = &v
	}
	return &c
}
