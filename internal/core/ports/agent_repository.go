package ports

import (
	"context"
	"time"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
)

// AgentRepository persists delivery agents. Claims, releases and counter
// updates are atomic conditional writes on a single agent document.
type AgentRepository interface {
	// Create returns domain.ErrAgentExists when the user already owns an agent.
	Create(ctx context.Context, a *domain.Agent) error
	FindByID(ctx context.Context, id string) (*domain.Agent, error)
	FindByUserID(ctx context.Context, userID string) (*domain.Agent, error)

	// ClaimIdle reserves the least loaded dispatchable agent able to carry
	// weightKg for shipmentID. Returns domain.ErrNoAgentAvailable when none is.
	ClaimIdle(ctx context.Context, shipmentID string, weightKg float64, at time.Time) (*domain.Agent, error)
	// Claim reserves agentID for shipmentID if it is dispatchable. Returns
	// domain.ErrAgentNotDispatchable otherwise.
	Claim(ctx context.Context, agentID, shipmentID string, weightKg float64, at time.Time) (*domain.Agent, error)
	// ReleaseClaim frees the agent only while it still holds shipmentID.
	ReleaseClaim(ctx context.Context, agentID, shipmentID string) (bool, error)
	// ListClaimed returns agents that currently hold a shipment.
	ListClaimed(ctx context.Context) ([]*domain.Agent, error)

	// ApplyStats adds effect's counters once per effect id. It reports false
	// when the effect was already applied.
	ApplyStats(ctx context.Context, effect domain.AgentEffect) (bool, error)

	// UpdateLocation stores p only when it is newer than the stored position.
	// It reports false for stale reports and domain.ErrAgentNotFound for
	// unknown agents.
	UpdateLocation(ctx context.Context, agentID string, p domain.GeoPoint) (bool, error)

	SetAvailability(ctx context.Context, agentID string, available bool, at time.Time) (*domain.Agent, error)
	SetStatus(ctx context.Context, agentID string, status domain.AgentStatus, verified bool, at time.Time) (*domain.Agent, error)
	List(ctx context.Context, status domain.AgentStatus) ([]*domain.Agent, error)
}
