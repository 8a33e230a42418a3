package ports

import (
	"context"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
)

// RegisterAgentInput carries the onboarding form of a delivery agent.
type RegisterAgentInput struct {
	UserID        string
	Name          string
	Phone         string
	VehicleType   string
	MaxCapacityKg float64
}

// AgentService covers agent onboarding and the online toggle.
type AgentService interface {
	Register(ctx context.Context, input RegisterAgentInput) (*domain.Agent, error)
	Profile(ctx context.Context, userID string) (*domain.Agent, error)
	AgentIDForUser(ctx context.Context, userID string) (string, error)
	SetAvailability(ctx context.Context, userID string, available bool) (*domain.Agent, error)
	Verify(ctx context.Context, agentID string) (*domain.Agent, error)
	SetStatus(ctx context.Context, agentID, status string) (*domain.Agent, error)
	List(ctx context.Context, status string) ([]*domain.Agent, error)
}

// ZoneInput is an admin upsert of a delivery zone.
type ZoneInput struct {
	Code     string
	Name     string
	Type     string
	Centroid CoordinatesInput
	RadiusKm float64
	Rates    domain.RateCard
	Override *domain.RateCard
	IsActive bool
}

// ZoneService administers delivery zones.
type ZoneService interface {
	List(ctx context.Context) ([]*domain.Zone, error)
	Put(ctx context.Context, input ZoneInput) (*domain.Zone, error)
	Suspend(ctx context.Context, code, reason string) (*domain.Zone, error)
	Resume(ctx context.Context, code string) (*domain.Zone, error)
}
