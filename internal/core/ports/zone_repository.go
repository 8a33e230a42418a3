package ports

import (
	"context"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
)

// ZoneRepository persists delivery zones keyed by code.
type ZoneRepository interface {
	List(ctx context.Context) ([]*domain.Zone, error)
	FindByCode(ctx context.Context, code string) (*domain.Zone, error)
	Upsert(ctx context.Context, z *domain.Zone) error
	SetSuspended(ctx context.Context, code string, suspended bool, reason string) (*domain.Zone, error)
}
