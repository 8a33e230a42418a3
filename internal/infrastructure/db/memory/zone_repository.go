package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
)

type ZoneRepository struct {
	mu    sync.RWMutex
	zones map[string]*domain.Zone
}

// NewZoneRepository returns a repository pre-loaded with seed.
func NewZoneRepository(seed ...*domain.Zone) *ZoneRepository {
	r := &ZoneRepository{zones: make(map[string]*domain.Zone)}
	for _, z := range seed {
		r.zones[z.Code] = cloneZone(z)
	}
	return r
}

func (r *ZoneRepository) List(_ context.Context) ([]*domain.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Zone, 0, len(r.zones))
	for _, z := range r.zones {
		out = append(out, cloneZone(z))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *ZoneRepository) FindByCode(_ context.Context, code string) (*domain.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	z, ok := r.zones[code]
	if !ok {
		return nil, domain.ErrZoneNotFound
	}
	return cloneZone(z), nil
}

func (r *ZoneRepository) Upsert(_ context.Context, z *domain.Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones[z.Code] = cloneZone(z)
	return nil
}

func (r *ZoneRepository) SetSuspended(_ context.Context, code string, suspended bool, reason string) (*domain.Zone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	z, ok := r.zones[code]
	if !ok {
		return nil, domain.ErrZoneNotFound
	}
	z.IsSuspended = suspended
	z.SuspensionReason = reason
	z.UpdatedAt = time.Now().UTC()
	return cloneZone(z), nil
}

func cloneZone(z *domain.Zone) *domain.Zone {
	c := *z
	if z.Override != nil {
		v := *z.Override
		c.Override = &v
	}
	return &c
}
