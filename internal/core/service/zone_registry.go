package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
)

// DefaultZoneCode names the synthetic zone carrying the global rate card.
const DefaultZoneCode = "DEFAULT"

const defaultZoneCacheTTL = 30 * time.Second

// ZoneRegistry resolves points to zones from a short-lived cache of the zone
// collection and administers zones.
type ZoneRegistry struct {
	repo         ports.ZoneRepository
	defaultRates domain.RateCard
	allowDefault bool
	ttl          time.Duration
	log          zerolog.Logger
	now          func() time.Time

	mu       sync.RWMutex
	cached   []*domain.Zone
	loadedAt time.Time
}

// NewZoneRegistry builds a registry. When allowDefault is true, points outside
// every zone are priced with defaultRates instead of being rejected.
func NewZoneRegistry(repo ports.ZoneRepository, defaultRates domain.RateCard, allowDefault bool, ttl time.Duration, log zerolog.Logger) *ZoneRegistry {
	if ttl <= 0 {
		ttl = defaultZoneCacheTTL
	}
	return &ZoneRegistry{
		repo:         repo,
		defaultRates: defaultRates,
		allowDefault: allowDefault,
		ttl:          ttl,
		log:          log,
		now:          time.Now,
	}
}

// Resolve returns the nearest serviceable zone containing c. Points covered
// only by suspended or inactive zones are never served.
func (r *ZoneRegistry) Resolve(ctx context.Context, c domain.Coordinates) (*domain.Zone, error) {
	zones, err := r.zones(ctx)
	if err != nil {
		return nil, err
	}
	return r.resolve(zones, c)
}

// ResolveFresh is Resolve against the store, bypassing the cache. Used when
// the price is committed to a shipment.
func (r *ZoneRegistry) ResolveFresh(ctx context.Context, c domain.Coordinates) (*domain.Zone, error) {
	zones, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return r.resolve(zones, c)
}

func (r *ZoneRegistry) resolve(zones []*domain.Zone, c domain.Coordinates) (*domain.Zone, error) {
	var matches []*domain.Zone
	for _, z := range zones {
		if z.Contains(c) {
			matches = append(matches, z)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return domain.DistanceKm(matches[i].Centroid, c) < domain.DistanceKm(matches[j].Centroid, c)
	})
	for _, z := range matches {
		if z.Serviceable() {
			return z, nil
		}
	}
	if len(matches) > 0 || !r.allowDefault {
		return nil, domain.ErrNoServiceableZone
	}
	return &domain.Zone{
		Code:     DefaultZoneCode,
		Name:     "Default",
		Type:     domain.ZoneArea,
		Centroid: c,
		Rates:    r.defaultRates,
		IsActive: true,
	}, nil
}

func (r *ZoneRegistry) zones(ctx context.Context) ([]*domain.Zone, error) {
	r.mu.RLock()
	if r.cached != nil && r.now().Sub(r.loadedAt) < r.ttl {
		zones := r.cached
		r.mu.RUnlock()
		return zones, nil
	}
	r.mu.RUnlock()

	zones, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cached = zones
	r.loadedAt = r.now()
	r.mu.Unlock()
	return zones, nil
}

func (r *ZoneRegistry) load(ctx context.Context) ([]*domain.Zone, error) {
	zones, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}
	if zones == nil {
		zones = []*domain.Zone{}
	}
	return zones, nil
}

func (r *ZoneRegistry) invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

// List returns every stored zone, bypassing the cache.
func (r *ZoneRegistry) List(ctx context.Context) ([]*domain.Zone, error) {
	zones, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	return zones, nil
}

// Put creates or replaces a zone. Suspension state of an existing zone is kept.
func (r *ZoneRegistry) Put(ctx context.Context, in ports.ZoneInput) (*domain.Zone, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return nil, domain.NewValidationError("code", "code is required")
	}
	if code == DefaultZoneCode {
		return nil, domain.NewValidationError("code", "code DEFAULT is reserved")
	}
	zt := domain.ZoneType(strings.ToLower(in.Type))
	if zt == "" {
		zt = domain.ZoneArea
	}
	if zt != domain.ZoneArea && zt != domain.ZoneLGA {
		return nil, domain.NewValidationError("type", "type must be one of area lga")
	}
	centroid := in.Centroid.Domain()
	if !centroid.Valid() {
		return nil, domain.NewValidationError("centroid", "centroid coordinates out of range")
	}
	if in.RadiusKm <= 0 {
		return nil, domain.NewValidationError("radius_km", "radius_km must be greater than 0")
	}
	if err := validRates(in.Rates); err != nil {
		return nil, err
	}
	if in.Override != nil {
		if err := validRates(*in.Override); err != nil {
			return nil, err
		}
	}

	zone := &domain.Zone{
		Code:      code,
		Name:      in.Name,
		Type:      zt,
		Centroid:  centroid,
		RadiusKm:  in.RadiusKm,
		Rates:     in.Rates,
		Override:  in.Override,
		IsActive:  in.IsActive,
		UpdatedAt: r.now().UTC(),
	}
	existing, err := r.repo.FindByCode(ctx, code)
	switch {
	case err == nil:
		zone.IsSuspended = existing.IsSuspended
		zone.SuspensionReason = existing.SuspensionReason
	case !errors.Is(err, domain.ErrZoneNotFound):
		return nil, fmt.Errorf("put zone: %w", err)
	}

	if err := r.repo.Upsert(ctx, zone); err != nil {
		return nil, fmt.Errorf("put zone: %w", err)
	}
	r.invalidate()
	r.log.Info().Str("zone", code).Bool("active", zone.IsActive).Msg("zone saved")
	return zone, nil
}

// Suspend stops new shipments from using the zone.
func (r *ZoneRegistry) Suspend(ctx context.Context, code, reason string) (*domain.Zone, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domain.NewValidationError("reason", "reason is required")
	}
	return r.setSuspended(ctx, code, true, reason)
}

// Resume lifts a suspension.
func (r *ZoneRegistry) Resume(ctx context.Context, code string) (*domain.Zone, error) {
	return r.setSuspended(ctx, code, false, "")
}

func (r *ZoneRegistry) setSuspended(ctx context.Context, code string, suspended bool, reason string) (*domain.Zone, error) {
	z, err := r.repo.SetSuspended(ctx, strings.ToUpper(code), suspended, reason)
	if err != nil {
		return nil, fmt.Errorf("set zone suspension: %w", err)
	}
	r.invalidate()
	r.log.Info().Str("zone", z.Code).Bool("suspended", suspended).Str("reason", reason).Msg("zone suspension changed")
	return z, nil
}

func validRates(rc domain.RateCard) error {
	if rc.BaseFee < 0 || rc.PerDistanceRate < 0 || rc.FreeDistanceKm < 0 {
		return domain.NewValidationError("rates", "rates must not be negative")
	}
	return nil
}
