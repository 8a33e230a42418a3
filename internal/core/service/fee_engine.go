package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
)

// Pricing holds the tunable parts of the fee formula.
type Pricing struct {
	DefaultRates        domain.RateCard
	WeightThresholdKg   float64
	WeightSurchargeRate float64
	CODFeeRate          float64
	PlatformCommission  float64
	Multipliers         map[domain.DeliveryType]float64
	SLAHours            map[domain.DeliveryType]float64
	Currency            string
}

// DefaultPricing returns the rate table used when nothing is configured.
func DefaultPricing() Pricing {
	return Pricing{
		DefaultRates:        domain.RateCard{BaseFee: 300, PerDistanceRate: 50},
		WeightThresholdKg:   5,
		WeightSurchargeRate: 100,
		CODFeeRate:          0.02,
		Multipliers: map[domain.DeliveryType]float64{
			domain.DeliveryStandard:  1.0,
			domain.DeliveryExpress:   1.4,
			domain.DeliverySameDay:   1.8,
			domain.DeliveryNextDay:   1.2,
			domain.DeliveryScheduled: 1.0,
		},
		SLAHours: map[domain.DeliveryType]float64{
			domain.DeliveryStandard:  48,
			domain.DeliveryExpress:   24,
			domain.DeliverySameDay:   6,
			domain.DeliveryNextDay:   24,
			domain.DeliveryScheduled: 72,
		},
		Currency: "NGN",
	}
}

// ZoneResolver finds the serviceable zone covering a point.
type ZoneResolver interface {
	Resolve(ctx context.Context, c domain.Coordinates) (*domain.Zone, error)
	ResolveFresh(ctx context.Context, c domain.Coordinates) (*domain.Zone, error)
}

// FeeRequest is the pricing input. Now only matters for scheduled deliveries.
type FeeRequest struct {
	Pickup       domain.Coordinates
	Delivery     domain.Coordinates
	WeightKg     float64
	PackageValue float64
	DeliveryType domain.DeliveryType
	COD          bool
	ScheduledFor *time.Time
	Now          time.Time
	// Fresh resolves zones from the store instead of the cache.
	Fresh        bool
}

// Estimate is a priced route.
type Estimate struct {
	Fee            domain.FeeBreakdown
	Currency       string
	EstimatedHours float64
	DeliveryType   domain.DeliveryType
}

// FeeEngine prices deliveries. Identical requests always yield identical fees.
type FeeEngine struct {
	pricing Pricing
	zones   ZoneResolver
}

func NewFeeEngine(pricing Pricing, zones ZoneResolver) *FeeEngine {
	return &FeeEngine{pricing: pricing, zones: zones}
}

// Currency returns the pricing currency.
func (f *FeeEngine) Currency() string {
	return f.pricing.Currency
}

// Quote prices req. It returns domain.ErrNoServiceableZone when either end of
// the route lies only in suspended or inactive zones, or outside every zone
// with the global rate disabled.
func (f *FeeEngine) Quote(ctx context.Context, req FeeRequest) (*Estimate, error) {
	if !req.Pickup.Valid() {
		return nil, domain.NewValidationError("pickup", "pickup coordinates out of range")
	}
	if !req.Delivery.Valid() {
		return nil, domain.NewValidationError("delivery", "delivery coordinates out of range")
	}
	if req.PackageValue < 0 {
		return nil, domain.NewValidationError("package_value", "package_value must not be negative")
	}

	resolve := f.zones.Resolve
	if req.Fresh {
		resolve = f.zones.ResolveFresh
	}
	zone, err := resolve(ctx, req.Pickup)
	if err != nil {
		return nil, fmt.Errorf("resolve pickup zone: %w", err)
	}
	if _, err := resolve(ctx, req.Delivery); err != nil {
		return nil, fmt.Errorf("resolve delivery zone: %w", err)
	}

	dt := req.DeliveryType
	if dt == "" {
		dt = domain.DeliveryStandard
	}
	fee := f.compute(zone, req, dt)
	return &Estimate{
		Fee:            fee,
		Currency:       f.pricing.Currency,
		EstimatedHours: f.slaHours(dt, req.ScheduledFor, req.Now),
		DeliveryType:   dt,
	}, nil
}

func (f *FeeEngine) compute(zone *domain.Zone, req FeeRequest, dt domain.DeliveryType) domain.FeeBreakdown {
	rates := zone.EffectiveRates()
	distance := domain.DistanceKm(req.Pickup, req.Delivery)
	billable := math.Max(0, distance-rates.FreeDistanceKm)
	base := rates.BaseFee + billable*rates.PerDistanceRate

	weight := req.WeightKg
	if weight <= 0 {
		weight = 1
	}
	surcharge := math.Max(0, weight-f.pricing.WeightThresholdKg) * f.pricing.WeightSurchargeRate

	multiplier, ok := f.pricing.Multipliers[dt]
	if !ok || multiplier <= 0 {
		multiplier = 1
	}
	subtotal := (base + surcharge) * multiplier

	// COD fee is not subject to the delivery type multiplier.
	var codFee float64
	if req.COD {
		codFee = req.PackageValue * f.pricing.CODFeeRate
	}
	subtotal += codFee

	platformFee := subtotal * f.pricing.PlatformCommission
	return domain.FeeBreakdown{
		ZoneCode:           zone.Code,
		DistanceKm:         round2(distance),
		BillableDistanceKm: round2(billable),
		Base:               round2(base),
		WeightSurcharge:    round2(surcharge),
		Multiplier:         multiplier,
		CODFee:             round2(codFee),
		Subtotal:           round2(subtotal),
		PlatformFee:        round2(platformFee),
		Total:              round2(subtotal + platformFee),
	}
}

func (f *FeeEngine) slaHours(dt domain.DeliveryType, scheduledFor *time.Time, now time.Time) float64 {
	if dt == domain.DeliveryScheduled && scheduledFor != nil && !now.IsZero() {
		if h := scheduledFor.Sub(now).Hours(); h > 0 {
			return h
		}
	}
	if h, ok := f.pricing.SLAHours[dt]; ok {
		return h
	}
	return f.pricing.SLAHours[domain.DeliveryStandard]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
