package domain

import "time"

// ZoneType distinguishes loose areas from local government areas.
type ZoneType string

const (
	ZoneArea ZoneType = "area"
	ZoneLGA  ZoneType = "lga"
)

// RateCard is the distance pricing applied within a zone.
type RateCard struct {
	BaseFee         float64 `json:"base_fee" bson:"base_fee" yaml:"base_fee"`
	PerDistanceRate float64 `json:"per_distance_rate" bson:"per_distance_rate" yaml:"per_distance_rate"`
	FreeDistanceKm  float64 `json:"free_distance_km" bson:"free_distance_km" yaml:"free_distance_km"`
}

// Zone is an administratively defined delivery area. A pickup or drop-off
// belongs to a zone when it lies within RadiusKm of the centroid.
type Zone struct {
	Code             string      `json:"code" bson:"_id" yaml:"code"`
	Name             string      `json:"name" bson:"name" yaml:"name"`
	Type             ZoneType    `json:"type" bson:"type" yaml:"type"`
	Centroid         Coordinates `json:"centroid" bson:"centroid" yaml:"centroid"`
	RadiusKm         float64     `json:"radius_km" bson:"radius_km" yaml:"radius_km"`
	Rates            RateCard    `json:"rates" bson:"rates" yaml:"rates"`
	Override         *RateCard   `json:"override,omitempty" bson:"override,omitempty" yaml:"override,omitempty"`
	IsActive         bool        `json:"is_active" bson:"is_active" yaml:"is_active"`
	IsSuspended      bool        `json:"is_suspended" bson:"is_suspended" yaml:"is_suspended"`
	SuspensionReason string      `json:"suspension_reason,omitempty" bson:"suspension_reason,omitempty" yaml:"suspension_reason,omitempty"`
	UpdatedAt        time.Time   `json:"updated_at" bson:"updated_at" yaml:"-"`
}

// Serviceable reports whether new shipments may use the zone.
func (z *Zone) Serviceable() bool {
	return z.IsActive && !z.IsSuspended
}

// Contains reports whether c lies inside the zone radius.
func (z *Zone) Contains(c Coordinates) bool {
	return DistanceKm(z.Centroid, c) <= z.RadiusKm
}

// EffectiveRates returns the override when one is set.
func (z *Zone) EffectiveRates() RateCard {
	if z.Override != nil {
		return *z.Override
	}
	return z.Rates
}
