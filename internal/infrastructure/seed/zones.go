// Package seed loads delivery zone definitions from YAML files.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
)

// ZoneFile is the document layout of a zones seed file.
type ZoneFile struct {
	Zones []ZoneSpec `yaml:"zones"`
}

// ZoneSpec is one zone entry. IsActive defaults to true when omitted.
type ZoneSpec struct {
	Code     string           `yaml:"code"`
	Name     string           `yaml:"name"`
	Type     string           `yaml:"type"`
	Centroid struct {
		Lat float64 `yaml:"lat"`
		Lng float64 `yaml:"lng"`
	} `yaml:"centroid"`
	RadiusKm float64          `yaml:"radius_km"`
	Rates    domain.RateCard  `yaml:"rates"`
	Override *domain.RateCard `yaml:"override,omitempty"`
	IsActive *bool            `yaml:"is_active,omitempty"`
}

func (z ZoneSpec) input() ports.ZoneInput {
	active := true
	if z.IsActive != nil {
		active = *z.IsActive
	}
	return ports.ZoneInput{
		Code:     z.Code,
		Name:     z.Name,
		Type:     z.Type,
		Centroid: ports.CoordinatesInput{Lat: z.Centroid.Lat, Lng: z.Centroid.Lng},
		RadiusKm: z.RadiusKm,
		Rates:    z.Rates,
		Override: z.Override,
		IsActive: active,
	}
}

// ParseZones decodes a zones document. Unknown fields are rejected.
func ParseZones(r io.Reader) ([]ports.ZoneInput, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f ZoneFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode zones: %w", err)
	}

	out := make([]ports.ZoneInput, 0, len(f.Zones))
	seen := make(map[string]bool, len(f.Zones))
	for i, z := range f.Zones {
		if z.Code == "" {
			return nil, fmt.Errorf("zone %d: code is required", i)
		}
		if seen[z.Code] {
			return nil, fmt.Errorf("zone %q defined twice", z.Code)
		}
		seen[z.Code] = true
		out = append(out, z.input())
	}
	return out, nil
}

// LoadZonesFile parses path and writes every zone through svc, which applies
// the usual validation. It returns the stored zones.
func LoadZonesFile(ctx context.Context, path string, svc ports.ZoneService) ([]*domain.Zone, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open zones file: %w", err)
	}
	defer f.Close()

	inputs, err := ParseZones(f)
	if err != nil {
		return nil, err
	}
	stored := make([]*domain.Zone, 0, len(inputs))
	for _, in := range inputs {
		z, err := svc.Put(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("zone %q: %w", in.Code, err)
		}
		stored = append(stored, z)
	}
	return stored, nil
}
