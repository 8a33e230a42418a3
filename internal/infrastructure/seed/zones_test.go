package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/service"
	"github.com/99minutos/delivery-dispatch/internal/infrastructure/db/memory"
)

const sample = `
zones:
  - code: lag-ikeja
    name: Ikeja
    type: lga
    centroid: { lat: 6.6018, lng: 3.3515 }
    radius_km: 8
    rates: { base_fee: 300, per_distance_rate: 50 }
  - code: LAG-OFF
    name: Closed
    type: area
    centroid: { lat: 6.5, lng: 3.3 }
    radius_km: 2
    rates: { base_fee: 300, per_distance_rate: 50 }
    is_active: false
`

func TestParseZones_DefaultsActive(t *testing.T) {
	zones, err := ParseZones(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, zones, 2)
	require.True(t, zones[0].IsActive)
	require.False(t, zones[1].IsActive)
	require.Equal(t, 6.6018, zones[0].Centroid.Lat)
	require.Equal(t, 50.0, zones[0].Rates.PerDistanceRate)
}

func TestParseZones_RejectsUnknownFieldsAndDuplicates(t *testing.T) {
	_, err := ParseZones(strings.NewReader("zones:\n  - code: A\n    colour: red\n"))
	require.Error(t, err)

	_, err = ParseZones(strings.NewReader("zones:\n  - code: A\n  - code: A\n"))
	require.ErrorContains(t, err, "defined twice")
}

func TestParseZones_EmptyDocument(t *testing.T) {
	zones, err := ParseZones(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, zones)
}

func TestLoadZonesFile_StoresThroughRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zones.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	repo := memory.NewZoneRepository()
	reg := service.NewZoneRegistry(repo, domain.RateCard{BaseFee: 300, PerDistanceRate: 50}, true, time.Minute, zerolog.Nop())

	stored, err := LoadZonesFile(context.Background(), path, reg)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	z, err := repo.FindByCode(context.Background(), "LAG-IKEJA")
	require.NoError(t, err)
	require.Equal(t, "Ikeja", z.Name)
}

func TestLoadZonesFile_MissingFile(t *testing.T) {
	reg := service.NewZoneRegistry(memory.NewZoneRepository(), domain.RateCard{}, true, time.Minute, zerolog.Nop())
	_, err := LoadZonesFile(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), reg)
	require.Error(t, err)
}
