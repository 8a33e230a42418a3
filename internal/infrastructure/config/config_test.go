package config

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load(context.Background(), zerolog.Nop())
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, StoreMongo, cfg.StoreDriver)
	require.Equal(t, FeedMemory, cfg.TrackingFeed)
	require.Equal(t, time.Minute, cfg.ReconcileInterval)
	require.Equal(t, 8, cfg.Tracking.Workers)

	p := cfg.PricingTable()
	require.Equal(t, 300.0, p.DefaultRates.BaseFee)
	require.Equal(t, 50.0, p.DefaultRates.PerDistanceRate)
	require.Equal(t, 1.4, p.Multipliers[domain.DeliveryExpress])
	require.Equal(t, 6.0, p.SLAHours[domain.DeliverySameDay])
	require.Equal(t, "NGN", p.Currency)
	require.True(t, cfg.Pricing.DefaultZone)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("PRICING_BASE_FEE", "450")
	t.Setenv("TRACKING_NEARBY_KM", "0.5")

	cfg, err := Load(context.Background(), zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, StoreMemory, cfg.StoreDriver)
	require.Equal(t, 450.0, cfg.PricingTable().DefaultRates.BaseFee)
	require.Equal(t, 0.5, cfg.TrackingSettings().NearbyKm)
}

func TestLoad_RejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret": {"JWT_SECRET": ""},
		"bad driver":     {"JWT_SECRET": "s", "STORE_DRIVER": "postgres"},
		"bad feed":       {"JWT_SECRET": "s", "TRACKING_FEED": "kafka"},
		"zero speed":     {"JWT_SECRET": "s", "TRACKING_AVG_SPEED_KMH": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load(context.Background(), zerolog.Nop())
			require.Error(t, err)
		})
	}
}
