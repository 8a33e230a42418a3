package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/service"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	FeedMemory = "memory"
	FeedRedis  = "redis"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	StoreDriver  string `env:"STORE_DRIVER,  default=mongo"`
	TrackingFeed string `env:"TRACKING_FEED, default=memory"`

	// AllowAdminSignup lets /auth/register create admin users. Development only.
	AllowAdminSignup bool          `env:"ALLOW_ADMIN_SIGNUP, default=false"`
	TokenTTL         time.Duration `env:"TOKEN_TTL,          default=24h"`

	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL, default=1m"`
	ZonesFile         string        `env:"ZONES_FILE"`

	Mongo    MongoConfig
	Redis    RedisConfig
	S3       S3Config
	Pricing  PricingConfig
	SLA      SLAConfig
	Tracking TrackingConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=delivery_dispatch"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// S3Config is optional; proof uploads are disabled when Bucket is empty.
type S3Config struct {
	Bucket          string `env:"S3_BUCKET"`
	Region          string `env:"S3_REGION, default=us-east-1"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL"`
}

type PricingConfig struct {
	BaseFee             float64 `env:"PRICING_BASE_FEE,              default=300"`
	PerKmRate           float64 `env:"PRICING_PER_KM_RATE,           default=50"`
	FreeDistanceKm      float64 `env:"PRICING_FREE_DISTANCE_KM,      default=0"`
	WeightThresholdKg   float64 `env:"PRICING_WEIGHT_THRESHOLD_KG,   default=5"`
	WeightSurchargeRate float64 `env:"PRICING_WEIGHT_SURCHARGE_RATE, default=100"`
	CODFeeRate          float64 `env:"PRICING_COD_FEE_RATE,          default=0.02"`
	PlatformCommission  float64 `env:"PRICING_PLATFORM_COMMISSION,   default=0"`
	ExpressMultiplier   float64 `env:"PRICING_EXPRESS_MULTIPLIER,    default=1.4"`
	SameDayMultiplier   float64 `env:"PRICING_SAME_DAY_MULTIPLIER,   default=1.8"`
	NextDayMultiplier   float64 `env:"PRICING_NEXT_DAY_MULTIPLIER,   default=1.2"`
	ScheduledMultiplier float64 `env:"PRICING_SCHEDULED_MULTIPLIER,  default=1.0"`
	Currency            string  `env:"PRICING_CURRENCY,              default=NGN"`
	DefaultZone         bool    `env:"PRICING_DEFAULT_ZONE,          default=true"`
}

type SLAConfig struct {
	StandardHours  float64 `env:"SLA_STANDARD_HOURS,  default=48"`
	ExpressHours   float64 `env:"SLA_EXPRESS_HOURS,   default=24"`
	SameDayHours   float64 `env:"SLA_SAME_DAY_HOURS,  default=6"`
	NextDayHours   float64 `env:"SLA_NEXT_DAY_HOURS,  default=24"`
	ScheduledHours float64 `env:"SLA_SCHEDULED_HOURS, default=72"`
}

type TrackingConfig struct {
	AvgSpeedKmh float64 `env:"TRACKING_AVG_SPEED_KMH, default=30"`
	NearbyKm    float64 `env:"TRACKING_NEARBY_KM,     default=1"`
	Workers     int     `env:"TRACKING_WORKERS,       default=8"`
}

// Load reads an optional .env file and then the environment using
// go-envconfig. Values already set in the environment win over .env.
func Load(ctx context.Context, log zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env file")
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.StoreDriver {
	case StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongo, StoreMemory, c.StoreDriver)
	}
	switch c.TrackingFeed {
	case FeedMemory, FeedRedis:
	default:
		return fmt.Errorf("TRACKING_FEED must be %q or %q, got %q", FeedMemory, FeedRedis, c.TrackingFeed)
	}
	if c.Tracking.AvgSpeedKmh <= 0 {
		return errors.New("TRACKING_AVG_SPEED_KMH must be greater than 0")
	}
	return nil
}

// IsProduction reports whether the server runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// PricingTable converts the environment pricing keys to the fee engine's table.
func (c *Config) PricingTable() service.Pricing {
	p := c.Pricing
	return service.Pricing{
		DefaultRates: domain.RateCard{
			BaseFee:         p.BaseFee,
			PerDistanceRate: p.PerKmRate,
			FreeDistanceKm:  p.FreeDistanceKm,
		},
		WeightThresholdKg:   p.WeightThresholdKg,
		WeightSurchargeRate: p.WeightSurchargeRate,
		CODFeeRate:          p.CODFeeRate,
		PlatformCommission:  p.PlatformCommission,
		Multipliers: map[domain.DeliveryType]float64{
			domain.DeliveryStandard:  1.0,
			domain.DeliveryExpress:   p.ExpressMultiplier,
			domain.DeliverySameDay:   p.SameDayMultiplier,
			domain.DeliveryNextDay:   p.NextDayMultiplier,
			domain.DeliveryScheduled: p.ScheduledMultiplier,
		},
		SLAHours: map[domain.DeliveryType]float64{
			domain.DeliveryStandard:  c.SLA.StandardHours,
			domain.DeliveryExpress:   c.SLA.ExpressHours,
			domain.DeliverySameDay:   c.SLA.SameDayHours,
			domain.DeliveryNextDay:   c.SLA.NextDayHours,
			domain.DeliveryScheduled: c.SLA.ScheduledHours,
		},
		Currency: p.Currency,
	}
}

// TrackingSettings returns the location tracker tuning.
func (c *Config) TrackingSettings() service.TrackingSettings {
	return service.TrackingSettings{
		AvgSpeedKmh: c.Tracking.AvgSpeedKmh,
		NearbyKm:    c.Tracking.NearbyKm,
	}
}
