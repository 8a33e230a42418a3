package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
)

const collectionZones = "zones"

type ZoneRepository struct {
	col *mongo.Collection
}

func NewZoneRepository(db *mongo.Database) *ZoneRepository {
	return &ZoneRepository{col: db.Collection(collectionZones)}
}

func (r *ZoneRepository) List(ctx context.Context) ([]*domain.Zone, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find zones: %w", err)
	}
	defer cur.Close(ctx)

	zones := []*domain.Zone{}
	if err := cur.All(ctx, &zones); err != nil {
		return nil, fmt.Errorf("decode zones: %w", err)
	}
	return zones, nil
}

func (r *ZoneRepository) FindByCode(ctx context.Context, code string) (*domain.Zone, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var z domain.Zone
	if err := r.col.FindOne(ctx, bson.M{"_id": code}).Decode(&z); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrZoneNotFound
		}
		return nil, err
	}
	return &z, nil
}

// Upsert replaces the zone document keyed by its code.
func (r *ZoneRepository) Upsert(ctx context.Context, z *domain.Zone) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": z.Code}, z, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert zone: %w", err)
	}
	return nil
}

func (r *ZoneRepository) SetSuspended(ctx context.Context, code string, suspended bool, reason string) (*domain.Zone, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"is_suspended":      suspended,
		"suspension_reason": reason,
		"updated_at":        time.Now().UTC(),
	}}
	var z domain.Zone
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": code}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&z)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrZoneNotFound
		}
		return nil, fmt.Errorf("suspend zone: %w", err)
	}
	return &z, nil
}
