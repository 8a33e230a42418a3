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

const (
	collectionAgents = "agents"

	// maxAppliedEffects bounds the per-agent list of applied effect ids.
	maxAppliedEffects = 200
)

type AgentRepository struct {
	col *mongo.Collection
}

func NewAgentRepository(db *mongo.Database) *AgentRepository {
	return &AgentRepository{col: db.Collection(collectionAgents)}
}

func (r *AgentRepository) Create(ctx context.Context, a *domain.Agent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *a
	if doc.AppliedEffects == nil {
		doc.AppliedEffects = []string{}
	}
	if _, err := r.col.InsertOne(ctx, &doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAgentExists
		}
		return fmt.Errorf("insert agent: %w", err)
	}
	return nil
}

func (r *AgentRepository) FindByID(ctx context.Context, id string) (*domain.Agent, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AgentRepository) FindByUserID(ctx context.Context, userID string) (*domain.Agent, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *AgentRepository) findOne(ctx context.Context, filter bson.M) (*domain.Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.Agent
	if err := r.col.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, err
	}
	return &a, nil
}

// dispatchable mirrors domain.Agent.Dispatchable as a query filter.
func dispatchable(weightKg float64) bson.M {
	return bson.M{
		"status":             domain.AgentActive,
		"is_verified":        true,
		"is_available":       true,
		"active_shipment_id": "",
		"max_capacity_kg":    bson.M{"$gte": weightKg},
	}
}

// ClaimIdle atomically takes the least-loaded idle agent for shipmentID.
func (r *AgentRepository) ClaimIdle(ctx context.Context, shipmentID string, weightKg float64, at time.Time) (*domain.Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "total_deliveries", Value: 1}, {Key: "last_active_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"active_shipment_id": shipmentID, "updated_at": at}}

	var a domain.Agent
	err := r.col.FindOneAndUpdate(ctx, dispatchable(weightKg), update, opts).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoAgentAvailable
		}
		return nil, fmt.Errorf("claim agent: %w", err)
	}
	return &a, nil
}

func (r *AgentRepository) Claim(ctx context.Context, agentID, shipmentID string, weightKg float64, at time.Time) (*domain.Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := dispatchable(weightKg)
	filter["_id"] = agentID
	update := bson.M{"$set": bson.M{"active_shipment_id": shipmentID, "updated_at": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var a domain.Agent
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&a)
	if err == nil {
		return &a, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("claim agent: %w", err)
	}
	if ok, err := r.exists(ctx, agentID); err != nil {
		return nil, err
	} else if !ok {
		return nil, domain.ErrAgentNotFound
	}
	return nil, domain.ErrAgentNotDispatchable
}

// ReleaseClaim clears the claim only while it still names shipmentID.
func (r *AgentRepository) ReleaseClaim(ctx context.Context, agentID, shipmentID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": agentID, "active_shipment_id": shipmentID},
		bson.M{"$set": bson.M{"active_shipment_id": ""}},
	)
	if err != nil {
		return false, fmt.Errorf("release claim: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *AgentRepository) ListClaimed(ctx context.Context) ([]*domain.Agent, error) {
	return r.find(ctx, bson.M{"active_shipment_id": bson.M{"$ne": ""}})
}

// ApplyStats applies e at most once, keyed by e.ID.
func (r *AgentRepository) ApplyStats(ctx context.Context, e domain.AgentEffect) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{
			"total_deliveries":     e.TotalDelta,
			"completed_deliveries": e.CompletedDelta,
			"failed_deliveries":    e.FailedDelta,
			"earnings":             e.Earnings,
		},
		"$push": bson.M{"applied_effects": bson.M{"$each": bson.A{e.ID}, "$slice": -maxAppliedEffects}},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": e.AgentID, "applied_effects": bson.M{"$ne": e.ID}}, update)
	if err != nil {
		return false, fmt.Errorf("apply agent stats: %w", err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}
	ok, err := r.exists(ctx, e.AgentID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, domain.ErrAgentNotFound
	}
	return false, nil
}

// UpdateLocation stores p only when it is newer than the stored location.
func (r *AgentRepository) UpdateLocation(ctx context.Context, agentID string, p domain.GeoPoint) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id": agentID,
		"$or": bson.A{
			bson.M{"current_location": bson.M{"$exists": false}},
			bson.M{"current_location.recorded_at": bson.M{"$lt": p.RecordedAt}},
		},
	}
	update := bson.M{
		"$set": bson.M{"current_location": p},
		"$max": bson.M{"last_active_at": p.RecordedAt},
	}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("update agent location: %w", err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}
	ok, err := r.exists(ctx, agentID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, domain.ErrAgentNotFound
	}
	return false, nil
}

func (r *AgentRepository) SetAvailability(ctx context.Context, agentID string, available bool, at time.Time) (*domain.Agent, error) {
	return r.set(ctx, agentID, bson.M{"is_available": available, "last_active_at": at, "updated_at": at})
}

func (r *AgentRepository) SetStatus(ctx context.Context, agentID string, status domain.AgentStatus, verified bool, at time.Time) (*domain.Agent, error) {
	return r.set(ctx, agentID, bson.M{"status": status, "is_verified": verified, "updated_at": at})
}

func (r *AgentRepository) set(ctx context.Context, agentID string, fields bson.M) (*domain.Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a domain.Agent
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": agentID}, bson.M{"$set": fields}, opts).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, fmt.Errorf("update agent: %w", err)
	}
	return &a, nil
}

func (r *AgentRepository) List(ctx context.Context, status domain.AgentStatus) ([]*domain.Agent, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter)
}

func (r *AgentRepository) find(ctx context.Context, filter bson.M) ([]*domain.Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find agents: %w", err)
	}
	defer cur.Close(ctx)

	items := []*domain.Agent{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode agents: %w", err)
	}
	return items, nil
}

func (r *AgentRepository) exists(ctx context.Context, agentID string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": agentID})
	if err != nil {
		return false, fmt.Errorf("count agents: %w", err)
	}
	return n > 0, nil
}

func (r *AgentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "is_available", Value: 1},
			{Key: "active_shipment_id", Value: 1},
			{Key: "total_deliveries", Value: 1},
		}},
	})
	return err
}
