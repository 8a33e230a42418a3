package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
)

const collectionShipments = "shipments"

type ShipmentRepository struct {
	col *mongo.Collection
}

func NewShipmentRepository(db *mongo.Database) *ShipmentRepository {
	return &ShipmentRepository{col: db.Collection(collectionShipments)}
}

// Create inserts a new shipment document. Arrays are stored empty rather than
// null so later $push updates succeed.
func (r *ShipmentRepository) Create(ctx context.Context, s *domain.Shipment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *s
	if doc.Events == nil {
		doc.Events = []domain.TrackingEvent{}
	}
	if doc.PendingEffects == nil {
		doc.PendingEffects = []domain.AgentEffect{}
	}
	if _, err := r.col.InsertOne(ctx, &doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateShipment
		}
		return fmt.Errorf("insert shipment: %w", err)
	}
	return nil
}

func (r *ShipmentRepository) FindByID(ctx context.Context, id string) (*domain.Shipment, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ShipmentRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Shipment, error) {
	return r.findOne(ctx, bson.M{"tracking_number": trackingNumber})
}

// FindByIdempotencyKey retrieves a shipment the customer created with key.
func (r *ShipmentRepository) FindByIdempotencyKey(ctx context.Context, customerID, key string) (*domain.Shipment, error) {
	return r.findOne(ctx, bson.M{"customer_id": customerID, "idempotency_key": key})
}

func (r *ShipmentRepository) findOne(ctx context.Context, filter bson.M) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.Shipment
	err := r.col.FindOne(ctx, filter).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ApplyStatusChange is a compare-and-swap on (version, status).
func (r *ShipmentRepository) ApplyStatusChange(ctx context.Context, id string, expectedVersion int64, c *domain.StatusChange) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"status":     c.To,
		"updated_at": c.At,
	}
	if c.AgentID != "" {
		set["agent_id"] = c.AgentID
	}
	if c.DeliveredAt != nil {
		set["delivered_at"] = c.DeliveredAt
		set["delivery_proof"] = c.DeliveryProof
	}
	if c.FailedReason != "" {
		set["failed_reason"] = c.FailedReason
	}
	if c.COD != nil {
		set["cod"] = c.COD
	}
	push := bson.M{"events": c.Event}
	if c.Effect != nil {
		push["pending_effects"] = c.Effect
	}

	filter := bson.M{"_id": id, "version": expectedVersion, "status": c.From}
	update := bson.M{"$set": set, "$push": push, "$inc": bson.M{"version": 1}}
	return r.swap(ctx, id, filter, update)
}

func (r *ShipmentRepository) ResolveCOD(ctx context.Context, id string, expectedVersion int64, res domain.CODResolution, ev domain.TrackingEvent) (*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":             id,
		"version":         expectedVersion,
		"cod.discrepancy": true,
		"cod.resolved":    false,
	}
	update := bson.M{
		"$set": bson.M{
			"cod.resolved":    true,
			"cod.resolved_by": res.By,
			"cod.resolved_at": res.At,
			"cod.note":        res.Note,
			"updated_at":      res.At,
		},
		"$push": bson.M{"events": ev},
		"$inc":  bson.M{"version": 1},
	}
	return r.swap(ctx, id, filter, update)
}

// swap runs a versioned FindOneAndUpdate and tells a missing document apart
// from a lost race.
func (r *ShipmentRepository) swap(ctx context.Context, id string, filter, update bson.M) (*domain.Shipment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var s domain.Shipment
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&s)
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update shipment: %w", err)
	}
	n, cerr := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if cerr != nil {
		return nil, fmt.Errorf("update shipment: %w", cerr)
	}
	if n == 0 {
		return nil, domain.ErrShipmentNotFound
	}
	return nil, domain.ErrVersionConflict
}

func (r *ShipmentRepository) UpdateTracking(ctx context.Context, id string, p ports.TrackingPatch) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": domain.MovingStatuses()},
		"$or": bson.A{
			bson.M{"current_location": bson.M{"$exists": false}},
			bson.M{"current_location.recorded_at": bson.M{"$lt": p.Location.RecordedAt}},
		},
	}
	update := bson.M{"$set": bson.M{
		"current_location":           p.Location,
		"distance_to_destination_km": p.DistanceToDestinationKm,
		"eta_minutes":                p.ETAMinutes,
		"estimated_delivery":         p.EstimatedDelivery,
		"updated_at":                 p.Location.RecordedAt,
	}}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("update tracking: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (r *ShipmentRepository) MarkNearby(ctx context.Context, id string, ev domain.TrackingEvent) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "nearby_notified": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"nearby_notified": true}, "$push": bson.M{"events": ev}},
	)
	if err != nil {
		return false, fmt.Errorf("mark nearby: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *ShipmentRepository) ClearEffect(ctx context.Context, shipmentID, effectID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": shipmentID},
		bson.M{"$pull": bson.M{"pending_effects": bson.M{"id": effectID}}},
	)
	if err != nil {
		return fmt.Errorf("clear effect: %w", err)
	}
	return nil
}

func (r *ShipmentRepository) ListWithPendingEffects(ctx context.Context, limit int) ([]*domain.Shipment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{"pending_effects.0": bson.M{"$exists": true}}, opts)
}

func (r *ShipmentRepository) ListByAgent(ctx context.Context, agentID string, statuses []domain.ShipmentStatus) ([]*domain.Shipment, error) {
	filter := bson.M{"agent_id": agentID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

// List returns a page of shipments matching filter and the total count.
func (r *ShipmentRepository) List(ctx context.Context, f ports.ShipmentFilter) ([]*domain.Shipment, int64, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.DeliveryType != "" {
		filter["delivery_type"] = f.DeliveryType
	}
	if f.AgentID != "" {
		filter["agent_id"] = f.AgentID
	}
	if f.CustomerID != "" {
		filter["customer_id"] = f.CustomerID
	}
	if f.Search != "" {
		filter["tracking_number"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.Search)}
	}
	created := bson.M{}
	if !f.DateFrom.IsZero() {
		created["$gte"] = f.DateFrom
	}
	if !f.DateTo.IsZero() {
		created["$lte"] = f.DateTo
	}
	if len(created) > 0 {
		filter["created_at"] = created
	}

	countCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	total, err := r.col.CountDocuments(countCtx, filter)
	cancel()
	if err != nil {
		return nil, 0, fmt.Errorf("count shipments: %w", err)
	}

	dir := -1
	if f.OldestFirst {
		dir = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: dir}, {Key: "_id", Value: 1}})
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * f.Limit)).SetLimit(int64(f.Limit))
	}
	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ShipmentRepository) CountByStatus(ctx context.Context) (map[domain.ShipmentStatus]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$status"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate status counts: %w", err)
	}
	defer cur.Close(ctx)

	out := make(map[domain.ShipmentStatus]int64)
	for cur.Next(ctx) {
		var row struct {
			Status domain.ShipmentStatus `bson:"_id"`
			Count  int64                 `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode status count: %w", err)
		}
		out[row.Status] = row.Count
	}
	return out, cur.Err()
}

func (r *ShipmentRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find shipments: %w", err)
	}
	defer cur.Close(ctx)

	items := []*domain.Shipment{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode shipments: %w", err)
	}
	return items, nil
}

// EnsureIndexes creates necessary indexes on the shipments collection.
func (r *ShipmentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tracking_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "idempotency_key", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$type": "string"}}),
		},
		{Keys: bson.D{{Key: "agent_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "pending_effects.id", Value: 1}}, Options: options.Index().SetSparse(true)},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
