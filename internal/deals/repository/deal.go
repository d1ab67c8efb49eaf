package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	dealserrors "innkeeper/internal/deals/errors"
	"innkeeper/pkg/config"
	mongotx "innkeeper/pkg/db/mongo"
	"innkeeper/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Deals"
)

type mongoDealRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type DealRepository interface {
	Create(ctx context.Context, deal *model.Deal) error
	FindByID(ctx context.Context, id string) (*model.Deal, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Deal, error)
	FindActiveInWindow(ctx context.Context, roomType string, start, end time.Time) ([]*model.Deal, error)
	Update(ctx context.Context, id string, deal *model.Deal) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoDealRepository(cfg *config.Config) DealRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDealRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoDealRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoDealRepository) Create(ctx context.Context, deal *model.Deal) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	deal.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, deal)
	if err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		deal.ID = oid.Hex()
	}
	return nil
}

func (r *mongoDealRepository) FindByID(ctx context.Context, id string) (*model.Deal, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dealserrors.ErrInvalidID, id)
	}

	var deal model.Deal
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&deal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dealserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find deal: %w", err)
	}

	return &deal, nil
}

func (r *mongoDealRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Deal, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "start_date", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}
	defer cursor.Close(ctx)

	var deals []*model.Deal
	if err = cursor.All(ctx, &deals); err != nil {
		return nil, fmt.Errorf("failed to decode deals: %w", err)
	}

	return deals, nil
}

// FindActiveInWindow returns active deals whose inclusive date window covers
// at least one night of [start, end). Deals scoped to a room type match only
// that type; unscoped deals match every room.
func (r *mongoDealRepository) FindActiveInWindow(ctx context.Context, roomType string, start, end time.Time) ([]*model.Deal, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"active":     true,
		"start_date": bson.M{"$lt": end},
		"end_date":   bson.M{"$gte": start},
		"$or": []bson.M{
			{"room_type": roomType},
			{"room_type": ""},
			{"room_type": bson.M{"$exists": false}},
		},
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "discount_percent", Value: -1},
		{Key: "start_date", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find active deals in window: %w", err)
	}
	defer cursor.Close(ctx)

	var deals []*model.Deal
	if err = cursor.All(ctx, &deals); err != nil {
		return nil, fmt.Errorf("failed to decode deals: %w", err)
	}

	return deals, nil
}

func (r *mongoDealRepository) Update(ctx context.Context, id string, deal *model.Deal) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dealserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	update := bson.M{
		"$set": bson.M{
			"name":             deal.Name,
			"discount_percent": deal.DiscountPercent,
			"room_type":        deal.RoomType,
			"start_date":       deal.StartDate,
			"end_date":         deal.EndDate,
			"active":           deal.Active,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, dealserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoDealRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", dealserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}
	if result.DeletedCount == 0 {
		return dealserrors.ErrNotFound
	}

	return nil
}

func (r *mongoDealRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count deals: %w", err)
	}
	return count, nil
}

func (r *mongoDealRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
