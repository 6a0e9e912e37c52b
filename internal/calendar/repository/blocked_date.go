package repository

import (
	"context"
	"fmt"
	"time"

	calendarerrors "visitly/internal/calendar/errors"
	"visitly/pkg/config"
	mongotx "visitly/pkg/db/mongo"
	"visitly/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	BlockedDatesCollection = "Blocked_dates"
)

type BlockedDateRepository interface {
	Create(ctx context.Context, blocked *model.BlockedDate) error
	FindAll(ctx context.Context, tenantID model.TenantID) ([]*model.BlockedDate, error)
	// FindCandidates returns the rules that may block date: the exact match
	// plus every recurring rule that started on or before it and has not
	// ended.
	FindCandidates(ctx context.Context, tenantID model.TenantID, date string) ([]*model.BlockedDate, error)
	Delete(ctx context.Context, tenantID model.TenantID, id string) error
}

type mongoBlockedDateRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBlockedDateRepository(cfg *config.Config) BlockedDateRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBlockedDateRepository{
		cfg:        cfg,
		collection: db.Collection(BlockedDatesCollection),
	}
}

func (r *mongoBlockedDateRepository) Create(ctx context.Context, blocked *model.BlockedDate) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	blocked.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, blocked); err != nil {
		return fmt.Errorf("failed to create blocked date: %w", err)
	}
	return nil
}

func (r *mongoBlockedDateRepository) FindAll(ctx context.Context, tenantID model.TenantID) ([]*model.BlockedDate, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocked dates: %w", err)
	}
	defer cursor.Close(ctx)

	var blocked []*model.BlockedDate
	if err := cursor.All(ctx, &blocked); err != nil {
		return nil, fmt.Errorf("failed to decode blocked dates: %w", err)
	}
	return blocked, nil
}

func (r *mongoBlockedDateRepository) FindCandidates(ctx context.Context, tenantID model.TenantID, date string) ([]*model.BlockedDate, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	// "YYYY-MM-DD" strings order the same way as the dates they name.
	filter := bson.M{
		"tenant_id": tenantID,
		"$or": bson.A{
			bson.M{"date": date},
			bson.M{
				"is_recurring": true,
				"date":         bson.M{"$lte": date},
				"$or": bson.A{
					bson.M{"until": bson.M{"$exists": false}},
					bson.M{"until": ""},
					bson.M{"until": bson.M{"$gte": date}},
				},
			},
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocked date candidates: %w", err)
	}
	defer cursor.Close(ctx)

	var blocked []*model.BlockedDate
	if err := cursor.All(ctx, &blocked); err != nil {
		return nil, fmt.Errorf("failed to decode blocked dates: %w", err)
	}
	return blocked, nil
}

func (r *mongoBlockedDateRepository) Delete(ctx context.Context, tenantID model.TenantID, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "tenant_id": tenantID})
	if err != nil {
		return fmt.Errorf("failed to delete blocked date: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", calendarerrors.ErrBlockedDateNotFound, id)
	}
	return nil
}
