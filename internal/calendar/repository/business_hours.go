package repository

import (
	"context"
	"errors"
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
	BusinessHoursCollection = "Business_hours"
)

type BusinessHoursRepository interface {
	Get(ctx context.Context, tenantID model.TenantID) (*model.BusinessHours, error)
	Upsert(ctx context.Context, hours *model.BusinessHours) error
}

type mongoBusinessHoursRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBusinessHoursRepository(cfg *config.Config) BusinessHoursRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBusinessHoursRepository{
		cfg:        cfg,
		collection: db.Collection(BusinessHoursCollection),
	}
}

func (r *mongoBusinessHoursRepository) Get(ctx context.Context, tenantID model.TenantID) (*model.BusinessHours, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var hours model.BusinessHours
	if err := r.collection.FindOne(ctx, bson.M{"_id": tenantID}).Decode(&hours); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", calendarerrors.ErrBusinessHoursNotFound, tenantID)
		}
		return nil, fmt.Errorf("failed to find business hours: %w", err)
	}
	return &hours, nil
}

// Upsert replaces the tenant's whole weekly calendar.
func (r *mongoBusinessHoursRepository) Upsert(ctx context.Context, hours *model.BusinessHours) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	hours.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": hours.TenantID},
		hours,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert business hours: %w", err)
	}
	return nil
}
