package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	stafferrors "visitly/internal/staff/errors"
	"visitly/pkg/config"
	mongotx "visitly/pkg/db/mongo"
	"visitly/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CapabilitiesCollection = "Staff_capabilities"
)

type CapabilityRepository interface {
	Upsert(ctx context.Context, capability *model.StaffCapability) (*model.StaffCapability, error)
	Find(ctx context.Context, tenantID model.TenantID, staffID, serviceID string) (*model.StaffCapability, error)
	FindByService(ctx context.Context, tenantID model.TenantID, serviceID string) ([]*model.StaffCapability, error)
	FindByStaff(ctx context.Context, tenantID model.TenantID, staffID string) ([]*model.StaffCapability, error)
}

type mongoCapabilityRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCapabilityRepository(cfg *config.Config) CapabilityRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCapabilityRepository{
		cfg:        cfg,
		collection: db.Collection(CapabilitiesCollection),
	}
}

// Upsert keeps one document per (tenant, staff, service).
func (r *mongoCapabilityRepository) Upsert(ctx context.Context, capability *model.StaffCapability) (*model.StaffCapability, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"tenant_id":  capability.TenantID,
		"staff_id":   capability.StaffID,
		"service_id": capability.ServiceID,
	}
	update := bson.M{
		"$set": bson.M{
			"can_perform": capability.CanPerform,
			"home_visit":  capability.HomeVisit,
			"updated_at":  time.Now().UTC().Truncate(time.Millisecond),
		},
		"$setOnInsert": bson.M{"_id": uuid.NewString()},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved model.StaffCapability
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return nil, fmt.Errorf("failed to upsert capability: %w", err)
	}
	return &saved, nil
}

func (r *mongoCapabilityRepository) Find(ctx context.Context, tenantID model.TenantID, staffID, serviceID string) (*model.StaffCapability, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var capability model.StaffCapability
	filter := bson.M{"tenant_id": tenantID, "staff_id": staffID, "service_id": serviceID}
	if err := r.collection.FindOne(ctx, filter).Decode(&capability); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s/%s", stafferrors.ErrCapabilityNotFound, staffID, serviceID)
		}
		return nil, fmt.Errorf("failed to find capability: %w", err)
	}
	return &capability, nil
}

// FindByService returns only capabilities that allow performing the service.
func (r *mongoCapabilityRepository) FindByService(ctx context.Context, tenantID model.TenantID, serviceID string) ([]*model.StaffCapability, error) {
	return r.find(ctx, bson.M{"tenant_id": tenantID, "service_id": serviceID, "can_perform": true})
}

func (r *mongoCapabilityRepository) FindByStaff(ctx context.Context, tenantID model.TenantID, staffID string) ([]*model.StaffCapability, error) {
	return r.find(ctx, bson.M{"tenant_id": tenantID, "staff_id": staffID})
}

func (r *mongoCapabilityRepository) find(ctx context.Context, filter bson.M) ([]*model.StaffCapability, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "staff_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query capabilities: %w", err)
	}
	defer cursor.Close(ctx)

	var capabilities []*model.StaffCapability
	if err := cursor.All(ctx, &capabilities); err != nil {
		return nil, fmt.Errorf("failed to decode capabilities: %w", err)
	}
	return capabilities, nil
}
