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

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	StaffCollection = "Staff"
)

type StaffRepository interface {
	Create(ctx context.Context, staff *model.Staff) error
	FindByID(ctx context.Context, tenantID model.TenantID, id string) (*model.Staff, error)
	FindByIDs(ctx context.Context, tenantID model.TenantID, ids []string) ([]*model.Staff, error)
	FindAll(ctx context.Context, tenantID model.TenantID, limit int, offset int64) ([]*model.Staff, error)
	Count(ctx context.Context, tenantID model.TenantID) (int64, error)
	Update(ctx context.Context, tenantID model.TenantID, id string, update *model.StaffUpdate) error
}

type mongoStaffRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoStaffRepository(cfg *config.Config) StaffRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStaffRepository{
		cfg:        cfg,
		collection: db.Collection(StaffCollection),
	}
}

func (r *mongoStaffRepository) Create(ctx context.Context, staff *model.Staff) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	staff.CreatedAt = now
	staff.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, staff); err != nil {
		return fmt.Errorf("failed to create staff member: %w", err)
	}
	return nil
}

func (r *mongoStaffRepository) FindByID(ctx context.Context, tenantID model.TenantID, id string) (*model.Staff, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var staff model.Staff
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "tenant_id": tenantID}).Decode(&staff)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", stafferrors.ErrStaffNotFound, id)
		}
		return nil, fmt.Errorf("failed to find staff member: %w", err)
	}
	return &staff, nil
}

func (r *mongoStaffRepository) FindByIDs(ctx context.Context, tenantID model.TenantID, ids []string) ([]*model.Staff, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"tenant_id": tenantID, "_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer cursor.Close(ctx)

	var staff []*model.Staff
	if err := cursor.All(ctx, &staff); err != nil {
		return nil, fmt.Errorf("failed to decode staff: %w", err)
	}
	return staff, nil
}

func (r *mongoStaffRepository) FindAll(ctx context.Context, tenantID model.TenantID, limit int, offset int64) ([]*model.Staff, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"tenant_id": tenantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer cursor.Close(ctx)

	var staff []*model.Staff
	if err := cursor.All(ctx, &staff); err != nil {
		return nil, fmt.Errorf("failed to decode staff: %w", err)
	}
	return staff, nil
}

func (r *mongoStaffRepository) Count(ctx context.Context, tenantID model.TenantID) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"tenant_id": tenantID})
	if err != nil {
		return 0, fmt.Errorf("failed to count staff: %w", err)
	}
	return count, nil
}

func (r *mongoStaffRepository) Update(ctx context.Context, tenantID model.TenantID, id string, update *model.StaffUpdate) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)}
	if update.Name != "" {
		set["name"] = update.Name
	}
	if update.IsActive != nil {
		set["is_active"] = *update.IsActive
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "tenant_id": tenantID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update staff member: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", stafferrors.ErrStaffNotFound, id)
	}
	return nil
}
