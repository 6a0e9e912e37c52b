package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "visitly/internal/bookings/errors"
	"visitly/pkg/config"
	mongotx "visitly/pkg/db/mongo"
	"visitly/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	LocksCollection    = "Staff_locks"
	VersionsCollection = "Staff_calendar_versions"
)

// StaffLockRepository stores advisory locks. The unique _id makes the
// insert in TryAcquire the whole acquisition.
type StaffLockRepository interface {
	TryAcquire(ctx context.Context, lock *model.StaffLock) error
	// ReclaimExpired deletes the lock when it expired at or before now and
	// reports whether it did.
	ReclaimExpired(ctx context.Context, id string, now time.Time) (bool, error)
	Release(ctx context.Context, id, owner string) error
}

type mongoStaffLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoStaffLockRepository(cfg *config.Config) StaffLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStaffLockRepository{
		cfg:        cfg,
		collection: db.Collection(LocksCollection),
	}
}

func (r *mongoStaffLockRepository) TryAcquire(ctx context.Context, lock *model.StaffLock) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", bookingserrors.ErrLockHeld, lock.ID)
		}
		return fmt.Errorf("failed to acquire staff lock: %w", err)
	}
	return nil
}

// ReclaimExpired covers the window before the TTL monitor, which only runs
// about once a minute, removes a dead holder's lock.
func (r *mongoStaffLockRepository) ReclaimExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "expires_at": bson.M{"$lte": now}})
	if err != nil {
		return false, fmt.Errorf("failed to reclaim staff lock: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// Release only removes the lock while the caller still owns it.
func (r *mongoStaffLockRepository) Release(ctx context.Context, id, owner string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "owner": owner}); err != nil {
		return fmt.Errorf("failed to release staff lock: %w", err)
	}
	return nil
}

// CalendarVersionRepository bumps a per-staff counter inside reservation
// transactions. Two transactions bumping the same document write-conflict,
// so one of them is retried against the other's committed state.
type CalendarVersionRepository interface {
	Bump(ctx context.Context, id string) (int64, error)
}

type mongoCalendarVersionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCalendarVersionRepository(cfg *config.Config) CalendarVersionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCalendarVersionRepository{
		cfg:        cfg,
		collection: db.Collection(VersionsCollection),
	}
}

func (r *mongoCalendarVersionRepository) Bump(ctx context.Context, id string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"version": 1},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var version model.StaffCalendarVersion
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&version); err != nil {
		return 0, fmt.Errorf("failed to bump calendar version: %w", err)
	}
	return version.Version, nil
}
