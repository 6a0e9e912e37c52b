package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
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
	SchedulesCollection = "Staff_schedules"
)

type ScheduleRepository interface {
	FindByStaffID(ctx context.Context, tenantID model.TenantID, staffID string) (*model.WeeklySchedule, error)
	// FindByStaffIDs returns schedules keyed by staff id. Staff without a
	// schedule are absent from the map.
	FindByStaffIDs(ctx context.Context, tenantID model.TenantID, staffIDs []string) (map[string]*model.WeeklySchedule, error)
	UpsertDay(ctx context.Context, tenantID model.TenantID, staffID string, day time.Weekday, entry model.DaySchedule) (*model.WeeklySchedule, error)
}

type mongoScheduleRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoScheduleRepository(cfg *config.Config) ScheduleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoScheduleRepository{
		cfg:        cfg,
		collection: db.Collection(SchedulesCollection),
	}
}

func (r *mongoScheduleRepository) FindByStaffID(ctx context.Context, tenantID model.TenantID, staffID string) (*model.WeeklySchedule, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var schedule model.WeeklySchedule
	err := r.collection.FindOne(ctx, bson.M{"tenant_id": tenantID, "staff_id": staffID}).Decode(&schedule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", stafferrors.ErrScheduleNotFound, staffID)
		}
		return nil, fmt.Errorf("failed to find schedule: %w", err)
	}
	return &schedule, nil
}

func (r *mongoScheduleRepository) FindByStaffIDs(ctx context.Context, tenantID model.TenantID, staffIDs []string) (map[string]*model.WeeklySchedule, error) {
	schedules := make(map[string]*model.WeeklySchedule, len(staffIDs))
	if len(staffIDs) == 0 {
		return schedules, nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"tenant_id": tenantID, "staff_id": bson.M{"$in": staffIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var schedule model.WeeklySchedule
		if err := cursor.Decode(&schedule); err != nil {
			return nil, fmt.Errorf("failed to decode schedule: %w", err)
		}
		schedules[schedule.StaffID] = &schedule
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedules: %w", err)
	}
	return schedules, nil
}

// UpsertDay replaces a single weekday entry, creating the schedule document
// on first use. Other days are left untouched.
func (r *mongoScheduleRepository) UpsertDay(ctx context.Context, tenantID model.TenantID, staffID string, day time.Weekday, entry model.DaySchedule) (*model.WeeklySchedule, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"days." + strconv.Itoa(int(day)): entry,
			"updated_at":                     time.Now().UTC().Truncate(time.Millisecond),
		},
		"$setOnInsert": bson.M{
			"_id":       uuid.NewString(),
			"tenant_id": tenantID,
			"staff_id":  staffID,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var schedule model.WeeklySchedule
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"tenant_id": tenantID, "staff_id": staffID}, update, opts).Decode(&schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert schedule day: %w", err)
	}
	return &schedule, nil
}
