package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "visitly/internal/bookings/errors"
	"visitly/pkg/config"
	mongotx "visitly/pkg/db/mongo"
	"visitly/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, tenantID model.TenantID, id string) (*model.Booking, error)
	// Update replaces the booking only while the stored revision is still
	// expected; otherwise ErrStaleBooking.
	Update(ctx context.Context, booking *model.Booking, expected int64) error
	FindAll(ctx context.Context, tenantID model.TenantID, filter model.BookingFilter) ([]*model.Booking, error)
	Count(ctx context.Context, tenantID model.TenantID, filter model.BookingFilter) (int64, error)
	FindOverlapping(ctx context.Context, tenantID model.TenantID, staffID string, start, end time.Time, excludeID string) ([]*model.Booking, error)
	CountHomeVisits(ctx context.Context, tenantID model.TenantID, staffID, serviceID, localDate string, statuses []model.BookingStatus) (int, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, tenantID model.TenantID, id string) (*model.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "tenant_id": tenantID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) Update(ctx context.Context, booking *model.Booking, expected int64) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": booking.ID, "tenant_id": booking.TenantID, "revision": expected}
	result, err := r.collection.ReplaceOne(ctx, filter, booking)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", bookingserrors.ErrStaleBooking, booking.ID)
	}
	return nil
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, tenantID model.TenantID, filter model.BookingFilter) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "scheduled_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(filter.Limit)).
		SetSkip(filter.Offset)

	cursor, err := r.collection.Find(ctx, buildListFilter(tenantID, filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, tenantID model.TenantID, filter model.BookingFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildListFilter(tenantID, filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// buildListFilter matches bookings intersecting [From, To) when both are set.
func buildListFilter(tenantID model.TenantID, f model.BookingFilter) bson.M {
	filter := bson.M{"tenant_id": tenantID}

	if !f.From.IsZero() {
		filter["end_at"] = bson.M{"$gt": f.From}
	}
	if !f.To.IsZero() {
		filter["scheduled_at"] = bson.M{"$lt": f.To}
	}
	if f.StaffID != "" {
		filter["assigned_staff_id"] = f.StaffID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

func (r *mongoBookingRepository) FindOverlapping(ctx context.Context, tenantID model.TenantID, staffID string, start, end time.Time, excludeID string) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"tenant_id":         tenantID,
		"assigned_staff_id": staffID,
		"status":            bson.M{"$in": model.ActiveStatuses},
		"scheduled_at":      bson.M{"$lt": end},
		"end_at":            bson.M{"$gt": start},
	}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) CountHomeVisits(ctx context.Context, tenantID model.TenantID, staffID, serviceID, localDate string, statuses []model.BookingStatus) (int, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"tenant_id":         tenantID,
		"assigned_staff_id": staffID,
		"service_id":        serviceID,
		"local_date":        localDate,
		"is_home_visit":     true,
		"status":            bson.M{"$in": statuses},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count home visits: %w", err)
	}
	return int(count), nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
