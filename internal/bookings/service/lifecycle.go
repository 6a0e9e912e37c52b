package service

import (
	"context"

	"visitly/internal/bookings/events"
	apperrors "visitly/pkg/errors"
	"visitly/pkg/logger"
	"visitly/pkg/model"
	"visitly/pkg/sanitizer"
)

func (s *scheduler) CancelBooking(ctx context.Context, tenantID model.TenantID, bookingID, reason string) (*model.Booking, error) {
	req := &model.CancelBookingRequest{Reason: sanitizer.NormalizeNotes(reason)}
	if err := s.validator.ValidateCancel(req); err != nil {
		return nil, validationError("Invalid cancellation", err)
	}

	return s.transition(ctx, tenantID, bookingID, model.BookingCancelled, events.BookingCancelled,
		func(ctx context.Context, updated *model.Booking, _ *model.Service, expected int64) error {
			cancelledAt := updated.UpdatedAt
			updated.CancelledAt = &cancelledAt
			updated.CancellationReason = req.Reason
			return s.save(ctx, updated, expected)
		})
}

// ConfirmBooking requires an assigned staff member for services that need
// one. When pending bookings do not count against the quota, confirming a
// home visit consumes quota and is reserved like an assignment.
func (s *scheduler) ConfirmBooking(ctx context.Context, tenantID model.TenantID, bookingID string) (*model.Booking, error) {
	return s.transition(ctx, tenantID, bookingID, model.BookingConfirmed, events.BookingConfirmed,
		func(ctx context.Context, updated *model.Booking, svc *model.Service, expected int64) error {
			if svc.RequiresStaffAssignment && !updated.IsAssigned() {
				return apperrors.Validation("Booking needs an assigned staff member before it can be confirmed", map[string]any{
					"booking_id": updated.ID,
					"service_id": svc.ID,
				})
			}

			if updated.IsAssigned() && updated.IsHomeVisit && !s.cfg.QuotaCountPending {
				return s.reserve(ctx, updated, svc, updated.AssignedStaffID, func(txCtx context.Context) error {
					return s.save(txCtx, updated, expected)
				})
			}
			return s.save(ctx, updated, expected)
		})
}

func (s *scheduler) CompleteBooking(ctx context.Context, tenantID model.TenantID, bookingID string) (*model.Booking, error) {
	return s.transition(ctx, tenantID, bookingID, model.BookingCompleted, events.BookingCompleted,
		func(ctx context.Context, updated *model.Booking, _ *model.Service, expected int64) error {
			return s.save(ctx, updated, expected)
		})
}

type commitFunc func(ctx context.Context, updated *model.Booking, svc *model.Service, expected int64) error

func (s *scheduler) transition(
	ctx context.Context,
	tenantID model.TenantID,
	bookingID string,
	to model.BookingStatus,
	eventType events.EventType,
	commit commitFunc,
) (*model.Booking, error) {
	booking, err := s.GetBooking(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransition(to) {
		return nil, apperrors.InvalidTransition(string(booking.Status), string(to))
	}

	svc, err := s.catalog.GetService(ctx, tenantID, booking.ServiceID)
	if err != nil {
		return nil, err
	}

	updated := s.revise(booking)
	updated.Status = to
	if err := commit(ctx, updated, svc, booking.Revision); err != nil {
		s.logFailure("Failed to update booking status", tenantID, bookingID, err)
		return nil, err
	}

	s.cfg.Log.Info("Booking status changed",
		logger.TENANT, tenantID,
		"id", bookingID,
		"from", booking.Status,
		"to", to,
	)
	s.events.Publish(ctx, eventType, updated)
	return updated, nil
}
