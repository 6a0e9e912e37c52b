package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "visitly/internal/bookings/errors"
	apperrors "visitly/pkg/errors"
	"visitly/pkg/logger"
	"visitly/pkg/model"

	"github.com/google/uuid"
)

type staffLock struct {
	id    string
	owner string
}

func staffLockID(tenantID model.TenantID, staffID string) string {
	return fmt.Sprintf("staff_lock_%s_%s", tenantID, staffID)
}

func calendarVersionID(tenantID model.TenantID, staffID string) string {
	return fmt.Sprintf("%s:%s", tenantID, staffID)
}

// acquireStaffLock retries a held lock every LockRetryInterval until
// LockWaitTimeout, reclaiming it once its holder's TTL has passed. Lock
// expiry is wall-clock time, independent of the scheduler's clock.
func (s *scheduler) acquireStaffLock(ctx context.Context, tenantID model.TenantID, staffID string) (*staffLock, error) {
	lock := &staffLock{
		id:    staffLockID(tenantID, staffID),
		owner: uuid.NewString(),
	}
	deadline := time.Now().Add(s.cfg.LockWaitTimeout)

	for {
		now := time.Now()
		err := s.locks.TryAcquire(ctx, &model.StaffLock{
			ID:        lock.id,
			Owner:     lock.owner,
			ExpiresAt: now.Add(s.cfg.LockTTL),
			CreatedAt: now,
		})
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, bookingserrors.ErrLockHeld) {
			s.cfg.Log.Error("Failed to acquire staff lock", logger.TENANT, tenantID, "staff_id", staffID, "error", err)
			return nil, apperrors.Internal("Failed to acquire staff lock", err)
		}

		reclaimed, err := s.locks.ReclaimExpired(ctx, lock.id, now)
		if err != nil {
			s.cfg.Log.Error("Failed to reclaim staff lock", logger.TENANT, tenantID, "staff_id", staffID, "error", err)
			return nil, apperrors.Internal("Failed to acquire staff lock", err)
		}
		if reclaimed {
			s.cfg.Log.Warn("Reclaimed expired staff lock", logger.TENANT, tenantID, "staff_id", staffID)
			continue
		}

		if !now.Before(deadline) {
			s.cfg.Log.Warn("Timed out waiting for staff lock", logger.TENANT, tenantID, "staff_id", staffID)
			return nil, apperrors.Timeout("Staff calendar is busy, please retry").
				WithDetail("staff_id", staffID)
		}

		select {
		case <-ctx.Done():
			return nil, apperrors.Timeout("Request cancelled while waiting for staff lock").
				WithDetail("staff_id", staffID)
		case <-time.After(s.cfg.LockRetryInterval):
		}
	}
}

// releaseStaffLock runs on a fresh context so a cancelled request still
// releases its lock.
func (s *scheduler) releaseStaffLock(lock *staffLock) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()

	if err := s.locks.Release(ctx, lock.id, lock.owner); err != nil {
		s.cfg.Log.Warn("Failed to release staff lock", "lock_id", lock.id, "error", err)
	}
}
