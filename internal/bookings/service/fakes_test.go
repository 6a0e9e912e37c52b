package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"visitly/internal/availability"
	bookingserrors "visitly/internal/bookings/errors"
	"visitly/internal/bookings/events"
	"visitly/internal/bookings/validator"
	"visitly/internal/calendar/clock"
	stafferrors "visitly/internal/staff/errors"
	"visitly/pkg/config"
	apperrors "visitly/pkg/errors"
	mongotx "visitly/pkg/db/mongo"
	"visitly/pkg/logger"
	"visitly/pkg/model"
)

const (
	tenant = model.TenantID("7d4a6f0e-2a51-4c1b-9a57-3c1e0f9b2d11")

	homeServiceID   = "5b0e5f3c-1d2a-4e8b-9c47-6a2d8e1f0a01"
	clinicServiceID = "5b0e5f3c-1d2a-4e8b-9c47-6a2d8e1f0a02"
	customerID      = "9c3f1a2b-7e4d-4b6a-8f10-2d5c9e7a3b01"

	alice = "a11ce000-0000-4000-8000-000000000001"
	bob   = "b0b00000-0000-4000-8000-000000000002"
	carol = "ca201000-0000-4000-8000-000000000003"
	dave  = "da0e0000-0000-4000-8000-000000000004"
)

// fakeBookings is an in-memory booking store. Transactions are serialised,
// which is what the version bump guarantees against Mongo.
type fakeBookings struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	bookings map[string]*model.Booking
	txCount  int
	// onTransaction runs at the start of every transaction with its 1-based
	// sequence number.
	onTransaction func(n int)
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{bookings: map[string]*model.Booking{}}
}

func (f *fakeBookings) Create(ctx context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bookings[b.ID]; ok {
		return fmt.Errorf("duplicate booking %s", b.ID)
	}
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookings) FindByID(ctx context.Context, tenantID model.TenantID, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.TenantID != tenantID {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) Update(ctx context.Context, b *model.Booking, expected int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.bookings[b.ID]
	if !ok || stored.Revision != expected {
		return fmt.Errorf("%w: %s", bookingserrors.ErrStaleBooking, b.ID)
	}
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookings) matching(tenantID model.TenantID, filter model.BookingFilter) []*model.Booking {
	var out []*model.Booking
	for _, b := range f.bookings {
		if b.TenantID != tenantID {
			continue
		}
		if filter.StaffID != "" && b.AssignedStaffID != filter.StaffID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && !b.EndAt.After(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !b.ScheduledAt.Before(filter.To) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *model.Booking) int {
		if c := a.ScheduledAt.Compare(b.ScheduledAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (f *fakeBookings) FindAll(ctx context.Context, tenantID model.TenantID, filter model.BookingFilter) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.matching(tenantID, filter)
	start := min(int(filter.Offset), len(out))
	end := min(start+filter.Limit, len(out))
	return out[start:end], nil
}

func (f *fakeBookings) Count(ctx context.Context, tenantID model.TenantID, filter model.BookingFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.matching(tenantID, filter))), nil
}

func (f *fakeBookings) FindOverlapping(ctx context.Context, tenantID model.TenantID, staffID string, start, end time.Time, excludeID string) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Booking
	for _, b := range f.bookings {
		if b.TenantID != tenantID || b.AssignedStaffID != staffID || b.ID == excludeID || !b.Status.IsActive() {
			continue
		}
		if b.ScheduledAt.Before(end) && b.EndAt.After(start) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeBookings) CountHomeVisits(ctx context.Context, tenantID model.TenantID, staffID, serviceID, localDate string, statuses []model.BookingStatus) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, b := range f.bookings {
		if b.TenantID == tenantID && b.AssignedStaffID == staffID && b.ServiceID == serviceID &&
			b.LocalDate == localDate && b.IsHomeVisit && slices.Contains(statuses, b.Status) {
			count++
		}
	}
	return count, nil
}

func (f *fakeBookings) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	f.txCount++
	n := f.txCount
	hook := f.onTransaction
	f.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	return fn(ctx)
}

func (f *fakeBookings) all() []*model.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.matching(tenant, model.BookingFilter{})
}

type fakeLocks struct {
	mu    sync.Mutex
	locks map[string]*model.StaffLock
	calls int
	// barrier, when set, holds the first two TryAcquire calls until both
	// have arrived.
	barrier *sync.WaitGroup
}

func newFakeLocks() *fakeLocks {
	return &fakeLocks{locks: map[string]*model.StaffLock{}}
}

func (f *fakeLocks) TryAcquire(ctx context.Context, lock *model.StaffLock) error {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()

	if f.barrier != nil && n <= 2 {
		f.barrier.Done()
		f.barrier.Wait()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.locks[lock.ID]; ok {
		return fmt.Errorf("%w: %s", bookingserrors.ErrLockHeld, lock.ID)
	}
	cp := *lock
	f.locks[lock.ID] = &cp
	return nil
}

func (f *fakeLocks) ReclaimExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lock, ok := f.locks[id]
	if !ok || lock.ExpiresAt.After(now) {
		return false, nil
	}
	delete(f.locks, id)
	return true, nil
}

func (f *fakeLocks) Release(ctx context.Context, id, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lock, ok := f.locks[id]; ok && lock.Owner == owner {
		delete(f.locks, id)
	}
	return nil
}

func (f *fakeLocks) held() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.locks)
}

type fakeVersions struct {
	mu       sync.Mutex
	versions map[string]int64
}

func (f *fakeVersions) Bump(ctx context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.versions == nil {
		f.versions = map[string]int64{}
	}
	f.versions[id]++
	return f.versions[id], nil
}

type fakeCatalog struct {
	services  map[string]*model.Service
	customers map[string]*model.Customer
}

func (f *fakeCatalog) GetService(ctx context.Context, tenantID model.TenantID, id string) (*model.Service, error) {
	if svc, ok := f.services[id]; ok {
		return svc, nil
	}
	return nil, apperrors.NotFoundWithID("Service", id)
}

func (f *fakeCatalog) GetCustomer(ctx context.Context, tenantID model.TenantID, id string) (*model.Customer, error) {
	if c, ok := f.customers[id]; ok {
		return c, nil
	}
	return nil, apperrors.NotFoundWithID("Customer", id)
}

// fakeCalendar is open 08:00-17:00 UTC every day.
type fakeCalendar struct {
	blocked map[string]bool
}

func (f *fakeCalendar) Location(ctx context.Context, tenantID model.TenantID) (*time.Location, error) {
	return time.UTC, nil
}

func (f *fakeCalendar) IsOpen(ctx context.Context, tenantID model.TenantID, start time.Time, duration time.Duration) (bool, error) {
	return clock.Within(start, start.Add(duration), "08:00", "17:00", time.UTC)
}

func (f *fakeCalendar) IsBlocked(ctx context.Context, tenantID model.TenantID, date string) (bool, error) {
	return f.blocked[date], nil
}

type fakeStaff map[string]*model.Staff

func (f fakeStaff) FindByIDs(ctx context.Context, tenantID model.TenantID, ids []string) ([]*model.Staff, error) {
	var out []*model.Staff
	for _, id := range ids {
		if s, ok := f[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeSchedules map[string]*model.WeeklySchedule

func (f fakeSchedules) FindByStaffIDs(ctx context.Context, tenantID model.TenantID, staffIDs []string) (map[string]*model.WeeklySchedule, error) {
	out := map[string]*model.WeeklySchedule{}
	for _, id := range staffIDs {
		if s, ok := f[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

type fakeCapabilities []*model.StaffCapability

func (f fakeCapabilities) Find(ctx context.Context, tenantID model.TenantID, staffID, serviceID string) (*model.StaffCapability, error) {
	for _, c := range f {
		if c.StaffID == staffID && c.ServiceID == serviceID {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", stafferrors.ErrCapabilityNotFound, staffID, serviceID)
}

func (f fakeCapabilities) FindByService(ctx context.Context, tenantID model.TenantID, serviceID string) ([]*model.StaffCapability, error) {
	var out []*model.StaffCapability
	for _, c := range f {
		if c.ServiceID == serviceID && c.CanPerform {
			out = append(out, c)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.EventType
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType events.EventType, booking *model.Booking) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func (p *recordingPublisher) published() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.events)
}

type fixture struct {
	scheduler *scheduler
	bookings  *fakeBookings
	locks     *fakeLocks
	calendar  *fakeCalendar
	events    *recordingPublisher
	cfg       *config.Config
}

// day is the Tuesday every test books on; now is the day before.
var day = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func intPtr(v int) *int { return &v }

func newFixture(t *testing.T, opts ...func(*config.Config)) *fixture {
	t.Helper()

	cfg := &config.Config{
		Log:                  logger.Discard(),
		ReadTimeout:          5 * time.Second,
		WriteTimeout:         5 * time.Second,
		QuotaCountPending:    true,
		AutoAssignHomeVisits: false,
		ResolverConcurrency:  4,
		LockTTL:              5 * time.Second,
		LockWaitTimeout:      2 * time.Second,
		LockRetryInterval:    2 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	catalog := &fakeCatalog{
		services: map[string]*model.Service{
			homeServiceID: {
				ID:                      homeServiceID,
				TenantID:                tenant,
				Name:                    "Home physiotherapy",
				DurationMinutes:         60,
				LocationType:            model.LocationBoth,
				DailyQuotaPerStaff:      intPtr(2),
				HomeVisitBufferMinutes:  intPtr(30),
				RequiresStaffAssignment: true,
			},
			clinicServiceID: {
				ID:              clinicServiceID,
				TenantID:        tenant,
				Name:            "Consultation",
				DurationMinutes: 30,
				LocationType:    model.LocationOnPremise,
			},
		},
		customers: map[string]*model.Customer{
			customerID: {ID: customerID, TenantID: tenant, Name: "Dana", Phone: "+16502530000"},
		},
	}

	workweek := func(staffID string) *model.WeeklySchedule {
		days := map[time.Weekday]model.DaySchedule{}
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			days[wd] = model.DaySchedule{StartTime: "08:00", EndTime: "17:00", IsAvailable: true}
		}
		return &model.WeeklySchedule{ID: staffID, TenantID: tenant, StaffID: staffID, Days: days}
	}

	staff := fakeStaff{
		alice: {ID: alice, TenantID: tenant, Name: "Alice", IsActive: true},
		bob:   {ID: bob, TenantID: tenant, Name: "Bob", IsActive: true},
		carol: {ID: carol, TenantID: tenant, Name: "Carol", IsActive: false},
		dave:  {ID: dave, TenantID: tenant, Name: "Dave", IsActive: true},
	}
	schedules := fakeSchedules{alice: workweek(alice), bob: workweek(bob), carol: workweek(carol), dave: workweek(dave)}

	var capabilities fakeCapabilities
	for _, id := range []string{alice, bob, carol} {
		capabilities = append(capabilities,
			&model.StaffCapability{StaffID: id, ServiceID: homeServiceID, CanPerform: true, HomeVisit: true},
			&model.StaffCapability{StaffID: id, ServiceID: clinicServiceID, CanPerform: true},
		)
	}

	bookings := newFakeBookings()
	locks := newFakeLocks()
	calendar := &fakeCalendar{blocked: map[string]bool{}}
	publisher := &recordingPublisher{}

	resolver := availability.NewResolver(catalog, staff, schedules, capabilities, calendar, bookings, cfg)
	s := NewBookingScheduler(
		bookings,
		locks,
		&fakeVersions{},
		catalog,
		calendar,
		resolver,
		publisher,
		validator.NewBookingValidator(cfg.Log),
		cfg,
	).(*scheduler)
	s.now = func() time.Time { return day.Add(-16 * time.Hour) }

	return &fixture{
		scheduler: s,
		bookings:  bookings,
		locks:     locks,
		calendar:  calendar,
		events:    publisher,
		cfg:       cfg,
	}
}

func (f *fixture) request(serviceID string, start time.Time, homeVisit bool) *model.CreateBookingRequest {
	req := &model.CreateBookingRequest{
		ServiceID:   serviceID,
		CustomerID:  customerID,
		ScheduledAt: start,
		IsHomeVisit: homeVisit,
	}
	if homeVisit {
		req.HomeVisitAddress = "12 Herzl Street, Tel Aviv"
	}
	return req
}
