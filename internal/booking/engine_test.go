package booking

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/amitkrsingh19/parking-services/internal/model"
	"github.com/amitkrsingh19/parking-services/internal/repository"
)

// Function-field mocks so each test only wires the calls it cares
// about.  Unset fields panic, which doubles as an unexpected-call check.

type slotStoreMock struct {
	getAvailable   func(ctx context.Context, stationID, slotID uint64) (model.Slot, error)
	reserve        func(ctx context.Context, slotID uint64) (bool, error)
	release        func(ctx context.Context, slotID uint64) (bool, error)
	countByStation func(ctx context.Context, stationID uint64) (uint64, uint64, error)
}

func (m *slotStoreMock) GetAvailable(ctx context.Context, stationID, slotID uint64) (model.Slot, error) {
	return m.getAvailable(ctx, stationID, slotID)
}
func (m *slotStoreMock) Reserve(ctx context.Context, slotID uint64) (bool, error) {
	return m.reserve(ctx, slotID)
}
func (m *slotStoreMock) Release(ctx context.Context, slotID uint64) (bool, error) {
	return m.release(ctx, slotID)
}
func (m *slotStoreMock) CountByStation(ctx context.Context, stationID uint64) (uint64, uint64, error) {
	return m.countByStation(ctx, stationID)
}

type bookingStoreMock struct {
	create           func(ctx context.Context, b *model.Booking) error
	hasOverlap       func(ctx context.Context, slotID uint64, start, end time.Time) (bool, error)
	getByID          func(ctx context.Context, id uint64) (model.Booking, error)
	cancel           func(ctx context.Context, id uint64) error
	listByUser       func(ctx context.Context, userID uint64) ([]model.Booking, error)
	countsForUser    func(ctx context.Context, userID uint64, now time.Time) (uint64, uint64, uint64, error)
	mostRecentByUser func(ctx context.Context, userID uint64) (*model.Booking, error)
	stationStats     func(ctx context.Context, stationID uint64, now time.Time) (repository.StationBookingStats, error)
}

func (m *bookingStoreMock) Create(ctx context.Context, b *model.Booking) error {
	return m.create(ctx, b)
}
func (m *bookingStoreMock) HasOverlap(ctx context.Context, slotID uint64, start, end time.Time) (bool, error) {
	return m.hasOverlap(ctx, slotID, start, end)
}
func (m *bookingStoreMock) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	return m.getByID(ctx, id)
}
func (m *bookingStoreMock) Cancel(ctx context.Context, id uint64) error {
	return m.cancel(ctx, id)
}
func (m *bookingStoreMock) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return m.listByUser(ctx, userID)
}
func (m *bookingStoreMock) CountsForUser(ctx context.Context, userID uint64, now time.Time) (uint64, uint64, uint64, error) {
	return m.countsForUser(ctx, userID, now)
}
func (m *bookingStoreMock) MostRecentByUser(ctx context.Context, userID uint64) (*model.Booking, error) {
	return m.mostRecentByUser(ctx, userID)
}
func (m *bookingStoreMock) StationStats(ctx context.Context, stationID uint64, now time.Time) (repository.StationBookingStats, error) {
	return m.stationStats(ctx, stationID, now)
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(slots *slotStoreMock, bookings *bookingStoreMock) *Engine {
	e := NewEngine(slots, bookings)
	e.now = func() time.Time { return fixedNow }
	return e
}

func availableSlot() model.Slot {
	return model.Slot{ID: 7, StationID: 3, SlotNumber: 12, SlotType: model.SlotTypeCar, PricePerHourCents: 1000, IsAvailable: true, AdminID: 2}
}

func TestBookComputesAmountAndWindow(t *testing.T) {
	var created model.Booking
	slots := &slotStoreMock{
		getAvailable: func(ctx context.Context, stationID, slotID uint64) (model.Slot, error) {
			return availableSlot(), nil
		},
		reserve: func(ctx context.Context, slotID uint64) (bool, error) { return true, nil },
	}
	bookings := &bookingStoreMock{
		hasOverlap: func(ctx context.Context, slotID uint64, start, end time.Time) (bool, error) {
			return false, nil
		},
		create: func(ctx context.Context, b *model.Booking) error {
			b.ID = 42
			created = *b
			return nil
		},
	}
	e := newTestEngine(slots, bookings)

	b, err := e.Book(context.Background(), 5, 3, 7, 2)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	// price 1000 cents/hour * 2 hours
	if b.AmountPaidCents != 2000 {
		t.Errorf("amount = %d, want 2000", b.AmountPaidCents)
	}
	if !b.StartTime.Equal(fixedNow) {
		t.Errorf("start = %v, want %v", b.StartTime, fixedNow)
	}
	if want := fixedNow.Add(2 * time.Hour); !b.EndTime.Equal(want) {
		t.Errorf("end = %v, want %v", b.EndTime, want)
	}
	if b.Status != model.BookingStatusBooked {
		t.Errorf("status = %q, want %q", b.Status, model.BookingStatusBooked)
	}
	if created.UserID != 5 || created.SlotID != 7 || created.StationID != 3 {
		t.Errorf("persisted booking ids = %+v", created)
	}
}

func TestBookRejectsOutOfRangeDuration(t *testing.T) {
	e := newTestEngine(&slotStoreMock{}, &bookingStoreMock{})
	for _, d := range []int{0, -1, -24, maxDurationHours + 1, 1 << 30} {
		if _, err := e.Book(context.Background(), 1, 1, 1, d); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("duration %d: err = %v, want ErrInvalidDuration", d, err)
		}
	}
}

// An extreme hourly price must not wrap the 32-bit amount; the request
// is rejected before the slot is ever reserved.
func TestBookRejectsAmountOverflow(t *testing.T) {
	slots := &slotStoreMock{
		getAvailable: func(ctx context.Context, stationID, slotID uint64) (model.Slot, error) {
			s := availableSlot()
			s.PricePerHourCents = math.MaxUint32
			return s, nil
		},
	}
	e := newTestEngine(slots, &bookingStoreMock{})
	if _, err := e.Book(context.Background(), 1, 3, 7, 2); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("err = %v, want ErrInvalidDuration", err)
	}
}

func TestBookSlotMissingOrTaken(t *testing.T) {
	slots := &slotStoreMock{
		getAvailable: func(ctx context.Context, stationID, slotID uint64) (model.Slot, error) {
			return model.Slot{}, sql.ErrNoRows
		},
	}
	e := newTestEngine(slots, &bookingStoreMock{})
	if _, err := e.Book(context.Background(), 1, 3, 7, 1); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("err = %v, want ErrSlotNotFound", err)
	}
}

func TestBookOverlapConflict(t *testing.T) {
	var gotStart, gotEnd time.Time
	slots := &slotStoreMock{
		getAvailable: func(ctx context.Context, stationID, slotID uint64) (model.Slot, error) {
			return availableSlot(), nil
		},
	}
	bookings := &bookingStoreMock{
		hasOverlap: func(ctx context.Context, slotID uint64, start, end time.Time) (bool, error) {
			gotStart, gotEnd = start, end
			return true, nil
		},
	}
	e := newTestEngine(slots, bookings)
	if _, err := e.Book(context.Background(), 1, 3, 7, 3); !errors.Is(err, ErrBookingConflict) {
		t.Fatalf("err = %v, want ErrBookingConflict", err)
	}
	// The overlap query must see the same half-open window the booking
	// would occupy.
	if !gotStart.Equal(fixedNow) || !gotEnd.Equal(fixedNow.Add(3*time.Hour)) {
		t.Errorf("overlap window = [%v, %v)", gotStart, gotEnd)
	}
}

// Windows are half-open [start, end): a booking ending exactly when the
// new one starts, or starting exactly when it ends, never conflicts,
// while any true overlap does and Cancelled bookings never block.  The
// overlap check here is a real interval test over stored bookings, not
// a canned answer.
func TestBookWindowBoundarySemantics(t *testing.T) {
	tests := []struct {
		name     string
		existing model.Booking
		wantErr  error
	}{
		{"ends exactly at new start", model.Booking{StartTime: fixedNow.Add(-2 * time.Hour), EndTime: fixedNow, Status: model.BookingStatusBooked}, nil},
		{"starts exactly at new end", model.Booking{StartTime: fixedNow.Add(2 * time.Hour), EndTime: fixedNow.Add(4 * time.Hour), Status: model.BookingStatusBooked}, nil},
		{"overlaps the tail", model.Booking{StartTime: fixedNow.Add(time.Hour), EndTime: fixedNow.Add(3 * time.Hour), Status: model.BookingStatusBooked}, ErrBookingConflict},
		{"overlaps the head", model.Booking{StartTime: fixedNow.Add(-time.Hour), EndTime: fixedNow.Add(time.Minute), Status: model.BookingStatusBooked}, ErrBookingConflict},
		{"contained within", model.Booking{StartTime: fixedNow.Add(30 * time.Minute), EndTime: fixedNow.Add(time.Hour), Status: model.BookingStatusBooked}, ErrBookingConflict},
		{"cancelled never blocks", model.Booking{StartTime: fixedNow, EndTime: fixedNow.Add(2 * time.Hour), Status: model.BookingStatusCancelled}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := &slotStoreMock{
				getAvailable: func(ctx context.Context, stationID, slotID uint64) (model.Slot, error) {
					return availableSlot(), nil
				},
				reserve: func(ctx context.Context, slotID uint64) (bool, error) { return true, nil },
			}
			stored := []model.Booking{tt.existing}
			bookings := &bookingStoreMock{
				hasOverlap: func(ctx context.Context, slotID uint64, start, end time.Time) (bool, error) {
					for _, b := range stored {
						if b.Status == model.BookingStatusBooked && b.StartTime.Before(end) && b.EndTime.After(start) {
							return true, nil
						}
					}
					return false, nil
				},
				create: func(ctx context.Context, b *model.Booking) error { return nil },
			}
			e := newTestEngine(slots, bookings)
			_, err := e.Book(context.Background(), 5, 3, 7, 2)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBookLosesReserveRace(t *testing.T) {
	slots := &slotStoreMock{
		getAvailable: func(ctx context.Context, stationID, slotID uint64) (model.Slot, error) {
			return availableSlot(), nil
		},
		// Another booker flipped the flag between lookup and reserve.
		reserve: func(ctx context.Context, slotID uint64) (bool, error) { return false, nil },
	}
	bookings := &bookingStoreMock{
		hasOverlap: func(ctx context.Context, slotID uint64, start, end time.Time) (bool, error) {
			return false, nil
		},
	}
	e := newTestEngine(slots, bookings)
	if _, err := e.Book(context.Background(), 1, 3, 7, 1); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("err = %v, want ErrSlotNotFound", err)
	}
}

func TestBookCompensatesFailedInsert(t *testing.T) {
	released := false
	slots := &slotStoreMock{
		getAvailable: func(ctx context.Context, stationID, slotID uint64) (model.Slot, error) {
			return availableSlot(), nil
		},
		reserve: func(ctx context.Context, slotID uint64) (bool, error) { return true, nil },
		release: func(ctx context.Context, slotID uint64) (bool, error) {
			if slotID != 7 {
				t.Errorf("released slot %d, want 7", slotID)
			}
			released = true
			return true, nil
		},
	}
	bookings := &bookingStoreMock{
		hasOverlap: func(ctx context.Context, slotID uint64, start, end time.Time) (bool, error) {
			return false, nil
		},
		create: func(ctx context.Context, b *model.Booking) error {
			return errors.New("insert failed")
		},
	}
	e := newTestEngine(slots, bookings)
	if _, err := e.Book(context.Background(), 1, 3, 7, 1); err == nil {
		t.Fatal("Book succeeded, want error")
	}
	if !released {
		t.Error("slot was not released after failed insert")
	}
}

func TestBookThenCancelFreesSlot(t *testing.T) {
	slotAvailable := true
	stored := model.Booking{}
	slots := &slotStoreMock{
		getAvailable: func(ctx context.Context, stationID, slotID uint64) (model.Slot, error) {
			if !slotAvailable {
				return model.Slot{}, sql.ErrNoRows
			}
			return availableSlot(), nil
		},
		reserve: func(ctx context.Context, slotID uint64) (bool, error) {
			if !slotAvailable {
				return false, nil
			}
			slotAvailable = false
			return true, nil
		},
		release: func(ctx context.Context, slotID uint64) (bool, error) {
			slotAvailable = true
			return true, nil
		},
	}
	bookings := &bookingStoreMock{
		hasOverlap: func(ctx context.Context, slotID uint64, start, end time.Time) (bool, error) {
			return false, nil
		},
		create: func(ctx context.Context, b *model.Booking) error {
			b.ID = 9
			stored = *b
			return nil
		},
		getByID: func(ctx context.Context, id uint64) (model.Booking, error) {
			if id != 9 {
				return model.Booking{}, sql.ErrNoRows
			}
			return stored, nil
		},
		cancel: func(ctx context.Context, id uint64) error {
			stored.Status = model.BookingStatusCancelled
			return nil
		},
	}
	e := newTestEngine(slots, bookings)

	b, err := e.Book(context.Background(), 5, 3, 7, 1)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if slotAvailable {
		t.Fatal("slot still available after booking")
	}
	receipt, err := e.Cancel(context.Background(), b.ID, 5)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !slotAvailable {
		t.Error("slot not available again after cancel")
	}
	if receipt.Status != model.BookingStatusCancelled {
		t.Errorf("receipt status = %q, want %q", receipt.Status, model.BookingStatusCancelled)
	}
}

func TestCancelUnknownBooking(t *testing.T) {
	bookings := &bookingStoreMock{
		getByID: func(ctx context.Context, id uint64) (model.Booking, error) {
			return model.Booking{}, sql.ErrNoRows
		},
	}
	e := newTestEngine(&slotStoreMock{}, bookings)
	if _, err := e.Cancel(context.Background(), 99, 1); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("err = %v, want ErrBookingNotFound", err)
	}
}

func TestCancelRejectsForeignBooking(t *testing.T) {
	bookings := &bookingStoreMock{
		getByID: func(ctx context.Context, id uint64) (model.Booking, error) {
			return model.Booking{ID: id, UserID: 2, SlotID: 7}, nil
		},
	}
	e := newTestEngine(&slotStoreMock{}, bookings)
	if _, err := e.Cancel(context.Background(), 1, 5); !errors.Is(err, ErrNotBookingOwner) {
		t.Fatalf("err = %v, want ErrNotBookingOwner", err)
	}
}

func TestCancelSurvivesMissingSlot(t *testing.T) {
	slots := &slotStoreMock{
		// Slot was deleted independently; Release reports no row.
		release: func(ctx context.Context, slotID uint64) (bool, error) { return false, nil },
	}
	bookings := &bookingStoreMock{
		getByID: func(ctx context.Context, id uint64) (model.Booking, error) {
			return model.Booking{ID: id, UserID: 5, SlotID: 7, Status: model.BookingStatusBooked}, nil
		},
		cancel: func(ctx context.Context, id uint64) error { return nil },
	}
	e := newTestEngine(slots, bookings)
	receipt, err := e.Cancel(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if receipt.Status != model.BookingStatusCancelled {
		t.Errorf("receipt status = %q, want %q", receipt.Status, model.BookingStatusCancelled)
	}
}

// A release that fails after the status flip must not strand the slot:
// retrying the cancellation releases it, and the booking row is never
// re-cancelled.
func TestCancelRetryAfterFailedRelease(t *testing.T) {
	stored := model.Booking{ID: 9, UserID: 5, SlotID: 7, Status: model.BookingStatusBooked}
	releaseCalls, cancelCalls := 0, 0
	slots := &slotStoreMock{
		release: func(ctx context.Context, slotID uint64) (bool, error) {
			releaseCalls++
			if releaseCalls == 1 {
				return false, errors.New("connection reset")
			}
			return true, nil
		},
	}
	bookings := &bookingStoreMock{
		getByID: func(ctx context.Context, id uint64) (model.Booking, error) { return stored, nil },
		cancel: func(ctx context.Context, id uint64) error {
			cancelCalls++
			stored.Status = model.BookingStatusCancelled
			return nil
		},
	}
	e := newTestEngine(slots, bookings)

	if _, err := e.Cancel(context.Background(), 9, 5); err == nil {
		t.Fatal("first Cancel succeeded, want release error")
	}
	if stored.Status != model.BookingStatusCancelled {
		t.Fatalf("status after first attempt = %q, want %q", stored.Status, model.BookingStatusCancelled)
	}

	receipt, err := e.Cancel(context.Background(), 9, 5)
	if err != nil {
		t.Fatalf("retry Cancel: %v", err)
	}
	if receipt.Status != model.BookingStatusCancelled {
		t.Errorf("receipt status = %q, want %q", receipt.Status, model.BookingStatusCancelled)
	}
	if releaseCalls != 2 {
		t.Errorf("release calls = %d, want 2", releaseCalls)
	}
	if cancelCalls != 1 {
		t.Errorf("cancel calls = %d, want 1", cancelCalls)
	}
}

// A cancel raced by another worker still frees the slot instead of
// reporting the booking gone.
func TestCancelAfterConcurrentTerminalization(t *testing.T) {
	released := false
	slots := &slotStoreMock{
		release: func(ctx context.Context, slotID uint64) (bool, error) {
			released = true
			return true, nil
		},
	}
	bookings := &bookingStoreMock{
		getByID: func(ctx context.Context, id uint64) (model.Booking, error) {
			return model.Booking{ID: id, UserID: 5, SlotID: 7, Status: model.BookingStatusBooked}, nil
		},
		// The row was terminalized between the load and the update.
		cancel: func(ctx context.Context, id uint64) error { return sql.ErrNoRows },
	}
	e := newTestEngine(slots, bookings)
	receipt, err := e.Cancel(context.Background(), 9, 5)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !released {
		t.Error("slot was not released")
	}
	if receipt.Status != model.BookingStatusCancelled {
		t.Errorf("receipt status = %q, want %q", receipt.Status, model.BookingStatusCancelled)
	}
}

func TestDashboardCounts(t *testing.T) {
	last := model.Booking{ID: 4, UserID: 5, StartTime: fixedNow.Add(-time.Hour)}
	bookings := &bookingStoreMock{
		countsForUser: func(ctx context.Context, userID uint64, now time.Time) (uint64, uint64, uint64, error) {
			if !now.Equal(fixedNow) {
				t.Errorf("now = %v, want %v", now, fixedNow)
			}
			return 3, 2, 5, nil
		},
		mostRecentByUser: func(ctx context.Context, userID uint64) (*model.Booking, error) {
			return &last, nil
		},
	}
	e := newTestEngine(&slotStoreMock{}, bookings)
	d, err := e.Dashboard(context.Background(), 5)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.PastBookings != 3 || d.UpcomingBookings != 2 || d.TotalBookings != 5 {
		t.Errorf("dashboard = %+v", d)
	}
	if d.LastBooking == nil || d.LastBooking.ID != 4 {
		t.Errorf("last booking = %+v", d.LastBooking)
	}
}

func TestAdminDashboardAggregates(t *testing.T) {
	slots := &slotStoreMock{
		countByStation: func(ctx context.Context, stationID uint64) (uint64, uint64, error) {
			return 10, 4, nil
		},
	}
	bookings := &bookingStoreMock{
		stationStats: func(ctx context.Context, stationID uint64, now time.Time) (repository.StationBookingStats, error) {
			return repository.StationBookingStats{Past: 6, Upcoming: 3, Active: 2, RevenueCents: 12000}, nil
		},
	}
	e := newTestEngine(slots, bookings)
	d, err := e.AdminDashboard(context.Background(), 3)
	if err != nil {
		t.Fatalf("AdminDashboard: %v", err)
	}
	if d.TotalSlots != 10 || d.AvailableSlots != 4 {
		t.Errorf("slot counts = %+v", d)
	}
	if d.PastBookings != 6 || d.UpcomingBookings != 3 || d.ActiveBookings != 2 || d.RevenueCents != 12000 {
		t.Errorf("booking stats = %+v", d)
	}
}

// Two bookers race for the same slot; the CAS on the availability flag
// must let exactly one through.
func TestConcurrentBookSingleWinner(t *testing.T) {
	wins := make(chan struct{}, 1)
	slots := &slotStoreMock{
		getAvailable: func(ctx context.Context, stationID, slotID uint64) (model.Slot, error) {
			return availableSlot(), nil
		},
		reserve: func(ctx context.Context, slotID uint64) (bool, error) {
			select {
			case wins <- struct{}{}:
				return true, nil
			default:
				return false, nil
			}
		},
	}
	bookings := &bookingStoreMock{
		hasOverlap: func(ctx context.Context, slotID uint64, start, end time.Time) (bool, error) {
			return false, nil
		},
		create: func(ctx context.Context, b *model.Booking) error { return nil },
	}
	e := newTestEngine(slots, bookings)

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func(userID uint64) {
			_, err := e.Book(context.Background(), userID, 3, 7, 1)
			results <- err
		}(uint64(i + 1))
	}
	var ok, lost int
	for i := 0; i < 2; i++ {
		switch err := <-results; {
		case err == nil:
			ok++
		case errors.Is(err, ErrSlotNotFound):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || lost != 1 {
		t.Errorf("winners = %d, losers = %d; want exactly one of each", ok, lost)
	}
}
