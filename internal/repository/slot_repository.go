package repository

import (
	"context"
	"database/sql"

	"github.com/amitkrsingh19/parking-services/internal/model"
)

// SlotRepo persists parking slots.  Besides plain CRUD it exposes the
// compare-and-set pair Reserve/Release that the booking engine uses to
// flip availability without a lost-update window.
type SlotRepo struct{ DB *sql.DB }

func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{DB: db} }

const slotColumns = "id,station_id,slot_number,slot_type,price_per_hour_cents,is_available,admin_id,created_at"

// Create inserts a new slot and writes the generated ID back onto s.
// A duplicate (station_id, slot_number) pair maps to ErrSlotNumberTaken
// via the table's unique key.
func (r *SlotRepo) Create(ctx context.Context, s *model.Slot) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO slots (station_id, slot_number, slot_type, price_per_hour_cents, is_available, admin_id) VALUES (?,?,?,?,?,?)",
		s.StationID, s.SlotNumber, s.SlotType, s.PricePerHourCents, s.IsAvailable, s.AdminID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrSlotNumberTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID fetches a slot by id regardless of availability.
func (r *SlotRepo) GetByID(ctx context.Context, id uint64) (model.Slot, error) {
	var s model.Slot
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+slotColumns+" FROM slots WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.StationID, &s.SlotNumber, &s.SlotType, &s.PricePerHourCents, &s.IsAvailable, &s.AdminID, &s.CreatedAt)
	return s, err
}

// GetAvailable fetches a slot by (station, slot) requiring it to be
// currently available.  sql.ErrNoRows covers both "no such slot" and
// "slot exists but is taken"; the booking engine treats them the same.
func (r *SlotRepo) GetAvailable(ctx context.Context, stationID, slotID uint64) (model.Slot, error) {
	var s model.Slot
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+slotColumns+" FROM slots WHERE id=? AND station_id=? AND is_available=1 LIMIT 1",
		slotID, stationID).Scan(&s.ID, &s.StationID, &s.SlotNumber, &s.SlotType, &s.PricePerHourCents, &s.IsAvailable, &s.AdminID, &s.CreatedAt)
	return s, err
}

// ListAvailable returns available slots for a station with simple
// offset pagination, ordered by slot number.
func (r *SlotRepo) ListAvailable(ctx context.Context, stationID uint64, limit, offset int) ([]model.Slot, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+slotColumns+" FROM slots WHERE station_id=? AND is_available=1 ORDER BY slot_number LIMIT ? OFFSET ?",
		stationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSlots(rows)
}

// ListByStation returns every slot of a station ordered by slot number.
func (r *SlotRepo) ListByStation(ctx context.Context, stationID uint64) ([]model.Slot, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+slotColumns+" FROM slots WHERE station_id=? ORDER BY slot_number",
		stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSlots(rows)
}

func scanSlots(rows *sql.Rows) ([]model.Slot, error) {
	slots := make([]model.Slot, 0)
	for rows.Next() {
		var s model.Slot
		if err := rows.Scan(&s.ID, &s.StationID, &s.SlotNumber, &s.SlotType, &s.PricePerHourCents, &s.IsAvailable, &s.AdminID, &s.CreatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// Reserve flips a slot from available to unavailable with an optimistic
// compare-and-set: the update only matches a row that is still
// available.  It returns false when the slot was already taken (or does
// not exist), which is how a losing concurrent booker finds out.
func (r *SlotRepo) Reserve(ctx context.Context, slotID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE slots SET is_available=0 WHERE id=? AND is_available=1", slotID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Release marks a slot available again.  It returns false when the
// slot no longer exists; cancellation treats that as a no-op rather
// than an error because a booking only holds a weak reference to its
// slot.
func (r *SlotRepo) Release(ctx context.Context, slotID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE slots SET is_available=1 WHERE id=?", slotID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CountByStation returns the total and currently available slot counts
// for a station.
func (r *SlotRepo) CountByStation(ctx context.Context, stationID uint64) (total, available uint64, err error) {
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(is_available), 0) FROM slots WHERE station_id=?",
		stationID).Scan(&total, &available)
	return total, available, err
}

// Delete removes a slot by id.  sql.ErrNoRows is returned when no such
// slot exists.
func (r *SlotRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM slots WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
