package repository

import (
	"context"
	"database/sql"

	"github.com/amitkrsingh19/parking-services/internal/model"
)

// StationRepo persists parking stations.  Creation enforces the two
// station invariants: an admin owns at most one station, and a
// name+location pair is registered at most once.
type StationRepo struct{ DB *sql.DB }

func NewStationRepo(db *sql.DB) *StationRepo { return &StationRepo{DB: db} }

const stationColumns = "id,name,location,capacity,owner_id,created_at"

// Create inserts a new station after checking both uniqueness
// invariants.  Both checks are locking reads (FOR UPDATE) inside the
// insert's transaction, the same pattern the superadmin promotion uses,
// so two concurrent registrations by the same admin (or for the same
// site) serialize instead of both passing a stale read.  The unique
// keys on (name, location) and owner_id remain the backstop; a
// duplicate-key insert still maps to ErrStationExists.  The generated
// ID is written back onto st.
func (r *StationRepo) Create(ctx context.Context, st *model.Station) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var cnt uint64
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM stations WHERE name=? AND location=? FOR UPDATE",
		st.Name, st.Location).Scan(&cnt)
	if err != nil {
		return err
	}
	if cnt > 0 {
		return ErrStationExists
	}
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM stations WHERE owner_id=? FOR UPDATE",
		st.OwnerID).Scan(&cnt)
	if err != nil {
		return err
	}
	if cnt > 0 {
		return ErrOwnerHasStation
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO stations (name, location, capacity, owner_id) VALUES (?,?,?,?)",
		st.Name, st.Location, st.Capacity, st.OwnerID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrStationExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	st.ID = uint64(id)
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches a station by id.
func (r *StationRepo) GetByID(ctx context.Context, id uint64) (model.Station, error) {
	var st model.Station
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+stationColumns+" FROM stations WHERE id=? LIMIT 1",
		id).Scan(&st.ID, &st.Name, &st.Location, &st.Capacity, &st.OwnerID, &st.CreatedAt)
	return st, err
}

// GetByOwner fetches the station registered by the given admin.
func (r *StationRepo) GetByOwner(ctx context.Context, ownerID uint64) (model.Station, error) {
	var st model.Station
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+stationColumns+" FROM stations WHERE owner_id=? LIMIT 1",
		ownerID).Scan(&st.ID, &st.Name, &st.Location, &st.Capacity, &st.OwnerID, &st.CreatedAt)
	return st, err
}

// List returns all stations ordered by creation time descending.
func (r *StationRepo) List(ctx context.Context) ([]model.Station, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+stationColumns+" FROM stations ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stations := make([]model.Station, 0)
	for rows.Next() {
		var st model.Station
		if err := rows.Scan(&st.ID, &st.Name, &st.Location, &st.Capacity, &st.OwnerID, &st.CreatedAt); err != nil {
			return nil, err
		}
		stations = append(stations, st)
	}
	return stations, rows.Err()
}

// Delete removes a station by id.  sql.ErrNoRows is returned when no
// such station exists.
func (r *StationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM stations WHERE id=?", id)
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
