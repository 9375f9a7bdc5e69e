package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/amitkrsingh19/parking-services/internal/model"
	"github.com/amitkrsingh19/parking-services/internal/utils"
)

// UserRepo persists identity records in the `users` table.  Regular
// users, admins and the superadmin all share the table and differ only
// in the role column.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,name,phone,password_hash,role,created_at,updated_at"

// Create inserts a regular user and returns its ID.  The password is
// hashed before it touches the database.
func (r *UserRepo) Create(ctx context.Context, email, name, phone, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, name, phone, password_hash, role) VALUES (?,?,?,?,?)",
		email, name, phone, hash, model.RoleUser)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CreateAdmin inserts an admin-type identity.  The first admin-type
// record ever created is promoted to superadmin; every later one gets
// the plain admin role.  The count and the insert run in one
// transaction so two concurrent first registrations cannot both end up
// superadmin.  It returns the new ID and the role that was assigned.
func (r *UserRepo) CreateAdmin(ctx context.Context, email, name, phone, password string, cost int) (uint64, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, "", err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, "", err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var adminCount uint64
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role IN (?,?) FOR UPDATE",
		model.RoleAdmin, model.RoleSuperadmin).Scan(&adminCount)
	if err != nil {
		return 0, "", err
	}
	role := model.RoleAdmin
	if adminCount == 0 {
		role = model.RoleSuperadmin
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, name, phone, password_hash, role) VALUES (?,?,?,?,?)",
		email, name, phone, hash, role)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, "", ErrEmailExists
		}
		return 0, "", err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, "", err
	}
	if err := tx.Commit(); err != nil {
		return 0, "", err
	}
	committed = true
	return uint64(id), role, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// UpdateProfile updates the owner-mutable fields of a user.  Empty
// arguments leave the corresponding column untouched; passwordHash must
// already be hashed by the caller.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name, phone, passwordHash string) error {
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	if name != "" {
		sets = append(sets, "name=?")
		args = append(args, name)
	}
	if phone != "" {
		sets = append(sets, "phone=?")
		args = append(args, phone)
	}
	if passwordHash != "" {
		sets = append(sets, "password_hash=?")
		args = append(args, passwordHash)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ",")+" WHERE id=?", args...)
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

// Delete removes a user by id.  sql.ErrNoRows is returned when no such
// user exists.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
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

// isDuplicateKey reports whether the error is a MySQL duplicate entry
// violation (error 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
