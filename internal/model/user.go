package model

import "time"

// Role values carried in the JWT "role" claim and stored on each user
// row.  Authorization decisions compare against these constants only;
// raw string literals must never be used at call sites.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// ValidRole reports whether the given string is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// User represents an identity record as stored in the `users` table.
// Both regular users and admins live in the same table and are
// distinguished by the Role column.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  Name         – display name.
//  Phone        – optional contact number.
//  PasswordHash – bcrypt hashed password.
//  Role         – one of RoleUser, RoleAdmin, RoleSuperadmin.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	Name         string    // users.name
	Phone        string    // users.phone
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
