package middleware

import (
	"net/http"
	"testing"

	"github.com/amitkrsingh19/parking-services/internal/model"
)

// The gate takes an explicit set of permitted roles; a caller passes
// when its role is a member, never because of string truthiness.
func TestRequireRoleSetMembership(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		role    string
		want    int
	}{
		{"admin allowed of two", []string{model.RoleAdmin, model.RoleSuperadmin}, model.RoleAdmin, http.StatusOK},
		{"superadmin allowed of two", []string{model.RoleAdmin, model.RoleSuperadmin}, model.RoleSuperadmin, http.StatusOK},
		{"user rejected by admin set", []string{model.RoleAdmin, model.RoleSuperadmin}, model.RoleUser, http.StatusForbidden},
		{"exact single role", []string{model.RoleSuperadmin}, model.RoleSuperadmin, http.StatusOK},
		{"admin is not superadmin", []string{model.RoleSuperadmin}, model.RoleAdmin, http.StatusForbidden},
		// A token carrying a role outside the known set never reaches
		// the gate; JWTAuth already rejects it.
		{"unknown role rejected", []string{model.RoleUser}, "root", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, _ := run(t, bearerFor(t, 7, tt.role), JWTAuth(testSecret), RequireRole(tt.allowed...))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// Without JWTAuth in front there is no role in the context at all; the
// gate must fail closed.
func TestRequireRoleWithoutIdentity(t *testing.T) {
	rec, _, _ := run(t, "", RequireRole(model.RoleUser))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
