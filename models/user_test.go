package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserProfileTableName(t *testing.T) {
	profile := UserProfile{}
	assert.Equal(t, "user_profiles", profile.TableName(), "Table name should be 'user_profiles'")
}

func TestUserProfileFullName(t *testing.T) {
	profile := UserProfile{
		FirstName: "Dana",
		LastName:  "Whitfield",
	}
	assert.Equal(t, "Dana Whitfield", profile.FullName())
}

func TestUserProfileIsActive(t *testing.T) {
	active := UserProfile{Status: StatusActive}
	inactive := UserProfile{Status: StatusInactive}

	assert.True(t, active.IsActive())
	assert.False(t, inactive.IsActive())
}

func TestUserProfileTenantMembership(t *testing.T) {
	tenantID := uuid.New()

	tests := []struct {
		name     string
		tenantID *uuid.UUID
		verified bool
	}{
		{"profile with tenant", &tenantID, true},
		{"profile without tenant", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := UserProfile{
				Email:    "user@example.com",
				Role:     RoleAdmin,
				TenantID: tt.tenantID,
			}
			assert.Equal(t, tt.verified, profile.TenantID != nil, "Tenant membership should match")
		})
	}
}

func TestUserProfileRoleValues(t *testing.T) {
	roles := []string{RoleAdmin, RoleTechnician, RoleConsultant, RoleAccountant, RoleSuperadmin}

	for _, role := range roles {
		t.Run(role, func(t *testing.T) {
			profile := UserProfile{Email: "user@example.com", Role: role}
			assert.Equal(t, role, profile.Role, "Role should be set correctly")
		})
	}
}
