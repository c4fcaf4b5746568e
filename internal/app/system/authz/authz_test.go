package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"admin", Admin},
		{"ADMIN", Admin},
		{" volunteer ", Volunteer},
		{"donor", Donor},
		{"user", User},
		{"", User},
		{"superadmin", User},
		{"admn", User},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseRole(tt.in), "ParseRole(%q)", tt.in)
	}
}

func TestLookupRole_RejectsUnknown(t *testing.T) {
	_, ok := LookupRole("owner")
	assert.False(t, ok)

	r, ok := LookupRole("Volunteer")
	assert.True(t, ok)
	assert.Equal(t, Volunteer, r)
}

func TestRoleSet(t *testing.T) {
	set := Roles(Admin, Volunteer)
	assert.True(t, set.Has(Admin))
	assert.True(t, set.Has(Volunteer))
	assert.False(t, set.Has(Donor))
	assert.False(t, set.Has(User))
	assert.Equal(t, []string{"volunteer", "admin"}, set.Strings())
}
