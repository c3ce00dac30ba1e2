package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	cases := map[string]UserRole{
		"ADMIN":      RoleAdmin,
		"instructor": RoleInstructor,
		"USER":       RoleStudent,
		"STUDENT":    RoleStudent,
		" student ":  RoleStudent,
		"SUPERVISOR": UserRole("SUPERVISOR"),
		"":           UserRole(""),
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeRole(raw), raw)
	}
}

func TestUserNormalizeKeepsLegacySpelling(t *testing.T) {
	user := &User{ID: "u1", Role: "USER"}
	user.Normalize()
	assert.Equal(t, RoleStudent, user.Role)
	assert.Equal(t, "USER", user.LegacyRole)

	// idempotent once normalized
	user.Normalize()
	assert.Equal(t, RoleStudent, user.Role)
	assert.Equal(t, "USER", user.LegacyRole)

	student := &User{ID: "u2", Role: "STUDENT"}
	student.Normalize()
	assert.Equal(t, RoleStudent, student.Role)
	assert.Empty(t, student.LegacyRole)
}

func TestRoleAndLevelValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, UserRole("USER").Valid())
	assert.True(t, LevelAdvanced.Valid())
	assert.False(t, CourseLevel("EXPERT").Valid())
}
