package model

import (
	"testing"

	"github.com/Astemirdum/digital-library/library/internal/errs"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr error
	}{
		{in: "admin", want: RoleAdmin},
		{in: "student", want: RoleStudent},
		{in: "Admin", wantErr: errs.ErrInvalidRole},
		{in: "", wantErr: errs.ErrInvalidRole},
		{in: "librarian", wantErr: errs.ErrInvalidRole},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr != nil {
			require.ErrorIs(t, err, tt.wantErr, tt.in)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}

func TestRoleForEmail(t *testing.T) {
	require.Equal(t, RoleAdmin, RoleForEmail("admin@library.com"))
	require.Equal(t, RoleAdmin, RoleForEmail("head.admin.desk@uni.edu"))
	require.Equal(t, RoleStudent, RoleForEmail("alice@uni.edu"))
	// case sensitive, as in registration
	require.Equal(t, RoleStudent, RoleForEmail("ADMIN@uni.edu"))
}

func TestBorrowRecord_IsOpen(t *testing.T) {
	var rec BorrowRecord
	require.True(t, rec.IsOpen())
	now := rec.BorrowDate
	rec.ReturnDate = &now
	require.False(t, rec.IsOpen())
}
