package service_test

import (
	"context"
	"testing"

	"github.com/Astemirdum/digital-library/library/internal/errs"
	"github.com/Astemirdum/digital-library/library/internal/model"
	"github.com/Astemirdum/digital-library/pkg/auth"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestService_Register(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		req      model.RegisterRequest
		wantRole model.Role
		wantName string
	}{
		{
			name:     "student",
			req:      model.RegisterRequest{Email: "jane@uni.edu", Password: "secret"},
			wantRole: model.RoleStudent,
			wantName: "jane",
		},
		{
			name:     "admin by email",
			req:      model.RegisterRequest{Email: "admin.lib@uni.edu", Password: "secret", Name: "Librarian"},
			wantRole: model.RoleAdmin,
			wantName: "Librarian",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, testNow)
			f.repo.EXPECT().GetUserByEmail(ctx, tt.req.Email).Return(model.User{}, errs.ErrUserNotFound)
			f.repo.EXPECT().CreateUser(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u model.User) (model.User, error) {
				require.Equal(t, tt.wantRole, u.Role)
				require.Equal(t, tt.wantName, u.Name)
				require.NotEqual(t, tt.req.Password, u.PasswordHash)
				require.True(t, auth.CheckPassword(u.PasswordHash, tt.req.Password))
				u.ID = 1
				return u, nil
			})

			got, err := f.svc.Register(ctx, tt.req)
			require.NoError(t, err)
			require.Equal(t, "token-"+tt.req.Email, got.Token)
			require.Equal(t, tt.wantRole, got.User.Role)
		})
	}
}

func TestService_Register_Errors(t *testing.T) {
	t.Parallel()

	t.Run("err. missing password", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, testNow)
		_, err := f.svc.Register(ctx, model.RegisterRequest{Email: "jane@uni.edu"})
		require.ErrorIs(t, err, errs.ErrCredentialsRequired)
	})

	t.Run("err. user exists", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, testNow)
		f.repo.EXPECT().GetUserByEmail(ctx, "jane@uni.edu").Return(model.User{ID: 1}, nil)
		_, err := f.svc.Register(ctx, model.RegisterRequest{Email: "jane@uni.edu", Password: "secret"})
		require.ErrorIs(t, err, errs.ErrUserExists)
	})
}

func TestService_Login(t *testing.T) {
	t.Parallel()
	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)
	stored := model.User{ID: 1, Email: "jane@uni.edu", Role: model.RoleStudent, PasswordHash: hash}

	tests := []struct {
		name     string
		password string
		user     model.User
		lookup   error
		wantErr  error
	}{
		{name: "ok", password: "secret", user: stored},
		{name: "err. wrong password", password: "nope", user: stored, wantErr: errs.ErrInvalidCredentials},
		{name: "err. unknown email", password: "secret", lookup: errs.ErrUserNotFound, wantErr: errs.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, testNow)
			f.repo.EXPECT().GetUserByEmail(ctx, "jane@uni.edu").Return(tt.user, tt.lookup)

			got, err := f.svc.Login(ctx, model.LoginRequest{Email: "jane@uni.edu", Password: tt.password})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "Login successful", got.Message)
			require.Equal(t, stored, got.User)
		})
	}
}

func TestService_EnsureAdmin(t *testing.T) {
	t.Parallel()

	t.Run("creates admin", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, testNow)
		f.repo.EXPECT().GetUserByEmail(ctx, "root@library.local").Return(model.User{}, errs.ErrUserNotFound)
		f.repo.EXPECT().CreateUser(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u model.User) (model.User, error) {
			require.Equal(t, model.RoleAdmin, u.Role)
			require.Equal(t, "root", u.Name)
			return u, nil
		})

		created, err := f.svc.EnsureAdmin(ctx, "root@library.local", "secret", "")
		require.NoError(t, err)
		require.True(t, created)
	})

	t.Run("existing account is kept", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, testNow)
		f.repo.EXPECT().GetUserByEmail(ctx, "root@library.local").Return(model.User{ID: 1}, nil)

		created, err := f.svc.EnsureAdmin(ctx, "root@library.local", "secret", "")
		require.NoError(t, err)
		require.False(t, created)
	})
}
