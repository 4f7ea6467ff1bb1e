package service_test

import (
	"testing"

	"github.com/Astemirdum/digital-library/library/internal/errs"
	"github.com/Astemirdum/digital-library/library/internal/model"
	"github.com/stretchr/testify/require"
)

func TestService_UpdateUserRole(t *testing.T) {
	t.Parallel()
	type mockBehavior func(f fixture)

	tests := []struct {
		name         string
		id           int
		role         string
		mockBehavior mockBehavior
		wantErr      error
	}{
		{
			name: "ok. demote with a second admin",
			id:   1,
			role: "student",
			mockBehavior: func(f fixture) {
				f.expectTx()
				f.tx.EXPECT().LockAdminIDs(ctx).Return([]int{1, 2}, nil)
				f.tx.EXPECT().LockUser(ctx, 1).Return(model.User{ID: 1, Role: model.RoleAdmin}, nil)
				f.tx.EXPECT().UpdateUserRole(ctx, 1, model.RoleStudent).Return(model.User{ID: 1, Role: model.RoleStudent}, nil)
			},
		},
		{
			name: "ok. promote student",
			id:   5,
			role: "admin",
			mockBehavior: func(f fixture) {
				f.expectTx()
				f.tx.EXPECT().LockAdminIDs(ctx).Return([]int{1}, nil)
				f.tx.EXPECT().LockUser(ctx, 5).Return(model.User{ID: 5, Role: model.RoleStudent}, nil)
				f.tx.EXPECT().UpdateUserRole(ctx, 5, model.RoleAdmin).Return(model.User{ID: 5, Role: model.RoleAdmin}, nil)
			},
		},
		{
			name: "err. last admin",
			id:   1,
			role: "student",
			mockBehavior: func(f fixture) {
				f.expectTx()
				f.tx.EXPECT().LockAdminIDs(ctx).Return([]int{1}, nil)
				f.tx.EXPECT().LockUser(ctx, 1).Return(model.User{ID: 1, Role: model.RoleAdmin}, nil)
			},
			wantErr: errs.ErrLastAdminDemote,
		},
		{
			name:         "err. invalid role",
			id:           1,
			role:         "librarian",
			mockBehavior: func(f fixture) {},
			wantErr:      errs.ErrInvalidRole,
		},
		{
			name: "err. user not found",
			id:   9,
			role: "student",
			mockBehavior: func(f fixture) {
				f.expectTx()
				f.tx.EXPECT().LockAdminIDs(ctx).Return([]int{1}, nil)
				f.tx.EXPECT().LockUser(ctx, 9).Return(model.User{}, errs.ErrUserNotFound)
			},
			wantErr: errs.ErrUserNotFound,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, testNow)
			tt.mockBehavior(f)

			got, err := f.svc.UpdateUserRole(ctx, tt.id, tt.role)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, model.Role(tt.role), got.Role)
		})
	}
}

func TestService_DeleteUser(t *testing.T) {
	t.Parallel()
	type mockBehavior func(f fixture)

	tests := []struct {
		name         string
		id           int
		mockBehavior mockBehavior
		wantErr      error
		wantCount    int
	}{
		{
			name: "ok. student without borrows",
			id:   5,
			mockBehavior: func(f fixture) {
				f.expectTx()
				f.tx.EXPECT().LockAdminIDs(ctx).Return([]int{1}, nil)
				f.tx.EXPECT().LockUser(ctx, 5).Return(model.User{ID: 5, Role: model.RoleStudent}, nil)
				f.tx.EXPECT().CountOpenBorrowsByUser(ctx, 5).Return(0, nil)
				f.tx.EXPECT().DeleteUser(ctx, 5).Return(nil)
			},
		},
		{
			name: "ok. admin with a second admin",
			id:   1,
			mockBehavior: func(f fixture) {
				f.expectTx()
				f.tx.EXPECT().LockAdminIDs(ctx).Return([]int{1, 2}, nil)
				f.tx.EXPECT().LockUser(ctx, 1).Return(model.User{ID: 1, Role: model.RoleAdmin}, nil)
				f.tx.EXPECT().CountOpenBorrowsByUser(ctx, 1).Return(0, nil)
				f.tx.EXPECT().DeleteUser(ctx, 1).Return(nil)
			},
		},
		{
			name: "err. last admin",
			id:   1,
			mockBehavior: func(f fixture) {
				f.expectTx()
				f.tx.EXPECT().LockAdminIDs(ctx).Return([]int{1}, nil)
				f.tx.EXPECT().LockUser(ctx, 1).Return(model.User{ID: 1, Role: model.RoleAdmin}, nil)
			},
			wantErr: errs.ErrLastAdminDelete,
		},
		{
			name: "err. open borrows",
			id:   5,
			mockBehavior: func(f fixture) {
				f.expectTx()
				f.tx.EXPECT().LockAdminIDs(ctx).Return([]int{1}, nil)
				f.tx.EXPECT().LockUser(ctx, 5).Return(model.User{ID: 5, Role: model.RoleStudent}, nil)
				f.tx.EXPECT().CountOpenBorrowsByUser(ctx, 5).Return(2, nil)
			},
			wantErr:   errs.ErrUserHasBorrows,
			wantCount: 2,
		},
		{
			name: "err. not found",
			id:   9,
			mockBehavior: func(f fixture) {
				f.expectTx()
				f.tx.EXPECT().LockAdminIDs(ctx).Return([]int{1}, nil)
				f.tx.EXPECT().LockUser(ctx, 9).Return(model.User{}, errs.ErrUserNotFound)
			},
			wantErr: errs.ErrUserNotFound,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, testNow)
			tt.mockBehavior(f)

			_, err := f.svc.DeleteUser(ctx, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if tt.wantCount > 0 {
					var refErr *errs.ReferencedError
					require.ErrorAs(t, err, &refErr)
					require.Equal(t, tt.wantCount, refErr.BorrowedCount)
				}
				return
			}
			require.NoError(t, err)
		})
	}
}
