package service

import (
	"context"

	"github.com/Astemirdum/digital-library/library/internal/errs"
	"github.com/Astemirdum/digital-library/library/internal/model"
	"github.com/Astemirdum/digital-library/library/internal/repository"
	"go.uber.org/zap"
)

func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Service) GetUser(ctx context.Context, id int) (model.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Service) UserStats(ctx context.Context) (model.UserStats, error) {
	return s.repo.UserStats(ctx)
}

// UpdateUserRole keeps at least one admin: demoting the only admin fails
// with ErrLastAdminDemote.
func (s *Service) UpdateUserRole(ctx context.Context, id int, role string) (model.User, error) {
	newRole, err := model.ParseRole(role)
	if err != nil {
		return model.User{}, err
	}

	var updated model.User
	err = s.repo.WithTx(ctx, func(tx repository.Tx) error {
		admins, err := tx.LockAdminIDs(ctx)
		if err != nil {
			return err
		}
		user, err := tx.LockUser(ctx, id)
		if err != nil {
			return err
		}
		if user.Role == model.RoleAdmin && newRole != model.RoleAdmin && otherAdmins(admins, id) == 0 {
			return errs.ErrLastAdminDemote
		}
		updated, err = tx.UpdateUserRole(ctx, id, newRole)
		return err
	})
	if err != nil {
		return model.User{}, err
	}
	s.log.Info("user role updated", zap.Int("user_id", id), zap.String("role", string(newRole)))
	return updated, nil
}

// DeleteUser refuses to remove the only admin or a user holding books.
func (s *Service) DeleteUser(ctx context.Context, id int) (model.User, error) {
	var user model.User
	err := s.repo.WithTx(ctx, func(tx repository.Tx) error {
		admins, err := tx.LockAdminIDs(ctx)
		if err != nil {
			return err
		}
		if user, err = tx.LockUser(ctx, id); err != nil {
			return err
		}
		if user.Role == model.RoleAdmin && otherAdmins(admins, id) == 0 {
			return errs.ErrLastAdminDelete
		}
		n, err := tx.CountOpenBorrowsByUser(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &errs.ReferencedError{Err: errs.ErrUserHasBorrows, BorrowedCount: n}
		}
		return tx.DeleteUser(ctx, id)
	})
	if err != nil {
		return model.User{}, err
	}
	s.log.Info("user deleted", zap.Int("user_id", id), zap.String("email", user.Email))
	s.invalidateStats(ctx)
	return user, nil
}

func otherAdmins(adminIDs []int, id int) int {
	n := 0
	for _, adminID := range adminIDs {
		if adminID != id {
			n++
		}
	}
	return n
}
