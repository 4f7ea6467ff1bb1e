package repository

import (
	"context"

	"github.com/Astemirdum/digital-library/library/internal/errs"
	"github.com/Astemirdum/digital-library/library/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

var userColumns = []string{"id", "email", "name", "role", "password_hash", "created_at"}

func (s *store) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	b := qb.Insert(usersTableName).
		Columns("email", "name", "role", "password_hash").
		Values(user.Email, user.Name, user.Role, user.PasswordHash).
		Suffix("returning id, email, name, role, password_hash, created_at")

	var created model.User
	if err := s.get(ctx, &created, b); err != nil {
		if isUniqueViolation(err, usersEmailConstraint) {
			return model.User{}, errs.ErrUserExists
		}
		return model.User{}, errors.Wrap(err, "CreateUser")
	}
	return created, nil
}

func (s *store) GetUser(ctx context.Context, id int) (model.User, error) {
	var user model.User
	err := s.get(ctx, &user, qb.Select(userColumns...).
		From(usersTableName).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return model.User{}, notFound(err, errs.ErrUserNotFound)
	}
	return user, nil
}

func (s *store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	err := s.get(ctx, &user, qb.Select(userColumns...).
		From(usersTableName).
		Where(sq.Eq{"email": email}))
	if err != nil {
		return model.User{}, notFound(err, errs.ErrUserNotFound)
	}
	return user, nil
}

func (s *store) ListUsers(ctx context.Context) ([]model.User, error) {
	users := make([]model.User, 0)
	err := s.selectAll(ctx, &users, qb.Select(userColumns...).
		From(usersTableName).
		OrderBy("created_at desc", "id desc"))
	if err != nil {
		return nil, errors.Wrap(err, "ListUsers")
	}
	return users, nil
}

func (s *store) UserStats(ctx context.Context) (model.UserStats, error) {
	var stats model.UserStats
	err := s.get(ctx, &stats, qb.Select(
		"count(*) as total_users",
		"count(*) filter (where role = 'admin') as admin_count",
		"count(*) filter (where role = 'student') as student_count",
	).From(usersTableName))
	if err != nil {
		return model.UserStats{}, errors.Wrap(err, "UserStats")
	}
	return stats, nil
}

func (s *store) CountUsers(ctx context.Context) (int, error) {
	return s.count(ctx, qb.Select("count(*)").From(usersTableName))
}

func (s *store) LockUser(ctx context.Context, id int) (model.User, error) {
	var user model.User
	err := s.get(ctx, &user, qb.Select(userColumns...).
		From(usersTableName).
		Where(sq.Eq{"id": id}).
		Suffix("for update"))
	if err != nil {
		return model.User{}, notFound(err, errs.ErrUserNotFound)
	}
	return user, nil
}

// LockAdminIDs locks every admin row so concurrent demotions and
// deletions of admins serialize.
func (s *store) LockAdminIDs(ctx context.Context) ([]int, error) {
	ids := make([]int, 0)
	err := s.selectAll(ctx, &ids, qb.Select("id").
		From(usersTableName).
		Where(sq.Eq{"role": model.RoleAdmin}).
		OrderBy("id").
		Suffix("for update"))
	if err != nil {
		return nil, errors.Wrap(err, "LockAdminIDs")
	}
	return ids, nil
}

func (s *store) UpdateUserRole(ctx context.Context, id int, role model.Role) (model.User, error) {
	var user model.User
	err := s.get(ctx, &user, qb.Update(usersTableName).
		Set("role", role).
		Where(sq.Eq{"id": id}).
		Suffix("returning id, email, name, role, password_hash, created_at"))
	if err != nil {
		return model.User{}, notFound(err, errs.ErrUserNotFound)
	}
	return user, nil
}

func (s *store) DeleteUser(ctx context.Context, id int) error {
	query, args, err := qb.Delete(usersTableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := s.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "DeleteUser")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}

func (s *store) CountOpenBorrowsByUser(ctx context.Context, userID int) (int, error) {
	return s.count(ctx, qb.Select("count(*)").
		From(borrowRecordsTableName).
		Where(sq.Eq{"user_id": userID, "return_date": nil}))
}
