package service

import (
	"context"
	"strings"

	"github.com/Astemirdum/digital-library/library/internal/errs"
	"github.com/Astemirdum/digital-library/library/internal/model"
	"github.com/Astemirdum/digital-library/pkg/auth"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return model.AuthResponse{}, errs.ErrCredentialsRequired
	}
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return model.AuthResponse{}, errs.ErrUserExists
	} else if !errors.Is(err, errs.ErrUserNotFound) {
		return model.AuthResponse{}, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, errors.Wrap(err, "hash password")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = emailLocalPart(email)
	}
	user, err := s.repo.CreateUser(ctx, model.User{
		Email:        email,
		Name:         name,
		Role:         model.RoleForEmail(email),
		PasswordHash: hash,
	})
	if err != nil {
		return model.AuthResponse{}, err
	}

	token, err := s.token(user)
	if err != nil {
		return model.AuthResponse{}, err
	}
	s.log.Info("user registered", zap.Int("user_id", user.ID), zap.String("role", string(user.Role)))
	return model.AuthResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    user,
	}, nil
}

// Login returns ErrInvalidCredentials for both an unknown email and a wrong
// password.
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return model.AuthResponse{}, errs.ErrCredentialsRequired
	}
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, errs.ErrUserNotFound) {
		return model.AuthResponse{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return model.AuthResponse{}, errs.ErrInvalidCredentials
	}

	token, err := s.token(user)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    user,
	}, nil
}

func (s *Service) Profile(ctx context.Context, userID int) (model.User, error) {
	return s.repo.GetUser(ctx, userID)
}

// EnsureAdmin creates an admin account for email unless one already exists.
// It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	if email == "" || password == "" {
		return false, errs.ErrCredentialsRequired
	}
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, errs.ErrUserNotFound) {
		return false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, errors.Wrap(err, "hash password")
	}
	if name == "" {
		name = emailLocalPart(email)
	}
	user, err := s.repo.CreateUser(ctx, model.User{
		Email:        email,
		Name:         name,
		Role:         model.RoleAdmin,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, errs.ErrUserExists) {
			return false, nil
		}
		return false, err
	}
	s.log.Info("admin created", zap.Int("user_id", user.ID), zap.String("email", user.Email))
	return true, nil
}

func (s *Service) token(user model.User) (string, error) {
	token, _, err := s.issuer.Issue(auth.Profile{
		ID:    user.ID,
		Email: user.Email,
		Role:  string(user.Role),
	})
	if err != nil {
		return "", errors.Wrap(err, "issue token")
	}
	return token, nil
}

func emailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
