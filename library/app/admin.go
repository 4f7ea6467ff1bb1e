package app

import (
	"context"

	"github.com/Astemirdum/digital-library/library/internal/repository"
	"github.com/Astemirdum/digital-library/library/internal/service"
	"github.com/Astemirdum/digital-library/pkg/auth"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// CreateAdmin creates an admin account on db unless email is taken.
func CreateAdmin(ctx context.Context, db *sqlx.DB, log *zap.Logger, email, password, name string) (bool, error) {
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return false, err
	}
	// no tokens are issued on this path
	svc := service.NewService(repo, auth.NewIssuer(auth.Config{}), log)
	return svc.EnsureAdmin(ctx, email, password, name)
}
