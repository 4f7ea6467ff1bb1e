package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Astemirdum/digital-library/library/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type Repository interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUser(ctx context.Context, id int) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UserStats(ctx context.Context) (model.UserStats, error)
	CountUsers(ctx context.Context) (int, error)

	ListBooks(ctx context.Context) ([]model.Book, error)
	GetBook(ctx context.Context, id int) (model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	CountBooks(ctx context.Context) (int, error)
	SumAvailableCopies(ctx context.Context) (int, error)

	ListUserBorrows(ctx context.Context, userID int) ([]model.UserBorrow, error)
	ListAllBorrows(ctx context.Context) ([]model.AdminBorrow, error)
	CountActiveBorrows(ctx context.Context) (int, error)
	BorrowStats(ctx context.Context, asOf time.Time) (model.BorrowStats, error)
}

// Tx is the set of operations that run inside one database transaction.
// Lock* methods take row locks held until commit or rollback.
type Tx interface {
	LockBook(ctx context.Context, id int) (model.Book, error)
	UpdateBook(ctx context.Context, book model.Book) (model.Book, error)
	DeleteBook(ctx context.Context, id int) error
	AdjustAvailableCopies(ctx context.Context, bookID, delta int) (int, error)
	CountOpenBorrowsByBook(ctx context.Context, bookID int) (int, error)

	HasOpenBorrow(ctx context.Context, userID, bookID int) (bool, error)
	CreateBorrow(ctx context.Context, rec model.BorrowRecord) (model.BorrowRecord, error)
	LockOpenBorrow(ctx context.Context, id, userID int) (model.OpenBorrow, error)
	CloseBorrow(ctx context.Context, rec model.BorrowRecord) (model.BorrowRecord, error)

	LockUser(ctx context.Context, id int) (model.User, error)
	LockAdminIDs(ctx context.Context) ([]int, error)
	UpdateUserRole(ctx context.Context, id int, role model.Role) (model.User, error)
	DeleteUser(ctx context.Context, id int) error
	CountOpenBorrowsByUser(ctx context.Context, userID int) (int, error)
}

type repository struct {
	*store
	db *sqlx.DB
}

// store runs queries against either the pool or an open transaction.
type store struct {
	ext sqlx.ExtContext
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	log = log.Named("repo")
	return &repository{
		store: &store{ext: db, log: log},
		db:    db,
	}, nil
}

const (
	usersTableName         = `users`
	booksTableName         = `books`
	borrowRecordsTableName = `borrow_records`

	usersEmailConstraint = `users_email_key`
	booksISBNConstraint  = `books_isbn_key`
	openBorrowConstraint = `borrow_records_open_uniq`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// WithTx commits when fn returns nil and rolls back otherwise.
func (r *repository) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "db.BeginTxx")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&store{ext: tx, log: r.log}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.log.Error("tx.Rollback", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "tx.Commit")
	}
	return nil
}

func (r *repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (s *store) get(ctx context.Context, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "ToSql")
	}
	if err := sqlx.GetContext(ctx, s.ext, dest, query, args...); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Error("get", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		}
		return err
	}
	return nil
}

func (s *store) selectAll(ctx context.Context, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "ToSql")
	}
	s.log.Debug("select", zap.String("query", query), zap.Any("args", args))
	if err := sqlx.SelectContext(ctx, s.ext, dest, query, args...); err != nil {
		s.log.Error("select", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return err
	}
	return nil
}

func (s *store) count(ctx context.Context, b sq.SelectBuilder) (int, error) {
	var n int
	if err := s.get(ctx, &n, b); err != nil {
		return 0, err
	}
	return n, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return constraint == "" || strings.Contains(pgErr.ConstraintName, constraint)
	}
	return false
}

func notFound(err error, target error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return target
	}
	return err
}
