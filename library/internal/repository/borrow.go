package repository

import (
	"context"
	"time"

	"github.com/Astemirdum/digital-library/library/internal/errs"
	"github.com/Astemirdum/digital-library/library/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

var borrowColumns = []string{
	"br.id",
	"coalesce(br.user_id, 0) as user_id",
	"coalesce(br.book_id, 0) as book_id",
	"br.borrow_date",
	"br.due_date",
	"br.return_date",
	"br.status",
	"br.fine_amount::float8 as fine_amount",
	"br.fine_paid",
}

const borrowReturning = `returning id, coalesce(user_id, 0) as user_id, coalesce(book_id, 0) as book_id,
	borrow_date, due_date, return_date, status, fine_amount::float8 as fine_amount, fine_paid`

func (s *store) HasOpenBorrow(ctx context.Context, userID, bookID int) (bool, error) {
	q := `
select exists(
    select 1 from borrow_records
    where user_id = $1 and book_id = $2 and return_date is null
)`
	var exists bool
	if err := s.ext.QueryRowxContext(ctx, q, userID, bookID).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "HasOpenBorrow")
	}
	return exists, nil
}

func (s *store) CreateBorrow(ctx context.Context, rec model.BorrowRecord) (model.BorrowRecord, error) {
	b := qb.Insert(borrowRecordsTableName).
		Columns("user_id", "book_id", "borrow_date", "due_date", "status").
		Values(rec.UserID, rec.BookID, rec.BorrowDate, rec.DueDate, model.StatusBorrowed).
		Suffix(borrowReturning)

	var created model.BorrowRecord
	if err := s.get(ctx, &created, b); err != nil {
		if isUniqueViolation(err, openBorrowConstraint) {
			return model.BorrowRecord{}, errs.ErrAlreadyBorrowed
		}
		return model.BorrowRecord{}, errors.Wrap(err, "CreateBorrow")
	}
	return created, nil
}

// LockOpenBorrow finds an open record owned by userID. Missing, returned and
// foreign records are reported alike.
func (s *store) LockOpenBorrow(ctx context.Context, id, userID int) (model.OpenBorrow, error) {
	b := qb.Select(append(borrowColumns, "coalesce(b.title, '') as book_title")...).
		From(borrowRecordsTableName + " br").
		LeftJoin(booksTableName + " b on b.id = br.book_id").
		Where(sq.Eq{"br.id": id, "br.user_id": userID, "br.return_date": nil}).
		Suffix("for update of br")

	var rec model.OpenBorrow
	if err := s.get(ctx, &rec, b); err != nil {
		return model.OpenBorrow{}, notFound(err, errs.ErrBorrowRecordNotFound)
	}
	return rec, nil
}

func (s *store) CloseBorrow(ctx context.Context, rec model.BorrowRecord) (model.BorrowRecord, error) {
	b := qb.Update(borrowRecordsTableName).
		Set("return_date", rec.ReturnDate).
		Set("status", model.StatusReturned).
		Set("fine_amount", rec.FineAmount).
		Set("fine_paid", rec.FinePaid).
		Where(sq.Eq{"id": rec.ID, "return_date": nil}).
		Suffix(borrowReturning)

	var updated model.BorrowRecord
	if err := s.get(ctx, &updated, b); err != nil {
		return model.BorrowRecord{}, notFound(err, errs.ErrBorrowRecordNotFound)
	}
	return updated, nil
}

func (s *store) ListUserBorrows(ctx context.Context, userID int) ([]model.UserBorrow, error) {
	b := qb.Select(
		"br.id as borrow_id",
		"br.borrow_date",
		"br.due_date",
		"br.return_date",
		"br.status",
		"br.fine_amount::float8 as fine_amount",
		"br.fine_paid",
		"coalesce(br.book_id, 0) as book_id",
		"coalesce(b.title, '') as title",
		"coalesce(b.author, '') as author",
		"coalesce(b.category, '') as category",
		"b.isbn",
	).
		From(borrowRecordsTableName + " br").
		LeftJoin(booksTableName + " b on b.id = br.book_id").
		Where(sq.Eq{"br.user_id": userID}).
		OrderBy("br.borrow_date desc", "br.id desc")

	items := make([]model.UserBorrow, 0)
	if err := s.selectAll(ctx, &items, b); err != nil {
		return nil, errors.Wrap(err, "ListUserBorrows")
	}
	return items, nil
}

func (s *store) ListAllBorrows(ctx context.Context) ([]model.AdminBorrow, error) {
	b := qb.Select(append(borrowColumns,
		"coalesce(b.title, '') as book_title",
		"coalesce(b.author, '') as book_author",
		"coalesce(u.email, '') as user_email",
		"coalesce(u.name, '') as user_name",
	)...).
		From(borrowRecordsTableName + " br").
		LeftJoin(booksTableName + " b on b.id = br.book_id").
		LeftJoin(usersTableName + " u on u.id = br.user_id").
		OrderBy("br.borrow_date desc", "br.id desc")

	items := make([]model.AdminBorrow, 0)
	if err := s.selectAll(ctx, &items, b); err != nil {
		return nil, errors.Wrap(err, "ListAllBorrows")
	}
	return items, nil
}

func (s *store) CountActiveBorrows(ctx context.Context) (int, error) {
	return s.count(ctx, qb.Select("count(*)").
		From(borrowRecordsTableName).
		Where(sq.Eq{"return_date": nil}))
}

func (s *store) BorrowStats(ctx context.Context, asOf time.Time) (model.BorrowStats, error) {
	b := qb.Select().Column(sq.Expr("count(*) filter (where return_date is null) as active_borrows")).
		Column(sq.Expr("count(*) filter (where return_date is null and due_date < ?) as overdue_borrows", asOf)).
		Column(sq.Expr("coalesce(sum(fine_amount) filter (where fine_paid = false), 0)::float8 as total_fines")).
		From(borrowRecordsTableName)

	var stats model.BorrowStats
	if err := s.get(ctx, &stats, b); err != nil {
		return model.BorrowStats{}, errors.Wrap(err, "BorrowStats")
	}
	return stats, nil
}
