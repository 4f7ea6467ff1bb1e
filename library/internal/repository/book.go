package repository

import (
	"context"

	"github.com/Astemirdum/digital-library/library/internal/errs"
	"github.com/Astemirdum/digital-library/library/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

var bookColumns = []string{"id", "title", "author", "isbn", "description", "category", "copies", "available_copies", "created_at"}

const bookReturning = "returning id, title, author, isbn, description, category, copies, available_copies, created_at"

func (s *store) ListBooks(ctx context.Context) ([]model.Book, error) {
	books := make([]model.Book, 0)
	if err := s.selectAll(ctx, &books, qb.Select(bookColumns...).
		From(booksTableName).
		OrderBy("title", "id")); err != nil {
		return nil, errors.Wrap(err, "ListBooks")
	}
	return books, nil
}

func (s *store) GetBook(ctx context.Context, id int) (model.Book, error) {
	var book model.Book
	if err := s.get(ctx, &book, qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id})); err != nil {
		return model.Book{}, notFound(err, errs.ErrBookNotFound)
	}
	return book, nil
}

func (s *store) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	b := qb.Insert(booksTableName).
		Columns("title", "author", "isbn", "description", "category", "copies", "available_copies").
		Values(book.Title, book.Author, book.ISBN, book.Description, book.Category, book.Copies, book.AvailableCopies).
		Suffix(bookReturning)

	var created model.Book
	if err := s.get(ctx, &created, b); err != nil {
		if isUniqueViolation(err, booksISBNConstraint) {
			return model.Book{}, errs.ErrDuplicateISBN
		}
		return model.Book{}, errors.Wrap(err, "CreateBook")
	}
	return created, nil
}

func (s *store) CountBooks(ctx context.Context) (int, error) {
	return s.count(ctx, qb.Select("count(*)").From(booksTableName))
}

func (s *store) SumAvailableCopies(ctx context.Context) (int, error) {
	return s.count(ctx, qb.Select("coalesce(sum(available_copies), 0)").From(booksTableName))
}

func (s *store) LockBook(ctx context.Context, id int) (model.Book, error) {
	var book model.Book
	if err := s.get(ctx, &book, qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Suffix("for update")); err != nil {
		return model.Book{}, notFound(err, errs.ErrBookNotFound)
	}
	return book, nil
}

func (s *store) UpdateBook(ctx context.Context, book model.Book) (model.Book, error) {
	b := qb.Update(booksTableName).
		SetMap(map[string]interface{}{
			"title":            book.Title,
			"author":           book.Author,
			"isbn":             book.ISBN,
			"description":      book.Description,
			"category":         book.Category,
			"copies":           book.Copies,
			"available_copies": book.AvailableCopies,
		}).
		Where(sq.Eq{"id": book.ID}).
		Suffix(bookReturning)

	var updated model.Book
	if err := s.get(ctx, &updated, b); err != nil {
		if isUniqueViolation(err, booksISBNConstraint) {
			return model.Book{}, errs.ErrDuplicateISBN
		}
		return model.Book{}, notFound(err, errs.ErrBookNotFound)
	}
	return updated, nil
}

func (s *store) DeleteBook(ctx context.Context, id int) error {
	query, args, err := qb.Delete(booksTableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := s.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "DeleteBook")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.ErrBookNotFound
	}
	return nil
}

// AdjustAvailableCopies moves available_copies by delta and returns the
// new value. A decrement never goes below zero and an increment never
// exceeds copies.
func (s *store) AdjustAvailableCopies(ctx context.Context, bookID, delta int) (int, error) {
	q := `
update books
    set available_copies = least(available_copies + $2, copies)
where id = $1 and available_copies + $2 >= 0
returning available_copies`

	var available int
	if err := s.ext.QueryRowxContext(ctx, q, bookID, delta).Scan(&available); err != nil {
		if delta < 0 {
			return 0, notFound(err, errs.ErrBookUnavailable)
		}
		return 0, notFound(err, errs.ErrBookNotFound)
	}
	return available, nil
}

func (s *store) CountOpenBorrowsByBook(ctx context.Context, bookID int) (int, error) {
	return s.count(ctx, qb.Select("count(*)").
		From(borrowRecordsTableName).
		Where(sq.Eq{"book_id": bookID, "return_date": nil}))
}
