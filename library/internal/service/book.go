package service

import (
	"context"
	"strings"

	"github.com/Astemirdum/digital-library/library/internal/errs"
	"github.com/Astemirdum/digital-library/library/internal/model"
	"github.com/Astemirdum/digital-library/library/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultCategory = "General"

func (s *Service) ListBooks(ctx context.Context) ([]model.Book, error) {
	return s.repo.ListBooks(ctx)
}

func (s *Service) GetBook(ctx context.Context, id int) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	title, author := strings.TrimSpace(req.Title), strings.TrimSpace(req.Author)
	if title == "" || author == "" {
		return model.Book{}, errs.ErrTitleAuthorRequired
	}
	book := model.Book{
		Title:       title,
		Author:      author,
		ISBN:        optionalISBN(req.ISBN),
		Description: req.Description,
		Category:    req.Category,
		Copies:      req.Copies,
	}
	if book.Category == "" {
		book.Category = defaultCategory
	}
	if book.Copies <= 0 {
		book.Copies = 1
	}
	book.AvailableCopies = book.Copies
	if req.AvailableCopies != nil {
		book.AvailableCopies = *req.AvailableCopies
	}
	if book.AvailableCopies < 0 || book.AvailableCopies > book.Copies {
		return model.Book{}, errs.ErrInvalidCopies
	}

	created, err := s.repo.CreateBook(ctx, book)
	if err != nil {
		return model.Book{}, err
	}
	s.log.Info("book created", zap.Int("book_id", created.ID), zap.String("title", created.Title))
	s.invalidateStats(ctx)
	return created, nil
}

// UpdateBook applies the non-nil fields of req over the stored row.
func (s *Service) UpdateBook(ctx context.Context, id int, req model.UpdateBookRequest) (model.Book, error) {
	var updated model.Book
	err := s.repo.WithTx(ctx, func(tx repository.Tx) error {
		book, err := tx.LockBook(ctx, id)
		if err != nil {
			return err
		}
		if req.Title != nil {
			book.Title = strings.TrimSpace(*req.Title)
		}
		if req.Author != nil {
			book.Author = strings.TrimSpace(*req.Author)
		}
		if book.Title == "" || book.Author == "" {
			return errs.ErrTitleAuthorRequired
		}
		if req.ISBN != nil {
			book.ISBN = optionalISBN(*req.ISBN)
		}
		if req.Description != nil {
			book.Description = *req.Description
		}
		if req.Category != nil {
			book.Category = *req.Category
		}
		if req.Copies != nil {
			book.Copies = *req.Copies
		}
		if req.AvailableCopies != nil {
			book.AvailableCopies = *req.AvailableCopies
		}
		if book.AvailableCopies < 0 || book.AvailableCopies > book.Copies {
			return errs.ErrInvalidCopies
		}

		updated, err = tx.UpdateBook(ctx, book)
		return err
	})
	if err != nil {
		return model.Book{}, err
	}
	s.log.Info("book updated", zap.Int("book_id", id))
	s.invalidateStats(ctx)
	return updated, nil
}

// DeleteBook refuses while any open borrow record references the book.
func (s *Service) DeleteBook(ctx context.Context, id int) (model.Book, error) {
	var book model.Book
	err := s.repo.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		if book, err = tx.LockBook(ctx, id); err != nil {
			return err
		}
		n, err := tx.CountOpenBorrowsByBook(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &errs.ReferencedError{Err: errs.ErrBookBorrowed, BorrowedCount: n}
		}
		return tx.DeleteBook(ctx, id)
	})
	if err != nil {
		return model.Book{}, err
	}
	s.log.Info("book deleted", zap.Int("book_id", id), zap.String("title", book.Title))
	s.invalidateStats(ctx)
	return book, nil
}

func (s *Service) BookStats(ctx context.Context) (model.BookStats, error) {
	if stats, ok, err := s.cache.GetBookStats(ctx); err != nil {
		s.log.Warn("stats cache get", zap.Error(err))
	} else if ok {
		return stats, nil
	}

	var stats model.BookStats
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalBooks, err = s.repo.CountBooks(gCtx)
		return err
	})
	g.Go(func() (err error) {
		stats.AvailableBooks, err = s.repo.SumAvailableCopies(gCtx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.repo.CountUsers(gCtx)
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveBorrows, err = s.repo.CountActiveBorrows(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.BookStats{}, err
	}

	if err := s.cache.SetBookStats(ctx, stats); err != nil {
		s.log.Warn("stats cache set", zap.Error(err))
	}
	return stats, nil
}

func optionalISBN(isbn string) *string {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return nil
	}
	return &isbn
}
