package service

import (
	"context"

	"github.com/Astemirdum/digital-library/library/internal/errs"
	"github.com/Astemirdum/digital-library/library/internal/model"
	"github.com/Astemirdum/digital-library/library/internal/repository"
	"github.com/Astemirdum/digital-library/pkg/kafka"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const averageBorrowDuration = "14 days"

// Borrow lends one copy of the book to the user. The availability check,
// the duplicate check, the record insert and the decrement share one
// transaction holding the book row lock.
func (s *Service) Borrow(ctx context.Context, userID, bookID int) (model.BorrowResult, error) {
	now := s.clock()
	var res model.BorrowResult
	err := s.repo.WithTx(ctx, func(tx repository.Tx) error {
		book, err := tx.LockBook(ctx, bookID)
		if err != nil {
			if errors.Is(err, errs.ErrBookNotFound) {
				return errs.ErrBookUnavailable
			}
			return err
		}
		if book.AvailableCopies <= 0 {
			return errs.ErrBookUnavailable
		}

		open, err := tx.HasOpenBorrow(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if open {
			return errs.ErrAlreadyBorrowed
		}

		rec, err := tx.CreateBorrow(ctx, model.BorrowRecord{
			UserID:     userID,
			BookID:     bookID,
			BorrowDate: now,
			DueDate:    now.Add(s.policy.LoanPeriod),
			Status:     model.StatusBorrowed,
		})
		if err != nil {
			return err
		}

		available, err := tx.AdjustAvailableCopies(ctx, bookID, -1)
		if err != nil {
			return err
		}

		res = model.BorrowResult{
			Record:          rec,
			BookTitle:       book.Title,
			BookAuthor:      book.Author,
			AvailableCopies: available,
		}
		return nil
	})
	if err != nil {
		return model.BorrowResult{}, err
	}

	s.log.Info("book borrowed",
		zap.Int("user_id", userID),
		zap.Int("book_id", bookID),
		zap.Int("record_id", res.Record.ID),
		zap.Time("due_date", res.Record.DueDate))
	s.publish(kafka.BorrowEvent{
		Type:       kafka.EventBorrowed,
		RecordID:   res.Record.ID,
		UserID:     userID,
		BookID:     bookID,
		OccurredAt: now,
	})
	s.invalidateStats(ctx)
	return res, nil
}

// Return closes an open record of the user, persists the fine and puts the
// copy back on the shelf in one transaction.
func (s *Service) Return(ctx context.Context, userID, borrowID int) (model.ReturnResult, error) {
	now := s.clock()
	var (
		res    model.ReturnResult
		bookID int
	)
	err := s.repo.WithTx(ctx, func(tx repository.Tx) error {
		open, err := tx.LockOpenBorrow(ctx, borrowID, userID)
		if err != nil {
			return err
		}

		fine, overdueDays := Fine(open.DueDate, now, s.policy.FinePerDay)
		rec := open.BorrowRecord
		rec.ReturnDate = &now
		rec.Status = model.StatusReturned
		rec.FineAmount = fine
		rec.FinePaid = fine == 0

		closed, err := tx.CloseBorrow(ctx, rec)
		if err != nil {
			return err
		}

		// book_id is zero when the book was deleted after the loan
		if open.BookID != 0 {
			if _, err := tx.AdjustAvailableCopies(ctx, open.BookID, 1); err != nil && !errors.Is(err, errs.ErrBookNotFound) {
				return err
			}
		}

		returnDate := now
		if closed.ReturnDate != nil {
			returnDate = *closed.ReturnDate
		}
		bookID = open.BookID
		res = model.ReturnResult{
			BookTitle:   open.BookTitle,
			ReturnDate:  returnDate,
			FineAmount:  closed.FineAmount,
			FinePaid:    closed.FinePaid,
			Status:      closed.Status,
			OverdueDays: overdueDays,
		}
		return nil
	})
	if err != nil {
		return model.ReturnResult{}, err
	}

	s.log.Info("book returned",
		zap.Int("user_id", userID),
		zap.Int("record_id", borrowID),
		zap.Float64("fine_amount", res.FineAmount),
		zap.Int("overdue_days", res.OverdueDays))
	s.publish(kafka.BorrowEvent{
		Type:       kafka.EventReturned,
		RecordID:   borrowID,
		UserID:     userID,
		BookID:     bookID,
		FineAmount: res.FineAmount,
		OccurredAt: now,
	})
	s.invalidateStats(ctx)
	return res, nil
}

func (s *Service) MyBorrows(ctx context.Context, userID int) ([]model.UserBorrow, error) {
	items, err := s.repo.ListUserBorrows(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	for i := range items {
		it := &items[i]
		it.CurrentStatus = CurrentStatus(it.ReturnDate, it.DueDate, now, model.CurrentBorrowed)
		if it.CurrentStatus == model.CurrentOverdue {
			it.CalculatedFine, _ = Fine(it.DueDate, now, s.policy.FinePerDay)
		}
	}
	return items, nil
}

func (s *Service) AllBorrows(ctx context.Context) ([]model.AdminBorrow, error) {
	items, err := s.repo.ListAllBorrows(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	for i := range items {
		it := &items[i]
		it.CurrentStatus = CurrentStatus(it.ReturnDate, it.DueDate, now, model.CurrentActive)
	}
	return items, nil
}

func (s *Service) BorrowStats(ctx context.Context) (model.BorrowStats, error) {
	stats, err := s.repo.BorrowStats(ctx, s.clock())
	if err != nil {
		return model.BorrowStats{}, err
	}
	stats.AverageBorrowDuration = averageBorrowDuration
	return stats, nil
}
