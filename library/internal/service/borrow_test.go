package service_test

import (
	"testing"
	"time"

	"github.com/Astemirdum/digital-library/library/internal/errs"
	"github.com/Astemirdum/digital-library/library/internal/model"
	"github.com/Astemirdum/digital-library/pkg/kafka"
	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestService_Borrow(t *testing.T) {
	t.Parallel()
	type mockBehavior func(f fixture)

	tests := []struct {
		name         string
		mockBehavior mockBehavior
		want         model.BorrowResult
		wantErr      error
		wantEvents   int
	}{
		{
			name: "ok",
			mockBehavior: func(f fixture) {
				f.expectTx()
				f.tx.EXPECT().LockBook(ctx, 3).
					Return(model.Book{ID: 3, Title: "Dune", Author: "Frank Herbert", Copies: 2, AvailableCopies: 2}, nil)
				f.tx.EXPECT().HasOpenBorrow(ctx, 7, 3).Return(false, nil)
				f.tx.EXPECT().CreateBorrow(ctx, model.BorrowRecord{
					UserID:     7,
					BookID:     3,
					BorrowDate: testNow,
					DueDate:    testNow.Add(14 * 24 * time.Hour),
					Status:     model.StatusBorrowed,
				}).DoAndReturn(func(_ interface{}, rec model.BorrowRecord) (model.BorrowRecord, error) {
					rec.ID = 11
					return rec, nil
				})
				f.tx.EXPECT().AdjustAvailableCopies(ctx, 3, -1).Return(1, nil)
			},
			want: model.BorrowResult{
				Record:          openRecord(11, 7, 3, testNow),
				BookTitle:       "Dune",
				BookAuthor:      "Frank Herbert",
				AvailableCopies: 1,
			},
			wantEvents: 1,
		},
		{
			name: "err. no copies",
			mockBehavior: func(f fixture) {
				f.expectTx()
				f.tx.EXPECT().LockBook(ctx, 3).
					Return(model.Book{ID: 3, Copies: 1, AvailableCopies: 0}, nil)
			},
			wantErr: errs.ErrBookUnavailable,
		},
		{
			name: "err. missing book reads as unavailable",
			mockBehavior: func(f fixture) {
				f.expectTx()
				f.tx.EXPECT().LockBook(ctx, 3).Return(model.Book{}, errs.ErrBookNotFound)
			},
			wantErr: errs.ErrBookUnavailable,
		},
		{
			name: "err. already borrowed",
			mockBehavior: func(f fixture) {
				f.expectTx()
				f.tx.EXPECT().LockBook(ctx, 3).
					Return(model.Book{ID: 3, Copies: 2, AvailableCopies: 1}, nil)
				f.tx.EXPECT().HasOpenBorrow(ctx, 7, 3).Return(true, nil)
			},
			wantErr: errs.ErrAlreadyBorrowed,
		},
		{
			name: "err. concurrent duplicate caught by index",
			mockBehavior: func(f fixture) {
				f.expectTx()
				f.tx.EXPECT().LockBook(ctx, 3).
					Return(model.Book{ID: 3, Copies: 2, AvailableCopies: 2}, nil)
				f.tx.EXPECT().HasOpenBorrow(ctx, 7, 3).Return(false, nil)
				f.tx.EXPECT().CreateBorrow(ctx, gomock.Any()).Return(model.BorrowRecord{}, errs.ErrAlreadyBorrowed)
			},
			wantErr: errs.ErrAlreadyBorrowed,
		},
		{
			name: "err. decrement fails",
			mockBehavior: func(f fixture) {
				f.expectTx()
				f.tx.EXPECT().LockBook(ctx, 3).
					Return(model.Book{ID: 3, Copies: 2, AvailableCopies: 2}, nil)
				f.tx.EXPECT().HasOpenBorrow(ctx, 7, 3).Return(false, nil)
				f.tx.EXPECT().CreateBorrow(ctx, gomock.Any()).Return(openRecord(11, 7, 3, testNow), nil)
				f.tx.EXPECT().AdjustAvailableCopies(ctx, 3, -1).Return(0, errors.New("db internal"))
			},
			wantErr: errors.New("db internal"),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, testNow)
			tt.mockBehavior(f)

			got, err := f.svc.Borrow(ctx, 7, 3)
			if tt.wantErr != nil {
				require.Error(t, err)
				require.EqualError(t, err, tt.wantErr.Error())
				require.Empty(t, f.pub.events)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Len(t, f.pub.events, tt.wantEvents)
			require.Equal(t, kafka.EventBorrowed, f.pub.events[0].Type)
		})
	}
}

func TestService_Return(t *testing.T) {
	t.Parallel()
	borrowed := testNow

	tests := []struct {
		name        string
		at          time.Time
		bookID      int
		lockErr     error
		wantFine    float64
		wantPaid    bool
		wantOverdue int
		wantErr     error
	}{
		{
			name:     "same day, no fine",
			at:       borrowed.Add(3 * time.Hour),
			bookID:   3,
			wantFine: 0,
			wantPaid: true,
		},
		{
			name:        "returned on day 20",
			at:          borrowed.Add(20 * 24 * time.Hour),
			bookID:      3,
			wantFine:    6,
			wantPaid:    false,
			wantOverdue: 6,
		},
		{
			name:        "partial day counts as a full day",
			at:          borrowed.Add(14*24*time.Hour + time.Minute),
			bookID:      3,
			wantFine:    1,
			wantOverdue: 1,
		},
		{
			name:     "book deleted since the borrow",
			at:       borrowed.Add(time.Hour),
			bookID:   0,
			wantPaid: true,
		},
		{
			name:    "err. not found or not yours",
			at:      borrowed,
			lockErr: errs.ErrBorrowRecordNotFound,
			wantErr: errs.ErrBorrowRecordNotFound,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, tt.at)
			f.expectTx()

			rec := openRecord(11, 7, tt.bookID, borrowed)
			if tt.lockErr != nil {
				f.tx.EXPECT().LockOpenBorrow(ctx, 11, 7).Return(model.OpenBorrow{}, tt.lockErr)
			} else {
				f.tx.EXPECT().LockOpenBorrow(ctx, 11, 7).
					Return(model.OpenBorrow{BorrowRecord: rec, BookTitle: "Dune"}, nil)
				f.tx.EXPECT().CloseBorrow(ctx, gomock.Any()).
					DoAndReturn(func(_ interface{}, closed model.BorrowRecord) (model.BorrowRecord, error) {
						require.NotNil(t, closed.ReturnDate)
						require.Equal(t, tt.at, *closed.ReturnDate)
						require.Equal(t, model.StatusReturned, closed.Status)
						require.Equal(t, tt.wantFine, closed.FineAmount)
						require.Equal(t, tt.wantPaid, closed.FinePaid)
						return closed, nil
					})
				if tt.bookID != 0 {
					f.tx.EXPECT().AdjustAvailableCopies(ctx, tt.bookID, 1).Return(2, nil)
				}
			}

			got, err := f.svc.Return(ctx, 7, 11)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Empty(t, f.pub.events)
				return
			}
			require.NoError(t, err)
			require.Equal(t, model.ReturnResult{
				BookTitle:   "Dune",
				ReturnDate:  tt.at,
				FineAmount:  tt.wantFine,
				FinePaid:    tt.wantPaid,
				Status:      model.StatusReturned,
				OverdueDays: tt.wantOverdue,
			}, got)
			require.Len(t, f.pub.events, 1)
			require.Equal(t, kafka.EventReturned, f.pub.events[0].Type)
			require.Equal(t, tt.wantFine, f.pub.events[0].FineAmount)
		})
	}
}

func TestService_MyBorrows(t *testing.T) {
	t.Parallel()
	at := testNow.Add(20 * 24 * time.Hour)
	f := newFixture(t, at)

	returnedAt := testNow.Add(24 * time.Hour)
	f.repo.EXPECT().ListUserBorrows(ctx, 7).Return([]model.UserBorrow{
		{BorrowID: 3, DueDate: at.Add(24 * time.Hour), Status: model.StatusBorrowed},
		{BorrowID: 2, DueDate: testNow.Add(14 * 24 * time.Hour), Status: model.StatusBorrowed},
		{BorrowID: 1, DueDate: testNow, ReturnDate: &returnedAt, Status: model.StatusReturned, FineAmount: 1},
	}, nil)

	got, err := f.svc.MyBorrows(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.Equal(t, model.CurrentBorrowed, got[0].CurrentStatus)
	require.Equal(t, 0.0, got[0].CalculatedFine)
	require.Equal(t, model.CurrentOverdue, got[1].CurrentStatus)
	require.Equal(t, 6.0, got[1].CalculatedFine)
	require.Equal(t, model.CurrentReturned, got[2].CurrentStatus)
	require.Equal(t, 0.0, got[2].CalculatedFine)
}

func TestService_AllBorrows(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testNow)

	f.repo.EXPECT().ListAllBorrows(ctx).Return([]model.AdminBorrow{
		{BorrowRecord: openRecord(2, 7, 3, testNow)},
		{BorrowRecord: openRecord(1, 8, 3, testNow.Add(-15*24*time.Hour))},
	}, nil)

	got, err := f.svc.AllBorrows(ctx)
	require.NoError(t, err)
	require.Equal(t, model.CurrentActive, got[0].CurrentStatus)
	require.Equal(t, model.CurrentOverdue, got[1].CurrentStatus)
}

func TestService_BorrowStats(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testNow)

	f.repo.EXPECT().BorrowStats(ctx, testNow).
		Return(model.BorrowStats{ActiveBorrows: 4, OverdueBorrows: 1, TotalFines: 6}, nil)

	got, err := f.svc.BorrowStats(ctx)
	require.NoError(t, err)
	require.Equal(t, model.BorrowStats{
		ActiveBorrows:         4,
		OverdueBorrows:        1,
		TotalFines:            6,
		AverageBorrowDuration: "14 days",
	}, got)
}
