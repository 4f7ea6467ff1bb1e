package service_test

import (
	"context"
	"testing"

	"github.com/Astemirdum/digital-library/library/internal/errs"
	"github.com/Astemirdum/digital-library/library/internal/model"
	"github.com/Astemirdum/digital-library/library/internal/service"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestService_CreateBook(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     model.CreateBookRequest
		want    model.Book
		wantErr error
	}{
		{
			name: "defaults",
			req:  model.CreateBookRequest{Title: " Dune ", Author: "Frank Herbert"},
			want: model.Book{
				Title:           "Dune",
				Author:          "Frank Herbert",
				Category:        "General",
				Copies:          1,
				AvailableCopies: 1,
			},
		},
		{
			name: "explicit values",
			req: model.CreateBookRequest{
				Title:           "Dune",
				Author:          "Frank Herbert",
				ISBN:            "978-0441013593",
				Category:        "Science Fiction",
				Copies:          4,
				AvailableCopies: ptr(2),
			},
			want: model.Book{
				Title:           "Dune",
				Author:          "Frank Herbert",
				ISBN:            ptr("978-0441013593"),
				Category:        "Science Fiction",
				Copies:          4,
				AvailableCopies: 2,
			},
		},
		{
			name:    "err. title required",
			req:     model.CreateBookRequest{Author: "Frank Herbert"},
			wantErr: errs.ErrTitleAuthorRequired,
		},
		{
			name:    "err. more available than copies",
			req:     model.CreateBookRequest{Title: "Dune", Author: "Frank Herbert", Copies: 1, AvailableCopies: ptr(3)},
			wantErr: errs.ErrInvalidCopies,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, testNow)
			if tt.wantErr == nil {
				f.repo.EXPECT().CreateBook(ctx, tt.want).DoAndReturn(func(_ context.Context, b model.Book) (model.Book, error) {
					b.ID = 1
					return b, nil
				})
			}

			got, err := f.svc.CreateBook(ctx, tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.want.ID = 1
			require.Equal(t, tt.want, got)
		})
	}
}

func TestService_UpdateBook(t *testing.T) {
	t.Parallel()
	stored := model.Book{ID: 3, Title: "Dune", Author: "Frank Herbert", Category: "General", Copies: 3, AvailableCopies: 1}

	tests := []struct {
		name    string
		req     model.UpdateBookRequest
		want    model.Book
		wantErr error
	}{
		{
			name: "partial update keeps other fields",
			req:  model.UpdateBookRequest{Category: ptr("Science Fiction"), Copies: ptr(5)},
			want: model.Book{ID: 3, Title: "Dune", Author: "Frank Herbert", Category: "Science Fiction", Copies: 5, AvailableCopies: 1},
		},
		{
			name:    "err. copies below available",
			req:     model.UpdateBookRequest{Copies: ptr(0)},
			wantErr: errs.ErrInvalidCopies,
		},
		{
			name:    "err. blank title",
			req:     model.UpdateBookRequest{Title: ptr("  ")},
			wantErr: errs.ErrTitleAuthorRequired,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, testNow)
			f.expectTx()
			f.tx.EXPECT().LockBook(ctx, 3).Return(stored, nil)
			if tt.wantErr == nil {
				f.tx.EXPECT().UpdateBook(ctx, tt.want).Return(tt.want, nil)
			}

			got, err := f.svc.UpdateBook(ctx, 3, tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestService_DeleteBook(t *testing.T) {
	t.Parallel()

	t.Run("err. open borrows", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, testNow)
		f.expectTx()
		f.tx.EXPECT().LockBook(ctx, 3).Return(model.Book{ID: 3}, nil)
		f.tx.EXPECT().CountOpenBorrowsByBook(ctx, 3).Return(1, nil)

		_, err := f.svc.DeleteBook(ctx, 3)
		require.ErrorIs(t, err, errs.ErrBookBorrowed)
		var refErr *errs.ReferencedError
		require.ErrorAs(t, err, &refErr)
		require.Equal(t, 1, refErr.BorrowedCount)
	})

	t.Run("ok. only closed records", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, testNow)
		f.expectTx()
		f.tx.EXPECT().LockBook(ctx, 3).Return(model.Book{ID: 3, Title: "Dune"}, nil)
		f.tx.EXPECT().CountOpenBorrowsByBook(ctx, 3).Return(0, nil)
		f.tx.EXPECT().DeleteBook(ctx, 3).Return(nil)

		book, err := f.svc.DeleteBook(ctx, 3)
		require.NoError(t, err)
		require.Equal(t, "Dune", book.Title)
	})

	t.Run("err. not found", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, testNow)
		f.expectTx()
		f.tx.EXPECT().LockBook(ctx, 3).Return(model.Book{}, errs.ErrBookNotFound)

		_, err := f.svc.DeleteBook(ctx, 3)
		require.ErrorIs(t, err, errs.ErrBookNotFound)
	})
}

type memCache struct {
	stats *model.BookStats
	sets  int
}

func (c *memCache) GetBookStats(context.Context) (model.BookStats, bool, error) {
	if c.stats == nil {
		return model.BookStats{}, false, nil
	}
	return *c.stats, true, nil
}

func (c *memCache) SetBookStats(_ context.Context, s model.BookStats) error {
	c.stats = &s
	c.sets++
	return nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.stats = nil
	return nil
}

func TestService_BookStats(t *testing.T) {
	t.Parallel()
	cache := &memCache{}
	f := newFixture(t, testNow, service.WithStatsCache(cache))

	f.repo.EXPECT().CountBooks(gomock.Any()).Return(5, nil).Times(1)
	f.repo.EXPECT().SumAvailableCopies(gomock.Any()).Return(12, nil).Times(1)
	f.repo.EXPECT().CountUsers(gomock.Any()).Return(3, nil).Times(1)
	f.repo.EXPECT().CountActiveBorrows(gomock.Any()).Return(2, nil).Times(1)

	want := model.BookStats{TotalBooks: 5, AvailableBooks: 12, TotalUsers: 3, ActiveBorrows: 2}
	got, err := f.svc.BookStats(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)

	// second call is served from the cache
	got, err = f.svc.BookStats(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, 1, cache.sets)
}
