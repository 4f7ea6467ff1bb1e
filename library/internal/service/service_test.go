package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Astemirdum/digital-library/library/internal/model"
	"github.com/Astemirdum/digital-library/library/internal/repository"
	"github.com/Astemirdum/digital-library/library/internal/service"
	"github.com/Astemirdum/digital-library/pkg/auth"
	"github.com/Astemirdum/digital-library/pkg/kafka"
	"github.com/golang/mock/gomock"
	"go.uber.org/zap"

	repo_mocks "github.com/Astemirdum/digital-library/library/internal/repository/mocks"
)

var testNow = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

type fakeIssuer struct{}

func (fakeIssuer) Issue(p auth.Profile) (string, time.Time, error) {
	return "token-" + p.Email, testNow.Add(7 * 24 * time.Hour), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.BorrowEvent
}

func (p *recordingPublisher) Publish(e kafka.BorrowEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	svc  *service.Service
	repo *repo_mocks.MockRepository
	tx   *repo_mocks.MockTx
	pub  *recordingPublisher
}

func newFixture(t *testing.T, at time.Time, opts ...service.Option) fixture {
	t.Helper()
	c := gomock.NewController(t)
	repo := repo_mocks.NewMockRepository(c)
	tx := repo_mocks.NewMockTx(c)
	pub := &recordingPublisher{}

	opts = append([]service.Option{
		service.WithClock(func() time.Time { return at }),
		service.WithPublisher(pub),
	}, opts...)
	svc := service.NewService(repo, fakeIssuer{}, zap.NewExample().Named("test"), opts...)
	return fixture{svc: svc, repo: repo, tx: tx, pub: pub}
}

// expectTx runs the transaction body against the tx mock.
func (f fixture) expectTx() {
	f.repo.EXPECT().
		WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(repository.Tx) error) error {
			return fn(f.tx)
		})
}

func ptr[T any](v T) *T { return &v }

var ctx = context.Background()

func openRecord(id, userID, bookID int, borrowed time.Time) model.BorrowRecord {
	return model.BorrowRecord{
		ID:         id,
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: borrowed,
		DueDate:    borrowed.Add(service.DefaultPolicy.LoanPeriod),
		Status:     model.StatusBorrowed,
	}
}
