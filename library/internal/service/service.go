package service

import (
	"context"
	"time"

	"github.com/Astemirdum/digital-library/library/internal/model"
	"github.com/Astemirdum/digital-library/library/internal/repository"
	"github.com/Astemirdum/digital-library/pkg/auth"
	"github.com/Astemirdum/digital-library/pkg/kafka"
	"go.uber.org/zap"
)

type TokenIssuer interface {
	Issue(p auth.Profile) (string, time.Time, error)
}

type StatsCache interface {
	GetBookStats(ctx context.Context) (model.BookStats, bool, error)
	SetBookStats(ctx context.Context, stats model.BookStats) error
	Invalidate(ctx context.Context) error
}

// Policy holds the lending rules.
type Policy struct {
	LoanPeriod time.Duration
	FinePerDay float64
}

var DefaultPolicy = Policy{
	LoanPeriod: 14 * 24 * time.Hour,
	FinePerDay: 1.00,
}

type Service struct {
	log       *zap.Logger
	repo      repository.Repository
	issuer    TokenIssuer
	publisher kafka.Publisher
	cache     StatsCache
	policy    Policy
	now       func() time.Time
}

type Option func(*Service)

func WithPolicy(p Policy) Option {
	return func(s *Service) { s.policy = p }
}

func WithPublisher(p kafka.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithStatsCache(c StatsCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo repository.Repository, issuer TokenIssuer, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:       log.Named("service"),
		repo:      repo,
		issuer:    issuer,
		publisher: kafka.NewNoopPublisher(),
		cache:     noopCache{},
		policy:    DefaultPolicy,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Policy() Policy { return s.policy }

func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// clock truncates to the database timestamp precision.
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Service) publish(event kafka.BorrowEvent) {
	if err := s.publisher.Publish(event); err != nil {
		s.log.Warn("publish borrow event",
			zap.String("type", string(event.Type)),
			zap.Int("record_id", event.RecordID),
			zap.Error(err))
	}
}

func (s *Service) invalidateStats(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("stats cache invalidate", zap.Error(err))
	}
}

type noopCache struct{}

func (noopCache) GetBookStats(context.Context) (model.BookStats, bool, error) {
	return model.BookStats{}, false, nil
}
func (noopCache) SetBookStats(context.Context, model.BookStats) error { return nil }
func (noopCache) Invalidate(context.Context) error                    { return nil }
