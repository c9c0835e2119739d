package ledger

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mysterie/creditgate/internal/shared/metrics"
)

// Service provides credit ledger operations.
type Service struct {
	repo    Repository
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewService creates a new ledger service.
func NewService(repo Repository, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		logger:  logger,
		metrics: m,
	}
}

// GetUser retrieves an account record by email.
func (s *Service) GetUser(ctx context.Context, email string) (*User, error) {
	return s.repo.GetUser(ctx, email)
}

// CheckBalance returns the remaining credits for a feature. It never
// mutates state. A missing account yields ErrUserNotFound; a missing
// feature balance reads as zero.
func (s *Service) CheckBalance(ctx context.Context, email string, feature Feature) (int64, error) {
	user, err := s.repo.GetUser(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.countCheck(feature, "user_not_found")
		} else {
			s.countCheck(feature, "error")
		}
		return 0, err
	}

	balance := user.Balance(feature)
	if balance <= 0 {
		s.countCheck(feature, "no_credit")
		return 0, ErrInsufficientCredit
	}

	s.countCheck(feature, "ok")
	return balance, nil
}

// Decrement atomically subtracts one credit from the feature balance and
// returns the new balance.
func (s *Service) Decrement(ctx context.Context, email string, feature Feature) (int64, error) {
	newBalance, err := s.repo.DecrementCredit(ctx, email, feature, 1)
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientCredit):
			s.countDecrement(feature, "no_credit")
		case errors.Is(err, ErrUserNotFound):
			s.countDecrement(feature, "user_not_found")
		default:
			s.countDecrement(feature, "error")
		}
		return 0, err
	}

	s.countDecrement(feature, "ok")
	return newBalance, nil
}

// Charge bills one credit after a successful vendor call. Billing is
// best-effort: failures are logged and counted but never surfaced, so a
// delivered result is not turned into a user-visible error.
func (s *Service) Charge(ctx context.Context, email string, feature Feature) {
	newBalance, err := s.Decrement(ctx, email, feature)
	if err != nil {
		s.logger.Warn("credit charge failed",
			zap.String("email", email),
			zap.String("feature", string(feature)),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("credit charged",
		zap.String("email", email),
		zap.String("feature", string(feature)),
		zap.Int64("balance", newBalance),
	)
}

func (s *Service) countCheck(feature Feature, outcome string) {
	if s.metrics != nil {
		s.metrics.CreditChecksTotal.WithLabelValues(string(feature), outcome).Inc()
	}
}

func (s *Service) countDecrement(feature Feature, outcome string) {
	if s.metrics != nil {
		s.metrics.CreditDecrementsTotal.WithLabelValues(string(feature), outcome).Inc()
	}
}
