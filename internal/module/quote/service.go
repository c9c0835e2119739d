package quote

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mysterie/creditgate/internal/module/ledger"
)

// Service serves credit-gated quote lookups and the ungated full
// listing.
type Service struct {
	repo   Repository
	ledger *ledger.Service
	logger *zap.Logger
}

// NewService creates a new quote service.
func NewService(repo Repository, ledgerService *ledger.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		ledger: ledgerService,
		logger: logger,
	}
}

// Lookup retrieves one quote for a credit-holding user. A missing quote
// leaves the balance untouched; the credit is charged only when a quote
// is actually delivered.
func (s *Service) Lookup(ctx context.Context, email, compNameOffering string) (*Quote, error) {
	if _, err := s.ledger.CheckBalance(ctx, email, ledger.FeatureQuote); err != nil {
		if errors.Is(err, ledger.ErrUserNotFound) || errors.Is(err, ledger.ErrInsufficientCredit) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	quote, err := s.repo.GetQuote(ctx, compNameOffering)
	if err != nil {
		return nil, err
	}

	s.ledger.Charge(ctx, email, ledger.FeatureQuote)
	return quote, nil
}

// List retrieves all quote records. No credit gate.
func (s *Service) List(ctx context.Context) ([]Quote, error) {
	return s.repo.ListQuotes(ctx)
}
