package marketing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mysterie/creditgate/internal/module/ledger"
)

const completionMaxTokens = 1000

// ErrStoreFailure marks account-store failures that are not a business
// outcome, so the boundary can report them apart from vendor trouble.
var ErrStoreFailure = errors.New("account store failure")

// Completer submits a plain-text prompt for completion.
type Completer interface {
	ChatCompletion(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Service produces marketing-plan completions for credit-holding users.
type Service struct {
	completer Completer
	ledger    *ledger.Service
	logger    *zap.Logger
}

// NewService creates a new marketing service.
func NewService(completer Completer, ledgerService *ledger.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		completer: completer,
		ledger:    ledgerService,
		logger:    logger,
	}
}

// Plan runs the user's brief through the chat model. The credit is
// charged only after the vendor call succeeds.
func (s *Service) Plan(ctx context.Context, email, brief string) (string, error) {
	if _, err := s.ledger.CheckBalance(ctx, email, ledger.FeatureMarketing); err != nil {
		if errors.Is(err, ledger.ErrUserNotFound) || errors.Is(err, ledger.ErrInsufficientCredit) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	plan, err := s.completer.ChatCompletion(ctx, brief, completionMaxTokens)
	if err != nil {
		return "", err
	}

	s.ledger.Charge(ctx, email, ledger.FeatureMarketing)
	return plan, nil
}
