package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mysterie/creditgate/internal/module/ledger"
	"github.com/mysterie/creditgate/internal/module/vendorapi"
)

// ErrInvalidAction is returned when the request names an unsupported
// action.
var ErrInvalidAction = errors.New("invalid action")

const actionNearbySearch = "nearbySearch"

// Searcher runs a nearby search against the places vendor.
type Searcher interface {
	NearbySearch(ctx context.Context, params vendorapi.NearbySearchParams) (json.RawMessage, error)
}

// Request is the action envelope accepted by the places endpoint.
type Request struct {
	Action string        `json:"action"`
	Params RequestParams `json:"params"`
}

// RequestParams describes the search area.
type RequestParams struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	Type   string  `json:"type"`
	Radius float64 `json:"radius"`
}

// Service runs credit-gated nearby searches.
type Service struct {
	searcher Searcher
	ledger   *ledger.Service
	logger   *zap.Logger
}

// NewService creates a new places service.
func NewService(searcher Searcher, ledgerService *ledger.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		searcher: searcher,
		ledger:   ledgerService,
		logger:   logger,
	}
}

// Search dispatches the requested action for a credit-holding user. The
// credit check runs before the request body is even parsed; the vendor
// response is passed through verbatim and the credit is charged only
// after the vendor call succeeds.
func (s *Service) Search(ctx context.Context, email string, body []byte) (json.RawMessage, error) {
	if _, err := s.ledger.CheckBalance(ctx, email, ledger.FeatureDoctor); err != nil {
		return nil, err
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}

	if req.Action != actionNearbySearch {
		return nil, ErrInvalidAction
	}

	result, err := s.searcher.NearbySearch(ctx, vendorapi.NearbySearchParams{
		Lat:    req.Params.Location.Lat,
		Lng:    req.Params.Location.Lng,
		Type:   req.Params.Type,
		Radius: req.Params.Radius,
	})
	if err != nil {
		return nil, err
	}

	s.ledger.Charge(ctx, email, ledger.FeatureDoctor)
	return result, nil
}
