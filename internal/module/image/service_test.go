package image

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysterie/creditgate/internal/module/ledger"
)

// mockGenerator implements vendorapi.ImageGenerator.
type mockGenerator struct {
	mu    sync.Mutex
	calls int32
	urls  []string
	errs  []error
}

func (m *mockGenerator) GenerateImage(_ context.Context, _ string) (string, error) {
	idx := int(atomic.AddInt32(&m.calls, 1)) - 1
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx < len(m.errs) && m.errs[idx] != nil {
		return "", m.errs[idx]
	}
	if idx < len(m.urls) {
		return m.urls[idx], nil
	}
	return fmt.Sprintf("https://vendor.example/%d.png", idx), nil
}

func (m *mockGenerator) Name() string { return "mock" }

// mockPublisher implements Publisher.
type mockPublisher struct {
	mu   sync.Mutex
	err  error
	seen []string
}

func (m *mockPublisher) Publish(_ context.Context, sourceURL string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.seen = append(m.seen, sourceURL)
	return "https://store.example/" + sourceURL[len(sourceURL)-5:], nil
}

// mockAnalyzer implements Analyzer.
type mockAnalyzer struct {
	result string
	err    error

	gotPrompt string
	gotImage  string
	gotTokens int
}

func (m *mockAnalyzer) AnalyzeImage(_ context.Context, prompt, imageB64 string, maxTokens int) (string, error) {
	m.gotPrompt = prompt
	m.gotImage = imageB64
	m.gotTokens = maxTokens
	if m.err != nil {
		return "", m.err
	}
	return m.result, nil
}

// mockLedgerRepo implements ledger.Repository with fixed balances.
type mockLedgerRepo struct {
	mu    sync.Mutex
	users map[string]*ledger.User
}

func newMockLedgerRepo(users ...*ledger.User) *mockLedgerRepo {
	repo := &mockLedgerRepo{users: make(map[string]*ledger.User)}
	for _, u := range users {
		repo.users[u.Email] = u
	}
	return repo
}

func (m *mockLedgerRepo) GetUser(_ context.Context, email string) (*ledger.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return nil, ledger.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockLedgerRepo) DecrementCredit(_ context.Context, email string, feature ledger.Feature, amount int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return 0, ledger.ErrUserNotFound
	}
	if user.Balance(feature) < amount {
		return 0, ledger.ErrInsufficientCredit
	}
	switch feature {
	case ledger.FeatureImage:
		user.Image -= amount
	case ledger.FeatureDoctor:
		user.Doctor -= amount
	case ledger.FeatureMarketing:
		user.Marketing -= amount
	case ledger.FeatureQuote:
		user.Quote -= amount
	}
	return user.Balance(feature), nil
}

func TestService_GenerateBatch_AllSucceed(t *testing.T) {
	gen := &mockGenerator{}
	pub := &mockPublisher{}
	svc := NewService(gen, pub, &mockAnalyzer{}, nil, 4, nil)

	urls := svc.GenerateBatch(context.Background(), "a cozy living room")

	assert.Len(t, urls, 4)
	assert.Len(t, pub.seen, 4)
}

func TestService_GenerateBatch_PartialFailure(t *testing.T) {
	gen := &mockGenerator{errs: []error{nil, errors.New("vendor down"), nil, errors.New("vendor down")}}
	pub := &mockPublisher{}
	svc := NewService(gen, pub, &mockAnalyzer{}, nil, 4, nil)

	urls := svc.GenerateBatch(context.Background(), "prompt")

	// Failed branches are dropped, the rest are delivered.
	assert.Len(t, urls, 2)
}

func TestService_GenerateBatch_AllFail(t *testing.T) {
	err := errors.New("vendor down")
	gen := &mockGenerator{errs: []error{err, err, err, err}}
	svc := NewService(gen, &mockPublisher{}, &mockAnalyzer{}, nil, 4, nil)

	urls := svc.GenerateBatch(context.Background(), "prompt")

	assert.NotNil(t, urls)
	assert.Empty(t, urls)
}

func TestService_GenerateBatch_RelayFailureDropsBranch(t *testing.T) {
	gen := &mockGenerator{}
	pub := &mockPublisher{err: errors.New("store unavailable")}
	svc := NewService(gen, pub, &mockAnalyzer{}, nil, 4, nil)

	urls := svc.GenerateBatch(context.Background(), "prompt")

	assert.Empty(t, urls)
}

func TestService_Analyze(t *testing.T) {
	repo := newMockLedgerRepo(&ledger.User{Email: "a@b.com", Image: 2})
	analyzer := &mockAnalyzer{result: "The room has four walls."}
	svc := NewService(&mockGenerator{}, &mockPublisher{}, analyzer, ledger.NewService(repo, nil, nil), 4, nil)

	analysis, err := svc.Analyze(context.Background(), "a@b.com", "aW1hZ2U=")
	require.NoError(t, err)
	assert.Equal(t, "The room has four walls.", analysis)
	assert.Equal(t, "aW1hZ2U=", analyzer.gotImage)
	assert.Equal(t, analysisMaxTokens, analyzer.gotTokens)
	assert.Contains(t, analyzer.gotPrompt, "Walls")

	// One credit charged after the successful vendor call.
	user, err := repo.GetUser(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.Image)
}

func TestService_Analyze_UserNotFound(t *testing.T) {
	repo := newMockLedgerRepo()
	svc := NewService(&mockGenerator{}, &mockPublisher{}, &mockAnalyzer{}, ledger.NewService(repo, nil, nil), 4, nil)

	_, err := svc.Analyze(context.Background(), "ghost@b.com", "aW1hZ2U=")
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)
}

func TestService_Analyze_NoCredit(t *testing.T) {
	repo := newMockLedgerRepo(&ledger.User{Email: "a@b.com", Image: 0, Marketing: 5})
	analyzer := &mockAnalyzer{result: "unused"}
	svc := NewService(&mockGenerator{}, &mockPublisher{}, analyzer, ledger.NewService(repo, nil, nil), 4, nil)

	_, err := svc.Analyze(context.Background(), "a@b.com", "aW1hZ2U=")
	assert.ErrorIs(t, err, ledger.ErrInsufficientCredit)
	assert.Empty(t, analyzer.gotImage)
}

func TestService_Analyze_VendorFailureLeavesBalance(t *testing.T) {
	repo := newMockLedgerRepo(&ledger.User{Email: "a@b.com", Image: 3})
	analyzer := &mockAnalyzer{err: errors.New("model overloaded")}
	svc := NewService(&mockGenerator{}, &mockPublisher{}, analyzer, ledger.NewService(repo, nil, nil), 4, nil)

	_, err := svc.Analyze(context.Background(), "a@b.com", "aW1hZ2U=")
	require.Error(t, err)

	user, err := repo.GetUser(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), user.Image)
}
