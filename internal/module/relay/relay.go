package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mysterie/creditgate/internal/shared/storage"
)

// ErrRelayFailed is returned when vendor content could not be copied to
// durable storage.
var ErrRelayFailed = errors.New("relay failed")

// Relay copies ephemeral vendor-hosted content into durable storage and
// issues time-limited shareable links to it.
type Relay struct {
	store     storage.ObjectStore
	http      *http.Client
	keyPrefix string
	expiry    time.Duration
	logger    *zap.Logger
}

// Config holds relay configuration.
type Config struct {
	KeyPrefix string
	Expiry    time.Duration
}

// New creates a new relay.
func New(store storage.ObjectStore, cfg Config, logger *zap.Logger) *Relay {
	if cfg.Expiry <= 0 {
		cfg.Expiry = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		store:     store,
		http:      &http.Client{Timeout: 60 * time.Second},
		keyPrefix: cfg.KeyPrefix,
		expiry:    cfg.Expiry,
		logger:    logger,
	}
}

// Publish downloads the vendor-hosted content, stores it under a fresh
// UUID key, and returns a presigned read-only URL.
func (r *Relay) Publish(ctx context.Context, sourceURL string) (string, error) {
	data, contentType, err := r.fetch(ctx, sourceURL)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s%s.png", r.keyPrefix, uuid.New().String())
	if err := r.store.Put(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("%w: store object: %w", ErrRelayFailed, err)
	}

	link, err := r.store.PresignDownload(ctx, key, r.expiry)
	if err != nil {
		return "", fmt.Errorf("%w: presign: %w", ErrRelayFailed, err)
	}

	r.logger.Debug("artifact relayed",
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return link, nil
}

func (r *Relay) fetch(ctx context.Context, sourceURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: create request: %w", ErrRelayFailed, err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: fetch source: %w", ErrRelayFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: fetch source: status %d", ErrRelayFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: read source: %w", ErrRelayFailed, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return data, contentType, nil
}
