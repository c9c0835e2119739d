package image

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mysterie/creditgate/internal/module/ledger"
	"github.com/mysterie/creditgate/internal/module/vendorapi"
)

// Publisher copies vendor-hosted content to durable storage and issues
// a shareable link.
type Publisher interface {
	Publish(ctx context.Context, sourceURL string) (string, error)
}

// Analyzer runs a vision prompt over an inline base64 image.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, prompt, imageB64 string, maxTokens int) (string, error)
}

// Service implements image generation and room analysis.
type Service struct {
	generator vendorapi.ImageGenerator
	publisher Publisher
	analyzer  Analyzer
	ledger    *ledger.Service
	fanOut    int
	logger    *zap.Logger
}

// NewService creates a new image service.
func NewService(
	generator vendorapi.ImageGenerator,
	publisher Publisher,
	analyzer Analyzer,
	ledgerService *ledger.Service,
	fanOut int,
	logger *zap.Logger,
) *Service {
	if fanOut <= 0 {
		fanOut = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		generator: generator,
		publisher: publisher,
		analyzer:  analyzer,
		ledger:    ledgerService,
		fanOut:    fanOut,
		logger:    logger,
	}
}

// GenerateBatch runs the configured number of independent
// generate-then-relay branches for one prompt and returns the links
// that succeeded. Failed branches are dropped silently; an empty result
// is not an error.
func (s *Service) GenerateBatch(ctx context.Context, prompt string) []string {
	results := make([]string, s.fanOut)

	var wg sync.WaitGroup
	for i := 0; i < s.fanOut; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()

			sourceURL, err := s.generator.GenerateImage(ctx, prompt)
			if err != nil {
				s.logger.Warn("image generation failed",
					zap.String("vendor", s.generator.Name()),
					zap.Int("slot", slot),
					zap.Error(err),
				)
				return
			}

			link, err := s.publisher.Publish(ctx, sourceURL)
			if err != nil {
				s.logger.Warn("image relay failed",
					zap.Int("slot", slot),
					zap.Error(err),
				)
				return
			}

			results[slot] = link
		}(i)
	}
	wg.Wait()

	urls := make([]string, 0, s.fanOut)
	for _, link := range results {
		if link != "" {
			urls = append(urls, link)
		}
	}
	return urls
}

// Analyze runs the room-reconstruction vision prompt over a base64
// image for a credit-holding user. The credit is charged only after the
// vendor call succeeds.
func (s *Service) Analyze(ctx context.Context, email, imageB64 string) (string, error) {
	if _, err := s.ledger.CheckBalance(ctx, email, ledger.FeatureImage); err != nil {
		return "", err
	}

	analysis, err := s.analyzer.AnalyzeImage(ctx, roomAnalysisPrompt, imageB64, analysisMaxTokens)
	if err != nil {
		return "", err
	}

	s.ledger.Charge(ctx, email, ledger.FeatureImage)
	return analysis, nil
}
