package quote

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Repository defines the interface for quote data access.
type Repository interface {
	// GetQuote retrieves a quote by its company-plus-offering key.
	GetQuote(ctx context.Context, compNameOffering string) (*Quote, error)

	// ListQuotes retrieves all quote records.
	ListQuotes(ctx context.Context) ([]Quote, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new quote repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetQuote(ctx context.Context, compNameOffering string) (*Quote, error) {
	var quote Quote
	err := r.db.WithContext(ctx).First(&quote, "comp_name_offering = ?", compNameOffering).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("%w: get quote: %w", ErrStoreFailure, err)
	}
	return &quote, nil
}

func (r *repository) ListQuotes(ctx context.Context) ([]Quote, error) {
	var quotes []Quote
	if err := r.db.WithContext(ctx).Find(&quotes).Error; err != nil {
		return nil, fmt.Errorf("%w: list quotes: %w", ErrStoreFailure, err)
	}
	return quotes, nil
}
