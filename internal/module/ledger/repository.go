package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for account data access.
type Repository interface {
	// GetUser retrieves an account by email.
	GetUser(ctx context.Context, email string) (*User, error)

	// DecrementCredit subtracts amount from the feature balance if and
	// only if the stored balance covers it, and returns the new balance.
	// The conditional update is evaluated by the store in a single
	// statement; two concurrent decrements can never both win the last
	// credit.
	DecrementCredit(ctx context.Context, email string, feature Feature, amount int64) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new ledger repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// GetUser retrieves an account by email.
func (r *repository) GetUser(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// DecrementCredit performs the atomic conditional decrement.
func (r *repository) DecrementCredit(ctx context.Context, email string, feature Feature, amount int64) (int64, error) {
	if !feature.Valid() {
		return 0, ErrUnknownFeature
	}
	if amount <= 0 {
		return 0, fmt.Errorf("decrement amount must be positive, got %d", amount)
	}

	// Column name comes from the fixed Feature set, never from input.
	col := feature.Column()

	var updated User
	result := r.db.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: col}}}).
		Where(fmt.Sprintf("email = ? AND %s >= ?", col), email, amount).
		UpdateColumn(col, gorm.Expr(fmt.Sprintf("%s - ?", col), amount))
	if result.Error != nil {
		return 0, fmt.Errorf("decrement credit: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// The guard failed: either the account is gone or the balance
		// was too low. Look once to tell the two apart.
		if _, err := r.GetUser(ctx, email); err != nil {
			return 0, err
		}
		return 0, ErrInsufficientCredit
	}

	return updated.Balance(feature), nil
}
