package repositories

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/stockpile/app/models"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("repositories: not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("repositories: duplicate key")
)

// UserStore persists user records.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// ProductLedger is the transactional store of product rows.
//
// Methods called on the ledger passed to Transaction run inside that
// transaction; Lock* methods take a row lock there (where the driver
// supports one).
type ProductLedger interface {
	Transaction(ctx context.Context, fn func(tx ProductLedger) error) error

	Create(ctx context.Context, p *models.Product) error
	All(ctx context.Context) ([]models.Product, error)
	LockByID(ctx context.Context, id uint) (models.Product, error)
	LockByItemID(ctx context.Context, itemID string) (models.Product, error)

	SetPrice(ctx context.Context, id uint, price decimal.Decimal) error
	// AddQuantity adds delta unless the result would leave
	// [0, models.MaxQuantity], in which case it changes nothing and reports
	// false.
	AddQuantity(ctx context.Context, id uint, delta int) (bool, error)
	// Decrement subtracts qty when at least qty is in stock, otherwise it
	// changes nothing and reports false.
	Decrement(ctx context.Context, itemID string, qty int) (bool, error)

	Delete(ctx context.Context, id uint) (int64, error)
	DeleteByItemID(ctx context.Context, itemID string) (int64, error)
}
