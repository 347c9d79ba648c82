package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices and totals render as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// MaxQuantity is the most units of one product the ledger holds. It keeps
// quantity arithmetic inside the integer range of every supported driver.
const MaxQuantity = 1_000_000_000

// Product is a row in the ledger. ItemID is the business key; ID is
// assigned by the store. Rows are hard-deleted so an ItemID can be listed
// again after it sells out.
type Product struct {
	ID        uint            `gorm:"primaryKey"                     json:"id"`
	ItemID    string          `gorm:"size:100;uniqueIndex;not null"  json:"itemId"`
	Name      string          `gorm:"size:255;not null"              json:"name"`
	Quantity  int             `gorm:"not null;default:0"             json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"    json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// PurchaseLine is one entry of a checkout request.
type PurchaseLine struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// Bill is the computed result of a checkout. It is never persisted.
type Bill struct {
	TotalAmount decimal.Decimal `json:"totalAmount"`
}
