package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/stockpile/app/models"
	"github.com/shashiranjanraj/stockpile/app/repositories"
	"github.com/shashiranjanraj/stockpile/pkg/apperr"
	"github.com/shashiranjanraj/stockpile/pkg/auth"
	"github.com/shashiranjanraj/stockpile/pkg/logger"
	"github.com/shashiranjanraj/stockpile/pkg/metrics"
)

const (
	listVersionKey = "products:gen"
	listKeyPrefix  = "products:all:"
)

// NewProduct is the seller's input for AddProduct.
type NewProduct struct {
	ItemID   string
	Name     string
	Quantity int
	Price    decimal.Decimal
}

// InventoryService owns every read and mutation of the product ledger.
//
// Stock only moves through conditional updates, so concurrent purchases of
// the same item can never drive quantity below zero, and a checkout runs
// all of its lines in one transaction.
type InventoryService struct {
	ledger  repositories.ProductLedger
	cache   ListCache
	timeout time.Duration
	ttl     time.Duration

	// stale is set while a mutation has committed without bumping the
	// list generation; reads skip the cache until a bump succeeds.
	stale atomic.Bool
}

// NewInventoryService wires the service. cache may be nil.
func NewInventoryService(ledger repositories.ProductLedger, cache ListCache, timeout, ttl time.Duration) *InventoryService {
	return &InventoryService{ledger: ledger, cache: cache, timeout: timeout, ttl: ttl}
}

// AddProduct lists a new item. Sellers only.
func (s *InventoryService) AddProduct(ctx context.Context, id auth.Identity, in NewProduct) (models.Product, error) {
	if err := requireRole(id, auth.RoleSeller); err != nil {
		return models.Product{}, err
	}
	if in.Quantity < 0 {
		return models.Product{}, apperr.New(apperr.InvalidQuantity, "quantity must not be negative")
	}
	if in.Quantity > models.MaxQuantity {
		return models.Product{}, apperr.New(apperr.InvalidQuantity, "quantity must not exceed %d", models.MaxQuantity)
	}
	if in.Price.IsNegative() {
		return models.Product{}, apperr.New(apperr.InvalidQuantity, "price must not be negative")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	p := models.Product{ItemID: in.ItemID, Name: in.Name, Quantity: in.Quantity, Price: in.Price}
	if err := s.ledger.Create(ctx, &p); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.Product{}, apperr.New(apperr.DuplicateProduct, "product with item id %q already exists", in.ItemID)
		}
		return models.Product{}, unavailable(ctx, "products.create", err)
	}

	s.invalidate(ctx)
	logger.WithCtx(ctx).Info("product added", "item_id", p.ItemID, "quantity", p.Quantity, "price", p.Price.String())
	return p, nil
}

// ListProducts returns every product, ordered by id. Sellers and customers.
func (s *InventoryService) ListProducts(ctx context.Context, id auth.Identity) ([]models.Product, error) {
	if err := requireRole(id, auth.RoleSeller, auth.RoleCustomer); err != nil {
		return nil, err
	}

	key, cacheable := s.listKey(ctx)
	if cacheable {
		var cached []models.Product
		if s.cache.Get(ctx, key, &cached) {
			return cached, nil
		}
	}

	sctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	products, err := s.ledger.All(sctx)
	if err != nil {
		return nil, unavailable(ctx, "products.all", err)
	}
	if products == nil {
		products = []models.Product{}
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, products, s.ttl); err != nil {
			logger.WithCtx(ctx).Warn("product list not cached", "error", err)
		}
	}
	return products, nil
}

// UpdatePrice overwrites the price of product productID. Sellers only.
func (s *InventoryService) UpdatePrice(ctx context.Context, id auth.Identity, productID uint, price decimal.Decimal) error {
	if err := requireRole(id, auth.RoleSeller); err != nil {
		return err
	}
	if price.IsNegative() {
		return apperr.New(apperr.InvalidQuantity, "price must not be negative")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	err := s.ledger.Transaction(ctx, func(tx repositories.ProductLedger) error {
		if _, err := tx.LockByID(ctx, productID); err != nil {
			return err
		}
		return tx.SetPrice(ctx, productID, price)
	})
	if err != nil {
		return s.productErr(ctx, "products.set_price", err, fmt.Sprintf("product %d not found", productID))
	}

	s.invalidate(ctx)
	logger.WithCtx(ctx).Info("price updated", "product_id", productID, "price", price.String())
	return nil
}

// AdjustQuantity adds delta (which may be negative) to the stock of
// productID. A result below zero or above models.MaxQuantity is rejected and
// nothing changes.
func (s *InventoryService) AdjustQuantity(ctx context.Context, id auth.Identity, productID uint, delta int) error {
	if err := requireRole(id, auth.RoleSeller); err != nil {
		return err
	}
	if delta == 0 {
		return apperr.New(apperr.InvalidQuantity, "delta must not be zero")
	}
	if delta > models.MaxQuantity || delta < -models.MaxQuantity {
		return apperr.New(apperr.InvalidQuantity, "delta must be within ±%d", models.MaxQuantity)
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	err := s.ledger.Transaction(ctx, func(tx repositories.ProductLedger) error {
		p, err := tx.LockByID(ctx, productID)
		if err != nil {
			return err
		}
		ok, err := tx.AddQuantity(ctx, productID, delta)
		if err != nil {
			return err
		}
		if !ok {
			if p.Quantity+delta < 0 {
				metrics.StockRejections.WithLabelValues("negative_result").Inc()
				return apperr.New(apperr.InvalidQuantity, "quantity of %q cannot drop below zero", p.ItemID)
			}
			metrics.StockRejections.WithLabelValues("above_max").Inc()
			return apperr.New(apperr.InvalidQuantity, "quantity of %q cannot exceed %d", p.ItemID, models.MaxQuantity)
		}
		return nil
	})
	if err != nil {
		return s.productErr(ctx, "products.add_quantity", err, fmt.Sprintf("product %d not found", productID))
	}

	s.invalidate(ctx)
	logger.WithCtx(ctx).Info("quantity adjusted", "product_id", productID, "delta", delta)
	return nil
}

// DeleteProduct removes productID. Deleting a missing product succeeds.
func (s *InventoryService) DeleteProduct(ctx context.Context, id auth.Identity, productID uint) error {
	if err := requireRole(id, auth.RoleSeller); err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.ledger.Delete(ctx, productID)
	if err != nil {
		return unavailable(ctx, "products.delete", err)
	}
	if n > 0 {
		s.invalidate(ctx)
		logger.WithCtx(ctx).Info("product removed", "product_id", productID)
	}
	return nil
}

// Buy takes quantity units of itemID out of stock for a customer. When
// the stock reaches zero the product row is removed; the returned product
// then reports quantity 0.
func (s *InventoryService) Buy(ctx context.Context, id auth.Identity, itemID string, quantity int) (models.Product, error) {
	if err := requireRole(id, auth.RoleCustomer); err != nil {
		return models.Product{}, err
	}
	if quantity <= 0 {
		return models.Product{}, apperr.New(apperr.InvalidQuantity, "quantity must be positive")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var product models.Product
	err := s.ledger.Transaction(ctx, func(tx repositories.ProductLedger) error {
		p, err := take(ctx, tx, itemID, quantity)
		product = p
		return err
	})
	if err != nil {
		err = s.productErr(ctx, "products.buy", err, fmt.Sprintf("product %q not found", itemID))
		metrics.Purchases.WithLabelValues(outcome(err)).Inc()
		return models.Product{}, err
	}

	metrics.Purchases.WithLabelValues("ok").Inc()
	metrics.UnitsSold.Add(float64(quantity))
	s.invalidate(ctx)
	logger.WithCtx(ctx).Info("purchase recorded", "item_id", itemID, "quantity", quantity, "remaining", product.Quantity)
	return product, nil
}

// DeleteReservation removes the product row for itemID on behalf of a
// customer.
func (s *InventoryService) DeleteReservation(ctx context.Context, id auth.Identity, itemID string) error {
	if err := requireRole(id, auth.RoleCustomer); err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.ledger.DeleteByItemID(ctx, itemID)
	if err != nil {
		return unavailable(ctx, "products.delete_by_item", err)
	}
	if n == 0 {
		return apperr.New(apperr.ProductNotFound, "product %q not found", itemID)
	}

	s.invalidate(ctx)
	logger.WithCtx(ctx).Info("reservation deleted", "item_id", itemID)
	return nil
}

// GenerateBill buys every line in one transaction and returns the total.
// If any line fails, no stock changes and the error names the line's item.
// Lines naming the same item apply one after another.
func (s *InventoryService) GenerateBill(ctx context.Context, id auth.Identity, lines []models.PurchaseLine) (models.Bill, error) {
	if err := requireRole(id, auth.RoleCustomer); err != nil {
		return models.Bill{}, err
	}
	if len(lines) == 0 {
		return models.Bill{}, apperr.New(apperr.InvalidInput, "at least one line is required")
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return models.Bill{}, apperr.New(apperr.InvalidQuantity, "quantity for product %q must be positive", l.ItemID)
		}
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	total := decimal.Zero
	units := 0
	err := s.ledger.Transaction(ctx, func(tx repositories.ProductLedger) error {
		total, units = decimal.Zero, 0
		// Rows are locked in item id order so overlapping checkouts queue
		// instead of deadlocking.
		for _, itemID := range lockOrder(lines) {
			if _, err := tx.LockByItemID(ctx, itemID); err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return apperr.New(apperr.ProductNotFound, "product %q not found", itemID)
				}
				return err
			}
		}
		for _, l := range lines {
			p, err := take(ctx, tx, l.ItemID, l.Quantity)
			if errors.Is(err, repositories.ErrNotFound) {
				return apperr.New(apperr.ProductNotFound, "product %q not found", l.ItemID)
			}
			if err != nil {
				return err
			}
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
			units += l.Quantity
		}
		return nil
	})
	if err != nil {
		err = unavailable(ctx, "products.bill", err)
		metrics.Bills.WithLabelValues(outcome(err)).Inc()
		return models.Bill{}, err
	}

	metrics.Bills.WithLabelValues("ok").Inc()
	metrics.UnitsSold.Add(float64(units))
	s.invalidate(ctx)
	logger.WithCtx(ctx).Info("bill generated", "lines", len(lines), "total", total.StringFixed(2))
	return models.Bill{TotalAmount: total}, nil
}

// lockOrder returns the distinct item ids of lines, sorted.
func lockOrder(lines []models.PurchaseLine) []string {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ItemID]; ok {
			continue
		}
		seen[l.ItemID] = struct{}{}
		ids = append(ids, l.ItemID)
	}
	sort.Strings(ids)
	return ids
}

// take removes qty units of itemID inside tx and deletes the row when the
// stock reaches zero. It returns the product as it stands afterwards.
func take(ctx context.Context, tx repositories.ProductLedger, itemID string, qty int) (models.Product, error) {
	p, err := tx.LockByItemID(ctx, itemID)
	if err != nil {
		return models.Product{}, err
	}

	ok, err := tx.Decrement(ctx, itemID, qty)
	if err != nil {
		return models.Product{}, err
	}
	if !ok {
		metrics.StockRejections.WithLabelValues("insufficient_stock").Inc()
		return models.Product{}, apperr.New(apperr.InsufficientStock, "insufficient quantity for product %q", itemID)
	}

	p.Quantity -= qty
	if p.Quantity == 0 {
		if _, err := tx.DeleteByItemID(ctx, itemID); err != nil {
			return models.Product{}, err
		}
		metrics.Depletions.Inc()
		logger.WithCtx(ctx).Info("product depleted", "item_id", itemID)
	}
	return p, nil
}

// productErr maps ledger errors for operations that address one product.
func (s *InventoryService) productErr(ctx context.Context, op string, err error, notFound string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.New(apperr.ProductNotFound, "%s", notFound)
	}
	return unavailable(ctx, op, err)
}

// listKey returns the cache key for the current list generation.
func (s *InventoryService) listKey(ctx context.Context) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	if s.stale.CompareAndSwap(true, false) {
		gen, err := s.cache.Incr(ctx, listVersionKey)
		if err != nil {
			s.stale.Store(true)
			return "", false
		}
		return fmt.Sprintf("%s%d", listKeyPrefix, gen), true
	}
	gen, err := s.cache.Version(ctx, listVersionKey)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s%d", listKeyPrefix, gen), true
}

// invalidate bumps the list generation so no reader of this service sees a
// list older than a committed mutation. A failed bump marks the cache stale.
func (s *InventoryService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(context.WithoutCancel(ctx), listVersionKey); err != nil {
		s.stale.Store(true)
		logger.WithCtx(ctx).Warn("product list cache not invalidated", "error", err)
	}
}

func outcome(err error) string {
	if k := apperr.KindOf(err); k != "" {
		return string(k)
	}
	return "error"
}
