package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/stockpile/app/models"
	"github.com/shashiranjanraj/stockpile/pkg/metrics"
)

// ProductRepository is the gorm-backed ProductLedger.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Transaction runs fn inside a single database transaction. fn's error
// rolls everything back.
func (r *ProductRepository) Transaction(ctx context.Context, fn func(tx ProductLedger) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ProductRepository{db: tx})
	})
}

// Create inserts p, failing with ErrDuplicate when p.ItemID is taken.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Product{}).Where("item_id = ?", p.ItemID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}

	err := db.Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// All returns every product ordered by id.
func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var products []models.Product
	err := r.db.WithContext(ctx).Order("id").Find(&products).Error
	return products, err
}

func (r *ProductRepository) LockByID(ctx context.Context, id uint) (models.Product, error) {
	return r.lock(ctx, "id = ?", id)
}

func (r *ProductRepository) LockByItemID(ctx context.Context, itemID string) (models.Product, error) {
	return r.lock(ctx, "item_id = ?", itemID)
}

func (r *ProductRepository) lock(ctx context.Context, query string, arg interface{}) (models.Product, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var p models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(query, arg).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, ErrNotFound
	}
	return p, err
}

func (r *ProductRepository) SetPrice(ctx context.Context, id uint, price decimal.Decimal) error {
	defer metrics.ObserveDBQuery("update", time.Now())

	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("price", price).Error
}

func (r *ProductRepository) AddQuantity(ctx context.Context, id uint, delta int) (bool, error) {
	defer metrics.ObserveDBQuery("update", time.Now())

	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND quantity >= ? AND quantity <= ?", id, -delta, models.MaxQuantity-delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	return res.RowsAffected > 0, res.Error
}

func (r *ProductRepository) Decrement(ctx context.Context, itemID string, qty int) (bool, error) {
	defer metrics.ObserveDBQuery("update", time.Now())

	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("item_id = ? AND quantity >= ?", itemID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	return res.RowsAffected > 0, res.Error
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) (int64, error) {
	defer metrics.ObserveDBQuery("delete", time.Now())

	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	return res.RowsAffected, res.Error
}

func (r *ProductRepository) DeleteByItemID(ctx context.Context, itemID string) (int64, error) {
	defer metrics.ObserveDBQuery("delete", time.Now())

	res := r.db.WithContext(ctx).Where("item_id = ?", itemID).Delete(&models.Product{})
	return res.RowsAffected, res.Error
}
