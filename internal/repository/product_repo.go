package repository

import (
	"context"

	"paypilot/internal/dto"
	"paypilot/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
//
// quantity is only ever written through ReserveStockTx / RestoreStockTx /
// SetStockTx — Update deliberately refuses to touch it.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter, storeID *uuid.UUID) ([]model.Product, int64, error)
	Update(ctx context.Context, p *model.Product) error

	// ReserveStockTx is the atomic conditional decrement:
	// quantity -= qty only when quantity >= qty. Returns the number of rows
	// updated — 0 means insufficient stock and nothing was changed.
	ReserveStockTx(tx *gorm.DB, id uuid.UUID, qty int) (int64, error)
	// RestoreStockTx is the exact inverse, used by release.
	RestoreStockTx(tx *gorm.DB, id uuid.UUID, qty int) error
	// SetStockTx overwrites the absolute quantity (manual restock path).
	SetStockTx(tx *gorm.DB, id uuid.UUID, qty int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter, storeID *uuid.UUID) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})

	if storeID != nil {
		q = q.Where("store_id = ?", *storeID)
	}
	switch filter.Active {
	case "false":
		q = q.Where("is_active = false")
	case "all":
	default:
		q = q.Where("is_active = true")
	}
	if filter.Search != "" {
		q = q.Where("name ILIKE ? OR sku ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "name ASC"
	if filter.SortBy == "quantity" || filter.SortBy == "price" {
		order = filter.SortBy + " " + sortDirection(filter.SortOrder)
	}
	offset := (filter.Page - 1) * filter.Limit
	err := q.Order(order).Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Model(p).
		Omit("quantity").Updates(p).Error
}

func (r *productRepo) ReserveStockTx(tx *gorm.DB, id uuid.UUID, qty int) (int64, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND is_active = true AND quantity >= ?", id, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *productRepo) RestoreStockTx(tx *gorm.DB, id uuid.UUID, qty int) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", qty)).Error
}

func (r *productRepo) SetStockTx(tx *gorm.DB, id uuid.UUID, qty int) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Update("quantity", qty).Error
}

func (r *productRepo) DB() *gorm.DB { return r.db }

// sortDirection normalizes a user-supplied sort order.
func sortDirection(s string) string {
	if s == "desc" {
		return "DESC"
	}
	return "ASC"
}
