package repository

import (
	"context"

	"paypilot/internal/dto"
	"paypilot/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository defines the data access contract for orders.
type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter dto.OrderFilter, storeID *uuid.UUID, clientID *uuid.UUID) ([]model.Order, int64, error)

	// UpdateStatusTx flips status with a compare-and-swap on the current
	// value. Returns rows affected — 0 means another writer got there first.
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to model.OrderStatus) (int64, error)

	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Items.Product").
		First(&o, "id = ?", id).Error
	return &o, err
}

func (r *orderRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := tx.Preload("Items").First(&o, "id = ?", id).Error
	return &o, err
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter, storeID *uuid.UUID, clientID *uuid.UUID) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Order{})
	if storeID != nil {
		q = q.Where("store_id = ?", *storeID)
	}
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at " + sortDirection(filter.SortOrder)
	switch filter.SortBy {
	case "totalAmount":
		order = "total_amount " + sortDirection(filter.SortOrder)
	case "status":
		order = "status " + sortDirection(filter.SortOrder)
	}
	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items").Order(order).Limit(filter.Limit).Offset(offset).Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to model.OrderStatus) (int64, error) {
	res := tx.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *orderRepo) DB() *gorm.DB { return r.db }
