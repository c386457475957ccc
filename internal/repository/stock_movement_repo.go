package repository

import (
	"context"

	"paypilot/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockMovementRepository records and queries the stock audit trail.
type StockMovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.StockMovement) error
	// FindByTokenTx returns all movements of the given type for a
	// reservation token. Release uses it both to find what to restore and to
	// detect a replay (release rows already present).
	FindByTokenTx(tx *gorm.DB, token uuid.UUID, movementType string) ([]model.StockMovement, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error)
}

type stockMovementRepo struct{ db *gorm.DB }

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockMovementRepo) FindByTokenTx(tx *gorm.DB, token uuid.UUID, movementType string) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := tx.Where("reservation_token = ? AND type = ?", token, movementType).
		Find(&movements).Error
	return movements, err
}

func (r *stockMovementRepo) ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").Limit(limit).
		Find(&movements).Error
	return movements, err
}
