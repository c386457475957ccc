package service

import (
	"context"

	"paypilot/internal/apierror"
	"paypilot/internal/dto"
	"paypilot/internal/model"
	"paypilot/internal/repository"
	"paypilot/internal/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductService covers catalog reads and the manual restock path — the one
// sanctioned quantity write outside the ledger's reserve/release, and it still
// leaves a movement audit row.
type ProductService interface {
	List(ctx context.Context, sc scope.Scope, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*dto.ProductResponse, error)
	AdjustStock(ctx context.Context, sc scope.Scope, id uuid.UUID, quantity int) (*dto.ProductResponse, error)
}

type productService struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
}

func NewProductService(products repository.ProductRepository, movements repository.StockMovementRepository) ProductService {
	return &productService{products: products, movements: movements}
}

func (s *productService) List(ctx context.Context, sc scope.Scope, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	var storeID *uuid.UUID
	if !sc.All {
		id := sc.StoreID
		storeID = &id
	}
	products, total, err := s.products.List(ctx, filter, storeID)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.loadScoped(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	resp := productToResponse(p)
	return &resp, nil
}

// AdjustStock overwrites the absolute quantity. Negative targets are rejected
// upstream; the movement row records the signed delta against the previous
// quantity.
func (s *productService) AdjustStock(ctx context.Context, sc scope.Scope, id uuid.UUID, quantity int) (*dto.ProductResponse, error) {
	if quantity < 0 {
		return nil, apierror.Validation("quantity cannot be negative")
	}
	p, err := s.loadScoped(ctx, sc, id)
	if err != nil {
		return nil, err
	}

	err = runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		if err := s.products.SetStockTx(tx, p.ID, quantity); err != nil {
			return err
		}
		return s.movements.CreateTx(tx, &model.StockMovement{
			ProductID:   p.ID,
			StoreID:     p.StoreID,
			Type:        model.MovementRestock,
			Quantity:    quantity - p.Quantity,
			StockBefore: p.Quantity,
			StockAfter:  quantity,
			Note:        "manual stock adjustment",
		})
	})
	if err != nil {
		return nil, err
	}

	p.Quantity = quantity
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) loadScoped(ctx context.Context, sc scope.Scope, id uuid.UUID) (*model.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.ErrNotFound
	}
	if err := sc.Check(p.StoreID); err != nil {
		return nil, err
	}
	return p, nil
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:       p.ID.String(),
		Name:     p.Name,
		SKU:      p.SKU,
		Price:    p.Price,
		Quantity: p.Quantity,
		StoreID:  p.StoreID.String(),
		IsActive: p.IsActive,
	}
}
