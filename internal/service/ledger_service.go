package service

import (
	"context"
	"fmt"

	"paypilot/internal/apierror"
	"paypilot/internal/model"
	"paypilot/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReserveLine is one product/quantity pair in a reservation request.
type ReserveLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// LedgerService owns product stock. It is the only writer of quantity besides
// the manual restock path, and every mutation leaves a StockMovement audit row.
//
// Reserve is all-or-nothing: if any line is short, no line is decremented and
// the caller gets InsufficientStockError for the first failing line. Release
// is the exact inverse and is idempotent per reservation token.
type LedgerService interface {
	// ReserveTx runs inside the caller's transaction (tx may be nil in unit
	// test mode). On success it returns the reservation token under which the
	// decrements were recorded.
	ReserveTx(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, lines []ReserveLine, refID *uuid.UUID) (uuid.UUID, error)
	// ReleaseTx restores every quantity the token reserved. A token that was
	// already released, or never reserved, is a no-op.
	ReleaseTx(ctx context.Context, tx *gorm.DB, token uuid.UUID) error
	// Release is ReleaseTx wrapped in its own transaction.
	Release(ctx context.Context, token uuid.UUID) error
}

type ledgerService struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
}

func NewLedgerService(products repository.ProductRepository, movements repository.StockMovementRepository) LedgerService {
	return &ledgerService{products: products, movements: movements}
}

func (s *ledgerService) ReserveTx(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, lines []ReserveLine, refID *uuid.UUID) (uuid.UUID, error) {
	if len(lines) == 0 {
		return uuid.Nil, apierror.Validation("reservation requires at least one line")
	}
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return uuid.Nil, apierror.Validation("line quantity must be positive")
		}
		if seen[l.ProductID] {
			return uuid.Nil, apierror.Validation(fmt.Sprintf("duplicate product %s in reservation", l.ProductID))
		}
		seen[l.ProductID] = true
	}

	// Check every line against one consistent read before touching anything,
	// so a short line aborts with zero effect.
	resolved := make([]checkedLine, 0, len(lines))
	for _, l := range lines {
		p, err := s.products.FindByIDTx(tx, l.ProductID)
		if err != nil {
			return uuid.Nil, apierror.Validation(fmt.Sprintf("product %s not found", l.ProductID))
		}
		if !p.IsActive {
			return uuid.Nil, apierror.Validation(fmt.Sprintf("product %s is inactive", p.Name))
		}
		if p.StoreID != storeID {
			return uuid.Nil, apierror.ErrForbidden
		}
		if p.Quantity < l.Quantity {
			return uuid.Nil, &apierror.InsufficientStockError{
				ProductID: l.ProductID,
				Available: p.Quantity,
				Requested: l.Quantity,
			}
		}
		resolved = append(resolved, checkedLine{product: p, qty: l.Quantity})
	}

	// Decrement every line with the conditional update. A concurrent writer
	// may have consumed stock since the check; the losing line's failed CAS
	// rolls back the lines already applied and reports InsufficientStock.
	token := uuid.New()
	for i, c := range resolved {
		rows, err := s.products.ReserveStockTx(tx, c.product.ID, c.qty)
		if err != nil {
			s.compensate(tx, resolved[:i])
			return uuid.Nil, err
		}
		if rows == 0 {
			s.compensate(tx, resolved[:i])
			fresh, ferr := s.products.FindByIDTx(tx, c.product.ID)
			available := 0
			if ferr == nil {
				available = fresh.Quantity
			}
			return uuid.Nil, &apierror.InsufficientStockError{
				ProductID: c.product.ID,
				Available: available,
				Requested: c.qty,
			}
		}

		tok := token
		mov := &model.StockMovement{
			ProductID:        c.product.ID,
			StoreID:          storeID,
			Type:             model.MovementReserve,
			Quantity:         -c.qty,
			StockBefore:      c.product.Quantity,
			StockAfter:       c.product.Quantity - c.qty,
			Note:             "reserved for invoice",
			ReservationToken: &tok,
			ReferenceID:      refID,
		}
		if err := s.movements.CreateTx(tx, mov); err != nil {
			s.compensate(tx, resolved[:i+1])
			return uuid.Nil, err
		}
	}

	return token, nil
}

type checkedLine struct {
	product *model.Product
	qty     int
}

// compensate undoes partial decrements when a later line fails. Inside a real
// DB transaction the rollback makes this redundant; it keeps non-transactional
// backends (unit test stubs) consistent with the all-or-nothing contract.
func (s *ledgerService) compensate(tx *gorm.DB, applied []checkedLine) {
	for _, c := range applied {
		_ = s.products.RestoreStockTx(tx, c.product.ID, c.qty)
	}
}

func (s *ledgerService) ReleaseTx(ctx context.Context, tx *gorm.DB, token uuid.UUID) error {
	reserves, err := s.movements.FindByTokenTx(tx, token, model.MovementReserve)
	if err != nil {
		return err
	}
	if len(reserves) == 0 {
		// Unknown token: nothing was reserved, nothing to restore.
		return nil
	}
	released, err := s.movements.FindByTokenTx(tx, token, model.MovementRelease)
	if err != nil {
		return err
	}
	if len(released) > 0 {
		// Replay — the token was already released.
		return nil
	}

	for _, m := range reserves {
		qty := -m.Quantity // reserve deltas are negative
		if err := s.products.RestoreStockTx(tx, m.ProductID, qty); err != nil {
			return err
		}
		p, err := s.products.FindByIDTx(tx, m.ProductID)
		after := 0
		if err == nil {
			after = p.Quantity
		}
		tok := token
		mov := &model.StockMovement{
			ProductID:        m.ProductID,
			StoreID:          m.StoreID,
			Type:             model.MovementRelease,
			Quantity:         qty,
			StockBefore:      after - qty,
			StockAfter:       after,
			Note:             "reservation released",
			ReservationToken: &tok,
			ReferenceID:      m.ReferenceID,
		}
		if err := s.movements.CreateTx(tx, mov); err != nil {
			return err
		}
	}
	return nil
}

func (s *ledgerService) Release(ctx context.Context, token uuid.UUID) error {
	return runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		return s.ReleaseTx(ctx, tx, token)
	})
}
