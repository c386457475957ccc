package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paypilot/internal/apierror"
	"paypilot/internal/dto"
	"paypilot/internal/model"
	"paypilot/internal/repository"
	"paypilot/internal/scope"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// invoiceNoWidth is the zero-padding width of the global invoice sequence.
	invoiceNoWidth = 5
	// createMaxAttempts bounds the optimistic retry loop around the creation
	// transaction (number collision or stock CAS lost to a concurrent writer).
	createMaxAttempts = 3

	hundred = 100
)

// InvoiceService is the invoice factory: it allocates the next global invoice
// number, snapshots line prices, computes totals, and performs the ledger
// decrement, invoice insert and order completion as one atomic unit.
type InvoiceService interface {
	Create(ctx context.Context, sc scope.Scope, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*dto.InvoiceResponse, error)
	List(ctx context.Context, sc scope.Scope, clientID *uuid.UUID, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error)
	// Delete releases the invoice's reservation back to the ledger and then
	// removes the invoice. Release runs first so a crash mid-operation leaves
	// stock restored rather than lost.
	Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error)
}

type invoiceService struct {
	invoices repository.InvoiceRepository
	orders   repository.OrderRepository
	products repository.ProductRepository
	ledger   LedgerService
	dueDays  int
}

func NewInvoiceService(
	invoices repository.InvoiceRepository,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	ledger LedgerService,
	dueDays int,
) InvoiceService {
	if dueDays <= 0 {
		dueDays = 30
	}
	return &invoiceService{invoices: invoices, orders: orders, products: products, ledger: ledger, dueDays: dueDays}
}

func (s *invoiceService) Create(ctx context.Context, sc scope.Scope, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	orderID, err := uuid.Parse(req.Order)
	if err != nil {
		return nil, apierror.Validation("invalid order id")
	}

	// Pre-flight scope check outside the transaction.
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, apierror.ErrNotFound
	}
	if err := sc.Check(order.StoreID); err != nil {
		return nil, err
	}

	var created *model.Invoice
	for attempt := 1; attempt <= createMaxAttempts; attempt++ {
		created = nil
		txErr := runTx(ctx, s.invoices.DB(), func(tx *gorm.DB) error {
			inv, err := s.createOnce(ctx, tx, orderID, req)
			if err != nil {
				return err
			}
			created = inv
			return nil
		})
		if txErr == nil {
			return invoiceToResponse(created), nil
		}
		if retryableCreateError(txErr) {
			continue
		}
		return nil, txErr
	}
	return nil, apierror.ErrConflict
}

// createOnce is one attempt of the atomic unit: read → snapshot → totals →
// number → reserve → insert → complete order. Each step after the reservation
// compensates on failure so a non-transactional backend is left consistent;
// under a real transaction the rollback covers the same ground.
func (s *invoiceService) createOnce(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, req dto.CreateInvoiceRequest) (*model.Invoice, error) {
	order, err := s.orders.FindByIDTx(tx, orderID)
	if err != nil {
		return nil, apierror.ErrNotFound
	}
	if order.Status != model.OrderAccepted {
		return nil, apierror.Validation(
			fmt.Sprintf("order must be Accepted to invoice, got %s", order.Status))
	}
	if len(order.Items) == 0 {
		return nil, apierror.Validation("order has no line items")
	}

	// Snapshot current prices into the invoice lines. Submitted totals are a
	// display hint only — everything is recomputed here.
	lines := make([]ReserveLine, 0, len(order.Items))
	items := make([]model.InvoiceItem, 0, len(order.Items))
	subtotal := decimal.Zero
	for _, it := range order.Items {
		p, err := s.products.FindByIDTx(tx, it.ProductID)
		if err != nil {
			return nil, apierror.Validation(fmt.Sprintf("product %s not found", it.ProductID))
		}
		if !p.IsActive {
			return nil, apierror.Validation(fmt.Sprintf("product %s is inactive", p.Name))
		}
		if p.StoreID != order.StoreID {
			return nil, apierror.Validation(fmt.Sprintf("product %s belongs to a different store", p.Name))
		}

		rate := p.Price
		amount := rate.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(amount)
		items = append(items, model.InvoiceItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Rate:      rate,
			Amount:    amount,
		})
		lines = append(lines, ReserveLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	// Discount and tax are rounded once where they are persisted; the total is
	// then exact over the stored figures, so
	// totalAmount == (subtotal - discount) + tax holds to the cent.
	discount := subtotal.Mul(req.DiscountRate).Div(decimal.NewFromInt(hundred)).Round(2)
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(req.TaxRate).Div(decimal.NewFromInt(hundred)).Round(2)
	total := taxable.Add(tax).Round(2)
	if total.IsNegative() {
		return nil, apierror.Validation("invoice total cannot be negative")
	}

	// Allocate the next global invoice number. Two transactions can read the
	// same maximum; the unique index rejects the second insert and the caller
	// retries with a fresh read, so no number is reused or skipped on failure.
	seq, err := s.invoices.NextSequenceTx(tx)
	if err != nil {
		return nil, err
	}
	invoiceNo := fmt.Sprintf("%0*d", invoiceNoWidth, seq+1)

	token, err := s.ledger.ReserveTx(ctx, tx, order.StoreID, lines, &order.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	oid := order.ID
	inv := &model.Invoice{
		InvoiceNo:        invoiceNo,
		OrderID:          &oid,
		ClientID:         order.ClientID,
		StoreID:          order.StoreID,
		Date:             now,
		DueDate:          now.AddDate(0, 0, s.dueDays),
		PaymentStatus:    model.PaymentPending,
		Subtotal:         subtotal.Round(2),
		Discount:         discount,
		Tax:              tax,
		TotalAmount:      total,
		Notes:            req.Notes,
		Terms:            req.Terms,
		ReservationToken: token,
		Items:            items,
	}
	if err := s.invoices.CreateTx(tx, inv); err != nil {
		_ = s.ledger.ReleaseTx(ctx, tx, token)
		return nil, err
	}

	rows, err := s.orders.UpdateStatusTx(tx, order.ID, model.OrderAccepted, model.OrderCompleted)
	if err != nil || rows == 0 {
		_ = s.invoices.DeleteTx(tx, inv.ID)
		_ = s.ledger.ReleaseTx(ctx, tx, token)
		if err != nil {
			return nil, err
		}
		return nil, apierror.ErrConflict
	}

	return inv, nil
}

func (s *invoiceService) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*dto.InvoiceResponse, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.ErrNotFound
	}
	if err := sc.Check(inv.StoreID); err != nil {
		return nil, err
	}
	return invoiceToResponse(inv), nil
}

func (s *invoiceService) List(ctx context.Context, sc scope.Scope, clientID *uuid.UUID, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	if filter.PaymentStatus != "" && filter.PaymentStatus != "all" && !model.PaymentStatus(filter.PaymentStatus).Valid() {
		return nil, apierror.Validation("unknown payment status: " + filter.PaymentStatus)
	}
	var storeID *uuid.UUID
	if !sc.All {
		id := sc.StoreID
		storeID = &id
	}
	invoices, total, err := s.invoices.List(ctx, filter, storeID, clientID)
	if err != nil {
		return nil, err
	}
	data := make([]dto.InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		data = append(data, *invoiceToResponse(&invoices[i]))
	}
	return &dto.InvoiceListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *invoiceService) Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return apierror.ErrNotFound
	}
	if err := sc.Check(inv.StoreID); err != nil {
		return err
	}

	// Release before delete: if this is interrupted after the release, stock
	// is restored and the release's idempotency makes the retry safe.
	return runTx(ctx, s.invoices.DB(), func(tx *gorm.DB) error {
		if err := s.ledger.ReleaseTx(ctx, tx, inv.ReservationToken); err != nil {
			return err
		}
		return s.invoices.DeleteTx(tx, inv.ID)
	})
}

func (s *invoiceService) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error) {
	inv, err := s.invoices.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, apierror.ErrNotFound
	}
	return inv, nil
}

// retryableCreateError reports whether the failed attempt should be retried
// with a fresh read: an invoice number collision surfaces as a duplicated-key
// error, a lost order CAS as ErrConflict.
func retryableCreateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, apierror.ErrConflict)
}

func invoiceToResponse(inv *model.Invoice) *dto.InvoiceResponse {
	items := make([]dto.InvoiceItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		name := ""
		if it.Product != nil {
			name = it.Product.Name
		}
		items = append(items, dto.InvoiceItemResponse{
			ProductID: it.ProductID.String(),
			Product:   name,
			Quantity:  it.Quantity,
			Rate:      it.Rate,
			Amount:    it.Amount,
		})
	}
	resp := &dto.InvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNo:     inv.InvoiceNo,
		ClientID:      inv.ClientID.String(),
		StoreID:       inv.StoreID.String(),
		Date:          inv.Date.Format("2006-01-02"),
		DueDate:       inv.DueDate.Format("2006-01-02"),
		PaymentStatus: string(inv.PaymentStatus),
		Items:         items,
		Subtotal:      inv.Subtotal,
		Discount:      inv.Discount,
		Tax:           inv.Tax,
		TotalAmount:   inv.TotalAmount,
		Notes:         inv.Notes,
		Terms:         inv.Terms,
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.OrderID != nil {
		oid := inv.OrderID.String()
		resp.OrderID = &oid
	}
	return resp
}
