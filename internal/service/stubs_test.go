package service

// In-memory repository stubs. Services run with runTx's nil-DB short-circuit,
// so the stubs must honor the same contracts as the SQL layer: the conditional
// decrement in ReserveStockTx, the status CAS in UpdateStatusTx, the unique
// invoice_no index in CreateTx, and the payment version check in
// UpdatePaymentStatusTx.

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"paypilot/internal/dto"
	"paypilot/internal/model"
	"paypilot/internal/repository"
	"paypilot/internal/scope"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errStubNotFound = errors.New("record not found")

// ── ProductRepository stub ───────────────────────────────────────────────────

type stubProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cloned := *p
	r.products[p.ID] = &cloned
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	return r.find(id)
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.find(id)
}

func (r *stubProductRepo) find(id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, errStubNotFound
	}
	cloned := *p
	return &cloned, nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter, storeID *uuid.UUID) ([]model.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.products {
		if storeID != nil && p.StoreID != *storeID {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.products[p.ID]
	if !ok {
		return errStubNotFound
	}
	qty := existing.Quantity
	cloned := *p
	cloned.Quantity = qty
	r.products[p.ID] = &cloned
	return nil
}

func (r *stubProductRepo) ReserveStockTx(_ *gorm.DB, id uuid.UUID, qty int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || !p.IsActive || p.Quantity < qty {
		return 0, nil
	}
	p.Quantity -= qty
	return 1, nil
}

func (r *stubProductRepo) RestoreStockTx(_ *gorm.DB, id uuid.UUID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return errStubNotFound
	}
	p.Quantity += qty
	return nil
}

func (r *stubProductRepo) SetStockTx(_ *gorm.DB, id uuid.UUID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return errStubNotFound
	}
	p.Quantity = qty
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) quantity(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].Quantity
}

// ── StockMovementRepository stub ─────────────────────────────────────────────

type stubMovementRepo struct {
	mu        sync.Mutex
	movements []model.StockMovement
}

func newStubMovementRepo() *stubMovementRepo { return &stubMovementRepo{} }

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) FindByTokenTx(_ *gorm.DB, token uuid.UUID, movementType string) ([]model.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.ReservationToken != nil && *m.ReservationToken == token && m.Type == movementType {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMovementRepo) ListByProduct(_ context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ── OrderRepository stub ─────────────────────────────────────────────────────

type stubOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*model.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

func (r *stubOrderRepo) Create(_ context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrderID = o.ID
	}
	o.CreatedAt = time.Now()
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	return r.find(id)
}

func (r *stubOrderRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Order, error) {
	return r.find(id)
}

func (r *stubOrderRepo) find(id uuid.UUID) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, errStubNotFound
	}
	return cloneOrder(o), nil
}

func (r *stubOrderRepo) List(_ context.Context, filter dto.OrderFilter, storeID *uuid.UUID, clientID *uuid.UUID) ([]model.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Order
	for _, o := range r.orders {
		if storeID != nil && o.StoreID != *storeID {
			continue
		}
		if clientID != nil && o.ClientID != *clientID {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && string(o.Status) != filter.Status {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, from, to model.OrderStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return 0, nil
	}
	o.Status = to
	return 1, nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

func (r *stubOrderRepo) status(id uuid.UUID) model.OrderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id].Status
}

func cloneOrder(o *model.Order) *model.Order {
	cloned := *o
	cloned.Items = append([]model.OrderItem(nil), o.Items...)
	return &cloned
}

// ── InvoiceRepository stub ───────────────────────────────────────────────────

type stubInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*model.Invoice
	byNo     map[string]uuid.UUID
	byOrder  map[uuid.UUID]uuid.UUID

	// failCreates makes the next N CreateTx calls fail with the duplicate-key
	// error the unique invoice_no index would raise under contention.
	failCreates int
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{
		invoices: make(map[uuid.UUID]*model.Invoice),
		byNo:     make(map[string]uuid.UUID),
		byOrder:  make(map[uuid.UUID]uuid.UUID),
	}
}

var _ repository.InvoiceRepository = (*stubInvoiceRepo)(nil)

func (r *stubInvoiceRepo) CreateTx(_ *gorm.DB, inv *model.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreates > 0 {
		r.failCreates--
		return gorm.ErrDuplicatedKey
	}
	if _, exists := r.byNo[inv.InvoiceNo]; exists {
		return gorm.ErrDuplicatedKey
	}
	if inv.OrderID != nil {
		if _, exists := r.byOrder[*inv.OrderID]; exists {
			return gorm.ErrDuplicatedKey
		}
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	for i := range inv.Items {
		if inv.Items[i].ID == uuid.Nil {
			inv.Items[i].ID = uuid.New()
		}
		inv.Items[i].InvoiceID = inv.ID
	}
	inv.CreatedAt = time.Now()
	r.invoices[inv.ID] = cloneInvoice(inv)
	r.byNo[inv.InvoiceNo] = inv.ID
	if inv.OrderID != nil {
		r.byOrder[*inv.OrderID] = inv.ID
	}
	return nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, errStubNotFound
	}
	return cloneInvoice(inv), nil
}

func (r *stubInvoiceRepo) FindByOrderID(_ context.Context, orderID uuid.UUID) (*model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byOrder[orderID]
	if !ok {
		return nil, errStubNotFound
	}
	return cloneInvoice(r.invoices[id]), nil
}

func (r *stubInvoiceRepo) List(_ context.Context, filter dto.InvoiceFilter, storeID *uuid.UUID, clientID *uuid.UUID) ([]model.Invoice, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Invoice
	for _, inv := range r.invoices {
		if storeID != nil && inv.StoreID != *storeID {
			continue
		}
		if clientID != nil && inv.ClientID != *clientID {
			continue
		}
		if filter.PaymentStatus != "" && filter.PaymentStatus != "all" && string(inv.PaymentStatus) != filter.PaymentStatus {
			continue
		}
		out = append(out, *cloneInvoice(inv))
	}
	return out, int64(len(out)), nil
}

func (r *stubInvoiceRepo) NextSequenceTx(_ *gorm.DB) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var max int64
	for no := range r.byNo {
		n, err := strconv.ParseInt(strings.TrimLeft(no, "0"), 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}

func (r *stubInvoiceRepo) UpdatePaymentStatusTx(_ *gorm.DB, id uuid.UUID, version int64, status model.PaymentStatus, flagged bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok || inv.PaymentVersion != version {
		return 0, nil
	}
	inv.PaymentStatus = status
	inv.PaymentVersion++
	if flagged {
		inv.OverpaymentFlagged = true
	}
	return 1, nil
}

func (r *stubInvoiceRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return errStubNotFound
	}
	delete(r.byNo, inv.InvoiceNo)
	if inv.OrderID != nil {
		delete(r.byOrder, *inv.OrderID)
	}
	delete(r.invoices, id)
	return nil
}

func (r *stubInvoiceRepo) MarkOverdue(_ context.Context, asOf time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, inv := range r.invoices {
		unpaid := inv.PaymentStatus == model.PaymentPending || inv.PaymentStatus == model.PaymentPartial
		if unpaid && inv.DueDate.Before(asOf) {
			inv.PaymentStatus = model.PaymentOverdue
			inv.PaymentVersion++
			n++
		}
	}
	return n, nil
}

func (r *stubInvoiceRepo) DB() *gorm.DB { return nil }

func (r *stubInvoiceRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.invoices)
}

func cloneInvoice(inv *model.Invoice) *model.Invoice {
	cloned := *inv
	cloned.Items = append([]model.InvoiceItem(nil), inv.Items...)
	return &cloned
}

// ── PaymentRepository stub ───────────────────────────────────────────────────

type stubPaymentRepo struct {
	mu       sync.Mutex
	payments []model.Payment
}

func newStubPaymentRepo() *stubPaymentRepo { return &stubPaymentRepo{} }

var _ repository.PaymentRepository = (*stubPaymentRepo)(nil)

func (r *stubPaymentRepo) CreateTx(_ *gorm.DB, p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.payments = append(r.payments, *p)
	return nil
}

func (r *stubPaymentRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.payments {
		if r.payments[i].ID == id {
			r.payments = append(r.payments[:i], r.payments[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *stubPaymentRepo) SumForInvoiceTx(_ *gorm.DB, invoiceID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (r *stubPaymentRepo) List(_ context.Context, filter dto.PaymentFilter, storeID *uuid.UUID) ([]model.Payment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Payment
	for _, p := range r.payments {
		if storeID != nil && p.StoreID != *storeID {
			continue
		}
		if filter.InvoiceID != "" && p.InvoiceID.String() != filter.InvoiceID {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPaymentRepo) DB() *gorm.DB { return nil }

// ── ClientRepository stub ────────────────────────────────────────────────────

type stubClientRepo struct {
	clients map[uuid.UUID]*model.Client
	byUser  map[uuid.UUID]*model.Client
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{
		clients: make(map[uuid.UUID]*model.Client),
		byUser:  make(map[uuid.UUID]*model.Client),
	}
}

var _ repository.ClientRepository = (*stubClientRepo)(nil)

func (r *stubClientRepo) Create(_ context.Context, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cloned := *c
	r.clients[c.ID] = &cloned
	if c.UserID != nil {
		r.byUser[*c.UserID] = r.clients[c.ID]
	}
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, errStubNotFound
	}
	return c, nil
}

func (r *stubClientRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*model.Client, error) {
	c, ok := r.byUser[userID]
	if !ok {
		return nil, errStubNotFound
	}
	return c, nil
}

// ── Test fixture ─────────────────────────────────────────────────────────────

// fixture wires the whole order-to-cash pipeline over in-memory stubs.
type fixture struct {
	products  *stubProductRepo
	movements *stubMovementRepo
	orders    *stubOrderRepo
	invoices  *stubInvoiceRepo
	payments  *stubPaymentRepo
	clients   *stubClientRepo

	ledger     LedgerService
	orderSvc   OrderService
	invoiceSvc InvoiceService
	paymentSvc PaymentService
	productSvc ProductService

	storeID  uuid.UUID
	clientID uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		products:  newStubProductRepo(),
		movements: newStubMovementRepo(),
		orders:    newStubOrderRepo(),
		invoices:  newStubInvoiceRepo(),
		payments:  newStubPaymentRepo(),
		clients:   newStubClientRepo(),
		storeID:   uuid.New(),
	}

	f.ledger = NewLedgerService(f.products, f.movements)
	f.invoiceSvc = NewInvoiceService(f.invoices, f.orders, f.products, f.ledger, 30)
	f.orderSvc = NewOrderService(f.orders, f.products, f.clients, f.invoiceSvc)
	f.paymentSvc = NewPaymentService(
		f.payments, f.invoices, f.clients, nil,
		decimal.NewFromFloat(0.01), OverpaymentReject)
	f.productSvc = NewProductService(f.products, f.movements)

	client := &model.Client{Name: "Acme Retail", StoreID: f.storeID}
	_ = f.clients.Create(context.Background(), client)
	f.clientID = client.ID

	return f
}

func (f *fixture) addProduct(name string, price string, qty int) *model.Product {
	p := &model.Product{
		Name:     name,
		SKU:      name + "-sku",
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
		StoreID:  f.storeID,
		IsActive: true,
	}
	_ = f.products.Create(context.Background(), p)
	return p
}

// addAcceptedOrder seeds an order already in Accepted state, ready to invoice.
func (f *fixture) addAcceptedOrder(items ...model.OrderItem) *model.Order {
	o := &model.Order{
		ClientID: f.clientID,
		StoreID:  f.storeID,
		Status:   model.OrderAccepted,
		Items:    items,
	}
	_ = f.orders.Create(context.Background(), o)
	return o
}

// storeScope is the single-store scope of the fixture's store.
func (f *fixture) storeScope() scope.Scope { return scope.Scope{StoreID: f.storeID} }

func mustParseUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}
