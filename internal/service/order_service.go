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

// Principal is the authenticated caller as seen by the services: identity,
// role, and (for portal users) the client record their orders belong to.
type Principal struct {
	UserID uuid.UUID
	Role   model.Role
}

// OrderService owns the order lifecycle. Completed is reachable only through
// the invoice factory; every other transition goes through Transition with a
// compare-and-swap on the current status.
type OrderService interface {
	Create(ctx context.Context, sc scope.Scope, principal Principal, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, sc scope.Scope, principal Principal, id uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, sc scope.Scope, principal Principal, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	Transition(ctx context.Context, sc scope.Scope, principal Principal, id uuid.UUID, target model.OrderStatus) (*dto.OrderResponse, error)
}

type orderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	clients  repository.ClientRepository
	invoices InvoiceService
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	clients repository.ClientRepository,
	invoices InvoiceService,
) OrderService {
	return &orderService{orders: orders, products: products, clients: clients, invoices: invoices}
}

func (s *orderService) Create(ctx context.Context, sc scope.Scope, principal Principal, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	client, err := s.resolveClient(ctx, principal, req.Client)
	if err != nil {
		return nil, err
	}
	if err := sc.Check(client.StoreID); err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(req.Items))
	items := make([]model.OrderItem, 0, len(req.Items))
	subtotal := decimal.Zero
	for _, it := range req.Items {
		pid, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, apierror.Validation("invalid product id: " + it.ProductID)
		}
		if seen[pid] {
			return nil, apierror.Validation("duplicate product in order: " + it.ProductID)
		}
		seen[pid] = true

		p, err := s.products.FindByID(ctx, pid)
		if err != nil {
			return nil, apierror.Validation("product not found: " + it.ProductID)
		}
		if !p.IsActive {
			return nil, apierror.Validation(fmt.Sprintf("product %s is inactive", p.Name))
		}
		if p.StoreID != client.StoreID {
			return nil, apierror.Validation(fmt.Sprintf("product %s belongs to a different store", p.Name))
		}

		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		items = append(items, model.OrderItem{ProductID: pid, Quantity: it.Quantity})
	}

	// Order totals are a display hint at current prices; the authoritative
	// figures are computed by the invoice factory at fulfillment time.
	order := &model.Order{
		ClientID:    client.ID,
		StoreID:     client.StoreID,
		Status:      model.OrderPending,
		Subtotal:    subtotal.Round(2),
		Tax:         decimal.Zero,
		TotalAmount: subtotal.Round(2),
		Notes:       req.Notes,
		Items:       items,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return orderToResponse(order), nil
}

func (s *orderService) Get(ctx context.Context, sc scope.Scope, principal Principal, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.loadScoped(ctx, sc, principal, id)
	if err != nil {
		return nil, err
	}
	return orderToResponse(order), nil
}

func (s *orderService) List(ctx context.Context, sc scope.Scope, principal Principal, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Status != "" && filter.Status != "all" && !model.OrderStatus(filter.Status).Valid() {
		return nil, apierror.Validation("unknown order status: " + filter.Status)
	}

	var storeID *uuid.UUID
	if !sc.All {
		id := sc.StoreID
		storeID = &id
	}
	var clientID *uuid.UUID
	if principal.Role == model.RoleClient {
		client, err := s.clients.FindByUserID(ctx, principal.UserID)
		if err != nil {
			return nil, apierror.ErrForbidden
		}
		clientID = &client.ID
	}

	orders, total, err := s.orders.List(ctx, filter, storeID, clientID)
	if err != nil {
		return nil, err
	}
	data := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		data = append(data, *orderToResponse(&orders[i]))
	}
	return &dto.OrderListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *orderService) Transition(ctx context.Context, sc scope.Scope, principal Principal, id uuid.UUID, target model.OrderStatus) (*dto.OrderResponse, error) {
	if !target.Valid() {
		return nil, apierror.Validation("unknown order status: " + string(target))
	}

	order, err := s.loadScoped(ctx, sc, principal, id)
	if err != nil {
		return nil, err
	}

	// Completed requires a backing invoice; only the invoice factory may
	// perform that transition, via the repository CAS inside its transaction.
	if target == model.OrderCompleted {
		return nil, &apierror.InvalidTransitionError{From: string(order.Status), To: string(target)}
	}
	if !order.Status.CanTransition(target) {
		return nil, &apierror.InvalidTransitionError{From: string(order.Status), To: string(target)}
	}

	// A portal client may only cancel their own still-pending order; operator
	// roles drive accept/reject/cancel.
	if principal.Role == model.RoleClient {
		if target != model.OrderCancelled || order.Status != model.OrderPending {
			return nil, apierror.ErrForbidden
		}
	} else if !principal.Role.Operator() {
		return nil, apierror.ErrForbidden
	}

	// Cancelling an order whose invoice already exists must first run invoice
	// cancellation so the consumed stock is restored.
	if target == model.OrderCancelled {
		if inv, err := s.invoices.FindByOrderID(ctx, order.ID); err == nil && inv != nil {
			if err := s.invoices.Delete(ctx, sc, inv.ID); err != nil && !errors.Is(err, apierror.ErrNotFound) {
				return nil, err
			}
		}
	}

	err = runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		rows, err := s.orders.UpdateStatusTx(tx, order.ID, order.Status, target)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Lost the CAS: another writer transitioned the order first.
			return apierror.ErrConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = target
	order.UpdatedAt = time.Now()
	return orderToResponse(order), nil
}

// loadScoped fetches the order and enforces scope (Forbidden, never a filter)
// plus client ownership for portal users.
func (s *orderService) loadScoped(ctx context.Context, sc scope.Scope, principal Principal, id uuid.UUID) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.ErrNotFound
	}
	if err := sc.Check(order.StoreID); err != nil {
		return nil, err
	}
	if principal.Role == model.RoleClient {
		client, err := s.clients.FindByUserID(ctx, principal.UserID)
		if err != nil || client.ID != order.ClientID {
			return nil, apierror.ErrForbidden
		}
	}
	return order, nil
}

func (s *orderService) resolveClient(ctx context.Context, principal Principal, clientID string) (*model.Client, error) {
	if principal.Role == model.RoleClient {
		client, err := s.clients.FindByUserID(ctx, principal.UserID)
		if err != nil {
			return nil, apierror.ErrForbidden
		}
		return client, nil
	}
	if clientID == "" {
		return nil, apierror.Validation("client is required")
	}
	cid, err := uuid.Parse(clientID)
	if err != nil {
		return nil, apierror.Validation("invalid client id")
	}
	client, err := s.clients.FindByID(ctx, cid)
	if err != nil {
		return nil, apierror.ErrNotFound
	}
	return client, nil
}

func orderToResponse(o *model.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		name := ""
		if it.Product != nil {
			name = it.Product.Name
		}
		items = append(items, dto.OrderItemResponse{
			ProductID: it.ProductID.String(),
			Product:   name,
			Quantity:  it.Quantity,
		})
	}
	return &dto.OrderResponse{
		ID:          o.ID.String(),
		ClientID:    o.ClientID.String(),
		StoreID:     o.StoreID.String(),
		Status:      string(o.Status),
		Items:       items,
		Subtotal:    o.Subtotal,
		Tax:         o.Tax,
		TotalAmount: o.TotalAmount,
		Notes:       o.Notes,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
}
