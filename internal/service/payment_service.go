package service

import (
	"context"
	"errors"
	"time"

	"paypilot/internal/apierror"
	"paypilot/internal/dto"
	"paypilot/internal/model"
	"paypilot/internal/repository"
	"paypilot/internal/scope"
	"paypilot/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OverpaymentMode selects what the reconciler does with a payment that pushes
// the cumulative total past the invoice amount plus tolerance.
type OverpaymentMode string

const (
	OverpaymentReject OverpaymentMode = "reject"
	OverpaymentFlag   OverpaymentMode = "flag"
)

// applyMaxAttempts bounds the retry loop around the settlement transaction
// (invoice payment version lost to a concurrent writer).
const applyMaxAttempts = 3

// PaymentService is the reconciler: it applies a payment against an invoice
// and is the only writer of the invoice's payment status.
type PaymentService interface {
	Apply(ctx context.Context, sc scope.Scope, req dto.RecordPaymentRequest) (*dto.ApplyPaymentResponse, error)
	List(ctx context.Context, sc scope.Scope, filter dto.PaymentFilter) (*dto.PaymentListResponse, error)
}

type paymentService struct {
	payments   repository.PaymentRepository
	invoices   repository.InvoiceRepository
	clients    repository.ClientRepository
	dispatcher *worker.Dispatcher
	tolerance  decimal.Decimal
	mode       OverpaymentMode
}

func NewPaymentService(
	payments repository.PaymentRepository,
	invoices repository.InvoiceRepository,
	clients repository.ClientRepository,
	dispatcher *worker.Dispatcher,
	tolerance decimal.Decimal,
	mode OverpaymentMode,
) PaymentService {
	if mode != OverpaymentFlag {
		mode = OverpaymentReject
	}
	return &paymentService{
		payments:   payments,
		invoices:   invoices,
		clients:    clients,
		dispatcher: dispatcher,
		tolerance:  tolerance,
		mode:       mode,
	}
}

// Apply records a payment and re-derives the invoice's settlement status.
// Each attempt reads the invoice fresh and the status write is conditional on
// the payment version that read observed, so two concurrent payments cannot
// both pass the overpayment guard off the same prior sum — the loser retries
// against the updated figures, bounded.
func (s *paymentService) Apply(ctx context.Context, sc scope.Scope, req dto.RecordPaymentRequest) (*dto.ApplyPaymentResponse, error) {
	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		return nil, apierror.Validation("invalid invoice id")
	}
	method := model.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		return nil, apierror.Validation("unknown payment method: " + req.PaymentMethod)
	}
	if !req.Amount.IsPositive() {
		return nil, apierror.Validation("payment amount must be positive")
	}

	for attempt := 1; attempt <= applyMaxAttempts; attempt++ {
		inv, err := s.invoices.FindByID(ctx, invoiceID)
		if err != nil {
			return nil, apierror.ErrNotFound
		}
		if err := sc.Check(inv.StoreID); err != nil {
			return nil, err
		}

		var (
			payment   *model.Payment
			newStatus model.PaymentStatus
		)
		txErr := runTx(ctx, s.payments.DB(), func(tx *gorm.DB) error {
			paid, err := s.payments.SumForInvoiceTx(tx, inv.ID)
			if err != nil {
				return err
			}
			cumulative := paid.Add(req.Amount)

			flagged := false
			if cumulative.GreaterThan(inv.TotalAmount.Add(s.tolerance)) {
				if s.mode == OverpaymentReject {
					return &apierror.OverpaymentError{
						InvoiceNo:   inv.InvoiceNo,
						Outstanding: inv.TotalAmount.Sub(paid),
						Attempted:   req.Amount,
					}
				}
				flagged = true
			}

			payment = &model.Payment{
				InvoiceID: inv.ID,
				ClientID:  inv.ClientID,
				StoreID:   inv.StoreID,
				Amount:    req.Amount,
				Method:    method,
				Reference: req.PaymentID,
				Flagged:   flagged,
			}
			if err := s.payments.CreateTx(tx, payment); err != nil {
				return err
			}

			newStatus = derivePaymentStatus(cumulative, inv.TotalAmount)
			rows, err := s.invoices.UpdatePaymentStatusTx(tx, inv.ID, inv.PaymentVersion, newStatus, flagged)
			if err != nil {
				return err
			}
			if rows == 0 {
				// Lost the version check: a concurrent payment or the overdue
				// sweep settled first. Undo the insert so the retry starts
				// from a clean read; under a real transaction the rollback
				// covers the same ground.
				_ = s.payments.DeleteTx(tx, payment.ID)
				return apierror.ErrConflict
			}
			return nil
		})
		if errors.Is(txErr, apierror.ErrConflict) {
			continue
		}
		if txErr != nil {
			return nil, txErr
		}

		inv.PaymentStatus = newStatus
		s.notify(ctx, inv, payment)

		return &dto.ApplyPaymentResponse{
			Payment: paymentToResponse(payment),
			Invoice: *invoiceToResponse(inv),
		}, nil
	}
	return nil, apierror.ErrConflict
}

// derivePaymentStatus maps the cumulative paid amount to the settlement state.
// Overdue is never derived here: it is applied by the sweep and any payment
// re-derives the forward states.
func derivePaymentStatus(paid, total decimal.Decimal) model.PaymentStatus {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return model.PaymentPending
	case paid.LessThan(total):
		return model.PaymentPartial
	default:
		return model.PaymentPaid
	}
}

// notify enqueues the payment-received notification. Best-effort: failure is
// logged, never surfaced — the payment is already committed.
func (s *paymentService) notify(ctx context.Context, inv *model.Invoice, p *model.Payment) {
	if s.dispatcher == nil {
		return
	}
	payload := worker.PaymentNotification{
		InvoiceNo: inv.InvoiceNo,
		Amount:    p.Amount.StringFixed(2),
		Status:    string(inv.PaymentStatus),
	}
	if client, err := s.clients.FindByID(ctx, inv.ClientID); err == nil {
		payload.ClientName = client.Name
		if client.Email != nil {
			payload.ClientEmail = *client.Email
		}
	}
	if err := s.dispatcher.EnqueuePaymentNotification(ctx, payload); err != nil {
		log.Error().Err(err).Str("invoice_no", inv.InvoiceNo).Msg("failed to enqueue payment notification")
	}
}

func (s *paymentService) List(ctx context.Context, sc scope.Scope, filter dto.PaymentFilter) (*dto.PaymentListResponse, error) {
	var storeID *uuid.UUID
	if !sc.All {
		id := sc.StoreID
		storeID = &id
	}
	payments, total, err := s.payments.List(ctx, filter, storeID)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		data = append(data, paymentToResponse(&payments[i]))
	}
	return &dto.PaymentListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func paymentToResponse(p *model.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:        p.ID.String(),
		InvoiceID: p.InvoiceID.String(),
		ClientID:  p.ClientID.String(),
		Amount:    p.Amount,
		Method:    string(p.Method),
		Reference: p.Reference,
		Flagged:   p.Flagged,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
