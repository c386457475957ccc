package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"paypilot/internal/infra"

	"github.com/rs/zerolog/log"
)

// PaymentNotification is the job payload sent to QueueNotify after the
// reconciler commits a payment. Delivery is best-effort: the payment has
// already been persisted by the time this job exists.
type PaymentNotification struct {
	InvoiceNo   string `json:"invoice_no"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	ClientName  string `json:"client_name,omitempty"`
	ClientEmail string `json:"client_email,omitempty"`
}

// NotifyWorker delivers payment notifications over SMTP.
type NotifyWorker struct {
	mailer *infra.Mailer
}

func NewNotifyWorker(mailer *infra.Mailer) *NotifyWorker {
	return &NotifyWorker{mailer: mailer}
}

func (w *NotifyWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload PaymentNotification
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("notify_worker: invalid payload")
		return nil // malformed jobs are not retryable
	}
	if payload.ClientEmail == "" {
		log.Debug().Str("invoice_no", payload.InvoiceNo).Msg("notify_worker: no client email, skipping")
		return nil
	}

	subject := fmt.Sprintf("Payment received for invoice %s", payload.InvoiceNo)
	body := fmt.Sprintf(
		"Dear %s,\n\nWe received a payment of %s against invoice %s.\nThe invoice is now %s.\n\nThank you.",
		payload.ClientName, payload.Amount, payload.InvoiceNo, payload.Status)

	if err := w.mailer.Send(payload.ClientEmail, subject, body); err != nil {
		log.Error().Err(err).Str("to", payload.ClientEmail).Msg("notify_worker: failed to send email")
		return err
	}
	log.Info().Str("to", payload.ClientEmail).Str("invoice_no", payload.InvoiceNo).
		Msg("notify_worker: payment notification sent")
	return nil
}
