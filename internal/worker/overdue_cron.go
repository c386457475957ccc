package worker

// overdue_cron.go
// Background goroutine that periodically flips unpaid invoices past their due
// date to Overdue. The reconciler never derives Overdue itself — a payment on
// an overdue invoice re-derives Partial/Paid normally.

import (
	"context"
	"time"

	"paypilot/internal/repository"

	"github.com/rs/zerolog/log"
)

// StartOverdueSweep launches the sweep goroutine. It respects the context for
// graceful shutdown.
func StartOverdueSweep(ctx context.Context, invoices repository.InvoiceRepository, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("overdue_sweep: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("overdue_sweep: shutting down")
				return
			case <-ticker.C:
				sweep(ctx, invoices)
			}
		}
	}()
}

func sweep(ctx context.Context, invoices repository.InvoiceRepository) {
	count, err := invoices.MarkOverdue(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("overdue_sweep: failed to mark invoices")
		return
	}
	if count > 0 {
		log.Info().Int64("count", count).Msg("overdue_sweep: invoices marked overdue")
	}
}
