// Package ingest contains the job bodies: fetch-and-forward passes that
// pull accounting data for a tenant and ship it downstream as one batch.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"ledgersync/internal/brain"
	"ledgersync/internal/provider"
	"ledgersync/internal/store"
	"ledgersync/internal/token"
)

// InvoiceSource pages through the provider's invoice listing.
type InvoiceSource interface {
	Invoices(ctx context.Context, userID, tenantID string, page int) (*provider.InvoicePage, error)
}

// Processor forwards one batch to the downstream service.
type Processor interface {
	Process(ctx context.Context, batch brain.Batch) (json.RawMessage, error)
}

// InvoiceIngestor fetches every invoice available for a tenant and
// forwards them as one batch. Fetch-and-forward is idempotent from the
// provider's point of view, so a failed run is simply re-fetched from
// scratch on the next firing.
type InvoiceIngestor struct {
	source InvoiceSource
	brain  Processor
	log    *slog.Logger
}

// NewInvoiceIngestor creates the invoice job body.
func NewInvoiceIngestor(source InvoiceSource, processor Processor, log *slog.Logger) *InvoiceIngestor {
	return &InvoiceIngestor{source: source, brain: processor, log: log}
}

// Ingest runs one invoice pass for the job's tenant.
func (i *InvoiceIngestor) Ingest(ctx context.Context, job store.ScheduledJob) error {
	var all []json.RawMessage

	page := 1
	for {
		p, err := i.source.Invoices(ctx, job.UserID, job.TenantID, page)
		if err != nil {
			if errors.Is(err, token.ErrNoToken) {
				// No credential means skip this run, not fail the runner.
				i.log.Warn("no credential available, skipping invoice run",
					"user_id", job.UserID, "tenant_id", job.TenantID)
				return nil
			}
			return err
		}

		all = append(all, p.Invoices...)
		i.log.Info("fetched invoice page",
			"tenant_id", job.TenantID, "page", p.Page, "page_count", p.PageCount, "invoices", len(p.Invoices))

		if p.Page >= p.PageCount {
			break
		}
		page = p.Page + 1
	}

	if len(all) == 0 {
		i.log.Info("no invoices to process", "tenant_id", job.TenantID, "brain_id", job.BrainID)
		return nil
	}

	_, err := i.brain.Process(ctx, brain.Batch{
		Data:         all,
		BrainID:      job.BrainID,
		DocumentType: "invoice",
	})
	if err != nil {
		return err
	}

	i.log.Info("invoices processed", "tenant_id", job.TenantID, "invoices", len(all))
	return nil
}
