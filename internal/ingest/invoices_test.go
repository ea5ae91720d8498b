package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgersync/internal/brain"
	"ledgersync/internal/provider"
	"ledgersync/internal/store"
	"ledgersync/internal/token"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeInvoiceSource struct {
	pages map[int]*provider.InvoicePage
	err   error
	calls []int
}

func (f *fakeInvoiceSource) Invoices(ctx context.Context, userID, tenantID string, page int) (*provider.InvoicePage, error) {
	f.calls = append(f.calls, page)
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.pages[page]
	if !ok {
		return nil, fmt.Errorf("unexpected page %d", page)
	}
	return p, nil
}

type fakeProcessor struct {
	batches []brain.Batch
	err     error
}

func (f *fakeProcessor) Process(ctx context.Context, batch brain.Batch) (json.RawMessage, error) {
	f.batches = append(f.batches, batch)
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{}`), nil
}

func invoiceJob() store.ScheduledJob {
	return store.ScheduledJob{
		ID:       "job-1",
		UserID:   "user-1",
		TenantID: "tenant-1",
		BrainID:  "brain_one",
		JobType:  store.JobTypeInvoice,
	}
}

func rawInvoices(ids ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		out = append(out, json.RawMessage(fmt.Sprintf(`{"InvoiceID":%q}`, id)))
	}
	return out
}

func TestInvoiceIngest_SinglePage(t *testing.T) {
	src := &fakeInvoiceSource{pages: map[int]*provider.InvoicePage{
		1: {Invoices: rawInvoices("a", "b"), Page: 1, PageCount: 1},
	}}
	proc := &fakeProcessor{}
	ing := NewInvoiceIngestor(src, proc, testLogger())

	require.NoError(t, ing.Ingest(context.Background(), invoiceJob()))

	require.Len(t, proc.batches, 1)
	batch := proc.batches[0]
	assert.Equal(t, "brain_one", batch.BrainID)
	assert.Equal(t, "invoice", batch.DocumentType)
	assert.Len(t, batch.Data, 2)
}

func TestInvoiceIngest_WalksAllPages(t *testing.T) {
	src := &fakeInvoiceSource{pages: map[int]*provider.InvoicePage{
		1: {Invoices: rawInvoices("a"), Page: 1, PageCount: 3},
		2: {Invoices: rawInvoices("b"), Page: 2, PageCount: 3},
		3: {Invoices: rawInvoices("c"), Page: 3, PageCount: 3},
	}}
	proc := &fakeProcessor{}
	ing := NewInvoiceIngestor(src, proc, testLogger())

	require.NoError(t, ing.Ingest(context.Background(), invoiceJob()))

	assert.Equal(t, []int{1, 2, 3}, src.calls)
	require.Len(t, proc.batches, 1)
	assert.Len(t, proc.batches[0].Data, 3)
}

func TestInvoiceIngest_NoTokenSkipsRun(t *testing.T) {
	src := &fakeInvoiceSource{err: token.ErrNoToken}
	proc := &fakeProcessor{}
	ing := NewInvoiceIngestor(src, proc, testLogger())

	assert.NoError(t, ing.Ingest(context.Background(), invoiceJob()))
	assert.Empty(t, proc.batches)
}

func TestInvoiceIngest_SourceErrorSurfaces(t *testing.T) {
	src := &fakeInvoiceSource{err: errors.New("provider down")}
	proc := &fakeProcessor{}
	ing := NewInvoiceIngestor(src, proc, testLogger())

	assert.ErrorContains(t, ing.Ingest(context.Background(), invoiceJob()), "provider down")
	assert.Empty(t, proc.batches)
}

func TestInvoiceIngest_EmptyPageSkipsForward(t *testing.T) {
	src := &fakeInvoiceSource{pages: map[int]*provider.InvoicePage{
		1: {Page: 1, PageCount: 1},
	}}
	proc := &fakeProcessor{}
	ing := NewInvoiceIngestor(src, proc, testLogger())

	require.NoError(t, ing.Ingest(context.Background(), invoiceJob()))
	assert.Empty(t, proc.batches)
}

func TestInvoiceIngest_ProcessErrorSurfaces(t *testing.T) {
	src := &fakeInvoiceSource{pages: map[int]*provider.InvoicePage{
		1: {Invoices: rawInvoices("a"), Page: 1, PageCount: 1},
	}}
	proc := &fakeProcessor{err: errors.New("brain rejected batch")}
	ing := NewInvoiceIngestor(src, proc, testLogger())

	assert.ErrorContains(t, ing.Ingest(context.Background(), invoiceJob()), "brain rejected batch")
}
