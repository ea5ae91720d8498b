package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"ledgersync/internal/brain"
	"ledgersync/internal/store"
)

// statementRecord is the wire shape of one statement line in the batch.
type statementRecord struct {
	ClientName      string  `json:"client_name"`
	AccountName     string  `json:"account_name"`
	TransactionDate *string `json:"transaction_date"`
	Payee           string  `json:"payee"`
	Particulars     string  `json:"particulars"`
	Received        float64 `json:"received"`
	FileName        string  `json:"file_name"`
}

// StatementIngestor reads ingested bank statement rows for a tenant and
// forwards them as one batch.
type StatementIngestor struct {
	statements store.StatementStore
	brain      Processor
	log        *slog.Logger
}

// NewStatementIngestor creates the statement job body.
func NewStatementIngestor(statements store.StatementStore, processor Processor, log *slog.Logger) *StatementIngestor {
	return &StatementIngestor{statements: statements, brain: processor, log: log}
}

// Ingest runs one statement pass for the job's tenant.
func (s *StatementIngestor) Ingest(ctx context.Context, job store.ScheduledJob) error {
	rows, err := s.statements.ListStatements(ctx, job.TenantID)
	if err != nil {
		return fmt.Errorf("failed to fetch statements: %w", err)
	}

	if len(rows) == 0 {
		s.log.Info("no statements to process", "tenant_id", job.TenantID, "brain_id", job.BrainID)
		return nil
	}

	data := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		rec := statementRecord{
			ClientName:  row.ClientName,
			AccountName: row.AccountName,
			Payee:       row.Payee,
			Particulars: row.Particulars,
			Received:    row.Received,
			FileName:    row.FileName,
		}
		if row.TransactionDate != nil {
			d := row.TransactionDate.Format("2006-01-02T15:04:05Z07:00")
			rec.TransactionDate = &d
		}
		encoded, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal statement: %w", err)
		}
		data = append(data, encoded)
	}

	_, err = s.brain.Process(ctx, brain.Batch{
		Data:         data,
		BrainID:      job.BrainID,
		DocumentType: "statement",
	})
	if err != nil {
		return err
	}

	s.log.Info("statements processed", "tenant_id", job.TenantID, "statements", len(rows))
	return nil
}
