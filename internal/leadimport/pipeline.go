package leadimport

import (
	"context"
	"fmt"
	"io"

	"github.com/skillang/leadg-crm/internal/domain"
	"github.com/skillang/leadg-crm/internal/pkg/logger"
)

// BatchCreator submits one batch of surviving leads. Implemented by the
// postgres repository in-process and by remote CRM clients elsewhere.
// The whole batch goes in one call, no chunking and no retry; whatever
// the creator reports is the final word.
type BatchCreator interface {
	CreateBulk(ctx context.Context, leads []domain.Lead, forceCreate bool) (domain.BulkResult, error)
}

// Summary aggregates what happened to one uploaded file. Per-row
// validation failures surface only as the dropped count.
type Summary struct {
	FileName   string            `json:"file_name"`
	TotalRows  int               `json:"total_rows"`
	ValidRows  int               `json:"valid_rows"`
	Dropped    int               `json:"dropped"`
	Duplicates int               `json:"duplicates"`
	Result     domain.BulkResult `json:"result"`
}

// Pipeline runs the full import: precondition check, parse, per-row
// validation, dedup, one-shot submission.
type Pipeline struct {
	creator BatchCreator
}

func NewPipeline(creator BatchCreator) *Pipeline {
	return &Pipeline{creator: creator}
}

// Run processes one uploaded CSV. Precondition and structural header
// failures abort before any row is submitted; everything after that is
// aggregate counting.
func (p *Pipeline) Run(ctx context.Context, name string, size int64, r io.Reader, forceCreate bool) (*Summary, error) {
	if err := ValidateFile(name, size); err != nil {
		return nil, err
	}

	rows, err := Parse(r)
	if err != nil {
		return nil, err
	}

	summary := &Summary{FileName: name, TotalRows: len(rows)}

	leads := make([]domain.Lead, 0, len(rows))
	for _, row := range rows {
		lead, ok := ValidateLead(row)
		if !ok {
			summary.Dropped++
			continue
		}
		leads = append(leads, lead)
	}

	leads, removed := Deduplicate(leads)
	summary.Duplicates = removed
	summary.ValidRows = len(leads)

	if len(leads) == 0 {
		return summary, fmt.Errorf("no valid leads found in %s", name)
	}

	result, err := p.creator.CreateBulk(ctx, leads, forceCreate)
	if err != nil {
		return summary, fmt.Errorf("bulk create: %w", err)
	}
	summary.Result = result

	logger.Info("bulk import complete",
		"file", name,
		"total_rows", summary.TotalRows,
		"valid", summary.ValidRows,
		"dropped", summary.Dropped,
		"duplicates", summary.Duplicates,
		"created", result.Created,
		"skipped_existing", result.SkippedExisting,
	)
	return summary, nil
}
