package jobs

import (
	"context"
	"log"
	"time"
)

// EventPruner deletes analytics events older than a cutoff.
type EventPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionProcessor prunes raw analytics events past the configured
// retention window. Summaries are computed on demand, so dropping old raw
// events only narrows the largest answerable window.
type RetentionProcessor struct {
	pruner        EventPruner
	retentionDays int
}

func NewRetentionProcessor(pruner EventPruner, retentionDays int) *RetentionProcessor {
	return &RetentionProcessor{pruner: pruner, retentionDays: retentionDays}
}

// Run implements Processor.
func (p *RetentionProcessor) Run(ctx context.Context) error {
	if p.retentionDays <= 0 {
		return nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -p.retentionDays)
	removed, err := p.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		log.Printf("retention: pruned %d analytics events older than %s", removed, cutoff.Format("2006-01-02"))
	}
	return nil
}
