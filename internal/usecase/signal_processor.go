package usecase

import (
	"context"
	"fmt"
	"time"

	"SigPull/internal/domain/models"
	domrepo "SigPull/internal/domain/repository"
)

// SignalProcessor is the write side of a successful parse: persist the
// signal and fan it out. Persistence failure aborts the publish so
// downstream consumers never see a signal the store does not have.
type SignalProcessor struct {
	store     domrepo.SignalStore
	publisher domrepo.SignalPublisher
	metrics   domrepo.Metrics
}

func NewSignalProcessor(store domrepo.SignalStore, publisher domrepo.SignalPublisher, metrics domrepo.Metrics) *SignalProcessor {
	return &SignalProcessor{store: store, publisher: publisher, metrics: metrics}
}

func (p *SignalProcessor) Process(ctx context.Context, messageID string, sig *models.ParsedSignal) error {
	if sig == nil {
		return fmt.Errorf("nil signal")
	}

	start := time.Now()
	if err := p.store.Save(ctx, messageID, sig); err != nil {
		p.metrics.RecordError("store_save")
		return fmt.Errorf("process signal: %w", err)
	}
	p.metrics.RecordLatency("store_save", time.Since(start).Seconds())

	if err := p.publisher.Publish(ctx, sig); err != nil {
		p.metrics.RecordError("publish")
		return fmt.Errorf("process signal: %w", err)
	}
	return nil
}

// Update replaces the stored signal for an edited message and republishes.
func (p *SignalProcessor) Update(ctx context.Context, messageID string, sig *models.ParsedSignal) error {
	if sig == nil {
		return fmt.Errorf("nil signal")
	}
	if err := p.store.UpdateByMessageID(ctx, messageID, sig); err != nil {
		p.metrics.RecordError("store_update")
		return fmt.Errorf("update signal: %w", err)
	}
	if err := p.publisher.Publish(ctx, sig); err != nil {
		p.metrics.RecordError("publish")
		return fmt.Errorf("update signal: %w", err)
	}
	return nil
}

// Cancel voids the signal attached to a deleted message. Unknown message
// ids are a no-op.
func (p *SignalProcessor) Cancel(ctx context.Context, messageID string) error {
	if err := p.store.CancelByMessageID(ctx, messageID); err != nil {
		p.metrics.RecordError("store_cancel")
		return fmt.Errorf("cancel signal: %w", err)
	}
	return nil
}
