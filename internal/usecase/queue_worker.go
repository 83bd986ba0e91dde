package usecase

import (
	"context"
	"fmt"

	"SigPull/internal/domain/models"
	"SigPull/internal/parser"
	"SigPull/pkg/logger"
	"SigPull/pkg/queue"
)

// ReparseJobType identifies deferred AI re-parse messages on the queue.
const ReparseJobType = "signal.reparse"

// ReparseJob drains the deferred queue: messages that were over the AI
// budget when they arrived get their fallback parse here, where the
// queue's own pacing provides the rate limiting.
type ReparseJob struct {
	parser    *parser.Parser
	processor *SignalProcessor
	log       *logger.Logger
}

func NewReparseJob(p *parser.Parser, processor *SignalProcessor, log *logger.Logger) *ReparseJob {
	return &ReparseJob{parser: p, processor: processor, log: log}
}

func (j *ReparseJob) Name() string { return "signal-reparse" }

func (j *ReparseJob) Type() string { return ReparseJobType }

func (j *ReparseJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ReparsePayload](payload)
	if err != nil {
		return fmt.Errorf("reparse payload: %w", err)
	}

	sig := j.parser.ParseWithAI(ctx, p.Text, p.Channel)
	if sig == nil {
		j.log.Debug("deferred parse produced nothing", logger.String("message_id", p.MessageID))
		return nil
	}

	if p.Event == models.MessageEventEdit {
		return j.processor.Update(ctx, p.MessageID, sig)
	}
	return j.processor.Process(ctx, p.MessageID, sig)
}
