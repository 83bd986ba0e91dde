package usecase

import (
	"context"
	"encoding/json"
	"time"

	"SigPull/internal/domain/models"
	domrepo "SigPull/internal/domain/repository"
	"SigPull/internal/parser"
	"SigPull/internal/service/ratelimit"
	"SigPull/pkg/logger"
)

// ReparsePayload is the deferred-parse job body queued when the AI
// fallback budget for a channel is exhausted.
type ReparsePayload struct {
	MessageID string `json:"message_id"`
	Channel   string `json:"channel"`
	Text      string `json:"text"`
	Event     string `json:"event"`
}

// Deferrer queues a message for a later AI re-parse.
type Deferrer interface {
	Enqueue(ctx context.Context, msgType string, payload interface{}) error
}

// ChatMessageHandler consumes the intake topic: new messages are parsed
// and processed, edits re-parsed, deletions cancelled. The AI fallback is
// budgeted per channel with a token bucket; messages over budget are
// pushed to the deferred queue instead of being dropped.
type ChatMessageHandler struct {
	topic     string
	parser    *parser.Parser
	processor *SignalProcessor
	limiter   *ratelimit.Limiter
	deferrer  Deferrer
	metrics   domrepo.Metrics
	log       *logger.Logger

	aiCapacity  float64
	aiPerSecond float64
}

func NewChatMessageHandler(
	topic string,
	p *parser.Parser,
	processor *SignalProcessor,
	limiter *ratelimit.Limiter,
	deferrer Deferrer,
	metrics domrepo.Metrics,
	log *logger.Logger,
	aiCapacity, aiPerSecond float64,
) *ChatMessageHandler {
	if aiCapacity <= 0 {
		aiCapacity = 5
	}
	if aiPerSecond <= 0 {
		aiPerSecond = 0.5
	}
	return &ChatMessageHandler{
		topic:       topic,
		parser:      p,
		processor:   processor,
		limiter:     limiter,
		deferrer:    deferrer,
		metrics:     metrics,
		log:         log,
		aiCapacity:  aiCapacity,
		aiPerSecond: aiPerSecond,
	}
}

func (h *ChatMessageHandler) Topic() string { return h.topic }

func (h *ChatMessageHandler) Handle(ctx context.Context, b []byte) error {
	var m models.ChatMessage
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("intake_unmarshal")
		return err
	}
	if m.MessageID == "" {
		h.metrics.RecordError("intake_no_id")
		return nil
	}

	start := time.Now()
	defer func() {
		h.metrics.RecordLatency("handle_message", time.Since(start).Seconds())
	}()

	switch m.Event {
	case models.MessageEventDelete:
		return h.processor.Cancel(ctx, m.MessageID)
	case models.MessageEventEdit:
		return h.handleEdit(ctx, m)
	default:
		return h.handleNew(ctx, m)
	}
}

func (h *ChatMessageHandler) handleNew(ctx context.Context, m models.ChatMessage) error {
	sig := h.parse(ctx, m)
	if sig == nil {
		return nil
	}
	h.log.Info("signal parsed",
		logger.String("message_id", m.MessageID),
		logger.String("channel", m.Channel),
		logger.String("instrument", sig.Instrument),
		logger.String("method", sig.ParseMethod))
	return h.processor.Process(ctx, m.MessageID, sig)
}

// handleEdit re-parses the edited text. An edit that no longer parses
// voids the original signal.
func (h *ChatMessageHandler) handleEdit(ctx context.Context, m models.ChatMessage) error {
	sig := h.parse(ctx, m)
	if sig == nil {
		return h.processor.Cancel(ctx, m.MessageID)
	}
	return h.processor.Update(ctx, m.MessageID, sig)
}

// parse runs the cascade with the AI budget applied. A message the
// deterministic pass cannot handle is either sent to AI now or queued
// for the deferred worker when the channel is over budget.
func (h *ChatMessageHandler) parse(ctx context.Context, m models.ChatMessage) *models.ParsedSignal {
	sig, eligible := h.parser.ParseDeterministic(ctx, m.Text, m.Channel)
	if sig != nil || !eligible {
		return sig
	}

	if h.limiter != nil && !h.limiter.Allow("ai:"+m.Channel, h.aiCapacity, h.aiPerSecond) {
		if h.deferrer != nil {
			payload := ReparsePayload{MessageID: m.MessageID, Channel: m.Channel, Text: m.Text, Event: m.Event}
			if err := h.deferrer.Enqueue(ctx, ReparseJobType, payload); err != nil {
				h.metrics.RecordError("defer_enqueue")
				h.log.Warn("defer enqueue failed", logger.String("message_id", m.MessageID), logger.Error(err))
			} else {
				h.metrics.RecordReject("ai_deferred")
			}
		}
		return nil
	}
	return h.parser.ParseWithAI(ctx, m.Text, m.Channel)
}
