package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"SigPull/internal/domain/models"
	drepo "SigPull/internal/domain/repository"
	"SigPull/pkg/logger"
)

const maxAITimeout = 5 * time.Second

// AIParser is the last resort of the cascade. It asks the completion
// model to extract the signal as JSON, then re-validates the reply with
// the same rules the deterministic strategies answer to. Every failure
// mode, transport error, timeout, malformed JSON, implausible values,
// collapses to a nil signal. There are no retries.
type AIParser struct {
	completer drepo.Completer
	timeout   time.Duration
	log       *logger.Logger
}

func NewAIParser(completer drepo.Completer, timeout time.Duration, log *logger.Logger) *AIParser {
	if timeout <= 0 || timeout > maxAITimeout {
		timeout = maxAITimeout
	}
	return &AIParser{completer: completer, timeout: timeout, log: log}
}

// aiReply is the JSON shape the model is instructed to return.
type aiReply struct {
	Instrument string    `json:"instrument"`
	Direction  string    `json:"direction"`
	Limits     []float64 `json:"limits"`
	StopLoss   float64   `json:"stop_loss"`
	ExpiryType string    `json:"expiry_type"`
	Keywords   []string  `json:"keywords"`
}

func buildPrompt(text string, ch models.ChannelContext) string {
	var b strings.Builder
	b.WriteString("You extract trading signals from chat messages.\n")
	b.WriteString("Reply with a single JSON object and nothing else:\n")
	b.WriteString(`{"instrument":"","direction":"long|short","limits":[],"stop_loss":0,"expiry_type":"day_end|week_end|month_end|no_expiry","keywords":[]}`)
	b.WriteString("\nRules:\n")
	b.WriteString("- Correct obvious typos in instrument names.\n")
	b.WriteString("- Instruments are canonical symbols (EURUSD, XAUUSD, NAS100USD, BTCUSDT, AAPL.NYSE).\n")
	b.WriteString("- Reply with the literal word null if the message is not a signal, mentions futures, or you are not confident.\n")
	fmt.Fprintf(&b, "Channel: %s (type %s)\n", ch.Name, ch.Type)
	if ch.DefaultInstrument != "" {
		fmt.Fprintf(&b, "Channel default instrument: %s\n", ch.DefaultInstrument)
	}
	if ch.DefaultExpiry != "" {
		fmt.Fprintf(&b, "Channel default expiry: %s\n", ch.DefaultExpiry)
	}
	fmt.Fprintf(&b, "Message:\n%s\n", text)
	return b.String()
}

// extractJSON pulls the first top-level JSON object out of a model reply
// that may be wrapped in prose or code fences.
func extractJSON(reply string) (string, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return reply[start : end+1], true
}

// Parse runs the fallback. A nil return means no signal; it never errors.
func (p *AIParser) Parse(ctx context.Context, text string, ch models.ChannelContext) *models.ParsedSignal {
	if p == nil || p.completer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	reply, err := p.completer.Complete(ctx, buildPrompt(text, ch))
	if err != nil {
		p.log.Warn("ai completion failed", logger.String("channel", ch.Name), logger.Error(err))
		return nil
	}
	trimmed := strings.TrimSpace(reply)
	if strings.EqualFold(trimmed, "null") {
		return nil
	}

	raw, ok := extractJSON(trimmed)
	if !ok {
		p.log.Warn("ai reply had no JSON object", logger.String("channel", ch.Name))
		return nil
	}
	var r aiReply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		p.log.Warn("ai reply unmarshal failed", logger.Error(err))
		return nil
	}

	s := &models.ParsedSignal{
		Instrument:  strings.ToUpper(strings.TrimSpace(r.Instrument)),
		Direction:   models.Direction(strings.ToLower(strings.TrimSpace(r.Direction))),
		Limits:      r.Limits,
		StopLoss:    r.StopLoss,
		ExpiryType:  models.ExpiryType(r.ExpiryType),
		Keywords:    r.Keywords,
		RawText:     text,
		ParseMethod: "ai",
		ChannelName: ch.Name,
		Scalp:       ch.Scalp,
	}
	if !models.ValidExpiry(string(s.ExpiryType)) {
		if ch.DefaultExpiry != "" {
			s.ExpiryType = ch.DefaultExpiry
		} else {
			s.ExpiryType = models.ExpiryDayEnd
		}
	}
	if s.HasKeyword("scalp") {
		s.Scalp = true
	}
	// the model may echo unscaled integer quotes from the raw text
	for i, l := range s.Limits {
		s.Limits[i] = normalizeValue(s.Instrument, l)
	}
	s.StopLoss = normalizeValue(s.Instrument, s.StopLoss)
	if err := ValidateSignal(s); err != nil {
		p.log.Warn("ai signal rejected", logger.String("instrument", s.Instrument), logger.Error(err))
		return nil
	}
	return s
}
