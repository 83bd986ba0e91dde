package parser

import (
	"context"
	"errors"
	"strings"

	"SigPull/internal/domain/models"
)

// ErrAmbiguousInstrument is returned by a strategy when several
// instruments plausibly match the text. The orchestrator escalates
// straight to the AI fallback instead of letting later strategies guess.
var ErrAmbiguousInstrument = errors.New("ambiguous instrument resolution")

// Strategy is one deterministic extraction attempt. A strategy that
// cannot confidently extract instrument, direction, at least one limit
// and a stop loss returns (nil, nil); partial results are not supported.
type Strategy interface {
	Name() string
	TryParse(ctx context.Context, text string, ch models.ChannelContext) (*models.ParsedSignal, error)
}

// buildSignal assembles a ParsedSignal from a core extraction and a
// resolved instrument, applying scale normalization and channel defaults.
// Returns nil when any required piece is missing.
func buildSignal(text string, ex *extraction, instrument string, ch models.ChannelContext, method string) *models.ParsedSignal {
	if instrument == "" || !ex.dirOK || ex.stop == nil || len(ex.limits) == 0 {
		return nil
	}

	expiry := ex.expiry
	if expiry == "" {
		expiry = ch.DefaultExpiry
	}
	if expiry == "" {
		expiry = models.ExpiryDayEnd
	}

	s := &models.ParsedSignal{
		Instrument:  instrument,
		Direction:   ex.dir,
		Limits:      normalizeAll(instrument, ex.limits),
		StopLoss:    normalizeQuote(instrument, *ex.stop),
		ExpiryType:  expiry,
		Keywords:    ex.keywords,
		RawText:     text,
		ParseMethod: method,
		ChannelName: ch.Name,
		Scalp:       ch.Scalp,
	}
	if s.HasKeyword("scalp") {
		s.Scalp = true
	}
	return s
}

// reserved tokens no strategy should mistake for an instrument
func isReservedToken(lower string) bool {
	switch lower {
	case "long", "short", "buy", "sell", "longs", "shorts", "entry", "sl", "stoploss", "tp", "ic", "at":
		return true
	}
	if strings.HasPrefix(lower, "stop") {
		return true
	}
	if _, ok := expiryCodes[lower]; ok {
		return true
	}
	for _, tag := range tagVocabulary {
		if lower == tag {
			return true
		}
	}
	return false
}
