package parser

import (
	"fmt"
	"strings"

	"SigPull/internal/domain/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// trading keywords for the pre-filter; a message needs one of these AND a
// numeric token before any strategy runs
var signalKeywords = []string{"stop", "sl", "long", "short", "buy", "sell", "entry"}

// IsPotentialSignal reports whether text could plausibly be a trade
// signal: at least one number and at least one trading keyword. Either
// alone is not enough.
func IsPotentialSignal(text string) bool {
	tokens := tokenize(text)
	if len(numbers(tokens)) == 0 {
		return false
	}
	for _, t := range tokens {
		l := strings.ToLower(t)
		for _, kw := range signalKeywords {
			if l == kw || (kw != "sl" && strings.HasPrefix(l, kw)) {
				return true
			}
		}
	}
	return false
}

// non-tradable and futures instruments that short-circuit parsing
var excludedTokens = map[string]bool{
	"dxy":     true,
	"nq":      true,
	"es":      true,
	"ym":      true,
	"futures": true,
	"future":  true,
}

// ShouldExclude reports whether text references an instrument we refuse
// to parse (futures contracts, dollar index). Runs before any strategy.
func ShouldExclude(text string) bool {
	for _, t := range tokenize(text) {
		if excludedTokens[strings.ToLower(t)] {
			return true
		}
	}
	return false
}

// ValidateSignal enforces the ParsedSignal invariants: structural checks
// via validator tags plus the cross-field rule that the stop loss sits on
// the losing side of every limit.
func ValidateSignal(s *models.ParsedSignal) error {
	if s == nil {
		return fmt.Errorf("nil signal")
	}
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("signal invariants: %w", err)
	}

	lo, hi := s.Limits[0], s.Limits[0]
	for _, l := range s.Limits[1:] {
		if l < lo {
			lo = l
		}
		if l > hi {
			hi = l
		}
	}
	switch s.Direction {
	case models.DirectionLong:
		if s.StopLoss >= lo {
			return fmt.Errorf("long stop %.5f not below min limit %.5f", s.StopLoss, lo)
		}
	case models.DirectionShort:
		if s.StopLoss <= hi {
			return fmt.Errorf("short stop %.5f not above max limit %.5f", s.StopLoss, hi)
		}
	}
	return nil
}
