// Package parser extracts structured trade signals from free-text chat
// messages. The entry point is Parser.ParseSignal; everything else in the
// package is the deterministic machinery behind it.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"SigPull/internal/domain/models"
)

var (
	// runs of 2+ hyphens act as separators ("1.36917-----1.36869",
	// "vth---hot"); a single hyphen inside a word is kept ("semi-swing")
	hyphenRunRe = regexp.MustCompile(`-{2,}`)
	numRe       = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// numTok is a numeric token with its raw spelling preserved so the scale
// normalizer can tell typed decimals from unscaled integers.
type numTok struct {
	value float64
	raw   string
	index int // position in the token stream
}

// tokenize splits a message into tokens, case preserved. Punctuation is
// trimmed; hyphen runs and numeric-adjacent single hyphens split.
func tokenize(text string) []string {
	text = hyphenRunRe.ReplaceAllString(text, " ")
	fields := strings.Fields(text)

	var out []string
	for _, f := range fields {
		f = strings.Trim(f, ",;:!?()[]{}\"'`*")
		if f == "" {
			continue
		}
		// split "64570-64520" but keep "semi-swing"
		if i := strings.IndexByte(f, '-'); i > 0 && i < len(f)-1 &&
			isDigit(f[i-1]) && isDigit(f[i+1]) {
			for _, part := range strings.Split(f, "-") {
				if part != "" {
					out = append(out, part)
				}
			}
			continue
		}
		out = append(out, f)
	}
	return out
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// numbers extracts numeric tokens in order of appearance.
func numbers(tokens []string) []numTok {
	var out []numTok
	for i, t := range tokens {
		if !numRe.MatchString(t) {
			continue
		}
		v, err := strconv.ParseFloat(t, 64)
		if err != nil || v <= 0 {
			continue
		}
		out = append(out, numTok{value: v, raw: t, index: i})
	}
	return out
}

// extraction is everything parseCore can pull out of a message without
// knowing the instrument: entry levels, stop, direction, expiry, tags.
type extraction struct {
	tokens   []string
	limits   []numTok
	stop     *numTok
	dir      models.Direction
	dirOK    bool
	expiry   models.ExpiryType // empty when no code in text
	keywords []string
}

// parseCore runs the shared sub-algorithms over a message. Instrument
// resolution and scale normalization stay with the individual strategies.
func parseCore(text string) *extraction {
	tokens := tokenize(text)
	ex := &extraction{tokens: tokens}

	ex.dir, ex.dirOK = detectDirection(tokens)
	ex.expiry = detectExpiry(tokens)
	ex.keywords = extractKeywords(text)

	stopIdx := findStopKeyword(tokens)
	nums := numbers(tokens)
	for i := range nums {
		n := nums[i]
		switch {
		case stopIdx < 0 || n.index < stopIdx:
			ex.limits = append(ex.limits, n)
		case ex.stop == nil:
			ex.stop = &nums[i]
		}
	}
	// without a stop marker the message has no usable stop loss
	if stopIdx < 0 {
		ex.stop = nil
	}
	return ex
}

// findStopKeyword returns the index of the first stop-loss marker token.
func findStopKeyword(tokens []string) int {
	for i, t := range tokens {
		l := strings.ToLower(t)
		if l == "sl" || l == "stoploss" || strings.HasPrefix(l, "stop") {
			return i
		}
	}
	return -1
}

// detectDirection maps long/buy and short/sell tokens to a direction.
// Conflicting or absent tokens fail; the caller must not guess.
func detectDirection(tokens []string) (models.Direction, bool) {
	var long, short bool
	for _, t := range tokens {
		switch strings.ToLower(t) {
		case "long", "buy", "longs":
			long = true
		case "short", "sell", "shorts":
			short = true
		}
	}
	if long == short {
		return "", false
	}
	if long {
		return models.DirectionLong, true
	}
	return models.DirectionShort, true
}

// expiry codes, first match in token order wins
var expiryCodes = map[string]models.ExpiryType{
	"vth":   models.ExpiryWeekEnd,
	"vtwe":  models.ExpiryWeekEnd,
	"vtai":  models.ExpiryNone,
	"alien": models.ExpiryNone,
	"vtd":   models.ExpiryDayEnd,
	"vtme":  models.ExpiryMonthEnd,
}

func detectExpiry(tokens []string) models.ExpiryType {
	for _, t := range tokens {
		if e, ok := expiryCodes[strings.ToLower(t)]; ok {
			return e
		}
	}
	return ""
}

// tag vocabulary, longest first so "semi-swing" wins over "swing"
var tagVocabulary = []string{"semi-swing", "intraday", "position", "scalp", "swing", "hot"}

// extractKeywords collects trade tags. Matching never consumes tokens the
// numeric or direction scans need.
func extractKeywords(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, tag := range tagVocabulary {
		if !strings.Contains(lower, tag) {
			continue
		}
		if tag == "swing" && strings.Contains(lower, "semi-swing") {
			// already covered by the longer tag
			continue
		}
		out = append(out, tag)
	}
	return out
}
