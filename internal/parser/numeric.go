package parser

import (
	"math"
	"strconv"
	"strings"
)

// ISO codes that form tradable forex pairs.
var currencyCodes = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "AUD": true,
	"NZD": true, "CAD": true, "CHF": true, "SGD": true, "SEK": true,
	"NOK": true, "MXN": true, "ZAR": true, "TRY": true, "PLN": true,
	"HUF": true, "CZK": true, "DKK": true, "HKD": true, "CNH": true,
}

// isForexPair reports whether sym is a six-letter currency pair.
func isForexPair(sym string) bool {
	if len(sym) != 6 {
		return false
	}
	return currencyCodes[sym[:3]] && currencyCodes[sym[3:]]
}

func isJPYPair(sym string) bool {
	return isForexPair(sym) && strings.HasSuffix(sym, "JPY")
}

// plausible quote bands per decimal convention
const (
	fxBandLo  = 0.05
	fxBandHi  = 50.0 // exotics like USDMXN quote around 20
	jpyBandLo = 40.0
	jpyBandHi = 500.0
)

// normalizeQuote rescales forex quotes typed as unscaled integers
// ("64570" meaning 0.64570) by the instrument's decimal convention:
// five decimals for majors, three for JPY-quoted pairs. Metals, indices,
// oil, crypto and stocks are returned untouched. Deterministic: the
// largest power of ten whose quotient lands in the plausible band wins;
// values that already carry a decimal point are trusted as typed.
func normalizeQuote(instrument string, n numTok) float64 {
	if !isForexPair(instrument) {
		return n.value
	}
	if strings.ContainsRune(n.raw, '.') {
		return n.value
	}

	decimals, lo, hi := 5, fxBandLo, fxBandHi
	if isJPYPair(instrument) {
		decimals, lo, hi = 3, jpyBandLo, jpyBandHi
	}
	if n.value >= lo && n.value < hi {
		return n.value
	}
	for d := decimals; d >= 1; d-- {
		scaled := n.value / math.Pow10(d)
		if scaled >= lo && scaled < hi {
			return scaled
		}
	}
	return n.value
}

// normalizeValue applies the quote heuristic to a bare float whose typed
// form is gone. Whole numbers are rescale candidates; anything with a
// fractional part is trusted as typed.
func normalizeValue(instrument string, v float64) float64 {
	return normalizeQuote(instrument, numTok{value: v, raw: strconv.FormatFloat(v, 'f', -1, 64)})
}

// normalizeAll rescales a slice of numeric tokens for one instrument.
func normalizeAll(instrument string, nums []numTok) []float64 {
	out := make([]float64, len(nums))
	for i, n := range nums {
		out[i] = normalizeQuote(instrument, n)
	}
	return out
}
