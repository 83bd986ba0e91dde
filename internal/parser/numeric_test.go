package parser

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNormalizeIntegerMajor(t *testing.T) {
	got := normalizeQuote("AUDUSD", numTok{value: 64570, raw: "64570"})
	if !approx(got, 0.64570) {
		t.Fatalf("got %v, want 0.64570", got)
	}
}

func TestNormalizeIntegerJPY(t *testing.T) {
	got := normalizeQuote("USDJPY", numTok{value: 157350, raw: "157350"})
	if !approx(got, 157.350) {
		t.Fatalf("got %v, want 157.350", got)
	}
}

func TestNormalizeDecimalUntouched(t *testing.T) {
	got := normalizeQuote("EURUSD", numTok{value: 1.0850, raw: "1.0850"})
	if !approx(got, 1.0850) {
		t.Fatalf("decimal quote rescaled to %v", got)
	}
}

func TestNormalizeNonForexUntouched(t *testing.T) {
	for _, sym := range []string{"XAUUSD", "NAS100USD", "BTCUSDT", "USOILSPOT"} {
		got := normalizeQuote(sym, numTok{value: 23450, raw: "23450"})
		if !approx(got, 23450) {
			t.Fatalf("%s quote rescaled to %v", sym, got)
		}
	}
}

func TestNormalizeInBandInteger(t *testing.T) {
	// already plausible, no rescale
	got := normalizeQuote("USDMXN", numTok{value: 20, raw: "20"})
	if !approx(got, 20) {
		t.Fatalf("in-band integer rescaled to %v", got)
	}
}
