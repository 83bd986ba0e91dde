package parser

import (
	"context"
	"errors"
	"testing"

	"SigPull/internal/domain/models"
)

type fakeDirectory struct {
	matches []models.SymbolMatch
	err     error
	queries []string
}

func (f *fakeDirectory) Search(_ context.Context, q string) ([]models.SymbolMatch, error) {
	f.queries = append(f.queries, q)
	return f.matches, f.err
}

func TestResolveTokenTable(t *testing.T) {
	r := NewResolver(nil)
	ch := models.ChannelContext{Type: models.ChannelGeneric}

	cases := map[string]string{
		"au":        "AUDUSD",
		"eu":        "EURUSD",
		"cable":     "GBPUSD",
		"nas":       "NAS100USD",
		"spx":       "SPX500USD",
		"sp500":     "SPX500USD",
		"us30":      "US30USD",
		"dow":       "US30USD",
		"gold":      "XAUUSD",
		"btc":       "BTCUSDT",
		"usdcad":    "USDCAD",
		"SOLUSDT":   "SOLUSDT",
		"AAPL.NYSE": "AAPL.NYSE",
		"tsla.NAS":  "TSLA.NAS",
	}
	for token, want := range cases {
		res := r.ResolveToken(token, ch)
		if res.State != Resolved || res.Symbol != want {
			t.Fatalf("%q: got %+v, want %s", token, res, want)
		}
	}

	if res := r.ResolveToken("hello", ch); res.State != Unresolved {
		t.Fatalf("unknown token resolved to %+v", res)
	}
}

func TestResolveTokenCryptoChannelHint(t *testing.T) {
	r := NewResolver(nil)
	ch := models.ChannelContext{Type: models.ChannelCrypto}
	res := r.ResolveToken("pepe", ch)
	if res.State != Resolved || res.Symbol != "PEPEUSDT" {
		t.Fatalf("got %+v", res)
	}
}

func TestResolveEquitySingleHit(t *testing.T) {
	dir := &fakeDirectory{matches: []models.SymbolMatch{{Symbol: "AAPL", Description: "Apple Inc"}}}
	r := NewResolver(dir)
	res := r.ResolveEquity(context.Background(), "apple")
	if res.State != Resolved || res.Symbol != "AAPL" {
		t.Fatalf("got %+v", res)
	}
}

func TestResolveEquityExactMatchWins(t *testing.T) {
	dir := &fakeDirectory{matches: []models.SymbolMatch{
		{Symbol: "TSLA", Description: "Tesla Inc"},
		{Symbol: "TSLL", Description: "Direxion TSLA Bull"},
	}}
	r := NewResolver(dir)
	res := r.ResolveEquity(context.Background(), "tsla")
	if res.State != Resolved || res.Symbol != "TSLA" {
		t.Fatalf("got %+v", res)
	}
}

func TestResolveEquityAmbiguous(t *testing.T) {
	dir := &fakeDirectory{matches: []models.SymbolMatch{
		{Symbol: "GOOG", Description: "Alphabet Class C"},
		{Symbol: "GOOGL", Description: "Alphabet Class A"},
	}}
	r := NewResolver(dir)
	res := r.ResolveEquity(context.Background(), "alphabet")
	if res.State != Ambiguous || len(res.Candidates) != 2 {
		t.Fatalf("got %+v", res)
	}
}

func TestResolveEquityFailureDegrades(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("boom")}
	r := NewResolver(dir)
	if res := r.ResolveEquity(context.Background(), "apple"); res.State != Unresolved {
		t.Fatalf("got %+v", res)
	}
	r = NewResolver(nil)
	if res := r.ResolveEquity(context.Background(), "apple"); res.State != Unresolved {
		t.Fatalf("nil directory: got %+v", res)
	}
}

func TestResolveOil(t *testing.T) {
	if got := ResolveOil([]string{"oil", "ic", "long"}); got != "XTIUSD" {
		t.Fatalf("got %s", got)
	}
	if got := ResolveOil([]string{"oil", "long"}); got != "USOILSPOT" {
		t.Fatalf("got %s", got)
	}
}
