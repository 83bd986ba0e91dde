package parser

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"SigPull/internal/domain/models"
	drepo "SigPull/internal/domain/repository"
	"SigPull/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

type fakeCompleter struct {
	reply string
	err   error
	delay time.Duration
	calls int
}

func (f *fakeCompleter) Complete(ctx context.Context, _ string) (string, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func newTestParser(t *testing.T, channels map[string]models.ChannelSettings, dir drepo.SymbolDirectory, ai *AIParser) *Parser {
	t.Helper()
	return New(NewContextProvider(channels), NewResolver(dir), ai, testLogger(t), nil)
}

func TestParseUSDCADLadder(t *testing.T) {
	p := newTestParser(t, nil, nil, nil)
	text := "1.36917-----1.36869----1.36846----1.36819-----1.36803----1.36726 usdcad long vth---hot Stops 1.36636"
	sig := p.ParseSignal(context.Background(), text, "forex-exotics")
	if sig == nil {
		t.Fatalf("expected signal")
	}
	if sig.Instrument != "USDCAD" || sig.Direction != models.DirectionLong {
		t.Fatalf("got %s %s", sig.Instrument, sig.Direction)
	}
	want := []float64{1.36917, 1.36869, 1.36846, 1.36819, 1.36803, 1.36726}
	if !reflect.DeepEqual(sig.Limits, want) {
		t.Fatalf("limits %v, want %v", sig.Limits, want)
	}
	if sig.StopLoss != 1.36636 {
		t.Fatalf("stop %v", sig.StopLoss)
	}
	if sig.ExpiryType != models.ExpiryWeekEnd {
		t.Fatalf("expiry %v", sig.ExpiryType)
	}
	if !reflect.DeepEqual(sig.Keywords, []string{"hot"}) {
		t.Fatalf("keywords %v", sig.Keywords)
	}
	if sig.ParseMethod != "forex" {
		t.Fatalf("method %s", sig.ParseMethod)
	}
	if sig.RawText != text {
		t.Fatalf("raw text not preserved")
	}
}

func TestParseAbbreviationRescale(t *testing.T) {
	p := newTestParser(t, nil, nil, nil)
	sig := p.ParseSignal(context.Background(), "au short 64570 64520 64480 stops 64650", "forex-signals")
	if sig == nil {
		t.Fatalf("expected signal")
	}
	if sig.Instrument != "AUDUSD" || sig.Direction != models.DirectionShort {
		t.Fatalf("got %s %s", sig.Instrument, sig.Direction)
	}
	want := []float64{0.64570, 0.64520, 0.64480}
	for i, l := range sig.Limits {
		if math.Abs(l-want[i]) > 1e-9 {
			t.Fatalf("limits %v, want %v", sig.Limits, want)
		}
	}
	if math.Abs(sig.StopLoss-0.64650) > 1e-9 {
		t.Fatalf("stop %v", sig.StopLoss)
	}
	if sig.ExpiryType != models.ExpiryDayEnd {
		t.Fatalf("expiry %v", sig.ExpiryType)
	}
}

func TestParseGoldChannelDefaults(t *testing.T) {
	p := newTestParser(t, nil, nil, nil)
	sig := p.ParseSignal(context.Background(), "buy 2650 2645 2640 sl 2635 vtai", "gold-trades")
	if sig == nil {
		t.Fatalf("expected signal")
	}
	if sig.Instrument != "XAUUSD" {
		t.Fatalf("instrument %s", sig.Instrument)
	}
	if sig.ExpiryType != models.ExpiryNone {
		t.Fatalf("expiry %v", sig.ExpiryType)
	}
	if sig.ParseMethod != "metals" {
		t.Fatalf("method %s", sig.ParseMethod)
	}
	// gold quotes are never rescaled
	if !reflect.DeepEqual(sig.Limits, []float64{2650, 2645, 2640}) {
		t.Fatalf("limits %v", sig.Limits)
	}
}

func TestParseOilICBranch(t *testing.T) {
	p := newTestParser(t, nil, nil, nil)
	sig := p.ParseSignal(context.Background(), "oil ic short 75.50 75.25 75.00 stop 76.00", "oil-room")
	if sig == nil || sig.Instrument != "XTIUSD" {
		t.Fatalf("got %+v", sig)
	}
	sig = p.ParseSignal(context.Background(), "oil long 72.00 71.75 71.50 sl 71.00", "oil-room")
	if sig == nil || sig.Instrument != "USOILSPOT" {
		t.Fatalf("got %+v", sig)
	}
}

func TestParseOilStopOnWrongSideRejected(t *testing.T) {
	// a short with its stop below every limit is never a signal
	p := newTestParser(t, nil, nil, nil)
	if sig := p.ParseSignal(context.Background(), "oil ic short 75.50 75.25 75.00 stop 74.50", "oil-room"); sig != nil {
		t.Fatalf("expected nil, got %+v", sig)
	}
}

func TestParseCryptoRoot(t *testing.T) {
	p := newTestParser(t, nil, nil, nil)
	sig := p.ParseSignal(context.Background(), "btc long 64000 63500 sl 63000", "crypto-signals")
	if sig == nil {
		t.Fatalf("expected signal")
	}
	if sig.Instrument != "BTCUSDT" || sig.ParseMethod != "crypto" {
		t.Fatalf("got %+v", sig)
	}
	if !reflect.DeepEqual(sig.Limits, []float64{64000, 63500}) {
		t.Fatalf("limits %v", sig.Limits)
	}
	if sig.StopLoss != 63000 {
		t.Fatalf("stop %v", sig.StopLoss)
	}
}

func TestParseCryptoVerbatimPair(t *testing.T) {
	// a full <ROOT>USDT token needs no crypto channel
	p := newTestParser(t, nil, nil, nil)
	sig := p.ParseSignal(context.Background(), "SOLUSDT short 150 145 sl 160", "general-chat")
	if sig == nil || sig.Instrument != "SOLUSDT" || sig.ParseMethod != "crypto" {
		t.Fatalf("got %+v", sig)
	}
}

func TestParseCryptoChannelUnknownCoin(t *testing.T) {
	p := newTestParser(t, nil, nil, nil)
	sig := p.ParseSignal(context.Background(), "pepe long 0.000012 sl 0.000010", "crypto-alts")
	if sig == nil || sig.Instrument != "PEPEUSDT" || sig.ParseMethod != "crypto" {
		t.Fatalf("got %+v", sig)
	}
}

func TestParseOTCallChannelDefault(t *testing.T) {
	channels := map[string]models.ChannelSettings{
		"ot-trade-floor": {DefaultInstrument: "US30USD"},
	}
	p := newTestParser(t, channels, nil, nil)
	sig := p.ParseSignal(context.Background(), "ot call long 39500 39450 sl 39300", "ot-trade-floor")
	if sig == nil {
		t.Fatalf("expected signal")
	}
	if sig.Instrument != "US30USD" || sig.ParseMethod != "ot_call" {
		t.Fatalf("got %+v", sig)
	}
	if !reflect.DeepEqual(sig.Limits, []float64{39500, 39450}) {
		t.Fatalf("limits %v", sig.Limits)
	}

	// without the label or an ot-trade channel the format never applies
	if sig := p.ParseSignal(context.Background(), "long 39500 39450 sl 39300", "general-chat"); sig != nil {
		t.Fatalf("expected nil, got %+v", sig)
	}
}

func TestParseOTCallUnlabelledOnOTChannel(t *testing.T) {
	channels := map[string]models.ChannelSettings{
		"ot-trade-floor": {DefaultInstrument: "US30USD"},
	}
	p := newTestParser(t, channels, nil, nil)
	sig := p.ParseSignal(context.Background(), "short 39700 39750 sl 39900", "ot-trade-floor")
	if sig == nil || sig.Instrument != "US30USD" || sig.ParseMethod != "ot_call" {
		t.Fatalf("got %+v", sig)
	}
}

func TestParseExclusions(t *testing.T) {
	p := newTestParser(t, nil, nil, nil)
	for _, text := range []string{
		"dxy short 104.5 sl 105.2",
		"nq long 15000 sl 14900",
		"es futures short 4500 sl 4550",
	} {
		if sig := p.ParseSignal(context.Background(), text, "indices"); sig != nil {
			t.Fatalf("%q: expected nil, got %+v", text, sig)
		}
	}
}

func TestParseNonSignalChatter(t *testing.T) {
	p := newTestParser(t, nil, nil, nil)
	for _, text := range []string{
		"good morning everyone",
		"that was a great long term play", // keyword without numbers
		"price closed at 1.0850",          // numbers without keywords... "closed" is not a keyword
	} {
		if sig := p.ParseSignal(context.Background(), text, "forex-signals"); sig != nil {
			t.Fatalf("%q: expected nil, got %+v", text, sig)
		}
	}
}

func TestParseIdempotent(t *testing.T) {
	p := newTestParser(t, nil, nil, nil)
	text := "eu long 1.0850 1.0790 sl 1.0700 vtd scalp"
	a := p.ParseSignal(context.Background(), text, "forex-signals")
	b := p.ParseSignal(context.Background(), text, "forex-signals")
	if a == nil || b == nil {
		t.Fatalf("expected signals")
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("repeat parse differs: %+v vs %+v", a, b)
	}
	if !a.Scalp {
		t.Fatalf("scalp keyword not applied")
	}
}

func TestParseChannelSettings(t *testing.T) {
	channels := map[string]models.ChannelSettings{
		"vip-scalps": {DefaultInstrument: "EURUSD", DefaultExpiry: "week_end", Scalp: true},
	}
	p := newTestParser(t, channels, nil, nil)
	sig := p.ParseSignal(context.Background(), "long 1.0850 sl 1.0790", "vip-scalps")
	if sig == nil {
		t.Fatalf("expected signal")
	}
	if sig.Instrument != "EURUSD" || sig.ExpiryType != models.ExpiryWeekEnd || !sig.Scalp {
		t.Fatalf("got %+v", sig)
	}
}

func TestParseStocksAmbiguousEscalatesToAI(t *testing.T) {
	dir := &fakeDirectory{matches: []models.SymbolMatch{
		{Symbol: "GOOG", Description: "Alphabet Class C"},
		{Symbol: "GOOGL", Description: "Alphabet Class A"},
	}}
	fc := &fakeCompleter{reply: `{"instrument":"GOOGL","direction":"long","limits":[170.5],"stop_loss":168.0,"expiry_type":"day_end","keywords":[]}`}
	ai := NewAIParser(fc, time.Second, testLogger(t))
	p := newTestParser(t, nil, dir, ai)

	sig := p.ParseSignal(context.Background(), "alphabet long 170.5 sl 168.0", "stock-alerts")
	if sig == nil {
		t.Fatalf("expected AI fallback signal")
	}
	if sig.Instrument != "GOOGL" || sig.ParseMethod != "ai" {
		t.Fatalf("got %+v", sig)
	}
	if fc.calls != 1 {
		t.Fatalf("completer called %d times", fc.calls)
	}
}

func TestParseStockTickerSuffix(t *testing.T) {
	p := newTestParser(t, nil, nil, nil)
	sig := p.ParseSignal(context.Background(), "AAPL.NYSE long 225.10 sl 221.00", "general-chat")
	if sig == nil || sig.Instrument != "AAPL.NYSE" || sig.ParseMethod != "stocks" {
		t.Fatalf("got %+v", sig)
	}
}

func TestAIFallbackRejectsBadReplies(t *testing.T) {
	log := testLogger(t)
	ch := models.ChannelContext{Name: "misc", Type: models.ChannelGeneric}
	cases := []*fakeCompleter{
		{reply: "null"},
		{reply: "i could not find a signal here"},
		{reply: `{"instrument":"EURUSD","direction":"up","limits":[1.08],"stop_loss":1.07}`}, // bad direction
		{reply: `{"instrument":"EURUSD","direction":"long","limits":[],"stop_loss":1.07}`},   // no limits
		{err: errors.New("rate limited")},
	}
	for i, fc := range cases {
		ai := NewAIParser(fc, time.Second, log)
		if sig := ai.Parse(context.Background(), "something 1.08 long", ch); sig != nil {
			t.Fatalf("case %d: expected nil, got %+v", i, sig)
		}
	}
}

func TestAIFallbackTimeout(t *testing.T) {
	fc := &fakeCompleter{reply: "{}", delay: 200 * time.Millisecond}
	ai := NewAIParser(fc, 20*time.Millisecond, testLogger(t))
	ch := models.ChannelContext{Name: "misc", Type: models.ChannelGeneric}
	start := time.Now()
	if sig := ai.Parse(context.Background(), "eurusd long 1.08 sl 1.07", ch); sig != nil {
		t.Fatalf("expected nil on timeout")
	}
	if time.Since(start) > 150*time.Millisecond {
		t.Fatalf("timeout not enforced")
	}
}

func TestAIFallbackRescalesIntegerQuotes(t *testing.T) {
	fc := &fakeCompleter{reply: `{"instrument":"AUDUSD","direction":"short","limits":[64570,64520],"stop_loss":64650,"expiry_type":"day_end"}`}
	ai := NewAIParser(fc, time.Second, testLogger(t))
	ch := models.ChannelContext{Name: "misc", Type: models.ChannelGeneric}
	sig := ai.Parse(context.Background(), "au short 64570 64520 stops 64650", ch)
	if sig == nil {
		t.Fatalf("expected signal")
	}
	want := []float64{0.64570, 0.64520}
	for i, l := range sig.Limits {
		if math.Abs(l-want[i]) > 1e-9 {
			t.Fatalf("limits %v, want %v", sig.Limits, want)
		}
	}
	if math.Abs(sig.StopLoss-0.64650) > 1e-9 {
		t.Fatalf("stop %v", sig.StopLoss)
	}
}

func TestAIFallbackFencedJSON(t *testing.T) {
	fc := &fakeCompleter{reply: "```json\n{\"instrument\":\"EURUSD\",\"direction\":\"short\",\"limits\":[1.0850],\"stop_loss\":1.0900,\"expiry_type\":\"day_end\"}\n```"}
	ai := NewAIParser(fc, time.Second, testLogger(t))
	ch := models.ChannelContext{Name: "misc", Type: models.ChannelGeneric}
	sig := ai.Parse(context.Background(), "eurusd short 1.0850 sl 1.0900", ch)
	if sig == nil || sig.Instrument != "EURUSD" || sig.Direction != models.DirectionShort {
		t.Fatalf("got %+v", sig)
	}
}
