package parser

import (
	"context"
	"strings"

	"SigPull/internal/domain/models"
)

// MetalsParser extracts gold and silver signals. On gold channels no
// instrument token is required; the channel implies XAUUSD.
type MetalsParser struct{}

func (MetalsParser) Name() string { return "metals" }

var metalTokens = map[string]string{
	"gold": "XAUUSD", "xau": "XAUUSD", "xauusd": "XAUUSD",
	"silver": "XAGUSD", "xag": "XAGUSD", "xagusd": "XAGUSD",
}

func (MetalsParser) TryParse(_ context.Context, text string, ch models.ChannelContext) (*models.ParsedSignal, error) {
	ex := parseCore(text)

	instrument := ""
	for _, t := range ex.tokens {
		if sym, ok := metalTokens[strings.ToLower(t)]; ok {
			instrument = sym
			break
		}
	}
	if instrument == "" && ch.Type == models.ChannelGold {
		instrument = "XAUUSD"
	}
	if instrument == "" {
		return nil, nil
	}
	return buildSignal(text, ex, instrument, ch, "metals"), nil
}

// OilParser extracts crude-oil signals. The instrument branches on an
// "ic" mention: XTIUSD with it, spot oil without.
type OilParser struct{}

func (OilParser) Name() string { return "oil" }

var oilTokens = map[string]bool{"oil": true, "usoil": true, "xti": true, "xtiusd": true, "wti": true, "crude": true}

func (OilParser) TryParse(_ context.Context, text string, ch models.ChannelContext) (*models.ParsedSignal, error) {
	ex := parseCore(text)

	mentioned := false
	for _, t := range ex.tokens {
		if oilTokens[strings.ToLower(t)] {
			mentioned = true
			break
		}
	}
	if !mentioned && ch.Type != models.ChannelOil {
		return nil, nil
	}
	return buildSignal(text, ex, ResolveOil(ex.tokens), ch, "oil"), nil
}

// IndicesParser extracts stock-index signals (NAS100, SPX500, US30).
// Index quotes are never rescaled.
type IndicesParser struct{}

func (IndicesParser) Name() string { return "indices" }

var indexTokens = map[string]string{
	"nas": "NAS100USD", "nas100": "NAS100USD", "ndx": "NAS100USD", "nasdaq": "NAS100USD",
	"spx": "SPX500USD", "sp500": "SPX500USD", "spx500": "SPX500USD",
	"us30": "US30USD", "dow": "US30USD",
	"dax": "DE30EUR", "ger30": "DE30EUR",
}

func (IndicesParser) TryParse(_ context.Context, text string, ch models.ChannelContext) (*models.ParsedSignal, error) {
	ex := parseCore(text)

	instrument := ""
	for _, t := range ex.tokens {
		if sym, ok := indexTokens[strings.ToLower(t)]; ok {
			instrument = sym
			break
		}
	}
	if instrument == "" && ch.Type == models.ChannelIndices {
		instrument = ch.DefaultInstrument
	}
	if instrument == "" {
		return nil, nil
	}
	return buildSignal(text, ex, instrument, ch, "indices"), nil
}

// CryptoParser extracts crypto signals; instruments are <ROOT>USDT. On
// crypto channels an unknown short alpha token is treated as a coin root.
type CryptoParser struct {
	resolver *Resolver
}

func NewCryptoParser(r *Resolver) *CryptoParser { return &CryptoParser{resolver: r} }

func (*CryptoParser) Name() string { return "crypto" }

func (p *CryptoParser) TryParse(_ context.Context, text string, ch models.ChannelContext) (*models.ParsedSignal, error) {
	ex := parseCore(text)

	instrument := ""
	for _, t := range ex.tokens {
		lower := strings.ToLower(t)
		if isReservedToken(lower) {
			continue
		}
		if cryptoRoots[lower] || strings.HasSuffix(strings.ToUpper(t), "USDT") {
			res := p.resolver.ResolveToken(t, ch)
			if res.State == Resolved {
				instrument = res.Symbol
				break
			}
		}
	}
	if instrument == "" && ch.Type == models.ChannelCrypto {
		for _, t := range ex.tokens {
			lower := strings.ToLower(t)
			if isReservedToken(lower) || !isAlpha(lower) {
				continue
			}
			if res := p.resolver.ResolveToken(t, ch); res.State == Resolved {
				instrument = res.Symbol
				break
			}
		}
		if instrument == "" {
			instrument = ch.DefaultInstrument
		}
	}
	if instrument == "" || !strings.HasSuffix(instrument, "USDT") {
		return nil, nil
	}
	return buildSignal(text, ex, instrument, ch, "crypto"), nil
}

// ForexParser is the generic currency-pair strategy: abbreviation table,
// verbatim six-letter pairs, or the channel's default forex instrument.
// Unscaled integer quotes are divided down to the pair's pip scale.
type ForexParser struct {
	resolver *Resolver
}

func NewForexParser(r *Resolver) *ForexParser { return &ForexParser{resolver: r} }

func (*ForexParser) Name() string { return "forex" }

func (p *ForexParser) TryParse(_ context.Context, text string, ch models.ChannelContext) (*models.ParsedSignal, error) {
	ex := parseCore(text)

	instrument := ""
	for _, t := range ex.tokens {
		if isReservedToken(strings.ToLower(t)) {
			continue
		}
		res := p.resolver.ResolveToken(t, ch)
		if res.State == Resolved && isForexPair(res.Symbol) {
			instrument = res.Symbol
			break
		}
	}
	if instrument == "" && isForexPair(ch.DefaultInstrument) {
		instrument = ch.DefaultInstrument
	}
	if instrument == "" {
		return nil, nil
	}
	return buildSignal(text, ex, instrument, ch, "forex"), nil
}
