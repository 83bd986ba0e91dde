package parser

import (
	"context"
	"strings"

	"SigPull/internal/domain/models"
)

// StocksParser resolves equity signals. Tokens carrying an explicit
// exchange suffix (AAPL.NYSE) resolve verbatim; bare tickers and company
// names on stock channels go through the symbol directory. A directory
// result with several plausible matches aborts the cascade with
// ErrAmbiguousInstrument rather than guessing.
type StocksParser struct {
	resolver *Resolver
}

func NewStocksParser(r *Resolver) *StocksParser { return &StocksParser{resolver: r} }

func (*StocksParser) Name() string { return "stocks" }

func (p *StocksParser) TryParse(ctx context.Context, text string, ch models.ChannelContext) (*models.ParsedSignal, error) {
	ex := parseCore(text)

	for _, t := range ex.tokens {
		if m := tickerSuffixRe.FindStringSubmatch(t); m != nil {
			sym := strings.ToUpper(m[1]) + "." + m[2]
			return buildSignal(text, ex, sym, ch, "stocks"), nil
		}
	}
	if ch.Type != models.ChannelStock {
		return nil, nil
	}

	for _, t := range ex.tokens {
		lower := strings.ToLower(t)
		if isReservedToken(lower) || !isAlpha(lower) {
			continue
		}
		res := p.resolver.ResolveEquity(ctx, t)
		switch res.State {
		case Resolved:
			return buildSignal(text, ex, res.Symbol, ch, "stocks"), nil
		case Ambiguous:
			return nil, ErrAmbiguousInstrument
		}
	}
	return nil, nil
}
