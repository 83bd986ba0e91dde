package parser

import (
	"context"
	"strings"

	"SigPull/internal/domain/models"
)

// OTCallParser handles the over-the-counter call format used on ot-trade
// channels. The message carries an "ot call" label or arrives on an
// ot-trade channel; the instrument comes from any resolvable token or the
// channel default.
type OTCallParser struct {
	resolver *Resolver
}

func NewOTCallParser(r *Resolver) *OTCallParser { return &OTCallParser{resolver: r} }

func (*OTCallParser) Name() string { return "ot_call" }

func (p *OTCallParser) TryParse(_ context.Context, text string, ch models.ChannelContext) (*models.ParsedSignal, error) {
	lower := strings.ToLower(text)
	labelled := strings.Contains(lower, "ot call") || strings.Contains(lower, "ot-call")
	if !labelled && ch.Type != models.ChannelOTTrade {
		return nil, nil
	}

	ex := parseCore(text)

	instrument := ""
	for _, t := range ex.tokens {
		if isReservedToken(strings.ToLower(t)) {
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
	if instrument == "" {
		return nil, nil
	}
	return buildSignal(text, ex, instrument, ch, "ot_call"), nil
}
