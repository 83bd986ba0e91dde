package parser

import (
	"context"
	"errors"

	"SigPull/internal/domain/models"
	drepo "SigPull/internal/domain/repository"
	"SigPull/pkg/logger"
)

// Parser runs the full cascade: pre-filters, deterministic strategies in
// priority order, then the AI fallback. It is stateless across messages
// and safe for concurrent use.
type Parser struct {
	channels   *ContextProvider
	strategies []Strategy
	ai         *AIParser
	log        *logger.Logger
	metrics    drepo.Metrics
}

// New wires the cascade with the standard strategy order. ai may be nil,
// which disables the fallback.
func New(channels *ContextProvider, resolver *Resolver, ai *AIParser, log *logger.Logger, metrics drepo.Metrics) *Parser {
	return &Parser{
		channels: channels,
		strategies: []Strategy{
			NewStocksParser(resolver),
			MetalsParser{},
			OilParser{},
			IndicesParser{},
			NewCryptoParser(resolver),
			NewForexParser(resolver),
			NewOTCallParser(resolver),
		},
		ai:      ai,
		log:     log,
		metrics: metrics,
	}
}

// ParseSignal extracts a trading signal from one chat message. A nil
// return means the message is not an actionable signal; that is the
// normal outcome for most chat traffic and is never an error.
func (p *Parser) ParseSignal(ctx context.Context, text, channelName string) *models.ParsedSignal {
	sig, eligible := p.ParseDeterministic(ctx, text, channelName)
	if sig != nil || !eligible {
		return sig
	}
	return p.ParseWithAI(ctx, text, channelName)
}

// ParseDeterministic runs the pre-filters and pattern strategies only.
// The second return reports whether an exhausted cascade should continue
// to the AI fallback: false means the message was filtered out before
// any strategy ran and the fallback would be wasted.
func (p *Parser) ParseDeterministic(ctx context.Context, text, channelName string) (*models.ParsedSignal, bool) {
	if !IsPotentialSignal(text) {
		return nil, false
	}
	if ShouldExclude(text) {
		p.reject("excluded_instrument")
		return nil, false
	}

	ch := p.channels.Context(channelName)

	for _, s := range p.strategies {
		sig, err := s.TryParse(ctx, text, ch)
		if err != nil {
			if errors.Is(err, ErrAmbiguousInstrument) {
				// several plausible instruments; skip the rest of the
				// cascade and let the fallback disambiguate
				p.log.Debug("instrument ambiguous, escalating",
					logger.String("strategy", s.Name()), logger.String("channel", channelName))
				return nil, true
			}
			p.log.Warn("strategy failed", logger.String("strategy", s.Name()), logger.Error(err))
			continue
		}
		if sig == nil {
			continue
		}
		if err := ValidateSignal(sig); err != nil {
			p.log.Debug("strategy result rejected",
				logger.String("strategy", s.Name()), logger.Error(err))
			p.reject("validation")
			continue
		}
		p.record(sig.ParseMethod, channelName)
		return sig, true
	}
	return nil, true
}

// ParseWithAI runs only the AI fallback. Nil when the fallback is
// disabled or produced nothing usable.
func (p *Parser) ParseWithAI(ctx context.Context, text, channelName string) *models.ParsedSignal {
	if p.ai == nil {
		return nil
	}
	sig := p.ai.Parse(ctx, text, p.channels.Context(channelName))
	if sig == nil {
		return nil
	}
	p.record(sig.ParseMethod, channelName)
	return sig
}

func (p *Parser) record(method, channel string) {
	if p.metrics != nil {
		p.metrics.RecordParse(method, channel)
	}
}

func (p *Parser) reject(reason string) {
	if p.metrics != nil {
		p.metrics.RecordReject(reason)
	}
}
