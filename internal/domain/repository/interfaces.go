package repository

import (
	"context"
	"time"

	"SigPull/internal/domain/models"
)

// SymbolDirectory looks up equities by ticker or company name.
// Implementations may cache; a lookup failure degrades resolution, it
// never fails a parse.
type SymbolDirectory interface {
	Search(ctx context.Context, query string) ([]models.SymbolMatch, error)
}

// Completer is the AI-completion collaborator used by the fallback parser.
// Transport errors and timeouts are reported as errors; the caller treats
// both as "no answer".
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// SignalStore persists parsed signals. Keyed by the originating chat
// message id so edits and deletions can be applied later.
type SignalStore interface {
	Save(ctx context.Context, messageID string, s *models.ParsedSignal) error
	Recent(ctx context.Context, channel string, since time.Time, limit int) ([]*models.ParsedSignal, error)
	OpenInstruments(ctx context.Context) ([]string, error)
	CancelByMessageID(ctx context.Context, messageID string) error
	UpdateByMessageID(ctx context.Context, messageID string, s *models.ParsedSignal) error
	Health(ctx context.Context) error
	Close() error
}

// SignalPublisher fans parsed signals out to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, s *models.ParsedSignal) error
	Close() error
}

// MarketStream is a live price feed for the instruments of open signals.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, symbols []string) error
	Read(ctx context.Context) (<-chan *models.PriceUpdate, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// PriceSink consumes ticks coming off the market stream.
type PriceSink interface {
	Consume(ctx context.Context, u *models.PriceUpdate) error
}

// Metrics records observability counters for the parse pipeline.
type Metrics interface {
	RecordParse(method, channel string)
	RecordReject(reason string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
