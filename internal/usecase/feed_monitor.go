package usecase

import (
	"context"
	"time"

	domrepo "SigPull/internal/domain/repository"
	"SigPull/pkg/logger"
)

// FeedMonitor keeps a live price feed on every instrument that currently
// has an open signal. It refreshes the subscription set from the store on
// an interval and survives stream drops by reconnecting.
type FeedMonitor struct {
	stream  domrepo.MarketStream
	store   domrepo.SignalStore
	sink    domrepo.PriceSink
	metrics domrepo.Metrics
	log     *logger.Logger

	refreshInterval time.Duration
}

func NewFeedMonitor(stream domrepo.MarketStream, store domrepo.SignalStore, sink domrepo.PriceSink, metrics domrepo.Metrics, log *logger.Logger, refreshInterval time.Duration) *FeedMonitor {
	if refreshInterval <= 0 {
		refreshInterval = time.Minute
	}
	return &FeedMonitor{
		stream:          stream,
		store:           store,
		sink:            sink,
		metrics:         metrics,
		log:             log,
		refreshInterval: refreshInterval,
	}
}

// Run blocks until ctx is cancelled.
func (f *FeedMonitor) Run(ctx context.Context) error {
	if err := f.stream.Connect(ctx); err != nil {
		return err
	}
	defer f.stream.Close()

	f.subscribeOpen(ctx)

	go f.refreshLoop(ctx)

	for {
		updates, errs := f.stream.Read(ctx)
	drain:
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case u, ok := <-updates:
				if !ok {
					break drain
				}
				if err := f.sink.Consume(ctx, u); err != nil {
					f.log.Debug("tick dropped", logger.String("symbol", u.Symbol), logger.Error(err))
				}
			case err, ok := <-errs:
				if !ok {
					break drain
				}
				f.log.Warn("market stream dropped", logger.Error(err))
				f.metrics.RecordError("stream_read")
				break drain
			}
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := f.stream.Reconnect(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Error("market stream reconnect failed", logger.Error(err))
			f.metrics.RecordError("stream_reconnect")
			continue
		}
		f.subscribeOpen(ctx)
	}
}

func (f *FeedMonitor) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(f.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.subscribeOpen(ctx)
		}
	}
}

func (f *FeedMonitor) subscribeOpen(ctx context.Context) {
	symbols, err := f.store.OpenInstruments(ctx)
	if err != nil {
		f.log.Warn("open instruments lookup failed", logger.Error(err))
		f.metrics.RecordError("open_instruments")
		return
	}
	if len(symbols) == 0 {
		return
	}
	if err := f.stream.Subscribe(ctx, symbols); err != nil {
		f.log.Warn("subscribe failed", logger.Error(err))
		f.metrics.RecordError("stream_subscribe")
	}
}
