package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SigPull/internal/domain/models"
	domrepo "SigPull/internal/domain/repository"
)

// PricePipeline sits between the market stream and the tick sink. It
// validates ticks, throttles per symbol, and buffers when the sink is
// failing so short downstream outages do not lose the latest prices.
type PricePipeline struct {
	sink    domrepo.PriceSink
	metrics domrepo.Metrics
	maxRPS  int
	bufSize int
	bufCh   chan *models.PriceUpdate
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex
	// per-symbol last accepted time
	lastSeen map[string]time.Time
}

type PipelineOption func(*PricePipeline)

// WithMaxRPS caps accepted ticks per second per symbol.
func WithMaxRPS(n int) PipelineOption {
	return func(p *PricePipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the retry buffer used when the sink errors.
func WithBufferSize(n int) PipelineOption {
	return func(p *PricePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

func NewPricePipeline(sink domrepo.PriceSink, metrics domrepo.Metrics, opts ...PipelineOption) *PricePipeline {
	p := &PricePipeline{
		sink:     sink,
		metrics:  metrics,
		maxRPS:   10,
		bufSize:  1000,
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.PriceUpdate, p.bufSize)
	return p
}

// Start launches background flushing of buffered ticks.
func (p *PricePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case u := <-p.bufCh:
				if u == nil {
					continue
				}
				if err := p.sink.Consume(ctx, u); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					select {
					case p.bufCh <- u:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

func (p *PricePipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Consume validates and throttles one tick, forwarding to the sink and
// buffering on sink errors.
func (p *PricePipeline) Consume(ctx context.Context, u *models.PriceUpdate) error {
	start := time.Now()
	if err := validateUpdate(u); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(u.Symbol, start) {
		// over the per-symbol rate; superseded ticks drop silently
		return nil
	}

	if err := p.sink.Consume(ctx, u); err != nil {
		p.metrics.RecordError("pipeline_sink")
		select {
		case p.bufCh <- u:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("price pipeline: %w", err)
	}
	p.metrics.RecordLatency("pipeline_consume", time.Since(start).Seconds())
	return nil
}

func (p *PricePipeline) allow(symbol string, now time.Time) bool {
	minGap := time.Second / time.Duration(p.maxRPS)
	p.mu.Lock()
	defer p.mu.Unlock()
	if last, ok := p.lastSeen[symbol]; ok && now.Sub(last) < minGap {
		return false
	}
	p.lastSeen[symbol] = now
	return true
}

func validateUpdate(u *models.PriceUpdate) error {
	if u == nil {
		return fmt.Errorf("nil update")
	}
	if u.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if u.Price <= 0 {
		return fmt.Errorf("price invalid")
	}
	return nil
}

// MetricsSink is the terminal sink: it exposes the latest price per
// instrument as a gauge.
type MetricsSink struct {
	metrics domrepo.Metrics
}

func NewMetricsSink(metrics domrepo.Metrics) *MetricsSink {
	return &MetricsSink{metrics: metrics}
}

func (s *MetricsSink) Consume(_ context.Context, u *models.PriceUpdate) error {
	s.metrics.RecordLastPrice(u.Symbol, u.Price)
	return nil
}
