package di

import (
	"context"
	"fmt"
	"time"

	"SigPull/internal/domain/repository"
	"SigPull/internal/handler/api"
	mid "SigPull/internal/middleware"
	"SigPull/internal/parser"
	internalrepo "SigPull/internal/repository"
	"SigPull/internal/service/finnhub"
	"SigPull/internal/service/openai"
	"SigPull/internal/service/ratelimit"
	"SigPull/internal/usecase"
	"SigPull/pkg/cache"
	pkgch "SigPull/pkg/clickhouse"
	"SigPull/pkg/config"
	xhttp "SigPull/pkg/http"
	pkgkafka "SigPull/pkg/kafka"
	applogger "SigPull/pkg/logger"
	"SigPull/pkg/metrics"
	pkgqueue "SigPull/pkg/queue"
	"SigPull/pkg/server"

	segkafka "github.com/segmentio/kafka-go"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client with the signal
// schema initialized.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.Schema(cfg.ClickHouse.Database, "signals")); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideSignalStore creates the ClickHouse-backed signal store.
func ProvideSignalStore(chClient *pkgch.Client, cfg *config.Config) repository.SignalStore {
	return internalrepo.NewClickHouseSignalStore(chClient.DB(), cfg.ClickHouse.Database+".signals", chClient.Close)
}

// ProvideKafkaProducer creates the Kafka producer for the signals topic.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSignalPublisher creates the Kafka signal publisher.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalsTopic)
}

// ProvideKafkaConsumer creates the intake-topic consumer with trace and
// latency hooks.
func ProvideKafkaConsumer(cfg *config.Config, m repository.Metrics) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	traceHook := pkgkafka.HookFuncs{
		Before: func(ctx context.Context, topic string, km segkafka.Message, data []byte) (context.Context, segkafka.Message, []byte, error) {
			ctx = pkgkafka.WithStartTime(ctx, time.Now())
			ctx = pkgkafka.WithTraceID(ctx, pkgkafka.ExtractTraceID(km))
			return ctx, km, data, nil
		},
	}
	metricsHook := pkgkafka.HookFuncs{
		After: func(ctx context.Context, topic string, km segkafka.Message, data []byte, err error) {
			if start, ok := ctx.Value(pkgkafka.CtxStartTime).(time.Time); ok {
				m.RecordLatency("intake_consume", time.Since(start).Seconds())
			}
		},
		Err: func(ctx context.Context, topic string, km segkafka.Message, data []byte, err error) {
			m.RecordError("intake_consume")
		},
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(traceHook, metricsHook))
	return consumer, nil
}

// ProvideCache creates the lookup cache: Redis when configured, an LRU
// memory cache otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideSymbolDirectory creates the Finnhub symbol directory.
func ProvideSymbolDirectory(cfg *config.Config, log *applogger.Logger, c cache.Service) repository.SymbolDirectory {
	return finnhub.NewDirectory(
		cfg.Finnhub.APIKey,
		cfg.Finnhub.BaseURL,
		cfg.Finnhub.SearchTimeout,
		log,
		finnhub.WithCache(c, cfg.Finnhub.CacheTTL),
	)
}

// ProvideParser assembles the full parsing cascade.
func ProvideParser(cfg *config.Config, dir repository.SymbolDirectory, log *applogger.Logger, m repository.Metrics) *parser.Parser {
	resolver := parser.NewResolver(dir)
	channels := parser.NewContextProvider(cfg.Channels)

	var ai *parser.AIParser
	if cfg.OpenAI.Enabled {
		completer := openai.New(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.BaseURL,
			cfg.OpenAI.Model,
			cfg.OpenAI.MaxTokens,
			cfg.OpenAI.Timeout,
		)
		ai = parser.NewAIParser(completer, cfg.OpenAI.Timeout, log)
	}
	return parser.New(channels, resolver, ai, log, m)
}

// ProvideSignalProcessor creates the persist-and-publish use case.
func ProvideSignalProcessor(store repository.SignalStore, pub repository.SignalPublisher, m repository.Metrics) *usecase.SignalProcessor {
	return usecase.NewSignalProcessor(store, pub, m)
}

// ProvideDeferredQueue creates the Redis queue used to defer over-budget
// AI parses. Nil when Redis is disabled; the handler then drops instead
// of deferring.
func ProvideDeferredQueue(cfg *config.Config, log *applogger.Logger, p *parser.Parser, processor *usecase.SignalProcessor, c cache.Service) *pkgqueue.RedisQueue {
	rc, ok := c.(*cache.RedisCache)
	if !ok {
		return nil
	}
	job := usecase.NewReparseJob(p, processor, log)
	return pkgqueue.NewRedisConsumer(log, &pkgqueue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, rc.Client(), []pkgqueue.Job{job})
}

// ProvideChatMessageHandler creates the intake message handler.
func ProvideChatMessageHandler(
	cfg *config.Config,
	p *parser.Parser,
	processor *usecase.SignalProcessor,
	queue *pkgqueue.RedisQueue,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.ChatMessageHandler {
	var deferrer usecase.Deferrer
	if queue != nil {
		deferrer = queue
	}
	return usecase.NewChatMessageHandler(
		cfg.Kafka.IntakeTopic,
		p,
		processor,
		ratelimit.New(),
		deferrer,
		m,
		log,
		cfg.OpenAI.RateCapacity,
		cfg.OpenAI.RatePerSecond,
	)
}

// ProvideMarketStream creates the Finnhub WebSocket stream.
func ProvideMarketStream(cfg *config.Config, log *applogger.Logger) repository.MarketStream {
	return finnhub.NewStream(
		cfg.Finnhub.APIKey,
		cfg.Finnhub.WebSocketURL,
		cfg.Finnhub.ReconnectDelay,
		cfg.Finnhub.PingInterval,
		log,
	)
}

// ProvidePricePipeline creates the throttled price pipeline.
func ProvidePricePipeline(m repository.Metrics) *mid.PricePipeline {
	return mid.NewPricePipeline(mid.NewMetricsSink(m), m,
		mid.WithMaxRPS(10),
		mid.WithBufferSize(2000),
	)
}

// ProvideFeedMonitor creates the open-signal feed monitor.
func ProvideFeedMonitor(stream repository.MarketStream, store repository.SignalStore, pipe *mid.PricePipeline, m repository.Metrics, log *applogger.Logger) *usecase.FeedMonitor {
	return usecase.NewFeedMonitor(stream, store, pipe, m, log, time.Minute)
}

// ProvideHTTPHandler creates the Echo API handler.
func ProvideHTTPHandler(log *applogger.Logger, p *parser.Parser, store repository.SignalStore, processor *usecase.SignalProcessor, m repository.Metrics) xhttp.Handler {
	return api.NewParseEchoHandler(log, p, store, processor, m)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	consumer *pkgkafka.Consumer,
	handler *usecase.ChatMessageHandler,
	monitor *usecase.FeedMonitor,
	pipe *mid.PricePipeline,
	queue *pkgqueue.RedisQueue,
	store repository.SignalStore,
	httpHandler xhttp.Handler,
) *server.App {
	return server.New(cfg, log, consumer, handler, monitor, pipe, queue, store, httpHandler)
}
