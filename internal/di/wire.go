//go:build wireinject
// +build wireinject

package di

import (
	"SigPull/pkg/config"
	"SigPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCache,

		// Repositories
		ProvideSignalStore,
		ProvideSignalPublisher,
		ProvideSymbolDirectory,
		ProvideMarketStream,

		// Parsing and use cases
		ProvideParser,
		ProvideSignalProcessor,
		ProvideDeferredQueue,
		ProvideChatMessageHandler,
		ProvidePricePipeline,
		ProvideFeedMonitor,

		// HTTP
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
