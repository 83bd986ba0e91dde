package finnhub

import (
	"context"
	"runtime"
	"testing"
	"time"

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

func TestReadStopsPingerWhenReaderExits(t *testing.T) {
	s := NewStream("key", "ws://127.0.0.1:1", time.Millisecond, time.Millisecond, testLogger(t))
	ctx := context.Background()

	before := runtime.NumGoroutine()
	for i := 0; i < 20; i++ {
		updates, errs := s.Read(ctx)
		if err := <-errs; err == nil {
			t.Fatal("expected read error without a connection")
		}
		for range updates {
		}
	}
	time.Sleep(50 * time.Millisecond)
	if after := runtime.NumGoroutine(); after >= before+20 {
		t.Fatalf("ping goroutines leaked: %d before, %d after", before, after)
	}
}
