package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"SigPull/internal/domain/models"
	drepo "SigPull/internal/domain/repository"
	"SigPull/pkg/logger"
)

// Stream implements MarketStream over the Finnhub trade WebSocket. It
// tracks symbol subscriptions so Reconnect can restore them.
type Stream struct {
	apiKey         string
	websocketURL   string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	symbols   map[string]bool
}

func NewStream(apiKey, websocketURL string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) *Stream {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Stream{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
		symbols:        make(map[string]bool),
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", s.websocketURL, s.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("market stream connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	s.log.Info("market stream connected")
	return nil
}

// Subscribe adds symbols to the live feed. Already-subscribed symbols
// are skipped.
func (s *Stream) Subscribe(_ context.Context, symbols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || !s.connected {
		return fmt.Errorf("market stream not connected")
	}
	for _, sym := range symbols {
		if s.symbols[sym] {
			continue
		}
		msg := map[string]string{"type": "subscribe", "symbol": sym}
		if err := s.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
		s.symbols[sym] = true
		s.log.Debug("subscribed", logger.String("symbol", sym))
	}
	return nil
}

type wsTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string    `json:"type"`
	Data []wsTrade `json:"data"`
}

// Read streams price updates until the context ends or the connection
// drops. The error channel reports the terminal read error; the caller
// decides whether to Reconnect.
func (s *Stream) Read(ctx context.Context) (<-chan *models.PriceUpdate, <-chan error) {
	updates := make(chan *models.PriceUpdate, 1024)
	errs := make(chan error, 1)
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				s.mu.Lock()
				if s.conn != nil {
					_ = s.conn.WriteMessage(websocket.PingMessage, nil)
				}
				s.mu.Unlock()
			}
		}
	}()

	go func() {
		defer close(done)
		defer close(updates)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			s.mu.Lock()
			conn := s.conn
			s.mu.Unlock()
			if conn == nil {
				errs <- fmt.Errorf("market stream: no connection")
				return
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				s.mu.Lock()
				s.connected = false
				s.mu.Unlock()
				errs <- fmt.Errorf("market stream read: %w", err)
				return
			}
			var m wsMessage
			if err := json.Unmarshal(b, &m); err != nil {
				// non-trade frames (pings, acks) are not errors
				continue
			}
			if m.Type != "trade" {
				continue
			}
			for _, t := range m.Data {
				select {
				case updates <- &models.PriceUpdate{Symbol: t.S, Price: t.P, Volume: t.V, Timestamp: t.T}:
				default:
					// drop on backpressure; ticks are superseded anyway
				}
			}
		}
	}()

	return updates, errs
}

// Reconnect waits the configured delay, dials again and restores the
// subscription set.
func (s *Stream) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
		s.connected = false
	}
	resub := make([]string, 0, len(s.symbols))
	for sym := range s.symbols {
		resub = append(resub, sym)
	}
	s.symbols = make(map[string]bool)
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.reconnectDelay):
	}
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx, resub)
}

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

var _ drepo.MarketStream = (*Stream)(nil)
