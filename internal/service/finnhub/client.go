package finnhub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"SigPull/internal/domain/models"
	drepo "SigPull/internal/domain/repository"
	"SigPull/pkg/cache"
	pkghttp "SigPull/pkg/http"
	"SigPull/pkg/logger"
)

// Directory implements SymbolDirectory backed by the Finnhub /search
// endpoint. Results are cached per query so repeated company names in the
// same channel do not burn API quota.
type Directory struct {
	apiKey  string
	baseURL string
	client  *pkghttp.Client
	cache   cache.Service
	ttl     time.Duration
	log     *logger.Logger
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

func WithCache(c cache.Service, ttl time.Duration) DirectoryOption {
	return func(d *Directory) {
		d.cache = c
		d.ttl = ttl
	}
}

// NewDirectory builds the symbol directory client. searchTimeout bounds
// the whole HTTP exchange.
func NewDirectory(apiKey, baseURL string, searchTimeout time.Duration, log *logger.Logger, opts ...DirectoryOption) *Directory {
	if searchTimeout <= 0 {
		searchTimeout = 3 * time.Second
	}
	d := &Directory{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  pkghttp.NewClient(pkghttp.WithTimeout(searchTimeout)),
		ttl:     10 * time.Minute,
		log:     log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type searchResponse struct {
	Count  int `json:"count"`
	Result []struct {
		Symbol      string `json:"symbol"`
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"result"`
}

// Search looks up equities matching query.
func (d *Directory) Search(ctx context.Context, query string) ([]models.SymbolMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	key := cache.GenerateKey("finnhub:search", strings.ToLower(query))

	if d.cache != nil {
		var cached []models.SymbolMatch
		if err := d.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	var resp searchResponse
	err := d.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    d.baseURL + "/search",
		QueryParams: map[string][]string{
			"q":     {query},
			"token": {d.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("finnhub search %q: %w", query, err)
	}

	matches := make([]models.SymbolMatch, 0, len(resp.Result))
	for _, r := range resp.Result {
		// only common stock entries are tradable for us
		if r.Type != "" && r.Type != "Common Stock" {
			continue
		}
		matches = append(matches, models.SymbolMatch{Symbol: r.Symbol, Description: r.Description})
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, key, matches, d.ttl); err != nil {
			d.log.Debug("symbol cache set failed", logger.String("query", query), logger.Error(err))
		}
	}
	return matches, nil
}

var _ drepo.SymbolDirectory = (*Directory)(nil)
