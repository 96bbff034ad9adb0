package foxops

import (
	"sync"
	"time"

	"github.com/arturoeanton/foxops-dashboard/internal/port"
)

// Factory hands out one cached client per token, all sharing the same
// base URL and transport.
type Factory struct {
	baseURL    string
	timeout    time.Duration
	cacheTTL   time.Duration
	httpClient HTTPDoer

	mu      sync.Mutex
	clients map[string]*CachingClient
}

// NewFactory creates a client factory.
func NewFactory(baseURL string, timeout, cacheTTL time.Duration, httpClient HTTPDoer) *Factory {
	return &Factory{
		baseURL:    baseURL,
		timeout:    timeout,
		cacheTTL:   cacheTTL,
		httpClient: httpClient,
		clients:    make(map[string]*CachingClient),
	}
}

// ClientFor returns the client for token, creating it on first use.
func (f *Factory) ClientFor(token string) port.IncarnationAPI {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.clients[token]; ok {
		return c
	}
	c := NewCachingClient(NewClient(Config{
		BaseURL: f.baseURL,
		Token:   token,
		Timeout: f.timeout,
	}, f.httpClient), f.cacheTTL)
	f.clients[token] = c
	return c
}

// Evict drops the client of token, typically after foxops rejected it.
func (f *Factory) Evict(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.clients, token)
}
