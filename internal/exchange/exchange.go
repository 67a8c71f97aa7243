package exchange

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/models"
	"github.com/sirupsen/logrus"
)

// Adapter fetches the last traded price of a symbol from one exchange.
// Failures are logged by the adapter and reported only as ok == false.
type Adapter interface {
	Name() string
	FetchPrice(ctx context.Context, symbol string) (quote models.PriceQuote, ok bool)
}

// Factory builds an adapter bound to an endpoint template.
type Factory func(client *Client, endpoint string, logger logrus.FieldLogger) Adapter

var builtins = map[string]Factory{
	BinanceName: func(c *Client, endpoint string, l logrus.FieldLogger) Adapter { return NewBinance(c, endpoint, l) },
	KuCoinName:  func(c *Client, endpoint string, l logrus.FieldLogger) Adapter { return NewKuCoin(c, endpoint, l) },
	BybitName:   func(c *Client, endpoint string, l logrus.FieldLogger) Adapter { return NewBybit(c, endpoint, l) },
}

// DefaultEndpoints returns the public ticker endpoints of the built-in exchanges.
func DefaultEndpoints() map[string]string {
	return map[string]string{
		BinanceName: BinanceEndpoint,
		KuCoinName:  KuCoinEndpoint,
		BybitName:   BybitEndpoint,
	}
}

type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// NewRegistryFromEndpoints builds the built-in adapter for every configured
// exchange, all sharing one HTTP client.
func NewRegistryFromEndpoints(endpoints map[string]string, timeout time.Duration, logger logrus.FieldLogger) (*Registry, error) {
	client := NewClient(timeout, logger)
	registry := NewRegistry()

	for name, endpoint := range endpoints {
		factory, ok := builtins[name]
		if !ok {
			return nil, fmt.Errorf("unsupported exchange %q", name)
		}
		if err := registry.Register(factory(client, endpoint, logger)); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

func (r *Registry) Register(adapter Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := adapter.Name()
	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("exchange %q already registered", name)
	}
	r.adapters[name] = adapter
	return nil
}

func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[name]
	return adapter, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.adapters)
}

// Names returns the registered exchange names in lexicographic order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Adapters returns the registered adapters ordered by name.
func (r *Registry) Adapters() []Adapter {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	adapters := make([]Adapter, 0, len(names))
	for _, name := range names {
		adapters = append(adapters, r.adapters[name])
	}
	return adapters
}

func newQuote(exchange, symbol string, price float64) models.PriceQuote {
	return models.PriceQuote{
		Exchange:   exchange,
		Symbol:     symbol,
		Price:      price,
		ObservedAt: time.Now().UTC(),
	}
}

func logFailure(logger logrus.FieldLogger, exchange, symbol string, err error) {
	logger.WithFields(logrus.Fields{
		"exchange": exchange,
		"symbol":   symbol,
		"error":    err.Error(),
	}).Warn("Failed to fetch price")
}
