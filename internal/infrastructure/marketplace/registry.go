package marketplace

import (
	"fmt"
	"sync"

	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// Registry maps remote channels to their adapters
type Registry struct {
	adapters map[channel.Channel]channel.Adapter
	mu       sync.RWMutex
}

// NewRegistry creates a registry holding the given adapters
func NewRegistry(adapters ...channel.Adapter) (*Registry, error) {
	r := &Registry{adapters: make(map[channel.Channel]channel.Adapter)}
	for _, a := range adapters {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds or replaces the adapter of its channel.
// PWA is the local source and can never have an adapter.
func (r *Registry) Register(a channel.Adapter) error {
	ch := a.Channel()
	if ch == channel.PWA {
		return channel.ErrLocalChannelNoAdapter
	}
	if !ch.IsRemote() {
		return fmt.Errorf("%w: %s", channel.ErrInvalidChannel, ch)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[ch] = a
	return nil
}

// Get returns the adapter for a channel
func (r *Registry) Get(ch channel.Channel) (channel.Adapter, error) {
	if ch == channel.PWA {
		return nil, channel.ErrLocalChannelNoAdapter
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[ch]
	if !ok {
		return nil, fmt.Errorf("%w: %s", channel.ErrAdapterNotRegistered, ch)
	}
	return a, nil
}

// Channels returns the registered channels in canonical order
func (r *Registry) Channels() []channel.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]channel.Channel, 0, len(r.adapters))
	for _, ch := range channel.RemoteChannels() {
		if _, ok := r.adapters[ch]; ok {
			out = append(out, ch)
		}
	}
	return out
}

// NewRegistryFromConfig builds adapters for every enabled marketplace
func NewRegistryFromConfig(cfg *config.MarketplaceConfig) (*Registry, error) {
	r := &Registry{adapters: make(map[channel.Channel]channel.Adapter)}

	if cfg.Amazon.Enabled {
		a, err := NewAmazonAdapter(&AmazonConfig{
			AccessToken:    cfg.Amazon.AccessToken,
			SellerID:       cfg.Amazon.SellerID,
			MarketplaceID:  cfg.Amazon.MarketplaceID,
			APIBaseURL:     cfg.Amazon.APIBaseURL,
			TimeoutSeconds: cfg.Amazon.TimeoutSeconds,
		})
		if err != nil {
			return nil, err
		}
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}

	if cfg.Etsy.Enabled {
		a, err := NewEtsyAdapter(&EtsyConfig{
			APIKey:         cfg.Etsy.APIKey,
			AccessToken:    cfg.Etsy.AccessToken,
			ShopID:         cfg.Etsy.ShopID,
			APIBaseURL:     cfg.Etsy.APIBaseURL,
			TimeoutSeconds: cfg.Etsy.TimeoutSeconds,
			PageSize:       cfg.Etsy.PageSize,
		})
		if err != nil {
			return nil, err
		}
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}

	return r, nil
}
