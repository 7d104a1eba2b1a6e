package marketplace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/infrastructure/config"
)

type stubAdapter struct{ ch channel.Channel }

func (s stubAdapter) Channel() channel.Channel { return s.ch }
func (s stubAdapter) FetchRemoteInventory(context.Context) ([]channel.RemoteInventoryItem, error) {
	return nil, nil
}
func (s stubAdapter) FetchOrders(context.Context, time.Time, []channel.OrderStatus) ([]channel.Order, error) {
	return nil, nil
}
func (s stubAdapter) PushQuantity(context.Context, string, int) error { return nil }
func (s stubAdapter) Ping(context.Context) error                      { return nil }

func TestRegistry(t *testing.T) {
	t.Run("register and get", func(t *testing.T) {
		r, err := NewRegistry(stubAdapter{channel.Etsy}, stubAdapter{channel.Amazon})
		require.NoError(t, err)

		a, err := r.Get(channel.Etsy)
		require.NoError(t, err)
		assert.Equal(t, channel.Etsy, a.Channel())
		assert.Equal(t, []channel.Channel{channel.Amazon, channel.Etsy}, r.Channels())
	})

	t.Run("PWA cannot be registered or resolved", func(t *testing.T) {
		_, err := NewRegistry(stubAdapter{channel.PWA})
		assert.ErrorIs(t, err, channel.ErrLocalChannelNoAdapter)

		r, err := NewRegistry()
		require.NoError(t, err)
		_, err = r.Get(channel.PWA)
		assert.ErrorIs(t, err, channel.ErrLocalChannelNoAdapter)
	})

	t.Run("unknown channel is rejected", func(t *testing.T) {
		_, err := NewRegistry(stubAdapter{channel.Channel("EBAY")})
		assert.ErrorIs(t, err, channel.ErrInvalidChannel)
	})

	t.Run("unregistered lookup", func(t *testing.T) {
		r, err := NewRegistry(stubAdapter{channel.Amazon})
		require.NoError(t, err)
		_, err = r.Get(channel.Etsy)
		assert.ErrorIs(t, err, channel.ErrAdapterNotRegistered)
	})
}

func TestNewRegistryFromConfig(t *testing.T) {
	t.Run("only enabled marketplaces", func(t *testing.T) {
		r, err := NewRegistryFromConfig(&config.MarketplaceConfig{
			Amazon: config.AmazonConfig{Enabled: false},
			Etsy:   config.EtsyConfig{Enabled: true, APIKey: "k", AccessToken: "t", ShopID: "1"},
		})
		require.NoError(t, err)
		assert.Equal(t, []channel.Channel{channel.Etsy}, r.Channels())
	})

	t.Run("enabled marketplace must be complete", func(t *testing.T) {
		_, err := NewRegistryFromConfig(&config.MarketplaceConfig{
			Amazon: config.AmazonConfig{Enabled: true, AccessToken: "t"},
		})
		assert.ErrorIs(t, err, ErrAmazonConfigMissingSellerID)
	})
}
