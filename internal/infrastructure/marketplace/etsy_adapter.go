package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/storefront/backend/internal/domain/channel"
)

// EtsyAdapter implements channel.Adapter for Etsy Open API v3
type EtsyAdapter struct {
	config *EtsyConfig
	client *apiClient

	// listingBySKU remembers which listing carries a SKU, filled by inventory reads
	listingBySKU map[string]int64
	mu           sync.RWMutex
}

// NewEtsyAdapter creates a new Etsy adapter with the given configuration
func NewEtsyAdapter(config *EtsyConfig) (*EtsyAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	apiKey, token := config.APIKey, config.AccessToken
	return &EtsyAdapter{
		config: config,
		client: newAPIClient(config.APIBaseURL, config.TimeoutSeconds, func(r *http.Request) {
			r.Header.Set("x-api-key", apiKey)
			r.Header.Set("Authorization", "Bearer "+token)
		}),
		listingBySKU: make(map[string]int64),
	}, nil
}

// Channel returns the channel this adapter handles
func (a *EtsyAdapter) Channel() channel.Channel {
	return channel.Etsy
}

// FetchRemoteInventory reads active listings. Listings with several SKUs are
// expanded through their inventory so every SKU reports its own quantity.
func (a *EtsyAdapter) FetchRemoteInventory(ctx context.Context) ([]channel.RemoteInventoryItem, error) {
	listings, err := a.activeListings(ctx)
	if err != nil {
		return nil, channel.Unavailable(channel.Etsy, "fetch inventory", err)
	}

	items := make([]channel.RemoteInventoryItem, 0, len(listings))
	index := make(map[string]int64, len(listings))
	for _, l := range listings {
		externalID := strconv.FormatInt(l.ListingID, 10)
		switch len(l.SKUs) {
		case 0:
			continue
		case 1:
			index[l.SKUs[0]] = l.ListingID
			items = append(items, channel.RemoteInventoryItem{SKU: l.SKUs[0], Quantity: l.Quantity, ExternalID: externalID})
		default:
			inv, err := a.listingInventory(ctx, l.ListingID)
			if err != nil {
				return nil, channel.Unavailable(channel.Etsy, "fetch inventory", err)
			}
			for _, p := range inv.Products {
				if p.SKU == "" || p.IsDeleted {
					continue
				}
				index[p.SKU] = l.ListingID
				items = append(items, channel.RemoteInventoryItem{SKU: p.SKU, Quantity: p.quantity(), ExternalID: externalID})
			}
		}
	}

	a.mu.Lock()
	a.listingBySKU = index
	a.mu.Unlock()
	return items, nil
}

// FetchOrders lists shop receipts created after since. Etsy has no server-side
// filter for our statuses, so filtering happens here.
func (a *EtsyAdapter) FetchOrders(ctx context.Context, since time.Time, statuses []channel.OrderStatus) ([]channel.Order, error) {
	wanted := make(map[channel.OrderStatus]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	orders := make([]channel.Order, 0)
	path := "/v3/application/shops/" + url.PathEscape(a.config.ShopID) + "/receipts"
	offset := 0
	for page := 0; page < maxPages; page++ {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(a.config.PageSize))
		query.Set("offset", strconv.Itoa(offset))
		if !since.IsZero() {
			query.Set("min_created", strconv.FormatInt(since.Unix(), 10))
		}

		var resp etsyReceiptsResponse
		if err := a.client.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
			return nil, channel.Unavailable(channel.Etsy, "fetch orders", err)
		}

		for i := range resp.Results {
			o := convertEtsyReceipt(&resp.Results[i])
			if len(wanted) > 0 && !wanted[o.Status] {
				continue
			}
			orders = append(orders, o)
		}

		offset += len(resp.Results)
		if len(resp.Results) == 0 || offset >= resp.Count {
			return orders, nil
		}
	}
	return nil, channel.Unavailable(channel.Etsy, "fetch orders", ErrTooManyPages)
}

// PushQuantity rewrites the listing inventory with the SKU's new quantity.
// Etsy replaces the whole product set, so every other product is sent back as read.
func (a *EtsyAdapter) PushQuantity(ctx context.Context, sku string, quantity int) error {
	if sku == "" {
		return channel.ErrEmptySKU
	}
	if quantity < 0 {
		return channel.ErrInvalidQuantity
	}

	listingID, err := a.resolveListing(ctx, sku)
	if err != nil {
		return channel.Unavailable(channel.Etsy, "push quantity", err)
	}

	inv, err := a.listingInventory(ctx, listingID)
	if err != nil {
		return channel.Unavailable(channel.Etsy, "push quantity", err)
	}

	update := etsyInventoryUpdate{Products: make([]etsyProductUpdate, 0, len(inv.Products))}
	found := false
	for _, p := range inv.Products {
		if p.IsDeleted {
			continue
		}
		pu := etsyProductUpdate{
			SKU:            p.SKU,
			PropertyValues: p.PropertyValues,
			Offerings:      make([]etsyOfferingUpdate, 0, len(p.Offerings)),
		}
		if pu.PropertyValues == nil {
			pu.PropertyValues = []etsyPropertyValue{}
		}
		for _, o := range p.Offerings {
			if o.IsDeleted {
				continue
			}
			ou := etsyOfferingUpdate{
				Price:     o.Price.Decimal().InexactFloat64(),
				Quantity:  o.Quantity,
				IsEnabled: o.IsEnabled,
			}
			// only the first live offering of the SKU carries the quantity
			if p.SKU == sku && !found {
				found = true
				ou.Quantity = quantity
				ou.IsEnabled = quantity > 0
			}
			pu.Offerings = append(pu.Offerings, ou)
		}
		update.Products = append(update.Products, pu)
	}
	if !found {
		return channel.Unavailable(channel.Etsy, "push quantity", fmt.Errorf("%w: %s", ErrListingNotFound, sku))
	}

	path := fmt.Sprintf("/v3/application/listings/%d/inventory", listingID)
	if err := a.client.do(ctx, http.MethodPut, path, nil, update, nil); err != nil {
		return channel.Unavailable(channel.Etsy, "push quantity", err)
	}
	return nil
}

// Ping calls the Open API ping endpoint
func (a *EtsyAdapter) Ping(ctx context.Context) error {
	if err := a.client.do(ctx, http.MethodGet, "/v3/application/openapi-ping", nil, nil, nil); err != nil {
		return channel.Unavailable(channel.Etsy, "ping", err)
	}
	return nil
}

func (a *EtsyAdapter) activeListings(ctx context.Context) ([]etsyListing, error) {
	listings := make([]etsyListing, 0)
	path := "/v3/application/shops/" + url.PathEscape(a.config.ShopID) + "/listings/active"
	offset := 0
	for page := 0; page < maxPages; page++ {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(a.config.PageSize))
		query.Set("offset", strconv.Itoa(offset))

		var resp etsyListingsResponse
		if err := a.client.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
			return nil, err
		}
		listings = append(listings, resp.Results...)

		offset += len(resp.Results)
		if len(resp.Results) == 0 || offset >= resp.Count {
			return listings, nil
		}
	}
	return nil, ErrTooManyPages
}

func (a *EtsyAdapter) listingInventory(ctx context.Context, listingID int64) (*etsyInventory, error) {
	var inv etsyInventory
	path := fmt.Sprintf("/v3/application/listings/%d/inventory", listingID)
	if err := a.client.do(ctx, http.MethodGet, path, nil, nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// resolveListing finds the listing of a SKU, re-reading listings on a cache miss
func (a *EtsyAdapter) resolveListing(ctx context.Context, sku string) (int64, error) {
	a.mu.RLock()
	id, ok := a.listingBySKU[sku]
	a.mu.RUnlock()
	if ok {
		return id, nil
	}

	if _, err := a.FetchRemoteInventory(ctx); err != nil {
		return 0, err
	}

	a.mu.RLock()
	id, ok = a.listingBySKU[sku]
	a.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrListingNotFound, sku)
	}
	return id, nil
}

func convertEtsyReceipt(r *etsyReceipt) channel.Order {
	o := channel.Order{
		ExternalID:    strconv.FormatInt(r.ReceiptID, 10),
		Channel:       channel.Etsy,
		Status:        mapEtsyReceiptStatus(r),
		NativeStatus:  r.Status,
		CustomerName:  r.Name,
		CustomerEmail: r.BuyerEmail,
		TotalAmount:   r.GrandTotal.Decimal(),
		Currency:      r.GrandTotal.CurrencyCode,
		PlacedAt:      time.Unix(r.CreateTimestamp, 0).UTC(),
		Items:         make([]channel.OrderItem, 0, len(r.Transactions)),
	}
	for _, t := range r.Transactions {
		o.Items = append(o.Items, channel.OrderItem{
			ExternalID: strconv.FormatInt(t.TransactionID, 10),
			SKU:        t.SKU,
			Title:      t.Title,
			Quantity:   t.Quantity,
			UnitPrice:  t.Price.Decimal(),
		})
	}
	return o
}

// mapEtsyReceiptStatus maps receipt flags and status to the internal status
func mapEtsyReceiptStatus(r *etsyReceipt) channel.OrderStatus {
	switch strings.ToLower(r.Status) {
	case "canceled", "fully refunded":
		return channel.OrderStatusCancelled
	case "completed":
		return channel.OrderStatusShipped
	}
	if r.IsShipped {
		return channel.OrderStatusShipped
	}
	if r.IsPaid || strings.EqualFold(r.Status, "paid") {
		return channel.OrderStatusProcessing
	}
	return channel.OrderStatusPending
}

// Ensure EtsyAdapter implements channel.Adapter
var _ channel.Adapter = (*EtsyAdapter)(nil)
