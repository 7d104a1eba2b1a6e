package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/channel"
)

// AmazonAdapter implements channel.Adapter for the Amazon Selling Partner API
type AmazonAdapter struct {
	config *AmazonConfig
	client *apiClient
}

// NewAmazonAdapter creates a new Amazon adapter with the given configuration
func NewAmazonAdapter(config *AmazonConfig) (*AmazonAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	token := config.AccessToken
	return &AmazonAdapter{
		config: config,
		client: newAPIClient(config.APIBaseURL, config.TimeoutSeconds, func(r *http.Request) {
			r.Header.Set("x-amz-access-token", token)
		}),
	}, nil
}

// Channel returns the channel this adapter handles
func (a *AmazonAdapter) Channel() channel.Channel {
	return channel.Amazon
}

// FetchRemoteInventory lists FBA inventory summaries for the configured marketplace
func (a *AmazonAdapter) FetchRemoteInventory(ctx context.Context) ([]channel.RemoteInventoryItem, error) {
	items := make([]channel.RemoteInventoryItem, 0)
	nextToken := ""

	for page := 0; page < maxPages; page++ {
		query := url.Values{}
		query.Set("granularityType", "Marketplace")
		query.Set("granularityId", a.config.MarketplaceID)
		query.Set("marketplaceIds", a.config.MarketplaceID)
		query.Set("details", "true")
		if nextToken != "" {
			query.Set("nextToken", nextToken)
		}

		var resp amazonInventoryResponse
		if err := a.client.do(ctx, http.MethodGet, "/fba/inventory/v1/summaries", query, nil, &resp); err != nil {
			return nil, channel.Unavailable(channel.Amazon, "fetch inventory", err)
		}

		for _, s := range resp.Payload.InventorySummaries {
			if s.SellerSKU == "" {
				continue
			}
			items = append(items, channel.RemoteInventoryItem{
				SKU:        s.SellerSKU,
				Quantity:   s.sellable(),
				ExternalID: s.ASIN,
			})
		}

		if resp.Pagination == nil || resp.Pagination.NextToken == "" {
			return items, nil
		}
		nextToken = resp.Pagination.NextToken
	}
	return nil, channel.Unavailable(channel.Amazon, "fetch inventory", ErrTooManyPages)
}

// FetchOrders lists orders created after since, optionally filtered by internal status
func (a *AmazonAdapter) FetchOrders(ctx context.Context, since time.Time, statuses []channel.OrderStatus) ([]channel.Order, error) {
	orders := make([]channel.Order, 0)
	nextToken := ""

	for page := 0; page < maxPages; page++ {
		query := url.Values{}
		query.Set("MarketplaceIds", a.config.MarketplaceID)
		if nextToken != "" {
			query.Set("NextToken", nextToken)
		} else {
			query.Set("CreatedAfter", since.UTC().Format(time.RFC3339))
			if native := mapToAmazonOrderStatuses(statuses); len(native) > 0 {
				query.Set("OrderStatuses", strings.Join(native, ","))
			}
		}

		var resp amazonOrdersResponse
		if err := a.client.do(ctx, http.MethodGet, "/orders/v0/orders", query, nil, &resp); err != nil {
			return nil, channel.Unavailable(channel.Amazon, "fetch orders", err)
		}

		for i := range resp.Payload.Orders {
			o, err := a.convertAmazonOrder(ctx, &resp.Payload.Orders[i])
			if err != nil {
				return nil, channel.Unavailable(channel.Amazon, "fetch order items", err)
			}
			orders = append(orders, o)
		}

		if resp.Payload.NextToken == "" {
			return orders, nil
		}
		nextToken = resp.Payload.NextToken
	}
	return nil, channel.Unavailable(channel.Amazon, "fetch orders", ErrTooManyPages)
}

// PushQuantity replaces the fulfillment availability of the listing
func (a *AmazonAdapter) PushQuantity(ctx context.Context, sku string, quantity int) error {
	if sku == "" {
		return channel.ErrEmptySKU
	}
	if quantity < 0 {
		return channel.ErrInvalidQuantity
	}

	body := amazonListingsPatch{
		ProductType: "PRODUCT",
		Patches: []amazonListingsPatchEntry{{
			Op:   "replace",
			Path: "/attributes/fulfillment_availability",
			Value: []any{map[string]any{
				"fulfillment_channel_code": "DEFAULT",
				"quantity":                 quantity,
			}},
		}},
	}
	query := url.Values{}
	query.Set("marketplaceIds", a.config.MarketplaceID)
	path := fmt.Sprintf("/listings/2021-08-01/items/%s/%s", url.PathEscape(a.config.SellerID), url.PathEscape(sku))

	var resp amazonListingsPatchResponse
	if err := a.client.do(ctx, http.MethodPatch, path, query, body, &resp); err != nil {
		return channel.Unavailable(channel.Amazon, "push quantity", err)
	}
	if resp.Status == "INVALID" {
		msg := "listing update rejected"
		if len(resp.Issues) > 0 {
			msg = resp.Issues[0].Code + ": " + resp.Issues[0].Message
		}
		return channel.Unavailable(channel.Amazon, "push quantity", fmt.Errorf("%w: %s", ErrRequestFailed, msg))
	}
	return nil
}

// Ping reads the seller's marketplace participations
func (a *AmazonAdapter) Ping(ctx context.Context) error {
	if err := a.client.do(ctx, http.MethodGet, "/sellers/v1/marketplaceParticipations", nil, nil, nil); err != nil {
		return channel.Unavailable(channel.Amazon, "ping", err)
	}
	return nil
}

func (a *AmazonAdapter) convertAmazonOrder(ctx context.Context, src *amazonOrder) (channel.Order, error) {
	o := channel.Order{
		ExternalID:   src.AmazonOrderID,
		Channel:      channel.Amazon,
		Status:       mapAmazonOrderStatus(src.OrderStatus),
		NativeStatus: src.OrderStatus,
		Items:        make([]channel.OrderItem, 0),
	}
	if t, err := time.Parse(time.RFC3339, src.PurchaseDate); err == nil {
		o.PlacedAt = t
	}
	if src.OrderTotal != nil {
		o.TotalAmount = parseDecimal(src.OrderTotal.Amount)
		o.Currency = src.OrderTotal.CurrencyCode
	}
	if src.BuyerInfo != nil {
		o.CustomerEmail = src.BuyerInfo.BuyerEmail
		o.CustomerName = src.BuyerInfo.BuyerName
	}

	nextToken := ""
	for page := 0; page < maxPages; page++ {
		var query url.Values
		if nextToken != "" {
			query = url.Values{"NextToken": {nextToken}}
		}
		var resp amazonOrderItemsResponse
		path := "/orders/v0/orders/" + url.PathEscape(src.AmazonOrderID) + "/orderItems"
		if err := a.client.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
			return channel.Order{}, err
		}
		for _, it := range resp.Payload.OrderItems {
			o.Items = append(o.Items, channel.OrderItem{
				ExternalID: it.OrderItemID,
				SKU:        it.SellerSKU,
				Title:      it.Title,
				Quantity:   it.QuantityOrdered,
				UnitPrice:  amazonUnitPrice(it),
			})
		}
		if resp.Payload.NextToken == "" {
			return o, nil
		}
		nextToken = resp.Payload.NextToken
	}
	return channel.Order{}, ErrTooManyPages
}

// amazonUnitPrice derives a unit price; ItemPrice is the line total
func amazonUnitPrice(it amazonOrderItem) decimal.Decimal {
	if it.ItemPrice == nil || it.QuantityOrdered <= 0 {
		return decimal.Zero
	}
	return parseDecimal(it.ItemPrice.Amount).Div(decimal.NewFromInt(int64(it.QuantityOrdered))).Round(4)
}

// mapAmazonOrderStatus maps an SP-API OrderStatus to the internal status
func mapAmazonOrderStatus(status string) channel.OrderStatus {
	switch status {
	case "Pending", "PendingAvailability":
		return channel.OrderStatusPending
	case "Unshipped", "PartiallyShipped", "InvoiceUnconfirmed":
		return channel.OrderStatusProcessing
	case "Shipped":
		return channel.OrderStatusShipped
	case "Canceled", "Unfulfillable":
		return channel.OrderStatusCancelled
	default:
		return channel.OrderStatusPending
	}
}

// mapToAmazonOrderStatuses expands internal statuses to SP-API filter values
func mapToAmazonOrderStatuses(statuses []channel.OrderStatus) []string {
	native := make([]string, 0, len(statuses))
	for _, s := range statuses {
		switch s {
		case channel.OrderStatusPending:
			native = append(native, "Pending", "PendingAvailability")
		case channel.OrderStatusProcessing:
			native = append(native, "Unshipped", "PartiallyShipped", "InvoiceUnconfirmed")
		case channel.OrderStatusShipped, channel.OrderStatusDelivered:
			native = append(native, "Shipped")
		case channel.OrderStatusCancelled:
			native = append(native, "Canceled", "Unfulfillable")
		}
	}
	return native
}

// parseDecimal safely parses a decimal string, returning zero on error
func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Ensure AmazonAdapter implements channel.Adapter
var _ channel.Adapter = (*AmazonAdapter)(nil)
