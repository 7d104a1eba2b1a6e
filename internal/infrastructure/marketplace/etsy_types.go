package marketplace

import "github.com/shopspring/decimal"

// etsyMoney is Etsy's integer amount over divisor representation
type etsyMoney struct {
	Amount       int64  `json:"amount"`
	Divisor      int64  `json:"divisor"`
	CurrencyCode string `json:"currency_code"`
}

// Decimal converts the amount to a decimal value
func (m etsyMoney) Decimal() decimal.Decimal {
	if m.Divisor == 0 {
		return decimal.NewFromInt(m.Amount)
	}
	return decimal.New(m.Amount, 0).Div(decimal.NewFromInt(m.Divisor))
}

type etsyListingsResponse struct {
	Count   int           `json:"count"`
	Results []etsyListing `json:"results"`
}

type etsyListing struct {
	ListingID int64    `json:"listing_id"`
	Title     string   `json:"title"`
	Quantity  int      `json:"quantity"`
	SKUs      []string `json:"skus"`
}

type etsyInventory struct {
	Products []etsyProduct `json:"products"`
}

type etsyProduct struct {
	ProductID      int64               `json:"product_id,omitempty"`
	SKU            string              `json:"sku"`
	IsDeleted      bool                `json:"is_deleted,omitempty"`
	Offerings      []etsyOffering      `json:"offerings"`
	PropertyValues []etsyPropertyValue `json:"property_values"`
}

// quantity sums the enabled offerings
func (p etsyProduct) quantity() int {
	total := 0
	for _, o := range p.Offerings {
		if o.IsEnabled && !o.IsDeleted {
			total += o.Quantity
		}
	}
	return total
}

type etsyOffering struct {
	OfferingID int64     `json:"offering_id,omitempty"`
	Quantity   int       `json:"quantity"`
	IsEnabled  bool      `json:"is_enabled"`
	IsDeleted  bool      `json:"is_deleted,omitempty"`
	Price      etsyMoney `json:"price"`
}

type etsyPropertyValue struct {
	PropertyID   int64    `json:"property_id"`
	PropertyName string   `json:"property_name,omitempty"`
	ScaleID      *int64   `json:"scale_id"`
	ValueIDs     []int64  `json:"value_ids"`
	Values       []string `json:"values"`
}

// etsyInventoryUpdate is the updateListingInventory body; offering prices are floats
type etsyInventoryUpdate struct {
	Products []etsyProductUpdate `json:"products"`
}

type etsyProductUpdate struct {
	SKU            string               `json:"sku"`
	PropertyValues []etsyPropertyValue  `json:"property_values"`
	Offerings      []etsyOfferingUpdate `json:"offerings"`
}

type etsyOfferingUpdate struct {
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	IsEnabled bool    `json:"is_enabled"`
}

type etsyReceiptsResponse struct {
	Count   int           `json:"count"`
	Results []etsyReceipt `json:"results"`
}

type etsyReceipt struct {
	ReceiptID       int64             `json:"receipt_id"`
	Name            string            `json:"name"`
	BuyerEmail      string            `json:"buyer_email"`
	Status          string            `json:"status"`
	IsPaid          bool              `json:"is_paid"`
	IsShipped       bool              `json:"is_shipped"`
	CreateTimestamp int64             `json:"create_timestamp"`
	GrandTotal      etsyMoney         `json:"grandtotal"`
	Transactions    []etsyTransaction `json:"transactions"`
}

type etsyTransaction struct {
	TransactionID int64     `json:"transaction_id"`
	Title         string    `json:"title"`
	SKU           string    `json:"sku"`
	Quantity      int       `json:"quantity"`
	Price         etsyMoney `json:"price"`
}
