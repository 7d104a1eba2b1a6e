package marketplace

// amazonInventoryResponse is the FBA Inventory API getInventorySummaries payload
type amazonInventoryResponse struct {
	Payload struct {
		InventorySummaries []amazonInventorySummary `json:"inventorySummaries"`
	} `json:"payload"`
	Pagination *struct {
		NextToken string `json:"nextToken"`
	} `json:"pagination,omitempty"`
}

type amazonInventorySummary struct {
	ASIN             string `json:"asin"`
	FnSKU            string `json:"fnSku"`
	SellerSKU        string `json:"sellerSku"`
	TotalQuantity    int    `json:"totalQuantity"`
	InventoryDetails *struct {
		FulfillableQuantity int `json:"fulfillableQuantity"`
	} `json:"inventoryDetails,omitempty"`
}

// sellable prefers the fulfillable count when details were requested
func (s amazonInventorySummary) sellable() int {
	if s.InventoryDetails != nil {
		return s.InventoryDetails.FulfillableQuantity
	}
	return s.TotalQuantity
}

type amazonMoney struct {
	CurrencyCode string `json:"CurrencyCode"`
	Amount       string `json:"Amount"`
}

type amazonOrdersResponse struct {
	Payload struct {
		Orders    []amazonOrder `json:"Orders"`
		NextToken string        `json:"NextToken"`
	} `json:"payload"`
}

type amazonOrder struct {
	AmazonOrderID string       `json:"AmazonOrderId"`
	PurchaseDate  string       `json:"PurchaseDate"`
	OrderStatus   string       `json:"OrderStatus"`
	OrderTotal    *amazonMoney `json:"OrderTotal,omitempty"`
	BuyerInfo     *struct {
		BuyerEmail string `json:"BuyerEmail"`
		BuyerName  string `json:"BuyerName"`
	} `json:"BuyerInfo,omitempty"`
}

type amazonOrderItemsResponse struct {
	Payload struct {
		OrderItems []amazonOrderItem `json:"OrderItems"`
		NextToken  string            `json:"NextToken"`
	} `json:"payload"`
}

type amazonOrderItem struct {
	OrderItemID     string       `json:"OrderItemId"`
	SellerSKU       string       `json:"SellerSKU"`
	Title           string       `json:"Title"`
	QuantityOrdered int          `json:"QuantityOrdered"`
	ItemPrice       *amazonMoney `json:"ItemPrice,omitempty"`
}

// amazonListingsPatch is the Listings Items API patchListingsItem body
type amazonListingsPatch struct {
	ProductType string                     `json:"productType"`
	Patches     []amazonListingsPatchEntry `json:"patches"`
}

type amazonListingsPatchEntry struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value []any  `json:"value"`
}

type amazonListingsPatchResponse struct {
	SKU    string `json:"sku"`
	Status string `json:"status"`
	Issues []struct {
		Code     string `json:"code"`
		Message  string `json:"message"`
		Severity string `json:"severity"`
	} `json:"issues"`
}
