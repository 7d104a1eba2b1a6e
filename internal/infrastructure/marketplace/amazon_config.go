package marketplace

import "errors"

// AmazonConfig holds configuration for Amazon Selling Partner API integration
type AmazonConfig struct {
	// AccessToken is the LWA access token sent as x-amz-access-token
	AccessToken string
	// SellerID is the merchant token used by the Listings API
	SellerID string
	// MarketplaceID selects the marketplace, e.g. ATVPDKIKX0DER for amazon.com
	MarketplaceID string
	// APIBaseURL is the regional SP-API endpoint
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// AmazonNorthAmericaAPIURL is the North America SP-API endpoint
	AmazonNorthAmericaAPIURL = "https://sellingpartnerapi-na.amazon.com"
	// AmazonDefaultMarketplaceID is amazon.com
	AmazonDefaultMarketplaceID = "ATVPDKIKX0DER"
)

// Errors for Amazon configuration
var (
	ErrAmazonConfigMissingAccessToken = errors.New("amazon: access token is required")
	ErrAmazonConfigMissingSellerID    = errors.New("amazon: seller id is required")
)

// NewAmazonConfig creates a new Amazon configuration with defaults
func NewAmazonConfig(accessToken, sellerID string) *AmazonConfig {
	return &AmazonConfig{
		AccessToken:    accessToken,
		SellerID:       sellerID,
		MarketplaceID:  AmazonDefaultMarketplaceID,
		APIBaseURL:     AmazonNorthAmericaAPIURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Amazon configuration and fills defaults
func (c *AmazonConfig) Validate() error {
	if c.AccessToken == "" {
		return ErrAmazonConfigMissingAccessToken
	}
	if c.SellerID == "" {
		return ErrAmazonConfigMissingSellerID
	}
	if c.MarketplaceID == "" {
		c.MarketplaceID = AmazonDefaultMarketplaceID
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = AmazonNorthAmericaAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
