package marketplace

import "errors"

// EtsyConfig holds configuration for Etsy Open API v3 integration
type EtsyConfig struct {
	// APIKey is the application keystring sent as x-api-key
	APIKey string
	// AccessToken is the OAuth2 bearer token of the shop owner
	AccessToken string
	// ShopID is the numeric shop identifier
	ShopID string
	// APIBaseURL is the Open API endpoint
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// PageSize is the listing/receipt page size (max 100)
	PageSize int
}

// EtsyAPIURL is the Open API v3 endpoint
const EtsyAPIURL = "https://openapi.etsy.com"

// Errors for Etsy configuration
var (
	ErrEtsyConfigMissingAPIKey      = errors.New("etsy: api key is required")
	ErrEtsyConfigMissingAccessToken = errors.New("etsy: access token is required")
	ErrEtsyConfigMissingShopID      = errors.New("etsy: shop id is required")
)

// NewEtsyConfig creates a new Etsy configuration with defaults
func NewEtsyConfig(apiKey, accessToken, shopID string) *EtsyConfig {
	return &EtsyConfig{
		APIKey:         apiKey,
		AccessToken:    accessToken,
		ShopID:         shopID,
		APIBaseURL:     EtsyAPIURL,
		TimeoutSeconds: 30,
		PageSize:       100,
	}
}

// Validate validates the Etsy configuration and fills defaults
func (c *EtsyConfig) Validate() error {
	if c.APIKey == "" {
		return ErrEtsyConfigMissingAPIKey
	}
	if c.AccessToken == "" {
		return ErrEtsyConfigMissingAccessToken
	}
	if c.ShopID == "" {
		return ErrEtsyConfigMissingShopID
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = EtsyAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.PageSize <= 0 || c.PageSize > 100 {
		c.PageSize = 100
	}
	return nil
}
