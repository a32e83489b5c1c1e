package delivery

import "errors"

// FoodpandaConfig holds settings for the foodpanda partner API.
type FoodpandaConfig struct {
	// APIBaseURL is the base URL for the foodpanda partner API.
	APIBaseURL string
	// InventoryBatchLimit is the maximum availability updates per request.
	InventoryBatchLimit int
	// TimeoutSeconds is the HTTP request timeout.
	TimeoutSeconds int
}

const (
	// FoodpandaProductionAPIURL is the production API endpoint.
	FoodpandaProductionAPIURL = "https://partner-api.foodpanda.com/v2"
	// foodpandaDefaultBatchLimit is the platform's availability batch ceiling.
	foodpandaDefaultBatchLimit = 100
)

// ErrFoodpandaConfigMissingBaseURL is returned when no API base URL is set.
var ErrFoodpandaConfigMissingBaseURL = errors.New("foodpanda: API base URL is required")

// NewFoodpandaConfig creates a foodpanda configuration with defaults.
func NewFoodpandaConfig() *FoodpandaConfig {
	return &FoodpandaConfig{
		APIBaseURL:          FoodpandaProductionAPIURL,
		InventoryBatchLimit: foodpandaDefaultBatchLimit,
		TimeoutSeconds:      10,
	}
}

// Validate validates the configuration, applying defaults for zero values.
func (c *FoodpandaConfig) Validate() error {
	if c.APIBaseURL == "" {
		return ErrFoodpandaConfigMissingBaseURL
	}
	if c.InventoryBatchLimit <= 0 {
		c.InventoryBatchLimit = foodpandaDefaultBatchLimit
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	return nil
}
