package delivery

import "errors"

// UberEatsConfig holds settings for the Uber Eats marketplace API.
type UberEatsConfig struct {
	// APIBaseURL is the base URL for the Uber Eats API.
	APIBaseURL string
	// InventoryBatchLimit is the maximum item availability updates per
	// request accepted by the platform.
	InventoryBatchLimit int
	// TimeoutSeconds is the HTTP request timeout.
	TimeoutSeconds int
}

const (
	// UberEatsProductionAPIURL is the production API endpoint.
	UberEatsProductionAPIURL = "https://api.uber.com/v1/eats"
	// uberEatsDefaultBatchLimit is the platform's documented availability
	// batch ceiling.
	uberEatsDefaultBatchLimit = 50
)

// ErrUberEatsConfigMissingBaseURL is returned when no API base URL is set.
var ErrUberEatsConfigMissingBaseURL = errors.New("ubereats: API base URL is required")

// NewUberEatsConfig creates an Uber Eats configuration with defaults.
func NewUberEatsConfig() *UberEatsConfig {
	return &UberEatsConfig{
		APIBaseURL:          UberEatsProductionAPIURL,
		InventoryBatchLimit: uberEatsDefaultBatchLimit,
		TimeoutSeconds:      10,
	}
}

// Validate validates the configuration, applying defaults for zero values.
func (c *UberEatsConfig) Validate() error {
	if c.APIBaseURL == "" {
		return ErrUberEatsConfigMissingBaseURL
	}
	if c.InventoryBatchLimit <= 0 {
		c.InventoryBatchLimit = uberEatsDefaultBatchLimit
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	return nil
}
