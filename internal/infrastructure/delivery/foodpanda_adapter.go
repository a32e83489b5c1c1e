package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
)

// FoodpandaAdapter implements the DeliveryPlatform port for the foodpanda
// aggregator.
type FoodpandaAdapter struct {
	config     *FoodpandaConfig
	httpClient *http.Client
}

// NewFoodpandaAdapter creates a foodpanda adapter with the given configuration.
func NewFoodpandaAdapter(config *FoodpandaConfig) (*FoodpandaAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &FoodpandaAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Code returns the platform code this adapter handles.
func (a *FoodpandaAdapter) Code() platform.Code {
	return platform.CodeFoodpanda
}

// ---------------------------------------------------------------------------
// Outbound operations
// ---------------------------------------------------------------------------

// PushMenu imports the menu snapshot as the restaurant's catalog.
func (a *FoodpandaAdapter) PushMenu(ctx context.Context, token platform.AccessToken, link *platform.StoreLink, menu *platform.Menu) error {
	req := foodpandaCatalogRequest{CatalogName: menu.Name}
	for _, category := range menu.Categories {
		wireCategory := foodpandaCategory{
			RemoteID:    category.ExternalID,
			Name:        category.Name,
			Description: category.Description,
		}
		for _, item := range category.Items {
			product := foodpandaProduct{
				RemoteID:    item.ExternalID,
				Name:        item.Name,
				Description: item.Description,
				Price:       item.Price.StringFixed(2),
				ImageURL:    item.ImageURL,
				Active:      item.Available,
			}
			for _, option := range item.Options {
				product.Toppings = append(product.Toppings, foodpandaOption{
					RemoteID: option.ExternalID,
					Name:     option.Name,
					Price:    option.Price.StringFixed(2),
				})
			}
			wireCategory.Products = append(wireCategory.Products, product)
		}
		req.Categories = append(req.Categories, wireCategory)
	}

	path := fmt.Sprintf("/restaurants/%s/catalog", link.PlatformStoreID)
	_, err := a.doRequest(ctx, token, http.MethodPut, path, req)
	return err
}

// PushInventory toggles product availability, chunked to the batch limit.
func (a *FoodpandaAdapter) PushInventory(ctx context.Context, token platform.AccessToken, link *platform.StoreLink, deltas []platform.AvailabilityDelta) error {
	for _, chunk := range chunkDeltas(deltas, a.config.InventoryBatchLimit) {
		req := foodpandaAvailabilityRequest{Products: make([]foodpandaProductAvailability, 0, len(chunk))}
		for _, delta := range chunk {
			req.Products = append(req.Products, foodpandaProductAvailability{
				RemoteID:  delta.ItemExternalID,
				Available: delta.Available,
			})
		}
		path := fmt.Sprintf("/restaurants/%s/catalog/availability", link.PlatformStoreID)
		if _, err := a.doRequest(ctx, token, http.MethodPost, path, req); err != nil {
			return err
		}
	}
	return nil
}

// SetStoreStatus pushes the restaurant availability state and prep time.
func (a *FoodpandaAdapter) SetStoreStatus(ctx context.Context, token platform.AccessToken, link *platform.StoreLink, status platform.StoreStatus) error {
	req := foodpandaStatusRequest{
		Availability:    mapToFoodpandaState(status),
		PreparationTime: link.PrepTimeMinutes,
	}
	path := fmt.Sprintf("/restaurants/%s/availability", link.PlatformStoreID)
	_, err := a.doRequest(ctx, token, http.MethodPut, path, req)
	return err
}

// AcceptOrder confirms an inbound order back to the platform.
func (a *FoodpandaAdapter) AcceptOrder(ctx context.Context, token platform.AccessToken, link *platform.StoreLink, platformOrderID string) error {
	path := fmt.Sprintf("/orders/%s/confirm", platformOrderID)
	_, err := a.doRequest(ctx, token, http.MethodPost, path, struct{}{})
	return err
}

// ---------------------------------------------------------------------------
// Provisioning
// ---------------------------------------------------------------------------

// RegisterStore performs the one-time restaurant registration with the
// narrow-scope user token and returns the platform restaurant id.
func (a *FoodpandaAdapter) RegisterStore(ctx context.Context, userAccessToken string, storeID uuid.UUID) (string, error) {
	req := foodpandaProvisionRequest{RemoteRestaurantID: storeID.String()}
	body, err := a.doRequest(ctx, platform.AccessToken(userAccessToken), http.MethodPost, "/restaurants", req)
	if err != nil {
		return "", err
	}

	var resp foodpandaProvisionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: malformed provision response", platform.ErrInvalidResponse)
	}
	if resp.PlatformRestaurantID == "" {
		return "", fmt.Errorf("%w: provision response missing restaurant id", platform.ErrInvalidResponse)
	}
	return resp.PlatformRestaurantID, nil
}

// ---------------------------------------------------------------------------
// Inbound events
// ---------------------------------------------------------------------------

// ParseEvent decodes only the webhook envelope for dedup admission.
func (a *FoodpandaAdapter) ParseEvent(payload []byte) (*platform.InboundEvent, error) {
	var envelope foodpandaEventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", platform.ErrEventMalformed, err)
	}
	if envelope.EventID == "" || envelope.Event == "" {
		return nil, fmt.Errorf("%w: missing event id or name", platform.ErrEventMalformed)
	}
	return &platform.InboundEvent{
		PlatformCode: platform.CodeFoodpanda,
		EventID:      envelope.EventID,
		EventType:    envelope.Event,
		Payload:      payload,
		ReceivedAt:   time.Now(),
	}, nil
}

// HandleInboundEvent translates a webhook event into an internal command.
func (a *FoodpandaAdapter) HandleInboundEvent(event *platform.InboundEvent) (*platform.DomainCommand, error) {
	switch event.EventType {
	case foodpandaEventOrderPlaced:
		var orderEvent foodpandaOrderEvent
		if err := json.Unmarshal(event.Payload, &orderEvent); err != nil {
			return nil, fmt.Errorf("%w: %v", platform.ErrEventMalformed, err)
		}
		if orderEvent.Order == nil {
			return nil, fmt.Errorf("%w: order event without order", platform.ErrEventMalformed)
		}
		order, err := convertFoodpandaOrder(orderEvent.Order)
		if err != nil {
			return nil, err
		}
		return &platform.DomainCommand{
			Kind:            platform.CommandCreateOrder,
			PlatformCode:    platform.CodeFoodpanda,
			EventID:         event.EventID,
			PlatformStoreID: orderEvent.PlatformRestaurantID,
			Order:           order,
		}, nil

	case foodpandaEventOrderCancelled:
		var orderEvent foodpandaOrderEvent
		if err := json.Unmarshal(event.Payload, &orderEvent); err != nil {
			return nil, fmt.Errorf("%w: %v", platform.ErrEventMalformed, err)
		}
		cmd := &platform.DomainCommand{
			Kind:            platform.CommandCancelOrder,
			PlatformCode:    platform.CodeFoodpanda,
			EventID:         event.EventID,
			PlatformStoreID: orderEvent.PlatformRestaurantID,
		}
		if orderEvent.Order != nil {
			cmd.PlatformOrderID = orderEvent.Order.Token
		}
		return cmd, nil

	case foodpandaEventCatalogDone:
		var envelope foodpandaEventEnvelope
		if err := json.Unmarshal(event.Payload, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", platform.ErrEventMalformed, err)
		}
		return &platform.DomainCommand{
			Kind:            platform.CommandMenuPublished,
			PlatformCode:    platform.CodeFoodpanda,
			EventID:         event.EventID,
			PlatformStoreID: envelope.PlatformRestaurantID,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", platform.ErrUnsupportedEventType, event.EventType)
	}
}

// convertFoodpandaOrder converts a wire order to the internal representation.
// Decimal strings that fail to parse make the whole event malformed rather
// than silently zeroing a price.
func convertFoodpandaOrder(order *foodpandaOrder) (*platform.PlatformOrder, error) {
	total, err := decimal.NewFromString(order.TotalPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: bad total price %q", platform.ErrEventMalformed, order.TotalPrice)
	}

	out := &platform.PlatformOrder{
		PlatformOrderID: order.Token,
		PlatformCode:    platform.CodeFoodpanda,
		DisplayID:       order.Code,
		CustomerName:    order.Customer.Name,
		CustomerPhone:   order.Customer.MobilePhone,
		Note:            order.Comments,
		Total:           total,
		Currency:        order.Currency,
		Items:           make([]platform.PlatformOrderItem, 0, len(order.Products)),
	}
	if order.CreatedAtRFC != "" {
		if placedAt, parseErr := time.Parse(time.RFC3339, order.CreatedAtRFC); parseErr == nil {
			out.PlacedAt = placedAt
		}
	}
	for _, product := range order.Products {
		unitPrice, err := decimal.NewFromString(product.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("%w: bad unit price %q", platform.ErrEventMalformed, product.UnitPrice)
		}
		out.Items = append(out.Items, platform.PlatformOrderItem{
			ItemExternalID: product.RemoteID,
			Name:           product.Name,
			Quantity:       product.Quantity,
			UnitPrice:      unitPrice,
			Options:        product.SelectedToppings,
		})
	}
	return out, nil
}

// mapToFoodpandaState maps the internal store status to the platform value.
func mapToFoodpandaState(status platform.StoreStatus) string {
	switch status {
	case platform.StoreStatusOnline:
		return foodpandaStateOpen
	case platform.StoreStatusBusy:
		return foodpandaStateBusy
	default:
		return foodpandaStateClosed
	}
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

// doRequest performs an authenticated JSON request against the foodpanda API.
func (a *FoodpandaAdapter) doRequest(ctx context.Context, token platform.AccessToken, method, path string, payload any) ([]byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("foodpanda: failed to marshal request: %w", err)
	}

	url := a.config.APIBaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("foodpanda: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+string(token))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", platform.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("foodpanda: failed to read response: %w", err)
	}

	if err := classifyHTTPStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return body, nil
}

// Ensure FoodpandaAdapter implements DeliveryPlatform.
var _ platform.DeliveryPlatform = (*FoodpandaAdapter)(nil)
