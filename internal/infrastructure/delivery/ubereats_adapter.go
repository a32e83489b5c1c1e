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

// centsFactor converts between decimal currency units and integer cents.
var centsFactor = decimal.NewFromInt(100)

// UberEatsAdapter implements the DeliveryPlatform port for the Uber Eats
// marketplace.
type UberEatsAdapter struct {
	config     *UberEatsConfig
	httpClient *http.Client
}

// NewUberEatsAdapter creates an Uber Eats adapter with the given configuration.
func NewUberEatsAdapter(config *UberEatsConfig) (*UberEatsAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &UberEatsAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Code returns the platform code this adapter handles.
func (a *UberEatsAdapter) Code() platform.Code {
	return platform.CodeUberEats
}

// ---------------------------------------------------------------------------
// Outbound operations
// ---------------------------------------------------------------------------

// PushMenu replaces the store's remote catalog with the given menu snapshot.
func (a *UberEatsAdapter) PushMenu(ctx context.Context, token platform.AccessToken, link *platform.StoreLink, menu *platform.Menu) error {
	req := uberEatsMenuRequest{MenuTitle: menu.Name}
	for _, category := range menu.Categories {
		wireCategory := uberEatsCategory{
			ExternalID: category.ExternalID,
			Title:      category.Name,
			Subtitle:   category.Description,
		}
		for _, item := range category.Items {
			wireCategory.ItemIDs = append(wireCategory.ItemIDs, item.ExternalID)
			req.Items = append(req.Items, uberEatsItem{
				ExternalID:  item.ExternalID,
				Title:       item.Name,
				Description: item.Description,
				PriceCents:  item.Price.Mul(centsFactor).IntPart(),
				ImageURL:    item.ImageURL,
				ForSale:     item.Available,
			})
			for _, option := range item.Options {
				req.Modifiers = append(req.Modifiers, uberEatsModifier{
					ExternalID: option.ExternalID,
					Title:      option.Name,
					PriceCents: option.Price.Mul(centsFactor).IntPart(),
					ItemID:     item.ExternalID,
				})
			}
		}
		req.Categories = append(req.Categories, wireCategory)
	}

	path := fmt.Sprintf("/stores/%s/menus", link.PlatformStoreID)
	_, err := a.doRequest(ctx, token, http.MethodPut, path, req)
	return err
}

// PushInventory marks items in or out of stock, chunked to the platform's
// batch limit. The first failing chunk aborts the remainder.
func (a *UberEatsAdapter) PushInventory(ctx context.Context, token platform.AccessToken, link *platform.StoreLink, deltas []platform.AvailabilityDelta) error {
	for _, chunk := range chunkDeltas(deltas, a.config.InventoryBatchLimit) {
		req := uberEatsAvailabilityRequest{Items: make([]uberEatsItemAvailability, 0, len(chunk))}
		for _, delta := range chunk {
			req.Items = append(req.Items, uberEatsItemAvailability{
				ExternalID: delta.ItemExternalID,
				InStock:    delta.Available,
			})
		}
		path := fmt.Sprintf("/stores/%s/menus/items/availability", link.PlatformStoreID)
		if _, err := a.doRequest(ctx, token, http.MethodPost, path, req); err != nil {
			return err
		}
	}
	return nil
}

// SetStoreStatus pushes the operational status and quoted prep time.
func (a *UberEatsAdapter) SetStoreStatus(ctx context.Context, token platform.AccessToken, link *platform.StoreLink, status platform.StoreStatus) error {
	req := uberEatsStoreStatusRequest{
		Status:          mapToUberEatsStatus(status),
		PrepTimeMinutes: link.PrepTimeMinutes,
	}
	path := fmt.Sprintf("/stores/%s/status", link.PlatformStoreID)
	_, err := a.doRequest(ctx, token, http.MethodPost, path, req)
	return err
}

// AcceptOrder confirms an inbound order back to the platform.
func (a *UberEatsAdapter) AcceptOrder(ctx context.Context, token platform.AccessToken, link *platform.StoreLink, platformOrderID string) error {
	path := fmt.Sprintf("/orders/%s/accept_pos_order", platformOrderID)
	_, err := a.doRequest(ctx, token, http.MethodPost, path, struct{}{})
	return err
}

// ---------------------------------------------------------------------------
// Provisioning
// ---------------------------------------------------------------------------

// RegisterStore performs the one-time store registration with the
// narrow-scope user token and returns the Uber Eats store id.
func (a *UberEatsAdapter) RegisterStore(ctx context.Context, userAccessToken string, storeID uuid.UUID) (string, error) {
	req := uberEatsProvisionRequest{PartnerStoreID: storeID.String()}
	body, err := a.doRequest(ctx, platform.AccessToken(userAccessToken), http.MethodPost, "/stores/provision", req)
	if err != nil {
		return "", err
	}

	var resp uberEatsProvisionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: malformed provision response", platform.ErrInvalidResponse)
	}
	if resp.StoreID == "" {
		return "", fmt.Errorf("%w: provision response missing store id", platform.ErrInvalidResponse)
	}
	return resp.StoreID, nil
}

// ---------------------------------------------------------------------------
// Inbound events
// ---------------------------------------------------------------------------

// ParseEvent decodes only the webhook envelope for dedup admission.
func (a *UberEatsAdapter) ParseEvent(payload []byte) (*platform.InboundEvent, error) {
	var envelope uberEatsEventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", platform.ErrEventMalformed, err)
	}
	if envelope.EventID == "" || envelope.EventType == "" {
		return nil, fmt.Errorf("%w: missing event id or type", platform.ErrEventMalformed)
	}
	return &platform.InboundEvent{
		PlatformCode: platform.CodeUberEats,
		EventID:      envelope.EventID,
		EventType:    envelope.EventType,
		Payload:      payload,
		ReceivedAt:   time.Now(),
	}, nil
}

// HandleInboundEvent translates a webhook event into an internal command.
// Pure: no network calls, no persistence.
func (a *UberEatsAdapter) HandleInboundEvent(event *platform.InboundEvent) (*platform.DomainCommand, error) {
	switch event.EventType {
	case uberEatsEventOrderNotify:
		var orderEvent uberEatsOrderEvent
		if err := json.Unmarshal(event.Payload, &orderEvent); err != nil {
			return nil, fmt.Errorf("%w: %v", platform.ErrEventMalformed, err)
		}
		if orderEvent.Order == nil {
			return nil, fmt.Errorf("%w: order notification without order", platform.ErrEventMalformed)
		}
		return &platform.DomainCommand{
			Kind:            platform.CommandCreateOrder,
			PlatformCode:    platform.CodeUberEats,
			EventID:         event.EventID,
			PlatformStoreID: orderEvent.Meta.StoreID,
			Order:           convertUberEatsOrder(orderEvent.Order),
		}, nil

	case uberEatsEventOrderCancel:
		var orderEvent uberEatsOrderEvent
		if err := json.Unmarshal(event.Payload, &orderEvent); err != nil {
			return nil, fmt.Errorf("%w: %v", platform.ErrEventMalformed, err)
		}
		return &platform.DomainCommand{
			Kind:            platform.CommandCancelOrder,
			PlatformCode:    platform.CodeUberEats,
			EventID:         event.EventID,
			PlatformStoreID: orderEvent.Meta.StoreID,
			PlatformOrderID: orderEvent.Meta.ResourceID,
		}, nil

	case uberEatsEventOrderStatus:
		var statusEvent uberEatsOrderStatusEvent
		if err := json.Unmarshal(event.Payload, &statusEvent); err != nil {
			return nil, fmt.Errorf("%w: %v", platform.ErrEventMalformed, err)
		}
		if statusEvent.Status == "" {
			return nil, fmt.Errorf("%w: status update without status", platform.ErrEventMalformed)
		}
		return &platform.DomainCommand{
			Kind:            platform.CommandUpdateOrderStatus,
			PlatformCode:    platform.CodeUberEats,
			EventID:         event.EventID,
			PlatformStoreID: statusEvent.Meta.StoreID,
			PlatformOrderID: statusEvent.Meta.ResourceID,
			Detail:          statusEvent.Status,
		}, nil

	case uberEatsEventMenuPublished:
		var envelope uberEatsEventEnvelope
		if err := json.Unmarshal(event.Payload, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", platform.ErrEventMalformed, err)
		}
		return &platform.DomainCommand{
			Kind:            platform.CommandMenuPublished,
			PlatformCode:    platform.CodeUberEats,
			EventID:         event.EventID,
			PlatformStoreID: envelope.Meta.StoreID,
			Detail:          envelope.Meta.ResourceID,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", platform.ErrUnsupportedEventType, event.EventType)
	}
}

// convertUberEatsOrder converts a wire order to the internal representation.
func convertUberEatsOrder(order *uberEatsOrder) *platform.PlatformOrder {
	out := &platform.PlatformOrder{
		PlatformOrderID: order.ID,
		PlatformCode:    platform.CodeUberEats,
		DisplayID:       order.DisplayID,
		CustomerName:    order.Eater.FirstName,
		CustomerPhone:   order.Eater.Phone,
		Note:            order.SpecialInstructions,
		Total:           decimal.NewFromInt(order.TotalCents).Div(centsFactor),
		Currency:        order.CurrencyCode,
		Items:           make([]platform.PlatformOrderItem, 0, len(order.Items)),
	}
	if order.PlacedAtUnix > 0 {
		out.PlacedAt = time.Unix(order.PlacedAtUnix, 0)
	}
	for _, item := range order.Items {
		out.Items = append(out.Items, platform.PlatformOrderItem{
			ItemExternalID: item.ExternalID,
			Name:           item.Title,
			Quantity:       item.Quantity,
			UnitPrice:      decimal.NewFromInt(item.PriceCents).Div(centsFactor),
			Options:        item.SelectedOptions,
		})
	}
	return out
}

// mapToUberEatsStatus maps the internal store status to the platform value.
func mapToUberEatsStatus(status platform.StoreStatus) string {
	switch status {
	case platform.StoreStatusOnline:
		return uberEatsStatusOnline
	case platform.StoreStatusBusy:
		return uberEatsStatusPaused
	default:
		return uberEatsStatusOffline
	}
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

// doRequest performs an authenticated JSON request against the Uber Eats API.
func (a *UberEatsAdapter) doRequest(ctx context.Context, token platform.AccessToken, method, path string, payload any) ([]byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ubereats: failed to marshal request: %w", err)
	}

	url := a.config.APIBaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("ubereats: failed to create request: %w", err)
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
		return nil, fmt.Errorf("ubereats: failed to read response: %w", err)
	}

	if err := classifyHTTPStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return body, nil
}

// Ensure UberEatsAdapter implements DeliveryPlatform.
var _ platform.DeliveryPlatform = (*UberEatsAdapter)(nil)
