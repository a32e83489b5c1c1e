package printing

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
)

// BridgeConfig holds settings for the store's print bridge, the small agent
// that relays receipt text to the physical thermal printer.
type BridgeConfig struct {
	// Endpoint is the bridge's print URL. Empty means no bridge is
	// deployed; use NewLogPrinter instead.
	Endpoint string
	// Timeout is the HTTP request timeout.
	Timeout time.Duration
}

// BridgePrinter implements platform.PrinterSink by POSTing rendered receipt
// text to the print bridge.
type BridgePrinter struct {
	renderer   *ReceiptRenderer
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewBridgePrinter creates a printer sink for the configured bridge.
func NewBridgePrinter(config BridgeConfig, logger *zap.Logger) (*BridgePrinter, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("printing: bridge endpoint is required")
	}
	renderer, err := NewReceiptRenderer()
	if err != nil {
		return nil, err
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BridgePrinter{
		renderer:   renderer,
		endpoint:   config.Endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// PrintOrder renders the order receipt and sends it to the bridge.
func (p *BridgePrinter) PrintOrder(ctx context.Context, order *platform.PlatformOrder) error {
	receipt, err := p.renderer.Render(order)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(receipt))
	if err != nil {
		return fmt.Errorf("printing: build bridge request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("printing: bridge unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("printing: bridge rejected receipt with status %d", resp.StatusCode)
	}

	p.logger.Debug("receipt sent to print bridge",
		zap.String("platform", string(order.PlatformCode)),
		zap.String("platform_order_id", order.PlatformOrderID))
	return nil
}

// LogPrinter implements platform.PrinterSink by logging the rendered
// receipt. Used when no print bridge is configured, typically in
// development.
type LogPrinter struct {
	renderer *ReceiptRenderer
	logger   *zap.Logger
}

// NewLogPrinter creates a logging printer sink.
func NewLogPrinter(logger *zap.Logger) (*LogPrinter, error) {
	renderer, err := NewReceiptRenderer()
	if err != nil {
		return nil, err
	}
	return &LogPrinter{renderer: renderer, logger: logger}, nil
}

// PrintOrder logs the receipt instead of printing it.
func (p *LogPrinter) PrintOrder(_ context.Context, order *platform.PlatformOrder) error {
	receipt, err := p.renderer.Render(order)
	if err != nil {
		return err
	}
	p.logger.Info("receipt (no print bridge configured)",
		zap.String("platform", string(order.PlatformCode)),
		zap.String("platform_order_id", order.PlatformOrderID),
		zap.String("receipt", receipt))
	return nil
}

// Ensure both sinks implement PrinterSink.
var (
	_ platform.PrinterSink = (*BridgePrinter)(nil)
	_ platform.PrinterSink = (*LogPrinter)(nil)
)
