package integration

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/logger"
)

// OrderCommandService executes the domain commands translated from inbound
// platform events: create the local order, hand it to the receipt printer,
// and auto-accept back to the platform when the link is configured for it.
//
// The webhook pipeline guarantees this sink fires at most once per event, so
// none of these steps need their own dedup.
type OrderCommandService struct {
	links    platform.StoreLinkRepository
	registry platform.Registry
	tokens   platform.TokenManager
	orders   OrderStore
	printer  platform.PrinterSink
	logger   *zap.Logger
}

// OrderStore is the surrounding ordering application's order intake. The
// integration layer records platform orders through it and forwards status
// transitions.
type OrderStore interface {
	// CreateFromPlatform records an inbound platform order and returns its
	// local order id.
	CreateFromPlatform(ctx context.Context, link *platform.StoreLink, order *platform.PlatformOrder) (*platform.OrderCommandResult, error)
	// CancelPlatformOrder cancels the local order tied to a platform order.
	CancelPlatformOrder(ctx context.Context, link *platform.StoreLink, platformOrderID string) error
	// UpdatePlatformOrderStatus applies a platform-reported status change.
	UpdatePlatformOrderStatus(ctx context.Context, link *platform.StoreLink, platformOrderID, detail string) error
}

// NewOrderCommandService creates the command sink.
func NewOrderCommandService(
	links platform.StoreLinkRepository,
	registry platform.Registry,
	tokens platform.TokenManager,
	orders OrderStore,
	printer platform.PrinterSink,
	logger *zap.Logger,
) *OrderCommandService {
	return &OrderCommandService{
		links:    links,
		registry: registry,
		tokens:   tokens,
		orders:   orders,
		printer:  printer,
		logger:   logger,
	}
}

// log returns the service logger enriched with the request ids carried by ctx.
func (s *OrderCommandService) log(ctx context.Context) *zap.Logger {
	return logger.Enrich(ctx, s.logger)
}

// Dispatch executes one translated command.
func (s *OrderCommandService) Dispatch(ctx context.Context, cmd *platform.DomainCommand) (*platform.OrderCommandResult, error) {
	link, err := s.links.FindByPlatformStoreID(ctx, cmd.PlatformCode, cmd.PlatformStoreID)
	if err != nil {
		return nil, fmt.Errorf("integration: cannot resolve platform store %q: %w", cmd.PlatformStoreID, err)
	}

	switch cmd.Kind {
	case platform.CommandCreateOrder:
		return s.createOrder(ctx, link, cmd)

	case platform.CommandCancelOrder:
		if err := s.orders.CancelPlatformOrder(ctx, link, cmd.PlatformOrderID); err != nil {
			return nil, err
		}
		return &platform.OrderCommandResult{}, nil

	case platform.CommandUpdateOrderStatus:
		if err := s.orders.UpdatePlatformOrderStatus(ctx, link, cmd.PlatformOrderID, cmd.Detail); err != nil {
			return nil, err
		}
		return &platform.OrderCommandResult{}, nil

	case platform.CommandMenuPublished:
		// Informational: the platform finished importing a pushed menu.
		s.log(ctx).Info("platform menu import confirmed",
			zap.String("platform", string(cmd.PlatformCode)),
			zap.String("platform_store_id", cmd.PlatformStoreID))
		return &platform.OrderCommandResult{}, nil

	default:
		return nil, fmt.Errorf("integration: unknown command kind %q", cmd.Kind)
	}
}

func (s *OrderCommandService) createOrder(ctx context.Context, link *platform.StoreLink, cmd *platform.DomainCommand) (*platform.OrderCommandResult, error) {
	result, err := s.orders.CreateFromPlatform(ctx, link, cmd.Order)
	if err != nil {
		return nil, err
	}

	// Printing failures never bounce the order: the platform has already
	// been acknowledged, so a dead printer is an operational alert only.
	if printErr := s.printer.PrintOrder(ctx, cmd.Order); printErr != nil {
		s.log(ctx).Error("receipt printing failed",
			zap.String("platform", string(cmd.PlatformCode)),
			zap.String("platform_order_id", cmd.Order.PlatformOrderID),
			zap.Error(printErr))
	} else {
		result.Printed = true
	}

	if link.AutoAccept {
		if acceptErr := s.acceptOrder(ctx, link, cmd.Order.PlatformOrderID); acceptErr != nil {
			s.log(ctx).Error("auto-accept failed, order left pending on platform",
				zap.String("platform", string(cmd.PlatformCode)),
				zap.String("platform_order_id", cmd.Order.PlatformOrderID),
				zap.Error(acceptErr))
		} else {
			result.AutoAccepted = true
		}
	}

	return result, nil
}

func (s *OrderCommandService) acceptOrder(ctx context.Context, link *platform.StoreLink, platformOrderID string) error {
	adapter, err := s.registry.Get(link.PlatformCode)
	if err != nil {
		return err
	}
	token, err := s.tokens.GetAppToken(ctx, link.TenantID, link.PlatformCode)
	if err != nil {
		return err
	}
	return adapter.AcceptOrder(ctx, token, link, platformOrderID)
}

// Ensure OrderCommandService implements CommandSink.
var _ platform.CommandSink = (*OrderCommandService)(nil)
