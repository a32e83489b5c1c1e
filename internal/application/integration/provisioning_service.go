package integration

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/shared"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/logger"
)

// ProvisioningService exposes the connect/disconnect lifecycle and link
// administration to the HTTP surface. Token mechanics live in the token
// manager; this service validates input and applies link toggles.
type ProvisioningService struct {
	tokens platform.TokenManager
	links  platform.StoreLinkRepository
	logger *zap.Logger
}

// NewProvisioningService creates a provisioning service.
func NewProvisioningService(tokens platform.TokenManager, links platform.StoreLinkRepository, logger *zap.Logger) *ProvisioningService {
	return &ProvisioningService{tokens: tokens, links: links, logger: logger}
}

// log returns the service logger enriched with the request ids carried by ctx.
func (s *ProvisioningService) log(ctx context.Context) *zap.Logger {
	return logger.Enrich(ctx, s.logger)
}

// Provision connects a tenant's store to a platform using the one-shot user
// access token obtained from the platform's authorization flow.
func (s *ProvisioningService) Provision(ctx context.Context, tenantID uuid.UUID, code platform.Code, userAccessToken string, storeID uuid.UUID) (*platform.Credential, *platform.StoreLink, error) {
	if strings.TrimSpace(userAccessToken) == "" {
		return nil, nil, shared.NewDomainError("INVALID_USER_TOKEN", "User access token is required")
	}
	return s.tokens.Provision(ctx, tenantID, code, userAccessToken, storeID)
}

// Disconnect revokes a tenant's platform credential and removes its links.
func (s *ProvisioningService) Disconnect(ctx context.Context, tenantID uuid.UUID, code platform.Code) error {
	return s.tokens.Disconnect(ctx, tenantID, code)
}

// RotateSecret installs a new webhook signing secret for the platform. The
// previous secret keeps verifying until the rotation window is closed.
func (s *ProvisioningService) RotateSecret(code platform.Code, newSecret string) error {
	if strings.TrimSpace(newSecret) == "" {
		return shared.NewDomainError("INVALID_SECRET", "Signing secret must not be empty")
	}
	s.tokens.RotateSecret(code, newSecret)
	return nil
}

// LinkUpdate carries the optional admin toggles for one store link. Nil
// fields stay untouched.
type LinkUpdate struct {
	Status      *platform.StoreStatus
	PrepTime    *int
	AutoAccept  *bool
	SyncEnabled *bool
}

// UpdateLink applies admin toggles to a store link and persists it.
func (s *ProvisioningService) UpdateLink(ctx context.Context, storeID uuid.UUID, code platform.Code, update LinkUpdate) (*platform.StoreLink, error) {
	link, err := s.links.FindByStoreAndPlatform(ctx, storeID, code)
	if err != nil {
		return nil, err
	}

	if update.Status != nil {
		if err := link.SetStatus(*update.Status); err != nil {
			return nil, err
		}
	}
	if update.PrepTime != nil {
		link.SetPrepTime(*update.PrepTime)
	}
	if update.AutoAccept != nil {
		link.SetAutoAccept(*update.AutoAccept)
	}
	if update.SyncEnabled != nil {
		if *update.SyncEnabled {
			link.Enable()
		} else {
			link.Disable()
		}
	}

	if err := s.links.Save(ctx, link); err != nil {
		return nil, err
	}

	s.log(ctx).Info("store link updated",
		zap.String("store_id", storeID.String()),
		zap.String("platform", string(code)))
	return link, nil
}
