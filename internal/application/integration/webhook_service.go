// Package integration contains the application services of the
// delivery-platform integration layer: webhook intake, outbound sync
// orchestration, provisioning and the order command fan-out.
package integration

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/logger"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/signature"
)

// WebhookDisposition names how an inbound delivery was concluded.
type WebhookDisposition string

const (
	// WebhookAccepted means the event was admitted and its command dispatched.
	WebhookAccepted WebhookDisposition = "accepted"
	// WebhookDuplicate means the ledger had already seen this event; the
	// delivery is acknowledged with no side effects.
	WebhookDuplicate WebhookDisposition = "duplicate"
	// WebhookAcknowledged means the event type is not modeled; the delivery
	// is acknowledged so the platform stops retrying, but nothing happens.
	WebhookAcknowledged WebhookDisposition = "acknowledged"
	// WebhookRejected means the payload could not be translated; recorded on
	// the ledger so a replay of the same broken event stays a no-op.
	WebhookRejected WebhookDisposition = "rejected"
)

// WebhookResult is the outcome of one webhook delivery.
type WebhookResult struct {
	Disposition WebhookDisposition
	EventID     string
	EventType   string
	// CommandResult is set when the disposition is accepted and the sink ran.
	CommandResult *platform.OrderCommandResult
}

// WebhookService is the inbound pipeline: verify signature against raw
// bytes, decode the envelope, translate, admit through the dedup ledger,
// then dispatch. The admission insert is the only gate in front of side
// effects; everything before it is pure.
type WebhookService struct {
	registry platform.Registry
	keyRing  *signature.KeyRing
	dedup    platform.DedupStore
	sink     platform.CommandSink
	logger   *zap.Logger
}

// NewWebhookService creates a webhook intake service.
func NewWebhookService(
	registry platform.Registry,
	keyRing *signature.KeyRing,
	dedup platform.DedupStore,
	sink platform.CommandSink,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		registry: registry,
		keyRing:  keyRing,
		dedup:    dedup,
		sink:     sink,
		logger:   logger,
	}
}

// log returns the service logger enriched with the request ids carried by ctx.
func (s *WebhookService) log(ctx context.Context) *zap.Logger {
	return logger.Enrich(ctx, s.logger)
}

// HandleWebhook processes one raw delivery. Signature failures surface as
// ErrSignatureMissing/ErrSignatureInvalid; an undecodable envelope as
// ErrEventMalformed. Duplicates are a success with no side effects.
func (s *WebhookService) HandleWebhook(ctx context.Context, code platform.Code, rawBody []byte, signatureHeader string) (*WebhookResult, error) {
	adapter, err := s.registry.Get(code)
	if err != nil {
		return nil, err
	}

	// Verification runs against the exact received bytes, before any JSON
	// decoding touches the payload.
	if err := signature.Verify(rawBody, signatureHeader, s.keyRing.Secrets(code)); err != nil {
		s.log(ctx).Warn("webhook signature rejected",
			zap.String("platform", string(code)),
			zap.Error(err))
		return nil, err
	}

	event, err := adapter.ParseEvent(rawBody)
	if err != nil {
		return nil, err
	}

	// Translation is pure, so running it ahead of admission is free of side
	// effects and lets the ledger record the final outcome of the event.
	cmd, translateErr := adapter.HandleInboundEvent(event)

	processed := &platform.ProcessedEvent{
		PlatformCode: code,
		EventID:      event.EventID,
		ReceivedAt:   event.ReceivedAt,
		Outcome:      platform.EventOutcomeAccepted,
	}
	if translateErr != nil {
		processed.Outcome = platform.EventOutcomeRejected
	}

	admitted, err := s.dedup.Admit(ctx, processed)
	if err != nil {
		return nil, err
	}
	if !admitted {
		s.log(ctx).Info("duplicate webhook event ignored",
			zap.String("platform", string(code)),
			zap.String("event_id", event.EventID))
		return &WebhookResult{
			Disposition: WebhookDuplicate,
			EventID:     event.EventID,
			EventType:   event.EventType,
		}, nil
	}

	if translateErr != nil {
		if errors.Is(translateErr, platform.ErrUnsupportedEventType) {
			s.log(ctx).Info("unsupported webhook event type acknowledged",
				zap.String("platform", string(code)),
				zap.String("event_type", event.EventType))
			return &WebhookResult{
				Disposition: WebhookAcknowledged,
				EventID:     event.EventID,
				EventType:   event.EventType,
			}, nil
		}
		s.log(ctx).Warn("webhook event rejected",
			zap.String("platform", string(code)),
			zap.String("event_id", event.EventID),
			zap.Error(translateErr))
		return &WebhookResult{
			Disposition: WebhookRejected,
			EventID:     event.EventID,
			EventType:   event.EventType,
		}, translateErr
	}

	// The platform considers the event delivered once admission succeeded,
	// so the dispatch must not die with the client connection.
	dispatchCtx := context.WithoutCancel(ctx)
	result, err := s.sink.Dispatch(dispatchCtx, cmd)
	if err != nil {
		// The ledger entry stands: the event had its one processing chance.
		// Recovery is an operator concern, not a platform retry.
		s.log(ctx).Error("command dispatch failed after admission",
			zap.String("platform", string(code)),
			zap.String("event_id", event.EventID),
			zap.String("command", string(cmd.Kind)),
			zap.Error(err))
		return &WebhookResult{
			Disposition: WebhookAccepted,
			EventID:     event.EventID,
			EventType:   event.EventType,
		}, nil
	}

	s.log(ctx).Info("webhook event processed",
		zap.String("platform", string(code)),
		zap.String("event_id", event.EventID),
		zap.String("command", string(cmd.Kind)))
	return &WebhookResult{
		Disposition:   WebhookAccepted,
		EventID:       event.EventID,
		EventType:     event.EventType,
		CommandResult: result,
	}, nil
}

// PurgeProcessedEvents garbage-collects ledger entries older than the
// retention window. Intended to run on a schedule.
func (s *WebhookService) PurgeProcessedEvents(ctx context.Context, retention time.Duration) (int64, error) {
	return s.dedup.PurgeOlderThan(ctx, time.Now().Add(-retention))
}
