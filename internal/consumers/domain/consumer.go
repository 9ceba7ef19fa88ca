package domain

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/hirelane/talentsync-backend/pkg/enums"
	"github.com/hirelane/talentsync-backend/pkg/logger"
	"github.com/hirelane/talentsync-backend/pkg/outbox"
	"github.com/hirelane/talentsync-backend/pkg/outbox/idempotency"
	"github.com/hirelane/talentsync-backend/pkg/outbox/payloads"
)

const consumerName = "domain-consumer"

type applicationHandler interface {
	SyncStage(ctx context.Context, event payloads.ApplicationStageChangedEvent) error
	CompleteAIReview(ctx context.Context, event payloads.AIReviewCompletedEvent) error
}

type candidateHandler interface {
	LinkIdentity(ctx context.Context, event payloads.CandidateLinkRequestedEvent) error
	SyncResumeMetadata(ctx context.Context, event payloads.ResumeMetadataExtractedEvent) error
}

type sourcingHandler interface {
	RequestAssignment(ctx context.Context, event payloads.SourcerAssignmentRequestedEvent) error
}

// ConsumerParams collects the domain consumer dependencies.
type ConsumerParams struct {
	Subscription *pubsub.Subscriber
	Idempotency  *idempotency.Manager
	Applications applicationHandler
	Candidates   candidateHandler
	Sourcing     sourcingHandler
	Logger       *logger.Logger
}

// Consumer drains the domain subscription and applies each event to local
// state exactly once. Events this service does not consume are acked and
// skipped so the subscription never backs up.
type Consumer struct {
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	applications applicationHandler
	candidates   candidateHandler
	sourcing     sourcingHandler
	logg         *logger.Logger
}

// NewConsumer validates dependencies and builds the consumer.
func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if params.Idempotency == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if params.Applications == nil {
		return nil, fmt.Errorf("application handler required")
	}
	if params.Candidates == nil {
		return nil, fmt.Errorf("candidate handler required")
	}
	if params.Sourcing == nil {
		return nil, fmt.Errorf("sourcing handler required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: params.Subscription,
		idempotency:  params.Idempotency,
		applications: params.Applications,
		candidates:   params.Candidates,
		sourcing:     params.Sourcing,
		logg:         params.Logger,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	if !c.consumes(eventType) {
		c.logg.Info(logCtx, "skipping unconsumed event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}
	logCtx = c.logg.WithField(logCtx, "event_id", eventID.String())

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, consumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.dispatch(ctx, eventType, envelope.Data); err != nil {
		if eventType == enums.EventResumeMetadataExtracted {
			// Resume extraction is best-effort enrichment. A failure is
			// logged and the event dropped; redelivery cannot improve it.
			c.logg.Error(logCtx, "resume metadata sync failed, dropping", err)
			return processResult{ack: true}
		}
		c.logg.Error(logCtx, "event handling failed", err)
		_ = c.idempotency.Delete(ctx, consumerName, eventID)
		return processResult{nack: true}
	}

	return processResult{ack: true}
}

func (c *Consumer) consumes(eventType enums.OutboxEventType) bool {
	switch eventType {
	case enums.EventApplicationStageChanged,
		enums.EventAIReviewCompleted,
		enums.EventCandidateLinkRequested,
		enums.EventSourcerAssignmentRequested,
		enums.EventResumeMetadataExtracted:
		return true
	}
	return false
}

func (c *Consumer) dispatch(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage) error {
	switch eventType {
	case enums.EventApplicationStageChanged:
		var payload payloads.ApplicationStageChangedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse %s payload: %w", eventType, err)
		}
		return c.applications.SyncStage(ctx, payload)
	case enums.EventAIReviewCompleted:
		var payload payloads.AIReviewCompletedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse %s payload: %w", eventType, err)
		}
		return c.applications.CompleteAIReview(ctx, payload)
	case enums.EventCandidateLinkRequested:
		var payload payloads.CandidateLinkRequestedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse %s payload: %w", eventType, err)
		}
		return c.candidates.LinkIdentity(ctx, payload)
	case enums.EventSourcerAssignmentRequested:
		var payload payloads.SourcerAssignmentRequestedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse %s payload: %w", eventType, err)
		}
		return c.sourcing.RequestAssignment(ctx, payload)
	case enums.EventResumeMetadataExtracted:
		var payload payloads.ResumeMetadataExtractedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse %s payload: %w", eventType, err)
		}
		return c.candidates.SyncResumeMetadata(ctx, payload)
	default:
		return fmt.Errorf("no handler for event type %s", eventType)
	}
}
