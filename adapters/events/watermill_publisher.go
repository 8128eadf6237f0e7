package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	// TopicSubmitted carries accepted request-to-pay submissions
	TopicSubmitted = "momo.transfer.submitted"

	// TopicStatus carries status observations from polling
	TopicStatus = "momo.transfer.status"
)

// SubmittedEvent announces an accepted submission
type SubmittedEvent struct {
	ExternalID string `json:"external_id"`
}

// StatusEvent announces a polled transaction status
type StatusEvent struct {
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishSubmitted announces an accepted request-to-pay submission
func (p *WatermillPublisher) PublishSubmitted(ctx context.Context, externalID string) error {
	return p.publish(TopicSubmitted, externalID, SubmittedEvent{ExternalID: externalID})
}

// PublishStatus announces the status observed during polling
func (p *WatermillPublisher) PublishStatus(ctx context.Context, externalID string, status string) error {
	return p.publish(TopicStatus, externalID, StatusEvent{ExternalID: externalID, Status: status})
}

func (p *WatermillPublisher) publish(topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(key, payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
