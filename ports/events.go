package ports

import "context"

// EventPublisher notifies interested parties about transfer lifecycle
// milestones. Publishing is best-effort and never fails the operation
// that triggered it.
type EventPublisher interface {
	// PublishSubmitted announces an accepted request-to-pay submission
	PublishSubmitted(ctx context.Context, externalID string) error

	// PublishStatus announces the status observed during polling
	PublishStatus(ctx context.Context, externalID string, status string) error
}
