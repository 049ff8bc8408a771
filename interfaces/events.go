package interfaces

import "context"

// LifecycleEvent is published whenever a warm-up session transitions to
// started, completed, failed, or paused, so an external subscriber can
// react without polling status.
type LifecycleEvent struct {
	EventType       string `json:"eventType"`
	DomainAccountID string `json:"domainAccountId"`
	SessionID       string `json:"sessionId"`
	Timestamp       string `json:"timestamp"`
	Detail          string `json:"detail,omitempty"`
}

const (
	EventWarmupStarted   = "warmup.started"
	EventWarmupCompleted = "warmup.completed"
	EventWarmupFailed    = "warmup.failed"
	EventWarmupPaused    = "warmup.paused"
)

// EventPublisher is the lifecycle-event half of the Orchestrator's
// collaborators.
type EventPublisher interface {
	Publish(ctx context.Context, event LifecycleEvent) error
	Close() error
}
