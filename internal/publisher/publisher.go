// Package publisher defines the event publisher contract used to
// announce completed refresh runs to downstream consumers.
package publisher

import (
	"context"
	"time"
)

// Publisher delivers one event payload to a named topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// RefreshEvent summarizes one refresh run.
type RefreshEvent struct {
	StartedAt    time.Time      `json:"started_at"`
	DurationMS   int64          `json:"duration_ms"`
	TotalRecords int            `json:"total_records"`
	ByCompany    map[string]int `json:"by_company"`
	Stored       int            `json:"stored"`
	Indexed      int            `json:"indexed"`
}

// NoOp discards every event.
type NoOp struct{}

func (NoOp) Publish(context.Context, string, any) (string, error) { return "", nil }
