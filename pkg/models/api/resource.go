package api

import "time"

type Resource struct {
	Name        string    `json:"name"`
	Cloud       string    `json:"cloud"`
	ServiceType string    `json:"service_type"`
	State       string    `json:"state"`
	EventCount  int64     `json:"event_count"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

type LifecycleEvent struct {
	Resource    string    `json:"resource"`
	Cloud       string    `json:"cloud"`
	ServiceType string    `json:"service_type"`
	Operation   string    `json:"operation"`
	State       string    `json:"state"`
	Error       *string   `json:"error,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type ResourceMetadata struct {
	Resource string            `json:"resource"`
	Metadata map[string]string `json:"metadata"`
}

type Error struct {
	Message string `json:"message"`
}
