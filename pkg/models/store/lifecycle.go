package store

import "time"

type LifecycleEvent struct {
	Resource    string
	Cloud       string
	ServiceType string
	Operation   string
	State       string
	Error       *string
	DurationMs  int64
	RecordedAt  time.Time
}

type ResourceSummary struct {
	Resource    string
	Cloud       string
	ServiceType string
	State       string
	EventCount  int64
	LastSeenAt  time.Time
}

type MetadataEntry struct {
	Resource string
	Key      string
	Value    string
}
