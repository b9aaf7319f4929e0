package adapters

import (
	"sort"

	"github.com/de-tools/edw-harness/pkg/models/api"
	"github.com/de-tools/edw-harness/pkg/models/domain"
	"github.com/de-tools/edw-harness/pkg/models/store"
)

func MapDomainEventToStore(e domain.LifecycleEvent) store.LifecycleEvent {
	return store.LifecycleEvent{
		Resource:    e.ResourceID,
		Cloud:       string(e.Cloud),
		ServiceType: string(e.ServiceType),
		Operation:   string(e.Operation),
		State:       string(e.State),
		Error:       e.Error,
		DurationMs:  e.Duration.Milliseconds(),
		RecordedAt:  e.RecordedAt,
	}
}

func MapStoreEventToAPI(e store.LifecycleEvent) api.LifecycleEvent {
	return api.LifecycleEvent{
		Resource:    e.Resource,
		Cloud:       e.Cloud,
		ServiceType: e.ServiceType,
		Operation:   e.Operation,
		State:       e.State,
		Error:       e.Error,
		DurationMs:  e.DurationMs,
		RecordedAt:  e.RecordedAt,
	}
}

func MapStoreSummaryToAPI(s store.ResourceSummary) api.Resource {
	return api.Resource{
		Name:        s.Resource,
		Cloud:       s.Cloud,
		ServiceType: s.ServiceType,
		State:       s.State,
		EventCount:  s.EventCount,
		LastSeenAt:  s.LastSeenAt,
	}
}

func MapMetadataToStore(resource string, md map[string]string) []store.MetadataEntry {
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]store.MetadataEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, store.MetadataEntry{Resource: resource, Key: k, Value: md[k]})
	}
	return entries
}

func MapStoreMetadataToMap(entries []store.MetadataEntry) map[string]string {
	md := make(map[string]string, len(entries))
	for _, e := range entries {
		md[e.Key] = e.Value
	}
	return md
}
