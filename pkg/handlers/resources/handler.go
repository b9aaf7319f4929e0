package resources

import (
	"context"
	"encoding/json"
	"net/http"
	"path"

	"github.com/de-tools/edw-harness/pkg/adapters"
	"github.com/de-tools/edw-harness/pkg/models/api"
	"github.com/de-tools/edw-harness/pkg/models/store"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ProvenanceReader is the read side of the provenance service.
type ProvenanceReader interface {
	Resources(ctx context.Context) ([]store.ResourceSummary, error)
	Events(ctx context.Context, resource string) ([]store.LifecycleEvent, error)
	Metadata(ctx context.Context, resource string) (map[string]string, error)
}

type Handler struct {
	provenance ProvenanceReader
}

func NewHandler(provenance ProvenanceReader) *Handler {
	return &Handler{
		provenance: provenance,
	}
}

// resourceID rebuilds "<service_type>/<connection>" from the route.
func resourceID(r *http.Request) string {
	return path.Join(chi.URLParam(r, "serviceType"), chi.URLParam(r, "connection"))
}

func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summaries, err := h.provenance.Resources(ctx)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, "failed to list resources", err)
		return
	}

	response := make([]api.Resource, 0, len(summaries))
	for _, s := range summaries {
		response = append(response, adapters.MapStoreSummaryToAPI(s))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := resourceID(r)

	events, err := h.provenance.Events(ctx, id)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, "failed to list lifecycle events", err)
		return
	}

	response := make([]api.LifecycleEvent, 0, len(events))
	for _, e := range events {
		response = append(response, adapters.MapStoreEventToAPI(e))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := resourceID(r)

	md, err := h.provenance.Metadata(ctx, id)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, "failed to load metadata", err)
		return
	}
	if len(md) == 0 {
		writeJSON(ctx, w, http.StatusNotFound, api.Error{Message: "resource not found: " + id})
		return
	}
	writeJSON(ctx, w, http.StatusOK, api.ResourceMetadata{Resource: id, Metadata: md})
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	zerolog.Ctx(ctx).Error().Err(err).Msg(msg)
	writeJSON(ctx, w, status, api.Error{Message: msg})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Msg("failed to encode response")
	}
}
