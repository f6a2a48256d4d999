package handler

import (
	"context"
	"net/http"

	"contracthub/internal/ens"
	"contracthub/internal/publish"
	"contracthub/internal/query"
)

func (h *Handler) ResolveIdentity(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.ResolveIdentity(r.Context(), pathParam(r, "addressOrName"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, id)
}

func (h *Handler) PublisherProfile(w http.ResponseWriter, r *http.Request) {
	publisher := ens.Normalize(pathParam(r, "address"))
	profile, err := query.Fetch(r.Context(), h.queries, query.PublisherProfileKey(publisher),
		query.Options{StaleTime: query.ProfileStaleTime},
		func(ctx context.Context) (publish.ProfileMetadata, error) {
			return h.svc.FetchPublisherProfile(ctx, publisher)
		})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) PublishedContracts(w http.ResponseWriter, r *http.Request) {
	publisher := ens.Normalize(pathParam(r, "address"))
	list, err := query.Fetch(r.Context(), h.queries, query.PublishedContractsKey(publisher), query.Options{},
		func(ctx context.Context) ([]publish.PublishedContractDetails, error) {
			return h.svc.FetchPublishedContracts(ctx, publisher)
		})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) AllVersions(w http.ResponseWriter, r *http.Request) {
	publisher := ens.Normalize(pathParam(r, "address"))
	name := pathParam(r, "name")
	versions, err := query.Fetch(r.Context(), h.queries, query.AllVersionsKey(publisher, name), query.Options{},
		func(ctx context.Context) ([]publish.PublishedVersion, error) {
			return h.svc.FetchAllVersions(ctx, publisher, name)
		})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, versions)
}

// InvalidatePublisher drops cached registry reads of a publisher, for use
// after it publishes or edits its profile.
func (h *Handler) InvalidatePublisher(w http.ResponseWriter, r *http.Request) {
	publisher := ens.Normalize(pathParam(r, "address"))
	removed := h.queries.Invalidate(query.PublishedContractsKey(publisher)...) +
		h.queries.Invalidate(query.PublisherProfileKey(publisher)...) +
		h.queries.Invalidate("all-releases", publisher)
	h.writeJSON(w, http.StatusOK, map[string]int{"invalidated": removed})
}
