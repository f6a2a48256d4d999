package handler

import (
	"context"
	"net/http"

	"contracthub/internal/builtin"
	"contracthub/internal/extension"
	"contracthub/internal/publish"
	"contracthub/internal/query"
)

type builtinContract struct {
	ID string `json:"id"`
	builtin.Entry
}

// Builtins lists the prebuilt contracts answered without I/O, sorted by id.
func (h *Handler) Builtins(w http.ResponseWriter, _ *http.Request) {
	reg := h.svc.Builtins()
	keys := reg.Keys()
	out := make([]builtinContract, 0, len(keys))
	for _, k := range keys {
		e, _ := reg.Lookup(k)
		out = append(out, builtinContract{ID: k, Entry: e})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) PublishMetadata(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	rec, err := query.Fetch(r.Context(), h.queries, query.PublishMetadataKey(id), query.Options{},
		func(ctx context.Context) (publish.PublishMetadataRecord, error) {
			return h.svc.FetchPublishMetadataFromURI(ctx, id)
		})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) FullPublishMetadata(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	meta, err := query.Fetch(r.Context(), h.queries, query.FullPublishMetadataKey(id), query.Options{},
		func(ctx context.Context) (publish.FullPublishMetadata, error) {
			return h.svc.FetchFullPublishMetadata(ctx, id)
		})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, meta)
}

func (h *Handler) Functions(w http.ResponseWriter, r *http.Request) {
	fns, err := h.svc.Functions(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, fns)
}

func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.Events(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, events)
}

func (h *Handler) ConstructorParams(w http.ResponseWriter, r *http.Request) {
	params, err := h.svc.ConstructorParams(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, params)
}

func (h *Handler) FunctionParams(w http.ResponseWriter, r *http.Request) {
	params, err := h.svc.FunctionParams(r.Context(), pathParam(r, "id"), pathParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, params)
}

type extensionsResponse struct {
	Features extension.FeatureSet `json:"features"`
	extension.ExtractionResult
}

func (h *Handler) ContractExtensions(w http.ResponseWriter, r *http.Request) {
	tree, result, err := h.svc.Extensions(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, extensionsResponse{Features: tree, ExtractionResult: result})
}
