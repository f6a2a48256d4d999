package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"contracthub/internal/contractabi"
	"contracthub/internal/extension"
)

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
}

// DetectExtensions detects the feature tree of the posted ABI.
func (h *Handler) DetectExtensions(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "read body: " + err.Error()})
		return
	}
	parsed, err := contractabi.Parse(raw)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	tree := extension.Detect(parsed)
	h.writeJSON(w, http.StatusOK, extensionsResponse{Features: tree, ExtractionResult: extension.ExtractExtensions(tree)})
}

// ExtractExtensions partitions a posted feature tree.
func (h *Handler) ExtractExtensions(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "read body: " + err.Error()})
		return
	}
	var tree extension.FeatureSet
	if err := json.Unmarshal(raw, &tree); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid feature tree: " + err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, extension.ExtractExtensions(tree))
}
