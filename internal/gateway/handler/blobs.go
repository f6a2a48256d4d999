package handler

import (
	"net/http"

	"contracthub/internal/contractid"
)

type mirroredPaths struct {
	Root  string   `json:"root"`
	Paths []string `json:"paths"`
}

// MirroredPaths lists the paths mirrored under a root CID.
func (h *Handler) MirroredPaths(w http.ResponseWriter, r *http.Request) {
	if h.blobs == nil {
		h.writeError(w, r, errNoBlobMirror)
		return
	}
	c, _, err := contractid.ParseURI(contractid.Scheme + pathParam(r, "cid"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	root := c.String()
	paths, err := h.blobs.List(r.Context(), root)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if paths == nil {
		paths = []string{}
	}
	h.writeJSON(w, http.StatusOK, mirroredPaths{Root: root, Paths: paths})
}

// MirroredBlob serves one mirrored document. Backends with their own
// download URLs (S3) get a redirect; the rest are served from the mirror.
func (h *Handler) MirroredBlob(w http.ResponseWriter, r *http.Request) {
	if h.blobs == nil {
		h.writeError(w, r, errNoBlobMirror)
		return
	}
	c, path, err := contractid.ParseURI(contractid.Scheme + pathParam(r, "cid") + "/" + pathParam(r, "*"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	root := c.String()

	u, err := h.blobs.GetURL(r.Context(), root, path)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if u != "" {
		http.Redirect(w, r, u, http.StatusTemporaryRedirect)
		return
	}

	raw, err := h.blobs.Get(r.Context(), root, path)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(raw))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(raw); err != nil {
		h.logger.Debug("write blob failed", "root", root, "path", path, "err", err)
	}
}
