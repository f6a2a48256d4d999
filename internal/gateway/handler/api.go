package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	cacheblob "contracthub/internal/cache/blob"
	"contracthub/internal/contractid"
	"contracthub/internal/ens"
	"contracthub/internal/gateway/middleware"
	blobrepo "contracthub/internal/gateway/repository/blob"
	"contracthub/internal/publish"
	"contracthub/internal/query"
	"contracthub/internal/util/jsonutil"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
)

// maxRequestBody bounds uploaded ABIs and feature trees.
const maxRequestBody = 5 << 20

// BlobMirror is the read side of the mirror of fetched IPFS documents.
type BlobMirror interface {
	Get(ctx context.Context, root, path string) ([]byte, error)
	GetURL(ctx context.Context, root, path string) (string, error)
	List(ctx context.Context, root string) ([]string, error)
	Metrics() cacheblob.MetricsSnapshot
}

var errNoBlobMirror = errors.New("blob mirror is not configured")

// Handler serves the HTTP API on top of the publish service.
type Handler struct {
	svc     *publish.Service
	queries *query.Client
	blobs   BlobMirror
	logger  *log.Logger
}

func New(svc *publish.Service, queries *query.Client, blobs BlobMirror, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{svc: svc, queries: queries, blobs: blobs, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	if err := jsonutil.WriteJSON(w, status, v); err != nil {
		h.logger.Debug("write response failed", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "request_id", middleware.RequestIDFrom(r.Context()),
			"method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, contractid.ErrInvalidContractID),
		errors.Is(err, ens.ErrInvalidIdentity):
		return http.StatusBadRequest
	case errors.Is(err, ens.ErrUnresolved),
		errors.Is(err, publish.ErrBuiltIn),
		errors.Is(err, blobrepo.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, publish.ErrRegistryUnavailable),
		errors.Is(err, errNoBlobMirror):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// pathParam returns a URL parameter with percent-encoding removed, so
// identifiers such as ipfs://<cid>/0 can travel as one path segment.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		raw = v
	}
	return strings.TrimSpace(raw)
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) CacheMetrics(w http.ResponseWriter, _ *http.Request) {
	out := map[string]any{"query": h.queries.Stats()}
	if h.blobs != nil {
		out["blob"] = h.blobs.Metrics()
	}
	h.writeJSON(w, http.StatusOK, out)
}
