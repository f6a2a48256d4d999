package server

import (
	"net/http"

	"contracthub/internal/gateway/handler"
	"contracthub/internal/gateway/middleware"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
)

// NewRouter mounts the API. corsOrigins restricts browser access; none
// allows every origin.
func NewRouter(h *handler.Handler, logger *log.Logger, corsOrigins ...string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.AccessLog(logger), middleware.CORS(corsOrigins...))

	r.Get("/healthz", h.Healthz)
	r.Get("/debug/cache-metrics", h.CacheMetrics)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/builtins", h.Builtins)

		r.Route("/contracts/{id}", func(r chi.Router) {
			r.Get("/publish-metadata", h.PublishMetadata)
			r.Get("/full-publish-metadata", h.FullPublishMetadata)
			r.Get("/functions", h.Functions)
			r.Get("/functions/{name}/params", h.FunctionParams)
			r.Get("/events", h.Events)
			r.Get("/constructor-params", h.ConstructorParams)
			r.Get("/extensions", h.ContractExtensions)
		})

		r.Post("/extensions/detect", h.DetectExtensions)
		r.Post("/extensions/extract", h.ExtractExtensions)

		r.Get("/ens/{addressOrName}", h.ResolveIdentity)

		r.Get("/blobs/{cid}", h.MirroredPaths)
		r.Get("/blobs/{cid}/*", h.MirroredBlob)

		r.Route("/publishers/{address}", func(r chi.Router) {
			r.Get("/profile", h.PublisherProfile)
			r.Get("/contracts", h.PublishedContracts)
			r.Get("/contracts/watch", h.WatchPublishedContracts)
			r.Get("/contracts/{name}/versions", h.AllVersions)
			r.Post("/invalidate", h.InvalidatePublisher)
		})
	})
	return r
}
