package routes

import (
	"net/http"

	"github.com/zatekoja/medlibrary/internal/api/handlers"
	"github.com/zatekoja/medlibrary/internal/api/loaders"
	"github.com/zatekoja/medlibrary/internal/api/middleware"
	"github.com/zatekoja/medlibrary/internal/domain/repositories"
	"github.com/zatekoja/medlibrary/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	contentHandler   *handlers.ContentHandler
	procedureHandler *handlers.ProcedureHandler
	contentRepo      repositories.ContentRepository

	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router. cacheMiddleware and metrics may be nil.
func NewRouter(
	contentRepo repositories.ContentRepository,
	procedureRepo repositories.ProcedureRepository,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		contentHandler:   handlers.NewContentHandler(contentRepo),
		procedureHandler: handlers.NewProcedureHandler(procedureRepo),
		contentRepo:      contentRepo,
		cacheMiddleware:  cacheMiddleware,
		allowedOrigins:   allowedOrigins,
		metrics:          metrics,
	}
}

func (r *Router) handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, middleware.RoutePattern(h))
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.handle("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.handle("GET /api/stores", r.procedureHandler.ListStores)

	// Content endpoints
	r.handle("GET /api/content", r.contentHandler.ListContent)
	r.handle("GET /api/content/search", r.contentHandler.SearchContent)
	r.handle("GET /api/content/{id}", r.contentHandler.GetContent)
	r.handle("GET /api/content/{id}/levels/{level}", r.contentHandler.GetContentLevel)
	r.handle("GET /api/content/{id}/cross-references", r.contentHandler.GetCrossReferences)

	// Procedure endpoints
	r.handle("GET /api/procedures/{store}", r.procedureHandler.ListProcedures)
	r.handle("GET /api/procedures/{store}/search", r.procedureHandler.SearchProcedures)
	r.handle("GET /api/procedures/{store}/{id}", r.procedureHandler.GetProcedure)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = loaders.Middleware(r.contentRepo)(handler)
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ResponseOptimization(handler)
	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
