package router

import (
	"net/http"

	"shop-inventory/internal/handler"
	"shop-inventory/internal/middleware"

	"github.com/rs/zerolog"
)

// Options controls the routes that depend on deployment settings.
type Options struct {
	// MediaFolders are the store folders served back under GET /<folder>/.
	MediaFolders []string
	// Verifier checks bearer tokens when AuthRequired is set.
	Verifier     middleware.TokenVerifier
	AuthRequired bool
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	authHandler *handler.AuthHandler,
	mediaHandler *handler.MediaHandler,
	opts Options,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("POST "+middleware.LoginPath, authHandler.Login)

	mux.HandleFunc("POST /products", productHandler.Create)
	mux.HandleFunc("GET /products", productHandler.List)
	mux.HandleFunc("GET /products/{pid}", productHandler.GetByID)
	mux.HandleFunc("DELETE /products/{pid}", productHandler.Delete)
	mux.HandleFunc("POST /scan", productHandler.Scan)

	for _, folder := range opts.MediaFolders {
		mux.HandleFunc("GET /"+folder+"/", mediaHandler.Serve(folder))
	}

	// Apply middleware in order: Recovery -> Logging -> CORS -> BearerAuth
	var handler http.Handler = mux
	handler = middleware.BearerAuth(opts.Verifier, opts.AuthRequired, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
