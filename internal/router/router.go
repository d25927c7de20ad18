package router

import (
	"net/http"
	"strings"

	"optika/internal/handler"
	"optika/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	appointmentHandler *handler.AppointmentHandler,
	orderHandler *handler.OrderHandler,
	productHandler *handler.ProductHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	appointmentRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/appointments"), "/")

		switch {
		case rest == "" && r.Method == http.MethodPost:
			appointmentHandler.Book(w, r)
		case rest == "slots":
			appointmentHandler.Slots(w, r)
		case strings.HasSuffix(rest, "/status") && r.Method == http.MethodPatch:
			appointmentHandler.UpdateStatus(w, r)
		case strings.HasSuffix(rest, "/complete") && r.Method == http.MethodPost:
			appointmentHandler.Complete(w, r)
		case rest != "" && r.Method == http.MethodGet:
			appointmentHandler.GetByID(w, r)
		case rest != "" && r.Method == http.MethodPut:
			appointmentHandler.Update(w, r)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}

	mux.HandleFunc("/api/appointments", appointmentRouteHandler)
	mux.HandleFunc("/api/appointments/", appointmentRouteHandler)

	orderRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/orders"), "/")

		switch {
		case rest == "" && r.Method == http.MethodPost:
			orderHandler.Create(w, r)
		case strings.HasSuffix(rest, "/status") && r.Method == http.MethodPatch:
			orderHandler.UpdateStatus(w, r)
		case strings.HasSuffix(rest, "/cancel") && r.Method == http.MethodPost:
			orderHandler.Cancel(w, r)
		case rest != "" && r.Method == http.MethodGet:
			orderHandler.GetByID(w, r)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}

	mux.HandleFunc("/api/orders", orderRouteHandler)
	mux.HandleFunc("/api/orders/", orderRouteHandler)

	productRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products" && r.URL.Path != "/api/products/" {
			productHandler.GetByID(w, r)
			return
		}
		productHandler.GetAll(w, r)
	}

	mux.HandleFunc("/api/products", productRouteHandler)
	mux.HandleFunc("/api/products/", productRouteHandler)

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(h)
	h = middleware.Recovery(logger)(h)

	return h
}
