package router

import (
	"net/http"

	"phonestore/internal/guard"
	"phonestore/internal/handler"
	"phonestore/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Catalog        *handler.CatalogHandler
	Cart           *handler.CartHandler
	PurchaseOrders *handler.PurchaseOrderHandler
	Account        *handler.AccountHandler
}

// Auth configures the access guard of protected routes.
type Auth struct {
	Guard           *guard.Guard
	Decoder         *guard.Decoder
	BackofficeRoles []string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, auth Auth, logger zerolog.Logger) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "NOT_FOUND", "message": "route not found"}`))
	})

	// Health check endpoint (no authentication required)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Public catalogue
	api.HandleFunc("/phones", h.Catalog.List).Methods(http.MethodGet)
	api.HandleFunc("/phones/{id}", h.Catalog.Get).Methods(http.MethodGet)

	authenticate := middleware.Authenticate(auth.Guard, auth.Decoder, logger)

	// Customer routes
	customer := api.NewRoute().Subrouter()
	customer.Use(authenticate)
	customer.HandleFunc("/profile", h.Account.GetProfile).Methods(http.MethodGet)
	customer.HandleFunc("/profile", h.Account.SaveProfile).Methods(http.MethodPut)
	customer.HandleFunc("/invoices", h.Account.Invoices).Methods(http.MethodGet)
	customer.HandleFunc("/cart", h.Cart.View).Methods(http.MethodGet)
	customer.HandleFunc("/cart/items", h.Cart.AddItem).Methods(http.MethodPost)
	customer.HandleFunc("/cart/items/{id}", h.Cart.SetQuantity).Methods(http.MethodPut)
	customer.HandleFunc("/cart/items/{id}", h.Cart.RemoveItem).Methods(http.MethodDelete)
	customer.HandleFunc("/checkout", h.Cart.Checkout).Methods(http.MethodPost)

	// Back-office routes
	backoffice := api.NewRoute().Subrouter()
	backoffice.Use(authenticate, middleware.RequireRole(auth.Guard, auth.BackofficeRoles, logger))
	backoffice.HandleFunc("/phones/{id}/kardex", h.Catalog.Kardex).Methods(http.MethodGet)
	backoffice.HandleFunc("/purchase-orders", h.PurchaseOrders.Create).Methods(http.MethodPost)
	backoffice.HandleFunc("/purchase-orders/pending", h.PurchaseOrders.ListPending).Methods(http.MethodGet)
	backoffice.HandleFunc("/purchase-orders/registered", h.PurchaseOrders.ListRegistered).Methods(http.MethodGet)
	backoffice.HandleFunc("/purchase-orders/{id}/confirm", h.PurchaseOrders.Confirm).Methods(http.MethodPost)
	backoffice.HandleFunc("/purchase-orders/{id}/cancel", h.PurchaseOrders.Cancel).Methods(http.MethodPost)

	// Apply middleware in order: Recovery -> Logging -> CORS
	var handler http.Handler = r
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
