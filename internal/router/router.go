package router

import (
	"net/http"
	"time"

	"rosemary-store/internal/handler"
	"rosemary-store/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
	Report   *handler.ReportHandler
}

// Options holds router settings taken from configuration.
type Options struct {
	APIKey     string
	CartMaxAge time.Duration
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("GET /api/products", h.Product.GetAll)
	mux.HandleFunc("GET /api/products/{id}", h.Product.GetByID)
	mux.HandleFunc("POST /api/products", h.Product.Create)
	mux.HandleFunc("PUT /api/products/{id}", h.Product.Update)
	mux.HandleFunc("DELETE /api/products/{id}", h.Product.Delete)

	// Cart and checkout need a session cookie
	session := middleware.CartSession(opts.CartMaxAge)
	mux.Handle("GET /api/cart", session(http.HandlerFunc(h.Cart.Get)))
	mux.Handle("POST /api/cart/items", session(http.HandlerFunc(h.Cart.AddItem)))
	mux.Handle("PUT /api/cart/items/{productID}", session(http.HandlerFunc(h.Cart.SetItem)))
	mux.Handle("DELETE /api/cart/items/{productID}", session(http.HandlerFunc(h.Cart.RemoveItem)))
	mux.Handle("POST /api/checkout", session(http.HandlerFunc(h.Checkout.Checkout)))

	mux.HandleFunc("GET /api/orders/{id}", h.Order.GetByID)
	mux.HandleFunc("GET /api/employee/orders", h.Order.List)
	mux.HandleFunc("POST /api/employee/orders/{id}/accept", h.Order.Accept)
	mux.HandleFunc("POST /api/employee/orders/{id}/reject", h.Order.Reject)

	mux.HandleFunc("GET /api/reports/low-stock", h.Report.LowStock)
	mux.HandleFunc("GET /api/reports/monthly-sales", h.Report.MonthlySales)
	mux.HandleFunc("GET /api/reports/employee-sales", h.Report.EmployeeSales)

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS -> APIKeyAuth -> Actor
	var handler http.Handler = mux
	handler = middleware.Actor(logger)(handler)
	handler = middleware.APIKeyAuth(opts.APIKey, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
