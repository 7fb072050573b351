package server

import (
	"net/http"
	"time"

	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/http/middleware"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/monitoring"
)

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	monitoring.RegisterMetricsEndpoint(mux)
	mux.HandleFunc("/health", s.healthHandler.HandleHealth())

	mux.HandleFunc("/sales", s.handleSalesCollection)
	mux.HandleFunc("/sales/", s.handleSaleItem)
	mux.HandleFunc("/products", s.handleProductsCollection)
	mux.HandleFunc("/products/", s.handleProductItem)
	mux.HandleFunc("/clients", s.handleClientsCollection)
	mux.HandleFunc("/clients/", s.handleClientItem)

	handler := middleware.NewRecoveryMiddleware(s.logger)(mux)
	handler = middleware.NewLoggingMiddleware(s.logger)(handler)
	handler = monitoring.WrapHandler(handler)
	if s.rateLimiter != nil {
		handler = middleware.NewRateLimitMiddleware(s.rateLimiter)(handler)
	}
	handler = s.timeoutMiddleware(handler)

	return handler
}

func (s *Server) handleSalesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.saleHandler.HandleListSales(w, r)
	case http.MethodPost:
		s.saleHandler.HandleCreateSale(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSaleItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.saleHandler.HandleGetSale(w, r)
}

func (s *Server) handleProductsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.productHandler.HandleListProducts(w, r)
	case http.MethodPost:
		s.productHandler.HandleCreateProduct(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleProductItem(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.productHandler.HandleGetProduct(w, r)
	case http.MethodPut:
		s.productHandler.HandleUpdateProduct(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleClientsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.clientHandler.HandleListClients(w, r)
	case http.MethodPost:
		s.clientHandler.HandleCreateClient(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleClientItem(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.clientHandler.HandleGetClient(w, r)
	case http.MethodPut:
		s.clientHandler.HandleUpdateClient(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.TimeoutHandler(next, 90*time.Second, "Request timeout")
}
