package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/freshline/concierge/internal/assistant"
	"github.com/freshline/concierge/internal/events"
	"github.com/freshline/concierge/internal/store"
)

// Catalog is the slice of the store the read endpoints need.
type Catalog interface {
	ListProducts(ctx context.Context) ([]store.Product, error)
}

// Orders is the slice of the store the commit endpoint needs.
type Orders interface {
	CreateOrder(ctx context.Context, items []store.OrderItemInput) (store.Order, error)
}

type Server struct {
	router    *chi.Mux
	port      int
	assistant *assistant.Assistant
	catalog   Catalog
	orders    Orders
	events    *events.Publisher
	logger    *slog.Logger
}

func NewServer(port int, a *assistant.Assistant, catalog Catalog, orders Orders, pub *events.Publisher, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		port:      port,
		assistant: a,
		catalog:   catalog,
		orders:    orders,
		events:    pub,
		logger:    logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/catalog/products", s.listProducts)
	router.Post("/api/orders", s.createOrder)
	router.Post("/api/ai/chat", s.chat)
	router.Post("/api/ai/chat/stream", s.chatStream)
	router.Get("/api/ai/chat/suggestions", s.examplePrompts)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.ListProducts(r.Context())
	if err != nil {
		s.logger.Error("catalog listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "catalog unavailable")
		return
	}
	if products == nil {
		products = []store.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

type createOrderRequest struct {
	Items []store.OrderItemInput `json:"items"`
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "order has no items")
		return
	}

	order, err := s.orders.CreateOrder(r.Context(), req.Items)
	if err != nil {
		s.logger.Error("order commit failed", "error", err)
		writeError(w, http.StatusInternalServerError, "order could not be created")
		return
	}

	if s.events != nil {
		err := s.events.Publish(events.SubjectOrderCreated, events.OrderCreated{
			OrderID:   order.ID.String(),
			Total:     order.Total,
			ItemCount: len(order.Items),
			CreatedAt: order.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			s.logger.Warn("order event publish failed", "order_id", order.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, order)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
