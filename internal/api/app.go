package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/amhamid/go-marketplace/internal/config"
	"github.com/amhamid/go-marketplace/internal/database"
	"github.com/amhamid/go-marketplace/internal/events"
	"github.com/amhamid/go-marketplace/internal/messaging"
	"github.com/amhamid/go-marketplace/internal/server"
	"github.com/gorilla/handlers"
	"github.com/teris-io/shortid"
)

type MarketApp struct {
	log            *log.Logger
	db             database.MarketRepository
	mux            *http.Server
	cs             *server.ChatServer
	messenger      *messaging.Service
	relay          *events.Relay
	signingKey     []byte
	allowedOrigins []string

	// swappable for tests
	generateShortId func() (string, error)
}

func NewMarketApp(mux *http.ServeMux, logger *log.Logger, cs *server.ChatServer, db database.MarketRepository,
	messenger *messaging.Service, relay *events.Relay, cfg *config.Config) *MarketApp {
	s := &MarketApp{
		log:             logger,
		db:              db,
		cs:              cs,
		messenger:       messenger,
		relay:           relay,
		signingKey:      cfg.SigningKey,
		allowedOrigins:  cfg.AllowedOrigins,
		generateShortId: shortid.Generate,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/session", s.authMiddleware(s.session))
	mux.HandleFunc("POST /api/messages", s.authMiddleware(s.sendMessage))
	mux.HandleFunc("GET /api/messages/conversation", s.authMiddleware(s.getConversation))
	mux.HandleFunc("GET /api/messages/message", s.authMiddleware(s.getMessage))
	mux.HandleFunc("POST /api/messages/seen", s.authMiddleware(s.markSeen))
	mux.HandleFunc("GET /api/messages/conversations", s.authMiddleware(s.getConversations))
	mux.HandleFunc("GET /api/products", s.authMiddleware(s.listProducts))
	mux.HandleFunc("POST /api/products", s.authMiddleware(s.createProduct))
	mux.HandleFunc("GET /api/orders", s.authMiddleware(s.listOrders))
	mux.HandleFunc("POST /api/orders", s.authMiddleware(s.createOrder))
	mux.HandleFunc("GET /api/orders/{orderNumber}", s.authMiddleware(s.getOrder))
	mux.HandleFunc("PATCH /api/orders/{orderNumber}", s.authMiddleware(s.updateOrderStatus))
	mux.HandleFunc("GET /ws", s.authMiddleware(s.serveWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *MarketApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *MarketApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
