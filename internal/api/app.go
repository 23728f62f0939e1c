package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/ktcalder/chatrelay/internal/config"
	"github.com/ktcalder/chatrelay/internal/server"
	"github.com/ktcalder/chatrelay/internal/store"
	"github.com/teris-io/shortid"
)

type ChatRelayApp struct {
	log            *log.Logger
	store          store.MessageRepository
	mux            *http.Server
	cs             *server.ChatServer
	uploadDir      string
	allowedOrigins []string
	// generateShortId names uploaded files; overridable in tests
	generateShortId func() (string, error)
}

func NewChatRelayApp(mux *http.ServeMux, logger *log.Logger, cs *server.ChatServer, st store.MessageRepository, cfg *config.Config) *ChatRelayApp {
	s := &ChatRelayApp{
		log:             logger,
		store:           st,
		cs:              cs,
		uploadDir:       cfg.UploadDir,
		allowedOrigins:  cfg.AllowedOrigins,
		generateShortId: shortid.Generate,
	}

	mux.HandleFunc("GET /api/messages", s.getMessages)
	mux.HandleFunc("POST /api/uploads", s.uploadFile)
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	mux.HandleFunc("GET /ws", s.serveWs)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
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

func (s *ChatRelayApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *ChatRelayApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
