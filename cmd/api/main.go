package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taxlens/gst-optimizer/internal/api/handlers"
	"github.com/taxlens/gst-optimizer/internal/api/middleware"
	"github.com/taxlens/gst-optimizer/internal/clients/inmemory"
	"github.com/taxlens/gst-optimizer/internal/config"
	"github.com/taxlens/gst-optimizer/internal/logger"
)

func main() {
	// Parse command-line flags
	var (
		port    = flag.String("port", "", "HTTP server port (overrides config)")
		cfgFile = flag.String("config", "", "Path to YAML config file (optional)")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Port = *port
	}

	// Initialize logger
	log := logger.NewWithLevel(cfg.LogLevel)

	// Initialize the client registry
	clientRepo := inmemory.NewStore()

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(cfg, log)
	clientsHandler := handlers.NewClientsHandler(clientRepo, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			uploadHandler.Upload(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/clients", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			clientsHandler.ListClients(w, r)
		case http.MethodPost:
			clientsHandler.CreateClient(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting GST optimizer API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
