package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/mhartmann/leadcrm/internal/auth"
	"github.com/mhartmann/leadcrm/internal/config"
	"github.com/mhartmann/leadcrm/internal/contacts"
	"github.com/mhartmann/leadcrm/internal/db"
	"github.com/mhartmann/leadcrm/internal/importer"
	"github.com/mhartmann/leadcrm/internal/mailer"
	"github.com/mhartmann/leadcrm/internal/middleware"
	"github.com/mhartmann/leadcrm/internal/repository"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer conn.Close()

	if err := db.RunMigrations(cfg.Database, cfg.Server.MigrationsPath); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	contactRepo := repository.NewContactRepository(conn.Pool)
	importLogRepo := repository.NewImportLogRepository(conn.Pool)

	relay, err := mailer.New(cfg.Mailer)
	if err != nil {
		// The import pipeline works without outbound mail; keep serving.
		logrus.WithError(err).Warn("mail relay unavailable")
	}

	router := mux.NewRouter()
	importer.NewHandler(contactRepo, importLogRepo, logrus.WithField("component", "importer")).Register(router)
	contacts.NewHandler(contactRepo, logrus.WithField("component", "contacts")).Register(router)
	mailer.NewHandler(relay, logrus.WithField("component", "mailer")).Register(router)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	handler := middleware.LoggingMiddleware(auth.Middleware(corsHandler.Handler(router)))

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithField("addr", cfg.Server.Addr).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Fatal("server forced to shutdown")
	}

	logrus.Info("server exited")
}
