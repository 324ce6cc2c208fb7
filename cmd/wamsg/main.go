package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lojasmm/wamsg/internal/catalog"
	"github.com/lojasmm/wamsg/internal/config"
	"github.com/lojasmm/wamsg/internal/server"
)

func main() {
	cfg := config.Load()

	store, err := catalog.NewBoltStore(filepath.Join(cfg.DataDir, "wamsg.db"))
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	defer store.Close()

	composeHandler := server.NewComposeHandler(cfg.MaxBodyBytes)
	templateHandler := server.NewTemplateHandler(store, cfg.MaxBodyBytes)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/v1/messages/ios-webview", composeHandler.HandleIOSWebview)
	r.Post("/v1/messages/interactive", composeHandler.HandleInteractive)
	r.Post("/v1/messages/list", composeHandler.HandleList)
	r.Post("/v1/messages/carousel", composeHandler.HandleCarousel)

	r.Post("/v1/templates", templateHandler.HandleCreate)
	r.Get("/v1/templates", templateHandler.HandleList)
	r.Get("/v1/templates/{id}", templateHandler.HandleGet)
	r.Delete("/v1/templates/{id}", templateHandler.HandleDelete)
	r.Post("/v1/templates/{id}/compose", templateHandler.HandleCompose)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("wamsg: listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("wamsg: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
	log.Println("wamsg: stopped")
}
