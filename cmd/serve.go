package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reno-works/listings-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP trigger server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(e),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the HTTP surface: a run trigger plus read access to the
// dataset and full control of the favourites store.
func newRouter(e *env) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}))

	// Only one ingestion runs at a time; overlapping triggers are rejected.
	var running atomic.Bool

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/run", func(w http.ResponseWriter, req *http.Request) {
		if !running.CompareAndSwap(false, true) {
			writeError(w, http.StatusConflict, "a run is already in progress")
			return
		}
		defer running.Store(false)

		result, err := e.Engine.Run(req.Context(), query())
		if err != nil {
			zap.L().Error("triggered run failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "run failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"result": result,
			"log":    result.Summary(),
		})
	})

	r.Get("/listings", func(w http.ResponseWriter, req *http.Request) {
		listings, err := e.Listings.Load()
		if err != nil {
			zap.L().Error("load dataset failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "load dataset failed")
			return
		}
		if listings == nil {
			listings = []model.Listing{}
		}
		writeJSON(w, http.StatusOK, listings)
	})

	r.Get("/favourites", func(w http.ResponseWriter, req *http.Request) {
		favs, err := e.Favourites.All()
		if err != nil {
			zap.L().Error("load favourites failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "load favourites failed")
			return
		}
		if favs == nil {
			favs = []model.Favourite{}
		}
		writeJSON(w, http.StatusOK, favs)
	})

	r.Post("/favourites", func(w http.ResponseWriter, req *http.Request) {
		var listing model.Listing
		if err := json.NewDecoder(req.Body).Decode(&listing); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if listing.URL == "" {
			writeError(w, http.StatusBadRequest, "url is required")
			return
		}

		saved, err := e.Favourites.Add(listing, time.Now().UTC())
		if err != nil {
			zap.L().Error("save favourite failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "save favourite failed")
			return
		}
		status := http.StatusCreated
		state := "saved"
		if !saved {
			status = http.StatusOK
			state = "already_saved"
		}
		writeJSON(w, status, map[string]string{"status": state, "url": listing.URL})
	})

	r.Delete("/favourites", func(w http.ResponseWriter, req *http.Request) {
		if err := e.Favourites.Clear(); err != nil {
			zap.L().Error("clear favourites failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "clear favourites failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
