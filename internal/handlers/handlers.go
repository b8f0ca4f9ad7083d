package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Alexander-D-Karpov/photogallery/internal/middleware"
	"github.com/Alexander-D-Karpov/photogallery/internal/repository"
	"github.com/Alexander-D-Karpov/photogallery/internal/services"
)

// Pinger reports whether the metadata store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	MaxUploadBytes int64
	CORSOrigins    []string
}

type Handlers struct {
	catalog *services.CatalogService
	ingest  *services.IngestService
	store   Pinger
	opts    Options
	logger  *slog.Logger
}

func New(catalog *services.CatalogService, ingest *services.IngestService, store Pinger, opts Options, logger *slog.Logger) *Handlers {
	return &Handlers{
		catalog: catalog,
		ingest:  ingest,
		store:   store,
		opts:    opts,
		logger:  logger.With("component", "http"),
	}
}

// Router wires every route behind recovery, CORS, metrics and access logs.
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	r.Use(middleware.Metrics)
	r.Use(middleware.RequestLogger(h.logger))

	r.Route("/themes", func(r chi.Router) {
		r.Get("/", h.listThemes)
		r.Post("/add", h.addTheme)
		r.Put("/edit/{id}", h.editTheme)
		r.Delete("/delete/{id}", h.deleteTheme)
	})

	r.Route("/collections", func(r chi.Router) {
		r.Get("/", h.listCollections)
		r.Post("/add", h.addCollection)
		r.Put("/edit/{id}", h.editCollection)
		r.Delete("/delete/{id}", h.deleteCollection)
		r.Get("/{theme}", h.listCollectionsByTheme)
	})

	r.Route("/photos", func(r chi.Router) {
		r.Get("/", h.listAllPhotos)
		r.Get("/theme/{theme}/collection/{collection}", h.listPhotos)
		r.Get("/detail/{id}", h.photoDetail)
		r.Get("/download/{id}", h.downloadPhoto)
	})

	r.Route("/utils", func(r chi.Router) {
		r.Get("/favorites", h.listFavourites)
		r.Put("/favorite/{id}", h.setFavourite)
		r.Post("/upload", h.upload)
		r.Put("/edit/{id}", h.editPhoto)
		r.Delete("/delete/{id}", h.deletePhoto)
	})

	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("metadata store unreachable", "error", err)
		h.jsonStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.jsonResponse(w, map[string]string{"status": "ok"})
}

func (h *Handlers) jsonResponse(w http.ResponseWriter, data any) {
	h.jsonStatus(w, http.StatusOK, data)
}

func (h *Handlers) jsonStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Debug("write response", "error", err)
	}
}

func (h *Handlers) message(w http.ResponseWriter, msg string) {
	h.jsonResponse(w, map[string]string{"message": msg})
}

func (h *Handlers) errorResponse(w http.ResponseWriter, status int, detail string) {
	h.jsonStatus(w, status, map[string]string{"detail": detail})
}

// fail maps an error from the service layer to a response.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.errorResponse(w, http.StatusNotFound, "Photo not found")
	case errors.Is(err, services.ErrInvalidInput):
		h.errorResponse(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a JSON body into v, answering 400 itself on failure.
func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
