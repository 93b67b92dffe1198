package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/taiwoajasa245/verse-courier/internal/auth"
	dailyverse "github.com/taiwoajasa245/verse-courier/internal/daily_verse"
	"github.com/taiwoajasa245/verse-courier/pkg/response"
)

const apiPrefix = "/verse-courier/v1"

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.ServerIsWorking)

	r.Route(apiPrefix, func(r chi.Router) {
		r.Get("/", s.ServerIsWorking)
		r.Get("/health", s.HealthHandler)
		s.loadAuthRoutes(r)
		s.loadVerseRoutes(r)
	})

	return r
}

func (s *Server) ServerIsWorking(w http.ResponseWriter, r *http.Request) {
	resp := make(map[string]string)
	resp["message"] = "Welcome to verse courier"
	response.Success(w, resp, "Success")
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	stats := map[string]string{"status": "up", "store": s.app.Config.StoreDriver}
	if s.app.DB != nil {
		stats = s.app.DB.Health()
	}
	if stats["status"] != "up" {
		response.Error(w, http.StatusServiceUnavailable, "Database unavailable", stats)
		return
	}
	response.Success(w, map[string]any{
		"database": stats,
		"passages": s.app.Index.Len(),
		"topics":   len(s.app.Catalog.Topics()),
	}, "Success")
}

func (s *Server) loadAuthRoutes(router chi.Router) {
	service := auth.NewAuthService(s.app.Gateways, s.app.Config.JWTSecret, s.app.Config.TokenTTL, s.app.Logger)
	handler := auth.NewHandler(service)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", handler.TokenHandler)
	})
}

func (s *Server) loadVerseRoutes(router chi.Router) {
	handler := dailyverse.NewDailyVerseHandler(s.service)

	router.Group(func(r chi.Router) {
		r.Get("/topics", handler.TopicsHandler)
		r.Get("/search", handler.SearchHandler)
		r.Get("/passages/{book}/{chapter}/{verse}", handler.PassageHandler)
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.GatewayMiddleware(s.app.Config.JWTSecret))
		r.Get("/subscribers/{id}", handler.GetSubscriberHandler)
		r.Patch("/subscribers/{id}", handler.UpdateSubscriberHandler)
		r.Post("/subscribers/{id}/ask", handler.AskHandler)
	})
}
