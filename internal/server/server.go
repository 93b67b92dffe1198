package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	dailyverse "github.com/taiwoajasa245/verse-courier/internal/daily_verse"
)

type Server struct {
	port    string
	app     *App
	handler http.Handler
	service dailyverse.DailyVerseService
	logger  *zap.Logger

	cancel context.CancelFunc
	jobs   sync.WaitGroup
}

// NewServer constructs the HTTP surface over a wired App.
func NewServer(app *App) *Server {
	s := &Server{
		port:   app.Config.Port,
		app:    app,
		logger: app.Logger.Named("server"),
		service: dailyverse.NewDailyVerseService(
			app.Index,
			app.Catalog,
			app.Engine,
			app.Selector,
			app.Directory,
			app.Sender,
			app.Location,
			app.Config.SendTimeout,
			app.Logger,
		),
	}
	s.handler = s.RegisterRoutes()
	return s
}

// HTTPServer returns the actual *http.Server instance
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", s.port),
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// StartBackgroundJobs runs the delivery scheduler.
func (s *Server) StartBackgroundJobs() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		s.app.Dispatcher.Run(ctx)
	}()
}

// StopBackgroundJobs cancels the scheduler and waits for in-flight ticks.
func (s *Server) StopBackgroundJobs() {
	if s.cancel != nil {
		s.cancel()
		s.jobs.Wait()
		s.logger.Info("background jobs stopped gracefully")
	}
}
