package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"tradesim/src/api/handlers"
	"tradesim/src/utils"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
	Logger  *logrus.Logger
}

func NewServer(handler *handlers.Handler, logger *logrus.Logger) *Server {
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handler,
		Logger:  logger,
	}
	server.InitRoutes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// loggerMiddleware attaches the service logger to every request context.
func (s *Server) loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(utils.WithLogger(r.Context(), s.Logger)))
	})
}

func (s *Server) InitRoutes() {
	s.Router.Use(s.loggerMiddleware)

	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Route("/api", func(r chi.Router) {
		r.Post("/users", s.Handler.Register)
		r.Post("/login", s.Handler.Login)

		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/", s.Handler.GetUser)
			r.Post("/trades", s.Handler.CreateTrade)
			r.Get("/operations", s.Handler.GetOperations)
			r.Get("/portfolio", s.Handler.GetPortfolio)
		})

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", s.Handler.GetAllAssets)
			r.Get("/{ticker}", s.Handler.GetAssetByTicker)
		})

		r.Post("/refresh", s.Handler.RefreshPrices)
	})
}

func NewHTTPServer(server *Server, port string) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      server,
	}
}
