// Package api serves the worksheet page and the JSON API.
package api

import (
	"log/slog"
	"math/rand/v2"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"marith/internal/auth"
	"marith/internal/models"
	"marith/internal/page"
	"marith/internal/task"
	"marith/internal/worksheet"
)

// Store is the persistence the API needs.
type Store interface {
	CreateUser(login, password string) (int, error)
	GetUser(login string) (*models.User, error)
	SaveWorksheet(ws *worksheet.Worksheet, userID int) error
	GetWorksheet(id string, userID int) (*worksheet.Worksheet, error)
	ListWorksheets(userID int) ([]worksheet.Worksheet, error)
}

// Server holds the handler dependencies.
type Server struct {
	store    Store
	auth     *auth.Manager
	page     *page.Template
	defaults task.Config
	log      *slog.Logger

	// newGenerator returns a generator for one request.
	newGenerator func() *task.Generator
}

func NewServer(store Store, authManager *auth.Manager, tmpl *page.Template, defaults task.Config, logger *slog.Logger) *Server {
	return &Server{
		store:        store,
		auth:         authManager,
		page:         tmpl,
		defaults:     defaults,
		log:          logger,
		newGenerator: randomGenerator,
	}
}

func randomGenerator() *task.Generator {
	return task.NewGenerator(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// generator returns a seeded generator when seed is set.
func (s *Server) generator(seed *uint64) *task.Generator {
	if seed != nil {
		return task.NewSeededGenerator(*seed)
	}
	return s.newGenerator()
}

// Router sets up the routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", s.HandlePage)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/tasks", s.HandleTasks)
		r.Post("/check", s.HandleCheck)

		r.Post("/register", s.HandleRegister)
		r.Post("/login", s.HandleLogin)
		r.Get("/token-info", s.HandleTokenInfo)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)
			r.Post("/worksheets", s.HandleCreateWorksheet)
			r.Get("/worksheets", s.HandleListWorksheets)
			r.Get("/worksheets/{id}", s.HandleGetWorksheet)
			r.Post("/worksheets/{id}/grade", s.HandleGradeWorksheet)
		})
	})

	return r
}
