package server

import (
	"context"
	"crypto/subtle"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"clifton/pkg/compare"
	"clifton/pkg/store"
	"clifton/pkg/strengths"
)

// Comparer produces comparisons for the form and the API.
type Comparer interface {
	Compare(ctx context.Context, a, b strengths.Profile) (*compare.Result, error)
	Regenerate(ctx context.Context, a, b strengths.Profile) (*compare.Result, error)
}

type Server struct {
	Echo     *echo.Echo
	Store    *store.Store
	Comparer Comparer

	// Password gates every page except the status endpoint. Empty disables it.
	Password string
}

func NewServer(st *store.Store, cmp Comparer, password string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = newRenderer()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		Echo:     e,
		Store:    st,
		Comparer: cmp,
		Password: password,
	}

	if password != "" {
		e.Use(middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
			Skipper: func(c echo.Context) bool { return c.Path() == "/api" },
			Realm:   "Strengths",
			Validator: func(_, pw string, c echo.Context) (bool, error) {
				return subtle.ConstantTimeCompare([]byte(pw), []byte(s.Password)) == 1, nil
			},
		}))
	} else {
		log.Warn("no app password configured, the form is open to anyone who can reach it")
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetForm)
	s.Echo.POST("/", s.handlePostForm)

	api := s.Echo.Group("/api")
	api.GET("", s.handleGetStatus)
	api.GET("/strengths", s.handleGetStrengths)
	api.GET("/people", s.handleGetPeople)
	api.GET("/people/:name", s.handleGetPerson)
	api.PUT("/people/:name", s.handlePutPerson)
	api.DELETE("/people/:name", s.handleDeletePerson)
	api.POST("/compare", s.handlePostCompare)
}

func (s *Server) Start(addr string) error {
	log.Info("server listening", "addr", addr, "data", s.Store.Path())
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down server")
	return s.Echo.Shutdown(ctx)
}
