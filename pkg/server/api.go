package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"clifton/pkg/compare"
	"clifton/pkg/store"
	"clifton/pkg/strengths"
	"clifton/pkg/utils"
)

type putPersonReq struct {
	Strengths []string `json:"strengths"`
}

type compareReq struct {
	Person1    strengths.Profile `json:"person1"`
	Person2    strengths.Profile `json:"person2"`
	Regenerate bool              `json:"regenerate,omitempty"`
}

// pathName returns the :name parameter decoded exactly once. echo routes on
// the raw path only when the request carried one, and leaves it escaped.
func pathName(c echo.Context) string {
	name := c.Param("name")
	if c.Request().URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}
	return strings.TrimSpace(name)
}

// GET /api
func (s *Server) handleGetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "Strengths Comparison API",
		"status":  "ok",
	})
}

// GET /api/strengths
func (s *Server) handleGetStrengths(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"strengths": strengths.Catalog,
		"count":     strengths.Count(),
	})
}

// GET /api/people
func (s *Server) handleGetPeople(c echo.Context) error {
	res := s.Store.Load()
	if res.Status == store.Unreadable {
		return c.JSON(http.StatusInternalServerError, utils.ErrJSON("saved people could not be read"))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"people": res.People,
		"status": res.Status.String(),
	})
}

// GET /api/people/:name
func (s *Server) handleGetPerson(c echo.Context) error {
	name := pathName(c)
	saved, ok := s.Store.Get(name)
	if !ok {
		return c.JSON(http.StatusNotFound, utils.ErrJSON("person not found"))
	}
	return c.JSON(http.StatusOK, strengths.Profile{Name: name, Strengths: saved})
}

// PUT /api/people/:name
func (s *Server) handlePutPerson(c echo.Context) error {
	var req putPersonReq
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid JSON in PUT /api/people", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	name := pathName(c)
	if err := strengths.ValidateName(name); err != nil {
		return c.JSON(http.StatusBadRequest, utils.ErrJSON(err.Error()))
	}
	if err := strengths.Validate(req.Strengths); err != nil {
		return c.JSON(http.StatusBadRequest, utils.ErrJSON(err.Error()))
	}

	previous, existed := s.Store.Get(name)
	if !s.Store.Save(name, req.Strengths) {
		return c.JSON(http.StatusInternalServerError, utils.ErrJSON("failed to save person"))
	}

	var changes []string
	if existed {
		changes = utils.Changes(previous, req.Strengths)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"person":  strengths.Profile{Name: name, Strengths: req.Strengths},
		"created": !existed,
		"changes": changes,
	})
}

// DELETE /api/people/:name
func (s *Server) handleDeletePerson(c echo.Context) error {
	if !s.Store.Delete(pathName(c)) {
		return c.JSON(http.StatusNotFound, utils.ErrJSON("person not found"))
	}
	return c.NoContent(http.StatusNoContent)
}

// resolveProfile fills in saved strengths when only a name was sent.
func (s *Server) resolveProfile(p strengths.Profile) strengths.Profile {
	p.Name = strings.TrimSpace(p.Name)
	if len(p.Strengths) == 0 {
		if saved, ok := s.Store.Get(p.Name); ok {
			p.Strengths = saved
		}
	}
	return p
}

// POST /api/compare
func (s *Server) handlePostCompare(c echo.Context) error {
	var req compareReq
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid JSON in /api/compare", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	people := []strengths.Profile{s.resolveProfile(req.Person1), s.resolveProfile(req.Person2)}
	var problems []string
	for i, p := range people {
		if strengths.ValidateName(p.Name) != nil {
			problems = append(problems, "Please enter a name for Person "+strconv.Itoa(i+1)+".")
		}
	}
	for i, p := range people {
		if err := strengths.Validate(p.Strengths); err != nil {
			problems = append(problems, "Person "+strconv.Itoa(i+1)+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"success": false,
			"errors":  problems,
		})
	}

	ctx := c.Request().Context()
	run := s.Comparer.Compare
	if req.Regenerate {
		run = s.Comparer.Regenerate
	}
	res, err := run(ctx, people[0], people[1])
	switch {
	case errors.Is(err, compare.ErrConfiguration):
		return c.JSON(http.StatusServiceUnavailable, utils.ErrJSON(err.Error()))
	case err != nil:
		return c.JSON(http.StatusBadGateway, utils.ErrJSON(err.Error()))
	}
	return c.JSON(http.StatusOK, res)
}
