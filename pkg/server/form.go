package server

import (
	"embed"
	"html/template"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"clifton/pkg/strengths"
)

//go:embed templates/*.html
var templateFS embed.FS

type renderer struct {
	templates *template.Template
}

func newRenderer() *renderer {
	funcs := template.FuncMap{
		"catalog":     func() []string { return strengths.Catalog },
		"placeholder": func() string { return strengths.Placeholder },
		"addNew":      func() string { return AddNew },
		"inc":         func(i int) int { return i + 1 },
	}
	return &renderer{
		templates: template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")),
	}
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// GET /
func (s *Server) handleGetForm(c echo.Context) error {
	v := s.newView()
	return c.Render(http.StatusOK, "index.html", v)
}

// POST /
func (s *Server) handlePostForm(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	v := s.parseViewState(form)
	s.apply(c.Request().Context(), v, form.Get("do"))
	return c.Render(http.StatusOK, "index.html", v)
}
