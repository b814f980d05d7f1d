package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages maps a page name to its parsed template set (base layout + page).
type templates struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"date": func(t interface{ Format(string) string }) string {
		return t.Format("2006-01-02")
	},
}

func parseTemplates() (*templates, error) {
	names := []string{
		"welcome.html", "login.html", "register.html", "profile.html",
		"home.html", "weekly.html", "error.html",
	}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t, err := template.New("base.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &templates{pages: pages}, nil
}

// render executes a page template. Template failures after headers are sent
// can only be logged.
func (s *Server) render(w http.ResponseWriter, page string, data interface{}) {
	t, ok := s.tmpl.pages[page]
	if !ok {
		s.log.Error("unknown template", zap.String("page", page))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base.html", data); err != nil {
		s.log.Error("template render failed", zap.String("page", page), zap.Error(err))
	}
}
