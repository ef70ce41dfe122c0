package view

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/abasto/abasto/internal/shared"
	"github.com/abasto/abasto/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
	csrf      *shared.CSRFManager
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Data        any
}

// NewEngine parses the embedded templates and binds the CSRF manager so
// every rendered page carries a token.
func NewEngine(csrf *shared.CSRFManager) (*Engine, error) {
	printer := message.NewPrinter(language.Spanish)
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"formatMoney": func(amount float64) string {
			return printer.Sprintf("$%.2f", amount)
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl, csrf: csrf}, nil
}

// Render executes a named template. Flash messages, the CSRF token and the
// current path are filled from the request before execution.
func (e *Engine) Render(w http.ResponseWriter, r *http.Request, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	data.CurrentPath = r.URL.Path
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		if data.Flash == nil {
			data.Flash = sess.PopFlash()
		}
		if data.CSRFToken == "" && e.csrf != nil {
			if token, err := e.csrf.EnsureToken(r.Context(), sess); err == nil {
				data.CSRFToken = token
			}
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}
