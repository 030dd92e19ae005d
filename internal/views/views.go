// Package views серверный рендеринг HTML страниц.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/SversusN/tinyapp/internal/entity"
	"github.com/SversusN/tinyapp/internal/pkg/utils"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Имена страниц
const (
	PageLogin    = "login"
	PageRegister = "register"
	PageIndex    = "urls_index"
	PageNew      = "urls_new"
	PageShow     = "urls_show"
)

var pages = []string{PageLogin, PageRegister, PageIndex, PageNew, PageShow}

// Page данные для шаблонов
type Page struct {
	User    *entity.User
	Links   []entity.Link
	Link    entity.Link
	Visits  []entity.Visit
	BaseURL string
}

// Views набор разобранных шаблонов, каждая страница со своим layout
type Views struct {
	templates map[string]*template.Template
}

func New() (*Views, error) {
	funcs := template.FuncMap{
		"shortURL": utils.GetFullURL,
	}
	v := &Views{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templatesFS,
			"templates/layout.html", fmt.Sprintf("templates/%s.html", name))
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		v.templates[name] = t
	}
	return v, nil
}

// Render сначала пишет в буфер, чтобы ошибка шаблона не оставила полстраницы
func (v *Views) Render(w http.ResponseWriter, status int, name string, data Page) error {
	t, ok := v.templates[name]
	if !ok {
		return fmt.Errorf("unknown template %s", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
