package html

import (
	"embed"
	"html/template"
	"io"

	"github.com/bjarke-xyz/portfolio/internal/domain"
)

//go:embed pages/*.html
var files embed.FS

var (
	indexTemplate    = parse("pages/index.html")
	adminTemplate    = parse("pages/admin.html")
	appTemplate      = parse("pages/app.html")
	loginTemplate    = parse("pages/login.html")
	registerTemplate = parse("pages/register.html")
)

// Base is shared by every page; Session is nil for visitors.
type Base struct {
	Title   string
	Errors  []string
	Notice  string
	Session *domain.Session
}

type IndexParams struct {
	Base
	Apps []domain.Application
}

func IndexPage(w io.Writer, p IndexParams) error {
	return indexTemplate.Execute(w, p)
}

type AdminParams struct {
	Base
	Apps   []domain.Application
	Dialog domain.DeleteDialog
}

func AdminPage(w io.Writer, p AdminParams) error {
	return adminTemplate.Execute(w, p)
}

type AppParams struct {
	Base
	// Action is the form target, /admin/new or /admin/edit/{id}.
	Action string
	AppID  string
	Fields domain.AppFields
}

func AppPage(w io.Writer, p AppParams) error {
	return appTemplate.Execute(w, p)
}

type LoginParams struct {
	Base
	Email string
}

func LoginPage(w io.Writer, p LoginParams) error {
	return loginTemplate.Execute(w, p)
}

func RegisterPage(w io.Writer, p LoginParams) error {
	return registerTemplate.Execute(w, p)
}

func parse(file string) *template.Template {
	return template.Must(
		template.New("layout.html").ParseFS(files, "pages/layout.html", file))
}
