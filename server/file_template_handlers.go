package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a page together with the shell it is rendered in. The shell is
// the template executed; the page supplies its "content" block.
func ParseTemplate(shell string, pages ...string) (*template.Template, error) {
	return template.New(shell).ParseFS(TemplateFilesFS(), append([]string{shell}, pages...)...)
}

type pages struct {
	login         *template.Template
	register      *template.Template
	verifyOTP     *template.Template
	dashboard     *template.Template
	resource      *template.Template
	memberForm    *template.Template
	notAuthorized *template.Template
	loading       *template.Template
}

func parsePages() (*pages, error) {
	var p pages
	for _, t := range []struct {
		dst   **template.Template
		shell string
		page  string
	}{
		{&p.login, "public.html", "login.html"},
		{&p.register, "public.html", "register.html"},
		{&p.verifyOTP, "public.html", "verify_otp.html"},
		{&p.dashboard, "layout.html", "dashboard.html"},
		{&p.resource, "layout.html", "resource.html"},
		{&p.memberForm, "layout.html", "member_form.html"},
		{&p.notAuthorized, "layout.html", "not_authorized.html"},
		{&p.loading, "loading.html", ""},
	} {
		names := []string{}
		if t.page != "" {
			names = append(names, t.page)
		}
		tmpl, err := ParseTemplate(t.shell, names...)
		if err != nil {
			return nil, fmt.Errorf("parse %s %s: %w", t.shell, t.page, err)
		}
		*t.dst = tmpl
	}
	return &p, nil
}

func render(w http.ResponseWriter, tmpl *template.Template, status int, data any) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Str("template", tmpl.Name()).Msg("Failed to render template")
	}
}
