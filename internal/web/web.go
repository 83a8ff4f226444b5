// Package web renders the server-side HTML pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/securevote/securevote-be/internal/mail"
	"github.com/securevote/securevote-be/internal/models"
	"github.com/securevote/securevote-be/internal/views"
)

//go:embed templates/*.html static/*.css
var files embed.FS

// VoteStatus is the page polled while a ballot moves through the pipeline.
// It has no entry in the page-state switch.
const VoteStatus = "vote-status"

var pageFiles = map[string]string{
	string(views.Login):          "login.html",
	string(views.VoterDashboard): "dashboard.html",
	string(views.Vote):           "vote.html",
	VoteStatus:                   "vote_status.html",
	string(views.AdminPanel):     "admin.html",
	string(views.EmailTemplates): "emails.html",
	string(views.NotFound):       "not_found.html",
	string(views.AccessDenied):   "access_denied.html",
	string(views.SessionExpired): "session_expired.html",
}

// PageData is handed to every page. Data carries the page-specific view.
type PageData struct {
	Title      string
	Page       string
	FullScreen bool
	User       *models.User
	HomePath   string
	Error      string
	Refresh    int // seconds; zero disables the meta refresh
	Data       interface{}
}

// LoginView backs the sign-in form.
type LoginView struct {
	Email string
}

// VoteView backs the ballot. Selected is set while the confirmation dialog
// is open.
type VoteView struct {
	Candidates []models.Candidate
	Selected   *models.Candidate
}

// VoteStatusView backs the submission progress page.
type VoteStatusView struct {
	Submission models.Submission
	Candidate  models.Candidate
}

// AdminView backs the admin panel.
type AdminView struct {
	Overview models.AdminOverview
	Alerts   []models.SuspiciousActivity
	Users    []models.DirectoryUser
	Filter   models.DirectoryFilter
	Audit    []models.AuditLog
}

// EmailPreview is one rendered template on the previews page.
type EmailPreview struct {
	Info mail.TemplateInfo
	HTML string
}

// EmailsView backs the email template previews.
type EmailsView struct {
	Templates []EmailPreview
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages      map[string]*template.Template
	stylesheet string
}

// NewRenderer parses every page against the shared layout.
func NewRenderer() (*Renderer, error) {
	css, err := files.ReadFile("static/app.css")
	if err != nil {
		return nil, fmt.Errorf("read stylesheet: %w", err)
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(pageFiles)), stylesheet: string(css)}

	funcs := template.FuncMap{
		"stylesheet": func() template.CSS { return template.CSS(r.stylesheet) },
		"upper":      func(v interface{}) string { return strings.ToUpper(fmt.Sprint(v)) },
		"percent":    percent,
		"maxVotes":   maxVotes,
	}
	for name, file := range pageFiles {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+file)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Render writes the named page with the given status code. The page is
// executed into a buffer first so a template error never leaves a
// half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data PageData) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	if data.Page == "" {
		data.Page = name
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render page %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return part * 100 / whole
}

func maxVotes(hours []models.HourlyVotes) int {
	m := 0
	for _, h := range hours {
		if h.Votes > m {
			m = h.Votes
		}
	}
	return m
}
