package mail

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html templates/*.css
var templateFS embed.FS

// ErrTemplateNotFound is returned for an unknown template name.
var ErrTemplateNotFound = errors.New("email template not found")

const supportContact = "support@securevote.com | +1 (555) 123-4567"

// TemplateInfo describes one email template.
type TemplateInfo struct {
	Name        string   `json:"name"`
	File        string   `json:"file"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Subject     string   `json:"subject"`
	Fields      []string `json:"fields"`
	footer      func(data map[string]string) string
}

// Template names.
const (
	Welcome           = "welcome"
	VoteConfirmation  = "voteConfirmation"
	ErrorNotification = "errorNotification"
	AdminAlert        = "adminAlert"
)

var catalog = []TemplateInfo{
	{
		Name:        Welcome,
		File:        "welcome.html",
		Title:       "Welcome Email Template",
		Description: "New user onboarding email",
		Subject:     "Welcome to SecureVote",
		Fields:      []string{"userName", "voterId"},
		footer:      func(map[string]string) string { return supportContact },
	},
	{
		Name:        VoteConfirmation,
		File:        "voteConfirmation.html",
		Title:       "Vote Confirmation Email Template",
		Description: "Blockchain receipt email",
		Subject:     "Your Vote Has Been Recorded",
		Fields:      []string{"userName", "voterId", "electionId", "voteTime", "transactionHash"},
		footer:      func(map[string]string) string { return supportContact },
	},
	{
		Name:        ErrorNotification,
		File:        "errorNotification.html",
		Title:       "Error Notification Email Template",
		Description: "System error alerts",
		Subject:     "Action Required on Your Account",
		Fields:      []string{"userName", "errorMessage", "supportLink"},
		footer: func(data map[string]string) string {
			return data["supportLink"] + " | +1 (555) 123-4567"
		},
	},
	{
		Name:        AdminAlert,
		File:        "adminAlert.html",
		Title:       "Admin Alert Email Template",
		Description: "Security and system alerts for administrators",
		Subject:     "Security Alert: Suspicious Activity Detected",
		Fields:      []string{"alertType", "alertDetails", "alertTime", "userId", "ipAddress"},
		footer: func(map[string]string) string {
			return "security@securevote.com | Emergency: +1 (555) 911-0000"
		},
	},
}

// Renderer turns template names plus field values into HTML bodies.
type Renderer struct {
	tmpl    *template.Template
	styles  string
	baseURL string
}

// NewRenderer parses the embedded templates. baseURL prefixes links.
func NewRenderer(baseURL string) (*Renderer, error) {
	css, err := templateFS.ReadFile("templates/emailStyles.css")
	if err != nil {
		return nil, fmt.Errorf("read email styles: %w", err)
	}
	r := &Renderer{styles: string(css), baseURL: strings.TrimRight(baseURL, "/")}

	funcs := template.FuncMap{
		"styles": func() template.CSS { return template.CSS(r.styles) },
		"link":   func(path string) string { return r.baseURL + path },
	}
	tmpl, err := template.New("email").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

// Templates lists the available templates in display order.
func (r *Renderer) Templates() []TemplateInfo {
	out := make([]TemplateInfo, len(catalog))
	copy(out, catalog)
	return out
}

// Styles is the shared stylesheet.
func (r *Renderer) Styles() string {
	return r.styles
}

// Lookup finds a template by name.
func Lookup(name string) (TemplateInfo, error) {
	for _, info := range catalog {
		if info.Name == name {
			return info, nil
		}
	}
	return TemplateInfo{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
}

// Render executes the named template. Missing fields render empty.
func (r *Renderer) Render(name string, fields map[string]string) (string, error) {
	info, err := Lookup(name)
	if err != nil {
		return "", err
	}

	data := make(map[string]string, len(fields)+2)
	for _, f := range info.Fields {
		data[f] = ""
	}
	for k, v := range fields {
		data[k] = v
	}
	data["subject"] = info.Subject
	data["footerContact"] = info.footer(data)

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, info.File, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// Preview renders a template with each field set to its own placeholder,
// e.g. userName becomes "{{userName}}".
func (r *Renderer) Preview(name string) (string, error) {
	info, err := Lookup(name)
	if err != nil {
		return "", err
	}
	fields := make(map[string]string, len(info.Fields))
	for _, f := range info.Fields {
		fields[f] = "{{" + f + "}}"
	}
	return r.Render(name, fields)
}

// Compose renders a template into a ready-to-send message.
func (r *Renderer) Compose(name, to string, fields map[string]string) (Message, error) {
	info, err := Lookup(name)
	if err != nil {
		return Message{}, err
	}
	body, err := r.Render(name, fields)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: info.Subject, Template: name, HTML: body}, nil
}
