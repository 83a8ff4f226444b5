package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/securevote/securevote-be/internal/auth"
	"github.com/securevote/securevote-be/internal/mail"
	"github.com/securevote/securevote-be/internal/models"
	"github.com/securevote/securevote-be/internal/services"
	"github.com/securevote/securevote-be/internal/views"
	"github.com/securevote/securevote-be/internal/web"
)

// Services bundles the providers the HTML pages read from.
type Services struct {
	Accounts   services.AccountServiceProvider
	Candidates services.CandidateServiceProvider
	Ballots    services.BallotServiceProvider
	Directory  services.DirectoryServiceProvider
	Audit      services.AuditServiceProvider
	Security   services.SecurityServiceProvider
	Stats      services.StatsServiceProvider
}

// PageHandler serves the server-rendered front end.
type PageHandler struct {
	pages  *web.Renderer
	emails *mail.Renderer
	svc    Services
	auth   *AuthHandler
	admin  *AdminHandler
}

// NewPageHandler creates a new PageHandler. Sign in and the admin actions
// are shared with the JSON API handlers.
func NewPageHandler(pages *web.Renderer, emails *mail.Renderer, svc Services, authHandler *AuthHandler, adminHandler *AdminHandler) *PageHandler {
	return &PageHandler{pages: pages, emails: emails, svc: svc, auth: authHandler, admin: adminHandler}
}

var pageTitles = map[string]string{
	string(views.Login):          "Sign In",
	string(views.VoterDashboard): "Dashboard",
	string(views.Vote):           "Cast Your Vote",
	web.VoteStatus:               "Submitting Vote",
	string(views.AdminPanel):     "Admin Panel",
	string(views.EmailTemplates): "Email Templates",
	string(views.NotFound):       "Page Not Found",
	string(views.AccessDenied):   "Access Denied",
	string(views.SessionExpired): "Session Expired",
}

var errorStatus = map[views.Page]int{
	views.NotFound:       http.StatusNotFound,
	views.AccessDenied:   http.StatusForbidden,
	views.SessionExpired: http.StatusUnauthorized,
}

func (h *PageHandler) render(w http.ResponseWriter, status int, page string, s views.Session, data web.PageData) {
	data.Page = page
	if data.Title == "" {
		data.Title = pageTitles[page]
	}
	data.FullScreen = views.Page(page).FullScreen()
	data.User = s.User
	data.HomePath = views.Home(s).Path()

	if err := h.pages.Render(w, status, page, data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("Failed to render page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// show answers with page as the result of a guard. Error pages are
// rendered in place; anything else is a redirect.
func (h *PageHandler) show(w http.ResponseWriter, r *http.Request, page views.Page, s views.Session) {
	status, isError := errorStatus[page]
	if !isError {
		http.Redirect(w, r, page.Path(), http.StatusSeeOther)
		return
	}
	if page == views.SessionExpired {
		auth.ClearCookie(w, h.auth.secure)
	}
	h.render(w, status, string(page), s, web.PageData{})
}

// guard resolves page for the caller. When the caller is sent elsewhere the
// response has been written and ok is false.
func (h *PageHandler) guard(w http.ResponseWriter, r *http.Request, page views.Page) (views.Session, bool) {
	s, err := sessionFor(r, h.svc.Ballots)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load session state")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return s, false
	}
	if resolved := views.Resolve(page, s); resolved != page {
		h.show(w, r, resolved, s)
		return s, false
	}
	return s, true
}

// Home sends the caller to their landing page.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	s, err := sessionFor(r, h.svc.Ballots)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load session state")
	}
	http.Redirect(w, r, views.Landing(s).Path(), http.StatusSeeOther)
}

// LoginForm shows the sign-in form, or skips it for a signed-in caller.
func (h *PageHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFor(r, h.svc.Ballots)
	if s.User != nil {
		http.Redirect(w, r, views.Home(s).Path(), http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, string(views.Login), s, web.PageData{Data: web.LoginView{}})
}

// Login handles the sign-in form.
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, string(views.Login), views.Session{}, web.PageData{
			Error: "Invalid form submission",
			Data:  web.LoginView{},
		})
		return
	}
	email := r.PostFormValue("email")

	user, _, _, err := h.auth.signIn(w, r, email, r.PostFormValue("password"))
	if err != nil {
		status := statusFor(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Msg("Failed to sign in")
			msg = "Something went wrong, please try again"
		}
		h.render(w, status, string(views.Login), views.Session{}, web.PageData{
			Error: msg,
			Data:  web.LoginView{Email: email},
		})
		return
	}
	http.Redirect(w, r, views.Home(views.Session{User: &user}).Path(), http.StatusSeeOther)
}

// Logout ends the session and returns to the sign-in form.
func (h *PageHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.signOut(w, r)
	http.Redirect(w, r, views.Login.Path(), http.StatusSeeOther)
}

// Dashboard renders the voter dashboard.
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.guard(w, r, views.VoterDashboard)
	if !ok {
		return
	}
	dashboard, err := buildDashboard(*s.User, h.svc.Ballots, h.svc.Stats)
	if err != nil {
		log.Error().Err(err).Str("voter_id", s.User.VoterID).Msg("Failed to build dashboard")
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}
	h.render(w, http.StatusOK, string(views.VoterDashboard), s, web.PageData{Data: dashboard})
}

func (h *PageHandler) renderVote(w http.ResponseWriter, status int, s views.Session, selected *models.Candidate, errMsg string) {
	candidates, err := h.svc.Candidates.GetAllCandidates()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get candidates")
		http.Error(w, "Failed to load candidates", http.StatusInternalServerError)
		return
	}
	h.render(w, status, string(views.Vote), s, web.PageData{
		Error: errMsg,
		Data:  web.VoteView{Candidates: candidates, Selected: selected},
	})
}

// VoteForm renders the ballot. ?candidate= opens the confirmation dialog.
func (h *PageHandler) VoteForm(w http.ResponseWriter, r *http.Request) {
	s, ok := h.guard(w, r, views.Vote)
	if !ok {
		return
	}

	id := r.URL.Query().Get("candidate")
	if id == "" {
		h.renderVote(w, http.StatusOK, s, nil, "")
		return
	}
	candidate, err := h.svc.Candidates.GetCandidateByID(id)
	if err != nil {
		h.renderVote(w, statusFor(err), s, nil, "Please select a valid candidate")
		return
	}
	h.renderVote(w, http.StatusOK, s, &candidate, "")
}

// CastVote submits the confirmed ballot and moves to the progress page.
func (h *PageHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	s, ok := h.guard(w, r, views.Vote)
	if !ok {
		return
	}

	sub, err := h.svc.Ballots.Submit(*s.User, r.PostFormValue("candidate"), clientIP(r))
	switch {
	case err == nil:
		http.Redirect(w, r, "/vote/status/"+sub.ID, http.StatusSeeOther)
	case errors.Is(err, services.ErrAlreadyVoted):
		http.Redirect(w, r, views.VoterDashboard.Path(), http.StatusSeeOther)
	case errors.Is(err, services.ErrUnknownCandidate):
		h.renderVote(w, http.StatusBadRequest, s, nil, "Please select a valid candidate")
	case errors.Is(err, services.ErrVoteInProgress):
		h.renderVote(w, http.StatusConflict, s, nil, "Your vote is already being submitted")
	default:
		log.Error().Err(err).Str("voter_id", s.User.VoterID).Msg("Failed to submit ballot")
		h.renderVote(w, http.StatusInternalServerError, s, nil, "Your vote could not be submitted, please try again")
	}
}

// VoteStatus shows the progress of a submission and refreshes itself until
// the receipt is ready.
func (h *PageHandler) VoteStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := h.guard(w, r, views.VoterDashboard)
	if !ok {
		return
	}

	sub, err := ownSubmission(h.svc.Ballots, *s.User, chi.URLParam(r, "id"))
	if err != nil {
		h.show(w, r, views.NotFound, s)
		return
	}
	candidate, err := h.svc.Candidates.GetCandidateByID(sub.CandidateID)
	if err != nil {
		log.Warn().Err(err).Str("candidate_id", sub.CandidateID).Msg("Submission references unknown candidate")
	}

	data := web.PageData{Data: web.VoteStatusView{Submission: sub, Candidate: candidate}}
	if !sub.Done() {
		data.Refresh = 1
	}
	h.render(w, http.StatusOK, web.VoteStatus, s, data)
}

// Admin renders the admin panel.
func (h *PageHandler) Admin(w http.ResponseWriter, r *http.Request) {
	s, ok := h.guard(w, r, views.AdminPanel)
	if !ok {
		return
	}

	filter := filterFromQuery(r)
	status := http.StatusOK
	var errMsg string
	users, err := h.svc.Directory.ListUsers(filter)
	if err != nil {
		status = statusFor(err)
		errMsg = err.Error()
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Msg("Failed to list users")
			errMsg = "Failed to load users"
		}
	}

	h.render(w, status, string(views.AdminPanel), s, web.PageData{
		Error: errMsg,
		Data: web.AdminView{
			Overview: h.svc.Stats.Overview(),
			Alerts:   h.svc.Security.ListAlerts(),
			Users:    users,
			Filter:   filter,
			Audit:    h.svc.Audit.List(),
		},
	})
}

func (h *PageHandler) setStatus(status models.DirectoryStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.guard(w, r, views.AdminPanel)
		if !ok {
			return
		}
		if _, err := h.admin.changeStatus(r, chi.URLParam(r, "id"), status); err != nil {
			if statusFor(err) == http.StatusNotFound {
				h.show(w, r, views.NotFound, s)
				return
			}
			log.Error().Err(err).Msg("Failed to update user")
			http.Error(w, "Failed to update user", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, views.AdminPanel.Path(), http.StatusSeeOther)
	}
}

// Suspend handles the suspend button in the user table.
func (h *PageHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.setStatus(models.StatusSuspended)(w, r)
}

// Reactivate handles the reactivate button in the user table.
func (h *PageHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(models.StatusActive)(w, r)
}

// AuditCSV downloads the audit trail for a signed-in admin.
func (h *PageHandler) AuditCSV(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.guard(w, r, views.AdminPanel); !ok {
		return
	}
	h.admin.AuditCSV(w, r)
}

// Emails renders every email template with placeholder values.
func (h *PageHandler) Emails(w http.ResponseWriter, r *http.Request) {
	s, ok := h.guard(w, r, views.EmailTemplates)
	if !ok {
		return
	}

	var previews []web.EmailPreview
	for _, info := range h.emails.Templates() {
		body, err := h.emails.Preview(info.Name)
		if err != nil {
			log.Error().Err(err).Str("template", info.Name).Msg("Failed to render email preview")
			continue
		}
		previews = append(previews, web.EmailPreview{Info: info, HTML: body})
	}
	h.render(w, http.StatusOK, string(views.EmailTemplates), s, web.PageData{Data: web.EmailsView{Templates: previews}})
}

func (h *PageHandler) errorPage(page views.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _ := sessionFor(r, h.svc.Ballots)
		h.render(w, errorStatus[page], string(page), s, web.PageData{})
	}
}

// AccessDenied renders the 403 page.
func (h *PageHandler) AccessDenied(w http.ResponseWriter, r *http.Request) {
	h.errorPage(views.AccessDenied)(w, r)
}

// SessionExpired renders the session-expired page.
func (h *PageHandler) SessionExpired(w http.ResponseWriter, r *http.Request) {
	h.errorPage(views.SessionExpired)(w, r)
}

// NotFound renders the 404 page for any unknown path.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.errorPage(views.NotFound)(w, r)
}
