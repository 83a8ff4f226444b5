// Package views holds the page-state switch: the finite set of pages the
// application can show and the session guard attached to each.
package views

import (
	"github.com/securevote/securevote-be/internal/models"
)

// Page names a view.
type Page string

const (
	Login          Page = "login"
	VoterDashboard Page = "voter-dashboard"
	Vote           Page = "vote"
	AdminPanel     Page = "admin-panel"
	EmailTemplates Page = "email-templates"
	NotFound       Page = "404"
	AccessDenied   Page = "access-denied"
	SessionExpired Page = "session-expired"
)

// Pages lists every known page.
var Pages = []Page{Login, VoterDashboard, Vote, AdminPanel, EmailTemplates, NotFound, AccessDenied, SessionExpired}

// Parse maps a raw name to a Page; unknown names become NotFound.
func Parse(name string) Page {
	for _, p := range Pages {
		if string(p) == name {
			return p
		}
	}
	return NotFound
}

// FullScreen pages render without the header and footer.
func (p Page) FullScreen() bool {
	switch p {
	case Login, NotFound, AccessDenied, SessionExpired:
		return true
	}
	return false
}

// Path is where the HTML front end serves the page.
func (p Page) Path() string {
	switch p {
	case Login:
		return "/login"
	case VoterDashboard:
		return "/dashboard"
	case Vote:
		return "/vote"
	case AdminPanel:
		return "/admin"
	case EmailTemplates:
		return "/emails"
	case AccessDenied:
		return "/access-denied"
	case SessionExpired:
		return "/session-expired"
	}
	return "/404"
}

// Session is what the guards need to know about the caller. A nil User
// means nobody is signed in.
type Session struct {
	User     *models.User
	HasVoted bool
	Expired  bool
}

func (s Session) role() models.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Resolve returns the page actually shown when requested is asked for.
func Resolve(requested Page, s Session) Page {
	switch requested {
	case VoterDashboard:
		if s.role() != models.RoleVoter {
			return denied(s)
		}
		return VoterDashboard
	case Vote:
		if s.role() != models.RoleVoter {
			return denied(s)
		}
		if s.HasVoted {
			return VoterDashboard
		}
		return Vote
	case AdminPanel:
		if s.role() != models.RoleAdmin {
			return denied(s)
		}
		return AdminPanel
	case Login, EmailTemplates, NotFound, AccessDenied, SessionExpired:
		return requested
	}
	return NotFound
}

func denied(s Session) Page {
	if s.User == nil && s.Expired {
		return SessionExpired
	}
	return AccessDenied
}

// Home is the "back to dashboard" target for the caller's role.
func Home(s Session) Page {
	if s.role() == models.RoleAdmin {
		return AdminPanel
	}
	return VoterDashboard
}

// Landing is the first page shown at the site root.
func Landing(s Session) Page {
	if s.User == nil {
		return Login
	}
	return Home(s)
}
