package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/securevote/securevote-be/internal/mail"
	"github.com/securevote/securevote-be/internal/models"
	"github.com/securevote/securevote-be/internal/views"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func render(t *testing.T, r *Renderer, status int, name string, data PageData) string {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := r.Render(rec, status, name, data); err != nil {
		t.Fatalf("Render(%s): %v", name, err)
	}
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d", status, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	return rec.Body.String()
}

var voter = &models.User{ID: "acct-voter", Email: "voter@demo.com", Role: models.RoleVoter, Name: "John Doe", VoterID: "VTR-2025-001247"}

func TestRenderLoginShowsError(t *testing.T) {
	r := newTestRenderer(t)
	body := render(t, r, http.StatusUnauthorized, string(views.Login), PageData{
		Title:      "Sign In",
		FullScreen: true,
		Error:      "Invalid email or password",
		Data:       LoginView{Email: "voter@demo.com"},
	})

	for _, want := range []string{"Invalid email or password", `value="voter@demo.com"`, "Demo Credentials"} {
		if !strings.Contains(body, want) {
			t.Fatalf("login page missing %q", want)
		}
	}
	if strings.Contains(body, "site-header") {
		t.Fatal("full-screen page should not render the header")
	}
}

func TestRenderDashboardWithReceipt(t *testing.T) {
	r := newTestRenderer(t)
	body := render(t, r, http.StatusOK, string(views.VoterDashboard), PageData{
		Title:    "Dashboard",
		User:     voter,
		HomePath: "/dashboard",
		Data: models.Dashboard{
			User:     *voter,
			HasVoted: true,
			Receipt:  &models.BlockchainReceipt{ElectionID: models.ElectionID, Timestamp: "2025-01-28 10:00:00", TransactionHash: "0xabc"},
			Stats: models.VotingStats{
				Participation: []models.ParticipationSlice{{Name: "Voted", Value: 65, Color: "#28A745"}},
				Hourly:        []models.HourlyVotes{{Hour: "08:00", Votes: 120}, {Hour: "10:00", Votes: 450}},
			},
			System: []models.SystemComponent{{Name: "ZKP Verification", Status: "Active"}},
		},
	})

	for _, want := range []string{"Welcome, John Doe!", "Vote Submitted", "ELC-2025-GENERAL", "0xabc", "VOTER", "support@securevote.com"} {
		if !strings.Contains(body, want) {
			t.Fatalf("dashboard missing %q", want)
		}
	}
	if strings.Contains(body, "CAST YOUR VOTE") {
		t.Fatal("vote button should be hidden once voted")
	}
}

func TestRenderVoteConfirmation(t *testing.T) {
	r := newTestRenderer(t)
	c := models.Candidate{ID: "candidate-2", Name: "Michael Rodriguez", Party: "Republican Party", Photo: "https://example.test/p.jpg"}
	body := render(t, r, http.StatusOK, string(views.Vote), PageData{
		User: voter,
		Data: VoteView{Candidates: []models.Candidate{c}, Selected: &c},
	})
	if !strings.Contains(body, "Confirm Your Vote") || !strings.Contains(body, `value="candidate-2"`) {
		t.Fatal("confirmation dialog not rendered")
	}
}

func TestRenderVoteStatus(t *testing.T) {
	r := newTestRenderer(t)
	done := time.Now()
	tests := []struct {
		name string
		sub  models.Submission
		want string
	}{
		{"processing", models.Submission{ZKPStatus: models.ZKPProcessing}, "Processing Zero-Knowledge Proof..."},
		{"verified", models.Submission{ZKPStatus: models.ZKPVerified}, "ZKP Verified - Submitting to blockchain..."},
		{"receipt", models.Submission{ZKPStatus: models.ZKPVerified, FinishedAt: &done, Receipt: &models.BlockchainReceipt{TransactionHash: "0xfeed"}}, "0xfeed"},
		{"failed", models.Submission{ZKPStatus: models.ZKPProcessing, FinishedAt: &done, Error: "boom"}, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := render(t, r, http.StatusOK, VoteStatus, PageData{User: voter, Refresh: 1, Data: VoteStatusView{Submission: tt.sub}})
			if !strings.Contains(body, tt.want) {
				t.Fatalf("expected %q in page", tt.want)
			}
		})
	}
}

func TestRenderAdminSelectsFilters(t *testing.T) {
	r := newTestRenderer(t)
	body := render(t, r, http.StatusOK, string(views.AdminPanel), PageData{
		User: &models.User{Name: "Admin User", Role: models.RoleAdmin},
		Data: AdminView{
			Overview: models.AdminOverview{ActiveVoters: 1247, VotesCast: 856, Alerts: 3, Uptime: "99.9%"},
			Alerts:   []models.SuspiciousActivity{{Type: "Brute Force", Severity: models.SeverityHigh, IP: "203.0.113.45"}},
			Users:    []models.DirectoryUser{{ID: "voter789", Email: "bob@example.com", Role: models.RoleVoter, Status: models.StatusSuspended, LastLogin: "Never"}},
			Filter:   models.DirectoryFilter{Role: "voter", Status: "suspended"},
			Audit:    []models.AuditLog{{UserID: "voter123", Action: "Vote Cast", Status: models.AuditSuccess}},
		},
	})
	for _, want := range []string{"1247", "Brute Force", `value="voter" selected`, `value="suspended" selected`, "/admin/users/voter789/reactivate", "Vote Cast", "ADMIN"} {
		if !strings.Contains(body, want) {
			t.Fatalf("admin page missing %q", want)
		}
	}
}

func TestRenderEmailPreviews(t *testing.T) {
	r := newTestRenderer(t)
	mr, err := mail.NewRenderer("http://localhost:8080")
	if err != nil {
		t.Fatalf("mail.NewRenderer: %v", err)
	}
	var previews []EmailPreview
	for _, info := range mr.Templates() {
		html, err := mr.Preview(info.Name)
		if err != nil {
			t.Fatalf("Preview(%s): %v", info.Name, err)
		}
		previews = append(previews, EmailPreview{Info: info, HTML: html})
	}

	body := render(t, r, http.StatusOK, string(views.EmailTemplates), PageData{Data: EmailsView{Templates: previews}})
	if got := strings.Count(body, "<iframe"); got != len(previews) {
		t.Fatalf("expected %d previews, got %d", len(previews), got)
	}
	if !strings.Contains(body, "voteConfirmation.html") {
		t.Fatal("missing template file name")
	}
}

func TestRenderErrorPages(t *testing.T) {
	r := newTestRenderer(t)
	tests := []struct {
		page   views.Page
		status int
		want   string
	}{
		{views.NotFound, http.StatusNotFound, "Lost in Cyberspace"},
		{views.AccessDenied, http.StatusForbidden, "Access Restricted"},
		{views.SessionExpired, http.StatusUnauthorized, "Please Login Again"},
	}
	for _, tt := range tests {
		t.Run(string(tt.page), func(t *testing.T) {
			body := render(t, r, tt.status, string(tt.page), PageData{FullScreen: true, HomePath: "/dashboard"})
			if !strings.Contains(body, tt.want) {
				t.Fatalf("expected %q", tt.want)
			}
		})
	}
}

func TestRenderUnknownPage(t *testing.T) {
	r := newTestRenderer(t)
	if err := r.Render(httptest.NewRecorder(), http.StatusOK, "nope", PageData{}); err == nil {
		t.Fatal("expected error for unknown page")
	}
}
