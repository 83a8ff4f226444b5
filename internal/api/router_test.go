package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/securevote/securevote-be/internal/api/handlers"
	"github.com/securevote/securevote-be/internal/auth"
	"github.com/securevote/securevote-be/internal/database"
	"github.com/securevote/securevote-be/internal/mail"
	"github.com/securevote/securevote-be/internal/models"
	"github.com/securevote/securevote-be/internal/services"
	"github.com/securevote/securevote-be/internal/web"
	"github.com/securevote/securevote-be/internal/websocket"
)

const testSecret = "router-test-secret"

type testApp struct {
	handler http.Handler
	tokens  *auth.Manager
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	db, err := database.New(":memory:")
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := database.Seed(db); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	emails, err := mail.NewRenderer("http://localhost:8080")
	if err != nil {
		t.Fatalf("mail.NewRenderer: %v", err)
	}
	pages, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("web.NewRenderer: %v", err)
	}
	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	mailer := mail.NewLogMailer(10)
	audit := services.NewAuditService(0, hub)
	security := services.NewSecurityService(services.SecurityConfig{Threshold: 3, Window: time.Minute}, audit, emails, mailer, hub)
	stats := services.NewStatsService(nil, security)
	candidates := services.NewCandidateService(db)
	ballots := services.NewBallotService(db, services.BallotConfig{ProofDelay: time.Millisecond, CommitDelay: time.Millisecond}, candidates, stats, audit, emails, mailer, hub)
	t.Cleanup(ballots.Close)

	tokens := auth.NewManager(testSecret, time.Hour)
	svc := handlers.Services{
		Accounts:   services.NewAccountService(db),
		Candidates: candidates,
		Ballots:    ballots,
		Directory:  services.NewDirectoryService(db),
		Audit:      audit,
		Security:   security,
		Stats:      stats,
	}
	router := NewRouter(Options{CORSOrigins: []string{"http://localhost:3000"}}, svc, tokens, pages, emails, hub)
	return testApp{handler: router, tokens: tokens}
}

func (a testApp) do(t *testing.T, method, target, body string, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	switch {
	case strings.HasPrefix(body, "{"):
		req.Header.Set("Content-Type", "application/json")
	case body != "":
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if user != nil {
		token, _, err := a.tokens.GenerateJWT(*user)
		if err != nil {
			t.Fatalf("GenerateJWT: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	resp := httptest.NewRecorder()
	a.handler.ServeHTTP(resp, req)
	return resp
}

func voter() *models.User {
	u := database.DemoAccounts[0].User
	return &u
}

func admin() *models.User {
	u := database.DemoAccounts[1].User
	return &u
}

func TestLoginPage(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, http.MethodGet, "/login", "", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Sign In") {
		t.Fatalf("unexpected login page %d", resp.Code)
	}

	form := url.Values{"email": {"voter@demo.com"}, "password": {"wrong"}}.Encode()
	resp = app.do(t, http.MethodPost, "/login", form, nil)
	if resp.Code != http.StatusUnauthorized || !strings.Contains(resp.Body.String(), "Invalid email or password") {
		t.Fatalf("expected invalid credentials message, got %d", resp.Code)
	}
}

func TestLoginRedirectsByRole(t *testing.T) {
	app := newTestApp(t)
	tests := []struct {
		email, password, want string
	}{
		{"voter@demo.com", "password123", "/dashboard"},
		{"ADMIN@demo.com ", "admin123", "/admin"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			form := url.Values{"email": {tt.email}, "password": {tt.password}}.Encode()
			resp := app.do(t, http.MethodPost, "/login", form, nil)
			if resp.Code != http.StatusSeeOther {
				t.Fatalf("expected redirect, got %d", resp.Code)
			}
			if loc := resp.Header().Get("Location"); loc != tt.want {
				t.Fatalf("expected redirect to %s, got %s", tt.want, loc)
			}
			if len(resp.Result().Cookies()) == 0 {
				t.Fatal("expected a session cookie")
			}
		})
	}
}

func TestPageGuards(t *testing.T) {
	app := newTestApp(t)
	tests := []struct {
		name   string
		path   string
		user   *models.User
		status int
		want   string
	}{
		{"anonymous admin", "/admin", nil, http.StatusForbidden, "Access Restricted"},
		{"voter admin", "/admin", voter(), http.StatusForbidden, "Access Restricted"},
		{"admin dashboard", "/dashboard", admin(), http.StatusForbidden, "Access Restricted"},
		{"admin panel", "/admin", admin(), http.StatusOK, "Suspicious Activity Alerts"},
		{"voter dashboard", "/dashboard", voter(), http.StatusOK, "Welcome, John Doe!"},
		{"vote page", "/vote", voter(), http.StatusOK, "Select Your Candidate"},
		{"confirmation", "/vote?candidate=candidate-3", voter(), http.StatusOK, "Confirm Your Vote"},
		{"unknown candidate", "/vote?candidate=candidate-9", voter(), http.StatusBadRequest, "Please select a valid candidate"},
		{"emails", "/emails", nil, http.StatusOK, "Email Template Previews"},
		{"not found", "/ballot-box", voter(), http.StatusNotFound, "Lost in Cyberspace"},
		{"bad filter", "/admin?role=root", admin(), http.StatusBadRequest, "invalid filter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := app.do(t, http.MethodGet, tt.path, "", tt.user)
			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.Code)
			}
			if !strings.Contains(resp.Body.String(), tt.want) {
				t.Fatalf("expected %q in body", tt.want)
			}
		})
	}
}

func TestExpiredSessionPage(t *testing.T) {
	app := newTestApp(t)
	expired := auth.NewManager(testSecret, -time.Minute)
	token, _, err := expired.GenerateJWT(*voter())
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	resp := httptest.NewRecorder()
	app.handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized || !strings.Contains(resp.Body.String(), "Session Expired") {
		t.Fatalf("expected session expired page, got %d", resp.Code)
	}
}

func TestRootRedirect(t *testing.T) {
	app := newTestApp(t)
	if loc := app.do(t, http.MethodGet, "/", "", nil).Header().Get("Location"); loc != "/login" {
		t.Fatalf("anonymous root should land on /login, got %q", loc)
	}
	if loc := app.do(t, http.MethodGet, "/", "", admin()).Header().Get("Location"); loc != "/admin" {
		t.Fatalf("admin root should land on /admin, got %q", loc)
	}
}

var txHash = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

func TestVoteFlow(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, http.MethodPost, "/api/v1/votes", `{"candidateId":"candidate-2"}`, voter())
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body.String())
	}
	var sub models.Submission
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sub.ZKPStatus != models.ZKPProcessing {
		t.Fatalf("expected processing, got %q", sub.ZKPStatus)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !sub.Done() {
		if time.Now().After(deadline) {
			t.Fatal("submission did not finish")
		}
		time.Sleep(5 * time.Millisecond)
		resp = app.do(t, http.MethodGet, "/api/v1/votes/"+sub.ID, "", voter())
		if resp.Code != http.StatusOK {
			t.Fatalf("status poll returned %d", resp.Code)
		}
		sub = models.Submission{}
		if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	if sub.Receipt == nil || !txHash.MatchString(sub.Receipt.TransactionHash) || sub.Receipt.ElectionID != "ELC-2025-GENERAL" {
		t.Fatalf("unexpected receipt %+v", sub.Receipt)
	}

	// The submission is private to its voter.
	if code := app.do(t, http.MethodGet, "/api/v1/votes/"+sub.ID, "", admin()).Code; code != http.StatusForbidden {
		t.Fatalf("admin polling a ballot should be forbidden, got %d", code)
	}

	// Voted voters are sent back to the dashboard and cannot vote twice.
	resp = app.do(t, http.MethodGet, "/vote", "", voter())
	if resp.Code != http.StatusSeeOther || resp.Header().Get("Location") != "/dashboard" {
		t.Fatalf("expected redirect to dashboard, got %d %q", resp.Code, resp.Header().Get("Location"))
	}
	if code := app.do(t, http.MethodPost, "/api/v1/votes", `{"candidateId":"candidate-1"}`, voter()).Code; code != http.StatusConflict {
		t.Fatalf("expected 409 on second vote, got %d", code)
	}

	resp = app.do(t, http.MethodGet, "/api/v1/receipt", "", voter())
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), sub.Receipt.TransactionHash) {
		t.Fatalf("unexpected receipt response %d", resp.Code)
	}
	resp = app.do(t, http.MethodGet, "/dashboard", "", voter())
	if !strings.Contains(resp.Body.String(), "Blockchain Receipt") || !strings.Contains(resp.Body.String(), sub.Receipt.TransactionHash) {
		t.Fatal("dashboard should show the receipt")
	}
}

func TestHTMLVoteSubmission(t *testing.T) {
	app := newTestApp(t)
	resp := app.do(t, http.MethodPost, "/vote", url.Values{"candidate": {"candidate-1"}}.Encode(), voter())
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", resp.Code)
	}
	loc := resp.Header().Get("Location")
	if !strings.HasPrefix(loc, "/vote/status/") {
		t.Fatalf("unexpected redirect %q", loc)
	}

	resp = app.do(t, http.MethodGet, loc, "", voter())
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Sarah Johnson") {
		t.Fatalf("unexpected status page %d", resp.Code)
	}
	if code := app.do(t, http.MethodGet, "/vote/status/missing", "", voter()).Code; code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown submission, got %d", code)
	}
}

func TestAdminAPI(t *testing.T) {
	app := newTestApp(t)

	if code := app.do(t, http.MethodGet, "/api/v1/admin/overview", "", nil).Code; code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
	if code := app.do(t, http.MethodGet, "/api/v1/admin/overview", "", voter()).Code; code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}

	resp := app.do(t, http.MethodGet, "/api/v1/admin/users?search=SMITH&role=voter&status=active", "", admin())
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var users []models.DirectoryUser
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(users) != 1 || users[0].ID != "voter456" {
		t.Fatalf("unexpected filter result %+v", users)
	}

	resp = app.do(t, http.MethodPost, "/api/v1/admin/users/voter456/suspend", "", admin())
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"status":"suspended"`) {
		t.Fatalf("suspend failed: %d %s", resp.Code, resp.Body.String())
	}
	if code := app.do(t, http.MethodPost, "/api/v1/admin/users/nobody/suspend", "", admin()).Code; code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}

	resp = app.do(t, http.MethodGet, "/api/v1/admin/audit.csv", "", admin())
	if resp.Code != http.StatusOK || !strings.HasPrefix(resp.Body.String(), "Timestamp,User ID,Action,IP Address,Status") {
		t.Fatalf("unexpected CSV %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), services.ActionStatusChange) {
		t.Fatal("status change should be in the audit trail")
	}
}

func TestHTMLAdminActions(t *testing.T) {
	app := newTestApp(t)
	resp := app.do(t, http.MethodPost, "/admin/users/voter789/reactivate", "", admin())
	if resp.Code != http.StatusSeeOther || resp.Header().Get("Location") != "/admin" {
		t.Fatalf("expected redirect to /admin, got %d", resp.Code)
	}
	if code := app.do(t, http.MethodPost, "/admin/users/voter789/suspend", "", voter()).Code; code != http.StatusForbidden {
		t.Fatalf("voter should not manage users, got %d", code)
	}
	resp = app.do(t, http.MethodGet, "/admin/audit.csv", "", admin())
	if !strings.HasPrefix(resp.Header().Get("Content-Disposition"), `attachment; filename="audit-trail-`) {
		t.Fatalf("unexpected Content-Disposition %q", resp.Header().Get("Content-Disposition"))
	}
}

func TestAPIMisc(t *testing.T) {
	app := newTestApp(t)

	if resp := app.do(t, http.MethodGet, "/healthz", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("healthz returned %d", resp.Code)
	}
	resp := app.do(t, http.MethodGet, "/api/v1/unknown", "", nil)
	if resp.Code != http.StatusNotFound || !strings.Contains(resp.Body.String(), `"error"`) {
		t.Fatalf("expected JSON 404, got %d %s", resp.Code, resp.Body.String())
	}
	resp = app.do(t, http.MethodGet, "/api/v1/views/admin-panel", "", nil)
	if !strings.Contains(resp.Body.String(), `"page":"access-denied"`) {
		t.Fatalf("unexpected resolution %s", resp.Body.String())
	}
	resp = app.do(t, http.MethodGet, "/api/v1/emails", "", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "adminAlert") {
		t.Fatalf("unexpected templates list %d", resp.Code)
	}
	resp = app.do(t, http.MethodGet, "/emails/styles.css", "", nil)
	if !strings.HasPrefix(resp.Header().Get("Content-Type"), "text/css") {
		t.Fatalf("unexpected stylesheet content type %q", resp.Header().Get("Content-Type"))
	}
	if code := app.do(t, http.MethodGet, "/api/v1/candidates", "", nil).Code; code != http.StatusUnauthorized {
		t.Fatalf("candidates should need a session, got %d", code)
	}
}

func TestJSONLogin(t *testing.T) {
	app := newTestApp(t)
	resp := app.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"voter@demo.com","password":"nope"}`, nil)
	if resp.Code != http.StatusUnauthorized || !strings.Contains(resp.Body.String(), "Invalid email or password") {
		t.Fatalf("unexpected response %d %s", resp.Code, resp.Body.String())
	}

	resp = app.do(t, http.MethodGet, "/api/v1/auth/me", "", voter())
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "VTR-2025-001247") {
		t.Fatalf("unexpected /me response %d", resp.Code)
	}
}
