package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/securevote/securevote-be/internal/mail"
	"github.com/securevote/securevote-be/internal/models"
	ws "github.com/securevote/securevote-be/internal/websocket"
)

// SecurityServiceProvider defines the interface for suspicious-activity alerts.
type SecurityServiceProvider interface {
	ListAlerts() []models.SuspiciousActivity
	AlertCount() int
	Raise(ctx context.Context, activity models.SuspiciousActivity) models.SuspiciousActivity
	ScanFailedLogins(ctx context.Context) int
}

// SecurityConfig tunes brute-force detection.
type SecurityConfig struct {
	Threshold  int
	Window     time.Duration
	AlertEmail string
}

// SecurityService keeps the alert list in memory and raises new alerts.
type SecurityService struct {
	mu        sync.RWMutex
	alerts    []models.SuspiciousActivity
	flagged   map[string]time.Time // ip -> when its last alert was raised
	cfg       SecurityConfig
	audit     AuditServiceProvider
	renderer  *mail.Renderer
	mailer    mail.Mailer
	publisher Publisher
	now       func() time.Time
}

var seedSuspiciousActivities = []models.SuspiciousActivity{
	{ID: "1", Type: "Brute Force", Description: "Multiple failed login attempts from IP 203.0.113.45", Severity: models.SeverityHigh, Timestamp: "2025-01-28 10:10:10", UserID: "unknown", IP: "203.0.113.45"},
	{ID: "2", Type: "Anomalous Voting", Description: "Rapid voting pattern detected", Severity: models.SeverityMedium, Timestamp: "2025-01-28 09:45:30", UserID: "voter456"},
	{ID: "3", Type: "Unusual Access", Description: "Admin panel access from new location", Severity: models.SeverityLow, Timestamp: "2025-01-28 09:30:15", UserID: "admin123"},
}

// NewSecurityService creates a SecurityService seeded with the demo alerts.
func NewSecurityService(cfg SecurityConfig, audit AuditServiceProvider, renderer *mail.Renderer, mailer mail.Mailer, publisher Publisher) *SecurityService {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 10 * time.Minute
	}
	s := &SecurityService{
		flagged:   make(map[string]time.Time),
		cfg:       cfg,
		audit:     audit,
		renderer:  renderer,
		mailer:    mailer,
		publisher: orNop(publisher),
		now:       time.Now,
	}
	for _, a := range seedSuspiciousActivities {
		a.At, _ = time.ParseInLocation(models.ReceiptTimeLayout, a.Timestamp, time.Local)
		s.alerts = append(s.alerts, a)
	}
	return s
}

// ListAlerts returns the alerts, newest first.
func (s *SecurityService) ListAlerts() []models.SuspiciousActivity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SuspiciousActivity, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// AlertCount is the "Alerts" counter of the admin overview.
func (s *SecurityService) AlertCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// Raise records a new alert, notifies admin clients and mails the
// configured alert address.
func (s *SecurityService) Raise(ctx context.Context, activity models.SuspiciousActivity) models.SuspiciousActivity {
	now := s.now()
	activity.ID = uuid.New().String()
	activity.At = now
	activity.Timestamp = now.Format(models.ReceiptTimeLayout)
	if activity.UserID == "" {
		activity.UserID = "unknown"
	}

	s.mu.Lock()
	s.alerts = append([]models.SuspiciousActivity{activity}, s.alerts...)
	s.mu.Unlock()

	log.Warn().Str("type", activity.Type).Str("severity", string(activity.Severity)).Str("ip", activity.IP).Msg(activity.Description)
	s.publisher.Publish(ws.TopicAdmin, ws.ActionAlertNew, activity)
	s.notify(ctx, activity)
	return activity
}

func (s *SecurityService) notify(ctx context.Context, activity models.SuspiciousActivity) {
	if s.renderer == nil || s.mailer == nil || s.cfg.AlertEmail == "" {
		return
	}
	ip := activity.IP
	if ip == "" {
		ip = "unknown"
	}
	msg, err := s.renderer.Compose(mail.AdminAlert, s.cfg.AlertEmail, map[string]string{
		"alertType":    activity.Type,
		"alertDetails": activity.Description,
		"alertTime":    activity.Timestamp,
		"userId":       activity.UserID,
		"ipAddress":    ip,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to render admin alert email")
		return
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Error().Err(err).Str("to", msg.To).Msg("Failed to send admin alert email")
	}
}

// ScanFailedLogins raises a Brute Force alert for every IP with at least
// Threshold failed logins inside the window. An IP is flagged at most once
// per window. It returns the number of alerts raised.
func (s *SecurityService) ScanFailedLogins(ctx context.Context) int {
	now := s.now()
	since := now.Add(-s.cfg.Window)

	counts := make(map[string]int)
	var order []string
	for _, e := range s.audit.FailedLoginsSince(since) {
		if counts[e.IP] == 0 {
			order = append(order, e.IP)
		}
		counts[e.IP]++
	}

	raised := 0
	for _, ip := range order {
		if counts[ip] < s.cfg.Threshold {
			continue
		}
		s.mu.Lock()
		last, seen := s.flagged[ip]
		if seen && now.Sub(last) < s.cfg.Window {
			s.mu.Unlock()
			continue
		}
		s.flagged[ip] = now
		s.mu.Unlock()

		s.Raise(ctx, models.SuspiciousActivity{
			Type:        "Brute Force",
			Description: fmt.Sprintf("Multiple failed login attempts from IP %s", ip),
			Severity:    models.SeverityHigh,
			UserID:      "unknown",
			IP:          ip,
		})
		raised++
	}

	// Forget IPs whose window has passed so the map does not grow forever.
	s.mu.Lock()
	for ip, at := range s.flagged {
		if now.Sub(at) >= s.cfg.Window {
			delete(s.flagged, ip)
		}
	}
	s.mu.Unlock()

	return raised
}
