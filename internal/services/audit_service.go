package services

import (
	"encoding/csv"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/securevote/securevote-be/internal/models"
	ws "github.com/securevote/securevote-be/internal/websocket"
)

// Audit actions recorded by the server.
const (
	ActionLoginAttempt = "Login Attempt"
	ActionFailedLogin  = "Failed Login"
	ActionVoteCast     = "Vote Cast"
	ActionLogout       = "Logout"
	ActionStatusChange = "User Status Changed"
)

// AuditCSVHeader is the first line of the downloadable audit trail.
var AuditCSVHeader = []string{"Timestamp", "User ID", "Action", "IP Address", "Status"}

// AuditServiceProvider defines the interface for the audit trail.
type AuditServiceProvider interface {
	Record(userID, action, ip string, status models.AuditStatus) models.AuditLog
	List() []models.AuditLog
	FailedLoginsSince(since time.Time) []models.AuditLog
	WriteCSV(w io.Writer) error
}

// AuditService keeps the audit trail in memory, newest entry first.
type AuditService struct {
	mu        sync.RWMutex
	entries   []models.AuditLog
	limit     int
	publisher Publisher
	now       func() time.Time
}

var seedAuditLogs = []models.AuditLog{
	{ID: "1", UserID: "voter123", Action: ActionLoginAttempt, Timestamp: "2025-01-28 10:30:15", IP: "192.168.1.100", Status: models.AuditSuccess},
	{ID: "2", UserID: "voter456", Action: ActionVoteCast, Timestamp: "2025-01-28 10:25:32", IP: "192.168.1.101", Status: models.AuditSuccess},
	{ID: "3", UserID: "unknown", Action: ActionFailedLogin, Timestamp: "2025-01-28 10:20:45", IP: "10.0.0.50", Status: models.AuditSuspicious},
	{ID: "4", UserID: "admin789", Action: "User Role Changed", Timestamp: "2025-01-28 10:15:22", IP: "192.168.1.102", Status: models.AuditSuccess},
	{ID: "5", UserID: "voter789", Action: "Multiple Login Attempts", Timestamp: "2025-01-28 10:10:10", IP: "203.0.113.45", Status: models.AuditFailed},
}

// NewAuditService creates an AuditService holding at most limit entries,
// seeded with the demo trail.
func NewAuditService(limit int, publisher Publisher) *AuditService {
	if limit <= 0 {
		limit = 1000
	}
	s := &AuditService{limit: limit, publisher: orNop(publisher), now: time.Now}
	for _, e := range seedAuditLogs {
		e.At, _ = time.ParseInLocation(models.ReceiptTimeLayout, e.Timestamp, time.Local)
		s.entries = append(s.entries, e)
	}
	return s
}

// Record appends an entry and pushes it to admin clients.
func (s *AuditService) Record(userID, action, ip string, status models.AuditStatus) models.AuditLog {
	if userID == "" {
		userID = "unknown"
	}
	if ip == "" {
		ip = "unknown"
	}
	now := s.now()
	entry := models.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Timestamp: now.Format(models.ReceiptTimeLayout),
		IP:        ip,
		Status:    status,
		At:        now,
	}

	s.mu.Lock()
	s.entries = append([]models.AuditLog{entry}, s.entries...)
	if len(s.entries) > s.limit {
		s.entries = s.entries[:s.limit]
	}
	s.mu.Unlock()

	s.publisher.Publish(ws.TopicAdmin, ws.ActionAuditEntry, entry)
	return entry
}

// List returns a copy of the trail, newest first.
func (s *AuditService) List() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AuditLog, len(s.entries))
	copy(out, s.entries)
	return out
}

// FailedLoginsSince returns failed login entries at or after since.
func (s *AuditService) FailedLoginsSince(since time.Time) []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.AuditLog
	for _, e := range s.entries {
		if e.Action == ActionFailedLogin && !e.At.Before(since) {
			out = append(out, e)
		}
	}
	return out
}

// WriteCSV writes the trail as CSV, header first.
func (s *AuditService) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(AuditCSVHeader); err != nil {
		return err
	}
	for _, e := range s.List() {
		if err := cw.Write([]string{e.Timestamp, e.UserID, e.Action, e.IP, string(e.Status)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
