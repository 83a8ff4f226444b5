package models

import "time"

// AuditStatus classifies an audit entry.
type AuditStatus string

const (
	AuditSuccess    AuditStatus = "success"
	AuditFailed     AuditStatus = "failed"
	AuditSuspicious AuditStatus = "suspicious"
)

// AuditLog is a single entry of the admin audit trail.
type AuditLog struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Action    string      `json:"action"`
	Timestamp string      `json:"timestamp"`
	IP        string      `json:"ip"`
	Status    AuditStatus `json:"status"`
	At        time.Time   `json:"-"`
}

// Severity ranks a suspicious activity.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SuspiciousActivity is an alert raised for administrators.
type SuspiciousActivity struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	Timestamp   string    `json:"timestamp"`
	UserID      string    `json:"userId"`
	IP          string    `json:"ip,omitempty"`
	At          time.Time `json:"-"`
}
