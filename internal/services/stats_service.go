package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/securevote/securevote-be/internal/models"
)

// HealthSource provides the latest host sample.
type HealthSource interface {
	Snapshot() models.SystemHealth
}

// AlertCounter reports how many alerts are open.
type AlertCounter interface {
	AlertCount() int
}

// StatsServiceProvider defines the interface for dashboard and admin counters.
type StatsServiceProvider interface {
	RecordVote(at time.Time)
	VotingStats() models.VotingStats
	SystemStatus() []models.SystemComponent
	Overview() models.AdminOverview
}

const (
	baseActiveVoters = 1247
	baseVotesCast    = 856
)

// StatsService holds the chart data shown on the dashboards.
type StatsService struct {
	mu        sync.RWMutex
	hourly    map[string]int
	votesCast int
	health    HealthSource
	alerts    AlertCounter
}

// NewStatsService creates a StatsService seeded with the demo figures.
// health and alerts may be nil.
func NewStatsService(health HealthSource, alerts AlertCounter) *StatsService {
	return &StatsService{
		hourly: map[string]int{
			"08:00": 120,
			"10:00": 450,
			"12:00": 380,
			"14:00": 520,
			"16:00": 680,
			"18:00": 820,
		},
		votesCast: baseVotesCast,
		health:    health,
		alerts:    alerts,
	}
}

// bucket maps a time onto the two-hour bar it belongs to.
func bucket(at time.Time) string {
	h := at.Hour()
	return fmt.Sprintf("%02d:00", h-h%2)
}

// RecordVote counts a ballot in its hourly bar and in the overview total.
func (s *StatsService) RecordVote(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hourly[bucket(at)]++
	s.votesCast++
}

// VotingStats returns the participation split and the hourly bars in
// chronological order.
func (s *StatsService) VotingStats() models.VotingStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hours := make([]string, 0, len(s.hourly))
	for h := range s.hourly {
		hours = append(hours, h)
	}
	sort.Strings(hours)

	hourly := make([]models.HourlyVotes, 0, len(hours))
	for _, h := range hours {
		hourly = append(hourly, models.HourlyVotes{Hour: h, Votes: s.hourly[h]})
	}

	return models.VotingStats{
		Participation: []models.ParticipationSlice{
			{Name: "Voted", Value: 65, Color: "#28A745"},
			{Name: "Not Voted", Value: 35, Color: "#DC3545"},
		},
		Hourly: hourly,
	}
}

// SystemStatus is the fixed list on the voter dashboard.
func (s *StatsService) SystemStatus() []models.SystemComponent {
	return []models.SystemComponent{
		{Name: "Blockchain Network", Status: "Online & Secure"},
		{Name: "ZKP Verification", Status: "Active"},
		{Name: "Vote Encryption", Status: "256-bit SSL"},
	}
}

// Overview backs the admin counters.
func (s *StatsService) Overview() models.AdminOverview {
	s.mu.RLock()
	votes := s.votesCast
	s.mu.RUnlock()

	ov := models.AdminOverview{
		ActiveVoters: baseActiveVoters,
		VotesCast:    votes,
		Uptime:       "99.9%",
	}
	if s.alerts != nil {
		ov.Alerts = s.alerts.AlertCount()
	}
	if s.health != nil {
		ov.Health = s.health.Snapshot()
	}
	return ov
}
