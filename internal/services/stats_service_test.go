package services

import (
	"testing"
	"time"

	"github.com/securevote/securevote-be/internal/models"
)

type fixedHealth models.SystemHealth

func (f fixedHealth) Snapshot() models.SystemHealth { return models.SystemHealth(f) }

type fixedAlerts int

func (f fixedAlerts) AlertCount() int { return int(f) }

func TestVotingStatsSeed(t *testing.T) {
	stats := NewStatsService(nil, nil).VotingStats()

	if len(stats.Participation) != 2 || stats.Participation[0].Value != 65 || stats.Participation[1].Value != 35 {
		t.Fatalf("unexpected participation %+v", stats.Participation)
	}
	wantHours := []string{"08:00", "10:00", "12:00", "14:00", "16:00", "18:00"}
	if len(stats.Hourly) != len(wantHours) {
		t.Fatalf("unexpected hourly buckets %+v", stats.Hourly)
	}
	for i, h := range wantHours {
		if stats.Hourly[i].Hour != h {
			t.Fatalf("bucket %d = %s, want %s", i, stats.Hourly[i].Hour, h)
		}
	}
}

func TestRecordVote(t *testing.T) {
	svc := NewStatsService(nil, nil)
	svc.RecordVote(time.Date(2025, 1, 28, 11, 59, 0, 0, time.Local))
	svc.RecordVote(time.Date(2025, 1, 28, 21, 5, 0, 0, time.Local))

	got := map[string]int{}
	for _, h := range svc.VotingStats().Hourly {
		got[h.Hour] = h.Votes
	}
	if got["10:00"] != 451 {
		t.Fatalf("expected 11:59 to land in the 10:00 bar, got %d", got["10:00"])
	}
	if got["20:00"] != 1 {
		t.Fatalf("expected a new 20:00 bar, got %d", got["20:00"])
	}
	if ov := svc.Overview(); ov.VotesCast != 858 {
		t.Fatalf("expected 858 votes cast, got %d", ov.VotesCast)
	}
}

func TestOverview(t *testing.T) {
	svc := NewStatsService(fixedHealth{CPUPercent: 12.5}, fixedAlerts(4))
	ov := svc.Overview()
	if ov.ActiveVoters != 1247 || ov.VotesCast != 856 || ov.Alerts != 4 || ov.Uptime != "99.9%" {
		t.Fatalf("unexpected overview %+v", ov)
	}
	if ov.Health.CPUPercent != 12.5 {
		t.Fatalf("expected health from source, got %+v", ov.Health)
	}
	if len(svc.SystemStatus()) != 3 {
		t.Fatal("expected three system components")
	}
}
