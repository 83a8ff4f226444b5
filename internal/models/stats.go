package models

import "time"

// ParticipationSlice is one segment of the participation chart.
type ParticipationSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// HourlyVotes is one bar of the hourly activity chart.
type HourlyVotes struct {
	Hour  string `json:"hour"`
	Votes int    `json:"votes"`
}

// VotingStats backs the dashboard charts.
type VotingStats struct {
	Participation []ParticipationSlice `json:"participation"`
	Hourly        []HourlyVotes        `json:"hourly"`
}

// SystemComponent is a line of the dashboard system-status card.
type SystemComponent struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// SystemHealth is the latest host sample taken by the stat updater.
type SystemHealth struct {
	CPUPercent    float64   `json:"cpuPercent"`
	MemoryPercent float64   `json:"memoryPercent"`
	HostUptime    uint64    `json:"hostUptimeSeconds"`
	SampledAt     time.Time `json:"sampledAt"`
}

// AdminOverview backs the counters at the top of the admin panel.
type AdminOverview struct {
	ActiveVoters int          `json:"activeVoters"`
	VotesCast    int          `json:"votesCast"`
	Alerts       int          `json:"alerts"`
	Uptime       string       `json:"systemUptime"`
	Health       SystemHealth `json:"health"`
}

// Dashboard is everything the voter dashboard renders.
type Dashboard struct {
	User     User               `json:"user"`
	HasVoted bool               `json:"hasVoted"`
	Receipt  *BlockchainReceipt `json:"blockchainReceipt,omitempty"`
	Stats    VotingStats        `json:"stats"`
	System   []SystemComponent  `json:"system"`
}

// StatusText is the label under "Status" on the voter card.
func (d Dashboard) StatusText() string {
	if d.HasVoted {
		return "Vote Submitted"
	}
	return "Pending Vote"
}
