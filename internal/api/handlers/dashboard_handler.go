package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/securevote/securevote-be/internal/models"
	"github.com/securevote/securevote-be/internal/services"
)

// DashboardHandler serves the voter dashboard data.
type DashboardHandler struct {
	ballots services.BallotServiceProvider
	stats   services.StatsServiceProvider
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(ballots services.BallotServiceProvider, stats services.StatsServiceProvider) *DashboardHandler {
	return &DashboardHandler{ballots: ballots, stats: stats}
}

func buildDashboard(user models.User, ballots services.BallotServiceProvider, stats services.StatsServiceProvider) (models.Dashboard, error) {
	receipt, err := ballots.Receipt(user.VoterID)
	if err != nil {
		return models.Dashboard{}, err
	}
	return models.Dashboard{
		User:     user,
		HasVoted: receipt != nil,
		Receipt:  receipt,
		Stats:    stats.VotingStats(),
		System:   stats.SystemStatus(),
	}, nil
}

// Get returns everything the voter dashboard shows.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	dashboard, err := buildDashboard(user, h.ballots, h.stats)
	if err != nil {
		log.Error().Err(err).Str("voter_id", user.VoterID).Msg("Failed to build dashboard")
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}
