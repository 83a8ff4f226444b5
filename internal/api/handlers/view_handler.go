package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/securevote/securevote-be/internal/auth"
	"github.com/securevote/securevote-be/internal/models"
	"github.com/securevote/securevote-be/internal/services"
	"github.com/securevote/securevote-be/internal/views"
)

// sessionFor describes the caller to the page guards.
func sessionFor(r *http.Request, ballots services.BallotServiceProvider) (views.Session, error) {
	claims, err := auth.ClaimsFromContext(r.Context())
	if err != nil {
		return views.Session{Expired: errors.Is(err, auth.ErrSessionExpired)}, nil
	}

	user := claims.User()
	s := views.Session{User: &user}
	if user.Role == models.RoleVoter {
		voted, err := ballots.HasVoted(user.VoterID)
		if err != nil {
			return s, err
		}
		s.HasVoted = voted
	}
	return s, nil
}

// ViewHandler exposes the page-state switch to API clients.
type ViewHandler struct {
	ballots services.BallotServiceProvider
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(ballots services.BallotServiceProvider) *ViewHandler {
	return &ViewHandler{ballots: ballots}
}

// Resolution is the outcome of asking for a page.
type Resolution struct {
	Requested  views.Page `json:"requested"`
	Page       views.Page `json:"page"`
	Path       string     `json:"path"`
	FullScreen bool       `json:"fullScreen"`
	Home       views.Page `json:"home"`
}

// Resolve reports which page the caller would actually see.
func (h *ViewHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	requested := views.Parse(chi.URLParam(r, "page"))
	s, err := sessionFor(r, h.ballots)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load session state")
		writeError(w, http.StatusInternalServerError, "Failed to resolve page")
		return
	}

	page := views.Resolve(requested, s)
	writeJSON(w, http.StatusOK, Resolution{
		Requested:  requested,
		Page:       page,
		Path:       page.Path(),
		FullScreen: page.FullScreen(),
		Home:       views.Home(s),
	})
}
