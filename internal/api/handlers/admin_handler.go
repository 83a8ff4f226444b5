package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/securevote/securevote-be/internal/models"
	"github.com/securevote/securevote-be/internal/services"
)

// AdminHandler handles the admin panel endpoints.
type AdminHandler struct {
	directory services.DirectoryServiceProvider
	audit     services.AuditServiceProvider
	security  services.SecurityServiceProvider
	stats     services.StatsServiceProvider
	now       func() time.Time
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(directory services.DirectoryServiceProvider, audit services.AuditServiceProvider, security services.SecurityServiceProvider, stats services.StatsServiceProvider) *AdminHandler {
	return &AdminHandler{directory: directory, audit: audit, security: security, stats: stats, now: time.Now}
}

func filterFromQuery(r *http.Request) models.DirectoryFilter {
	q := r.URL.Query()
	return models.DirectoryFilter{
		Search: q.Get("search"),
		Role:   q.Get("role"),
		Status: q.Get("status"),
	}
}

// Overview returns the counters at the top of the panel.
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.Overview())
}

// Alerts lists suspicious activity, newest first.
func (h *AdminHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.security.ListAlerts())
}

// Users lists directory rows matching the search, role and status query
// parameters.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.directory.ListUsers(filterFromQuery(r))
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// changeStatus updates a directory row and records who did it.
func (h *AdminHandler) changeStatus(r *http.Request, id string, status models.DirectoryStatus) (models.DirectoryUser, error) {
	admin, err := currentUser(r)
	if err != nil {
		return models.DirectoryUser{}, err
	}
	user, err := h.directory.SetStatus(id, status)
	if err != nil {
		return models.DirectoryUser{}, err
	}
	h.audit.Record(admin.ID, services.ActionStatusChange, clientIP(r), models.AuditSuccess)
	log.Info().Str("admin_id", admin.ID).Str("user_id", id).Str("status", string(status)).Msg("Directory user status changed")
	return user, nil
}

func (h *AdminHandler) setStatus(status models.DirectoryStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.changeStatus(r, chi.URLParam(r, "id"), status)
		if err != nil {
			writeServiceError(w, err, "Failed to update user")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// Suspend marks a directory user suspended.
func (h *AdminHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.setStatus(models.StatusSuspended)(w, r)
}

// Reactivate marks a directory user active again.
func (h *AdminHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(models.StatusActive)(w, r)
}

// Audit lists the audit trail, newest first.
func (h *AdminHandler) Audit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.audit.List())
}

// AuditCSV downloads the audit trail as audit-trail-YYYY-MM-DD.csv.
func (h *AdminHandler) AuditCSV(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("audit-trail-%s.csv", h.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := h.audit.WriteCSV(w); err != nil {
		log.Error().Err(err).Msg("Failed to write audit CSV")
	}
}
