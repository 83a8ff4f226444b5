package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/securevote/securevote-be/internal/auth"
	"github.com/securevote/securevote-be/internal/mail"
	"github.com/securevote/securevote-be/internal/services"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps service and session errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, auth.ErrNoSession),
		errors.Is(err, auth.ErrSessionExpired),
		errors.Is(err, auth.ErrInvalidSession):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotEligible):
		return http.StatusForbidden
	case errors.Is(err, services.ErrAlreadyVoted),
		errors.Is(err, services.ErrVoteInProgress):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnknownCandidate),
		errors.Is(err, services.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrSubmissionNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, mail.ErrTemplateNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeServiceError answers with the mapped status. Unmapped errors are
// logged and hidden behind a generic message.
func writeServiceError(w http.ResponseWriter, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg(msg)
		writeError(w, status, msg)
		return
	}
	writeError(w, status, err.Error())
}

// clientIP returns the caller address without the port. chi's RealIP
// middleware has already applied any forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
