package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/securevote/securevote-be/internal/models"
	"github.com/securevote/securevote-be/internal/services"
)

// VoteHandler handles HTTP requests for candidates and ballots.
type VoteHandler struct {
	candidates services.CandidateServiceProvider
	ballots    services.BallotServiceProvider
}

// NewVoteHandler creates a new VoteHandler.
func NewVoteHandler(candidates services.CandidateServiceProvider, ballots services.BallotServiceProvider) *VoteHandler {
	return &VoteHandler{candidates: candidates, ballots: ballots}
}

// VotePayload is the body of a ballot submission.
type VotePayload struct {
	CandidateID string `json:"candidateId"`
}

// Candidates lists the ballot options.
func (h *VoteHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.candidates.GetAllCandidates()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get candidates")
		writeError(w, http.StatusInternalServerError, "Failed to retrieve candidates")
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

// Submit starts a ballot submission. The response is the submission in the
// processing state; poll Status for the receipt.
func (h *VoteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload VotePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	voter, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	sub, err := h.ballots.Submit(voter, payload.CandidateID, clientIP(r))
	if err != nil {
		log.Warn().Err(err).Str("voter_id", voter.VoterID).Str("candidate_id", payload.CandidateID).Msg("Ballot rejected")
		writeServiceError(w, err, "Failed to submit ballot")
		return
	}
	w.Header().Set("Location", "/api/v1/votes/"+sub.ID)
	writeJSON(w, http.StatusAccepted, sub)
}

// ownSubmission loads a submission belonging to the caller. Other voters'
// submissions are reported as missing.
func ownSubmission(ballots services.BallotServiceProvider, voter models.User, id string) (models.Submission, error) {
	sub, err := ballots.Status(id)
	if err != nil {
		return models.Submission{}, err
	}
	if sub.VoterID != voter.VoterID {
		return models.Submission{}, services.ErrSubmissionNotFound
	}
	return sub, nil
}

// Status reports the progress of a submission.
func (h *VoteHandler) Status(w http.ResponseWriter, r *http.Request) {
	voter, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	sub, err := ownSubmission(h.ballots, voter, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "Failed to load submission")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Receipt returns the caller's blockchain receipt.
func (h *VoteHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	voter, err := currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	receipt, err := h.ballots.Receipt(voter.VoterID)
	if err != nil {
		log.Error().Err(err).Str("voter_id", voter.VoterID).Msg("Failed to load receipt")
		writeError(w, http.StatusInternalServerError, "Failed to load receipt")
		return
	}
	if receipt == nil {
		writeError(w, http.StatusNotFound, "No vote on record")
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
