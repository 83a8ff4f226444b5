package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/securevote/securevote-be/internal/mail"
	"github.com/securevote/securevote-be/internal/models"
	ws "github.com/securevote/securevote-be/internal/websocket"
)

// BallotServiceProvider defines the interface for casting votes.
type BallotServiceProvider interface {
	Submit(voter models.User, candidateID, ip string) (models.Submission, error)
	Status(id string) (models.Submission, error)
	HasVoted(voterID string) (bool, error)
	Receipt(voterID string) (*models.BlockchainReceipt, error)
	SweepFinished(olderThan time.Duration) int
}

// BallotConfig holds the simulated pipeline timings.
type BallotConfig struct {
	ProofDelay  time.Duration // processing -> verified
	CommitDelay time.Duration // verified -> receipt
}

// BallotService runs the simulated proof-and-commit pipeline for ballots.
type BallotService struct {
	db         *sql.DB
	cfg        BallotConfig
	candidates CandidateServiceProvider
	stats      StatsServiceProvider
	audit      AuditServiceProvider
	renderer   *mail.Renderer
	mailer     mail.Mailer
	publisher  Publisher

	mu          sync.Mutex
	submissions map[string]*models.Submission
	inFlight    map[string]string // voter id -> submission id

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	now    func() time.Time
}

// NewBallotService creates a new BallotService. renderer, mailer and
// publisher may be nil.
func NewBallotService(db *sql.DB, cfg BallotConfig, candidates CandidateServiceProvider, stats StatsServiceProvider, audit AuditServiceProvider, renderer *mail.Renderer, mailer mail.Mailer, publisher Publisher) *BallotService {
	ctx, cancel := context.WithCancel(context.Background())
	return &BallotService{
		db:          db,
		cfg:         cfg,
		candidates:  candidates,
		stats:       stats,
		audit:       audit,
		renderer:    renderer,
		mailer:      mailer,
		publisher:   orNop(publisher),
		submissions: make(map[string]*models.Submission),
		inFlight:    make(map[string]string),
		ctx:         ctx,
		cancel:      cancel,
		now:         time.Now,
	}
}

// Close cancels every pipeline still running and waits for them.
func (s *BallotService) Close() {
	s.cancel()
	s.wg.Wait()
}

// Submit validates the ballot and starts the pipeline. The returned
// submission is in the processing state.
func (s *BallotService) Submit(voter models.User, candidateID, ip string) (models.Submission, error) {
	if voter.Role != models.RoleVoter {
		return models.Submission{}, ErrNotEligible
	}
	if _, err := s.candidates.GetCandidateByID(candidateID); err != nil {
		return models.Submission{}, err
	}
	voted, err := s.HasVoted(voter.VoterID)
	if err != nil {
		return models.Submission{}, err
	}
	if voted {
		return models.Submission{}, ErrAlreadyVoted
	}

	s.mu.Lock()
	if _, busy := s.inFlight[voter.VoterID]; busy {
		s.mu.Unlock()
		return models.Submission{}, ErrVoteInProgress
	}
	sub := &models.Submission{
		ID:          uuid.New().String(),
		VoterID:     voter.VoterID,
		CandidateID: candidateID,
		ZKPStatus:   models.ZKPProcessing,
		CreatedAt:   s.now(),
	}
	s.submissions[sub.ID] = sub
	s.inFlight[voter.VoterID] = sub.ID
	snapshot := *sub
	s.mu.Unlock()

	log.Info().Str("submission_id", sub.ID).Str("voter_id", voter.VoterID).Msg("Ballot submitted, processing proof")

	s.wg.Add(1)
	go s.run(sub.ID, voter, candidateID, ip)
	return snapshot, nil
}

func (s *BallotService) run(id string, voter models.User, candidateID, ip string) {
	defer s.wg.Done()

	if !s.wait(s.cfg.ProofDelay) {
		s.fail(id, voter, errors.New("submission cancelled during proof"))
		return
	}
	s.update(id, func(sub *models.Submission) { sub.ZKPStatus = models.ZKPVerified })

	if !s.wait(s.cfg.CommitDelay) {
		s.fail(id, voter, errors.New("submission cancelled before commit"))
		return
	}

	receipt, err := s.commit(voter.VoterID, candidateID)
	if err != nil {
		s.fail(id, voter, err)
		return
	}

	s.audit.Record(voter.VoterID, ActionVoteCast, ip, models.AuditSuccess)
	s.stats.RecordVote(receipt.CastAt)
	s.publisher.Publish(ws.TopicAdmin, ws.ActionVoteCast, receipt)
	s.sendConfirmation(voter, receipt)

	// Only report completion once every side effect has happened.
	finished := s.now()
	s.update(id, func(sub *models.Submission) {
		sub.Receipt = receipt
		sub.FinishedAt = &finished
	})
	s.release(voter.VoterID)

	log.Info().Str("submission_id", id).Str("tx_hash", receipt.TransactionHash).Msg("Ballot committed")
}

// wait sleeps for d unless the service is closed first.
func (s *BallotService) wait(d time.Duration) bool {
	if d <= 0 {
		return s.ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *BallotService) commit(voterID, candidateID string) (*models.BlockchainReceipt, error) {
	hash, err := transactionHash()
	if err != nil {
		return nil, err
	}
	castAt := s.now()
	_, err = s.db.Exec(
		"INSERT INTO ballots(id, voter_id, election_id, candidate_id, tx_hash, cast_at) VALUES(?, ?, ?, ?, ?, ?)",
		uuid.New().String(), voterID, models.ElectionID, candidateID, hash, castAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("record ballot: %w", err)
	}
	return &models.BlockchainReceipt{
		ElectionID:      models.ElectionID,
		Timestamp:       castAt.Format(models.ReceiptTimeLayout),
		TransactionHash: hash,
		CastAt:          castAt,
	}, nil
}

func (s *BallotService) fail(id string, voter models.User, err error) {
	log.Error().Err(err).Str("submission_id", id).Str("voter_id", voter.VoterID).Msg("Ballot submission failed")
	s.sendFailure(voter)

	finished := s.now()
	s.update(id, func(sub *models.Submission) {
		sub.Error = err.Error()
		sub.FinishedAt = &finished
	})
	s.release(voter.VoterID)
}

func (s *BallotService) sendFailure(voter models.User) {
	if s.renderer == nil || s.mailer == nil {
		return
	}
	msg, rerr := s.renderer.Compose(mail.ErrorNotification, voter.Email, map[string]string{
		"userName":     voter.Name,
		"errorMessage": "Your ballot could not be recorded. You can try casting it again.",
		"supportLink":  "support@securevote.com",
	})
	if rerr != nil {
		log.Error().Err(rerr).Msg("Failed to render error notification")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := s.mailer.Send(ctx, msg); serr != nil {
		log.Error().Err(serr).Str("to", voter.Email).Msg("Failed to send error notification")
	}
}

func (s *BallotService) sendConfirmation(voter models.User, receipt *models.BlockchainReceipt) {
	if s.renderer == nil || s.mailer == nil {
		return
	}
	msg, err := s.renderer.Compose(mail.VoteConfirmation, voter.Email, map[string]string{
		"userName":        voter.Name,
		"voterId":         voter.VoterID,
		"electionId":      receipt.ElectionID,
		"voteTime":        receipt.Timestamp,
		"transactionHash": receipt.TransactionHash,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to render vote confirmation")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Error().Err(err).Str("to", voter.Email).Msg("Failed to send vote confirmation")
	}
}

func (s *BallotService) update(id string, fn func(*models.Submission)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.submissions[id]; ok {
		fn(sub)
	}
}

func (s *BallotService) release(voterID string) {
	s.mu.Lock()
	delete(s.inFlight, voterID)
	s.mu.Unlock()
}

// Status returns a snapshot of a submission.
func (s *BallotService) Status(id string) (models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[id]
	if !ok {
		return models.Submission{}, fmt.Errorf("%w: %s", ErrSubmissionNotFound, id)
	}
	out := *sub
	if sub.Receipt != nil {
		r := *sub.Receipt
		out.Receipt = &r
	}
	return out, nil
}

// HasVoted reports whether a ballot is on record for the voter.
func (s *BallotService) HasVoted(voterID string) (bool, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(1) FROM ballots WHERE voter_id = ? AND election_id = ?", voterID, models.ElectionID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Receipt returns the voter's receipt, or nil if they have not voted.
func (s *BallotService) Receipt(voterID string) (*models.BlockchainReceipt, error) {
	var hash, castAt string
	err := s.db.QueryRow("SELECT tx_hash, cast_at FROM ballots WHERE voter_id = ? AND election_id = ?", voterID, models.ElectionID).Scan(&hash, &castAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	at, err := time.Parse(time.RFC3339Nano, castAt)
	if err != nil {
		return nil, fmt.Errorf("parse cast_at: %w", err)
	}
	at = at.In(time.Local)
	return &models.BlockchainReceipt{
		ElectionID:      models.ElectionID,
		Timestamp:       at.Format(models.ReceiptTimeLayout),
		TransactionHash: hash,
		CastAt:          at,
	}, nil
}

// SweepFinished forgets submissions that finished more than olderThan ago
// and returns how many were removed.
func (s *BallotService) SweepFinished(olderThan time.Duration) int {
	cutoff := s.now().Add(-olderThan)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sub := range s.submissions {
		if sub.FinishedAt != nil && sub.FinishedAt.Before(cutoff) {
			delete(s.submissions, id)
			removed++
		}
	}
	return removed
}

// transactionHash returns "0x" followed by 40 random lowercase hex digits.
func transactionHash() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate transaction hash: %w", err)
	}
	return "0x" + hex.EncodeToString(b), nil
}
