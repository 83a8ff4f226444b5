package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/securevote/securevote-be/internal/models"
)

// CandidateServiceProvider defines the interface for candidate lookups.
type CandidateServiceProvider interface {
	GetAllCandidates() ([]models.Candidate, error)
	GetCandidateByID(id string) (models.Candidate, error)
}

// CandidateService reads the ballot options.
type CandidateService struct {
	db *sql.DB
}

// NewCandidateService creates a new CandidateService.
func NewCandidateService(db *sql.DB) *CandidateService {
	return &CandidateService{db: db}
}

// GetAllCandidates returns the candidates in ballot order.
func (s *CandidateService) GetAllCandidates() ([]models.Candidate, error) {
	rows, err := s.db.Query("SELECT id, name, party, photo_url, bio FROM candidates ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Party, &c.Photo, &c.Bio); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// GetCandidateByID retrieves a single candidate.
func (s *CandidateService) GetCandidateByID(id string) (models.Candidate, error) {
	var c models.Candidate
	row := s.db.QueryRow("SELECT id, name, party, photo_url, bio FROM candidates WHERE id = ?", id)
	if err := row.Scan(&c.ID, &c.Name, &c.Party, &c.Photo, &c.Bio); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Candidate{}, fmt.Errorf("%w: %s", ErrUnknownCandidate, id)
		}
		return models.Candidate{}, err
	}
	return c, nil
}
