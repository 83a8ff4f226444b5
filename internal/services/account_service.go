package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/securevote/securevote-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// AccountServiceProvider defines the interface for account services.
type AccountServiceProvider interface {
	Authenticate(email, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
}

// AccountService checks demo credentials against the accounts table.
type AccountService struct {
	db *sql.DB
}

// NewAccountService creates a new AccountService.
func NewAccountService(db *sql.DB) *AccountService {
	return &AccountService{db: db}
}

const accountColumns = "id, email, role, name, voter_id, password_hash, created_at"

func scanAccount(scanner interface{ Scan(...interface{}) error }) (models.User, error) {
	var user models.User
	var role, createdAt string
	if err := scanner.Scan(&user.ID, &user.Email, &role, &user.Name, &user.VoterID, &user.PasswordHash, &createdAt); err != nil {
		return models.User{}, err
	}
	user.Role = models.Role(role)
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		user.CreatedAt = t
	}
	return user, nil
}

// GetUserByID retrieves a single account by its ID, without the hash.
func (s *AccountService) GetUserByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	user, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
		}
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *AccountService) Authenticate(email, password string) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}

	row := s.db.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE email = ?", email)
	user, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}
