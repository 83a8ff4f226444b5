package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/securevote/securevote-be/internal/models"
)

// DirectoryServiceProvider defines the interface for the admin user table.
type DirectoryServiceProvider interface {
	ListUsers(filter models.DirectoryFilter) ([]models.DirectoryUser, error)
	GetUser(id string) (models.DirectoryUser, error)
	SetStatus(id string, status models.DirectoryStatus) (models.DirectoryUser, error)
}

// DirectoryService backs user management in the admin panel.
type DirectoryService struct {
	db *sql.DB
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(db *sql.DB) *DirectoryService {
	return &DirectoryService{db: db}
}

func isAll(v string) bool {
	return v == "" || v == "all"
}

// ListUsers applies the email search and the role/status filters.
func (s *DirectoryService) ListUsers(filter models.DirectoryFilter) ([]models.DirectoryUser, error) {
	query := "SELECT id, email, role, status, last_login, has_voted FROM directory_users WHERE 1 = 1"
	var args []interface{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		// instr avoids LIKE wildcards in user input.
		query += " AND instr(lower(email), ?) > 0"
		args = append(args, strings.ToLower(search))
	}
	if !isAll(filter.Role) {
		if !models.Role(filter.Role).Valid() {
			return nil, fmt.Errorf("%w: role %q", ErrInvalidFilter, filter.Role)
		}
		query += " AND role = ?"
		args = append(args, filter.Role)
	}
	if !isAll(filter.Status) {
		if !validStatus(models.DirectoryStatus(filter.Status)) {
			return nil, fmt.Errorf("%w: status %q", ErrInvalidFilter, filter.Status)
		}
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY position"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.DirectoryUser{}
	for rows.Next() {
		u, err := scanDirectoryUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUser retrieves one row of the table.
func (s *DirectoryService) GetUser(id string) (models.DirectoryUser, error) {
	row := s.db.QueryRow("SELECT id, email, role, status, last_login, has_voted FROM directory_users WHERE id = ?", id)
	u, err := scanDirectoryUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DirectoryUser{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
		}
		return models.DirectoryUser{}, err
	}
	return u, nil
}

// SetStatus changes an account's status, e.g. to suspend or reactivate it.
func (s *DirectoryService) SetStatus(id string, status models.DirectoryStatus) (models.DirectoryUser, error) {
	if !validStatus(status) {
		return models.DirectoryUser{}, fmt.Errorf("%w: status %q", ErrInvalidFilter, status)
	}
	res, err := s.db.Exec("UPDATE directory_users SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return models.DirectoryUser{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.DirectoryUser{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return s.GetUser(id)
}

func validStatus(s models.DirectoryStatus) bool {
	switch s {
	case models.StatusActive, models.StatusSuspended, models.StatusPending:
		return true
	}
	return false
}

func scanDirectoryUser(scanner interface{ Scan(...interface{}) error }) (models.DirectoryUser, error) {
	var u models.DirectoryUser
	var role, status string
	if err := scanner.Scan(&u.ID, &u.Email, &role, &status, &u.LastLogin, &u.HasVoted); err != nil {
		return models.DirectoryUser{}, err
	}
	u.Role = models.Role(role)
	u.Status = models.DirectoryStatus(status)
	return u, nil
}
