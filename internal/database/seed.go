package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/securevote/securevote-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// DemoAccount is a fixed sign-in for the demo deployment.
type DemoAccount struct {
	Password string
	User     models.User
}

// DemoAccounts are the only credentials the server accepts.
var DemoAccounts = []DemoAccount{
	{
		Password: "password123",
		User: models.User{
			ID:      "acct-voter",
			Email:   "voter@demo.com",
			Role:    models.RoleVoter,
			Name:    "John Doe",
			VoterID: "VTR-2025-001247",
		},
	},
	{
		Password: "admin123",
		User: models.User{
			ID:      "acct-admin",
			Email:   "admin@demo.com",
			Role:    models.RoleAdmin,
			Name:    "Admin User",
			VoterID: "ADM-2025-000001",
		},
	},
}

const unsplash = "?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&q=80&w=1080"

// Candidates on the 2025 general election ballot, in display order.
var Candidates = []models.Candidate{
	{
		ID:    "candidate-1",
		Name:  "Sarah Johnson",
		Party: "Democratic Party",
		Photo: "https://images.unsplash.com/photo-1734637019880-d2c7d06ce56a" + unsplash,
		Bio:   "Former state senator with 15 years of public service experience, focusing on education and healthcare reform.",
	},
	{
		ID:    "candidate-2",
		Name:  "Michael Rodriguez",
		Party: "Republican Party",
		Photo: "https://images.unsplash.com/photo-1693035730007-fbc2c14c6814" + unsplash,
		Bio:   "Business leader and military veteran committed to economic growth, fiscal responsibility, and strong defense.",
	},
	{
		ID:    "candidate-3",
		Name:  "Dr. James Chen",
		Party: "Independent",
		Photo: "https://images.unsplash.com/photo-1551862390-7894b509f8ad" + unsplash,
		Bio:   "Environmental scientist and policy expert advocating for climate action and sustainable development.",
	},
}

// DirectoryUsers seed the admin user-management table.
var DirectoryUsers = []models.DirectoryUser{
	{ID: "voter123", Email: "john.doe@email.com", Role: models.RoleVoter, Status: models.StatusActive, LastLogin: "2025-01-28 10:30:15", HasVoted: true},
	{ID: "voter456", Email: "jane.smith@email.com", Role: models.RoleVoter, Status: models.StatusActive, LastLogin: "2025-01-28 10:25:32", HasVoted: true},
	{ID: "voter789", Email: "bob.wilson@email.com", Role: models.RoleVoter, Status: models.StatusSuspended, LastLogin: "2025-01-28 08:15:20", HasVoted: false},
	{ID: "admin123", Email: "admin@securevote.com", Role: models.RoleAdmin, Status: models.StatusActive, LastLogin: "2025-01-28 09:30:15", HasVoted: false},
	{ID: "voter101", Email: "alice.brown@email.com", Role: models.RoleVoter, Status: models.StatusPending, LastLogin: "Never", HasVoted: false},
}

// Seed inserts the demo data. Rows that already exist are left untouched,
// so it is safe to run on every start.
func Seed(db *sql.DB) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, acct := range DemoAccounts {
		var exists int
		if err := db.QueryRow("SELECT COUNT(1) FROM accounts WHERE id = ?", acct.User.ID).Scan(&exists); err != nil {
			return err
		}
		if exists > 0 {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(acct.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", acct.User.Email, err)
		}
		_, err = db.Exec(
			"INSERT INTO accounts(id, email, role, name, voter_id, password_hash, created_at) VALUES(?, ?, ?, ?, ?, ?, ?)",
			acct.User.ID, acct.User.Email, string(acct.User.Role), acct.User.Name, acct.User.VoterID, string(hash), now,
		)
		if err != nil {
			return fmt.Errorf("failed to seed account %s: %w", acct.User.Email, err)
		}
	}

	for i, c := range Candidates {
		_, err := db.Exec(
			"INSERT OR IGNORE INTO candidates(id, position, name, party, photo_url, bio) VALUES(?, ?, ?, ?, ?, ?)",
			c.ID, i, c.Name, c.Party, c.Photo, c.Bio,
		)
		if err != nil {
			return fmt.Errorf("failed to seed candidate %s: %w", c.ID, err)
		}
	}

	for i, u := range DirectoryUsers {
		_, err := db.Exec(
			"INSERT OR IGNORE INTO directory_users(id, position, email, role, status, last_login, has_voted) VALUES(?, ?, ?, ?, ?, ?, ?)",
			u.ID, i, u.Email, string(u.Role), string(u.Status), u.LastLogin, u.HasVoted,
		)
		if err != nil {
			return fmt.Errorf("failed to seed directory user %s: %w", u.ID, err)
		}
	}
	return nil
}
