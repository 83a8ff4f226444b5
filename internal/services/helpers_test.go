package services

import (
	"database/sql"
	"sync"
	"testing"

	"github.com/securevote/securevote-be/internal/database"
	"github.com/securevote/securevote-be/internal/mail"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(":memory:")
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := database.Seed(db); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return db
}

func newTestRenderer(t *testing.T) *mail.Renderer {
	t.Helper()
	r, err := mail.NewRenderer("http://localhost:8080")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

type published struct {
	topic, action string
	payload       interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(topic, action string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic, action, payload})
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.action)
	}
	return out
}
