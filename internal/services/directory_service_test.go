package services

import (
	"errors"
	"testing"

	"github.com/securevote/securevote-be/internal/models"
)

func ids(users []models.DirectoryUser) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

func TestListUsersFilters(t *testing.T) {
	svc := NewDirectoryService(newTestDB(t))

	tests := []struct {
		name   string
		filter models.DirectoryFilter
		want   []string
	}{
		{"no filter", models.DirectoryFilter{}, []string{"voter123", "voter456", "voter789", "admin123", "voter101"}},
		{"all keywords", models.DirectoryFilter{Role: "all", Status: "all"}, []string{"voter123", "voter456", "voter789", "admin123", "voter101"}},
		{"search case insensitive", models.DirectoryFilter{Search: "JANE"}, []string{"voter456"}},
		{"search domain", models.DirectoryFilter{Search: "@email.com"}, []string{"voter123", "voter456", "voter789", "voter101"}},
		{"role admin", models.DirectoryFilter{Role: "admin"}, []string{"admin123"}},
		{"status suspended", models.DirectoryFilter{Status: "suspended"}, []string{"voter789"}},
		{"combined", models.DirectoryFilter{Search: "smith", Role: "voter", Status: "active"}, []string{"voter456"}},
		{"combined no match", models.DirectoryFilter{Search: "smith", Status: "suspended"}, []string{}},
		{"wildcards are literal", models.DirectoryFilter{Search: "%"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := svc.ListUsers(tt.filter)
			if err != nil {
				t.Fatalf("ListUsers: %v", err)
			}
			got := ids(users)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestListUsersRejectsUnknownFilter(t *testing.T) {
	svc := NewDirectoryService(newTestDB(t))
	if _, err := svc.ListUsers(models.DirectoryFilter{Role: "superuser"}); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
	if _, err := svc.ListUsers(models.DirectoryFilter{Status: "banned"}); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestSetStatus(t *testing.T) {
	svc := NewDirectoryService(newTestDB(t))

	u, err := svc.SetStatus("voter789", models.StatusActive)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if u.Status != models.StatusActive {
		t.Fatalf("expected active, got %s", u.Status)
	}
	if _, err := svc.SetStatus("ghost", models.StatusSuspended); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.SetStatus("voter123", "deleted"); !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}
