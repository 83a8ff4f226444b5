package database

import "testing"

func TestMigrateAndSeedAreIdempotent(t *testing.T) {
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	for i := 0; i < 2; i++ {
		if err := Migrate(db); err != nil {
			t.Fatalf("Migrate (run %d): %v", i+1, err)
		}
		if err := Seed(db); err != nil {
			t.Fatalf("Seed (run %d): %v", i+1, err)
		}
	}

	counts := map[string]int{
		"accounts":        len(DemoAccounts),
		"candidates":      len(Candidates),
		"directory_users": len(DirectoryUsers),
		"ballots":         0,
	}
	for table, want := range counts {
		var got int
		if err := db.QueryRow("SELECT COUNT(1) FROM " + table).Scan(&got); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if got != want {
			t.Errorf("%s: expected %d rows, got %d", table, want, got)
		}
	}
}

func TestSeedHashesPasswords(t *testing.T) {
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	var hash string
	if err := db.QueryRow("SELECT password_hash FROM accounts WHERE email = ?", "voter@demo.com").Scan(&hash); err != nil {
		t.Fatalf("select hash: %v", err)
	}
	if hash == "password123" || len(hash) < 50 {
		t.Fatalf("expected a bcrypt hash, got %q", hash)
	}
}
