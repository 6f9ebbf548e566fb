package database

import "testing"

func TestOpenMemory(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer db.Close()

	for _, table := range tables {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Errorf("Table %s missing: %v", table, err)
		}
	}

	t.Run("MigrateIsIdempotent", func(t *testing.T) {
		if err := db.Migrate(); err != nil {
			t.Errorf("Second migrate failed: %v", err)
		}
	})

	t.Run("CleanData", func(t *testing.T) {
		if _, err := db.Exec(`INSERT INTO system_state (key, value, updated_at, updated_by) VALUES ($1, $2, CURRENT_TIMESTAMP, $3)`,
			"k", "v", "test"); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if err := db.CleanData(); err != nil {
			t.Fatalf("CleanData failed: %v", err)
		}
		var n int
		db.QueryRow("SELECT COUNT(*) FROM system_state").Scan(&n)
		if n != 0 {
			t.Errorf("Expected empty table, got %d rows", n)
		}
	})

	t.Run("Reset", func(t *testing.T) {
		if err := db.Reset(); err != nil {
			t.Fatalf("Reset failed: %v", err)
		}
		if _, err := db.Exec("SELECT 1 FROM game_rounds"); err == nil {
			t.Error("Expected game_rounds to be dropped")
		}
	})
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	if _, err := New("mysql", "whatever"); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}
