package migrations

import "testing"

// Importing the package must register both migrations under the numeric
// names bun derives from the registering file names.
func TestRegisteredMigrations(t *testing.T) {
	ms := Migrations.Sorted()
	if len(ms) != 2 {
		t.Fatalf("registered migrations = %d, want 2", len(ms))
	}
	if ms[0].Name != "1" || ms[1].Name != "2" {
		t.Fatalf("migration names = %q, %q, want 1, 2", ms[0].Name, ms[1].Name)
	}
}
