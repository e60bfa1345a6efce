// internal/testutil/journal.go
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/pachanga/matchday/internal/journal"
)

// NewTestJournal opens a throwaway journal database under t.TempDir with
// migrations applied.
func NewTestJournal(t *testing.T) *journal.Journal {
	t.Helper()

	jnl, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open test journal: %v", err)
	}
	t.Cleanup(func() {
		jnl.Close()
	})
	return jnl
}
