package watch_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mvoronov/treescan/internal/ignore"
	"github.com/mvoronov/treescan/internal/watch"
)

const reloadDeadline = 5 * time.Second

// TestWatcherInvalidatesOnIgnoreFileChange verifies that rewriting a watched
// ignore file makes the store serve the fresh rules.
func TestWatcherInvalidatesOnIgnoreFileChange(testingHandle *testing.T) {
	workspaceRoot := testingHandle.TempDir()
	gitignorePath := filepath.Join(workspaceRoot, ".gitignore")
	if writeError := os.WriteFile(gitignorePath, []byte("*.log\n"), 0o644); writeError != nil {
		testingHandle.Fatalf("writing .gitignore: %v", writeError)
	}

	store := ignore.NewStore(nil)
	initialRules := store.Load(workspaceRoot, ignore.KindGitignore)
	if len(initialRules.Patterns) != 1 || initialRules.Patterns[0] != "*.log" {
		testingHandle.Fatalf("unexpected initial patterns %v", initialRules.Patterns)
	}

	watcher, watcherError := watch.NewWatcher(store, nil)
	if watcherError != nil {
		testingHandle.Fatalf("creating watcher: %v", watcherError)
	}
	defer watcher.Close()
	if addError := watcher.AddRoot(workspaceRoot); addError != nil {
		testingHandle.Fatalf("adding root: %v", addError)
	}

	if writeError := os.WriteFile(gitignorePath, []byte("*.tmp\n"), 0o644); writeError != nil {
		testingHandle.Fatalf("rewriting .gitignore: %v", writeError)
	}

	deadline := time.Now().Add(reloadDeadline)
	for time.Now().Before(deadline) {
		reloadedRules := store.Load(workspaceRoot, ignore.KindGitignore)
		if len(reloadedRules.Patterns) == 1 && reloadedRules.Patterns[0] == "*.tmp" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	testingHandle.Fatalf("store never served the rewritten ignore rules")
}

// TestWatcherInvalidatesOnIgnoreFileRemoval verifies that deleting a watched
// ignore file clears its cached rules.
func TestWatcherInvalidatesOnIgnoreFileRemoval(testingHandle *testing.T) {
	workspaceRoot := testingHandle.TempDir()
	gitignorePath := filepath.Join(workspaceRoot, ".gitignore")
	if writeError := os.WriteFile(gitignorePath, []byte("*.log\n"), 0o644); writeError != nil {
		testingHandle.Fatalf("writing .gitignore: %v", writeError)
	}

	store := ignore.NewStore(nil)
	store.Load(workspaceRoot, ignore.KindGitignore)

	watcher, watcherError := watch.NewWatcher(store, nil)
	if watcherError != nil {
		testingHandle.Fatalf("creating watcher: %v", watcherError)
	}
	defer watcher.Close()
	if addError := watcher.AddRoot(workspaceRoot); addError != nil {
		testingHandle.Fatalf("adding root: %v", addError)
	}

	if removeError := os.Remove(gitignorePath); removeError != nil {
		testingHandle.Fatalf("removing .gitignore: %v", removeError)
	}

	deadline := time.Now().Add(reloadDeadline)
	for time.Now().Before(deadline) {
		if len(store.Load(workspaceRoot, ignore.KindGitignore).Patterns) == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	testingHandle.Fatalf("store never dropped the removed ignore rules")
}
