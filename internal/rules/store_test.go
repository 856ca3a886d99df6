// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package rules

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const greetRulesJSON = `[
	{"intent": "greet", "patterns": ["hello", "hi"], "responses": ["Hello, {name}!"]}
]`

const twoRulesJSON = `[
	{"intent": "greet", "patterns": ["hello", "hi"], "responses": ["Hello, {name}!"]},
	{"intent": "farewell", "patterns": ["bye"], "responses": ["Goodbye, {name}!"]}
]`

// newTestStore creates a store over a writable rules file.
func newTestStore(t *testing.T, content string) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	store, err := NewStore(NewFileSource(path))
	require.NoError(t, err)
	return store, path
}

// =============================================================================
// INITIAL LOAD
// =============================================================================

// TestNewStore_InitialLoadFailure tests that a store cannot be created
// without a loadable rule set.
func TestNewStore_InitialLoadFailure(t *testing.T) {
	_, err := NewStore(NewFileSource(filepath.Join(t.TempDir(), "missing.json")))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrSourceUnavailable))
}

// TestStore_Snapshot tests that the initial load is served.
func TestStore_Snapshot(t *testing.T) {
	store, _ := newTestStore(t, greetRulesJSON)

	snap := store.Snapshot()
	require.Equal(t, 1, snap.Len())
	require.Equal(t, "greet", snap[0].Intent)
}

// =============================================================================
// RELOAD SEMANTICS
// =============================================================================

// TestStore_ReloadSuccess tests that a reload swaps in the new rules.
func TestStore_ReloadSuccess(t *testing.T) {
	store, path := newTestStore(t, greetRulesJSON)

	require.NoError(t, os.WriteFile(path, []byte(twoRulesJSON), 0644))
	collection, err := store.Reload()
	require.NoError(t, err)
	require.Equal(t, 2, collection.Len())
	require.Equal(t, 2, store.Snapshot().Len())
}

// TestStore_ReloadFailureRetainsOldRules tests reload atomicity: a
// malformed source returns an error and leaves the active collection
// unchanged, so subsequent matching still uses the old rules.
func TestStore_ReloadFailureRetainsOldRules(t *testing.T) {
	store, path := newTestStore(t, greetRulesJSON)
	before := store.Snapshot()

	require.NoError(t, os.WriteFile(path, []byte(`[{"intent":`), 0644))
	_, err := store.Reload()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedRules))

	after := store.Snapshot()
	require.Equal(t, before, after)
	require.Equal(t, "greet", after[0].Intent)

	// A removed file is the other failure class; old rules still serve.
	require.NoError(t, os.Remove(path))
	_, err = store.Reload()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrSourceUnavailable))
	require.Equal(t, before, store.Snapshot())
}

// TestStore_SnapshotSurvivesReload tests that a snapshot taken before a
// reload keeps serving the old collection; readers never see a partial
// or mutated rule set.
func TestStore_SnapshotSurvivesReload(t *testing.T) {
	store, path := newTestStore(t, greetRulesJSON)
	old := store.Snapshot()

	require.NoError(t, os.WriteFile(path, []byte(twoRulesJSON), 0644))
	_, err := store.Reload()
	require.NoError(t, err)

	require.Equal(t, 1, old.Len())
	require.Equal(t, 2, store.Snapshot().Len())
}

// TestStore_ConcurrentSnapshotAndReload tests that snapshots and reloads
// can race without a reader ever observing an inconsistent collection.
// Run with: go test -race ./internal/rules/
func TestStore_ConcurrentSnapshotAndReload(t *testing.T) {
	store, path := newTestStore(t, greetRulesJSON)
	require.NoError(t, os.WriteFile(path, []byte(twoRulesJSON), 0644))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.Reload()
		}()
		go func() {
			defer wg.Done()
			snap := store.Snapshot()
			if n := snap.Len(); n != 1 && n != 2 {
				t.Errorf("snapshot saw %d rules", n)
			}
		}()
	}
	wg.Wait()
}

// =============================================================================
// STATUS
// =============================================================================

// TestStore_GetStatus tests the status view across a failed reload.
func TestStore_GetStatus(t *testing.T) {
	store, path := newTestStore(t, greetRulesJSON)

	st := store.GetStatus()
	require.Equal(t, path, st.Source)
	require.Equal(t, 1, st.RuleCount)
	require.Equal(t, int64(1), st.Reloads)
	require.Empty(t, st.LastError)
	require.WithinDuration(t, time.Now(), st.LoadedAt, 5*time.Second)

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0644))
	_, err := store.Reload()
	require.Error(t, err)

	st = store.GetStatus()
	require.Equal(t, int64(1), st.Reloads)
	require.NotEmpty(t, st.LastError)

	require.NoError(t, os.WriteFile(path, []byte(twoRulesJSON), 0644))
	_, err = store.Reload()
	require.NoError(t, err)

	st = store.GetStatus()
	require.Equal(t, int64(2), st.Reloads)
	require.Empty(t, st.LastError)
	require.Equal(t, 2, st.RuleCount)
}
