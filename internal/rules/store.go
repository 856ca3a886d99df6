// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// store.go - Atomic owner of the active rule collection.
package rules

import (
	"sync/atomic"
	"time"
)

// =============================================================================
// RULE STORE
// =============================================================================

// Store owns the active rule collection and is the only component that
// replaces it. Readers take snapshots; a snapshot is immutable and stays
// valid across any number of reloads, so an in-flight match can never
// observe a partially updated rule set.
//
// Reads vastly outnumber reloads, so the collection sits behind an
// atomic pointer swap rather than a lock per read.
type Store struct {
	source  Source
	current atomic.Pointer[Collection]

	// Reload bookkeeping for the status display
	loadedAt   atomic.Pointer[time.Time]
	reloads    atomic.Int64
	lastErrMsg atomic.Pointer[string]
}

// NewStore creates a store and performs the initial load.
// Initial load failures are returned as-is: with no rules there is no
// meaningful operation, so startup is the caller's decision to abort.
func NewStore(source Source) (*Store, error) {
	s := &Store{source: source}
	collection, err := source.Load()
	if err != nil {
		return nil, err
	}
	s.commit(collection)
	return s, nil
}

// Snapshot returns the active collection. The returned value must be
// treated as read-only; it is shared with every other snapshot holder.
func (s *Store) Snapshot() Collection {
	return *s.current.Load()
}

// Reload re-loads from the source and swaps the active collection in a
// single atomic step. On any error the previous collection is retained
// unchanged and keeps serving - a failed reload never leaves a
// requester without rules.
func (s *Store) Reload() (Collection, error) {
	collection, err := s.source.Load()
	if err != nil {
		msg := err.Error()
		s.lastErrMsg.Store(&msg)
		return nil, err
	}
	s.commit(collection)
	return collection, nil
}

// Source returns the store's rule source.
func (s *Store) Source() Source {
	return s.source
}

// commit installs a freshly loaded collection as the active snapshot.
func (s *Store) commit(collection Collection) {
	now := time.Now()
	s.current.Store(&collection)
	s.loadedAt.Store(&now)
	s.reloads.Add(1)
	s.lastErrMsg.Store(nil)
}

// =============================================================================
// STORE STATUS
// =============================================================================

// Status describes the store for the /status directive and CLI status
// command.
type Status struct {
	Source    string
	RuleCount int
	LoadedAt  time.Time
	Reloads   int64 // Successful loads, including the initial one
	LastError string
}

// GetStatus returns a point-in-time view of the store.
func (s *Store) GetStatus() Status {
	st := Status{
		Source:    s.source.Describe(),
		RuleCount: len(s.Snapshot()),
		Reloads:   s.reloads.Load(),
	}
	if t := s.loadedAt.Load(); t != nil {
		st.LoadedAt = *t
	}
	if msg := s.lastErrMsg.Load(); msg != nil {
		st.LastError = *msg
	}
	return st
}
