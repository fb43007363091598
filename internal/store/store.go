// Package store holds the dual-state document model: the displayed CV and
// the source-of-record snapshot that translations always start from.
package store

import (
	"sync"

	"github.com/jonathan/cv-builder/internal/cv"
)

// Snapshot is the last authoritative version of the document together with
// the language it was authored in. Only a completed upload or a manual edit
// may replace it.
type Snapshot struct {
	Data cv.CVData
	Lang string
}

// Store owns the two pieces of document state. All reads return deep copies,
// so a snapshot handed out before a translation run can never be mutated by
// it. The lock exists because HTTP handlers run on arbitrary goroutines;
// user-triggered mutations are still serialized one at a time by the
// orchestrator's busy flag.
type Store struct {
	mu      sync.RWMutex
	display cv.CVData
	source  Snapshot
}

// New creates a store seeded with the built-in template document in the
// given language ("en" when empty).
func New(lang string) *Store {
	if lang == "" {
		lang = "en"
	}
	doc := cv.DefaultCV()
	return &Store{
		display: doc.Clone(),
		source:  Snapshot{Data: doc, Lang: lang},
	}
}

// Display returns a copy of the currently displayed document.
func (s *Store) Display() cv.CVData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.display.Clone()
}

// Source returns a copy of the source-of-record snapshot.
func (s *Store) Source() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Data: s.source.Data.Clone(), Lang: s.source.Lang}
}

// ReplaceBoth atomically replaces the display document and the source
// snapshot. Used by upload completion and manual edits, the only two triggers
// allowed to produce a new source of record.
func (s *Store) ReplaceBoth(doc cv.CVData, lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.display = doc.Clone()
	s.source = Snapshot{Data: doc.Clone(), Lang: lang}
}

// SetDisplayOnly replaces only the display document, leaving the source
// snapshot untouched. Used for progressive reveal during translation.
func (s *Store) SetDisplayOnly(doc cv.CVData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.display = doc.Clone()
}

// RevertDisplayToSource discards the display document in favor of the source
// snapshot's data. Used when a translation run fails.
func (s *Store) RevertDisplayToSource() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.display = s.source.Data.Clone()
}
