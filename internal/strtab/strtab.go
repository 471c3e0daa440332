// Package strtab provides an interned string store with stable identity.
//
// Two equal strings always intern to the same *Str handle, so callers
// may compare handles by pointer instead of by content. Identifiers
// are NFC-normalized before interning so that two byte-distinct but
// canonically-equal strings collapse to one entry.
package strtab

import (
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Str is a stable handle to an interned string. Two Str values refer
// to the same underlying text iff they are the same pointer.
type Str struct {
	text string
}

// Text returns the underlying text.
func (s *Str) Text() string {
	if s == nil {
		return ""
	}
	return s.text
}

func (s *Str) String() string { return s.Text() }

// Table is an interning table. The zero value is not usable; use New.
type Table struct {
	mu      sync.RWMutex
	entries map[string]*Str
}

// New creates an empty interning table.
func New() *Table {
	return &Table{entries: make(map[string]*Str)}
}

// Intern returns the stable handle for s, normalizing to NFC first.
// Repeated calls with equal (pre-normalization) strings return the
// identical pointer.
func (t *Table) Intern(s string) *Str {
	key := norm.NFC.String(s)

	t.mu.RLock()
	if e, ok := t.entries[key]; ok {
		t.mu.RUnlock()
		return e
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[key]; ok {
		return e
	}
	e := &Str{text: key}
	t.entries[key] = e
	return e
}

// Lookup returns the handle for s if already interned, without
// creating a new entry.
func (t *Table) Lookup(s string) (*Str, bool) {
	key := norm.NFC.String(s)
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[key]
	return e, ok
}

// Len returns the number of distinct interned strings.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
