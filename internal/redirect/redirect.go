// Package redirect implements the per-install-name prefix-keyed
// redirect table: a rewrite of import-path prefixes applied while
// resolving imports that appear inside a given subject parcel.
package redirect

import (
	"strings"
	"sync"
)

// Redirect rewrites, at resolution time, any import path beginning
// with BeforePrefix (when resolved inside a parcel at or below
// SubjectEnv) to begin with AfterPrefix instead.
type Redirect struct {
	SubjectEnv   string // subject prefix path: covers every environment it is a prefix of
	BeforePrefix string
	AfterPrefix  string
}

// Table is a redirect table. Once a subject environment's redirects
// have been consulted for the first time, that subject's redirect set
// is frozen: later Add calls are silently ignored for it.
type Table struct {
	mu       sync.Mutex
	live     []Redirect
	frozen   map[string][]Redirect // subjectEnv -> snapshot taken at first consult
	consulted map[string]bool
}

// New creates an empty redirect table.
func New() *Table {
	return &Table{
		frozen:    make(map[string][]Redirect),
		consulted: make(map[string]bool),
	}
}

// stripSpace removes ASCII whitespace from a path. Path segments stay
// case-sensitive; whitespace is the only normalization applied.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\v', '\f', '\r':
			return -1
		}
		return r
	}, s)
}

// Add stages a redirect, normalizing each of its paths. It takes
// effect for any subject environment not yet frozen; frozen subjects
// silently ignore it.
func (t *Table) Add(r Redirect) {
	r.SubjectEnv = stripSpace(r.SubjectEnv)
	r.BeforePrefix = stripSpace(r.BeforePrefix)
	r.AfterPrefix = stripSpace(r.AfterPrefix)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live = append(t.live, r)
}

// snapshotFor returns (and, on first call for subjectEnv, freezes) the
// redirect set a given subject environment sees.
func (t *Table) snapshotFor(subjectEnv string) []Redirect {
	t.mu.Lock()
	defer t.mu.Unlock()
	if snap, ok := t.frozen[subjectEnv]; ok {
		return snap
	}
	// First consultation: freeze a copy of the live set for this subject.
	snap := make([]Redirect, len(t.live))
	copy(snap, t.live)
	t.frozen[subjectEnv] = snap
	t.consulted[subjectEnv] = true
	return snap
}

// matchesPrefix reports whether path equals prefix or begins with
// prefix followed by a "/" segment boundary.
func matchesPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// Apply resolves a redirect for importPath as seen from subjectEnv.
// direct must be true when importPath is the literal subject of a
// top-level Import/Load call (as opposed to appearing inside another
// import's resolution); direct calls are never redirected when
// importPath is exactly equal to a redirect's BeforePrefix.
//
// The first call for any given subjectEnv freezes that subject's
// redirect set, regardless of whether a redirect actually fired.
func (t *Table) Apply(subjectEnv, importPath string, direct bool) string {
	subjectEnv = stripSpace(subjectEnv)
	importPath = stripSpace(importPath)
	snapshot := t.snapshotFor(subjectEnv)

	var best *Redirect
	bestSubjectLen := -1
	bestBeforeLen := -1

	for i := range snapshot {
		r := &snapshot[i]
		if !matchesPrefix(subjectEnv, r.SubjectEnv) {
			continue
		}
		if direct && importPath == r.BeforePrefix {
			continue
		}
		if !matchesPrefix(importPath, r.BeforePrefix) {
			continue
		}
		subjLen := len(r.SubjectEnv)
		beforeLen := len(r.BeforePrefix)
		if subjLen > bestSubjectLen || (subjLen == bestSubjectLen && beforeLen > bestBeforeLen) {
			best = r
			bestSubjectLen = subjLen
			bestBeforeLen = beforeLen
		}
	}

	if best == nil {
		return importPath
	}
	rest := strings.TrimPrefix(importPath, best.BeforePrefix)
	if rest == "" {
		return best.AfterPrefix
	}
	return best.AfterPrefix + rest
}

// HasBeenConsulted reports whether subjectEnv's redirect set has
// already been frozen.
func (t *Table) HasBeenConsulted(subjectEnv string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.consulted[subjectEnv]
}
