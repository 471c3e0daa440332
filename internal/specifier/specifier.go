// Package specifier implements the three textual specifier forms the
// runtime names things by: import paths, unqualified names, and
// fullnames. Parsing rejects empty components; formatting is lossless
// (parse(format(x)) == x for every x the system constructs).
package specifier

import (
	"fmt"
	"strings"

	"github.com/tirouscoded/yama/internal/dsignal"
)

// ImportPath is head[/segment]*. Head names an install-name
// identifier recognized in the current parcel's environment; each
// segment is a non-empty identifier.
type ImportPath struct {
	Head     string
	Segments []string
}

// RelativePath is the "/"-joined tail after Head.
func (p ImportPath) RelativePath() string {
	return strings.Join(p.Segments, "/")
}

// IsRoot reports whether the import path names the root of its
// parcel (no segments).
func (p ImportPath) IsRoot() bool { return len(p.Segments) == 0 }

// String renders the import path losslessly.
func (p ImportPath) String() string {
	if p.IsRoot() {
		return p.Head
	}
	return p.Head + "/" + p.RelativePath()
}

// UnqualifiedName is either a plain identifier ("T") or an
// owner/member pair ("O::m").
type UnqualifiedName struct {
	Owner  string // empty for non-members
	Member string // the identifier itself for non-members
}

// IsMember reports whether this name has an owner::member split.
func (n UnqualifiedName) IsMember() bool { return n.Owner != "" }

func (n UnqualifiedName) String() string {
	if n.IsMember() {
		return n.Owner + "::" + n.Member
	}
	return n.Member
}

// QualifiedName is import-path:unqualified-name.
type QualifiedName struct {
	ImportPath      ImportPath
	UnqualifiedName UnqualifiedName
}

func (q QualifiedName) String() string {
	return q.ImportPath.String() + ":" + q.UnqualifiedName.String()
}

// Fullname is the domain-unique identifier of a type. Identical shape
// to QualifiedName; kept as a distinct name for call-site clarity.
type Fullname = QualifiedName

func isIdentByte(b byte, first bool) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b == '_':
		return true
	case b >= '0' && b <= '9':
		return !first
	default:
		return false
	}
}

func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i], i == 0) {
			return false
		}
	}
	return true
}

func illegalPath(kind, input, reason string) error {
	return dsignal.Wrap(dsignal.New(dsignal.IllegalPath, "specifier",
		fmt.Sprintf("illegal %s %q: %s", kind, input, reason)))
}

// ParseImportPath parses "head[/segment]*", rejecting an empty head,
// empty segments, and non-identifier components.
func ParseImportPath(s string) (ImportPath, error) {
	if s == "" {
		return ImportPath{}, illegalPath("import path", s, "empty")
	}
	parts := strings.Split(s, "/")
	head := parts[0]
	if !validIdent(head) {
		return ImportPath{}, illegalPath("import path", s, "invalid head identifier")
	}
	segs := parts[1:]
	for _, seg := range segs {
		if !validIdent(seg) {
			return ImportPath{}, illegalPath("import path", s, "invalid or empty segment")
		}
	}
	return ImportPath{Head: head, Segments: segs}, nil
}

func illegalUnqualified(input, reason string) error {
	return dsignal.Wrap(dsignal.New(dsignal.IllegalSpecifier, "specifier",
		fmt.Sprintf("illegal unqualified name %q: %s", input, reason)))
}

// ParseUnqualifiedName parses "T" or "O::m", rejecting empty
// identifiers and empty owner/member halves.
func ParseUnqualifiedName(s string) (UnqualifiedName, error) {
	if s == "" {
		return UnqualifiedName{}, illegalUnqualified(s, "empty")
	}
	if idx := strings.Index(s, "::"); idx >= 0 {
		owner, member := s[:idx], s[idx+2:]
		if !validIdent(owner) {
			return UnqualifiedName{}, illegalUnqualified(s, "invalid or empty owner")
		}
		if !validIdent(member) {
			return UnqualifiedName{}, illegalUnqualified(s, "invalid or empty member")
		}
		if strings.Contains(member, "::") {
			return UnqualifiedName{}, illegalUnqualified(s, "multiple '::' separators")
		}
		return UnqualifiedName{Owner: owner, Member: member}, nil
	}
	if !validIdent(s) {
		return UnqualifiedName{}, illegalUnqualified(s, "invalid identifier")
	}
	return UnqualifiedName{Member: s}, nil
}

func illegalQualified(input, reason string) error {
	return dsignal.Wrap(dsignal.New(dsignal.IllegalFullname, "specifier",
		fmt.Sprintf("illegal qualified name %q: %s", input, reason)))
}

// ParseQualifiedName parses "import-path:unqualified-name".
func ParseQualifiedName(s string) (QualifiedName, error) {
	// The import-path/unqualified-name separator is the first ":" in
	// the string: import paths never contain colons, and the "::"
	// owner/member separator (if present) always comes after it.
	idx := strings.Index(s, ":")
	if idx < 0 {
		return QualifiedName{}, illegalQualified(s, "missing ':' separator")
	}
	ipStr, unStr := s[:idx], s[idx+1:]
	ip, err := ParseImportPath(ipStr)
	if err != nil {
		return QualifiedName{}, illegalQualified(s, "bad import path: "+err.Error())
	}
	un, err := ParseUnqualifiedName(unStr)
	if err != nil {
		return QualifiedName{}, illegalQualified(s, "bad unqualified name: "+err.Error())
	}
	return QualifiedName{ImportPath: ip, UnqualifiedName: un}, nil
}

// ParseFullname is an alias of ParseQualifiedName kept for call-site
// clarity at fullname use sites.
func ParseFullname(s string) (Fullname, error) { return ParseQualifiedName(s) }
