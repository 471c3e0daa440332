// Package resolve implements the import resolver: it translates a
// qualified import path through a parcel's dependency mappings and the
// redirect table into a concrete module, memoizing results.
package resolve

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tirouscoded/yama/internal/dsignal"
	"github.com/tirouscoded/yama/internal/parcel"
	"github.com/tirouscoded/yama/internal/redirect"
	"github.com/tirouscoded/yama/internal/specifier"
	"github.com/tirouscoded/yama/internal/typedesc"
)

// SelfName is the reserved head identifier meaning "this parcel's own
// environment": an import path beginning with it bypasses dep-mapping
// translation and resolves within the importing parcel itself.
const SelfName = "self"

// Installed is the view of domain state the resolver needs: the
// installed parcel for an install-name, and the dependency-mapping
// target for (installName, depName).
type Installed interface {
	ParcelByInstallName(installName string) (parcel.Parcel, bool)
	DepMapping(installName, depName string) (string, bool)
}

// ServicesFactory builds the parcel.Services a backing parcel receives
// when it is asked to import something, scoped to its own
// install-name.
type ServicesFactory func(installName string) parcel.Services

// Resolver resolves import paths within one domain.
type Resolver struct {
	installed Installed
	redirects *redirect.Table
	servicesFor ServicesFactory

	mu   sync.Mutex
	memo map[string]*typedesc.ModuleDescription
}

// New creates a resolver backed by the given installed-parcel view,
// redirect table, and services factory.
func New(installed Installed, redirects *redirect.Table, servicesFor ServicesFactory) *Resolver {
	return &Resolver{
		installed:   installed,
		redirects:   redirects,
		servicesFor: servicesFor,
		memo:        make(map[string]*typedesc.ModuleDescription),
	}
}

func notFound(path string) error {
	return dsignal.Wrap(dsignal.New(dsignal.ImportModuleNotFound, "import",
		fmt.Sprintf("module not found: %s", path)))
}

func parcelNotFound(name string) error {
	return dsignal.Wrap(dsignal.New(dsignal.ImportParcelNotFound, "import",
		fmt.Sprintf("no parcel installed under %q", name)))
}

// Resolve resolves importPath as seen from the environment of the
// parcel installed under fromInstallName. direct must be true when
// this call is the literal subject of a top-level domain Import/Load
// (as opposed to occurring indirectly, e.g. while instantiating
// another type's constant table) — see redirect.Table.Apply.
func (r *Resolver) Resolve(fromInstallName, importPath string, direct bool) (*typedesc.ModuleDescription, error) {
	rewritten := r.redirects.Apply(fromInstallName, importPath, direct)

	ip, err := specifier.ParseImportPath(rewritten)
	if err != nil {
		return nil, err
	}

	var resolvedPath string
	var targetInstallName string

	if ip.Head == SelfName {
		targetInstallName = fromInstallName
		resolvedPath = joinHeadRel(fromInstallName, ip.RelativePath())
	} else {
		target, ok := r.installed.DepMapping(fromInstallName, ip.Head)
		if !ok {
			return nil, parcelNotFound(ip.Head)
		}
		targetInstallName = target
		resolvedPath = joinHeadRel(target, ip.RelativePath())
	}

	r.mu.Lock()
	if mod, ok := r.memo[resolvedPath]; ok {
		r.mu.Unlock()
		return mod, nil
	}
	r.mu.Unlock()

	p, ok := r.installed.ParcelByInstallName(targetInstallName)
	if !ok {
		return nil, parcelNotFound(targetInstallName)
	}

	services := r.servicesFor(targetInstallName)
	mod, err := p.Import(services, ip.RelativePath())
	if err != nil {
		return nil, err
	}
	if mod == nil {
		return nil, notFound(resolvedPath)
	}

	r.mu.Lock()
	r.memo[resolvedPath] = mod
	r.mu.Unlock()

	return mod, nil
}

// ResolveTopLevel resolves a top-level domain.Import(path) call, where
// the head names an install-name directly rather than a dep-name
// relative to some other parcel's environment. Top-level imports are
// not "inside a parcel", so the redirect table is never consulted for
// them.
func (r *Resolver) ResolveTopLevel(importPath string) (*typedesc.ModuleDescription, error) {
	ip, err := specifier.ParseImportPath(importPath)
	if err != nil {
		return nil, err
	}
	resolvedPath := joinHeadRel(ip.Head, ip.RelativePath())

	r.mu.Lock()
	if mod, ok := r.memo[resolvedPath]; ok {
		r.mu.Unlock()
		return mod, nil
	}
	r.mu.Unlock()

	p, ok := r.installed.ParcelByInstallName(ip.Head)
	if !ok {
		return nil, parcelNotFound(ip.Head)
	}

	services := r.servicesFor(ip.Head)
	mod, err := p.Import(services, ip.RelativePath())
	if err != nil {
		return nil, err
	}
	if mod == nil {
		return nil, notFound(resolvedPath)
	}

	r.mu.Lock()
	r.memo[resolvedPath] = mod
	r.mu.Unlock()

	return mod, nil
}

func joinHeadRel(head, rel string) string {
	if rel == "" {
		return head
	}
	return head + "/" + rel
}

// JoinHeadRel is the exported form of this resolver's canonical
// path-joining rule, for callers (the domain's upload path) that need
// to compute a resolved path without going through Resolve/dep-mapping
// translation — e.g. a module the domain itself just built, rather
// than one fetched from a parcel.
func JoinHeadRel(head, rel string) string { return joinHeadRel(head, rel) }

// Preload registers mod directly under resolvedPath, as if it had just
// been fetched and memoized by Resolve. Used when a module description
// is built some other way than through a parcel's Import (the domain's
// upload path) but must still be reachable by later imports.
func (r *Resolver) Preload(resolvedPath string, mod *typedesc.ModuleDescription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memo[resolvedPath] = mod
}

// ResolvedPathFor computes the memoization key a given (fromInstallName,
// importPath) pair would resolve to, without performing an import.
// Used by callers that need to address an already-resolved module by
// its canonical path (e.g. the instantiator looking up a fullname's
// module).
func (r *Resolver) ResolvedPathFor(fromInstallName, importPath string) (string, error) {
	importPath = r.redirects.Apply(fromInstallName, importPath, false)
	ip, err := specifier.ParseImportPath(importPath)
	if err != nil {
		return "", err
	}
	if ip.Head == SelfName {
		return joinHeadRel(fromInstallName, ip.RelativePath()), nil
	}
	target, ok := r.installed.DepMapping(fromInstallName, ip.Head)
	if !ok {
		return "", parcelNotFound(ip.Head)
	}
	return joinHeadRel(target, ip.RelativePath()), nil
}

// SplitHead returns the first path segment of an import path string,
// without full parsing — used when a caller only needs the head to
// decide e.g. whether it's a root-level import.
func SplitHead(path string) string {
	if idx := strings.IndexByte(path, '/'); idx >= 0 {
		return path[:idx]
	}
	return path
}
