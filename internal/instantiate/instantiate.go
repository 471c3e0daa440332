// Package instantiate implements the instantiator: it turns a
// verified module description into committed runtime type objects,
// resolving constant-table references placeholder-first so that self-
// and mutually-referential types terminate instead of recursing
// forever, then committing every newly-built type atomically or none
// at all. A revisited type is a placeholder reuse, not an error:
// cyclic references between types are an explicit non-error case.
package instantiate

import (
	"fmt"

	"github.com/tirouscoded/yama/internal/dsignal"
	"github.com/tirouscoded/yama/internal/runtimetype"
	"github.com/tirouscoded/yama/internal/typedesc"
	"github.com/tirouscoded/yama/internal/verify"
)

// Importer is the view of import resolution the instantiator needs to
// chase a constant-table qualified name to the module description it
// names.
type Importer interface {
	Resolve(fromInstallName, importPath string, direct bool) (*typedesc.ModuleDescription, error)
	ResolvedPathFor(fromInstallName, importPath string) (string, error)
}

// Store is the domain's authoritative, already-committed runtime type
// table. The instantiator only ever reads it, to short-circuit
// already-resolved types; the caller merges a successful pass's
// results into it in one step.
type Store interface {
	Get(fullname string) (*runtimetype.Type, bool)
}

// MetadataFor supplies the verifier metadata (self-name + declared
// dep-names) for the parcel installed under an install-name.
type MetadataFor func(installName string) verify.Metadata

// Instantiator runs instantiation passes. One Instantiator serves many
// calls; each Instantiate call runs its own pass with fresh staging
// state.
type Instantiator struct {
	importer Importer
	store    Store
	metaFor  MetadataFor
}

// New creates an instantiator backed by the given importer, committed
// type store, and metadata lookup.
func New(importer Importer, store Store, metaFor MetadataFor) *Instantiator {
	return &Instantiator{importer: importer, store: store, metaFor: metaFor}
}

// Result is a successful instantiation pass: every runtime type built,
// keyed by fullname string, ready for the domain to merge into its
// authoritative store in one step.
type Result struct {
	Types    map[string]*runtimetype.Type
	Warnings []string
}

func instErr(sig dsignal.Signal, format string, args ...any) error {
	return dsignal.Wrap(dsignal.New(sig, "instantiate", fmt.Sprintf(format, args...)))
}

// Instantiate resolves every type in rootMD (the module description
// installed under rootInstallName at rootModulePath) into runtime Type
// objects, verifying each newly-touched module description along the
// way and transitively pulling in whatever other modules its constant
// tables reference.
//
// On success, Result.Types contains every newly built type (the
// caller, the domain, merges these into its authoritative store in one
// step, preserving all-or-nothing commit). On failure, nothing in the
// returned error implies any partial state survives — the staging pass
// that produced it is simply discarded by the caller.
func (inst *Instantiator) Instantiate(rootInstallName, rootModulePath string, rootMD *typedesc.ModuleDescription) (*Result, error) {
	p := newPass(inst)
	if err := p.ensureModule(rootInstallName, rootModulePath, rootMD); err != nil {
		return nil, err
	}
	rootMD.Each(func(name string, _ *typedesc.TypeDescription) bool {
		if _, err := p.resolveType(rootInstallName, rootModulePath, name); err != nil {
			p.firstErr = err
			return false
		}
		return true
	})
	if p.firstErr != nil {
		return nil, p.firstErr
	}
	return &Result{Types: p.staged, Warnings: p.warnings}, nil
}

func fullnameKey(modulePath, unqualifiedName string) string {
	return modulePath + ":" + unqualifiedName
}
