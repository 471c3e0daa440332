// Package domain implements the domain façade: the single stateful
// object owning every other component — installed parcels, dependency
// mappings, the redirect table, the string interner, the committed
// runtime-type store, and the verifier/instantiator/compiler
// collaborators — and exposing the handful of operations external
// callers actually use: install, import, load, upload.
package domain

import (
	"fmt"

	"github.com/tirouscoded/yama/internal/compiler"
	"github.com/tirouscoded/yama/internal/debugsink"
	"github.com/tirouscoded/yama/internal/dsignal"
	"github.com/tirouscoded/yama/internal/install"
	"github.com/tirouscoded/yama/internal/instantiate"
	"github.com/tirouscoded/yama/internal/parcel"
	"github.com/tirouscoded/yama/internal/redirect"
	"github.com/tirouscoded/yama/internal/resolve"
	"github.com/tirouscoded/yama/internal/runtimetype"
	"github.com/tirouscoded/yama/internal/specifier"
	"github.com/tirouscoded/yama/internal/strtab"
	"github.com/tirouscoded/yama/internal/typedesc"
	"github.com/tirouscoded/yama/internal/verify"
	"github.com/tirouscoded/yama/internal/yamaconfig"
)

// Domain owns every other component's state. All mutating operations
// (Install, Import, Load, Upload*) must be serialized by the caller —
// Domain performs no internal locking. Recursive calls during
// instantiation (a parcel importing through its services object) are
// safe because instantiation stages before it commits.
type Domain struct {
	cfg      yamaconfig.DomainConfig
	sink     debugsink.Sink
	compiler compiler.Compiler

	names *strtab.Table

	parcels     map[string]parcel.Parcel
	installOrd  []string
	depMappings map[install.DepMappingKey]string
	edges       []install.Edge

	redirects *redirect.Table
	resolver  *resolve.Resolver
	inst      *instantiate.Instantiator

	committed map[string]*runtimetype.Type

	builtins map[string]*runtimetype.Type // "none","int",... -> handle, filled by FinishSetup
}

// New creates an empty domain. sink may be debugsink.Noop{} if the
// caller doesn't want to observe events; comp may be nil if source
// uploads are never used.
func New(cfg yamaconfig.DomainConfig, sink debugsink.Sink, comp compiler.Compiler) *Domain {
	d := &Domain{
		cfg:         cfg,
		sink:        sink,
		compiler:    comp,
		names:       strtab.New(),
		parcels:     make(map[string]parcel.Parcel),
		depMappings: make(map[install.DepMappingKey]string),
		redirects:   redirect.New(),
		committed:   make(map[string]*runtimetype.Type),
		builtins:    make(map[string]*runtimetype.Type),
	}
	d.resolver = resolve.New(d, d.redirects, d.CreateParcelServicesFor)
	d.inst = instantiate.New(d.resolver, d, d.metadataFor)
	return d
}

// ---------------------------------------------------------------------
// install.Graph
// ---------------------------------------------------------------------

// IsInstalled reports whether an install-name is already committed.
func (d *Domain) IsInstalled(name string) bool {
	_, ok := d.parcels[name]
	return ok
}

// ExistingEdges returns the already-committed dependency-graph edges,
// always acyclic since every install batch revalidates.
func (d *Domain) ExistingEdges() []install.Edge {
	out := make([]install.Edge, len(d.edges))
	copy(out, d.edges)
	return out
}

// ---------------------------------------------------------------------
// resolve.Installed
// ---------------------------------------------------------------------

// ParcelByInstallName returns the parcel installed under name.
func (d *Domain) ParcelByInstallName(name string) (parcel.Parcel, bool) {
	p, ok := d.parcels[name]
	return p, ok
}

// DepMapping returns the install-name mapped to (installName, depName).
func (d *Domain) DepMapping(installName, depName string) (string, bool) {
	t, ok := d.depMappings[install.DepMappingKey{InstallName: installName, DepName: depName}]
	return t, ok
}

// ---------------------------------------------------------------------
// instantiate.Store
// ---------------------------------------------------------------------

// Get returns an already-committed runtime type by fullname string.
func (d *Domain) Get(fullname string) (*runtimetype.Type, bool) {
	t, ok := d.committed[fullname]
	return t, ok
}

// metadataFor builds the verifier metadata an install-name's own types
// are checked against: the reserved self-name plus this parcel's
// declared dependency names, so the verifier can check constant-table
// heads without a back-reference into the domain.
func (d *Domain) metadataFor(installName string) verify.Metadata {
	deps := make(map[string]bool)
	if p, ok := d.parcels[installName]; ok {
		for _, dep := range p.Deps() {
			deps[dep] = true
		}
	}
	return verify.Metadata{SelfName: resolve.SelfName, DepNames: deps}
}

func domainErr(sig dsignal.Signal, format string, args ...any) error {
	return dsignal.Wrap(dsignal.New(sig, "domain", fmt.Sprintf(format, args...)))
}

// ---------------------------------------------------------------------
// install
// ---------------------------------------------------------------------

// Install validates and commits batch. On failure, domain state is
// unchanged and every violation found is returned.
func (d *Domain) Install(batch *install.Batch) []error {
	result, errs := batch.Commit(d)
	if len(errs) > 0 {
		for _, e := range errs {
			d.sink.Raise(debugsink.CategoryInstall, signalOf(e), "%v", e)
		}
		return errs
	}

	for _, name := range result.Installs {
		d.names.Intern(name)
		d.parcels[name] = batch.ParcelFor(name)
		d.installOrd = append(d.installOrd, name)
	}
	for key, target := range result.DepMappings {
		d.depMappings[key] = target
		d.edges = append(d.edges, install.Edge{From: key.InstallName, To: target})
	}

	for _, name := range result.Installs {
		d.sink.Log(debugsink.CategoryInstall, "installed %q", name)
	}
	return nil
}

// InstallCount returns the number of installed parcels.
func (d *Domain) InstallCount() int { return len(d.installOrd) }

// InstalledNames returns every installed install-name, in install
// order.
func (d *Domain) InstalledNames() []string {
	out := make([]string, len(d.installOrd))
	copy(out, d.installOrd)
	return out
}

func signalOf(err error) dsignal.Signal {
	if rep, ok := dsignal.As(err); ok {
		return rep.Code
	}
	return dsignal.InternalInvariantViolation
}

// ---------------------------------------------------------------------
// import / load
// ---------------------------------------------------------------------

// Import resolves a top-level import path (an install-name, not a
// dep-name relative to some parcel) to its module description.
func (d *Domain) Import(path string) (*typedesc.ModuleDescription, error) {
	md, err := d.resolver.ResolveTopLevel(path)
	if err != nil {
		d.sink.Raise(debugsink.CategoryImport, signalOf(err), "import %q: %v", path, err)
		return nil, err
	}
	d.sink.Log(debugsink.CategoryImport, "imported %q", path)
	return md, nil
}

// Load instantiates (if not already) and returns the committed runtime
// type named by fullname.
func (d *Domain) Load(fullname string) (*runtimetype.Type, error) {
	if t, ok := d.committed[fullname]; ok {
		return t, nil
	}

	fn, err := specifier.ParseFullname(fullname)
	if err != nil {
		d.sink.Raise(debugsink.CategoryDomain, signalOf(err), "load %q: %v", fullname, err)
		return nil, err
	}

	importPathStr := fn.ImportPath.String()
	installName := resolve.SplitHead(importPathStr)

	md, err := d.resolver.ResolveTopLevel(importPathStr)
	if err != nil {
		d.sink.Raise(debugsink.CategoryImport, signalOf(err), "load %q: %v", fullname, err)
		return nil, err
	}

	result, err := d.inst.Instantiate(installName, importPathStr, md)
	if err != nil {
		d.sink.Raise(debugsink.CategoryInstantiate, signalOf(err), "load %q: %v", fullname, err)
		return nil, err
	}
	d.commit(result)

	t, ok := d.committed[fullname]
	if !ok {
		err := domainErr(dsignal.TypeItemNotFound, "type %q not found after instantiation", fullname)
		d.sink.Raise(debugsink.CategoryDomain, dsignal.TypeItemNotFound, "%v", err)
		return nil, err
	}
	d.sink.Log(debugsink.CategoryInstantiate, "loaded %q", fullname)
	return t, nil
}

// commit merges a successful instantiation pass into the committed
// store in one step; the pass that produced result already ran to
// completion without error.
func (d *Domain) commit(result *instantiate.Result) {
	for key, t := range result.Types {
		d.committed[key] = t
	}
	if d.cfg.VerifyDeadCode {
		for _, w := range result.Warnings {
			d.sink.Log(debugsink.CategoryVerify, "%s", w)
		}
	}
}

// ---------------------------------------------------------------------
// upload
// ---------------------------------------------------------------------

// UploadModule verifies and instantiates md as the module at
// relativePath within installName's own environment, committing every
// newly built type atomically.
func (d *Domain) UploadModule(installName, relativePath string, md *typedesc.ModuleDescription) (*instantiate.Result, error) {
	if _, ok := d.parcels[installName]; !ok {
		return nil, domainErr(dsignal.ImportParcelNotFound, "no parcel installed under %q", installName)
	}
	if err := d.checkMaxLocalsCeiling(md); err != nil {
		d.sink.Raise(debugsink.CategoryVerify, signalOf(err), "%v", err)
		return nil, err
	}

	resolvedPath := resolve.JoinHeadRel(installName, relativePath)
	d.resolver.Preload(resolvedPath, md)

	result, err := d.inst.Instantiate(installName, resolvedPath, md)
	if err != nil {
		d.sink.Raise(debugsink.CategoryInstantiate, signalOf(err), "upload %q: %v", resolvedPath, err)
		return nil, err
	}
	d.commit(result)
	d.sink.Log(debugsink.CategoryInstantiate, "uploaded module %q (%d types)", resolvedPath, len(result.Types))
	return result, nil
}

// UploadDescription wraps a single type description in a fresh module
// and uploads it.
func (d *Domain) UploadDescription(installName, relativePath string, td *typedesc.TypeDescription) (*instantiate.Result, error) {
	md := typedesc.NewModuleDescription()
	if err := md.Add(td); err != nil {
		return nil, err
	}
	return d.UploadModule(installName, relativePath, md)
}

// UploadSource invokes the external compiler on source and uploads
// its module output.
func (d *Domain) UploadSource(installName, relativePath, source string) (*instantiate.Result, error) {
	if d.compiler == nil {
		return nil, domainErr(dsignal.DomainNoCompiler, "domain has no compiler collaborator wired in")
	}
	md, err := d.compiler.Compile(source)
	if err != nil {
		d.sink.Raise(debugsink.CategoryDomain, signalOf(err), "compile: %v", err)
		return nil, err
	}
	return d.UploadModule(installName, relativePath, md)
}

func (d *Domain) checkMaxLocalsCeiling(md *typedesc.ModuleDescription) error {
	if d.cfg.MaxLocalsCeiling <= 0 {
		return nil
	}
	var bad error
	md.Each(func(name string, td *typedesc.TypeDescription) bool {
		if td.Callable != nil && td.Callable.MaxLocals > d.cfg.MaxLocalsCeiling {
			bad = domainErr(dsignal.DomainMaxLocalsCeilingExceeded,
				"type %q declares max_locals %d, exceeding ceiling %d", name, td.Callable.MaxLocals, d.cfg.MaxLocalsCeiling)
			return false
		}
		return true
	})
	return bad
}

// AddRedirect stages a redirect, visible to any subject parcel whose
// redirect set is not yet frozen.
func (d *Domain) AddRedirect(subjectEnv, beforePrefix, afterPrefix string) {
	d.redirects.Add(redirect.Redirect{SubjectEnv: subjectEnv, BeforePrefix: beforePrefix, AfterPrefix: afterPrefix})
}
