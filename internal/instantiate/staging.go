package instantiate

import (
	"fmt"

	"github.com/tirouscoded/yama/internal/consttable"
	"github.com/tirouscoded/yama/internal/dsignal"
	"github.com/tirouscoded/yama/internal/resolve"
	"github.com/tirouscoded/yama/internal/runtimetype"
	"github.com/tirouscoded/yama/internal/specifier"
	"github.com/tirouscoded/yama/internal/typedesc"
	"github.com/tirouscoded/yama/internal/verify"
)

// moduleCtx is everything a pass needs to keep resolving types out of
// one already-fetched module description.
type moduleCtx struct {
	installName string
	md          *typedesc.ModuleDescription
}

// pass is one instantiation pass's mutable state: every module
// description it has touched so far (verified at most once each),
// every type it has staged (placeholder or fully resolved), and the
// first error encountered. A pass is discarded whole on failure —
// nothing in it is ever partially committed to the domain's Store.
// Each call to Instantiate starts a fresh staging area; the domain
// merges a finished pass's results into its long-lived store once.
type pass struct {
	inst *Instantiator

	modules map[string]moduleCtx
	staged  map[string]*runtimetype.Type

	firstErr error
	warnings []string
}

func newPass(inst *Instantiator) *pass {
	return &pass{
		inst:    inst,
		modules: make(map[string]moduleCtx),
		staged:  make(map[string]*runtimetype.Type),
	}
}

// ensureModule registers md as reachable under modulePath for this
// pass, verifying it the first time a pass touches it. A module
// description already registered this pass (whether because it's the
// root, or because some other type's constant table referenced it
// first) is not re-verified.
func (p *pass) ensureModule(installName, modulePath string, md *typedesc.ModuleDescription) error {
	if _, ok := p.modules[modulePath]; ok {
		return nil
	}

	meta := p.inst.metaFor(installName)
	results := verify.VerifyModule(md, meta)

	var verifyErrs []error
	md.Each(func(name string, _ *typedesc.TypeDescription) bool {
		res, ok := results[name]
		if !ok {
			return true
		}
		verifyErrs = append(verifyErrs, res.Errors...)
		for _, w := range res.Warnings {
			p.warnings = append(p.warnings, fmt.Sprintf("%s:%s: %s", modulePath, name, w))
		}
		return true
	})
	if len(verifyErrs) > 0 {
		return instErr(dsignal.VerifFailed, "module %q failed verification: %v", modulePath, verifyErrs[0])
	}

	p.modules[modulePath] = moduleCtx{installName: installName, md: md}
	return nil
}

// resolveType resolves the type named name within the module already
// registered at modulePath, returning its runtime Type — a freshly
// staged placeholder on first visit, the same placeholder pointer on
// any revisit reached while its own references are still being filled
// in (the cycle-safety this package exists for), or an
// already-committed Type if the domain's Store already has one.
func (p *pass) resolveType(installName, modulePath, name string) (*runtimetype.Type, error) {
	key := fullnameKey(modulePath, name)

	if t, ok := p.staged[key]; ok {
		return t, nil
	}
	if t, ok := p.inst.store.Get(key); ok {
		return t, nil
	}

	mctx, ok := p.modules[modulePath]
	if !ok {
		return nil, instErr(dsignal.InternalInvariantViolation,
			"resolveType: module %q not registered in this pass", modulePath)
	}
	td, ok := mctx.md.Get(name)
	if !ok {
		return nil, instErr(dsignal.TypeItemNotFound, "type %q not found in module %q", name, modulePath)
	}

	fullname, err := specifier.ParseFullname(key)
	if err != nil {
		return nil, instErr(dsignal.IllegalFullname, "building fullname for %q: %v", key, err)
	}

	ct := td.ConstTable
	placeholder := runtimetype.NewPlaceholder(modulePath, fullname, td.Kind, ct.Size())
	if td.Kind == typedesc.Primitive {
		placeholder.PrimitiveTag = td.PrimitiveTag
	}
	p.staged[key] = placeholder

	for i := 0; i < ct.Size(); i++ {
		kind, err := ct.ConstType(i)
		if err != nil {
			return nil, instErr(dsignal.InternalInvariantViolation, "const %d of %q: %v", i, key, err)
		}
		if !kind.IsTypeConstant() {
			placeholder.MarkObjectConst(i)
			continue
		}
		target, err := p.resolveConstRef(installName, ct, i)
		if err != nil {
			return nil, err
		}
		placeholder.SetRef(i, target)
	}

	if td.Kind.IsCallable() && td.Callable != nil {
		sig := td.Callable.Callsig
		params := make([]*runtimetype.Type, len(sig.Params))
		for i, pIdx := range sig.Params {
			params[i] = placeholder.Ref(pIdx)
		}
		placeholder.Callsig = &runtimetype.RuntimeCallsig{
			Params: params,
			Return: placeholder.Ref(sig.Return),
		}
	}

	return placeholder, nil
}

// resolveConstRef resolves one type-constant entry of a constant table
// to its runtime Type, chasing into whatever module its qualified name
// names (possibly the same module currently being resolved, possibly
// a different parcel entirely).
func (p *pass) resolveConstRef(fromInstallName string, ct *consttable.Table, i int) (*runtimetype.Type, error) {
	qn, err := ct.QualifiedName(i)
	if err != nil {
		return nil, instErr(dsignal.InternalInvariantViolation, "const %d: %v", i, err)
	}

	importPathStr := qn.ImportPath.String()
	canonicalPath, err := p.inst.importer.ResolvedPathFor(fromInstallName, importPathStr)
	if err != nil {
		return nil, err
	}
	targetInstallName := resolve.SplitHead(canonicalPath)

	if _, ok := p.modules[canonicalPath]; !ok {
		md, err := p.inst.importer.Resolve(fromInstallName, importPathStr, false)
		if err != nil {
			return nil, err
		}
		if err := p.ensureModule(targetInstallName, canonicalPath, md); err != nil {
			return nil, err
		}
	}

	return p.resolveType(targetInstallName, canonicalPath, qn.UnqualifiedName.String())
}
