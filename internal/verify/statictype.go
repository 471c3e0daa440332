package verify

import (
	"fmt"

	"github.com/tirouscoded/yama/internal/consttable"
	"github.com/tirouscoded/yama/internal/dsignal"
	"github.com/tirouscoded/yama/internal/typedesc"
)

func staticErr(sig dsignal.Signal, format string, args ...any) error {
	return dsignal.Wrap(dsignal.New(sig, "verify", fmt.Sprintf(format, args...)))
}

// checkMemberConsistency enforces that a type description's kind and
// its unqualified name's owner/member split agree: only Method-kinded
// descriptions may carry an owner prefix.
func checkMemberConsistency(td *typedesc.TypeDescription) []error {
	isMember := td.UnqualifiedName.IsMember()
	wantsMember := td.Kind.IsMember()
	if isMember != wantsMember {
		return []error{staticErr(dsignal.TypeMemberMismatch,
			"type %q has kind %s but member-ness %v", td.UnqualifiedName, td.Kind, isMember)}
	}
	return nil
}

// checkConstTableQualifiedNames validates every type-constant entry's
// qualified name: the import path's head must be the parcel's reserved
// self-name or a declared dep-name, and the owner prefix must match
// the kind the constant declares (method-type constants name a member,
// every other type-constant kind names a non-member).
func checkConstTableQualifiedNames(td *typedesc.TypeDescription, meta Metadata) []error {
	var errs []error
	ct := td.ConstTable
	if ct == nil {
		return nil
	}
	for i := 0; i < ct.Size(); i++ {
		kind, err := ct.ConstType(i)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !kind.IsTypeConstant() {
			continue
		}
		qn, err := ct.QualifiedName(i)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		head := qn.ImportPath.Head
		if head != meta.SelfName && !meta.DepNames[head] {
			errs = append(errs, staticErr(dsignal.VerifConstQnBadHead,
				"constant %d: head %q is neither the self-name nor a declared dep", i, head))
		}
		wantsMember := kind == consttable.MethodType
		if qn.UnqualifiedName.IsMember() != wantsMember {
			errs = append(errs, staticErr(dsignal.VerifConstQnOwnerMismatch,
				"constant %d (%s): owner-prefix member-ness %v does not match kind", i, kind, qn.UnqualifiedName.IsMember()))
		}
	}
	return errs
}

// checkCallsigSanity validates the type's own callsig (if callable)
// and every callsig embedded in a function-type/method-type constant
// entry: every parameter and return index must be in-bounds and
// address a type constant.
func checkCallsigSanity(td *typedesc.TypeDescription) []error {
	var errs []error
	ct := td.ConstTable
	if ct == nil {
		return nil
	}

	checkSig := func(label string, sig consttable.Callsig) {
		for pi, idx := range sig.Params {
			if kind, err := ct.ConstType(idx); err != nil {
				errs = append(errs, staticErr(dsignal.VerifCallsigBadIndex,
					"%s: param %d index %d out of bounds", label, pi, idx))
			} else if !kind.IsTypeConstant() {
				errs = append(errs, staticErr(dsignal.VerifCallsigNotTypeConst,
					"%s: param %d index %d is not a type constant", label, pi, idx))
			}
		}
		if kind, err := ct.ConstType(sig.Return); err != nil {
			errs = append(errs, staticErr(dsignal.VerifCallsigBadIndex,
				"%s: return index %d out of bounds", label, sig.Return))
		} else if !kind.IsTypeConstant() {
			errs = append(errs, staticErr(dsignal.VerifCallsigNotTypeConst,
				"%s: return index %d is not a type constant", label, sig.Return))
		}
	}

	if td.Kind.IsCallable() && td.Callable != nil {
		checkSig(fmt.Sprintf("type %q's own callsig", td.UnqualifiedName), td.Callable.Callsig)
	}

	for i := 0; i < ct.Size(); i++ {
		kind, err := ct.ConstType(i)
		if err != nil || !kind.IsCallable() {
			continue
		}
		sig, err := ct.Callsig(i)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		checkSig(fmt.Sprintf("constant %d", i), *sig)
	}

	return errs
}

// checkMethodOwnersExist validates that every Method-kinded type
// description's owner prefix names a non-member type description
// present in the same module description.
func checkMethodOwnersExist(md *typedesc.ModuleDescription) map[string][]error {
	errs := make(map[string][]error)
	md.Each(func(name string, td *typedesc.TypeDescription) bool {
		if td.Kind != typedesc.Method {
			return true
		}
		owner := td.UnqualifiedName.Owner
		ownerTd, ok := md.Get(owner)
		if !ok || ownerTd.UnqualifiedName.IsMember() {
			errs[name] = append(errs[name], staticErr(dsignal.TypeOwnerNotFound,
				"method %q: owner %q not found among this module's non-member types", name, owner))
		}
		return true
	})
	return errs
}
