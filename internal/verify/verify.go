// Package verify implements the static verifier: per-type invariant
// checks, per-module owner checks, and full bytecode verification —
// CFG construction, symbolic register-state execution, and register
// coherence across branches. It never executes code.
package verify

import (
	"github.com/tirouscoded/yama/internal/typedesc"
)

// Metadata gives the verifier the context it needs about the parcel
// that owns the type description under verification: the reserved
// self-name and the set of dependency names it has declared, so that
// constant-table heads can be checked without a back-reference into
// the domain.
type Metadata struct {
	SelfName string
	DepNames map[string]bool
}

// Result is the outcome of verifying one type description.
type Result struct {
	Errors   []error
	Warnings []string
}

// OK reports whether verification found no errors (warnings don't
// block commit).
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// Verify runs every per-type check, and bytecode verification if the
// type description is a bytecode-backed callable. It never runs
// per-module owner checks — call VerifyModule for those.
func Verify(td *typedesc.TypeDescription, meta Metadata) *Result {
	res := &Result{}

	res.Errors = append(res.Errors, checkMemberConsistency(td)...)
	res.Errors = append(res.Errors, checkConstTableQualifiedNames(td, meta)...)
	res.Errors = append(res.Errors, checkCallsigSanity(td)...)

	if len(res.Errors) > 0 {
		// Any static-check failure aborts this type; bytecode
		// verification never runs against an already-invalid
		// description.
		return res
	}

	if td.Kind.IsCallable() && td.Callable != nil && td.Callable.CallBehavior == typedesc.Bytecode {
		bcRes := verifyBytecode(td)
		res.Errors = append(res.Errors, bcRes.Errors...)
		res.Warnings = append(res.Warnings, bcRes.Warnings...)
	}

	return res
}

// VerifyModule verifies every type description in md, then runs the
// per-module owner check: every method-kind type's owner prefix must
// name a type that exists in the same module.
func VerifyModule(md *typedesc.ModuleDescription, meta Metadata) map[string]*Result {
	results := make(map[string]*Result, md.Len())
	md.Each(func(name string, td *typedesc.TypeDescription) bool {
		results[name] = Verify(td, meta)
		return true
	})

	ownerErrs := checkMethodOwnersExist(md)
	for name, errs := range ownerErrs {
		if res, ok := results[name]; ok {
			res.Errors = append(res.Errors, errs...)
		}
	}
	return results
}
