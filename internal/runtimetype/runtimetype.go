// Package runtimetype defines the runtime type object: the committed
// result of instantiation.
//
// A Type is shared by every caller that loads it; its lifetime equals
// the owning domain's. References between types are non-owning plain
// pointers, so arbitrary reference cycles are representable directly;
// the garbage collector owns the graph.
package runtimetype

import (
	"github.com/tirouscoded/yama/internal/specifier"
	"github.com/tirouscoded/yama/internal/typedesc"
)

// RuntimeCallsig is a resolved callsig: every parameter and the return
// slot point to a live Type.
type RuntimeCallsig struct {
	Params []*Type
	Return *Type
}

// Type is a fully linked, verified runtime type object.
type Type struct {
	// ModulePath is the import path of the module this type was
	// loaded from.
	ModulePath string

	Fullname specifier.Fullname
	Kind     typedesc.Kind

	PrimitiveTag typedesc.PrimitiveTag // valid iff Kind == Primitive

	// Refs holds one resolved reference per type-constant entry in the
	// owning type description's constant table, indexed identically;
	// entries for non-type-constant (object) constants are nil.
	//
	// During instantiation a Type may be published as a placeholder
	// with some Refs entries still nil (self- or mutually-referential
	// entries not yet resolved); by the time instantiation commits,
	// every entry a committed type needs is filled.
	Refs []*Type

	// Callsig is this type's own resolved callsig, valid iff
	// Kind.IsCallable().
	Callsig *RuntimeCallsig

	// objConst marks constant-table slots holding object constants,
	// which never resolve to a type and stay nil in Refs. Lazily
	// allocated; nil means every slot is a reference slot.
	objConst []bool
}

// NewPlaceholder creates an unresolved Type for fullname, sized to
// hold numConsts reference slots, all nil. The instantiator publishes
// placeholders before recursing so that cyclic constant-table
// references resolve to the same pointer instead of looping forever.
func NewPlaceholder(modulePath string, fullname specifier.Fullname, kind typedesc.Kind, numConsts int) *Type {
	return &Type{
		ModulePath: modulePath,
		Fullname:   fullname,
		Kind:       kind,
		Refs:       make([]*Type, numConsts),
	}
}

// SetRef fills reference slot i once its target has been resolved (or
// placeholder-created).
func (t *Type) SetRef(i int, target *Type) {
	t.Refs[i] = target
}

// MarkObjectConst records that slot i holds an object constant rather
// than a type reference, so FullyResolved does not treat its nil Refs
// entry as unresolved.
func (t *Type) MarkObjectConst(i int) {
	if t.objConst == nil {
		t.objConst = make([]bool, len(t.Refs))
	}
	t.objConst[i] = true
}

// Ref returns the resolved type at constant-table index i, or nil if
// unresolved or the slot is an object constant.
func (t *Type) Ref(i int) *Type {
	if i < 0 || i >= len(t.Refs) {
		return nil
	}
	return t.Refs[i]
}

// FullyResolved reports whether every reference slot is non-nil: the
// precondition for committing this type.
func (t *Type) FullyResolved() bool {
	for i, r := range t.Refs {
		if t.objConst != nil && t.objConst[i] {
			continue
		}
		if r == nil {
			return false
		}
	}
	if t.Kind.IsCallable() && t.Callsig != nil {
		for _, p := range t.Callsig.Params {
			if p == nil {
				return false
			}
		}
		if t.Callsig.Return == nil {
			return false
		}
	}
	return true
}
