// Package typedesc implements the type description and module
// description data model: kind-tagged type records with bytecode
// payloads, and the insertion-ordered, uniqueness-enforcing module
// description that groups them.
package typedesc

import (
	"fmt"

	"github.com/tirouscoded/yama/internal/bytecode"
	"github.com/tirouscoded/yama/internal/consttable"
	"github.com/tirouscoded/yama/internal/dsignal"
	"github.com/tirouscoded/yama/internal/specifier"
)

// Kind is one of the four type kinds.
type Kind int

const (
	Primitive Kind = iota
	Function
	Method
	Struct
)

func (k Kind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case Function:
		return "function"
	case Method:
		return "method"
	case Struct:
		return "struct"
	default:
		return "unknown"
	}
}

// IsCallable reports whether k is function or method.
func (k Kind) IsCallable() bool { return k == Function || k == Method }

// IsMember reports whether k carries an owner (method is the only
// owner-bearing kind at present).
func (k Kind) IsMember() bool { return k == Method }

// PrimitiveTag is the scalar tag carried by a Primitive type
// description.
type PrimitiveTag int

const (
	PNone PrimitiveTag = iota
	PInt
	PUint
	PFloat
	PBool
	PChar
	PType
)

func (t PrimitiveTag) String() string {
	switch t {
	case PNone:
		return "none"
	case PInt:
		return "int"
	case PUint:
		return "uint"
	case PFloat:
		return "float"
	case PBool:
		return "bool"
	case PChar:
		return "char"
	case PType:
		return "type"
	default:
		return "unknown"
	}
}

// CallBehavior distinguishes native host callables from
// bytecode-backed callables.
type CallBehavior int

const (
	Native CallBehavior = iota
	Bytecode
)

// CallableInfo is the payload carried by Function/Method kinds.
type CallableInfo struct {
	Callsig      consttable.Callsig // this type's own callsig, indices into its ConstTable
	MaxLocals    int
	CallBehavior CallBehavior
	Code         bytecode.Code        // non-nil iff CallBehavior == Bytecode
	DebugSymbols bytecode.DebugSymbols
}

// TypeDescription is a kind-tagged record: unqualified name, a
// constant table, and kind-specific payload.
type TypeDescription struct {
	UnqualifiedName specifier.UnqualifiedName
	ConstTable      *consttable.Table
	Kind            Kind

	PrimitiveTag PrimitiveTag  // valid iff Kind == Primitive
	Callable     *CallableInfo // valid iff Kind.IsCallable()
}

// NewPrimitive builds a primitive type description.
func NewPrimitive(name specifier.UnqualifiedName, tag PrimitiveTag) *TypeDescription {
	return &TypeDescription{
		UnqualifiedName: name,
		ConstTable:      consttable.New(),
		Kind:            Primitive,
		PrimitiveTag:    tag,
	}
}

// NewStruct builds a struct type description.
func NewStruct(name specifier.UnqualifiedName, ct *consttable.Table) *TypeDescription {
	return &TypeDescription{
		UnqualifiedName: name,
		ConstTable:      ct,
		Kind:            Struct,
	}
}

// NewCallable builds a function or method type description. kind must
// be Function or Method.
func NewCallable(kind Kind, name specifier.UnqualifiedName, ct *consttable.Table, info CallableInfo) (*TypeDescription, error) {
	if !kind.IsCallable() {
		return nil, dsignal.Wrap(dsignal.New(dsignal.InternalInvariantViolation, "typedesc",
			fmt.Sprintf("NewCallable called with non-callable kind %s", kind)))
	}
	return &TypeDescription{
		UnqualifiedName: name,
		ConstTable:      ct,
		Kind:            kind,
		Callable:        &info,
	}, nil
}

// ModuleDescription is an insertion-ordered mapping from unqualified
// name to type description. Construction enforces uniqueness;
// equality is structural.
type ModuleDescription struct {
	order []string
	byKey map[string]*TypeDescription
}

// NewModuleDescription creates an empty module description.
func NewModuleDescription() *ModuleDescription {
	return &ModuleDescription{byKey: make(map[string]*TypeDescription)}
}

// Add inserts a type description keyed by its unqualified name's
// string form. Fails if the key already exists.
func (m *ModuleDescription) Add(td *TypeDescription) error {
	key := td.UnqualifiedName.String()
	if _, exists := m.byKey[key]; exists {
		return dsignal.Wrap(dsignal.New(dsignal.TypeDuplicateName, "typedesc",
			fmt.Sprintf("duplicate unqualified name %q in module description", key)))
	}
	m.order = append(m.order, key)
	m.byKey[key] = td
	return nil
}

// Get looks up a type description by unqualified name string.
func (m *ModuleDescription) Get(key string) (*TypeDescription, bool) {
	td, ok := m.byKey[key]
	return td, ok
}

// Len returns the number of type descriptions.
func (m *ModuleDescription) Len() int { return len(m.order) }

// Names returns the unqualified-name keys in insertion order.
func (m *ModuleDescription) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Each calls fn for each entry in insertion order, stopping early if
// fn returns false.
func (m *ModuleDescription) Each(fn func(name string, td *TypeDescription) bool) {
	for _, name := range m.order {
		if !fn(name, m.byKey[name]) {
			return
		}
	}
}
