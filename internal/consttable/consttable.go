// Package consttable implements the constant table shared by the
// verifier and instantiator: an ordered, append-only, kind-typed
// sequence of literal scalars and symbolic type references.
//
// Function-type and method-type entries are appended without a callsig
// and patched in place once one has been built, so that a callsig may
// reference the table entry it belongs to (mutual recursion among
// function types within one table).
package consttable

import (
	"fmt"

	"github.com/tirouscoded/yama/internal/dsignal"
	"github.com/tirouscoded/yama/internal/specifier"
)

// Kind identifies the tag of one constant-table entry.
type Kind int

const (
	Int Kind = iota
	Uint
	Float
	Bool
	Char

	PrimitiveType
	FunctionType
	MethodType
	StructType
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Char:
		return "char"
	case PrimitiveType:
		return "primitive-type"
	case FunctionType:
		return "function-type"
	case MethodType:
		return "method-type"
	case StructType:
		return "struct-type"
	default:
		return "unknown"
	}
}

// IsTypeConstant reports whether k is one of the symbolic
// type-reference kinds (as opposed to an object constant).
func (k Kind) IsTypeConstant() bool {
	switch k {
	case PrimitiveType, FunctionType, MethodType, StructType:
		return true
	default:
		return false
	}
}

// IsCallable reports whether k carries a callsig (function-type or
// method-type).
func (k Kind) IsCallable() bool {
	return k == FunctionType || k == MethodType
}

// Callsig is an ordered parameter list plus one return slot, each
// addressing a type-constant index within the same table.
type Callsig struct {
	Params []int
	Return int
}

// entry is one append-only record.
type entry struct {
	kind Kind

	i int64
	u uint64
	f float64
	b bool
	c rune

	qname   specifier.QualifiedName
	callsig *Callsig // nil until patched, for FunctionType/MethodType
}

// Table is the ordered, kind-typed, index-addressed constant list
// owned by one type description. The zero value is ready to use.
type Table struct {
	entries []entry
	sealed  bool
}

// New creates an empty constant table.
func New() *Table { return &Table{} }

// Size returns the number of entries.
func (t *Table) Size() int { return len(t.entries) }

// Seal freezes the table against further appends or patches. Neither
// the verifier nor the instantiator seals a table; a table is frozen
// only once a caller invokes Seal.
func (t *Table) Seal() { t.sealed = true }

func kindErr(i int, want, got Kind) error {
	return dsignal.Wrap(dsignal.New(dsignal.VerifKtBNotTypeConst, "consttable",
		fmt.Sprintf("constant %d: expected kind %s, got %s", i, want, got)))
}

func rangeErr(i, size int) error {
	return dsignal.Wrap(dsignal.New(dsignal.VerifRAOutOfBounds, "consttable",
		fmt.Sprintf("constant index %d out of bounds (size %d)", i, size)))
}

func (t *Table) at(i int) (entry, error) {
	if i < 0 || i >= len(t.entries) {
		return entry{}, rangeErr(i, len(t.entries))
	}
	return t.entries[i], nil
}

// ConstType returns the kind of entry i.
func (t *Table) ConstType(i int) (Kind, error) {
	e, err := t.at(i)
	if err != nil {
		return 0, err
	}
	return e.kind, nil
}

// GetInt returns the int64 held at i, failing if i is not an Int
// entry.
func (t *Table) GetInt(i int) (int64, error) {
	e, err := t.at(i)
	if err != nil {
		return 0, err
	}
	if e.kind != Int {
		return 0, kindErr(i, Int, e.kind)
	}
	return e.i, nil
}

// GetUint returns the uint64 held at i.
func (t *Table) GetUint(i int) (uint64, error) {
	e, err := t.at(i)
	if err != nil {
		return 0, err
	}
	if e.kind != Uint {
		return 0, kindErr(i, Uint, e.kind)
	}
	return e.u, nil
}

// GetFloat returns the float64 held at i.
func (t *Table) GetFloat(i int) (float64, error) {
	e, err := t.at(i)
	if err != nil {
		return 0, err
	}
	if e.kind != Float {
		return 0, kindErr(i, Float, e.kind)
	}
	return e.f, nil
}

// GetBool returns the bool held at i.
func (t *Table) GetBool(i int) (bool, error) {
	e, err := t.at(i)
	if err != nil {
		return false, err
	}
	if e.kind != Bool {
		return false, kindErr(i, Bool, e.kind)
	}
	return e.b, nil
}

// GetChar returns the codepoint held at i.
func (t *Table) GetChar(i int) (rune, error) {
	e, err := t.at(i)
	if err != nil {
		return 0, err
	}
	if e.kind != Char {
		return 0, kindErr(i, Char, e.kind)
	}
	return e.c, nil
}

// QualifiedName returns the qualified name of a type-constant entry.
// Fails for object-constant kinds.
func (t *Table) QualifiedName(i int) (specifier.QualifiedName, error) {
	e, err := t.at(i)
	if err != nil {
		return specifier.QualifiedName{}, err
	}
	if !e.kind.IsTypeConstant() {
		return specifier.QualifiedName{}, dsignal.Wrap(dsignal.New(dsignal.VerifCallsigNotTypeConst, "consttable",
			fmt.Sprintf("constant %d (kind %s) is not a type constant", i, e.kind)))
	}
	return e.qname, nil
}

// Callsig returns the callsig attached to a function-type or
// method-type entry. Fails if the entry isn't callable-kinded, or
// hasn't been patched yet.
func (t *Table) Callsig(i int) (*Callsig, error) {
	e, err := t.at(i)
	if err != nil {
		return nil, err
	}
	if !e.kind.IsCallable() {
		return nil, kindErr(i, FunctionType, e.kind)
	}
	if e.callsig == nil {
		return nil, dsignal.Wrap(dsignal.New(dsignal.InternalInvariantViolation, "consttable",
			fmt.Sprintf("constant %d has no callsig patched yet", i)))
	}
	return e.callsig, nil
}

func (t *Table) appendGuard() error {
	if t.sealed {
		return dsignal.Wrap(dsignal.New(dsignal.InternalInvariantViolation, "consttable",
			"append on a sealed constant table"))
	}
	return nil
}

// AppendInt appends an int64 object constant, returning its index.
func (t *Table) AppendInt(v int64) (int, error) {
	if err := t.appendGuard(); err != nil {
		return 0, err
	}
	t.entries = append(t.entries, entry{kind: Int, i: v})
	return len(t.entries) - 1, nil
}

// AppendUint appends a uint64 object constant.
func (t *Table) AppendUint(v uint64) (int, error) {
	if err := t.appendGuard(); err != nil {
		return 0, err
	}
	t.entries = append(t.entries, entry{kind: Uint, u: v})
	return len(t.entries) - 1, nil
}

// AppendFloat appends a float64 object constant.
func (t *Table) AppendFloat(v float64) (int, error) {
	if err := t.appendGuard(); err != nil {
		return 0, err
	}
	t.entries = append(t.entries, entry{kind: Float, f: v})
	return len(t.entries) - 1, nil
}

// AppendBool appends a bool object constant.
func (t *Table) AppendBool(v bool) (int, error) {
	if err := t.appendGuard(); err != nil {
		return 0, err
	}
	t.entries = append(t.entries, entry{kind: Bool, b: v})
	return len(t.entries) - 1, nil
}

// AppendChar appends a codepoint object constant.
func (t *Table) AppendChar(v rune) (int, error) {
	if err := t.appendGuard(); err != nil {
		return 0, err
	}
	t.entries = append(t.entries, entry{kind: Char, c: v})
	return len(t.entries) - 1, nil
}

// AppendPrimitiveType appends a primitive-type reference constant.
func (t *Table) AppendPrimitiveType(qn specifier.QualifiedName) (int, error) {
	if err := t.appendGuard(); err != nil {
		return 0, err
	}
	t.entries = append(t.entries, entry{kind: PrimitiveType, qname: qn})
	return len(t.entries) - 1, nil
}

// AppendStructType appends a struct-type reference constant.
func (t *Table) AppendStructType(qn specifier.QualifiedName) (int, error) {
	if err := t.appendGuard(); err != nil {
		return 0, err
	}
	t.entries = append(t.entries, entry{kind: StructType, qname: qn})
	return len(t.entries) - 1, nil
}

// AppendFunctionType appends a function-type reference constant
// without a callsig; PatchCallsig must be called before the table is
// sealed.
func (t *Table) AppendFunctionType(qn specifier.QualifiedName) (int, error) {
	if err := t.appendGuard(); err != nil {
		return 0, err
	}
	t.entries = append(t.entries, entry{kind: FunctionType, qname: qn})
	return len(t.entries) - 1, nil
}

// AppendMethodType appends a method-type reference constant without a
// callsig.
func (t *Table) AppendMethodType(qn specifier.QualifiedName) (int, error) {
	if err := t.appendGuard(); err != nil {
		return 0, err
	}
	t.entries = append(t.entries, entry{kind: MethodType, qname: qn})
	return len(t.entries) - 1, nil
}

// PatchCallsig attaches sig to the function-type or method-type entry
// at i. Indices within sig must address type constants of this same
// table; that invariant is checked by the verifier, not here.
func (t *Table) PatchCallsig(i int, sig Callsig) error {
	if err := t.appendGuard(); err != nil {
		return err
	}
	if i < 0 || i >= len(t.entries) {
		return rangeErr(i, len(t.entries))
	}
	if !t.entries[i].kind.IsCallable() {
		return kindErr(i, FunctionType, t.entries[i].kind)
	}
	t.entries[i].callsig = &sig
	return nil
}
