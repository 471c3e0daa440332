package verify

import (
	"github.com/tirouscoded/yama/internal/consttable"
	"github.com/tirouscoded/yama/internal/typedesc"
)

// regKind distinguishes the two shapes a register's symbolic type can
// take: one of the fixed built-in primitive tags (what put_const and
// put_none produce directly, without needing a constant-table entry),
// or a reference to a type-constant entry within the owning type's own
// constant table.
type regKind int

const (
	regBuiltin regKind = iota
	regTypeConst
)

// regType is a register's statically-known type, tracked symbolically
// during verification. Two regTypes are coherent iff they compare
// equal.
type regType struct {
	kind regKind
	tag  typedesc.PrimitiveTag // valid iff kind == regBuiltin

	// The following are valid iff kind == regTypeConst. qn is the
	// resolved qualified-name string, so two different constant
	// indices naming the same type still compare equal for coherence
	// purposes; ctIndex is the originating table index, kept so a
	// call-site can fetch the entry's callsig directly instead of
	// re-deriving it from the name.
	qn      string
	ctIndex int
}

func builtinReg(tag typedesc.PrimitiveTag) regType { return regType{kind: regBuiltin, tag: tag} }

func typeConstReg(ct *consttable.Table, idx int) (regType, error) {
	qn, err := ct.QualifiedName(idx)
	if err != nil {
		return regType{}, err
	}
	return regType{kind: regTypeConst, qn: qn.String(), ctIndex: idx}, nil
}

func (a regType) equal(b regType) bool {
	if a.kind != b.kind {
		return false
	}
	if a.kind == regBuiltin {
		return a.tag == b.tag
	}
	return a.qn == b.qn
}

// regState is the symbolic register file at one program point: an
// ordered stack of register types, index 0 being register 0.
type regState struct {
	regs []regType
}

func (s regState) clone() regState {
	out := make([]regType, len(s.regs))
	copy(out, s.regs)
	return regState{regs: out}
}

// equal reports register coherence between two states reaching the
// same block: same slot count and identical per-slot types.
func (s regState) equal(o regState) bool {
	if len(s.regs) != len(o.regs) {
		return false
	}
	for i := range s.regs {
		if !s.regs[i].equal(o.regs[i]) {
			return false
		}
	}
	return true
}

// incoherentSlots returns the slot indices at which s and o disagree.
// Only meaningful when both states have the same slot count; a count
// mismatch is reported by the caller as one error, not per slot.
func (s regState) incoherentSlots(o regState) []int {
	var out []int
	for i := range s.regs {
		if !s.regs[i].equal(o.regs[i]) {
			out = append(out, i)
		}
	}
	return out
}

// set writes t into slot a, appending a fresh register if a is the
// newtop sentinel (handled by the caller translating Newtop to
// len(regs)).
func (s *regState) set(a int, t regType) {
	if a == len(s.regs) {
		s.regs = append(s.regs, t)
		return
	}
	s.regs[a] = t
}

// pop discards the top n registers, clamping silently to 0 rather
// than erroring when n exceeds the current register count.
func (s *regState) pop(n int) {
	if n > len(s.regs) {
		n = len(s.regs)
	}
	s.regs = s.regs[:len(s.regs)-n]
}
