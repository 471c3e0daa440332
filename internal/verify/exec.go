package verify

import (
	"fmt"

	"github.com/tirouscoded/yama/internal/bytecode"
	"github.com/tirouscoded/yama/internal/consttable"
	"github.com/tirouscoded/yama/internal/dsignal"
	"github.com/tirouscoded/yama/internal/typedesc"
)

// verifyBytecode runs the full bytecode verification pipeline on one
// bytecode-backed callable type description: non-empty check, CFG
// construction, symbolic register-state execution per block with
// branch-coherence checking at confluence points, and a final
// dead-code sweep over blocks the execution never reached.
func verifyBytecode(td *typedesc.TypeDescription) *Result {
	res := &Result{}
	info := td.Callable
	code := info.Code

	if len(code) == 0 {
		res.Errors = append(res.Errors, staticErr(dsignal.VerifBytecodeEmpty,
			"type %q: bytecode is empty", td.UnqualifiedName))
		return res
	}

	c, errs := buildCFG(code)
	if len(errs) > 0 {
		res.Errors = append(res.Errors, errs...)
		return res
	}

	ct := td.ConstTable
	entryStates := make(map[int]regState, len(c.blocks))
	visited := make(map[int]bool, len(c.blocks))

	queue := []int{c.entryBlock()}
	entryStates[c.entryBlock()] = regState{}

	for len(queue) > 0 {
		bi := queue[0]
		queue = queue[1:]
		if visited[bi] {
			continue
		}
		visited[bi] = true

		exitState, blockErrs := execBlock(ct, info, code, c.blocks[bi], entryStates[bi])
		res.Errors = append(res.Errors, blockErrs...)
		if len(blockErrs) > 0 {
			continue
		}

		for _, succ := range c.succs[bi] {
			if existing, ok := entryStates[succ]; ok {
				if len(existing.regs) != len(exitState.regs) {
					res.Errors = append(res.Errors, staticErr(dsignal.VerifViolatesRegisterCoherence,
						"block %d: %d registers arriving from block %d, %d expected", succ, len(exitState.regs), bi, len(existing.regs)))
					continue
				}
				if slots := existing.incoherentSlots(exitState); len(slots) > 0 {
					for _, slot := range slots {
						res.Errors = append(res.Errors, staticErr(dsignal.VerifViolatesRegisterCoherence,
							"block %d: register %d type incoherent arriving from block %d", succ, slot, bi))
					}
					continue
				}
			} else {
				entryStates[succ] = exitState
			}
			if !visited[succ] {
				queue = append(queue, succ)
			}
		}
	}

	if len(res.Errors) > 0 {
		return res
	}

	for bi := range c.blocks {
		if !visited[bi] {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"unreachable block [%d,%d) in type %q", c.blocks[bi].Start, c.blocks[bi].End, td.UnqualifiedName))
		}
	}

	return res
}

func resolveWrite(regs []regType, a uint8) (int, bool) {
	if a == bytecode.Newtop {
		return len(regs), true
	}
	if int(a) < len(regs) {
		return int(a), true
	}
	return 0, false
}

func resolveRead(regs []regType, a uint8) (regType, bool) {
	if int(a) >= len(regs) || a == bytecode.Newtop {
		return regType{}, false
	}
	return regs[a], true
}

// overwriteOK reports whether writing t into slot dst is allowed:
// appending a new register or a reinit write always is, a plain
// overwrite only when it leaves the slot's type unchanged.
func overwriteOK(s regState, dst int, t regType, reinit bool) bool {
	return dst >= len(s.regs) || reinit || s.regs[dst].equal(t)
}

// execBlock symbolically executes one block's instructions starting
// from entry, returning the state at the block's exit (the single
// state propagated to every successor — conditional jumps pop the same
// A registers whichever way they go, so both branches see the same
// resulting state).
func execBlock(ct *consttable.Table, info *typedesc.CallableInfo, code bytecode.Code, b block, entry regState) (regState, []error) {
	var errs []error
	s := entry.clone()

	fail := func(sig dsignal.Signal, format string, args ...any) {
		errs = append(errs, staticErr(sig, format, args...))
	}

	for pc := b.Start; pc < b.End; pc++ {
		instr := code[pc]
		switch instr.Op {
		case bytecode.Noop:
			// no-op

		case bytecode.Pop:
			s.pop(int(instr.A))

		case bytecode.PutNone:
			dst, ok := resolveWrite(s.regs, instr.A)
			if !ok {
				fail(dsignal.VerifPutsPCOutOfBounds, "instr %d: put_none register %d out of bounds", pc, instr.A)
				continue
			}
			rt := builtinReg(typedesc.PNone)
			if !overwriteOK(s, dst, rt, instr.Reinit) {
				fail(dsignal.VerifRAWrongType, "instr %d: put_none into register %d without reinit changes its type", pc, instr.A)
				continue
			}
			s.set(dst, rt)
			errs = append(errs, checkMaxLocals(info, s, pc)...)

		case bytecode.PutConst:
			dst, ok := resolveWrite(s.regs, instr.A)
			if !ok {
				fail(dsignal.VerifPutsPCOutOfBounds, "instr %d: put_const register %d out of bounds", pc, instr.A)
				continue
			}
			kind, err := ct.ConstType(int(instr.B))
			if err != nil {
				fail(dsignal.VerifRAOutOfBounds, "instr %d: put_const constant %d: %v", pc, instr.B, err)
				continue
			}
			var tag typedesc.PrimitiveTag
			switch kind {
			case consttable.Int:
				tag = typedesc.PInt
			case consttable.Uint:
				tag = typedesc.PUint
			case consttable.Float:
				tag = typedesc.PFloat
			case consttable.Bool:
				tag = typedesc.PBool
			case consttable.Char:
				tag = typedesc.PChar
			default:
				fail(dsignal.VerifKtBNotTypeConst, "instr %d: put_const constant %d is not an object constant (kind %s)", pc, instr.B, kind)
				continue
			}
			rt := builtinReg(tag)
			if !overwriteOK(s, dst, rt, instr.Reinit) {
				fail(dsignal.VerifRAWrongType, "instr %d: put_const into register %d without reinit changes its type", pc, instr.A)
				continue
			}
			s.set(dst, rt)
			errs = append(errs, checkMaxLocals(info, s, pc)...)

		case bytecode.PutTypeConst:
			dst, ok := resolveWrite(s.regs, instr.A)
			if !ok {
				fail(dsignal.VerifPutsPCOutOfBounds, "instr %d: put_type_const register %d out of bounds", pc, instr.A)
				continue
			}
			kind, err := ct.ConstType(int(instr.B))
			if err != nil || !kind.IsTypeConstant() {
				fail(dsignal.VerifKtBNotTypeConst, "instr %d: put_type_const constant %d is not a type constant", pc, instr.B)
				continue
			}
			rt := builtinReg(typedesc.PType)
			if !overwriteOK(s, dst, rt, instr.Reinit) {
				fail(dsignal.VerifRAWrongType, "instr %d: put_type_const into register %d without reinit changes its type", pc, instr.A)
				continue
			}
			s.set(dst, rt)
			errs = append(errs, checkMaxLocals(info, s, pc)...)

		case bytecode.PutArg:
			dst, ok := resolveWrite(s.regs, instr.A)
			if !ok {
				fail(dsignal.VerifPutsPCOutOfBounds, "instr %d: put_arg register %d out of bounds", pc, instr.A)
				continue
			}
			if int(instr.B) >= len(info.Callsig.Params) {
				fail(dsignal.VerifRAOutOfBounds, "instr %d: put_arg argument %d out of bounds (callsig has %d params)", pc, instr.B, len(info.Callsig.Params))
				continue
			}
			rt, err := typeConstReg(ct, info.Callsig.Params[instr.B])
			if err != nil {
				fail(dsignal.VerifRAOutOfBounds, "instr %d: put_arg: %v", pc, err)
				continue
			}
			if !overwriteOK(s, dst, rt, instr.Reinit) {
				fail(dsignal.VerifRAWrongType, "instr %d: put_arg into register %d without reinit changes its type", pc, instr.A)
				continue
			}
			s.set(dst, rt)
			errs = append(errs, checkMaxLocals(info, s, pc)...)

		case bytecode.Copy:
			src, ok := resolveRead(s.regs, instr.A)
			if !ok {
				fail(dsignal.VerifRAOutOfBounds, "instr %d: copy source register %d out of bounds", pc, instr.A)
				continue
			}
			dst, ok := resolveWrite(s.regs, instr.B)
			if !ok {
				fail(dsignal.VerifPutsPCOutOfBounds, "instr %d: copy destination register %d out of bounds", pc, instr.B)
				continue
			}
			if !overwriteOK(s, dst, src, instr.Reinit) {
				fail(dsignal.VerifRAWrongType, "instr %d: copy into register %d without reinit changes its type", pc, instr.B)
				continue
			}
			s.set(dst, src)
			errs = append(errs, checkMaxLocals(info, s, pc)...)

		case bytecode.DefaultInit:
			dst, ok := resolveWrite(s.regs, instr.A)
			if !ok {
				fail(dsignal.VerifPutsPCOutOfBounds, "instr %d: default_init register %d out of bounds", pc, instr.A)
				continue
			}
			rt, err := typeConstReg(ct, int(instr.B))
			if err != nil {
				fail(dsignal.VerifKtBNotTypeConst, "instr %d: default_init: %v", pc, err)
				continue
			}
			if !overwriteOK(s, dst, rt, instr.Reinit) {
				fail(dsignal.VerifRAWrongType, "instr %d: default_init into register %d without reinit changes its type", pc, instr.A)
				continue
			}
			s.set(dst, rt)
			errs = append(errs, checkMaxLocals(info, s, pc)...)

		case bytecode.Call, bytecode.CallNR:
			n := int(instr.A)
			if n < 1 {
				fail(dsignal.VerifCallArityMismatch, "instr %d: call must pop at least the callable register", pc)
				continue
			}
			if n > len(s.regs) {
				fail(dsignal.VerifRAOutOfBounds, "instr %d: call pops %d registers but only %d exist", pc, n, len(s.regs))
				continue
			}
			base := len(s.regs) - n
			callableType := s.regs[base]
			argTypes := s.regs[base+1:]

			if callableType.kind != regTypeConst {
				fail(dsignal.VerifRAWrongType, "instr %d: call target register is not a function/method-type value", pc)
				s.pop(n)
				continue
			}
			ctKind, err := ct.ConstType(callableType.ctIndex)
			if err != nil || !ctKind.IsCallable() {
				fail(dsignal.VerifRAWrongType, "instr %d: call target is not a function/method-type constant", pc)
				s.pop(n)
				continue
			}
			sig, err := ct.Callsig(callableType.ctIndex)
			if err != nil {
				fail(dsignal.VerifRAWrongType, "instr %d: call target: %v", pc, err)
				s.pop(n)
				continue
			}

			if len(sig.Params) != len(argTypes) {
				fail(dsignal.VerifCallArityMismatch, "instr %d: call passes %d args, callsig wants %d", pc, len(argTypes), len(sig.Params))
				s.pop(n)
				continue
			}
			mismatch := false
			for i, pIdx := range sig.Params {
				expected, err := typeConstReg(ct, pIdx)
				if err != nil {
					fail(dsignal.VerifCallsigBadIndex, "instr %d: call param %d: %v", pc, i, err)
					mismatch = true
					continue
				}
				if !expected.equal(argTypes[i]) {
					fail(dsignal.VerifCallArgTypeMismatch, "instr %d: call arg %d type mismatch", pc, i)
					mismatch = true
				}
			}
			if mismatch {
				s.pop(n)
				continue
			}
			retType, err := typeConstReg(ct, sig.Return)
			if err != nil {
				fail(dsignal.VerifCallsigBadIndex, "instr %d: call return type: %v", pc, err)
				s.pop(n)
				continue
			}
			s.pop(n)
			if instr.Op == bytecode.Call {
				dst, ok := resolveWrite(s.regs, instr.B)
				if !ok {
					fail(dsignal.VerifPutsPCOutOfBounds, "instr %d: call destination register %d out of bounds", pc, instr.B)
					continue
				}
				if !overwriteOK(s, dst, retType, instr.Reinit) {
					fail(dsignal.VerifRAWrongType, "instr %d: call result into register %d without reinit changes its type", pc, instr.B)
					continue
				}
				s.set(dst, retType)
				errs = append(errs, checkMaxLocals(info, s, pc)...)
			}

		case bytecode.Ret:
			actual, ok := resolveRead(s.regs, instr.A)
			if !ok {
				fail(dsignal.VerifRAOutOfBounds, "instr %d: ret register %d out of bounds", pc, instr.A)
				continue
			}
			expected, err := typeConstReg(ct, info.Callsig.Return)
			if err != nil {
				fail(dsignal.VerifCallsigBadIndex, "instr %d: ret: %v", pc, err)
				continue
			}
			if !actual.equal(expected) {
				fail(dsignal.VerifRetTypeMismatch, "instr %d: ret register %d type does not match callsig return type", pc, instr.A)
				continue
			}

		case bytecode.Jump:
			// handled entirely by CFG edge construction

		case bytecode.JumpTrue, bytecode.JumpFalse:
			if len(s.regs) == 0 {
				fail(dsignal.VerifRAOutOfBounds, "instr %d: %s with no condition register", pc, instr.Op)
				continue
			}
			top := s.regs[len(s.regs)-1]
			if !top.equal(builtinReg(typedesc.PBool)) {
				fail(dsignal.VerifJumpCondNotBool, "instr %d: %s condition register is not bool", pc, instr.Op)
				continue
			}
			// A is a pop count here too, the same as call/call_nr —
			// the condition register plus any now-dead work registers
			// the branch discards.
			s.pop(int(instr.A))
		}
	}

	return s, errs
}

func checkMaxLocals(info *typedesc.CallableInfo, s regState, pc int) []error {
	if len(s.regs) > info.MaxLocals {
		return []error{staticErr(dsignal.VerifPutsExceedsMaxLocals,
			"instr %d: register count %d exceeds max_locals %d", pc, len(s.regs), info.MaxLocals)}
	}
	return nil
}
