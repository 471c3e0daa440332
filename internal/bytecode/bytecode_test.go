package bytecode

import "testing"

func TestJumpTargetForwardAndBackward(t *testing.T) {
	fwd := Instr{Op: Jump, SBx: 3}
	if got := fwd.JumpTarget(10); got != 14 {
		t.Errorf("JumpTarget(10) = %d, want 14", got)
	}

	back := Instr{Op: Jump, SBx: -5}
	if got := back.JumpTarget(10); got != 6 {
		t.Errorf("JumpTarget(10) = %d, want 6", got)
	}

	zero := Instr{Op: Jump, SBx: 0}
	if got := zero.JumpTarget(0); got != 1 {
		t.Errorf("JumpTarget(0) with sBx=0 = %d, want 1 (falls through to next instruction)", got)
	}
}

func TestOpcodeStringCoversEveryOpcode(t *testing.T) {
	for op := Opcode(0); int(op) < Opcodes; op++ {
		if op.String() == "unknown" {
			t.Errorf("Opcode %d has no String() case", op)
		}
	}
}

func TestOpcodeStringUnknownPastRange(t *testing.T) {
	if Opcode(Opcodes).String() != "unknown" {
		t.Error("an opcode value past the known range should stringify as unknown")
	}
}

func TestDebugSymbolsFetch(t *testing.T) {
	syms := DebugSymbols{
		{SourceOrigin: "a.yama", CharacterOffset: 10, Line: 1},
		{}, // zero-value: "no symbol recorded for this offset"
	}

	got, ok := syms.Fetch(0)
	if !ok || got.Line != 1 {
		t.Errorf("Fetch(0) = %+v, %v; want a populated symbol", got, ok)
	}

	if _, ok := syms.Fetch(1); ok {
		t.Error("Fetch on a zero-value entry should report not-present")
	}

	if _, ok := syms.Fetch(5); ok {
		t.Error("Fetch out of range should report not-present")
	}
	if _, ok := syms.Fetch(-1); ok {
		t.Error("Fetch with a negative index should report not-present")
	}
}
