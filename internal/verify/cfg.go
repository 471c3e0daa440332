package verify

import (
	"sort"

	"github.com/tirouscoded/yama/internal/bytecode"
	"github.com/tirouscoded/yama/internal/dsignal"
)

// block is a maximal run of instructions [Start, End) with no
// division point in its interior. Division points fall at offset 0,
// at len(code), right after every jump/jump_true/jump_false/ret
// instruction, and at every in-bounds jump-family target.
type block struct {
	Start, End int
}

// cfg is the control-flow graph of one callable's bytecode: the
// ordered list of blocks plus the successor edges between them,
// indexed by block index (not instruction offset).
type cfg struct {
	blocks  []block
	succs   [][]int
	indexOf map[int]int // instruction offset -> block index, for block-start offsets only
}

func blockContaining(c *cfg, offset int) int {
	// blocks are sorted by Start; binary search for the block whose
	// [Start, End) contains offset.
	i := sort.Search(len(c.blocks), func(i int) bool { return c.blocks[i].End > offset })
	if i < len(c.blocks) && c.blocks[i].Start <= offset {
		return i
	}
	return -1
}

// buildCFG partitions code into blocks and computes successor edges.
// It also validates every jump-family target is in-bounds, returning
// those violations directly since they're needed to build the graph
// at all.
func buildCFG(code bytecode.Code) (*cfg, []error) {
	var errs []error
	n := len(code)

	divs := map[int]bool{0: true, n: true}
	for pc, instr := range code {
		switch instr.Op {
		case bytecode.Jump, bytecode.JumpTrue, bytecode.JumpFalse, bytecode.Ret:
			if pc+1 <= n {
				divs[pc+1] = true
			}
		}
		switch instr.Op {
		case bytecode.Jump, bytecode.JumpTrue, bytecode.JumpFalse:
			target := instr.JumpTarget(pc)
			if target < 0 || target >= n {
				errs = append(errs, staticErr(dsignal.VerifJumpOutOfBounds,
					"instruction %d: jump target %d out of bounds (code length %d)", pc, target, n))
				continue
			}
			divs[target] = true
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	points := make([]int, 0, len(divs))
	for p := range divs {
		points = append(points, p)
	}
	sort.Ints(points)

	c := &cfg{indexOf: make(map[int]int)}
	for i := 0; i+1 < len(points); i++ {
		b := block{Start: points[i], End: points[i+1]}
		c.indexOf[b.Start] = len(c.blocks)
		c.blocks = append(c.blocks, b)
	}

	c.succs = make([][]int, len(c.blocks))
	for bi, b := range c.blocks {
		if b.End <= b.Start {
			continue
		}
		term := code[b.End-1]
		switch term.Op {
		case bytecode.Jump:
			target := term.JumpTarget(b.End - 1)
			c.succs[bi] = []int{c.indexOf[target]}
		case bytecode.JumpTrue, bytecode.JumpFalse:
			target := term.JumpTarget(b.End - 1)
			succs := []int{c.indexOf[target]}
			if b.End < n {
				succs = append(succs, c.indexOf[b.End])
			}
			c.succs[bi] = succs
		case bytecode.Ret:
			// terminal: no successors
		default:
			if b.End < n {
				c.succs[bi] = []int{c.indexOf[b.End]}
			} else {
				errs = append(errs, staticErr(dsignal.VerifFallsOffEnd,
					"block [%d,%d) falls off the end of the bytecode without a ret", b.Start, b.End))
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return c, nil
}

// entryBlock is always block 0 (instruction offset 0 is always a
// division point).
func (c *cfg) entryBlock() int { return 0 }
