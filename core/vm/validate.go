// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package vm

const unvisited = -1

// heightMemo holds the one stack height proven at every analysed offset and
// doubles as the visited set.
type heightMemo []int

func newHeightMemo(size int) heightMemo {
	memo := make(heightMemo, size)
	for i := range memo {
		memo[i] = unvisited
	}
	return memo
}

// record stores height at pos on the first visit and reports true. Later
// visits must carry the recorded height.
func (memo heightMemo) record(pos, height int) (bool, error) {
	switch recorded := memo[pos]; recorded {
	case unvisited:
		memo[pos] = height
		return true, nil
	case height:
		return false, nil
	default:
		return false, &StackError{Err: ErrStackHeightMismatch, Pos: pos, Have: height, Want: recorded}
	}
}

// pending is a continuation point not yet analysed.
type pending struct {
	pos    int
	height int
}

// frontier is the FIFO worklist of continuation points. Entries are never
// deduplicated: one landing on an analysed offset costs a single memo check.
type frontier struct {
	queue []pending
}

func (f *frontier) schedule(pos, height int) {
	f.queue = append(f.queue, pending{pos, height})
}

func (f *frontier) next() (pending, bool) {
	if len(f.queue) == 0 {
		return pending{}, false
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	return next, true
}

// effect is the resolved stack behaviour of one instruction.
type effect struct {
	required int
	delta    int
	kind     opKind
	width    int
	targets  int
	callee   *FunctionMetadata
}

// StackAnalysis is the outcome of a successful stack validation.
type StackAnalysis struct {
	MaxHeight int   // highest stack height reached on any path
	Heights   []int // proven height before each offset, -1 where no instruction starts or is reached
	Analysed  int   // instructions analysed, each exactly once
}

// Reached reports whether the instruction at pos is reachable from the entry.
func (a *StackAnalysis) Reached(pos int) bool {
	return pos >= 0 && pos < len(a.Heights) && a.Heights[pos] != unvisited
}

type stackValidator struct {
	code     []byte
	section  int
	metadata []*FunctionMetadata
	jt       *InstructionSet
	limit    int

	heights  heightMemo
	frontier frontier
	analysed int
}

// ValidateStack proves that the code of the given section can never underflow
// the stack, reaches every instruction with a single stack height, leaves
// exactly the declared outputs on exit, and never grows the stack past limit.
// It returns the maximum stack height of the section.
//
// The code must already have passed instruction validation: every reachable
// offset starts a defined instruction, jump targets land on instruction
// starts, and section references are in range.
func ValidateStack(code []byte, section int, metadata []*FunctionMetadata, jt *InstructionSet, limit int) (int, error) {
	analysis, err := AnalyzeStack(code, section, metadata, jt, limit)
	if err != nil {
		return 0, err
	}
	return analysis.MaxHeight, nil
}

// AnalyzeStack is like ValidateStack but also returns the proven height of
// every reachable instruction.
func AnalyzeStack(code []byte, section int, metadata []*FunctionMetadata, jt *InstructionSet, limit int) (*StackAnalysis, error) {
	v := &stackValidator{
		code:     code,
		section:  section,
		metadata: metadata,
		jt:       jt,
		limit:    limit,
		heights:  newHeightMemo(len(code)),
	}
	maxHeight, err := v.run()
	if err != nil {
		if serr, ok := err.(*StackError); ok {
			serr.Section = section
			if serr.Pos >= 0 && serr.Pos < len(code) {
				serr.Op = OpCode(code[serr.Pos])
			}
		}
		return nil, err
	}
	return &StackAnalysis{MaxHeight: maxHeight, Heights: v.heights, Analysed: v.analysed}, nil
}

func (v *stackValidator) run() (int, error) {
	var (
		meta      = v.metadata[v.section]
		maxHeight = int(meta.Input)
	)
	v.frontier.schedule(0, int(meta.Input))
	for {
		next, ok := v.frontier.next()
		if !ok {
			break
		}
		pos, height := next.pos, next.height
	scan:
		for {
			if pos < 0 || pos >= len(v.code) {
				return 0, &StackError{Err: ErrInvalidCodeTermination, Pos: -1, Have: pos, Want: len(v.code) - 1}
			}
			first, err := v.heights.record(pos, height)
			if err != nil {
				return 0, err
			}
			if !first {
				// Joined a path whose suffix is already proven.
				break scan
			}
			v.analysed++

			eff := v.resolve(pos)
			if height < eff.required {
				return 0, &StackError{Err: ErrStackUnderflow, Pos: pos, Have: height, Want: eff.required}
			}
			height += eff.delta
			maxHeight = max(maxHeight, height)

			switch eff.kind {
			case kindJump:
				pos = jumpTarget(v.code, pos, eff.width, eff.targets, 0)
			case kindBranch:
				v.frontier.schedule(pos+eff.width, height)
				for i := 1; i < eff.targets; i++ {
					v.frontier.schedule(jumpTarget(v.code, pos, eff.width, eff.targets, i), height)
				}
				pos = jumpTarget(v.code, pos, eff.width, eff.targets, 0)
			case kindReturn:
				if want := int(meta.Output); height != want {
					return 0, &StackError{Err: ErrOutputArityMismatch, Pos: pos, Have: height, Want: want}
				}
				break scan
			case kindTailCall:
				if eff.callee.isNonReturning() {
					break scan
				}
				if want := int(meta.Output) + int(eff.callee.Input) - int(eff.callee.Output); height != want {
					return 0, &StackError{Err: ErrOutputArityMismatch, Pos: pos, Have: height, Want: want}
				}
				break scan
			case kindTerminal:
				if height != 0 {
					return 0, &StackError{Err: ErrNonEmptyStackOnExit, Pos: pos, Have: height, Want: 0}
				}
				break scan
			default:
				pos += eff.width
			}
		}
	}
	if maxHeight > v.limit {
		return 0, &StackError{Err: ErrStackTooDeep, Pos: -1, Have: maxHeight, Want: v.limit}
	}
	return maxHeight, nil
}

// resolve computes the stack requirement and height change of the
// instruction at pos, folding in immediate operands and callee arity.
func (v *stackValidator) resolve(pos int) effect {
	op := OpCode(v.code[pos])
	opn := v.jt[op]
	pops, pushes := v.jt.StackCounts(op)

	eff := effect{
		required: pops,
		delta:    pushes - pops,
		kind:     opn.kind,
		width:    v.jt.InstructionWidth(v.code, pos),
	}
	if opn.stackFn != nil {
		required, delta := opn.stackFn(v.code[pos+1 : pos+eff.width])
		eff.required += required
		eff.delta += delta
	}
	switch opn.kind {
	case kindJump, kindBranch:
		eff.targets = opn.targetCount(v.code, pos)
	case kindCall:
		eff.callee = v.metadata[parseUint16(v.code[pos+1:])]
		eff.required += int(eff.callee.Input)
		eff.delta += int(eff.callee.Output) - int(eff.callee.Input)
	case kindTailCall:
		eff.callee = v.metadata[parseUint16(v.code[pos+1:])]
		eff.required += int(eff.callee.Input)
	}
	return eff
}
