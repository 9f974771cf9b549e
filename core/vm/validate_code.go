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

// validateCode checks the instruction-level well-formedness of one code
// section: every opcode is defined, immediates are complete, relative jumps
// land on instruction starts inside the section, section references are in
// range and the section ends in a terminating instruction. Stack validation
// relies on all of it.
func validateCode(code []byte, section int, metadata []*FunctionMetadata, jt *InstructionSet) error {
	var (
		pos    int
		op     OpCode
		opn    *operation
		jumps  []int
		self   = metadata[section]
		length = len(code)
	)
	for pos < length {
		op = OpCode(code[pos])
		opn = jt[op]
		if opn == nil {
			return errorf(ErrUndefinedInstruction, "opcode %#x at pos %d", byte(op), pos)
		}
		if opn.jumpTable && pos+1 >= length {
			return errorf(ErrTruncatedImmediate, "%v at pos %d", op, pos)
		}
		width := jt.InstructionWidth(code, pos)
		if pos+width > length {
			return errorf(ErrTruncatedImmediate, "%v at pos %d", op, pos)
		}
		switch opn.kind {
		case kindJump, kindBranch:
			jumps = append(jumps, pos)
		case kindCall:
			arg := parseUint16(code[pos+1:])
			if arg >= len(metadata) {
				return errorf(ErrInvalidSectionArgument, "%v at pos %d: section %d, have %d sections", op, pos, arg, len(metadata))
			}
			if metadata[arg].isNonReturning() {
				return errorf(ErrInvalidCallArgument, "%v at pos %d: section %d", op, pos, arg)
			}
		case kindTailCall:
			arg := parseUint16(code[pos+1:])
			if arg >= len(metadata) {
				return errorf(ErrInvalidSectionArgument, "%v at pos %d: section %d, have %d sections", op, pos, arg, len(metadata))
			}
			if target := metadata[arg]; !target.isNonReturning() {
				if self.isNonReturning() {
					return errorf(ErrInvalidNonReturning, "%v at pos %d: section %d returns", op, pos, arg)
				}
				if target.Output > self.Output {
					return errorf(ErrInvalidJumpfTarget, "%v at pos %d: have %d outputs, want at most %d", op, pos, target.Output, self.Output)
				}
			}
		case kindReturn:
			if self.isNonReturning() {
				return errorf(ErrInvalidNonReturning, "%v at pos %d", op, pos)
			}
		}
		pos += width
	}
	if length == 0 || !opn.kind.ends() {
		return errorf(ErrInvalidCodeTermination, "section %d ends with %v", section, op)
	}

	bits := eofCodeBitmap(code, jt)
	for _, at := range jumps {
		width, n := jt.InstructionWidth(code, at), jt[code[at]].targetCount(code, at)
		for i := 0; i < n; i++ {
			target := jumpTarget(code, at, width, n, i)
			if target < 0 || target >= length || !bits.codeSegment(uint64(target)) {
				return errorf(ErrInvalidJumpDest, "%v at pos %d: target %d", OpCode(code[at]), at, target)
			}
		}
	}
	return nil
}

// ends reports whether an instruction of this kind may close a code section.
func (k opKind) ends() bool {
	switch k {
	case kindJump, kindReturn, kindTailCall, kindTerminal:
		return true
	}
	return false
}
