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

// opKind classifies an instruction by how it moves control flow. The stack
// validator dispatches on the kind only, never on raw opcode values.
type opKind uint8

const (
	kindOrdinary opKind = iota // falls through to the next instruction
	kindJump                   // unconditional relative jump
	kindBranch                 // conditional relative jump, falls through when not taken
	kindCall                   // CALLF: callee arity applies on top of the generic effect
	kindReturn                 // RETF: leaves the declared outputs
	kindTailCall               // JUMPF: transfers the frame to another section
	kindTerminal               // halts execution
)

// stackFunc computes the extra stack requirement and height change of an
// instruction whose stack shape depends on its immediate.
type stackFunc func(imm []byte) (required, delta int)

type operation struct {
	pops      int
	pushes    int
	immediate int  // immediate size in bytes, the minimum for jump tables
	jumpTable bool // immediate is a count byte followed by count+1 int16 offsets
	kind      opKind
	stackFn   stackFunc
}

// InstructionSet maps every opcode to its stack shape. Undefined opcodes are
// nil. The set is read-only once built and is shared across validations.
type InstructionSet [256]*operation

// NewEOFInstructionSet returns the instruction set of EOF code sections.
// Opcodes removed by EOF (JUMP, JUMPI, PC, CODECOPY, GAS, CALL, CREATE ...)
// are left undefined.
func NewEOFInstructionSet() InstructionSet {
	var jt InstructionSet

	jt.define(0, 0, kindTerminal, STOP, INVALID)
	jt.define(2, 0, kindTerminal, RETURN, REVERT)

	jt.define(2, 1, kindOrdinary, ADD, MUL, SUB, DIV, SDIV, MOD, SMOD, EXP, SIGNEXTEND,
		LT, GT, SLT, SGT, EQ, AND, OR, XOR, BYTE, SHL, SHR, SAR, KECCAK256)
	jt.define(3, 1, kindOrdinary, ADDMOD, MULMOD, EXTDELEGATECALL, EXTSTATICCALL)
	jt.define(4, 1, kindOrdinary, EXTCALL)
	jt.define(1, 1, kindOrdinary, ISZERO, NOT, BALANCE, CALLDATALOAD, BLOCKHASH, MLOAD,
		SLOAD, TLOAD, BLOBHASH, DATALOAD, RETURNDATALOAD)
	jt.define(0, 1, kindOrdinary, ADDRESS, ORIGIN, CALLER, CALLVALUE, CALLDATASIZE,
		RETURNDATASIZE, COINBASE, TIMESTAMP, NUMBER, PREVRANDAO, GASLIMIT, CHAINID,
		SELFBALANCE, BASEFEE, BLOBBASEFEE, MSIZE, PUSH0, DATASIZE)
	jt.define(3, 0, kindOrdinary, CALLDATACOPY, RETURNDATACOPY, MCOPY, DATACOPY)
	jt.define(2, 0, kindOrdinary, MSTORE, MSTORE8, SSTORE, TSTORE)
	jt.define(1, 0, kindOrdinary, POP)

	for i := 1; i <= 32; i++ {
		jt.define(0, 1, kindOrdinary, PUSH0+OpCode(i))
		jt[PUSH0+OpCode(i)].immediate = i
	}
	for i := 0; i < 16; i++ {
		jt.define(i+1, i+2, kindOrdinary, OpCode(DUP1+i))
		jt.define(i+2, i+2, kindOrdinary, OpCode(SWAP1+i))
	}
	for i := 0; i <= 4; i++ {
		jt.define(i+2, 0, kindOrdinary, LOG0+OpCode(i))
	}

	jt.define(0, 1, kindOrdinary, DATALOADN)
	jt[DATALOADN].immediate = 2

	jt.define(0, 0, kindJump, RJUMP)
	jt.define(1, 0, kindBranch, RJUMPI, RJUMPV)
	jt.define(0, 0, kindCall, CALLF)
	jt.define(0, 0, kindReturn, RETF)
	jt.define(0, 0, kindTailCall, JUMPF)
	for _, op := range []OpCode{RJUMP, RJUMPI, CALLF, JUMPF} {
		jt[op].immediate = 2
	}
	jt[RJUMPV].immediate = 3
	jt[RJUMPV].jumpTable = true

	jt.define(0, 0, kindOrdinary, DUPN, SWAPN, EXCHANGE)
	for _, op := range []OpCode{DUPN, SWAPN, EXCHANGE} {
		jt[op].immediate = 1
	}
	jt[DUPN].stackFn = func(imm []byte) (int, int) { return int(imm[0]) + 1, 1 }
	jt[SWAPN].stackFn = func(imm []byte) (int, int) { return int(imm[0]) + 2, 0 }
	jt[EXCHANGE].stackFn = func(imm []byte) (int, int) {
		n, m := int(imm[0]>>4)+1, int(imm[0]&0x0f)+1
		return n + m + 1, 0
	}
	return jt
}

// define installs a fresh operation with the given stack effect and kind for
// every listed opcode.
func (jt *InstructionSet) define(pops, pushes int, kind opKind, ops ...OpCode) {
	for _, op := range ops {
		jt[op] = &operation{pops: pops, pushes: pushes, kind: kind}
	}
}

// Defined reports whether op is part of the instruction set.
func (jt *InstructionSet) Defined(op OpCode) bool {
	return jt[op] != nil
}

// Immediates returns the number bytes of immediates (argument not from
// stack but from code) a given opcode has. For RJUMPV this is the minimum;
// use InstructionWidth to account for the jump table.
func (jt *InstructionSet) Immediates(op OpCode) int {
	if jt[op] == nil {
		return 0
	}
	return jt[op].immediate
}

// InstructionWidth returns the size of the instruction at pos including its
// immediates, reading the jump table count where there is one. A truncated
// count byte yields the minimum width.
func (jt *InstructionSet) InstructionWidth(code []byte, pos int) int {
	opn := jt[code[pos]]
	if opn == nil {
		return 1
	}
	if opn.jumpTable && pos+1 < len(code) {
		return 2 + 2*(int(code[pos+1])+1)
	}
	return 1 + opn.immediate
}

// targetCount returns how many relative offsets the branch or jump at pos
// encodes.
func (opn *operation) targetCount(code []byte, pos int) int {
	if opn.jumpTable {
		return int(code[pos+1]) + 1
	}
	return 1
}

// jumpTarget returns the destination of the i-th of n relative offsets encoded
// by the jump of the given width at pos. Offsets are relative to the end of the
// instruction.
func jumpTarget(code []byte, pos, width, n, i int) int {
	imm := pos + width - 2*(n-i)
	return pos + width + parseInt16(code[imm:])
}
