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

import (
	"fmt"

	"github.com/pkg/errors"
)

// Stack validation failures. Each one aborts validation of the code section it
// was found in and every *StackError unwraps to exactly one of these.
var (
	ErrStackHeightMismatch = errors.New("conflicting stack height")
	ErrStackUnderflow      = errors.New("stack underflow")
	ErrNonEmptyStackOnExit = errors.New("non-empty stack on exit")
	ErrOutputArityMismatch = errors.New("invalid number of outputs")
	ErrStackTooDeep        = errors.New("max stack height exceeded")
)

// Code and container failures reported before or after stack validation.
var (
	ErrInvalidCodeTermination = errors.New("invalid code termination")
	ErrUndefinedInstruction   = errors.New("undefined instruction")
	ErrTruncatedImmediate     = errors.New("truncated immediate")
	ErrInvalidJumpDest        = errors.New("invalid jump destination")
	ErrInvalidSectionArgument = errors.New("invalid code section reference")
	ErrInvalidCallArgument    = errors.New("callf into non-returning section")
	ErrInvalidJumpfTarget     = errors.New("jumpf to section with more outputs")
	ErrInvalidNonReturning    = errors.New("non-returning section returns")
	ErrInvalidMaxStackHeight  = errors.New("invalid max stack height")
	ErrInvalidTypeContent     = errors.New("invalid type content")
	ErrInvalidSectionCount    = errors.New("invalid number of code sections")
)

// StackError describes where and why a code section failed stack validation.
// Pos is -1 when the failure is not tied to a single instruction.
type StackError struct {
	Err     error
	Section int
	Pos     int
	Op      OpCode
	Have    int
	Want    int
}

func (e *StackError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("%v in code section %d: have %d, want at most %d", e.Err, e.Section, e.Have, e.Want)
	}
	return fmt.Sprintf("%v at pos %d (%v) in code section %d: have %d, want %d", e.Err, e.Pos, e.Op, e.Section, e.Have, e.Want)
}

func (e *StackError) Unwrap() error {
	return e.Err
}

// errorf annotates a sentinel error with instruction or section context while
// keeping it matchable with errors.Is.
func errorf(err error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{err}, args...)...)
}
