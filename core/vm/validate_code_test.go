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
	"errors"
	"testing"
)

func TestValidateCode(t *testing.T) {
	jt := NewEOFInstructionSet()
	returning := []*FunctionMetadata{{Input: 0, Output: 0}}
	for i, test := range []struct {
		code     []byte
		section  int
		metadata []*FunctionMetadata
		err      error
	}{
		{
			code:     []byte{byte(PUSH0), byte(POP), byte(STOP)},
			metadata: returning,
		},
		{
			code:     []byte{byte(PUSH1), 0x2a, byte(RJUMP), 0x00, 0x00, byte(POP), byte(STOP)},
			metadata: returning,
		},
		{
			code:     []byte{0x0c, byte(STOP)},
			metadata: returning,
			err:      ErrUndefinedInstruction,
		},
		{
			code:     []byte{byte(PUSH2), 0x00},
			metadata: returning,
			err:      ErrTruncatedImmediate,
		},
		{
			code:     []byte{byte(PUSH0), byte(RJUMPV)},
			metadata: returning,
			err:      ErrTruncatedImmediate,
		},
		{
			code:     []byte{byte(PUSH0), byte(RJUMPV), 0x01, 0x00, 0x00},
			metadata: returning,
			err:      ErrTruncatedImmediate,
		},
		{
			code:     []byte{byte(DUPN)},
			metadata: returning,
			err:      ErrTruncatedImmediate,
		},
		{
			code:     []byte{byte(PUSH1), 0x00, byte(RJUMP), 0xff, 0xfc},
			metadata: returning,
			err:      ErrInvalidJumpDest,
		},
		{
			code:     []byte{byte(RJUMP), 0x00, 0x05},
			metadata: returning,
			err:      ErrInvalidJumpDest,
		},
		{
			code:     []byte{byte(RJUMP), 0xff, 0xf0},
			metadata: returning,
			err:      ErrInvalidJumpDest,
		},
		{
			code:     []byte{byte(PUSH0), byte(RJUMPV), 0x01, 0x00, 0x00, 0x00, 0x09, byte(STOP)},
			metadata: returning,
			err:      ErrInvalidJumpDest,
		},
		{
			code:     []byte{byte(CALLF), 0x00, 0x01, byte(STOP)},
			metadata: returning,
			err:      ErrInvalidSectionArgument,
		},
		{
			code:     []byte{byte(CALLF), 0x00, 0x01, byte(STOP)},
			metadata: []*FunctionMetadata{{Input: 0, Output: 0}, {Input: 0, Output: 0x80}},
			err:      ErrInvalidCallArgument,
		},
		{
			code:     []byte{byte(RETF)},
			metadata: []*FunctionMetadata{{Input: 0, Output: 0x80}},
			err:      ErrInvalidNonReturning,
		},
		{
			code:     []byte{byte(JUMPF), 0x00, 0x02},
			metadata: []*FunctionMetadata{{Input: 0, Output: 0}, {Input: 0, Output: 0}},
			err:      ErrInvalidSectionArgument,
		},
		{
			code:     []byte{byte(JUMPF), 0x00, 0x01},
			metadata: []*FunctionMetadata{{Input: 0, Output: 0x80}, {Input: 0, Output: 0}},
			err:      ErrInvalidNonReturning,
		},
		{
			code:     []byte{byte(JUMPF), 0x00, 0x01},
			metadata: []*FunctionMetadata{{Input: 0, Output: 1}, {Input: 0, Output: 2}},
			err:      ErrInvalidJumpfTarget,
		},
		{
			code:     []byte{byte(JUMPF), 0x00, 0x01},
			metadata: []*FunctionMetadata{{Input: 0, Output: 2}, {Input: 1, Output: 1}},
		},
		{
			code:     []byte{byte(JUMPF), 0x00, 0x01},
			metadata: []*FunctionMetadata{{Input: 0, Output: 0x80}, {Input: 0, Output: 0x80}},
		},
		{
			code:     []byte{byte(PUSH0), byte(POP)},
			metadata: returning,
			err:      ErrInvalidCodeTermination,
		},
		{
			code:     []byte{byte(PUSH0), byte(RJUMPI), 0xff, 0xfc},
			metadata: returning,
			err:      ErrInvalidCodeTermination,
		},
		{
			code:     []byte{},
			metadata: returning,
			err:      ErrInvalidCodeTermination,
		},
	} {
		err := validateCode(test.code, test.section, test.metadata, &jt)
		if !errors.Is(err, test.err) {
			t.Errorf("test %d (%x): unexpected error: have %v, want %v", i, test.code, err, test.err)
		}
	}
}
