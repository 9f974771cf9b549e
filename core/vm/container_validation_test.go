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
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// callerCallee returns a two-section container: section 0 pushes two items
// and calls section 1, which adds them and returns the sum.
func callerCallee() *Container {
	return &Container{
		Types: []*FunctionMetadata{
			{Input: 0, Output: 0, MaxStackHeight: 2},
			{Input: 2, Output: 1, MaxStackHeight: 2},
		},
		CodeSections: [][]byte{
			{byte(PUSH0), byte(PUSH0), byte(CALLF), 0x00, 0x01, byte(POP), byte(STOP)},
			{byte(ADD), byte(RETF)},
		},
	}
}

func TestContainerValidateCode(t *testing.T) {
	jt := NewEOFInstructionSet()

	heights, err := callerCallee().ValidateCode(context.Background(), &jt, &DefaultConfig)
	require.NoError(t, err)
	require.Equal(t, []int{2, 2}, heights)
}

func TestContainerValidateCodeSingleSection(t *testing.T) {
	jt := NewEOFInstructionSet()
	c := &Container{
		Types:        []*FunctionMetadata{{Input: 0, Output: 0x80, MaxStackHeight: 2}},
		CodeSections: [][]byte{{byte(PUSH0), byte(PUSH0), byte(REVERT)}},
	}
	heights, err := c.ValidateCode(context.Background(), &jt, &DefaultConfig)
	require.NoError(t, err)
	require.Equal(t, []int{2}, heights)
}

func TestContainerValidateCodeRejectsSection(t *testing.T) {
	jt := NewEOFInstructionSet()
	c := callerCallee()
	c.CodeSections[1] = []byte{byte(ADD), byte(ADD), byte(RETF)}

	_, err := c.ValidateCode(context.Background(), &jt, &DefaultConfig)
	require.ErrorIs(t, err, ErrStackUnderflow)
	require.Contains(t, err.Error(), "code section 1")

	var serr *StackError
	require.True(t, errors.As(err, &serr))
	require.Equal(t, 1, serr.Section)
	require.Equal(t, 1, serr.Pos)
	require.Equal(t, ADD, serr.Op)
}

func TestContainerValidateCodeLowestFailure(t *testing.T) {
	jt := NewEOFInstructionSet()
	c := &Container{
		Types:        []*FunctionMetadata{{}, {}, {}},
		CodeSections: [][]byte{{byte(PUSH0), byte(STOP)}, {byte(PUSH0), byte(STOP)}, {byte(PUSH0), byte(STOP)}},
	}
	// Every section fails; whichever ran first, the result is a rejection.
	for i := 0; i < 16; i++ {
		_, err := c.ValidateCode(context.Background(), &jt, &DefaultConfig)
		require.ErrorIs(t, err, ErrNonEmptyStackOnExit)
	}
}

func TestContainerValidateCodeInstructionErrors(t *testing.T) {
	jt := NewEOFInstructionSet()
	c := callerCallee()
	c.CodeSections[0] = []byte{byte(PUSH0), byte(PUSH0), byte(CALLF), 0x00, 0x07, byte(POP), byte(STOP)}

	_, err := c.ValidateCode(context.Background(), &jt, &DefaultConfig)
	require.ErrorIs(t, err, ErrInvalidSectionArgument)
	require.Contains(t, err.Error(), "code section 0")
}

func TestContainerValidateCodeStrictMaxStackHeight(t *testing.T) {
	jt := NewEOFInstructionSet()
	c := callerCallee()
	c.Types[0].MaxStackHeight = 3

	_, err := c.ValidateCode(context.Background(), &jt, &DefaultConfig)
	require.ErrorIs(t, err, ErrInvalidMaxStackHeight)

	lenient := DefaultConfig
	lenient.StrictMaxStackHeight = false
	heights, err := c.ValidateCode(context.Background(), &jt, &lenient)
	require.NoError(t, err)
	require.Equal(t, []int{2, 2}, heights)

	// A nil config validates leniently against the protocol limit.
	heights, err = c.ValidateCode(context.Background(), &jt, nil)
	require.NoError(t, err)
	require.Equal(t, []int{2, 2}, heights)
}

func TestContainerValidateCodeStackLimit(t *testing.T) {
	jt := NewEOFInstructionSet()
	cfg := DefaultConfig
	cfg.StackLimit = 1

	_, err := callerCallee().ValidateCode(context.Background(), &jt, &cfg)
	require.ErrorIs(t, err, ErrStackTooDeep)
}

func TestContainerValidateCodeTypes(t *testing.T) {
	jt := NewEOFInstructionSet()
	for i, test := range []struct {
		container *Container
		err       error
	}{
		{&Container{}, ErrInvalidSectionCount},
		{&Container{Types: []*FunctionMetadata{{}}, CodeSections: [][]byte{{byte(STOP)}, {byte(STOP)}}}, ErrInvalidSectionCount},
		{&Container{Types: []*FunctionMetadata{nil}, CodeSections: [][]byte{{byte(STOP)}}}, ErrInvalidTypeContent},
		{&Container{Types: []*FunctionMetadata{{Input: 128}}, CodeSections: [][]byte{{byte(STOP)}}}, ErrInvalidTypeContent},
		{&Container{Types: []*FunctionMetadata{{Output: 129}}, CodeSections: [][]byte{{byte(STOP)}}}, ErrInvalidTypeContent},
		{&Container{Types: []*FunctionMetadata{{MaxStackHeight: 1025}}, CodeSections: [][]byte{{byte(STOP)}}}, ErrInvalidTypeContent},
	} {
		_, err := test.container.ValidateCode(context.Background(), &jt, &DefaultConfig)
		if !errors.Is(err, test.err) {
			t.Errorf("test %d: unexpected error: have %v, want %v", i, err, test.err)
		}
	}
}

func TestContainerValidateCodeManySections(t *testing.T) {
	jt := NewEOFInstructionSet()
	const sections = 512
	c := &Container{
		Types:        make([]*FunctionMetadata, sections),
		CodeSections: make([][]byte, sections),
	}
	for i := 0; i < sections; i++ {
		depth := i%8 + 1
		code := make([]byte, 0, 2*depth+1)
		for j := 0; j < depth; j++ {
			code = append(code, byte(PUSH0))
		}
		for j := 0; j < depth; j++ {
			code = append(code, byte(POP))
		}
		c.Types[i] = &FunctionMetadata{MaxStackHeight: uint16(depth)}
		c.CodeSections[i] = append(code, byte(STOP))
	}
	heights, err := c.ValidateCode(context.Background(), &jt, &DefaultConfig)
	require.NoError(t, err)
	for i, height := range heights {
		require.Equal(t, i%8+1, height, "section %d", i)
	}
}

func TestContainerValidateCodeCanceled(t *testing.T) {
	jt := NewEOFInstructionSet()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := callerCallee().ValidateCode(ctx, &jt, &DefaultConfig)
	require.ErrorIs(t, err, context.Canceled)

	single := &Container{
		Types:        []*FunctionMetadata{{Output: 0x80}},
		CodeSections: [][]byte{{byte(STOP)}},
	}
	_, err = single.ValidateCode(ctx, &jt, &DefaultConfig)
	require.ErrorIs(t, err, context.Canceled)
}

func TestContainerValidateCodeMetrics(t *testing.T) {
	jt := NewEOFInstructionSet()
	accepted, rejected := validateAcceptedCounter.Count(), validateRejectedCounter.Count()

	_, err := callerCallee().ValidateCode(context.Background(), &jt, &DefaultConfig)
	require.NoError(t, err)
	_, err = (&Container{}).ValidateCode(context.Background(), &jt, &DefaultConfig)
	require.Error(t, err)

	require.Equal(t, accepted+1, validateAcceptedCounter.Count())
	require.Equal(t, rejected+1, validateRejectedCounter.Count())
}

func TestContainerHash(t *testing.T) {
	a, b := callerCallee(), callerCallee()
	require.Equal(t, a.Hash(), b.Hash())

	b.Types[1].MaxStackHeight = 3
	require.NotEqual(t, a.Hash(), b.Hash())

	// Moving a byte across the section boundary changes the hash.
	c := callerCallee()
	c.CodeSections[0] = append(c.CodeSections[0], byte(ADD))
	c.CodeSections[1] = c.CodeSections[1][1:]
	require.NotEqual(t, a.Hash(), c.Hash())
}
