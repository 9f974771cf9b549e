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
	"encoding/binary"

	"github.com/bnb-chain/eofverify/common"
	"github.com/bnb-chain/eofverify/crypto"
	"github.com/bnb-chain/eofverify/params"
)

// FunctionMetadata is an EOF type section entry: the declared shape of one
// code section.
type FunctionMetadata struct {
	Input          uint8
	Output         uint8
	MaxStackHeight uint16
}

// isNonReturning reports whether the section never returns to its caller.
func (meta *FunctionMetadata) isNonReturning() bool {
	return meta.Output == params.NonReturningFunction
}

// Container is the part of an EOF container that stack validation needs: the
// type section and the code sections it describes, index for index.
type Container struct {
	Types        []*FunctionMetadata
	CodeSections [][]byte
}

// Hash returns the keccak256 hash of a canonical encoding of the container.
func (c *Container) Hash() common.Hash {
	buf := make([]byte, 0, 4+4*len(c.Types)+c.codeSize()+4*len(c.CodeSections))
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(c.Types)))
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(c.CodeSections)))
	for _, meta := range c.Types {
		buf = append(buf, meta.Input, meta.Output)
		buf = binary.BigEndian.AppendUint16(buf, meta.MaxStackHeight)
	}
	for _, code := range c.CodeSections {
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(code)))
		buf = append(buf, code...)
	}
	return crypto.Keccak256Hash(buf)
}

func (c *Container) codeSize() (size int) {
	for _, code := range c.CodeSections {
		size += len(code)
	}
	return size
}

// validateTypes checks the type section against the code sections it
// describes.
func (c *Container) validateTypes() error {
	if len(c.CodeSections) == 0 || len(c.CodeSections) > params.MaxCodeSections {
		return errorf(ErrInvalidSectionCount, "have %d, want 1..%d", len(c.CodeSections), params.MaxCodeSections)
	}
	if len(c.Types) != len(c.CodeSections) {
		return errorf(ErrInvalidSectionCount, "have %d types for %d code sections", len(c.Types), len(c.CodeSections))
	}
	for i, meta := range c.Types {
		if meta == nil {
			return errorf(ErrInvalidTypeContent, "missing type for code section %d", i)
		}
		if meta.Input > params.MaxInputItems {
			return errorf(ErrInvalidTypeContent, "code section %d: too many inputs %d", i, meta.Input)
		}
		if meta.Output > params.MaxOutputItems && !meta.isNonReturning() {
			return errorf(ErrInvalidTypeContent, "code section %d: too many outputs %d", i, meta.Output)
		}
		if int(meta.MaxStackHeight) > int(params.StackLimit) {
			return errorf(ErrInvalidTypeContent, "code section %d: max stack height %d above limit", i, meta.MaxStackHeight)
		}
	}
	return nil
}

func parseUint16(b []byte) int {
	return int(binary.BigEndian.Uint16(b))
}

func parseInt16(b []byte) int {
	return int(int16(b[1]) | int16(b[0])<<8)
}
