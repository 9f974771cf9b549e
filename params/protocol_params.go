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

package params

const (
	StackLimit uint64 = 1024 // Maximum size of VM stack allowed.

	MaxCodeSections      = 1024 // Maximum number of code sections an EOF container may carry.
	MaxInputItems        = 127  // Maximum number of stack items a code section may consume.
	MaxOutputItems       = 127  // Maximum number of stack items a code section may return.
	NonReturningFunction = 0x80 // Output marker of a code section that never returns to its caller.
)
