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

import "github.com/bnb-chain/eofverify/params"

// Config are the configuration options for EOF code validation.
type Config struct {
	StackLimit           int  // Maximum stack height any code section may reach
	StrictMaxStackHeight bool // Reject sections whose declared max stack height differs from the computed one
	CacheSize            int  // Number of accepted containers remembered by a ValidationCache, 0 disables it
	Workers              int  `toml:",omitempty"` // Capacity of the section validation pool, 0 keeps the pool default
}

// DefaultConfig contains the validation settings of EOF deployment.
var DefaultConfig = Config{
	StackLimit:           int(params.StackLimit),
	StrictMaxStackHeight: true,
	CacheSize:            1024,
}

// stackLimit returns the configured limit, falling back to the protocol one.
func (cfg *Config) stackLimit() int {
	if cfg == nil || cfg.StackLimit <= 0 {
		return int(params.StackLimit)
	}
	return cfg.StackLimit
}
