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
	"encoding/binary"

	"github.com/bnb-chain/eofverify/common"
	"github.com/bnb-chain/eofverify/crypto"
	"github.com/bnb-chain/eofverify/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// cacheLogFilter thins out cache hit logs.
var cacheLogFilter = &log.EveryN{N: 128}

// ValidationCache remembers containers that passed validation so that code
// deployed repeatedly is only analysed once. Rejections are never cached.
// A cache is bound to the instruction set it was created with.
type ValidationCache struct {
	jt    *InstructionSet
	cache *lru.Cache[common.Hash, []int]
}

// NewValidationCache creates a cache holding up to size containers accepted
// under the given instruction set.
func NewValidationCache(size int, jt *InstructionSet) (*ValidationCache, error) {
	if jt == nil {
		return nil, errors.New("validation cache needs an instruction set")
	}
	cache, err := lru.New[common.Hash, []int](size)
	if err != nil {
		return nil, err
	}
	return &ValidationCache{jt: jt, cache: cache}, nil
}

// Validate is like Container.ValidateCode, but answers from the cache when the
// same container was accepted before under the same limits.
func (vc *ValidationCache) Validate(ctx context.Context, c *Container, cfg *Config) ([]int, error) {
	// Malformed type sections have no stable key.
	if c.validateTypes() != nil {
		return c.ValidateCode(ctx, vc.jt, cfg)
	}
	key := cacheKey(c, cfg)
	if heights, ok := vc.cache.Get(key); ok {
		cacheHitCounter.Inc(1)
		log.DebugBy(cacheLogFilter, "EOF validation cache hit", "key", key)
		return append([]int(nil), heights...), nil
	}
	cacheMissCounter.Inc(1)

	heights, err := c.ValidateCode(ctx, vc.jt, cfg)
	if err != nil {
		return nil, err
	}
	vc.cache.Add(key, append([]int(nil), heights...))
	return heights, nil
}

// Len returns the number of cached containers.
func (vc *ValidationCache) Len() int {
	return vc.cache.Len()
}

// cacheKey binds the container hash to the settings that can change the
// validation outcome.
func cacheKey(c *Container, cfg *Config) common.Hash {
	var settings [9]byte
	binary.BigEndian.PutUint64(settings[:8], uint64(cfg.stackLimit()))
	if cfg != nil && cfg.StrictMaxStackHeight {
		settings[8] = 1
	}
	hash := c.Hash()
	return crypto.Keccak256Hash(hash.Bytes(), settings[:])
}
