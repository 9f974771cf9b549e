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
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnb-chain/eofverify/common/gopool"
	"github.com/bnb-chain/eofverify/log"
	"github.com/pkg/errors"
)

// sectionLogFilter thins out per-section trace logs of large containers.
var sectionLogFilter = &log.EveryN{N: 64}

// ValidateCode validates every code section of the container and returns the
// maximum stack height of each. Sections are validated concurrently; the
// first failure stops sections that have not started yet and rejects the
// whole container. When several sections fail, the error of the lowest
// failing section that ran is returned.
func (c *Container) ValidateCode(ctx context.Context, jt *InstructionSet, cfg *Config) ([]int, error) {
	start := time.Now()
	heights, err := c.validateCode(ctx, jt, cfg)
	validateTimer.UpdateSince(start)
	if err != nil {
		validateRejectedCounter.Inc(1)
		log.Debug("Rejected EOF container", "sections", len(c.CodeSections), "err", err)
		return nil, err
	}
	validateAcceptedCounter.Inc(1)
	log.Debug("Validated EOF container", "sections", len(c.CodeSections), "elapsed", time.Since(start))
	return heights, nil
}

func (c *Container) validateCode(ctx context.Context, jt *InstructionSet, cfg *Config) ([]int, error) {
	if err := c.validateTypes(); err != nil {
		return nil, err
	}
	heights := make([]int, len(c.CodeSections))
	if len(c.CodeSections) == 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		height, err := c.validateSection(0, jt, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "code section %d", 0)
		}
		heights[0] = height
		return heights, nil
	}

	log.DebugIf(len(c.CodeSections) >= gopool.Cap(), "Code sections exceed validation pool", "sections", len(c.CodeSections), "workers", gopool.Cap())

	var (
		wg     sync.WaitGroup
		failed atomic.Bool
		errs   = make([]error, len(c.CodeSections))
	)
	for i := range c.CodeSections {
		wg.Add(1)
		index := i
		err := gopool.Submit(func() {
			defer wg.Done()
			if failed.Load() || ctx.Err() != nil {
				return
			}
			height, err := c.validateSection(index, jt, cfg)
			if err != nil {
				errs[index] = err
				failed.Store(true)
				return
			}
			heights[index] = height
		})
		if err != nil {
			wg.Done()
			failed.Store(true)
			wg.Wait()
			return nil, errors.Wrap(err, "submit section validation")
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "code section %d", i)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return heights, nil
}

// validateSection runs instruction and stack validation of one section.
func (c *Container) validateSection(section int, jt *InstructionSet, cfg *Config) (int, error) {
	code := c.CodeSections[section]
	if err := validateCode(code, section, c.Types, jt); err != nil {
		return 0, err
	}
	height, err := ValidateStack(code, section, c.Types, jt, cfg.stackLimit())
	if err != nil {
		return 0, err
	}
	if cfg != nil && cfg.StrictMaxStackHeight {
		if declared := int(c.Types[section].MaxStackHeight); declared != height {
			return 0, errorf(ErrInvalidMaxStackHeight, "have %d, want %d", declared, height)
		}
	}
	log.TraceBy(sectionLogFilter, "Validated code section", "section", section, "size", len(code), "maxStack", height)
	return height, nil
}
