// Copyright 2024 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/bnb-chain/eofverify/cmd/utils"
	"github.com/bnb-chain/eofverify/common/gopool"
	"github.com/bnb-chain/eofverify/core/vm"
	"github.com/bnb-chain/eofverify/log"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var validateCommand = &cli.Command{
	Action:    validate,
	Name:      "validate",
	Usage:     "Validate the stack discipline of EOF containers",
	ArgsUsage: "<manifest.yaml> [<manifest.yaml> ...]",
	Flags:     utils.VerifierFlags,
	Description: `
The validate command checks every code section of the given container
manifests. It prints one row per container and exits with an error if any
container is rejected.`,
}

type validationResult struct {
	name     string
	sections int
	heights  []int
	err      error
	elapsed  time.Duration
}

// verifier validates containers under one configuration, through the cache
// when one is configured.
type verifier struct {
	jt    vm.InstructionSet
	cfg   *vm.Config
	cache *vm.ValidationCache
}

func newVerifier(cfg *vm.Config) (*verifier, error) {
	v := &verifier{jt: vm.NewEOFInstructionSet(), cfg: cfg}
	if cfg.CacheSize > 0 {
		cache, err := vm.NewValidationCache(cfg.CacheSize, &v.jt)
		if err != nil {
			return nil, err
		}
		v.cache = cache
	}
	return v, nil
}

func (v *verifier) validate(ctx context.Context, c *vm.Container) ([]int, error) {
	if v.cache != nil {
		return v.cache.Validate(ctx, c, v.cfg)
	}
	return c.ValidateCode(ctx, &v.jt, v.cfg)
}

func validate(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("required arguments: %v", ctx.Command.ArgsUsage)
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Verifier.Workers > 0 {
		gopool.Tune(cfg.Verifier.Workers)
	}
	utils.MarkConfig(&cfg.Verifier)

	v, err := newVerifier(&cfg.Verifier)
	if err != nil {
		return err
	}
	var (
		paths   = ctx.Args().Slice()
		results = make([]validationResult, len(paths))
	)
	g, gctx := errgroup.WithContext(ctx.Context)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			m, err := loadManifest(path)
			if err != nil {
				return err
			}
			c, err := m.container()
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			start := time.Now()
			heights, err := v.validate(gctx, c)
			results[i] = validationResult{
				name:     m.Name,
				sections: len(c.CodeSections),
				heights:  heights,
				err:      err,
				elapsed:  time.Since(start),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rejected := report(ctx, results)
	log.Info("Validated containers", "total", len(results), "rejected", rejected)
	if rejected > 0 {
		return fmt.Errorf("%d of %d containers rejected", rejected, len(results))
	}
	return nil
}

// report renders the results as a table followed by the rejection reasons.
// It returns the number of rejected containers.
func report(ctx *cli.Context, results []validationResult) int {
	var (
		rejected int
		out      = ctx.App.Writer
		table    = tablewriter.NewWriter(out)
	)
	table.SetHeader([]string{"Container", "Sections", "Max stack", "Elapsed", "Status"})
	for _, res := range results {
		status, maxHeight := color.GreenString("OK"), "-"
		if res.err != nil {
			status = color.RedString("REJECTED")
			rejected++
		} else {
			maxHeight = strconv.Itoa(maxOf(res.heights))
		}
		table.Append([]string{res.name, strconv.Itoa(res.sections), maxHeight, res.elapsed.String(), status})
	}
	table.Render()

	for _, res := range results {
		if res.err != nil {
			fmt.Fprintf(out, "%s: %v\n", res.name, res.err)
		}
	}
	return rejected
}

func maxOf(heights []int) int {
	var m int
	for _, h := range heights {
		m = max(m, h)
	}
	return m
}
