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

// Package utils contains internal helper functions for eofcheck commands.
package utils

import (
	"github.com/bnb-chain/eofverify/core/vm"
	"github.com/urfave/cli/v2"
)

const (
	VerifierCategory = "VERIFIER"
	LoggingCategory  = "LOGGING AND DEBUGGING"
)

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.
//
// The flags are defined here so their names and help texts
// are the same for all commands.

var (
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: VerifierCategory,
	}
	StackLimitFlag = &cli.IntFlag{
		Name:     "stacklimit",
		Usage:    "Maximum stack height any code section may reach",
		Value:    vm.DefaultConfig.StackLimit,
		Category: VerifierCategory,
	}
	StrictFlag = &cli.BoolFlag{
		Name:     "strict",
		Usage:    "Reject sections whose declared max stack height differs from the computed one",
		Value:    vm.DefaultConfig.StrictMaxStackHeight,
		Category: VerifierCategory,
	}
	CacheFlag = &cli.IntFlag{
		Name:     "cache",
		Usage:    "Number of accepted containers to remember (0 = no cache)",
		Value:    vm.DefaultConfig.CacheSize,
		Category: VerifierCategory,
	}
	WorkersFlag = &cli.IntFlag{
		Name:     "workers",
		Usage:    "Capacity of the code section validation pool (0 = pool default)",
		Category: VerifierCategory,
	}

	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: LoggingCategory,
	}
	NoColorFlag = &cli.BoolFlag{
		Name:     "nocolor",
		Usage:    "Disable colored terminal output",
		Category: LoggingCategory,
	}
	LogFileFlag = &cli.StringFlag{
		Name:     "log.file",
		Usage:    "Write logs to a file as well, rotating it by size",
		Category: LoggingCategory,
	}
	LogMaxSizeMBsFlag = &cli.IntFlag{
		Name:     "log.maxsize",
		Usage:    "Maximum size in megabytes of the log file before it gets rotated",
		Value:    100,
		Category: LoggingCategory,
	}
	LogCompressFlag = &cli.BoolFlag{
		Name:     "log.compress",
		Usage:    "Compress rotated log files",
		Category: LoggingCategory,
	}
	MetricsFlag = &cli.BoolFlag{
		Name:     "metrics",
		Usage:    "Print verifier metrics to stderr on exit",
		Category: LoggingCategory,
	}
)

var (
	// VerifierFlags configure stack validation.
	VerifierFlags = []cli.Flag{
		ConfigFileFlag,
		StackLimitFlag,
		StrictFlag,
		CacheFlag,
		WorkersFlag,
	}
	// LoggingFlags configure terminal output.
	LoggingFlags = []cli.Flag{
		VerbosityFlag,
		NoColorFlag,
		LogFileFlag,
		LogMaxSizeMBsFlag,
		LogCompressFlag,
		MetricsFlag,
	}
)

// SetVerifierConfig applies verifier-related command line flags to the config.
// Flags left at their defaults do not override values loaded from a file.
func SetVerifierConfig(ctx *cli.Context, cfg *vm.Config) {
	if ctx.IsSet(StackLimitFlag.Name) {
		cfg.StackLimit = ctx.Int(StackLimitFlag.Name)
	}
	if ctx.IsSet(StrictFlag.Name) {
		cfg.StrictMaxStackHeight = ctx.Bool(StrictFlag.Name)
	}
	if ctx.IsSet(CacheFlag.Name) {
		cfg.CacheSize = ctx.Int(CacheFlag.Name)
	}
	if ctx.IsSet(WorkersFlag.Name) {
		cfg.Workers = ctx.Int(WorkersFlag.Name)
	}
}
