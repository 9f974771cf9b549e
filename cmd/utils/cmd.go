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

package utils

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"

	"github.com/bnb-chain/eofverify/core/vm"
	"github.com/bnb-chain/eofverify/log"
	"github.com/bnb-chain/eofverify/metrics"
	"github.com/fatih/color"
	"github.com/fatih/structs"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Fatalf formats a message to standard error and exits the program.
// The message is also printed to standard output if standard error
// is redirected to a different file.
func Fatalf(format string, args ...interface{}) {
	w := io.MultiWriter(os.Stdout, os.Stderr)
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		}
	}
	fmt.Fprintf(w, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}

// SetupLogging installs the root logger according to the logging flags.
func SetupLogging(ctx *cli.Context) {
	var (
		output   = io.Writer(os.Stderr)
		usecolor = (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		logFile  = ctx.String(LogFileFlag.Name)
	)
	if ctx.Bool(NoColorFlag.Name) {
		usecolor = false
		color.NoColor = true
	}
	if usecolor {
		output = colorable.NewColorableStderr()
	}
	if logFile != "" {
		// Escape sequences would end up in the file.
		usecolor = false
		output = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename: logFile,
			MaxSize:  ctx.Int(LogMaxSizeMBsFlag.Name),
			Compress: ctx.Bool(LogCompressFlag.Name),
		})
	}
	level := log.FromLegacyLevel(ctx.Int(VerbosityFlag.Name))
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(output, level, usecolor)))
	if logFile != "" {
		log.Info("Logging to file", "location", logFile)
	}
}

// MarkConfig publishes the active verifier settings as the eof/config label.
func MarkConfig(cfg *vm.Config) {
	info := structs.Map(cfg)
	info["go-version"] = runtime.Version()
	metrics.GetOrRegisterLabel("eof/config").Mark(info)
}

// WriteMetrics dumps every registered metric and label to w.
func WriteMetrics(w io.Writer) {
	gometrics.WriteOnce(gometrics.DefaultRegistry, w)
	metrics.EachLabel(func(name string, l *metrics.Label) {
		value := l.Snapshot().Value()
		keys := make([]string, 0, len(value))
		for key := range value {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		fmt.Fprintf(w, "label %s\n", name)
		for _, key := range keys {
			fmt.Fprintf(w, "  %s: %v\n", key, value[key])
		}
	})
}
