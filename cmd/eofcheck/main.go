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

// eofcheck is the command-line front end of the EOF stack validator.
package main

import (
	"os"

	"github.com/bnb-chain/eofverify/cmd/utils"
	"github.com/urfave/cli/v2"

	// Automatically set GOMAXPROCS to match Linux container CPU quota.
	_ "go.uber.org/automaxprocs"
)

var app = &cli.App{
	Name:                 "eofcheck",
	Usage:                "verify the stack discipline of EOF code sections",
	Copyright:            "Copyright 2024 The go-ethereum Authors",
	EnableBashCompletion: true,
}

func init() {
	app.Flags = utils.LoggingFlags
	app.Commands = []*cli.Command{
		validateCommand,
		disasmCommand,
		dumpConfigCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		utils.SetupLogging(ctx)
		return nil
	}
	app.After = func(ctx *cli.Context) error {
		if ctx.Bool(utils.MetricsFlag.Name) {
			utils.WriteMetrics(os.Stderr)
		}
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		utils.Fatalf("%v", err)
	}
}
