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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnb-chain/eofverify/log"

	"github.com/bnb-chain/eofverify/core/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// runWithConfig parses args against the verifier flags and applies them on
// top of base.
func runWithConfig(t *testing.T, base vm.Config, args ...string) vm.Config {
	t.Helper()
	cfg := base
	app := &cli.App{
		Name:  "test",
		Flags: VerifierFlags,
		Action: func(ctx *cli.Context) error {
			SetVerifierConfig(ctx, &cfg)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return cfg
}

func Test_SetVerifierConfig(t *testing.T) {
	tests := []struct {
		name string
		base vm.Config
		args []string
		want vm.Config
	}{
		{
			"defaults untouched",
			vm.DefaultConfig,
			nil,
			vm.DefaultConfig,
		},
		{
			"file values survive unset flags",
			vm.Config{StackLimit: 16, CacheSize: 3},
			nil,
			vm.Config{StackLimit: 16, CacheSize: 3},
		},
		{
			"all flags",
			vm.DefaultConfig,
			[]string{"--stacklimit", "8", "--strict=false", "--cache", "0", "--workers", "4"},
			vm.Config{StackLimit: 8, StrictMaxStackHeight: false, CacheSize: 0, Workers: 4},
		},
		{
			"strict enabled over file",
			vm.Config{StackLimit: 1024},
			[]string{"--strict"},
			vm.Config{StackLimit: 1024, StrictMaxStackHeight: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runWithConfig(t, tt.base, tt.args...))
		})
	}
}

func TestWriteMetrics(t *testing.T) {
	MarkConfig(&vm.Config{StackLimit: 7, Workers: 2})

	var buf bytes.Buffer
	WriteMetrics(&buf)
	out := buf.String()
	assert.Contains(t, out, "label eof/config")
	assert.Contains(t, out, "  StackLimit: 7")
	assert.Contains(t, out, "  Workers: 2")
	assert.Contains(t, out, "  go-version: go")
}

func TestSetupLoggingFile(t *testing.T) {
	defer log.SetDefault(log.Root())

	path := filepath.Join(t.TempDir(), "eofcheck.log")
	app := &cli.App{
		Name:  "test",
		Flags: LoggingFlags,
		Action: func(ctx *cli.Context) error {
			SetupLogging(ctx)
			log.Debug("Hidden at info verbosity")
			log.Warn("Section rejected", "section", 3)
			return nil
		},
	}
	require.NoError(t, app.Run([]string{"test", "--log.file", path, "--verbosity", "3"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Logging to file")
	assert.Contains(t, string(data), "Section rejected")
	assert.Contains(t, string(data), "section=3")
	assert.NotContains(t, string(data), "Hidden")
	assert.NotContains(t, string(data), "\x1b[", "no color escapes in files")
}
