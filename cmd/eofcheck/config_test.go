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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnb-chain/eofverify/core/vm"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runApp runs eofcheck with args and returns what it wrote to its writer.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	app.Writer = &out
	defer func() { app.Writer = os.Stdout }()

	err := app.Run(append([]string{"eofcheck", "--verbosity", "0"}, args...))
	return out.String(), err
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[Verifier]\nStackLimit = 16\nStrictMaxStackHeight = false\nCacheSize = 8\n"), 0644))

	cfg := eofcheckConfig{Verifier: vm.DefaultConfig}
	require.NoError(t, loadConfig(path, &cfg))
	assert.Equal(t, vm.Config{StackLimit: 16, StrictMaxStackHeight: false, CacheSize: 8}, cfg.Verifier)
}

func TestLoadConfigUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[Verifier]\nStackDepth = 16\n"), 0644))

	cfg := eofcheckConfig{Verifier: vm.DefaultConfig}
	err := loadConfig(path, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "field 'StackDepth' is not defined in vm.Config")
}

func TestDumpConfigRoundTrip(t *testing.T) {
	out, err := runApp(t, "dumpconfig", "--stacklimit", "32", "--strict=false")
	require.NoError(t, err)
	assert.Contains(t, out, "[Verifier]")
	assert.Contains(t, out, "StackLimit = 32")
	assert.NotContains(t, out, "Workers", "zero workers are omitted")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(out), 0644))
	cfg := eofcheckConfig{}
	require.NoError(t, loadConfig(path, &cfg))
	assert.Equal(t, vm.Config{StackLimit: 32, StrictMaxStackHeight: false, CacheSize: vm.DefaultConfig.CacheSize}, cfg.Verifier)
}

func TestDumpConfigToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.toml")
	_, err := runApp(t, "dumpconfig", "--workers", "3", path)
	require.NoError(t, err)

	cfg := eofcheckConfig{}
	require.NoError(t, loadConfig(path, &cfg))
	assert.Equal(t, 3, cfg.Verifier.Workers)
}

func TestConfigFlagOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[Verifier]\nStackLimit = 16\nCacheSize = 8\n"), 0644))

	out, err := runApp(t, "dumpconfig", "--config", path, "--cache", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "StackLimit = 16")
	assert.Contains(t, out, "CacheSize = 2")
}

func TestInvalidStackLimit(t *testing.T) {
	_, err := runApp(t, "dumpconfig", "--stacklimit", "0")
	require.ErrorContains(t, err, "invalid stack limit 0")
}
