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
	"os"
	"path/filepath"
	"testing"

	"github.com/bnb-chain/eofverify/core/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadManifest(t *testing.T) {
	m, err := loadManifest("testdata/caller_callee.yaml")
	require.NoError(t, err)
	assert.Equal(t, "caller-callee", m.Name)

	c, err := m.container()
	require.NoError(t, err)
	assert.Equal(t, []*vm.FunctionMetadata{
		{Input: 0, Output: 0, MaxStackHeight: 2},
		{Input: 2, Output: 1, MaxStackHeight: 2},
	}, c.Types)
	assert.Equal(t, [][]byte{
		{0x5f, 0x5f, 0xe3, 0x00, 0x01, 0x50, 0x00},
		{0x01, 0xe4},
	}, c.CodeSections)
}

func TestLoadManifestMultilineCode(t *testing.T) {
	m, err := loadManifest("testdata/branches.yaml")
	require.NoError(t, err)
	c, err := m.container()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x80), c.Types[0].Output)
	assert.Len(t, c.CodeSections[0], 19)
}

func TestLoadManifestDefaultsName(t *testing.T) {
	path := writeManifest(t, "sections:\n  - code: \"00\"\n")
	m, err := loadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, path, m.Name)
}

func TestLoadManifestErrors(t *testing.T) {
	for _, tt := range []struct {
		name    string
		content string
		errText string
	}{
		{"unknown field", "sections:\n  - code: \"00\"\n    stack: 1\n", "field stack not found"},
		{"inputs overflow", "sections:\n  - inputs: 300\n    code: \"00\"\n", "cannot unmarshal"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadManifest(writeManifest(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
	_, err := loadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestManifestContainerErrors(t *testing.T) {
	for _, tt := range []struct {
		name    string
		section manifestSection
		errText string
	}{
		{"odd hex", manifestSection{Code: "0x5f0"}, "odd length"},
		{"bad hex", manifestSection{Code: "zz"}, "decode hex"},
		{"non-returning outputs", manifestSection{NonReturning: true, Outputs: 1, Code: "00"}, "non-returning section declares 1 outputs"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			m := &manifest{Sections: []manifestSection{tt.section}}
			_, err := m.container()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestDecodeHexString(t *testing.T) {
	data, err := decodeHexString(" 0x5f 5f\n\te4\r\n")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x5f, 0x5f, 0xe4}, data)

	data, err = decodeHexString("")
	require.NoError(t, err)
	assert.Empty(t, data)
}
