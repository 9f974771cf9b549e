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
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/bnb-chain/eofverify/core/vm"
	"github.com/bnb-chain/eofverify/params"
	"gopkg.in/yaml.v3"
)

// manifest is the on-disk description of one EOF container:
//
//	name: caller-callee
//	sections:
//	  - inputs: 0
//	    outputs: 0
//	    max_stack_height: 2
//	    code: 0x5f5fe300015000
//	  - inputs: 2
//	    outputs: 1
//	    max_stack_height: 2
//	    code: 01e4
type manifest struct {
	Name     string            `yaml:"name"`
	Sections []manifestSection `yaml:"sections"`
}

type manifestSection struct {
	Inputs         uint8  `yaml:"inputs"`
	Outputs        uint8  `yaml:"outputs"`
	NonReturning   bool   `yaml:"non_returning"`
	MaxStackHeight uint16 `yaml:"max_stack_height"`
	Code           string `yaml:"code"`
}

func loadManifest(path string) (*manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m manifest
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = path
	}
	return &m, nil
}

// container decodes the manifest into the form the validator consumes.
func (m *manifest) container() (*vm.Container, error) {
	c := &vm.Container{
		Types:        make([]*vm.FunctionMetadata, len(m.Sections)),
		CodeSections: make([][]byte, len(m.Sections)),
	}
	for i, section := range m.Sections {
		meta := &vm.FunctionMetadata{
			Input:          section.Inputs,
			Output:         section.Outputs,
			MaxStackHeight: section.MaxStackHeight,
		}
		if section.NonReturning {
			if section.Outputs != 0 {
				return nil, fmt.Errorf("section %d: non-returning section declares %d outputs", i, section.Outputs)
			}
			meta.Output = params.NonReturningFunction
		}
		code, err := decodeHexString(section.Code)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		c.Types[i], c.CodeSections[i] = meta, code
	}
	return c, nil
}

func decodeHexString(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "0x")
	s = strings.Join(strings.Fields(s), "")
	if len(s)%2 == 1 { // odd length hex
		return nil, fmt.Errorf("hex string has odd length: %d", len(s))
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return data, nil
}
