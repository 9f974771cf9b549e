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
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/bnb-chain/eofverify/cmd/utils"
	"github.com/bnb-chain/eofverify/core/vm"
	"github.com/bnb-chain/eofverify/log"
	"github.com/holiman/uint256"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

var sectionFlag = &cli.IntFlag{
	Name:  "section",
	Usage: "Code section to disassemble",
}

var disasmCommand = &cli.Command{
	Action:    disasm,
	Name:      "disasm",
	Usage:     "Disassemble a code section with its proven stack heights",
	ArgsUsage: "<manifest.yaml>",
	Flags:     append([]cli.Flag{sectionFlag}, utils.VerifierFlags...),
	Description: `
The disasm command lists the instructions of one code section together with
the stack height proven before each of them. Unreachable instructions show no
height. If the container does not validate, the listing carries no heights.`,
}

func disasm(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("required arguments: %v", ctx.Command.ArgsUsage)
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	m, err := loadManifest(ctx.Args().First())
	if err != nil {
		return err
	}
	c, err := m.container()
	if err != nil {
		return err
	}
	section := ctx.Int(sectionFlag.Name)
	if section < 0 || section >= len(c.CodeSections) {
		return fmt.Errorf("section %d out of range, container has %d", section, len(c.CodeSections))
	}

	jt := vm.NewEOFInstructionSet()
	var analysis *vm.StackAnalysis
	if _, err := c.ValidateCode(ctx.Context, &jt, &cfg.Verifier); err != nil {
		log.Warn("Container does not validate", "name", m.Name, "err", err)
	} else {
		analysis, err = vm.AnalyzeStack(c.CodeSections[section], section, c.Types, &jt, cfg.Verifier.StackLimit)
		if err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetHeader([]string{"Offset", "Opcode", "Immediate", "Height"})
	table.AppendBulk(disassemble(c.CodeSections[section], &jt, analysis))
	table.Render()
	return nil
}

// disassemble returns one row per instruction of code. Heights come from
// analysis when it is non-nil.
func disassemble(code []byte, jt *vm.InstructionSet, analysis *vm.StackAnalysis) [][]string {
	var rows [][]string
	for pos := 0; pos < len(code); {
		op := vm.OpCode(code[pos])
		end := min(pos+jt.InstructionWidth(code, pos), len(code))
		height := ""
		if analysis != nil && analysis.Reached(pos) {
			height = strconv.Itoa(analysis.Heights[pos])
		}
		rows = append(rows, []string{fmt.Sprintf("%#04x", pos), op.String(), immediate(op, code[pos+1:end]), height})
		pos = end
	}
	return rows
}

// immediate renders the immediate operand of op.
func immediate(op vm.OpCode, imm []byte) string {
	if len(imm) == 0 {
		return ""
	}
	switch {
	case op.IsPush():
		return new(uint256.Int).SetBytes(imm).Hex()
	case (op == vm.RJUMP || op == vm.RJUMPI) && len(imm) == 2:
		return fmt.Sprintf("%+d", int16(binary.BigEndian.Uint16(imm)))
	case op == vm.RJUMPV:
		var offsets []string
		for i := 1; i+1 < len(imm); i += 2 {
			offsets = append(offsets, fmt.Sprintf("%+d", int16(binary.BigEndian.Uint16(imm[i:]))))
		}
		return "[" + strings.Join(offsets, " ") + "]"
	case (op == vm.CALLF || op == vm.JUMPF) && len(imm) == 2:
		return fmt.Sprintf("section %d", binary.BigEndian.Uint16(imm))
	}
	return "0x" + hex.EncodeToString(imm)
}
