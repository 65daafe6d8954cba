// Copyright 2026 The snapper Authors
// This file is part of the snapper library.
//
// The snapper library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The snapper library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the snapper library. If not, see <http://www.gnu.org/licenses/>.

package compiler

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
)

// Artifact is the normalized output for one contract.
// Artifact 是单个合约经过规整后的编译产物。
type Artifact struct {
	Name              string
	ABI               json.RawMessage
	Bytecode          []byte
	DeployedBytecode  []byte
	Opcodes           string
	SourceMap         string
	GasEstimates      *GasEstimates // nil if the compiler reported none
	MethodIdentifiers map[string]string
}

// ParseResult is a successfully parsed response for one file.
// ParseResult 是单个文件成功解析后的结果。
type ParseResult struct {
	Artifacts   []*Artifact  // sorted by contract name
	Diagnostics []Diagnostic // warnings and infos
}

// ParseOutput decodes a compiler response and extracts the artifacts of the
// contracts declared in filename. Any error-severity diagnostic fails the
// whole response with a *CompileError and yields no artifacts.
// ParseOutput 解析编译器响应。只要存在 error 级别的诊断，整个响应即不可信，不产生任何产物。
func ParseOutput(raw []byte, filename string) (*ParseResult, error) {
	var out Output
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v (output starts with %q)", ErrParse, err, head(raw, 64))
	}
	if log.Root().Enabled(context.Background(), log.LevelTrace) {
		log.Trace("Decoded compiler output", "file", filename, "dump", spew.Sdump(out.Errors, out.Contracts[filename]))
	}
	for i, d := range out.Errors {
		if d.Severity == SeverityUnknown {
			return nil, fmt.Errorf("%w: diagnostic %d (%s) has no severity", ErrParse, i, d.Message)
		}
	}
	for _, d := range out.Errors {
		if d.Severity == SeverityError {
			return nil, &CompileError{File: filename, Diagnostics: out.Errors}
		}
	}
	res := &ParseResult{Diagnostics: out.Errors}

	contracts, ok := out.Contracts[filename]
	if !ok {
		return res, nil
	}
	names := make([]string, 0, len(contracts))
	for name := range contracts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		a, err := newArtifact(name, contracts[name])
		if err != nil {
			return nil, fmt.Errorf("%s:%s: %w", filename, name, err)
		}
		res.Artifacts = append(res.Artifacts, a)
	}
	return res, nil
}

func newArtifact(name string, c Contract) (*Artifact, error) {
	if len(c.ABI) == 0 || string(c.ABI) == "null" {
		return nil, fmt.Errorf("%w: missing abi", ErrParse)
	}
	parsed, err := abi.JSON(bytes.NewReader(c.ABI))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid abi: %v", ErrParse, err)
	}
	if c.EVM == nil {
		return nil, fmt.Errorf("%w: missing evm output", ErrParse)
	}
	code, err := decodeBytecode("evm.bytecode", c.EVM.Bytecode)
	if err != nil {
		return nil, err
	}
	deployed, err := decodeBytecode("evm.deployedBytecode", c.EVM.DeployedBytecode)
	if err != nil {
		return nil, err
	}
	if c.EVM.Bytecode.Opcodes == nil {
		return nil, fmt.Errorf("%w: missing evm.bytecode.opcodes", ErrParse)
	}
	if c.EVM.Bytecode.SourceMap == nil {
		return nil, fmt.Errorf("%w: missing evm.bytecode.sourceMap", ErrParse)
	}
	for _, m := range parsed.Methods {
		id, ok := c.EVM.MethodIdentifiers[m.Sig]
		if !ok {
			continue
		}
		if want := hex.EncodeToString(m.ID); id != want {
			log.Warn("Selector mismatch between abi and method identifiers", "contract", name, "method", m.Sig, "abi", want, "compiler", id)
		}
	}
	return &Artifact{
		Name:              name,
		ABI:               c.ABI,
		Bytecode:          code,
		DeployedBytecode:  deployed,
		Opcodes:           strings.TrimSpace(*c.EVM.Bytecode.Opcodes),
		SourceMap:         strings.TrimSpace(*c.EVM.Bytecode.SourceMap),
		GasEstimates:      c.EVM.GasEstimates,
		MethodIdentifiers: c.EVM.MethodIdentifiers,
	}, nil
}

// decodeBytecode turns the hex object into bytes. Abstract contracts and
// interfaces have an empty object, which is valid.
func decodeBytecode(field string, b *Bytecode) ([]byte, error) {
	if b == nil || b.Object == nil {
		return nil, fmt.Errorf("%w: missing %s.object", ErrParse, field)
	}
	obj := strings.TrimPrefix(strings.TrimSpace(*b.Object), "0x")
	if strings.Contains(obj, "__") {
		return nil, fmt.Errorf("%w: %s has unlinked libraries: %s", ErrParse, field, strings.Join(unlinked(b), ", "))
	}
	code, err := hexutil.Decode("0x" + obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %s.object: %v", ErrParse, field, err)
	}
	return code, nil
}

func unlinked(b *Bytecode) []string {
	var libs []string
	for file, refs := range b.LinkReferences {
		for lib := range refs {
			libs = append(libs, file+":"+lib)
		}
	}
	if len(libs) == 0 {
		return []string{"unknown"}
	}
	sort.Strings(libs)
	return libs
}

func head(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
