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
	"encoding/json"
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/snapper-build/snapper/config"
)

// Input is a standard-json compilation request.
// Input 是标准 JSON 编译请求。
type Input struct {
	Language Language          `json:"language"`
	Sources  map[string]Source `json:"sources"`
	Settings Settings          `json:"settings"`
}

// Language is the source language of a request.
type Language uint8

const (
	Solidity Language = iota
	Yul
)

func (l Language) String() string {
	switch l {
	case Solidity:
		return "Solidity"
	case Yul:
		return "Yul"
	default:
		return fmt.Sprintf("Language(%d)", uint8(l))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Language) MarshalText() ([]byte, error) {
	if l > Yul {
		return nil, fmt.Errorf("invalid language %d", uint8(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Language) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Solidity":
		*l = Solidity
	case "Yul":
		*l = Yul
	default:
		return fmt.Errorf("unknown language %q", text)
	}
	return nil
}

// Source locates one input file. Either URLs or Content is set.
// Source 通过 URLs 或 Content 定位一个输入文件，二者择一。
type Source struct {
	Keccak256 string   `json:"keccak256,omitempty"`
	URLs      []string `json:"urls,omitempty"`
	Content   *string  `json:"content,omitempty"`
}

// Settings is the settings block of a request.
// Settings 对应请求中的 settings 块。
type Settings struct {
	StopAfter       string                       `json:"stopAfter,omitempty"`
	Remappings      []string                     `json:"remappings,omitempty"`
	Optimizer       Optimizer                    `json:"optimizer"`
	EVMVersion      config.EVMVersion            `json:"evmVersion"`
	ViaIR           bool                         `json:"viaIR,omitempty"`
	Debug           *DebugSettings               `json:"debug,omitempty"`
	Metadata        *MetadataSettings            `json:"metadata,omitempty"`
	Libraries       map[string]map[string]string `json:"libraries,omitempty"`
	OutputSelection OutputSelection              `json:"outputSelection"`
	ModelChecker    *ModelChecker                `json:"modelChecker,omitempty"`
}

// Optimizer is the optimizer block of a request.
type Optimizer struct {
	Enabled bool              `json:"enabled"`
	Runs    uint32            `json:"runs"`
	Details *OptimizerDetails `json:"details,omitempty"`
}

// OptimizerDetails switches individual optimizer steps.
// OptimizerDetails 单独开关各个优化步骤。
type OptimizerDetails struct {
	Peephole          bool        `json:"peephole"`
	Inliner           bool        `json:"inliner"`
	JumpdestRemover   bool        `json:"jumpdestRemover"`
	OrderLiterals     bool        `json:"orderLiterals"`
	Deduplicate       bool        `json:"deduplicate"`
	CSE               bool        `json:"cse"`
	ConstantOptimizer bool        `json:"constantOptimizer"`
	Yul               bool        `json:"yul"`
	YulDetails        *YulDetails `json:"yulDetails,omitempty"` // only valid with Yul enabled
}

// YulDetails tunes the Yul optimizer.
type YulDetails struct {
	StackAllocation bool   `json:"stackAllocation"`
	OptimizerSteps  string `json:"optimizerSteps,omitempty"`
}

// RevertStrings controls how revert reason strings are emitted.
// RevertStrings 控制 revert 原因字符串的输出方式。
type RevertStrings string

const (
	RevertStringsDefault      RevertStrings = "default"
	RevertStringsStrip        RevertStrings = "strip"
	RevertStringsDebug        RevertStrings = "debug"
	RevertStringsVerboseDebug RevertStrings = "verboseDebug"
)

// DebugInfo selects what debug annotations are emitted.
type DebugInfo string

const (
	DebugInfoLocation DebugInfo = "location"
	DebugInfoSnippet  DebugInfo = "snippet"
	DebugInfoAll      DebugInfo = "*"
)

// DebugSettings is the debug block of a request.
type DebugSettings struct {
	RevertStrings RevertStrings `json:"revertStrings"`
	DebugInfo     []DebugInfo   `json:"debugInfo,omitempty"`
}

// BytecodeHash selects the metadata hash appended to bytecode.
type BytecodeHash string

const (
	BytecodeHashNone  BytecodeHash = "none"
	BytecodeHashIPFS  BytecodeHash = "ipfs"
	BytecodeHashBzzr1 BytecodeHash = "bzzr1"
)

// MetadataSettings is the metadata block of a request.
type MetadataSettings struct {
	AppendCBOR        *bool        `json:"appendCBOR,omitempty"`
	UseLiteralContent bool         `json:"useLiteralContent,omitempty"`
	BytecodeHash      BytecodeHash `json:"bytecodeHash,omitempty"`
}

// ModelChecker configures the SMT based checker. It is omitted from requests
// unless explicitly set.
type ModelChecker struct {
	Contracts       map[string][]string `json:"contracts,omitempty"`
	DivModNoSlacks  bool                `json:"divModNoSlacks,omitempty"`
	Engine          string              `json:"engine,omitempty"`   // all, bmc, chc, none
	ExtCalls        string              `json:"extCalls,omitempty"` // trusted, untrusted
	Invariants      []string            `json:"invariants,omitempty"`
	ShowProved      bool                `json:"showProved,omitempty"`
	ShowUnproved    bool                `json:"showUnproved,omitempty"`
	ShowUnsupported bool                `json:"showUnsupported,omitempty"`
	Solvers         []string            `json:"solvers,omitempty"`
	Targets         []string            `json:"targets,omitempty"`
	Timeout         uint32              `json:"timeout,omitempty"`
}

// OutputKind is one artifact kind the compiler can be asked to produce.
// OutputKind 表示可以向编译器请求的一种产物。
type OutputKind uint8

const (
	OutputABI OutputKind = iota
	OutputAST
	OutputDevdoc
	OutputUserdoc
	OutputMetadata
	OutputIR
	OutputIROptimized
	OutputStorageLayout
	OutputEVMAssembly
	OutputEVMLegacyAssembly
	OutputEVMBytecode
	OutputEVMBytecodeObject
	OutputEVMBytecodeOpcodes
	OutputEVMBytecodeSourceMap
	OutputEVMBytecodeLinkReferences
	OutputEVMBytecodeGeneratedSources
	OutputEVMBytecodeFunctionDebugData
	OutputEVMDeployedBytecode
	OutputEVMDeployedBytecodeImmutableReferences
	OutputEVMMethodIdentifiers
	OutputEVMGasEstimates
	OutputEwasmWast
	OutputEwasmWasm

	numOutputKinds
)

// String returns the wire name of the kind.
func (k OutputKind) String() string {
	switch k {
	case OutputABI:
		return "abi"
	case OutputAST:
		return "ast"
	case OutputDevdoc:
		return "devdoc"
	case OutputUserdoc:
		return "userdoc"
	case OutputMetadata:
		return "metadata"
	case OutputIR:
		return "ir"
	case OutputIROptimized:
		return "irOptimized"
	case OutputStorageLayout:
		return "storageLayout"
	case OutputEVMAssembly:
		return "evm.assembly"
	case OutputEVMLegacyAssembly:
		return "evm.legacyAssembly"
	case OutputEVMBytecode:
		return "evm.bytecode"
	case OutputEVMBytecodeObject:
		return "evm.bytecode.object"
	case OutputEVMBytecodeOpcodes:
		return "evm.bytecode.opcodes"
	case OutputEVMBytecodeSourceMap:
		return "evm.bytecode.sourceMap"
	case OutputEVMBytecodeLinkReferences:
		return "evm.bytecode.linkReferences"
	case OutputEVMBytecodeGeneratedSources:
		return "evm.bytecode.generatedSources"
	case OutputEVMBytecodeFunctionDebugData:
		return "evm.bytecode.functionDebugData"
	case OutputEVMDeployedBytecode:
		return "evm.deployedBytecode"
	case OutputEVMDeployedBytecodeImmutableReferences:
		return "evm.deployedBytecode.immutableReferences"
	case OutputEVMMethodIdentifiers:
		return "evm.methodIdentifiers"
	case OutputEVMGasEstimates:
		return "evm.gasEstimates"
	case OutputEwasmWast:
		return "ewasm.wast"
	case OutputEwasmWasm:
		return "ewasm.wasm"
	default:
		return fmt.Sprintf("OutputKind(%d)", uint8(k))
	}
}

// ParseOutputKind resolves a wire name.
func ParseOutputKind(s string) (OutputKind, error) {
	for k := OutputKind(0); k < numOutputKinds; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown output kind %q", s)
}

// OutputKinds is a set of output kinds. It encodes as a sorted JSON array so
// identical requests serialise identically.
// OutputKinds 是输出种类的集合，编码为有序 JSON 数组，保证请求可复现。
type OutputKinds struct {
	set mapset.Set[OutputKind]
}

// NewOutputKinds creates a set holding kinds.
func NewOutputKinds(kinds ...OutputKind) OutputKinds {
	return OutputKinds{set: mapset.NewThreadUnsafeSet(kinds...)}
}

// Contains reports whether all kinds are in the set.
func (s OutputKinds) Contains(kinds ...OutputKind) bool {
	return s.set != nil && s.set.Contains(kinds...)
}

// Len returns the number of kinds in the set.
func (s OutputKinds) Len() int {
	if s.set == nil {
		return 0
	}
	return s.set.Cardinality()
}

// Sorted returns the kinds ordered by wire name.
func (s OutputKinds) Sorted() []OutputKind {
	if s.set == nil {
		return nil
	}
	kinds := s.set.ToSlice()
	sort.Slice(kinds, func(i, j int) bool { return kinds[i].String() < kinds[j].String() })
	return kinds
}

// MarshalJSON implements json.Marshaler.
func (s OutputKinds) MarshalJSON() ([]byte, error) {
	kinds := s.Sorted()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return json.Marshal(names)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *OutputKinds) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set := mapset.NewThreadUnsafeSet[OutputKind]()
	for _, name := range names {
		k, err := ParseOutputKind(name)
		if err != nil {
			return err
		}
		set.Add(k)
	}
	s.set = set
	return nil
}

// OutputSelection maps file name, then contract name or "*", to the
// requested kinds.
// OutputSelection 按文件名、合约名（或 "*"）映射到请求的输出种类。
type OutputSelection map[string]map[string]OutputKinds

// Kinds returns the kinds requested for a contract, falling back to the
// wildcard entry.
func (o OutputSelection) Kinds(file, contract string) OutputKinds {
	byContract, ok := o[file]
	if !ok {
		byContract = o["*"]
	}
	if k, ok := byContract[contract]; ok {
		return k
	}
	return byContract["*"]
}
