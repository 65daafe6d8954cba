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

	"github.com/holiman/uint256"
)

// Output is a standard-json compilation response. Fields the request did not
// select are absent, which is why optional parts are pointers or nil maps.
// Output 中未被请求的字段保持为 nil，而不是零值。
type Output struct {
	Errors    []Diagnostic                   `json:"errors,omitempty"`
	Sources   map[string]SourceInfo          `json:"sources,omitempty"`
	Contracts map[string]map[string]Contract `json:"contracts,omitempty"`
}

// Severity classifies a diagnostic. The zero value is invalid, so a
// diagnostic without a severity is never mistaken for an error or a warning.
// Severity 的零值无效，缺少 severity 字段的诊断不会被当作错误或警告。
type Severity uint8

const (
	SeverityUnknown Severity = iota
	SeverityError
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("Severity(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	if s == SeverityUnknown || s > SeverityInfo {
		return nil, fmt.Errorf("invalid severity %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// ErrorType is the diagnostic category reported by the compiler.
// ErrorType 是编译器报告的诊断类别。
type ErrorType uint8

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeJSON
	ErrorTypeIO
	ErrorTypeParser
	ErrorTypeDocstringParsing
	ErrorTypeSyntax
	ErrorTypeDeclaration
	ErrorTypeType
	ErrorTypeUnimplementedFeature
	ErrorTypeInternalCompiler
	ErrorTypeException
	ErrorTypeCompiler
	ErrorTypeFatal
	ErrorTypeYulException
	ErrorTypeSMTLogicException
	ErrorTypeCodeGeneration
	ErrorTypeWarning
	ErrorTypeInfo

	numErrorTypes
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeUnknown:
		return "Unknown"
	case ErrorTypeJSON:
		return "JSONError"
	case ErrorTypeIO:
		return "IOError"
	case ErrorTypeParser:
		return "ParserError"
	case ErrorTypeDocstringParsing:
		return "DocstringParsingError"
	case ErrorTypeSyntax:
		return "SyntaxError"
	case ErrorTypeDeclaration:
		return "DeclarationError"
	case ErrorTypeType:
		return "TypeError"
	case ErrorTypeUnimplementedFeature:
		return "UnimplementedFeatureError"
	case ErrorTypeInternalCompiler:
		return "InternalCompilerError"
	case ErrorTypeException:
		return "Exception"
	case ErrorTypeCompiler:
		return "CompilerError"
	case ErrorTypeFatal:
		return "FatalError"
	case ErrorTypeYulException:
		return "YulException"
	case ErrorTypeSMTLogicException:
		return "SMTLogicException"
	case ErrorTypeCodeGeneration:
		return "CodeGenerationError"
	case ErrorTypeWarning:
		return "Warning"
	case ErrorTypeInfo:
		return "Info"
	default:
		return fmt.Sprintf("ErrorType(%d)", uint8(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t ErrorType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Names introduced by
// newer compilers decode as ErrorTypeUnknown.
func (t *ErrorType) UnmarshalText(text []byte) error {
	for et := ErrorTypeJSON; et < numErrorTypes; et++ {
		if et.String() == string(text) {
			*t = et
			return nil
		}
	}
	*t = ErrorTypeUnknown
	return nil
}

// SourceLocation is a byte range within a source file.
type SourceLocation struct {
	File    string `json:"file"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Message string `json:"message,omitempty"`
}

// Diagnostic is one entry of the response's error list.
// Diagnostic 是响应 errors 列表中的一项。
type Diagnostic struct {
	SourceLocation           *SourceLocation  `json:"sourceLocation,omitempty"`
	SecondarySourceLocations []SourceLocation `json:"secondarySourceLocations,omitempty"`
	Type                     ErrorType        `json:"type"`
	Component                string           `json:"component"`
	Severity                 Severity         `json:"severity"`
	ErrorCode                string           `json:"errorCode,omitempty"`
	Message                  string           `json:"message"`
	FormattedMessage         string           `json:"formattedMessage,omitempty"`
}

// Summary renders the diagnostic on one line.
func (d Diagnostic) Summary() string {
	msg := fmt.Sprintf("%s: %s", d.Type, d.Message)
	if d.ErrorCode != "" {
		msg = fmt.Sprintf("%s (%s): %s", d.Type, d.ErrorCode, d.Message)
	}
	if loc := d.SourceLocation; loc != nil {
		return fmt.Sprintf("%s:%d:%d: %s", loc.File, loc.Start, loc.End, msg)
	}
	return msg
}

// SourceInfo is the per-file part of the response.
type SourceInfo struct {
	ID  int             `json:"id"`
	AST json.RawMessage `json:"ast,omitempty"`
}

// Contract is the per-contract part of the response.
type Contract struct {
	ABI           json.RawMessage `json:"abi,omitempty"`
	Metadata      string          `json:"metadata,omitempty"`
	UserDoc       json.RawMessage `json:"userdoc,omitempty"`
	DevDoc        json.RawMessage `json:"devdoc,omitempty"`
	IR            string          `json:"ir,omitempty"`
	IROptimized   string          `json:"irOptimized,omitempty"`
	StorageLayout *StorageLayout  `json:"storageLayout,omitempty"`
	EVM           *EVMOutput      `json:"evm,omitempty"`
}

// StorageLayout describes how state variables map to storage slots.
type StorageLayout struct {
	Storage []StorageEntry         `json:"storage"`
	Types   map[string]StorageType `json:"types"`
}

// StorageEntry is one state variable.
type StorageEntry struct {
	ASTID    int    `json:"astId"`
	Contract string `json:"contract"`
	Label    string `json:"label"`
	Offset   int    `json:"offset"`
	Slot     string `json:"slot"`
	Type     string `json:"type"`
}

// StorageType describes a type referenced from the storage layout.
type StorageType struct {
	Encoding      string         `json:"encoding"`
	Label         string         `json:"label"`
	NumberOfBytes string         `json:"numberOfBytes"`
	Base          string         `json:"base,omitempty"`
	Key           string         `json:"key,omitempty"`
	Value         string         `json:"value,omitempty"`
	Members       []StorageEntry `json:"members,omitempty"`
}

// EVMOutput holds the EVM specific outputs of a contract.
type EVMOutput struct {
	Assembly          *string           `json:"assembly,omitempty"`
	LegacyAssembly    json.RawMessage   `json:"legacyAssembly,omitempty"`
	Bytecode          *Bytecode         `json:"bytecode,omitempty"`
	DeployedBytecode  *Bytecode         `json:"deployedBytecode,omitempty"`
	MethodIdentifiers map[string]string `json:"methodIdentifiers,omitempty"`
	GasEstimates      *GasEstimates     `json:"gasEstimates,omitempty"`
}

// Bytecode is creation or runtime code together with its annotations.
type Bytecode struct {
	FunctionDebugData   json.RawMessage                       `json:"functionDebugData,omitempty"`
	Object              *string                               `json:"object,omitempty"`
	Opcodes             *string                               `json:"opcodes,omitempty"`
	SourceMap           *string                               `json:"sourceMap,omitempty"`
	LinkReferences      map[string]map[string][]CodeReference `json:"linkReferences,omitempty"`
	GeneratedSources    json.RawMessage                       `json:"generatedSources,omitempty"`
	ImmutableReferences map[string][]CodeReference            `json:"immutableReferences,omitempty"`
}

// CodeReference is a byte range inside bytecode.
type CodeReference struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// GasEstimates are the compiler's cost bounds for a contract.
// GasEstimates 是编译器给出的合约 gas 消耗估算。
type GasEstimates struct {
	Creation *CreationGas        `json:"creation,omitempty"`
	External map[string]GasValue `json:"external,omitempty"`
	Internal map[string]GasValue `json:"internal,omitempty"`
}

// CreationGas is the cost of deploying a contract.
type CreationGas struct {
	CodeDepositCost GasValue `json:"codeDepositCost"`
	ExecutionCost   GasValue `json:"executionCost"`
	TotalCost       GasValue `json:"totalCost"`
}

// GasValue is a gas amount, or unbounded when Infinite is set.
// GasValue 是一个 gas 数值；Infinite 表示无上界。
type GasValue struct {
	Infinite bool
	Value    uint256.Int
}

// Gas returns a bounded gas value.
func Gas(v uint64) GasValue {
	return GasValue{Value: *uint256.NewInt(v)}
}

// InfiniteGas is the unbounded gas value.
var InfiniteGas = GasValue{Infinite: true}

func (g GasValue) String() string {
	if g.Infinite {
		return "infinite"
	}
	return g.Value.Dec()
}

// MarshalText implements encoding.TextMarshaler.
func (g GasValue) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GasValue) UnmarshalText(text []byte) error {
	if string(text) == "infinite" {
		*g = InfiniteGas
		return nil
	}
	var v uint256.Int
	if err := v.SetFromDecimal(string(text)); err != nil {
		return fmt.Errorf("invalid gas value %q: %v", text, err)
	}
	*g = GasValue{Value: v}
	return nil
}

// UnmarshalJSON accepts both the quoted form the compiler emits and plain
// JSON numbers.
func (g *GasValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return g.UnmarshalText([]byte(s))
	}
	return g.UnmarshalText(data)
}
