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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/snapper-build/snapper/config"
	"golang.org/x/crypto/sha3"
)

// DefaultOutputKinds is requested for every contract. It covers everything
// the artifact writer persists.
// 默认请求的输出种类，足以生成所有下游产物。
var DefaultOutputKinds = []OutputKind{
	OutputABI,
	OutputEVMBytecode,
	OutputEVMDeployedBytecode,
	OutputEVMBytecodeSourceMap,
	OutputEVMGasEstimates,
	OutputEVMMethodIdentifiers,
}

type inputOptions struct {
	inline       bool
	metadata     *MetadataSettings
	modelChecker *ModelChecker
	stopAfter    string
}

// InputOption customises BuildInput.
// InputOption 用于定制 BuildInput 生成的请求。
type InputOption func(*inputOptions)

// WithInlineContent embeds the source text and its keccak256 hash in the
// request instead of referencing the file by path.
// WithInlineContent 将源码内容及其 keccak256 哈希直接嵌入请求。
func WithInlineContent() InputOption {
	return func(o *inputOptions) { o.inline = true }
}

// WithMetadata sets the metadata block.
func WithMetadata(m MetadataSettings) InputOption {
	return func(o *inputOptions) { o.metadata = &m }
}

// WithModelChecker enables the SMT checker.
func WithModelChecker(mc ModelChecker) InputOption {
	return func(o *inputOptions) { o.modelChecker = &mc }
}

// WithStopAfterParsing asks the compiler to stop after parsing, which is
// useful for syntax checks.
// WithStopAfterParsing 让编译器在语法解析后停止。
func WithStopAfterParsing() InputOption {
	return func(o *inputOptions) { o.stopAfter = "parsing" }
}

// SourceName returns the key a source file is registered under in requests
// and responses: its base file name.
// SourceName 返回源文件在请求中的键名，即文件名本身。
func SourceName(sourcePath string) (string, error) {
	if sourcePath == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidSource)
	}
	name := filepath.Base(sourcePath)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q has no file name", ErrInvalidSource, sourcePath)
	}
	return name, nil
}

// BuildInput assembles the compilation request for one source file under the
// given profile. Only the file name is consulted unless WithInlineContent is
// passed.
// BuildInput 为单个源文件和配置档生成编译请求，除读取文件外无副作用。
func BuildInput(sourcePath string, cfg *config.ProjectConfig, profile config.Profile, opts ...InputOption) (*Input, error) {
	var o inputOptions
	for _, opt := range opts {
		opt(&o)
	}
	name, err := SourceName(sourcePath)
	if err != nil {
		return nil, err
	}
	lang := Solidity
	if strings.EqualFold(filepath.Ext(name), ".yul") {
		lang = Yul
	}
	src := Source{URLs: []string{filepath.ToSlash(sourcePath)}}
	if o.inline {
		data, err := os.ReadFile(sourcePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
		}
		content := string(data)
		h := sha3.NewLegacyKeccak256()
		h.Write(data)
		src = Source{Content: &content, Keccak256: hexutil.Encode(h.Sum(nil))}
	}

	settings := Settings{
		StopAfter:  o.stopAfter,
		Remappings: append([]string(nil), cfg.Solidity.Remappings...),
		Optimizer:  buildOptimizer(profile.Optimizer),
		EVMVersion: cfg.Solidity.EVMVersion,
		ViaIR:      cfg.Solidity.ViaIR,
		Debug: &DebugSettings{
			RevertStrings: RevertStringsDefault,
			DebugInfo:     []DebugInfo{DebugInfoAll},
		},
		Metadata:     o.metadata,
		Libraries:    copyLibraries(cfg.Libraries),
		ModelChecker: o.modelChecker,
		OutputSelection: OutputSelection{
			name: {"*": NewOutputKinds(DefaultOutputKinds...)},
		},
	}
	if profile.Debug {
		settings.Debug.RevertStrings = RevertStringsDebug
	}
	return &Input{
		Language: lang,
		Sources:  map[string]Source{name: src},
		Settings: settings,
	}, nil
}

// buildOptimizer maps the profile toggles onto the request's optimizer
// block. yulDetails is rejected by the compiler unless the Yul optimizer is
// on, so stack allocation is only carried with it.
func buildOptimizer(s config.OptimizerSettings) Optimizer {
	details := &OptimizerDetails{
		Peephole:          true,
		Inliner:           s.Inliner,
		JumpdestRemover:   s.RemoveJumpdest,
		OrderLiterals:     false,
		Deduplicate:       s.Deduplicate,
		CSE:               s.CSE,
		ConstantOptimizer: s.Constant,
		Yul:               s.Yul,
	}
	if s.Yul {
		details.YulDetails = &YulDetails{StackAllocation: s.YulStack}
	}
	return Optimizer{Enabled: s.Enabled, Runs: s.Runs, Details: details}
}

// OptimizerSettings reverses buildOptimizer.
// OptimizerSettings 是 buildOptimizer 的逆映射。
func (o Optimizer) OptimizerSettings() config.OptimizerSettings {
	s := config.OptimizerSettings{Enabled: o.Enabled, Runs: o.Runs}
	if d := o.Details; d != nil {
		s.Yul = d.Yul
		s.Inliner = d.Inliner
		s.Deduplicate = d.Deduplicate
		s.Constant = d.ConstantOptimizer
		s.RemoveJumpdest = d.JumpdestRemover
		s.CSE = d.CSE
		if d.YulDetails != nil {
			s.YulStack = d.YulDetails.StackAllocation
		}
	}
	return s
}

func copyLibraries(libs map[string]map[string]string) map[string]map[string]string {
	if len(libs) == 0 {
		return nil
	}
	out := make(map[string]map[string]string, len(libs))
	for file, contracts := range libs {
		inner := make(map[string]string, len(contracts))
		for name, addr := range contracts {
			inner[name] = addr
		}
		out[file] = inner
	}
	return out
}
