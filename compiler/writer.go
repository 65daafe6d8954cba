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
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"github.com/snapper-build/snapper/internal/build"
)

// Artifact file suffixes.
const (
	ABISuffix       = ".abi.json"
	BytecodeSuffix  = ".bytecode"
	OpcodesSuffix   = ".opcodes"
	SourceMapSuffix = ".sourcemap"
	GasSuffix       = ".gas.json"
)

// gasFile is the on-disk shape of {name}.gas.json. Every key is always
// present.
type gasFile struct {
	Creation *CreationGas        `json:"creation"`
	External map[string]GasValue `json:"external"`
	Internal map[string]GasValue `json:"internal"`
}

type artifactFile struct {
	suffix string
	data   []byte
}

// ArtifactDir returns the directory holding the artifacts of a source file.
// ArtifactDir 返回源文件产物所在目录 outDir/filename。
func ArtifactDir(outDir, filename string) string {
	return filepath.Join(outDir, filename)
}

// WriteArtifact persists one contract's artifacts below outDir/filename.
// Files already written stay in place when a later write fails; rerunning
// the build overwrites them.
// WriteArtifact 将单个合约的产物写入 outDir/filename/。写入失败时已写文件保留，重新运行即可覆盖。
func WriteArtifact(outDir, filename string, a *Artifact) error {
	dir := ArtifactDir(outDir, filename)
	files := []artifactFile{
		{ABISuffix, a.ABI},
		{BytecodeSuffix, a.Bytecode},
		{OpcodesSuffix, []byte(a.Opcodes)},
		{SourceMapSuffix, []byte(a.SourceMap)},
	}
	if g := a.GasEstimates; g != nil {
		gas := gasFile{Creation: g.Creation, External: g.External, Internal: g.Internal}
		if gas.External == nil {
			gas.External = map[string]GasValue{}
		}
		if gas.Internal == nil {
			gas.Internal = map[string]GasValue{}
		}
		data, err := json.MarshalIndent(gas, "", "  ")
		if err != nil {
			return fmt.Errorf("%w: encoding gas estimates of %s: %v", ErrFilesystem, a.Name, err)
		}
		files = append(files, artifactFile{GasSuffix, data})
	}
	for _, f := range files {
		path := filepath.Join(dir, a.Name+f.suffix)
		if err := build.WriteFile(path, f.data); err != nil {
			return fmt.Errorf("%w: %v", ErrFilesystem, err)
		}
	}
	log.Debug("Wrote contract artifacts", "contract", a.Name, "dir", dir, "files", len(files))
	return nil
}
