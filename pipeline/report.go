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

package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/snapper-build/snapper/compiler"
	"github.com/snapper-build/snapper/internal/build"
)

// BuildInfoFile is the name of the report written to the output directory.
// BuildInfoFile 是写入输出目录的构建报告文件名。
const BuildInfoFile = "build-info.json"

// FileState is the progress of one source file through the pipeline.
// FileState 表示单个源文件在流水线中的进度。
type FileState uint8

const (
	Pending FileState = iota
	BinaryResolved
	RequestBuilt
	Invoked
	Parsed
	ArtifactsWritten
	Failed
)

func (s FileState) String() string {
	switch s {
	case Pending:
		return "pending"
	case BinaryResolved:
		return "binary-resolved"
	case RequestBuilt:
		return "request-built"
	case Invoked:
		return "invoked"
	case Parsed:
		return "parsed"
	case ArtifactsWritten:
		return "artifacts-written"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("FileState(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s FileState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *FileState) UnmarshalText(text []byte) error {
	for st := Pending; st <= Failed; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown file state %q", text)
}

// Terminal reports whether no further transition is possible.
func (s FileState) Terminal() bool {
	return s == Failed || s == ArtifactsWritten
}

// next is the only forward transition out of each non-terminal state.
// Failed is reachable from all of them.
// 每个非终止状态只有一个前进方向，任何状态都可以进入 Failed。
var next = map[FileState]FileState{
	Pending:        BinaryResolved,
	BinaryResolved: RequestBuilt,
	RequestBuilt:   Invoked,
	Invoked:        Parsed,
	Parsed:         ArtifactsWritten,
}

// FileResult is the outcome of compiling one source file.
// FileResult 是单个源文件的编译结果。
type FileResult struct {
	Path        string                `json:"path"`
	Name        string                `json:"name"`
	State       FileState             `json:"state"`
	Contracts   []string              `json:"contracts,omitempty"`
	Diagnostics []compiler.Diagnostic `json:"diagnostics,omitempty"`
	Error       string                `json:"error,omitempty"`
	Elapsed     time.Duration         `json:"elapsed"`

	err error
}

// Err returns the failure of the file, or nil.
func (r *FileResult) Err() error {
	return r.err
}

func (r *FileResult) advance(to FileState) {
	if want, ok := next[r.State]; !ok || want != to {
		panic(fmt.Sprintf("invalid file state transition %v -> %v", r.State, to))
	}
	r.State = to
}

func (r *FileResult) fail(err error) error {
	if r.State.Terminal() {
		panic(fmt.Sprintf("file %s already in terminal state %v", r.Path, r.State))
	}
	r.State, r.err, r.Error = Failed, err, err.Error()
	return err
}

// Report summarises one build.
// Report 汇总一次构建。
type Report struct {
	ID       uuid.UUID         `json:"id"`
	Compiler string            `json:"compiler"`
	Binary   string            `json:"binary,omitempty"`
	Platform compiler.Platform `json:"platform"`
	Profile  string            `json:"profile"`
	Started  time.Time         `json:"started"`
	Finished time.Time         `json:"finished"`
	Files    []*FileResult     `json:"files"`
}

// Contracts returns the names of all produced contracts, sorted and without
// duplicates.
func (r *Report) Contracts() []string {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, f := range r.Files {
		set.Append(f.Contracts...)
	}
	names := set.ToSlice()
	sort.Strings(names)
	return names
}

// Failed returns the results of all files that did not compile.
func (r *Report) Failed() []*FileResult {
	var failed []*FileResult
	for _, f := range r.Files {
		if f.State == Failed {
			failed = append(failed, f)
		}
	}
	return failed
}

// Compiled returns the results of all files whose artifacts were written.
func (r *Report) Compiled() []*FileResult {
	var done []*FileResult
	for _, f := range r.Files {
		if f.State == ArtifactsWritten {
			done = append(done, f)
		}
	}
	return done
}

// Err joins the failures of all files, or returns nil if every file was
// compiled.
// Err 合并所有失败文件的错误，全部成功时返回 nil。
func (r *Report) Err() error {
	var errs []error
	for _, f := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", f.Path, f.err))
	}
	return errors.Join(errs...)
}

// WriteJSON stores the report as outDir/build-info.json.
func (r *Report) WriteJSON(outDir string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := build.WriteFile(filepath.Join(outDir, BuildInfoFile), data); err != nil {
		return fmt.Errorf("%w: %v", compiler.ErrFilesystem, err)
	}
	return nil
}
