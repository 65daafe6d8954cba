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
	"errors"
	"fmt"
	"strings"

	"github.com/snapper-build/snapper/config"
)

var (
	// ErrNetwork is returned when the manifest or a compiler binary cannot be
	// fetched.
	ErrNetwork = errors.New("network error")

	// ErrVersionNotFound is returned when the manifest has no build for the
	// requested version and platform.
	ErrVersionNotFound = errors.New("compiler version not found")

	// ErrProcessSpawn is returned when the compiler process cannot be started.
	ErrProcessSpawn = errors.New("failed to start compiler")

	// ErrProcessIO is returned when writing the request to, or reading the
	// response from, the compiler process fails.
	ErrProcessIO = errors.New("compiler pipe failure")

	// ErrParse is returned for compiler responses that cannot be decoded.
	ErrParse = errors.New("malformed compiler output")

	// ErrCompile is matched by every *CompileError.
	ErrCompile = errors.New("compilation failed")

	// ErrFilesystem is returned when artifacts or binaries cannot be written.
	ErrFilesystem = errors.New("filesystem error")

	// ErrInvalidSource is returned for source paths without a usable file name.
	ErrInvalidSource = fmt.Errorf("%w: invalid source path", config.ErrInvalidConfig)

	// ErrUnsupportedPlatform is returned for hosts without upstream builds.
	ErrUnsupportedPlatform = fmt.Errorf("%w: unsupported platform", config.ErrInvalidConfig)

	// ErrConfig aliases the configuration error so callers only need this
	// package for classification.
	ErrConfig = config.ErrInvalidConfig
)

// CompileError carries the full diagnostic list of a response that contained
// at least one error-severity diagnostic.
// CompileError 携带含有错误诊断的响应中的全部诊断信息。
type CompileError struct {
	File        string
	Diagnostics []Diagnostic
}

func (e *CompileError) Error() string {
	var errs []string
	for _, d := range e.Diagnostics {
		if d.Severity == SeverityError {
			errs = append(errs, d.Summary())
		}
	}
	return fmt.Sprintf("compilation of %s failed: %s", e.File, strings.Join(errs, "; "))
}

// Is makes errors.Is(err, ErrCompile) match.
func (e *CompileError) Is(target error) bool {
	return target == ErrCompile
}

// Errors returns only the error-severity diagnostics.
// Errors 仅返回 error 级别的诊断。
func (e *CompileError) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range e.Diagnostics {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}
