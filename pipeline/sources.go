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
	"io/fs"
	"path/filepath"
	"strings"
)

// DefaultExts are the source extensions picked up from directories.
var DefaultExts = []string{".sol", ".yul"}

// Sources enumerates the files of a build. Each may be called any number of
// times; the order in which files are visited carries no meaning.
// Sources 枚举一次构建的源文件，Each 可以重复调用。
type Sources interface {
	Each(fn func(path string) error) error
}

// FileList is an explicit list of source paths.
type FileList []string

// Each implements Sources.
func (l FileList) Each(fn func(path string) error) error {
	for _, path := range l {
		if err := fn(path); err != nil {
			return err
		}
	}
	return nil
}

// DirSources yields the source files in a directory.
// DirSources 产出目录中的源文件。
type DirSources struct {
	Dir       string
	Exts      []string // DefaultExts when empty
	Recursive bool
}

// Each implements Sources.
func (s DirSources) Each(fn func(path string) error) error {
	exts := s.Exts
	if len(exts) == 0 {
		exts = DefaultExts
	}
	return filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.Dir && !s.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		for _, ext := range exts {
			if strings.EqualFold(filepath.Ext(path), ext) {
				return fn(path)
			}
		}
		return nil
	})
}
