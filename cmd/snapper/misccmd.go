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

package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/snapper-build/snapper/compiler"
	"github.com/snapper-build/snapper/internal/version"
	"github.com/urfave/cli/v2"
)

var versionCommand = &cli.Command{
	Action:    printVersion,
	Name:      "version",
	Usage:     "Print version numbers",
	ArgsUsage: " ",
	Description: `
The output of this command is supposed to be machine-readable.
`,
}

// printVersion prints the build and host details.
// printVersion 打印版本与主机信息。
func printVersion(ctx *cli.Context) error {
	git, _ := version.VCS()
	w := ctx.App.Writer

	fmt.Fprintln(w, strings.Title(ctx.App.Name))
	fmt.Fprintln(w, "Version:", version.WithMeta)
	if git.Commit != "" {
		fmt.Fprintln(w, "Git Commit:", git.Commit)
	}
	if git.Date != "" {
		fmt.Fprintln(w, "Git Commit Date:", git.Date)
	}
	if git.Dirty {
		fmt.Fprintln(w, "Git Tree: dirty")
	}
	fmt.Fprintln(w, "Architecture:", runtime.GOARCH)
	if p, err := compiler.DetectPlatform(); err == nil {
		fmt.Fprintln(w, "Compiler Platform:", p)
	}
	fmt.Fprintln(w, "Go Version:", runtime.Version())
	fmt.Fprintln(w, "Operating System:", runtime.GOOS)
	return nil
}
