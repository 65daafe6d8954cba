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

// snapper compiles the Solidity sources of a project into per-contract
// artifacts.
package main

import (
	"fmt"
	"os"

	"github.com/snapper-build/snapper/cmd/utils"
	"github.com/snapper-build/snapper/internal/debug"
	"github.com/snapper-build/snapper/internal/flags"
	"github.com/urfave/cli/v2"
)

var app = flags.NewApp("the snapper solidity build tool")

func init() {
	app.Action = build
	app.Flags = flags.Merge(utils.BuildFlags, utils.CompilerFlags, debug.Flags)
	app.Commands = []*cli.Command{
		// See buildcmd.go:
		buildCommand,
		resolveCommand,
		// See config.go:
		dumpConfigCommand,
		// See misccmd.go:
		versionCommand,
	}
	// 保留 NewApp 中的环境变量检查，再初始化日志。
	before := app.Before
	app.Before = func(ctx *cli.Context) error {
		if err := debug.Setup(ctx); err != nil {
			return err
		}
		return before(ctx)
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		utils.Fatalf("%v", err)
	}
}

// checkArgs rejects positional arguments on commands that take none.
func checkArgs(ctx *cli.Context) error {
	if args := ctx.Args().Slice(); len(args) > 0 {
		return fmt.Errorf("invalid command: %s", args[0])
	}
	return nil
}
