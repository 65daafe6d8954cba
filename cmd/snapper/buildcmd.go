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
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/snapper-build/snapper/cmd/utils"
	"github.com/snapper-build/snapper/compiler"
	"github.com/snapper-build/snapper/internal/flags"
	"github.com/snapper-build/snapper/pipeline"
	"github.com/urfave/cli/v2"
)

var (
	buildCommand = &cli.Command{
		Action: build,
		Name:   "build",
		Usage:  "Compile the project sources",
		Flags:  flags.Merge(utils.BuildFlags, utils.CompilerFlags),
		Description: `
The build command compiles every source file of the project with the compiler
version named in the project file, downloading the compiler on first use.
Artifacts are written to <out>/<file>/<contract>.{abi.json,bytecode,opcodes,sourcemap,gas.json}.
The command exits with an error if any file fails to compile.`,
	}
	resolveCommand = &cli.Command{
		Action:    resolve,
		Name:      "resolve",
		Usage:     "Download a compiler version and print the path of the binary",
		ArgsUsage: "[version]",
		Flags:     flags.Merge([]cli.Flag{utils.ConfigFileFlag, utils.OutDirFlag}, utils.CompilerFlags),
		Description: `
Without a version argument the version named in the project file is resolved.
A binary already present in the cache directory is used without network access.`,
	}
)

// signalContext returns a context cancelled on SIGINT or SIGTERM, which
// terminates running compiler processes.
// signalContext 在收到 SIGINT 或 SIGTERM 时取消，正在运行的编译器进程随之终止。
func signalContext(ctx *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
}

// build is the build command, and the default action of snapper.
// build 是 build 命令，也是 snapper 的默认动作。
func build(ctx *cli.Context) error {
	if err := checkArgs(ctx); err != nil {
		return err
	}
	file := ctx.String(utils.ConfigFileFlag.Name)
	cfg, err := loadConfig(file)
	if err != nil {
		return err
	}
	platform, err := utils.MakePlatform(ctx)
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg, pipeline.Options{
		Profile:       ctx.String(utils.ProfileFlag.Name),
		OutDir:        utils.MakeOutDir(ctx),
		Platform:      platform,
		Resolver:      utils.MakeResolver(ctx),
		Jobs:          ctx.Int(utils.JobsFlag.Name),
		FailFast:      ctx.Bool(utils.FailFastFlag.Name),
		InlineSources: ctx.Bool(utils.InlineSourcesFlag.Name),
		NoBuildInfo:   ctx.Bool(utils.NoBuildInfoFlag.Name),
	})
	if err != nil {
		return err
	}
	sctx, cancel := signalContext(ctx)
	defer cancel()

	sources := pipeline.DirSources{
		Dir:       contractsDir(ctx, file, cfg),
		Recursive: ctx.Bool(utils.RecursiveFlag.Name),
	}
	report, err := p.Build(sctx, sources)
	if report != nil {
		for _, f := range report.Failed() {
			log.Error("Failed", "file", f.Path, "state", f.State, "err", f.Err())
		}
	}
	if err != nil {
		if report != nil && len(report.Failed()) > 0 {
			return fmt.Errorf("%d of %d files failed to compile", len(report.Failed()), len(report.Files))
		}
		return err
	}
	return nil
}

// resolve is the resolve command.
func resolve(ctx *cli.Context) error {
	version := ctx.Args().First()
	if version == "" {
		cfg, err := loadConfig(ctx.String(utils.ConfigFileFlag.Name))
		if err != nil {
			return err
		}
		version = cfg.Solidity.Version
	}
	platform, err := utils.MakePlatform(ctx)
	if err != nil {
		return err
	}
	sctx, cancel := signalContext(ctx)
	defer cancel()

	path, err := utils.MakeResolver(ctx).Resolve(sctx, version, platform)
	if err != nil {
		if errors.Is(err, compiler.ErrVersionNotFound) {
			return fmt.Errorf("%w (platform %s)", err, platform)
		}
		return err
	}
	fmt.Fprintln(ctx.App.Writer, path)
	return nil
}
