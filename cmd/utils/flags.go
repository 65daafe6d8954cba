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

// Package utils contains internal helper functions for snapper commands.
package utils

import (
	"path/filepath"
	"runtime"

	"github.com/snapper-build/snapper/compiler"
	"github.com/snapper-build/snapper/config"
	"github.com/snapper-build/snapper/internal/flags"
	"github.com/urfave/cli/v2"
)

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.
//
// The flags are defined here so their names and help texts
// are the same for all commands.

var (
	// Build settings
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "Project file (TOML, or YAML with a .yaml/.yml extension)",
		Value:    "Snapper.toml",
		EnvVars:  []string{"SNAPPER_CONFIG"},
		Category: flags.BuildCategory,
	}
	ProfileFlag = &cli.StringFlag{
		Name:  "profile",
		Usage: "Build profile to compile with (debug, release or a custom profile)",
		Value: config.ProfileDebug,
		// PROFILE 与原有构建脚本保持兼容。
		EnvVars:  []string{"SNAPPER_PROFILE", "PROFILE"},
		Category: flags.BuildCategory,
	}
	ContractsDirFlag = &flags.DirectoryFlag{
		Name:     "contracts",
		Usage:    "Source directory, overrides the project file (relative to the working directory)",
		EnvVars:  []string{"SNAPPER_CONTRACTS"},
		Category: flags.BuildCategory,
	}
	RecursiveFlag = &cli.BoolFlag{
		Name:     "recursive",
		Usage:    "Also compile sources in subdirectories of the source directory",
		Category: flags.BuildCategory,
	}
	JobsFlag = &cli.IntFlag{
		Name:     "jobs",
		Aliases:  []string{"j"},
		Usage:    "Number of source files compiled in parallel",
		Value:    runtime.NumCPU(),
		EnvVars:  []string{"SNAPPER_JOBS"},
		Category: flags.BuildCategory,
	}
	FailFastFlag = &cli.BoolFlag{
		Name:     "failfast",
		Usage:    "Abort the build on the first file that fails to compile",
		Category: flags.BuildCategory,
	}
	InlineSourcesFlag = &cli.BoolFlag{
		Name:     "inline",
		Usage:    "Embed source contents in the compiler request instead of passing file urls",
		Category: flags.BuildCategory,
	}

	// Output settings
	OutDirFlag = &flags.DirectoryFlag{
		Name:     "out",
		Usage:    "Artifact output directory",
		Value:    flags.DirectoryString("out"),
		EnvVars:  []string{"SNAPPER_OUT_DIR", "OUT_DIR"},
		Category: flags.OutputCategory,
	}
	NoBuildInfoFlag = &cli.BoolFlag{
		Name:     "nobuildinfo",
		Usage:    "Do not write build-info.json to the output directory",
		Category: flags.OutputCategory,
	}

	// Compiler settings
	BinDirFlag = &flags.DirectoryFlag{
		Name:        "bindir",
		Usage:       "Compiler binary cache directory",
		DefaultText: "<out>/bin",
		EnvVars:     []string{"SNAPPER_BIN_DIR"},
		Category:    flags.CompilerCategory,
	}
	ManifestURLFlag = &cli.StringFlag{
		Name:     "manifest",
		Usage:    "URL of a compiler build manifest ({\"builds\": {\"<version>-<platform>\": ...}})",
		EnvVars:  []string{"SNAPPER_MANIFEST"},
		Category: flags.CompilerCategory,
	}
	UpstreamFlag = &cli.StringFlag{
		Name:     "upstream",
		Usage:    "Base URL of the official compiler list.json mirrors, used when no manifest is given",
		Value:    compiler.DefaultBinariesURL,
		EnvVars:  []string{"SNAPPER_UPSTREAM"},
		Category: flags.CompilerCategory,
	}
	PlatformFlag = &cli.StringFlag{
		Name:     "platform",
		Usage:    "Compiler platform (linux-amd64, windows-amd64, macos-amd64), detected when empty",
		Category: flags.CompilerCategory,
	}
)

// BuildFlags are the flags shared by the build command.
var BuildFlags = []cli.Flag{
	ConfigFileFlag,
	ProfileFlag,
	ContractsDirFlag,
	RecursiveFlag,
	JobsFlag,
	FailFastFlag,
	InlineSourcesFlag,
	OutDirFlag,
	NoBuildInfoFlag,
}

// CompilerFlags select and cache the compiler binary.
var CompilerFlags = []cli.Flag{
	BinDirFlag,
	ManifestURLFlag,
	UpstreamFlag,
	PlatformFlag,
}

// MakeOutDir returns the artifact output directory.
func MakeOutDir(ctx *cli.Context) string {
	return ctx.String(OutDirFlag.Name)
}

// MakeBinDir returns the compiler cache directory, <out>/bin by default.
// MakeBinDir 返回编译器缓存目录，默认为 <out>/bin。
func MakeBinDir(ctx *cli.Context) string {
	if dir := ctx.String(BinDirFlag.Name); dir != "" {
		return dir
	}
	return filepath.Join(MakeOutDir(ctx), "bin")
}

// MakePlatform returns the platform selected on the command line, or the
// platform of the running system.
func MakePlatform(ctx *cli.Context) (compiler.Platform, error) {
	if s := ctx.String(PlatformFlag.Name); s != "" {
		return compiler.ParsePlatform(s)
	}
	return compiler.DetectPlatform()
}

// MakeManifestSource creates the source of compiler build manifests. An
// explicit manifest url wins over the upstream mirror.
// MakeManifestSource 创建构建清单来源，显式指定的清单地址优先于上游镜像。
func MakeManifestSource(ctx *cli.Context) compiler.ManifestSource {
	if url := ctx.String(ManifestURLFlag.Name); url != "" {
		return compiler.JSONManifest{URL: url}
	}
	return compiler.SolcBinList{Base: ctx.String(UpstreamFlag.Name)}
}

// MakeResolver creates the compiler resolver configured by the command line.
func MakeResolver(ctx *cli.Context) *compiler.Resolver {
	return compiler.NewResolver(MakeBinDir(ctx), MakeManifestSource(ctx))
}
