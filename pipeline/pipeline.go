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

// Package pipeline drives the compilation of a set of source files: the
// compiler binary is resolved once, then every file is compiled on a bounded
// pool of workers and its artifacts written below the output directory.
//
// 每个源文件独立编译，失败不会影响其他文件（除非启用 FailFast）。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/snapper-build/snapper/compiler"
	"github.com/snapper-build/snapper/config"
	"golang.org/x/sync/errgroup"
)

// BinaryResolver provides the compiler executable for a version.
// BinaryResolver 为指定版本提供编译器可执行文件。
type BinaryResolver interface {
	Resolve(ctx context.Context, version string, platform compiler.Platform) (string, error)
}

// Options configure a Pipeline.
// Options 配置流水线。
type Options struct {
	Profile       string // config.ProfileDebug when empty
	OutDir        string
	Platform      compiler.Platform
	Resolver      BinaryResolver
	Jobs          int  // runtime.NumCPU() when zero
	FailFast      bool // cancel outstanding files on the first failure
	InlineSources bool
	NoBuildInfo   bool
}

// Pipeline compiles source files with a fixed configuration.
type Pipeline struct {
	config  *config.ProjectConfig
	profile config.Profile
	opts    Options
	inputs  []compiler.InputOption
}

// New creates a pipeline. The configuration is copied, so later changes to
// cfg do not affect the pipeline.
// New 创建流水线，配置会被复制。
func New(cfg *config.ProjectConfig, opts Options) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Profile == "" {
		opts.Profile = config.ProfileDebug
	}
	profile, err := cfg.ProfileFor(opts.Profile)
	if err != nil {
		return nil, err
	}
	if opts.Resolver == nil {
		return nil, fmt.Errorf("%w: no compiler resolver", config.ErrInvalidConfig)
	}
	if opts.OutDir == "" {
		return nil, fmt.Errorf("%w: no output directory", config.ErrInvalidConfig)
	}
	if opts.Platform == "" {
		if opts.Platform, err = compiler.DetectPlatform(); err != nil {
			return nil, err
		}
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	p := &Pipeline{config: cfg.Copy(), profile: profile, opts: opts}
	if opts.InlineSources {
		p.inputs = append(p.inputs, compiler.WithInlineContent())
	}
	return p, nil
}

// Build compiles every file yielded by sources. The returned report is
// complete even when the build fails; the error joins all file failures.
//
// The report is stored as build-info.json next to the artifacts, unless
// NoBuildInfo is set or no file produced artifacts: a build in which every
// file failed leaves the output directory untouched.
// 若没有任何文件成功生成产物，输出目录保持不变。
func (p *Pipeline) Build(ctx context.Context, sources Sources) (*Report, error) {
	report := &Report{
		ID:       uuid.New(),
		Compiler: p.config.Solidity.Version,
		Platform: p.opts.Platform,
		Profile:  p.opts.Profile,
		Started:  time.Now(),
	}
	if err := p.collect(sources, report); err != nil {
		return nil, err
	}
	logger := log.New("build", report.ID.String()[:8])
	if len(report.Files) == 0 {
		logger.Warn("No source files to compile")
		return p.finish(logger, report)
	}
	logger.Info("Starting build", "id", report.ID, "files", len(report.Files), "compiler", report.Compiler, "profile", report.Profile, "jobs", p.opts.Jobs)

	bin, err := p.opts.Resolver.Resolve(ctx, p.config.Solidity.Version, p.opts.Platform)
	if err != nil {
		for _, f := range report.Files {
			f.fail(err)
		}
		return p.finish(logger, report)
	}
	report.Binary = bin

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Jobs)
	for _, f := range report.Files {
		g.Go(func() error {
			err := p.run(gctx, logger, bin, f)
			if p.opts.FailFast {
				return err
			}
			return nil
		})
	}
	g.Wait()
	return p.finish(logger, report)
}

// collect gathers the source files. Artifacts are namespaced by file name,
// so two sources with the same name would overwrite each other.
// collect 收集源文件。产物按文件名分目录，同名文件会互相覆盖，因此直接拒绝。
func (p *Pipeline) collect(sources Sources, report *Report) error {
	seen := make(map[string]string)
	err := sources.Each(func(path string) error {
		name, err := compiler.SourceName(path)
		if err != nil {
			return err
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%w: %s and %s share the artifact directory %s", compiler.ErrInvalidSource, prev, path, name)
		}
		seen[name] = path
		report.Files = append(report.Files, &FileResult{Path: path, Name: name, State: Pending})
		return nil
	})
	if err != nil {
		if errors.Is(err, config.ErrInvalidConfig) {
			return err
		}
		return fmt.Errorf("%w: listing sources: %v", compiler.ErrFilesystem, err)
	}
	sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].Path < report.Files[j].Path })
	return nil
}

func (p *Pipeline) run(ctx context.Context, logger log.Logger, bin string, f *FileResult) error {
	start := time.Now()
	defer func() { f.Elapsed = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		return f.fail(err)
	}
	f.advance(BinaryResolved)
	if err := p.compile(ctx, logger, bin, f); err != nil {
		logger.Error("Failed to compile source", "file", f.Path, "state", f.State, "err", err)
		return err
	}
	logger.Info("Compiled source", "file", f.Path, "contracts", len(f.Contracts), "elapsed", common.PrettyDuration(time.Since(start)))
	return nil
}

// compile walks one file through the remaining states.
// compile 推动单个文件经过余下的状态。
func (p *Pipeline) compile(ctx context.Context, logger log.Logger, bin string, f *FileResult) error {
	in, err := compiler.BuildInput(f.Path, p.config, p.profile, p.inputs...)
	if err != nil {
		return f.fail(err)
	}
	f.advance(RequestBuilt)

	raw, err := compiler.Invoke(ctx, bin, in)
	if err != nil {
		return f.fail(err)
	}
	f.advance(Invoked)

	res, err := compiler.ParseOutput(raw, f.Name)
	if err != nil {
		var cerr *compiler.CompileError
		if errors.As(err, &cerr) {
			f.Diagnostics = cerr.Diagnostics
			for _, d := range cerr.Errors() {
				logger.Error("Compiler error", "file", f.Path, "msg", d.Summary())
			}
		}
		return f.fail(err)
	}
	f.Diagnostics = res.Diagnostics
	for _, d := range res.Diagnostics {
		logger.Warn("Compiler "+d.Severity.String(), "file", f.Path, "msg", d.Summary())
	}
	f.advance(Parsed)

	for _, a := range res.Artifacts {
		if err := compiler.WriteArtifact(p.opts.OutDir, f.Name, a); err != nil {
			return f.fail(err)
		}
		f.Contracts = append(f.Contracts, a.Name)
	}
	f.advance(ArtifactsWritten)
	return nil
}

func (p *Pipeline) finish(logger log.Logger, report *Report) (*Report, error) {
	report.Finished = time.Now()
	err := report.Err()
	if !p.opts.NoBuildInfo && len(report.Compiled()) > 0 {
		if werr := report.WriteJSON(p.opts.OutDir); werr != nil {
			err = errors.Join(err, werr)
		}
	}
	if err != nil {
		logger.Error("Build failed", "failed", len(report.Failed()), "files", len(report.Files), "elapsed", common.PrettyDuration(report.Finished.Sub(report.Started)))
		return report, err
	}
	logger.Info("Build complete", "files", len(report.Files), "contracts", len(report.Contracts()), "elapsed", common.PrettyDuration(report.Finished.Sub(report.Started)))
	return report, nil
}
