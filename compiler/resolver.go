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
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gofrs/flock"
	"github.com/snapper-build/snapper/internal/build"
	"golang.org/x/sync/singleflight"
)

const lockRetryDelay = 100 * time.Millisecond

// Resolver finds the compiler binary for a version, downloading it into
// BinDir on first use. A binary already present in BinDir is used as is.
//
// Resolver 在首次使用时下载编译器，之后直接复用磁盘上的缓存文件。
type Resolver struct {
	BinDir string
	Source ManifestSource
	Client *http.Client

	group singleflight.Group

	mu       sync.Mutex
	manifest *Manifest
}

// NewResolver creates a resolver caching binaries in binDir.
// NewResolver 创建一个将编译器缓存在 binDir 中的解析器。
func NewResolver(binDir string, source ManifestSource) *Resolver {
	return &Resolver{BinDir: binDir, Source: source, Client: http.DefaultClient}
}

// BinaryPath returns the cache location of the given compiler version.
// BinaryPath 返回缓存路径 {bin_dir}/solc-v{version}。
func (r *Resolver) BinaryPath(version string) string {
	return filepath.Join(r.BinDir, "solc-v"+version)
}

// Resolve returns the path of an executable compiler for version. Concurrent
// calls for the same version share a single download.
// Resolve 返回可执行编译器的路径。同一版本的并发调用共享一次下载。
func (r *Resolver) Resolve(ctx context.Context, version string, platform Platform) (string, error) {
	path := r.BinaryPath(version)
	if build.FileExist(path) {
		log.Debug("Using cached compiler", "version", version, "path", path)
		return path, nil
	}
	_, err, shared := r.group.Do(path, func() (any, error) {
		return nil, r.install(ctx, version, platform, path)
	})
	if err != nil {
		return "", err
	}
	if shared {
		log.Trace("Joined in-flight compiler download", "version", version)
	}
	return path, nil
}

// Manifest returns the build manifest, fetching it on first use.
// Manifest 返回构建清单，首次使用时才拉取，之后复用。
func (r *Resolver) Manifest(ctx context.Context) (*Manifest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.manifest != nil {
		return r.manifest, nil
	}
	if r.Source == nil {
		return nil, fmt.Errorf("%w: no manifest source configured", ErrConfig)
	}
	m, err := r.Source.Load(ctx, r.client())
	if err != nil {
		return nil, err
	}
	r.manifest = m
	return m, nil
}

func (r *Resolver) install(ctx context.Context, version string, platform Platform, path string) error {
	if err := os.MkdirAll(r.BinDir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrFilesystem, err)
	}
	// Other snapper processes may share the bin dir.
	// 其他 snapper 进程可能共用同一个缓存目录。
	lock := flock.New(path + ".lock")
	if _, err := lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: locking %s: %v", ErrFilesystem, lock.Path(), err)
	}
	defer lock.Unlock()

	if build.FileExist(path) {
		log.Debug("Compiler installed by another process", "version", version, "path", path)
		return nil
	}
	m, err := r.Manifest(ctx)
	if err != nil {
		return err
	}
	artifact, err := m.Lookup(version, platform)
	if err != nil {
		return err
	}
	url := artifact.URLs[0]
	log.Info("Downloading compiler", "version", version, "platform", platform, "url", url)

	sums := build.Checksums{SHA256: artifact.SHA256, Keccak256: artifact.Keccak256}
	if err := build.DownloadFile(ctx, r.client(), url, path, sums, 0755); err != nil {
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, build.ErrDownload), errors.Is(err, build.ErrChecksum):
			return fmt.Errorf("%w: %v", ErrNetwork, err)
		default:
			return fmt.Errorf("%w: %v", ErrFilesystem, err)
		}
	}
	log.Info("Installed compiler", "version", version, "path", path)
	return nil
}

func (r *Resolver) client() *http.Client {
	if r.Client == nil {
		return http.DefaultClient
	}
	return r.Client
}
