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

package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/crypto/sha3"
)

var (
	// ErrDownload is returned when the remote file cannot be fetched.
	ErrDownload = errors.New("download failed")

	// ErrChecksum is returned when the fetched content does not match the
	// expected digest.
	ErrChecksum = errors.New("checksum mismatch")
)

// Checksums are the expected digests of a download, hex encoded with or
// without a 0x prefix. Empty digests are not checked.
// Checksums 是下载内容的预期摘要，十六进制编码，可带 0x 前缀。
type Checksums struct {
	SHA256    string
	Keccak256 string
}

// DownloadFile fetches url into dst. The content is streamed into a temporary
// file next to dst, verified and only then renamed into place with the given
// mode, so dst either holds a complete verified file or nothing at all.
// DownloadFile 将 url 下载到 dst：先写入临时文件，校验通过后再重命名。
func DownloadFile(ctx context.Context, client *http.Client, url, dst string, sums Checksums, mode os.FileMode) error {
	if client == nil {
		client = http.DefaultClient
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: %s", ErrDownload, url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.partial")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	var (
		shaHash    = sha256.New()
		keccakHash = sha3.NewLegacyKeccak256()
		progress   = &downloadWriter{url: url, size: resp.ContentLength, start: time.Now()}
	)
	if _, err := io.Copy(io.MultiWriter(tmp, shaHash, keccakHash, progress), resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := verify("sha256", shaHash, sums.SHA256); err != nil {
		return err
	}
	if err := verify("keccak256", keccakHash, sums.Keccak256); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return err
	}
	log.Debug("Download complete", "url", url, "dst", dst, "bytes", progress.written, "elapsed", time.Since(progress.start))
	return nil
}

func verify(kind string, h hash.Hash, want string) error {
	if want == "" {
		return nil
	}
	want = strings.ToLower(strings.TrimPrefix(want, "0x"))
	if have := hex.EncodeToString(h.Sum(nil)); have != want {
		return fmt.Errorf("%w: %s is %s, want %s", ErrChecksum, kind, have, want)
	}
	return nil
}

// downloadWriter reports progress of long downloads.
type downloadWriter struct {
	url     string
	size    int64
	written int64
	start   time.Time
	logged  time.Time
}

func (w *downloadWriter) Write(buf []byte) (int, error) {
	w.written += int64(len(buf))
	if time.Since(w.logged) > 8*time.Second {
		w.logged = time.Now()
		if w.size > 0 {
			log.Info("Downloading compiler", "url", w.url, "progress", fmt.Sprintf("%.1f%%", float64(w.written)*100/float64(w.size)))
		} else {
			log.Info("Downloading compiler", "url", w.url, "bytes", w.written)
		}
	}
	return len(buf), nil
}
