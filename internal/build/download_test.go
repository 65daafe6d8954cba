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
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

var payload = []byte("#!/bin/sh\necho solc\n")

func digests() Checksums {
	s := sha256.Sum256(payload)
	k := sha3.NewLegacyKeccak256()
	k.Write(payload)
	return Checksums{
		SHA256:    "0x" + hex.EncodeToString(s[:]),
		Keccak256: hex.EncodeToString(k.Sum(nil)),
	}
}

func server(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/solc" {
			http.NotFound(w, r)
			return
		}
		w.Write(payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadFile(t *testing.T) {
	srv := server(t)
	dst := filepath.Join(t.TempDir(), "bin", "solc-v0.8.19")

	err := DownloadFile(context.Background(), srv.Client(), srv.URL+"/solc", dst, digests(), 0755)
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.True(t, FileExist(dst))

	entries, err := os.ReadDir(filepath.Dir(dst))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestDownloadChecksumMismatch(t *testing.T) {
	srv := server(t)
	dst := filepath.Join(t.TempDir(), "solc")

	sums := digests()
	sums.Keccak256 = "0x" + hex.EncodeToString(make([]byte, 32))
	err := DownloadFile(context.Background(), srv.Client(), srv.URL+"/solc", dst, sums, 0755)
	assert.ErrorIs(t, err, ErrChecksum)
	assert.False(t, FileExist(dst))
}

func TestDownloadNotFound(t *testing.T) {
	srv := server(t)
	dst := filepath.Join(t.TempDir(), "solc")

	err := DownloadFile(context.Background(), srv.Client(), srv.URL+"/missing", dst, Checksums{}, 0755)
	assert.ErrorIs(t, err, ErrDownload)
	assert.False(t, FileExist(dst))
}

func TestDownloadCancelled(t *testing.T) {
	srv := server(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := DownloadFile(ctx, srv.Client(), srv.URL+"/solc", filepath.Join(t.TempDir(), "solc"), Checksums{}, 0755)
	assert.ErrorIs(t, err, ErrDownload)
}
