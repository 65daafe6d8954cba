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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fakeBinary = []byte("#!/bin/sh\ncat > /dev/null\necho '{}'\n")

type manifestServer struct {
	*httptest.Server
	manifestHits atomic.Int32
	binaryHits   atomic.Int32
}

func newManifestServer(t *testing.T, sha string) *manifestServer {
	s := new(manifestServer)
	mux := http.NewServeMux()
	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		s.manifestHits.Add(1)
		m := Manifest{Builds: map[string]BuildArtifact{
			"0.8.19-linux-amd64": {URLs: []string{s.URL + "/bin/solc-0.8.19"}, SHA256: sha},
			"0.8.19-macos-amd64": {URLs: []string{s.URL + "/bin/solc-0.8.19"}, SHA256: sha},
			"0.4.26-linux-amd64": {URLs: []string{s.URL + "/bin/missing"}},
		}}
		json.NewEncoder(w).Encode(m)
	})
	mux.HandleFunc("/bin/solc-0.8.19", func(w http.ResponseWriter, r *http.Request) {
		s.binaryHits.Add(1)
		w.Write(fakeBinary)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func fakeBinarySHA() string {
	sum := sha256.Sum256(fakeBinary)
	return "0x" + hex.EncodeToString(sum[:])
}

func TestManifestLookup(t *testing.T) {
	m := Manifest{Builds: map[string]BuildArtifact{
		"0.8.19-linux-amd64":   {URLs: []string{"a"}},
		"0.8.19-windows-amd64": {URLs: []string{"b"}},
		"0.8.20-linux-amd64":   {},
	}}
	a, err := m.Lookup("0.8.19", LinuxAMD64)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, a.URLs)

	a, err = m.Lookup("0.8.19", WindowsAMD64)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, a.URLs)

	for _, tc := range []struct {
		version  string
		platform Platform
	}{
		{"0.8.19", MacOSAMD64},
		{"0.8.18", LinuxAMD64},
		{"0.8.20", LinuxAMD64},
	} {
		_, err := m.Lookup(tc.version, tc.platform)
		assert.ErrorIs(t, err, ErrVersionNotFound, "%s-%s", tc.version, tc.platform)
	}
}

func TestArtifactLegacyURLField(t *testing.T) {
	var m Manifest
	doc := `{"builds": {"0.8.19-linux-amd64": {"url": ["https://example.org/solc"], "keccak256": "0x01", "sha256": "0x02"}}}`
	require.NoError(t, json.Unmarshal([]byte(doc), &m))
	a, err := m.Lookup("0.8.19", LinuxAMD64)
	require.NoError(t, err)
	assert.Equal(t, BuildArtifact{URLs: []string{"https://example.org/solc"}, Keccak256: "0x01", SHA256: "0x02"}, a)
}

func TestPlatform(t *testing.T) {
	for _, tc := range []struct {
		goos, goarch string
		want         Platform
	}{
		{"linux", "amd64", LinuxAMD64},
		{"windows", "amd64", WindowsAMD64},
		{"darwin", "amd64", MacOSAMD64},
		{"darwin", "arm64", MacOSAMD64},
	} {
		p, err := platformFor(tc.goos, tc.goarch)
		require.NoError(t, err)
		assert.Equal(t, tc.want, p)
	}
	_, err := platformFor("linux", "riscv64")
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
	assert.ErrorIs(t, err, ErrConfig)

	_, err = ParsePlatform("macosx-amd64")
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
	assert.Equal(t, "macosx-amd64", MacOSAMD64.upstreamDir())
}

func TestResolveDownloadsOnce(t *testing.T) {
	srv := newManifestServer(t, fakeBinarySHA())
	r := NewResolver(t.TempDir(), JSONManifest{URL: srv.URL + "/manifest.json"})
	r.Client = srv.Client()

	path, err := r.Resolve(context.Background(), "0.8.19", LinuxAMD64)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(r.BinDir, "solc-v0.8.19"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fakeBinary, data)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0100, "binary not executable")

	assert.EqualValues(t, 1, srv.manifestHits.Load())
	assert.EqualValues(t, 1, srv.binaryHits.Load())

	// A cached binary needs no network at all, even from a fresh resolver.
	fresh := NewResolver(r.BinDir, JSONManifest{URL: srv.URL + "/manifest.json"})
	fresh.Client = srv.Client()
	again, err := fresh.Resolve(context.Background(), "0.8.19", LinuxAMD64)
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.EqualValues(t, 1, srv.manifestHits.Load())
	assert.EqualValues(t, 1, srv.binaryHits.Load())
}

func TestResolveCachedIsTrusted(t *testing.T) {
	srv := newManifestServer(t, fakeBinarySHA())
	r := NewResolver(t.TempDir(), JSONManifest{URL: srv.URL + "/manifest.json"})
	r.Client = srv.Client()

	// Contents differ from the manifest hash, but cached files are not
	// re-verified.
	require.NoError(t, os.WriteFile(r.BinaryPath("0.8.19"), []byte("stale"), 0755))
	_, err := r.Resolve(context.Background(), "0.8.19", LinuxAMD64)
	require.NoError(t, err)
	assert.Zero(t, srv.manifestHits.Load()+srv.binaryHits.Load())
}

func TestResolveVersionNotFound(t *testing.T) {
	srv := newManifestServer(t, "")
	r := NewResolver(t.TempDir(), JSONManifest{URL: srv.URL + "/manifest.json"})
	r.Client = srv.Client()

	_, err := r.Resolve(context.Background(), "0.7.0", LinuxAMD64)
	assert.ErrorIs(t, err, ErrVersionNotFound)
	_, err = r.Resolve(context.Background(), "0.8.19", WindowsAMD64)
	assert.ErrorIs(t, err, ErrVersionNotFound)

	// The manifest is fetched once per resolver.
	assert.EqualValues(t, 1, srv.manifestHits.Load())
	assert.Zero(t, srv.binaryHits.Load())
}

func TestResolveBrokenMirror(t *testing.T) {
	srv := newManifestServer(t, "")
	r := NewResolver(t.TempDir(), JSONManifest{URL: srv.URL + "/manifest.json"})
	r.Client = srv.Client()

	_, err := r.Resolve(context.Background(), "0.4.26", LinuxAMD64)
	assert.ErrorIs(t, err, ErrNetwork)
	_, statErr := os.Stat(r.BinaryPath("0.4.26"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestResolveChecksumMismatch(t *testing.T) {
	srv := newManifestServer(t, "0x"+hex.EncodeToString(make([]byte, 32)))
	r := NewResolver(t.TempDir(), JSONManifest{URL: srv.URL + "/manifest.json"})
	r.Client = srv.Client()

	_, err := r.Resolve(context.Background(), "0.8.19", LinuxAMD64)
	assert.ErrorIs(t, err, ErrNetwork)
	_, statErr := os.Stat(r.BinaryPath("0.8.19"))
	assert.True(t, os.IsNotExist(statErr), "unverified binary left in cache")
}

func TestResolveManifestUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	r := NewResolver(t.TempDir(), JSONManifest{URL: srv.URL + "/manifest.json"})
	r.Client = srv.Client()

	_, err := r.Resolve(context.Background(), "0.8.19", LinuxAMD64)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestResolveConcurrent(t *testing.T) {
	srv := newManifestServer(t, fakeBinarySHA())
	r := NewResolver(t.TempDir(), JSONManifest{URL: srv.URL + "/manifest.json"})
	r.Client = srv.Client()

	var (
		wg    sync.WaitGroup
		paths = make([]string, 16)
		errs  = make([]error, 16)
	)
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], errs[i] = r.Resolve(context.Background(), "0.8.19", LinuxAMD64)
		}(i)
	}
	wg.Wait()
	for i := range paths {
		require.NoError(t, errs[i])
		assert.Equal(t, r.BinaryPath("0.8.19"), paths[i])
	}
	assert.EqualValues(t, 1, srv.binaryHits.Load())
}

func TestSolcBinList(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/linux-amd64/list.json":
			w.Write([]byte(`{
  "builds": [
    {"path": "solc-linux-amd64-v0.8.19+commit.7dd6d404", "version": "0.8.19", "keccak256": "0xaa", "sha256": "0xbb"},
    {"path": "solc-linux-amd64-v0.8.20-nightly.2023.5.1+commit.1", "version": "0.8.20", "keccak256": "0xcc", "sha256": "0xdd"}
  ],
  "releases": {"0.8.19": "solc-linux-amd64-v0.8.19+commit.7dd6d404"}
}`))
		case "/macosx-amd64/list.json":
			w.Write([]byte(`{"builds": [], "releases": {"0.8.19": "solc-macos-v0.8.19+commit.7dd6d404"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	m, err := SolcBinList{Base: srv.URL + "/", Platforms: []Platform{LinuxAMD64, MacOSAMD64}}.Load(context.Background(), srv.Client())
	require.NoError(t, err)
	assert.EqualValues(t, 2, hits.Load())

	a, err := m.Lookup("0.8.19", LinuxAMD64)
	require.NoError(t, err)
	assert.Equal(t, BuildArtifact{
		URLs:      []string{srv.URL + "/linux-amd64/solc-linux-amd64-v0.8.19+commit.7dd6d404"},
		Keccak256: "0xaa",
		SHA256:    "0xbb",
	}, a)

	a, err = m.Lookup("0.8.19", MacOSAMD64)
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/macosx-amd64/solc-macos-v0.8.19+commit.7dd6d404"}, a.URLs)

	_, err = m.Lookup("0.8.20", LinuxAMD64)
	assert.ErrorIs(t, err, ErrVersionNotFound, "nightly builds must not be exposed")

	_, err = SolcBinList{Base: srv.URL}.Load(context.Background(), srv.Client())
	assert.ErrorIs(t, err, ErrNetwork, "windows list is missing")
}
