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
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/log"
)

// DefaultBinariesURL is the upstream host of official compiler builds.
const DefaultBinariesURL = "https://binaries.soliditylang.org"

// Manifest maps "{version}-{platform}" keys to downloadable builds.
// Manifest 将 "{version}-{platform}" 映射到可下载的构建。
type Manifest struct {
	Builds map[string]BuildArtifact `json:"builds"`
}

// BuildArtifact describes one downloadable compiler build.
// BuildArtifact 描述一个可下载的编译器构建及其校验和。
type BuildArtifact struct {
	URLs      []string `json:"urls"`
	Keccak256 string   `json:"keccak256,omitempty"`
	SHA256    string   `json:"sha256,omitempty"`
}

// UnmarshalJSON also accepts the legacy singular "url" field.
func (a *BuildArtifact) UnmarshalJSON(data []byte) error {
	var raw struct {
		URLs      []string `json:"urls"`
		URL       []string `json:"url"`
		Keccak256 string   `json:"keccak256"`
		SHA256    string   `json:"sha256"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.URLs = raw.URLs
	if len(a.URLs) == 0 {
		a.URLs = raw.URL
	}
	a.Keccak256, a.SHA256 = raw.Keccak256, raw.SHA256
	return nil
}

// ManifestKey builds the lookup key for a version and platform.
func ManifestKey(version string, platform Platform) string {
	return version + "-" + string(platform)
}

// Lookup returns the build for the given version and platform.
// Lookup 返回指定版本和平台的唯一构建，不存在时返回 ErrVersionNotFound。
func (m *Manifest) Lookup(version string, platform Platform) (BuildArtifact, error) {
	a, ok := m.Builds[ManifestKey(version, platform)]
	if !ok {
		return BuildArtifact{}, fmt.Errorf("%w: %s for %s", ErrVersionNotFound, version, platform)
	}
	if len(a.URLs) == 0 {
		return BuildArtifact{}, fmt.Errorf("%w: %s for %s has no download url", ErrVersionNotFound, version, platform)
	}
	return a, nil
}

// ManifestSource loads a build manifest.
type ManifestSource interface {
	Load(ctx context.Context, client *http.Client) (*Manifest, error)
}

// JSONManifest fetches a manifest document in its native form.
type JSONManifest struct {
	URL string
}

// Load implements ManifestSource.
func (s JSONManifest) Load(ctx context.Context, client *http.Client) (*Manifest, error) {
	var m Manifest
	if err := getJSON(ctx, client, s.URL, &m); err != nil {
		return nil, err
	}
	log.Debug("Loaded compiler manifest", "url", s.URL, "builds", len(m.Builds))
	return &m, nil
}

// SolcBinList assembles a manifest from the per-platform list.json files
// published at Base, which defaults to DefaultBinariesURL.
// SolcBinList 从官方各平台的 list.json 组装清单，只收录正式版本。
type SolcBinList struct {
	Base      string
	Platforms []Platform // all platforms when empty
}

type binList struct {
	Builds []struct {
		Path      string `json:"path"`
		Version   string `json:"version"`
		Keccak256 string `json:"keccak256"`
		SHA256    string `json:"sha256"`
	} `json:"builds"`
	Releases map[string]string `json:"releases"`
}

// Load implements ManifestSource.
func (s SolcBinList) Load(ctx context.Context, client *http.Client) (*Manifest, error) {
	base := strings.TrimSuffix(s.Base, "/")
	if base == "" {
		base = DefaultBinariesURL
	}
	platforms := s.Platforms
	if len(platforms) == 0 {
		platforms = AllPlatforms
	}
	m := &Manifest{Builds: make(map[string]BuildArtifact)}
	for _, p := range platforms {
		var list binList
		if err := getJSON(ctx, client, fmt.Sprintf("%s/%s/list.json", base, p.upstreamDir()), &list); err != nil {
			return nil, err
		}
		byPath := make(map[string]int, len(list.Builds))
		for i, b := range list.Builds {
			byPath[b.Path] = i
		}
		// Only releases are exposed; nightly builds share version numbers.
		for version, path := range list.Releases {
			a := BuildArtifact{URLs: []string{fmt.Sprintf("%s/%s/%s", base, p.upstreamDir(), path)}}
			if i, ok := byPath[path]; ok {
				a.Keccak256, a.SHA256 = list.Builds[i].Keccak256, list.Builds[i].SHA256
			}
			m.Builds[ManifestKey(version, p)] = a
		}
	}
	log.Debug("Loaded upstream compiler list", "base", base, "builds", len(m.Builds))
	return m, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GET %s: %s", ErrNetwork, url, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrNetwork, url, err)
	}
	return nil
}
