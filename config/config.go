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

// Package config contains the typed project configuration handed to the
// compilation pipeline.
//
// 项目配置在每次构建时加载一次，之后保持不可变。
package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInvalidConfig is wrapped by every validation failure of a project
// configuration.
// ErrInvalidConfig 包装所有项目配置校验失败。
var ErrInvalidConfig = errors.New("invalid project configuration")

// Well-known profile names.
const (
	ProfileDebug   = "debug"
	ProfileRelease = "release"
)

var semverRe = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ProjectConfig is the root of a Snapper project file.
// ProjectConfig 是 Snapper 项目文件的根结构。
type ProjectConfig struct {
	Project   Project                      `toml:"project" yaml:"project"`
	Solidity  Solidity                     `toml:"solidity" yaml:"solidity"`
	Libraries map[string]map[string]string `toml:"library,omitempty" yaml:"library,omitempty"`
	Networks  map[string]Network           `toml:"networks,omitempty" yaml:"networks,omitempty"`
}

// Project holds the layout of the project on disk.
type Project struct {
	// Contracts is the source directory, relative to the project file.
	Contracts string `toml:"contracts" yaml:"contracts"`
}

// Solidity holds the compiler selection and its settings.
type Solidity struct {
	Version    string             `toml:"version" yaml:"version"`
	ViaIR      bool               `toml:"via_ir" yaml:"via_ir"`
	EVMVersion EVMVersion         `toml:"evm_version" yaml:"evm_version"`
	Remappings []string           `toml:"remappings,omitempty" yaml:"remappings,omitempty"`
	Profiles   map[string]Profile `toml:"profiles" yaml:"profiles"`
}

// Profile is one build mode, e.g. debug or release.
// Profile 是一种构建模式，例如 debug 或 release。
type Profile struct {
	Debug     bool              `toml:"debug" yaml:"debug"`
	Optimizer OptimizerSettings `toml:"optimizer" yaml:"optimizer"`
}

// OptimizerSettings toggles the individual solc optimizer passes.
// OptimizerSettings 单独开关 solc 的各个优化步骤。
type OptimizerSettings struct {
	Enabled        bool   `toml:"enable" yaml:"enable"`
	Runs           uint32 `toml:"runs" yaml:"runs"`
	Yul            bool   `toml:"yul" yaml:"yul"`
	YulStack       bool   `toml:"yul_stack" yaml:"yul_stack"`
	Inliner        bool   `toml:"inliner" yaml:"inliner"`
	Deduplicate    bool   `toml:"deduplicate" yaml:"deduplicate"`
	Constant       bool   `toml:"constant" yaml:"constant"`
	RemoveJumpdest bool   `toml:"remove_jumpdest" yaml:"remove_jumpdest"`
	CSE            bool   `toml:"cse" yaml:"cse"`
}

// Network is a named RPC endpoint plus the accounts used against it.
type Network struct {
	URL      string   `toml:"url" yaml:"url"`
	Accounts []string `toml:"accounts" yaml:"accounts"`
}

// ApplyDefaults fills in the mandatory debug and release profiles and the
// contracts directory when the project file leaves them out.
func (c *ProjectConfig) ApplyDefaults() {
	if c.Project.Contracts == "" {
		c.Project.Contracts = DefaultContractsDir
	}
	if c.Solidity.Profiles == nil {
		c.Solidity.Profiles = make(map[string]Profile)
	}
	for name, p := range DefaultProfiles() {
		if _, ok := c.Solidity.Profiles[name]; !ok {
			c.Solidity.Profiles[name] = p
		}
	}
}

// Validate checks the configuration for internal consistency.
// Validate 检查配置的内部一致性。
func (c *ProjectConfig) Validate() error {
	if !semverRe.MatchString(c.Solidity.Version) {
		return fmt.Errorf("%w: solidity version %q is not of the form X.Y.Z", ErrInvalidConfig, c.Solidity.Version)
	}
	if c.Solidity.EVMVersion > Paris {
		return fmt.Errorf("%w: invalid evm version %d", ErrInvalidConfig, uint8(c.Solidity.EVMVersion))
	}
	for _, name := range []string{ProfileDebug, ProfileRelease} {
		if _, ok := c.Solidity.Profiles[name]; !ok {
			return fmt.Errorf("%w: missing %s profile", ErrInvalidConfig, name)
		}
	}
	for file, contracts := range c.Libraries {
		if file == "" {
			return fmt.Errorf("%w: library binding with empty file name", ErrInvalidConfig)
		}
		for name, addr := range contracts {
			if !common.IsHexAddress(addr) {
				return fmt.Errorf("%w: library %s:%s has invalid address %q", ErrInvalidConfig, file, name, addr)
			}
		}
	}
	for name, n := range c.Networks {
		u, err := url.Parse(n.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: network %q has invalid url %q", ErrInvalidConfig, name, n.URL)
		}
	}
	return nil
}

// ProfileFor returns the named profile.
func (c *ProjectConfig) ProfileFor(name string) (Profile, error) {
	p, ok := c.Solidity.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: unknown profile %q (have %v)", ErrInvalidConfig, name, c.ProfileNames())
	}
	return p, nil
}

// ProfileNames returns the configured profile names in sorted order.
func (c *ProjectConfig) ProfileNames() []string {
	names := make([]string, 0, len(c.Solidity.Profiles))
	for name := range c.Solidity.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Copy returns a deep copy, so a build can hold a snapshot that later edits
// of the original cannot reach.
// Copy 返回深拷贝，构建持有的快照不受后续修改影响。
func (c *ProjectConfig) Copy() *ProjectConfig {
	cpy := *c
	cpy.Solidity.Remappings = append([]string(nil), c.Solidity.Remappings...)
	if c.Solidity.Profiles != nil {
		cpy.Solidity.Profiles = make(map[string]Profile, len(c.Solidity.Profiles))
		for k, v := range c.Solidity.Profiles {
			cpy.Solidity.Profiles[k] = v
		}
	}
	if c.Libraries != nil {
		cpy.Libraries = make(map[string]map[string]string, len(c.Libraries))
		for file, contracts := range c.Libraries {
			inner := make(map[string]string, len(contracts))
			for k, v := range contracts {
				inner[k] = v
			}
			cpy.Libraries[file] = inner
		}
	}
	if c.Networks != nil {
		cpy.Networks = make(map[string]Network, len(c.Networks))
		for k, v := range c.Networks {
			v.Accounts = append([]string(nil), v.Accounts...)
			cpy.Networks[k] = v
		}
	}
	return &cpy
}
