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
	"os"
	"path/filepath"
	"testing"

	"github.com/snapper-build/snapper/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProjectTOML = `
[project]
contracts = "src"

[solidity]
version = "0.8.28"
via_ir = true
evm_version = "paris"
remappings = ["@oz/=lib/oz/"]

[solidity.profiles.release]
debug = false

[solidity.profiles.release.optimizer]
enable = true
runs = 1000
yul = true

[library."Math.sol"]
Math = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

[networks.local]
url = "http://127.0.0.1:8545"
accounts = ["alice", "bob"]
`

func writeProject(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigTOML(t *testing.T) {
	cfg, err := loadConfig(writeProject(t, "Snapper.toml", testProjectTOML))
	require.NoError(t, err)

	assert.Equal(t, "src", cfg.Project.Contracts)
	assert.Equal(t, "0.8.28", cfg.Solidity.Version)
	assert.True(t, cfg.Solidity.ViaIR)
	assert.Equal(t, config.Paris, cfg.Solidity.EVMVersion)
	assert.Equal(t, []string{"@oz/=lib/oz/"}, cfg.Solidity.Remappings)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", cfg.Libraries["Math.sol"]["Math"])
	assert.Equal(t, []string{"alice", "bob"}, cfg.Networks["local"].Accounts)

	// The release table replaces the preset, the missing debug profile is filled in.
	release := cfg.Solidity.Profiles[config.ProfileRelease]
	assert.Equal(t, config.OptimizerSettings{Enabled: true, Runs: 1000, Yul: true}, release.Optimizer)
	assert.Equal(t, config.DefaultProfiles()[config.ProfileDebug], cfg.Solidity.Profiles[config.ProfileDebug])
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(writeProject(t, "Snapper.toml", "[solidity]\nversion = \"0.8.19\"\n"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultContractsDir, cfg.Project.Contracts)
	assert.Equal(t, config.DefaultEVMVersion, cfg.Solidity.EVMVersion)
	assert.Equal(t, config.DefaultProfiles(), cfg.Solidity.Profiles)
}

func TestLoadConfigYAML(t *testing.T) {
	doc := `
project:
  contracts: sol
solidity:
  version: 0.8.19
  evm_version: london
  profiles:
    cse:
      optimizer:
        enable: true
        cse: true
`
	cfg, err := loadConfig(writeProject(t, "snapper.yml", doc))
	require.NoError(t, err)
	assert.Equal(t, "sol", cfg.Project.Contracts)
	assert.Equal(t, config.London, cfg.Solidity.EVMVersion)
	assert.Equal(t, []string{"cse", "debug", "release"}, cfg.ProfileNames())
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name, file, content, contains string
	}{
		{"unknown toml field", "Snapper.toml", "[solidity]\nversion = \"0.8.19\"\nsolc = 1\n", "Snapper.toml, line 3"},
		{"unknown yaml field", "snapper.yaml", "solidity:\n  version: 0.8.19\n  solc: 1\n", "snapper.yaml"},
		{"bad evm version", "Snapper.toml", "[solidity]\nversion = \"0.8.19\"\nevm_version = \"cancun\"\n", "cancun"},
		{"bad compiler version", "Snapper.toml", "[solidity]\nversion = \"latest\"\n", "latest"},
		{"bad library address", "Snapper.toml", "[solidity]\nversion = \"0.8.19\"\n[library.\"A.sol\"]\nA = \"0x1234\"\n", "0x1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeProject(t, tt.file, tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}

	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDumpConfigRoundTrip(t *testing.T) {
	src := writeProject(t, "Snapper.toml", testProjectTOML)
	dump := filepath.Join(t.TempDir(), "dump.toml")
	require.NoError(t, app.Run([]string{"snapper", "dumpconfig", "--config", src, dump}))

	want, err := loadConfig(src)
	require.NoError(t, err)
	have, err := loadConfig(dump)
	require.NoError(t, err)
	assert.Equal(t, want, have)
}
