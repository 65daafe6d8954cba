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

package config

// DefaultContractsDir is the source directory used when the project file
// does not name one.
const DefaultContractsDir = "contracts"

// DefaultProfiles returns the built-in debug and release presets. Every field
// is set explicitly so that new optimizer toggles cannot silently pick up a
// zero value.
// DefaultProfiles 返回内置的 debug 与 release 预设，所有字段显式赋值。
func DefaultProfiles() map[string]Profile {
	return map[string]Profile{
		ProfileDebug: {
			Debug: true,
			Optimizer: OptimizerSettings{
				Enabled:        false,
				Runs:           0,
				Yul:            false,
				YulStack:       false,
				Inliner:        false,
				Deduplicate:    false,
				Constant:       false,
				RemoveJumpdest: false,
				CSE:            false,
			},
		},
		ProfileRelease: {
			Debug: false,
			Optimizer: OptimizerSettings{
				Enabled:        true,
				Runs:           300,
				Yul:            true,
				YulStack:       true,
				Inliner:        true,
				Deduplicate:    true,
				Constant:       true,
				RemoveJumpdest: true,
				CSE:            true,
			},
		},
	}
}

// Defaults returns a complete configuration for the given compiler version.
// Loaders decode the project file on top of it.
// Defaults 返回给定编译器版本的完整默认配置，加载器在其上解码项目文件。
func Defaults(version string) ProjectConfig {
	return ProjectConfig{
		Project: Project{Contracts: DefaultContractsDir},
		Solidity: Solidity{
			Version:    version,
			ViaIR:      false,
			EVMVersion: DefaultEVMVersion,
			Profiles:   DefaultProfiles(),
		},
	}
}
