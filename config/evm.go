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

import "fmt"

// EVMVersion is the instruction-set revision the compiler targets.
// EVMVersion 是编译器所假定的虚拟机指令集版本。
type EVMVersion uint8

const (
	Homestead EVMVersion = iota
	TangerineWhistle
	SpuriousDragon
	Byzantium
	Constantinople
	Petersburg
	Istanbul
	Berlin
	London
	Paris
)

// DefaultEVMVersion is used when the project file leaves the target unset.
const DefaultEVMVersion = Byzantium

// AllEVMVersions lists every supported target in fork order.
var AllEVMVersions = []EVMVersion{
	Homestead, TangerineWhistle, SpuriousDragon, Byzantium, Constantinople,
	Petersburg, Istanbul, Berlin, London, Paris,
}

// String returns the name solc uses for the target.
func (v EVMVersion) String() string {
	switch v {
	case Homestead:
		return "homestead"
	case TangerineWhistle:
		return "tangerineWhistle"
	case SpuriousDragon:
		return "spuriousDragon"
	case Byzantium:
		return "byzantium"
	case Constantinople:
		return "constantinople"
	case Petersburg:
		return "petersburg"
	case Istanbul:
		return "istanbul"
	case Berlin:
		return "berlin"
	case London:
		return "london"
	case Paris:
		return "paris"
	default:
		return fmt.Sprintf("EVMVersion(%d)", uint8(v))
	}
}

// ParseEVMVersion converts a solc target name into an EVMVersion.
func ParseEVMVersion(s string) (EVMVersion, error) {
	for _, v := range AllEVMVersions {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown evm version %q", ErrInvalidConfig, s)
}

// MarshalText implements encoding.TextMarshaler.
func (v EVMVersion) MarshalText() ([]byte, error) {
	if v > Paris {
		return nil, fmt.Errorf("%w: invalid evm version %d", ErrInvalidConfig, uint8(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *EVMVersion) UnmarshalText(text []byte) error {
	parsed, err := ParseEVMVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
