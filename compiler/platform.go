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
	"fmt"
	"runtime"
)

// Platform identifies an OS/architecture pair with published compiler builds.
// Platform 表示有官方编译器发布的操作系统/架构组合。
type Platform string

const (
	LinuxAMD64   Platform = "linux-amd64"
	WindowsAMD64 Platform = "windows-amd64"
	MacOSAMD64   Platform = "macos-amd64"
)

// AllPlatforms lists every supported platform.
var AllPlatforms = []Platform{LinuxAMD64, WindowsAMD64, MacOSAMD64}

// ParsePlatform validates a platform identifier.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(s); p {
	case LinuxAMD64, WindowsAMD64, MacOSAMD64:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, s)
}

// DetectPlatform returns the platform of the running host. Apple silicon
// hosts use the macOS build, which upstream ships as a universal binary.
// DetectPlatform 返回当前主机的平台，Apple 芯片通过 Rosetta 使用 macos-amd64。
func DetectPlatform() (Platform, error) {
	return platformFor(runtime.GOOS, runtime.GOARCH)
}

func platformFor(goos, goarch string) (Platform, error) {
	switch {
	case goos == "linux" && goarch == "amd64":
		return LinuxAMD64, nil
	case goos == "windows" && goarch == "amd64":
		return WindowsAMD64, nil
	case goos == "darwin" && (goarch == "amd64" || goarch == "arm64"):
		return MacOSAMD64, nil
	}
	return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
}

// upstreamDir is the directory name binaries.soliditylang.org uses.
func (p Platform) upstreamDir() string {
	if p == MacOSAMD64 {
		return "macosx-amd64"
	}
	return string(p)
}
