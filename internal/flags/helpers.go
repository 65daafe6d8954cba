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

package flags

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/snapper-build/snapper/internal/version"
	"github.com/urfave/cli/v2"
)

// NewApp creates an app with sane defaults.
// NewApp 创建一个带有默认设置的应用。
func NewApp(usage string) *cli.App {
	git, _ := version.VCS()
	app := cli.NewApp()
	app.EnableBashCompletion = true
	app.Version = version.WithCommit(git.Commit, git.Date)
	app.Usage = usage
	app.Copyright = "Copyright 2026 The snapper Authors"
	app.Before = func(ctx *cli.Context) error {
		CheckEnvVars(ctx, app.Flags, "SNAPPER")
		return nil
	}
	return app
}

// Merge merges the given flag slices.
func Merge(groups ...[]cli.Flag) []cli.Flag {
	var ret []cli.Flag
	for _, group := range groups {
		ret = append(ret, group...)
	}
	return ret
}

// CheckEnvVars iterates over all the environment variables and checks if any
// of them look like a CLI flag but is not consumed. This can be used to
// detect e.g. SNAPPER_JOB=4 which was meant to be SNAPPER_JOBS=4.
// CheckEnvVars 检查带有前缀但没有对应标志的环境变量。
func CheckEnvVars(ctx *cli.Context, flags []cli.Flag, prefix string) {
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	known := make(map[string]string)
	for _, f := range flags {
		docflag, ok := f.(cli.DocGenerationFlag)
		if !ok {
			continue
		}
		for _, env := range docflag.GetEnvVars() {
			known[env] = f.Names()[0]
		}
	}
	var unknown []string
	for _, env := range os.Environ() {
		key, _, _ := strings.Cut(env, "=")
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if name, ok := known[key]; ok {
			if !ctx.IsSet(name) {
				log.Info("Config environment variable found", "envvar", key)
			}
			continue
		}
		unknown = append(unknown, key)
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		log.Warn(fmt.Sprintf("Unknown %s-prefixed environment variable", strings.TrimSuffix(prefix, "_")), "envvar", key)
	}
}
