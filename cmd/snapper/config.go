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
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"unicode"

	"github.com/naoina/toml"
	"github.com/snapper-build/snapper/cmd/utils"
	"github.com/snapper-build/snapper/config"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Export the effective project configuration",
	ArgsUsage:   "[dumpfile]",
	Flags:       []cli.Flag{utils.ConfigFileFlag},
	Description: `Loads the project file, fills in the default profiles and writes the result as TOML.`,
}

// These settings ensure that TOML keys without a tag use the same names as
// Go struct fields, and that unknown keys are rejected.
// tomlSettings 保证未标注的 TOML 键与 Go 字段同名，并拒绝未知键。
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// loadConfig reads a project file. YAML is selected by the file extension,
// everything else is decoded as TOML.
// loadConfig 读取项目文件，按扩展名选择 YAML，其余按 TOML 解码。
func loadConfig(file string) (*config.ProjectConfig, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Profiles start out empty so that a profile table in the file replaces
	// the preset instead of being merged into it.
	cfg := config.Defaults("")
	cfg.Solidity.Profiles = nil

	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bufio.NewReader(f))
		dec.KnownFields(true)
		if err = dec.Decode(&cfg); err != nil {
			err = fmt.Errorf("%s, %v", file, err)
		}
	default:
		err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg)
		// Add file name to errors that have a line number.
		if _, ok := err.(*toml.LineError); ok {
			err = errors.New(file + ", " + err.Error())
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return &cfg, nil
}

// contractsDir returns the source directory. The --contracts flag is taken
// relative to the working directory, the project setting relative to the
// project file.
// contractsDir 返回源码目录：命令行参数相对工作目录，项目设置相对项目文件。
func contractsDir(ctx *cli.Context, file string, cfg *config.ProjectConfig) string {
	if dir := ctx.String(utils.ContractsDirFlag.Name); dir != "" {
		return dir
	}
	if filepath.IsAbs(cfg.Project.Contracts) {
		return cfg.Project.Contracts
	}
	return filepath.Join(filepath.Dir(file), cfg.Project.Contracts)
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx.String(utils.ConfigFileFlag.Name))
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(cfg)
	if err != nil {
		return err
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	dump.WriteString("# Effective snapper project configuration\n\n")
	dump.Write(out)

	return nil
}
