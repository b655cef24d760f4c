// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package builtins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const (
	envHome = "HOME"
	envPwd  = "PWD"
)

// RegisterDir registers cd and pwd.
func RegisterDir(r Registry) {
	r.Register(Builtin{Name: "cd", Desc: "Change directory", Run: Cd})
	r.Register(Builtin{Name: "pwd", Desc: "Print the working directory", Run: Pwd})
}

// Cd changes the working directory and updates PWD. Without an argument it goes to HOME.
func Cd(_ context.Context, h Host, args []string) Status {
	var dest string

	switch len(args) {
	case 1:
		dest = os.Getenv(envHome)
		if dest == "" {
			h.Reporter().Errorf("%s: no HOME environment variable found.", args[0])
			return Error
		}
	case 2:
		dest = args[1]
	default:
		h.Reporter().Errorf("%s: too many arguments", args[0])
		return Error
	}

	abs, err := filepath.Abs(dest)
	if err == nil {
		abs, err = filepath.EvalSymlinks(abs)
	}

	if err == nil {
		err = os.Chdir(abs)
	}

	if err != nil {
		h.Reporter().Error(args[0], err)
		return Error
	}

	if err := os.Setenv(envPwd, abs); err != nil {
		h.Reporter().Error(args[0], err)
		return Error
	}

	return OK
}

// Pwd prints PWD, falling back to the real working directory when PWD is unset.
func Pwd(_ context.Context, h Host, args []string) Status {
	wd := os.Getenv(envPwd)
	if wd == "" {
		var err error

		wd, err = os.Getwd()
		if err != nil {
			h.Reporter().Error(args[0], err)
			return Error
		}
	}

	fmt.Fprintln(h.Stdout(), wd) //nolint:errcheck

	return OK
}
