// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-getter/v2"
)

// ErrFetchConfigFile is returned when a remote rc file cannot be fetched.
var ErrFetchConfigFile = errors.New("failed to fetch config file")

// Fetch retrieves a single file using Hashicorp's go-getter syntax.
// The temporary download is removed before returning.
func Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, ErrFetchConfigFile
	}

	tmpDir, err := os.MkdirTemp("", "tinsh-getter-*")
	if err != nil {
		return nil, errors.Join(ErrFetchConfigFile, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrFetchConfigFile, err)
	}

	cli := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     url,
		Dst:     filepath.Join(tmpDir, "rc.yaml"),
		Pwd:     wd,
		GetMode: getter.ModeFile,
		Copy:    true,
	}

	res, err := cli.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrFetchConfigFile, err)
	}

	data, err := os.ReadFile(res.Dst)
	if err != nil {
		return nil, errors.Join(ErrFetchConfigFile, err)
	}

	return data, nil
}
