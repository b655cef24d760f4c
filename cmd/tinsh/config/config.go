// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config implements the config subcommand.
package config

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/tinsh/internal/config"
	"github.com/urfave/cli/v3"
)

const urlArg = "url"

// ConfigCmd prints the effective rc configuration as YAML.
var ConfigCmd = &cli.Command{
	Name:  "config",
	Usage: "Print the effective configuration as YAML",
	Description: `Load the rc file and print the configuration tinsh would start with.
Without a URL the default rc file in the home directory is used.
URLs use Hashicorp's go-getter syntax. See https://github.com/hashicorp/go-getter.`,
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      urlArg,
			UsageText: "[URL]",
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(ctx, cmd.StringArg(urlArg))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	data, err := cfg.Marshal()
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to encode config: %s", err), 1)
	}

	if _, err := cmd.Root().Writer.Write(data); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	return nil
}
