// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vecserve-dev/vecserve/pkg/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether a vecserve server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			c := client.New(client.Config{
				Addr:           cfg.Addr(),
				DialTimeout:    cfg.Client.DialTimeout,
				RequestTimeout: cfg.Client.RequestTimeout,
			})

			if err := c.Ping(cmd.Context()); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "vecserve is running on %s\n", cfg.Addr())
			return err
		},
	}
}
