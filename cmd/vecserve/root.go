// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vecserve Contributors

package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vecserve-dev/vecserve/internal/config"
	vecerr "github.com/vecserve-dev/vecserve/pkg/errors"
)

// NewRootCmd creates the root vecserve command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vecserve",
		Short:         "Minimal in-memory vector store",
		Long:          "Vecserve embeds and indexes text chunks in memory and serves similarity search over a length-prefixed TCP protocol.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initViper(cmd)
		},
	}

	// Global flags map to viper keys via initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("host", "", "server host")
	root.PersistentFlags().IntP("port", "p", 0, "server port")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	// Register subcommands
	root.AddCommand(
		newServeCmd(),
		newStoreCmd(),
		newSearchCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up the global Viper with defaults, env bindings, flag
// bindings, and optional config file so the standard precedence
// (flag > env > file > defaults) is handled uniformly.
func initViper(cmd *cobra.Command) error {
	v := viper.GetViper()

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return vecerr.Errorf(vecerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// Auto-discover vecserve.yaml from standard locations.
		v.SetConfigName("vecserve")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/vecserve")
		v.AddConfigPath("/etc/vecserve")
		// No config file is fine; defaults and env vars still apply.
		// Parse or permission errors must surface.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return vecerr.Errorf(vecerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			// No config found anywhere: bootstrap a default to ~/.config/vecserve/.
			if path := config.BootstrapConfig(); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return vecerr.Errorf(vecerr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
				}
			}
		}
	}

	// Bind persistent flags to viper keys.
	flags := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{
		"server.host": "host",
		"server.port": "port",
		"verbose":     "verbose",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return vecerr.Errorf(vecerr.CodeCLIInputInvalid, "binding %s flag: %w", flag, err)
		}
	}

	return nil
}

// loadConfig resolves the effective configuration from the global viper
// state: file, environment, and any flag overrides.
func loadConfig() (*config.Config, error) {
	v := viper.GetViper()

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, vecerr.Errorf(vecerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, vecerr.Errorf(vecerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}
