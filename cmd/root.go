// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package cmd

import (
	"daisychart/config"
	"daisychart/initapp"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var application *initapp.InitApp

var rootCmd = &cobra.Command{
	Use:           config.AppName,
	Short:         "Live financial charts of the Daisy analysis service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		logLevel, err := cmd.Flags().GetString("log-level")
		if err != nil {
			return err
		}
		config.LoadEnv(".env")
		application = initapp.NewInitApp(config.NewGlobalConfigInDir(configDir))
		return application.Initialize(logLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			application.Terminate()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "configuration directory (default: user config dir)")
	rootCmd.PersistentFlags().String("log-level", "", "log level, overrides the configuration")
	rootCmd.AddCommand(viewCmd, renderCmd, mockServerCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%s: %v", config.AppName, err)
	}
}
