// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package cmd

import (
	"context"
	"os"

	"gioui.org/app"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the live chart window",
	Run: func(cmd *cobra.Command, args []string) {
		go func() {
			code := 0
			if err := application.RunViewer(context.Background()); err != nil {
				log.WithError(err).Error("viewer terminated")
				code = 1
			}
			application.Terminate()
			os.Exit(code)
		}()
		app.Main()
	},
}
