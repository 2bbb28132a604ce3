// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var mockServerCmd = &cobra.Command{
	Use:   "mockserver",
	Short: "Serve generated chart data in the format of the Daisy analysis service",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := cmd.Flags().GetString("addr")
		if err != nil {
			return err
		}
		every, err := cmd.Flags().GetDuration("emit-every")
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return application.RunMockServer(ctx, addr, every)
	},
}

func init() {
	mockServerCmd.Flags().String("addr", "localhost:8000", "listen address")
	mockServerCmd.Flags().Duration("emit-every", 2*time.Second, "interval between live bar updates")
}
