// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package cmd

import (
	"context"
	"os"
	"time"

	"daisychart/initapp"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the configured chart to a PNG file",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}
		opts := initapp.RenderOptions{}
		if opts.Width, err = cmd.Flags().GetInt("width"); err != nil {
			return err
		}
		if opts.Height, err = cmd.Flags().GetInt("height"); err != nil {
			return err
		}
		if opts.Scale, err = cmd.Flags().GetFloat32("scale"); err != nil {
			return err
		}
		if opts.Ticker, err = cmd.Flags().GetString("ticker"); err != nil {
			return err
		}
		if opts.Interval, err = cmd.Flags().GetString("interval"); err != nil {
			return err
		}
		if opts.Period, err = cmd.Flags().GetString("period"); err != nil {
			return err
		}
		timeout, err := cmd.Flags().GetDuration("timeout")
		if err != nil {
			return err
		}

		if err := opts.Validate(); err != nil {
			return err
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err = application.RenderPng(ctx, f, opts)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(out)
		}
		return err
	},
}

func init() {
	renderCmd.Flags().String("out", "chart.png", "output file")
	renderCmd.Flags().Int("width", 1200, "width in device independent pixels")
	renderCmd.Flags().Int("height", 800, "height in device independent pixels")
	renderCmd.Flags().Float32("scale", 1, "pixels per device independent pixel")
	renderCmd.Flags().String("ticker", "", "ticker, overrides the configuration")
	renderCmd.Flags().String("interval", "", "bar interval, overrides the configuration")
	renderCmd.Flags().String("period", "", "look-back period such as 5d or 1y, overrides the configuration")
	renderCmd.Flags().Duration("timeout", 30*time.Second, "data request timeout")
}
