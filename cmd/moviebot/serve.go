package main

import (
	"github.com/spf13/cobra"

	"github.com/VivekPatel4/movie-search-bot/config"
	"github.com/VivekPatel4/movie-search-bot/internal/server"
)

func serveCMD() *cobra.Command {
	var cfgPath string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, HTTP API and background domain updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			ctx, cancel := signalContext()
			defer cancel()
			return server.Run(ctx, cfg)
		},
	}
	serve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return serve
}
