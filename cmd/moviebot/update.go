package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/VivekPatel4/movie-search-bot/config"
	"github.com/VivekPatel4/movie-search-bot/internal/catalog"
	"github.com/VivekPatel4/movie-search-bot/internal/resolver"
)

func updateDomainsCMD() *cobra.Command {
	var cfgPath string
	var update = &cobra.Command{
		Use:   "update-domains",
		Short: "Run one domain resolution pass and persist the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			ctx, cancel := signalContext()
			defer cancel()

			store := catalog.NewFileStore(cfg.Storage.DomainsFile)
			res := resolver.New(cfg.Resolver, store, nil)
			resolved, err := res.Run(ctx)
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(resolved, "", "    ")
			fmt.Fprintf(os.Stdout, "%s updated:\n%s\n", cfg.Storage.DomainsFile, out)
			return nil
		},
	}
	update.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return update
}

func resolveCMD() *cobra.Command {
	var cfgPath string
	var resolve = &cobra.Command{
		Use:   "resolve <url>",
		Short: "Resolve one URL through the browser and print the final URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			ctx, cancel := signalContext()
			defer cancel()

			store := catalog.NewFileStore(cfg.Storage.DomainsFile)
			res := resolver.New(cfg.Resolver, store, nil)
			fmt.Fprintln(os.Stdout, res.ResolveFinalURL(ctx, args[0]))
			return nil
		},
	}
	resolve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return resolve
}
