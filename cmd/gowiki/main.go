package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "gowiki",
		Short:         "A small Markdown wiki backed by a SQL page store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "path to a config file (yaml, toml or json)")

	serve := newServeCmd(flags)
	root.AddCommand(serve, newExportCmd(flags))

	// Running the binary without a subcommand starts the server.
	root.RunE = serve.RunE
	return root
}
