package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write every page as YAML to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := startApp(cmd.Context(), flags.configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			pages, err := a.svc.Client().FetchAllPagesData(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "fetch pages")
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(pages); err != nil {
				return errors.Wrap(err, "encode pages")
			}
			return enc.Close()
		},
	}
}
