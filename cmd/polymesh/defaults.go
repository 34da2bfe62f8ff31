package main

import (
	"github.com/chazu/polymesh/pkg/config"
	"github.com/spf13/cobra"
)

func newDefaultsCmd(root *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print the builder defaults in effect",
		Long:  "Print the builder defaults in effect, after applying --config, as TOML or YAML.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := root.defaults()
			if err != nil {
				return err
			}
			out, err := config.Marshal(d, config.Format(format))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", string(config.FormatTOML), "output format: toml or yaml")
	return cmd
}
