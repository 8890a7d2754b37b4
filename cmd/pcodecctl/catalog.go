package main

import (
	"fmt"
	"strings"

	"github.com/danmuck/pcodec/internal/config"
	"github.com/spf13/cobra"
)

func newTemplateCommand(_ *rootOptions) *cobra.Command {
	var (
		kind   string
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Print or write a starter catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(output) == "" {
				body, err := config.Template(kind)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			if err := config.WriteTemplate(output, kind, force); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return err
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(config.FormatTOML), "template format (toml|yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to path instead of stdout")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the active catalog as TOML or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			format := config.Format(strings.ToLower(strings.TrimSpace(kind)))
			if format == "yml" {
				format = config.FormatYAML
			}
			data, err := config.Marshal(config.FromRegistry(reg), format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(config.FormatTOML), "output format (toml|yaml)")
	return cmd
}
