package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/pcodec/internal/config"
	"github.com/danmuck/pcodec/internal/dispatch"
	"github.com/danmuck/pcodec/internal/observability"
	"github.com/danmuck/pcodec/internal/protocol"
	"github.com/danmuck/pcodec/internal/protocol/catalog"
	"github.com/danmuck/pcodec/internal/render"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	Catalog string
	Format  string
	Verbose bool

	format render.Format
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pcodecctl",
		Short: "Encode and decode DPA peripheral command frames",
		Long: `pcodecctl encodes and decodes DPA frames against a command catalog.

The built-in catalog covers the coordinator, node, OS and LED peripherals.
Use --catalog or $` + config.EnvCatalog + ` to load a TOML or YAML catalog instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(opts.Format)
			if err != nil {
				return err
			}
			opts.format = f
			observability.InitLogger("pcodecctl")
			if opts.Verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", os.Getenv(config.EnvCatalog), "catalog file (.toml|.yaml); empty uses the built-in catalog")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", string(render.FormatText), "output format (text|json|cbor)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")

	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newEncodeCommand(opts))
	cmd.AddCommand(newDecodeCommand(opts))
	cmd.AddCommand(newValidateCommand(opts))
	cmd.AddCommand(newTemplateCommand(opts))
	cmd.AddCommand(newExportCommand(opts))

	return cmd
}

// registry returns the catalog named by --catalog, or the built-in table.
func (o *rootOptions) registry() (*protocol.Registry, error) {
	path := strings.TrimSpace(o.Catalog)
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	reg, err := cat.Build()
	if err != nil {
		return nil, fmt.Errorf("build catalog %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("schemas", reg.Len()).Msg("catalog loaded")
	return reg, nil
}

func (o *rootOptions) dispatcher() (*dispatch.Dispatcher, error) {
	reg, err := o.registry()
	if err != nil {
		return nil, err
	}
	return dispatch.New(reg), nil
}

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered command schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			return render.Schemas(cmd.OutOrStdout(), reg.Schemas(), opts.format)
		},
	}
}

func newValidateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <catalog>",
		Short: "Load and check a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := config.Load(args[0])
			if err != nil {
				return err
			}
			reg, err := cat.Build()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d schemas ok\n", args[0], reg.Len())
			return err
		},
	}
}
