package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/pcodec/internal/dispatch"
	"github.com/danmuck/pcodec/internal/protocol"
	"github.com/danmuck/pcodec/internal/protocol/frame"
	"github.com/danmuck/pcodec/internal/render"
	"github.com/spf13/cobra"
)

type encodeOptions struct {
	name       string
	peripheral uint8
	command    uint8
	response   bool
	rcode      uint8
	dpaValue   uint8
	nadr       uint16
	hwpid      uint16
}

func newEncodeCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &encodeOptions{}

	cmd := &cobra.Command{
		Use:   "encode [name=value...]",
		Short: "Encode a DPA frame and print it as hex",
		Example: `  pcodecctl encode --peripheral 0 --command 4 req_addr=5 bonding_mask=0
  pcodecctl encode --name coordinator.set_hops --response request_hops=255 response_hops=255`,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(args)
			if err != nil {
				return err
			}
			d, err := rootOpts.dispatcher()
			if err != nil {
				return err
			}
			if err := opts.resolve(cmd, d.Registry()); err != nil {
				return err
			}
			var out []byte
			if opts.response {
				out, err = d.EncodeResponse(opts.nadr, opts.hwpid, opts.peripheral, opts.command, opts.rcode, opts.dpaValue, values)
			} else {
				out, err = d.EncodeRequest(opts.nadr, opts.hwpid, opts.peripheral, opts.command, values)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(out))
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.name, "name", "", "schema name; replaces --peripheral and --command")
	flags.Uint8Var(&opts.peripheral, "peripheral", 0, "peripheral number (PNUM)")
	flags.Uint8Var(&opts.command, "command", 0, "command number (PCMD) without the response flag")
	flags.BoolVar(&opts.response, "response", false, "encode the response shape")
	flags.Uint8Var(&opts.rcode, "rcode", frame.RcodeOK, "response code")
	flags.Uint8Var(&opts.dpaValue, "dpa-value", 0, "response DPA value byte")
	flags.Uint16Var(&opts.nadr, "nadr", frame.AddrCoordinator, "node address")
	flags.Uint16Var(&opts.hwpid, "hwpid", frame.HWPIDAny, "hardware profile id")

	return cmd
}

// resolve fills peripheral and command from --name when it is set.
func (o *encodeOptions) resolve(cmd *cobra.Command, reg *protocol.Registry) error {
	dir := protocol.Request
	if o.response {
		dir = protocol.Response
	}
	if o.name != "" {
		s, ok := reg.Find(o.name, dir)
		if !ok {
			return fmt.Errorf("no %s schema named %q", dir, o.name)
		}
		o.peripheral = s.Peripheral()
		o.command = s.Command()
		return nil
	}
	if !cmd.Flags().Changed("peripheral") || !cmd.Flags().Changed("command") {
		return errors.New("either --name or both --peripheral and --command are required")
	}
	return nil
}

// parseAssignments reads name=value pairs. Values accept 0x, 0o and 0b
// prefixes.
func parseAssignments(args []string) (protocol.Values, error) {
	values := make(protocol.Values, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q: want name=value", arg)
		}
		if _, dup := values[name]; dup {
			return nil, fmt.Errorf("field %q assigned twice", name)
		}
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		values[name] = v
	}
	return values, nil
}

func newDecodeCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode a hex DPA frame",
		Long: `Decode a hex DPA frame. Spaces, colons and dashes between bytes are ignored.
A response with a failing RCODE prints its header and exits with an error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseHex(strings.Join(args, ""))
			if err != nil {
				return err
			}
			d, err := rootOpts.dispatcher()
			if err != nil {
				return err
			}
			msg, err := d.DecodeFrame(raw)
			var status *dispatch.StatusError
			if errors.As(err, &status) {
				if rerr := render.Message(cmd.OutOrStdout(), status.Message, rootOpts.format); rerr != nil {
					return rerr
				}
				return err
			}
			if err != nil {
				return err
			}
			return render.Message(cmd.OutOrStdout(), msg, rootOpts.format)
		},
	}
}

func parseHex(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", ":", "", "-", "", "\t", "").Replace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex frame: %w", err)
	}
	return b, nil
}
