package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fbbridge/pkg/protocol"
)

var version = "dev"

// Options holds CLI options shared by the UI subcommands.
type Options struct {
	ConfigPath string
	Transport  string
	Dial       string
	Format     string
	Wait       time.Duration
	Init       bool
}

func newRootCommand() *cobra.Command {
	var opts Options

	root := &cobra.Command{
		Use:   "fbbridge-ui",
		Short: "Scriptable UI side of the Firebase panel bridge",
		Long: `fbbridge-ui connects to a running fbbridge-host the way the panel does.
It can send single requests and print the notifications the host pushes.`,
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to YAML config file")
	pf.StringVar(&opts.Transport, "transport", "", "Link kind: tcp, quic, winpipe or mem")
	pf.StringVar(&opts.Dial, "dial", "", "Host address")
	pf.StringVar(&opts.Format, "format", "", "Wire format: json, cbor or proto")

	send := &cobra.Command{
		Use:   "send <kind> [json]",
		Short: "Send one request and print its notification",
		Example: `  fbbridge-ui send getUsers
  fbbridge-ui send logout '{"email":"dev@example.com"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload []byte
			if len(args) == 2 {
				payload = []byte(args[1])
			}
			return runSend(cmd.Context(), opts, protocol.Kind(args[0]), payload, cmd.OutOrStdout())
		},
	}
	send.Flags().DurationVar(&opts.Wait, "wait", 10*time.Second, "How long to wait for a notification")

	watch := &cobra.Command{
		Use:   "watch",
		Short: "Print every notification until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	watch.Flags().BoolVar(&opts.Init, "init", false, "Request the initial view state after connecting")

	kinds := &cobra.Command{
		Use:   "kinds",
		Short: "List request kinds and the notifications they produce",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, k := range protocol.Kinds(protocol.UIToHost) {
				resp, _ := protocol.Responses(k)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%v\n", k, resp)
			}
		},
	}

	root.AddCommand(send, watch, kinds, &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return root
}
