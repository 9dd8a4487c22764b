package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var version = "dev"

// Options holds CLI options for the host.
type Options struct {
	ConfigPath  string
	Transport   string
	Listen      []string
	Format      string
	DebugListen string
}

func newRootCommand() *cobra.Command {
	var opts Options

	root := &cobra.Command{
		Use:   "fbbridge-host",
		Short: "Host side of the Firebase panel bridge",
		Long: `fbbridge-host serves the privileged side of the panel bridge. It accepts
UI connections, answers their requests with notifications and owns the
emulator process lifecycle.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to YAML config file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Accept UI connections until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	serve.Flags().StringVar(&opts.Transport, "transport", "", "Link kind: tcp, quic, winpipe or mem")
	serve.Flags().StringSliceVar(&opts.Listen, "listen", nil, "Listen address (repeatable)")
	serve.Flags().StringVar(&opts.Format, "format", "", "Wire format: json, cbor or proto")
	serve.Flags().StringVar(&opts.DebugListen, "debug-listen", "", "Address for /healthz, /metrics and /v1/lifecycle")

	root.AddCommand(serve, &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return root
}
