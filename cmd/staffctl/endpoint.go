package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newEndpointCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoint",
		Short: "Show or override the remote staff endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			active := c.store.ResolveEndpoint(cmd.Context())
			if active == "" {
				active = "(none, local only)"
			}
			override := c.resolver.Override(cmd.Context())
			if override == "" {
				override = "(none)"
			}
			fmt.Fprintf(out, "active:   %s\n", active)
			fmt.Fprintf(out, "override: %s\n", override)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <url>",
		Short: "Store an endpoint override",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.store.SetOverride(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "endpoint override set to %s\n", args[0])
			return nil
		},
	}, &cobra.Command{
		Use:   "clear",
		Short: "Remove the endpoint override",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.store.SetOverride(cmd.Context(), ""); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "endpoint override cleared")
			return nil
		},
	})
	return cmd
}

func newResetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the local cache and the endpoint override",
		Long: `Clear the locally cached staff list, its timestamp and the endpoint
override. The remote list is not touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.store.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "local staff data cleared")
			return nil
		},
	}
}

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the endpoint and local cache state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			active := c.store.ResolveEndpoint(ctx)
			if active == "" {
				active = "(none, local only)"
			}
			fmt.Fprintf(out, "Endpoint: %s\n", active)
			fmt.Fprintf(out, "Cache:    %s\n", c.cachePath)

			cached := c.store.Load(ctx, false)
			fmt.Fprintf(out, "Cached:   %d staff\n", len(cached))
			if at, ok := c.store.CachedAt(ctx); ok {
				fmt.Fprintf(out, "Updated:  %s (%s ago)\n", at.Local().Format("2006-01-02 15:04:05"),
					time.Since(at).Round(time.Second))
			} else {
				fmt.Fprintln(out, "Updated:  never")
			}
			return nil
		},
	}
}
