// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leynos/concordat-vale/cmd/stilyagi/internal/clierr"
)

func newVersionCommand(st *state) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of stilyagi",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := st.printer(cmd)
			p.Plain(fmt.Sprintf("stilyagi version %s", st.deps.Version))
			if !check {
				return nil
			}

			res, err := st.deps.CheckLatest(st.deps.Version)
			if err != nil {
				return clierr.Failure(fmt.Errorf("checking for updates: %w", err))
			}
			if res.Outdated {
				p.Warn(fmt.Sprintf("A new version is available: %s (you have %s)", res.Current, st.deps.Version))
				p.Note("Download it from https://github.com/leynos/concordat-vale/releases")
				return nil
			}
			p.Success("You are using the latest version")
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	return cmd
}

// noArgs rejects positional arguments with a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	return clierr.Usage(cobra.NoArgs(cmd, args))
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return clierr.Usage(cobra.ExactArgs(n)(cmd, args))
	}
}
