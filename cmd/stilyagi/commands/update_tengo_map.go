// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leynos/concordat-vale/cmd/stilyagi/internal/clierr"
	"github.com/leynos/concordat-vale/internal/pathsafe"
	"github.com/leynos/concordat-vale/internal/tengomap"
)

var _ pflag.Value = (*tengomap.Mode)(nil)

func newUpdateTengoMapCommand(st *state) *cobra.Command {
	var (
		source, dest string
		mode         = tengomap.ModePresence
	)
	cmd := &cobra.Command{
		Use:   "update-tengo-map [source] [dest[::map]]",
		Short: "Merge entries from a list file into a Tengo map literal",
		Long: `Merge entries from a source list into a map literal inside a Tengo script.

The destination is a .tengo file under the project root; append ::name to
target a map other than "` + pathsafe.DefaultMapName + `". --type selects how
source lines are read:

  true  each line is a key mapped to true
  =     key=value, value kept as a string
  =b    key=value, value parsed as a boolean
  =n    key=value, value parsed as a number`,
		Args: func(cmd *cobra.Command, args []string) error {
			return clierr.Usage(cobra.MaximumNArgs(2)(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && source == "" {
				source = args[0]
			}
			if len(args) > 1 && dest == "" {
				dest = args[1]
			}
			if source == "" || dest == "" {
				return clierr.Usagef("both --source and --dest are required")
			}

			root := st.projectRoot()
			srcPath, err := pathsafe.Resolve(root, source)
			if err != nil {
				return pathError("source", err)
			}
			destRel, mapName, err := pathsafe.SplitDest(dest)
			if err != nil {
				return clierr.Usage(err)
			}
			destPath, err := pathsafe.Resolve(root, destRel, ".tengo")
			if err != nil {
				return pathError("dest", err)
			}

			provided, entries, err := tengomap.ParseSourceFile(srcPath, mode)
			if err != nil {
				return clierr.Failure(err)
			}
			st.log.Debug("updating map", "script", destPath, "map", mapName, "entries", entries.Len())

			res, err := tengomap.UpdateFile(destPath, mapName, entries)
			if err != nil {
				return clierr.Failure(err)
			}
			st.printer(cmd).Plain(fmt.Sprintf("%d entries provided, %d updated", provided, res.Updated))
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&source, "source", "", "file listing the entries to merge")
	fs.StringVar(&dest, "dest", "", "Tengo script path, optionally suffixed with ::map")
	fs.Var(&mode, "type", "value parsing mode: true, =, =b or =n")
	return cmd
}

func pathError(which string, err error) error {
	err = fmt.Errorf("%s: %w", which, err)
	if errors.Is(err, pathsafe.ErrNotFile) {
		return clierr.Failure(err)
	}
	return clierr.Usage(err)
}
