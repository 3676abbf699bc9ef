// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leynos/concordat-vale/cmd/stilyagi/internal/clierr"
	"github.com/leynos/concordat-vale/internal/acronyms"
)

func newSyncAcronymsCommand(st *state) *cobra.Command {
	var source, script string
	cmd := &cobra.Command{
		Use:   "sync-acronyms",
		Short: "Copy project acronyms into the synced AcronymsFirstUse allow map",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ac := st.cfg.Acronyms
			if cmd.Flags().Changed("source") {
				ac.Source = source
			}
			if cmd.Flags().Changed("script") {
				ac.Script = script
			}
			root := st.projectRoot()
			src := anchorPath(root, ac.Source)
			dst := anchorPath(root, ac.Script)

			tokens, err := acronyms.LoadProjectAcronyms(src)
			if err != nil {
				return clierr.Failure(err)
			}
			res, err := acronyms.UpdateAllowMap(dst, tokens)
			if err != nil {
				return clierr.Failure(err)
			}

			p := st.printer(cmd)
			switch {
			case !res.Wrote:
				p.Note(fmt.Sprintf("%s already up to date", ac.Script))
			case len(res.Managed) == 0:
				p.Success(fmt.Sprintf("Removed project acronyms from %s", ac.Script))
			default:
				p.Success(fmt.Sprintf("Synced %d project acronyms into %s: %s",
					len(res.Managed), ac.Script, strings.Join(res.Managed, ", ")))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", acronyms.DefaultSource, "project acronym list, one per line")
	cmd.Flags().StringVar(&script, "script", acronyms.DefaultScript, "synced Tengo script holding the allow map")
	return cmd
}

func anchorPath(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
