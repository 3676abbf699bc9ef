// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"github.com/spf13/cobra"

	"github.com/leynos/concordat-vale/cmd/stilyagi/internal/clierr"
	"github.com/leynos/concordat-vale/internal/install"
	"github.com/leynos/concordat-vale/internal/manifest"
)

func newInstallCommand(st *state) *cobra.Command {
	var (
		valeIni, makefile, version, tag, stepCommand string
		skipManifest                                 bool
	)
	cmd := &cobra.Command{
		Use:   "install <owner/name>",
		Short: "Install a published style into this repository",
		Long: `Install a style released on GitHub into the project.

The project's .vale.ini gains the release archive under Packages plus the
managed sections, the Makefile gains a vale target that syncs and lints, and
the StylesPath directory is added to .gitignore.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := install.ParseRepoReference(args[0])
			if err != nil {
				return clierr.Usage(err)
			}

			ic := st.cfg.Install
			fs := cmd.Flags()
			if fs.Changed("vale-ini") {
				ic.ValeIni = valeIni
			}
			if fs.Changed("makefile") {
				ic.Makefile = makefile
			}
			if fs.Changed("release-version") {
				ic.ReleaseVersion = version
			}
			if fs.Changed("tag") {
				ic.ReleaseTag = tag
			}
			if fs.Changed("skip-manifest-download") {
				ic.SkipManifest = skipManifest
			}
			if fs.Changed("step-command") {
				ic.StepCommand = stepCommand
			}

			paths, err := install.ResolvePaths(st.cwd, st.cfg.ProjectRoot, ic.ValeIni, ic.Makefile)
			if err != nil {
				return clierr.Failure(err)
			}

			in := install.New(st.deps.Releases(st.cfg.GitHubToken), st.log.Named("install"))
			res, err := in.Install(cmd.Context(), install.Options{
				Repo:         repo,
				Paths:        paths,
				Version:      ic.ReleaseVersion,
				Tag:          ic.ReleaseTag,
				SkipManifest: ic.SkipManifest,
				StepCommand:  ic.StepCommand,
			})
			if err != nil {
				return clierr.Failure(err)
			}

			p := st.printer(cmd)
			p.Success(res.Message(repo, paths))
			if res.GitignoreEntry == "" {
				p.Note("StylesPath is outside the project; .gitignore left unchanged")
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&valeIni, "vale-ini", ".vale.ini", "Vale configuration file to update")
	fs.StringVar(&makefile, "makefile", "Makefile", "Makefile that should expose the vale target")
	fs.StringVar(&version, "release-version", "", "install this version instead of the latest release (tag v<version> unless --tag is set)")
	fs.StringVar(&tag, "tag", "", "release tag used in the download URL")
	fs.BoolVar(&skipManifest, "skip-manifest-download", false, "use default manifest values without downloading the archive")
	fs.StringVar(&stepCommand, "step-command", manifest.DefaultCommand, "command prefix for post-sync steps written to the Makefile")
	return cmd
}
