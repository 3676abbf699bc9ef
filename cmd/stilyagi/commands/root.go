// SPDX-License-Identifier: AGPL-3.0-or-later

/*
stilyagi - packages Concordat Vale styles and wires them into other
repositories.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.
*/

package commands

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/tcnksm/go-latest"

	"github.com/leynos/concordat-vale/cmd/stilyagi/internal/clierr"
	"github.com/leynos/concordat-vale/internal/config"
	"github.com/leynos/concordat-vale/internal/install"
	"github.com/leynos/concordat-vale/internal/logging"
	"github.com/leynos/concordat-vale/internal/release"
	"github.com/leynos/concordat-vale/internal/ui"
)

// Version is stamped at build time with -ldflags.
var Version = "0.0.0-dev"

// Deps are the process-level inputs commands read. Tests swap them out.
type Deps struct {
	Version string
	Getenv  config.LookupFunc
	Getwd   func() (string, error)

	// Releases builds the release source used by install.
	Releases func(token string) install.ReleaseSource

	// CheckLatest asks whether a newer stilyagi release exists.
	CheckLatest func(current string) (*latest.CheckResponse, error)
}

// DefaultDeps reads the real environment and talks to GitHub.
func DefaultDeps() Deps {
	return Deps{
		Version:  Version,
		Getenv:   os.LookupEnv,
		Getwd:    os.Getwd,
		Releases: func(token string) install.ReleaseSource { return release.NewClient(token) },
		CheckLatest: func(current string) (*latest.CheckResponse, error) {
			return latest.Check(&latest.GithubTag{Owner: "leynos", Repository: "concordat-vale"}, current)
		},
	}
}

// state is shared by every subcommand once the root pre-run has loaded
// configuration.
type state struct {
	deps    Deps
	cfg     config.Config
	log     hclog.Logger
	cwd     string
	verbose bool
}

// projectRoot returns the configured root anchored at the working directory.
func (s *state) projectRoot() string {
	root := s.cfg.ProjectRoot
	if filepath.IsAbs(root) {
		return filepath.Clean(root)
	}
	return filepath.Join(s.cwd, root)
}

func (s *state) printer(cmd *cobra.Command) *ui.Printer {
	return ui.NewPrinter(cmd.OutOrStdout())
}

// NewRootCmd constructs the stilyagi root command.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWith(DefaultDeps())
}

// NewRootCmdWith constructs the root command over deps.
func NewRootCmdWith(deps Deps) *cobra.Command {
	st := &state{deps: deps}
	var (
		configPath  string
		projectRoot string
	)

	cmd := &cobra.Command{
		Use:           "stilyagi",
		Short:         "Utilities for packaging and distributing Vale styles",
		Long:          "stilyagi packages Vale styles into release archives, installs them into other repositories and keeps Tengo allow maps in sync.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cwd, err := st.deps.Getwd()
			if err != nil {
				return clierr.Failure(err)
			}
			st.cwd = cwd

			path, required := configPath, configPath != ""
			if !required {
				path = config.DefaultFile
			}
			if !filepath.IsAbs(path) {
				path = filepath.Join(cwd, path)
			}
			cfg, err := config.Load(path, required, st.deps.Getenv)
			if err != nil {
				return clierr.Usage(err)
			}
			if cmd.Flags().Changed("project-root") {
				cfg.ProjectRoot = projectRoot
			}
			st.cfg = cfg
			st.log = logging.New(st.verbose, cmd.ErrOrStderr())
			st.log.Debug("configuration loaded", "file", path, "project_root", st.projectRoot())
			return nil
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Usage(err)
	})

	cmd.PersistentFlags().BoolVarP(&st.verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a stilyagi YAML config file (default ./"+config.DefaultFile+")")
	cmd.PersistentFlags().StringVar(&projectRoot, "project-root", ".", "root directory for resolving relative paths")

	cmd.AddCommand(newVersionCommand(st))
	cmd.AddCommand(newZipCommand(st))
	cmd.AddCommand(newInstallCommand(st))
	cmd.AddCommand(newUpdateTengoMapCommand(st))
	cmd.AddCommand(newSyncAcronymsCommand(st))

	return cmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
