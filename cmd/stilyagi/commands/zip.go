// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/leynos/concordat-vale/cmd/stilyagi/internal/clierr"
	"github.com/leynos/concordat-vale/internal/config"
	"github.com/leynos/concordat-vale/internal/packaging"
)

func newZipCommand(st *state) *cobra.Command {
	var (
		flags   = packagingFlags{}
		force   bool
		version string
	)
	cmd := &cobra.Command{
		Use:   "zip",
		Short: "Package styles into a distributable ZIP archive",
		Long: `Package styles into a ZIP archive named <styles>-<version>.zip.

The archive carries a .vale.ini pointing StylesPath at the packaged styles,
the project's stilyagi.toml when present, and every file of the selected
styles plus the shared config directory.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			zc := st.cfg.Zip
			flags.apply(cmd, &zc)
			if cmd.Flags().Changed("archive-version") {
				zc.Version = version
			}

			root := st.projectRoot()
			v, err := packaging.ResolveVersion(root, zc.Version)
			if err != nil {
				return clierr.Failure(err)
			}
			st.log.Debug("packaging styles", "root", root, "styles_path", zc.StylesPath, "version", v)

			archive, err := packaging.Package(
				packaging.Paths{ProjectRoot: root, StylesPath: zc.StylesPath, OutputDir: zc.OutputDir},
				packaging.Options{
					Styles:        zc.Styles,
					Vocabulary:    zc.Vocabulary,
					IniStylesPath: zc.IniStylesPath,
					Exclude:       zc.Exclude,
				},
				v, force,
			)
			if err != nil {
				return zipError(err)
			}
			st.printer(cmd).Plain(archive)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&version, "archive-version", "", "version embedded in the archive name (default: pyproject.toml version)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing archive")
	return cmd
}

type packagingFlags struct {
	stylesPath    string
	outputDir     string
	styles        []string
	vocabulary    string
	iniStylesPath string
	exclude       []string
}

func (f *packagingFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.stylesPath, "styles-path", packaging.DefaultStylesPath, "styles directory relative to the project root")
	fs.StringVar(&f.outputDir, "output-dir", packaging.DefaultOutputDir, "directory for generated archives")
	fs.StringSliceVar(&f.styles, "style", nil, "style directory to include (repeatable; default: all)")
	fs.StringVar(&f.vocabulary, "vocabulary", "", "vocabulary name recorded in the archive's .vale.ini")
	fs.StringVar(&f.iniStylesPath, "ini-styles-path", packaging.DefaultIniStylesPath, "StylesPath recorded in the archive's .vale.ini")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "doublestar pattern of style files to leave out (repeatable)")
}

// apply copies explicitly set flags over the configured values.
func (f *packagingFlags) apply(cmd *cobra.Command, zc *config.Zip) {
	fs := cmd.Flags()
	if fs.Changed("styles-path") {
		zc.StylesPath = f.stylesPath
	}
	if fs.Changed("output-dir") {
		zc.OutputDir = f.outputDir
	}
	if fs.Changed("style") {
		zc.Styles = f.styles
	}
	if fs.Changed("vocabulary") {
		zc.Vocabulary = f.vocabulary
	}
	if fs.Changed("ini-styles-path") {
		zc.IniStylesPath = f.iniStylesPath
	}
	if fs.Changed("exclude") {
		zc.Exclude = f.exclude
	}
}

func zipError(err error) error {
	var patErr *packaging.InvalidPatternError
	switch {
	case errors.As(err, &patErr),
		errors.Is(err, packaging.ErrAbsoluteStylesPath),
		errors.Is(err, packaging.ErrStylesNotFound):
		return clierr.Usage(err)
	default:
		return clierr.Failure(err)
	}
}
