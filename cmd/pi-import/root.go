package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagAliases maps the English flag names onto the historical Portuguese ones.
var flagAliases = map[string]string{
	"file":  "arquivo",
	"sheet": "aba",
}

func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	name = strings.ToLower(name)
	if alias, ok := flagAliases[name]; ok {
		name = alias
	}
	return pflag.NormalizedName(name)
}

func newRootCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:           "pi-import",
		Short:         "Import the commercial PI spreadsheet (.xlsx or .csv) into the pis table",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return withCode(exitUsage, fmt.Errorf("unexpected arguments: %s", strings.Join(args, " ")))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(opts.file) == "" {
				return withCode(exitUsage, fmt.Errorf("--arquivo is required"))
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withCode(exitUsage, err)
	})

	cmd.SetGlobalNormalizationFunc(normalizeFlagName)
	flags := cmd.Flags()
	flags.StringVar(&opts.file, "arquivo", "", "Spreadsheet to import: .xlsx, .xlsm or .csv (required)")
	flags.StringVar(&opts.sheet, "aba", "", "Worksheet name (default: first sheet)")
	flags.StringVar(&opts.warnings, "warnings", "", "Warnings CSV path (default: import_warnings.csv next to the input)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Reconcile everything, then roll back")
	flags.StringVar(&opts.lang, "lang", "", "Message language: pt or en (default from LANG)")
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
