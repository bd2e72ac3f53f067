package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zatekoja/medlibrary/internal/catalog"
)

var strict bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the catalog for structural problems",
	Long: `Validate reports duplicate ids, missing required fields, incomplete
translations, missing reading levels and dangling cross-references.
It exits non-zero when any error is found, or any warning with --strict.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report := catalog.Validate(lib)
		if err := printJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
		errs, warns := len(report.Errors()), len(report.Warnings())
		if errs > 0 || (strict && warns > 0) {
			return fmt.Errorf("catalog has %d errors and %d warnings", errs, warns)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
}
