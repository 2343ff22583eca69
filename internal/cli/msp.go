package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thresherlabs/thresher/internal/validation"
	"github.com/thresherlabs/thresher/pkg/crypto/msp"
	"github.com/thresherlabs/thresher/pkg/formula"
)

// NewMSPCommand prints the monotone span program for a formula.
func NewMSPCommand() *cobra.Command {
	var (
		formulaSpec string
		partySpec   string
	)

	cmd := &cobra.Command{
		Use:   "msp",
		Short: "Show the monotone span program of an access formula",
		Long: `Convert a monotone access formula into its monotone span program and
print the share-generating matrix, one row per literal occurrence.

With --parties, also report whether the coalition's rows span the
target vector and print the reconstruction coefficients.

Examples:
  thresher msp --formula "(a & b) | c"
  thresher msp --formula "(a & b) | (b & c) | (a & c)" --parties a,c`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateFormula(formulaSpec, true); err != nil {
				return err
			}
			root, err := formula.Parse(formulaSpec, true)
			if err != nil {
				return err
			}
			program, err := msp.FromTree(root)
			if err != nil {
				return err
			}

			headline.Printf("Span program: %d rows × %d columns\n", len(program.Rows), program.Cols)
			for _, row := range program.Rows {
				fmt.Printf("  %s#%d  %v\n", row.Name, row.Label, row.Vector)
			}

			if partySpec == "" {
				return nil
			}
			parties := splitNames(partySpec)

			f, _, err := resolveField("bn254", "")
			if err != nil {
				return err
			}
			coeffs, err := program.ReconstructionVector(f, parties)
			if err != nil {
				warning.Printf("Coalition %v does not satisfy the access structure\n", parties)
				return nil
			}
			success.Printf("✓ Coalition %v satisfies the access structure\n", parties)
			for _, ri := range program.RowsFor(parties) {
				coeff, ok := coeffs[ri]
				if !ok {
					continue
				}
				row := program.Rows[ri]
				detail.Printf("  %s#%d × %s\n", row.Name, row.Label, coeff)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formulaSpec, "formula", "f", "", "Monotone access formula (required)")
	cmd.Flags().StringVarP(&partySpec, "parties", "p", "", "Coalition to test")
	_ = cmd.MarkFlagRequired("formula")

	return cmd
}
