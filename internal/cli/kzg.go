package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/spf13/cobra"

	"github.com/thresherlabs/thresher/pkg/crypto/polycommit"
)

// NewKZGCommand groups the KZG polynomial commitment operations.
func NewKZGCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kzg",
		Short: "KZG polynomial commitments",
		Long: `Commit to polynomials over the BN254 scalar field and produce
constant-size opening proofs.

The setup subcommand samples a local trapdoor and writes the structured
reference string to a file; commit, open and verify all read the same
file. A locally sampled trapdoor stands in for a multi-party ceremony,
so the CRS is only trustworthy to whoever ran setup.`,
	}

	cmd.AddCommand(
		newKZGSetupCommand(),
		newKZGCommitCommand(),
		newKZGOpenCommand(),
		newKZGVerifyCommand(),
	)
	return cmd
}

func newKZGSetupCommand() *cobra.Command {
	var (
		size    int
		outPath string
	)

	cmd := &cobra.Command{
		Use:     "setup",
		Short:   "Generate a structured reference string",
		Example: `  thresher kzg setup --size 64 --out crs.bin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scheme, err := polycommit.NewKZG(size)
			if err != nil {
				return err
			}
			data, err := scheme.MarshalBinary()
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, data, 0o600); err != nil {
				return fmt.Errorf("failed to write CRS: %w", err)
			}
			success.Printf("✓ CRS with %d powers written to %s\n", scheme.Size(), outPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", 64, "Number of trapdoor powers (max polynomial coefficients)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "crs.bin", "Output file for the reference string")

	return cmd
}

func newKZGCommitCommand() *cobra.Command {
	var (
		crsPath   string
		coeffSpec string
	)

	cmd := &cobra.Command{
		Use:     "commit",
		Short:   "Commit to a polynomial",
		Example: `  thresher kzg commit --crs crs.bin --coefficients 4,0,2,1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scheme, err := loadCRS(crsPath)
			if err != nil {
				return err
			}
			poly, err := parsePolynomial(coeffSpec)
			if err != nil {
				return err
			}
			commitment, err := scheme.Commit(poly)
			if err != nil {
				return err
			}
			raw := commitment.Bytes()
			fmt.Printf("%x\n", raw[:])
			return nil
		},
	}

	cmd.Flags().StringVar(&crsPath, "crs", "crs.bin", "Reference string file from kzg setup")
	cmd.Flags().StringVarP(&coeffSpec, "coefficients", "c", "", "Comma-separated coefficients, constant term first (required)")
	_ = cmd.MarkFlagRequired("coefficients")

	return cmd
}

func newKZGOpenCommand() *cobra.Command {
	var (
		crsPath   string
		coeffSpec string
		pointSpec string
	)

	cmd := &cobra.Command{
		Use:     "open",
		Short:   "Evaluate a polynomial and prove the opening",
		Example: `  thresher kzg open --crs crs.bin --coefficients 4,0,2,1 --at 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scheme, err := loadCRS(crsPath)
			if err != nil {
				return err
			}
			poly, err := parsePolynomial(coeffSpec)
			if err != nil {
				return err
			}
			x, err := parseScalar(pointSpec)
			if err != nil {
				return err
			}
			y, proof, err := scheme.Open(poly, x)
			if err != nil {
				return err
			}
			raw := proof.Bytes()
			headline.Printf("p(%s) = %s\n", x.String(), y.String())
			fmt.Printf("proof: %x\n", raw[:])
			return nil
		},
	}

	cmd.Flags().StringVar(&crsPath, "crs", "crs.bin", "Reference string file from kzg setup")
	cmd.Flags().StringVarP(&coeffSpec, "coefficients", "c", "", "Comma-separated coefficients, constant term first (required)")
	cmd.Flags().StringVar(&pointSpec, "at", "0", "Evaluation point")
	_ = cmd.MarkFlagRequired("coefficients")

	return cmd
}

func newKZGVerifyCommand() *cobra.Command {
	var (
		crsPath   string
		commitHex string
		pointSpec string
		valueSpec string
		proofHex  string
	)

	cmd := &cobra.Command{
		Use:     "verify",
		Short:   "Verify an opening proof against a commitment",
		Example: `  thresher kzg verify --crs crs.bin --commitment <hex> --at 7 --value 445 --proof <hex>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scheme, err := loadCRS(crsPath)
			if err != nil {
				return err
			}
			commitment, err := decodeG1(commitHex)
			if err != nil {
				return fmt.Errorf("invalid commitment: %w", err)
			}
			proof, err := decodeG1(proofHex)
			if err != nil {
				return fmt.Errorf("invalid proof: %w", err)
			}
			x, err := parseScalar(pointSpec)
			if err != nil {
				return err
			}
			y, err := parseScalar(valueSpec)
			if err != nil {
				return err
			}
			ok, err := scheme.Verify(commitment, x, y, proof)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("opening failed verification")
			}
			success.Println("✓ Opening verified")
			return nil
		},
	}

	cmd.Flags().StringVar(&crsPath, "crs", "crs.bin", "Reference string file from kzg setup")
	cmd.Flags().StringVar(&commitHex, "commitment", "", "Commitment in hex (required)")
	cmd.Flags().StringVar(&pointSpec, "at", "", "Evaluation point (required)")
	cmd.Flags().StringVar(&valueSpec, "value", "", "Claimed evaluation (required)")
	cmd.Flags().StringVar(&proofHex, "proof", "", "Opening proof in hex (required)")
	_ = cmd.MarkFlagRequired("commitment")
	_ = cmd.MarkFlagRequired("at")
	_ = cmd.MarkFlagRequired("value")
	_ = cmd.MarkFlagRequired("proof")

	return cmd
}

func loadCRS(path string) (*polycommit.KZG, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CRS (run 'thresher kzg setup' first): %w", err)
	}
	var scheme polycommit.KZG
	if err := scheme.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &scheme, nil
}

func parseScalar(spec string) (fr.Element, error) {
	var x fr.Element
	if _, err := x.SetString(strings.TrimSpace(spec)); err != nil {
		return x, fmt.Errorf("invalid field element %q: %w", spec, err)
	}
	return x, nil
}

func parsePolynomial(spec string) (polycommit.Polynomial, error) {
	parts := strings.Split(spec, ",")
	poly := make(polycommit.Polynomial, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		var c fr.Element
		if _, err := c.SetString(part); err != nil {
			return nil, fmt.Errorf("invalid coefficient %q: %w", part, err)
		}
		poly = append(poly, c)
	}
	return poly, nil
}
