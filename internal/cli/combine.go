package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thresherlabs/thresher/pkg/crypto/benaloh"
	"github.com/thresherlabs/thresher/pkg/sharestore"
)

// NewCombineCommand reconstructs a secret from a share bundle.
func NewCombineCommand() *cobra.Command {
	var (
		bundleFile string
		bundleID   string
		partySpec  string
	)

	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Reconstruct a secret from a share bundle",
		Long: `Reconstruct a secret from the shares held by a coalition of parties.

The bundle records the access formula and the field; reconstruction
succeeds exactly when the named coalition satisfies the formula.

Examples:
  # From a bundle file produced by 'thresher split -o bundle.json'
  thresher combine --bundle bundle.json --parties a,b

  # From the share store
  thresher combine --id 3f2a9c1d --parties alice,carol`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var bundle *sharestore.Bundle
			switch {
			case bundleFile != "":
				bundle = &sharestore.Bundle{}
				if err := readJSONFile(bundleFile, bundle); err != nil {
					return err
				}
			case bundleID != "":
				store, err := openStore()
				if err != nil {
					return err
				}
				if bundle, err = store.Get(bundleID); err != nil {
					return err
				}
			default:
				return fmt.Errorf("either --bundle or --id is required")
			}

			parties := splitNames(partySpec)
			if len(parties) == 0 {
				return fmt.Errorf("--parties is required")
			}

			ok, err := bundle.Recoverable(parties)
			if err != nil {
				return err
			}
			if !ok {
				warning.Printf("Coalition %v does not satisfy: %s\n", parties, bundle.Formula)
			}

			f, err := bundle.Field.Field()
			if err != nil {
				return err
			}
			secret, err := benaloh.Recombine(bundle.Formula, f, bundle.SharesFor(parties))
			if err != nil {
				return fmt.Errorf("failed to reconstruct secret: %w", err)
			}

			success.Println("✓ Secret reconstructed")
			fmt.Printf("%x\n", secret)
			return nil
		},
	}

	cmd.Flags().StringVarP(&bundleFile, "bundle", "b", "", "Bundle file from 'thresher split'")
	cmd.Flags().StringVar(&bundleID, "id", "", "Bundle ID in the share store")
	cmd.Flags().StringVarP(&partySpec, "parties", "p", "", "Comma-separated coalition (required)")
	_ = cmd.MarkFlagRequired("parties")

	return cmd
}
