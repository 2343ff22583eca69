package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thresherlabs/thresher/internal/validation"
	"github.com/thresherlabs/thresher/pkg/config"
	"github.com/thresherlabs/thresher/pkg/crypto/benaloh"
	"github.com/thresherlabs/thresher/pkg/crypto/mnemonic"
	"github.com/thresherlabs/thresher/pkg/secure"
	"github.com/thresherlabs/thresher/pkg/sharestore"
)

// NewSplitCommand distributes a secret over a monotone access formula.
func NewSplitCommand() *cobra.Command {
	var (
		formulaSpec string
		secretHex   string
		fieldKind   string
		prime       string
		name        string
		outputFile  string
		save        bool
		asMnemonic  bool
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a secret over a monotone access formula",
		Long: `Split a secret so that exactly the coalitions satisfying a monotone
boolean formula over party names can reconstruct it.

The formula supports &, | and parentheses; each party name may appear
any number of times and each occurrence receives an independent share.

Examples:
  # Any two of three admins
  thresher split --formula "(a & b) | (b & c) | (a & c)" --secret deadbeef

  # Alice together with either bob or carol, over a small prime field
  thresher split --formula "alice & (bob | carol)" \
      --field prime --prime 2305843009213693951

  # Persist the bundle in the share store
  thresher split --formula "a & b" --save --name "prod signer"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateFormula(formulaSpec, true); err != nil {
				return err
			}

			f, spec, err := resolveField(fieldKind, prime)
			if err != nil {
				return err
			}

			var secret []byte
			if secretHex != "" {
				if err := validation.ValidateHex(secretHex); err != nil {
					return err
				}
				if secret, err = hex.DecodeString(secretHex); err != nil {
					return err
				}
			} else {
				if secret, err = readSecretHex(); err != nil {
					return err
				}
			}
			if len(secret) > f.ElementSize() {
				return fmt.Errorf("secret is %d bytes but the field holds at most %d", len(secret), f.ElementSize())
			}
			if len(secret) < f.ElementSize() {
				secret = append(make([]byte, f.ElementSize()-len(secret)), secret...)
			}
			defer secure.Zero(secret)

			scheme, err := benaloh.New(secret, formulaSpec, f)
			if err != nil {
				return fmt.Errorf("failed to split secret: %w", err)
			}

			parties := make(map[string]map[int][]byte)
			for _, party := range scheme.Universe() {
				shares, err := scheme.CreateShare(party)
				if err != nil {
					return err
				}
				parties[party] = shares
			}

			bundle := &sharestore.Bundle{
				Name:    name,
				Formula: formulaSpec,
				Field:   spec,
				Tags:    tags,
				Parties: parties,
			}

			switch {
			case save:
				store, err := openStore()
				if err != nil {
					return err
				}
				if err := store.Add(bundle); err != nil {
					return err
				}
				success.Printf("✓ Bundle %s saved to share store\n", bundle.ID)
			case outputFile != "":
				if err := writeJSONFile(outputFile, bundle); err != nil {
					return err
				}
				success.Printf("✓ Bundle written to %s\n", outputFile)
			default:
				if err := printJSON(bundle); err != nil {
					return err
				}
			}

			if asMnemonic {
				if err := printShareMnemonics(parties); err != nil {
					return err
				}
			}

			headline.Println("\nDistribute each party's shares separately.")
			fmt.Printf("Parties: %v\n", scheme.Universe())
			return nil
		},
	}

	cmd.Flags().StringVarP(&formulaSpec, "formula", "f", "", "Monotone access formula (required)")
	cmd.Flags().StringVar(&secretHex, "secret", "", "Secret in hex (prompted if omitted)")
	cmd.Flags().StringVar(&fieldKind, "field", "", "Field to share over: bn254 or prime")
	cmd.Flags().StringVar(&prime, "prime", "", "Decimal prime modulus for --field prime")
	cmd.Flags().StringVar(&name, "name", "", "Bundle name")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the bundle to a file")
	cmd.Flags().BoolVar(&save, "save", false, "Save the bundle to the share store")
	cmd.Flags().BoolVar(&asMnemonic, "mnemonic", false, "Also print each share as a BIP-39 phrase for paper backup")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tags for the stored bundle")
	_ = cmd.MarkFlagRequired("formula")

	return cmd
}

// printShareMnemonics renders each share as a BIP-39 phrase. Shares are
// field-element sized, so this only works for fields whose elements fit
// a valid BIP-39 entropy length.
func printShareMnemonics(parties map[string]map[int][]byte) error {
	headline.Println("\nShare phrases:")
	for _, party := range sortedKeys(parties) {
		for _, label := range sortedIntKeys(parties[party]) {
			m, err := mnemonic.FromEntropy(parties[party][label])
			if err != nil {
				return fmt.Errorf("share %s#%d cannot be encoded as a phrase: %w", party, label, err)
			}
			fmt.Printf("  %s#%d: %s\n", party, label, m.Words())
		}
	}
	return nil
}

// openStore opens the configured share store, prompting for the store
// passphrase when encryption is enabled.
func openStore() (*sharestore.Store, error) {
	manager, err := config.NewManager()
	if err != nil {
		return nil, err
	}
	cfg := manager.Get()

	path, err := config.ExpandPath(cfg.Storage.StorePath)
	if err != nil {
		return nil, err
	}

	var opts []sharestore.Option
	if cfg.Storage.EncryptStore {
		pass, err := readPassphrase("Share store passphrase: ")
		if err != nil {
			return nil, err
		}
		if err := validation.ValidatePassphrase(pass, cfg.Security.MinPassphraseLength); err != nil {
			return nil, err
		}
		opts = append(opts, sharestore.WithPassphrase([]byte(pass)))
	}
	return sharestore.Open(path, opts...)
}
