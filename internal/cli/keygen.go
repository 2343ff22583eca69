package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thresherlabs/thresher/internal/validation"
	"github.com/thresherlabs/thresher/pkg/config"
	"github.com/thresherlabs/thresher/pkg/crypto/bls"
	"github.com/thresherlabs/thresher/pkg/crypto/mnemonic"
	"github.com/thresherlabs/thresher/pkg/secure"
	"github.com/thresherlabs/thresher/pkg/storage"
)

// NewKeygenCommand generates a BLS signing key.
func NewKeygenCommand() *cobra.Command {
	var (
		keyPath    string
		withPhrase bool
		fromPhrase string
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a BLS signing key",
		Long: `Generate a BLS signing key on BN254 and seal it to a key file under a
passphrase.

With --mnemonic the key is derived from a fresh 24-word recovery phrase
so it can be restored without the key file; --restore rebuilds the key
file from such a phrase.

Examples:
  thresher keygen
  thresher keygen --mnemonic
  thresher keygen --restore "cousin acid hollow ..." `,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, minLength, err := resolveKeyPath(keyPath)
			if err != nil {
				return err
			}

			var key *bls.PrivateKey
			switch {
			case fromPhrase != "":
				phrase, err := mnemonic.FromWords(fromPhrase)
				if err != nil {
					return err
				}
				seed := phrase.Seed("")
				defer secure.Zero(seed)
				if key, err = bls.KeyFromSeed(seed); err != nil {
					return err
				}

			case withPhrase:
				phrase, err := mnemonic.New(256)
				if err != nil {
					return err
				}
				seed := phrase.Seed("")
				defer secure.Zero(seed)
				if key, err = bls.KeyFromSeed(seed); err != nil {
					return err
				}

				sum, err := mnemonic.Checksum(phrase.Words())
				if err != nil {
					return err
				}
				headline.Println("\n=== RECOVERY PHRASE ===")
				fmt.Println(phrase.Words())
				detail.Printf("checksum: %s\n\n", sum)
				warning.Println("Write the phrase down; it fully recovers the signing key.")

			default:
				if key, err = bls.GenerateKey(); err != nil {
					return err
				}
			}

			pass, err := readPassphrase("Key file passphrase: ")
			if err != nil {
				return err
			}
			if err := validation.ValidatePassphrase(pass, minLength); err != nil {
				return err
			}

			if err := storage.NewKeyFile(path).Save(key, []byte(pass)); err != nil {
				return err
			}

			pub := key.P.Bytes()
			success.Printf("✓ Key saved to %s\n", path)
			fmt.Printf("Public key: %s\n", hex.EncodeToString(pub[:]))
			return nil
		},
	}

	cmd.Flags().StringVarP(&keyPath, "key", "k", "", "Key file path (default from config)")
	cmd.Flags().BoolVar(&withPhrase, "mnemonic", false, "Derive the key from a fresh recovery phrase")
	cmd.Flags().StringVar(&fromPhrase, "restore", "", "Restore the key from a recovery phrase")

	return cmd
}

// resolveKeyPath applies the configured default key path and returns the
// security policy's minimum passphrase length alongside it.
func resolveKeyPath(flag string) (string, int, error) {
	manager, err := config.NewManager()
	if err != nil {
		return "", 0, err
	}
	cfg := manager.Get()

	path := flag
	if path == "" {
		path = cfg.Storage.KeyPath
	}
	path, err = config.ExpandPath(path)
	if err != nil {
		return "", 0, err
	}
	return path, cfg.Security.MinPassphraseLength, nil
}
