package cli

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/spf13/cobra"

	"github.com/thresherlabs/thresher/pkg/crypto/bls"
	"github.com/thresherlabs/thresher/pkg/storage"
)

// NewSignCommand signs a message with the stored key.
func NewSignCommand() *cobra.Command {
	var (
		keyPath     string
		message     string
		messageFile string
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a message with the stored BLS key",
		Long: `Sign a message with the key from 'thresher keygen' and print the
signature in hex.

Examples:
  thresher sign --message "release v1.4.0"
  thresher sign --file artifact.tar.gz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := resolveMessage(message, messageFile)
			if err != nil {
				return err
			}

			path, _, err := resolveKeyPath(keyPath)
			if err != nil {
				return err
			}
			pass, err := readPassphrase("Key file passphrase: ")
			if err != nil {
				return err
			}
			key, err := storage.NewKeyFile(path).Load([]byte(pass))
			if err != nil {
				return err
			}

			sig, err := key.Sign(msg)
			if err != nil {
				return err
			}
			raw := sig.Bytes()
			fmt.Printf("%s\n", hex.EncodeToString(raw[:]))
			return nil
		},
	}

	cmd.Flags().StringVarP(&keyPath, "key", "k", "", "Key file path (default from config)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Message to sign")
	cmd.Flags().StringVar(&messageFile, "file", "", "File whose contents to sign")

	return cmd
}

// NewVerifyCommand verifies a BLS signature.
func NewVerifyCommand() *cobra.Command {
	var (
		message     string
		messageFile string
		sigHex      string
		pubHex      string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a BLS signature",
		Long: `Verify a signature produced by 'thresher sign' or by combining
threshold partials.

Example:
  thresher verify --message "release v1.4.0" --signature <hex> --pubkey <hex>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := resolveMessage(message, messageFile)
			if err != nil {
				return err
			}

			sig, err := decodeG1(sigHex)
			if err != nil {
				return fmt.Errorf("invalid signature: %w", err)
			}
			pubRaw, err := hex.DecodeString(pubHex)
			if err != nil {
				return fmt.Errorf("invalid public key: %w", err)
			}
			var pub bls.PublicKey
			if _, err := pub.P.SetBytes(pubRaw); err != nil {
				return fmt.Errorf("invalid public key: %w", err)
			}

			if err := bls.Verify(&pub, msg, sig); err != nil {
				warning.Println("✗ Signature is INVALID")
				return err
			}
			success.Println("✓ Signature is valid")
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Signed message")
	cmd.Flags().StringVar(&messageFile, "file", "", "File whose contents were signed")
	cmd.Flags().StringVarP(&sigHex, "signature", "s", "", "Signature in hex (required)")
	cmd.Flags().StringVar(&pubHex, "pubkey", "", "Public key in hex (required)")
	_ = cmd.MarkFlagRequired("signature")
	_ = cmd.MarkFlagRequired("pubkey")

	return cmd
}

func resolveMessage(message, messageFile string) ([]byte, error) {
	switch {
	case message != "" && messageFile != "":
		return nil, fmt.Errorf("--message and --file are mutually exclusive")
	case message != "":
		return []byte(message), nil
	case messageFile != "":
		data, err := os.ReadFile(messageFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", messageFile, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("either --message or --file is required")
	}
}

func decodeG1(s string) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	raw, err := hex.DecodeString(s)
	if err != nil {
		return p, err
	}
	if _, err := p.SetBytes(raw); err != nil {
		return p, err
	}
	return p, nil
}
