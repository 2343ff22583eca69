package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thresherlabs/thresher/internal/validation"
	"github.com/thresherlabs/thresher/pkg/crypto/bls"
	"github.com/thresherlabs/thresher/pkg/storage"
)

// keyShareFile is the on-disk shape of a threshold key share set.
type keyShareFile struct {
	Threshold int             `json:"threshold"`
	PublicKey string          `json:"public_key"`
	Shares    []keyShareEntry `json:"shares"`
}

type keyShareEntry struct {
	Index uint64 `json:"index"`
	Share string `json:"share"`
}

// partialFile is the on-disk shape of one partial signature.
type partialFile struct {
	Index     uint64 `json:"index"`
	Signature string `json:"signature"`
}

// NewThresholdCommand groups the threshold-signature subcommands.
func NewThresholdCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threshold",
		Short: "Threshold BLS signing",
		Long: `Split a signing key t-of-n, sign with individual key shares and
combine partial signatures into a signature under the group key.`,
	}
	cmd.AddCommand(
		newThresholdSplitCommand(),
		newThresholdSignCommand(),
		newThresholdCombineCommand(),
	)
	return cmd
}

func newThresholdSplitCommand() *cobra.Command {
	var (
		keyPath    string
		threshold  int
		parts      int
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "split-key",
		Short: "Split the stored signing key t-of-n",
		Long: `Split the stored signing key into n shares of which any t produce
partial signatures that combine into a full signature.

Example:
  thresher threshold split-key -t 3 -n 5 -o keyshares.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateThreshold(parts, threshold); err != nil {
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

			shares, err := bls.SplitKey(key, threshold, parts)
			if err != nil {
				return err
			}

			pub := key.P.Bytes()
			out := keyShareFile{
				Threshold: threshold,
				PublicKey: hex.EncodeToString(pub[:]),
			}
			for _, s := range shares {
				out.Shares = append(out.Shares, keyShareEntry{
					Index: s.Index,
					Share: hex.EncodeToString(s.Value),
				})
			}

			if outputFile == "" {
				return printJSON(out)
			}
			if err := writeJSONFile(outputFile, out); err != nil {
				return err
			}
			success.Printf("✓ %d key shares written to %s\n", parts, outputFile)
			warning.Println("Hand each share to one signer and delete this file.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&keyPath, "key", "k", "", "Key file path (default from config)")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", 2, "Partials required for a signature")
	cmd.Flags().IntVarP(&parts, "parts", "n", 3, "Number of key shares")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the share set to a file")

	return cmd
}

func newThresholdSignCommand() *cobra.Command {
	var (
		message     string
		messageFile string
		shareHex    string
		index       uint64
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Produce a partial signature with one key share",
		Long: `Sign a message with a single key share from 'threshold split-key'.

Example:
  thresher threshold sign --message "rotate" --index 2 --share <hex>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := resolveMessage(message, messageFile)
			if err != nil {
				return err
			}
			if err := validation.ValidateHex(shareHex); err != nil {
				return fmt.Errorf("invalid key share: %w", err)
			}
			value, err := hex.DecodeString(shareHex)
			if err != nil {
				return err
			}

			partial, err := bls.PartialSign(bls.KeyShare{Index: index, Value: value}, msg)
			if err != nil {
				return err
			}
			raw := partial.Sig.Bytes()
			return printJSON(partialFile{
				Index:     partial.Index,
				Signature: hex.EncodeToString(raw[:]),
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Message to sign")
	cmd.Flags().StringVar(&messageFile, "file", "", "File whose contents to sign")
	cmd.Flags().StringVarP(&shareHex, "share", "s", "", "Key share in hex (required)")
	cmd.Flags().Uint64VarP(&index, "index", "i", 0, "Key share index (required)")
	_ = cmd.MarkFlagRequired("share")
	_ = cmd.MarkFlagRequired("index")

	return cmd
}

func newThresholdCombineCommand() *cobra.Command {
	var (
		threshold    int
		partialFiles []string
	)

	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Combine partial signatures into a group signature",
		Long: `Combine at least threshold partial signatures into a signature that
verifies under the group public key.

Example:
  thresher threshold combine -t 3 --partial p1.json --partial p2.json --partial p3.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(partialFiles) == 0 {
				return fmt.Errorf("at least one --partial file is required")
			}

			partials := make([]bls.PartialSignature, 0, len(partialFiles))
			for _, name := range partialFiles {
				var pf partialFile
				if err := readJSONFile(name, &pf); err != nil {
					return err
				}
				sig, err := decodeG1(pf.Signature)
				if err != nil {
					return fmt.Errorf("%s: invalid partial signature: %w", name, err)
				}
				partials = append(partials, bls.PartialSignature{Index: pf.Index, Sig: sig})
			}

			sig, err := bls.Combine(partials, threshold)
			if err != nil {
				return err
			}
			raw := sig.Bytes()
			success.Println("✓ Partials combined")
			fmt.Printf("%s\n", hex.EncodeToString(raw[:]))
			return nil
		},
	}

	cmd.Flags().IntVarP(&threshold, "threshold", "t", 2, "Partials required for a signature")
	cmd.Flags().StringArrayVar(&partialFiles, "partial", nil, "Partial signature file (repeatable)")

	return cmd
}
