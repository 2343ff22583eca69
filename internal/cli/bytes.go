package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thresherlabs/thresher/internal/validation"
	"github.com/thresherlabs/thresher/pkg/crypto/bytesplit"
	"github.com/thresherlabs/thresher/pkg/secure"
)

// NewSplitBytesCommand splits an opaque byte secret t-of-n.
func NewSplitBytesCommand() *cobra.Command {
	var (
		threshold  int
		parts      int
		secretHex  string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "split-bytes",
		Short: "Split a raw byte secret into t-of-n shares",
		Long: `Split an opaque byte secret with plain threshold sharing over GF(256).

Use this for key files and seeds where no access formula is needed; for
structured policies use 'thresher split'.

Examples:
  thresher split-bytes --threshold 2 --parts 3 --secret deadbeef
  thresher split-bytes -t 3 -n 5 -o shares.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateSplitParams(parts, threshold); err != nil {
				return err
			}

			var secret []byte
			var err error
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
			defer secure.Zero(secret)

			shares, err := bytesplit.Split(secret, bytesplit.Config{
				Parts:     parts,
				Threshold: threshold,
			})
			if err != nil {
				return err
			}

			type shareOut struct {
				Index byte   `json:"index"`
				Share string `json:"share"`
			}
			out := struct {
				Threshold int        `json:"threshold"`
				Parts     int        `json:"parts"`
				Shares    []shareOut `json:"shares"`
			}{Threshold: threshold, Parts: parts}
			for _, s := range shares {
				out.Shares = append(out.Shares, shareOut{Index: s.Index, Share: hex.EncodeToString(s.Data)})
			}

			if outputFile != "" {
				if err := writeJSONFile(outputFile, out); err != nil {
					return err
				}
				success.Printf("✓ Shares written to %s\n", outputFile)
				return nil
			}

			headline.Printf("Created %d shares, any %d reconstruct\n\n", parts, threshold)
			for _, s := range out.Shares {
				fmt.Printf("Share %d: %s\n", s.Index, s.Share)
			}
			fmt.Println()
			warning.Println("Store each share in a different location.")
			return nil
		},
	}

	cmd.Flags().IntVarP(&threshold, "threshold", "t", 2, "Shares required to reconstruct")
	cmd.Flags().IntVarP(&parts, "parts", "n", 3, "Total number of shares")
	cmd.Flags().StringVar(&secretHex, "secret", "", "Secret in hex (prompted if omitted)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write shares to a file")

	return cmd
}

// NewCombineBytesCommand reconstructs a byte secret from hex shares.
func NewCombineBytesCommand() *cobra.Command {
	var shareHex []string

	cmd := &cobra.Command{
		Use:   "combine-bytes",
		Short: "Reconstruct a raw byte secret from t-of-n shares",
		Long: `Reconstruct a secret split with 'thresher split-bytes'.

Example:
  thresher combine-bytes --share 01ab... --share 02cd...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(shareHex) < 2 {
				return fmt.Errorf("at least 2 --share values are required")
			}

			shares := make([]bytesplit.Share, 0, len(shareHex))
			for i, h := range shareHex {
				h = validation.SanitizeInput(h)
				if err := validation.ValidateHex(h); err != nil {
					return fmt.Errorf("share %d: %w", i+1, err)
				}
				data, err := hex.DecodeString(h)
				if err != nil {
					return fmt.Errorf("share %d: %w", i+1, err)
				}
				shares = append(shares, bytesplit.Share{Index: byte(i + 1), Data: data})
			}

			secret, err := bytesplit.Combine(shares)
			if err != nil {
				return err
			}
			defer secure.Zero(secret)

			success.Println("✓ Secret reconstructed")
			fmt.Printf("%x\n", secret)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&shareHex, "share", "s", nil, "Hex share (repeatable)")
	return cmd
}
