package cli

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/thresherlabs/thresher/internal/validation"
	"github.com/thresherlabs/thresher/pkg/crypto/field"
	"github.com/thresherlabs/thresher/pkg/sharestore"
)

var (
	headline = color.New(color.FgYellow, color.Bold)
	success  = color.New(color.FgGreen)
	warning  = color.New(color.FgRed, color.Bold)
	detail   = color.New(color.FgCyan)
)

// readPassphrase reads a passphrase without echo when attached to a
// terminal, falling back to line input otherwise.
func readPassphrase(prompt string) (string, error) {
	fmt.Print(prompt)

	if term.IsTerminal(int(syscall.Stdin)) {
		pass, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(pass), nil
	}

	reader := bufio.NewReader(os.Stdin)
	pass, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(pass), nil
}

// readSecretHex prompts for a hex-encoded secret.
func readSecretHex() ([]byte, error) {
	input, err := readPassphrase("Enter secret (hex): ")
	if err != nil {
		return nil, err
	}
	input = validation.SanitizeInput(input)
	if err := validation.ValidateHex(input); err != nil {
		return nil, err
	}
	return hex.DecodeString(input)
}

// resolveField builds the field named by the flags. An empty kind falls
// back to BN254.
func resolveField(kind, prime string) (field.Field, sharestore.FieldSpec, error) {
	if kind == "" {
		kind = "bn254"
	}
	spec := sharestore.FieldSpec{Kind: kind, Prime: prime}
	if kind != "prime" {
		spec.Prime = ""
	}
	f, err := spec.Field()
	if err != nil {
		return nil, sharestore.FieldSpec{}, err
	}
	return f, spec, nil
}

// writeJSONFile writes v as indented JSON with private permissions.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// readJSONFile reads path into v.
func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// splitNames turns a comma-separated party list into trimmed names.
func splitNames(spec string) []string {
	var out []string
	for _, name := range strings.Split(spec, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedIntKeys[V any](m map[int]V) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
