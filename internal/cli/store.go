package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thresherlabs/thresher/pkg/sharestore"
)

// NewStoreCommand groups share store management subcommands.
func NewStoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the share store",
		Long:  `List, inspect, search and delete bundles saved by 'thresher split --save'.`,
	}
	cmd.AddCommand(
		newStoreListCommand(),
		newStoreShowCommand(),
		newStoreSearchCommand(),
		newStoreDeleteCommand(),
	)
	return cmd
}

func newStoreListCommand() *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored bundles",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			printBundleTable(store.List(tags))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Only bundles carrying every given tag")
	return cmd
}

func newStoreShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one bundle, shares included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			bundle, err := store.Get(args[0])
			if err != nil {
				return err
			}
			return printJSON(bundle)
		},
	}
	return cmd
}

func newStoreSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search bundles by name, formula or tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			printBundleTable(store.Search(args[0]))
			return nil
		},
	}
	return cmd
}

func newStoreDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			success.Printf("✓ Bundle %s deleted\n", args[0])
			return nil
		},
	}
	return cmd
}

func printBundleTable(bundles []*sharestore.Bundle) {
	if len(bundles) == 0 {
		fmt.Println("No bundles found.")
		return
	}
	for _, b := range bundles {
		detail.Printf("%s", b.ID)
		fmt.Printf("  %-20s  %s  %s\n", b.Name, b.Created.Format("2006-01-02 15:04"), b.Formula)
	}
}
