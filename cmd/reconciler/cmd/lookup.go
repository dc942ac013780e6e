package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bank-reconciliation-engine/internal/normalize"
	"bank-reconciliation-engine/internal/store"
)

// Flags for the lookup commands
var (
	lookupDBPath  string
	lookupTerm    string
	lookupAmount  string
	lookupAccount string
	snapshotPath  string
)

// lookupCmd groups the supplier lookup database commands
var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Manage the supplier lookup database",
	Long: `Lookup maintains the mappings used to resolve standing-order rows to
supplier accounts: search terms matched against the row details and
absolute amounts matched as a fallback.

Examples:
  reconciler lookup add-name --lookup-db lookup.db --term "חברת החשמל" --account 30045
  reconciler lookup add-amount --lookup-db lookup.db --amount 1250.00 --account 30046
  reconciler lookup list --lookup-db lookup.db
  reconciler lookup import --lookup-db lookup.db --file rules_store.json
  reconciler lookup export --lookup-db lookup.db --file rules_store.json`,
}

var lookupAddNameCmd = &cobra.Command{
	Use:   "add-name",
	Short: "Add or update a search-term mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(lookupDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.SaveNameMapping(context.Background(), lookupTerm, lookupAccount); err != nil {
			return err
		}
		fmt.Printf("Mapped %q to account %s\n", lookupTerm, lookupAccount)
		return nil
	},
}

var lookupAddAmountCmd = &cobra.Command{
	Use:   "add-amount",
	Short: "Add or update an amount mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, ok := normalize.Number(lookupAmount)
		if !ok {
			return fmt.Errorf("invalid amount: %q", lookupAmount)
		}

		db, err := store.Open(lookupDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.SaveAmountMapping(context.Background(), amount, lookupAccount); err != nil {
			return err
		}
		fmt.Printf("Mapped amount %s to account %s\n", normalize.AmountKey(amount), lookupAccount)
		return nil
	},
}

var lookupRemoveNameCmd = &cobra.Command{
	Use:   "remove-name",
	Short: "Remove a search-term mapping",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(lookupDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteNameMapping(context.Background(), lookupTerm); err != nil {
			return err
		}
		fmt.Printf("Removed mapping for %q\n", lookupTerm)
		return nil
	},
}

var lookupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every mapping in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(lookupDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		table, err := db.LoadTable(context.Background())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tKEY\tACCOUNT")
		for _, term := range sortedKeys(table.NameMap) {
			fmt.Fprintf(w, "name\t%s\t%s\n", term, table.NameMap[term])
		}
		for _, key := range sortedKeys(table.AmountMap) {
			fmt.Fprintf(w, "amount\t%s\t%s\n", key, table.AmountMap[key])
		}
		return w.Flush()
	},
}

var lookupImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Merge a JSON snapshot into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(lookupDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ImportJSON(context.Background(), snapshotPath)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d mappings from %s\n", n, snapshotPath)
		return nil
	},
}

var lookupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the database as a JSON snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(lookupDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.ExportJSON(context.Background(), snapshotPath); err != nil {
			return err
		}
		fmt.Printf("Exported lookup database to %s\n", snapshotPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.AddCommand(lookupAddNameCmd, lookupAddAmountCmd, lookupRemoveNameCmd,
		lookupListCmd, lookupImportCmd, lookupExportCmd)

	lookupCmd.PersistentFlags().StringVar(&lookupDBPath, "lookup-db", "lookup.db", "supplier lookup database path")

	lookupAddNameCmd.Flags().StringVar(&lookupTerm, "term", "", "search term matched against the row details (required)")
	lookupAddNameCmd.Flags().StringVar(&lookupAccount, "account", "", "supplier account id (required)")
	lookupAddNameCmd.MarkFlagRequired("term")
	lookupAddNameCmd.MarkFlagRequired("account")

	lookupAddAmountCmd.Flags().StringVar(&lookupAmount, "amount", "", "amount key, matched by absolute value (required)")
	lookupAddAmountCmd.Flags().StringVar(&lookupAccount, "account", "", "supplier account id (required)")
	lookupAddAmountCmd.MarkFlagRequired("amount")
	lookupAddAmountCmd.MarkFlagRequired("account")

	lookupRemoveNameCmd.Flags().StringVar(&lookupTerm, "term", "", "search term to remove (required)")
	lookupRemoveNameCmd.MarkFlagRequired("term")

	lookupImportCmd.Flags().StringVar(&snapshotPath, "file", "", "JSON snapshot path (required)")
	lookupImportCmd.MarkFlagRequired("file")

	lookupExportCmd.Flags().StringVar(&snapshotPath, "file", "", "JSON snapshot path (required)")
	lookupExportCmd.MarkFlagRequired("file")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
