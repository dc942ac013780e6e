package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bank-reconciliation-engine/cmd/reconciler/config"
	"bank-reconciliation-engine/internal/reconciler"
	"bank-reconciliation-engine/internal/reporter"
	"bank-reconciliation-engine/internal/store"
	"bank-reconciliation-engine/internal/supplier"
)

// Flags for the reconcile command
var (
	workbookFile string
	sheetName    string
	auxFile      string
	lookupDB     string
	outputFile   string
	reportFormat string
	reportFile   string

	tieBreak          string
	checkStrategy     string
	overwriteStanding bool
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Classify bank statement rows with match codes",
	Long: `Reconcile loads a bank/books worksheet, applies the matching rule
catalogue in priority order and writes the match codes back into the
sheet. Standing-order rows are resolved to supplier accounts through the
lookup database, and the result workbook carries a summary sheet and a
supplier sheet alongside the data.

The worksheet may be .xlsx or .csv. Columns are located by name through
a synonym table; a rule whose columns are missing is skipped, never an
error.

Examples:
  # Basic reconciliation, codes written into a new workbook
  reconciler reconcile --workbook statement.xlsx --output reconciled.xlsx

  # With the auxiliary transfer file and supplier lookup
  reconciler reconcile --workbook statement.xlsx --aux-file transfers.csv \
    --lookup-db lookup.db --output reconciled.xlsx

  # Machine-readable run report
  reconciler reconcile --workbook statement.xlsx --report-format json

  # Let transfers and checks reclaim standing-order rows
  reconciler reconcile --workbook statement.xlsx --overwrite-standing`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Input flags
	reconcileCmd.Flags().StringVarP(&workbookFile, "workbook", "w", "", "path to the bank/books worksheet, .xlsx or .csv (required)")
	reconcileCmd.Flags().StringVar(&sheetName, "sheet", "", "worksheet name (default: the DataSheet or first sheet)")
	reconcileCmd.Flags().StringVar(&auxFile, "aux-file", "", "auxiliary transfer file for event-group matching")
	reconcileCmd.Flags().StringVar(&lookupDB, "lookup-db", "", "supplier lookup database path")

	// Output flags
	reconcileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "result workbook path (default: no workbook written)")
	reconcileCmd.Flags().StringVarP(&reportFormat, "report-format", "f", "console", "run report format: console, json, csv")
	reconcileCmd.Flags().StringVar(&reportFile, "report-file", "", "run report path (default: stdout)")

	// Matching policy flags
	reconcileCmd.Flags().StringVar(&tieBreak, "tie-break", "", "receipt pairing policy: strict, nearest")
	reconcileCmd.Flags().StringVar(&checkStrategy, "check-strategy", "", "check matching strategy: greedy, exhaustive")
	reconcileCmd.Flags().BoolVar(&overwriteStanding, "overwrite-standing", false, "let transfers and checks reclaim standing-order rows")

	reconcileCmd.MarkFlagRequired("workbook")

	// Bind flags to viper
	viper.BindPFlag("workbook", reconcileCmd.Flags().Lookup("workbook"))
	viper.BindPFlag("sheet", reconcileCmd.Flags().Lookup("sheet"))
	viper.BindPFlag("aux-file", reconcileCmd.Flags().Lookup("aux-file"))
	viper.BindPFlag("lookup-db", reconcileCmd.Flags().Lookup("lookup-db"))
	viper.BindPFlag("output", reconcileCmd.Flags().Lookup("output"))
	viper.BindPFlag("report-format", reconcileCmd.Flags().Lookup("report-format"))
	viper.BindPFlag("report-file", reconcileCmd.Flags().Lookup("report-file"))
	viper.BindPFlag("tie-break", reconcileCmd.Flags().Lookup("tie-break"))
	viper.BindPFlag("check-strategy", reconcileCmd.Flags().Lookup("check-strategy"))
	viper.BindPFlag("overwrite-standing", reconcileCmd.Flags().Lookup("overwrite-standing"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	workbookFile = viper.GetString("workbook")
	sheetName = viper.GetString("sheet")
	auxFile = viper.GetString("aux-file")
	lookupDB = viper.GetString("lookup-db")
	outputFile = viper.GetString("output")
	reportFormat = viper.GetString("report-format")
	reportFile = viper.GetString("report-file")
	tieBreak = viper.GetString("tie-break")
	checkStrategy = viper.GetString("check-strategy")
	overwriteStanding = viper.GetBool("overwrite-standing")

	if workbookFile == "" {
		return fmt.Errorf("workbook is required")
	}

	if err := validateFileExists(workbookFile, "workbook file"); err != nil {
		return err
	}
	if auxFile != "" {
		if err := validateFileExists(auxFile, "auxiliary file"); err != nil {
			return err
		}
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[reportFormat] {
		return fmt.Errorf("invalid report format '%s'. Valid formats: console, json, csv", reportFormat)
	}

	// Validate output directories exist if specified
	for _, path := range []string{outputFile, reportFile} {
		if path == "" {
			continue
		}
		dir := filepath.Dir(path)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	matchingConfig, err := config.CreateMatchingConfig(tieBreak, checkStrategy, overwriteStanding)
	if err != nil {
		return err
	}

	// Load the supplier lookup table when a database was given
	var lookup *supplier.Table
	if lookupDB != "" {
		db, err := store.Open(lookupDB)
		if err != nil {
			return err
		}
		defer db.Close()

		lookup, err = db.LoadTable(ctx)
		if err != nil {
			return err
		}
	}

	service := reconciler.NewService()
	result, err := service.Reconcile(ctx, &reconciler.Request{
		WorkbookPath: workbookFile,
		SheetName:    sheetName,
		AuxPath:      auxFile,
		OutputPath:   outputFile,
		Lookup:       lookup,
		Matching:     matchingConfig,
	})
	if err != nil {
		return err
	}

	// Generate the run report
	reportGenerator, err := reporter.NewReportGenerator(config.CreateReportConfig(reportFormat))
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	output := os.Stdout
	if reportFile != "" {
		output, err = os.Create(reportFile)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer output.Close()
	}

	if err := reportGenerator.GenerateReport(result, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nReconciliation completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Processed %d rows, explained %d.\n",
			result.Table.Len(), result.Match.Explained())
		if result.Unresolved > 0 {
			fmt.Fprintf(os.Stderr, "%d standing-order rows have no supplier account.\n", result.Unresolved)
		}
	}

	return nil
}
