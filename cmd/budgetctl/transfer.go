package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"smartbudget/internal/transfer"
)

var (
	flagExportType string
	flagOutput     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the ledger as a JSON document",
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Load a JSON export into the ledger, replacing what it carries",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportType, "type", "t", string(transfer.Full), "full, expenses, income or settings")
	exportCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file; stdout when empty")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	t, err := transfer.ParseType(flagExportType)
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	var w io.Writer = os.Stdout
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := transfer.Export(w, s.app.Book, t); err != nil {
		return err
	}
	if flagOutput != "" {
		fmt.Fprintf(os.Stderr, "  Wrote %s export to %s\n", t, flagOutput)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	doc, err := transfer.Import(cmd.Context(), f, s.app.Book)
	if err != nil {
		return err
	}
	fmt.Printf("  Imported %s document: %d expenses, %d income, %d goals\n",
		doc.ExportType, count(doc.Expenses), count(doc.Income), count(doc.SavingsGoals))
	return nil
}

func count[T any](items *[]T) int {
	if items == nil {
		return 0
	}
	return len(*items)
}
