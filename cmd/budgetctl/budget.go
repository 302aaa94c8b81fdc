package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"smartbudget/internal/core"
	"smartbudget/internal/finance"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show or change per-category budgets",
	RunE:  runBudgetShow,
}

var budgetSetCmd = &cobra.Command{
	Use:   "set CATEGORY AMOUNT",
	Short: "Set the budget of a category",
	Args:  cobra.ExactArgs(2),
	RunE:  runBudgetSet,
}

var budgetDeleteCmd = &cobra.Command{
	Use:     "delete CATEGORY",
	Aliases: []string{"rm"},
	Short:   "Remove the budget of a category",
	Args:    cobra.ExactArgs(1),
	RunE:    runBudgetDelete,
}

func init() {
	budgetCmd.AddCommand(budgetSetCmd)
	budgetCmd.AddCommand(budgetDeleteCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudgetShow(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	util := s.app.Book.Snapshot().BudgetUtilization()
	if len(util) == 0 {
		fmt.Println("\n  No budgets set.")
		return nil
	}
	fmt.Println()
	printUtilization(s, util)
	return nil
}

func runBudgetSet(cmd *cobra.Command, args []string) error {
	category, err := core.ParseCategory(core.Expense, args[0])
	if err != nil {
		return err
	}
	amount, err := core.ParseAmount(args[1])
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	// Budgets are entered in the display currency and stored in the base one.
	base, err := s.app.Book.Rates().Convert(amount, s.currency, finance.BaseCurrency)
	if err != nil {
		return err
	}
	if err := s.app.Book.SetBudget(cmd.Context(), string(category), base); err != nil {
		return err
	}
	fmt.Printf("  Budget for %s set to %s\n", category, s.money(base))
	return nil
}

func runBudgetDelete(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.app.Book.DeleteBudget(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("  Budget for %s removed\n", args[0])
	return nil
}
