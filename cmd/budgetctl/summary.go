package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"smartbudget/internal/cli"
	"smartbudget/internal/finance"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Totals, category breakdown and budget utilization",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	snap := s.app.Book.Snapshot()
	if len(snap.Expenses) == 0 && len(snap.Income) == 0 {
		fmt.Println("\n  No transactions recorded yet.")
		fmt.Println("  Add one with: budgetctl add expense --title Coffee --amount 3.50")
		return nil
	}
	r := finance.Aggregate(snap)
	health := finance.HealthScore(r, s.app.Policy.Health)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SMARTBUDGET  %s", s.app.Book.Settings().CurrentCompany)))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Income", s.money(r.TotalIncome)},
			{"Expenses", s.money(r.TotalExpenses)},
			{"---"},
			{"Net Balance", s.money(r.NetBalance)},
			{"Transactions", fmt.Sprintf("%d", len(snap.Expenses)+len(snap.Income))},
		},
	}))
	fmt.Printf("\n  Health  %s\n\n", cli.RenderHealth(health))

	if rows := breakdownRows(s, r.ExpensesByCategory, r.TotalExpenses); len(rows) > 0 {
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Expenses by Category",
			Headers: []string{"Category", "Amount", "Share"},
			Rows:    rows,
		}))
		fmt.Println()
	}
	if rows := breakdownRows(s, r.IncomeByCategory, r.TotalIncome); len(rows) > 0 {
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Income by Category",
			Headers: []string{"Category", "Amount", "Share"},
			Rows:    rows,
		}))
		fmt.Println()
	}

	printUtilization(s, r.BudgetUtilization)
	return nil
}

func breakdownRows(s *session, byCategory map[string]float64, total float64) [][]string {
	var rows [][]string
	for _, ca := range finance.SortedBreakdown(byCategory) {
		share := 0.0
		if total > 0 {
			share = ca.Amount / total * 100
		}
		rows = append(rows, []string{cli.Truncate(ca.Category, 28), s.money(ca.Amount), cli.FormatPercent(share)})
	}
	return rows
}

func printUtilization(s *session, util map[string]finance.Utilization) {
	if len(util) == 0 {
		return
	}
	categories := make([]string, 0, len(util))
	for c := range util {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	fmt.Println("  Budgets")
	for _, c := range categories {
		u := util[c]
		fmt.Printf("  %-24s %s  %s / %s\n",
			cli.Truncate(c, 24),
			cli.RenderBudgetBar(u.Percentage, 20),
			s.money(u.Spent),
			s.money(u.Budget))
	}
	fmt.Println()
}
