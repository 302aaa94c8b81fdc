package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"smartbudget/internal/cli"
	"smartbudget/internal/finance"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Advisory messages derived from spending and budgets",
	RunE:  runInsights,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Financial health score",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(healthCmd)
}

func runInsights(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	insights := finance.Insights(s.app.Book.Snapshot(), s.app.Book.Now())

	fmt.Println()
	fmt.Println(cli.RenderTitle("INSIGHTS"))
	fmt.Println()
	if len(insights) == 0 {
		fmt.Println("  Nothing to report.")
		return nil
	}
	for _, in := range insights {
		fmt.Println(cli.RenderInsight(in))
		fmt.Println()
	}
	return nil
}

func runHealth(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	r := finance.Aggregate(s.app.Book.Snapshot())
	fmt.Printf("\n  %s\n\n", cli.RenderHealth(finance.HealthScore(r, s.app.Policy.Health)))
	return nil
}
