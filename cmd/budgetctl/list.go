package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"smartbudget/internal/cli"
	"smartbudget/internal/core"
	"smartbudget/internal/finance"
)

var (
	flagSearch     string
	flagListCat    string
	flagKind       string
	flagSince      string
	flagUntil      string
	flagSortBy     string
	flagAscending  bool
	flagLimit      int
	flagBookmarked bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions with search, filters and sorting",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&flagSearch, "search", "s", "", "Match title, description or tags")
	listCmd.Flags().StringVar(&flagListCat, "category", "", "Exact category")
	listCmd.Flags().StringVarP(&flagKind, "type", "t", "", "expense or income; both when empty")
	listCmd.Flags().StringVar(&flagSince, "from", "", "Earliest date, YYYY-MM-DD")
	listCmd.Flags().StringVar(&flagUntil, "to", "", "Latest date, YYYY-MM-DD")
	listCmd.Flags().StringVar(&flagSortBy, "sort", finance.SortByDate, "date, amount, title or category")
	listCmd.Flags().BoolVar(&flagAscending, "asc", false, "Sort ascending")
	listCmd.Flags().IntVarP(&flagLimit, "limit", "l", 20, "Maximum rows; 0 for all")
	listCmd.Flags().BoolVar(&flagBookmarked, "bookmarked", false, "Only bookmarked transactions")
	rootCmd.AddCommand(listCmd)
}

func buildFilter() (finance.Filter, error) {
	f := finance.Filter{
		Search:    strings.TrimSpace(flagSearch),
		Category:  flagListCat,
		Kind:      core.Kind(strings.ToLower(flagKind)),
		SortBy:    strings.ToLower(flagSortBy),
		Ascending: flagAscending,
	}
	if flagSince != "" {
		d, err := core.ParseDate(flagSince)
		if err != nil {
			return f, fmt.Errorf("invalid --from: %w", err)
		}
		f.From = d
	}
	if flagUntil != "" {
		d, err := core.ParseDate(flagUntil)
		if err != nil {
			return f, fmt.Errorf("invalid --to: %w", err)
		}
		f.To = d
	}
	return f, f.Validate()
}

func runList(cmd *cobra.Command, _ []string) error {
	f, err := buildFilter()
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	snap := s.app.Book.Snapshot()
	var txs []core.Transaction
	if flagBookmarked {
		txs = finance.Bookmarked(snap)
	} else {
		txs = finance.Apply(snap, f)
	}
	total := len(txs)
	if flagLimit > 0 && len(txs) > flagLimit {
		txs = txs[:flagLimit]
	}

	if len(txs) == 0 {
		fmt.Println("\n  No matching transactions.")
		return nil
	}

	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		mark := ""
		if t.Bookmarked {
			mark = "*"
		}
		amount := s.money(t.Amount)
		if t.Kind == core.Expense {
			amount = "-" + amount
		}
		rows = append(rows, []string{
			t.Date.Format("2006-01-02"),
			cli.Truncate(t.Title, 30),
			string(t.Category),
			amount,
			mark,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Transactions (%d of %d)", len(txs), total),
		Headers: []string{"Date", "Title", "Category", "Amount", "★"},
		Rows:    rows,
	}))
	return nil
}
