package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"smartbudget/internal/core"
	"smartbudget/internal/ledger"
)

var (
	flagTitle       string
	flagAmount      string
	flagCategory    string
	flagDate        string
	flagDescription string
	flagTags        []string
)

var addCmd = &cobra.Command{
	Use:       "add expense|income",
	Short:     "Record an expense or an income",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(core.Expense), string(core.Income)},
	RunE:      runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&flagTitle, "title", "t", "", "Title of the transaction")
	addCmd.Flags().StringVarP(&flagAmount, "amount", "a", "", "Amount, e.g. 12.50 or 12,50")
	addCmd.Flags().StringVar(&flagCategory, "category", "", "Category of the kind, e.g. \"Food & Dining\" or \"Salary\"")
	addCmd.Flags().StringVar(&flagDate, "date", "", "Date as YYYY-MM-DD; defaults to today")
	addCmd.Flags().StringVar(&flagDescription, "description", "", "Free-form description")
	addCmd.Flags().StringSliceVar(&flagTags, "tag", nil, "Tag, repeatable or comma separated")
	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("amount")
	_ = addCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	kind := core.Kind(strings.ToLower(args[0]))

	var date time.Time
	if flagDate != "" {
		d, err := core.ParseDate(flagDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", flagDate, err)
		}
		date = d
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := s.app.Book.Add(cmd.Context(), kind, ledger.Draft{
		Title:       flagTitle,
		Amount:      flagAmount,
		Category:    flagCategory,
		Date:        date,
		Description: flagDescription,
		Tags:        flagTags,
	})
	if err != nil {
		return err
	}

	fmt.Printf("  Added %s %s  %s  %s  (%s)\n",
		kind, t.ID, t.Title, s.money(t.Amount), t.Category)
	return nil
}
