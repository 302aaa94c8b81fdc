package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags puts every flag of cmd and its children back to its default,
// since cobra keeps parsed values between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	stdout := os.Stdout
	os.Stdout = w
	out := make(chan string)
	go func() {
		b, _ := io.ReadAll(r)
		out <- string(b)
	}()

	rootCmd.SetArgs(args)
	runErr := rootCmd.ExecuteContext(context.Background())

	_ = w.Close()
	os.Stdout = stdout
	return <-out, runErr
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	got, err := execute(t, args...)
	if err != nil {
		t.Fatalf("budgetctl %s: %v", strings.Join(args, " "), err)
	}
	return got
}

func TestCommands_FileBackend(t *testing.T) {
	t.Setenv("POLICY_FILE", "")
	t.Setenv("DEFAULT_CURRENCY", "USD")
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	dir := t.TempDir()
	on := func(args ...string) []string {
		return append([]string{"-q", "-b", "file", "-d", dir}, args...)
	}

	got := mustExecute(t, on("add", "expense", "--title", "Train", "--amount", "17", "--category", "Travel")...)
	if !strings.Contains(got, "Train") || !strings.Contains(got, "$17.00") {
		t.Errorf("add output = %q", got)
	}

	got = mustExecute(t, on("budget", "set", "Travel", "85", "--currency", "EUR")...)
	if !strings.Contains(got, "€85.00") {
		t.Errorf("budget set output = %q", got)
	}

	got = mustExecute(t, on("summary", "--currency", "EUR")...)
	for _, want := range []string{"Travel", "€14.45 / €85.00"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q in %q", want, got)
		}
	}

	path := filepath.Join(t.TempDir(), "export.json")
	mustExecute(t, on("export", "-o", path)...)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Budgets map[string]float64 `json:"budgets"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Budgets["Travel"] != 100 {
		t.Errorf("stored Travel budget = %v, want 100 in the base currency", doc.Budgets["Travel"])
	}

	other := t.TempDir()
	got = mustExecute(t, "-q", "-b", "file", "-d", other, "import", path)
	if !strings.Contains(got, "1 expenses") {
		t.Errorf("import output = %q", got)
	}
	got = mustExecute(t, "-q", "-b", "file", "-d", other, "summary")
	if !strings.Contains(got, "$17.00 / $100.00") {
		t.Errorf("summary after import = %q", got)
	}
}

func TestAdd_RequiresCategory(t *testing.T) {
	t.Setenv("POLICY_FILE", "")
	t.Setenv("DEFAULT_CURRENCY", "USD")
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	_, err := execute(t, "-q", "-b", "memory", "add", "expense", "--title", "Taxi", "--amount", "9")
	if err == nil || !strings.Contains(err.Error(), "category") {
		t.Fatalf("err = %v, want a missing category error", err)
	}
}
