package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"smartbudget/internal/finance"
)

func writePolicy(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPolicy_Defaults(t *testing.T) {
	p, err := LoadPolicy("")
	if err != nil {
		t.Fatalf("LoadPolicy(\"\") error = %v", err)
	}
	if p.Health.Base != 50 || len(p.Health.SavingsBands) != 4 {
		t.Errorf("unexpected default health policy: %+v", p.Health)
	}
	if !p.Rates.Has("EUR") {
		t.Error("default rates should include EUR")
	}
}

func TestLoadPolicy_Overrides(t *testing.T) {
	path := writePolicy(t, `
[health]
base = 40

[[health.savings]]
op = ">="
threshold = 30
points = 30

[health.no_data]
name = "Empty"

[rates]
eur = 0.92
XYZ = 2.5
`)

	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy() error = %v", err)
	}
	if p.Health.Base != 40 {
		t.Errorf("Base = %v, want 40", p.Health.Base)
	}
	if len(p.Health.SavingsBands) != 1 || p.Health.SavingsBands[0].Points != 30 {
		t.Errorf("SavingsBands = %+v, want the single override", p.Health.SavingsBands)
	}
	if len(p.Health.ExpenseBands) != 3 {
		t.Errorf("ExpenseBands should keep the defaults, got %+v", p.Health.ExpenseBands)
	}
	if p.Health.NoData.Name != "Empty" || p.Health.NoData.Color != "#6b7280" {
		t.Errorf("NoData = %+v", p.Health.NoData)
	}
	if p.Rates["EUR"] != 0.92 || p.Rates["XYZ"] != 2.5 || p.Rates["GBP"] != 0.73 {
		t.Errorf("unexpected rates: EUR=%v XYZ=%v GBP=%v", p.Rates["EUR"], p.Rates["XYZ"], p.Rates["GBP"])
	}
	if _, ok := p.Rates["eur"]; ok {
		t.Error("rate codes should be normalized to upper case")
	}
	if finance.DefaultRates()["EUR"] != 0.85 {
		t.Error("defaults must not be mutated")
	}
}

func TestLoadPolicy_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[health\nbase = 1", "decode policy"},
		{"unknown key", "[health]\nbonus = 3", "unknown keys health.bonus"},
		{"bad operator", "[[health.expense]]\nop = \"=\"\nthreshold = 1\npoints = 1", "unknown operator"},
		{"negative rate", "[rates]\nEUR = -1", "rate EUR: must be positive"},
		{"base rate", "[rates]\nUSD = 2", "base currency must stay at 1"},
		{"bad code", "[rates]\nEURO = 1", "must have 3 letters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPolicy(writePolicy(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	if _, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}
