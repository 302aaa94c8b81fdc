package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"smartbudget/internal/finance"
)

// Policy holds the tunable finance tables.
type Policy struct {
	Health finance.HealthPolicy
	Rates  finance.Rates
}

type policyFile struct {
	Health finance.HealthPolicy `toml:"health"`
	Rates  map[string]float64   `toml:"rates"`
}

// DefaultPolicy returns the built-in tables.
func DefaultPolicy() Policy {
	return Policy{Health: finance.DefaultHealthPolicy(), Rates: finance.DefaultRates()}
}

// LoadPolicy reads a TOML policy file on top of the defaults. An empty
// path yields the defaults. Keys present in the [health] table replace the
// stock values; [rates] entries are merged into the rate table.
//
//	[health]
//	base = 40
//	[[health.savings]]
//	op = ">="
//	threshold = 30
//	points = 30
//	[rates]
//	EUR = 0.92
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if strings.TrimSpace(path) == "" {
		return p, nil
	}

	f := policyFile{Health: p.Health}
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return Policy{}, fmt.Errorf("decode policy %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Policy{}, fmt.Errorf("policy %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	var problems []string
	codes := make([]string, 0, len(f.Rates))
	for code := range f.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		rate := f.Rates[code]
		upper := strings.ToUpper(code)
		switch {
		case len(upper) != 3:
			problems = append(problems, fmt.Sprintf("rate %q: currency code must have 3 letters", code))
		case rate <= 0:
			problems = append(problems, fmt.Sprintf("rate %s: must be positive", upper))
		case upper == finance.BaseCurrency && rate != 1:
			problems = append(problems, fmt.Sprintf("rate %s: base currency must stay at 1", upper))
		default:
			p.Rates[upper] = rate
		}
	}
	if err := f.Health.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return Policy{}, errors.New("policy validation failed:\n- " + strings.Join(problems, "\n- "))
	}

	p.Health = f.Health
	return p, nil
}
