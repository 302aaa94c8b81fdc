package finance

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Comparison operators accepted in a scoring band.
const (
	OpGTE = ">="
	OpGT  = ">"
	OpLTE = "<="
	OpLT  = "<"
)

// Band awards Points when the measured rate satisfies Op Threshold.
type Band struct {
	Op        string  `toml:"op" json:"op"`
	Threshold float64 `toml:"threshold" json:"threshold"`
	Points    float64 `toml:"points" json:"points"`
}

func (b Band) matches(v float64) bool {
	switch b.Op {
	case OpGTE:
		return v >= b.Threshold
	case OpGT:
		return v > b.Threshold
	case OpLTE:
		return v <= b.Threshold
	case OpLT:
		return v < b.Threshold
	default:
		return false
	}
}

// Label names a score range starting at Min.
type Label struct {
	Min   float64 `toml:"min" json:"min"`
	Name  string  `toml:"name" json:"name"`
	Color string  `toml:"color" json:"color"`
}

// HealthPolicy is the additive scoring table. Bands are evaluated in order
// and only the first match of each list applies. Labels must be sorted by
// Min descending; the last one is the catch-all.
type HealthPolicy struct {
	Base               float64 `toml:"base"`
	Min                float64 `toml:"min"`
	Max                float64 `toml:"max"`
	SavingsBands       []Band  `toml:"savings"`
	ExpenseBands       []Band  `toml:"expense"`
	DiversityThreshold int     `toml:"diversity_threshold"`
	DiversityBonus     float64 `toml:"diversity_bonus"`
	Labels             []Label `toml:"labels"`
	NoData             Label   `toml:"no_data"`
}

// DefaultHealthPolicy returns the stock weights.
func DefaultHealthPolicy() HealthPolicy {
	return HealthPolicy{
		Base: 50,
		Min:  0,
		Max:  100,
		SavingsBands: []Band{
			{Op: OpGTE, Threshold: 20, Points: 25},
			{Op: OpGTE, Threshold: 10, Points: 15},
			{Op: OpGTE, Threshold: 5, Points: 5},
			{Op: OpLT, Threshold: 0, Points: -20},
		},
		ExpenseBands: []Band{
			{Op: OpLTE, Threshold: 50, Points: 15},
			{Op: OpLTE, Threshold: 70, Points: 5},
			{Op: OpGT, Threshold: 90, Points: -15},
		},
		DiversityThreshold: 5,
		DiversityBonus:     10,
		Labels: []Label{
			{Min: 80, Name: "Excellent", Color: "#10b981"},
			{Min: 60, Name: "Good", Color: "#3b82f6"},
			{Min: 40, Name: "Fair", Color: "#f59e0b"},
			{Min: 0, Name: "Needs Improvement", Color: "#ef4444"},
		},
		NoData: Label{Min: 0, Name: "No Data", Color: "#6b7280"},
	}
}

// Validate reports every problem of the policy at once.
func (p HealthPolicy) Validate() error {
	var problems []string
	if p.Min > p.Max {
		problems = append(problems, fmt.Sprintf("min %v is greater than max %v", p.Min, p.Max))
	}
	check := func(list string, bands []Band) {
		for i, b := range bands {
			switch b.Op {
			case OpGTE, OpGT, OpLTE, OpLT:
			default:
				problems = append(problems, fmt.Sprintf("%s band %d: unknown operator %q", list, i, b.Op))
			}
		}
	}
	check("savings", p.SavingsBands)
	check("expense", p.ExpenseBands)
	if len(p.Labels) == 0 {
		problems = append(problems, "at least one label is required")
	}
	for i := 1; i < len(p.Labels); i++ {
		if p.Labels[i].Min > p.Labels[i-1].Min {
			problems = append(problems, fmt.Sprintf("label %q must not have a higher min than %q", p.Labels[i].Name, p.Labels[i-1].Name))
		}
	}
	for i, l := range p.Labels {
		if strings.TrimSpace(l.Name) == "" {
			problems = append(problems, fmt.Sprintf("label %d has no name", i))
		}
	}
	if p.DiversityThreshold < 0 {
		problems = append(problems, "diversity threshold must not be negative")
	}
	if len(problems) > 0 {
		return errors.New("invalid health policy:\n- " + strings.Join(problems, "\n- "))
	}
	return nil
}

// Health is a bounded score with its qualitative label.
type Health struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
	Color string  `json:"color"`
}

// HealthScore maps aggregates to a score using the policy. Without income
// the score is 0 with the NoData label.
func HealthScore(r Result, p HealthPolicy) Health {
	if r.TotalIncome == 0 {
		return Health{Score: 0, Label: p.NoData.Name, Color: p.NoData.Color}
	}
	savingsRate := r.NetBalance / r.TotalIncome * 100
	expenseRatio := r.TotalExpenses / r.TotalIncome * 100

	score := p.Base
	score += firstMatch(p.SavingsBands, savingsRate)
	score += firstMatch(p.ExpenseBands, expenseRatio)
	if len(r.ExpensesByCategory) > p.DiversityThreshold {
		score += p.DiversityBonus
	}
	score = math.Max(p.Min, math.Min(p.Max, score))

	h := Health{Score: score}
	for _, l := range p.Labels {
		if score >= l.Min {
			h.Label, h.Color = l.Name, l.Color
			return h
		}
	}
	if n := len(p.Labels); n > 0 {
		h.Label, h.Color = p.Labels[n-1].Name, p.Labels[n-1].Color
	}
	return h
}

func firstMatch(bands []Band, v float64) float64 {
	for _, b := range bands {
		if b.matches(v) {
			return b.Points
		}
	}
	return 0
}
