// Package rules holds the ordered keyword taxonomy that maps bank-statement
// descriptions to accounting classifications.
package rules

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/flujo-dev/flujo/internal/model"
	"github.com/flujo-dev/flujo/internal/normalize"
)

// Branch selects the rule list evaluated for a transaction.
type Branch string

const (
	BranchCredit Branch = "credit"
	BranchDebit  Branch = "debit"
)

// Rule assigns Label when the description contains any of Keywords.
type Rule struct {
	Label    model.Classification `yaml:"label"`
	Keywords []string             `yaml:"keywords"`
}

// Table is a priority-ordered rule set, split by transaction sign.
// Within a branch the first matching rule wins.
type Table struct {
	Name   string `yaml:"name"`
	Credit []Rule `yaml:"credit"`
	Debit  []Rule `yaml:"debit"`
}

// Match describes which rule produced a classification.
type Match struct {
	Branch  Branch
	Index   int // position in the branch, -1 when nothing matched
	Keyword string
	Label   model.Classification
}

// Matched reports whether a rule matched.
func (m Match) Matched() bool { return m.Index >= 0 }

// Classify returns the label for a normalized description and the net
// (credit minus debit) amount. Net > 0 uses the credit rules; zero and
// negative amounts use the debit rules.
func (t *Table) Classify(normalized string, net decimal.Decimal) model.Classification {
	return t.Explain(normalized, net).Label
}

// Explain is Classify with the matching rule reported.
func (t *Table) Explain(normalized string, net decimal.Decimal) Match {
	branch, list := BranchDebit, t.Debit
	if net.IsPositive() {
		branch, list = BranchCredit, t.Credit
	}
	for i, r := range list {
		for _, kw := range r.Keywords {
			if strings.Contains(normalized, kw) {
				return Match{Branch: branch, Index: i, Keyword: kw, Label: r.Label}
			}
		}
	}
	return Match{Branch: branch, Index: -1, Label: model.Unclassified}
}

// Labels returns every distinct label the table can produce, credit rules
// first, in rule order.
func (t *Table) Labels() []model.Classification {
	seen := make(map[model.Classification]bool)
	var labels []model.Classification
	for _, list := range [][]Rule{t.Credit, t.Debit} {
		for _, r := range list {
			if !seen[r.Label] {
				seen[r.Label] = true
				labels = append(labels, r.Label)
			}
		}
	}
	return labels
}

// Normalized returns a copy of t whose keywords are normalized the same way
// as descriptions, so that authors may write them in any case.
func (t *Table) Normalized() *Table {
	out := &Table{Name: t.Name}
	out.Credit = normalizeRules(t.Credit)
	out.Debit = normalizeRules(t.Debit)
	return out
}

func normalizeRules(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		kws := make([]string, len(r.Keywords))
		for j, kw := range r.Keywords {
			kws[j] = normalize.Normalize(kw)
		}
		out[i] = Rule{Label: r.Label, Keywords: kws}
	}
	return out
}

// ValidationError describes one malformed rule.
type ValidationError struct {
	Branch      Branch
	Index       int
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s rule %d: %s", e.Branch, e.Index+1, e.Description)
}

// Validate reports rules with an empty label, no keywords, or a keyword that
// normalizes to the empty string (which would match everything).
func (t *Table) Validate() []ValidationError {
	var errs []ValidationError
	check := func(branch Branch, rules []Rule) {
		for i, r := range rules {
			if strings.TrimSpace(string(r.Label)) == "" {
				errs = append(errs, ValidationError{Branch: branch, Index: i, Description: "empty label"})
			}
			if r.Label == model.Unclassified {
				errs = append(errs, ValidationError{Branch: branch, Index: i, Description: fmt.Sprintf("label %q is reserved", model.Unclassified)})
			}
			if len(r.Keywords) == 0 {
				errs = append(errs, ValidationError{Branch: branch, Index: i, Description: "no keywords"})
			}
			for _, kw := range r.Keywords {
				if normalize.Normalize(kw) == "" {
					errs = append(errs, ValidationError{Branch: branch, Index: i, Description: fmt.Sprintf("keyword %q is empty after normalization", kw)})
				}
			}
		}
	}
	check(BranchCredit, t.Credit)
	check(BranchDebit, t.Debit)
	return errs
}
