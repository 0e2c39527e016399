package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/flujo-dev/flujo/internal/normalize"
	"github.com/flujo-dev/flujo/internal/rules"
)

func newRulesCommand(g *globalOptions) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the classification rule table",
	}
	rulesCmd.AddCommand(newRulesListCommand(g))
	rulesCmd.AddCommand(newRulesTestCommand(g))
	return rulesCmd
}

func newRulesListCommand(g *globalOptions) *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, g, repoDir)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Rule table: %s\n\n", p.Rules.Name)

			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "BRANCH\t#\tLABEL\tKEYWORDS")
			for _, b := range []struct {
				branch rules.Branch
				list   []rules.Rule
			}{{rules.BranchCredit, p.Rules.Credit}, {rules.BranchDebit, p.Rules.Debit}} {
				for i, r := range b.list {
					fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", b.branch, i+1, r.Label, strings.Join(r.Keywords, " | "))
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "project directory")
	return cmd
}

func newRulesTestCommand(g *globalOptions) *cobra.Command {
	var repoDir string
	var amount string

	cmd := &cobra.Command{
		Use:   "test <description>",
		Short: "Show which rule classifies a description",
		Long: `Show which rule classifies a description. A positive --amount is a
credit (deposit), zero or negative a debit (charge).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := decimal.NewFromString(strings.TrimSpace(amount))
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}
			p, err := loadProject(cmd, g, repoDir)
			if err != nil {
				return err
			}

			normalized := normalize.Normalize(args[0])
			m := p.Rules.Explain(normalized, net)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Normalized: %s\n", normalized)
			fmt.Fprintf(w, "Branch:     %s\n", m.Branch)
			if m.Matched() {
				fmt.Fprintf(w, "Rule:       %s #%d (keyword %q)\n", m.Branch, m.Index+1, m.Keyword)
			} else {
				fmt.Fprintln(w, "Rule:       none")
			}
			fmt.Fprintf(w, "Label:      %s\n", m.Label)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "project directory")
	cmd.Flags().StringVar(&amount, "amount", "-1", "net amount (credit minus debit)")
	return cmd
}
