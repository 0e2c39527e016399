package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flujo-dev/flujo/internal/config"
	"github.com/flujo-dev/flujo/internal/gitops"
	"github.com/flujo-dev/flujo/internal/rules"
)

func newInitCommand() *cobra.Command {
	var name string
	var variant string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new flujo project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			if !rules.IsVariant(variant) {
				return fmt.Errorf("unknown --rules %q (want %s)", variant, strings.Join(rules.Variants(), " or "))
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			hash, err := runInit(absDir, name, variant)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized flujo project at %s (%s)\n", absDir, hash)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&variant, "rules", rules.VariantComparativo, "built-in rule table to start from ("+strings.Join(rules.Variants(), ", ")+")")

	return cmd
}

func runInit(dir, name, variant string) (string, error) {
	dirs := []string{
		"rules",
		"logs",
		"import",
		filepath.Join("import", "processed"),
		"projections",
		"exports",
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return "", fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(name, variant)
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	if err := rules.Save(dir, rules.DefaultTable(variant)); err != nil {
		return "", fmt.Errorf("writing rules: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(".env\n"), 0o644); err != nil {
		return "", fmt.Errorf("writing .gitignore: %w", err)
	}

	for _, d := range []string{"import", "projections", "exports"} {
		if err := os.WriteFile(filepath.Join(dir, d, ".gitkeep"), []byte{}, 0o644); err != nil {
			return "", fmt.Errorf("writing .gitkeep: %w", err)
		}
	}

	if err := gitops.Init(dir); err != nil {
		return "", fmt.Errorf("git init: %w", err)
	}

	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(dir, "init: Initialize "+name, author)
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	return hash, nil
}
