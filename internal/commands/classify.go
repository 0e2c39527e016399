package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flujo-dev/flujo/internal/importer"
	"github.com/flujo-dev/flujo/internal/pipeline"
)

type classifyOptions struct {
	repo    string
	opening string
	cutoff  string
	out     string
	all     bool
}

func newClassifyCommand(g *globalOptions) *cobra.Command {
	var o classifyOptions

	cmd := &cobra.Command{
		Use:   "classify [statement]",
		Short: "Classify a bank statement and report coverage",
		Long: `Classify every row of a bank statement (CSV or XLSX) with the project's
rule table and export the classified rows, per-classification totals, the
unclassified rows and a cash summary.

With --all, every statement in import/ is classified and moved to
import/processed/.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.all && (len(args) > 0 || o.out != "") {
				return fmt.Errorf("--all takes no statement argument and no --out")
			}
			if !o.all && len(args) == 0 {
				return fmt.Errorf("missing statement file (or use --all)")
			}

			p, err := loadProject(cmd, g, o.repo)
			if err != nil {
				return err
			}
			in := pipeline.Inputs{}
			if in.Opening, err = parseOpening(o.opening); err != nil {
				return err
			}
			if in.Cutoff, err = parseDateFlag("cutoff", o.cutoff); err != nil {
				return err
			}

			if !o.all {
				in.Statement = args[0]
				return runClassify(cmd, p, in, o.out)
			}
			return runClassifyAll(cmd, p, in)
		},
	}

	cmd.Flags().StringVar(&o.repo, "repo", ".", "project directory")
	cmd.Flags().StringVar(&o.opening, "opening", "", "opening balance for the cash summary")
	cmd.Flags().StringVar(&o.cutoff, "cutoff", "", "count coverage up to this date (default: latest transaction)")
	cmd.Flags().StringVar(&o.out, "out", "", "export file, .csv or .xlsx (default exports/<statement>_clasificado.<format>)")
	cmd.Flags().BoolVar(&o.all, "all", false, "classify every statement in import/ and move it to import/processed/")

	return cmd
}

func runClassify(cmd *cobra.Command, p *project, in pipeline.Inputs, out string) error {
	res, err := pipeline.New(p.Config, p.Rules).Run(cmd.Context(), in)
	if err != nil {
		return err
	}
	files, err := p.export("classify", in, res, p.exportPath(out, in.Statement, "clasificado"))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printCoverage(w, res)
	printWritten(w, files)
	return nil
}

func runClassifyAll(cmd *cobra.Command, p *project, in pipeline.Inputs) error {
	files, err := importer.Scan(p.Root)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(files) == 0 {
		fmt.Fprintln(w, "No statements in import/")
		return nil
	}

	for _, f := range files {
		fmt.Fprintf(w, "== %s\n", f.Name)
		in.Statement = f.Path
		if err := runClassify(cmd, p, in, ""); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		if err := importer.MarkProcessed(p.Root, f.Name); err != nil {
			return err
		}
	}
	return nil
}
