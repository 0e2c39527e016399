package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flujo-dev/flujo/internal/importer"
)

func newImportCommand(g *globalOptions) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Manage statements waiting in import/",
	}
	importCmd.AddCommand(newImportScanCommand(g))
	return importCmd
}

func newImportScanCommand(g *globalOptions) *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List statements in import/ that have not been processed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, g, repoDir)
			if err != nil {
				return err
			}
			files, err := importer.Scan(p.Root)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(w, "No statements in import/")
				return nil
			}
			reg := importer.DefaultRegistry()
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "FILE\tFORMAT\tBYTES")
			for _, f := range files {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", f.Name, reg.ForPath(f.Name).Format(), f.Size)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "project directory")
	return cmd
}
