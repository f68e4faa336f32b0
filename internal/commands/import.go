package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lettbooks-dev/lettbooks/internal/importer"
	"github.com/lettbooks-dev/lettbooks/internal/ledger"
	"github.com/lettbooks-dev/lettbooks/internal/match"
)

func newImportCommand() *cobra.Command {
	var repoDir, format string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import bank statement CSVs",
		Long: `Import parses bank statement CSV files into ledger transactions.
With a file argument only that file is imported; otherwise every CSV in
the import/ directory is imported and moved to import/processed/.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.Close()

			parser := importer.DefaultRegistry().Get(format)
			if parser == nil {
				return fmt.Errorf("unknown statement format %q", format)
			}

			alloc := ledger.NewAllocator(rt.store, rt.sys, rt.log)
			matcher := match.New(float64(rt.cfg.Ledger.MatchThreshold))
			svc := importer.NewService(rt.store, matcher, alloc, rt.log)

			if len(args) == 1 {
				stats, err := importFile(svc, parser, args[0])
				if err != nil {
					return err
				}
				printStats(args[0], stats)
				return nil
			}

			files, err := importer.Scan(rt.root)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println("No CSV files found in import/")
				return nil
			}
			for _, f := range files {
				stats, err := importFile(svc, parser, f.Path)
				if err != nil {
					return fmt.Errorf("importing %s: %w", f.Name, err)
				}
				if err := importer.MarkProcessed(rt.root, f.Name); err != nil {
					return err
				}
				printStats(f.Name, stats)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&repoDir, "dir", ".", "ledger directory")
	cmd.Flags().StringVar(&format, "format", "bank", "statement format")

	return cmd
}

func importFile(svc *importer.Service, p importer.Parser, path string) (importer.Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return importer.Stats{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return svc.Import(p, f)
}

func printStats(name string, stats importer.Stats) {
	fmt.Printf("%s: imported %d transactions (%d matched, %d uncoded)\n",
		name, stats.Imported, stats.Matched, stats.Uncoded)
}
