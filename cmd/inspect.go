package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/lehigh-university-libraries/shelfscan/internal/export"
	"github.com/lehigh-university-libraries/shelfscan/internal/models"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the books in a CSV or Parquet export",
		Example: `  shelfscan inspect library.csv
  shelfscan inspect library.parquet --limit 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readExport(args[0])
			if err != nil {
				return err
			}

			shown := records
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, strings.Join(export.Header, "\t"))
			for _, r := range shown {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ISBN, r.Title, r.Author, r.Genre)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d books\n", len(shown), len(records))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of books to print (0 for all)")

	return cmd
}

func readExport(path string) ([]models.BookRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return export.ReadCSV(f)
	case ".parquet":
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		return export.ReadParquet(f, info.Size())
	default:
		return nil, fmt.Errorf("cannot inspect %s: expected a .csv or .parquet export", path)
	}
}
