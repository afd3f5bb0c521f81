package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/shelfscan/internal/barcode"
	"github.com/lehigh-university-libraries/shelfscan/internal/cataloging"
	"github.com/lehigh-university-libraries/shelfscan/internal/export"
	"github.com/lehigh-university-libraries/shelfscan/internal/images"
	"github.com/lehigh-university-libraries/shelfscan/internal/models"
	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	var formatName string
	var output string

	cmd := &cobra.Command{
		Use:   "scan FILE...",
		Short: "Catalog barcode photos from the command line",
		Long: `Scans each photo for an ISBN barcode, looks the book up and writes the
resulting library in the chosen format. Directories are walked one level deep.

Progress messages go to stderr so the export can be piped.`,
		Example: `  # Catalog a folder of phone photos to a CSV file
  shelfscan scan ./photos --output library.csv

  # Write parquet to stdout
  shelfscan scan a.jpg b.heic --format parquet > library.parquet`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			files, err := expandInputs(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no jpg, png or heic files found")
			}

			provider, err := newProvider(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			service := cataloging.NewService(barcode.NewDetector(), provider)
			lib := models.NewLibrary("cli")

			stderr := cmd.ErrOrStderr()
			for _, path := range files {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				outcome, err := scanFile(cmd, service, lib, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(stderr, "%s: %s\n", filepath.Base(path), outcome.Message)
			}

			if output == "" {
				err = export.Write(cmd.OutOrStdout(), format, lib.Records())
			} else {
				var f *os.File
				if f, err = os.Create(output); err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				err = writeAndClose(f, format, lib.Records())
			}
			if err != nil {
				return err
			}
			slog.Info("Scan complete", "files", len(files), "books", lib.Len(), "format", format, "output", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "csv", "Output format: csv, yaml or parquet")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")

	return cmd
}

// writeAndClose exports records to wc and reports a failed close, which is
// where buffered file writes surface their errors
func writeAndClose(wc io.WriteCloser, format export.Format, records []models.BookRecord) error {
	if err := export.Write(wc, format, records); err != nil {
		_ = wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func scanFile(cmd *cobra.Command, service *cataloging.Service, lib *models.Library, path string) (cataloging.Outcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return cataloging.Outcome{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return service.Scan(cmd.Context(), lib, filepath.Base(path), f), nil
}

// expandInputs keeps accepted image files and lists the accepted files directly inside directories
func expandInputs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if !images.AllowedExtension(arg) {
				slog.Warn("Skipping unsupported file", "path", arg)
				continue
			}
			files = append(files, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", arg, err)
		}
		for _, e := range entries {
			if e.IsDir() || !images.AllowedExtension(e.Name()) {
				continue
			}
			files = append(files, filepath.Join(arg, e.Name()))
		}
	}
	return files, nil
}
