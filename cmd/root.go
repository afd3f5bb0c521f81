package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/shelfscan/internal/config"
	"github.com/lehigh-university-libraries/shelfscan/internal/googlebooks"
	"github.com/lehigh-university-libraries/shelfscan/internal/logger"
	"github.com/lehigh-university-libraries/shelfscan/internal/openlibrary"
	"github.com/lehigh-university-libraries/shelfscan/internal/providers"
	"github.com/spf13/cobra"
)

// cfg is populated by the root command before any subcommand runs
var cfg *config.Config

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shelfscan",
		Short: "Catalog a home library by photographing book barcodes",
		Long: `Shelfscan reads the ISBN barcode from a photo of a book, looks the book up
in Open Library (or Google Books) and keeps a running table of your library
that can be downloaded as CSV.

Run "shelfscan serve" for the web page, or "shelfscan scan" to catalog a folder
of photos from the command line.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			c, err := config.Load()
			if err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return err
			}
			logger.Setup(c.LogLevel, c.LogFormat)
			cfg = c
			return nil
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newInspectCmd())

	return cmd
}

// newProvider builds the metadata provider selected by SHELFSCAN_PROVIDER
func newProvider(ctx context.Context, c *config.Config) (providers.Provider, error) {
	switch c.Provider {
	case "", "openlibrary":
		return openlibrary.NewClient(openlibrary.Options{
			UserAgent: c.UserAgent,
			Timeout:   c.LookupTimeout,
			RPS:       c.LookupRPS,
		}), nil
	case "googlebooks":
		if c.GoogleBooksAPIKey == "" {
			slog.Warn("GOOGLE_BOOKS_API_KEY is not set; Google Books allows a small anonymous quota")
		}
		return googlebooks.New(ctx, googlebooks.Options{
			APIKey:  c.GoogleBooksAPIKey,
			Timeout: c.LookupTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", c.Provider)
	}
}
