package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cinemetric/boxoffice/internal/catalog"
	"github.com/cinemetric/boxoffice/internal/pipeline"
	"github.com/cinemetric/boxoffice/pkg/config"
	"github.com/cinemetric/boxoffice/pkg/httputil"
	"github.com/cinemetric/boxoffice/pkg/logger"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the dataset pipeline once",
	Long: `Runs a single pipeline pass and prints a summary.

This command:
- Resolves the dataset download URL from the data.gouv.fr catalog
- Downloads and parses the workbook
- Normalizes, aggregates and partitions the rows
- Prints the top movies and per-decade counts

Example:
  go run ./cmd/boxoffice run
  go run ./cmd/boxoffice run --top 20`,
	RunE: runPipeline,
}

var (
	runTop int
)

func init() {
	rootCmd.AddCommand(runCmd)

	// Flags
	runCmd.Flags().IntVar(&runTop, "top", 10, "number of top movies to print")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Boxoffice Pipeline ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Create clients and pipeline
	httpClient := httputil.New(cfg, log)
	catalogClient := catalog.NewClient(httpClient, cfg, log)
	pipe := pipeline.New(catalogClient, log)

	// 4. Run one pipeline pass
	start := time.Now()
	snap, err := pipe.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	fmt.Printf("\nSource   : %s\n", snap.SourceURL)
	fmt.Printf("Rows     : %d\n", len(snap.Rows))
	fmt.Printf("Movies   : %d\n", len(snap.AllTime))
	fmt.Printf("Duration : %.2fs\n", time.Since(start).Seconds())

	// 5. Print the all-time top
	top := runTop
	if top > len(snap.AllTime) {
		top = len(snap.AllTime)
	}

	fmt.Printf("\nTop %d all-time (millions of admissions):\n\n", top)
	fmt.Printf("%-4s  %-40s  %10s  %-12s  %s\n", "#", "Title", "Admissions", "Nationality", "Released")
	for i, m := range snap.AllTime[:top] {
		fmt.Printf("%-4d  %-40s  %10s  %-12s  %s\n",
			i+1, m.Title, m.Admissions.StringFixed(2), m.Nationality,
			m.ReleaseDate.Format("2006-01-02"))
	}

	// 6. Print decade counts
	fmt.Println("\nDecades:")
	for _, d := range snap.Decades {
		fmt.Printf("  %-6s (%d-%d): %d movies\n", d.Label, d.Start, d.End, len(d.Movies))
	}

	return nil
}
