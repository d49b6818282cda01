package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/cinemetric/boxoffice/internal/catalog"
	"github.com/cinemetric/boxoffice/internal/movies"
	"github.com/cinemetric/boxoffice/internal/workbook"
	"github.com/cinemetric/boxoffice/pkg/logger"
)

// Decade is one decade-scoped ranking view
type Decade struct {
	Label  string         `json:"label"`
	Start  int            `json:"start"`
	End    int            `json:"end"`
	Movies []movies.Movie `json:"movies"`
}

// Snapshot is the complete output of one pipeline run. It is immutable once
// built: a new run produces a whole new snapshot, never a mutation.
type Snapshot struct {
	SourceURL string
	FetchedAt time.Time

	// Rows is the normalized pre-aggregation table the decade views are
	// derived from
	Rows []movies.Row

	// AllTime is the canonical ranking, one entry per distinct title
	AllTime []movies.Movie

	// Decades are the standing views: 2000s, 2010s and the partial 2020s
	Decades []Decade
}

// Decade returns the standing view beginning at start, or nil
func (s *Snapshot) Decade(start int) *Decade {
	for i := range s.Decades {
		if s.Decades[i].Start == start {
			return &s.Decades[i]
		}
	}
	return nil
}

// Pipeline runs the full fetch -> load -> normalize -> aggregate -> partition
// chain. Every stage consumes the previous stage's full output; any stage
// error aborts the run and no partial result is surfaced.
type Pipeline struct {
	catalog *catalog.Client
	logger  *logger.Logger

	// now bounds the partial current decade; injected for tests
	now func() time.Time
}

// New creates a new pipeline
func New(catalogClient *catalog.Client, log *logger.Logger) *Pipeline {
	return &Pipeline{
		catalog: catalogClient,
		logger:  log,
		now:     time.Now,
	}
}

// WithClock overrides the pipeline clock
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Run executes one full pipeline pass and returns a fresh snapshot
func (p *Pipeline) Run(ctx context.Context) (*Snapshot, error) {
	started := p.now()

	// 1. Resolve the download URL through the catalog
	url, err := p.catalog.ResolveDownloadURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	// 2. Download and parse the workbook
	wb, err := p.catalog.DownloadWorkbook(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer wb.Close()

	// 3. Flatten the year-batch sheets
	raws, err := workbook.Parse(wb)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	// 4. Normalize fields
	rows, err := movies.Normalize(raws)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	// 5. Aggregate and partition
	allTime := movies.Aggregate(rows)
	currentYear := p.now().Year()
	decades := []Decade{
		{Label: "2000s", Start: 2000, End: 2009, Movies: movies.PartitionYears(rows, 2000, 2009)},
		{Label: "2010s", Start: 2010, End: 2019, Movies: movies.PartitionYears(rows, 2010, 2019)},
		{Label: "2020s", Start: 2020, End: currentYear, Movies: movies.PartitionYears(rows, 2020, currentYear)},
	}

	p.logger.WithFields(map[string]interface{}{
		"rows":     len(rows),
		"movies":   len(allTime),
		"duration": time.Since(started),
	}).Info("Pipeline run completed")

	return &Snapshot{
		SourceURL: url,
		FetchedAt: started,
		Rows:      rows,
		AllTime:   allTime,
		Decades:   decades,
	}, nil
}
