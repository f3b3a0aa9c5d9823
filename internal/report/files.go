package report

import (
	"context"
	"fmt"
	"os"

	"emoeval/internal/runner"
)

// WriteRunReports writes summary.txt and report.html into the run directory.
func WriteRunReports(ctx context.Context, results runner.Results, paths runner.OutputPaths) error {
	file, err := os.Create(paths.SummaryPath())
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	if err := WriteSummary(file, results); err != nil {
		_ = file.Close()
		return fmt.Errorf("write summary: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close summary: %w", err)
	}
	return WriteHTML(ctx, paths.ReportPath(), results)
}
