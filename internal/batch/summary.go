// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pdiddy/pdfwork/pkg/types"
)

// Summarize reduces an ordered result sequence into a BatchSummary. Pure
// reduction, no I/O; the empty sequence yields all-zero counts.
func Summarize(results []types.JobResult) types.BatchSummary {
	s := types.BatchSummary{
		TotalFiles: len(results),
		Results:    results,
	}
	for _, r := range results {
		if r.Succeeded {
			s.Succeeded++
		} else {
			s.Failed++
		}
		s.TotalInputBytes += r.InputBytes
		s.TotalOutputBytes += r.OutputBytes
		s.TotalDuration += r.Duration
	}
	return s
}

// PrintSummary renders the human-readable batch report, listing every failed
// file with its error message.
func PrintSummary(w io.Writer, s types.BatchSummary) {
	fmt.Fprintf(w, "\nBatch summary: %d succeeded, %d failed (total: %d)\n",
		s.Succeeded, s.Failed, s.TotalFiles)
	if s.TotalFiles == 0 {
		return
	}

	fmt.Fprintf(w, "  input size:  %s\n", humanize.IBytes(uint64(s.TotalInputBytes)))
	fmt.Fprintf(w, "  output size: %s\n", humanize.IBytes(uint64(s.TotalOutputBytes)))
	if saved := s.SpaceSaved(); saved > 0 {
		fmt.Fprintf(w, "  saved:       %s (%.1f%%)\n",
			humanize.IBytes(uint64(saved)), s.CompressionPercent())
	}
	fmt.Fprintf(w, "  elapsed:     %s\n", s.TotalDuration.Round(time.Millisecond))

	for _, r := range s.FailedResults() {
		fmt.Fprintf(w, "  failed: %s (%s)\n", r.Task.RelPath, r.ErrorMessage)
	}
}
