package dataset

import (
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"
)

// maxSampleLocators bounds the degraded-locator sample kept in the
// run summary.
const maxSampleLocators = 5

// RunSummary reports what happened to every catalog row. Degraded rows
// (missing artifacts, decode failures, timeouts) are never silently
// swallowed; they are counted here and logged once at end of run.
type RunSummary struct {
	TotalRows        int           `json:"total_rows"`
	ExtractedRows    int           `json:"extracted_rows"`
	CacheHits        int           `json:"cache_hits"`
	DegradedRows     int           `json:"degraded_rows"`
	MissingArtifacts int           `json:"missing_artifacts"`
	FailedRows       int           `json:"failed_rows"`
	DegradedSample   []string      `json:"degraded_sample,omitempty"`
	Duration         time.Duration `json:"duration"`
}

// record folds one row result into the summary.
func (s *RunSummary) record(r rowResult) {
	s.TotalRows++

	if r.degraded {
		s.DegradedRows++
		if r.missing {
			s.MissingArtifacts++
		} else {
			s.FailedRows++
		}
		if len(s.DegradedSample) < maxSampleLocators && r.locator != "" {
			s.DegradedSample = append(s.DegradedSample, r.locator)
		}
		return
	}

	if r.fromCache {
		s.CacheHits++
	} else {
		s.ExtractedRows++
	}
}

// Log writes the end-of-run report.
func (s *RunSummary) Log(logger logging.Logger) {
	fields := logging.Fields{
		"total_rows":        s.TotalRows,
		"extracted_rows":    s.ExtractedRows,
		"cache_hits":        s.CacheHits,
		"degraded_rows":     s.DegradedRows,
		"missing_artifacts": s.MissingArtifacts,
		"failed_rows":       s.FailedRows,
		"duration_s":        s.Duration.Seconds(),
	}
	if len(s.DegradedSample) > 0 {
		fields["degraded_sample"] = s.DegradedSample
	}

	if s.DegradedRows > 0 {
		logger.Warn("dataset build completed with degraded rows", fields)
	} else {
		logger.Info("dataset build completed", fields)
	}
}
