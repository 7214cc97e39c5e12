// Package store persists analysis job records. Two drivers exist: an
// in-memory map for single-process setups and tests, and PostgreSQL for
// deployments that need jobs to survive restarts.
package store

import (
	"errors"

	"github.com/change8/BiddingAssistant/api/schemas"
)

// ErrJobNotFound is returned by Get, Update and Delete for unknown job ids.
var ErrJobNotFound = errors.New("job not found")

// applyUpdate merges a partial update into a job. Both drivers share it so
// the merge semantics cannot drift: nil fields are untouched, metadata keys
// merge last-write-wins, and timestamps are set exactly once.
func applyUpdate(job *schemas.Job, upd schemas.JobUpdate) {
	if upd.Status != nil {
		job.Status = *upd.Status
	}
	if upd.StartedAt != nil && job.StartedAt == nil {
		t := *upd.StartedAt
		job.StartedAt = &t
	}
	if upd.CompletedAt != nil && job.CompletedAt == nil {
		t := *upd.CompletedAt
		job.CompletedAt = &t
	}
	if upd.TextLength != nil {
		job.TextLength = *upd.TextLength
	}
	if len(upd.Metadata) > 0 {
		if job.Metadata == nil {
			job.Metadata = make(map[string]any, len(upd.Metadata))
		}
		for k, v := range upd.Metadata {
			job.Metadata[k] = v
		}
	}
	if upd.Result != nil {
		job.Result = upd.Result
	}
	if upd.Error != nil {
		job.Error = *upd.Error
	}
}
