package dto

import "github.com/limkokwing/registry-sync/pkg/jobs"

// JobSubmitted acknowledges a background run with its polling handle.
type JobSubmitted struct {
	JobID string `json:"job_id"`
	Type  string `json:"type"`
}

// JobList wraps the runner's history for the control API.
type JobList struct {
	Jobs []jobs.Snapshot `json:"jobs"`
}

// Health reports readiness of the engine's two dependencies: the local
// store and the CMS session.
type Health struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	CMSSession string `json:"cms_session"`
}
