package schemas

import "time"

// JobStatus is the lifecycle state of an analysis job. Transitions are one-way:
// pending -> processing -> {completed | failed}.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// JobSource records how the document entered the system.
type JobSource string

const (
	SourceText JobSource = "text"
	SourceFile JobSource = "file"
)

// Job is the tracked record of one analysis request. It is owned exclusively
// by the job store; callers only ever see copies.
type Job struct {
	JobID       string         `json:"job_id"`
	Status      JobStatus      `json:"status"`
	Source      JobSource      `json:"source"`
	Filename    string         `json:"filename,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	TextLength  int            `json:"text_length"`
	CreatedAt   time.Time      `json:"created_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Result      any            `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Clone returns a copy of the job with its metadata map duplicated, so store
// internals never leak mutable state to callers.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	if j.Metadata != nil {
		cp.Metadata = make(map[string]any, len(j.Metadata))
		for k, v := range j.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

// JobUpdate is a partial-field merge applied to a stored job. Nil fields are
// left untouched; timestamps are set exactly once and never rewound.
type JobUpdate struct {
	Status      *JobStatus
	StartedAt   *time.Time
	CompletedAt *time.Time
	TextLength  *int
	Metadata    map[string]any
	Result      any
	Error       *string
}
