package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/change8/BiddingAssistant/api/schemas"
)

// Memory is the in-process job store. All methods hand out clones; callers
// never see the stored instances.
type Memory struct {
	mu   sync.RWMutex
	jobs map[string]*schemas.Job
}

// NewMemory returns an empty in-memory job store.
func NewMemory() *Memory {
	return &Memory{jobs: make(map[string]*schemas.Job)}
}

// Create implements schemas.JobStore.
func (m *Memory) Create(_ context.Context, job *schemas.Job) (*schemas.Job, error) {
	if job.JobID == "" {
		return nil, fmt.Errorf("job id must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[job.JobID]; exists {
		return nil, fmt.Errorf("job %q already exists", job.JobID)
	}

	stored := job.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	if stored.Status == "" {
		stored.Status = schemas.JobPending
	}
	m.jobs[job.JobID] = stored
	return stored.Clone(), nil
}

// Get implements schemas.JobStore.
func (m *Memory) Get(_ context.Context, id string) (*schemas.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return job.Clone(), nil
}

// Update implements schemas.JobStore.
func (m *Memory) Update(_ context.Context, id string, upd schemas.JobUpdate) (*schemas.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	applyUpdate(job, upd)
	return job.Clone(), nil
}

// Delete implements schemas.JobStore. The bool reports whether a job was
// actually removed.
func (m *Memory) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return false, nil
	}
	delete(m.jobs, id)
	return true, nil
}

// List implements schemas.JobStore, newest first.
func (m *Memory) List(_ context.Context) ([]*schemas.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]*schemas.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job.Clone())
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}
