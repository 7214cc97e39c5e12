package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/change8/BiddingAssistant/api/schemas"
)

func statusPtr(s schemas.JobStatus) *schemas.JobStatus { return &s }

func TestMemory_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	created, err := m.Create(ctx, &schemas.Job{
		JobID:    "job-1",
		Source:   schemas.SourceText,
		Metadata: map[string]any{"mode": "rules"},
	})
	require.NoError(t, err)
	assert.Equal(t, schemas.JobPending, created.Status, "status defaults to pending")
	assert.False(t, created.CreatedAt.IsZero())

	got, err := m.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, created.JobID, got.JobID)

	// Returned jobs are clones; mutating them must not touch the store.
	got.Metadata["mode"] = "mutated"
	again, err := m.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "rules", again.Metadata["mode"])
}

func TestMemory_CreateRejectsDuplicatesAndEmptyIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Create(ctx, &schemas.Job{})
	require.Error(t, err)

	_, err = m.Create(ctx, &schemas.Job{JobID: "job-1"})
	require.NoError(t, err)
	_, err = m.Create(ctx, &schemas.Job{JobID: "job-1"})
	require.Error(t, err)
}

func TestMemory_GetUnknownJob(t *testing.T) {
	m := NewMemory()
	_, err := m.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestMemory_UpdateMergesPartialFields(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_, err := m.Create(ctx, &schemas.Job{
		JobID:    "job-1",
		Metadata: map[string]any{"mode": "rules"},
	})
	require.NoError(t, err)

	started := time.Now().UTC()
	textLen := 42
	updated, err := m.Update(ctx, "job-1", schemas.JobUpdate{
		Status:     statusPtr(schemas.JobProcessing),
		StartedAt:  &started,
		TextLength: &textLen,
		Metadata:   map[string]any{"preprocess": map[string]any{"removed_chars": 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, schemas.JobProcessing, updated.Status)
	assert.Equal(t, 42, updated.TextLength)
	require.NotNil(t, updated.StartedAt)
	assert.Equal(t, "rules", updated.Metadata["mode"], "metadata keys merge, not replace")
	assert.Contains(t, updated.Metadata, "preprocess")

	// Timestamps are set exactly once; a later value must not rewind them.
	later := started.Add(time.Hour)
	updated, err = m.Update(ctx, "job-1", schemas.JobUpdate{StartedAt: &later})
	require.NoError(t, err)
	assert.True(t, updated.StartedAt.Equal(started))
}

func TestMemory_UpdateUnknownJob(t *testing.T) {
	m := NewMemory()
	_, err := m.Update(context.Background(), "missing", schemas.JobUpdate{})
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_, err := m.Create(ctx, &schemas.Job{JobID: "job-1"})
	require.NoError(t, err)

	deleted, err := m.Delete(ctx, "job-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = m.Delete(ctx, "job-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Create(ctx, &schemas.Job{JobID: "shared"})
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		id := fmt.Sprintf("job-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Full lifecycle on a private id.
			_, err := m.Create(ctx, &schemas.Job{JobID: id})
			assert.NoError(t, err)
			_, err = m.Update(ctx, id, schemas.JobUpdate{
				Status:   statusPtr(schemas.JobProcessing),
				Metadata: map[string]any{"worker": id},
			})
			assert.NoError(t, err)
			got, err := m.Get(ctx, id)
			if assert.NoError(t, err) {
				assert.Equal(t, schemas.JobProcessing, got.Status)
			}
			deleted, err := m.Delete(ctx, id)
			assert.NoError(t, err)
			assert.True(t, deleted)

			// Contended reads and writes on the shared id.
			_, err = m.Update(ctx, "shared", schemas.JobUpdate{
				Status:   statusPtr(schemas.JobProcessing),
				Metadata: map[string]any{id: true},
			})
			assert.NoError(t, err)
			_, err = m.Get(ctx, "shared")
			assert.NoError(t, err)
			_, err = m.List(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	jobs, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1, "every private job deleted, shared job remains")

	shared, err := m.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, schemas.JobProcessing, shared.Status)
	assert.Len(t, shared.Metadata, workers, "every worker's metadata key merged")
}

func TestMemory_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Now().UTC()

	for i, id := range []string{"old", "mid", "new"} {
		_, err := m.Create(ctx, &schemas.Job{
			JobID:     id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	jobs, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "new", jobs[0].JobID)
	assert.Equal(t, "old", jobs[2].JobID)
}
