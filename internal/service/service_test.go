package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/change8/BiddingAssistant/api/schemas"
	"github.com/change8/BiddingAssistant/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubExtractor struct {
	text    string
	meta    map[string]any
	err     error
	gotPath string
}

func (e *stubExtractor) Extract(path, _, _ string) (string, map[string]any, error) {
	e.gotPath = path
	return e.text, e.meta, e.err
}

func okAnalyze(result any) AnalyzeFunc {
	return func(context.Context, string) (any, error) { return result, nil }
}

func newTestService(analyze AnalyzeFunc, extractor schemas.Extractor) (*Service, *store.Memory) {
	mem := store.NewMemory()
	return NewService(mem, analyze, nil, extractor, zap.NewNop()), mem
}

func TestSubmitText_SyncLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(okAnalyze(map[string]any{"summary": "done"}), nil)

	job, err := svc.SubmitText(ctx, "投标文件内容", map[string]any{"mode": "rules"}, nil)
	require.NoError(t, err)

	assert.Equal(t, schemas.JobCompleted, job.Status)
	assert.NotNil(t, job.Result)
	assert.Empty(t, job.Error)
	assert.Equal(t, len([]rune("投标文件内容")), job.TextLength)

	require.NotNil(t, job.StartedAt)
	require.NotNil(t, job.CompletedAt)
	assert.False(t, job.StartedAt.Before(job.CreatedAt))
	assert.False(t, job.CompletedAt.Before(*job.StartedAt))
}

func TestSubmitText_RejectsBlankBeforeJobCreation(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService(okAnalyze(nil), nil)

	_, err := svc.SubmitText(ctx, "   \n\t ", nil, nil)
	require.ErrorIs(t, err, ErrEmptyText)

	jobs, err := mem.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs, "no job record may exist for a rejected submission")
}

func TestProcessText_FailureRecordsAndPropagates(t *testing.T) {
	ctx := context.Background()
	analysisErr := errors.New("engine exploded")
	svc, mem := newTestService(func(context.Context, string) (any, error) {
		return nil, analysisErr
	}, nil)

	job, err := svc.SubmitText(ctx, "text", nil, nil)
	require.ErrorIs(t, err, analysisErr, "synchronous caller sees the failure")

	require.NotNil(t, job)
	assert.Equal(t, schemas.JobFailed, job.Status)
	assert.Contains(t, job.Error, "engine exploded")
	assert.Nil(t, job.Result)
	require.NotNil(t, job.CompletedAt)

	// The record is terminal and readable after the error.
	stored, err := mem.Get(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, schemas.JobFailed, stored.Status)
}

func TestSubmitText_AsyncScheduler(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService(okAnalyze("result"), nil)

	sched := NewWaitScheduler(2)
	job, err := svc.SubmitText(ctx, "async text", nil, sched.Schedule)
	require.NoError(t, err)
	assert.Equal(t, schemas.JobPending, job.Status, "async submission returns the pending record")

	sched.Wait()
	done, err := mem.Get(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, schemas.JobCompleted, done.Status)
	assert.NotNil(t, done.Result)
}

func TestSubmitFile_BlankExtractionFailsWithoutAnalysis(t *testing.T) {
	ctx := context.Background()
	var analyzed bool
	extractor := &stubExtractor{text: "   "}
	svc, _ := newTestService(func(context.Context, string) (any, error) {
		analyzed = true
		return nil, nil
	}, extractor)

	job, err := svc.SubmitFile(ctx, strings.NewReader("raw bytes"), "tender.txt", "text/plain", nil, nil)
	require.NoError(t, err, "extraction failure stays inside the job record")

	assert.Equal(t, schemas.JobFailed, job.Status)
	assert.Contains(t, job.Error, "no extractable text")
	assert.False(t, analyzed, "the analyzer must never run for blank extractions")
}

func TestSubmitFile_ExtractorErrorFailsJob(t *testing.T) {
	ctx := context.Background()
	extractor := &stubExtractor{err: errors.New("unsupported document format")}
	svc, _ := newTestService(okAnalyze(nil), extractor)

	job, err := svc.SubmitFile(ctx, strings.NewReader("%PDF"), "tender.pdf", "application/pdf", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, schemas.JobFailed, job.Status)
	assert.Contains(t, job.Error, "unsupported document format")
}

func TestSubmitFile_SuccessAndTempCleanup(t *testing.T) {
	ctx := context.Background()
	extractor := &stubExtractor{text: "提取的投标文本", meta: map[string]any{"extractor": "plain_text"}}
	svc, _ := newTestService(okAnalyze("ok"), extractor)

	job, err := svc.SubmitFile(ctx, strings.NewReader("提取的投标文本"), "tender.txt", "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, schemas.JobCompleted, job.Status)
	assert.Equal(t, "tender.txt", job.Filename)
	assert.Equal(t, "plain_text", job.Metadata["extractor"])
	assert.Equal(t, "tender.txt", job.Metadata["filename"], "explicit filename fills the metadata gap")

	require.NotEmpty(t, extractor.gotPath)
	_, statErr := os.Stat(extractor.gotPath)
	assert.True(t, os.IsNotExist(statErr), "temporary upload buffer must be removed")
}

func TestSubmitFile_AsyncTempCleanup(t *testing.T) {
	ctx := context.Background()
	extractor := &stubExtractor{text: "content"}
	svc, mem := newTestService(okAnalyze("ok"), extractor)

	sched := NewWaitScheduler(1)
	job, err := svc.SubmitFile(ctx, strings.NewReader("content"), "a.txt", "", nil, sched.Schedule)
	require.NoError(t, err)
	assert.Equal(t, schemas.JobPending, job.Status)

	sched.Wait()
	done, err := mem.Get(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, schemas.JobCompleted, done.Status)

	_, statErr := os.Stat(extractor.gotPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPreprocessMetadataStoredUnderKey(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	pre := preprocessorFunc(func(text string) (string, map[string]any) {
		return strings.TrimSpace(text), map[string]any{"removed_chars": 2}
	})
	svc := NewService(mem, okAnalyze("r"), pre, nil, zap.NewNop())

	job, err := svc.SubmitText(ctx, "  text", nil, nil)
	require.NoError(t, err)
	preMeta, ok := job.Metadata["preprocess"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, preMeta["removed_chars"])
	assert.Equal(t, 4, job.TextLength, "length counts the cleaned text")
}

type preprocessorFunc func(string) (string, map[string]any)

func (f preprocessorFunc) Preprocess(text string) (string, map[string]any) { return f(text) }

func TestReadSide(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(okAnalyze("payload"), nil)

	job, err := svc.SubmitText(ctx, "text", nil, nil)
	require.NoError(t, err)

	t.Run("get with and without result", func(t *testing.T) {
		full, err := svc.GetJob(ctx, job.JobID, true)
		require.NoError(t, err)
		assert.Equal(t, "payload", full.Result)

		bare, err := svc.GetJob(ctx, job.JobID, false)
		require.NoError(t, err)
		assert.Nil(t, bare.Result)
	})

	t.Run("unknown id is a lookup failure", func(t *testing.T) {
		_, err := svc.GetJob(ctx, "missing", true)
		require.ErrorIs(t, err, store.ErrJobNotFound)
	})

	t.Run("list strips results", func(t *testing.T) {
		jobs, err := svc.ListJobs(ctx)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Nil(t, jobs[0].Result)
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := svc.DeleteJob(ctx, job.JobID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = svc.DeleteJob(ctx, job.JobID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}
