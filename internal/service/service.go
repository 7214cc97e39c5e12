// Package service orchestrates analysis jobs: it tracks each request as a job
// record with a pending -> processing -> {completed, failed} lifecycle and
// supports synchronous execution as well as fire-and-forget scheduling.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/change8/BiddingAssistant/api/schemas"
)

var (
	// ErrEmptyText rejects blank submissions before a job is created.
	ErrEmptyText = errors.New("document text is empty")

	// ErrNoExtractableText fails a file job whose extractor produced no text.
	ErrNoExtractableText = errors.New("no extractable text in uploaded document")
)

// AnalyzeFunc is the analysis callable a service instance drives: either the
// rule engine or a whole-document analyzer.
type AnalyzeFunc func(ctx context.Context, text string) (any, error)

// Service wraps an analysis callable with job tracking. The extractor and
// preprocessor collaborators are optional.
type Service struct {
	store     schemas.JobStore
	analyze   AnalyzeFunc
	pre       schemas.Preprocessor
	extractor schemas.Extractor
	logger    *zap.Logger
}

// NewService wires the orchestrator.
func NewService(store schemas.JobStore, analyze AnalyzeFunc, pre schemas.Preprocessor, extractor schemas.Extractor, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		analyze:   analyze,
		pre:       pre,
		extractor: extractor,
		logger:    logger.Named("service"),
	}
}

// CreateJob registers a fresh pending job.
func (s *Service) CreateJob(ctx context.Context, source schemas.JobSource, filename string, metadata map[string]any) (*schemas.Job, error) {
	job := &schemas.Job{
		JobID:     uuid.NewString(),
		Status:    schemas.JobPending,
		Source:    source,
		Filename:  filename,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	return s.store.Create(ctx, job)
}

// ProcessText runs the analysis callable against the text and drives the job
// to a terminal state. On analysis failure the job records the error AND the
// error is returned, so a synchronous caller sees the failure while an
// asynchronous scheduler sees only the job record.
func (s *Service) ProcessText(ctx context.Context, jobID, text string, metadata map[string]any) (*schemas.Job, error) {
	started := time.Now().UTC()
	processing := schemas.JobProcessing
	if _, err := s.store.Update(ctx, jobID, schemas.JobUpdate{
		Status:    &processing,
		StartedAt: &started,
		Metadata:  metadata,
	}); err != nil {
		return nil, err
	}

	cleaned := text
	if s.pre != nil {
		var preMeta map[string]any
		cleaned, preMeta = s.pre.Preprocess(text)
		if preMeta != nil {
			if _, err := s.store.Update(ctx, jobID, schemas.JobUpdate{
				Metadata: map[string]any{"preprocess": preMeta},
			}); err != nil {
				return nil, err
			}
		}
	}
	textLen := utf8.RuneCountInString(cleaned)

	result, err := s.analyze(ctx, cleaned)
	if err != nil {
		s.logger.Error("Analysis failed", zap.String("job_id", jobID), zap.Error(err))
		job, updErr := s.failJob(ctx, jobID, err.Error())
		if updErr != nil {
			return nil, updErr
		}
		return job, err
	}

	completed := time.Now().UTC()
	done := schemas.JobCompleted
	job, err := s.store.Update(ctx, jobID, schemas.JobUpdate{
		Status:      &done,
		CompletedAt: &completed,
		TextLength:  &textLen,
		Result:      result,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Job completed",
		zap.String("job_id", jobID), zap.Int("text_length", textLen))
	return job, nil
}

// ProcessFileUpload extracts text from the buffered upload and delegates to
// ProcessText. Extraction problems fail the job without propagating; a blank
// extraction fails with an explicit message and never reaches the analyzer.
func (s *Service) ProcessFileUpload(ctx context.Context, jobID, path, filename, contentType string) (*schemas.Job, error) {
	if s.extractor == nil {
		return s.failJob(ctx, jobID, "no document extractor configured")
	}

	text, meta, err := s.extractor.Extract(path, filename, contentType)
	if err != nil {
		s.logger.Warn("Extraction failed",
			zap.String("job_id", jobID), zap.String("filename", filename), zap.Error(err))
		return s.failJob(ctx, jobID, err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return s.failJob(ctx, jobID, ErrNoExtractableText.Error())
	}

	if meta == nil {
		meta = map[string]any{}
	}
	if _, ok := meta["filename"]; !ok && filename != "" {
		meta["filename"] = filename
	}
	return s.ProcessText(ctx, jobID, text, meta)
}

// SubmitText creates a job for raw text and runs it synchronously, or hands it
// to the scheduler and returns the still-pending record. Blank text is
// rejected before any job exists.
func (s *Service) SubmitText(ctx context.Context, text string, metadata map[string]any, scheduler Scheduler) (*schemas.Job, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	job, err := s.CreateJob(ctx, schemas.SourceText, "", metadata)
	if err != nil {
		return nil, err
	}

	if scheduler == nil {
		return s.ProcessText(ctx, job.JobID, text, nil)
	}

	taskCtx := context.WithoutCancel(ctx)
	scheduler(func() {
		if _, err := s.ProcessText(taskCtx, job.JobID, text, nil); err != nil {
			s.logger.Warn("Scheduled job failed", zap.String("job_id", job.JobID), zap.Error(err))
		}
	})
	return job, nil
}

// SubmitFile buffers the upload to a temporary file, creates the job and
// processes it synchronously or via the scheduler. The temporary file is
// removed after processing in every mode.
func (s *Service) SubmitFile(ctx context.Context, content io.Reader, filename, contentType string, metadata map[string]any, scheduler Scheduler) (*schemas.Job, error) {
	job, err := s.CreateJob(ctx, schemas.SourceFile, filename, metadata)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "bidassist-upload-*")
	if err != nil {
		if _, updErr := s.failJob(ctx, job.JobID, err.Error()); updErr != nil {
			return nil, updErr
		}
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}
	path := tmp.Name()
	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		os.Remove(path)
		if _, updErr := s.failJob(ctx, job.JobID, err.Error()); updErr != nil {
			return nil, updErr
		}
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		if _, updErr := s.failJob(ctx, job.JobID, err.Error()); updErr != nil {
			return nil, updErr
		}
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}

	if scheduler == nil {
		defer os.Remove(path)
		return s.ProcessFileUpload(ctx, job.JobID, path, filename, contentType)
	}

	taskCtx := context.WithoutCancel(ctx)
	scheduler(func() {
		defer os.Remove(path)
		if _, err := s.ProcessFileUpload(taskCtx, job.JobID, path, filename, contentType); err != nil {
			s.logger.Warn("Scheduled job failed", zap.String("job_id", job.JobID), zap.Error(err))
		}
	})
	return job, nil
}

// GetJob returns a job by id, optionally stripping the result payload.
func (s *Service) GetJob(ctx context.Context, id string, includeResult bool) (*schemas.Job, error) {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !includeResult {
		job.Result = nil
	}
	return job, nil
}

// ListJobs returns all jobs, newest first, without result payloads.
func (s *Service) ListJobs(ctx context.Context) ([]*schemas.Job, error) {
	jobs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, job := range jobs {
		job.Result = nil
	}
	return jobs, nil
}

// DeleteJob removes a job record by id.
func (s *Service) DeleteJob(ctx context.Context, id string) (bool, error) {
	return s.store.Delete(ctx, id)
}

func (s *Service) failJob(ctx context.Context, jobID, message string) (*schemas.Job, error) {
	completed := time.Now().UTC()
	failed := schemas.JobFailed
	return s.store.Update(ctx, jobID, schemas.JobUpdate{
		Status:      &failed,
		CompletedAt: &completed,
		Error:       &message,
	})
}
