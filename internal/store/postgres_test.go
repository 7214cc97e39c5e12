package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/change8/BiddingAssistant/api/schemas"
)

// flexibleSQLMatcher creates a regex that is insensitive to whitespace for more
// robust SQL mock testing.
func flexibleSQLMatcher(sql string) string {
	trimmed := strings.TrimSpace(sql)
	return regexp.MustCompile(`\s+`).ReplaceAllString(regexp.QuoteMeta(trimmed), `\s+`)
}

var jobColumnList = []string{
	"job_id", "status", "source", "filename", "metadata", "text_length",
	"created_at", "started_at", "completed_at", "result", "error",
}

func newTestPostgres(t *testing.T) (*Postgres, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	mockPool.ExpectPing()
	mockPool.ExpectExec(flexibleSQLMatcher("CREATE TABLE IF NOT EXISTS analysis_jobs")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	store, err := NewPostgres(context.Background(), mockPool, zap.NewNop())
	require.NoError(t, err)
	return store, mockPool
}

func TestNewPostgres_PingFailure(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	pingErr := errors.New("database unavailable")
	mockPool.ExpectPing().WillReturnError(pingErr)

	_, err = NewPostgres(context.Background(), mockPool, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, pingErr)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgres_Create(t *testing.T) {
	store, mockPool := newTestPostgres(t)

	mockPool.ExpectExec(flexibleSQLMatcher("INSERT INTO analysis_jobs")).
		WithArgs("job-1", "pending", "text", "",
			pgxmock.AnyArg(), 0, pgxmock.AnyArg(),
			(*time.Time)(nil), (*time.Time)(nil), []byte(nil), "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := store.Create(context.Background(), &schemas.Job{
		JobID:  "job-1",
		Source: schemas.SourceText,
	})
	require.NoError(t, err)
	assert.Equal(t, schemas.JobPending, created.Status)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgres_Get(t *testing.T) {
	store, mockPool := newTestPostgres(t)
	created := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		mockPool.ExpectQuery(flexibleSQLMatcher("SELECT")).
			WithArgs("job-1").
			WillReturnRows(pgxmock.NewRows(jobColumnList).AddRow(
				"job-1", "completed", "file", "tender.txt",
				[]byte(`{"mode":"adaptive"}`), 120, created,
				(*time.Time)(nil), (*time.Time)(nil),
				[]byte(`{"summary":"ok"}`), "",
			))

		job, err := store.Get(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, schemas.JobCompleted, job.Status)
		assert.Equal(t, schemas.SourceFile, job.Source)
		assert.Equal(t, "adaptive", job.Metadata["mode"])
		result, ok := job.Result.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "ok", result["summary"])
	})

	t.Run("not found", func(t *testing.T) {
		mockPool.ExpectQuery(flexibleSQLMatcher("SELECT")).
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		_, err := store.Get(context.Background(), "missing")
		require.ErrorIs(t, err, ErrJobNotFound)
	})

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgres_Update(t *testing.T) {
	store, mockPool := newTestPostgres(t)
	created := time.Now().UTC()
	completed := created.Add(time.Second)

	mockPool.ExpectBegin()
	mockPool.ExpectQuery(flexibleSQLMatcher("SELECT")).
		WithArgs("job-1").
		WillReturnRows(pgxmock.NewRows(jobColumnList).AddRow(
			"job-1", "processing", "text", "",
			[]byte(`{}`), 10, created,
			&created, (*time.Time)(nil),
			[]byte(nil), "",
		))
	mockPool.ExpectExec(flexibleSQLMatcher("UPDATE analysis_jobs")).
		WithArgs("job-1", "completed", pgxmock.AnyArg(), 10,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockPool.ExpectCommit()
	mockPool.ExpectRollback()

	job, err := store.Update(context.Background(), "job-1", schemas.JobUpdate{
		Status:      statusPtr(schemas.JobCompleted),
		CompletedAt: &completed,
		Result:      map[string]any{"summary": "done"},
	})
	require.NoError(t, err)
	assert.Equal(t, schemas.JobCompleted, job.Status)
	require.NotNil(t, job.CompletedAt)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgres_UpdateUnknownJob(t *testing.T) {
	store, mockPool := newTestPostgres(t)

	mockPool.ExpectBegin()
	mockPool.ExpectQuery(flexibleSQLMatcher("SELECT")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	mockPool.ExpectRollback()

	_, err := store.Update(context.Background(), "missing", schemas.JobUpdate{})
	require.ErrorIs(t, err, ErrJobNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgres_Delete(t *testing.T) {
	store, mockPool := newTestPostgres(t)

	mockPool.ExpectExec(flexibleSQLMatcher("DELETE FROM analysis_jobs")).
		WithArgs("job-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	deleted, err := store.Delete(context.Background(), "job-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	mockPool.ExpectExec(flexibleSQLMatcher("DELETE FROM analysis_jobs")).
		WithArgs("gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	deleted, err = store.Delete(context.Background(), "gone")
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgres_ListNewestFirst(t *testing.T) {
	store, mockPool := newTestPostgres(t)
	now := time.Now().UTC()

	mockPool.ExpectQuery(flexibleSQLMatcher("SELECT")).
		WillReturnRows(pgxmock.NewRows(jobColumnList).
			AddRow("new", "pending", "text", "", []byte(`{}`), 0, now,
				(*time.Time)(nil), (*time.Time)(nil), []byte(nil), "").
			AddRow("old", "pending", "text", "", []byte(`{}`), 0, now.Add(-time.Hour),
				(*time.Time)(nil), (*time.Time)(nil), []byte(nil), ""))

	jobs, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "new", jobs[0].JobID)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
