package jobs

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/fathomline/taxa/internal/classify"
	"github.com/fathomline/taxa/pkg/pagination"
	"github.com/fathomline/taxa/pkg/query"
	"github.com/fathomline/taxa/pkg/repository"
	"github.com/fathomline/taxa/pkg/storage"
)

const unexpiredClause = "j.ttl_expires_at > now()"

const insertReturning = `id, status, filename, size_bytes, mime_type, storage_key, owner_key_hash,
		stage, percent, result, error_code, error_message, processing_time_ms,
		created_at, updated_at, completed_at, failed_at, ttl_expires_at`

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a job repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "jobs"),
		pagination: pagination,
	}
}

func (r *repo) Handler(dispatcher Dispatcher, syncThreshold, asyncMax int64) *Handler {
	return NewHandler(r, dispatcher, r.logger, r.pagination, syncThreshold, asyncMax)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Job, error) {
	id := uuid.New()
	key := buildStorageKey(id, sanitizeFilename(cmd.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.MIMEType); err != nil {
		return nil, fmt.Errorf("upload job payload: %w", err)
	}

	q := `
		INSERT INTO jobs(id, filename, size_bytes, mime_type, storage_key, owner_key_hash, ttl_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, now() + $7::interval)
		RETURNING ` + insertReturning

	insertArgs := []any{
		id,
		cmd.Filename,
		int64(len(cmd.Data)),
		cmd.MIMEType,
		key,
		cmd.OwnerKeyHash,
		DefaultTTL.String(),
	}

	j, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Job, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanJob)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating payload delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("job created",
		"id", j.ID,
		"filename", j.Filename,
		"size_bytes", j.SizeBytes,
	)
	return &j, nil
}

func (r *repo) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	qb := query.
		NewBuilder(projection).
		WhereEquals("ID", id).
		WhereExpr(unexpiredClause)
	q, args := qb.BuildSingleOrNull()

	j, err := repository.QueryOne(ctx, r.db, q, args, scanJob)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &j, nil
}

func (r *repo) GetOwned(ctx context.Context, id uuid.UUID, ownerKeyHash string) (*Job, error) {
	j, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.OwnerKeyHash != ownerKeyHash {
		return nil, ErrForbidden
	}
	return j, nil
}

func (r *repo) List(
	ctx context.Context,
	ownerKeyHash string,
	page pagination.PageRequest,
) (*pagination.PageResult[Job], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("OwnerKeyHash", ownerKeyHash).
		WhereExpr(unexpiredClause).
		WhereSearch(page.Search, "Filename")

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	jobs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanJob)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	result := pagination.NewPageResult(jobs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	q := `
		UPDATE jobs
		SET status = 'processing', updated_at = now()
		WHERE id = $1 AND status = 'pending'`

	if err := repository.ExecExpectOne(ctx, r.db, q, id); err != nil {
		return r.transitionError(ctx, id, StatusProcessing, err)
	}

	r.logger.Info("job processing", "id", id)
	return nil
}

func (r *repo) Release(ctx context.Context, id uuid.UUID) error {
	q := `
		UPDATE jobs
		SET status = 'pending', stage = NULL, percent = NULL, updated_at = now()
		WHERE id = $1 AND status = 'processing'`

	if err := repository.ExecExpectOne(ctx, r.db, q, id); err != nil {
		return r.transitionError(ctx, id, StatusPending, err)
	}

	r.logger.Info("job released for redelivery", "id", id)
	return nil
}

func (r *repo) UpdateProgress(ctx context.Context, id uuid.UUID, stage string, percent int) error {
	q := `
		UPDATE jobs
		SET stage = $2, percent = $3, updated_at = now()
		WHERE id = $1 AND status = 'processing'`

	if err := repository.ExecExpectOne(ctx, r.db, q, id, stage, percent); err != nil {
		return r.transitionError(ctx, id, StatusProcessing, err)
	}
	return nil
}

func (r *repo) Complete(ctx context.Context, id uuid.UUID, result *classify.Result, processingTimeMs int64) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode job result: %w", err)
	}

	q := `
		UPDATE jobs
		SET status = 'completed',
			result = $2,
			processing_time_ms = $3,
			stage = 'finalize',
			percent = 100,
			completed_at = now(),
			updated_at = now()
		WHERE id = $1 AND status = 'processing'`

	if err := repository.ExecExpectOne(ctx, r.db, q, id, resultJSON, processingTimeMs); err != nil {
		return r.transitionError(ctx, id, StatusCompleted, err)
	}

	r.logger.Info("job completed", "id", id, "processing_time_ms", processingTimeMs)
	return nil
}

func (r *repo) Fail(ctx context.Context, id uuid.UUID, code, message string) error {
	q := `
		UPDATE jobs
		SET status = 'failed',
			error_code = $2,
			error_message = $3,
			failed_at = now(),
			updated_at = now()
		WHERE id = $1 AND status = 'processing'`

	if err := repository.ExecExpectOne(ctx, r.db, q, id, code, message); err != nil {
		return r.transitionError(ctx, id, StatusFailed, err)
	}

	r.logger.Info("job failed", "id", id, "code", code)
	return nil
}

// transitionError classifies a zero-row conditional update: the job is
// either absent or in a state the transition does not accept.
func (r *repo) transitionError(ctx context.Context, id uuid.UUID, to Status, err error) error {
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	var current Status
	row := r.db.QueryRowContext(ctx, "SELECT status FROM jobs WHERE id = $1", id)
	if scanErr := row.Scan(&current); scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return ErrNotFound
		}
		return scanErr
	}

	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, to)
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("payloads/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "document"
	}
	return url.PathEscape(name)
}
