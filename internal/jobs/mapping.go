package jobs

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fathomline/taxa/internal/classify"
	"github.com/fathomline/taxa/pkg/query"
	"github.com/fathomline/taxa/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "jobs", "j").
	Project("id", "ID").
	Project("status", "Status").
	Project("filename", "Filename").
	Project("size_bytes", "SizeBytes").
	Project("mime_type", "MIMEType").
	Project("storage_key", "StorageKey").
	Project("owner_key_hash", "OwnerKeyHash").
	Project("stage", "Stage").
	Project("percent", "Percent").
	Project("result", "Result").
	Project("error_code", "ErrorCode").
	Project("error_message", "ErrorMessage").
	Project("processing_time_ms", "ProcessingTimeMs").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Project("completed_at", "CompletedAt").
	Project("failed_at", "FailedAt").
	Project("ttl_expires_at", "TTLExpiresAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

func scanJob(s repository.Scanner) (Job, error) {
	var (
		j          Job
		stage      sql.NullString
		percent    sql.NullInt64
		resultJSON []byte
		errCode    sql.NullString
		errMessage sql.NullString
	)

	err := s.Scan(
		&j.ID,
		&j.Status,
		&j.Filename,
		&j.SizeBytes,
		&j.MIMEType,
		&j.StorageKey,
		&j.OwnerKeyHash,
		&stage,
		&percent,
		&resultJSON,
		&errCode,
		&errMessage,
		&j.ProcessingTimeMs,
		&j.CreatedAt,
		&j.UpdatedAt,
		&j.CompletedAt,
		&j.FailedAt,
		&j.TTLExpiresAt,
	)
	if err != nil {
		return j, err
	}

	if stage.Valid {
		j.Progress = &Progress{
			Stage:   stage.String,
			Percent: int(percent.Int64),
		}
	}

	if len(resultJSON) > 0 {
		var result classify.Result
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return j, fmt.Errorf("decode job result: %w", err)
		}
		j.Result = &result
	}

	if errCode.Valid {
		j.Error = &JobError{
			Code:    errCode.String,
			Message: errMessage.String,
		}
	}

	return j, nil
}
