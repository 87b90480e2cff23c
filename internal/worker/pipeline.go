package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/fathomline/taxa/internal/classify"
	"github.com/fathomline/taxa/internal/extract"
	"github.com/fathomline/taxa/internal/jobs"
)

// Pipeline stages in execution order, with the percent durably recorded
// before each stage's risky operation.
const (
	StageDownloading    = "downloading"
	StageTextExtraction = "text_extraction"
	StageClassification = "classification"
	StageFinalize       = "finalize"

	PercentDownloading    = 10
	PercentTextExtraction = 30
	PercentClassification = 50
	PercentFinalize       = 100
)

// State bag keys shared by the pipeline nodes.
const (
	KeyJobID   = "job_id"
	KeyJob     = "job"
	KeyPayload = "payload"
	KeyText    = "text"
	KeyResult  = "result"
	KeyFailure = "failure"
	KeyStarted = "started"
)

// Execute drives one dispatched job to a terminal state. A business
// failure is recorded on the job and absorbed (nil return); an
// infrastructure error releases the claim and propagates so the
// redelivered message can re-claim. Duplicate delivery of a claimed or
// terminal job is idempotently ignored.
func Execute(ctx context.Context, rt *Runtime, jobID uuid.UUID) error {
	err := rt.Jobs.MarkProcessing(ctx, jobID)
	switch {
	case errors.Is(err, jobs.ErrInvalidTransition):
		rt.Logger.Warn("duplicate delivery ignored", "id", jobID, "error", err)
		return nil
	case errors.Is(err, jobs.ErrNotFound):
		rt.Logger.Warn("dispatched job absent or expired", "id", jobID)
		return nil
	case err != nil:
		return fmt.Errorf("claim job: %w", err)
	}

	graph, err := buildGraph(rt)
	if err != nil {
		release(ctx, rt, jobID)
		return fmt.Errorf("build graph: %w", err)
	}

	initial := state.New(nil)
	initial = initial.Set(KeyJobID, jobID)
	initial = initial.Set(KeyStarted, time.Now())

	if _, err := graph.Execute(ctx, initial); err != nil {
		release(ctx, rt, jobID)
		return fmt.Errorf("execute graph: %w", err)
	}

	return nil
}

// release returns a claimed job to pending so the redelivered message
// can re-claim it. Best effort: if the release itself fails the job
// stays processing until the TTL sweep.
func release(ctx context.Context, rt *Runtime, jobID uuid.UUID) {
	if err := rt.Jobs.Release(context.WithoutCancel(ctx), jobID); err != nil {
		rt.Logger.Error("release after failure failed, job stays processing",
			"id", jobID,
			"error", err,
		)
	}
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("taxa-pipeline")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode(StageDownloading, DownloadNode(rt)); err != nil {
		return nil, err
	}
	if err := graph.AddNode(StageTextExtraction, ExtractNode(rt)); err != nil {
		return nil, err
	}
	if err := graph.AddNode(StageClassification, ClassifyNode(rt)); err != nil {
		return nil, err
	}
	if err := graph.AddNode(StageFinalize, FinalizeNode(rt)); err != nil {
		return nil, err
	}

	// business failures skip straight to finalize, which records them
	if err := graph.AddEdge(StageDownloading, StageFinalize, failed); err != nil {
		return nil, err
	}
	if err := graph.AddEdge(StageDownloading, StageTextExtraction, state.Not(failed)); err != nil {
		return nil, err
	}
	if err := graph.AddEdge(StageTextExtraction, StageFinalize, failed); err != nil {
		return nil, err
	}
	if err := graph.AddEdge(StageTextExtraction, StageClassification, state.Not(failed)); err != nil {
		return nil, err
	}
	if err := graph.AddEdge(StageClassification, StageFinalize, nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint(StageDownloading); err != nil {
		return nil, err
	}
	if err := graph.SetExitPoint(StageFinalize); err != nil {
		return nil, err
	}

	return graph, nil
}

func failed(s state.State) bool {
	_, ok := s.Get(KeyFailure)
	return ok
}

// DownloadNode records the downloading stage and fetches the job record
// and its payload. Failures here are infrastructure failures.
func DownloadNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		jobID, err := extractJobID(s)
		if err != nil {
			return s, fmt.Errorf("download: %w", err)
		}

		if err := rt.Jobs.UpdateProgress(ctx, jobID, StageDownloading, PercentDownloading); err != nil {
			return s, fmt.Errorf("download: record progress: %w", err)
		}

		job, err := rt.Jobs.Get(ctx, jobID)
		if err != nil {
			return s, fmt.Errorf("download: load job: %w", err)
		}

		body, err := rt.Storage.Download(ctx, job.StorageKey)
		if err != nil {
			return s, fmt.Errorf("download: payload %s: %w", job.StorageKey, err)
		}
		defer body.Close()

		payload, err := io.ReadAll(body)
		if err != nil {
			return s, fmt.Errorf("download: read payload: %w", err)
		}

		rt.Logger.InfoContext(ctx, "download stage complete",
			"id", jobID,
			"size_bytes", len(payload),
		)

		s = s.Set(KeyJob, job)
		s = s.Set(KeyPayload, payload)
		return s, nil
	})
}

// ExtractNode records the extraction stage and produces document text.
// Extraction failures and too-short text are business failures.
func ExtractNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		job, payload, err := extractDocumentState(s)
		if err != nil {
			return s, fmt.Errorf("extract: %w", err)
		}

		if err := rt.Jobs.UpdateProgress(ctx, job.ID, StageTextExtraction, PercentTextExtraction); err != nil {
			return s, fmt.Errorf("extract: record progress: %w", err)
		}

		text, err := rt.Extractor.ExtractText(payload, job.MIMEType, job.Filename)
		if err != nil {
			s = s.Set(KeyFailure, business(CodeExtractionFailed, "text extraction failed: %v", err))
			return s, nil
		}

		if err := extract.ValidateText(text); err != nil {
			s = s.Set(KeyFailure, business(CodeExtractionNoText, "document yields no usable text: %v", err))
			return s, nil
		}

		rt.Logger.InfoContext(ctx, "extraction stage complete",
			"id", job.ID,
			"text_length", len(text),
		)

		s = s.Set(KeyText, text)
		return s, nil
	})
}

// ClassifyNode records the classification stage, loads the tag index,
// invokes the model, and enriches and validates the output. Index load,
// model, and rule failures are business failures.
func ClassifyNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		job, _, err := extractDocumentState(s)
		if err != nil {
			return s, fmt.Errorf("classify: %w", err)
		}

		text, err := extractText(s)
		if err != nil {
			return s, fmt.Errorf("classify: %w", err)
		}

		if err := rt.Jobs.UpdateProgress(ctx, job.ID, StageClassification, PercentClassification); err != nil {
			return s, fmt.Errorf("classify: record progress: %w", err)
		}

		idx, err := rt.Tags.Index(ctx)
		if err != nil {
			s = s.Set(KeyFailure, business(CodeTagCacheLoad, "tag taxonomy unavailable: %v", err))
			return s, nil
		}

		raw, err := rt.Classifier.Invoke(ctx, text, idx)
		if err != nil {
			s = s.Set(KeyFailure, business(CodeClassification, "classification failed: %v", err))
			return s, nil
		}

		result, dropped := classify.Enrich(raw, idx)
		if len(dropped) > 0 {
			rt.Logger.InfoContext(ctx, "entries dropped during enrichment",
				"id", job.ID,
				"count", len(dropped),
			)
		}

		if ok, errs := classify.ValidateRules(result); !ok {
			s = s.Set(KeyFailure, business(CodeValidation, "rule validation failed: %s", strings.Join(errs, "; ")))
			return s, nil
		}

		rt.Logger.InfoContext(ctx, "classification stage complete", "id", job.ID)

		s = s.Set(KeyResult, result)
		return s, nil
	})
}

// FinalizeNode drives the job to its terminal state: Fail for a
// recorded business failure, Complete with the enriched result
// otherwise. The uploaded payload is deleted best-effort.
func FinalizeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		jobID, err := extractJobID(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		if val, ok := s.Get(KeyFailure); ok {
			failure, ok := val.(*BusinessError)
			if !ok {
				return s, fmt.Errorf("finalize: %s is not *BusinessError", KeyFailure)
			}

			if err := rt.Jobs.Fail(ctx, jobID, failure.Code, failure.Message); err != nil {
				return s, fmt.Errorf("finalize: record failure: %w", err)
			}

			rt.Logger.WarnContext(ctx, "job failed",
				"id", jobID,
				"code", failure.Code,
				"message", failure.Message,
			)

			// payload is left for the TTL sweep so the failure can be inspected
			return s, nil
		}

		val, ok := s.Get(KeyResult)
		if !ok {
			return s, fmt.Errorf("finalize: missing %s in state", KeyResult)
		}
		result, ok := val.(*classify.Result)
		if !ok {
			return s, fmt.Errorf("finalize: %s is not *classify.Result", KeyResult)
		}

		elapsed := int64(0)
		if startVal, ok := s.Get(KeyStarted); ok {
			if started, ok := startVal.(time.Time); ok {
				elapsed = time.Since(started).Milliseconds()
			}
		}

		if err := rt.Jobs.Complete(ctx, jobID, result, elapsed); err != nil {
			return s, fmt.Errorf("finalize: record completion: %w", err)
		}

		rt.Logger.InfoContext(ctx, "job completed",
			"id", jobID,
			"processing_time_ms", elapsed,
		)

		cleanupPayload(ctx, rt, s)
		return s, nil
	})
}

// cleanupPayload deletes the temporary uploaded payload. Failure is
// logged, never fatal, and never reopens the job.
func cleanupPayload(ctx context.Context, rt *Runtime, s state.State) {
	val, ok := s.Get(KeyJob)
	if !ok {
		return
	}
	job, ok := val.(*jobs.Job)
	if !ok {
		return
	}

	if err := rt.Storage.Delete(ctx, job.StorageKey); err != nil {
		rt.Logger.Warn("payload cleanup failed",
			"id", job.ID,
			"key", job.StorageKey,
			"error", err,
		)
	}
}

func extractJobID(s state.State) (uuid.UUID, error) {
	val, ok := s.Get(KeyJobID)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing %s in state", KeyJobID)
	}
	jobID, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("%s is not uuid.UUID", KeyJobID)
	}
	return jobID, nil
}

func extractDocumentState(s state.State) (*jobs.Job, []byte, error) {
	jobVal, ok := s.Get(KeyJob)
	if !ok {
		return nil, nil, fmt.Errorf("missing %s in state", KeyJob)
	}
	job, ok := jobVal.(*jobs.Job)
	if !ok {
		return nil, nil, fmt.Errorf("%s is not *jobs.Job", KeyJob)
	}

	payloadVal, ok := s.Get(KeyPayload)
	if !ok {
		return nil, nil, fmt.Errorf("missing %s in state", KeyPayload)
	}
	payload, ok := payloadVal.([]byte)
	if !ok {
		return nil, nil, fmt.Errorf("%s is not []byte", KeyPayload)
	}

	return job, payload, nil
}

func extractText(s state.State) (string, error) {
	val, ok := s.Get(KeyText)
	if !ok {
		return "", fmt.Errorf("missing %s in state", KeyText)
	}
	text, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s is not string", KeyText)
	}
	return text, nil
}
