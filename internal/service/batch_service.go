package service

import (
	"context"
	"fmt"
	"time"

	"compliance-coursegen/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchJob is one course to generate in a batch run.
type BatchJob struct {
	Name         string                   `json:"name"`
	Request      domain.GenerationRequest `json:"request"`
	DocumentPath string                   `json:"documentPath,omitempty"`
}

// BatchOutcome pairs a job with its pipeline result.
type BatchOutcome struct {
	Name   string                   `json:"name"`
	Result *domain.GenerationResult `json:"result"`
}

// DocumentLoader reads the source document a job points at.
type DocumentLoader func(ctx context.Context, path string) (*domain.SourceDocument, error)

// BatchService runs many independent generation pipelines.
type BatchService interface {
	Run(ctx context.Context, jobs []BatchJob) ([]BatchOutcome, error)
}

type batchService struct {
	generator   domain.CourseGenerationService
	loadDoc     DocumentLoader
	concurrency int
	logger      *zap.Logger
}

// NewBatchService creates a batch runner that keeps at most concurrency pipelines in flight.
func NewBatchService(
	generator domain.CourseGenerationService,
	loadDoc DocumentLoader,
	concurrency int,
	logger *zap.Logger,
) BatchService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &batchService{
		generator:   generator,
		loadDoc:     loadDoc,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run returns one outcome per job, in job order. Per-job failures are reported in the
// outcome; the returned error is only set when ctx ends before every job has started.
func (s *batchService) Run(ctx context.Context, jobs []BatchJob) ([]BatchOutcome, error) {
	start := time.Now()
	s.logger.Info("Starting batch course generation",
		zap.Int("jobs", len(jobs)),
		zap.Int("concurrency", s.concurrency),
	)

	outcomes := make([]BatchOutcome, len(jobs))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)

	for i := range jobs {
		job := jobs[i]
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = BatchOutcome{Name: job.Name, Result: s.runJob(gctx, job)}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return outcomes, fmt.Errorf("batch interrupted: %w", err)
	}

	failed := 0
	for _, o := range outcomes {
		if o.Result.Error != "" {
			failed++
		}
	}
	s.logger.Info("Batch course generation finished",
		zap.Int("jobs", len(jobs)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return outcomes, nil
}

func (s *batchService) runJob(ctx context.Context, job BatchJob) *domain.GenerationResult {
	req := job.Request
	if job.DocumentPath != "" {
		doc, err := s.loadDoc(ctx, job.DocumentPath)
		if err != nil {
			s.logger.Error("Failed to load batch document",
				zap.String("job", job.Name),
				zap.String("path", job.DocumentPath),
				zap.Error(err),
			)
			return &domain.GenerationResult{
				CourseContent: emptyContent(),
				Error:         err.Error(),
				Err:           err,
			}
		}
		req.SourceDocument = doc
	}

	result := s.generator.GenerateCourse(ctx, &req)
	s.logger.Info("Batch job finished",
		zap.String("job", job.Name),
		zap.String("request_id", result.RequestID),
		zap.Int("attempts", result.Attempts),
		zap.Bool("failed", result.Error != ""),
	)
	return result
}
